package typechecker

import "semcore/pkg/ast"

// arithmeticOperators and comparisonOperators name the binary operators
// the numeric builtins carry a method for (String carries only "+" of the
// arithmetic ones, plus the comparisons), matching spec.md
// §4.2's "binary expression is L.op(R)" treatment and scenario 5 of §8
// (`1 + 2` dispatches to `Int.+`, `"a" + "b"` dispatches to `String.+`).
var arithmeticOperators = []string{"+", "-", "*", "/"}
var comparisonOperators = []string{"==", "!=", "<", ">", "<=", ">="}

// NewBuiltinScope builds the pre-populated root scope spec.md §6
// requires to exist before the first pass runs: one symbol per builtin
// type name, plus one overloaded symbol per operator method each builtin
// carries. TypeCheck builds one for the solver, which looks builtin
// operator members up in it; binding a module's identifiers to these
// symbols is still the name binder's job (spec.md §1's "explicitly out of
// scope" list), so tests also use it as the root of the scopes they build
// in place of a name binder.
func NewBuiltinScope(ctx *CompilerContext) *ast.Scope {
	scope := ast.NewScope(nil)

	for _, name := range []string{BuiltinBool, BuiltinInt, BuiltinFloat, BuiltinString, BuiltinAnything, BuiltinNothing} {
		builtin := ctx.Builtin(name)
		scope.Declare(name, &ast.Symbol{
			Name:         name,
			Kind:         ast.SymbolBuiltin,
			PreboundType: ctx.Metatype(builtin),
		})
	}

	declareOperators(ctx, scope, BuiltinInt, arithmeticOperators, ctx.Builtin(BuiltinInt))
	declareOperators(ctx, scope, BuiltinInt, comparisonOperators, ctx.Builtin(BuiltinBool))
	declareOperators(ctx, scope, BuiltinFloat, arithmeticOperators, ctx.Builtin(BuiltinFloat))
	declareOperators(ctx, scope, BuiltinFloat, comparisonOperators, ctx.Builtin(BuiltinBool))
	declareOperators(ctx, scope, BuiltinString, []string{"+"}, ctx.Builtin(BuiltinString))
	declareOperators(ctx, scope, BuiltinString, comparisonOperators, ctx.Builtin(BuiltinBool))
	declareOperators(ctx, scope, BuiltinBool, []string{"==", "!="}, ctx.Builtin(BuiltinBool))

	return scope
}

// declareOperators registers, on a builtin's member namespace, one method
// symbol per operator name, each accepting one operand of the builtin's
// own type and returning result.
func declareOperators(ctx *CompilerContext, scope *ast.Scope, builtinName string, ops []string, result Type) {
	self := ctx.Builtin(builtinName)
	for _, op := range ops {
		fnType := ctx.FunctionType(
			[]FunctionParam{{Type: self}},
			result,
			nil,
			nil,
		)
		scope.Declare(BuiltinMemberKey(builtinName, op), &ast.Symbol{
			Name:         op,
			Kind:         ast.SymbolBuiltin,
			IsMethod:     true,
			PreboundType: fnType,
		})
	}
}

// BuiltinMemberKey namespaces an operator method symbol under its
// receiver builtin's name, since "+"'s meaning depends on which builtin
// owns it. BuiltinMember looks members up by this same key.
func BuiltinMemberKey(builtinName, memberName string) string {
	return builtinName + "." + memberName
}

// BuiltinMember looks up a member symbol declared on a builtin type by
// name, used by the solver when resolving a Member constraint whose owner
// walked to a BuiltinType.
func BuiltinMember(scope *ast.Scope, builtinName, memberName string) []*ast.Symbol {
	return scope.Symbols[BuiltinMemberKey(builtinName, memberName)]
}
