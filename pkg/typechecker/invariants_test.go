package typechecker

import (
	"testing"

	"github.com/go-test/deep"

	"semcore/pkg/ast"
)

// TestFunctionTypeInterningLaw covers spec.md §3.1/§9's interning law:
// two independently constructed FunctionTypes with equal parameter
// labels, parameter types, codomain and placeholder lists share one
// pointer; anything structurally different gets its own.
func TestFunctionTypeInterningLaw(t *testing.T) {
	ctx := NewContext(nil)
	intT := ctx.Builtin(BuiltinInt)

	a := ctx.FunctionType([]FunctionParam{{Label: "x", Type: intT}}, intT, nil, nil)
	b := ctx.FunctionType([]FunctionParam{{Label: "x", Type: intT}}, intT, nil, nil)
	if a != b {
		t.Fatalf("two structurally identical FunctionTypes were not interned to the same pointer")
	}

	c := ctx.FunctionType([]FunctionParam{{Label: "y", Type: intT}}, intT, nil, nil)
	if a == c {
		t.Fatalf("FunctionTypes differing only by parameter label must not share a pointer")
	}

	d := ctx.FunctionType([]FunctionParam{{Label: "x", Type: intT}}, ctx.Builtin(BuiltinBool), nil, nil)
	if a == d {
		t.Fatalf("FunctionTypes differing only by codomain must not share a pointer")
	}
}

// TestReifyIsIdempotent covers spec.md §8's "reify(reify(t)) == reify(t)"
// invariant for a composite type with a variable nested inside it.
func TestReifyIsIdempotent(t *testing.T) {
	ctx := NewContext(nil)
	subst := NewSubstitutionTable()

	v := ctx.NewTypeVariable()
	subst.Bind(v, ctx.Builtin(BuiltinString))
	fn := ctx.FunctionType([]FunctionParam{{Type: v}}, ctx.Builtin(BuiltinInt), nil, nil)

	once := ctx.Reify(subst, fn)
	twice := ctx.Reify(subst, once)
	if diff := deep.Equal(once, twice); diff != nil {
		t.Fatalf("Reify(Reify(t)) != Reify(t): %v", diff)
	}
}

// TestReifyUnboundVariableIsErrorType covers spec.md §8's "for any
// ill-typed node, node.type ≡ ErrorType" invariant at the Reify layer: a
// variable that never got bound reifies to the one ErrorType singleton.
func TestReifyUnboundVariableIsErrorType(t *testing.T) {
	ctx := NewContext(nil)
	subst := NewSubstitutionTable()
	v := ctx.NewTypeVariable()

	got := ctx.Reify(subst, v)
	if got != ctx.ErrorType() {
		t.Fatalf("Reify of an unbound TypeVariable = %v, want the ErrorType singleton", got)
	}
}

// TestOpenThenCloseRoundTrips covers spec.md §4.1's Open/Close pair: after
// Open mints fresh variables for a generic FunctionType's placeholders and
// Close substitutes the very types those variables ended up meaning, the
// result is structurally identical to manually substituting the original
// placeholders directly.
func TestOpenThenCloseRoundTrips(t *testing.T) {
	ctx := NewContext(nil)
	ph := ctx.Placeholder("round-trip", "T")
	generic := ctx.FunctionType([]FunctionParam{{Label: "x", Type: ph}}, ph, []*PlaceholderType{ph}, nil)

	bindings := Bindings{}
	opened := ctx.Open(generic, bindings).(*FunctionType)

	fresh, ok := bindings[ph]
	if !ok {
		t.Fatal("Open did not record a fresh variable for T in bindings")
	}

	subs := map[*PlaceholderType]Type{ph: ctx.Builtin(BuiltinInt)}
	closed := ctx.Close(generic, subs)

	// Manually substitute fresh -> Int in the opened type and compare
	// against Close's direct substitution: both describe "T = Int".
	manualClosed := &FunctionType{
		Params:   []FunctionParam{{Label: "x", Type: ctx.Builtin(BuiltinInt)}},
		Codomain: ctx.Builtin(BuiltinInt),
	}
	subst := NewSubstitutionTable()
	subst.Bind(fresh.(*TypeVariable), ctx.Builtin(BuiltinInt))
	reifiedOpened := ctx.Reify(subst, opened)
	if diff := deep.Equal(reifiedOpened, manualClosed); diff != nil {
		t.Fatalf("Open(T) then binding the fresh var to Int != manually substituting T for Int: %v", diff)
	}
	if diff := deep.Equal(closed.(*FunctionType), manualClosed); diff != nil {
		t.Fatalf("Close(generic, {T: Int}) != manually substituting T for Int: %v", diff)
	}
}

// TestOccursCheckRejectsCyclicBinding covers spec.md §4.3's occurs-check:
// binding a variable to a type that contains itself must be rejected
// rather than silently producing an infinite type.
func TestOccursCheckRejectsCyclicBinding(t *testing.T) {
	ctx := NewContext(nil)
	s := NewSolver(ctx, ast.NewScope(nil))
	subst := NewSubstitutionTable()

	v := ctx.NewTypeVariable()
	selfReferential := ctx.FunctionType([]FunctionParam{{Type: v}}, ctx.Builtin(BuiltinInt), nil, nil)

	if s.bindVar(v, selfReferential, subst) {
		t.Fatal("bindVar allowed v := F(..., v, ...), which would make Walk loop forever")
	}
	if subst.IsBound(v) {
		t.Fatal("a rejected occurs-check binding must not be recorded")
	}
}

// TestUndefinedSymbolProducesErrorTypeAndDiagnostic covers spec.md §8's
// "for any ill-typed node, node.type ≡ ErrorType, and at least one
// diagnostic covers its range" invariant for the simplest ill-typed case:
// a reference to a name nothing declared.
func TestUndefinedSymbolProducesErrorTypeAndDiagnostic(t *testing.T) {
	ctx, builtins := newTestContext()
	moduleScope := ast.NewScope(builtins)

	ghost := ident(moduleScope, "ghost")
	result := letBinding("result", nil, ast.OpCopy, ghost)
	module := ast.NewModule(zeroRange, "undefined", []ast.Declaration{result}, moduleScope)

	_, diags, _ := TypeCheck(module, ctx)

	if got := resolvedTypeOf(ghost); got != ctx.ErrorType() {
		t.Fatalf("ghost.type = %v, want the ErrorType singleton", got)
	}

	var found bool
	for _, d := range diags {
		if d.Kind == UndefinedSymbol && d.Node == ghost {
			found = true
		}
	}
	if !found {
		t.Fatalf("no undefinedSymbol diagnostic anchored on the ghost identifier: %v", diags)
	}
}

// TestDisjunctionAmbiguityPicksFirstViableBranchDeterministically covers
// SPEC_FULL.md's engineering decision #2: when a call genuinely has more
// than one equally-viable overload (nothing downstream constrains the
// codomain the two overloads disagree on), the solver reports ambiguity
// but still deterministically commits to the first-declared viable
// branch rather than leaving the program unsolved.
func TestDisjunctionAmbiguityPicksFirstViableBranchDeterministically(t *testing.T) {
	ctx, builtins := newTestContext()
	moduleScope := ast.NewScope(builtins)

	first := identityLikeFunDecl(ctx, moduleScope, "pick", simpleType(moduleScope, "Int"), simpleType(moduleScope, "Int"))
	declareFun(moduleScope, first, true)
	second := identityLikeFunDecl(ctx, moduleScope, "pick", simpleType(moduleScope, "Int"), simpleType(moduleScope, "Bool"))
	declareFun(moduleScope, second, true)

	call := ast.NewCallExpression(zeroRange, ident(moduleScope, "pick"), []ast.Argument{callArg("x", ast.NewIntLiteral(zeroRange, 0))}, nil)
	result := letBinding("result", nil, ast.OpCopy, call)

	module := ast.NewModule(zeroRange, "ambiguity", []ast.Declaration{first, second, result}, moduleScope)
	_, diags, _ := TypeCheck(module, ctx)

	var ambiguous int
	for _, d := range diags {
		if d.Kind == UnsolvableConstraint && d.Cause == CauseAmbiguous {
			ambiguous++
		}
	}
	if ambiguous != 1 {
		t.Fatalf("got %d ambiguous diagnostics, want exactly 1: %v", ambiguous, diags)
	}

	if got := resolvedTypeOf(result); got == nil || got.String() != "Int" {
		t.Fatalf("result: got %v, want Int (the first-declared overload should still win deterministically)", got)
	}
}

// identityLikeFunDecl builds `fun name(x: paramType) -> codomain { <fresh
// var, unconstrained by the body> }`: a body that never pins its own
// result down, so the call site's codomain is genuinely undetermined by
// anything other than the overload chosen.
func identityLikeFunDecl(ctx *CompilerContext, moduleScope *ast.Scope, name string, paramType, codomain *ast.SimpleTypeExpr) *ast.FunDecl {
	fnScope := ast.NewScope(moduleScope)
	xParam := param("x", "x", paramType)
	declareParamSymbol(fnScope, xParam)
	return ast.NewFunDecl(zeroRange, name, ast.FunctionRegular, nil, []*ast.ParamDecl{xParam}, codomain, nil, fnScope)
}
