package typechecker

import (
	"testing"

	"semcore/pkg/ast"
)

// declareTypeParam wires a <T>-style generic parameter into scope the way
// a name binder would: a symbol whose PreboundType is the metatype of the
// placeholder ctx.Placeholder(ownerKey, name) would mint for that owner,
// so a later SimpleTypeExpr referencing the name resolves to it.
func declareTypeParam(ctx *CompilerContext, scope *ast.Scope, ownerKey, name string) *PlaceholderType {
	ph := ctx.Placeholder(ownerKey, name)
	scope.Declare(name, &ast.Symbol{Name: name, Kind: ast.SymbolTypeParam, PreboundType: ctx.Metatype(ph)})
	return ph
}

func declareParamSymbol(scope *ast.Scope, p *ast.ParamDecl) {
	scope.Declare(p.Name, &ast.Symbol{Name: p.Name, Kind: ast.SymbolParam, Decl: p})
}

// identityFunDecl builds `fun name(x: paramType) -> paramType { x }`,
// where the body is the trailing expression `x` so genFunBody's codomain
// Equality has something real to check.
func identityFunDecl(ctx *CompilerContext, moduleScope *ast.Scope, name string, paramType *ast.SimpleTypeExpr) *ast.FunDecl {
	fnScope := ast.NewScope(moduleScope)
	xParam := param("x", "x", paramType)
	declareParamSymbol(fnScope, xParam)
	body := ast.NewBlockExpression(zeroRange, nil, ident(fnScope, "x"), fnScope)
	fn := ast.NewFunDecl(zeroRange, name, ast.FunctionRegular, nil, []*ast.ParamDecl{xParam}, paramType, body, fnScope)
	return fn
}

// TestScenarioOverloadedMonomorphicFunction covers spec.md §8 scenario 1:
// two non-generic overloads of the same name, dispatched by argument type.
func TestScenarioOverloadedMonomorphicFunction(t *testing.T) {
	ctx, builtins := newTestContext()
	moduleScope := ast.NewScope(builtins)

	monoInt := identityFunDecl(ctx, moduleScope, "mono", simpleType(moduleScope, "Int"))
	declareFun(moduleScope, monoInt, true)
	monoBool := identityFunDecl(ctx, moduleScope, "mono", simpleType(moduleScope, "Bool"))
	declareFun(moduleScope, monoBool, true)

	callA := ast.NewCallExpression(zeroRange, ident(moduleScope, "mono"), []ast.Argument{callArg("x", ast.NewIntLiteral(zeroRange, 0))}, nil)
	letA := letBinding("a", nil, ast.OpCopy, callA)
	callB := ast.NewCallExpression(zeroRange, ident(moduleScope, "mono"), []ast.Argument{callArg("x", ast.NewBoolLiteral(zeroRange, true))}, nil)
	letB := letBinding("b", nil, ast.OpCopy, callB)

	module := ast.NewModule(zeroRange, "scenario1", []ast.Declaration{monoInt, monoBool, letA, letB}, moduleScope)

	_, diags, _ := TypeCheck(module, ctx)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	if got := resolvedTypeOf(letA); got == nil || got.String() != "Int" {
		t.Fatalf("a: got %v, want Int", got)
	}
	if got := resolvedTypeOf(letB); got == nil || got.String() != "Bool" {
		t.Fatalf("b: got %v, want Bool", got)
	}

	aCallee := callA.Callee.(*ast.Ident)
	if aCallee.Symbol != monoInt.Symbol {
		t.Fatalf("mono(x:=0) dispatched to %v, want the Int overload", aCallee.Symbol)
	}
	bCallee := callB.Callee.(*ast.Ident)
	if bCallee.Symbol != monoBool.Symbol {
		t.Fatalf("mono(x:=true) dispatched to %v, want the Bool overload", bCallee.Symbol)
	}
}

// TestScenarioPolymorphicIdentity covers spec.md §8 scenario 2's nested
// case: a single generic function applied to its own result,
// `poly(x := poly(x := true))`, typed Bool, with both call sites
// dispatching to the one declaration.
func TestScenarioPolymorphicIdentity(t *testing.T) {
	ctx, builtins := newTestContext()
	moduleScope := ast.NewScope(builtins)

	fnScope := ast.NewScope(moduleScope)
	declareTypeParam(ctx, fnScope, "poly", "T")
	xParam := param("x", "x", simpleType(fnScope, "T"))
	declareParamSymbol(fnScope, xParam)
	body := ast.NewBlockExpression(zeroRange, nil, ident(fnScope, "x"), fnScope)
	polyDecl := ast.NewFunDecl(zeroRange, "poly", ast.FunctionRegular,
		[]*ast.PlaceholderDecl{placeholder("T")}, []*ast.ParamDecl{xParam}, simpleType(fnScope, "T"), body, fnScope)
	declareFun(moduleScope, polyDecl, false)

	innerCall := ast.NewCallExpression(zeroRange, ident(moduleScope, "poly"), []ast.Argument{callArg("x", ast.NewBoolLiteral(zeroRange, true))}, nil)
	outerCall := ast.NewCallExpression(zeroRange, ident(moduleScope, "poly"), []ast.Argument{callArg("x", innerCall)}, nil)
	result := letBinding("result", nil, ast.OpCopy, outerCall)

	module := ast.NewModule(zeroRange, "scenario2", []ast.Declaration{polyDecl, result}, moduleScope)

	_, diags, _ := TypeCheck(module, ctx)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if got := resolvedTypeOf(result); got == nil || got.String() != "Bool" {
		t.Fatalf("result: got %v, want Bool", got)
	}

	innerCallee := innerCall.Callee.(*ast.Ident)
	outerCallee := outerCall.Callee.(*ast.Ident)
	if innerCallee.Symbol != polyDecl.Symbol || outerCallee.Symbol != polyDecl.Symbol {
		t.Fatalf("both call sites should dispatch to the one poly declaration, got inner=%v outer=%v", innerCallee.Symbol, outerCallee.Symbol)
	}
}

// TestScenarioLinearInference covers spec.md §8 scenario 3: a function
// generic over two independent placeholders, where the codomain tracks
// whichever argument was bound to the first placeholder.
func TestScenarioLinearInference(t *testing.T) {
	ctx, builtins := newTestContext()
	moduleScope := ast.NewScope(builtins)

	fnScope := ast.NewScope(moduleScope)
	declareTypeParam(ctx, fnScope, "poly2", "T")
	declareTypeParam(ctx, fnScope, "poly2", "U")
	xParam := param("x", "x", simpleType(fnScope, "T"))
	yParam := param("y", "y", simpleType(fnScope, "U"))
	declareParamSymbol(fnScope, xParam)
	declareParamSymbol(fnScope, yParam)
	body := ast.NewBlockExpression(zeroRange, nil, ident(fnScope, "x"), fnScope)
	poly2Decl := ast.NewFunDecl(zeroRange, "poly2", ast.FunctionRegular,
		[]*ast.PlaceholderDecl{placeholder("T"), placeholder("U")},
		[]*ast.ParamDecl{xParam, yParam}, simpleType(fnScope, "T"), body, fnScope)
	declareFun(moduleScope, poly2Decl, false)

	callIntBool := ast.NewCallExpression(zeroRange, ident(moduleScope, "poly2"),
		[]ast.Argument{callArg("x", ast.NewIntLiteral(zeroRange, 0)), callArg("y", ast.NewBoolLiteral(zeroRange, true))}, nil)
	resultA := letBinding("a", nil, ast.OpCopy, callIntBool)

	callBoolInt := ast.NewCallExpression(zeroRange, ident(moduleScope, "poly2"),
		[]ast.Argument{callArg("x", ast.NewBoolLiteral(zeroRange, true)), callArg("y", ast.NewIntLiteral(zeroRange, 0))}, nil)
	resultB := letBinding("b", nil, ast.OpCopy, callBoolInt)

	module := ast.NewModule(zeroRange, "scenario3", []ast.Declaration{poly2Decl, resultA, resultB}, moduleScope)

	_, diags, _ := TypeCheck(module, ctx)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if got := resolvedTypeOf(resultA); got == nil || got.String() != "Int" {
		t.Fatalf("a: got %v, want Int (order x,y := 0,true)", got)
	}
	if got := resolvedTypeOf(resultB); got == nil || got.String() != "Bool" {
		t.Fatalf("b: got %v, want Bool (order x,y := true,0)", got)
	}
}

// TestScenarioGenericConstructor covers spec.md §8 scenario 4: a generic
// struct's constructor binds the struct's own placeholder to the
// argument's concrete type, producing a BoundGenericType.
func TestScenarioGenericConstructor(t *testing.T) {
	ctx, builtins := newTestContext()
	moduleScope := ast.NewScope(builtins)
	boxScope := ast.NewScope(moduleScope)

	tph := declareTypeParam(ctx, boxScope, "Box", "T")
	valueParam := param("value", "value", simpleType(boxScope, "T"))
	ctor := ast.NewFunDecl(zeroRange, "new", ast.FunctionConstructor, nil, []*ast.ParamDecl{valueParam}, nil, emptyBlock(), nil)

	boxDecl := ast.NewNominalDecl(zeroRange, "Box", ast.NominalStruct, []*ast.PlaceholderDecl{placeholder("T")}, nil, []*ast.FunDecl{ctor}, boxScope)
	declareNominal(moduleScope, boxDecl)
	ctor.Symbol = &ast.Symbol{Name: "new", Kind: ast.SymbolFunction, Decl: ctor}
	boxScope.Declare("new", ctor.Symbol)

	intBoxCall := ast.NewCallExpression(zeroRange, ident(moduleScope, "Box"), []ast.Argument{callArg("value", ast.NewIntLiteral(zeroRange, 1))}, nil)
	intBox := letBinding("intBox", nil, ast.OpCopy, intBoxCall)

	strBoxCall := ast.NewCallExpression(zeroRange, ident(moduleScope, "Box"), []ast.Argument{callArg("value", ast.NewStringLiteral(zeroRange, "s"))}, nil)
	strBox := letBinding("strBox", nil, ast.OpCopy, strBoxCall)

	module := ast.NewModule(zeroRange, "scenario4", []ast.Declaration{boxDecl, intBox, strBox}, moduleScope)

	_, diags, _ := TypeCheck(module, ctx)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	intType := resolvedTypeOf(intBox)
	intBound, ok := intType.(*BoundGenericType)
	if !ok {
		t.Fatalf("intBox: got %T (%s), want *BoundGenericType", intType, intType)
	}
	if got, ok := intBound.Bindings[tph]; !ok || got.String() != "Int" {
		t.Fatalf("intBox: T bound to %v, want Int", got)
	}

	strType := resolvedTypeOf(strBox)
	strBound, ok := strType.(*BoundGenericType)
	if !ok {
		t.Fatalf("strBox: got %T (%s), want *BoundGenericType", strType, strType)
	}
	if got, ok := strBound.Bindings[tph]; !ok || got.String() != "String" {
		t.Fatalf("strBox: T bound to %v, want String", got)
	}
}

// TestScenarioBinaryOperatorDispatch covers spec.md §8 scenario 5: a
// binary expression is typed by dispatching to the left operand's
// builtin operator method, and rewritten into the explicit call form.
func TestScenarioBinaryOperatorDispatch(t *testing.T) {
	ctx, builtins := newTestContext()
	moduleScope := ast.NewScope(builtins)

	intAdd := ast.NewBinaryExpression(zeroRange, ast.NewIntLiteral(zeroRange, 1), "+", ast.NewIntLiteral(zeroRange, 2))
	sum := letBinding("sum", nil, ast.OpCopy, intAdd)

	strAdd := ast.NewBinaryExpression(zeroRange, ast.NewStringLiteral(zeroRange, "a"), "+", ast.NewStringLiteral(zeroRange, "b"))
	joined := letBinding("joined", nil, ast.OpCopy, strAdd)

	module := ast.NewModule(zeroRange, "scenario5", []ast.Declaration{sum, joined}, moduleScope)

	_, diags, _ := TypeCheck(module, ctx)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	if got := resolvedTypeOf(sum); got == nil || got.String() != "Int" {
		t.Fatalf("sum: got %v, want Int", got)
	}
	if got := resolvedTypeOf(joined); got == nil || got.String() != "String" {
		t.Fatalf("joined: got %v, want String", got)
	}

	if intAdd.RewrittenCall == nil {
		t.Fatal("1 + 2 was never rewritten into a call")
	}
	sel, ok := intAdd.RewrittenCall.Callee.(*ast.SelectExpression)
	if !ok || sel.Name != "+" || sel.Owner != intAdd.Left {
		t.Fatalf("1 + 2 rewrite: got callee %#v, want Select(Left, \"+\")", intAdd.RewrittenCall.Callee)
	}
	if len(intAdd.RewrittenCall.Arguments) != 1 || intAdd.RewrittenCall.Arguments[0].Value != intAdd.Right {
		t.Fatalf("1 + 2 rewrite: got arguments %#v, want [Right]", intAdd.RewrittenCall.Arguments)
	}

	if strAdd.RewrittenCall == nil {
		t.Fatal(`"a" + "b" was never rewritten into a call`)
	}
}

// TestScenarioIllTypedBindingReportsAndContinues covers spec.md §8
// scenario 6: an annotated binding whose rvalue mismatches the
// annotation is one unsolvableConstraint(mismatch) diagnostic, the
// binding keeps its annotated type, and compilation does not abort.
func TestScenarioIllTypedBindingReportsAndContinues(t *testing.T) {
	ctx, builtins := newTestContext()
	moduleScope := ast.NewScope(builtins)

	bad := letBinding("x", simpleType(moduleScope, "Int"), ast.OpCopy, ast.NewBoolLiteral(zeroRange, true))
	after := letBinding("y", nil, ast.OpCopy, ast.NewIntLiteral(zeroRange, 7))

	module := ast.NewModule(zeroRange, "scenario6", []ast.Declaration{bad, after}, moduleScope)

	_, diags, _ := TypeCheck(module, ctx)

	var mismatches []Diagnostic
	for _, d := range diags {
		if d.Kind == UnsolvableConstraint && d.Cause == CauseMismatch {
			mismatches = append(mismatches, d)
		}
	}
	if len(mismatches) != 1 {
		t.Fatalf("got %d mismatch diagnostics, want exactly 1: %v", len(mismatches), diags)
	}

	if got := resolvedTypeOf(bad); got == nil || got.String() != "Int" {
		t.Fatalf("x: got %v, want Int (the annotation wins despite the mismatch)", got)
	}
	if got := resolvedTypeOf(after); got == nil || got.String() != "Int" {
		t.Fatalf("y: got %v, want Int — compilation must continue past the earlier failure", got)
	}
}
