package typechecker

import "semcore/pkg/ast"

// The core never builds Scope/Symbol itself during a real compilation —
// that is the name binder's job (spec.md §1, §6). These helpers stand in
// for that name binder so tests can hand the checker a realistic,
// already-resolved-scope AST without a parser.

var zeroRange ast.Range

func newTestContext() (*CompilerContext, *ast.Scope) {
	ctx := NewContext(nil)
	return ctx, NewBuiltinScope(ctx)
}

func simpleType(scope *ast.Scope, name string, specializations ...ast.TypeExpr) *ast.SimpleTypeExpr {
	return ast.NewSimpleTypeExpr(zeroRange, name, scope, specializations)
}

func ident(scope *ast.Scope, name string) *ast.Ident {
	return ast.NewIdent(zeroRange, name, scope)
}

func param(label, name string, annotation ast.TypeExpr) *ast.ParamDecl {
	return ast.NewParamDecl(zeroRange, label, name, annotation, nil)
}

func placeholder(name string) *ast.PlaceholderDecl {
	return ast.NewPlaceholderDecl(zeroRange, name)
}

func emptyBlock() *ast.BlockExpression {
	return ast.NewBlockExpression(zeroRange, nil, nil, nil)
}

func declareFun(scope *ast.Scope, fn *ast.FunDecl, overloadable bool) {
	fn.Symbol = &ast.Symbol{Name: fn.Name, Kind: ast.SymbolFunction, Decl: fn, IsOverloadable: overloadable}
	scope.Declare(fn.Name, fn.Symbol)
}

func declareNominal(scope *ast.Scope, decl *ast.NominalDecl) {
	decl.Symbol = &ast.Symbol{Name: decl.Name, Kind: ast.SymbolNominal, Decl: decl}
	scope.Declare(decl.Name, decl.Symbol)
}

func declareProp(scope *ast.Scope, prop *ast.PropDecl) {
	scope.Declare(prop.Name, &ast.Symbol{Name: prop.Name, Kind: ast.SymbolProp, Decl: prop})
}

func letBinding(name string, annotation ast.TypeExpr, op ast.BindingOperator, value ast.Expression) *ast.PropDecl {
	return ast.NewPropDecl(zeroRange, name, annotation, op, value)
}

func callArg(label string, value ast.Expression) ast.Argument {
	return ast.Argument{Label: label, Value: value}
}

func resolvedTypeOf(n ast.Node) Type {
	t, _ := ast.ResolvedType(n).(Type)
	return t
}
