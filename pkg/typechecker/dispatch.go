package typechecker

import "semcore/pkg/ast"

// Dispatcher is the post-solver AST transformer of spec.md §4.4: it
// reifies every node's type slot by walking the substitution to a fixed
// point, and for every Ident picks the single declaration symbol
// consistent with the reified type.
type Dispatcher struct {
	ctx   *CompilerContext
	subst *SubstitutionTable
}

func NewDispatcher(ctx *CompilerContext, subst *SubstitutionTable) *Dispatcher {
	return &Dispatcher{ctx: ctx, subst: subst}
}

// Run walks module, reifying types and dispatching identifiers.
func (d *Dispatcher) Run(module *ast.Module) {
	for _, decl := range module.Declarations {
		d.visitDecl(decl)
	}
}

func (d *Dispatcher) reify(n ast.Node) Type {
	t := nodeType(n)
	if t == nil {
		t = d.ctx.ErrorType()
	}
	reified := d.ctx.Reify(d.subst, t)
	ast.SetResolvedType(n, reified)
	return reified
}

func (d *Dispatcher) visitDecl(decl ast.Declaration) {
	switch v := decl.(type) {
	case *ast.NominalDecl:
		d.reify(v)
		for _, prop := range v.Props {
			d.visitPropDecl(prop)
		}
		for _, fn := range v.Funs {
			d.visitFunDecl(fn)
		}
	case *ast.FunDecl:
		d.visitFunDecl(v)
	case *ast.PropDecl:
		d.visitPropDecl(v)
	}
}

func (d *Dispatcher) visitPropDecl(p *ast.PropDecl) {
	d.reify(p)
	if p.Value != nil {
		d.visitExpr(p.Value)
	}
}

func (d *Dispatcher) visitFunDecl(fn *ast.FunDecl) {
	d.reify(fn)
	for _, p := range fn.Params {
		d.reify(p)
	}
	if fn.Body != nil {
		d.visitBlock(fn.Body)
	}
}

func (d *Dispatcher) visitBlock(b *ast.BlockExpression) {
	for _, stmt := range b.Statements {
		d.visitStatement(stmt)
	}
	if b.Result != nil {
		d.visitExpr(b.Result)
	}
	d.reify(b)
}

func (d *Dispatcher) visitStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.BindingStatement:
		d.reify(s.Lvalue)
		d.visitExpr(s.Value)
	case *ast.ReturnStatement:
		if s.Value != nil {
			d.visitExpr(s.Value)
		}
	case *ast.ExprStatement:
		d.visitExpr(s.Value)
	}
}

func (d *Dispatcher) visitExpr(expr ast.Expression) {
	switch e := expr.(type) {
	case *ast.Ident:
		d.dispatchIdent(e)
	case *ast.BinaryExpression:
		d.visitExpr(e.Left)
		d.visitExpr(e.Right)
		d.reify(e)
		d.rewriteBinary(e)
	case *ast.CallExpression:
		d.visitExpr(e.Callee)
		for _, arg := range e.Arguments {
			d.visitExpr(arg.Value)
		}
		d.reify(e)
	case *ast.SelectExpression:
		if e.Owner != nil {
			d.visitExpr(e.Owner)
		}
		d.reify(e)
	case *ast.SubscriptExpression:
		d.visitExpr(e.Receiver)
		for _, arg := range e.Arguments {
			d.visitExpr(arg.Value)
		}
		d.reify(e)
	case *ast.LambdaExpression:
		for _, p := range e.Params {
			d.reify(p)
		}
		if e.Body != nil {
			d.visitBlock(e.Body)
		}
		d.reify(e)
	case *ast.IfExpression:
		d.visitExpr(e.Condition)
		d.visitBlock(e.Then)
		if e.Else != nil {
			d.visitBlock(e.Else)
		}
		d.reify(e)
	case *ast.BlockExpression:
		d.visitBlock(e)
	default:
		d.reify(expr)
	}
}

// dispatchIdent implements spec.md §4.4's identifier dispatch policy.
func (d *Dispatcher) dispatchIdent(id *ast.Ident) {
	reified := d.reify(id)

	if id.Symbol != nil {
		return // already resolved, e.g. a parameter's own binding occurrence
	}

	fnType, isFunction := reified.(*FunctionType)
	if !isFunction {
		syms := id.Scope.Lookup(id.Name)
		if len(syms) != 1 {
			d.ctx.Report(newDiagnostic(UndefinedSymbol, id, "typechecker: %q does not resolve to a single symbol", id.Name))
			return
		}
		id.Symbol = syms[0]
		return
	}

	candidates := id.Scope.LookupOverloadSet(id.Name)
	candidates = d.redirectConstructors(candidates, id)
	candidates = filterBySpecialization(reified, candidates)

	switch len(candidates) {
	case 0:
		d.ctx.Report(newUnsolvable(CauseNoViableOverload, id, "typechecker: no declaration of %q matches its inferred type %s", id.Name, fnType))
	case 1:
		id.Symbol = candidates[0]
	default:
		d.ctx.Report(newUnsolvable(CauseAmbiguous, id, "typechecker: %q is ambiguous among %d candidates", id.Name, len(candidates)))
		id.Symbol = candidates[0]
	}
}

// redirectConstructors implements "if the only symbol is a metatype of a
// nominal type, the identifier is a constructor invocation: redirect
// choices to that nominal's new member symbols" (spec.md §4.4).
func (d *Dispatcher) redirectConstructors(candidates []*ast.Symbol, id *ast.Ident) []*ast.Symbol {
	if len(candidates) != 1 {
		return candidates
	}
	t := symbolType(candidates[0])
	meta, ok := t.(*Metatype)
	if !ok {
		return candidates
	}
	nom, ok := meta.Inner.(*NominalType)
	if !ok || nom.MemberScope == nil {
		return candidates
	}
	ctorSyms := nom.MemberScope.Symbols["new"]
	if len(ctorSyms) == 0 {
		return candidates
	}
	return ctorSyms
}

// filterBySpecialization keeps only the candidates whose declared type
// reified is specialized by node's reified type, per spec.md §4.4's
// specialization check: placeholders are treated as bindable variables.
func filterBySpecialization(node Type, candidates []*ast.Symbol) []*ast.Symbol {
	var kept []*ast.Symbol
	for _, cand := range candidates {
		candType := symbolType(cand)
		if candType == nil {
			continue
		}
		target := candType
		if fn, ok := candType.(*FunctionType); ok && fn.MethodSelf != nil {
			// Unwrap the curried self-parameter: an Ident never refers to
			// an already-bound receiver, so compare against the inner
			// (params...) -> codomain shape.
			target = &FunctionType{Params: fn.Params, Codomain: fn.Codomain, Placeholders: fn.Placeholders}
		}
		if specializes(node, target, map[*PlaceholderType]Type{}) {
			kept = append(kept, cand)
		}
	}
	return kept
}

// specializes reports whether node is a valid instantiation of candidate,
// recursively matching placeholders as bindable variables (consistently,
// via bindings).
func specializes(node, candidate Type, bindings map[*PlaceholderType]Type) bool {
	switch c := candidate.(type) {
	case *PlaceholderType:
		if bound, ok := bindings[c]; ok {
			return typesIdentical(bound, node)
		}
		bindings[c] = node
		return true
	case *FunctionType:
		n, ok := node.(*FunctionType)
		if !ok || len(n.Params) != len(c.Params) {
			return false
		}
		for i := range c.Params {
			if !specializes(n.Params[i].Type, c.Params[i].Type, bindings) {
				return false
			}
		}
		return specializes(n.Codomain, c.Codomain, bindings)
	default:
		return typesIdentical(node, candidate)
	}
}

// typesIdentical compares two fully-reified types (no TypeVariable, since
// dispatch only runs after solving succeeds).
func typesIdentical(a, b Type) bool {
	if a == b {
		return true
	}
	switch av := a.(type) {
	case *BuiltinType:
		bv, ok := b.(*BuiltinType)
		return ok && av.Name == bv.Name
	case *Metatype:
		bv, ok := b.(*Metatype)
		return ok && typesIdentical(av.Inner, bv.Inner)
	case *BoundGenericType:
		bv, ok := b.(*BoundGenericType)
		if !ok || av.Generic != bv.Generic || len(av.Bindings) != len(bv.Bindings) {
			return false
		}
		for ph, t := range av.Bindings {
			other, ok := bv.Bindings[ph]
			if !ok || !typesIdentical(t, other) {
				return false
			}
		}
		return true
	case *FunctionType:
		bv, ok := b.(*FunctionType)
		if !ok || len(av.Params) != len(bv.Params) {
			return false
		}
		for i := range av.Params {
			if !typesIdentical(av.Params[i].Type, bv.Params[i].Type) {
				return false
			}
		}
		return typesIdentical(av.Codomain, bv.Codomain)
	default:
		return false
	}
}

// rewriteBinary turns a dispatched binary expression into the explicit
// Call(Select(L, op), [R]) form spec.md §4.4 describes, so downstream
// passes see a uniform invocation.
func (d *Dispatcher) rewriteBinary(b *ast.BinaryExpression) {
	opRange := b.SourceRange()
	selectExpr := ast.NewSelectExpression(opRange, b.Left, b.Op)
	ast.SetResolvedType(selectExpr, nodeType(b))
	call := ast.NewCallExpression(opRange, selectExpr, []ast.Argument{{Value: b.Right}}, nil)
	ast.SetResolvedType(call, nodeType(b))
	b.RewrittenCall = call
}
