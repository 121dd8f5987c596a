package typechecker

import (
	"semcore/pkg/ast"
)

// Generator is the ConstraintCreator of spec.md §4.2: a single traversal
// that assigns a fresh TypeVariable to every expression whose type isn't
// syntactically fixed and emits the constraint encoding its semantics.
// Per SPEC_FULL.md §4 engineering decision #4, Generator does not hand
// the whole module's constraints to the solver at once; it runs two
// passes — headers, then bodies — solving each declaration's or
// statement's own batch immediately so a disjunction's backtracking
// search never has to see unrelated, unsolved work. Headers-before-
// bodies is a generalization spec.md's algorithm leaves implicit: it
// lets one top-level function call another declared later in the same
// module, the way every one of spec.md §8's scenarios assumes functions
// are visible regardless of declaration order.
type Generator struct {
	ctx      *CompilerContext
	solver   *Solver
	subst    *SubstitutionTable
	funcCtx  []*FunctionType // codomain stack for ReturnStatement's Equality target
}

func NewGenerator(ctx *CompilerContext, builtins *ast.Scope) *Generator {
	return &Generator{
		ctx:    ctx,
		solver: NewSolver(ctx, builtins),
		subst:  NewSubstitutionTable(),
	}
}

// CheckModule runs both passes over module and returns the substitution
// table threaded through them; TypeCheck in checker.go drives the
// dispatcher from it afterward.
func (g *Generator) CheckModule(module *ast.Module) *SubstitutionTable {
	for _, decl := range module.Declarations {
		g.genHeader(decl)
	}
	for _, decl := range module.Declarations {
		g.genBody(decl)
	}
	return g.subst
}

// solve drains one statement/declaration-sized batch of constraints
// against the running substitution, exactly as engineering decision #4
// describes.
func (g *Generator) solve() {
	batch := g.ctx.Constraints.Drain()
	if len(batch) == 0 {
		return
	}
	g.solver.Solve(batch, g.subst)
}

func (g *Generator) emit(c Constraint) { g.ctx.Constraints.Add(c) }

func (g *Generator) freshVar(n ast.Node) *TypeVariable {
	v := g.ctx.NewTypeVariable()
	ast.SetResolvedType(n, v)
	return v
}

func (g *Generator) setType(n ast.Node, t Type) { ast.SetResolvedType(n, t) }

func nodeType(n ast.Node) Type {
	t, _ := ast.ResolvedType(n).(Type)
	return t
}

// ---- headers ----

func (g *Generator) genHeader(decl ast.Declaration) {
	switch d := decl.(type) {
	case *ast.NominalDecl:
		g.genNominalHeader(d)
	case *ast.FunDecl:
		g.genFunHeader(d)
	case *ast.PropDecl:
		g.genPropHeader(d)
	}
}

func (g *Generator) genNominalHeader(d *ast.NominalDecl) {
	nom := g.ctx.NominalType(d)
	g.setType(d, g.ctx.Metatype(nom))
	for _, prop := range d.Props {
		g.genPropHeader(prop)
	}
	for _, fn := range d.Funs {
		g.genFunHeader(fn)
	}
}

// genFunHeader synthesizes fn's FunctionType from its declared shape
// (spec.md §4.2's "Function declaration" bullet) and records it as fn's
// type; it emits no constraints. It does not descend into the body — that
// happens in genBody (genFunBody emits the Equality(actual-codomain,
// declared-codomain) constraint), once every sibling header in the module
// has a type.
func (g *Generator) genFunHeader(fn *ast.FunDecl) {
	params := make([]FunctionParam, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = FunctionParam{Label: p.Label, Type: g.paramType(p)}
	}

	var declaredCodomain Type
	if fn.Codomain != nil {
		declaredCodomain = g.resolveTypeExpr(fn.Codomain)
	} else {
		declaredCodomain = g.ctx.Builtin(BuiltinNothing)
	}

	var placeholders []*PlaceholderType
	for _, tp := range fn.TypeParams {
		placeholders = append(placeholders, g.ctx.Placeholder(fn.Name, tp.Name))
	}

	var methodSelf Type
	if fn.Kind == ast.FunctionMethod && fn.EnclosingNominal != nil {
		methodSelf = g.ctx.NominalType(fn.EnclosingNominal)
	}

	if fn.Kind == ast.FunctionConstructor && fn.EnclosingNominal != nil {
		// The constructor's codomain must equal the enclosing type's Self
		// (spec.md §4.2); placeholders come from the nominal, not the
		// function, so Box<T>'s `new` shares T with Box itself.
		nom := g.ctx.NominalType(fn.EnclosingNominal)
		declaredCodomain = nom
		placeholders = append(placeholders, nom.Placeholders...)
	}

	fnType := g.ctx.FunctionType(params, declaredCodomain, placeholders, methodSelf)
	g.setType(fn, fnType)
}

func (g *Generator) paramType(p *ast.ParamDecl) Type {
	var t Type
	if p.Annotation != nil {
		t = g.resolveTypeExpr(p.Annotation)
	} else {
		t = g.ctx.ErrorType()
		g.ctx.Report(newDiagnostic(InvalidTypeIdentifier, p, "typechecker: parameter %q has no type annotation", p.Name))
	}
	g.setType(p, t)
	return t
}

func (g *Generator) genPropHeader(prop *ast.PropDecl) {
	loc := SourceLocation{Node: prop, Anchor: AnchorAnnotation}
	nodeVar := g.freshVar(prop)
	if prop.Annotation != nil {
		annotated := g.resolveTypeExpr(prop.Annotation)
		g.emit(NewEquality(loc, nodeVar, annotated))
	}
	if prop.Value != nil {
		g.genExpr(prop.Value)
		g.emit(NewConformance(SourceLocation{Node: prop, Anchor: AnchorRvalue}, nodeType(prop.Value), nodeVar, prop.Op))
	}
	g.solve()
}

// ---- bodies ----

func (g *Generator) genBody(decl ast.Declaration) {
	switch d := decl.(type) {
	case *ast.NominalDecl:
		for _, fn := range d.Funs {
			g.genFunBody(fn)
		}
	case *ast.FunDecl:
		g.genFunBody(d)
	}
}

// genFunBody visits fn's body and, for a regular function or method,
// closes spec.md §4.2's "Function declaration" bullet by emitting
// Equality(actual-codomain, declared-codomain) between the body's own
// result type and the header's declared codomain — the same constraint
// genLambda already emits for a lambda body. A constructor or destructor
// is exempt: its body is a side-effecting initializer/finalizer, not a
// value-producing expression (scenario 4 of §8's `new(value: T) {}` has
// no trailing expression at all), so nothing should force its block's
// type to equal the constructed type.
func (g *Generator) genFunBody(fn *ast.FunDecl) {
	if fn.Body == nil {
		return
	}
	fnType, _ := nodeType(fn).(*FunctionType)
	g.funcCtx = append(g.funcCtx, fnType)
	g.genBlockStatements(fn.Body)
	if fnType != nil && (fn.Kind == ast.FunctionRegular || fn.Kind == ast.FunctionMethod) {
		g.emit(NewEquality(SourceLocation{Node: fn, Anchor: AnchorCodomain}, nodeType(fn.Body), fnType.Codomain))
		g.solve()
	}
	g.funcCtx = g.funcCtx[:len(g.funcCtx)-1]
}

// genBlockStatements solves each statement in block independently (the
// per-statement half of engineering decision #4), then, if the block has
// a trailing result expression, solves that as its own final batch.
func (g *Generator) genBlockStatements(block *ast.BlockExpression) {
	for _, stmt := range block.Statements {
		g.genStatement(stmt)
		g.solve()
	}
	if block.Result != nil {
		g.genExpr(block.Result)
		g.solve()
		g.setType(block, nodeType(block.Result))
	} else {
		g.setType(block, g.ctx.Builtin(BuiltinNothing))
	}
}

func (g *Generator) genStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.BindingStatement:
		g.genBindingStatement(s)
	case *ast.ReturnStatement:
		g.genReturnStatement(s)
	case *ast.ExprStatement:
		g.genExpr(s.Value)
	}
}

// genBindingStatement implements spec.md §4.2's "Binding statement"
// bullet, folding in the same annotation-equality handling the Property
// declaration bullet describes (scenario 6 of §8 requires a `let` with
// an explicit annotation to behave identically to an annotated prop).
func (g *Generator) genBindingStatement(s *ast.BindingStatement) {
	lvalueVar := g.freshVar(s.Lvalue)
	if s.Annotation != nil {
		annotated := g.resolveTypeExpr(s.Annotation)
		g.emit(NewEquality(SourceLocation{Node: s, Anchor: AnchorAnnotation}, lvalueVar, annotated))
	}
	g.genExpr(s.Value)
	g.emit(NewConformance(SourceLocation{Node: s, Anchor: AnchorRvalue}, nodeType(s.Value), lvalueVar, s.Op))
}

func (g *Generator) genReturnStatement(s *ast.ReturnStatement) {
	var codomain Type = g.ctx.Builtin(BuiltinNothing)
	if len(g.funcCtx) > 0 && g.funcCtx[len(g.funcCtx)-1] != nil {
		codomain = g.funcCtx[len(g.funcCtx)-1].Codomain
	}
	loc := SourceLocation{Node: s, Anchor: AnchorCodomain}
	if s.Value == nil {
		g.emit(NewEquality(loc, codomain, g.ctx.Builtin(BuiltinNothing)))
		return
	}
	g.genExpr(s.Value)
	g.emit(NewEquality(loc, nodeType(s.Value), codomain))
}

// ---- expressions ----

func (g *Generator) genExpr(expr ast.Expression) {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		g.setType(e, g.literalType(BuiltinInt))
	case *ast.FloatLiteral:
		g.setType(e, g.literalType(BuiltinFloat))
	case *ast.StringLiteral:
		g.setType(e, g.literalType(BuiltinString))
	case *ast.BoolLiteral:
		g.setType(e, g.literalType(BuiltinBool))
	case *ast.NilLiteral:
		g.setType(e, g.literalType(BuiltinNothing))
	case *ast.Ident:
		g.genIdentifier(e)
	case *ast.BinaryExpression:
		g.genBinary(e)
	case *ast.CallExpression:
		g.genCall(e)
	case *ast.SelectExpression:
		g.genSelect(e)
	case *ast.SubscriptExpression:
		g.genSubscript(e)
	case *ast.LambdaExpression:
		g.genLambda(e)
	case *ast.IfExpression:
		g.genIf(e)
	case *ast.BlockExpression:
		g.genBlockStatements(e)
	}
}

// literalType implements spec.md §4.2's Literal rule: a literal's type is
// the corresponding builtin, qualified {cst, stk, val} unconditionally —
// a literal is never itself addressable as an lvalue, regardless of the
// binding operator its value eventually flows into.
func (g *Generator) literalType(name string) Type {
	return &QualifiedType{Inner: g.ctx.Builtin(name), Qualifiers: QualCst | QualStk | QualVal}
}

// genIdentifier implements spec.md §4.2's Identifier bullet: zero symbols
// is an undefinedSymbol diagnostic with ErrorType, one symbol is a direct
// Equality, more than one is a Disjunction of per-symbol equalities
// (overload resolution deferred to the solver). Each reference opens the
// symbol's declared type fresh (spec.md §4.1): a generic declaration's
// placeholders must become new type variables per use site, or every call
// to the same polymorphic function would be forced to share one
// instantiation of T.
func (g *Generator) genIdentifier(id *ast.Ident) {
	v := g.freshVar(id)
	syms := id.Scope.Lookup(id.Name)
	loc := SourceLocation{Node: id, Anchor: AnchorIdentifier}
	switch len(syms) {
	case 0:
		g.ctx.Report(newDiagnostic(UndefinedSymbol, id, "typechecker: undefined symbol %q", id.Name))
		g.setType(id, g.ctx.ErrorType())
	case 1:
		g.emit(NewEquality(loc, v, g.ctx.Open(symbolType(syms[0]), Bindings{})))
	default:
		branches := make([]Constraint, len(syms))
		for i, sym := range syms {
			branches[i] = NewEquality(loc, v, g.ctx.Open(symbolType(sym), Bindings{}))
		}
		g.emit(NewDisjunction(loc, branches...))
	}
}

func symbolType(sym *ast.Symbol) Type {
	if sym.PreboundType != nil {
		if t, ok := sym.PreboundType.(Type); ok {
			return t
		}
	}
	if sym.Decl != nil {
		if t, ok := ast.ResolvedType(sym.Decl).(Type); ok {
			return t
		}
	}
	return nil
}

// genBinary treats `L op R` as `L.op(R)`, per spec.md §4.2.
func (g *Generator) genBinary(b *ast.BinaryExpression) {
	g.genExpr(b.Left)
	g.genExpr(b.Right)

	rFresh := g.ctx.NewTypeVariable()
	codomain := g.freshVar(b)
	fnType := g.ctx.FunctionType([]FunctionParam{{Type: rFresh}}, codomain, nil, nil)

	g.emit(NewConformance(SourceLocation{Node: b.Right, Anchor: AnchorRvalue}, nodeType(b.Right), rFresh, ""))
	g.emit(NewMember(SourceLocation{Node: b, Anchor: AnchorBinaryOperator}, nodeType(b.Left), b.Op, fnType))
}

// genCall implements spec.md §4.2's Call expression bullet: the callee
// may be a function value or a type's metatype, so the generator emits a
// Disjunction leaving the choice to the solver.
func (g *Generator) genCall(c *ast.CallExpression) {
	g.genExpr(c.Callee)
	params := make([]FunctionParam, len(c.Arguments))
	for i, arg := range c.Arguments {
		g.genExpr(arg.Value)
		// The Disjunction branches below match callee shape by structural
		// unification, not by Conformance, so qualifiers (e.g. a literal's
		// {cst,stk,val}) must not leak into the synthesized param type —
		// the Conformance emitted just below still sees the real, qualified
		// argument type on its T side.
		argType, _ := Unqualify(nodeType(arg.Value))
		params[i] = FunctionParam{Label: arg.Label, Type: argType}
	}
	codomain := g.freshVar(c)
	fnType := g.ctx.FunctionType(params, codomain, nil, nil)

	for i, arg := range c.Arguments {
		g.emit(NewConformance(SourceLocation{Node: arg.Value, Anchor: AnchorCallArgument, Index: i}, nodeType(arg.Value), params[i].Type, ""))
	}

	loc := SourceLocation{Node: c, Anchor: AnchorIdentifier}
	g.emit(NewDisjunction(loc,
		NewEquality(loc, nodeType(c.Callee), fnType),
		NewConstruction(loc, nodeType(c.Callee), fnType),
	))
}

// genSelect implements spec.md §4.2's Select expression bullet. When
// Owner is nil, the implicit owner is the metatype of the select's own
// type (static member access).
func (g *Generator) genSelect(sel *ast.SelectExpression) {
	v := g.freshVar(sel)
	var owner Type
	if sel.Owner != nil {
		g.genExpr(sel.Owner)
		owner = nodeType(sel.Owner)
	} else {
		owner = g.ctx.Metatype(v)
	}
	g.emit(NewMember(SourceLocation{Node: sel, Anchor: AnchorSelect}, owner, sel.Name, v))
}

// genSubscript is analogous to Call (spec.md §4.2), dispatched against
// the receiver's `[]` member instead of a named method.
func (g *Generator) genSubscript(sub *ast.SubscriptExpression) {
	g.genExpr(sub.Receiver)
	params := make([]FunctionParam, len(sub.Arguments))
	for i, arg := range sub.Arguments {
		g.genExpr(arg.Value)
		argType, _ := Unqualify(nodeType(arg.Value))
		params[i] = FunctionParam{Label: arg.Label, Type: argType}
	}
	codomain := g.freshVar(sub)
	fnType := g.ctx.FunctionType(params, codomain, nil, nil)
	for i, arg := range sub.Arguments {
		g.emit(NewConformance(SourceLocation{Node: arg.Value, Anchor: AnchorCallArgument, Index: i}, nodeType(arg.Value), params[i].Type, ""))
	}
	g.emit(NewMember(SourceLocation{Node: sub, Anchor: AnchorSelect}, nodeType(sub.Receiver), "[]", fnType))
}

// genLambda is analogous to a (non-method) function declaration, per
// spec.md §4.2.
func (g *Generator) genLambda(l *ast.LambdaExpression) {
	params := make([]FunctionParam, len(l.Params))
	for i, p := range l.Params {
		params[i] = FunctionParam{Label: p.Label, Type: g.paramType(p)}
	}
	var codomain Type
	if l.Codomain != nil {
		codomain = g.resolveTypeExpr(l.Codomain)
	} else {
		codomain = g.ctx.Builtin(BuiltinNothing)
	}
	var placeholders []*PlaceholderType
	for _, tp := range l.TypeParams {
		placeholders = append(placeholders, g.ctx.Placeholder("lambda", tp.Name))
	}
	fnType := g.ctx.FunctionType(params, codomain, placeholders, nil)
	g.setType(l, fnType)

	g.funcCtx = append(g.funcCtx, fnType)
	if l.Body != nil {
		g.genBlockStatements(l.Body)
		g.emit(NewEquality(SourceLocation{Node: l, Anchor: AnchorCodomain}, nodeType(l.Body), codomain))
	}
	g.funcCtx = g.funcCtx[:len(g.funcCtx)-1]
}

// genIf implements spec.md §4.2's If expression bullet: the condition
// must be Bool, and the result type is the join of both branches (via a
// pairwise Equality) when Else is present, or Nothing otherwise.
func (g *Generator) genIf(ifExpr *ast.IfExpression) {
	g.genExpr(ifExpr.Condition)
	g.emit(NewEquality(SourceLocation{Node: ifExpr.Condition, Anchor: AnchorRvalue}, nodeType(ifExpr.Condition), g.ctx.Builtin(BuiltinBool)))

	g.genBlockStatements(ifExpr.Then)
	if ifExpr.Else != nil {
		g.genBlockStatements(ifExpr.Else)
		g.emit(NewEquality(SourceLocation{Node: ifExpr, Anchor: AnchorRvalue}, nodeType(ifExpr.Then), nodeType(ifExpr.Else)))
		g.setType(ifExpr, nodeType(ifExpr.Then))
	} else {
		g.setType(ifExpr, g.ctx.Builtin(BuiltinNothing))
	}
}

// resolveTypeExpr converts a syntactic TypeExpr into a Type, per
// spec.md §6/§7's invalidTypeIdentifier/nonGenericType/
// superfluousSpecialization diagnostics.
func (g *Generator) resolveTypeExpr(te ast.TypeExpr) Type {
	switch t := te.(type) {
	case *ast.SimpleTypeExpr:
		return g.resolveSimpleTypeExpr(t)
	case *ast.FunctionTypeExpr:
		params := make([]FunctionParam, len(t.Params))
		for i, p := range t.Params {
			params[i] = FunctionParam{Type: g.resolveTypeExpr(p)}
		}
		codomain := g.resolveTypeExpr(t.Codomain)
		return g.ctx.FunctionType(params, codomain, nil, nil)
	case *ast.QualifiedTypeExpr:
		q := ParseQualifiers(t.Qualifiers)
		if !g.ctx.Config.IsValidQualifierCombination(q) {
			g.ctx.Report(newDiagnostic(InvalidQualifierCombination, t, "typechecker: %s is not an admissible qualifier combination", q))
		}
		return &QualifiedType{Inner: g.resolveTypeExpr(t.Inner), Qualifiers: q}
	default:
		return g.ctx.ErrorType()
	}
}

func (g *Generator) resolveSimpleTypeExpr(t *ast.SimpleTypeExpr) Type {
	syms := t.Scope.Lookup(t.Name)
	if len(syms) == 0 {
		g.ctx.Report(newDiagnostic(InvalidTypeIdentifier, t, "typechecker: %q does not name a type", t.Name))
		return g.ctx.ErrorType()
	}
	named := symbolType(syms[0])
	meta, ok := named.(*Metatype)
	if !ok {
		g.ctx.Report(newDiagnostic(InvalidTypeIdentifier, t, "typechecker: %q does not name a type", t.Name))
		return g.ctx.ErrorType()
	}
	inner := meta.Inner
	nom, isNominal := inner.(*NominalType)
	if len(t.Specializations) == 0 {
		return inner
	}
	if !isNominal || len(nom.Placeholders) == 0 {
		g.ctx.Report(newDiagnostic(NonGenericType, t, "typechecker: %q is not generic", t.Name))
		return inner
	}
	if len(t.Specializations) > len(nom.Placeholders) {
		g.ctx.Report(newDiagnostic(SuperfluousSpecialization, t, "typechecker: too many type arguments for %q", t.Name))
	}
	bindings := make(map[*PlaceholderType]Type, len(nom.Placeholders))
	for i, ph := range nom.Placeholders {
		if i < len(t.Specializations) {
			bindings[ph] = g.resolveTypeExpr(t.Specializations[i])
		} else {
			bindings[ph] = ph
		}
	}
	return g.ctx.BoundGeneric(nom, bindings)
}
