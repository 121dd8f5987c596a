package typechecker

import "semcore/pkg/ast"

// status is the outcome of attempting one constraint against the current
// substitution (spec.md §4.3 step 2-3).
type status int

const (
	stSolved status = iota
	stDeferred
	stFailed
)

// Solver consumes a ConstraintSet batch and extends a SubstitutionTable.
// Per SPEC_FULL.md §4 engineering decision #4, one Solver instance is
// reused across every top-level statement in a module, solving each
// statement's constraints as an independent batch while the same
// SubstitutionTable (and the CompilerContext's type-variable counter)
// carries forward, so variable identity stays global even though
// disjunction backtracking search stays local to the statement that
// produced it.
type Solver struct {
	ctx      *CompilerContext
	builtins *ast.Scope
}

func NewSolver(ctx *CompilerContext, builtins *ast.Scope) *Solver {
	return &Solver{ctx: ctx, builtins: builtins}
}

// Solve drains constraints against subst, reporting diagnostics on ctx for
// anything that fails. It implements the worklist/backtracking loop of
// spec.md §4.3: constraints that can't yet be decided (an unresolved
// Member/Construction owner) are deferred to the next pass; a pass that
// makes no progress while deferred constraints remain fails all of them.
//
// Within a pass, plain constraints run before Disjunctions, and
// Disjunctions run in reverse emission order. The generator always emits
// a callee identifier's overload fork before the call's own shape fork
// (the identifier is generated first, the call wraps around it); trying
// them in reverse lets the call's argument shape pin the callee's type
// down before the overload fork has to choose among candidates that would
// otherwise all look equally viable with no calling context yet.
func (s *Solver) Solve(constraints []Constraint, subst *SubstitutionTable) {
	worklist := constraints
	for len(worklist) > 0 {
		progressed := false
		var deferred []Constraint

		var plain, disjunctions []Constraint
		for _, c := range worklist {
			if d, ok := c.(*Disjunction); ok {
				disjunctions = append(disjunctions, d)
			} else {
				plain = append(plain, c)
			}
		}

		run := func(c Constraint) {
			switch s.dispatch(c, subst, true) {
			case stSolved, stFailed:
				progressed = true
			case stDeferred:
				deferred = append(deferred, c)
			}
		}
		for _, c := range plain {
			run(c)
		}
		for i := len(disjunctions) - 1; i >= 0; i-- {
			run(disjunctions[i])
		}

		if !progressed && len(deferred) > 0 {
			for _, c := range deferred {
				s.fail(c, CauseMismatch, "typechecker: constraint on %s could not be resolved (owner never became concrete)", anchorDescription(c.Location()))
			}
			return
		}
		worklist = deferred
	}
}

func anchorDescription(loc SourceLocation) string {
	if loc.Anchor == AnchorCallArgument {
		return "call-argument"
	}
	return string(loc.Anchor)
}

// dispatch routes one constraint to its handler. In strict mode (used
// only while exploring a disjunction branch) a failure is never reported
// as a diagnostic — it just returns stFailed so the branch can be
// rejected and the next one tried.
func (s *Solver) dispatch(c Constraint, subst *SubstitutionTable, lenient bool) status {
	switch v := c.(type) {
	case *Equality:
		if s.unify(v.T, v.U, subst) {
			return stSolved
		}
		if lenient {
			s.fail(c, CauseMismatch, "typechecker: type mismatch, expected %s but found %s", s.ctx.Reify(subst, v.U), s.ctx.Reify(subst, v.T))
		}
		return stFailed
	case *Conformance:
		if s.conform(v.T, v.U, v.Op, subst) {
			return stSolved
		}
		if lenient {
			s.fail(c, CauseMismatch, "typechecker: %s cannot be bound to %s under '%s'", s.ctx.Reify(subst, v.T), s.ctx.Reify(subst, v.U), bindingOpLabel(v.Op))
		}
		return stFailed
	case *Member:
		return s.resolveMember(v, subst, lenient)
	case *Construction:
		return s.resolveConstruction(v, subst, lenient)
	case *Disjunction:
		return s.resolveDisjunction(v, subst, lenient)
	default:
		return stFailed
	}
}

func bindingOpLabel(op ast.BindingOperator) string {
	if op == "" {
		return "(none)"
	}
	return string(op)
}

func (s *Solver) fail(c Constraint, cause UnsolvableCause, format string, args ...any) {
	loc := c.Location()
	s.ctx.Report(newUnsolvable(cause, loc.Node, format, args...))
}

// ---- Equality / unification ----

func isErrorType(t Type) bool {
	_, ok := t.(*ErrorTy)
	return ok
}

// unify makes t and u structurally equal by extending subst, recursing
// into composite types and binding free variables (with an occurs-check)
// at the leaves. ErrorType is absorbing: it unifies with anything.
func (s *Solver) unify(t, u Type, subst *SubstitutionTable) bool {
	t = subst.Walk(t)
	u = subst.Walk(u)

	if isErrorType(t) || isErrorType(u) {
		return true
	}

	if tv, ok := t.(*TypeVariable); ok {
		if uv, ok := u.(*TypeVariable); ok && uv == tv {
			return true
		}
		return s.bindVar(tv, u, subst)
	}
	if uv, ok := u.(*TypeVariable); ok {
		return s.bindVar(uv, t, subst)
	}

	switch tt := t.(type) {
	case *BuiltinType:
		uu, ok := u.(*BuiltinType)
		return ok && uu.Name == tt.Name
	case *PlaceholderType:
		uu, ok := u.(*PlaceholderType)
		return ok && uu == tt
	case *NominalType:
		uu, ok := u.(*NominalType)
		return ok && uu == tt
	case *FunctionType:
		uu, ok := u.(*FunctionType)
		if !ok || len(uu.Params) != len(tt.Params) {
			return false
		}
		for i := range tt.Params {
			if tt.Params[i].Label != uu.Params[i].Label {
				return false
			}
			if !s.unify(tt.Params[i].Type, uu.Params[i].Type, subst) {
				return false
			}
		}
		if (tt.MethodSelf == nil) != (uu.MethodSelf == nil) {
			return false
		}
		if tt.MethodSelf != nil && !s.unify(tt.MethodSelf, uu.MethodSelf, subst) {
			return false
		}
		return s.unify(tt.Codomain, uu.Codomain, subst)
	case *OpenedNominalType:
		uu, ok := u.(*OpenedNominalType)
		if !ok || uu.Nominal != tt.Nominal {
			return false
		}
		for ph, v := range tt.Bindings {
			other, ok := uu.Bindings[ph]
			if !ok || !s.unify(v, other, subst) {
				return false
			}
		}
		return true
	case *BoundGenericType:
		uu, ok := u.(*BoundGenericType)
		if !ok || uu.Generic != tt.Generic {
			return false
		}
		for ph, v := range tt.Bindings {
			other, ok := uu.Bindings[ph]
			if !ok || !s.unify(v, other, subst) {
				return false
			}
		}
		return true
	case *Metatype:
		uu, ok := u.(*Metatype)
		return ok && s.unify(tt.Inner, uu.Inner, subst)
	case *QualifiedType:
		uu, ok := u.(*QualifiedType)
		if !ok {
			return s.unify(tt.Inner, u, subst)
		}
		return tt.Qualifiers == uu.Qualifiers && s.unify(tt.Inner, uu.Inner, subst)
	default:
		return false
	}
}

func (s *Solver) bindVar(v *TypeVariable, t Type, subst *SubstitutionTable) bool {
	if tv, ok := t.(*TypeVariable); ok && tv == v {
		return true
	}
	if subst.occursIn(v, t) {
		return false
	}
	subst.Bind(v, t)
	return true
}

// ---- Conformance ----

// conform implements spec.md §4.3 point 6 and the §4.3.1 qualifier table.
// t is the rvalue side, u the lvalue side, mirroring how the generator
// builds Conformance(value.type, target.type).
func (s *Solver) conform(t, u Type, op ast.BindingOperator, subst *SubstitutionTable) bool {
	tWalked := subst.Walk(t)
	uWalked := subst.Walk(u)
	if isErrorType(tWalked) || isErrorType(uWalked) {
		return true
	}

	tInner, tq := Unqualify(tWalked)
	uInner, uq := Unqualify(uWalked)

	if s.unify(tInner, uInner, subst) {
		_, tWasQualified := tWalked.(*QualifiedType)
		_, uWasQualified := uWalked.(*QualifiedType)
		if op == "" || !tWasQualified || !uWasQualified {
			return true
		}
		return qualifierRulesSatisfied(op, tq, uq)
	}

	// Subtype fallback: anything conforms to Anything.
	if b, ok := uInner.(*BuiltinType); ok && b.Name == BuiltinAnything {
		return true
	}
	return false
}

// qualifierRulesSatisfied implements the table in spec.md §4.3.1. rvalueQ
// and lvalueQ are only meaningful when both sides were explicitly
// qualified; conform only calls this once that's established.
func qualifierRulesSatisfied(op ast.BindingOperator, rvalueQ, lvalueQ Qualifier) bool {
	switch op {
	case ast.OpCopy:
		return true
	case ast.OpMove:
		return lvalueQ.Has(QualVal) && rvalueQ.Has(QualVal)
	case ast.OpRef:
		return lvalueQ.Has(QualRef)
	default:
		return true
	}
}

// ---- Member ----

func (s *Solver) resolveMember(m *Member, subst *SubstitutionTable, lenient bool) status {
	owner, pending := s.resolveOwner(m.Owner, subst)
	if pending {
		return stDeferred
	}

	candidates := s.bindMethodSelves(s.memberCandidates(owner, m.Name), owner, subst)
	switch len(candidates) {
	case 0:
		if lenient {
			s.fail(m, CauseMismatch, "typechecker: %s has no member named %q", owner, m.Name)
		}
		return stFailed
	case 1:
		if s.unify(candidates[0], m.U, subst) {
			return stSolved
		}
		if lenient {
			s.fail(m, CauseMismatch, "typechecker: member %q of %s has type %s, expected %s", m.Name, owner, candidates[0], s.ctx.Reify(subst, m.U))
		}
		return stFailed
	default:
		branches := make([]Constraint, len(candidates))
		for i, cand := range candidates {
			branches[i] = NewEquality(m.Location(), cand, m.U)
		}
		disjunction := NewDisjunction(m.Location(), branches...)
		return s.resolveDisjunction(disjunction, subst, lenient)
	}
}

// resolveOwner walks t through subst and unwraps any Metatype/QualifiedType
// layers around it, reporting whether something underneath is still an
// unresolved variable. subst.Walk alone only sees through a bare
// TypeVariable chain; it does not look inside a composite like
// "the metatype of v" (spec.md §4.2's implicit Select owner: Metatype(v)
// where v is the select's own still-unresolved fresh variable) to notice
// that v itself hasn't been pinned down yet. Without this, such an owner
// looks deceptively concrete and a Member constraint resolves against it
// immediately instead of waiting for v to become concrete.
func (s *Solver) resolveOwner(t Type, subst *SubstitutionTable) (Type, bool) {
	t = subst.Walk(t)
	switch v := t.(type) {
	case *TypeVariable:
		return t, true
	case *Metatype:
		inner, pending := s.resolveOwner(v.Inner, subst)
		return s.ctx.Metatype(inner), pending
	case *QualifiedType:
		inner, pending := s.resolveOwner(v.Inner, subst)
		return &QualifiedType{Inner: inner, Qualifiers: v.Qualifiers}, pending
	default:
		return t, false
	}
}

// bindMethodSelves unwraps spec.md §4.2's curried method shape for each
// candidate that has one: a struct method (FunDecl.Kind == FunctionMethod)
// is stored as the curried `(Self) -> (params...) -> codomain` FunctionType
// so an Ident reference to it (dispatch.go's filterBySpecialization) stays
// receiver-agnostic, but `owner.method` already has a concrete receiver —
// mirror filterBySpecialization's unwrap, unifying Self against owner (a
// formality, since owner is exactly where Self's binding came from) and
// returning the inner (params...) -> codomain shape so `owner.method(args)`
// unifies against an ordinary, uncurried function type in genCall.
func (s *Solver) bindMethodSelves(candidates []Type, owner Type, subst *SubstitutionTable) []Type {
	kept := make([]Type, 0, len(candidates))
	for _, cand := range candidates {
		fn, ok := cand.(*FunctionType)
		if !ok || fn.MethodSelf == nil {
			kept = append(kept, cand)
			continue
		}
		if !s.unify(fn.MethodSelf, owner, subst) {
			continue
		}
		kept = append(kept, &FunctionType{Params: fn.Params, Codomain: fn.Codomain, Placeholders: fn.Placeholders})
	}
	return kept
}

// memberCandidates returns the type of every member named name reachable
// on owner: a nominal's declared props/funs, a builtin's operator
// methods, or (for a metatype owner, the implicit static-access case) the
// same lookup against the metatype's inner type.
func (s *Solver) memberCandidates(owner Type, name string) []Type {
	switch o := owner.(type) {
	case *NominalType:
		return s.nominalMemberTypesByName(o, nil, name)
	case *OpenedNominalType:
		bindings := make(map[*PlaceholderType]Type, len(o.Bindings))
		for ph, v := range o.Bindings {
			bindings[ph] = v
		}
		return s.nominalMemberTypesByName(o.Nominal, bindings, name)
	case *BoundGenericType:
		if nom, ok := o.Generic.(*NominalType); ok {
			return s.nominalMemberTypesByName(nom, o.Bindings, name)
		}
		return nil
	case *BuiltinType:
		var types []Type
		for _, sym := range BuiltinMember(s.builtins, o.Name, name) {
			if t, ok := sym.PreboundType.(Type); ok {
				types = append(types, t)
			}
		}
		return types
	case *Metatype:
		return s.memberCandidates(o.Inner, name)
	case *QualifiedType:
		// A qualifier never changes which members a type has — `1 + 2`'s
		// owner is Int qualified {cst,stk,val}, but `+` is still looked up
		// on plain Int.
		return s.memberCandidates(o.Inner, name)
	default:
		return nil
	}
}

func (s *Solver) nominalMemberTypesByName(nom *NominalType, bindings map[*PlaceholderType]Type, name string) []Type {
	if nom.MemberScope == nil {
		return nil
	}
	syms := nom.MemberScope.Lookup(name)
	types := make([]Type, 0, len(syms))
	for _, sym := range syms {
		if sym.Decl == nil {
			continue
		}
		raw := ast.ResolvedType(sym.Decl)
		t, ok := raw.(Type)
		if !ok {
			continue
		}
		if len(bindings) > 0 {
			t = s.ctx.Close(t, bindings)
		}
		types = append(types, t)
	}
	return types
}

// ---- Construction ----

func (s *Solver) resolveConstruction(c *Construction, subst *SubstitutionTable, lenient bool) status {
	callee := subst.Walk(c.Callee)
	if _, ok := callee.(*TypeVariable); ok {
		return stDeferred
	}
	meta, ok := callee.(*Metatype)
	if !ok {
		if lenient {
			s.fail(c, CauseMismatch, "typechecker: %s is not a constructible type", callee)
		}
		return stFailed
	}
	nom, bindings := unwrapNominal(meta.Inner)
	if nom == nil {
		if lenient {
			s.fail(c, CauseMismatch, "typechecker: %s has no constructors", meta.Inner)
		}
		return stFailed
	}
	ctors := s.constructorSymbols(nom)
	switch len(ctors) {
	case 0:
		if lenient {
			s.fail(c, CauseMismatch, "typechecker: %s declares no constructor", nom.Name)
		}
		return stFailed
	case 1:
		return s.tryConstructor(c, ctors[0], bindings, subst, lenient)
	default:
		branches := make([]Constraint, len(ctors))
		for i, ctor := range ctors {
			branches[i] = &constructorBranch{constraintImpl: constraintImpl{Loc: c.Location()}, construction: c, ctor: ctor, bindings: bindings}
		}
		disjunction := NewDisjunction(c.Location(), branches...)
		return s.resolveDisjunction(disjunction, subst, lenient)
	}
}

// constructorBranch is an internal Disjunction branch kind used only by
// resolveConstruction; it is never produced by the generator.
type constructorBranch struct {
	constraintImpl
	construction *Construction
	ctor         *ast.FunDecl
	bindings     map[*PlaceholderType]Type
}

func (s *Solver) tryConstructor(c *Construction, ctor *ast.FunDecl, outerBindings map[*PlaceholderType]Type, subst *SubstitutionTable, lenient bool) status {
	raw := ast.ResolvedType(ctor)
	fnType, ok := raw.(*FunctionType)
	if !ok {
		if lenient {
			s.fail(c, CauseMismatch, "typechecker: constructor %q has no resolved signature", ctor.Name)
		}
		return stFailed
	}
	bindings := Bindings{}
	for ph, t := range outerBindings {
		bindings[ph] = t
	}
	opened := s.ctx.Open(fnType, bindings)
	if s.unify(opened, c.Fn, subst) {
		return stSolved
	}
	if lenient {
		s.fail(c, CauseMismatch, "typechecker: no constructor of %s matches the given arguments", c.Callee)
	}
	return stFailed
}

func unwrapNominal(t Type) (*NominalType, map[*PlaceholderType]Type) {
	switch v := t.(type) {
	case *NominalType:
		return v, nil
	case *OpenedNominalType:
		bindings := make(map[*PlaceholderType]Type, len(v.Bindings))
		for ph, tv := range v.Bindings {
			bindings[ph] = tv
		}
		return v.Nominal, bindings
	case *BoundGenericType:
		if nom, ok := v.Generic.(*NominalType); ok {
			return nom, v.Bindings
		}
	}
	return nil, nil
}

func (s *Solver) constructorSymbols(nom *NominalType) []*ast.FunDecl {
	if nom.MemberScope == nil {
		return nil
	}
	var out []*ast.FunDecl
	for _, sym := range nom.MemberScope.Lookup("new") {
		if fd, ok := sym.Decl.(*ast.FunDecl); ok && fd.Kind == ast.FunctionConstructor {
			out = append(out, fd)
		}
	}
	return out
}

// ---- Disjunction ----

// resolveDisjunction tries every branch, snapshotting the substitution
// before each (spec.md §4.3 step 3's fork/restore). It enumerates all
// branches rather than stopping at the first success so it can detect and
// report ambiguity, per SPEC_FULL.md §4 engineering decision #2: more
// than one viable branch is a diagnostic, not a silent pick, though the
// solver still deterministically continues with the first viable branch
// (source order) once it has reported the ambiguity.
func (s *Solver) resolveDisjunction(d *Disjunction, subst *SubstitutionTable, lenient bool) status {
	var successes []*SubstitutionTable
	budget := s.ctx.Config.MaxExploredBranches
	for i, branch := range d.Branches {
		if budget > 0 && i >= budget {
			break
		}
		trial := subst.Clone()
		if s.tryBranch(branch, trial) {
			successes = append(successes, trial)
		}
	}

	switch len(successes) {
	case 0:
		if lenient {
			s.fail(d, CauseNoViableOverload, "typechecker: no overload is viable for this call")
		}
		return stFailed
	case 1:
		subst.Adopt(successes[0])
		return stSolved
	default:
		if lenient {
			s.fail(d, CauseAmbiguous, "typechecker: call is ambiguous among %d overloads", len(successes))
		}
		subst.Adopt(successes[0])
		return stSolved
	}
}

// tryBranch solves one disjunction branch to completion in strict mode: a
// constructorBranch is expanded into its underlying Construction attempt;
// any other branch (ordinarily an Equality or a nested Disjunction) goes
// through dispatch directly. Deferred is treated as failure, since a
// disjunction is only forked once its surrounding constraints have made
// enough progress that a trial is meaningful.
func (s *Solver) tryBranch(c Constraint, trial *SubstitutionTable) bool {
	if cb, ok := c.(*constructorBranch); ok {
		return s.tryConstructor(cb.construction, cb.ctor, cb.bindings, trial, false) == stSolved
	}
	return s.dispatch(c, trial, false) == stSolved
}
