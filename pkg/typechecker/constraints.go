package typechecker

import "semcore/pkg/ast"

// Anchor names the semantic role a constraint's source location plays,
// purely for diagnostic attribution (spec.md §3.2).
type Anchor string

const (
	AnchorAnnotation    Anchor = "annotation"
	AnchorCodomain      Anchor = "codomain"
	AnchorRvalue        Anchor = "rvalue"
	AnchorCallArgument  Anchor = "call-argument"
	AnchorBinaryOperator Anchor = "binary-operator"
	AnchorIdentifier    Anchor = "identifier"
	AnchorSelect        Anchor = "select"
)

// SourceLocation anchors a constraint to the AST node that produced it and
// the semantic role it plays on that node.
type SourceLocation struct {
	Node   ast.Node
	Anchor Anchor
	Index  int // used by AnchorCallArgument for the argument position
}

// Constraint is the closed sum of spec.md §3.2's five kinds.
type Constraint interface {
	constraintMarker()
	Location() SourceLocation
}

type constraintImpl struct {
	Loc SourceLocation
}

func (constraintImpl) constraintMarker()       {}
func (c constraintImpl) Location() SourceLocation { return c.Loc }

// Equality requires T and U to unify exactly.
type Equality struct {
	constraintImpl
	T, U Type
}

func NewEquality(loc SourceLocation, t, u Type) *Equality {
	return &Equality{constraintImpl: constraintImpl{Loc: loc}, T: t, U: u}
}

// Conformance requires T to be conformant to U: unifiable, a subtype, or
// qualifier-compatible under a binding operator (spec.md §4.3.1). Op is
// the binding operator in effect, or "" when no binding-operator context
// applies (e.g. a call argument or a binary operator's right operand).
type Conformance struct {
	constraintImpl
	T, U Type
	Op   ast.BindingOperator
}

func NewConformance(loc SourceLocation, t, u Type, op ast.BindingOperator) *Conformance {
	return &Conformance{constraintImpl: constraintImpl{Loc: loc}, T: t, U: u, Op: op}
}

// Member requires Owner to have a member named Name of type unifiable
// with U.
type Member struct {
	constraintImpl
	Owner Type
	Name  string
	U     Type
}

func NewMember(loc SourceLocation, owner Type, name string, u Type) *Member {
	return &Member{constraintImpl: constraintImpl{Loc: loc}, Owner: owner, Name: name, U: u}
}

// Construction requires Callee to be a metatype of a nominal type with a
// constructor matching Fn.
type Construction struct {
	constraintImpl
	Callee Type
	Fn     Type
}

func NewConstruction(loc SourceLocation, callee, fn Type) *Construction {
	return &Construction{constraintImpl: constraintImpl{Loc: loc}, Callee: callee, Fn: fn}
}

// Disjunction requires exactly one of Branches to be satisfiable. Which
// branch won is never recorded on the constraint itself: the dispatcher's
// Ident resolution (spec.md §4.4) re-derives the winning candidate from
// the reified type and the scope's overload set directly, since a
// Disjunction's branches are Equality/Construction constraints, not the
// symbol candidates dispatch actually needs — there is no branch-index to
// symbol-index mapping to hand off in the first place.
type Disjunction struct {
	constraintImpl
	Branches []Constraint
}

func NewDisjunction(loc SourceLocation, branches ...Constraint) *Disjunction {
	return &Disjunction{constraintImpl: constraintImpl{Loc: loc}, Branches: branches}
}

// ConstraintSet is the append-only-during-generation, drain-only-during-
// solving accumulator spec.md §3.4/§5 describes.
type ConstraintSet struct {
	items []Constraint
}

func NewConstraintSet() *ConstraintSet { return &ConstraintSet{} }

func (cs *ConstraintSet) Add(c Constraint) { cs.items = append(cs.items, c) }

// Drain removes and returns every constraint currently queued, leaving the
// set empty so the next statement-sized batch (engineering decision #4)
// starts clean.
func (cs *ConstraintSet) Drain() []Constraint {
	items := cs.items
	cs.items = nil
	return items
}

func (cs *ConstraintSet) Len() int { return len(cs.items) }
