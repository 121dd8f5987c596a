package ast

// TypeExpr variants are the syntactic type annotations the parser attaches
// to declarations; they are distinct from typechecker.Type, which is what
// the core resolves them to. The generator reads these; it never writes
// them.

// SimpleTypeExpr names a nominal or builtin type by identifier, e.g. `Int`
// or `Box`, optionally followed by an explicit `<...>` specialization
// list (e.g. `Box<Int>`). Scope/Symbol mirror Ident's fields: spec.md §6
// describes a type annotation's name as resolving through the same
// scope+symbol contract a value identifier does, so SimpleTypeExpr reuses
// that shape rather than introducing a separate type-namespace lookup.
type SimpleTypeExpr struct {
	nodeImpl
	typeExprMarkerEmbed
	Name            string
	Scope           *Scope
	Symbol          *Symbol
	Specializations []TypeExpr
}

func NewSimpleTypeExpr(r Range, name string, scope *Scope, specializations []TypeExpr) *SimpleTypeExpr {
	return &SimpleTypeExpr{
		nodeImpl:        nodeImpl{Type: NodeSimpleTypeExpr, Range: r},
		Name:            name,
		Scope:           scope,
		Specializations: specializations,
	}
}

// FunctionTypeExpr spells a function type in annotation position, e.g.
// `(Int, Bool) -> String`.
type FunctionTypeExpr struct {
	nodeImpl
	typeExprMarkerEmbed
	Params   []TypeExpr
	Codomain TypeExpr
}

func NewFunctionTypeExpr(r Range, params []TypeExpr, codomain TypeExpr) *FunctionTypeExpr {
	return &FunctionTypeExpr{
		nodeImpl: nodeImpl{Type: NodeFunctionTypeExpr, Range: r},
		Params:   params,
		Codomain: codomain,
	}
}

// QualifiedTypeExpr spells an explicit qualifier set on a type annotation,
// e.g. `mut stk val Int`, per spec.md §3.1's "every qualified type is a
// pair (unqualified-type, qualifier-set)". Qualifiers holds the bare flag
// names as written (e.g. "cst", "mut", "stk", "shd", "val", "ref"); the
// core folds them into a bitflag set via typechecker.ParseQualifiers.
type QualifiedTypeExpr struct {
	nodeImpl
	typeExprMarkerEmbed
	Qualifiers []string
	Inner      TypeExpr
}

func NewQualifiedTypeExpr(r Range, qualifiers []string, inner TypeExpr) *QualifiedTypeExpr {
	return &QualifiedTypeExpr{
		nodeImpl:   nodeImpl{Type: NodeQualifiedTypeExpr, Range: r},
		Qualifiers: qualifiers,
		Inner:      inner,
	}
}
