package ast

// BindingOperator is one of copy/move/ref, selecting how an rvalue is
// transferred into an lvalue (spec §4.3.1's qualifier rules key off this).
type BindingOperator string

const (
	OpCopy BindingOperator = "copy"
	OpMove BindingOperator = "move"
	OpRef  BindingOperator = "ref"
)

// FunctionKind distinguishes the four declaration shapes a FunDecl can
// take; constructors and methods get curried/Self-aware treatment in the
// generator that regular functions and destructors don't.
type FunctionKind string

const (
	FunctionRegular     FunctionKind = "regular"
	FunctionMethod      FunctionKind = "method"
	FunctionConstructor FunctionKind = "constructor"
	FunctionDestructor  FunctionKind = "destructor"
)

// NominalKind distinguishes the three aggregate/sum shapes a NominalDecl
// can declare.
type NominalKind string

const (
	NominalStruct    NominalKind = "struct"
	NominalInterface NominalKind = "interface"
	NominalUnion     NominalKind = "union"
)

// PlaceholderDecl introduces one generic parameter name on a FunDecl or
// NominalDecl's `<...>` list.
type PlaceholderDecl struct {
	nodeImpl
	declMarkerEmbed
	Name string
}

func NewPlaceholderDecl(r Range, name string) *PlaceholderDecl {
	return &PlaceholderDecl{
		nodeImpl: nodeImpl{Type: "PlaceholderDecl", Range: r},
		Name:     name,
	}
}

// PropDecl is a property declaration: a struct field or a top-level
// binding with an optional type annotation and an optional initial
// binding (Op, Value). Symbol is filled in by the name binder.
type PropDecl struct {
	nodeImpl
	declMarkerEmbed
	Name       string
	Annotation TypeExpr
	Op         BindingOperator
	Value      Expression
	Symbol     *Symbol
}

func NewPropDecl(r Range, name string, annotation TypeExpr, op BindingOperator, value Expression) *PropDecl {
	return &PropDecl{
		nodeImpl:   nodeImpl{Type: NodePropDecl, Range: r},
		Name:       name,
		Annotation: annotation,
		Op:         op,
		Value:      value,
	}
}

// ParamDecl is one function parameter, with an optional annotation and an
// optional default value.
type ParamDecl struct {
	nodeImpl
	declMarkerEmbed
	Label      string
	Name       string
	Annotation TypeExpr
	Default    Expression
	Symbol     *Symbol
}

func NewParamDecl(r Range, label, name string, annotation TypeExpr, def Expression) *ParamDecl {
	return &ParamDecl{
		nodeImpl:   nodeImpl{Type: NodeParamDecl, Range: r},
		Label:      label,
		Name:       name,
		Annotation: annotation,
		Default:    def,
	}
}

// FunDecl is a function, method, constructor or destructor declaration.
// EnclosingNominal is non-nil for Method/Constructor/Destructor kinds and
// supplies the Self type used to build the curried method signature and
// the constructor's codomain.
type FunDecl struct {
	nodeImpl
	declMarkerEmbed
	Name             string
	Kind             FunctionKind
	TypeParams       []*PlaceholderDecl
	Params           []*ParamDecl
	Codomain         TypeExpr
	Body             *BlockExpression
	Scope            *Scope
	EnclosingNominal *NominalDecl
	Symbol           *Symbol
}

func NewFunDecl(r Range, name string, kind FunctionKind, typeParams []*PlaceholderDecl, params []*ParamDecl, codomain TypeExpr, body *BlockExpression, scope *Scope) *FunDecl {
	return &FunDecl{
		nodeImpl:   nodeImpl{Type: NodeFunDecl, Range: r},
		Name:       name,
		Kind:       kind,
		TypeParams: typeParams,
		Params:     params,
		Codomain:   codomain,
		Body:       body,
		Scope:      scope,
	}
}

// NominalDecl is a struct, interface or union declaration. Props and Funs
// are its member declarations; Scope is the member scope member lookups
// (Member constraints) resolve against.
type NominalDecl struct {
	nodeImpl
	declMarkerEmbed
	Name       string
	Kind       NominalKind
	TypeParams []*PlaceholderDecl
	Props      []*PropDecl
	Funs       []*FunDecl
	Scope      *Scope
	Symbol     *Symbol
}

func NewNominalDecl(r Range, name string, kind NominalKind, typeParams []*PlaceholderDecl, props []*PropDecl, funs []*FunDecl, scope *Scope) *NominalDecl {
	decl := &NominalDecl{
		nodeImpl:   nodeImpl{Type: NodeNominalDecl, Range: r},
		Name:       name,
		Kind:       kind,
		TypeParams: typeParams,
		Props:      props,
		Funs:       funs,
		Scope:      scope,
	}
	for _, fn := range funs {
		fn.EnclosingNominal = decl
	}
	return decl
}

// BindingStatement is `Lvalue Op= Value` (e.g. `let x: Int := true`).
// Annotation is the optional explicit type on Lvalue; when absent,
// Lvalue's type is whatever fresh variable the name binder/generator
// assigned it.
type BindingStatement struct {
	nodeImpl
	stmtMarkerEmbed
	Lvalue     *Ident
	Annotation TypeExpr
	Op         BindingOperator
	Value      Expression
}

func NewBindingStatement(r Range, lvalue *Ident, annotation TypeExpr, op BindingOperator, value Expression) *BindingStatement {
	return &BindingStatement{
		nodeImpl:   nodeImpl{Type: NodeBindingStatement, Range: r},
		Lvalue:     lvalue,
		Annotation: annotation,
		Op:         op,
		Value:      value,
	}
}

// ReturnStatement's Value is nil for a bare `return`, which requires the
// enclosing function's codomain to be Nothing.
type ReturnStatement struct {
	nodeImpl
	stmtMarkerEmbed
	Value Expression
}

func NewReturnStatement(r Range, value Expression) *ReturnStatement {
	return &ReturnStatement{
		nodeImpl: nodeImpl{Type: NodeReturnStatement, Range: r},
		Value:    value,
	}
}

// ExprStatement wraps an expression evaluated for effect inside a block,
// where it is not the block's trailing Result.
type ExprStatement struct {
	nodeImpl
	stmtMarkerEmbed
	Value Expression
}

func NewExprStatement(r Range, value Expression) *ExprStatement {
	return &ExprStatement{
		nodeImpl: nodeImpl{Type: NodeExprStatement, Range: r},
		Value:    value,
	}
}

// Module is the compilation unit the core type-checks: a flat list of
// top-level declarations plus the root scope builtins are pre-populated
// into (spec.md §6).
type Module struct {
	nodeImpl
	Name         string
	Declarations []Declaration
	Scope        *Scope
}

func NewModule(r Range, name string, decls []Declaration, scope *Scope) *Module {
	return &Module{
		nodeImpl:     nodeImpl{Type: NodeModule, Range: r},
		Name:         name,
		Declarations: decls,
		Scope:        scope,
	}
}
