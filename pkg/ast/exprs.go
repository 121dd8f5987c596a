package ast

// Ident is the workhorse node for both value references and (in type
// annotation position, via SimpleTypeExpr) type references. Scope is
// written by the upstream name binder before the core ever runs; the core
// reads it during constraint generation. During dispatch the core writes
// Symbol on every identifier whose Symbol is still nil, picking among
// overloads by the reified type where there are several.
type Ident struct {
	nodeImpl
	exprMarkerEmbed
	Name            string
	Scope           *Scope
	Symbol          *Symbol
	Specializations map[string]TypeExpr
}

func NewIdent(r Range, name string, scope *Scope) *Ident {
	return &Ident{
		nodeImpl:         nodeImpl{Type: NodeIdentifier, Range: r},
		Name:             name,
		Scope:            scope,
	}
}

type IntLiteral struct {
	nodeImpl
	exprMarkerEmbed
	Value int64
}

func NewIntLiteral(r Range, v int64) *IntLiteral {
	return &IntLiteral{nodeImpl: nodeImpl{Type: NodeIntLiteral, Range: r}, Value: v}
}

type FloatLiteral struct {
	nodeImpl
	exprMarkerEmbed
	Value float64
}

func NewFloatLiteral(r Range, v float64) *FloatLiteral {
	return &FloatLiteral{nodeImpl: nodeImpl{Type: NodeFloatLiteral, Range: r}, Value: v}
}

type StringLiteral struct {
	nodeImpl
	exprMarkerEmbed
	Value string
}

func NewStringLiteral(r Range, v string) *StringLiteral {
	return &StringLiteral{nodeImpl: nodeImpl{Type: NodeStringLiteral, Range: r}, Value: v}
}

type BoolLiteral struct {
	nodeImpl
	exprMarkerEmbed
	Value bool
}

func NewBoolLiteral(r Range, v bool) *BoolLiteral {
	return &BoolLiteral{nodeImpl: nodeImpl{Type: NodeBoolLiteral, Range: r}, Value: v}
}

type NilLiteral struct {
	nodeImpl
	exprMarkerEmbed
}

func NewNilLiteral(r Range) *NilLiteral {
	return &NilLiteral{nodeImpl: nodeImpl{Type: NodeNilLiteral, Range: r}}
}

// BinaryExpression is `Left Op Right`. The generator treats it as sugar
// for a method invocation `Left.Op(Right)`; RewrittenCall is filled in by
// the dispatcher once the real callee is known (spec.md §4.4), turning it
// into an explicit Call(Select(Left, Op), [Right]) for downstream passes.
type BinaryExpression struct {
	nodeImpl
	exprMarkerEmbed
	Left           Expression
	Op             string
	Right          Expression
	RewrittenCall  *CallExpression
}

func NewBinaryExpression(r Range, left Expression, op string, right Expression) *BinaryExpression {
	return &BinaryExpression{
		nodeImpl: nodeImpl{Type: NodeBinaryExpression, Range: r},
		Left:     left,
		Op:       op,
		Right:    right,
	}
}

// Argument is one labelled or positional call/construction argument.
type Argument struct {
	Label string
	Value Expression
}

// CallExpression is `Callee(arg0, arg1, ...)`. The callee may resolve to
// either a function value or a type's metatype (constructor invocation);
// the generator does not distinguish the two cases, emitting a
// Disjunction that lets the solver decide.
type CallExpression struct {
	nodeImpl
	exprMarkerEmbed
	Callee        Expression
	Arguments     []Argument
	TypeArguments []TypeExpr
}

func NewCallExpression(r Range, callee Expression, args []Argument, typeArgs []TypeExpr) *CallExpression {
	return &CallExpression{
		nodeImpl:      nodeImpl{Type: NodeCallExpression, Range: r},
		Callee:        callee,
		Arguments:     args,
		TypeArguments: typeArgs,
	}
}

// SelectExpression is `Owner.Name`. Owner is nil for an implicit static
// member access, in which case the generator uses the metatype of the
// select expression's own (fresh) type as the implicit owner.
type SelectExpression struct {
	nodeImpl
	exprMarkerEmbed
	Owner  Expression
	Name   string
	Symbol *Symbol
}

func NewSelectExpression(r Range, owner Expression, name string) *SelectExpression {
	return &SelectExpression{
		nodeImpl: nodeImpl{Type: NodeSelectExpression, Range: r},
		Owner:    owner,
		Name:     name,
	}
}

// SubscriptExpression is `Receiver[arg0, arg1, ...]`, generated the same
// way as a CallExpression but dispatched against the `[]` member.
type SubscriptExpression struct {
	nodeImpl
	exprMarkerEmbed
	Receiver  Expression
	Arguments []Argument
}

func NewSubscriptExpression(r Range, receiver Expression, args []Argument) *SubscriptExpression {
	return &SubscriptExpression{
		nodeImpl:  nodeImpl{Type: NodeSubscriptExpr, Range: r},
		Receiver:  receiver,
		Arguments: args,
	}
}

// LambdaExpression is an anonymous function value, generated the same way
// as a (non-method) FunDecl.
type LambdaExpression struct {
	nodeImpl
	exprMarkerEmbed
	TypeParams []*PlaceholderDecl
	Params     []*ParamDecl
	Codomain   TypeExpr
	Body       *BlockExpression
	Scope      *Scope
}

func NewLambdaExpression(r Range, typeParams []*PlaceholderDecl, params []*ParamDecl, codomain TypeExpr, body *BlockExpression, scope *Scope) *LambdaExpression {
	return &LambdaExpression{
		nodeImpl:   nodeImpl{Type: NodeLambdaExpression, Range: r},
		TypeParams: typeParams,
		Params:     params,
		Codomain:   codomain,
		Body:       body,
		Scope:      scope,
	}
}

// IfExpression's result type is the join of Then and Else when both are
// present, or Nothing when Else is absent.
type IfExpression struct {
	nodeImpl
	exprMarkerEmbed
	Condition Expression
	Then      *BlockExpression
	Else      *BlockExpression
}

func NewIfExpression(r Range, cond Expression, then *BlockExpression, els *BlockExpression) *IfExpression {
	return &IfExpression{
		nodeImpl:  nodeImpl{Type: NodeIfExpression, Range: r},
		Condition: cond,
		Then:      then,
		Else:      els,
	}
}

// BlockExpression is a sequence of statements; its type is the type of
// Result, or Nothing if Result is nil.
type BlockExpression struct {
	nodeImpl
	exprMarkerEmbed
	Statements []Statement
	Result     Expression
	Scope      *Scope
}

func NewBlockExpression(r Range, stmts []Statement, result Expression, scope *Scope) *BlockExpression {
	return &BlockExpression{
		nodeImpl:   nodeImpl{Type: NodeBlockExpression, Range: r},
		Statements: stmts,
		Result:     result,
		Scope:      scope,
	}
}
