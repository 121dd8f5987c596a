package ast

// Position is a single point in source text, carried through from the
// upstream lexer/parser. The core never constructs one itself; it only
// reads Range.Start/End for diagnostic anchors.
type Position struct {
	Line   int
	Column int
	Offset int
}

// Range anchors a node to the span of source text it was parsed from.
type Range struct {
	Start Position
	End   Position
}

// NodeType tags every concrete node so the generator and dispatcher can
// switch on it without a type assertion cascade.
type NodeType string

const (
	NodeModule      NodeType = "Module"
	NodePropDecl    NodeType = "PropDecl"
	NodeParamDecl   NodeType = "ParamDecl"
	NodeFunDecl     NodeType = "FunDecl"
	NodeNominalDecl NodeType = "NominalDecl"

	NodeBindingStatement NodeType = "BindingStatement"
	NodeReturnStatement  NodeType = "ReturnStatement"
	NodeExprStatement    NodeType = "ExprStatement"

	NodeIdentifier         NodeType = "Identifier"
	NodeIntLiteral         NodeType = "IntLiteral"
	NodeFloatLiteral       NodeType = "FloatLiteral"
	NodeStringLiteral      NodeType = "StringLiteral"
	NodeBoolLiteral        NodeType = "BoolLiteral"
	NodeNilLiteral         NodeType = "NilLiteral"
	NodeBinaryExpression   NodeType = "BinaryExpression"
	NodeCallExpression     NodeType = "CallExpression"
	NodeSelectExpression   NodeType = "SelectExpression"
	NodeSubscriptExpr      NodeType = "SubscriptExpression"
	NodeLambdaExpression   NodeType = "LambdaExpression"
	NodeIfExpression       NodeType = "IfExpression"
	NodeBlockExpression    NodeType = "BlockExpression"

	NodeSimpleTypeExpr    NodeType = "SimpleTypeExpr"
	NodeFunctionTypeExpr  NodeType = "FunctionTypeExpr"
	NodeQualifiedTypeExpr NodeType = "QualifiedTypeExpr"
)

// Node is the universal interface every AST node satisfies. resolvedType
// is the single mutable type slot: it starts nil, the generator writes a
// type or fresh variable into it, and the dispatcher overwrites it with the
// reified type (spec.md §4.4).
type Node interface {
	NodeType() NodeType
	SourceRange() Range
	isNode()

	resolvedTypeSlot() *any
}

// nodeImpl is embedded by every concrete node. It carries the NodeType tag,
// the source Range, and the mutable type slot written by the generator and
// the dispatcher.
type nodeImpl struct {
	Type         NodeType
	Range        Range
	resolvedType any
}

func (n *nodeImpl) NodeType() NodeType      { return n.Type }
func (n *nodeImpl) SourceRange() Range      { return n.Range }
func (n *nodeImpl) isNode()                 {}
func (n *nodeImpl) resolvedTypeSlot() *any  { return &n.resolvedType }

// Expression is the marker interface satisfied by every expression node.
type Expression interface {
	Node
	expressionMarker()
}

type exprMarkerEmbed struct{}

func (exprMarkerEmbed) expressionMarker() {}

// Statement is the marker interface satisfied by every statement node.
type Statement interface {
	Node
	statementMarker()
}

type stmtMarkerEmbed struct{}

func (stmtMarkerEmbed) statementMarker() {}

// Declaration is the marker interface satisfied by every top-level or
// member declaration (property, function, nominal type, parameter).
type Declaration interface {
	Node
	declarationMarker()
}

type declMarkerEmbed struct{}

func (declMarkerEmbed) declarationMarker() {}

// TypeExpr is the marker interface satisfied by every syntactic type
// annotation (as opposed to typechecker.Type, which is the resolved form).
type TypeExpr interface {
	Node
	typeExprMarker()
}

type typeExprMarkerEmbed struct{}

func (typeExprMarkerEmbed) typeExprMarker() {}

// ResolvedType returns whatever was last written into a node's type slot,
// or nil if nothing has been written yet. The value stored is always a
// typechecker.Type; pkg/ast keeps it as `any` to avoid an import cycle
// with pkg/typechecker.
func ResolvedType(n Node) any {
	return *n.resolvedTypeSlot()
}

// SetResolvedType overwrites a node's type slot. The generator calls it
// while assigning types and fresh variables, and the dispatcher calls it
// again to store the reified type.
func SetResolvedType(n Node, t any) {
	*n.resolvedTypeSlot() = t
}
