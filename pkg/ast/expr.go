package ast

// Expression is the marker interface implemented by every expression node.
type Expression interface {
	exprNode()
	NodeID() NodeID
}

// BinOp names the operator of a binary expression node. The grammar groups
// operators by precedence level (&&, relational, additive, multiplicative);
// each level gets its own node type below rather than one generic BinaryExpr,
// so pkg/codegen's type switch can dispatch straight to the right lowering
// without re-inspecting an operator string.
type BinOp string

const (
	OpAnd BinOp = "&&"
	OpLt  BinOp = "<"
	OpEq  BinOp = "=="
	OpNeq BinOp = "!="
	OpAdd BinOp = "+"
	OpSub BinOp = "-"
	OpMul BinOp = "*"
)

// AndExpr is "EXP && EXP". It does not short-circuit: codegen evaluates
// both Lhs and Rhs, then combines them with "and".
type AndExpr struct {
	ID       NodeID
	Lhs, Rhs Expression
}

// RelExpr is a relational/equality comparison: "<", "==" or "!=".
type RelExpr struct {
	ID       NodeID
	Op       BinOp
	Lhs, Rhs Expression
}

// ArithExpr is additive: "+" or "-".
type ArithExpr struct {
	ID       NodeID
	Op       BinOp
	Lhs, Rhs Expression
}

// MulExpr is "EXP * EXP".
type MulExpr struct {
	ID       NodeID
	Lhs, Rhs Expression
}

// NotExpr is "! EXP".
type NotExpr struct {
	ID   NodeID
	Expr Expression
}

// NegExpr is unary "- EXP".
type NegExpr struct {
	ID   NodeID
	Expr Expression
}

// IntLiteral is a decimal integer literal, stored already parsed to int32 so
// that constant folding never has to re-parse a lexeme.
type IntLiteral struct {
	ID    NodeID
	Value int32
}

// BoolLiteral is "true" or "false".
type BoolLiteral struct {
	ID    NodeID
	Value bool
}

// NullLiteral is the "null" keyword.
type NullLiteral struct{ ID NodeID }

// ThisExpr is the "this" keyword, referring to the receiver of the
// enclosing method.
type ThisExpr struct{ ID NodeID }

// VarExpr is a bare identifier resolved against the enclosing scope (local,
// then parameter, then field) at semantic-analysis time.
type VarExpr struct {
	ID   NodeID
	Name string
}

// NewObjectExpr is "new Identifier()", allocating an instance of a
// user-declared class.
type NewObjectExpr struct {
	ID        NodeID
	ClassName string
}

// NewArrayExpr is "new int[EXP]", allocating a fixed-size int array.
type NewArrayExpr struct {
	ID   NodeID
	Size Expression
}

// IndexExpr is "EXP[EXP]", reading one element of an int array.
type IndexExpr struct {
	ID           NodeID
	Array, Index Expression
}

// ArrayLengthExpr is "EXP.length".
type ArrayLengthExpr struct {
	ID    NodeID
	Array Expression
}

// FieldAccessExpr is "EXP.id" with no trailing call parens, reading a field
// of the (non-array) value produced by Receiver.
type FieldAccessExpr struct {
	ID       NodeID
	Receiver Expression
	Field    string
}

// MethodCallExpr is "EXP.Identifier(EXP, EXP, ...)", a virtual dispatch
// resolved by climbing the receiver's inheritance chain at codegen time.
type MethodCallExpr struct {
	ID       NodeID
	Receiver Expression
	Method   string
	Args     []Expression
}

func NewAndExpr(lhs, rhs Expression) *AndExpr   { return &AndExpr{ID: NewNodeID(), Lhs: lhs, Rhs: rhs} }
func NewRelExpr(op BinOp, lhs, rhs Expression) *RelExpr {
	return &RelExpr{ID: NewNodeID(), Op: op, Lhs: lhs, Rhs: rhs}
}
func NewArithExpr(op BinOp, lhs, rhs Expression) *ArithExpr {
	return &ArithExpr{ID: NewNodeID(), Op: op, Lhs: lhs, Rhs: rhs}
}
func NewMulExpr(lhs, rhs Expression) *MulExpr { return &MulExpr{ID: NewNodeID(), Lhs: lhs, Rhs: rhs} }
func NewNotExpr(expr Expression) *NotExpr     { return &NotExpr{ID: NewNodeID(), Expr: expr} }
func NewNegExpr(expr Expression) *NegExpr     { return &NegExpr{ID: NewNodeID(), Expr: expr} }
func NewIntLiteral(v int32) *IntLiteral       { return &IntLiteral{ID: NewNodeID(), Value: v} }
func NewBoolLiteral(v bool) *BoolLiteral      { return &BoolLiteral{ID: NewNodeID(), Value: v} }
func NewNullLiteral() *NullLiteral            { return &NullLiteral{ID: NewNodeID()} }
func NewThisExpr() *ThisExpr                  { return &ThisExpr{ID: NewNodeID()} }
func NewVarExpr(name string) *VarExpr         { return &VarExpr{ID: NewNodeID(), Name: name} }
func NewNewObjectExpr(class string) *NewObjectExpr {
	return &NewObjectExpr{ID: NewNodeID(), ClassName: class}
}
func NewNewArrayExpr(size Expression) *NewArrayExpr {
	return &NewArrayExpr{ID: NewNodeID(), Size: size}
}
func NewIndexExpr(array, index Expression) *IndexExpr {
	return &IndexExpr{ID: NewNodeID(), Array: array, Index: index}
}
func NewArrayLengthExpr(array Expression) *ArrayLengthExpr {
	return &ArrayLengthExpr{ID: NewNodeID(), Array: array}
}
func NewFieldAccessExpr(receiver Expression, field string) *FieldAccessExpr {
	return &FieldAccessExpr{ID: NewNodeID(), Receiver: receiver, Field: field}
}
func NewMethodCallExpr(receiver Expression, method string, args []Expression) *MethodCallExpr {
	return &MethodCallExpr{ID: NewNodeID(), Receiver: receiver, Method: method, Args: args}
}

func (e *AndExpr) exprNode()         {}
func (e *RelExpr) exprNode()         {}
func (e *ArithExpr) exprNode()       {}
func (e *MulExpr) exprNode()         {}
func (e *NotExpr) exprNode()         {}
func (e *NegExpr) exprNode()         {}
func (e *IntLiteral) exprNode()      {}
func (e *BoolLiteral) exprNode()     {}
func (e *NullLiteral) exprNode()     {}
func (e *ThisExpr) exprNode()        {}
func (e *VarExpr) exprNode()         {}
func (e *NewObjectExpr) exprNode()   {}
func (e *NewArrayExpr) exprNode()    {}
func (e *IndexExpr) exprNode()       {}
func (e *ArrayLengthExpr) exprNode() {}
func (e *FieldAccessExpr) exprNode() {}
func (e *MethodCallExpr) exprNode()  {}

func (e *AndExpr) NodeID() NodeID         { return e.ID }
func (e *RelExpr) NodeID() NodeID         { return e.ID }
func (e *ArithExpr) NodeID() NodeID       { return e.ID }
func (e *MulExpr) NodeID() NodeID         { return e.ID }
func (e *NotExpr) NodeID() NodeID         { return e.ID }
func (e *NegExpr) NodeID() NodeID         { return e.ID }
func (e *IntLiteral) NodeID() NodeID      { return e.ID }
func (e *BoolLiteral) NodeID() NodeID     { return e.ID }
func (e *NullLiteral) NodeID() NodeID     { return e.ID }
func (e *ThisExpr) NodeID() NodeID        { return e.ID }
func (e *VarExpr) NodeID() NodeID         { return e.ID }
func (e *NewObjectExpr) NodeID() NodeID   { return e.ID }
func (e *NewArrayExpr) NodeID() NodeID    { return e.ID }
func (e *IndexExpr) NodeID() NodeID       { return e.ID }
func (e *ArrayLengthExpr) NodeID() NodeID { return e.ID }
func (e *FieldAccessExpr) NodeID() NodeID { return e.ID }
func (e *MethodCallExpr) NodeID() NodeID  { return e.ID }
