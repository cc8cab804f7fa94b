package syntax

import "github.com/geraltigas/glslc/internal/types"

// ----------------------------------------------------------------------------
// Interfaces
//
// There are 3 main classes of nodes: Expressions, Statements, and
// Definitions. Expressions carry an inferred type; statements carry the
// "always returns" analysis. Every composite node exclusively owns its
// children.

// Node is the interface implemented by all AST nodes.
type Node interface {
	Pos() Pos // position of first character belonging to the node
	aNode()
}

// Expr is the interface for all expression nodes.
//
// Type reports the inferred type of the expression. Names and calls only
// know their type once the lowering walk has bound them to a declaration;
// until then they, and expressions deriving their type from them, report
// types.Error.
type Expr interface {
	Node
	Type() types.AstType
	aExpr()
}

// Stmt is the interface for all statement nodes.
//
// IsReturn reports whether every control path through the statement
// ends in a return statement.
type Stmt interface {
	Node
	IsReturn() bool
	aStmt()
}

// Def is the interface for top-level definitions.
type Def interface {
	Node
	aDef()
}

// ----------------------------------------------------------------------------
// Base node types

type node struct {
	pos Pos
}

func (n *node) Pos() Pos { return n.pos }
func (n *node) aNode()   {}

type expr struct{ node }

func (*expr) aExpr() {}

type stmt struct{ node }

func (*stmt) aStmt()         {}
func (*stmt) IsReturn() bool { return false }

type def struct{ node }

func (*def) aDef() {}

// ----------------------------------------------------------------------------
// Program and definitions

// Program is a complete translation unit.
type Program struct {
	node
	Version int   // #version number, 0 if absent
	Defs    []Def // global variables and functions in source order
}

// Storage is the storage qualifier of a global variable or parameter.
type Storage uint8

const (
	NoStorage Storage = iota
	Uniform
	In
	Out
)

func (s Storage) String() string {
	switch s {
	case Uniform:
		return "uniform"
	case In:
		return "in"
	case Out:
		return "out"
	}
	return ""
}

// LayoutID is one entry of a layout qualifier: location = N or binding = N.
type LayoutID struct {
	Pos   Pos
	Name  string // "location" or "binding"
	Value int
}

// GlobalVar is a module-level variable:
// [layout(ids)] [uniform|in|out] var-decl
type GlobalVar struct {
	def
	Layout  []LayoutID
	Storage Storage
	Var     *VarDecl
}

// FuncDecl is a function definition: Result Name(Params) Body
type FuncDecl struct {
	def
	Result types.AstType
	Name   *Name
	Params []*Param
	Body   *BlockStmt
}

// Param is a formal parameter: [in|out] Type Name
type Param struct {
	node
	Qual Storage // NoStorage, In or Out
	Type types.AstType
	Name *Name
}

// ----------------------------------------------------------------------------
// Expressions

// Name is an identifier.
type Name struct {
	expr
	Value string
	typ   types.AstType
	bound bool
}

// Type returns the type of the declaration the name is bound to.
func (n *Name) Type() types.AstType {
	if !n.bound {
		return types.Error
	}
	return n.typ
}

// Bind records the declared type of the entity n refers to. For a callee
// this is the function's result type.
func (n *Name) Bind(t types.AstType) {
	n.typ, n.bound = t, true
}

// NumberLit is a numeric literal.
type NumberLit struct {
	expr
	Value string
	Kind  LitKind
}

func (x *NumberLit) Type() types.AstType {
	switch x.Kind {
	case UintLit:
		return types.Uint
	case FloatLit:
		return types.Float
	case DoubleLit:
		return types.Double
	}
	return types.Int
}

// BoolLit is true or false.
type BoolLit struct {
	expr
	Value bool
}

func (*BoolLit) Type() types.AstType { return types.Bool }

// CallExpr is a function call: Fun(Args...)
type CallExpr struct {
	expr
	Fun  *Name
	Args []Expr
}

func (x *CallExpr) Type() types.AstType { return x.Fun.Type() }

// ConstructExpr is a type constructor: vec3(Args...)
type ConstructExpr struct {
	expr
	Typ  types.AstType
	Args []Expr
}

func (x *ConstructExpr) Type() types.AstType { return x.Typ }

// IndexExpr is an indexed variable: X[Index]. Indexing a matrix yields a
// column, indexing a vector yields a component.
type IndexExpr struct {
	expr
	X     *Name
	Index Expr
}

func (x *IndexExpr) Type() types.AstType {
	t := x.X.Type()
	if t.IsMatrix() || t.IsVector() {
		return t.Elem()
	}
	return types.Error
}

// BinaryExpr is a binary operation, including assignments: X Op Y
type BinaryExpr struct {
	expr
	Op Operator
	X  Expr
	Y  Expr
}

// Type is the type of the left operand. Comparisons and logical
// operators yield int (0 or 1). Outside assignments, a scalar left
// operand takes the type of a vector or matrix right operand (s * v is
// vecN), and matN * vecN is vecN.
func (x *BinaryExpr) Type() types.AstType {
	if x.Op.IsComparison() || x.Op.IsLogical() {
		return types.Int
	}
	l := x.X.Type()
	if x.Op.IsAssign() {
		return l
	}
	r := x.Y.Type()
	switch {
	case l.IsScalar() && (r.IsVector() || r.IsMatrix()):
		return r
	case l.IsMatrix() && r.IsVector() && x.Op == Mul:
		return r
	}
	return l
}

// PrefixExpr is a prefix operation: Op X
type PrefixExpr struct {
	expr
	Op Operator
	X  Expr
}

func (x *PrefixExpr) Type() types.AstType {
	if x.Op == Not {
		return types.Int
	}
	return x.X.Type()
}

// PostfixExpr is a postfix increment or decrement: X Op
type PostfixExpr struct {
	expr
	Op Operator
	X  Expr
}

func (x *PostfixExpr) Type() types.AstType {
	if x.X.Type() == types.Uint {
		return types.Uint
	}
	return types.Int
}

// MemberExpr is a single-component swizzle: X.Sel, where Sel is one of
// x, y, z, w and Index is 0, 1, 2, 3 respectively.
type MemberExpr struct {
	expr
	X     Expr
	Sel   *Name
	Index int
}

// Type is the component type of a vector operand, float otherwise.
func (x *MemberExpr) Type() types.AstType {
	if t := x.X.Type(); t.IsVector() {
		return t.Elem()
	}
	return types.Float
}

// CondExpr is a conditional expression: Cond ? Then : Else
type CondExpr struct {
	expr
	Cond Expr
	Then Expr
	Else Expr
}

func (x *CondExpr) Type() types.AstType { return x.Then.Type() }

// SeqExpr is a comma expression: List[0], List[1], ...
// Its value is the value of the last element.
type SeqExpr struct {
	expr
	List []Expr
}

func (x *SeqExpr) Type() types.AstType { return x.List[len(x.List)-1].Type() }

// ----------------------------------------------------------------------------
// Statements

// EmptyStmt is a lone semicolon.
type EmptyStmt struct {
	stmt
}

// ExprStmt is an expression evaluated for its side effects.
type ExprStmt struct {
	stmt
	X Expr
}

// VarDecl declares a variable: [const] Type Name [= Init];
// It appears as a statement in function bodies and wrapped by GlobalVar
// at the top level.
type VarDecl struct {
	stmt
	Const bool
	Type  types.AstType
	Name  *Name
	Init  Expr // nil if none
}

// BlockStmt is a braced statement list. It opens a new scope.
type BlockStmt struct {
	stmt
	Stmts  []Stmt
	Rbrace Pos
}

// IsReturn reports whether any statement of the block always returns.
// Statements after it are unreachable.
func (s *BlockStmt) IsReturn() bool {
	for _, st := range s.Stmts {
		if st.IsReturn() {
			return true
		}
	}
	return false
}

// IfStmt is if (Cond) Then [else Else].
type IfStmt struct {
	stmt
	Cond Expr
	Then Stmt
	Else Stmt // nil if absent
}

func (s *IfStmt) IsReturn() bool {
	return s.Else != nil && s.Then.IsReturn() && s.Else.IsReturn()
}

// ForStmt is for (Init; Cond; Post) Body. Each clause may be absent.
type ForStmt struct {
	stmt
	Init Stmt // *VarDecl, *ExprStmt or nil
	Cond Expr
	Post Expr
	Body Stmt
}

// IsReturn follows the body; it does not account for a loop that never
// runs.
func (s *ForStmt) IsReturn() bool { return s.Body.IsReturn() }

// WhileStmt is while (Cond) Body.
type WhileStmt struct {
	stmt
	Cond Expr
	Body Stmt
}

func (s *WhileStmt) IsReturn() bool { return s.Body.IsReturn() }

// DoStmt is do Body while (Cond);
type DoStmt struct {
	stmt
	Body Stmt
	Cond Expr
}

func (s *DoStmt) IsReturn() bool { return s.Body.IsReturn() }

// BranchStmt is break or continue.
type BranchStmt struct {
	stmt
	Tok Token // _Break or _Continue
}

// IsBreak reports whether s is a break statement.
func (s *BranchStmt) IsBreak() bool { return s.Tok == _Break }

// ReturnStmt is return [Result];
type ReturnStmt struct {
	stmt
	Result Expr // nil for a bare return
}

func (*ReturnStmt) IsReturn() bool { return true }
