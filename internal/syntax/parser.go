package syntax

import (
	"io"
	"strconv"
	"strings"

	"github.com/geraltigas/glslc/internal/types"
)

// SyntaxError represents a syntax error.
type SyntaxError struct {
	Pos Pos
	Msg string
}

func (e *SyntaxError) Error() string {
	return e.Pos.String() + ": " + e.Msg
}

// Parser is a backtracking recursive-descent parser.
//
// Every production either returns a node or returns nil with the stream
// cursor exactly where it was when the production was entered, even when
// a prefix of the production matched. Failing productions report nothing;
// the only syntax error is the final "cannot parse the program", reported
// at the furthest token any production reached.
type Parser struct {
	s *Stream

	errh   func(pos Pos, msg string)
	errcnt int
	first  error
}

// NewParser scans src and returns a parser over its tokens. Lexical errors
// are reported through errh while scanning.
func NewParser(filename string, src io.Reader, errh func(pos Pos, msg string)) *Parser {
	p := &Parser{errh: errh}
	p.s = Tokenize(filename, src, func(line, col uint32, msg string) {
		p.errorAt(NewPos(filename, line, col), msg)
	})
	return p
}

// NewStreamParser returns a parser reading the given token stream.
func NewStreamParser(s *Stream, errh func(pos Pos, msg string)) *Parser {
	return &Parser{s: s, errh: errh}
}

// Stream returns the token stream the parser reads.
func (p *Parser) Stream() *Stream {
	return p.s
}

// ----------------------------------------------------------------------------
// Token navigation

func (p *Parser) tok() Token  { return p.s.Peek(0).Tok }
func (p *Parser) pos() Pos    { return p.s.Peek(0).Pos }
func (p *Parser) lit() string { return p.s.Peek(0).Lit }
func (p *Parser) next()       { p.s.Next() }
func (p *Parser) mark() Mark  { return p.s.Mark() }
func (p *Parser) reset(m Mark) {
	p.s.Reset(m)
}

// got reports whether the current token is tok.
// If so, it consumes the token and returns true.
func (p *Parser) got(tok Token) bool {
	if p.tok() == tok {
		p.next()
		return true
	}
	return false
}

// ----------------------------------------------------------------------------
// Error handling

func (p *Parser) errorAt(pos Pos, msg string) {
	if p.errcnt == 0 {
		p.first = &SyntaxError{Pos: pos, Msg: msg}
	}
	p.errcnt++
	if p.errh != nil {
		p.errh(pos, msg)
	}
}

// unexpected reports the token at which the parse got stuck.
func (p *Parser) unexpected() {
	it := p.s.Furthest()
	var what string
	switch it.Tok {
	case _EOF:
		what = "end of file"
	case _Name:
		what = "name " + it.Lit
	case _TypeName:
		what = "type " + it.Lit
	case _Number:
		what = "number " + it.Lit
	case _Error:
		what = strconv.Quote(it.Lit)
	default:
		what = strconv.Quote(it.Tok.String())
	}
	p.errorAt(it.Pos, "syntax error: unexpected "+what)
}

// Errors returns the number of errors encountered during scanning and parsing.
func (p *Parser) Errors() int {
	return p.errcnt
}

// FirstError returns the first error encountered, or nil if none.
func (p *Parser) FirstError() error {
	return p.first
}

// ----------------------------------------------------------------------------
// Parsing entry point

// GLPosition is the name of the output variable every program declares
// implicitly.
const GLPosition = "gl_Position"

// Parse parses a complete program. It returns nil if the token stream is
// not a program; the error has then been reported.
//
// The returned program starts with the implicit declaration
// "out vec4 gl_Position;".
func (p *Parser) Parse() *Program {
	prog := &Program{}
	prog.pos = p.pos()

	if p.tok() == _Version {
		p.next()
		it := p.s.Peek(0)
		if it.Tok != _Number || it.Kind != IntLit {
			p.unexpected()
			return nil
		}
		prog.Version, _ = strconv.Atoi(it.Lit)
		p.next()
	}

	prog.Defs = append(prog.Defs, implicitPosition())

	for p.tok() != _EOF {
		d := p.definition()
		if d == nil {
			p.unexpected()
			return nil
		}
		prog.Defs = append(prog.Defs, d)
	}

	if p.errcnt > 0 {
		return nil
	}
	return prog
}

func implicitPosition() *GlobalVar {
	v := &VarDecl{Type: types.Vec4, Name: &Name{Value: GLPosition}}
	return &GlobalVar{Storage: Out, Var: v}
}

// ----------------------------------------------------------------------------
// Helper productions

// name parses an identifier.
func (p *Parser) name() *Name {
	if p.tok() != _Name {
		return nil
	}
	n := &Name{Value: p.lit()}
	n.pos = p.pos()
	p.next()
	return n
}

// typeName parses a type name.
func (p *Parser) typeName() (types.AstType, bool) {
	if p.tok() != _TypeName {
		return types.Error, false
	}
	t, ok := types.Lookup(p.lit())
	if !ok {
		return types.Error, false
	}
	p.next()
	return t, true
}

// intLit parses a non-negative int literal.
func (p *Parser) intLit() (int, bool) {
	it := p.s.Peek(0)
	if it.Tok != _Number || it.Kind != IntLit {
		return 0, false
	}
	v, err := strconv.Atoi(it.Lit)
	if err != nil {
		return 0, false
	}
	p.next()
	return v, true
}

// ----------------------------------------------------------------------------
// Definitions

// definition parses a function definition or, failing that, a global
// variable definition.
func (p *Parser) definition() Def {
	if f := p.funcDecl(); f != nil {
		return f
	}
	if g := p.globalVar(); g != nil {
		return g
	}
	return nil
}

// funcDecl parses: Type Name ( [Param {, Param}] | void ) Block
func (p *Parser) funcDecl() *FuncDecl {
	m := p.mark()
	pos := p.pos()

	result, ok := p.typeName()
	if !ok {
		return nil
	}
	name := p.name()
	if name == nil || !p.got(_Lparen) {
		p.reset(m)
		return nil
	}
	params, ok := p.paramList()
	if !ok {
		p.reset(m)
		return nil
	}
	body := p.blockStmt()
	if body == nil {
		p.reset(m)
		return nil
	}

	f := &FuncDecl{Result: result, Name: name, Params: params, Body: body}
	f.pos = pos
	return f
}

// paramList parses the parameters after '(' up to and including ')'.
func (p *Parser) paramList() ([]*Param, bool) {
	m := p.mark()
	if p.got(_Rparen) {
		return nil, true
	}
	if p.tok() == _TypeName && p.lit() == "void" && p.s.Peek(1).Tok == _Rparen {
		p.next()
		p.next()
		return nil, true
	}

	var params []*Param
	for {
		prm := p.param()
		if prm == nil {
			p.reset(m)
			return nil, false
		}
		params = append(params, prm)
		if !p.got(_Comma) {
			break
		}
	}
	if !p.got(_Rparen) {
		p.reset(m)
		return nil, false
	}
	return params, true
}

// param parses: [in|out] Type Name
func (p *Parser) param() *Param {
	m := p.mark()
	prm := &Param{}
	prm.pos = p.pos()

	switch {
	case p.got(_In):
		prm.Qual = In
	case p.got(_Out):
		prm.Qual = Out
	}

	var ok bool
	if prm.Type, ok = p.typeName(); !ok {
		p.reset(m)
		return nil
	}
	if prm.Name = p.name(); prm.Name == nil {
		p.reset(m)
		return nil
	}
	return prm
}

// globalVar parses: [Layout] [uniform|in|out] VarDecl
func (p *Parser) globalVar() *GlobalVar {
	m := p.mark()
	g := &GlobalVar{}
	g.pos = p.pos()

	if p.tok() == _Layout {
		ids, ok := p.layout()
		if !ok {
			p.reset(m)
			return nil
		}
		g.Layout = ids
	}

	switch {
	case p.got(_Uniform):
		g.Storage = Uniform
	case p.got(_In):
		g.Storage = In
	case p.got(_Out):
		g.Storage = Out
	}

	if g.Var = p.varDecl(); g.Var == nil {
		p.reset(m)
		return nil
	}
	return g
}

// layout parses: layout ( LayoutID {, LayoutID} )
func (p *Parser) layout() ([]LayoutID, bool) {
	m := p.mark()
	if !p.got(_Layout) || !p.got(_Lparen) {
		p.reset(m)
		return nil, false
	}

	var ids []LayoutID
	for {
		id := LayoutID{Pos: p.pos(), Name: p.lit()}
		if !p.got(_Location) && !p.got(_Binding) {
			p.reset(m)
			return nil, false
		}
		if !p.got(_Assign) {
			p.reset(m)
			return nil, false
		}
		v, ok := p.intLit()
		if !ok {
			p.reset(m)
			return nil, false
		}
		id.Value = v
		ids = append(ids, id)
		if !p.got(_Comma) {
			break
		}
	}

	if !p.got(_Rparen) {
		p.reset(m)
		return nil, false
	}
	return ids, true
}

// varDecl parses: VarSpec ;
func (p *Parser) varDecl() *VarDecl {
	m := p.mark()
	v := p.varSpec()
	if v == nil {
		return nil
	}
	if !p.got(_Semi) {
		p.reset(m)
		return nil
	}
	return v
}

// varSpec parses: [const] Type Name [= Assignment]
func (p *Parser) varSpec() *VarDecl {
	m := p.mark()
	v := &VarDecl{}
	v.pos = p.pos()

	v.Const = p.got(_Const)

	var ok bool
	if v.Type, ok = p.typeName(); !ok {
		p.reset(m)
		return nil
	}
	if v.Name = p.name(); v.Name == nil {
		p.reset(m)
		return nil
	}
	if p.got(_Assign) {
		if v.Init = p.assignment(); v.Init == nil {
			p.reset(m)
			return nil
		}
	}
	return v
}

// ----------------------------------------------------------------------------
// Statements

// stmt parses a statement. Statements introduced by a keyword commit to
// that production; a variable definition is tried before an expression
// statement since both may start with a type name.
func (p *Parser) stmt() Stmt {
	switch p.tok() {
	case _Lbrace:
		if b := p.blockStmt(); b != nil {
			return b
		}
		return nil

	case _Semi:
		s := &EmptyStmt{}
		s.pos = p.pos()
		p.next()
		return s

	case _If:
		return p.ifStmt()

	case _For:
		return p.forStmt()

	case _While:
		return p.whileStmt()

	case _Do:
		return p.doStmt()

	case _Break, _Continue:
		return p.branchStmt()

	case _Return:
		return p.returnStmt()
	}

	if v := p.varDecl(); v != nil {
		return v
	}
	return p.exprStmt()
}

// blockStmt parses { Stmt* }
func (p *Parser) blockStmt() *BlockStmt {
	m := p.mark()
	b := &BlockStmt{}
	b.pos = p.pos()

	if !p.got(_Lbrace) {
		return nil
	}
	for p.tok() != _Rbrace {
		s := p.stmt()
		if s == nil {
			p.reset(m)
			return nil
		}
		b.Stmts = append(b.Stmts, s)
	}
	b.Rbrace = p.pos()
	p.next()
	return b
}

// ifStmt parses: if ( Expression ) Stmt [else Stmt]
func (p *Parser) ifStmt() Stmt {
	m := p.mark()
	s := &IfStmt{}
	s.pos = p.pos()

	if !p.got(_If) || !p.got(_Lparen) {
		p.reset(m)
		return nil
	}
	if s.Cond = p.expression(); s.Cond == nil || !p.got(_Rparen) {
		p.reset(m)
		return nil
	}
	if s.Then = p.stmt(); s.Then == nil {
		p.reset(m)
		return nil
	}
	if p.got(_Else) {
		if s.Else = p.stmt(); s.Else == nil {
			p.reset(m)
			return nil
		}
	}
	return s
}

// forStmt parses: for ( [VarSpec | Expression] ; [Expression] ; [Expression] ) Stmt
// The init clause is tried as a variable definition first.
func (p *Parser) forStmt() Stmt {
	m := p.mark()
	s := &ForStmt{}
	s.pos = p.pos()

	if !p.got(_For) || !p.got(_Lparen) {
		p.reset(m)
		return nil
	}

	if p.tok() != _Semi {
		if v := p.varSpec(); v != nil {
			s.Init = v
		} else if x := p.expression(); x != nil {
			es := &ExprStmt{X: x}
			es.pos = x.Pos()
			s.Init = es
		} else {
			p.reset(m)
			return nil
		}
	}
	if !p.got(_Semi) {
		p.reset(m)
		return nil
	}

	if p.tok() != _Semi {
		if s.Cond = p.expression(); s.Cond == nil {
			p.reset(m)
			return nil
		}
	}
	if !p.got(_Semi) {
		p.reset(m)
		return nil
	}

	if p.tok() != _Rparen {
		if s.Post = p.expression(); s.Post == nil {
			p.reset(m)
			return nil
		}
	}
	if !p.got(_Rparen) {
		p.reset(m)
		return nil
	}

	if s.Body = p.stmt(); s.Body == nil {
		p.reset(m)
		return nil
	}
	return s
}

// whileStmt parses: while ( Expression ) Stmt
func (p *Parser) whileStmt() Stmt {
	m := p.mark()
	s := &WhileStmt{}
	s.pos = p.pos()

	if !p.got(_While) || !p.got(_Lparen) {
		p.reset(m)
		return nil
	}
	if s.Cond = p.expression(); s.Cond == nil || !p.got(_Rparen) {
		p.reset(m)
		return nil
	}
	if s.Body = p.stmt(); s.Body == nil {
		p.reset(m)
		return nil
	}
	return s
}

// doStmt parses: do Stmt while ( Expression ) ;
func (p *Parser) doStmt() Stmt {
	m := p.mark()
	s := &DoStmt{}
	s.pos = p.pos()

	if !p.got(_Do) {
		return nil
	}
	if s.Body = p.stmt(); s.Body == nil {
		p.reset(m)
		return nil
	}
	if !p.got(_While) || !p.got(_Lparen) {
		p.reset(m)
		return nil
	}
	if s.Cond = p.expression(); s.Cond == nil {
		p.reset(m)
		return nil
	}
	if !p.got(_Rparen) || !p.got(_Semi) {
		p.reset(m)
		return nil
	}
	return s
}

// branchStmt parses: break ; or continue ;
func (p *Parser) branchStmt() Stmt {
	m := p.mark()
	s := &BranchStmt{Tok: p.tok()}
	s.pos = p.pos()
	p.next()
	if !p.got(_Semi) {
		p.reset(m)
		return nil
	}
	return s
}

// returnStmt parses: return [Expression] ;
func (p *Parser) returnStmt() Stmt {
	m := p.mark()
	s := &ReturnStmt{}
	s.pos = p.pos()

	if !p.got(_Return) {
		return nil
	}
	if p.got(_Semi) {
		return s
	}
	if s.Result = p.expression(); s.Result == nil || !p.got(_Semi) {
		p.reset(m)
		return nil
	}
	return s
}

// exprStmt parses: Expression ;
func (p *Parser) exprStmt() Stmt {
	m := p.mark()
	x := p.expression()
	if x == nil {
		return nil
	}
	if !p.got(_Semi) {
		p.reset(m)
		return nil
	}
	s := &ExprStmt{X: x}
	s.pos = x.Pos()
	return s
}

// ----------------------------------------------------------------------------
// Expressions

// expression parses a comma sequence: Assignment {, Assignment}
func (p *Parser) expression() Expr {
	m := p.mark()
	x := p.assignment()
	if x == nil {
		return nil
	}
	if p.tok() != _Comma {
		return x
	}

	list := []Expr{x}
	for p.got(_Comma) {
		y := p.assignment()
		if y == nil {
			p.reset(m)
			return nil
		}
		list = append(list, y)
	}
	seq := &SeqExpr{List: list}
	seq.pos = x.Pos()
	return seq
}

// assignment parses: Conditional [AssignOp Assignment]
// The right operand recurses into assignment, so a = b = c groups as
// a = (b = c).
func (p *Parser) assignment() Expr {
	m := p.mark()
	x := p.conditional()
	if x == nil {
		return nil
	}
	op, ok := assignOps[p.tok()]
	if !ok {
		return x
	}
	p.next()

	y := p.assignment()
	if y == nil {
		p.reset(m)
		return nil
	}
	a := &BinaryExpr{Op: op, X: x, Y: y}
	a.pos = x.Pos()
	return a
}

// conditional parses: LogicalOr [? Expression : Assignment]
func (p *Parser) conditional() Expr {
	m := p.mark()
	cond := p.binary(0)
	if cond == nil {
		return nil
	}
	if !p.got(_Question) {
		return cond
	}

	c := &CondExpr{Cond: cond}
	c.pos = cond.Pos()
	if c.Then = p.expression(); c.Then == nil || !p.got(_Colon) {
		p.reset(m)
		return nil
	}
	if c.Else = p.assignment(); c.Else == nil {
		p.reset(m)
		return nil
	}
	return c
}

// binary parses the left-associative precedence level binaryLevels[level],
// from logical-or (0) down to multiplicative; operands of the tightest
// level are prefix expressions.
func (p *Parser) binary(level int) Expr {
	if level == len(binaryLevels) {
		return p.prefix()
	}

	m := p.mark()
	x := p.binary(level + 1)
	if x == nil {
		return nil
	}
	for {
		op, ok := binaryLevels[level][p.tok()]
		if !ok {
			return x
		}
		p.next()

		y := p.binary(level + 1)
		if y == nil {
			p.reset(m)
			return nil
		}
		b := &BinaryExpr{Op: op, X: x, Y: y}
		b.pos = x.Pos()
		x = b
	}
}

// prefix parses: PrefixOp Prefix | Postfix
func (p *Parser) prefix() Expr {
	op, ok := prefixOps[p.tok()]
	if !ok {
		return p.postfix()
	}

	m := p.mark()
	x := &PrefixExpr{Op: op}
	x.pos = p.pos()
	p.next()
	if x.X = p.prefix(); x.X == nil {
		p.reset(m)
		return nil
	}
	return x
}

// swizzles maps the accepted member selectors to component indices.
var swizzles = map[string]int{"x": 0, "y": 1, "z": 2, "w": 3}

// postfix parses: Primary {. Selector} [++ | --]
func (p *Parser) postfix() Expr {
	m := p.mark()
	x := p.primary()
	if x == nil {
		return nil
	}

	for {
		switch p.tok() {
		case _Inc, _Dec:
			op := PostInc
			if p.tok() == _Dec {
				op = PostDec
			}
			p.next()
			post := &PostfixExpr{Op: op, X: x}
			post.pos = x.Pos()
			return post

		case _Dot:
			p.next()
			sel := p.name()
			if sel == nil {
				p.reset(m)
				return nil
			}
			idx, ok := swizzles[sel.Value]
			if !ok {
				p.reset(m)
				return nil
			}
			mem := &MemberExpr{X: x, Sel: sel, Index: idx}
			mem.pos = x.Pos()
			x = mem

		default:
			return x
		}
	}
}

// primary parses:
//
//	Name [( Args ) | [ Expression ]]
//	Type ( Args )
//	Number | true | false
//	( Expression )
func (p *Parser) primary() Expr {
	m := p.mark()
	pos := p.pos()

	switch p.tok() {
	case _Name:
		name := p.name()
		switch p.tok() {
		case _Lparen:
			p.next()
			args, ok := p.args()
			if !ok {
				p.reset(m)
				return nil
			}
			call := &CallExpr{Fun: name, Args: args}
			call.pos = pos
			return call

		case _Lbrack:
			p.next()
			idx := &IndexExpr{X: name}
			idx.pos = pos
			if idx.Index = p.expression(); idx.Index == nil || !p.got(_Rbrack) {
				p.reset(m)
				return nil
			}
			return idx
		}
		return name

	case _TypeName:
		typ, _ := p.typeName()
		if !p.got(_Lparen) {
			p.reset(m)
			return nil
		}
		args, ok := p.args()
		if !ok {
			p.reset(m)
			return nil
		}
		c := &ConstructExpr{Typ: typ, Args: args}
		c.pos = pos
		return c

	case _Number:
		it := p.s.Next()
		lit := &NumberLit{Value: it.Lit, Kind: it.Kind}
		lit.pos = pos
		return lit

	case _True, _False:
		lit := &BoolLit{Value: p.tok() == _True}
		lit.pos = pos
		p.next()
		return lit

	case _Lparen:
		p.next()
		x := p.expression()
		if x == nil || !p.got(_Rparen) {
			p.reset(m)
			return nil
		}
		return x
	}

	return nil
}

// args parses the arguments after '(' up to and including ')':
// [Assignment {, Assignment}] )
func (p *Parser) args() ([]Expr, bool) {
	m := p.mark()
	if p.got(_Rparen) {
		return nil, true
	}

	var list []Expr
	for {
		x := p.assignment()
		if x == nil {
			p.reset(m)
			return nil, false
		}
		list = append(list, x)
		if !p.got(_Comma) {
			break
		}
	}
	if !p.got(_Rparen) {
		p.reset(m)
		return nil, false
	}
	return list, true
}

// ParseExpr parses src as a single expression, for tests and tools.
func ParseExpr(src string) (Expr, error) {
	var first error
	p := NewParser("", strings.NewReader(src), func(pos Pos, msg string) {
		if first == nil {
			first = &SyntaxError{Pos: pos, Msg: msg}
		}
	})
	x := p.expression()
	if first != nil {
		return nil, first
	}
	if x == nil || p.tok() != _EOF {
		p.unexpected()
		return nil, p.FirstError()
	}
	return x, nil
}
