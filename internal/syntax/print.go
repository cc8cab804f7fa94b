package syntax

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes a textual representation of the AST to w.
func Fprint(w io.Writer, node Node) {
	p := &printer{w: w}
	p.print(node)
}

type printer struct {
	w      io.Writer
	indent int
}

func (p *printer) printf(format string, args ...interface{}) {
	fmt.Fprintf(p.w, "%s%s", strings.Repeat("  ", p.indent), fmt.Sprintf(format, args...))
}

// section prints a labeled child one level deeper.
func (p *printer) section(label string, n Node) {
	p.printf("%s:\n", label)
	p.indent++
	p.print(n)
	p.indent--
}

func (p *printer) list(label string, list []Expr) {
	if len(list) == 0 {
		return
	}
	p.printf("%s:\n", label)
	p.indent++
	for _, x := range list {
		p.print(x)
	}
	p.indent--
}

func (p *printer) print(node Node) {
	if node == nil {
		return
	}

	switch n := node.(type) {
	case *Program:
		p.printf("Program %s\n", n.pos)
		p.indent++
		if n.Version != 0 {
			p.printf("Version: %d\n", n.Version)
		}
		for _, d := range n.Defs {
			p.print(d)
		}
		p.indent--

	case *GlobalVar:
		p.printf("GlobalVar %s %s\n", n.pos, n.Storage)
		p.indent++
		for _, id := range n.Layout {
			p.printf("Layout: %s = %d\n", id.Name, id.Value)
		}
		p.print(n.Var)
		p.indent--

	case *FuncDecl:
		p.printf("FuncDecl %s\n", n.pos)
		p.indent++
		p.printf("Name: %s\n", n.Name.Value)
		if len(n.Params) > 0 {
			p.printf("Params:\n")
			p.indent++
			for _, prm := range n.Params {
				if prm.Qual != NoStorage {
					p.printf("%s %s %s\n", prm.Qual, prm.Type, prm.Name.Value)
				} else {
					p.printf("%s %s\n", prm.Type, prm.Name.Value)
				}
			}
			p.indent--
		}
		p.printf("Result: %s\n", n.Result)
		p.section("Body", n.Body)
		p.indent--

	case *Param:
		p.printf("Param %s %s %s\n", n.pos, n.Type, n.Name.Value)

	// Statements
	case *EmptyStmt:
		p.printf("EmptyStmt %s\n", n.pos)

	case *ExprStmt:
		p.printf("ExprStmt %s\n", n.pos)
		p.indent++
		p.print(n.X)
		p.indent--

	case *VarDecl:
		if n.Const {
			p.printf("VarDecl %s const %s %s\n", n.pos, n.Type, n.Name.Value)
		} else {
			p.printf("VarDecl %s %s %s\n", n.pos, n.Type, n.Name.Value)
		}
		if n.Init != nil {
			p.indent++
			p.section("Init", n.Init)
			p.indent--
		}

	case *BlockStmt:
		p.printf("BlockStmt %s\n", n.pos)
		p.indent++
		for _, s := range n.Stmts {
			p.print(s)
		}
		p.indent--

	case *IfStmt:
		p.printf("IfStmt %s\n", n.pos)
		p.indent++
		p.section("Cond", n.Cond)
		p.section("Then", n.Then)
		if n.Else != nil {
			p.section("Else", n.Else)
		}
		p.indent--

	case *ForStmt:
		p.printf("ForStmt %s\n", n.pos)
		p.indent++
		if n.Init != nil {
			p.section("Init", n.Init)
		}
		if n.Cond != nil {
			p.section("Cond", n.Cond)
		}
		if n.Post != nil {
			p.section("Post", n.Post)
		}
		p.section("Body", n.Body)
		p.indent--

	case *WhileStmt:
		p.printf("WhileStmt %s\n", n.pos)
		p.indent++
		p.section("Cond", n.Cond)
		p.section("Body", n.Body)
		p.indent--

	case *DoStmt:
		p.printf("DoStmt %s\n", n.pos)
		p.indent++
		p.section("Body", n.Body)
		p.section("Cond", n.Cond)
		p.indent--

	case *BranchStmt:
		p.printf("BranchStmt %s %s\n", n.pos, n.Tok)

	case *ReturnStmt:
		p.printf("ReturnStmt %s\n", n.pos)
		if n.Result != nil {
			p.indent++
			p.print(n.Result)
			p.indent--
		}

	// Expressions
	case *Name:
		p.printf("Name %s %q\n", n.pos, n.Value)

	case *NumberLit:
		p.printf("NumberLit %s %s %s\n", n.pos, n.Kind, n.Value)

	case *BoolLit:
		p.printf("BoolLit %s %t\n", n.pos, n.Value)

	case *CallExpr:
		p.printf("CallExpr %s %s\n", n.pos, n.Fun.Value)
		p.indent++
		p.list("Args", n.Args)
		p.indent--

	case *ConstructExpr:
		p.printf("ConstructExpr %s %s\n", n.pos, n.Typ)
		p.indent++
		p.list("Args", n.Args)
		p.indent--

	case *IndexExpr:
		p.printf("IndexExpr %s %s\n", n.pos, n.X.Value)
		p.indent++
		p.section("Index", n.Index)
		p.indent--

	case *BinaryExpr:
		p.printf("BinaryExpr %s %s\n", n.pos, n.Op)
		p.indent++
		p.section("X", n.X)
		p.section("Y", n.Y)
		p.indent--

	case *PrefixExpr:
		p.printf("PrefixExpr %s %s\n", n.pos, n.Op)
		p.indent++
		p.print(n.X)
		p.indent--

	case *PostfixExpr:
		p.printf("PostfixExpr %s %s\n", n.pos, n.Op)
		p.indent++
		p.print(n.X)
		p.indent--

	case *MemberExpr:
		p.printf("MemberExpr %s .%s\n", n.pos, n.Sel.Value)
		p.indent++
		p.print(n.X)
		p.indent--

	case *CondExpr:
		p.printf("CondExpr %s\n", n.pos)
		p.indent++
		p.section("Cond", n.Cond)
		p.section("Then", n.Then)
		p.section("Else", n.Else)
		p.indent--

	case *SeqExpr:
		p.printf("SeqExpr %s\n", n.pos)
		p.indent++
		for _, x := range n.List {
			p.print(x)
		}
		p.indent--

	default:
		p.printf("<%T>\n", node)
	}
}

// ExprString returns a fully parenthesized rendering of x, with every
// operator application wrapped in parentheses. It shows how an
// expression was grouped.
func ExprString(x Expr) string {
	var b strings.Builder
	writeExpr(&b, x)
	return b.String()
}

func writeExpr(b *strings.Builder, x Expr) {
	switch x := x.(type) {
	case nil:
		b.WriteString("<nil>")
	case *Name:
		b.WriteString(x.Value)
	case *NumberLit:
		b.WriteString(x.Value)
	case *BoolLit:
		fmt.Fprint(b, x.Value)
	case *CallExpr:
		b.WriteString(x.Fun.Value)
		writeArgs(b, x.Args)
	case *ConstructExpr:
		b.WriteString(x.Typ.String())
		writeArgs(b, x.Args)
	case *IndexExpr:
		b.WriteString(x.X.Value)
		b.WriteByte('[')
		writeExpr(b, x.Index)
		b.WriteByte(']')
	case *BinaryExpr:
		b.WriteByte('(')
		writeExpr(b, x.X)
		b.WriteString(" " + x.Op.String() + " ")
		writeExpr(b, x.Y)
		b.WriteByte(')')
	case *PrefixExpr:
		b.WriteString("(" + x.Op.String())
		writeExpr(b, x.X)
		b.WriteByte(')')
	case *PostfixExpr:
		b.WriteByte('(')
		writeExpr(b, x.X)
		b.WriteString(x.Op.String() + ")")
	case *MemberExpr:
		writeExpr(b, x.X)
		b.WriteString("." + x.Sel.Value)
	case *CondExpr:
		b.WriteByte('(')
		writeExpr(b, x.Cond)
		b.WriteString(" ? ")
		writeExpr(b, x.Then)
		b.WriteString(" : ")
		writeExpr(b, x.Else)
		b.WriteByte(')')
	case *SeqExpr:
		b.WriteByte('(')
		for i, e := range x.List {
			if i > 0 {
				b.WriteString(", ")
			}
			writeExpr(b, e)
		}
		b.WriteByte(')')
	default:
		fmt.Fprintf(b, "<%T>", x)
	}
}

func writeArgs(b *strings.Builder, args []Expr) {
	b.WriteByte('(')
	for i, a := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		writeExpr(b, a)
	}
	b.WriteByte(')')
}
