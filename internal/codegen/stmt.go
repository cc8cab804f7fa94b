package codegen

import (
	"fmt"

	llir "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/value"

	"github.com/geraltigas/glslc/internal/syntax"
	"github.com/geraltigas/glslc/internal/types"
)

// reachable reports whether there is an insertion point. It is cleared
// after return, break and continue.
func (g *generator) reachable() bool {
	return g.em.InsertPoint() != nil
}

// stmts lowers a list of statements. Statements after one that ends the
// current block are unreachable and not lowered.
func (g *generator) stmts(list []syntax.Stmt) error {
	for _, s := range list {
		if !g.reachable() {
			break
		}
		if err := g.stmt(s); err != nil {
			return err
		}
	}
	return nil
}

// stmt dispatches a statement to the appropriate lowering method.
func (g *generator) stmt(s syntax.Stmt) error {
	switch s := s.(type) {
	case *syntax.EmptyStmt:
		return nil

	case *syntax.ExprStmt:
		_, err := g.expr(s.X)
		return err

	case *syntax.VarDecl:
		return g.varDecl(s)

	case *syntax.BlockStmt:
		g.scopes.Enter()
		defer g.scopes.Exit()
		return g.stmts(s.Stmts)

	case *syntax.IfStmt:
		return g.ifStmt(s)

	case *syntax.ForStmt:
		return g.forStmt(s)

	case *syntax.WhileStmt:
		return g.whileStmt(s)

	case *syntax.DoStmt:
		return g.doStmt(s)

	case *syntax.BranchStmt:
		return g.branchStmt(s)

	case *syntax.ReturnStmt:
		return g.returnStmt(s)
	}
	panic(fmt.Sprintf("codegen: unhandled statement %T", s))
}

// varDecl allocates a local, stores its initializer or the zero value,
// and binds the name in the current scope.
func (g *generator) varDecl(d *syntax.VarDecl) error {
	name := d.Name.Value
	if d.Type == types.Void || !d.Type.IsValid() {
		return errorf(d.Name.Pos(), "invalid variable type %s", d.Type)
	}
	if d.Const && d.Init == nil {
		return errorf(d.Name.Pos(), "missing initializer for const %s", name)
	}

	// The initializer is resolved before the name is in scope.
	var v value.Value
	if d.Init != nil {
		x, err := g.expr(d.Init)
		if err != nil {
			return err
		}
		if v, err = g.initValue(d.Type, x); err != nil {
			return err
		}
	} else {
		v = g.em.Zero(d.Type)
	}

	addr := g.em.Alloca(d.Type, name)
	g.em.Store(v, addr)

	sym, err := g.scopes.Declare(name, d.Type, addr)
	if err != nil {
		return errorf(d.Name.Pos(), "%v", err)
	}
	sym.Const = d.Const
	d.Name.Bind(d.Type)
	return nil
}

// cond lowers a branch condition to an i1.
func (g *generator) cond(e syntax.Expr) (value.Value, error) {
	x, err := g.expr(e)
	if err != nil {
		return nil, err
	}
	return g.truth(x, "condition")
}

// truth converts a scalar operand to an i1 "is nonzero".
func (g *generator) truth(x operand, context string) (value.Value, error) {
	if !x.typ.IsScalar() {
		return nil, errorf(x.pos, "%s must be scalar, have %s", context, x.typ)
	}
	v, err := g.value(x)
	if err != nil {
		return nil, err
	}
	return g.em.Truth(x.typ, v), nil
}

// ifStmt lowers if (cond) then [else els]. Without an else, the false
// edge goes to the merge block directly.
func (g *generator) ifStmt(s *syntax.IfStmt) error {
	c, err := g.cond(s.Cond)
	if err != nil {
		return err
	}

	then := g.em.NewBlock("if.then")
	var els *llir.Block
	if s.Else != nil {
		els = g.em.NewBlock("if.else")
	}
	done := g.em.NewBlock("if.end")
	if els == nil {
		els = done
	}
	g.em.CondBr(c, then, els)

	merged := false
	g.em.SetInsertPoint(then)
	if err := g.branch(s.Then); err != nil {
		return err
	}
	if g.reachable() {
		g.em.Br(done)
		merged = true
	}

	if s.Else != nil {
		g.em.SetInsertPoint(els)
		if err := g.branch(s.Else); err != nil {
			return err
		}
		if g.reachable() {
			g.em.Br(done)
			merged = true
		}
	} else {
		merged = true
	}

	if merged {
		g.em.SetInsertPoint(done)
	} else {
		g.em.SetInsertPoint(nil)
	}
	return nil
}

// branch lowers the body of an if or a loop in its own scope, so a
// declaration there does not leak.
func (g *generator) branch(s syntax.Stmt) error {
	g.scopes.Enter()
	defer g.scopes.Exit()
	return g.stmt(s)
}

func (g *generator) pushLoop(brk, cont *llir.Block) {
	g.loops = append(g.loops, loop{brk: brk, cont: cont})
}

func (g *generator) popLoop() {
	g.loops = g.loops[:len(g.loops)-1]
}

// forStmt lowers for (init; cond; post) body as
//
//	init; br cond
//	cond: condbr body, end
//	body: ...; br inc
//	inc:  post; br cond
//	end:
//
// continue branches to inc and break to end.
func (g *generator) forStmt(s *syntax.ForStmt) error {
	g.scopes.Enter()
	defer g.scopes.Exit()

	if s.Init != nil {
		if err := g.stmt(s.Init); err != nil {
			return err
		}
	}

	head := g.em.NewBlock("for.cond")
	body := g.em.NewBlock("for.body")
	inc := g.em.NewBlock("for.inc")
	end := g.em.NewBlock("for.end")

	g.em.Br(head)
	g.em.SetInsertPoint(head)
	if s.Cond != nil {
		c, err := g.cond(s.Cond)
		if err != nil {
			return err
		}
		g.em.CondBr(c, body, end)
	} else {
		g.em.Br(body)
	}

	g.pushLoop(end, inc)
	g.em.SetInsertPoint(body)
	err := g.branch(s.Body)
	g.popLoop()
	if err != nil {
		return err
	}
	if g.reachable() {
		g.em.Br(inc)
	}

	g.em.SetInsertPoint(inc)
	if s.Post != nil {
		if _, err := g.expr(s.Post); err != nil {
			return err
		}
	}
	g.em.Br(head)

	g.em.SetInsertPoint(end)
	return nil
}

// whileStmt lowers while (cond) body. continue re-evaluates the
// condition.
func (g *generator) whileStmt(s *syntax.WhileStmt) error {
	head := g.em.NewBlock("while.cond")
	body := g.em.NewBlock("while.body")
	end := g.em.NewBlock("while.end")

	g.em.Br(head)
	g.em.SetInsertPoint(head)
	c, err := g.cond(s.Cond)
	if err != nil {
		return err
	}
	g.em.CondBr(c, body, end)

	g.pushLoop(end, head)
	g.em.SetInsertPoint(body)
	err = g.branch(s.Body)
	g.popLoop()
	if err != nil {
		return err
	}
	if g.reachable() {
		g.em.Br(head)
	}

	g.em.SetInsertPoint(end)
	return nil
}

// doStmt lowers do body while (cond); The body runs before the first
// test; continue branches to the test.
func (g *generator) doStmt(s *syntax.DoStmt) error {
	body := g.em.NewBlock("do.body")
	test := g.em.NewBlock("do.cond")
	end := g.em.NewBlock("do.end")

	g.em.Br(body)
	g.pushLoop(end, test)
	g.em.SetInsertPoint(body)
	err := g.branch(s.Body)
	g.popLoop()
	if err != nil {
		return err
	}
	if g.reachable() {
		g.em.Br(test)
	}

	g.em.SetInsertPoint(test)
	c, err := g.cond(s.Cond)
	if err != nil {
		return err
	}
	g.em.CondBr(c, body, end)

	g.em.SetInsertPoint(end)
	return nil
}

// branchStmt lowers break and continue.
func (g *generator) branchStmt(s *syntax.BranchStmt) error {
	if len(g.loops) == 0 {
		if s.IsBreak() {
			return errorf(s.Pos(), "break is not in a loop")
		}
		return errorf(s.Pos(), "continue is not in a loop")
	}
	l := g.loops[len(g.loops)-1]
	if s.IsBreak() {
		g.em.Br(l.brk)
	} else {
		g.em.Br(l.cont)
	}
	g.em.SetInsertPoint(nil)
	return nil
}

// returnStmt lowers return [result], converting the result to the
// declared result type.
func (g *generator) returnStmt(s *syntax.ReturnStmt) error {
	want := g.fn.result
	switch {
	case s.Result == nil && want != types.Void:
		return errorf(s.Pos(), "missing return value in function returning %s", want)
	case s.Result == nil:
		g.em.Ret(nil)
	case want == types.Void:
		return errorf(s.Result.Pos(), "unexpected return value in function returning void")
	default:
		x, err := g.expr(s.Result)
		if err != nil {
			return err
		}
		v, err := g.valueAs(x, want)
		if err != nil {
			return err
		}
		g.em.Ret(v)
	}
	g.em.SetInsertPoint(nil)
	return nil
}
