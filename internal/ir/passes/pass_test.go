package passes

import (
	"bytes"
	"strings"
	"testing"

	llir "github.com/llir/llvm/ir"

	"github.com/geraltigas/glslc/internal/ir"
	"github.com/geraltigas/glslc/internal/types"
)

// emptyFunc returns a module holding a function f that only returns.
func emptyFunc(t *testing.T) (*ir.Builder, *llir.Func) {
	t.Helper()
	b := ir.NewBuilder()
	f := b.DeclareFunc("f", types.Void, nil)
	b.BeginFunc(f)
	b.Ret(nil)
	b.EndFunc()
	return b, f
}

func TestRunEmpty(t *testing.T) {
	b, _ := emptyFunc(t)
	if err := Run(b.Module(), nil, Config{}); err != nil {
		t.Fatalf("Run with no passes: %v", err)
	}
}

func TestRunMultiplePasses(t *testing.T) {
	b, _ := emptyFunc(t)
	var order []string
	passes := []Pass{
		{Name: "first", Fn: func(*llir.Func) { order = append(order, "first") }},
		{Name: "second", Fn: func(*llir.Func) { order = append(order, "second") }},
	}
	if err := Run(b.Module(), passes, Config{Verify: true}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.Join(order, ",") != "first,second" {
		t.Errorf("order = %v", order)
	}
}

func TestRunSkipsDeclarations(t *testing.T) {
	b, _ := emptyFunc(t)
	b.DeclareFunc("ext", types.Void, nil)
	calls := 0
	passes := []Pass{{Name: "count", Fn: func(*llir.Func) { calls++ }}}
	if err := Run(b.Module(), passes, Config{}); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("pass ran %d times, want 1", calls)
	}
}

func TestRunVerifyFailure(t *testing.T) {
	_, f := emptyFunc(t)
	breaker := Pass{Name: "breaker", Fn: func(f *llir.Func) { f.Blocks[0].Term = nil }}

	err := RunFunc(f, []Pass{breaker}, Config{Verify: true})
	if err == nil {
		t.Fatal("expected verification error")
	}
	if !strings.Contains(err.Error(), "verify after breaker") {
		t.Errorf("error = %v", err)
	}
}

func TestRunDump(t *testing.T) {
	b, _ := emptyFunc(t)
	g := b.DeclareFunc("g", types.Void, nil)
	b.BeginFunc(g)
	b.Ret(nil)
	b.EndFunc()

	var buf bytes.Buffer
	noop := Pass{Name: "noop", Fn: func(*llir.Func) {}}
	cfg := Config{DumpBefore: "*", DumpAfter: "noop", DumpFunc: "f", Out: &buf}
	if err := Run(b.Module(), []Pass{noop}, cfg); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{"--- before noop (f) ---", "--- after noop (f) ---", "define void @f()"} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "(g)") {
		t.Errorf("dump includes filtered function g:\n%s", out)
	}
}

func TestRemoveUnreachable(t *testing.T) {
	b := ir.NewBuilder()
	f := b.DeclareFunc("f", types.Int, nil)
	b.BeginFunc(f)
	entry := b.InsertPoint()
	dead := b.NewBlock("dead")
	exit := b.NewBlock("exit")
	b.Br(exit)

	b.SetInsertPoint(dead)
	b.Br(exit)

	b.SetInsertPoint(exit)
	phi := b.Phi(
		llir.NewIncoming(b.Const(types.Int, 1), entry),
		llir.NewIncoming(b.Const(types.Int, 2), dead),
	)
	b.Ret(phi)
	b.EndFunc()

	RemoveUnreachable(f)

	if len(f.Blocks) != 2 || f.Blocks[0] != entry || f.Blocks[1] != exit {
		t.Fatalf("blocks after pass: %d", len(f.Blocks))
	}
	if n := len(phi.(*llir.InstPhi).Incs); n != 1 {
		t.Errorf("phi has %d incomings, want 1", n)
	}
	if err := ir.VerifyFunc(f); err != nil {
		t.Error(err)
	}
}

func TestRemoveUnreachableKeepsLoops(t *testing.T) {
	b := ir.NewBuilder()
	f := b.DeclareFunc("f", types.Void, nil)
	b.BeginFunc(f)
	head := b.NewBlock("head")
	body := b.NewBlock("body")
	exit := b.NewBlock("exit")
	b.Br(head)
	b.SetInsertPoint(head)
	b.CondBr(b.Truth(types.Int, b.Const(types.Int, 1)), body, exit)
	b.SetInsertPoint(body)
	b.Br(head)
	b.SetInsertPoint(exit)
	b.Ret(nil)
	b.EndFunc()

	RemoveUnreachable(f)
	if len(f.Blocks) != 4 {
		t.Errorf("got %d blocks, want 4", len(f.Blocks))
	}
}
