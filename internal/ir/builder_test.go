package ir

import (
	"strings"
	"testing"

	llir "github.com/llir/llvm/ir"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/geraltigas/glslc/internal/types"
)

// newFunc returns a builder positioned in the entry block of a fresh
// function.
func newFunc(t *testing.T, result types.AstType, params ...Param) (*Builder, *llir.Func) {
	t.Helper()
	b := NewBuilder()
	f := b.DeclareFunc("f", result, params)
	b.BeginFunc(f)
	return b, f
}

// sameType reports whether v has the LLVM representation of t.
func sameType(v value.Value, t types.AstType) bool {
	return v.Type().Equal(LLType(t))
}

func isPointerTo(v value.Value, elem lltypes.Type) bool {
	p, ok := v.Type().(*lltypes.PointerType)
	return ok && p.ElemType.Equal(elem)
}

func TestLLType(t *testing.T) {
	tests := []struct {
		typ  types.AstType
		want string
	}{
		{types.Void, "void"},
		{types.Bool, "i32"},
		{types.Int, "i32"},
		{types.Uint, "i32"},
		{types.Float, "float"},
		{types.Double, "double"},
		{types.Vec3, "<3 x float>"},
		{types.DVec2, "<2 x double>"},
		{types.BVec4, "<4 x i32>"},
		{types.UVec2, "<2 x i32>"},
		{types.Mat2, "[2 x <2 x float>]"},
		{types.Mat4, "[4 x <4 x float>]"},
	}
	for _, tt := range tests {
		if got := LLType(tt.typ).String(); got != tt.want {
			t.Errorf("LLType(%s) = %s, want %s", tt.typ, got, tt.want)
		}
	}
}

func TestLLTypeErrorPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("LLType(Error) did not panic")
		}
	}()
	LLType(types.Error)
}

func TestAllocaAtEntryHead(t *testing.T) {
	b, f := newFunc(t, types.Void)
	entry := b.InsertPoint()
	b.Store(b.Const(types.Int, 1), b.Alloca(types.Int, "a"))

	next := b.NewBlock("next")
	b.Br(next)
	b.SetInsertPoint(next)
	x := b.Alloca(types.Float, "x")
	b.Ret(nil)

	if len(f.Blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(f.Blocks))
	}
	if len(next.Insts) != 0 {
		t.Errorf("alloca emitted into %s", next.Name())
	}
	for i, name := range []string{"a", "x"} {
		a, ok := entry.Insts[i].(*llir.InstAlloca)
		if !ok {
			t.Fatalf("entry.Insts[%d] = %T, want alloca", i, entry.Insts[i])
		}
		if a.Name() != name {
			t.Errorf("entry.Insts[%d] named %q, want %q", i, a.Name(), name)
		}
	}
	if _, ok := entry.Insts[2].(*llir.InstStore); !ok {
		t.Errorf("entry.Insts[2] = %T, want store", entry.Insts[2])
	}
	if !isPointerTo(x, lltypes.Float) {
		t.Errorf("alloca type = %s, want pointer to float", x.Type())
	}
	if err := VerifyFunc(f); err != nil {
		t.Error(err)
	}
}

func TestUniqueLocalNames(t *testing.T) {
	b, _ := newFunc(t, types.Void, Param{Name: "x", Type: types.Float})

	var names []string
	for _, v := range []value.Value{
		b.Alloca(types.Float, "x"),
		b.Alloca(types.Float, "x"),
		b.Alloca(types.Int, "y"),
	} {
		names = append(names, v.(*llir.InstAlloca).Name())
	}
	blk := b.NewBlock("entry")
	names = append(names, blk.Name())

	want := []string{"x.1", "x.2", "y", "entry.1"}
	if strings.Join(names, " ") != strings.Join(want, " ") {
		t.Errorf("names = %v, want %v", names, want)
	}
}

func TestResumeFunc(t *testing.T) {
	b := NewBuilder()
	f := b.DeclareFunc("init", types.Void, nil)
	g := b.DeclareGlobal(Global{Name: "g", Type: types.Int})

	b.BeginFunc(f)
	b.Store(b.Const(types.Int, 1), g)
	cont := b.NewBlock("cont")
	b.Br(cont)
	b.SetInsertPoint(cont)
	b.EndFunc()

	b.BeginFunc(f)
	if b.InsertPoint() != cont {
		t.Fatalf("resumed at %v, want %s", b.InsertPoint(), cont.Name())
	}
	b.Store(b.Const(types.Int, 2), g)
	b.Ret(nil)
	b.EndFunc()

	if len(f.Blocks) != 2 {
		t.Errorf("got %d blocks, want 2", len(f.Blocks))
	}
	if err := Verify(b.Module()); err != nil {
		t.Error(err)
	}
}

func TestDeclareGlobal(t *testing.T) {
	b := NewBuilder()
	b.DeclareGlobal(Global{Name: "u", Type: types.Mat4, Storage: Uniform,
		Layout: []Layout{{Name: "binding", Value: 1}}})
	b.DeclareGlobal(Global{Name: "pos", Type: types.Vec3, Storage: Input})
	b.DeclareGlobal(Global{Name: "color", Type: types.Vec4, Storage: Output})
	b.DeclareGlobal(Global{Name: "n", Type: types.Int})

	m := b.Module()
	if len(m.Globals) != 4 {
		t.Fatalf("got %d globals, want 4", len(m.Globals))
	}
	for i, external := range []bool{true, true, false, false} {
		g := m.Globals[i]
		if (g.Init == nil) != external {
			t.Errorf("global %s: external = %v, want %v", g.Name(), g.Init == nil, external)
		}
	}

	layouts := b.Layouts()
	if len(layouts) != 4 || layouts[0].Name != "u" || layouts[0].Layout[0].Value != 1 {
		t.Errorf("Layouts() = %+v", layouts)
	}
	if layouts[2].Storage.String() != "out" {
		t.Errorf("storage = %s, want out", layouts[2].Storage)
	}

	out := b.String()
	for _, want := range []string{
		"@u = external global [4 x <4 x float>]",
		"@pos = external global <3 x float>",
		"@color = global <4 x float> zeroinitializer",
		"@n = global i32 0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("module missing %q:\n%s", want, out)
		}
	}
}

func TestBinaryOps(t *testing.T) {
	tests := []struct {
		op   BinaryOp
		typ  types.AstType
		want string
	}{
		{OpAdd, types.Float, "fadd"},
		{OpAdd, types.Int, "add"},
		{OpSub, types.Vec2, "fsub"},
		{OpMul, types.IVec3, "mul"},
		{OpDiv, types.Float, "fdiv"},
		{OpDiv, types.Int, "sdiv"},
		{OpDiv, types.Uint, "udiv"},
		{OpRem, types.Int, "srem"},
		{OpRem, types.UVec2, "urem"},
		{OpShl, types.Int, "shl"},
		{OpShr, types.Int, "ashr"},
		{OpShr, types.Uint, "lshr"},
		{OpAnd, types.Int, "and"},
		{OpOr, types.Bool, "or"},
		{OpXor, types.Uint, "xor"},
	}
	for _, tt := range tests {
		b, _ := newFunc(t, types.Void)
		x := b.Alloca(tt.typ, "x")
		v := b.Load(tt.typ, x)
		r := b.Binary(tt.op, tt.typ, v, v)
		got := r.(interface{ LLString() string }).LLString()
		if !strings.Contains(got, "= "+tt.want+" ") {
			t.Errorf("%s %s: got %q, want %s", tt.op, tt.typ, got, tt.want)
		}
		if !sameType(r, tt.typ) {
			t.Errorf("%s %s: result type %s", tt.op, tt.typ, r.Type())
		}
	}
}

func TestCompareReducesVectors(t *testing.T) {
	tests := []struct {
		op     CmpOp
		typ    types.AstType
		reduce string
	}{
		{CmpEq, types.Float, ""},
		{CmpLt, types.Uint, ""},
		{CmpEq, types.Vec3, "and"},
		{CmpNe, types.IVec2, "or"},
	}
	for _, tt := range tests {
		b, f := newFunc(t, types.Void)
		v := b.Load(tt.typ, b.Alloca(tt.typ, "v"))
		c := b.Compare(tt.op, tt.typ, v, v)
		if !c.Type().Equal(lltypes.I1) {
			t.Errorf("compare %s: type %s, want i1", tt.typ, c.Type())
		}
		b.Ret(nil)

		var ops []string
		for _, inst := range f.Blocks[0].Insts {
			switch inst.(type) {
			case *llir.InstAnd:
				ops = append(ops, "and")
			case *llir.InstOr:
				ops = append(ops, "or")
			}
		}
		if tt.reduce == "" && len(ops) != 0 {
			t.Errorf("compare %s: unexpected reduction %v", tt.typ, ops)
		}
		if tt.reduce != "" && len(ops) != tt.typ.Len()-1 {
			t.Errorf("compare %s: got %d %s ops, want %d", tt.typ, len(ops), tt.reduce, tt.typ.Len()-1)
		}
	}
}

func TestOrderedVectorComparePanics(t *testing.T) {
	b, _ := newFunc(t, types.Void)
	v := b.Zero(types.Vec2)
	defer func() {
		if recover() == nil {
			t.Error("ordered vector comparison did not panic")
		}
	}()
	b.Compare(CmpLt, types.Vec2, v, v)
}

func TestConvert(t *testing.T) {
	tests := []struct {
		from, to types.AstType
		inst     string
	}{
		{types.Int, types.Float, "sitofp"},
		{types.Uint, types.Double, "uitofp"},
		{types.Float, types.Int, "fptosi"},
		{types.Double, types.Uint, "fptoui"},
		{types.Float, types.Double, "fpext"},
		{types.Double, types.Float, "fptrunc"},
		{types.Float, types.Bool, "fcmp une"},
		{types.Int, types.Bool, "icmp ne"},
		{types.IVec3, types.Vec3, "sitofp"},
		{types.Vec2, types.BVec2, "fcmp une"},
		{types.Int, types.Vec4, "insertelement"},
		{types.Float, types.Mat2, "insertvalue"},
		{types.Vec3, types.Float, "extractelement"},
	}
	for _, tt := range tests {
		b, f := newFunc(t, types.Void)
		x := b.Load(tt.from, b.Alloca(tt.from, "x"))
		r := b.Convert(x, tt.from, tt.to)
		if !sameType(r, tt.to) {
			t.Errorf("Convert(%s, %s): type %s", tt.from, tt.to, r.Type())
		}
		b.Ret(nil)
		if err := f.AssignIDs(); err != nil {
			t.Fatal(err)
		}
		if text := f.LLString(); !strings.Contains(text, tt.inst) {
			t.Errorf("Convert(%s, %s): no %s in\n%s", tt.from, tt.to, tt.inst, text)
		}
	}
}

func TestConvertIntegerReinterprets(t *testing.T) {
	b, _ := newFunc(t, types.Void)
	x := b.Load(types.Int, b.Alloca(types.Int, "x"))
	if got := b.Convert(x, types.Int, types.Uint); got != x {
		t.Errorf("int -> uint emitted %v", got)
	}
	if got := b.Convert(x, types.Int, types.Int); got != x {
		t.Errorf("int -> int emitted %v", got)
	}
}

func TestConstSplat(t *testing.T) {
	b, _ := newFunc(t, types.Void)
	for _, typ := range []types.AstType{types.Int, types.Double, types.UVec3, types.Mat3} {
		if v := b.Const(typ, 2); !sameType(v, typ) {
			t.Errorf("Const(%s) has type %s", typ, v.Type())
		}
	}
}

func TestTruthAndFromBool(t *testing.T) {
	b, _ := newFunc(t, types.Void)
	x := b.Load(types.Float, b.Alloca(types.Float, "x"))
	c := b.Truth(types.Float, x)
	if !c.Type().Equal(lltypes.I1) {
		t.Errorf("Truth type = %s, want i1", c.Type())
	}
	if v := b.FromBool(c); !sameType(v, types.Int) {
		t.Errorf("FromBool type = %s, want i32", v.Type())
	}
}

func TestMatrixColumns(t *testing.T) {
	b, _ := newFunc(t, types.Void)
	addr := b.Alloca(types.Mat3, "m")
	m := b.Load(types.Mat3, addr)

	col := b.Column(m, 1)
	if !sameType(col, types.Vec3) {
		t.Errorf("Column type = %s", col.Type())
	}
	if v := b.SetColumn(m, col, 2); !sameType(v, types.Mat3) {
		t.Errorf("SetColumn type = %s", v.Type())
	}
	if p := b.ColumnAddr(types.Mat3, addr, Int(0)); !isPointerTo(p, LLType(types.Vec3)) {
		t.Errorf("ColumnAddr type = %s", p.Type())
	}
	lane := b.Lane(col, Int(2))
	if !sameType(lane, types.Float) {
		t.Errorf("Lane type = %s", lane.Type())
	}
	if v := b.SetLane(col, lane, Int(0)); !sameType(v, types.Vec3) {
		t.Errorf("SetLane type = %s", v.Type())
	}
}

func TestOutParamIsPointer(t *testing.T) {
	b := NewBuilder()
	f := b.DeclareFunc("g", types.Void, []Param{
		{Name: "a", Type: types.Vec2},
		{Name: "r", Type: types.Float, Out: true},
	})
	if got := f.Params[0].Type().String(); got != "<2 x float>" {
		t.Errorf("in param type = %s", got)
	}
	if !isPointerTo(f.Params[1], lltypes.Float) {
		t.Errorf("out param type = %s", f.Params[1].Type())
	}
}

func TestUnterminated(t *testing.T) {
	b, _ := newFunc(t, types.Int)
	then := b.NewBlock("then")
	done := b.NewBlock("done")
	b.CondBr(b.Truth(types.Int, b.Const(types.Int, 1)), then, done)
	b.SetInsertPoint(then)
	b.Ret(b.Const(types.Int, 0))

	open := b.Unterminated()
	if len(open) != 1 || open[0] != done {
		t.Errorf("Unterminated() = %v, want [done]", open)
	}
}
