package ir

import (
	"fmt"

	llir "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/geraltigas/glslc/internal/types"
)

// Builder implements Emitter by building an llir module.
type Builder struct {
	m       *llir.Module
	globals []Global

	funcs map[*llir.Func]*funcState
	fs    *funcState  // current function
	cur   *llir.Block // insertion point
}

// funcState is the per-function emission state. It survives EndFunc so a
// function can be resumed.
type funcState struct {
	f       *llir.Func
	entry   *llir.Block
	nalloca int         // allocas at the head of entry
	last    *llir.Block // insertion point when the function was left
	names   map[string]int
}

// uniq returns name, or name.N if name is already used in the function.
// Blocks and local values share one namespace.
func (fs *funcState) uniq(name string) string {
	n := fs.names[name]
	fs.names[name] = n + 1
	if n == 0 {
		return name
	}
	return fmt.Sprintf("%s.%d", name, n)
}

var _ Emitter = (*Builder)(nil)

// NewBuilder returns a builder for an empty module.
func NewBuilder() *Builder {
	return &Builder{
		m:     llir.NewModule(),
		funcs: make(map[*llir.Func]*funcState),
	}
}

// Module returns the module under construction.
func (b *Builder) Module() *llir.Module {
	return b.m
}

// String returns the textual LLVM IR of the module.
func (b *Builder) String() string {
	return b.m.String()
}

// Layouts returns every declared global with its storage and layout
// metadata, in declaration order.
func (b *Builder) Layouts() []Global {
	out := make([]Global, len(b.globals))
	copy(out, b.globals)
	return out
}

// ----------------------------------------------------------------------------
// Module level

func (b *Builder) DeclareFunc(name string, result types.AstType, params []Param) *llir.Func {
	ps := make([]*llir.Param, len(params))
	for i, p := range params {
		t := LLType(p.Type)
		if p.Out {
			t = lltypes.NewPointer(t)
		}
		ps[i] = llir.NewParam(p.Name, t)
	}
	return b.m.NewFunc(name, LLType(result), ps...)
}

// DeclareGlobal adds a global. Uniform and input globals are external
// declarations; the others are zero-initialized definitions.
func (b *Builder) DeclareGlobal(g Global) value.Value {
	b.globals = append(b.globals, g)
	if g.Storage.External() {
		glob := b.m.NewGlobal(g.Name, LLType(g.Type))
		glob.Linkage = enum.LinkageExternal
		return glob
	}
	return b.m.NewGlobalDef(g.Name, Zero(g.Type))
}

// ----------------------------------------------------------------------------
// Functions and blocks

func (b *Builder) BeginFunc(f *llir.Func) {
	fs, ok := b.funcs[f]
	if !ok {
		fs = &funcState{f: f, names: make(map[string]int)}
		for _, p := range f.Params {
			fs.names[p.Name()]++
		}
		fs.entry = f.NewBlock(fs.uniq("entry"))
		fs.last = fs.entry
		b.funcs[f] = fs
	}
	b.fs = fs
	b.cur = fs.last
}

func (b *Builder) EndFunc() {
	if b.cur != nil {
		b.fs.last = b.cur
	}
	b.fs = nil
	b.cur = nil
}

// Unterminated returns the blocks of the current function that have no
// terminator yet.
func (b *Builder) Unterminated() []*llir.Block {
	var open []*llir.Block
	for _, blk := range b.fs.f.Blocks {
		if blk.Term == nil {
			open = append(open, blk)
		}
	}
	return open
}

func (b *Builder) NewBlock(hint string) *llir.Block {
	return b.fs.f.NewBlock(b.fs.uniq(hint))
}

func (b *Builder) SetInsertPoint(blk *llir.Block) {
	b.cur = blk
}

func (b *Builder) InsertPoint() *llir.Block {
	return b.cur
}

// ----------------------------------------------------------------------------
// Memory

// Alloca reserves a stack slot at the head of the entry block, so every
// slot dominates all of its uses.
func (b *Builder) Alloca(t types.AstType, name string) value.Value {
	a := llir.NewAlloca(LLType(t))
	a.SetName(b.fs.uniq(name))

	entry := b.fs.entry
	i := b.fs.nalloca
	entry.Insts = append(entry.Insts, nil)
	copy(entry.Insts[i+1:], entry.Insts[i:])
	entry.Insts[i] = a
	b.fs.nalloca++
	return a
}

func (b *Builder) Load(t types.AstType, addr value.Value) value.Value {
	return b.cur.NewLoad(LLType(t), addr)
}

func (b *Builder) Store(v, addr value.Value) {
	b.cur.NewStore(v, addr)
}

// ColumnAddr returns the address of column idx of the matrix m at addr.
func (b *Builder) ColumnAddr(m types.AstType, addr, idx value.Value) value.Value {
	return b.cur.NewGetElementPtr(LLType(m), addr, Int(0), idx)
}

// ----------------------------------------------------------------------------
// Constants

// Const returns v as a value of type t. Vectors and matrices get v in
// every component.
func (b *Builder) Const(t types.AstType, v float64) value.Value {
	if t.IsScalar() {
		return Scalar(t, v)
	}
	return b.splat(t, Scalar(t.Scalar(), v))
}

func (b *Builder) Zero(t types.AstType) value.Value {
	return Zero(t)
}

// splat fills every component of a vector or matrix of type t with the
// scalar s.
func (b *Builder) splat(t types.AstType, s value.Value) value.Value {
	if t.IsMatrix() {
		col := b.splat(t.Elem(), s)
		var m value.Value = constant.NewUndef(LLType(t))
		for i := 0; i < t.Len(); i++ {
			m = b.cur.NewInsertValue(m, col, uint64(i))
		}
		return m
	}
	var vec value.Value = constant.NewUndef(LLType(t))
	for i := 0; i < t.Len(); i++ {
		vec = b.cur.NewInsertElement(vec, s, Int(int64(i)))
	}
	return vec
}

// ----------------------------------------------------------------------------
// Arithmetic

// Binary applies op to scalar or vector operands of type t. Unsigned
// types select the unsigned division, remainder and shift forms.
func (b *Builder) Binary(op BinaryOp, t types.AstType, x, y value.Value) value.Value {
	s := t.Scalar()
	fp := s.IsFloat()
	unsigned := s.IsUnsigned()

	switch op {
	case OpAdd:
		if fp {
			return b.cur.NewFAdd(x, y)
		}
		return b.cur.NewAdd(x, y)
	case OpSub:
		if fp {
			return b.cur.NewFSub(x, y)
		}
		return b.cur.NewSub(x, y)
	case OpMul:
		if fp {
			return b.cur.NewFMul(x, y)
		}
		return b.cur.NewMul(x, y)
	case OpDiv:
		switch {
		case fp:
			return b.cur.NewFDiv(x, y)
		case unsigned:
			return b.cur.NewUDiv(x, y)
		}
		return b.cur.NewSDiv(x, y)
	case OpRem:
		switch {
		case fp:
			return b.cur.NewFRem(x, y)
		case unsigned:
			return b.cur.NewURem(x, y)
		}
		return b.cur.NewSRem(x, y)
	case OpShl:
		return b.cur.NewShl(x, y)
	case OpShr:
		if unsigned {
			return b.cur.NewLShr(x, y)
		}
		return b.cur.NewAShr(x, y)
	case OpAnd:
		return b.cur.NewAnd(x, y)
	case OpOr:
		return b.cur.NewOr(x, y)
	case OpXor:
		return b.cur.NewXor(x, y)
	}
	panic(fmt.Sprintf("ir: unknown binary op %d", op))
}

func (b *Builder) Neg(t types.AstType, x value.Value) value.Value {
	if t.Scalar().IsFloat() {
		return b.cur.NewFNeg(x)
	}
	return b.cur.NewSub(b.Zero(t), x)
}

// Compare returns an i1. Vectors compare lane by lane; == holds when all
// lanes are equal and != when any lane differs. Ordered comparisons are
// only defined on scalars.
func (b *Builder) Compare(op CmpOp, t types.AstType, x, y value.Value) value.Value {
	if t.IsVector() && op.Ordered() {
		panic(fmt.Sprintf("ir: ordered comparison of %s", t))
	}
	c := b.lanewiseCompare(op, t, x, y)
	if !t.IsVector() {
		return c
	}

	acc := b.cur.NewExtractElement(c, Int(0))
	var r value.Value = acc
	for i := 1; i < t.Len(); i++ {
		lane := b.cur.NewExtractElement(c, Int(int64(i)))
		if op == CmpEq {
			r = b.cur.NewAnd(r, lane)
		} else {
			r = b.cur.NewOr(r, lane)
		}
	}
	return r
}

func (b *Builder) lanewiseCompare(op CmpOp, t types.AstType, x, y value.Value) value.Value {
	s := t.Scalar()
	if s.IsFloat() {
		return b.cur.NewFCmp(fpred(op), x, y)
	}
	return b.cur.NewICmp(ipred(op, s.IsUnsigned()), x, y)
}

func fpred(op CmpOp) enum.FPred {
	switch op {
	case CmpEq:
		return enum.FPredOEQ
	case CmpNe:
		return enum.FPredUNE
	case CmpLt:
		return enum.FPredOLT
	case CmpLe:
		return enum.FPredOLE
	case CmpGt:
		return enum.FPredOGT
	}
	return enum.FPredOGE
}

func ipred(op CmpOp, unsigned bool) enum.IPred {
	switch op {
	case CmpEq:
		return enum.IPredEQ
	case CmpNe:
		return enum.IPredNE
	}
	if unsigned {
		switch op {
		case CmpLt:
			return enum.IPredULT
		case CmpLe:
			return enum.IPredULE
		case CmpGt:
			return enum.IPredUGT
		}
		return enum.IPredUGE
	}
	switch op {
	case CmpLt:
		return enum.IPredSLT
	case CmpLe:
		return enum.IPredSLE
	case CmpGt:
		return enum.IPredSGT
	}
	return enum.IPredSGE
}

// Truth returns the i1 "x is nonzero". A vector is true if any lane is.
func (b *Builder) Truth(t types.AstType, x value.Value) value.Value {
	return b.Compare(CmpNe, t, x, b.Zero(t))
}

// FromBool widens an i1 to the i32 0 or 1.
func (b *Builder) FromBool(c value.Value) value.Value {
	return b.cur.NewZExt(c, lltypes.I32)
}

// Convert converts x from one type to another:
//
//	scalar -> scalar          numeric conversion
//	scalar -> vector, matrix  conversion, then splat
//	vector -> vector          lane-wise conversion (equal length)
//	vector -> scalar          first lane, converted
//
// Converting to bool yields 0 or 1.
func (b *Builder) Convert(x value.Value, from, to types.AstType) value.Value {
	switch {
	case from == to:
		return x
	case from.IsScalar() && to.IsScalar():
		return b.convertNumeric(x, from, to)
	case from.IsScalar() && (to.IsVector() || to.IsMatrix()):
		return b.splat(to, b.convertNumeric(x, from, to.Scalar()))
	case from.IsVector() && to.IsVector() && from.Len() == to.Len():
		return b.convertNumeric(x, from, to)
	case from.IsVector() && to.IsScalar():
		lane := b.cur.NewExtractElement(x, Int(0))
		return b.convertNumeric(lane, from.Scalar(), to)
	}
	panic(fmt.Sprintf("ir: cannot convert %s to %s", from, to))
}

// convertNumeric converts between scalars, or lane-wise between vectors
// of equal length.
func (b *Builder) convertNumeric(x value.Value, from, to types.AstType) value.Value {
	fs, ts := from.Scalar(), to.Scalar()
	dst := LLType(to)

	switch {
	case ts == types.Bool:
		var c value.Value
		if fs.IsFloat() {
			c = b.cur.NewFCmp(enum.FPredUNE, x, b.Zero(from))
		} else {
			c = b.cur.NewICmp(enum.IPredNE, x, b.Zero(from))
		}
		return b.cur.NewZExt(c, dst)
	case fs.IsFloat() && ts.IsFloat():
		if fs == ts {
			return x
		}
		if fs == types.Float {
			return b.cur.NewFPExt(x, dst)
		}
		return b.cur.NewFPTrunc(x, dst)
	case fs.IsFloat():
		if ts.IsUnsigned() {
			return b.cur.NewFPToUI(x, dst)
		}
		return b.cur.NewFPToSI(x, dst)
	case ts.IsFloat():
		if fs.IsUnsigned() {
			return b.cur.NewUIToFP(x, dst)
		}
		return b.cur.NewSIToFP(x, dst)
	}
	// bool, int and uint share the i32 representation.
	return x
}

// ----------------------------------------------------------------------------
// Aggregates

func (b *Builder) Lane(x, idx value.Value) value.Value {
	return b.cur.NewExtractElement(x, idx)
}

func (b *Builder) SetLane(x, elem, idx value.Value) value.Value {
	return b.cur.NewInsertElement(x, elem, idx)
}

func (b *Builder) Column(x value.Value, i int) value.Value {
	return b.cur.NewExtractValue(x, uint64(i))
}

func (b *Builder) SetColumn(x, col value.Value, i int) value.Value {
	return b.cur.NewInsertValue(x, col, uint64(i))
}

// ----------------------------------------------------------------------------
// Control flow

func (b *Builder) Call(f *llir.Func, args ...value.Value) value.Value {
	return b.cur.NewCall(f, args...)
}

func (b *Builder) Phi(incs ...*llir.Incoming) value.Value {
	return b.cur.NewPhi(incs...)
}

func (b *Builder) Br(target *llir.Block) {
	b.cur.NewBr(target)
}

func (b *Builder) CondBr(c value.Value, t, f *llir.Block) {
	b.cur.NewCondBr(c, t, f)
}

// Ret returns x, or returns void when x is nil.
func (b *Builder) Ret(x value.Value) {
	if x == nil {
		b.cur.NewRet(nil)
		return
	}
	b.cur.NewRet(x)
}
