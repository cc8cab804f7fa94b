// Package ir emits LLVM IR for lowered shader programs. The lowering walk
// drives an Emitter; Builder implements it on top of llir/llvm.
package ir

import (
	llir "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/value"

	"github.com/geraltigas/glslc/internal/types"
)

// Emitter is the code-emission capability the lowering walk drives.
// Values are opaque handles; every operation that takes a types.AstType
// expects operands already converted to that type.
type Emitter interface {
	// Module level.
	DeclareFunc(name string, result types.AstType, params []Param) *llir.Func
	DeclareGlobal(g Global) value.Value

	// Function bodies. BeginFunc makes f current and positions the
	// insertion point at the end of its last block, creating the entry
	// block on first use; EndFunc leaves it.
	BeginFunc(f *llir.Func)
	EndFunc()
	Unterminated() []*llir.Block

	// Blocks.
	NewBlock(hint string) *llir.Block
	SetInsertPoint(b *llir.Block)
	InsertPoint() *llir.Block

	// Memory.
	Alloca(t types.AstType, name string) value.Value
	Load(t types.AstType, addr value.Value) value.Value
	Store(v, addr value.Value)
	ColumnAddr(m types.AstType, addr, idx value.Value) value.Value

	// Constants.
	Const(t types.AstType, v float64) value.Value
	Zero(t types.AstType) value.Value

	// Arithmetic and conversions.
	Binary(op BinaryOp, t types.AstType, x, y value.Value) value.Value
	Neg(t types.AstType, x value.Value) value.Value
	Compare(op CmpOp, t types.AstType, x, y value.Value) value.Value
	Truth(t types.AstType, x value.Value) value.Value
	FromBool(c value.Value) value.Value
	Convert(x value.Value, from, to types.AstType) value.Value

	// Aggregates.
	Lane(x, idx value.Value) value.Value
	SetLane(x, elem, idx value.Value) value.Value
	Column(x value.Value, i int) value.Value
	SetColumn(x, col value.Value, i int) value.Value

	// Control flow.
	Call(f *llir.Func, args ...value.Value) value.Value
	Phi(incs ...*llir.Incoming) value.Value
	Br(target *llir.Block)
	CondBr(c value.Value, t, f *llir.Block)
	Ret(x value.Value)
}

// Param describes a function parameter. Out parameters are passed by
// address.
type Param struct {
	Name string
	Type types.AstType
	Out  bool
}

// Storage is the storage qualifier of a global.
type Storage uint8

const (
	Private Storage = iota
	Uniform
	Input
	Output
)

func (s Storage) String() string {
	switch s {
	case Uniform:
		return "uniform"
	case Input:
		return "in"
	case Output:
		return "out"
	}
	return "private"
}

// External reports whether globals of this storage are provided by the
// host rather than defined by the module.
func (s Storage) External() bool {
	return s == Uniform || s == Input
}

// Layout is one layout qualifier entry, e.g. location = 0.
type Layout struct {
	Name  string
	Value int
}

// Global describes a module-level variable and the metadata the host
// needs to place it.
type Global struct {
	Name    string
	Type    types.AstType
	Storage Storage
	Layout  []Layout
}

// BinaryOp is an arithmetic or bitwise operation.
type BinaryOp uint8

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpRem
	OpShl
	OpShr
	OpAnd
	OpOr
	OpXor
)

var binaryOpNames = [...]string{"add", "sub", "mul", "div", "rem", "shl", "shr", "and", "or", "xor"}

func (op BinaryOp) String() string {
	if int(op) < len(binaryOpNames) {
		return binaryOpNames[op]
	}
	return "?"
}

// Integral reports whether op is only defined on integer operands.
func (op BinaryOp) Integral() bool {
	return op >= OpRem
}

// CmpOp is a comparison.
type CmpOp uint8

const (
	CmpEq CmpOp = iota
	CmpNe
	CmpLt
	CmpLe
	CmpGt
	CmpGe
)

// Ordered reports whether op compares magnitudes rather than equality.
func (op CmpOp) Ordered() bool {
	return op >= CmpLt
}
