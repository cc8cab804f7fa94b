package codegen

import (
	"github.com/llir/llvm/ir/value"

	"github.com/geraltigas/glslc/internal/syntax"
	"github.com/geraltigas/glslc/internal/types"
)

// operandMode describes the mode of an operand.
type operandMode int

const (
	novalue  operandMode = iota // operand has no value (void function call)
	computed                    // operand is a computed value
	variable                    // operand is a storage location at addr
	lane                        // operand is component idx of the vector at addr
)

// operand is the result of lowering an expression.
type operand struct {
	mode operandMode
	pos  syntax.Pos
	typ  types.AstType
	val  value.Value // computed

	addr  value.Value   // variable, lane
	idx   value.Value   // lane
	vec   types.AstType // lane: type of the vector at addr
	name  string        // variable name, for diagnostics
	konst bool          // variable is const
}

func valueOperand(pos syntax.Pos, typ types.AstType, v value.Value) operand {
	return operand{mode: computed, pos: pos, typ: typ, val: v}
}

// addressable reports whether x denotes a storage location.
func (x *operand) addressable() bool {
	return x.mode == variable || x.mode == lane
}

// value returns the current value of x, loading it if x is a storage
// location.
func (g *generator) value(x operand) (value.Value, error) {
	switch x.mode {
	case computed:
		return x.val, nil
	case variable:
		return g.em.Load(x.typ, x.addr), nil
	case lane:
		return g.em.Lane(g.em.Load(x.vec, x.addr), x.idx), nil
	}
	return nil, errorf(x.pos, "expression has no value")
}

// store writes v, already of type x.typ, into the location x. A lane is
// written by replacing it in the loaded vector and storing the vector
// back.
func (g *generator) store(x operand, v value.Value) {
	switch x.mode {
	case variable:
		g.em.Store(v, x.addr)
	case lane:
		vec := g.em.Load(x.vec, x.addr)
		g.em.Store(g.em.SetLane(vec, v, x.idx), x.addr)
	default:
		panic("codegen: store to non-addressable operand")
	}
}

// convert converts v from one type to another, failing if no implicit
// conversion exists.
func (g *generator) convert(pos syntax.Pos, v value.Value, from, to types.AstType) (value.Value, error) {
	if from == to {
		return v, nil
	}
	if !types.ConvertibleTo(from, to) {
		return nil, errorf(pos, "cannot convert %s to %s", from, to)
	}
	return g.em.Convert(v, from, to), nil
}

// valueAs loads x and converts it to type to.
func (g *generator) valueAs(x operand, to types.AstType) (value.Value, error) {
	v, err := g.value(x)
	if err != nil {
		return nil, err
	}
	return g.convert(x.pos, v, x.typ, to)
}
