package codegen

import (
	"github.com/llir/llvm/ir/value"

	"github.com/geraltigas/glslc/internal/ir"
	"github.com/geraltigas/glslc/internal/syntax"
	"github.com/geraltigas/glslc/internal/types"
)

// construct lowers a type constructor such as vec3(a, b, c).
func (g *generator) construct(x *syntax.ConstructExpr) (operand, error) {
	if x.Typ == types.Void || !x.Typ.IsValid() {
		return operand{}, errorf(x.Pos(), "cannot construct %s", x.Typ)
	}
	if len(x.Args) == 0 {
		return operand{}, errorf(x.Pos(), "%s constructor needs arguments", x.Typ)
	}
	args := make([]operand, len(x.Args))
	for i, a := range x.Args {
		var err error
		if args[i], err = g.expr(a); err != nil {
			return operand{}, err
		}
	}
	v, err := g.build(x.Pos(), x.Typ, args)
	if err != nil {
		return operand{}, err
	}
	return valueOperand(x.Pos(), x.Typ, v), nil
}

// initValue returns the value a variable of type t is initialized with.
// An initializer that does not convert implicitly, or a scalar
// initializing a matrix, is treated as the single argument of a t
// constructor.
func (g *generator) initValue(t types.AstType, x operand) (value.Value, error) {
	if x.typ == t || (types.ConvertibleTo(x.typ, t) && !t.IsMatrix()) {
		return g.valueAs(x, t)
	}
	return g.build(x.pos, t, []operand{x})
}

// build packs the components of args into a value of type t:
//
//   - a scalar t takes the first component of its single argument;
//   - a single scalar argument fills a vector, or the diagonal of a
//     matrix;
//   - a single matrix argument of type t is copied;
//   - otherwise the components of all arguments, in order and matrices
//     column by column, fill t. There must be enough components, and
//     every argument must contribute at least one.
func (g *generator) build(pos syntax.Pos, t types.AstType, args []operand) (value.Value, error) {
	for _, a := range args {
		if a.mode == novalue || !a.typ.IsNumeric() {
			return nil, errorf(a.pos, "cannot use %s in %s constructor", a.typ, t)
		}
	}

	if t.IsScalar() {
		if len(args) > 1 {
			return nil, errorf(args[1].pos, "too many arguments to %s constructor", t)
		}
		v, err := g.value(args[0])
		if err != nil {
			return nil, err
		}
		if args[0].typ.IsMatrix() {
			v = g.em.Column(v, 0)
			return g.em.Convert(v, args[0].typ.Elem(), t), nil
		}
		return g.em.Convert(v, args[0].typ, t), nil
	}

	if len(args) == 1 {
		a := args[0]
		switch {
		case a.typ == t:
			return g.value(a)
		case a.typ.IsScalar() && t.IsVector():
			return g.valueAs(a, t)
		case a.typ.IsScalar() && t.IsMatrix():
			return g.diagonal(a, t)
		}
	}

	comps, err := g.components(pos, t, args)
	if err != nil {
		return nil, err
	}
	if t.IsVector() {
		return g.pack(t, comps), nil
	}
	n := t.Len()
	return g.columnwise(t, func(i int) value.Value {
		return g.pack(t.Elem(), comps[i*n:(i+1)*n])
	}), nil
}

// components returns the first t.Components() scalar components of args,
// converted to the scalar type of t.
func (g *generator) components(pos syntax.Pos, t types.AstType, args []operand) ([]value.Value, error) {
	want := t.Components()
	scalar := t.Scalar()
	comps := make([]value.Value, 0, want)

	for _, a := range args {
		if len(comps) == want {
			return nil, errorf(a.pos, "too many arguments to %s constructor", t)
		}
		v, err := g.value(a)
		if err != nil {
			return nil, err
		}
		for _, c := range g.scalars(a.typ, v) {
			if len(comps) == want {
				break
			}
			comps = append(comps, g.em.Convert(c, a.typ.Scalar(), scalar))
		}
	}
	if len(comps) < want {
		return nil, errorf(pos, "not enough components to construct %s: have %d, want %d",
			t, len(comps), want)
	}
	return comps, nil
}

// scalars splits v of type t into its scalar components.
func (g *generator) scalars(t types.AstType, v value.Value) []value.Value {
	switch {
	case t.IsScalar():
		return []value.Value{v}
	case t.IsVector():
		out := make([]value.Value, t.Len())
		for i := range out {
			out[i] = g.em.Lane(v, ir.Int(int64(i)))
		}
		return out
	}
	var out []value.Value
	for i := 0; i < t.Len(); i++ {
		out = append(out, g.scalars(t.Elem(), g.em.Column(v, i))...)
	}
	return out
}

// pack builds a vector of type t from its components.
func (g *generator) pack(t types.AstType, comps []value.Value) value.Value {
	v := g.em.Zero(t)
	for i, c := range comps {
		v = g.em.SetLane(v, c, ir.Int(int64(i)))
	}
	return v
}

// diagonal builds a matrix of type m with the scalar a on its diagonal
// and zeros elsewhere.
func (g *generator) diagonal(a operand, m types.AstType) (value.Value, error) {
	s, err := g.valueAs(a, m.Scalar())
	if err != nil {
		return nil, err
	}
	col := m.Elem()
	return g.columnwise(m, func(i int) value.Value {
		return g.em.SetLane(g.em.Zero(col), s, ir.Int(int64(i)))
	}), nil
}

// ----------------------------------------------------------------------------
// Matrix products

// floatVector converts a vector operand to the float vector of the same
// length.
func (g *generator) floatVector(x operand) (value.Value, types.AstType, error) {
	t := types.VectorOf(types.Float, x.typ.Len())
	v, err := g.valueAs(x, t)
	return v, t, err
}

// mulColumns returns m * v for a matrix value m and a vector value v of
// matching size: the sum of the columns of m scaled by the components of v.
func (g *generator) mulColumns(mt types.AstType, m, v value.Value) value.Value {
	col := mt.Elem()
	var acc value.Value
	for j := 0; j < mt.Len(); j++ {
		s := g.em.Convert(g.em.Lane(v, ir.Int(int64(j))), types.Float, col)
		term := g.em.Binary(ir.OpMul, col, g.em.Column(m, j), s)
		if acc == nil {
			acc = term
		} else {
			acc = g.em.Binary(ir.OpAdd, col, acc, term)
		}
	}
	return acc
}

// matVec lowers matN * vecN to a vecN.
func (g *generator) matVec(pos syntax.Pos, m, v operand) (operand, error) {
	if v.typ.Len() != m.typ.Len() {
		return operand{}, invalidOp(pos, "mismatched types %s and %s for operator *", m.typ, v.typ)
	}
	mv, err := g.value(m)
	if err != nil {
		return operand{}, err
	}
	vv, vt, err := g.floatVector(v)
	if err != nil {
		return operand{}, err
	}
	return valueOperand(pos, vt, g.mulColumns(m.typ, mv, vv)), nil
}

// vecMat lowers vecN * matN to a vecN whose component j is the dot
// product of the vector with column j.
func (g *generator) vecMat(pos syntax.Pos, v, m operand) (operand, error) {
	if v.typ.Len() != m.typ.Len() {
		return operand{}, invalidOp(pos, "mismatched types %s and %s for operator *", v.typ, m.typ)
	}
	vv, vt, err := g.floatVector(v)
	if err != nil {
		return operand{}, err
	}
	mv, err := g.value(m)
	if err != nil {
		return operand{}, err
	}

	n := vt.Len()
	out := g.em.Zero(vt)
	for j := 0; j < n; j++ {
		prod := g.em.Binary(ir.OpMul, vt, vv, g.em.Column(mv, j))
		dot := g.em.Lane(prod, ir.Int(0))
		for i := 1; i < n; i++ {
			dot = g.em.Binary(ir.OpAdd, types.Float, dot, g.em.Lane(prod, ir.Int(int64(i))))
		}
		out = g.em.SetLane(out, dot, ir.Int(int64(j)))
	}
	return valueOperand(pos, vt, out), nil
}

// matMat lowers the matrix product a * b: column j of the result is
// a * (column j of b).
func (g *generator) matMat(pos syntax.Pos, a, b operand) (operand, error) {
	av, err := g.value(a)
	if err != nil {
		return operand{}, err
	}
	bv, err := g.value(b)
	if err != nil {
		return operand{}, err
	}
	t := a.typ
	return valueOperand(pos, t, g.columnwise(t, func(j int) value.Value {
		return g.mulColumns(t, av, g.em.Column(bv, j))
	})), nil
}
