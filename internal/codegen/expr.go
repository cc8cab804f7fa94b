package codegen

import (
	"fmt"
	"strconv"
	"strings"

	llir "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/value"

	"github.com/geraltigas/glslc/internal/ir"
	"github.com/geraltigas/glslc/internal/syntax"
	"github.com/geraltigas/glslc/internal/types"
)

// expr lowers an expression. Names, indexing and swizzles of storage
// locations yield addressable operands; everything else is computed.
func (g *generator) expr(e syntax.Expr) (operand, error) {
	switch e := e.(type) {
	case *syntax.Name:
		return g.name(e)

	case *syntax.NumberLit:
		return g.numberLit(e)

	case *syntax.BoolLit:
		v := 0.0
		if e.Value {
			v = 1
		}
		return valueOperand(e.Pos(), types.Bool, g.em.Const(types.Bool, v)), nil

	case *syntax.CallExpr:
		return g.call(e)

	case *syntax.ConstructExpr:
		return g.construct(e)

	case *syntax.IndexExpr:
		return g.index(e)

	case *syntax.MemberExpr:
		return g.member(e)

	case *syntax.BinaryExpr:
		switch {
		case e.Op.IsAssign():
			return g.assign(e)
		case e.Op.IsLogical():
			return g.logical(e)
		case e.Op.IsComparison():
			return g.comparison(e)
		}
		return g.binary(e)

	case *syntax.PrefixExpr:
		return g.prefix(e)

	case *syntax.PostfixExpr:
		return g.postfix(e)

	case *syntax.CondExpr:
		return g.condExpr(e)

	case *syntax.SeqExpr:
		var x operand
		for _, item := range e.List {
			var err error
			if x, err = g.expr(item); err != nil {
				return operand{}, err
			}
		}
		return x, nil
	}
	panic(fmt.Sprintf("codegen: unhandled expression %T", e))
}

// name resolves an identifier to its storage location and binds its
// type on the syntax node.
func (g *generator) name(n *syntax.Name) (operand, error) {
	sym, ok := g.scopes.Lookup(n.Value)
	if !ok {
		return operand{}, errorf(n.Pos(), "undeclared name: %s", n.Value)
	}
	n.Bind(sym.Type)
	return operand{
		mode:  variable,
		pos:   n.Pos(),
		typ:   sym.Type,
		addr:  sym.Handle,
		name:  n.Value,
		konst: sym.Const,
	}, nil
}

// numberLit converts a literal to a constant of its literal type.
func (g *generator) numberLit(x *syntax.NumberLit) (operand, error) {
	typ := x.Type()
	text := strings.TrimRight(x.Value, "fFuU")
	switch x.Kind {
	case syntax.FloatLit, syntax.DoubleLit:
		bits := 64
		if x.Kind == syntax.FloatLit {
			bits = 32
		}
		f, err := strconv.ParseFloat(text, bits)
		if err != nil {
			return operand{}, errorf(x.Pos(), "invalid %s literal %s", typ, x.Value)
		}
		return valueOperand(x.Pos(), typ, g.em.Const(typ, f)), nil
	}

	u, err := strconv.ParseUint(text, 10, 32)
	if err != nil || (x.Kind == syntax.IntLit && u > 1<<31-1) {
		return operand{}, errorf(x.Pos(), "%s literal %s out of range", typ, x.Value)
	}
	// uint values above the int range are stored in two's complement.
	return valueOperand(x.Pos(), typ, ir.Int(int64(int32(uint32(u))))), nil
}

// call lowers a call to a function of the program. In arguments are
// converted to the parameter types; out arguments must be variables of
// the exact parameter type and are passed by address.
func (g *generator) call(x *syntax.CallExpr) (operand, error) {
	name := x.Fun.Value
	fn := g.funcs[name]
	if fn == nil {
		return operand{}, errorf(x.Fun.Pos(), "undefined function: %s", name)
	}
	x.Fun.Bind(fn.result)

	if len(x.Args) != len(fn.params) {
		return operand{}, errorf(x.Pos(), "wrong argument count in call to %s: have %d, want %d",
			name, len(x.Args), len(fn.params))
	}

	args := make([]value.Value, len(x.Args))
	for i, a := range x.Args {
		p := fn.params[i]
		arg, err := g.expr(a)
		if err != nil {
			return operand{}, err
		}
		if p.Out {
			if arg.mode != variable || arg.typ != p.Type || arg.konst {
				return operand{}, errorf(a.Pos(), "out argument %s to %s must be a %s variable",
					syntax.ExprString(a), name, p.Type)
			}
			args[i] = arg.addr
			continue
		}
		if args[i], err = g.valueAs(arg, p.Type); err != nil {
			return operand{}, errorf(a.Pos(), "cannot use %s (%s) as %s in argument to %s",
				syntax.ExprString(a), arg.typ, p.Type, name)
		}
	}

	v := g.em.Call(fn.f, args...)
	if fn.result == types.Void {
		return operand{mode: novalue, pos: x.Pos(), typ: types.Void}, nil
	}
	return valueOperand(x.Pos(), fn.result, v), nil
}

// index lowers v[i] and m[i]. A vector index denotes a component, a
// matrix index a column; both are storage locations.
func (g *generator) index(x *syntax.IndexExpr) (operand, error) {
	base, err := g.name(x.X)
	if err != nil {
		return operand{}, err
	}
	if !base.typ.IsVector() && !base.typ.IsMatrix() {
		return operand{}, invalidOp(x.Pos(), "cannot index %s (%s)", base.name, base.typ)
	}

	i, err := g.expr(x.Index)
	if err != nil {
		return operand{}, err
	}
	if !i.typ.IsScalar() || !i.typ.IsInteger() {
		return operand{}, errorf(x.Index.Pos(), "index must be an integer, have %s", i.typ)
	}
	idx, err := g.value(i)
	if err != nil {
		return operand{}, err
	}

	if base.typ.IsMatrix() {
		return operand{
			mode:  variable,
			pos:   x.Pos(),
			typ:   base.typ.Elem(),
			addr:  g.em.ColumnAddr(base.typ, base.addr, idx),
			name:  base.name,
			konst: base.konst,
		}, nil
	}
	return operand{
		mode:  lane,
		pos:   x.Pos(),
		typ:   base.typ.Elem(),
		addr:  base.addr,
		idx:   idx,
		vec:   base.typ,
		name:  base.name,
		konst: base.konst,
	}, nil
}

// member lowers a single-component swizzle. On a vector variable it
// denotes the component; on a computed vector it extracts it.
func (g *generator) member(x *syntax.MemberExpr) (operand, error) {
	v, err := g.expr(x.X)
	if err != nil {
		return operand{}, err
	}
	if !v.typ.IsVector() {
		return operand{}, invalidOp(x.Sel.Pos(), "swizzle .%s on %s", x.Sel.Value, v.typ)
	}
	if x.Index >= v.typ.Len() {
		return operand{}, invalidOp(x.Sel.Pos(), "swizzle .%s out of range for %s", x.Sel.Value, v.typ)
	}
	idx := ir.Int(int64(x.Index))

	if v.mode == variable {
		return operand{
			mode:  lane,
			pos:   x.Pos(),
			typ:   v.typ.Elem(),
			addr:  v.addr,
			idx:   idx,
			vec:   v.typ,
			name:  v.name,
			konst: v.konst,
		}, nil
	}
	vec, err := g.value(v)
	if err != nil {
		return operand{}, err
	}
	return valueOperand(x.Pos(), v.typ.Elem(), g.em.Lane(vec, idx)), nil
}

// assign lowers = and the compound assignments. The stored value is the
// result of the expression.
func (g *generator) assign(x *syntax.BinaryExpr) (operand, error) {
	lhs, err := g.expr(x.X)
	if err != nil {
		return operand{}, err
	}
	if !lhs.addressable() {
		return operand{}, errorf(x.X.Pos(), "cannot assign to %s", syntax.ExprString(x.X))
	}
	if lhs.konst {
		return operand{}, errorf(x.X.Pos(), "cannot assign to const variable %s", lhs.name)
	}

	rhs, err := g.expr(x.Y)
	if err != nil {
		return operand{}, err
	}

	var v value.Value
	if x.Op == syntax.Assign {
		if v, err = g.valueAs(rhs, lhs.typ); err != nil {
			return operand{}, errorf(x.Pos(), "cannot assign %s to %s (%s)", rhs.typ, syntax.ExprString(x.X), lhs.typ)
		}
	} else {
		res, err := g.arith(x.Pos(), x.Op.Underlying(), lhs, rhs)
		if err != nil {
			return operand{}, err
		}
		if v, err = g.valueAs(res, lhs.typ); err != nil {
			return operand{}, invalidOp(x.Pos(), "%s %s %s yields %s", lhs.typ, x.Op, rhs.typ, res.typ)
		}
	}

	g.store(lhs, v)
	return valueOperand(x.Pos(), lhs.typ, v), nil
}

// binary lowers an arithmetic, bitwise or shift expression and converts
// the result to the inferred type of the expression.
func (g *generator) binary(x *syntax.BinaryExpr) (operand, error) {
	l, err := g.expr(x.X)
	if err != nil {
		return operand{}, err
	}
	r, err := g.expr(x.Y)
	if err != nil {
		return operand{}, err
	}
	res, err := g.arith(x.Pos(), x.Op, l, r)
	if err != nil {
		return operand{}, err
	}

	want := x.Type()
	v, err := g.valueAs(res, want)
	if err != nil {
		return operand{}, invalidOp(x.Pos(), "%s %s %s yields %s", l.typ, x.Op, r.typ, res.typ)
	}
	return valueOperand(x.Pos(), want, v), nil
}

var arithOps = map[syntax.Operator]ir.BinaryOp{
	syntax.Add: ir.OpAdd,
	syntax.Sub: ir.OpSub,
	syntax.Mul: ir.OpMul,
	syntax.Div: ir.OpDiv,
	syntax.Rem: ir.OpRem,
	syntax.Shl: ir.OpShl,
	syntax.Shr: ir.OpShr,
	syntax.And: ir.OpAnd,
	syntax.Or:  ir.OpOr,
	syntax.Xor: ir.OpXor,
}

// arith applies op to l and r after promoting both to a common type.
// Integer-only operators reject floating-point operands. Matrix products
// follow linear algebra; other matrix arithmetic is column-wise.
func (g *generator) arith(pos syntax.Pos, op syntax.Operator, l, r operand) (operand, error) {
	bop, ok := arithOps[op]
	if !ok {
		panic(fmt.Sprintf("codegen: no arithmetic for operator %s", op))
	}
	lt, rt := l.typ, r.typ
	if !lt.IsNumeric() || !rt.IsNumeric() {
		return operand{}, invalidOp(pos, "operator %s not defined on %s and %s", op, lt, rt)
	}
	if bop.Integral() && (lt.Scalar().IsFloat() || rt.Scalar().IsFloat()) {
		return operand{}, invalidOp(pos, "operator %s not defined on %s and %s", op, lt, rt)
	}

	if op == syntax.Mul {
		switch {
		case lt.IsMatrix() && rt.IsMatrix() && lt == rt:
			return g.matMat(pos, l, r)
		case lt.IsMatrix() && rt.IsVector():
			return g.matVec(pos, l, r)
		case lt.IsVector() && rt.IsMatrix():
			return g.vecMat(pos, l, r)
		}
	}

	pt := types.Promote(lt, rt)
	if pt == types.Error || !types.ConvertibleTo(lt, pt) || !types.ConvertibleTo(rt, pt) {
		return operand{}, invalidOp(pos, "mismatched types %s and %s for operator %s", lt, rt, op)
	}
	lv, err := g.valueAs(l, pt)
	if err != nil {
		return operand{}, err
	}
	rv, err := g.valueAs(r, pt)
	if err != nil {
		return operand{}, err
	}

	if pt.IsMatrix() {
		return valueOperand(pos, pt, g.columnwise(pt, func(i int) value.Value {
			return g.em.Binary(bop, pt.Elem(), g.em.Column(lv, i), g.em.Column(rv, i))
		})), nil
	}
	return valueOperand(pos, pt, g.em.Binary(bop, pt, lv, rv)), nil
}

// columnwise builds a matrix of type m whose column i is col(i).
func (g *generator) columnwise(m types.AstType, col func(i int) value.Value) value.Value {
	v := g.em.Zero(m)
	for i := 0; i < m.Len(); i++ {
		v = g.em.SetColumn(v, col(i), i)
	}
	return v
}

var cmpOps = map[syntax.Operator]ir.CmpOp{
	syntax.Eql: ir.CmpEq,
	syntax.Neq: ir.CmpNe,
	syntax.Lss: ir.CmpLt,
	syntax.Leq: ir.CmpLe,
	syntax.Gtr: ir.CmpGt,
	syntax.Geq: ir.CmpGe,
}

// comparison lowers == != < <= > >= to an int 0 or 1. Vectors compare
// for equality only: == holds if all components are equal, != if any
// differs.
func (g *generator) comparison(x *syntax.BinaryExpr) (operand, error) {
	l, err := g.expr(x.X)
	if err != nil {
		return operand{}, err
	}
	r, err := g.expr(x.Y)
	if err != nil {
		return operand{}, err
	}

	op := cmpOps[x.Op]
	pt := types.Promote(l.typ, r.typ)
	switch {
	case pt == types.Error || pt.IsMatrix():
		return operand{}, invalidOp(x.Pos(), "cannot compare %s and %s", l.typ, r.typ)
	case pt.IsVector() && (op.Ordered() || l.typ.IsScalar() || r.typ.IsScalar()):
		return operand{}, invalidOp(x.Pos(), "operator %s not defined on %s and %s", x.Op, l.typ, r.typ)
	}

	lv, err := g.valueAs(l, pt)
	if err != nil {
		return operand{}, err
	}
	rv, err := g.valueAs(r, pt)
	if err != nil {
		return operand{}, err
	}
	c := g.em.Compare(op, pt, lv, rv)
	return valueOperand(x.Pos(), types.Int, g.em.FromBool(c)), nil
}

// logical lowers && and || with short-circuit evaluation, and ^^ by
// evaluating both operands. The result is an int 0 or 1.
func (g *generator) logical(x *syntax.BinaryExpr) (operand, error) {
	l, err := g.expr(x.X)
	if err != nil {
		return operand{}, err
	}
	lc, err := g.truth(l, "operand of "+x.Op.String())
	if err != nil {
		return operand{}, err
	}

	if x.Op == syntax.XorXor {
		r, err := g.expr(x.Y)
		if err != nil {
			return operand{}, err
		}
		rc, err := g.truth(r, "operand of "+x.Op.String())
		if err != nil {
			return operand{}, err
		}
		return valueOperand(x.Pos(), types.Int, g.em.FromBool(g.em.Binary(ir.OpXor, types.Bool, lc, rc))), nil
	}

	// The edge that skips the right operand carries lc, which is false
	// for && and true for ||.
	prefix := "land"
	if x.Op == syntax.OrOr {
		prefix = "lor"
	}
	from := g.em.InsertPoint()
	rhs := g.em.NewBlock(prefix + ".rhs")
	done := g.em.NewBlock(prefix + ".end")
	if x.Op == syntax.AndAnd {
		g.em.CondBr(lc, rhs, done)
	} else {
		g.em.CondBr(lc, done, rhs)
	}

	g.em.SetInsertPoint(rhs)
	r, err := g.expr(x.Y)
	if err != nil {
		return operand{}, err
	}
	rc, err := g.truth(r, "operand of "+x.Op.String())
	if err != nil {
		return operand{}, err
	}
	rhsEnd := g.em.InsertPoint()
	g.em.Br(done)

	g.em.SetInsertPoint(done)
	phi := g.em.Phi(llir.NewIncoming(lc, from), llir.NewIncoming(rc, rhsEnd))
	return valueOperand(x.Pos(), types.Int, g.em.FromBool(phi)), nil
}

// prefix lowers unary + - ! ~ and the prefix increments.
func (g *generator) prefix(x *syntax.PrefixExpr) (operand, error) {
	if x.Op == syntax.PreInc || x.Op == syntax.PreDec {
		return g.incDec(x.Pos(), x.Op, x.X, false)
	}

	o, err := g.expr(x.X)
	if err != nil {
		return operand{}, err
	}
	t := o.typ
	if !t.IsNumeric() {
		return operand{}, invalidOp(x.Pos(), "operator %s not defined on %s", x.Op, t)
	}

	switch x.Op {
	case syntax.Not:
		if !t.IsScalar() {
			return operand{}, invalidOp(x.Pos(), "operator ! not defined on %s", t)
		}
		v, err := g.value(o)
		if err != nil {
			return operand{}, err
		}
		c := g.em.Compare(ir.CmpEq, t, v, g.em.Zero(t))
		return valueOperand(x.Pos(), types.Int, g.em.FromBool(c)), nil
	case syntax.BitNot:
		if t.Scalar().IsFloat() || t.IsBoolean() || t.IsMatrix() {
			return operand{}, invalidOp(x.Pos(), "operator ~ not defined on %s", t)
		}
	}

	v, err := g.value(o)
	if err != nil {
		return operand{}, err
	}
	switch x.Op {
	case syntax.Plus:
		return valueOperand(x.Pos(), t, v), nil
	case syntax.Neg:
		if t.IsMatrix() {
			v = g.columnwise(t, func(i int) value.Value {
				return g.em.Neg(t.Elem(), g.em.Column(v, i))
			})
			return valueOperand(x.Pos(), t, v), nil
		}
		return valueOperand(x.Pos(), t, g.em.Neg(t, v)), nil
	case syntax.BitNot:
		return valueOperand(x.Pos(), t, g.em.Binary(ir.OpXor, t, v, g.em.Const(t, -1))), nil
	}
	panic(fmt.Sprintf("codegen: unhandled prefix operator %s", x.Op))
}

func (g *generator) postfix(x *syntax.PostfixExpr) (operand, error) {
	return g.incDec(x.Pos(), x.Op, x.X, true)
}

// incDec lowers ++ and -- on an integer variable. The prefix forms yield
// the new value, the postfix forms the old one.
func (g *generator) incDec(pos syntax.Pos, op syntax.Operator, e syntax.Expr, post bool) (operand, error) {
	x, err := g.expr(e)
	if err != nil {
		return operand{}, err
	}
	if !x.addressable() {
		return operand{}, invalidOp(pos, "cannot apply %s to %s", op, syntax.ExprString(e))
	}
	if x.konst {
		return operand{}, errorf(pos, "cannot assign to const variable %s", x.name)
	}
	if !x.typ.IsScalar() || !x.typ.IsInteger() {
		return operand{}, invalidOp(pos, "operator %s not defined on %s", op, x.typ)
	}

	old, err := g.value(x)
	if err != nil {
		return operand{}, err
	}
	bop := ir.OpAdd
	if op == syntax.PreDec || op == syntax.PostDec {
		bop = ir.OpSub
	}
	nv := g.em.Binary(bop, x.typ, old, g.em.Const(x.typ, 1))
	g.store(x, nv)

	if post {
		return valueOperand(pos, x.typ, old), nil
	}
	return valueOperand(pos, x.typ, nv), nil
}

// condExpr lowers cond ? a : b by branching to exactly one operand and
// merging the results with a phi. The else operand is converted to the
// type of the then operand.
func (g *generator) condExpr(x *syntax.CondExpr) (operand, error) {
	c, err := g.cond(x.Cond)
	if err != nil {
		return operand{}, err
	}

	then := g.em.NewBlock("cond.true")
	els := g.em.NewBlock("cond.false")
	done := g.em.NewBlock("cond.end")
	g.em.CondBr(c, then, els)

	g.em.SetInsertPoint(then)
	a, err := g.expr(x.Then)
	if err != nil {
		return operand{}, err
	}
	var av value.Value
	if a.mode != novalue {
		if av, err = g.value(a); err != nil {
			return operand{}, err
		}
	}
	thenEnd := g.em.InsertPoint()
	g.em.Br(done)

	g.em.SetInsertPoint(els)
	b, err := g.expr(x.Else)
	if err != nil {
		return operand{}, err
	}
	var bv value.Value
	if a.mode != novalue {
		if bv, err = g.valueAs(b, a.typ); err != nil {
			return operand{}, invalidOp(x.Pos(), "mismatched types %s and %s in conditional expression", a.typ, b.typ)
		}
	} else if b.mode != novalue {
		return operand{}, invalidOp(x.Pos(), "mismatched types void and %s in conditional expression", b.typ)
	}
	elseEnd := g.em.InsertPoint()
	g.em.Br(done)

	g.em.SetInsertPoint(done)
	if a.mode == novalue {
		return operand{mode: novalue, pos: x.Pos(), typ: types.Void}, nil
	}
	phi := g.em.Phi(llir.NewIncoming(av, thenEnd), llir.NewIncoming(bv, elseEnd))
	return valueOperand(x.Pos(), a.typ, phi), nil
}
