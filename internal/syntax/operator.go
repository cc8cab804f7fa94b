package syntax

import "fmt"

// Operator tags an operator expression. The tag selects both the grammar
// production that built the node and the rule used to lower it.
type Operator uint8

const (
	_ Operator = iota

	// Assignment
	Assign    // =
	AddAssign // +=
	SubAssign // -=
	MulAssign // *=
	DivAssign // /=
	RemAssign // %=
	ShlAssign // <<=
	ShrAssign // >>=
	AndAssign // &=
	XorAssign // ^=
	OrAssign  // |=

	// Logical
	OrOr   // ||
	XorXor // ^^
	AndAnd // &&

	// Bitwise
	Or  // |
	Xor // ^
	And // &

	// Comparison
	Eql // ==
	Neq // !=
	Lss // <
	Leq // <=
	Gtr // >
	Geq // >=

	// Shift and arithmetic
	Shl // <<
	Shr // >>
	Add // +
	Sub // -
	Mul // *
	Div // /
	Rem // %

	// Prefix
	PreInc // ++x
	PreDec // --x
	Plus   // +x
	Neg    // -x
	Not    // !x
	BitNot // ~x

	// Postfix
	PostInc // x++
	PostDec // x--
	Member  // x.sel

	Sequence // a, b
)

var opNames = [...]string{
	Assign:    "=",
	AddAssign: "+=",
	SubAssign: "-=",
	MulAssign: "*=",
	DivAssign: "/=",
	RemAssign: "%=",
	ShlAssign: "<<=",
	ShrAssign: ">>=",
	AndAssign: "&=",
	XorAssign: "^=",
	OrAssign:  "|=",
	OrOr:      "||",
	XorXor:    "^^",
	AndAnd:    "&&",
	Or:        "|",
	Xor:       "^",
	And:       "&",
	Eql:       "==",
	Neq:       "!=",
	Lss:       "<",
	Leq:       "<=",
	Gtr:       ">",
	Geq:       ">=",
	Shl:       "<<",
	Shr:       ">>",
	Add:       "+",
	Sub:       "-",
	Mul:       "*",
	Div:       "/",
	Rem:       "%",
	PreInc:    "++",
	PreDec:    "--",
	Plus:      "+",
	Neg:       "-",
	Not:       "!",
	BitNot:    "~",
	PostInc:   "++",
	PostDec:   "--",
	Member:    ".",
	Sequence:  ",",
}

func (op Operator) String() string {
	if op > 0 && int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("Operator(%d)", op)
}

// IsAssign reports whether op is = or a compound assignment.
func (op Operator) IsAssign() bool {
	return op >= Assign && op <= OrAssign
}

// Underlying returns the binary operator a compound assignment applies,
// e.g. Add for +=. It returns 0 for plain = and non-assignments.
func (op Operator) Underlying() Operator {
	switch op {
	case AddAssign:
		return Add
	case SubAssign:
		return Sub
	case MulAssign:
		return Mul
	case DivAssign:
		return Div
	case RemAssign:
		return Rem
	case ShlAssign:
		return Shl
	case ShrAssign:
		return Shr
	case AndAssign:
		return And
	case XorAssign:
		return Xor
	case OrAssign:
		return Or
	}
	return 0
}

// IsLogical reports whether op is ||, ^^ or &&.
func (op Operator) IsLogical() bool {
	return op >= OrOr && op <= AndAnd
}

// IsComparison reports whether op is an equality or relational operator.
func (op Operator) IsComparison() bool {
	return op >= Eql && op <= Geq
}

// IsIntegral reports whether op is only defined on integer operands.
func (op Operator) IsIntegral() bool {
	switch op {
	case Or, Xor, And, Shl, Shr, Rem, BitNot, PreInc, PreDec, PostInc, PostDec:
		return true
	}
	return false
}

// assignOps maps assignment tokens to their operators.
var assignOps = map[Token]Operator{
	_Assign:    Assign,
	_AddAssign: AddAssign,
	_SubAssign: SubAssign,
	_MulAssign: MulAssign,
	_DivAssign: DivAssign,
	_RemAssign: RemAssign,
	_ShlAssign: ShlAssign,
	_ShrAssign: ShrAssign,
	_AndAssign: AndAssign,
	_XorAssign: XorAssign,
	_OrAssign:  OrAssign,
}

// prefixOps maps prefix operator tokens to their operators.
var prefixOps = map[Token]Operator{
	_Inc:   PreInc,
	_Dec:   PreDec,
	_Add:   Plus,
	_Sub:   Neg,
	_Not:   Not,
	_Tilde: BitNot,
}

// binaryLevels lists the left-associative binary precedence levels from
// loosest to tightest binding.
var binaryLevels = [...]map[Token]Operator{
	{_OrOr: OrOr},
	{_XorXor: XorXor},
	{_AndAnd: AndAnd},
	{_Or: Or},
	{_Xor: Xor},
	{_And: And},
	{_Eql: Eql, _Neq: Neq},
	{_Lss: Lss, _Leq: Leq, _Gtr: Gtr, _Geq: Geq},
	{_Shl: Shl, _Shr: Shr},
	{_Add: Add, _Sub: Sub},
	{_Mul: Mul, _Div: Div, _Rem: Rem},
}

// Precedence returns the binding strength of a binary operator: 1 for
// ||, up to 11 for * / %. It returns 0 for other operators.
func (op Operator) Precedence() int {
	for i, level := range binaryLevels {
		for _, o := range level {
			if o == op {
				return i + 1
			}
		}
	}
	return 0
}
