package types

// rank orders scalar types for arithmetic promotion. Booleans promote
// like int.
func rank(t AstType) int {
	switch t {
	case Bool, Int:
		return 1
	case Uint:
		return 2
	case Float:
		return 3
	case Double:
		return 4
	}
	return 0
}

// widest returns the wider of two scalar types. Bool widens to int.
func widest(x, y AstType) AstType {
	if rank(y) > rank(x) {
		x = y
	}
	if x == Bool {
		return Int
	}
	return x
}

// Promote returns the common representation both operands of an
// arithmetic operator are converted to before the operation: the shape of
// the vector or matrix operand (if any) and the widest scalar component.
// Mismatched shapes yield Error.
func Promote(x, y AstType) AstType {
	if !x.IsNumeric() || !y.IsNumeric() {
		return Error
	}
	switch {
	case x.IsMatrix() || y.IsMatrix():
		if x.IsMatrix() && y.IsMatrix() && x != y {
			return Error
		}
		if x.IsMatrix() {
			return x
		}
		return y
	case x.IsVector() && y.IsVector():
		if x.Len() != y.Len() {
			return Error
		}
		return VectorOf(widest(x.Scalar(), y.Scalar()), x.Len())
	case x.IsVector():
		return VectorOf(widest(x.Scalar(), y), x.Len())
	case y.IsVector():
		return VectorOf(widest(x, y.Scalar()), y.Len())
	}
	return widest(x, y)
}

// ConvertibleTo reports whether a value of type from can be converted to
// type to by an implicit conversion: scalar to scalar, scalar to vector
// or matrix (splat), or between vectors of equal length.
func ConvertibleTo(from, to AstType) bool {
	switch {
	case from == to:
		return from.IsValid() && from != Void
	case !from.IsNumeric() || !to.IsNumeric():
		return false
	case from.IsScalar():
		return true
	case from.IsVector() && to.IsVector():
		return from.Len() == to.Len()
	}
	return false
}
