package types

// Sizes computes sizes, alignments and offsets of types in a uniform
// block under the std140 layout rules.
type Sizes struct{}

// DefaultSizes is the default Sizes implementation.
var DefaultSizes = &Sizes{}

// Scalar sizes in bytes. Booleans occupy a full word in a block.
const (
	SizeWord   = 4
	SizeDouble = 8

	// A matrix column is aligned like a vec4.
	ColumnAlign = 4 * SizeWord
)

// Sizeof returns the size of t in bytes, or 0 for void and error.
func (s *Sizes) Sizeof(t AstType) int64 {
	switch {
	case t.IsScalar():
		return s.scalarSize(t)
	case t.IsVector():
		return int64(t.Len()) * s.scalarSize(t.Scalar())
	case t.IsMatrix():
		return int64(t.Len()) * s.columnStride(t)
	}
	return 0
}

// Alignof returns the base alignment of t in bytes.
func (s *Sizes) Alignof(t AstType) int64 {
	switch {
	case t.IsScalar():
		return s.scalarSize(t)
	case t.IsVector():
		n := int64(t.Len())
		if n == 3 {
			n = 4
		}
		return n * s.scalarSize(t.Scalar())
	case t.IsMatrix():
		return s.columnStride(t)
	}
	return 1
}

// Offsets returns the offset of each member of a block holding members of
// the given types in order, along with the size of the block. The block
// size is rounded up to a multiple of the largest member alignment and
// of a vec4.
func (s *Sizes) Offsets(members []AstType) (offsets []int64, size int64) {
	var offset int64
	var maxAlign int64 = ColumnAlign
	offsets = make([]int64, len(members))

	for i, t := range members {
		a := s.Alignof(t)
		offset = align(offset, a)
		offsets[i] = offset
		offset += s.Sizeof(t)
		if a > maxAlign {
			maxAlign = a
		}
	}
	return offsets, align(offset, maxAlign)
}

func (s *Sizes) scalarSize(t AstType) int64 {
	if t == Double {
		return SizeDouble
	}
	return SizeWord
}

// columnStride is the distance between matrix columns: the column
// alignment rounded up to that of a vec4.
func (s *Sizes) columnStride(m AstType) int64 {
	return align(s.Alignof(m.Elem()), ColumnAlign)
}

// align returns x rounded up to a multiple of a.
func align(x, a int64) int64 {
	return (x + a - 1) &^ (a - 1)
}
