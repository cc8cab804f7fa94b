package types

import "testing"

func TestTypeTable(t *testing.T) {
	tests := []struct {
		typ    AstType
		name   string
		elem   AstType
		scalar AstType
		n      int
	}{
		{Bool, "bool", Bool, Bool, 1},
		{Uint, "uint", Uint, Uint, 1},
		{Double, "double", Double, Double, 1},
		{Vec3, "vec3", Float, Float, 3},
		{DVec2, "dvec2", Double, Double, 2},
		{BVec4, "bvec4", Bool, Bool, 4},
		{IVec2, "ivec2", Int, Int, 2},
		{UVec3, "uvec3", Uint, Uint, 3},
		{Mat3, "mat3", Vec3, Float, 3},
		{Void, "void", Error, Error, 0},
		{Error, "error", Error, Error, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.typ.String(); got != tt.name {
				t.Errorf("String() = %q, want %q", got, tt.name)
			}
			if got := tt.typ.Elem(); got != tt.elem {
				t.Errorf("Elem() = %v, want %v", got, tt.elem)
			}
			if got := tt.typ.Scalar(); got != tt.scalar {
				t.Errorf("Scalar() = %v, want %v", got, tt.scalar)
			}
			if got := tt.typ.Len(); got != tt.n {
				t.Errorf("Len() = %d, want %d", got, tt.n)
			}
		})
	}
}

func TestTypePredicates(t *testing.T) {
	if !Uint.IsInteger() || !Uint.IsUnsigned() || Int.IsUnsigned() {
		t.Error("integer predicates wrong")
	}
	if !Vec2.IsFloat() || !Vec2.IsVector() || Vec2.IsScalar() {
		t.Error("vector predicates wrong")
	}
	if !Mat4.IsMatrix() || Mat4.Components() != 16 {
		t.Error("matrix predicates wrong")
	}
	if Error.IsValid() || !Void.IsValid() || Error.IsNumeric() || Void.IsNumeric() {
		t.Error("validity predicates wrong")
	}
	if AstType(99).String() != "AstType(99)" {
		t.Errorf("String() of out-of-range type = %q", AstType(99).String())
	}
}

func TestVectorOf(t *testing.T) {
	tests := []struct {
		scalar AstType
		n      int
		want   AstType
	}{
		{Float, 3, Vec3},
		{Double, 4, DVec4},
		{Int, 2, IVec2},
		{Bool, 3, BVec3},
		{Uint, 4, UVec4},
		{Float, 1, Float},
		{Float, 5, Error},
		{Vec2, 2, Error},
	}
	for _, tt := range tests {
		if got := VectorOf(tt.scalar, tt.n); got != tt.want {
			t.Errorf("VectorOf(%v, %d) = %v, want %v", tt.scalar, tt.n, got, tt.want)
		}
	}
	if MatrixOf(2) != Mat2 || MatrixOf(5) != Error {
		t.Error("MatrixOf wrong")
	}
}

func TestLookup(t *testing.T) {
	for typ := Void; typ < Error; typ++ {
		got, ok := Lookup(typ.String())
		if !ok || got != typ {
			t.Errorf("Lookup(%q) = %v, %v", typ.String(), got, ok)
		}
	}
	if got, ok := Lookup("error"); ok || got != Error {
		t.Errorf("Lookup(error) = %v, %v; error is not spellable", got, ok)
	}
	if _, ok := Lookup("vec5"); ok {
		t.Error("Lookup(vec5) succeeded")
	}
}
