// Package types defines the value types of the shading language and the
// lexical scopes used while lowering a program.
package types

import "fmt"

// AstType is the static type of a declaration or an expression.
type AstType int

const (
	Void AstType = iota

	// Scalars
	Bool
	Int
	Uint
	Float
	Double

	// Vectors
	Vec2
	Vec3
	Vec4
	DVec2
	DVec3
	DVec4
	BVec2
	BVec3
	BVec4
	IVec2
	IVec3
	IVec4
	UVec2
	UVec3
	UVec4

	// Matrices (square, float, column major)
	Mat2
	Mat3
	Mat4

	// Error marks a type that could not be determined. It is never a
	// valid operand type.
	Error

	typeCount
)

// Info describes properties of a type.
type Info int

const (
	IsBoolean Info = 1 << iota
	IsInteger
	IsUnsigned
	IsFloat
	IsScalar
	IsVector
	IsMatrix

	IsNumeric = IsInteger | IsFloat
)

type basic struct {
	name string
	info Info
	elem AstType // component type; column type for matrices
	n    int     // component count; column count for matrices
}

var typeTable = [...]basic{
	Void: {name: "void"},

	Bool:   {name: "bool", info: IsBoolean | IsScalar, elem: Bool, n: 1},
	Int:    {name: "int", info: IsInteger | IsScalar, elem: Int, n: 1},
	Uint:   {name: "uint", info: IsInteger | IsUnsigned | IsScalar, elem: Uint, n: 1},
	Float:  {name: "float", info: IsFloat | IsScalar, elem: Float, n: 1},
	Double: {name: "double", info: IsFloat | IsScalar, elem: Double, n: 1},

	Vec2:  {name: "vec2", info: IsFloat | IsVector, elem: Float, n: 2},
	Vec3:  {name: "vec3", info: IsFloat | IsVector, elem: Float, n: 3},
	Vec4:  {name: "vec4", info: IsFloat | IsVector, elem: Float, n: 4},
	DVec2: {name: "dvec2", info: IsFloat | IsVector, elem: Double, n: 2},
	DVec3: {name: "dvec3", info: IsFloat | IsVector, elem: Double, n: 3},
	DVec4: {name: "dvec4", info: IsFloat | IsVector, elem: Double, n: 4},
	BVec2: {name: "bvec2", info: IsBoolean | IsVector, elem: Bool, n: 2},
	BVec3: {name: "bvec3", info: IsBoolean | IsVector, elem: Bool, n: 3},
	BVec4: {name: "bvec4", info: IsBoolean | IsVector, elem: Bool, n: 4},
	IVec2: {name: "ivec2", info: IsInteger | IsVector, elem: Int, n: 2},
	IVec3: {name: "ivec3", info: IsInteger | IsVector, elem: Int, n: 3},
	IVec4: {name: "ivec4", info: IsInteger | IsVector, elem: Int, n: 4},
	UVec2: {name: "uvec2", info: IsInteger | IsUnsigned | IsVector, elem: Uint, n: 2},
	UVec3: {name: "uvec3", info: IsInteger | IsUnsigned | IsVector, elem: Uint, n: 3},
	UVec4: {name: "uvec4", info: IsInteger | IsUnsigned | IsVector, elem: Uint, n: 4},

	Mat2: {name: "mat2", info: IsFloat | IsMatrix, elem: Vec2, n: 2},
	Mat3: {name: "mat3", info: IsFloat | IsMatrix, elem: Vec3, n: 3},
	Mat4: {name: "mat4", info: IsFloat | IsMatrix, elem: Vec4, n: 4},

	Error: {name: "error"},
}

// String returns the source spelling of the type.
func (t AstType) String() string {
	if t >= 0 && t < typeCount {
		return typeTable[t].name
	}
	return fmt.Sprintf("AstType(%d)", int(t))
}

// Info returns the property flags of t.
func (t AstType) Info() Info {
	if t >= 0 && t < typeCount {
		return typeTable[t].info
	}
	return 0
}

// Elem returns the component type of a vector, the column type of a
// matrix, and t itself for scalars. Void and Error have no components.
func (t AstType) Elem() AstType {
	if t >= 0 && t < typeCount && typeTable[t].n > 0 {
		return typeTable[t].elem
	}
	return Error
}

// Scalar returns the scalar type a value of type t is made of.
// For matrices this is float.
func (t AstType) Scalar() AstType {
	e := t.Elem()
	if e.IsVector() {
		return e.Elem()
	}
	return e
}

// Len returns the number of components of a vector, the number of columns
// of a matrix, 1 for scalars and 0 for void and error.
func (t AstType) Len() int {
	if t >= 0 && t < typeCount {
		return typeTable[t].n
	}
	return 0
}

func (t AstType) IsValid() bool    { return t >= Void && t < Error }
func (t AstType) IsScalar() bool   { return t.Info()&IsScalar != 0 }
func (t AstType) IsVector() bool   { return t.Info()&IsVector != 0 }
func (t AstType) IsMatrix() bool   { return t.Info()&IsMatrix != 0 }
func (t AstType) IsBoolean() bool  { return t.Info()&IsBoolean != 0 }
func (t AstType) IsInteger() bool  { return t.Info()&IsInteger != 0 }
func (t AstType) IsUnsigned() bool { return t.Info()&IsUnsigned != 0 }
func (t AstType) IsFloat() bool    { return t.Info()&IsFloat != 0 }

// IsNumeric reports whether arithmetic is defined on t. Booleans count as
// integers holding 0 or 1.
func (t AstType) IsNumeric() bool {
	return t.Info()&(IsNumeric|IsBoolean) != 0
}

// VectorOf returns the n-component vector type with the given scalar
// component, the scalar itself when n is 1, or Error if there is none.
func VectorOf(scalar AstType, n int) AstType {
	if n == 1 && scalar.IsScalar() {
		return scalar
	}
	for t := Vec2; t <= UVec4; t++ {
		if typeTable[t].elem == scalar && typeTable[t].n == n {
			return t
		}
	}
	return Error
}

// MatrixOf returns the n×n matrix type, or Error.
func MatrixOf(n int) AstType {
	switch n {
	case 2:
		return Mat2
	case 3:
		return Mat3
	case 4:
		return Mat4
	}
	return Error
}

// Components returns the number of scalars a value of type t holds.
func (t AstType) Components() int {
	if t.IsMatrix() {
		return t.Len() * t.Len()
	}
	return t.Len()
}
