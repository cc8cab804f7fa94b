package ir

import (
	"fmt"

	"github.com/llir/llvm/ir/constant"
	lltypes "github.com/llir/llvm/ir/types"

	"github.com/geraltigas/glslc/internal/types"
)

// LLType maps a shading-language type to its LLVM representation:
//
//	bool, int, uint   i32 (bool holds 0 or 1)
//	float, double     float, double
//	vecN, dvecN       <N x float>, <N x double>
//	bvecN, ivecN, uvecN  <N x i32>
//	matN              [N x <N x float>] (column major)
//	void              void
//
// It panics on types.Error, which has no representation.
func LLType(t types.AstType) lltypes.Type {
	switch {
	case t == types.Void:
		return lltypes.Void
	case t.IsScalar():
		return scalarType(t)
	case t.IsVector():
		return lltypes.NewVector(uint64(t.Len()), scalarType(t.Scalar()))
	case t.IsMatrix():
		return lltypes.NewArray(uint64(t.Len()), LLType(t.Elem()))
	}
	panic(fmt.Sprintf("ir: no LLVM type for %s", t))
}

func scalarType(t types.AstType) lltypes.Type {
	switch t {
	case types.Float:
		return lltypes.Float
	case types.Double:
		return lltypes.Double
	}
	return lltypes.I32
}

// Zero returns the zero constant of t.
func Zero(t types.AstType) constant.Constant {
	switch {
	case t == types.Float:
		return constant.NewFloat(lltypes.Float, 0)
	case t == types.Double:
		return constant.NewFloat(lltypes.Double, 0)
	case t.IsScalar():
		return constant.NewInt(lltypes.I32, 0)
	}
	return constant.NewZeroInitializer(LLType(t))
}

// Scalar returns the scalar constant v of type t, which must be a scalar
// type. Integer types truncate v.
func Scalar(t types.AstType, v float64) constant.Constant {
	switch t {
	case types.Float:
		return constant.NewFloat(lltypes.Float, v)
	case types.Double:
		return constant.NewFloat(lltypes.Double, v)
	}
	return constant.NewInt(lltypes.I32, int64(v))
}

// Int returns the i32 constant v.
func Int(v int64) constant.Constant {
	return constant.NewInt(lltypes.I32, v)
}
