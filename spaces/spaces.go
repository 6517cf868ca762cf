// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package spaces describes the action and observation spaces of
// reinforcement learning agents: continuous boxes, discrete choices,
// and tuples and dictionaries of those.
//
// Values in every space are flat []float64 slices. A [Box] value is
// its elements in row-major order, a [Discrete] value is one element,
// and [Tuple] and [Dict] values concatenate the values of their
// sub-spaces in order.
package spaces

import (
	"fmt"
	"math"

	"cogentcore.org/simenv/base/randx"
)

// Space is a set of valid actions or observations.
type Space interface {

	// Shape returns the shape of values in the space; nil for composite spaces.
	Shape() []int

	// Size returns the number of float64 elements in a flat value.
	Size() int

	// Contains returns whether x is a member of the space.
	Contains(x []float64) bool

	// Sample returns a uniformly random (or, for unbounded boxes,
	// normally or exponentially distributed) member of the space.
	Sample(r randx.Rand) []float64

	fmt.Stringer
}

// DTypes are the element types of space values.
type DTypes string

const (
	Float32 DTypes = "float32"
	Float64 DTypes = "float64"
	Uint8   DTypes = "uint8"
	Int64   DTypes = "int64"
)

// IsInteger returns whether the type holds integers.
func (d DTypes) IsInteger() bool {
	return d == Uint8 || d == Int64
}

// ShapeSize returns the number of elements in a value of the given shape.
func ShapeSize(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}

func isInt(v float64) bool {
	return v == math.Trunc(v) && !math.IsInf(v, 0)
}
