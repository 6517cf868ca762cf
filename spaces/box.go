// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spaces

import (
	"fmt"
	"math"
	"slices"

	"cogentcore.org/simenv/base/randx"
	"gonum.org/v1/gonum/mat"
)

// Box is a possibly unbounded box in R^n: each element of a value lies
// between the corresponding elements of Low and High, which may be infinite.
type Box struct {

	// Low holds the lower bound of each element.
	Low *mat.VecDense

	// High holds the upper bound of each element.
	High *mat.VecDense

	// shape is the shape of values.
	shape []int

	// DType is the element type.
	DType DTypes
}

// NewBox returns a [Box] of the given shape whose elements all share
// the given bounds.
func NewBox(low, high float64, shape []int, dtype DTypes) *Box {
	n := ShapeSize(shape)
	lo := make([]float64, n)
	hi := make([]float64, n)
	for i := range lo {
		lo[i] = low
		hi[i] = high
	}
	return &Box{Low: mat.NewVecDense(n, lo), High: mat.NewVecDense(n, hi), shape: slices.Clone(shape), DType: dtype}
}

// NewBoxBounds returns a one-dimensional [Float32] [Box] with per-element bounds.
// It returns an error if the bounds differ in length or low exceeds high.
func NewBoxBounds(low, high []float64) (*Box, error) {
	if len(low) != len(high) {
		return nil, fmt.Errorf("spaces.NewBoxBounds: %d low bounds and %d high bounds", len(low), len(high))
	}
	if len(low) == 0 {
		return nil, fmt.Errorf("spaces.NewBoxBounds: no bounds")
	}
	for i := range low {
		if low[i] > high[i] {
			return nil, fmt.Errorf("spaces.NewBoxBounds: low %g > high %g at %d", low[i], high[i], i)
		}
	}
	return &Box{Low: mat.NewVecDense(len(low), slices.Clone(low)), High: mat.NewVecDense(len(high), slices.Clone(high)),
		shape: []int{len(low)}, DType: Float32}, nil
}

func (b *Box) Shape() []int { return slices.Clone(b.shape) }

func (b *Box) Size() int { return b.Low.Len() }

func (b *Box) Contains(x []float64) bool {
	if len(x) != b.Size() {
		return false
	}
	for i, v := range x {
		if math.IsNaN(v) || v < b.Low.AtVec(i) || v > b.High.AtVec(i) {
			return false
		}
		if b.DType.IsInteger() && !isInt(v) {
			return false
		}
	}
	return true
}

func (b *Box) Sample(r randx.Rand) []float64 {
	x := make([]float64, b.Size())
	for i := range x {
		lo, hi := b.Low.AtVec(i), b.High.AtVec(i)
		if b.DType.IsInteger() && !math.IsInf(hi, 1) {
			hi++
		}
		loInf, hiInf := math.IsInf(lo, -1), math.IsInf(hi, 1)
		var v float64
		switch {
		case loInf && hiInf:
			v = r.NormFloat64()
		case loInf:
			v = hi - r.ExpFloat64()
		case hiInf:
			v = lo + r.ExpFloat64()
		default:
			v = lo + r.Float64()*(hi-lo)
		}
		if b.DType.IsInteger() {
			v = math.Floor(v)
			if !hiInf {
				v = min(v, hi-1)
			}
		}
		x[i] = v
	}
	return x
}

// IsBounded returns whether every element has finite bounds.
func (b *Box) IsBounded() bool {
	for i := 0; i < b.Size(); i++ {
		if math.IsInf(b.Low.AtVec(i), 0) || math.IsInf(b.High.AtVec(i), 0) {
			return false
		}
	}
	return true
}

func (b *Box) String() string {
	n := b.Size()
	if n == 0 {
		return fmt.Sprintf("Box(%v, %s)", b.shape, b.DType)
	}
	lo, hi := b.Low.AtVec(0), b.High.AtVec(0)
	for i := 1; i < n; i++ {
		if b.Low.AtVec(i) != lo || b.High.AtVec(i) != hi {
			return fmt.Sprintf("Box(%v, %v, %v, %s)", mat.Formatted(b.Low.T()), mat.Formatted(b.High.T()), b.shape, b.DType)
		}
	}
	return fmt.Sprintf("Box(%g, %g, %v, %s)", lo, hi, b.shape, b.DType)
}
