// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spaces

import (
	"fmt"
	"slices"

	"cogentcore.org/simenv/base/randx"
)

// Discrete is the set {0, 1, ..., N-1}.
type Discrete struct {
	N int
}

// NewDiscrete returns a new [Discrete] space with n elements.
func NewDiscrete(n int) *Discrete {
	return &Discrete{N: n}
}

func (d *Discrete) Shape() []int { return []int{} }

func (d *Discrete) Size() int { return 1 }

func (d *Discrete) Contains(x []float64) bool {
	return len(x) == 1 && isInt(x[0]) && x[0] >= 0 && int(x[0]) < d.N
}

func (d *Discrete) Sample(r randx.Rand) []float64 {
	return []float64{float64(r.Intn(d.N))}
}

func (d *Discrete) String() string {
	return fmt.Sprintf("Discrete(%d)", d.N)
}

// MultiDiscrete is a vector of independent discrete choices,
// where element i lies in {0, ..., Nvec[i]-1}.
type MultiDiscrete struct {
	Nvec []int
}

// NewMultiDiscrete returns a new [MultiDiscrete] space.
func NewMultiDiscrete(nvec ...int) *MultiDiscrete {
	return &MultiDiscrete{Nvec: slices.Clone(nvec)}
}

func (m *MultiDiscrete) Shape() []int { return []int{len(m.Nvec)} }

func (m *MultiDiscrete) Size() int { return len(m.Nvec) }

func (m *MultiDiscrete) Contains(x []float64) bool {
	if len(x) != len(m.Nvec) {
		return false
	}
	for i, v := range x {
		if !isInt(v) || v < 0 || int(v) >= m.Nvec[i] {
			return false
		}
	}
	return true
}

func (m *MultiDiscrete) Sample(r randx.Rand) []float64 {
	x := make([]float64, len(m.Nvec))
	for i, n := range m.Nvec {
		x[i] = float64(r.Intn(n))
	}
	return x
}

func (m *MultiDiscrete) String() string {
	return fmt.Sprintf("MultiDiscrete(%v)", m.Nvec)
}
