// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spaces

import (
	"strings"

	"cogentcore.org/simenv/base/ordmap"
	"cogentcore.org/simenv/base/randx"
)

// Tuple is the cartesian product of its sub-spaces, in order.
type Tuple struct {
	Spaces []Space
}

// NewTuple returns a new [Tuple] of the given spaces.
func NewTuple(spaces ...Space) *Tuple {
	return &Tuple{Spaces: spaces}
}

func (t *Tuple) Shape() []int { return nil }

func (t *Tuple) Size() int {
	n := 0
	for _, s := range t.Spaces {
		n += s.Size()
	}
	return n
}

func (t *Tuple) Contains(x []float64) bool {
	return containsAll(t.Spaces, x)
}

func (t *Tuple) Sample(r randx.Rand) []float64 {
	return sampleAll(t.Spaces, r)
}

// Split splits a flat value into the values of each sub-space.
func (t *Tuple) Split(x []float64) [][]float64 {
	return split(t.Spaces, x)
}

func (t *Tuple) String() string {
	parts := make([]string, len(t.Spaces))
	for i, s := range t.Spaces {
		parts[i] = s.String()
	}
	return "Tuple(" + strings.Join(parts, ", ") + ")"
}

// Dict is the cartesian product of named sub-spaces, kept in the order added.
type Dict struct {
	Spaces *ordmap.Map[string, Space]
}

// NewDict returns a new empty [Dict].
func NewDict() *Dict {
	return &Dict{Spaces: ordmap.New[string, Space]()}
}

// Add adds (or replaces) the named sub-space and returns the dict.
func (d *Dict) Add(name string, s Space) *Dict {
	d.Spaces.Add(name, s)
	return d
}

// Space returns the named sub-space, or nil.
func (d *Dict) Space(name string) Space {
	return d.Spaces.ValueByKey(name)
}

func (d *Dict) Shape() []int { return nil }

func (d *Dict) Size() int {
	n := 0
	for _, kv := range d.Spaces.Order {
		n += kv.Value.Size()
	}
	return n
}

func (d *Dict) Contains(x []float64) bool {
	return containsAll(d.Spaces.Values(), x)
}

func (d *Dict) Sample(r randx.Rand) []float64 {
	return sampleAll(d.Spaces.Values(), r)
}

// Split splits a flat value into the values of each named sub-space.
func (d *Dict) Split(x []float64) *ordmap.Map[string, []float64] {
	parts := split(d.Spaces.Values(), x)
	res := ordmap.New[string, []float64]()
	for i, kv := range d.Spaces.Order {
		if i < len(parts) {
			res.Add(kv.Key, parts[i])
		}
	}
	return res
}

func (d *Dict) String() string {
	parts := make([]string, d.Spaces.Len())
	for i, kv := range d.Spaces.Order {
		parts[i] = kv.Key + ": " + kv.Value.String()
	}
	return "Dict(" + strings.Join(parts, ", ") + ")"
}

func containsAll(spaces []Space, x []float64) bool {
	off := 0
	for _, s := range spaces {
		n := s.Size()
		if off+n > len(x) || !s.Contains(x[off:off+n]) {
			return false
		}
		off += n
	}
	return off == len(x)
}

func sampleAll(spaces []Space, r randx.Rand) []float64 {
	var x []float64
	for _, s := range spaces {
		x = append(x, s.Sample(r)...)
	}
	return x
}

func split(spaces []Space, x []float64) [][]float64 {
	parts := make([][]float64, 0, len(spaces))
	off := 0
	for _, s := range spaces {
		n := s.Size()
		if off+n > len(x) {
			break
		}
		parts = append(parts, x[off:off+n])
		off += n
	}
	return parts
}
