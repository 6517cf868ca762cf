// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spaces

import (
	"math"
	"testing"

	"cogentcore.org/simenv/base/randx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBox(t *testing.T) {
	cam := NewBox(0, 255, []int{3, 4, 2}, Uint8)
	assert.Equal(t, []int{3, 4, 2}, cam.Shape())
	assert.Equal(t, 24, cam.Size())
	assert.True(t, cam.IsBounded())
	assert.Equal(t, "Box(0, 255, [3 4 2], uint8)", cam.String())

	x := make([]float64, 24)
	assert.True(t, cam.Contains(x))
	x[3] = 255
	assert.True(t, cam.Contains(x))
	x[3] = 256
	assert.False(t, cam.Contains(x))
	x[3] = 1.5
	assert.False(t, cam.Contains(x))
	assert.False(t, cam.Contains(x[:3]))

	rnd := randx.NewSysRand(1)
	for i := 0; i < 20; i++ {
		assert.True(t, cam.Contains(cam.Sample(rnd)))
	}
}

func TestBoxBounds(t *testing.T) {
	b, err := NewBoxBounds([]float64{-1, 0}, []float64{1, 10})
	require.NoError(t, err)
	assert.True(t, b.Contains([]float64{0.5, 9.5}))
	assert.False(t, b.Contains([]float64{-2, 0}))
	assert.False(t, b.Contains([]float64{math.NaN(), 0}))

	_, err = NewBoxBounds([]float64{1}, []float64{0})
	assert.Error(t, err)
	_, err = NewBoxBounds([]float64{1}, []float64{2, 3})
	assert.Error(t, err)

	inf := NewBox(math.Inf(-1), math.Inf(1), []int{5}, Float32)
	assert.False(t, inf.IsBounded())
	assert.True(t, inf.Contains(inf.Sample(randx.NewSysRand(2))))
	half := NewBox(0, math.Inf(1), []int{5}, Float32)
	assert.True(t, half.Contains(half.Sample(randx.NewSysRand(3))))
}

func TestDiscrete(t *testing.T) {
	d := NewDiscrete(3)
	assert.True(t, d.Contains([]float64{2}))
	assert.False(t, d.Contains([]float64{3}))
	assert.False(t, d.Contains([]float64{-1}))
	assert.False(t, d.Contains([]float64{0, 1}))
	assert.Equal(t, "Discrete(3)", d.String())

	md := NewMultiDiscrete(2, 5)
	assert.Equal(t, []int{2}, md.Shape())
	assert.True(t, md.Contains([]float64{1, 4}))
	assert.False(t, md.Contains([]float64{2, 4}))

	rnd := randx.NewSysRand(4)
	for i := 0; i < 20; i++ {
		assert.True(t, d.Contains(d.Sample(rnd)))
		assert.True(t, md.Contains(md.Sample(rnd)))
	}
}

func TestComposite(t *testing.T) {
	tp := NewTuple(NewDiscrete(2), NewBox(0, 1, []int{2}, Float32))
	assert.Equal(t, 3, tp.Size())
	assert.True(t, tp.Contains([]float64{1, 0.5, 0.5}))
	assert.False(t, tp.Contains([]float64{1, 0.5}))
	assert.Equal(t, [][]float64{{1}, {0.5, 0.25}}, tp.Split([]float64{1, 0.5, 0.25}))
	assert.Equal(t, "Tuple(Discrete(2), Box(0, 1, [2], float32))", tp.String())

	d := NewDict().Add("camera", NewBox(0, 255, []int{3, 1, 1}, Uint8)).Add("action", NewDiscrete(3))
	assert.Equal(t, 4, d.Size())
	assert.NotNil(t, d.Space("action"))
	assert.Nil(t, d.Space("missing"))
	x := d.Sample(randx.NewSysRand(5))
	assert.True(t, d.Contains(x))
	parts := d.Split(x)
	assert.Equal(t, []string{"camera", "action"}, parts.Keys())
	assert.Len(t, parts.ValueByKey("camera"), 3)
}
