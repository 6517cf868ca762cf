// Copyright (c) 2022, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ordmap

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap(t *testing.T) {
	om := New[string, int]()
	om.Add("cam", 1)
	om.Add("agent/cam", 2)
	om.Add("top", 3)
	om.Add("cam", 10)

	assert.Equal(t, 3, om.Len())
	assert.Equal(t, []string{"cam", "agent/cam", "top"}, om.Keys())
	assert.Equal(t, []int{10, 2, 3}, om.Values())
	assert.Equal(t, 1, om.IndexByKey("agent/cam"))
	assert.Equal(t, -1, om.IndexByKey("missing"))

	_, ok := om.ValueByKeyTry("missing")
	assert.False(t, ok)

	assert.True(t, om.DeleteKey("cam"))
	assert.False(t, om.DeleteKey("cam"))
	assert.Equal(t, 0, om.IndexByKey("agent/cam"))
	assert.Equal(t, 3, om.ValueByKey("top"))

	var nilmap *Map[string, int]
	assert.Equal(t, 0, nilmap.Len())
	assert.Equal(t, -1, nilmap.IndexByKey("x"))
}

func TestJSON(t *testing.T) {
	om := New[string, []int]()
	om.Add("zeta", []int{1})
	om.Add("alpha", []int{2, 3})

	b, err := json.Marshal(om)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":[1],"alpha":[2,3]}`, string(b))

	back := New[string, []int]()
	require.NoError(t, json.Unmarshal([]byte(`{"b":[5],"a":[6],"c":[]}`), back))
	assert.Equal(t, []string{"b", "a", "c"}, back.Keys())
	assert.Equal(t, []int{6}, back.ValueByKey("a"))

	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), back))
}
