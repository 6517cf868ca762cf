// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !windows

package exec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutput(t *testing.T) {
	c := &Config{}
	c.SetEnv("SIMENV_TEST_VALUE", "hello")
	out, err := c.Output("echo", "$SIMENV_TEST_VALUE")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestCommandsWriter(t *testing.T) {
	var cmds bytes.Buffer
	c := &Config{Commands: &cmds}
	require.NoError(t, c.Run("true"))
	assert.Contains(t, cmds.String(), "true")
}

func TestStart(t *testing.T) {
	c := &Config{}
	cm, err := c.Start("sleep", "0")
	require.NoError(t, err)
	require.NoError(t, cm.Wait())
}

func TestExitStatus(t *testing.T) {
	c := &Config{}
	err := c.Run("false")
	require.Error(t, err)
	assert.True(t, CmdRan(err))
	assert.Equal(t, 1, ExitStatus(err))

	err = c.Run("simenv-no-such-command")
	require.Error(t, err)
	assert.False(t, CmdRan(err))
	assert.Equal(t, 0, ExitStatus(nil))
}

func TestArgs(t *testing.T) {
	args, err := Args(`engine --headless --path "my scenes"`)
	require.NoError(t, err)
	assert.Equal(t, []string{"engine", "--headless", "--path", "my scenes"}, args)

	_, err = Args("   ")
	assert.Error(t, err)
	_, err = Args(`engine "unterminated`)
	assert.Error(t, err)
}

func TestStartLine(t *testing.T) {
	c := &Config{}
	cm, err := c.StartLine("sleep", "0")
	require.NoError(t, err)
	require.NoError(t, cm.Wait())
}
