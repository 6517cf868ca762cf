// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package exec runs and starts external commands, such as the
// simulation engine executable, with configurable standard IO
// and environment.
package exec

import (
	"io"
	"log/slog"
	"os"

	"cogentcore.org/simenv/logx"
)

// Config contains the configuration information that
// controls the behavior of running commands. A default version
// can be constructed using [Major] or [Minor].
type Config struct {

	// Stdout is the writer to write the standard output of called commands to.
	// It can be set to nil to disable the writing of the standard output.
	Stdout io.Writer

	// Stderr is the writer to write the standard error of called commands to.
	// It can be set to nil to disable the writing of the standard error.
	Stderr io.Writer

	// Stdin is the reader to use as the standard input.
	Stdin io.Reader

	// Commands is the writer to write the string representation of the called commands to.
	// It can be set to nil to disable the writing of the string representations of the called commands.
	Commands io.Writer

	// Dir is the directory to execute commands in. If it is unset,
	// commands are run in the current directory.
	Dir string

	// Env contains any additional environment variables specified.
	Env map[string]string
}

// Major returns the default [Config] object for a major command,
// based on [logx.UserLevel]. It should be used for commands that
// are central to the current operation, such as the engine process.
func Major() *Config {
	if logx.UserLevel > slog.LevelInfo {
		return &Config{
			Stderr: os.Stderr,
			Env:    map[string]string{},
		}
	}
	return &Config{
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Commands: os.Stdout,
		Env:      map[string]string{},
	}
}

// Minor returns the default [Config] object for a minor command,
// based on [logx.UserLevel].
func Minor() *Config {
	if logx.UserLevel > slog.LevelDebug {
		return &Config{
			Stderr: os.Stderr,
			Env:    map[string]string{},
		}
	}
	return &Config{
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Commands: os.Stdout,
		Env:      map[string]string{},
	}
}

// SetEnv sets the given environment variable.
func (c *Config) SetEnv(key, value string) *Config {
	if c.Env == nil {
		c.Env = map[string]string{}
	}
	c.Env[key] = value
	return c
}
