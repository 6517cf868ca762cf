// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Adapted in part from: https://github.com/magefile/mage
// Copyright presumably by Nate Finch, primary contributor
// Apache License, Version 2.0, January 2004

package exec

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"cogentcore.org/simenv/logx"
	"github.com/mattn/go-shellwords"
	"github.com/muesli/termenv"
)

// Cmd is a type alias for [exec.Cmd].
type Cmd = exec.Cmd

// Run runs the given command using the given configuration
// information and arguments, waiting for it to complete.
func (c *Config) Run(cmd string, args ...string) error {
	_, err := c.exec(false, cmd, args...)
	return err
}

// Start starts the given command using the given configuration
// information and arguments, without waiting for it to finish.
// The returned [Cmd] should be waited on (or killed) by the caller.
func (c *Config) Start(cmd string, args ...string) (*Cmd, error) {
	return c.exec(true, cmd, args...)
}

// Args parses the given command line into separate arguments
// using shell quoting rules.
func Args(line string) ([]string, error) {
	args, err := shellwords.Parse(line)
	if err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("command %q was not parsed correctly into content", line)
	}
	return args, nil
}

// StartLine parses the given command line with [Args] and starts it
// with any extra arguments appended.
func (c *Config) StartLine(line string, extra ...string) (*Cmd, error) {
	args, err := Args(line)
	if err != nil {
		return nil, err
	}
	return c.Start(args[0], append(args[1:], extra...)...)
}

// Output runs the command and returns the text from stdout.
func (c *Config) Output(cmd string, args ...string) (string, error) {
	oldStdout := c.Stdout
	buf := &bytes.Buffer{}
	c.Stdout = buf
	_, err := c.exec(false, cmd, args...)
	c.Stdout = oldStdout
	if c.Stdout != nil {
		c.Stdout.Write(buf.Bytes())
	}
	return strings.TrimSuffix(buf.String(), "\n"), err
}

// Run calls [Config.Run] on [Major].
func Run(cmd string, args ...string) error {
	return Major().Run(cmd, args...)
}

// Output calls [Config.Output] on [Minor].
func Output(cmd string, args ...string) (string, error) {
	return Minor().Output(cmd, args...)
}

// exec executes the command, piping its stdout and stderr to the config
// writers. cmd and args may include references to environment variables
// in $FOO format, which are expanded from [Config.Env] first and then
// from the process environment.
func (c *Config) exec(start bool, cmd string, args ...string) (*Cmd, error) {
	expand := func(s string) string {
		if s2, ok := c.Env[s]; ok {
			return s2
		}
		return os.Getenv(s)
	}
	cmd = os.Expand(cmd, expand)
	for i := range args {
		args[i] = os.Expand(args[i], expand)
	}
	cm := exec.Command(cmd, args...)
	cm.Env = os.Environ()
	for k, v := range c.Env {
		cm.Env = append(cm.Env, k+"="+v)
	}
	cm.Stdout = c.Stdout
	cm.Stderr = c.Stderr
	cm.Stdin = c.Stdin
	cm.Dir = c.Dir

	if c.Commands != nil {
		out := termenv.NewOutput(c.Commands)
		if cm.Dir != "" {
			out.WriteString(logx.ApplyLevelColor(out, slog.LevelInfo, cm.Dir) + ": ")
		}
		out.WriteString(logx.ApplyLevelColor(out, slog.LevelInfo, cmd+" "+strings.Join(args, " ")) + "\n")
	}
	var err error
	if start {
		err = cm.Start()
	} else {
		err = cm.Run()
	}
	if err != nil {
		return cm, fmt.Errorf("failed to run %q: %w", cmd+" "+strings.Join(args, " "), err)
	}
	return cm, nil
}

// CmdRan examines the error to determine if it was generated as a result of a
// command running via os/exec.Command. If the error is nil, or the command ran
// (even if it exited with a non-zero exit code), CmdRan reports true. If the
// error is an unrecognized type, or it is an error from exec.Command that says
// the command failed to run (usually due to the command not existing or not
// being executable), it reports false.
func CmdRan(err error) bool {
	if err == nil {
		return true
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.Exited()
	}
	return false
}

// ExitStatus returns the exit status of the error if it is an [exec.ExitError],
// 0 if it is nil, or 1 if it is a different error.
func ExitStatus(err error) int {
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return 1
}
