// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"log/slog"

	"cogentcore.org/simenv/config"
	"cogentcore.org/simenv/logx"
	"github.com/spf13/cobra"
)

// app holds the state shared by all commands.
type app struct {
	configPath string
	vv, v, q   bool

	// cfg is the config loaded before each command runs.
	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "simenv",
		Short:         "Build, inspect and simulate glTF scenes for reinforcement learning",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default ~/"+config.DefaultFile+")")
	pf.BoolVarP(&a.v, "verbose", "v", false, "show info messages")
	pf.BoolVar(&a.vv, "vv", false, "show debug messages")
	pf.BoolVarP(&a.q, "quiet", "q", false, "show only errors")

	root.AddCommand(a.inspectCmd(), a.convertCmd(), a.exampleCmd(), a.runCmd(), a.configCmd())
	return root
}

// setup loads the config and sets the log level, with the verbosity
// flags taking precedence over the config level.
func (a *app) setup(cmd *cobra.Command) error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.Open(a.configPath)
	} else {
		a.cfg, err = config.OpenDefault()
	}
	if err != nil {
		return err
	}
	logx.UserLevel = a.cfg.Level()
	if a.vv || a.v || a.q {
		logx.UserLevel = logx.LevelFromFlags(a.vv, a.v, a.q)
	}
	slog.SetDefault(slog.New(logx.NewHandler(cmd.ErrOrStderr())))
	slog.Debug("config loaded", "path", a.configPath, "engine", a.cfg.Engine.Kind)
	return nil
}
