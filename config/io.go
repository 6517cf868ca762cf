// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the default config file name, relative to the user
// home directory.
const DefaultFile = ".simenv/config.toml"

// DefaultPath returns the absolute path of the default config file.
func DefaultPath() (string, error) {
	return homedir.Expand(filepath.Join("~", DefaultFile))
}

// Open reads the config from the given file, starting from default values.
// The format is TOML unless the file has a .yaml or .yml extension.
// A leading ~ in the path is expanded to the home directory.
func Open(path string) (*Config, error) {
	c := New()
	fp, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(fp)
	if err != nil {
		return nil, err
	}
	if isYAML(fp) {
		err = yaml.Unmarshal(b, c)
	} else {
		err = toml.Unmarshal(b, c)
	}
	if err != nil {
		return nil, fmt.Errorf("config.Open %q: %w", path, err)
	}
	return c, nil
}

// OpenDefault opens the config at [DefaultPath], returning
// defaults when that file does not exist.
func OpenDefault() (*Config, error) {
	fp, err := DefaultPath()
	if err != nil {
		return New(), err
	}
	if _, err := os.Stat(fp); os.IsNotExist(err) {
		return New(), nil
	}
	return Open(fp)
}

// Save writes the config to the given file, creating its directory
// if needed. The format follows the same extension rule as [Open].
func (c *Config) Save(path string) error {
	fp, err := homedir.Expand(path)
	if err != nil {
		return err
	}
	var b []byte
	if isYAML(fp) {
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return err
		}
		enc.Close()
		b = buf.Bytes()
	} else {
		b, err = toml.Marshal(c)
		if err != nil {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(fp), 0o755); err != nil {
		return err
	}
	return os.WriteFile(fp, b, 0o644)
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
