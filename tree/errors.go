// Copyright (c) 2018, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tree

import "cogentcore.org/simenv/base/errors"

var (
	// ErrDuplicateName is returned when a child would share its name
	// with an existing sibling.
	ErrDuplicateName = errors.New("tree: duplicate child name")

	// ErrCycle is returned when adding a child would make a node its own ancestor.
	ErrCycle = errors.New("tree: adding child would create a cycle")

	// ErrNotFound is returned when a name or path lookup finds no node.
	ErrNotFound = errors.New("tree: node not found")
)
