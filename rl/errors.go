// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rl

import "cogentcore.org/simenv/base/errors"

var (
	// ErrInvalidAction is returned when an action is not in the action space.
	ErrInvalidAction = errors.New("rl: action not in action space")

	// ErrNoObservation is returned when an observation is requested from
	// a component without observation sources, or a source has no data.
	ErrNoObservation = errors.New("rl: no observation")

	// ErrNoState is returned when a reward entity has no state in the step result.
	ErrNoState = errors.New("rl: no state for entity")

	// ErrOutsideRoot is returned when encoding a component that refers
	// to a node outside of the tree being encoded, or to its root,
	// which is not written as a node.
	ErrOutsideRoot = errors.New("rl: reference outside of encoded tree")
)
