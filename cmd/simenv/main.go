// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command simenv inspects, converts and runs simulation scenes stored
// as glTF documents.
package main

import (
	"context"
	"os"
	"os/signal"

	"cogentcore.org/simenv/base/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		errors.Log(err)
		os.Exit(1)
	}
}
