// Copyright 2024 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package invariants gates expensive structural assertions behind the
// "invariants" and "race" build tags.
package invariants

import (
	"fmt"
	"math/rand/v2"
)

// Sometimes returns true percent% of the time if we were built with the
// "invariants" of "race" build tags
func Sometimes(percent int) bool {
	return Enabled && rand.Uint32N(100) < uint32(percent)
}

// Check panics with the error returned by fn if invariants are enabled and fn
// returns a non-nil error. fn is never called in non-invariant builds.
func Check(fn func() error) {
	if !Enabled {
		return
	}
	if err := fn(); err != nil {
		panic(fmt.Sprintf("invariant violation: %+v", err))
	}
}
