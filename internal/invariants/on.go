// Copyright 2020 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

//go:build invariants || race

package invariants

// Enabled is true if we were built with the "invariants" or "race" build tags.
//
// Enabled gates checks that walk the whole tree; use Sometimes() for checks
// that should only run on a fraction of operations.
const Enabled = true
