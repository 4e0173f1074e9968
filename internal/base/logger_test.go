// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInMemLogger(t *testing.T) {
	var l InMemLogger
	l.Infof("hello %d", 1)
	l.Errorf("already terminated\n")
	require.Equal(t, "hello 1\nalready terminated\n", l.String())
	require.Panics(t, func() { l.Fatalf("boom") })
	require.Contains(t, l.String(), "boom\n")
	l.Reset()
	require.Equal(t, "", l.String())

	require.Panics(t, func() { NoopLogger{}.Fatalf("boom") })
}
