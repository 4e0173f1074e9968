// Copyright 2024 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

type countingCloser struct {
	n   int
	err error
}

func (c *countingCloser) Close() error {
	c.n++
	return c.err
}

func TestCloseHelper(t *testing.T) {
	c := &countingCloser{err: errors.New("boom")}
	h := CloseHelper(c)
	require.EqualError(t, h.Close(), "boom")
	require.NoError(t, h.Close())
	require.Equal(t, 1, c.n)
}
