// Copyright 2019 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package tool

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/sbtkv"
	"github.com/cockroachdb/sbtkv/internal/snapshot"
	"github.com/cockroachdb/sbtkv/vfs"
)

var stdout = io.Writer(os.Stdout)
var stderr = io.Writer(os.Stderr)
var osExit = os.Exit

// parseKey interprets a key argument. A "hex:" prefix decodes the remainder
// as hex digits and a "raw:" prefix is stripped so that keys which would
// otherwise look like hex can be given literally.
func parseKey(v string) (string, error) {
	switch {
	case strings.HasPrefix(v, "hex:"):
		b, err := hex.DecodeString(strings.TrimPrefix(v, "hex:"))
		if err != nil {
			return "", errors.Wrapf(err, "invalid key %q", v)
		}
		return string(b), nil

	case strings.HasPrefix(v, "raw:"):
		return strings.TrimPrefix(v, "raw:"), nil

	default:
		return v, nil
	}
}

// formatKey renders a key so that parseKey accepts it back.
func formatKey(k string) string {
	if k == "" || !utf8.ValidString(k) || strings.HasPrefix(k, "hex:") {
		return "hex:" + hex.EncodeToString([]byte(k))
	}
	for _, r := range k {
		if !unicode.IsPrint(r) || unicode.IsSpace(r) {
			return "hex:" + hex.EncodeToString([]byte(k))
		}
	}
	if strings.HasPrefix(k, "raw:") {
		return "raw:" + k
	}
	return k
}

func parseValue(v string) (sbtkv.Value, error) {
	val, err := sbtkv.ParseJSON(v)
	return val, errors.Wrapf(err, "invalid value %q", v)
}

// compressionFlag implements pflag.Value for a snapshot.Compression.
type compressionFlag struct {
	c *sbtkv.Compression
}

func (f compressionFlag) String() string {
	return f.c.String()
}

func (f compressionFlag) Type() string {
	return "compression"
}

func (f compressionFlag) Set(v string) error {
	c, err := snapshot.ParseCompression(v)
	if err != nil {
		return err
	}
	*f.c = c
	return nil
}

// readFile returns the full contents of a snapshot file.
func readFile(fs vfs.FS, path string) ([]byte, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(f)
	return data, errors.CombineErrors(err, f.Close())
}

// stderrLogger is the sbtkv.Logger used unless the tools are configured with
// another one.
type stderrLogger struct{}

func (stderrLogger) Infof(format string, args ...interface{}) {
	fmt.Fprintf(stderr, format+"\n", args...)
}

func (stderrLogger) Errorf(format string, args ...interface{}) {
	fmt.Fprintf(stderr, format+"\n", args...)
}

func (stderrLogger) Fatalf(format string, args ...interface{}) {
	fmt.Fprintf(stderr, format+"\n", args...)
	osExit(1)
}
