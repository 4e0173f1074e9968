// Copyright 2018 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sbtkv

import (
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/cockroachdb/sbtkv/internal/base"
	"github.com/cockroachdb/sbtkv/vfs"
	"github.com/stretchr/testify/require"
)

func TestEventInfoFormat(t *testing.T) {
	boom := errors.New("boom")
	testCases := []struct {
		info interface{ String() string }
		want string
	}{
		{
			info: SnapshotLoadInfo{Path: "a.sbt", Keys: 3, Size: 120, Compression: ZstdCompression, Duration: 1500 * time.Millisecond},
			want: "[sbtkv] loaded snapshot a.sbt: 3 keys, 120 bytes (zstd) in 1.500s",
		},
		{
			info: SnapshotLoadInfo{Path: "a.sbt", Err: boom},
			want: "[sbtkv] loading snapshot a.sbt failed; starting empty: boom",
		},
		{
			info: SnapshotWriteInfo{Path: "a.sbt", Keys: 4, Size: 99, Duration: 250 * time.Millisecond},
			want: "[sbtkv] wrote snapshot a.sbt: 4 keys, 99 bytes in 0.250s",
		},
		{
			info: SnapshotWriteInfo{Path: "a.sbt", Keys: 4, Err: boom},
			want: "[sbtkv] writing snapshot a.sbt failed: boom",
		},
		{
			info: SnapshotRemoveInfo{Path: "a.sbt", Keys: 2, Existed: true},
			want: "[sbtkv] cleared 2 keys; removed snapshot a.sbt",
		},
		{
			info: SnapshotRemoveInfo{Path: "a.sbt"},
			want: "[sbtkv] cleared 0 keys; no snapshot at a.sbt",
		},
		{
			info: SnapshotRemoveInfo{Path: "a.sbt", Keys: 1, Err: boom},
			want: "[sbtkv] cleared 1 keys; removing snapshot a.sbt failed: boom",
		},
		{
			info: BackupInfo{Source: "a.sbt", Dest: "b.sbt", Size: 10},
			want: "[sbtkv] backed up a.sbt to b.sbt: 10 bytes",
		},
		{
			info: BackupInfo{Source: "a.sbt", Dest: "b.sbt", Err: boom},
			want: "[sbtkv] backup of a.sbt to b.sbt failed: boom",
		},
		{
			info: RestoreInfo{Source: "b.sbt", Dest: "a.sbt", Keys: 7},
			want: "[sbtkv] restored a.sbt from b.sbt: 7 keys",
		},
		{
			info: RestoreInfo{Source: "b.sbt", Dest: "a.sbt", Err: boom},
			want: "[sbtkv] restore of a.sbt from b.sbt failed: boom",
		},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.want, tc.info.String())
	}
}

func TestEventInfoRedaction(t *testing.T) {
	info := SnapshotWriteInfo{Path: "a.sbt", Err: errors.Newf("bad key %s", "secret")}
	redacted := string(redact.Sprint(info).Redact())
	require.Equal(t, "[sbtkv] writing snapshot a.sbt failed: bad key ‹×›", redacted)
}

func TestLoggingEventListener(t *testing.T) {
	var log base.InMemLogger
	listener := MakeLoggingEventListener(&log)
	d, err := Open("db.sbt", &Options{FS: vfs.NewMem(), EventListener: &listener})
	require.NoError(t, err)
	d.Insert("k", MakeInt(1))
	d.Clear()

	lines := strings.Split(strings.TrimSpace(log.String()), "\n")
	require.Len(t, lines, 2)
	require.True(t, strings.HasPrefix(lines[0], "[sbtkv] wrote snapshot db.sbt: 1 keys, "), lines[0])
	require.Equal(t, "[sbtkv] cleared 1 keys; removed snapshot db.sbt", lines[1])
}

func TestTeeEventListener(t *testing.T) {
	var a, b strings.Builder
	tee := TeeEventListener(*recordingListener(&a), *recordingListener(&b))
	d, err := Open("db.sbt", &Options{FS: vfs.NewMem(), Logger: base.NoopLogger{}, EventListener: &tee})
	require.NoError(t, err)
	d.Insert("k", MakeInt(1))
	require.Equal(t, "wrote db.sbt: 1 keys\n", a.String())
	require.Equal(t, a.String(), b.String())
}

func TestEnsureDefaultsLogsOnlyFailures(t *testing.T) {
	var log base.InMemLogger
	var l EventListener
	l.EnsureDefaults(&log)
	l.SnapshotWritten(SnapshotWriteInfo{Path: "x"})
	l.SnapshotLoaded(SnapshotLoadInfo{Path: "x"})
	l.SnapshotRemoved(SnapshotRemoveInfo{Path: "x"})
	l.BackupCreated(BackupInfo{Source: "x", Dest: "y"})
	l.Restored(RestoreInfo{Source: "y", Dest: "x"})
	require.Empty(t, log.String())

	l.SnapshotWriteFailed(SnapshotWriteInfo{Path: "x", Err: errors.New("disk full")})
	require.Equal(t, "[sbtkv] writing snapshot x failed: disk full\n", log.String())
}
