// Copyright 2020 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package errorfs wraps a vfs.FS and injects errors into its operations
// according to a pluggable Injector. It is used to exercise the store's
// handling of failed snapshot reads and writes.
package errorfs

import (
	"fmt"
	"go/scanner"
	"go/token"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/sbtkv/vfs"
)

// ErrInjected is an error artificially injected for testing fs error paths.
var ErrInjected = errors.New("injected error")

// OpKind is an enum describing the type of operation.
type OpKind int

const (
	// OpCreate describes a create file operation.
	OpCreate OpKind = iota
	// OpOpen describes a file open operation.
	OpOpen
	// OpRemove describes a remove file operation.
	OpRemove
	// OpRename describes a rename operation.
	OpRename
	// OpMkdirAll describes a make directory including parents operation.
	OpMkdirAll
	// OpList describes a list directory operation.
	OpList
	// OpStat describes a path-based stat operation.
	OpStat
	// OpFileRead describes a file read operation.
	OpFileRead
	// OpFileWrite describes a file write operation.
	OpFileWrite
	// OpFileStat describes a file stat operation.
	OpFileStat
	// OpFileSync describes a file sync operation.
	OpFileSync
	numOpKinds
)

var opKindNames = [numOpKinds]string{
	OpCreate:    "create",
	OpOpen:      "open",
	OpRemove:    "remove",
	OpRename:    "rename",
	OpMkdirAll:  "mkdirall",
	OpList:      "list",
	OpStat:      "stat",
	OpFileRead:  "read",
	OpFileWrite: "write",
	OpFileStat:  "fstat",
	OpFileSync:  "sync",
}

func (k OpKind) String() string {
	if k >= 0 && k < numOpKinds {
		return opKindNames[k]
	}
	return fmt.Sprintf("OpKind(%d)", int(k))
}

// IsRead reports whether the operation only reads the file system.
func (k OpKind) IsRead() bool {
	switch k {
	case OpOpen, OpList, OpStat, OpFileRead, OpFileStat:
		return true
	}
	return false
}

// Op describes a file system operation about to be executed.
type Op struct {
	Kind OpKind
	// Path is the subject file or directory. For Rename it is the source.
	Path string
}

// Injector injects errors into FS operations.
type Injector interface {
	// MaybeError is invoked by an errorfs before an operation is executed.
	MaybeError(op Op) error
}

// InjectorFunc implements the Injector interface for a function with
// MaybeError's signature.
type InjectorFunc func(Op) error

// MaybeError implements the Injector interface.
func (f InjectorFunc) MaybeError(op Op) error { return f(op) }

// Always returns an injector that always injects an error.
func Always() Injector {
	return InjectorFunc(func(Op) error { return errors.WithStack(ErrInjected) })
}

// Any returns an injector that injects an error if any the provided injectors
// inject an error.
func Any(injectors ...Injector) Injector {
	return InjectorFunc(func(op Op) error {
		for _, inj := range injectors {
			if err := inj.MaybeError(op); err != nil {
				return err
			}
		}
		return nil
	})
}

// PathMatch returns an injector that consults next only for operations whose
// path matches pattern according to filepath.Match on the base name.
func PathMatch(pattern string, next Injector) Injector {
	return InjectorFunc(func(op Op) error {
		matched, err := filepath.Match(pattern, filepath.Base(op.Path))
		if err != nil {
			// Only possible error is ErrBadPattern, indicating an issue with
			// the test itself.
			panic(err)
		}
		if matched {
			return next.MaybeError(op)
		}
		return nil
	})
}

// Kinds returns an injector that consults next only for operations of the
// given kinds.
func Kinds(next Injector, kinds ...OpKind) Injector {
	var set [numOpKinds]bool
	for _, k := range kinds {
		set[k] = true
	}
	return InjectorFunc(func(op Op) error {
		if set[op.Kind] {
			return next.MaybeError(op)
		}
		return nil
	})
}

// Reads returns an injector that consults next only for read operations.
func Reads(next Injector) Injector {
	return InjectorFunc(func(op Op) error {
		if op.Kind.IsRead() {
			return next.MaybeError(op)
		}
		return nil
	})
}

// Writes returns an injector that consults next only for operations that
// modify the file system.
func Writes(next Injector) Injector {
	return InjectorFunc(func(op Op) error {
		if !op.Kind.IsRead() {
			return next.MaybeError(op)
		}
		return nil
	})
}

// OnIndex constructs an injector that consults next on the (index+1)-th
// invocation of its MaybeError function, and never again.
func OnIndex(index int32, next Injector) *InjectIndex {
	ii := &InjectIndex{next: next}
	ii.index.Store(index)
	return ii
}

// InjectIndex implements Injector, injecting an error at a specific index.
type InjectIndex struct {
	index atomic.Int32
	next  Injector
}

// Index returns the number of operations remaining before the error is
// injected.
func (ii *InjectIndex) Index() int32 { return ii.index.Load() }

// MaybeError implements the Injector interface.
func (ii *InjectIndex) MaybeError(op Op) error {
	if ii.index.Add(-1) != -1 {
		return nil
	}
	return ii.next.MaybeError(op)
}

// Toggle is an Injector that only consults the wrapped Injector while it is
// switched on. It starts switched off.
type Toggle struct {
	Injector
	on atomic.Bool
}

// On switches injection on.
func (t *Toggle) On() { t.on.Store(true) }

// Off switches injection off.
func (t *Toggle) Off() { t.on.Store(false) }

// MaybeError implements the Injector interface.
func (t *Toggle) MaybeError(op Op) error {
	if !t.on.Load() {
		return nil
	}
	return t.Injector.MaybeError(op)
}

// ParseInjectorFromDSL parses a string encoding a ruleset describing when
// errors should be injected. The supported functions and primitives are:
//   - "always" injects an error every time
//   - "any(injector, [injector]...)" injects an error if any of the provided
//     injectors inject an error
//   - "pathMatch(pattern, injector)" injects an error if an operation's file
//     name matches the provided shell pattern and the provided injector
//     injects an error
//   - "onIndex(idx, injector)" injects an error on the idx-th operation if the
//     provided injector injects an error
//   - "reads(injector)" and "writes(injector)" restrict the provided injector
//     to read or write operations
//   - "ops(kind, [kind]..., injector)" restricts the provided injector to the
//     named operation kinds, such as create, write or sync
//
// Example: pathMatch("*.sbt", onIndex(2, writes(always))) injects an error on
// the third write operation involving a snapshot file.
func ParseInjectorFromDSL(d string) (inj Injector, err error) {
	defer func() {
		if r := recover(); r != nil {
			var ok bool
			err, ok = r.(error)
			if !ok {
				panic(r)
			}
		}
	}()

	fset := token.NewFileSet()
	file := fset.AddFile("", -1, len(d))
	var s scanner.Scanner
	s.Init(file, []byte(strings.TrimSpace(d)), nil /* no error handler */, 0)
	inj = parseInjectorDSLFunc(&s)
	consumeTok(&s, token.SEMICOLON)
	consumeTok(&s, token.EOF)
	return inj, err
}

var dslParsers map[string]func(*scanner.Scanner) Injector

func init() {
	wrap := func(fn func(Injector) Injector) func(*scanner.Scanner) Injector {
		return func(s *scanner.Scanner) Injector {
			consumeTok(s, token.LPAREN)
			next := parseInjectorDSLFunc(s)
			consumeTok(s, token.RPAREN)
			return fn(next)
		}
	}
	dslParsers = map[string]func(*scanner.Scanner) Injector{
		"always": func(*scanner.Scanner) Injector { return Always() },
		"any": func(s *scanner.Scanner) Injector {
			consumeTok(s, token.LPAREN)
			injs := []Injector{parseInjectorDSLFunc(s)}
			pos, tok, lit := s.Scan()
			for tok == token.COMMA {
				injs = append(injs, parseInjectorDSLFunc(s))
				pos, tok, lit = s.Scan()
			}
			if tok != token.RPAREN {
				panic(errors.Errorf("errorfs: unexpected token %s (%q) at %#v", tok, lit, pos))
			}
			return Any(injs...)
		},
		"pathMatch": func(s *scanner.Scanner) Injector {
			consumeTok(s, token.LPAREN)
			pattern := mustUnquote(consumeTok(s, token.STRING))
			consumeTok(s, token.COMMA)
			next := parseInjectorDSLFunc(s)
			consumeTok(s, token.RPAREN)
			return PathMatch(pattern, next)
		},
		"onIndex": func(s *scanner.Scanner) Injector {
			consumeTok(s, token.LPAREN)
			i, err := strconv.ParseInt(consumeTok(s, token.INT), 10, 32)
			if err != nil {
				panic(err)
			}
			consumeTok(s, token.COMMA)
			next := parseInjectorDSLFunc(s)
			consumeTok(s, token.RPAREN)
			return OnIndex(int32(i), next)
		},
		"ops": func(s *scanner.Scanner) Injector {
			consumeTok(s, token.LPAREN)
			var kinds []OpKind
			for {
				name := consumeTok(s, token.IDENT)
				if p, ok := dslParsers[name]; ok {
					// The first injector ends the list of kinds.
					next := p(s)
					consumeTok(s, token.RPAREN)
					if len(kinds) == 0 {
						panic(errors.New("errorfs: ops requires at least one operation kind"))
					}
					return Kinds(next, kinds...)
				}
				kinds = append(kinds, parseOpKind(name))
				consumeTok(s, token.COMMA)
			}
		},
		"reads":  wrap(Reads),
		"writes": wrap(Writes),
	}
}

func parseOpKind(name string) OpKind {
	for k, n := range opKindNames {
		if n == name {
			return OpKind(k)
		}
	}
	panic(errors.Errorf("errorfs: unknown operation kind %q", name))
}

func parseInjectorDSLFunc(s *scanner.Scanner) Injector {
	fn := consumeTok(s, token.IDENT)
	p, ok := dslParsers[fn]
	if !ok {
		panic(errors.Errorf("errorfs: unknown func %q", fn))
	}
	return p(s)
}

func consumeTok(s *scanner.Scanner, expected token.Token) (lit string) {
	pos, tok, lit := s.Scan()
	if tok != expected {
		panic(errors.Errorf("errorfs: unexpected token %s (%q) at %#v", tok, lit, pos))
	}
	return lit
}

func mustUnquote(lit string) string {
	s, err := strconv.Unquote(lit)
	if err != nil {
		panic(errors.Newf("errorfs: unquoting %q: %v", lit, err))
	}
	return s
}

// FS implements vfs.FS, injecting errors into its operations.
type FS struct {
	fs  vfs.FS
	inj Injector
}

var _ vfs.FS = (*FS)(nil)

// Wrap wraps an existing vfs.FS implementation, returning a new vfs.FS
// implementation that shadows the provided FS. It uses the provided Injector
// for deciding when to inject errors.
func Wrap(fs vfs.FS, inj Injector) *FS {
	return &FS{fs: fs, inj: inj}
}

// Unwrap returns the FS implementation underlying fs.
func (fs *FS) Unwrap() vfs.FS {
	return fs.fs
}

func (fs *FS) maybeError(kind OpKind, path string) error {
	return fs.inj.MaybeError(Op{Kind: kind, Path: path})
}

// Create implements FS.Create.
func (fs *FS) Create(name string) (vfs.File, error) {
	if err := fs.maybeError(OpCreate, name); err != nil {
		return nil, err
	}
	f, err := fs.fs.Create(name)
	if err != nil {
		return nil, err
	}
	return &errorFile{name: name, file: f, inj: fs.inj}, nil
}

// Open implements FS.Open.
func (fs *FS) Open(name string) (vfs.File, error) {
	if err := fs.maybeError(OpOpen, name); err != nil {
		return nil, err
	}
	f, err := fs.fs.Open(name)
	if err != nil {
		return nil, err
	}
	return &errorFile{name: name, file: f, inj: fs.inj}, nil
}

// Remove implements FS.Remove.
func (fs *FS) Remove(name string) error {
	if err := fs.maybeError(OpRemove, name); err != nil {
		return err
	}
	return fs.fs.Remove(name)
}

// Rename implements FS.Rename.
func (fs *FS) Rename(oldname, newname string) error {
	if err := fs.maybeError(OpRename, oldname); err != nil {
		return err
	}
	return fs.fs.Rename(oldname, newname)
}

// MkdirAll implements FS.MkdirAll.
func (fs *FS) MkdirAll(dir string, perm os.FileMode) error {
	if err := fs.maybeError(OpMkdirAll, dir); err != nil {
		return err
	}
	return fs.fs.MkdirAll(dir, perm)
}

// List implements FS.List.
func (fs *FS) List(dir string) ([]string, error) {
	if err := fs.maybeError(OpList, dir); err != nil {
		return nil, err
	}
	return fs.fs.List(dir)
}

// Stat implements FS.Stat.
func (fs *FS) Stat(name string) (os.FileInfo, error) {
	if err := fs.maybeError(OpStat, name); err != nil {
		return nil, err
	}
	return fs.fs.Stat(name)
}

// PathBase implements FS.PathBase.
func (fs *FS) PathBase(p string) string { return fs.fs.PathBase(p) }

// PathJoin implements FS.PathJoin.
func (fs *FS) PathJoin(elem ...string) string { return fs.fs.PathJoin(elem...) }

// PathDir implements FS.PathDir.
func (fs *FS) PathDir(p string) string { return fs.fs.PathDir(p) }

// errorFile implements vfs.File. The interface is implemented on the pointer
// type to allow pointer equality comparisons.
type errorFile struct {
	name string
	file vfs.File
	inj  Injector
}

func (f *errorFile) maybeError(kind OpKind) error {
	return f.inj.MaybeError(Op{Kind: kind, Path: f.name})
}

func (f *errorFile) Close() error {
	// We don't inject errors during close as those calls should never fail in
	// practice.
	return f.file.Close()
}

func (f *errorFile) Read(p []byte) (int, error) {
	if err := f.maybeError(OpFileRead); err != nil {
		return 0, err
	}
	return f.file.Read(p)
}

func (f *errorFile) Write(p []byte) (int, error) {
	if err := f.maybeError(OpFileWrite); err != nil {
		return 0, err
	}
	return f.file.Write(p)
}

func (f *errorFile) Stat() (os.FileInfo, error) {
	if err := f.maybeError(OpFileStat); err != nil {
		return nil, err
	}
	return f.file.Stat()
}

func (f *errorFile) Sync() error {
	if err := f.maybeError(OpFileSync); err != nil {
		return err
	}
	return f.file.Sync()
}
