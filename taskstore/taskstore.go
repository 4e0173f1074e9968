// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package taskstore persists to-do tasks in an sbtkv.Store. Each task is
// stored under the key "task:<id>" as a map value; timestamps are RFC 3339
// strings.
package taskstore

import (
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/sbtkv"
)

const keyPrefix = "task:"

// Task is a single to-do item.
type Task struct {
	ID        string
	Text      string
	Completed bool
	CreatedAt time.Time
	// UpdatedAt is nil until the task is first updated.
	UpdatedAt *time.Time
}

// Repository stores tasks in an sbtkv.Store, which may hold other keys too.
type Repository struct {
	store  sbtkv.Store
	logger sbtkv.Logger
	now    func() time.Time
}

// New returns a Repository over store. Records that cannot be decoded are
// reported to logger.
func New(store sbtkv.Store, logger sbtkv.Logger) *Repository {
	if logger == nil {
		logger = sbtkv.DefaultLogger{}
	}
	return &Repository{store: store, logger: logger, now: time.Now}
}

func taskKey(id string) string {
	return keyPrefix + id
}

// Save stores t, replacing any task with the same ID.
func (r *Repository) Save(t Task) {
	r.store.Insert(taskKey(t.ID), encode(t))
}

// Delete removes the task with the given ID and reports whether it existed.
func (r *Repository) Delete(id string) bool {
	return r.store.Delete(taskKey(id))
}

// Get returns the task with the given ID. It returns an error marked with
// sbtkv.ErrNotFound if there is none.
func (r *Repository) Get(id string) (Task, error) {
	v, ok := r.store.Search(taskKey(id))
	if !ok {
		return Task{}, errors.Mark(errors.Newf("task %q", id), sbtkv.ErrNotFound)
	}
	t, err := decode(v)
	if err != nil {
		return Task{}, errors.Wrapf(err, "task %q", id)
	}
	return t, nil
}

// All returns every task ordered by creation time. Records that cannot be
// decoded are logged and skipped.
func (r *Repository) All() []Task {
	var tasks []Task
	for _, kv := range r.store.GetAll() {
		if !strings.HasPrefix(kv.Key, keyPrefix) {
			continue
		}
		t, err := decode(kv.Value)
		if err != nil {
			r.logger.Errorf("taskstore: skipping %q: %v", kv.Key, err)
			continue
		}
		tasks = append(tasks, t)
	}
	slices.SortStableFunc(tasks, func(a, b Task) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return tasks
}

// Completed returns the completed tasks ordered by creation time.
func (r *Repository) Completed() []Task {
	return r.filter(true)
}

// Pending returns the tasks not yet completed, ordered by creation time.
func (r *Repository) Pending() []Task {
	return r.filter(false)
}

func (r *Repository) filter(completed bool) []Task {
	return slices.DeleteFunc(r.All(), func(t Task) bool {
		return t.Completed != completed
	})
}

// Update stamps t.UpdatedAt with the current time and overwrites the stored
// task. It reports false, storing nothing, if no task with t.ID exists.
func (r *Repository) Update(t *Task) bool {
	now := r.now()
	t.UpdatedAt = &now
	return r.store.Update(taskKey(t.ID), encode(*t))
}

// Stats summarizes the stored tasks.
type Stats struct {
	Total     int
	Completed int
	Pending   int
}

// CompletionRate returns the fraction of tasks completed, or 0 if there are
// none.
func (s Stats) CompletionRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Completed) / float64(s.Total)
}

// Stats counts the stored tasks by completion.
func (r *Repository) Stats() Stats {
	var s Stats
	for _, t := range r.All() {
		s.Total++
		if t.Completed {
			s.Completed++
		}
	}
	s.Pending = s.Total - s.Completed
	return s
}

func encode(t Task) sbtkv.Value {
	updated := sbtkv.MakeNull()
	if t.UpdatedAt != nil {
		updated = sbtkv.MakeString(t.UpdatedAt.Format(time.RFC3339Nano))
	}
	return sbtkv.MakeMap(map[string]sbtkv.Value{
		"id":         sbtkv.MakeString(t.ID),
		"text":       sbtkv.MakeString(t.Text),
		"completed":  sbtkv.MakeBool(t.Completed),
		"created_at": sbtkv.MakeString(t.CreatedAt.Format(time.RFC3339Nano)),
		"updated_at": updated,
	})
}

func decode(v sbtkv.Value) (Task, error) {
	if v.Kind() != sbtkv.KindMap {
		return Task{}, errors.Newf("expected map, found %s", v.Kind())
	}
	str := func(name string) (string, error) {
		f, _ := v.Field(name)
		s, ok := f.AsString()
		if !ok {
			return "", errors.Newf("field %q: expected string, found %s", name, f.Kind())
		}
		return s, nil
	}
	timestamp := func(name string) (time.Time, error) {
		s, err := str(name)
		if err != nil {
			return time.Time{}, err
		}
		ts, err := time.Parse(time.RFC3339Nano, s)
		return ts, errors.Wrapf(err, "field %q", name)
	}

	var t Task
	var err error
	if t.ID, err = str("id"); err != nil {
		return Task{}, err
	}
	if t.Text, err = str("text"); err != nil {
		return Task{}, err
	}
	completed, _ := v.Field("completed")
	var ok bool
	if t.Completed, ok = completed.AsBool(); !ok {
		return Task{}, errors.Newf("field %q: expected bool, found %s", "completed", completed.Kind())
	}
	if t.CreatedAt, err = timestamp("created_at"); err != nil {
		return Task{}, err
	}
	if updated, ok := v.Field("updated_at"); ok && !updated.IsNull() {
		ts, err := timestamp("updated_at")
		if err != nil {
			return Task{}, err
		}
		t.UpdatedAt = &ts
	}
	return t, nil
}
