// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package taskstore

import "github.com/cockroachdb/sbtkv"

// ConfigKey is the key under which application settings are stored.
const ConfigKey = "app:config"

// Config stores application settings as a single map value under ConfigKey.
type Config struct {
	store  sbtkv.Store
	logger sbtkv.Logger
}

// NewConfig returns a Config over store.
func NewConfig(store sbtkv.Store, logger sbtkv.Logger) *Config {
	if logger == nil {
		logger = sbtkv.DefaultLogger{}
	}
	return &Config{store: store, logger: logger}
}

// Load returns the stored settings. It returns an empty map if none are
// stored or the stored value is not a map.
func (c *Config) Load() map[string]sbtkv.Value {
	v, ok := c.store.Search(ConfigKey)
	if !ok {
		return map[string]sbtkv.Value{}
	}
	fields, ok := v.AsMap()
	if !ok {
		c.logger.Errorf("taskstore: ignoring %q: expected map, found %s", ConfigKey, v.Kind())
		return map[string]sbtkv.Value{}
	}
	if fields == nil {
		fields = map[string]sbtkv.Value{}
	}
	return fields
}

// Save replaces the stored settings with settings.
func (c *Config) Save(settings map[string]sbtkv.Value) {
	c.store.Insert(ConfigKey, sbtkv.MakeMap(settings))
}

// Set stores value under name, keeping the other settings.
func (c *Config) Set(name string, value sbtkv.Value) {
	settings := c.Load()
	settings[name] = value
	c.Save(settings)
}
