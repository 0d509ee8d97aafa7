// Copyright (c) 2025 Niema Moshiri and The Zaparoo Project.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of go-arcres.
//
// go-arcres is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-arcres is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-arcres.  If not, see <https://www.gnu.org/licenses/>.

package resource

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/afero"
)

const (
	// DefaultGroup is the storage group used when none is given.
	DefaultGroup = "default"

	// DefaultStorage is the storage every group starts with: names are
	// resolved as given.
	DefaultStorage = "."

	// DefaultLocateCacheSize is the number of Locate results kept by default.
	DefaultLocateCacheSize = 256
)

// Manager registers resource types and dispatches resource operations to them.
// It is safe for concurrent use.
type Manager struct {
	logger *slog.Logger
	cache  *lru.Cache[string, string]

	fileFs    afero.Fs
	cacheSize int
	noFile    bool

	mu     sync.RWMutex
	types  []TypeInfo // consultation order, most recently registered first
	groups map[string][]string
	gen    uint64 // bumped by every purge
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. The default discards all output.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithLocateCacheSize sets how many Locate results are cached. Zero disables
// the cache.
func WithLocateCacheSize(size int) Option {
	return func(m *Manager) {
		m.cacheSize = size
	}
}

// WithFilesystem sets the filesystem used by the built-in file type.
// The default is the host filesystem.
func WithFilesystem(fsys afero.Fs) Option {
	return func(m *Manager) {
		m.fileFs = fsys
	}
}

// WithoutFileType skips registration of the built-in file type.
func WithoutFileType() Option {
	return func(m *Manager) {
		m.noFile = true
	}
}

// NewManager creates a Manager with the default group and, unless disabled,
// the built-in file type registered.
func NewManager(opts ...Option) (*Manager, error) {
	m := &Manager{
		cacheSize: DefaultLocateCacheSize,
		groups:    map[string][]string{DefaultGroup: {DefaultStorage}},
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.cacheSize > 0 {
		cache, err := lru.New[string, string](m.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("create locate cache: %w", err)
		}
		m.cache = cache
	}

	if !m.noFile {
		fsys := m.fileFs
		if fsys == nil {
			fsys = afero.NewOsFs()
		}
		if err := m.RegisterType(NewFileType(fsys, m.logger).TypeInfo()); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Manager) log() *slog.Logger {
	if m.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return m.logger
}

// RegisterType registers a resource type. Registration is atomic: an invalid
// or duplicate type leaves the registry unchanged. The newest type is
// consulted first by Locate.
func (m *Manager) RegisterType(info TypeInfo) error {
	if err := info.validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if slices.ContainsFunc(m.types, func(t TypeInfo) bool { return t.Tag == info.Tag }) {
		return fmt.Errorf("%w: %s", ErrDuplicateType, info.Tag)
	}
	m.types = slices.Insert(m.types, 0, info)
	m.purgeCache()

	m.log().Debug("registered resource type", "tag", info.Tag, "writable", info.Write != nil)
	return nil
}

// UnregisterType removes a resource type. Handles it issued must already be closed.
func (m *Manager) UnregisterType(tag string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := slices.IndexFunc(m.types, func(t TypeInfo) bool { return t.Tag == tag })
	if idx < 0 {
		return false
	}
	m.types = slices.Delete(m.types, idx, idx+1)
	m.purgeCache()
	return true
}

// Types returns the registered tags in consultation order.
func (m *Manager) Types() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tags := make([]string, len(m.types))
	for i, info := range m.types {
		tags[i] = info.Tag
	}
	return tags
}

// AddStorage adds a storage to a group, at the front when addFirst is set.
// Adding a storage already in the group is a no-op.
func (m *Manager) AddStorage(group, storage string, addFirst bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	storages := m.groups[group]
	if slices.Contains(storages, storage) {
		return
	}
	if addFirst {
		storages = slices.Insert(storages, 0, storage)
	} else {
		storages = append(storages, storage)
	}
	m.groups[group] = storages
	m.purgeCache()
}

// RemoveStorage removes a storage from a group.
func (m *Manager) RemoveStorage(group, storage string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	storages := m.groups[group]
	idx := slices.Index(storages, storage)
	if idx < 0 {
		return false
	}
	m.groups[group] = slices.Delete(storages, idx, idx+1)
	m.purgeCache()
	return true
}

// Storages returns the storages of a group in search order.
func (m *Manager) Storages(group string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.groups[group])
}

// ClearCache forgets all cached Locate results.
func (m *Manager) ClearCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purgeCache()
}

// purgeCache must be called with mu held for writing.
func (m *Manager) purgeCache() {
	m.gen++
	if m.cache != nil {
		m.cache.Purge()
	}
}

// Locate finds name in the storages of group. Each storage is tried in order
// and, within a storage, each type in consultation order; the first hit wins
// and is returned as a tag-prefixed location.
//
// Results are cached until the registry or a storage list changes. Locations
// may encode positions inside a storage, such as an archive entry index, so
// call ClearCache after modifying storages on disk.
func (m *Manager) Locate(group, name string) (string, bool) {
	key := group + "\x00" + name
	if m.cache != nil {
		if location, ok := m.cache.Get(key); ok {
			return location, true
		}
	}

	m.mu.RLock()
	storages := slices.Clone(m.groups[group])
	types := slices.Clone(m.types)
	gen := m.gen
	m.mu.RUnlock()

	for _, storage := range storages {
		if location, ok := locateIn(types, storage, name); ok {
			m.remember(gen, key, location)
			m.log().Debug("located resource", "group", group, "name", name, "location", location)
			return location, true
		}
	}

	m.log().Debug("resource not found", "group", group, "name", name, "storages", len(storages))
	return "", false
}

// remember caches location unless the cache was purged since gen was read,
// in which case the result may describe a configuration that no longer exists.
func (m *Manager) remember(gen uint64, key, location string) {
	if m.cache == nil {
		return
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.gen == gen {
		m.cache.Add(key, location)
	}
}

// LocateInStorage finds name in a single storage without using the cache.
func (m *Manager) LocateInStorage(storage, name string) (string, bool) {
	m.mu.RLock()
	types := slices.Clone(m.types)
	m.mu.RUnlock()

	return locateIn(types, storage, name)
}

func locateIn(types []TypeInfo, storage, name string) (string, bool) {
	for _, info := range types {
		if location, ok := info.Locate(storage, name); ok {
			return JoinLocation(info.Tag, location), true
		}
	}
	return "", false
}

func (m *Manager) lookupType(tag string) (TypeInfo, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx := slices.IndexFunc(m.types, func(t TypeInfo) bool { return t.Tag == tag })
	if idx < 0 {
		return TypeInfo{}, false
	}
	return m.types[idx], true
}

// Open opens a tag-prefixed location. erase requests a writable resource,
// created or truncated by the backend; read-only types refuse it.
func (m *Manager) Open(location string, erase bool) (*Resource, error) {
	tag, backendLocation, err := SplitLocation(location)
	if err != nil {
		return nil, err
	}

	info, ok := m.lookupType(tag)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, tag)
	}
	if erase && info.Write == nil {
		return nil, fmt.Errorf("%w: %s", ErrReadOnly, tag)
	}

	handle := info.Open(backendLocation, erase)
	if handle == HandleUndefined {
		m.log().Debug("resource open failed", "location", location, "erase", erase)
		return nil, fmt.Errorf("%w: %s", ErrOpenFailed, location)
	}

	return &Resource{info: info, handle: handle, location: location}, nil
}
