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

import "sync"

// HandleTable maps opaque handles to backend values. Handles are never
// reused, so a stale handle can not alias a newer resource. The zero value is
// ready to use.
type HandleTable[T any] struct {
	mu    sync.Mutex
	next  Handle
	items map[Handle]T
}

// Insert stores v and returns its new handle.
func (t *HandleTable[T]) Insert(v T) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.items == nil {
		t.items = make(map[Handle]T)
	}
	t.next++
	t.items[t.next] = v
	return t.next
}

// Get returns the value for h.
func (t *HandleTable[T]) Get(h Handle) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	v, ok := t.items[h]
	return v, ok
}

// Remove deletes h and returns the value it referenced.
func (t *HandleTable[T]) Remove(h Handle) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	v, ok := t.items[h]
	if ok {
		delete(t.items, h)
	}
	return v, ok
}

// Len returns the number of live handles.
func (t *HandleTable[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.items)
}
