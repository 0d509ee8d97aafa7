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

package zipres

import (
	"fmt"

	"github.com/ZaparooProject/go-arcres/resource"
)

// Register creates a Backend and registers it with m.
func Register(m *resource.Manager, opts ...Option) (*Backend, error) {
	b := New(opts...)
	if err := m.RegisterType(b.TypeInfo()); err != nil {
		return nil, fmt.Errorf("register %s resource type: %w", b.tag, err)
	}
	return b, nil
}

// TypeInfo returns the callback set of the backend. Write is nil.
func (b *Backend) TypeInfo() resource.TypeInfo {
	return resource.TypeInfo{
		Tag:     b.tag,
		Locate:  b.Locate,
		Open:    b.Open,
		Close:   b.Close,
		GetSize: b.GetSize,
		Seek:    b.Seek,
		Tell:    b.Tell,
		Read:    b.Read,
	}
}

func (b *Backend) view(h resource.Handle, op string) (*View, bool) {
	v, ok := b.views.Get(h)
	if !ok {
		b.logger.Error("unknown archive handle", "op", op, "handle", h)
	}
	return v, ok
}

// Close releases the view behind h.
func (b *Backend) Close(h resource.Handle) {
	v, ok := b.views.Remove(h)
	if !ok {
		b.logger.Error("unknown archive handle", "op", "close", "handle", h)
		return
	}
	_ = v.Close()
}

// GetSize returns the entry size, or 0 for an unknown handle.
func (b *Backend) GetSize(h resource.Handle) int64 {
	v, ok := b.view(h, "size")
	if !ok {
		return 0
	}
	return v.Size()
}

// Seek moves the cursor of h. See View.SeekFrom.
func (b *Backend) Seek(h resource.Handle, offset int64, whence resource.Whence) int64 {
	v, ok := b.view(h, "seek")
	if !ok {
		return -1
	}
	return v.SeekFrom(offset, whence)
}

// Tell returns the cursor of h, or 0 for an unknown handle.
func (b *Backend) Tell(h resource.Handle) int64 {
	v, ok := b.view(h, "tell")
	if !ok {
		return 0
	}
	return v.Tell()
}

// Read copies min(len(dst), size-cursor) bytes and returns the count.
func (b *Backend) Read(h resource.Handle, dst []byte) int64 {
	v, ok := b.view(h, "read")
	if !ok {
		return 0
	}
	return int64(v.copyOut(dst))
}
