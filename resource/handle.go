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
	"io"
	"sync"
)

// Resource is an open resource returned by Manager.Open. It adapts the
// backend callbacks to the io interfaces.
type Resource struct {
	info     TypeInfo
	location string

	mu     sync.Mutex
	handle Handle
}

var (
	_ io.ReadSeekCloser = (*Resource)(nil)
	_ io.Writer         = (*Resource)(nil)
)

// Location returns the tag-prefixed location the resource was opened from.
func (r *Resource) Location() string {
	return r.location
}

// Tag returns the tag of the type that owns the resource.
func (r *Resource) Tag() string {
	return r.info.Tag
}

// Handle returns the backend handle, or HandleUndefined once closed.
func (r *Resource) Handle() Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handle
}

func (r *Resource) live() (Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.handle == HandleUndefined {
		return HandleUndefined, ErrClosed
	}
	return r.handle, nil
}

// Size returns the resource size in bytes.
func (r *Resource) Size() (int64, error) {
	h, err := r.live()
	if err != nil {
		return 0, err
	}
	return r.info.GetSize(h), nil
}

// Tell returns the cursor.
func (r *Resource) Tell() (int64, error) {
	h, err := r.live()
	if err != nil {
		return 0, err
	}
	return r.info.Tell(h), nil
}

// Seek implements io.Seeker. io.SeekEnd counts from the end as size+offset,
// so offsets from the end are zero or negative. Targets outside [0, size]
// fail with ErrSeekOutOfRange and leave the cursor unchanged.
func (r *Resource) Seek(offset int64, whence int) (int64, error) {
	h, err := r.live()
	if err != nil {
		return 0, err
	}

	var pos int64
	switch whence {
	case io.SeekStart:
		pos = r.info.Seek(h, offset, WhenceStart)
	case io.SeekCurrent:
		pos = r.info.Seek(h, offset, WhenceCurrent)
	case io.SeekEnd:
		pos = r.info.Seek(h, -offset, WhenceEnd)
	default:
		return 0, fmt.Errorf("%w: whence %d", ErrSeekOutOfRange, whence)
	}

	if pos < 0 {
		return 0, fmt.Errorf("%w: offset %d whence %d", ErrSeekOutOfRange, offset, whence)
	}
	return pos, nil
}

// Read implements io.Reader. It returns io.EOF once the cursor is at the end.
func (r *Resource) Read(p []byte) (int, error) {
	h, err := r.live()
	if err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}

	n := r.info.Read(h, p)
	if n <= 0 {
		return 0, io.EOF
	}
	return int(n), nil
}

// Write implements io.Writer for writable types.
func (r *Resource) Write(p []byte) (int, error) {
	h, err := r.live()
	if err != nil {
		return 0, err
	}
	if r.info.Write == nil {
		return 0, fmt.Errorf("%w: %s", ErrWriteUnsupported, r.info.Tag)
	}

	n := r.info.Write(h, p)
	if n < 0 {
		n = 0
	}
	if int(n) < len(p) {
		return int(n), io.ErrShortWrite
	}
	return int(n), nil
}

// Close releases the backend handle. Closing twice is a no-op.
func (r *Resource) Close() error {
	r.mu.Lock()
	h := r.handle
	r.handle = HandleUndefined
	r.mu.Unlock()

	if h != HandleUndefined {
		r.info.Close(h)
	}
	return nil
}
