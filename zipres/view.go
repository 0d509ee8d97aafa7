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
	"errors"
	"fmt"
	"io"

	"github.com/ZaparooProject/go-arcres/resource"
)

// View is random access over one decompressed archive entry. The size is
// fixed when the view is created and the cursor always stays in [0, size].
// A View is not safe for concurrent use.
type View struct {
	name   string
	data   []byte
	size   int64
	cursor int64
	closed bool
}

var errNegativeOffset = errors.New("zipres: negative offset")

var (
	_ io.ReadSeekCloser = (*View)(nil)
	_ io.ReaderAt       = (*View)(nil)
)

func newView(name string, data []byte) *View {
	return &View{name: name, data: data, size: int64(len(data))}
}

// Name returns the name of the entry inside its archive.
func (v *View) Name() string {
	return v.name
}

// Size returns the decompressed size of the entry.
func (v *View) Size() int64 {
	return v.size
}

// Tell returns the cursor.
func (v *View) Tell() int64 {
	return v.cursor
}

// SeekFrom moves the cursor with host seek semantics: WhenceEnd counts offset
// back from the end. It returns the new cursor, or -1 without moving when the
// target lies outside [0, size].
func (v *View) SeekFrom(offset int64, whence resource.Whence) int64 {
	pos, ok := resource.SeekCandidate(v.cursor, v.size, offset, whence)
	if !ok {
		return -1
	}
	v.cursor = pos
	return pos
}

// Seek implements io.Seeker. Targets outside [0, size] are rejected.
func (v *View) Seek(offset int64, whence int) (int64, error) {
	if v.closed {
		return 0, resource.ErrClosed
	}

	var pos int64
	switch whence {
	case io.SeekStart:
		pos = v.SeekFrom(offset, resource.WhenceStart)
	case io.SeekCurrent:
		pos = v.SeekFrom(offset, resource.WhenceCurrent)
	case io.SeekEnd:
		pos = v.SeekFrom(-offset, resource.WhenceEnd)
	default:
		return 0, fmt.Errorf("%w: whence %d", resource.ErrSeekOutOfRange, whence)
	}

	if pos < 0 {
		return 0, fmt.Errorf("%w: offset %d from %d in %d bytes", resource.ErrSeekOutOfRange, offset, whence, v.size)
	}
	return pos, nil
}

// copyOut copies at most len(dst) bytes at the cursor and advances it.
func (v *View) copyOut(dst []byte) int {
	n := copy(dst, v.data[v.cursor:])
	v.cursor += int64(n)
	return n
}

// Read implements io.Reader.
func (v *View) Read(p []byte) (int, error) {
	if v.closed {
		return 0, resource.ErrClosed
	}
	if len(p) == 0 {
		return 0, nil
	}
	if v.cursor >= v.size {
		return 0, io.EOF
	}
	return v.copyOut(p), nil
}

// ReadAt implements io.ReaderAt. It does not move the cursor.
func (v *View) ReadAt(p []byte, off int64) (int, error) {
	if v.closed {
		return 0, resource.ErrClosed
	}
	if off < 0 {
		return 0, errNegativeOffset
	}
	if off >= v.size {
		return 0, io.EOF
	}

	n := copy(p, v.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Close releases the buffer; the view is empty afterwards. Closing twice is
// a no-op.
func (v *View) Close() error {
	v.closed = true
	v.data = nil
	v.size = 0
	v.cursor = 0
	return nil
}
