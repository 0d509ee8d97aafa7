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

package archive

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedMethod indicates a ZIP compression method with no registered codec.
	ErrUnsupportedMethod = errors.New("unsupported compression method")

	// ErrDecompressFailed indicates the entry data could not be decompressed.
	ErrDecompressFailed = errors.New("decompression failed")

	// ErrChecksum indicates the decompressed data does not match the recorded CRC-32.
	ErrChecksum = errors.New("checksum mismatch")

	// ErrEntryTooLarge indicates an entry exceeds the caller's size limit.
	ErrEntryTooLarge = errors.New("entry exceeds maximum size")

	// ErrIsDirectory indicates an attempt to extract a directory entry.
	ErrIsDirectory = errors.New("entry is a directory")

	// ErrEncrypted indicates an encrypted entry; passwords are not supported.
	ErrEncrypted = errors.New("entry is encrypted")

	// ErrUnknownSize indicates the archive does not record the entry's uncompressed size.
	ErrUnknownSize = errors.New("entry size unknown")
)

// FormatError indicates an unsupported or invalid archive format.
type FormatError struct {
	Format string
	Reason string
}

func (e FormatError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported archive format %s: %s", e.Format, e.Reason)
	}
	return fmt.Sprintf("unsupported archive format: %s", e.Format)
}

// EntryNotFoundError indicates a named entry was not found in the archive.
type EntryNotFoundError struct {
	Archive string
	Name    string
}

func (e EntryNotFoundError) Error() string {
	return fmt.Sprintf("entry %q not found in archive %q", e.Name, e.Archive)
}

// IndexOutOfRangeError indicates an entry index outside the archive directory.
type IndexOutOfRangeError struct {
	Archive string
	Index   int
	Count   int
}

func (e IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("entry index %d out of range [0, %d) in archive %q", e.Index, e.Count, e.Archive)
}

// SizeMismatchError indicates the decompressed data or destination buffer does
// not match the recorded uncompressed size.
type SizeMismatchError struct {
	Name string
	Want int64
	Got  int64
}

func (e SizeMismatchError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("entry %q: size mismatch: want %d bytes, got %d", e.Name, e.Want, e.Got)
	}
	return fmt.Sprintf("size mismatch: want %d bytes, got %d", e.Want, e.Got)
}
