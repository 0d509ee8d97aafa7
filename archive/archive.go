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

// Package archive provides indexed, read-only access to the entries of
// ZIP, 7z and RAR archives. Entries are addressed by their ordinal position in
// the archive's directory so that an index found once can be used to extract
// the same entry after the archive has been reopened.
package archive

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Format identifies an archive container format.
type Format int

const (
	// FormatUnknown is returned when the container could not be identified.
	FormatUnknown Format = iota
	// FormatZIP is a PKWARE ZIP archive.
	FormatZIP
	// Format7z is a 7-Zip archive.
	Format7z
	// FormatRAR is a RAR (v4 or v5) archive.
	FormatRAR
)

func (f Format) String() string {
	switch f {
	case FormatZIP:
		return "zip"
	case Format7z:
		return "7z"
	case FormatRAR:
		return "rar"
	default:
		return "unknown"
	}
}

// ParseFormat parses a format name as printed by Format.String.
// A leading dot is accepted so extensions can be passed directly.
func ParseFormat(name string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), ".") {
	case "zip":
		return FormatZIP, nil
	case "7z":
		return Format7z, nil
	case "rar":
		return FormatRAR, nil
	default:
		return FormatUnknown, FormatError{Format: name}
	}
}

// Entry describes one entry of an archive.
type Entry struct {
	Name           string // Full path within archive, '/' separated
	Index          int    // Ordinal position in the archive directory
	Size           int64  // Uncompressed size, -1 when the archive does not record it
	CompressedSize int64  // Stored size, 0 when the format does not record it per entry
	CRC32          uint32 // Recorded checksum, 0 when unavailable
	Method         uint16 // ZIP compression method, 0 for other formats
	IsDir          bool
}

// Archive provides indexed read access to the entries of an archive.
type Archive interface {
	// Format returns the container format.
	Format() Format

	// Entries returns every entry in directory order, directories included.
	Entries() []Entry

	// Lookup finds a non-directory entry by name. An exact match always wins;
	// when foldCase is set a case-insensitive match is tried next.
	Lookup(name string, foldCase bool) (Entry, bool)

	// Stat returns the entry at index.
	Stat(index int) (Entry, error)

	// Extract decompresses the entry at index into dst, which must be exactly
	// the entry's uncompressed size.
	Extract(index int, dst []byte) error

	// Close closes the archive.
	Close() error
}

// Open opens an archive, identifying its format from its signature and
// falling back to its extension.
func Open(fsys afero.Fs, path string) (Archive, error) {
	format, err := DetectFormat(fsys, path)
	if err != nil {
		return nil, err
	}
	return OpenFormat(fsys, path, format)
}

// OpenFormat opens an archive with a known format.
func OpenFormat(fsys afero.Fs, path string, format Format) (Archive, error) {
	switch format {
	case FormatZIP:
		return OpenZIP(fsys, path)
	case Format7z:
		return OpenSevenZip(fsys, path)
	case FormatRAR:
		return OpenRAR(fsys, path)
	default:
		return nil, FormatError{Format: filepath.Ext(path), Reason: "unrecognized archive"}
	}
}

// openFile opens a regular file and returns it with its size.
func openFile(fsys afero.Fs, path string) (afero.File, int64, error) {
	file, err := fsys.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open archive file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, 0, fmt.Errorf("stat archive file: %w", err)
	}
	if info.IsDir() {
		_ = file.Close()
		return nil, 0, FormatError{Format: filepath.Ext(path), Reason: "path is a directory"}
	}

	return file, info.Size(), nil
}

// lookupEntry implements Archive.Lookup over an entry table.
func lookupEntry(entries []Entry, name string, foldCase bool) (Entry, bool) {
	name = filepath.ToSlash(name)

	for _, entry := range entries {
		if !entry.IsDir && entry.Name == name {
			return entry, true
		}
	}

	if foldCase {
		for _, entry := range entries {
			if !entry.IsDir && strings.EqualFold(entry.Name, name) {
				return entry, true
			}
		}
	}

	return Entry{}, false
}

// statEntry implements Archive.Stat over an entry table.
func statEntry(entries []Entry, path string, index int) (Entry, error) {
	if index < 0 || index >= len(entries) {
		return Entry{}, IndexOutOfRangeError{Archive: path, Index: index, Count: len(entries)}
	}
	return entries[index], nil
}

// checkExtract validates an extraction request against the entry table.
func checkExtract(entries []Entry, path string, index int, dst []byte) (Entry, error) {
	entry, err := statEntry(entries, path, index)
	if err != nil {
		return Entry{}, err
	}
	if entry.IsDir {
		return Entry{}, fmt.Errorf("%w: %q", ErrIsDirectory, entry.Name)
	}
	if entry.Size < 0 {
		return Entry{}, fmt.Errorf("%w: %q", ErrUnknownSize, entry.Name)
	}
	if int64(len(dst)) != entry.Size {
		return Entry{}, SizeMismatchError{Name: entry.Name, Want: entry.Size, Got: int64(len(dst))}
	}
	return entry, nil
}

// fillExact reads exactly len(dst) bytes from r and verifies the stream ends
// there. Reading to the end also lets checksumming readers report mismatches.
func fillExact(r io.Reader, dst []byte) error {
	n, err := io.ReadFull(r, dst)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return SizeMismatchError{Want: int64(len(dst)), Got: int64(n)}
		}
		return fmt.Errorf("%w: %w", ErrDecompressFailed, err)
	}

	extra, err := io.CopyN(io.Discard, r, 1)
	if extra > 0 {
		return fmt.Errorf("%w: output exceeds %d bytes", ErrDecompressFailed, len(dst))
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w", ErrDecompressFailed, err)
	}
	return nil
}
