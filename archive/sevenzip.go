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

//nolint:dupl // Archive implementations are intentionally similar but use different types
package archive

import (
	"fmt"

	"github.com/bodgit/sevenzip"
	"github.com/spf13/afero"
)

// SevenZipArchive provides access to entries in a 7z archive.
type SevenZipArchive struct {
	file    afero.File
	reader  *sevenzip.Reader
	path    string
	entries []Entry
}

// OpenSevenZip opens a 7z archive for reading.
func OpenSevenZip(fsys afero.Fs, path string) (*SevenZipArchive, error) {
	file, size, err := openFile(fsys, path)
	if err != nil {
		return nil, err
	}

	reader, err := sevenzip.NewReader(file, size)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("open 7z archive: %w", err)
	}

	entries := make([]Entry, len(reader.File))
	for i, zf := range reader.File {
		entries[i] = Entry{
			Name:  zf.Name,
			Index: i,
			Size:  int64(zf.UncompressedSize), //nolint:gosec // Safe: file sizes don't exceed int64
			IsDir: zf.FileInfo().IsDir(),
		}
	}

	return &SevenZipArchive{
		file:    file,
		reader:  reader,
		path:    path,
		entries: entries,
	}, nil
}

// Format returns Format7z.
func (*SevenZipArchive) Format() Format { return Format7z }

// Entries returns all entries in archive order.
func (sza *SevenZipArchive) Entries() []Entry { return sza.entries }

// Lookup finds a file entry by name.
func (sza *SevenZipArchive) Lookup(name string, foldCase bool) (Entry, bool) {
	return lookupEntry(sza.entries, name, foldCase)
}

// Stat returns the entry at index.
func (sza *SevenZipArchive) Stat(index int) (Entry, error) {
	return statEntry(sza.entries, sza.path, index)
}

// Extract decompresses the entry at index into dst. The 7z reader verifies
// the entry checksum once the stream has been read to its end.
func (sza *SevenZipArchive) Extract(index int, dst []byte) error {
	entry, err := checkExtract(sza.entries, sza.path, index, dst)
	if err != nil {
		return err
	}

	reader, err := sza.reader.File[index].Open()
	if err != nil {
		return fmt.Errorf("open entry %q in 7z: %w", entry.Name, err)
	}
	defer func() { _ = reader.Close() }()

	if err := fillExact(reader, dst); err != nil {
		return fmt.Errorf("decompress entry %q: %w", entry.Name, err)
	}
	return nil
}

// Close closes the 7z archive.
func (sza *SevenZipArchive) Close() error {
	return sza.file.Close() //nolint:wrapcheck // Close error passthrough is intentional
}
