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
	"io"

	"github.com/nwaples/rardecode/v2"
	"github.com/spf13/afero"
)

// RARArchive provides access to entries in a single-volume RAR archive.
// RAR has no central directory, so the headers are scanned once on open and
// again on every Extract.
type RARArchive struct {
	file    afero.File
	path    string
	entries []Entry
}

// OpenRAR opens a RAR archive for reading.
func OpenRAR(fsys afero.Fs, path string) (*RARArchive, error) {
	file, _, err := openFile(fsys, path)
	if err != nil {
		return nil, err
	}

	ra := &RARArchive{file: file, path: path}
	if err := ra.scan(); err != nil {
		_ = file.Close()
		return nil, err
	}

	return ra, nil
}

// newReader rewinds the archive and starts a fresh header scan.
func (ra *RARArchive) newReader() (*rardecode.Reader, error) {
	if _, err := ra.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek RAR archive: %w", err)
	}

	reader, err := rardecode.NewReader(ra.file)
	if err != nil {
		return nil, fmt.Errorf("open RAR archive: %w", err)
	}
	return reader, nil
}

func (ra *RARArchive) scan() error {
	reader, err := ra.newReader()
	if err != nil {
		return err
	}

	for index := 0; ; index++ {
		header, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read RAR header: %w", err)
		}

		size := header.UnPackedSize
		if header.UnKnownSize {
			size = -1
		}
		ra.entries = append(ra.entries, Entry{
			Name:  header.Name,
			Index: index,
			Size:  size,
			IsDir: header.IsDir,
		})
	}
}

// Format returns FormatRAR.
func (*RARArchive) Format() Format { return FormatRAR }

// Entries returns all entries in header order.
func (ra *RARArchive) Entries() []Entry { return ra.entries }

// Lookup finds a file entry by name.
func (ra *RARArchive) Lookup(name string, foldCase bool) (Entry, bool) {
	return lookupEntry(ra.entries, name, foldCase)
}

// Stat returns the entry at index.
func (ra *RARArchive) Stat(index int) (Entry, error) {
	return statEntry(ra.entries, ra.path, index)
}

// Extract decompresses the entry at index into dst. Earlier entries are
// skipped by the decoder, which also handles solid archives.
func (ra *RARArchive) Extract(index int, dst []byte) error {
	entry, err := checkExtract(ra.entries, ra.path, index, dst)
	if err != nil {
		return err
	}

	reader, err := ra.newReader()
	if err != nil {
		return err
	}

	for i := 0; i <= index; i++ {
		if _, err := reader.Next(); err != nil {
			return fmt.Errorf("read RAR header: %w", err)
		}
	}

	if err := fillExact(reader, dst); err != nil {
		return fmt.Errorf("decompress entry %q: %w", entry.Name, err)
	}
	return nil
}

// Close closes the RAR archive.
func (ra *RARArchive) Close() error {
	return ra.file.Close() //nolint:wrapcheck // Close error passthrough is intentional
}
