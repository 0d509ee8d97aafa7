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
	"archive/zip"
	"fmt"
	"hash/crc32"

	"github.com/spf13/afero"
)

// zipFlagEncrypted is general purpose bit 0.
const zipFlagEncrypted = 0x1

// ZIPArchive provides access to entries in a ZIP archive. Only the central
// directory is read on open; entry data is decompressed on Extract through
// the codec registry.
type ZIPArchive struct {
	file    afero.File
	reader  *zip.Reader
	path    string
	entries []Entry
}

// OpenZIP opens a ZIP archive for reading.
func OpenZIP(fsys afero.Fs, path string) (*ZIPArchive, error) {
	file, size, err := openFile(fsys, path)
	if err != nil {
		return nil, err
	}

	reader, err := zip.NewReader(file, size)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("open ZIP archive: %w", err)
	}

	entries := make([]Entry, len(reader.File))
	for i, zf := range reader.File {
		entries[i] = Entry{
			Name:           zf.Name,
			Index:          i,
			Size:           int64(zf.UncompressedSize64), //nolint:gosec // Safe: file sizes don't exceed int64
			CompressedSize: int64(zf.CompressedSize64),   //nolint:gosec // Safe: file sizes don't exceed int64
			CRC32:          zf.CRC32,
			Method:         zf.Method,
			IsDir:          zf.FileInfo().IsDir(),
		}
	}

	return &ZIPArchive{
		file:    file,
		reader:  reader,
		path:    path,
		entries: entries,
	}, nil
}

// Format returns FormatZIP.
func (*ZIPArchive) Format() Format { return FormatZIP }

// Entries returns all entries in central directory order.
func (za *ZIPArchive) Entries() []Entry { return za.entries }

// Lookup finds a file entry by name.
func (za *ZIPArchive) Lookup(name string, foldCase bool) (Entry, bool) {
	return lookupEntry(za.entries, name, foldCase)
}

// Stat returns the entry at index.
func (za *ZIPArchive) Stat(index int) (Entry, error) {
	return statEntry(za.entries, za.path, index)
}

// Extract decompresses the entry at index into dst and verifies its CRC-32.
func (za *ZIPArchive) Extract(index int, dst []byte) error {
	entry, err := checkExtract(za.entries, za.path, index, dst)
	if err != nil {
		return err
	}

	file := za.reader.File[index]
	if file.Flags&zipFlagEncrypted != 0 {
		return fmt.Errorf("%w: %q", ErrEncrypted, entry.Name)
	}

	codec, err := GetCodec(file.Method)
	if err != nil {
		return fmt.Errorf("entry %q: %w", entry.Name, err)
	}

	raw, err := file.OpenRaw()
	if err != nil {
		return fmt.Errorf("open raw entry %q: %w", entry.Name, err)
	}

	if err := codec.Decompress(dst, raw); err != nil {
		return fmt.Errorf("decompress entry %q: %w", entry.Name, err)
	}

	if sum := crc32.ChecksumIEEE(dst); sum != file.CRC32 {
		return fmt.Errorf("entry %q: %w: got %08x, want %08x", entry.Name, ErrChecksum, sum, file.CRC32)
	}

	return nil
}

// Close closes the ZIP archive.
func (za *ZIPArchive) Close() error {
	return za.file.Close() //nolint:wrapcheck // Close error passthrough is intentional
}
