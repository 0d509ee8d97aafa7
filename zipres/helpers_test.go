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
	"archive/zip"
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// level1 is the fixture used throughout: 17 bytes including the newline.
const level1 = "{\"id\":1,\"hp\":10}\n"

type zipEntry struct {
	name    string
	content string
	store   bool
}

// writeZIP writes a ZIP archive with the given entries, in order, to fsys.
// Names ending in "/" become directory entries. Entries are deflated unless
// store is set.
func writeZIP(t *testing.T, fsys afero.Fs, path string, entries []zipEntry) {
	t.Helper()

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	for _, entry := range entries {
		method := zip.Deflate
		if entry.store {
			method = zip.Store
		}
		w, err := writer.CreateHeader(&zip.FileHeader{Name: entry.name, Method: method})
		require.NoError(t, err)
		if entry.content != "" {
			_, err = w.Write([]byte(entry.content))
			require.NoError(t, err)
		}
	}
	require.NoError(t, writer.Close())
	require.NoError(t, afero.WriteFile(fsys, path, buf.Bytes(), 0o644))
}

// dataZIP is data.zip with level1.json at index 3.
func dataZIP(t *testing.T, fsys afero.Fs) {
	t.Helper()
	writeZIP(t, fsys, "data.zip", []zipEntry{
		{name: "readme.txt", content: "read me first\n", store: true},
		{name: "levels/"},
		{name: "levels/level0.json", content: "{}\n"},
		{name: "level1.json", content: level1},
		{name: "Textures/Wall.PNG", content: "not really a png"},
		{name: "empty.bin"},
	})
}

// writeBadCRC writes a ZIP whose single stored entry has a wrong checksum.
func writeBadCRC(t *testing.T, fsys afero.Fs, path, name, content string) {
	t.Helper()

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	w, err := writer.CreateRaw(&zip.FileHeader{
		Name:               name,
		Method:             zip.Store,
		CRC32:              0xDEADBEEF,
		CompressedSize64:   uint64(len(content)),
		UncompressedSize64: uint64(len(content)),
	})
	require.NoError(t, err)
	_, err = w.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	require.NoError(t, afero.WriteFile(fsys, path, buf.Bytes(), 0o644))
}

func newTestBackend(t *testing.T, opts ...Option) (*Backend, afero.Fs) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	dataZIP(t, fsys)
	return New(append([]Option{WithFilesystem(fsys)}, opts...)...), fsys
}
