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
	"io"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileType_LocateOpenRead(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, filepath.Join("assets", "hello.txt"), []byte("hello, file"), 0o644))
	require.NoError(t, fsys.MkdirAll(filepath.Join("assets", "dir"), 0o755))

	m, err := NewManager(WithFilesystem(fsys))
	require.NoError(t, err)
	m.AddStorage(DefaultGroup, "assets", false)

	loc, ok := m.Locate(DefaultGroup, "hello.txt")
	require.True(t, ok)
	assert.Equal(t, JoinLocation(FileTag, filepath.Join("assets", "hello.txt")), loc)

	_, ok = m.Locate(DefaultGroup, "dir")
	assert.False(t, ok, "directories are not resources")
	_, ok = m.Locate(DefaultGroup, "")
	assert.False(t, ok)

	res, err := m.Open(loc, false)
	require.NoError(t, err)
	defer res.Close()

	size, err := res.Size()
	require.NoError(t, err)
	assert.Equal(t, int64(11), size)

	_, err = res.Seek(7, io.SeekStart)
	require.NoError(t, err)
	data, err := io.ReadAll(res)
	require.NoError(t, err)
	assert.Equal(t, "file", string(data))

	_, err = res.Write([]byte("x"))
	require.ErrorIs(t, err, io.ErrShortWrite, "handles opened without erase are read-only")
}

func TestFileType_Erase(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "save.dat", []byte("old contents"), 0o644))

	m, err := NewManager(WithFilesystem(fsys))
	require.NoError(t, err)

	res, err := m.Open(JoinLocation(FileTag, "save.dat"), true)
	require.NoError(t, err)

	size, err := res.Size()
	require.NoError(t, err)
	assert.Equal(t, int64(0), size, "erase truncates")

	n, err := res.Write([]byte("new"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = res.Seek(0, io.SeekStart)
	require.NoError(t, err)
	data, err := io.ReadAll(res)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
	require.NoError(t, res.Close())

	got, err := afero.ReadFile(fsys, "save.dat")
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}

func TestFileType_EraseCreates(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	m, err := NewManager(WithFilesystem(fsys))
	require.NoError(t, err)

	_, err = m.Open(JoinLocation(FileTag, "fresh.dat"), false)
	require.ErrorIs(t, err, ErrOpenFailed)

	res, err := m.Open(JoinLocation(FileTag, "fresh.dat"), true)
	require.NoError(t, err)
	_, err = res.Write([]byte("abc"))
	require.NoError(t, err)
	require.NoError(t, res.Close())

	exists, err := afero.Exists(fsys, "fresh.dat")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFileType_UnknownHandle(t *testing.T) {
	t.Parallel()

	ft := NewFileType(afero.NewMemMapFs(), nil)

	assert.Equal(t, int64(0), ft.GetSize(42))
	assert.Equal(t, int64(0), ft.Tell(42))
	assert.Equal(t, int64(-1), ft.Seek(42, 0, WhenceStart))
	assert.Equal(t, int64(0), ft.Read(42, make([]byte, 4)))
	assert.Equal(t, int64(0), ft.Write(42, []byte("x")))
	ft.Close(42)
}

func TestFileType_OpenDirectory(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("dir", 0o755))

	ft := NewFileType(fsys, nil)
	assert.Equal(t, HandleUndefined, ft.Open("dir", false))
}
