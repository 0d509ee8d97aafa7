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
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

// FileTag is the tag of the built-in file type.
const FileTag = "file"

// FileType is a writable resource type backed by plain files. Its locations
// are file paths: the storage joined with the name.
type FileType struct {
	fsys    afero.Fs
	logger  *slog.Logger
	handles HandleTable[*fileState]
}

type fileState struct {
	mu       sync.Mutex
	file     afero.File
	size     int64
	cursor   int64
	writable bool
}

// NewFileType creates a file type on fsys. A nil logger discards output.
func NewFileType(fsys afero.Fs, logger *slog.Logger) *FileType {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FileType{fsys: fsys, logger: logger}
}

// TypeInfo returns the callback set for registration with a Manager.
func (ft *FileType) TypeInfo() TypeInfo {
	return TypeInfo{
		Tag:     FileTag,
		Locate:  ft.Locate,
		Open:    ft.Open,
		Close:   ft.Close,
		GetSize: ft.GetSize,
		Seek:    ft.Seek,
		Tell:    ft.Tell,
		Read:    ft.Read,
		Write:   ft.Write,
	}
}

// Locate reports the path of name within storage if it is a regular file.
func (ft *FileType) Locate(storage, name string) (string, bool) {
	if name == "" {
		return "", false
	}
	path := filepath.Join(storage, filepath.FromSlash(name))
	info, err := ft.fsys.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return path, true
}

// Open opens the file at location. With erase the file is created or
// truncated and opened for writing.
func (ft *FileType) Open(location string, erase bool) Handle {
	var (
		file afero.File
		err  error
	)
	if erase {
		file, err = ft.fsys.OpenFile(location, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	} else {
		file, err = ft.fsys.Open(location)
	}
	if err != nil {
		ft.logger.Debug("file open failed", "path", location, "error", err)
		return HandleUndefined
	}

	info, err := file.Stat()
	if err != nil || info.IsDir() {
		_ = file.Close()
		ft.logger.Debug("file open rejected", "path", location, "error", err)
		return HandleUndefined
	}

	return ft.handles.Insert(&fileState{file: file, size: info.Size(), writable: erase})
}

// Close closes the file behind h.
func (ft *FileType) Close(h Handle) {
	st, ok := ft.handles.Remove(h)
	if !ok {
		ft.logger.Error("close of unknown file handle", "handle", h)
		return
	}
	if err := st.file.Close(); err != nil {
		ft.logger.Warn("file close failed", "path", st.file.Name(), "error", err)
	}
}

// GetSize returns the file size, or 0 for an unknown handle.
func (ft *FileType) GetSize(h Handle) int64 {
	st, ok := ft.handles.Get(h)
	if !ok {
		return 0
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.size
}

// Seek moves the cursor within [0, size] and returns it, or -1.
func (ft *FileType) Seek(h Handle, offset int64, whence Whence) int64 {
	st, ok := ft.handles.Get(h)
	if !ok {
		return -1
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	pos, ok := SeekCandidate(st.cursor, st.size, offset, whence)
	if !ok {
		return -1
	}
	st.cursor = pos
	return pos
}

// Tell returns the cursor, or 0 for an unknown handle.
func (ft *FileType) Tell(h Handle) int64 {
	st, ok := ft.handles.Get(h)
	if !ok {
		return 0
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.cursor
}

// Read copies up to len(dst) bytes at the cursor and advances it.
func (ft *FileType) Read(h Handle, dst []byte) int64 {
	st, ok := ft.handles.Get(h)
	if !ok {
		return 0
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	n := min(int64(len(dst)), st.size-st.cursor)
	if n <= 0 {
		return 0
	}
	read, err := st.file.ReadAt(dst[:n], st.cursor)
	if err != nil && !errors.Is(err, io.EOF) {
		ft.logger.Warn("file read failed", "path", st.file.Name(), "error", err)
	}
	st.cursor += int64(read)
	return int64(read)
}

// Write copies src at the cursor, extending the file as needed.
func (ft *FileType) Write(h Handle, src []byte) int64 {
	st, ok := ft.handles.Get(h)
	if !ok {
		return 0
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	if !st.writable {
		ft.logger.Debug("write to read-only file handle", "path", st.file.Name())
		return 0
	}
	written, err := st.file.WriteAt(src, st.cursor)
	if err != nil {
		ft.logger.Warn("file write failed", "path", st.file.Name(), "error", err)
	}
	st.cursor += int64(written)
	st.size = max(st.size, st.cursor)
	return int64(written)
}
