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
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Path represents a parsed archive path with optional internal path.
type Path struct {
	ArchivePath  string // Path to the archive file
	InternalPath string // Path inside the archive (empty when the path names the archive itself)
}

// archiveExtensions are the supported archive extensions.
var archiveExtensions = []string{".zip", ".7z", ".rar"}

// ParsePath parses a path that may reference an entry inside an archive,
// such as "/packs/data.zip/levels/level1.json".
//
// Returns:
//   - (*Path, nil) if the path contains an archive reference
//   - (nil, nil) if the path is not an archive reference
//   - (nil, error) if there was an error checking the path
//
//nolint:nilnil // nil,nil is documented API behavior
func ParsePath(fsys afero.Fs, path string) (*Path, error) {
	normalizedPath := filepath.ToSlash(path)
	lowerPath := strings.ToLower(normalizedPath)

	for _, ext := range archiveExtensions {
		// Look for pattern like ".zip/" in the path
		idx := strings.Index(lowerPath, ext+"/")
		if idx == -1 {
			continue
		}

		archivePath := path[:idx+len(ext)]
		internalPath := normalizedPath[idx+len(ext)+1:]

		exists, err := isRegularFile(fsys, archivePath)
		if err != nil {
			return nil, err
		}
		if !exists {
			// Archive doesn't exist, this might not be an archive path
			continue
		}

		return &Path{
			ArchivePath:  archivePath,
			InternalPath: internalPath,
		}, nil
	}

	if !IsArchiveExtension(filepath.Ext(path)) {
		return nil, nil
	}

	exists, err := isRegularFile(fsys, path)
	if err != nil || !exists {
		return nil, err
	}

	return &Path{ArchivePath: path}, nil
}

// IsArchivePath checks if a path references an archive.
// This is a quick check that doesn't verify file existence.
func IsArchivePath(path string) bool {
	lowerPath := strings.ToLower(filepath.ToSlash(path))

	for _, ext := range archiveExtensions {
		if strings.Contains(lowerPath, ext+"/") {
			return true
		}
	}

	return IsArchiveExtension(filepath.Ext(path))
}

func isRegularFile(fsys afero.Fs, path string) (bool, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat archive %s: %w", path, err)
	}
	return !info.IsDir(), nil
}
