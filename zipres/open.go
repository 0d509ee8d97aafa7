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
	"fmt"

	"github.com/ZaparooProject/go-arcres/archive"
	"github.com/ZaparooProject/go-arcres/resource"
)

// OpenView decompresses the entry addressed by location into memory and
// returns a view over it with the cursor at 0. The archive is closed before
// OpenView returns.
func (b *Backend) OpenView(location string) (*View, error) {
	archivePath, index, err := ParseLocation(location)
	if err != nil {
		return nil, err
	}

	arc, err := b.openArchive(archivePath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = arc.Close() }()

	entry, err := arc.Stat(index)
	if err != nil {
		return nil, fmt.Errorf("stat entry: %w", err)
	}
	if entry.IsDir {
		return nil, fmt.Errorf("%w: %q", archive.ErrIsDirectory, entry.Name)
	}
	if entry.Size < 0 {
		return nil, fmt.Errorf("%w: %q", archive.ErrUnknownSize, entry.Name)
	}
	if b.maxEntrySize > 0 && entry.Size > b.maxEntrySize {
		return nil, fmt.Errorf("%w: %q is %d bytes, limit %d",
			archive.ErrEntryTooLarge, entry.Name, entry.Size, b.maxEntrySize)
	}

	data := make([]byte, entry.Size)
	if err := arc.Extract(index, data); err != nil {
		return nil, fmt.Errorf("extract %q: %w", entry.Name, err)
	}

	return newView(entry.Name, data), nil
}

// Open opens location and returns a handle to its view. The backend is
// read-only, so erase always fails.
func (b *Backend) Open(location string, erase bool) resource.Handle {
	if erase {
		b.logger.Debug("refusing write-intent open of archive entry", "location", location)
		return resource.HandleUndefined
	}

	view, err := b.OpenView(location)
	if err != nil {
		b.logger.Debug("archive entry open failed", "location", location, "error", err)
		return resource.HandleUndefined
	}

	h := b.views.Insert(view)
	b.logger.Debug("opened archive entry", "location", location, "entry", view.Name(), "size", view.Size(), "handle", h)
	return h
}
