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
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ZaparooProject/go-arcres/archive"
	"github.com/ZaparooProject/go-arcres/resource"
)

// MaxLocationLength is the longest location the host accepts. Longer
// locations are reported as not found.
const MaxLocationLength = 511

// FormatLocation builds the location of the entry at index in archivePath.
func FormatLocation(archivePath string, index int) string {
	return archivePath + string(resource.LocationSeparator) + strconv.Itoa(index)
}

// ParseLocation splits a location into archive path and entry index. The
// index follows the last separator, so archive paths may contain separators.
func ParseLocation(location string) (archivePath string, index int, err error) {
	sep := strings.LastIndexByte(location, resource.LocationSeparator)
	if sep < 0 {
		return "", 0, fmt.Errorf("%w: no separator in %q", ErrMalformedLocation, location)
	}

	digits := location[sep+1:]
	if digits == "" {
		return "", 0, fmt.Errorf("%w: empty index in %q", ErrMalformedLocation, location)
	}
	for i := range len(digits) {
		if digits[i] < '0' || digits[i] > '9' {
			return "", 0, fmt.Errorf("%w: index %q is not a decimal number", ErrMalformedLocation, digits)
		}
	}

	index, err = strconv.Atoi(digits)
	if err != nil {
		return "", 0, fmt.Errorf("%w: index %q out of range", ErrMalformedLocation, digits)
	}

	return location[:sep], index, nil
}

// Locate reports the location of the entry called name inside the archive
// at storage. Any failure to read the archive means the resource is not here.
func (b *Backend) Locate(storage, name string) (string, bool) {
	location, err := b.LocateEntry(storage, name)
	if err != nil {
		var notFound archive.EntryNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, ErrLocationTooLong) {
			b.logger.Debug("storage is not a readable archive", "storage", storage, "error", err)
		}
		return "", false
	}
	return location, true
}

// LocateEntry is Locate with the reason for a miss. It returns an
// archive.EntryNotFoundError when the archive opens but holds no file entry
// called name, and ErrLocationTooLong when the location would not fit.
func (b *Backend) LocateEntry(storage, name string) (string, error) {
	arc, err := b.openArchive(storage)
	if err != nil {
		return "", err
	}
	defer func() { _ = arc.Close() }()

	entry, ok := arc.Lookup(name, b.foldCase)
	if !ok {
		return "", archive.EntryNotFoundError{Archive: storage, Name: name}
	}

	location := FormatLocation(storage, entry.Index)
	if len(location) > MaxLocationLength {
		b.logger.Warn("archive location too long",
			"storage", storage, "name", name, "length", len(location), "max", MaxLocationLength)
		return "", fmt.Errorf("%w: %d bytes", ErrLocationTooLong, len(location))
	}

	return location, nil
}
