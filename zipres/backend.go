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

// Package zipres is a read-only resource type that serves the entries of
// archives as resources. A location names an archive and the ordinal index of
// an entry inside it; opening a location decompresses the entry into memory
// and hands out a random-access view over the bytes.
//
// ZIP archives are served by default. 7z and RAR can be enabled with
// WithFormats.
package zipres

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/afero"

	"github.com/ZaparooProject/go-arcres/archive"
	"github.com/ZaparooProject/go-arcres/resource"
)

const (
	// DefaultTag is the tag the backend registers under.
	DefaultTag = "zip"

	// DefaultMaxEntrySize bounds the size of a single decompressed entry.
	DefaultMaxEntrySize int64 = 256 << 20
)

var (
	// ErrReadOnly is returned when a location is opened for writing.
	ErrReadOnly = resource.ErrReadOnly

	// ErrMalformedLocation is returned for a location without separator or
	// with an index that is not a non-negative decimal number.
	ErrMalformedLocation = resource.ErrMalformedLocation

	// ErrFormatDisabled is returned for archives of a format the backend
	// was not configured to serve.
	ErrFormatDisabled = errors.New("archive format not enabled")

	// ErrLocationTooLong is returned when an entry's location would exceed
	// MaxLocationLength.
	ErrLocationTooLong = errors.New("location too long")
)

// Backend serves archive entries as resources. It is safe for concurrent use;
// the views it hands out are not.
type Backend struct {
	fsys         afero.Fs
	logger       *slog.Logger
	tag          string
	formats      []archive.Format
	maxEntrySize int64
	foldCase     bool

	views resource.HandleTable[*View]
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger. The default discards all output.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Backend) {
		b.logger = logger
	}
}

// WithTag sets the tag the backend registers under.
func WithTag(tag string) Option {
	return func(b *Backend) {
		b.tag = tag
	}
}

// WithFilesystem sets the filesystem archives are opened from.
func WithFilesystem(fsys afero.Fs) Option {
	return func(b *Backend) {
		b.fsys = fsys
	}
}

// WithCaseInsensitive makes Locate fall back to a case-insensitive name
// match when no entry matches exactly.
func WithCaseInsensitive(enabled bool) Option {
	return func(b *Backend) {
		b.foldCase = enabled
	}
}

// WithMaxEntrySize sets the largest entry Open will decompress.
// Zero or less removes the limit.
func WithMaxEntrySize(size int64) Option {
	return func(b *Backend) {
		b.maxEntrySize = size
	}
}

// WithFormats sets the archive formats the backend serves.
func WithFormats(formats ...archive.Format) Option {
	return func(b *Backend) {
		b.formats = slices.Clone(formats)
	}
}

// New creates a Backend.
func New(opts ...Option) *Backend {
	b := &Backend{
		tag:          DefaultTag,
		formats:      []archive.Format{archive.FormatZIP},
		maxEntrySize: DefaultMaxEntrySize,
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.fsys == nil {
		b.fsys = afero.NewOsFs()
	}
	if b.logger == nil {
		b.logger = slog.New(slog.DiscardHandler)
	}
	return b
}

// Tag returns the tag the backend registers under.
func (b *Backend) Tag() string {
	return b.tag
}

// OpenHandles returns the number of handles not yet closed.
func (b *Backend) OpenHandles() int {
	return b.views.Len()
}

// openArchive opens the archive at path if its format is enabled.
func (b *Backend) openArchive(path string) (archive.Archive, error) {
	format, err := archive.DetectFormat(b.fsys, path)
	if err != nil {
		return nil, fmt.Errorf("detect archive format: %w", err)
	}
	if !slices.Contains(b.formats, format) {
		return nil, fmt.Errorf("%w: %s", ErrFormatDisabled, format)
	}

	arc, err := archive.OpenFormat(b.fsys, path, format)
	if err != nil {
		return nil, fmt.Errorf("open %s archive: %w", format, err)
	}
	return arc, nil
}
