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

// Package resource is a generic resource dispatcher. Backends ("resource
// types") register a callback set under a tag; the dispatcher asks them, in
// turn, to locate named resources inside storages and then routes open, seek,
// read, write and close calls to the backend that produced the location.
//
// Backends hand out opaque Handle values. A handle stays valid from a
// successful Open until the matching Close.
package resource

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// LocationSeparator separates the fields of a location string, both the tag
// prefix added by the dispatcher and the fields a backend encodes itself.
const LocationSeparator = '|'

// Handle is an opaque token identifying an open resource within one backend.
type Handle uint64

// HandleUndefined is returned by a backend's Open when it cannot open a location.
const HandleUndefined Handle = 0

// Whence selects the origin of a Seek.
type Whence int

const (
	// WhenceStart seeks to offset.
	WhenceStart Whence = iota
	// WhenceCurrent seeks to cursor+offset.
	WhenceCurrent
	// WhenceEnd seeks to size-offset.
	WhenceEnd
)

func (w Whence) String() string {
	switch w {
	case WhenceStart:
		return "start"
	case WhenceCurrent:
		return "current"
	case WhenceEnd:
		return "end"
	default:
		return fmt.Sprintf("Whence(%d)", int(w))
	}
}

// SeekCandidate computes the cursor a seek would move to and reports whether
// it lies within [0, size]. Backends use it so every type shares the same
// seek semantics.
func SeekCandidate(cursor, size, offset int64, whence Whence) (int64, bool) {
	var candidate int64
	switch whence {
	case WhenceStart:
		candidate = offset
	case WhenceCurrent:
		candidate = cursor + offset
	case WhenceEnd:
		candidate = size - offset
	default:
		return -1, false
	}

	if candidate < 0 || candidate > size {
		return -1, false
	}
	return candidate, true
}

// TypeInfo is the callback set a backend registers with a Manager.
// Every callback except Write is required. Failures are reported through
// sentinel values: ok=false from Locate, HandleUndefined from Open and -1
// from Seek.
type TypeInfo struct {
	// Tag identifies the backend and prefixes the locations it produces.
	Tag string

	// Locate reports the location of name inside storage.
	Locate func(storage, name string) (location string, ok bool)
	// Open opens a location produced by Locate. erase requests a writable,
	// truncated resource.
	Open func(location string, erase bool) Handle
	// Close releases a handle.
	Close func(h Handle)
	// GetSize returns the resource size in bytes.
	GetSize func(h Handle) int64
	// Seek moves the cursor and returns its new value, or -1.
	Seek func(h Handle, offset int64, whence Whence) int64
	// Tell returns the cursor.
	Tell func(h Handle) int64
	// Read copies up to len(dst) bytes at the cursor and returns the count.
	Read func(h Handle, dst []byte) int64
	// Write copies src at the cursor and returns the count. Nil for
	// read-only types.
	Write func(h Handle, src []byte) int64
}

func (info TypeInfo) validate() error {
	if info.Tag == "" {
		return fmt.Errorf("%w: empty tag", ErrInvalidType)
	}
	if strings.ContainsRune(info.Tag, LocationSeparator) {
		return fmt.Errorf("%w: tag %q contains location separator", ErrInvalidType, info.Tag)
	}

	var missing []string
	for name, set := range map[string]bool{
		"Locate":  info.Locate != nil,
		"Open":    info.Open != nil,
		"Close":   info.Close != nil,
		"GetSize": info.GetSize != nil,
		"Seek":    info.Seek != nil,
		"Tell":    info.Tell != nil,
		"Read":    info.Read != nil,
	} {
		if !set {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Errorf("%w: %s: missing %s", ErrInvalidType, info.Tag, strings.Join(missing, ", "))
	}

	return nil
}

// JoinLocation prefixes a backend location with its type tag.
func JoinLocation(tag, location string) string {
	return tag + string(LocationSeparator) + location
}

// SplitLocation splits a dispatcher location into type tag and backend location.
func SplitLocation(location string) (tag, backendLocation string, err error) {
	tag, backendLocation, ok := strings.Cut(location, string(LocationSeparator))
	if !ok || tag == "" {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedLocation, location)
	}
	return tag, backendLocation, nil
}

var (
	// ErrInvalidType indicates a TypeInfo that cannot be registered.
	ErrInvalidType = errors.New("invalid resource type")

	// ErrDuplicateType indicates a tag that is already registered.
	ErrDuplicateType = errors.New("resource type already registered")

	// ErrUnknownType indicates a location whose tag has no registered type.
	ErrUnknownType = errors.New("unknown resource type")

	// ErrMalformedLocation indicates a location string that cannot be parsed.
	ErrMalformedLocation = errors.New("malformed location")

	// ErrOpenFailed indicates the backend refused to open a location.
	ErrOpenFailed = errors.New("resource open failed")

	// ErrReadOnly indicates a write-intent open of a read-only type.
	ErrReadOnly = errors.New("resource type is read-only")

	// ErrWriteUnsupported indicates a write on a type without Write.
	ErrWriteUnsupported = errors.New("resource type does not support writing")

	// ErrClosed indicates use of a closed resource.
	ErrClosed = errors.New("resource closed")

	// ErrSeekOutOfRange indicates a seek outside [0, size] or with an unknown whence.
	ErrSeekOutOfRange = errors.New("seek out of range")
)
