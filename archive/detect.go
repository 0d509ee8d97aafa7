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
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/ZaparooProject/go-arcres/internal/binary"
)

var (
	magicZIP      = []byte{0x50, 0x4B, 0x03, 0x04}
	magicZIPEmpty = []byte{0x50, 0x4B, 0x05, 0x06}
	magic7z       = []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}
	magicRAR      = []byte{0x52, 0x61, 0x72, 0x21, 0x1A, 0x07} // "Rar!\x1a\x07", v4 and v5
)

// signatureLen is the number of leading bytes needed to tell formats apart.
const signatureLen = 8

// IsArchiveExtension checks if an extension is a supported archive format.
func IsArchiveExtension(ext string) bool {
	return FormatFromExtension(ext) != FormatUnknown
}

// FormatFromExtension maps a file extension to a format.
func FormatFromExtension(ext string) Format {
	switch strings.ToLower(ext) {
	case ".zip":
		return FormatZIP
	case ".7z":
		return Format7z
	case ".rar":
		return FormatRAR
	default:
		return FormatUnknown
	}
}

// FormatFromSignature identifies a format from the leading bytes of a file.
func FormatFromSignature(header []byte) Format {
	switch {
	case binary.HasMagicAt(header, 0, magicZIP), binary.HasMagicAt(header, 0, magicZIPEmpty):
		return FormatZIP
	case binary.HasMagicAt(header, 0, magic7z):
		return Format7z
	case binary.HasMagicAt(header, 0, magicRAR):
		return FormatRAR
	default:
		return FormatUnknown
	}
}

// DetectFormat identifies the format of the archive at path. The signature is
// checked first; the extension is only consulted when the signature is not
// recognized, which covers self-extracting archives with a leading stub.
func DetectFormat(fsys afero.Fs, path string) (Format, error) {
	file, _, err := openFile(fsys, path)
	if err != nil {
		return FormatUnknown, err
	}
	defer func() { _ = file.Close() }()

	header, err := binary.ReadPrefix(file, signatureLen)
	if err != nil {
		return FormatUnknown, fmt.Errorf("read archive header: %w", err)
	}

	if format := FormatFromSignature(header); format != FormatUnknown {
		return format, nil
	}
	if format := FormatFromExtension(filepath.Ext(path)); format != FormatUnknown {
		return format, nil
	}

	return FormatUnknown, FormatError{Format: filepath.Ext(path), Reason: "unrecognized signature"}
}
