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
	"bytes"
	"fmt"
	"io"

	"github.com/ulikunitz/xz/lzma"

	"github.com/ZaparooProject/go-arcres/internal/binary"
)

func init() {
	RegisterCodec(MethodLZMA, func() Codec { return lzmaCodec{} })
}

const (
	// zipLZMAHeaderLen is the version (2 bytes) and property size (2 bytes)
	// that precede the LZMA properties in a ZIP entry.
	zipLZMAHeaderLen = 4
	lzmaPropsLen     = 5
	lzmaClassicLen   = 13
)

type lzmaCodec struct{}

// Decompress converts the ZIP LZMA framing into a classic .lzma header with
// the known uncompressed size, so an end marker is optional.
func (lzmaCodec) Decompress(dst []byte, src io.Reader) error {
	var header [zipLZMAHeaderLen]byte
	if _, err := io.ReadFull(src, header[:]); err != nil {
		return fmt.Errorf("%w: lzma: read header: %w", ErrDecompressFailed, err)
	}

	propsLen, err := binary.Uint16LE(header[:], 2)
	if err != nil {
		return fmt.Errorf("%w: lzma: %w", ErrDecompressFailed, err)
	}
	if propsLen != lzmaPropsLen {
		return fmt.Errorf("%w: lzma: unexpected properties size %d", ErrDecompressFailed, propsLen)
	}

	// Byte 0: lc/lp/pb, bytes 1-4: dictionary size, bytes 5-12: uncompressed size
	classic := make([]byte, lzmaClassicLen)
	if _, err := io.ReadFull(src, classic[:lzmaPropsLen]); err != nil {
		return fmt.Errorf("%w: lzma: read properties: %w", ErrDecompressFailed, err)
	}
	binary.PutUint64LE(classic, lzmaPropsLen, uint64(len(dst)))

	reader, err := lzma.NewReader(io.MultiReader(bytes.NewReader(classic), src))
	if err != nil {
		return fmt.Errorf("%w: lzma init: %w", ErrDecompressFailed, err)
	}

	return fillExact(reader, dst)
}
