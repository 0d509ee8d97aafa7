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
	"io"

	"github.com/klauspost/compress/zstd"
)

func init() {
	RegisterCodec(MethodZstd, func() Codec { return zstdCodec{} })
}

type zstdCodec struct{}

func (zstdCodec) Decompress(dst []byte, src io.Reader) error {
	decoder, err := zstd.NewReader(src, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return fmt.Errorf("%w: zstd init: %w", ErrDecompressFailed, err)
	}
	defer decoder.Close()

	return fillExact(decoder, dst)
}
