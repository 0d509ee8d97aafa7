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
	"compress/bzip2"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/flate"
)

// ZIP compression method identifiers (APPNOTE 4.4.5).
const (
	MethodStore   uint16 = 0
	MethodDeflate uint16 = 8
	MethodBZIP2   uint16 = 12
	MethodLZMA    uint16 = 14
	MethodZstd    uint16 = 93
	MethodXZ      uint16 = 95
)

// Codec decompresses one ZIP entry in a single pass.
type Codec interface {
	// Decompress reads the raw entry data from src and writes exactly
	// len(dst) decompressed bytes into dst.
	Decompress(dst []byte, src io.Reader) error
}

var (
	codecRegistry   = make(map[uint16]func() Codec)
	codecRegistryMu sync.RWMutex
)

func init() {
	RegisterCodec(MethodStore, func() Codec { return storeCodec{} })
	RegisterCodec(MethodDeflate, func() Codec { return deflateCodec{} })
	RegisterCodec(MethodBZIP2, func() Codec { return bzip2Codec{} })
}

// RegisterCodec registers a codec factory for a ZIP compression method,
// replacing any previous registration.
func RegisterCodec(method uint16, factory func() Codec) {
	codecRegistryMu.Lock()
	defer codecRegistryMu.Unlock()
	codecRegistry[method] = factory
}

// GetCodec returns a new codec for a ZIP compression method.
func GetCodec(method uint16) (Codec, error) {
	codecRegistryMu.RLock()
	factory, ok := codecRegistry[method]
	codecRegistryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %d (%s)", ErrUnsupportedMethod, method, methodName(method))
	}

	return factory(), nil
}

func methodName(method uint16) string {
	switch method {
	case MethodStore:
		return "store"
	case MethodDeflate:
		return "deflate"
	case 9:
		return "deflate64"
	case MethodBZIP2:
		return "bzip2"
	case MethodLZMA:
		return "lzma"
	case 98:
		return "ppmd"
	case MethodZstd:
		return "zstd"
	case MethodXZ:
		return "xz"
	default:
		return "unknown"
	}
}

type storeCodec struct{}

func (storeCodec) Decompress(dst []byte, src io.Reader) error {
	return fillExact(src, dst)
}

type deflateCodec struct{}

func (deflateCodec) Decompress(dst []byte, src io.Reader) error {
	reader := flate.NewReader(src)
	defer func() { _ = reader.Close() }()
	return fillExact(reader, dst)
}

// bzip2Codec uses the standard library decoder; none of the compression
// libraries in use implement bzip2.
type bzip2Codec struct{}

func (bzip2Codec) Decompress(dst []byte, src io.Reader) error {
	return fillExact(bzip2.NewReader(src), dst)
}
