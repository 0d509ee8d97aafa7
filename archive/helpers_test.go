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

package archive_test

import (
	"archive/zip"
	"bytes"
	"hash/crc32"
	"io"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/afero"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"

	"github.com/ZaparooProject/go-arcres/archive"
)

// testFile is one entry written by createTestZIP.
type testFile struct {
	name    string
	content []byte
	method  uint16
	dir     bool
}

// createTestZIP writes a ZIP archive with the given entries, in order, to fsys.
// Zstandard entries use a registered compressor. LZMA and XZ entries are
// compressed up front and written raw, since both writers emit a stream header
// before the first Write and would land ahead of the local file header.
func createTestZIP(t *testing.T, fsys afero.Fs, path string, files []testFile) {
	t.Helper()

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	writer.RegisterCompressor(archive.MethodZstd, func(out io.Writer) (io.WriteCloser, error) {
		return zstd.NewWriter(out)
	})

	for _, file := range files {
		if file.dir {
			if _, err := writer.Create(file.name + "/"); err != nil {
				t.Fatalf("create dir in zip: %v", err)
			}
			continue
		}

		switch file.method {
		case archive.MethodLZMA:
			writeRawEntry(t, writer, file.name, archive.MethodLZMA, zipLZMA(t, file.content), file.content, crc32.ChecksumIEEE(file.content))
			continue
		case archive.MethodXZ:
			writeRawEntry(t, writer, file.name, archive.MethodXZ, compressXZ(t, file.content), file.content, crc32.ChecksumIEEE(file.content))
			continue
		}

		fileWriter, err := writer.CreateHeader(&zip.FileHeader{Name: file.name, Method: file.method})
		if err != nil {
			t.Fatalf("create file in zip: %v", err)
		}
		if _, err := fileWriter.Write(file.content); err != nil {
			t.Fatalf("write file content: %v", err)
		}
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("close zip writer: %v", err)
	}

	if err := afero.WriteFile(fsys, path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write zip file: %v", err)
	}
}

// writeRawEntry writes pre-compressed data with explicit header fields.
func writeRawEntry(t *testing.T, writer *zip.Writer, name string, method uint16, raw, content []byte, crc uint32) {
	t.Helper()

	header := &zip.FileHeader{
		Name:               name,
		Method:             method,
		CRC32:              crc,
		CompressedSize64:   uint64(len(raw)),
		UncompressedSize64: uint64(len(content)),
	}
	fileWriter, err := writer.CreateRaw(header)
	if err != nil {
		t.Fatalf("create raw file in zip: %v", err)
	}
	if _, err := fileWriter.Write(raw); err != nil {
		t.Fatalf("write raw content: %v", err)
	}
}

// zipLZMA compresses content and reframes the classic .lzma header as a ZIP
// LZMA header: version, properties size, properties.
func zipLZMA(t *testing.T, content []byte) []byte {
	t.Helper()

	var classic bytes.Buffer
	writer, err := lzma.NewWriter(&classic)
	if err != nil {
		t.Fatalf("create lzma writer: %v", err)
	}
	if _, err := writer.Write(content); err != nil {
		t.Fatalf("write lzma: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close lzma writer: %v", err)
	}

	stream := classic.Bytes()
	framed := []byte{0x10, 0x02, 0x05, 0x00}
	framed = append(framed, stream[:5]...)
	return append(framed, stream[13:]...)
}

// compressXZ returns content as a complete .xz stream.
func compressXZ(t *testing.T, content []byte) []byte {
	t.Helper()

	var out bytes.Buffer
	writer, err := xz.NewWriter(&out)
	if err != nil {
		t.Fatalf("create xz writer: %v", err)
	}
	if _, err := writer.Write(content); err != nil {
		t.Fatalf("write xz: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close xz writer: %v", err)
	}
	return out.Bytes()
}

// writeTestZIPRaw builds a single-entry archive with explicit raw header fields.
func writeTestZIPRaw(t *testing.T, fsys afero.Fs, path string, header *zip.FileHeader, raw []byte) {
	t.Helper()

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	fileWriter, err := writer.CreateRaw(header)
	if err != nil {
		t.Fatalf("create raw file in zip: %v", err)
	}
	if _, err := fileWriter.Write(raw); err != nil {
		t.Fatalf("write raw content: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close zip writer: %v", err)
	}
	if err := afero.WriteFile(fsys, path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write zip file: %v", err)
	}
}
