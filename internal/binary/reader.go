// Package binary provides small helpers for reading little-endian fields and
// magic numbers out of archive headers.
package binary

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrShortData is returned when a field extends past the available data.
var ErrShortData = errors.New("short data")

// ReadPrefix reads up to n bytes from the start of r. Inputs shorter than n
// are not an error; whatever is available is returned.
func ReadPrefix(r io.ReaderAt, n int) ([]byte, error) {
	buf := make([]byte, n)
	read, err := r.ReadAt(buf, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf[:read], nil
}

// HasMagicAt reports whether b contains magic at offset.
func HasMagicAt(b []byte, offset int, magic []byte) bool {
	if offset < 0 || offset > len(b)-len(magic) {
		return false
	}
	return bytes.Equal(b[offset:offset+len(magic)], magic)
}

// Uint16LE decodes a little-endian uint16 from b at offset.
func Uint16LE(b []byte, offset int) (uint16, error) {
	if offset < 0 || offset > len(b)-2 {
		return 0, fmt.Errorf("uint16 at %d: %w", offset, ErrShortData)
	}
	return binary.LittleEndian.Uint16(b[offset:]), nil
}

// PutUint64LE writes v into b at offset in little-endian order.
func PutUint64LE(b []byte, offset int, v uint64) {
	binary.LittleEndian.PutUint64(b[offset:], v)
}
