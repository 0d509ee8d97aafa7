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

package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeekCandidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		cursor int64
		size   int64
		offset int64
		whence Whence
		want   int64
		wantOK bool
	}{
		{"start", 3, 17, 5, WhenceStart, 5, true},
		{"start at size", 0, 17, 17, WhenceStart, 17, true},
		{"start past size", 0, 17, 18, WhenceStart, -1, false},
		{"start negative", 0, 17, -1, WhenceStart, -1, false},
		{"current forward", 5, 17, 4, WhenceCurrent, 9, true},
		{"current backward", 5, 17, -5, WhenceCurrent, 0, true},
		{"current before start", 5, 17, -6, WhenceCurrent, -1, false},
		{"end zero", 0, 17, 0, WhenceEnd, 17, true},
		{"end counts back", 0, 17, 7, WhenceEnd, 10, true},
		{"end whole", 0, 17, 17, WhenceEnd, 0, true},
		{"end past start", 0, 17, 18, WhenceEnd, -1, false},
		{"end negative", 0, 17, -1, WhenceEnd, -1, false},
		{"empty resource", 0, 0, 0, WhenceStart, 0, true},
		{"unknown whence", 0, 17, 0, Whence(9), -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := SeekCandidate(tt.cursor, tt.size, tt.offset, tt.whence)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWhence_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "start", WhenceStart.String())
	assert.Equal(t, "current", WhenceCurrent.String())
	assert.Equal(t, "end", WhenceEnd.String())
	assert.Equal(t, "Whence(7)", Whence(7).String())
}

func TestSplitLocation(t *testing.T) {
	t.Parallel()

	tag, rest, err := SplitLocation("zip|data.zip|3")
	require.NoError(t, err)
	assert.Equal(t, "zip", tag)
	assert.Equal(t, "data.zip|3", rest)

	tag, rest, err = SplitLocation("file|")
	require.NoError(t, err)
	assert.Equal(t, "file", tag)
	assert.Empty(t, rest)

	for _, bad := range []string{"", "noseparator", "|data.zip|3"} {
		_, _, err := SplitLocation(bad)
		require.ErrorIs(t, err, ErrMalformedLocation, bad)
	}
}

func TestJoinLocation(t *testing.T) {
	t.Parallel()

	loc := JoinLocation("zip", "data.zip|3")
	assert.Equal(t, "zip|data.zip|3", loc)

	tag, rest, err := SplitLocation(loc)
	require.NoError(t, err)
	assert.Equal(t, "zip", tag)
	assert.Equal(t, "data.zip|3", rest)
}

func TestTypeInfo_Validate(t *testing.T) {
	t.Parallel()

	valid := stubType("stub")
	require.NoError(t, valid.validate())

	noWrite := valid
	noWrite.Write = nil
	require.NoError(t, noWrite.validate(), "Write is optional")

	empty := valid
	empty.Tag = ""
	require.ErrorIs(t, empty.validate(), ErrInvalidType)

	separator := valid
	separator.Tag = "a|b"
	require.ErrorIs(t, separator.validate(), ErrInvalidType)

	missing := valid
	missing.Read = nil
	missing.Tell = nil
	err := missing.validate()
	require.ErrorIs(t, err, ErrInvalidType)
	assert.Contains(t, err.Error(), "missing Read, Tell")
}
