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

import "sync"

// memType is an in-memory read-only type used to exercise the dispatcher.
// It resolves "<storage>/<name>" against a fixed content map.
type memType struct {
	tag     string
	content map[string]string

	handles HandleTable[*memState]

	mu     sync.Mutex
	closed int
	locate int
}

type memState struct {
	data   []byte
	cursor int64
}

func newMemType(tag string, content map[string]string) *memType {
	return &memType{tag: tag, content: content}
}

func (mt *memType) typeInfo() TypeInfo {
	return TypeInfo{
		Tag: mt.tag,
		Locate: func(storage, name string) (string, bool) {
			mt.mu.Lock()
			mt.locate++
			mt.mu.Unlock()

			key := storage + "/" + name
			if _, ok := mt.content[key]; !ok {
				return "", false
			}
			return key, true
		},
		Open: func(location string, erase bool) Handle {
			data, ok := mt.content[location]
			if !ok || erase {
				return HandleUndefined
			}
			return mt.handles.Insert(&memState{data: []byte(data)})
		},
		Close: func(h Handle) {
			if _, ok := mt.handles.Remove(h); ok {
				mt.mu.Lock()
				mt.closed++
				mt.mu.Unlock()
			}
		},
		GetSize: func(h Handle) int64 {
			st, ok := mt.handles.Get(h)
			if !ok {
				return 0
			}
			return int64(len(st.data))
		},
		Seek: func(h Handle, offset int64, whence Whence) int64 {
			st, ok := mt.handles.Get(h)
			if !ok {
				return -1
			}
			pos, ok := SeekCandidate(st.cursor, int64(len(st.data)), offset, whence)
			if !ok {
				return -1
			}
			st.cursor = pos
			return pos
		},
		Tell: func(h Handle) int64 {
			st, ok := mt.handles.Get(h)
			if !ok {
				return 0
			}
			return st.cursor
		},
		Read: func(h Handle, dst []byte) int64 {
			st, ok := mt.handles.Get(h)
			if !ok {
				return 0
			}
			n := copy(dst, st.data[st.cursor:])
			st.cursor += int64(n)
			return int64(n)
		},
	}
}

func (mt *memType) counts() (locate, closed int) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	return mt.locate, mt.closed
}

// stubType returns a TypeInfo with every callback set and no behavior.
func stubType(tag string) TypeInfo {
	return TypeInfo{
		Tag:     tag,
		Locate:  func(string, string) (string, bool) { return "", false },
		Open:    func(string, bool) Handle { return HandleUndefined },
		Close:   func(Handle) {},
		GetSize: func(Handle) int64 { return 0 },
		Seek:    func(Handle, int64, Whence) int64 { return -1 },
		Tell:    func(Handle) int64 { return 0 },
		Read:    func(Handle, []byte) int64 { return 0 },
		Write:   func(Handle, []byte) int64 { return 0 },
	}
}
