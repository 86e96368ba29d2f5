//go:build linux && (amd64 || arm64)

/*
 *
 * Copyright 2025 gRPC authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package shm

import (
	"errors"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ErrPageSizeMismatch indicates the mapped region's size does not match
// what this peer expected (spec §3, §7 FramingMismatch).
var ErrPageSizeMismatch = errors.New("shm: region size mismatch between peers")

// HeaderSize is the fixed 6-byte chunk header described in spec §3:
// a little-endian uint32 byte count, a one-byte completion flag, and a
// reserved byte. The data window follows immediately after.
const HeaderSize = 6

// pageHeader overlays the first HeaderSize bytes of the mapped page.
// bytesWritten is accessed atomically (it is a natural 4-byte word);
// messageCompleted is a single byte with no stdlib atomic counterpart,
// so it relies on the release/acquire edge the event signal already
// provides (spec §9 design notes explicitly allow this for the data
// window, and the same reasoning applies to this one-byte flag).
type pageHeader struct {
	bytesWritten     atomic.Uint32
	messageCompleted byte
	reserved         byte
}

// Region is a typed view over the channel's single shared page: the
// chunk header plus the data window behind it.
type Region struct {
	m *mapping
}

// PageSize returns the OS page size, the canonical region size for a
// freshly created channel (spec §3: "exactly one system page").
func PageSize() int {
	return unix.Getpagesize()
}

// OpenOrCreateRegion creates the named page if it does not yet exist, or
// opens it otherwise. The returned bool is true iff this call created
// it (and is therefore responsible for eventually unlinking it).
func OpenOrCreateRegion(name string, pageSize int) (*Region, bool, error) {
	path := regionPath(name)
	m, err := createOrOpenMapping(path, pageSize)
	if err != nil {
		return nil, false, err
	}
	if len(m.mem) != pageSize {
		owner := m.owner
		m.Close(false)
		return nil, owner, ErrPageSizeMismatch
	}
	return &Region{m: m}, m.owner, nil
}

func (r *Region) header() *pageHeader {
	return (*pageHeader)(unsafe.Pointer(&r.m.mem[0]))
}

// Window returns the data window: the W = P - HeaderSize bytes that
// carry one chunk's payload at a time.
func (r *Region) Window() []byte {
	return r.m.mem[HeaderSize:]
}

// BytesWritten returns the valid byte count of the current chunk.
func (r *Region) BytesWritten() uint32 {
	return r.header().bytesWritten.Load()
}

// SetBytesWritten publishes the valid byte count of the current chunk.
func (r *Region) SetBytesWritten(n uint32) {
	r.header().bytesWritten.Store(n)
}

// MessageCompleted reports whether the current chunk is the final chunk
// of the message.
func (r *Region) MessageCompleted() bool {
	return r.header().messageCompleted != 0
}

// SetMessageCompleted publishes the final-chunk flag.
func (r *Region) SetMessageCompleted(v bool) {
	if v {
		r.header().messageCompleted = 1
	} else {
		r.header().messageCompleted = 0
	}
}

// Close unmaps the page and, when unlink is true, removes its backing
// file. unlink should be true only for the channel's owner.
func (r *Region) Close(unlink bool) error {
	return r.m.Close(unlink)
}
