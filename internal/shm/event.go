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
	"fmt"
	"unsafe"

	sem "github.com/tmthrgd/go-sem"

	"golang.org/x/sys/unix"
)

// Event is one named, cross-process auto-reset event (spec §3). It is
// backed by a POSIX semaphore living alone in its own small named
// mapping, the same technique tmthrgd/shm-go uses to embed a sem_t
// inside a shared memory struct, just with the semaphore given a page
// of its own instead of sharing one with ring data.
//
// A counting semaphore only behaves like an auto-reset event when it is
// never posted twice before being waited on once; the alternating
// handshake in sender.go/receiver.go guarantees that for every message
// both sides complete (spec §3 invariant 4), so no extra bookkeeping is
// done here. Receiver.Dispose's releasing post of MessageSending, and a
// receive callback that returns before reading a chunk the sender
// signalled, leave a signal outstanding.
type Event struct {
	m *mapping
	s *sem.Semaphore
}

// createEvent creates the named semaphore page and initializes the
// semaphore to 0 (unsignalled). It fails with unix.EEXIST if the page
// already exists, letting the caller fall back to openEvent.
func createEvent(path string) (*Event, error) {
	size := int(unsafe.Sizeof(sem.Semaphore{}))
	m, err := createMapping(path, size)
	if err != nil {
		return nil, err
	}
	s := (*sem.Semaphore)(unsafe.Pointer(&m.mem[0]))
	if err := s.Init(0); err != nil {
		m.Close(true)
		return nil, fmt.Errorf("shm: init semaphore %s: %w", path, err)
	}
	return &Event{m: m, s: s}, nil
}

// openEvent maps an already-initialized semaphore page.
func openEvent(path string) (*Event, error) {
	size := int(unsafe.Sizeof(sem.Semaphore{}))
	m, err := openMapping(path)
	if err != nil {
		return nil, err
	}
	if len(m.mem) != size {
		m.Close(false)
		return nil, fmt.Errorf("shm: %s: %w", path, ErrPageSizeMismatch)
	}
	s := (*sem.Semaphore)(unsafe.Pointer(&m.mem[0]))
	return &Event{m: m, s: s}, nil
}

// createOrOpenEvent creates the named semaphore page, or opens it if some
// other caller (in this process or a peer process) already created it.
// Each of the four named events resolves its own create-or-open race
// independently, the same way createOrOpenMapping does for the data
// region: the region and the four event pages are five separate named
// resources that may each be brought into existence by whichever peer
// happens to reach them first, in any order, so none of them can be
// gated on another resource's ownership decision.
func createOrOpenEvent(path string) (*Event, error) {
	e, err := createEvent(path)
	if err == nil {
		return e, nil
	}
	if !errors.Is(err, unix.EEXIST) {
		return nil, err
	}
	return openEvent(path)
}

// Signal wakes one waiter, or leaves the event signalled for the next
// Wait call if none is currently blocked.
func (e *Event) Signal() error {
	return e.s.Post()
}

// Wait blocks until the event is signalled, consuming exactly one
// signal (auto-reset).
func (e *Event) Wait() error {
	return e.s.Wait()
}

// Close releases the semaphore page. The backing file is unlinked only
// when this call is the one that created it (m.owner), which may differ
// from the channel's region-level Owner now that each event resolves its
// own create-or-open race.
func (e *Event) Close() error {
	if e.m.owner {
		if err := e.s.Destroy(); err != nil {
			e.m.Close(true)
			return fmt.Errorf("shm: destroy semaphore %s: %w", e.m.path, err)
		}
	}
	return e.m.Close(e.m.owner)
}
