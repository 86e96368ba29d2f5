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

import "fmt"

// EventSet owns the four named cross-process events that make up one
// channel's handshake (spec §2, §3). The local "Disposing" cancel
// signal named in the spec lives one layer up, in the Receiver itself
// (package messagepipe), since unlike the other four it is never backed
// by shared memory and has no business in this package's naming scheme.
type EventSet struct {
	MessageSending *Event
	MessageRead    *Event
	BytesWritten   *Event
	BytesRead      *Event
}

// newEventSet creates or opens all four named events, each resolving its
// own create-or-open race independently via createOrOpenEvent. The
// region's create-or-open race and each event's create-or-open race are
// five independent races between the same two peers; a peer that loses
// the region race can still win (or lose) any given event race, so
// ownership is never assumed to be uniform across the five resources.
func newEventSet(name string) (*EventSet, error) {
	suffixes := [4]string{SuffixMessageSending, SuffixMessageRead, SuffixBytesWritten, SuffixBytesRead}
	events := make([]*Event, 0, 4)

	cleanup := func() {
		for _, e := range events {
			e.Close()
		}
	}

	for _, suffix := range suffixes {
		path := eventPath(name, suffix)
		e, err := createOrOpenEvent(path)
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("shm: %s event: %w", suffix, err)
		}
		events = append(events, e)
	}

	return &EventSet{
		MessageSending: events[0],
		MessageRead:    events[1],
		BytesWritten:   events[2],
		BytesRead:      events[3],
	}, nil
}

// Close releases all four events. Each event unlinks its own backing
// file only if it was the one that created it.
func (es *EventSet) Close() error {
	var firstErr error
	for _, e := range []*Event{es.MessageSending, es.MessageRead, es.BytesWritten, es.BytesRead} {
		if err := e.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
