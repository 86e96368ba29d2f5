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

package messagepipe

import (
	"io"

	"github.com/maydaytx/MemoryMessagePipe/internal/shm"
)

// ReceiveStream is the read-only, non-seekable byte source handed to a
// ReceiveMessage callback (spec §4.2). It implements io.Reader and ends
// the message (Read returns 0, io.EOF) exactly at the chunk boundary
// marked completed by the sender.
type ReceiveStream struct {
	region *shm.Region
	events *shm.EventSet
	window []byte

	remaining     int
	cursor        int
	finalChunk    bool
	awaitingChunk bool
}

func newReceiveStream(region *shm.Region, events *shm.EventSet) *ReceiveStream {
	return &ReceiveStream{
		region:        region,
		events:        events,
		window:        region.Window(),
		awaitingChunk: true,
	}
}

// Read delivers up to len(p) bytes of the current message, returning
// 0, io.EOF once the message is fully consumed (spec §4.2).
func (s *ReceiveStream) Read(p []byte) (int, error) {
	if s.finalChunk && s.remaining == 0 {
		return 0, io.EOF
	}

	if s.awaitingChunk {
		if err := s.events.BytesWritten.Wait(); err != nil {
			return 0, err
		}
		s.remaining = int(s.region.BytesWritten())
		s.finalChunk = s.region.MessageCompleted()
		s.cursor = 0
		s.awaitingChunk = false
	}

	k := min(len(p), s.remaining)
	copy(p[:k], s.window[s.cursor:s.cursor+k])
	s.cursor += k
	s.remaining -= k

	if s.remaining == 0 {
		s.awaitingChunk = true
		if !s.finalChunk {
			if err := s.events.BytesRead.Signal(); err != nil {
				return k, err
			}
		}
	}

	if k == 0 && s.finalChunk && s.remaining == 0 {
		return 0, io.EOF
	}
	return k, nil
}
