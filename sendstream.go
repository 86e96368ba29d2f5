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

import "github.com/maydaytx/MemoryMessagePipe/internal/shm"

// SendStream is the write-only, non-seekable byte sink handed to a
// SendMessage callback (spec §4.1). It implements io.Writer; Go's type
// system already rules out read-on-write-stream misuse at compile time,
// so there is no runtime OperationNotSupported path for that case here.
type SendStream struct {
	region *shm.Region
	events *shm.EventSet
	window []byte
	pos    int
}

func newSendStream(region *shm.Region, events *shm.EventSet) *SendStream {
	return &SendStream{region: region, events: events, window: region.Window()}
}

// Write copies p into the channel, emitting and handing off full chunks
// as the window fills (spec §4.1 algorithm). It always consumes all of
// p or returns a non-nil error.
func (s *SendStream) Write(p []byte) (int, error) {
	written := 0
	for len(p) > 0 {
		room := len(s.window) - s.pos
		n := min(len(p), room)
		copy(s.window[s.pos:], p[:n])
		s.pos += n
		p = p[n:]
		written += n

		if s.pos == len(s.window) {
			if err := s.emitChunk(false); err != nil {
				return written, err
			}
		}
	}
	return written, nil
}

// Flush is a no-op: every chunk boundary is driven by window fullness,
// not by an explicit flush (spec §4.1).
func (s *SendStream) Flush() error { return nil }

// Close is inert on the stream itself; Sender.SendMessage is responsible
// for emitting the final completion chunk once the callback returns.
func (s *SendStream) Close() error { return nil }

// emitChunk publishes the header for the bytes staged so far, signals
// BytesWritten, and — for a non-final chunk — waits for the receiver to
// free the window before returning. The header must be published before
// the signal (release-before-signal ordering, spec §4.1).
func (s *SendStream) emitChunk(final bool) error {
	s.region.SetBytesWritten(uint32(s.pos))
	s.region.SetMessageCompleted(final)
	if err := s.events.BytesWritten.Signal(); err != nil {
		return err
	}
	if !final {
		if err := s.events.BytesRead.Wait(); err != nil {
			return err
		}
		s.pos = 0
	}
	return nil
}

// emitCancellation publishes the empty final chunk that tells the
// receiver a message was abandoned mid-write (spec §4.3 step 3), ignoring
// whatever bytes were staged but not yet signalled.
func (s *SendStream) emitCancellation() error {
	s.region.SetBytesWritten(0)
	s.region.SetMessageCompleted(true)
	return s.events.BytesWritten.Signal()
}
