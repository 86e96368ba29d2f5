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
	"errors"
	"fmt"

	"github.com/maydaytx/MemoryMessagePipe/internal/shm"
)

// ErrorKind classifies the error conditions named in spec §7. PeerAborted
// and ReceiverAborted are deliberately absent: the former surfaces as a
// successful, empty receive rather than an error (see Sender.SendMessage
// and ReceiveMessage), and the latter is just whatever error or panic the
// receive callback itself produced, propagated unchanged.
type ErrorKind int

const (
	// InvalidArgument covers construction with an empty channel name or
	// an invalid window-size override.
	InvalidArgument ErrorKind = iota + 1
	// UsedAfterRelease covers any operation on a disposed Sender or
	// Receiver.
	UsedAfterRelease
	// FramingMismatch covers a shared region whose mapped size does not
	// match this peer's expected page size (spec §3, §7).
	FramingMismatch
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid argument"
	case UsedAfterRelease:
		return "used after release"
	case FramingMismatch:
		return "framing mismatch"
	default:
		return "unknown"
	}
}

// PipeError wraps a channel-level failure with the spec §7 error kind it
// belongs to so callers can branch on Kind without string matching,
// while still chaining to the underlying cause via errors.Unwrap.
type PipeError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *PipeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("messagepipe: %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("messagepipe: %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *PipeError) Unwrap() error { return e.Err }

func newError(kind ErrorKind, op string, err error) *PipeError {
	return &PipeError{Kind: kind, Op: op, Err: err}
}

// wrapChannelErr classifies a low-level internal/shm error into the
// §7 error kind a caller of NewSender/NewReceiver should see.
func wrapChannelErr(op, name string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, shm.ErrPageSizeMismatch) {
		return newError(FramingMismatch, op, fmt.Errorf("channel %q: %w", name, err))
	}
	return fmt.Errorf("messagepipe: %s: channel %q: %w", op, name, err)
}
