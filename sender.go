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
	"log/slog"
	"sync/atomic"

	"github.com/maydaytx/MemoryMessagePipe/internal/shm"
)

// Sender is the write side of a channel (spec §4.4). It is safe to call
// Dispose from any goroutine, including concurrently with itself, but
// concurrent SendMessage calls on the same Sender are not supported
// (spec §5).
type Sender struct {
	name     string
	channel  *shm.Channel
	logger   *slog.Logger
	disposed atomic.Bool
}

// NewSender creates or attaches to the named channel's sending side.
// Whichever of NewSender/NewReceiver reaches the name first creates the
// backing shared memory; the other attaches to it (spec §3 Lifecycles).
func NewSender(name string, opts ...Option) (*Sender, error) {
	if name == "" {
		return nil, newError(InvalidArgument, "NewSender", errors.New("empty channel name"))
	}
	cfg := resolveOptions(opts)
	if err := validateWindowSize(cfg.windowSize); err != nil {
		return nil, newError(InvalidArgument, "NewSender", err)
	}

	ch, err := shm.Open(name, cfg.windowSize)
	if err != nil {
		return nil, wrapChannelErr("NewSender", name, err)
	}

	cfg.logger.Debug("messagepipe: sender opened", "channel", name, "owner", ch.Owner)
	return &Sender{name: name, channel: ch, logger: cfg.logger}, nil
}

// SendMessage begins a new message, runs fn against a fresh SendStream,
// and blocks until the receiver has consumed it (spec §4.3). If fn
// returns a non-nil error or panics, the message is terminated early
// with the empty-final-chunk cancellation encoding; SendMessage then
// returns that error (or re-panics) after the handshake completes, so
// the caller sees exactly what fn raised.
func (s *Sender) SendMessage(fn func(*SendStream) error) (err error) {
	if s.disposed.Load() {
		return newError(UsedAfterRelease, "SendMessage", nil)
	}

	if err := s.channel.Events.MessageSending.Signal(); err != nil {
		return err
	}

	stream := newSendStream(s.channel.Region, s.channel.Events)

	var cbErr error
	var panicVal any
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicVal = r
			}
		}()
		cbErr = fn(stream)
	}()

	aborted := cbErr != nil || panicVal != nil
	if aborted {
		if sigErr := stream.emitCancellation(); sigErr != nil {
			s.logger.Warn("messagepipe: sender failed to publish cancellation chunk", "channel", s.name, "error", sigErr)
		}
	} else if sigErr := stream.emitChunk(true); sigErr != nil {
		return sigErr
	}
	stream.pos = 0

	if waitErr := s.channel.Events.MessageRead.Wait(); waitErr != nil {
		if !aborted {
			return waitErr
		}
		s.logger.Warn("messagepipe: sender MessageRead wait failed on abort path", "channel", s.name, "error", waitErr)
	}

	if panicVal != nil {
		panic(panicVal)
	}
	return cbErr
}

// Dispose releases the sender's handles. It is idempotent.
func (s *Sender) Dispose() error {
	if !s.disposed.CompareAndSwap(false, true) {
		return nil
	}
	s.logger.Debug("messagepipe: sender disposed", "channel", s.name)
	return s.channel.Close()
}
