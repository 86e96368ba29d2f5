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
	"sync"
	"sync/atomic"

	"github.com/maydaytx/MemoryMessagePipe/internal/shm"
)

// errDisposed is returned internally by waitMessageSendingOrDispose when
// the receiver-local Disposing signal wins the race; it never escapes
// ReceiveMessage.
var errDisposed = errors.New("messagepipe: receiver disposing")

// Receiver is the read side of a channel (spec §4.5).
type Receiver struct {
	name    string
	channel *shm.Channel
	logger  *slog.Logger

	disposed    atomic.Bool
	disposeOnce sync.Once
	disposing   chan struct{}

	// wg tracks the at-most-one goroutine blocked in the underlying
	// MessageSending semaphore wait at any given time (see
	// waitMessageSendingOrDispose). POSIX semaphores have no "wait on
	// either of two" primitive, so cancelling the initial wait means
	// racing a helper goroutine against the local Disposing channel
	// instead of aborting the syscall. Dispose must not unmap the
	// channel's shared memory while that goroutine could still be
	// inside the semaphore wait, or the syscall would read freed
	// memory; it defers the unmap until wg drains.
	wg sync.WaitGroup
}

// NewReceiver creates or attaches to the named channel's receiving side.
func NewReceiver(name string, opts ...Option) (*Receiver, error) {
	if name == "" {
		return nil, newError(InvalidArgument, "NewReceiver", errors.New("empty channel name"))
	}
	cfg := resolveOptions(opts)
	if err := validateWindowSize(cfg.windowSize); err != nil {
		return nil, newError(InvalidArgument, "NewReceiver", err)
	}

	ch, err := shm.Open(name, cfg.windowSize)
	if err != nil {
		return nil, wrapChannelErr("NewReceiver", name, err)
	}

	cfg.logger.Debug("messagepipe: receiver opened", "channel", name, "owner", ch.Owner)
	return &Receiver{
		name:      name,
		channel:   ch,
		logger:    cfg.logger,
		disposing: make(chan struct{}),
	}, nil
}

// waitMessageSendingOrDispose implements the atomic "wait on either
// MessageSending or the local cancel signal" required by spec §4.3
// step 1 / §9 design notes, using a helper goroutine since the
// underlying semaphore wait cannot itself be cancelled.
func (r *Receiver) waitMessageSendingOrDispose() error {
	done := make(chan error, 1)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		done <- r.channel.Events.MessageSending.Wait()
	}()

	select {
	case <-r.disposing:
		return errDisposed
	case err := <-done:
		return err
	}
}

// ReceiveMessage waits for the next message, hands a ReceiveStream to fn,
// and returns fn's result once fn returns (spec §4.3).
//
// If the receiver is disposed while waiting for a message, ReceiveMessage
// returns the zero value of T and a nil error (spec §4.5, "Cancel-on-idle
// receiver" in §8); called on an already disposed receiver it returns a
// UsedAfterRelease error. If fn returns a non-nil error or
// panics, MessageRead is not signalled on the normal path — a
// best-effort, non-blocking signal is attempted instead so a sender that
// has not yet reached its own wait is not starved forever — and the
// error (or panic) propagates to the caller unchanged (spec §7
// ReceiverAborted).
func ReceiveMessage[T any](r *Receiver, fn func(*ReceiveStream) (T, error)) (result T, err error) {
	if r.disposed.Load() {
		return result, newError(UsedAfterRelease, "ReceiveMessage", nil)
	}

	waitErr := r.waitMessageSendingOrDispose()
	if errors.Is(waitErr, errDisposed) {
		return result, nil
	}
	if waitErr != nil {
		return result, waitErr
	}

	stream := newReceiveStream(r.channel.Region, r.channel.Events)

	var panicVal any
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				panicVal = rec
			}
		}()
		result, err = fn(stream)
	}()

	if err != nil || panicVal != nil {
		r.logger.Warn("messagepipe: receive callback failed, signalling MessageRead best-effort", "channel", r.name)
		if sigErr := r.channel.Events.MessageRead.Signal(); sigErr != nil {
			r.logger.Warn("messagepipe: receiver best-effort MessageRead signal failed", "channel", r.name, "error", sigErr)
		}
		if panicVal != nil {
			panic(panicVal)
		}
		return result, err
	}

	if sigErr := r.channel.Events.MessageRead.Signal(); sigErr != nil {
		return result, sigErr
	}
	return result, nil
}

// Dispose wakes any goroutine blocked in ReceiveMessage's initial wait
// (returning the zero value of T from that call) and idempotently
// releases the receiver's handles. The actual shared memory unmap is
// deferred until no helper goroutine from waitMessageSendingOrDispose
// can still be inside the underlying semaphore wait; see the wg field
// comment. Dispose never blocks on that drain.
func (r *Receiver) Dispose() error {
	if !r.disposed.CompareAndSwap(false, true) {
		return nil
	}
	r.disposeOnce.Do(func() { close(r.disposing) })
	r.logger.Debug("messagepipe: receiver disposing", "channel", r.name)

	// A helper goroutine spawned by waitMessageSendingOrDispose may still
	// be parked in MessageSending.Wait() with no sender ever going to post
	// it (the cancel-on-idle-receiver case). Posting it here unblocks that
	// goroutine so wg drains; the select in waitMessageSendingOrDispose
	// already resolved via r.disposing, so nothing consumes the extra
	// signal but the helper goroutine itself, and the event is about to be
	// torn down regardless.
	if err := r.channel.Events.MessageSending.Signal(); err != nil {
		r.logger.Warn("messagepipe: receiver failed to release pending MessageSending wait", "channel", r.name, "error", err)
	}

	go func() {
		r.wg.Wait()
		if err := r.channel.Close(); err != nil {
			r.logger.Warn("messagepipe: receiver deferred channel close failed", "channel", r.name, "error", err)
		}
	}()
	return nil
}
