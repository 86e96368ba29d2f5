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
	"fmt"
	"log/slog"

	"github.com/maydaytx/MemoryMessagePipe/internal/shm"
)

type options struct {
	logger     *slog.Logger
	windowSize int
}

// Option configures a Sender or Receiver at construction time.
type Option func(*options)

// WithLogger attaches a structured logger. Construction, disposal, and
// best-effort failure-path signalling are logged at Debug/Warn; the
// data path (SendStream.Write, ReceiveStream.Read) never logs.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithWindowSize overrides the OS page size used for the channel's
// shared region. Both peers of a channel must pass the same value
// (spec §3); this exists so tests can exercise multi-chunk messages
// without allocating megabytes of payload for every case. pageSize must
// be large enough to hold at least one byte of data window on top of the
// chunk header, or NewSender/NewReceiver return InvalidArgument.
func WithWindowSize(pageSize int) Option {
	return func(o *options) {
		o.windowSize = pageSize
	}
}

func resolveOptions(opts []Option) options {
	o := options{
		logger:     slog.Default(),
		windowSize: shm.PageSize(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// validateWindowSize rejects a region size that leaves no data window
// after the chunk header. A size below the header would otherwise let
// Region.Window() slice out of bounds and panic, and a size equal to it
// would leave an empty window, instead of failing cleanly at construction.
func validateWindowSize(pageSize int) error {
	if pageSize <= shm.HeaderSize {
		return fmt.Errorf("window size %d must be greater than the %d-byte chunk header", pageSize, shm.HeaderSize)
	}
	return nil
}
