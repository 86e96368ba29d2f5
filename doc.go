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

// Package messagepipe provides a one-way, in-order, byte-stream message
// channel between two cooperating processes on a single host, carried
// over a small shared memory region synchronized by named cross-process
// events.
//
// A Sender and a Receiver are constructed from the same channel name on
// two different processes (or goroutines, for testing). Each message the
// sender writes is chunked through a fixed-size shared window and
// delivered to the receiver's callback as an ordinary io.Reader; message
// boundaries are preserved regardless of how the sender's writes or the
// receiver's reads are sized.
//
//	sender, err := messagepipe.NewSender("my-channel")
//	...
//	err = sender.SendMessage(func(w *messagepipe.SendStream) error {
//		_, err := w.Write([]byte("hello"))
//		return err
//	})
//
//	receiver, err := messagepipe.NewReceiver("my-channel")
//	...
//	msg, err := messagepipe.ReceiveMessage(receiver, func(r *messagepipe.ReceiveStream) (string, error) {
//		b, err := io.ReadAll(r)
//		return string(b), err
//	})
//
// The channel is one-way: two independent channels (with two different
// names) are used for bidirectional communication. Multiple messages may
// be sent in sequence on the same channel, but concurrent SendMessage
// calls on the same Sender (or concurrent ReceiveMessage calls on the
// same Receiver) are not supported.
package messagepipe
