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

// Package shm provides the low-level shared memory plumbing for the
// messagepipe channel: a named, fixed-size shared page carrying one
// chunk header plus data window, and a set of named cross-process
// auto-reset events used to hand ownership of that page back and forth.
//
// Everything in this package is Linux-specific: named shared memory is
// backed by files under /dev/shm (or the OS temp directory when /dev/shm
// is absent), and cross-process signalling is backed by POSIX semaphores
// living in their own small shared mappings. It is consumed by the root
// messagepipe package's Sender and Receiver; cmd/msgpipe-inspect also
// reads its PageSize and HeaderSize to report a channel's layout.
package shm
