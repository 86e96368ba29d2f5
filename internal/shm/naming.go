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
	"os"
	"path/filepath"
	"strings"
)

// Suffixes are the wire contract between peers (spec §6) and must never
// change: the base name identifies the shared data page, and each of
// these four strings appended to the base name identifies one named
// cross-process event.
const (
	SuffixMessageSending = "_MessageSending"
	SuffixMessageRead    = "_MessageRead"
	SuffixBytesWritten   = "_BytesWritten"
	SuffixBytesRead      = "_BytesRead"
)

const namePrefix = "mmpipe_"

// sanitizeName makes a caller-supplied channel name (which may contain
// path separators, as in the .NET convention "Local\test") safe to use
// as a single path component under /dev/shm.
func sanitizeName(name string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", string(filepath.Separator), "_")
	return r.Replace(name)
}

// regionDir returns the directory backing named shared memory objects,
// preferring /dev/shm (tmpfs, no disk writeback) and falling back to the
// OS temp directory when it is unavailable, mirroring the convention
// used throughout the shared-memory examples in this codebase's lineage.
func regionDir() string {
	if info, err := os.Stat("/dev/shm"); err == nil && info.IsDir() {
		return "/dev/shm"
	}
	return os.TempDir()
}

// regionPath returns the backing file path for the channel's data page.
func regionPath(name string) string {
	return filepath.Join(regionDir(), namePrefix+sanitizeName(name))
}

// eventPath returns the backing file path for one of the four named
// events derived from the channel's base name.
func eventPath(name, suffix string) string {
	return filepath.Join(regionDir(), namePrefix+sanitizeName(name)+suffix)
}
