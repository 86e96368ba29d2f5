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
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// mapping is a single named, memory-mapped file. Both the data page and
// each of the four event pages are one of these; the only difference is
// size and what gets overlaid on top of the bytes.
type mapping struct {
	mem   []byte
	path  string
	owner bool // true if this call created the backing file
}

// createMapping creates a new backing file of exactly size bytes and
// maps it MAP_SHARED. It fails with unix.EEXIST if the file already
// exists, letting the caller fall back to openMapping.
func createMapping(path string, size int) (*mapping, error) {
	fd, err := unix.Open(path, unix.O_CREAT|unix.O_EXCL|unix.O_RDWR, 0o600)
	if err != nil {
		return nil, err
	}
	defer unix.Close(fd)

	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		unix.Unlink(path)
		return nil, fmt.Errorf("shm: truncate %s: %w", path, err)
	}

	mem, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Unlink(path)
		return nil, fmt.Errorf("shm: mmap %s: %w", path, err)
	}

	return &mapping{mem: mem, path: path, owner: true}, nil
}

// openMapping maps an existing backing file. The file's actual size is
// used as the mapping length; callers that require an exact size check
// it themselves (see Region's page-size validation).
func openMapping(path string) (*mapping, error) {
	fd, err := unix.Open(path, unix.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	defer unix.Close(fd)

	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return nil, fmt.Errorf("shm: stat %s: %w", path, err)
	}
	if st.Size <= 0 {
		return nil, fmt.Errorf("shm: %s: %w", path, ErrPageSizeMismatch)
	}

	mem, err := unix.Mmap(fd, 0, int(st.Size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("shm: mmap %s: %w", path, err)
	}

	return &mapping{mem: mem, path: path, owner: false}, nil
}

// createOrOpenMapping tries to create path, falling back to opening it
// if another process (or an earlier run) already created it.
func createOrOpenMapping(path string, size int) (*mapping, error) {
	m, err := createMapping(path, size)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, unix.EEXIST) {
		return nil, err
	}
	return openMapping(path)
}

// Close unmaps the region and, when unlink is true, removes the backing
// file. unlink should only ever be true for the channel owner, and only
// once both peers are done with the mapping.
func (m *mapping) Close(unlink bool) error {
	err := unix.Munmap(m.mem)
	if unlink {
		if uerr := unix.Unlink(m.path); uerr != nil && !errors.Is(uerr, unix.ENOENT) && err == nil {
			err = uerr
		}
	}
	return err
}
