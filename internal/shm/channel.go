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

// Channel bundles the data Region with the EventSet that guards it: the
// unit a Sender or Receiver actually opens. Owner reports whether this
// peer won the race to create the data region; each of the four events
// resolves its own, independent create-or-open race and unlinks its own
// backing file accordingly; see EventSet.Close.
type Channel struct {
	Name   string
	Region *Region
	Events *EventSet
	Owner  bool
}

// Open creates the named channel if this is the first peer to reach it,
// or attaches to an existing one otherwise. pageSize must be identical
// on both peers (spec §3); mismatches surface as ErrPageSizeMismatch.
func Open(name string, pageSize int) (*Channel, error) {
	region, owner, err := OpenOrCreateRegion(name, pageSize)
	if err != nil {
		return nil, err
	}

	events, err := newEventSet(name)
	if err != nil {
		region.Close(owner)
		return nil, err
	}

	return &Channel{Name: name, Region: region, Events: events, Owner: owner}, nil
}

// Close releases the region and all four events. The region's backing
// file is unlinked when this peer is the channel's Owner; each event
// page decides that for itself (see EventSet.Close).
func (c *Channel) Close() error {
	var firstErr error
	if err := c.Events.Close(); err != nil {
		firstErr = err
	}
	if err := c.Region.Close(c.Owner); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
