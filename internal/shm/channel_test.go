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

import "testing"

func TestOpenTwiceOneOwnerOnePeer(t *testing.T) {
	name := uniqueName(t)

	c1, err := Open(name, PageSize())
	if err != nil {
		t.Fatal(err)
	}
	if !c1.Owner {
		t.Fatal("first Open should own the channel")
	}

	c2, err := Open(name, PageSize())
	if err != nil {
		t.Fatal(err)
	}
	if c2.Owner {
		t.Fatal("second Open should not own the channel")
	}

	if err := c2.Close(); err != nil {
		t.Errorf("peer Close: %v", err)
	}
	if err := c1.Close(); err != nil {
		t.Errorf("owner Close: %v", err)
	}
}

func TestChannelEventsConnectBothPeers(t *testing.T) {
	name := uniqueName(t)

	c1, err := Open(name, PageSize())
	if err != nil {
		t.Fatal(err)
	}
	defer c1.Close()

	c2, err := Open(name, PageSize())
	if err != nil {
		t.Fatal(err)
	}
	defer c2.Close()

	c1.Region.SetBytesWritten(42)
	if got := c2.Region.BytesWritten(); got != 42 {
		t.Errorf("peer observed BytesWritten = %d, want 42", got)
	}

	done := make(chan error, 1)
	go func() { done <- c2.Events.MessageSending.Wait() }()
	if err := c1.Events.MessageSending.Signal(); err != nil {
		t.Fatal(err)
	}
	if err := <-done; err != nil {
		t.Fatalf("peer Wait: %v", err)
	}
}

// TestOpenToleratesEventPagesCreatedBeforeRegionOwnerFinishes covers the
// cross-process case Open exists for: the region and its four event
// pages are five independently-raced resources, so a peer must be able
// to finish Open() regardless of which of the five it happened to create
// and which it happened to open. Here the "loser" pre-creates three of
// the four event pages by hand before either peer calls Open, standing
// in for a peer that reaches those paths first even though it goes on
// to lose the region race.
func TestOpenToleratesEventPagesCreatedBeforeRegionOwnerFinishes(t *testing.T) {
	name := uniqueName(t)

	// Pre-create three of the four event pages and leave them mapped, as
	// if a peer reached them before the region owner had a chance to run
	// its own event-creation loop.
	var preCreated []*Event
	for _, suffix := range []string{SuffixMessageSending, SuffixBytesWritten, SuffixBytesRead} {
		e, err := createEvent(eventPath(name, suffix))
		if err != nil {
			t.Fatal(err)
		}
		preCreated = append(preCreated, e)
	}

	c1, err := Open(name, PageSize())
	if err != nil {
		t.Fatalf("Open with pre-existing event pages: %v", err)
	}
	defer c1.Close()
	if !c1.Owner {
		t.Fatal("Open should still own the region it created")
	}

	c2, err := Open(name, PageSize())
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer c2.Close()

	for _, e := range preCreated {
		e.Close()
	}
}
