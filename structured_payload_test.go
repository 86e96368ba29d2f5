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
	"io"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/sync/errgroup"
)

// order is a stand-in for any structured payload an application might
// move across a channel; CBOR is just an encoding choice on top of the
// plain byte stream SendStream/ReceiveStream provide.
type order struct {
	ID    string  `cbor:"id"`
	Total float64 `cbor:"total"`
	Items []string `cbor:"items"`
}

func TestStructuredPayloadRoundTrip(t *testing.T) {
	sender, recv := newPipe(t)

	want := order{ID: "ord-42", Total: 19.99, Items: []string{"widget", "sprocket"}}

	var g errgroup.Group
	g.Go(func() error {
		return sender.SendMessage(func(s *SendStream) error {
			enc, err := cbor.Marshal(want)
			if err != nil {
				return err
			}
			_, err = s.Write(enc)
			return err
		})
	})

	got, err := ReceiveMessage(recv, func(s *ReceiveStream) (order, error) {
		raw, err := io.ReadAll(s)
		if err != nil {
			return order{}, err
		}
		var o order
		if err := cbor.Unmarshal(raw, &o); err != nil {
			return order{}, err
		}
		return o, nil
	})
	if err != nil {
		t.Fatalf("ReceiveMessage: %v", err)
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	if got.ID != want.ID || got.Total != want.Total || len(got.Items) != len(want.Items) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}
