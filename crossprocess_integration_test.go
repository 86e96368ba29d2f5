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
	"io"
	"os"
	"os/exec"
	"testing"
)

// TestMain re-executes this test binary as a standalone receiver helper
// process when invoked with the matching -test.run selector, the same
// technique used to exercise this channel across real process boundaries
// rather than just across goroutines in one process.
func TestMain(m *testing.M) {
	if len(os.Args) >= 3 && os.Args[1] == "-test.run=HelperReceiveOnce" {
		os.Exit(runHelperReceiveOnce(os.Args[3]))
	}
	os.Exit(m.Run())
}

func runHelperReceiveOnce(name string) int {
	recv, err := NewReceiver(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "helper: NewReceiver: %v\n", err)
		return 1
	}
	defer recv.Dispose()

	got, err := ReceiveMessage(recv, func(s *ReceiveStream) (string, error) {
		data, err := io.ReadAll(s)
		return string(data), err
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "helper: ReceiveMessage: %v\n", err)
		return 1
	}
	fmt.Print(got)
	return 0
}

// TestCrossProcessRoundTrip spawns this same test binary as a child
// process acting as the receiver, then sends a message to it from the
// parent process over a genuinely separate address space — the scenario
// the shared-memory region and POSIX semaphores exist for in the first
// place, as opposed to the goroutine-only tests elsewhere in this
// package.
func TestCrossProcessRoundTrip(t *testing.T) {
	if os.Getenv("MSGPIPE_SKIP_CROSSPROCESS") != "" {
		t.Skip("cross-process test disabled in this environment")
	}

	name := uniqueChannelName(t)
	cmd := exec.Command(os.Args[0], "-test.run=HelperReceiveOnce", "--", name)
	cmd.Stderr = os.Stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.Start(); err != nil {
		t.Fatalf("starting helper process: %v", err)
	}

	// No synchronization with the helper process before calling NewSender:
	// the region and all four event pages each resolve their own
	// create-or-open race independently, so either process may win any
	// given one of those five races without the other failing.
	sender, err := NewSender(name)
	if err != nil {
		cmd.Process.Kill()
		t.Fatalf("NewSender: %v", err)
	}
	defer sender.Dispose()

	want := "hello from another process"
	if err := sender.SendMessage(func(s *SendStream) error {
		_, err := io.WriteString(s, want)
		return err
	}); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	out, err := io.ReadAll(stdout)
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.Wait(); err != nil {
		t.Fatalf("helper process: %v", err)
	}
	if string(out) != want {
		t.Errorf("helper received %q, want %q", out, want)
	}
}
