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

// Command msgpipe-inspect is a small diagnostic tool for a named
// messagepipe channel: it can report the channel's region layout, send a
// single text message, or receive and print the next message.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/maydaytx/MemoryMessagePipe"
	"github.com/maydaytx/MemoryMessagePipe/config"
	"github.com/maydaytx/MemoryMessagePipe/internal/shm"
)

func main() {
	var (
		configPath = pflag.StringP("config", "c", "", "path to a msgpipe-inspect YAML config file")
		channel    = pflag.StringP("channel", "n", "", "channel name (overrides config file)")
		mode       = pflag.StringP("mode", "m", "info", "one of: info, send, recv")
		windowSize = pflag.IntP("window-size", "w", 0, "override the shared region size in bytes (0 = OS page size)")
		message    = pflag.StringP("message", "M", "", "text to send in --mode=send")
	)
	pflag.Parse()

	if *configPath == "" {
		*configPath = os.Getenv("MSGPIPE_CONFIG")
	}
	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "msgpipe-inspect:", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *channel != "" {
		cfg.Channel = *channel
	}
	if *windowSize != 0 {
		cfg.WindowSize = *windowSize
	}
	if cfg.Channel == "" {
		fmt.Fprintln(os.Stderr, "msgpipe-inspect: a channel name is required (--channel or config file)")
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}))

	var opts []messagepipe.Option
	opts = append(opts, messagepipe.WithLogger(logger))
	if cfg.WindowSize > 0 {
		opts = append(opts, messagepipe.WithWindowSize(cfg.WindowSize))
	}

	var err error
	switch *mode {
	case "info":
		err = runInfo(cfg.Channel, cfg.WindowSize, opts)
	case "send":
		err = runSend(cfg.Channel, *message, opts)
	case "recv":
		err = runRecv(cfg.Channel, opts)
	default:
		err = fmt.Errorf("unknown --mode %q (want info, send, or recv)", *mode)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "msgpipe-inspect:", err)
		os.Exit(1)
	}
}

func runInfo(name string, pageSize int, opts []messagepipe.Option) error {
	recv, err := messagepipe.NewReceiver(name, opts...)
	if err != nil {
		return err
	}
	defer recv.Dispose()

	if pageSize <= 0 {
		pageSize = shm.PageSize()
	}
	fmt.Printf("channel:     %s\n", name)
	fmt.Printf("page size:   %d bytes\n", pageSize)
	fmt.Printf("header size: %d bytes\n", shm.HeaderSize)
	fmt.Printf("window size: %d bytes\n", pageSize-shm.HeaderSize)
	return nil
}

func runSend(name, message string, opts []messagepipe.Option) error {
	if message == "" {
		return fmt.Errorf("--mode=send requires --message")
	}
	sender, err := messagepipe.NewSender(name, opts...)
	if err != nil {
		return err
	}
	defer sender.Dispose()

	return sender.SendMessage(func(s *messagepipe.SendStream) error {
		_, err := io.WriteString(s, message)
		return err
	})
}

func runRecv(name string, opts []messagepipe.Option) error {
	recv, err := messagepipe.NewReceiver(name, opts...)
	if err != nil {
		return err
	}
	defer recv.Dispose()

	text, err := messagepipe.ReceiveMessage(recv, func(s *messagepipe.ReceiveStream) (string, error) {
		data, err := io.ReadAll(s)
		return string(data), err
	})
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
