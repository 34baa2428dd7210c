// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

// DebugLog receives diagnostic output. It discards everything until
// InitDebugLog opens a file, so streamed replies never interleave with it.
var DebugLog = log.New(io.Discard, "", 0)

// InitDebugLog points DebugLog at dir/debug.log. The returned function
// closes the file.
func InitDebugLog(dir string) (func() error, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create debug log directory: %w", err)
	}

	logPath := filepath.Join(dir, "debug.log")
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open debug log at %s: %w", logPath, err)
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started ===")
	DebugLog.Printf("Log path: %s", logPath)

	return func() error {
		DebugLog = log.New(io.Discard, "", 0)
		return f.Close()
	}, nil
}
