// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Command qrhelper generates QR codes and scans them from a capture device.
package main

import (
	"errors"
	"fmt"
	"os"

	xglog "github.com/masadchattha/QRCodeHelper/internal/log"
)

var (
	version   = "v0.1.0"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Early logger for config loading; commands reconfigure it once the
	// configuration is known.
	xglog.Configure(xglog.Config{Service: "qrhelper", Version: version})

	if err := newRootCmd().Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			if ee.err != nil {
				fmt.Fprintln(os.Stderr, "Error:", ee.err)
			}
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// Exit codes beyond the generic 1.
const (
	exitUsage            = 2
	exitPermissionDenied = 3
	exitUnsupported      = 4
)

// exitError carries a process exit status out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }
