// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package present renders scan results and lifecycle notices on a terminal
// and turns keyboard input into session commands.
package present

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/masadchattha/QRCodeHelper/internal/domain/scan/model"
	xglog "github.com/masadchattha/QRCodeHelper/internal/log"
	"github.com/masadchattha/QRCodeHelper/internal/permission"
)

// User-facing copy.
const (
	ScannedTitle       = "QR Code Scanned"
	UnsupportedTitle   = "Scanning not supported"
	UnsupportedMessage = "Your device does not support scanning a code from an item. Please use a device with a camera."
	DeniedTitle        = "Camera access denied"
	DeniedMessage      = "Allow camera access in Settings to scan codes: " + permission.SettingsCommand
	AckHint            = "[Enter] OK   [q] Close"
)

// Controller is the part of a scan session the keyboard drives.
type Controller interface {
	Resume() error
	Close() error
}

// Terminal implements ports.ResultSink, ports.Observer and ports.Cue.
type Terminal struct {
	out    io.Writer
	bell   bool
	logger zerolog.Logger

	mu      sync.Mutex
	pending bool
	results []model.DecodedPayload
}

// NewTerminal writes to out. With bell set, Acknowledge rings the terminal
// bell.
func NewTerminal(out io.Writer, bell bool) *Terminal {
	return &Terminal{out: out, bell: bell, logger: xglog.WithComponent("present")}
}

func (t *Terminal) alert(title, message, hint string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rule := strings.Repeat("─", max(len(title), 24))
	fmt.Fprintf(t.out, "\n%s\n%s\n%s\n", title, rule, message)
	if hint != "" {
		fmt.Fprintf(t.out, "%s\n", hint)
	}
}

// OnDecoded shows the payload and waits for the user to acknowledge it.
func (t *Terminal) OnDecoded(payload model.DecodedPayload) {
	t.mu.Lock()
	t.pending = true
	t.results = append(t.results, payload)
	t.mu.Unlock()
	t.alert(ScannedTitle, string(payload), AckHint)
}

func (t *Terminal) OnPermissionDenied() {
	t.alert(DeniedTitle, DeniedMessage, "")
}

func (t *Terminal) OnDeviceUnsupported(err error) {
	t.logger.Debug().Err(err).Msg("capture unavailable")
	t.alert(UnsupportedTitle, UnsupportedMessage, "")
}

func (t *Terminal) Acknowledge() {
	if !t.bell {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = io.WriteString(t.out, "\a")
}

// Results returns every payload shown so far.
func (t *Terminal) Results() []model.DecodedPayload {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]model.DecodedPayload(nil), t.results...)
}

func (t *Terminal) takePending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := t.pending
	t.pending = false
	return p
}

// RunInput reads lines from in until ctx ends, the input closes or the
// user quits. Enter acknowledges a shown result and resumes scanning; "q"
// closes the session. Closed input also closes the session.
func (t *Terminal) RunInput(ctx context.Context, in io.Reader, c Controller) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return c.Close()
			}
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "q", "quit", "exit":
				return c.Close()
			default:
				if !t.takePending() {
					continue
				}
				if err := c.Resume(); err != nil {
					return err
				}
			}
		}
	}
}
