// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package permission

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Prompter asks the user for camera access. It is only consulted while the
// decision is undetermined.
type Prompter interface {
	Prompt(ctx context.Context) (granted bool, err error)
}

// PromptFunc adapts a function to Prompter.
type PromptFunc func(ctx context.Context) (bool, error)

func (f PromptFunc) Prompt(ctx context.Context) (bool, error) { return f(ctx) }

// Policy names accepted by NewPrompter.
const (
	PolicyAsk   = "ask"
	PolicyAllow = "allow"
	PolicyDeny  = "deny"
)

// AutoPrompter answers every prompt the same way. Used for headless runs.
type AutoPrompter struct {
	Grant bool
}

func (p AutoPrompter) Prompt(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return p.Grant, nil
}

// TerminalPrompter asks on a terminal. Only "y" or "yes" grants access.
// A cancelled prompt leaves its read of In pending; the line it eventually
// consumes is discarded.
type TerminalPrompter struct {
	In  io.Reader
	Out io.Writer
	App string
}

const promptUsage = "Scanning a code needs the camera."

func (p *TerminalPrompter) Prompt(ctx context.Context) (bool, error) {
	app := p.App
	if app == "" {
		app = "QRCodeHelper"
	}
	if _, err := fmt.Fprintf(p.Out, "%q would like to access the camera. %s\nAllow? [y/N]: ", app, promptUsage); err != nil {
		return false, fmt.Errorf("write prompt: %w", err)
	}

	type answer struct {
		line string
		err  error
	}
	ch := make(chan answer, 1)
	go func() {
		line, err := bufio.NewReader(p.In).ReadString('\n')
		ch <- answer{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case a := <-ch:
		if a.err != nil && (a.err != io.EOF || a.line == "") {
			return false, fmt.Errorf("read answer: %w", a.err)
		}
		switch strings.ToLower(strings.TrimSpace(a.line)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}

// NewPrompter builds the prompter for a configured policy.
func NewPrompter(policy string, in io.Reader, out io.Writer) (Prompter, error) {
	switch policy {
	case PolicyAsk, "":
		return &TerminalPrompter{In: in, Out: out}, nil
	case PolicyAllow:
		return AutoPrompter{Grant: true}, nil
	case PolicyDeny:
		return AutoPrompter{Grant: false}, nil
	}
	return nil, fmt.Errorf("unknown permission prompt policy %q", policy)
}
