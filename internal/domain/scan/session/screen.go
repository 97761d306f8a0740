// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

import (
	"context"
	"sync"
)

// Screen owns at most one live session at a time, the way a scanner view
// owns its camera. Opening a new session closes the previous one first so
// two sessions never hold the device.
type Screen struct {
	ctx  context.Context
	deps Deps
	opts []Option

	mu     sync.Mutex
	active *Session
}

// NewScreen returns a Screen that builds sessions from deps.
func NewScreen(ctx context.Context, deps Deps, opts ...Option) *Screen {
	return &Screen{ctx: ctx, deps: deps, opts: opts}
}

// Open closes the active session, if any, and returns a fresh one in IDLE.
func (sc *Screen) Open() *Session {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.active != nil {
		_ = sc.active.Close()
	}
	sc.active = New(sc.ctx, sc.deps, sc.opts...)
	return sc.active
}

// Active returns the current session or nil.
func (sc *Screen) Active() *Session {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.active
}

// Close closes the active session.
func (sc *Screen) Close() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.active == nil {
		return nil
	}
	err := sc.active.Close()
	sc.active = nil
	return err
}
