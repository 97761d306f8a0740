// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package permission decides whether the process may use the camera.
//
// The decision is asked for once and remembered. A denial sticks until it
// is changed through the settings command.
package permission

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/masadchattha/QRCodeHelper/internal/domain/scan/model"
	xglog "github.com/masadchattha/QRCodeHelper/internal/log"
	"github.com/masadchattha/QRCodeHelper/internal/metrics"
)

// SettingsCommand is the deep link users follow to change a decision.
const SettingsCommand = "qrhelper settings camera allow"

const flightKey = "camera"

// Gate implements ports.PermissionGate on top of a Store and a Prompter.
type Gate struct {
	store    Store
	prompter Prompter
	logger   zerolog.Logger
	flight   singleflight.Group

	mu      sync.Mutex
	pending *pendingPrompt
}

// pendingPrompt is the context of the prompt shared by current callers. It is
// cancelled when the last of them stops waiting.
type pendingPrompt struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// NewGate returns a gate. A nil prompter denies every undetermined request.
func NewGate(store Store, prompter Prompter) *Gate {
	if prompter == nil {
		prompter = AutoPrompter{Grant: false}
	}
	return &Gate{
		store:    store,
		prompter: prompter,
		logger:   xglog.WithComponent("permission"),
	}
}

// RequestCameraAccess returns the stored decision, prompting once if none
// exists. Concurrent callers share a single prompt. A caller whose ctx ends
// stops waiting; once no caller is left the prompt is cancelled and an
// answer arriving after that is not stored.
func (g *Gate) RequestCameraAccess(ctx context.Context) (model.AuthorizationState, error) {
	state, err := g.store.Load(ctx)
	if err != nil {
		metrics.RecordPermission("error", false)
		return model.AuthUndetermined, err
	}
	if state != model.AuthUndetermined {
		metrics.RecordPermission(string(state), false)
		return state, nil
	}

	ch, leave := g.join(ctx)
	defer leave()
	select {
	case <-ctx.Done():
		return model.AuthUndetermined, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			metrics.RecordPermission("error", true)
			return model.AuthUndetermined, res.Err
		}
		state := res.Val.(model.AuthorizationState)
		metrics.RecordPermission(string(state), true)
		return state, nil
	}
}

func (g *Gate) join(ctx context.Context) (<-chan singleflight.Result, func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p := g.pending
	if p == nil {
		pctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		p = &pendingPrompt{ctx: pctx, cancel: cancel}
		g.pending = p
	}
	p.waiters++
	ch := g.flight.DoChan(flightKey, func() (any, error) {
		return g.prompt(p.ctx)
	})
	return ch, func() { g.leave(p) }
}

func (g *Gate) leave(p *pendingPrompt) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p.waiters--
	if p.waiters > 0 {
		return
	}
	p.cancel()
	if g.pending == p {
		g.pending = nil
		g.flight.Forget(flightKey)
	}
}

func (g *Gate) prompt(ctx context.Context) (model.AuthorizationState, error) {
	// A flight that finished just before this one may have stored an answer.
	if state, err := g.store.Load(ctx); err == nil && state != model.AuthUndetermined {
		return state, nil
	}

	granted, err := g.prompter.Prompt(ctx)
	if err != nil {
		g.logger.Warn().Err(err).Str(xglog.FieldEvent, "permission.prompt_failed").Msg("camera prompt failed")
		return model.AuthUndetermined, fmt.Errorf("camera prompt: %w", err)
	}
	state := model.AuthDenied
	if granted {
		state = model.AuthGranted
	}
	if err := ctx.Err(); err != nil {
		g.logger.Info().
			Str(xglog.FieldEvent, "permission.abandoned").
			Str(xglog.FieldAuthorization, string(state)).
			Msg("camera answer arrived after every caller left; not stored")
		return model.AuthUndetermined, err
	}
	if err := g.store.Save(ctx, state); err != nil {
		return model.AuthUndetermined, fmt.Errorf("store camera decision: %w", err)
	}
	g.logger.Info().
		Str(xglog.FieldEvent, "permission.decided").
		Str(xglog.FieldAuthorization, string(state)).
		Bool(xglog.FieldPrompted, true).
		Msg("camera access decided")
	return state, nil
}

// Status returns the stored decision without prompting.
func (g *Gate) Status(ctx context.Context) (model.AuthorizationState, error) {
	return g.store.Load(ctx)
}

// SetDecision overrides the stored decision. AuthUndetermined resets it so
// the next request prompts again.
func (g *Gate) SetDecision(ctx context.Context, state model.AuthorizationState) error {
	if err := g.store.Save(ctx, state); err != nil {
		return err
	}
	g.logger.Info().
		Str(xglog.FieldEvent, "permission.changed").
		Str(xglog.FieldAuthorization, string(state)).
		Msg("camera decision changed in settings")
	return nil
}
