// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

import (
	"time"

	"github.com/masadchattha/QRCodeHelper/internal/domain/scan/model"
)

// Dispatch is the single transition function for scan sessions. It resolves
// the edge for rec.State+ev from the decision and transition tables and
// applies it. Forbidden pairs return an *IllegalTransitionError and leave rec
// untouched.
func Dispatch(rec *model.SessionRecord, ev Event, now time.Time) (Transition, error) {
	decision, ok := DecisionFor(rec.State, ev.Kind)
	if !ok {
		return Transition{}, &IllegalTransitionError{From: rec.State, Event: ev.Kind, Reason: ForbiddenOutOfOrder}
	}
	if !decision.Allowed {
		return Transition{}, &IllegalTransitionError{From: rec.State, Event: ev.Kind, Reason: decision.Reason}
	}
	tr, ok := TransitionFor(rec.State, ev.Kind)
	if !ok {
		return Transition{}, &IllegalTransitionError{From: rec.State, Event: ev.Kind, Reason: ForbiddenOutOfOrder}
	}
	ApplyTransition(rec, tr, ev, now)
	return tr, nil
}

// ApplyTransition mutates the session record according to the transition.
func ApplyTransition(rec *model.SessionRecord, tr Transition, ev Event, now time.Time) {
	rec.State = tr.To
	if tr.Reason != "" {
		rec.Reason = tr.Reason
	}
	switch tr.Event {
	case EvAccessGranted, EvResumeRequested:
		rec.Epoch++
		rec.Pending = ""
	case EvCodeDetected:
		rec.Pending = ev.Payload
	case EvPayloadExtracted:
		rec.Decoded++
	}
	if tr.To.IsTerminal() {
		rec.Pending = ""
	}
	rec.UpdatedAtUnix = now.Unix()
}

// IsNoop reports whether a rejected event is a harmless repeat that callers
// should swallow rather than surface: asking a session that already started to
// start again, or resuming one that is already running.
func IsNoop(from model.SessionState, ev EventKind) bool {
	d, ok := DecisionFor(from, ev)
	if !ok || d.Allowed {
		return false
	}
	return d.Reason == ForbiddenAlreadyInState
}
