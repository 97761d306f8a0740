// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

import "github.com/masadchattha/QRCodeHelper/internal/domain/scan/model"

// Transition is a single allowed edge in the lifecycle state machine.
type Transition struct {
	From   model.SessionState
	To     model.SessionState
	Event  EventKind
	Reason model.ReasonCode
}

// Decision records whether a transition is allowed and why it is forbidden.
type Decision struct {
	Allowed bool
	Reason  string
}

var transitionsTable = []Transition{
	// Start path
	{From: model.SessionIdle, To: model.SessionRequesting, Event: EvStartRequested},
	{From: model.SessionRequesting, To: model.SessionRunning, Event: EvAccessGranted},
	{From: model.SessionRequesting, To: model.SessionClosed, Event: EvAccessDenied, Reason: model.RPermissionDenied},
	{From: model.SessionRequesting, To: model.SessionClosed, Event: EvDeviceUnsupported, Reason: model.RDeviceUnsupported},

	// Detection cycle
	{From: model.SessionRunning, To: model.SessionDetected, Event: EvCodeDetected},
	{From: model.SessionDetected, To: model.SessionPaused, Event: EvPayloadExtracted},
	{From: model.SessionPaused, To: model.SessionRunning, Event: EvResumeRequested},

	// Close from every live state
	{From: model.SessionIdle, To: model.SessionClosed, Event: EvCloseRequested, Reason: model.RClientClose},
	{From: model.SessionRequesting, To: model.SessionClosed, Event: EvCloseRequested, Reason: model.RClientClose},
	{From: model.SessionRunning, To: model.SessionClosed, Event: EvCloseRequested, Reason: model.RClientClose},
	{From: model.SessionDetected, To: model.SessionClosed, Event: EvCloseRequested, Reason: model.RClientClose},
	{From: model.SessionPaused, To: model.SessionClosed, Event: EvCloseRequested, Reason: model.RClientClose},

	// Device failure while the pipeline is allocated
	{From: model.SessionRunning, To: model.SessionClosed, Event: EvDeviceFailed, Reason: model.RDeviceFailure},
	{From: model.SessionDetected, To: model.SessionClosed, Event: EvDeviceFailed, Reason: model.RDeviceFailure},
	{From: model.SessionPaused, To: model.SessionClosed, Event: EvDeviceFailed, Reason: model.RDeviceFailure},
}

// TransitionFor returns the allowed transition for a given state+event.
func TransitionFor(from model.SessionState, ev EventKind) (Transition, bool) {
	for _, tr := range transitionsTable {
		if tr.From == from && tr.Event == ev {
			return tr, true
		}
	}
	return Transition{}, false
}
