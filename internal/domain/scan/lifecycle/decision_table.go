// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

import "github.com/masadchattha/QRCodeHelper/internal/domain/scan/model"

const (
	ForbiddenTerminalAbsorbing  = "terminal_absorbing"
	ForbiddenOutOfOrder         = "out_of_order"
	ForbiddenAlreadyInState     = "already_in_state"
	ForbiddenRequiresRequesting = "requires_requesting"
	ForbiddenRequiresRunning    = "requires_running"
	ForbiddenRequiresPaused     = "requires_paused"
	ForbiddenNoPipeline         = "no_pipeline"
)

func allowed() Decision        { return Decision{Allowed: true} }
func forbid(r string) Decision { return Decision{Allowed: false, Reason: r} }

// decisionTable defines an explicit decision for every State×Event combination.
var decisionTable = map[model.SessionState]map[EventKind]Decision{
	model.SessionIdle: {
		EvStartRequested:    allowed(),
		EvAccessGranted:     forbid(ForbiddenRequiresRequesting),
		EvAccessDenied:      forbid(ForbiddenRequiresRequesting),
		EvDeviceUnsupported: forbid(ForbiddenRequiresRequesting),
		EvCodeDetected:      forbid(ForbiddenRequiresRunning),
		EvPayloadExtracted:  forbid(ForbiddenOutOfOrder),
		EvResumeRequested:   forbid(ForbiddenRequiresPaused),
		EvCloseRequested:    allowed(),
		EvDeviceFailed:      forbid(ForbiddenNoPipeline),
	},
	model.SessionRequesting: {
		EvStartRequested:    forbid(ForbiddenAlreadyInState),
		EvAccessGranted:     allowed(),
		EvAccessDenied:      allowed(),
		EvDeviceUnsupported: allowed(),
		EvCodeDetected:      forbid(ForbiddenRequiresRunning),
		EvPayloadExtracted:  forbid(ForbiddenOutOfOrder),
		EvResumeRequested:   forbid(ForbiddenRequiresPaused),
		EvCloseRequested:    allowed(),
		EvDeviceFailed:      forbid(ForbiddenNoPipeline),
	},
	model.SessionRunning: {
		EvStartRequested:    forbid(ForbiddenAlreadyInState),
		EvAccessGranted:     forbid(ForbiddenRequiresRequesting),
		EvAccessDenied:      forbid(ForbiddenRequiresRequesting),
		EvDeviceUnsupported: forbid(ForbiddenRequiresRequesting),
		EvCodeDetected:      allowed(),
		EvPayloadExtracted:  forbid(ForbiddenOutOfOrder),
		EvResumeRequested:   forbid(ForbiddenAlreadyInState),
		EvCloseRequested:    allowed(),
		EvDeviceFailed:      allowed(),
	},
	model.SessionDetected: {
		EvStartRequested:    forbid(ForbiddenAlreadyInState),
		EvAccessGranted:     forbid(ForbiddenRequiresRequesting),
		EvAccessDenied:      forbid(ForbiddenRequiresRequesting),
		EvDeviceUnsupported: forbid(ForbiddenRequiresRequesting),
		EvCodeDetected:      forbid(ForbiddenRequiresRunning),
		EvPayloadExtracted:  allowed(),
		EvResumeRequested:   forbid(ForbiddenRequiresPaused),
		EvCloseRequested:    allowed(),
		EvDeviceFailed:      allowed(),
	},
	model.SessionPaused: {
		EvStartRequested:    forbid(ForbiddenAlreadyInState),
		EvAccessGranted:     forbid(ForbiddenRequiresRequesting),
		EvAccessDenied:      forbid(ForbiddenRequiresRequesting),
		EvDeviceUnsupported: forbid(ForbiddenRequiresRequesting),
		EvCodeDetected:      forbid(ForbiddenRequiresRunning),
		EvPayloadExtracted:  forbid(ForbiddenOutOfOrder),
		EvResumeRequested:   allowed(),
		EvCloseRequested:    allowed(),
		EvDeviceFailed:      allowed(),
	},
	model.SessionClosed: {
		EvStartRequested:    forbid(ForbiddenTerminalAbsorbing),
		EvAccessGranted:     forbid(ForbiddenTerminalAbsorbing),
		EvAccessDenied:      forbid(ForbiddenTerminalAbsorbing),
		EvDeviceUnsupported: forbid(ForbiddenTerminalAbsorbing),
		EvCodeDetected:      forbid(ForbiddenTerminalAbsorbing),
		EvPayloadExtracted:  forbid(ForbiddenTerminalAbsorbing),
		EvResumeRequested:   forbid(ForbiddenTerminalAbsorbing),
		EvCloseRequested:    forbid(ForbiddenTerminalAbsorbing),
		EvDeviceFailed:      forbid(ForbiddenTerminalAbsorbing),
	},
}

// DecisionFor returns the explicit decision for state×event.
func DecisionFor(from model.SessionState, ev EventKind) (Decision, bool) {
	m, ok := decisionTable[from]
	if !ok {
		return Decision{}, false
	}
	d, ok := m[ev]
	return d, ok
}
