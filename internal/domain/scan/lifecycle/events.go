// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

import "github.com/masadchattha/QRCodeHelper/internal/domain/scan/model"

// EventKind is a domain event in the scan-session lifecycle.
type EventKind int

const (
	EvUnknown EventKind = iota
	EvStartRequested
	EvAccessGranted
	EvAccessDenied
	EvDeviceUnsupported
	EvCodeDetected
	EvPayloadExtracted
	EvResumeRequested
	EvCloseRequested
	EvDeviceFailed
)

// AllEvents lists every known event kind (EvUnknown excluded).
var AllEvents = []EventKind{
	EvStartRequested,
	EvAccessGranted,
	EvAccessDenied,
	EvDeviceUnsupported,
	EvCodeDetected,
	EvPayloadExtracted,
	EvResumeRequested,
	EvCloseRequested,
	EvDeviceFailed,
}

var eventNames = map[EventKind]string{
	EvUnknown:           "unknown",
	EvStartRequested:    "start_requested",
	EvAccessGranted:     "access_granted",
	EvAccessDenied:      "access_denied",
	EvDeviceUnsupported: "device_unsupported",
	EvCodeDetected:      "code_detected",
	EvPayloadExtracted:  "payload_extracted",
	EvResumeRequested:   "resume_requested",
	EvCloseRequested:    "close_requested",
	EvDeviceFailed:      "device_failed",
}

func (e EventKind) String() string {
	if n, ok := eventNames[e]; ok {
		return n
	}
	return "unknown"
}

// Event carries optional domain data for a transition.
type Event struct {
	Kind    EventKind
	Payload model.DecodedPayload
}
