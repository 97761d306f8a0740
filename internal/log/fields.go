// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldSessionID = "session_id"
	FieldRequestID = "request_id"

	// Lifecycle fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldOldState  = "old_state"
	FieldNewState  = "new_state"
	FieldReason    = "reason"
	FieldEpoch     = "epoch"

	// Permission fields
	FieldAuthorization = "authorization"
	FieldPrompted      = "prompted"

	// Capture fields
	FieldDevice = "device"
	FieldFrame  = "frame"

	// Generator fields
	FieldScale   = "scale"
	FieldModules = "modules"
	FieldCharset = "charset"

	// HTTP fields
	FieldMethod   = "method"
	FieldPath     = "path"
	FieldStatus   = "status"
	FieldDuration = "duration_ms"
)
