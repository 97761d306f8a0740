// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package model

// SessionState is the single source of truth for what the capture pipeline
// of a scan session is doing.
type SessionState string

const (
	SessionIdle       SessionState = "IDLE"
	SessionRequesting SessionState = "REQUESTING"
	SessionRunning    SessionState = "RUNNING"
	SessionDetected   SessionState = "DETECTED"
	SessionPaused     SessionState = "PAUSED"
	SessionClosed     SessionState = "CLOSED"
)

// AllSessionStates lists every state in lifecycle order.
var AllSessionStates = []SessionState{
	SessionIdle,
	SessionRequesting,
	SessionRunning,
	SessionDetected,
	SessionPaused,
	SessionClosed,
}

// IsTerminal returns true if the state is a final state.
func (s SessionState) IsTerminal() bool {
	return s == SessionClosed
}

// HoldsPipeline reports whether a session in this state may own an allocated
// capture pipeline.
func (s SessionState) HoldsPipeline() bool {
	switch s {
	case SessionRunning, SessionDetected, SessionPaused:
		return true
	}
	return false
}

// AuthorizationState is the camera-access decision reported by a permission gate.
type AuthorizationState string

const (
	AuthUndetermined AuthorizationState = "UNDETERMINED"
	AuthGranted      AuthorizationState = "GRANTED"
	AuthDenied       AuthorizationState = "DENIED"
)

// ParseAuthorizationState maps a user-facing word onto an AuthorizationState.
func ParseAuthorizationState(s string) (AuthorizationState, bool) {
	switch s {
	case "granted", "GRANTED", "allow", "allowed":
		return AuthGranted, true
	case "denied", "DENIED", "deny":
		return AuthDenied, true
	case "undetermined", "UNDETERMINED", "reset", "":
		return AuthUndetermined, true
	}
	return AuthUndetermined, false
}

// DecodedPayload is the text recovered from a successfully read code.
type DecodedPayload string

// ReasonCode records why a session reached CLOSED.
// Keep these stable: metrics and CLI exit handling depend on them.
type ReasonCode string

const (
	RNone               ReasonCode = "R_NONE"
	RClientClose        ReasonCode = "R_CLIENT_CLOSE"
	RPermissionDenied   ReasonCode = "R_PERMISSION_DENIED"
	RDeviceUnsupported  ReasonCode = "R_DEVICE_UNSUPPORTED"
	RDeviceFailure      ReasonCode = "R_DEVICE_FAILURE"
	RInvariantViolation ReasonCode = "R_INVARIANT_VIOLATION"
)
