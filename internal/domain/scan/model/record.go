// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package model

// SessionRecord is the mutable state of one scan session. It is owned by the
// session's loop goroutine; everyone else sees copies.
type SessionRecord struct {
	SessionID string
	State     SessionState
	Reason    ReasonCode

	// Pending is the payload in flight between DETECTED and acknowledgment.
	Pending DecodedPayload
	// Epoch counts RUNNING intervals; detections tagged with an older epoch are stale.
	Epoch uint64
	// Decoded counts payloads delivered to the result sink.
	Decoded int

	CreatedAtUnix int64
	UpdatedAtUnix int64
}

// NewSessionRecord returns a record in IDLE.
func NewSessionRecord(id string, nowUnix int64) *SessionRecord {
	return &SessionRecord{
		SessionID:     id,
		State:         SessionIdle,
		Reason:        RNone,
		CreatedAtUnix: nowUnix,
		UpdatedAtUnix: nowUnix,
	}
}
