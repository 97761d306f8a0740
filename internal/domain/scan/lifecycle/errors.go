// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

import (
	"errors"
	"fmt"

	"github.com/masadchattha/QRCodeHelper/internal/domain/scan/model"
)

var (
	ErrIllegalTransition = errors.New("illegal transition")
	ErrPermissionDenied  = errors.New("camera permission denied")
	ErrDeviceUnsupported = errors.New("scanning not supported on this device")
	ErrDeviceFailure     = errors.New("capture device failed")
	ErrSessionClosed     = errors.New("scan session closed")
)

// IllegalTransitionError describes a rejected state×event pair.
type IllegalTransitionError struct {
	From   model.SessionState
	Event  EventKind
	Reason string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition: %s + %s (%s)", e.From, e.Event, e.Reason)
}

func (e *IllegalTransitionError) Unwrap() error {
	return ErrIllegalTransition
}

// ReasonErrorClass maps a close reason to the sentinel callers branch on.
func ReasonErrorClass(reason model.ReasonCode) error {
	switch reason {
	case model.RPermissionDenied:
		return ErrPermissionDenied
	case model.RDeviceUnsupported:
		return ErrDeviceUnsupported
	case model.RDeviceFailure:
		return ErrDeviceFailure
	case model.RInvariantViolation:
		return ErrIllegalTransition
	case model.RClientClose, model.RNone, "":
		return nil
	default:
		return ErrIllegalTransition
	}
}
