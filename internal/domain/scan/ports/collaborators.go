// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package ports

import "github.com/masadchattha/QRCodeHelper/internal/domain/scan/model"

// ResultSink receives decoded payloads. OnDecoded runs on the session's owner
// goroutine, at most once per DETECTED entry. It must not wait on session
// commands (Resume, Close); hand acknowledgment off to another goroutine.
type ResultSink interface {
	OnDecoded(payload model.DecodedPayload)
}

// Observer receives terminal lifecycle notifications.
type Observer interface {
	OnPermissionDenied()
	OnDeviceUnsupported(err error)
}

// Cue plays the haptic/audio acknowledgment after a successful read.
type Cue interface {
	Acknowledge()
}

// ResultSinkFunc adapts a function to ResultSink.
type ResultSinkFunc func(payload model.DecodedPayload)

func (f ResultSinkFunc) OnDecoded(payload model.DecodedPayload) { f(payload) }

// NopObserver ignores every notification.
type NopObserver struct{}

func (NopObserver) OnPermissionDenied()       {}
func (NopObserver) OnDeviceUnsupported(error) {}

// NopCue plays nothing.
type NopCue struct{}

func (NopCue) Acknowledge() {}
