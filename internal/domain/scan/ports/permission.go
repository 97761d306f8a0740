// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package ports

import (
	"context"

	"github.com/masadchattha/QRCodeHelper/internal/domain/scan/model"
)

// PermissionGate resolves camera-access authorization.
//
// RequestCameraAccess may block until a consent prompt resolves; sessions
// always call it from a worker goroutine and redeliver the result to their
// owner loop. Implementations must honour ctx cancellation so a session
// closed mid-prompt does not leak the pending request.
type PermissionGate interface {
	RequestCameraAccess(ctx context.Context) (model.AuthorizationState, error)
}
