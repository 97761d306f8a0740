// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the application.
const (
	// Scan session attributes
	ScanSessionIDKey     = "scan.session_id"
	ScanStateKey         = "scan.state"
	ScanAuthorizationKey = "scan.authorization"
	ScanDeviceKey        = "scan.device"
	ScanReasonKey        = "scan.reason"

	// Generator attributes
	GenerateLengthKey  = "generate.text_length"
	GenerateScaleKey   = "generate.scale"
	GenerateModulesKey = "generate.modules"

	// Error attributes
	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// ScanAttributes creates scan-session span attributes.
func ScanAttributes(sessionID, state, device string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	if sessionID != "" {
		attrs = append(attrs, attribute.String(ScanSessionIDKey, sessionID))
	}
	if state != "" {
		attrs = append(attrs, attribute.String(ScanStateKey, state))
	}
	if device != "" {
		attrs = append(attrs, attribute.String(ScanDeviceKey, device))
	}
	return attrs
}

// GenerateAttributes creates generator span attributes.
func GenerateAttributes(textLength, scale, modules int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(GenerateLengthKey, textLength),
		attribute.Int(GenerateScaleKey, scale),
		attribute.Int(GenerateModulesKey, modules),
	}
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(_ error, errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
