// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package telemetry

import (
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestScanAttributes_SkipsEmpty(t *testing.T) {
	attrs := ScanAttributes("scan-1", "", "/tmp/frames")
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(attrs))
	}
	verifyAttribute(t, attrs, ScanSessionIDKey, "scan-1")
	verifyAttribute(t, attrs, ScanDeviceKey, "/tmp/frames")
}

func TestGenerateAttributes(t *testing.T) {
	attrs := GenerateAttributes(5, 8, 29)
	if len(attrs) != 3 {
		t.Fatalf("expected 3 attributes, got %d", len(attrs))
	}
	for _, a := range attrs {
		if a.Key == GenerateScaleKey && a.Value.AsInt64() != 8 {
			t.Errorf("scale = %d", a.Value.AsInt64())
		}
	}
}

func TestErrorAttributes(t *testing.T) {
	attrs := ErrorAttributes(errors.New("boom"), "device")
	verifyAttribute(t, attrs, ErrorTypeKey, "device")
}

func verifyAttribute(t *testing.T, attrs []attribute.KeyValue, key, want string) {
	t.Helper()
	for _, a := range attrs {
		if string(a.Key) == key {
			if got := a.Value.AsString(); got != want {
				t.Errorf("attribute %s = %q, want %q", key, got, want)
			}
			return
		}
	}
	t.Errorf("attribute %s not found", key)
}
