// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package health

import (
	"context"
	"fmt"

	"github.com/masadchattha/QRCodeHelper/internal/capture"
	"github.com/masadchattha/QRCodeHelper/internal/generator"
	"github.com/masadchattha/QRCodeHelper/internal/permission"
)

// probeText is rendered and decoded by GeneratorCheck.
const probeText = "qrhelper-health"

// CheckFunc adapts a function to Checker.
type CheckFunc struct {
	CheckName string
	Fn        func(ctx context.Context) CheckResult
}

func (c CheckFunc) Name() string                          { return c.CheckName }
func (c CheckFunc) Check(ctx context.Context) CheckResult { return c.Fn(ctx) }

// GeneratorCheck renders a probe code with the current generator and reads
// it back with the detector.
type GeneratorCheck struct {
	Current  func() *generator.Service
	Detector *capture.Detector
}

func (c GeneratorCheck) Name() string { return "generator" }

func (c GeneratorCheck) Check(ctx context.Context) CheckResult {
	gen := c.Current()
	if gen == nil {
		return CheckResult{Status: StatusUnhealthy, Error: "no generator configured"}
	}
	art, err := gen.Generate(ctx, probeText)
	if err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: err.Error()}
	}
	det := c.Detector
	if det == nil {
		det = capture.NewDetector(false)
	}
	got, err := det.Detect(art.Image)
	if err != nil {
		return CheckResult{Status: StatusDegraded, Message: "probe code not readable", Error: err.Error()}
	}
	if got != probeText {
		return CheckResult{Status: StatusDegraded, Error: fmt.Sprintf("probe decoded as %q", got)}
	}
	return CheckResult{Status: StatusHealthy, Message: fmt.Sprintf("%d modules at scale %d", art.Modules, art.Scale)}
}

// PermissionStoreCheck loads the stored camera decision.
type PermissionStoreCheck struct {
	Store permission.Store
}

func (c PermissionStoreCheck) Name() string { return "permission_store" }

func (c PermissionStoreCheck) Check(ctx context.Context) CheckResult {
	state, err := c.Store.Load(ctx)
	if err != nil {
		return CheckResult{Status: StatusDegraded, Error: err.Error()}
	}
	return CheckResult{Status: StatusHealthy, Message: "camera " + string(state)}
}
