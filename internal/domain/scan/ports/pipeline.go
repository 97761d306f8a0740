// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package ports

import "context"

// DetectionFunc is invoked by a running pipeline, on its own worker
// goroutine, for every decoded code. Frames without a code produce no call.
type DetectionFunc func(payload string)

// FailureFunc is invoked by a pipeline when the underlying device stops
// delivering frames for good.
type FailureFunc func(err error)

// Callbacks are bound to a pipeline at allocation time.
type Callbacks struct {
	OnDetect  DetectionFunc
	OnFailure FailureFunc
}

// CaptureDevice allocates capture pipelines. Allocate fails when no usable
// camera input exists or the detection output cannot be attached.
type CaptureDevice interface {
	Name() string
	Allocate(ctx context.Context, cb Callbacks) (CapturePipeline, error)
}

// CapturePipeline is the handle to an allocated capture pipeline. It is owned
// by exactly one session.
//
// Start and Stop are non-blocking commands. A frame already being decoded
// when Stop returns may still report; sessions discard it by epoch. Release
// tears the pipeline down, waits for the worker and is safe to call more
// than once.
type CapturePipeline interface {
	Start()
	Stop()
	Release() error
}
