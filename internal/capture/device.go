// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package capture turns a stream of frames into QR detections.
//
// A Device allocates a Pipeline per scan session. The pipeline owns one
// worker goroutine that pulls frames from its FrameSource, throttles them,
// decodes them and reports payloads through the session's callbacks.
package capture

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/masadchattha/QRCodeHelper/internal/domain/scan/ports"
	xglog "github.com/masadchattha/QRCodeHelper/internal/log"
)

var (
	// ErrNoInput means no usable camera input exists.
	ErrNoInput = errors.New("no usable camera input")
	// ErrNoOutput means the detection output could not be attached.
	ErrNoOutput = errors.New("cannot attach detection output")
)

// OpenFunc opens the frame source backing a device.
type OpenFunc func(ctx context.Context) (FrameSource, error)

// Options tune allocated pipelines.
type Options struct {
	// FPS caps decoded frames per second. Zero decodes every frame.
	FPS float64
	// TryHarder makes the detector spend more time per frame.
	TryHarder bool
}

// Device implements ports.CaptureDevice.
type Device struct {
	name     string
	open     OpenFunc
	opts     Options
	detector *Detector
	logger   zerolog.Logger
}

// NewDevice returns a device named name whose frames come from open.
func NewDevice(name string, open OpenFunc, opts Options) *Device {
	return &Device{
		name:     name,
		open:     open,
		opts:     opts,
		detector: NewDetector(opts.TryHarder),
		logger:   xglog.WithComponent("capture").With().Str(xglog.FieldDevice, name).Logger(),
	}
}

// NewDirDevice returns a device reading frames from a spool directory.
func NewDirDevice(dir string, opts Options) *Device {
	return NewDevice("dir:"+dir, func(context.Context) (FrameSource, error) {
		if dir == "" {
			return nil, fmt.Errorf("%w: no capture directory configured", ErrNoInput)
		}
		return OpenDir(dir)
	}, opts)
}

func (d *Device) Name() string { return d.name }

// Allocate opens the frame source and binds cb. The pipeline starts stopped.
func (d *Device) Allocate(ctx context.Context, cb ports.Callbacks) (ports.CapturePipeline, error) {
	if cb.OnDetect == nil {
		return nil, ErrNoOutput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, err := d.open(ctx)
	if err != nil {
		if !errors.Is(err, ErrNoInput) {
			err = fmt.Errorf("%w: %v", ErrNoInput, err)
		}
		return nil, err
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if d.opts.FPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(d.opts.FPS), 1)
	}
	p := newPipeline(src, d.detector, limiter, cb, d.logger)
	d.logger.Debug().Str(xglog.FieldEvent, "capture.allocated").Msg("capture pipeline allocated")
	return p, nil
}
