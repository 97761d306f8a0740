// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package capture

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/masadchattha/QRCodeHelper/internal/domain/scan/ports"
	xglog "github.com/masadchattha/QRCodeHelper/internal/log"
	"github.com/masadchattha/QRCodeHelper/internal/metrics"
)

// Frame results, used as metric labels.
const (
	frameDecoded   = "decoded"
	frameEmpty     = "empty"
	frameError     = "error"
	frameThrottled = "throttled"
	frameSkipped   = "skipped"
)

// Pipeline implements ports.CapturePipeline.
type Pipeline struct {
	src      FrameSource
	detector *Detector
	limiter  *rate.Limiter
	cb       ports.Callbacks
	logger   zerolog.Logger

	running atomic.Bool
	quit    chan struct{}
	done    chan struct{}

	releaseOnce sync.Once
	releaseErr  error
}

func newPipeline(src FrameSource, det *Detector, limiter *rate.Limiter, cb ports.Callbacks, logger zerolog.Logger) *Pipeline {
	p := &Pipeline{
		src:      src,
		detector: det,
		limiter:  limiter,
		cb:       cb,
		logger:   logger,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go p.run()
	return p
}

// Start resumes frame delivery.
func (p *Pipeline) Start() { p.running.Store(true) }

// Stop pauses frame delivery. Frames still arrive and are discarded.
func (p *Pipeline) Stop() { p.running.Store(false) }

// Running reports whether frames are being decoded.
func (p *Pipeline) Running() bool { return p.running.Load() }

// Release stops the worker and closes the source. It blocks until the
// worker exited and is safe to call more than once.
func (p *Pipeline) Release() error {
	p.releaseOnce.Do(func() {
		p.running.Store(false)
		close(p.quit)
		p.releaseErr = p.src.Close()
		<-p.done
		p.logger.Debug().Str(xglog.FieldEvent, "capture.released").Msg("capture pipeline released")
	})
	return p.releaseErr
}

func (p *Pipeline) released() bool {
	select {
	case <-p.quit:
		return true
	default:
		return false
	}
}

func (p *Pipeline) run() {
	defer close(p.done)
	frames := p.src.Frames()
	for {
		select {
		case <-p.quit:
			return
		case f, ok := <-frames:
			if !ok {
				if !p.released() && p.cb.OnFailure != nil {
					err := p.src.Err()
					if err == nil {
						err = ErrSourceClosed
					}
					p.logger.Warn().Err(err).Str(xglog.FieldEvent, "capture.source_lost").Msg("frame source ended")
					p.cb.OnFailure(err)
				}
				return
			}
			p.process(f)
		}
	}
}

func (p *Pipeline) process(f Frame) {
	if !p.running.Load() {
		metrics.RecordFrame(frameSkipped)
		return
	}
	if !p.limiter.Allow() {
		metrics.RecordFrame(frameThrottled)
		return
	}
	img, err := f.Decode()
	if err != nil {
		metrics.RecordFrame(frameError)
		p.logger.Debug().Err(err).Str(xglog.FieldFrame, f.Name).Msg("unreadable frame")
		return
	}

	text, err := p.detector.Detect(img)
	switch {
	case err == nil:
		metrics.RecordFrame(frameDecoded)
		p.logger.Debug().Str(xglog.FieldFrame, f.Name).Msg("code detected")
		p.cb.OnDetect(text)
	case errors.Is(err, ErrNoCode):
		metrics.RecordFrame(frameEmpty)
	default:
		metrics.RecordFrame(frameError)
		p.logger.Debug().Err(err).Str(xglog.FieldFrame, f.Name).Msg("frame decode failed")
	}
}
