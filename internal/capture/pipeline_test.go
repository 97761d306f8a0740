// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package capture

import (
	"context"
	"image"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/time/rate"

	"github.com/masadchattha/QRCodeHelper/internal/domain/scan/ports"
	"github.com/masadchattha/QRCodeHelper/internal/metrics"
)

const waitFor = 3 * time.Second

type collector struct {
	mu       sync.Mutex
	payloads []string
	failures []error
	detected chan string
	failed   chan error
}

func newCollector() *collector {
	return &collector{detected: make(chan string, 16), failed: make(chan error, 4)}
}

func (c *collector) callbacks() ports.Callbacks {
	return ports.Callbacks{
		OnDetect: func(p string) {
			c.mu.Lock()
			c.payloads = append(c.payloads, p)
			c.mu.Unlock()
			c.detected <- p
		},
		OnFailure: func(err error) {
			c.mu.Lock()
			c.failures = append(c.failures, err)
			c.mu.Unlock()
			c.failed <- err
		},
	}
}

func chanDevice(in chan image.Image, opts Options) *Device {
	return NewDevice("chan", func(context.Context) (FrameSource, error) {
		return NewChanSource(in), nil
	}, opts)
}

func frameCount(result string) float64 {
	return testutil.ToFloat64(metrics.CaptureFramesTotal.WithLabelValues(result))
}

func TestPipeline_DetectsWhileRunning(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	in := make(chan image.Image)
	c := newCollector()
	pipe, err := chanDevice(in, Options{}).Allocate(context.Background(), c.callbacks())
	require.NoError(t, err)
	defer pipe.Release()

	pipe.Start()
	in <- qrImage(t, "hello")

	select {
	case got := <-c.detected:
		assert.Equal(t, "hello", got)
	case <-time.After(waitFor):
		t.Fatal("no detection")
	}
	require.NoError(t, pipe.Release())
}

func TestPipeline_StoppedFramesAreSkipped(t *testing.T) {
	in := make(chan image.Image)
	c := newCollector()
	pipe, err := chanDevice(in, Options{}).Allocate(context.Background(), c.callbacks())
	require.NoError(t, err)
	defer pipe.Release()

	before := frameCount(frameSkipped)
	in <- qrImage(t, "hello") // never started
	require.Eventually(t, func() bool { return frameCount(frameSkipped) == before+1 }, waitFor, time.Millisecond)

	pipe.Start()
	pipe.Stop()
	in <- qrImage(t, "hello")
	require.Eventually(t, func() bool { return frameCount(frameSkipped) == before+2 }, waitFor, time.Millisecond)

	c.mu.Lock()
	defer c.mu.Unlock()
	assert.Empty(t, c.payloads)
}

type frameFeed struct {
	frames chan Frame
}

func (f *frameFeed) Frames() <-chan Frame { return f.frames }
func (f *frameFeed) Err() error           { return ErrSourceClosed }
func (f *frameFeed) Close() error         { return nil }

func TestPipeline_StoppedFramesAreNotDecoded(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	img := qrImage(t, "hello")
	var loads atomic.Int32
	frame := Frame{Name: "spool/frame.png", load: func() (image.Image, error) {
		loads.Add(1)
		return img, nil
	}}

	feed := &frameFeed{frames: make(chan Frame)}
	c := newCollector()
	pipe := newPipeline(feed, NewDetector(false), rate.NewLimiter(rate.Inf, 1), c.callbacks(), zerolog.Nop())
	defer pipe.Release()

	before := frameCount(frameSkipped)
	feed.frames <- frame
	require.Eventually(t, func() bool { return frameCount(frameSkipped) == before+1 }, waitFor, time.Millisecond)
	assert.Zero(t, loads.Load())

	pipe.Start()
	feed.frames <- frame
	select {
	case got := <-c.detected:
		assert.Equal(t, "hello", got)
	case <-time.After(waitFor):
		t.Fatal("no detection")
	}
	assert.Equal(t, int32(1), loads.Load())
	require.NoError(t, pipe.Release())
}

func TestFrame_Decode(t *testing.T) {
	_, err := Frame{Name: "x"}.Decode()
	assert.ErrorIs(t, err, ErrEmptyFrame)

	_, err = Frame{Err: ErrSourceClosed, load: func() (image.Image, error) { return blankImage(1), nil }}.Decode()
	assert.ErrorIs(t, err, ErrSourceClosed)

	got, err := Frame{Image: blankImage(4)}.Decode()
	require.NoError(t, err)
	assert.Equal(t, 4, got.Bounds().Dx())
}

func TestPipeline_EmptyFramesProduceNoCallback(t *testing.T) {
	in := make(chan image.Image)
	c := newCollector()
	pipe, err := chanDevice(in, Options{}).Allocate(context.Background(), c.callbacks())
	require.NoError(t, err)
	defer pipe.Release()
	pipe.Start()

	before := frameCount(frameEmpty)
	in <- blankImage(100)
	require.Eventually(t, func() bool { return frameCount(frameEmpty) == before+1 }, waitFor, time.Millisecond)
	assert.Empty(t, c.detected)
}

func TestPipeline_Throttles(t *testing.T) {
	in := make(chan image.Image)
	c := newCollector()
	pipe, err := chanDevice(in, Options{FPS: 0.001}).Allocate(context.Background(), c.callbacks())
	require.NoError(t, err)
	defer pipe.Release()
	pipe.Start()

	before := frameCount(frameThrottled)
	in <- qrImage(t, "hello")
	<-c.detected
	in <- qrImage(t, "hello")
	require.Eventually(t, func() bool { return frameCount(frameThrottled) == before+1 }, waitFor, time.Millisecond)
}

func TestPipeline_ReleaseIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	in := make(chan image.Image)
	c := newCollector()
	pipe, err := chanDevice(in, Options{}).Allocate(context.Background(), c.callbacks())
	require.NoError(t, err)
	pipe.Start()

	require.NoError(t, pipe.Release())
	require.NoError(t, pipe.Release())
	assert.False(t, pipe.(*Pipeline).Running())
	assert.Empty(t, c.failed, "release is not a device failure")
}

func TestPipeline_SourceEndReportsFailure(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	in := make(chan image.Image)
	c := newCollector()
	pipe, err := chanDevice(in, Options{}).Allocate(context.Background(), c.callbacks())
	require.NoError(t, err)
	pipe.Start()

	close(in)
	select {
	case err := <-c.failed:
		assert.ErrorIs(t, err, ErrSourceClosed)
	case <-time.After(waitFor):
		t.Fatal("no failure reported")
	}
	require.NoError(t, pipe.Release())
}

func TestDevice_AllocateErrors(t *testing.T) {
	c := newCollector()

	_, err := chanDevice(make(chan image.Image), Options{}).Allocate(context.Background(), ports.Callbacks{})
	assert.ErrorIs(t, err, ErrNoOutput)

	failing := NewDevice("broken", func(context.Context) (FrameSource, error) {
		return nil, assert.AnError
	}, Options{})
	_, err = failing.Allocate(context.Background(), c.callbacks())
	assert.ErrorIs(t, err, ErrNoInput)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = chanDevice(make(chan image.Image), Options{}).Allocate(ctx, c.callbacks())
	assert.ErrorIs(t, err, context.Canceled)
}
