// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/masadchattha/QRCodeHelper/internal/domain/scan/lifecycle"
	"github.com/masadchattha/QRCodeHelper/internal/domain/scan/model"
	"github.com/masadchattha/QRCodeHelper/internal/domain/scan/ports"
)

// fakeGate answers with a fixed authorization, or blocks until release is
// closed (or ctx ends) when block is set.
type fakeGate struct {
	auth    model.AuthorizationState
	err     error
	block   bool
	release chan struct{}

	calls    atomic.Int32
	returned chan struct{}
	sawCtx   atomic.Bool
}

func newFakeGate(auth model.AuthorizationState) *fakeGate {
	return &fakeGate{auth: auth, release: make(chan struct{}), returned: make(chan struct{}, 8)}
}

func (g *fakeGate) RequestCameraAccess(ctx context.Context) (model.AuthorizationState, error) {
	g.calls.Add(1)
	defer func() { g.returned <- struct{}{} }()
	if g.block {
		select {
		case <-g.release:
		case <-ctx.Done():
			g.sawCtx.Store(true)
		}
	}
	return g.auth, g.err
}

type fakePipeline struct {
	cb ports.Callbacks

	starts   atomic.Int32
	stops    atomic.Int32
	releases atomic.Int32
}

func (p *fakePipeline) Start() { p.starts.Add(1) }
func (p *fakePipeline) Stop()  { p.stops.Add(1) }
func (p *fakePipeline) Release() error {
	p.releases.Add(1)
	return nil
}

// emit simulates the pipeline worker decoding a frame.
func (p *fakePipeline) emit(payload string) { p.cb.OnDetect(payload) }

func (p *fakePipeline) fail(err error) { p.cb.OnFailure(err) }

type fakeDevice struct {
	err error

	mu        sync.Mutex
	pipelines []*fakePipeline
	allocs    atomic.Int32
}

func (d *fakeDevice) Name() string { return "fake" }

func (d *fakeDevice) Allocate(_ context.Context, cb ports.Callbacks) (ports.CapturePipeline, error) {
	d.allocs.Add(1)
	if d.err != nil {
		return nil, d.err
	}
	p := &fakePipeline{cb: cb}
	d.mu.Lock()
	d.pipelines = append(d.pipelines, p)
	d.mu.Unlock()
	return p, nil
}

func (d *fakeDevice) last() *fakePipeline {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.pipelines) == 0 {
		return nil
	}
	return d.pipelines[len(d.pipelines)-1]
}

// recorder captures everything the session reports to the outside.
type recorder struct {
	mu          sync.Mutex
	payloads    []model.DecodedPayload
	sinkStates  []model.SessionState
	denied      int
	unsupported []error
	acks        int
	states      []model.SessionState

	session *Session
}

func (r *recorder) OnDecoded(p model.DecodedPayload) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = append(r.payloads, p)
	if r.session != nil {
		r.sinkStates = append(r.sinkStates, r.session.State())
	}
}

func (r *recorder) OnPermissionDenied() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.denied++
}

func (r *recorder) OnDeviceUnsupported(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unsupported = append(r.unsupported, err)
}

func (r *recorder) Acknowledge() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.acks++
}

func (r *recorder) hook(tr lifecycle.Transition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, tr.To)
}

type observed struct {
	payloads    []model.DecodedPayload
	sinkStates  []model.SessionState
	denied      int
	unsupported []error
	acks        int
	states      []model.SessionState
}

func (r *recorder) snapshot() observed {
	r.mu.Lock()
	defer r.mu.Unlock()
	return observed{
		payloads:    append([]model.DecodedPayload(nil), r.payloads...),
		sinkStates:  append([]model.SessionState(nil), r.sinkStates...),
		denied:      r.denied,
		unsupported: append([]error(nil), r.unsupported...),
		acks:        r.acks,
		states:      append([]model.SessionState(nil), r.states...),
	}
}
