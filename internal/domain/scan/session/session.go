// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package session runs the scan-session state machine.
//
// Every transition is applied by a single owner goroutine. Commands (Start,
// Resume, Close) and pipeline/permission callbacks are posted to its mailbox
// and applied strictly in arrival order.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/masadchattha/QRCodeHelper/internal/domain/scan/lifecycle"
	"github.com/masadchattha/QRCodeHelper/internal/domain/scan/model"
	"github.com/masadchattha/QRCodeHelper/internal/domain/scan/ports"
	xglog "github.com/masadchattha/QRCodeHelper/internal/log"
	"github.com/masadchattha/QRCodeHelper/internal/metrics"
	"github.com/masadchattha/QRCodeHelper/internal/telemetry"
)

const mailboxSize = 16

// Deps are the collaborators a session drives.
type Deps struct {
	Gate     ports.PermissionGate
	Device   ports.CaptureDevice
	Sink     ports.ResultSink
	Observer ports.Observer
	Cue      ports.Cue
}

// Option configures a Session.
type Option func(*Session)

// WithID overrides the generated session id.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// WithClock overrides the wall clock used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithTransitionHook registers fn to run on the owner goroutine after every
// applied transition.
func WithTransitionHook(fn func(lifecycle.Transition)) Option {
	return func(s *Session) { s.hooks = append(s.hooks, fn) }
}

// WithLogger replaces the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

type msgKind int

const (
	msgCommand msgKind = iota
	msgPermission
	msgDetection
	msgFailure
)

type message struct {
	kind    msgKind
	command lifecycle.EventKind
	reply   chan error

	auth    model.AuthorizationState
	payload model.DecodedPayload
	epoch   uint64
	err     error
}

// Session is one camera scan, from permission check to close.
type Session struct {
	id     string
	deps   Deps
	now    func() time.Time
	hooks  []func(lifecycle.Transition)
	logger zerolog.Logger
	tracer trace.Tracer

	ctx    context.Context
	cancel context.CancelFunc

	mailbox chan message
	closing chan struct{} // closed on entry to CLOSED
	done    chan struct{} // closed when the owner goroutine exits

	// epoch mirrors rec.Epoch for detection callbacks running off the owner goroutine.
	epoch atomic.Uint64

	// owned by the loop goroutine
	rec      *model.SessionRecord
	pipeline ports.CapturePipeline

	mu       sync.RWMutex
	snapshot model.SessionRecord
	err      error
}

// New creates a session in IDLE and starts its owner goroutine. Cancelling
// ctx closes the session. The caller must eventually Close it (or let it
// reach CLOSED on its own) to release the goroutine.
func New(ctx context.Context, deps Deps, opts ...Option) *Session {
	if deps.Observer == nil {
		deps.Observer = ports.NopObserver{}
	}
	if deps.Cue == nil {
		deps.Cue = ports.NopCue{}
	}
	if deps.Sink == nil {
		deps.Sink = ports.ResultSinkFunc(func(model.DecodedPayload) {})
	}

	s := &Session{
		id:      uuid.NewString(),
		deps:    deps,
		now:     time.Now,
		tracer:  telemetry.Tracer("qrhelper/scan"),
		mailbox: make(chan message, mailboxSize),
		closing: make(chan struct{}),
		done:    make(chan struct{}),
	}
	s.logger = xglog.WithComponent("scan")
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str(xglog.FieldSessionID, s.id).Logger()
	s.ctx, s.cancel = context.WithCancel(xglog.ContextWithSessionID(ctx, s.id))
	s.rec = model.NewSessionRecord(s.id, s.now().Unix())
	s.publish()

	metrics.RecordSessionOpened()
	go s.loop()
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() model.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.State
}

// Record returns a copy of the session record.
func (s *Session) Record() model.SessionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Err reports why the session closed: nil for a client close, otherwise an
// error matching lifecycle.ErrPermissionDenied, ErrDeviceUnsupported or
// ErrDeviceFailure.
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Done is closed once the session reached CLOSED and released its pipeline.
func (s *Session) Done() <-chan struct{} { return s.done }

// Wait blocks until the session is closed or ctx ends.
func (s *Session) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return s.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start requests camera access. It returns once the request is accepted; the
// permission result arrives asynchronously. Starting a session that already
// left IDLE (and is not closed) is a no-op.
func (s *Session) Start() error {
	return s.command(lifecycle.EvStartRequested)
}

// Resume acknowledges the decoded payload and restarts frame delivery on the
// same pipeline.
func (s *Session) Resume() error {
	return s.command(lifecycle.EvResumeRequested)
}

// Close moves the session to CLOSED from any state, releasing the pipeline
// exactly once. Closing a closed session is a no-op.
func (s *Session) Close() error {
	err := s.command(lifecycle.EvCloseRequested)
	if errors.Is(err, lifecycle.ErrSessionClosed) {
		return nil
	}
	return err
}

func (s *Session) command(ev lifecycle.EventKind) error {
	reply := make(chan error, 1)
	if !s.post(message{kind: msgCommand, command: ev, reply: reply}) {
		return lifecycle.ErrSessionClosed
	}
	select {
	case err := <-reply:
		return err
	case <-s.done:
		select {
		case err := <-reply:
			return err
		default:
			return lifecycle.ErrSessionClosed
		}
	}
}

// post enqueues m unless the session is closing. It never blocks once the
// session entered CLOSED.
func (s *Session) post(m message) bool {
	select {
	case <-s.closing:
		return false
	default:
	}
	select {
	case s.mailbox <- m:
		return true
	case <-s.closing:
		return false
	}
}

func (s *Session) loop() {
	defer close(s.done)
	for {
		select {
		case m := <-s.mailbox:
			s.handle(m)
		case <-s.ctx.Done():
			// Parent cancelled: treat as a close request.
			s.handleClose(nil)
		}
		if s.rec.State.IsTerminal() {
			s.drain()
			return
		}
	}
}

// drain answers commands that were queued behind the CLOSED transition.
func (s *Session) drain() {
	for {
		select {
		case m := <-s.mailbox:
			if m.reply != nil {
				m.reply <- lifecycle.ErrSessionClosed
			}
		default:
			return
		}
	}
}

func (s *Session) handle(m message) {
	switch m.kind {
	case msgCommand:
		switch m.command {
		case lifecycle.EvStartRequested:
			m.reply <- s.handleStart()
		case lifecycle.EvResumeRequested:
			m.reply <- s.handleResume()
		case lifecycle.EvCloseRequested:
			s.handleClose(m.reply)
		default:
			m.reply <- fmt.Errorf("unsupported command %s", m.command)
		}
	case msgPermission:
		s.handlePermission(m.auth, m.err)
	case msgDetection:
		s.handleDetection(m.payload, m.epoch)
	case msgFailure:
		s.handleFailure(m.err)
	}
}

func (s *Session) handleStart() error {
	if lifecycle.IsNoop(s.rec.State, lifecycle.EvStartRequested) {
		s.logger.Debug().Str(xglog.FieldEvent, "scan.start_noop").Str("state", string(s.rec.State)).Msg("start ignored, session already started")
		return nil
	}
	if err := s.dispatch(lifecycle.Event{Kind: lifecycle.EvStartRequested}); err != nil {
		return err
	}

	go s.requestAccess()
	return nil
}

// requestAccess runs the permission gate off the owner goroutine and
// redelivers the result to the mailbox.
func (s *Session) requestAccess() {
	ctx, span := s.tracer.Start(s.ctx, "scan.permission",
		trace.WithAttributes(telemetry.ScanAttributes(s.id, string(model.SessionRequesting), "")...))
	auth, err := s.deps.Gate.RequestCameraAccess(ctx)
	span.SetAttributes(attribute.String(telemetry.ScanAuthorizationKey, string(auth)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()

	if !s.post(message{kind: msgPermission, auth: auth, err: err}) {
		s.logger.Debug().
			Str(xglog.FieldEvent, "scan.permission_discarded").
			Str(xglog.FieldAuthorization, string(auth)).
			Msg("permission result arrived after close, ignored")
	}
}

func (s *Session) handlePermission(auth model.AuthorizationState, err error) {
	if s.rec.State != model.SessionRequesting {
		s.logger.Warn().Str("state", string(s.rec.State)).Msg("permission result outside REQUESTING, ignored")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Str(xglog.FieldEvent, "scan.permission_error").Msg("permission gate failed, treating as denied")
		auth = model.AuthDenied
	}

	if auth != model.AuthGranted {
		if derr := s.dispatch(lifecycle.Event{Kind: lifecycle.EvAccessDenied}); derr != nil {
			return
		}
		s.finalize(lifecycle.ErrPermissionDenied)
		s.deps.Observer.OnPermissionDenied()
		return
	}

	pipe, aerr := s.allocate()
	if aerr != nil {
		if derr := s.dispatch(lifecycle.Event{Kind: lifecycle.EvDeviceUnsupported}); derr != nil {
			return
		}
		cause := fmt.Errorf("%w: %v", lifecycle.ErrDeviceUnsupported, aerr)
		s.finalize(cause)
		s.deps.Observer.OnDeviceUnsupported(cause)
		return
	}

	if err := s.dispatch(lifecycle.Event{Kind: lifecycle.EvAccessGranted}); err != nil {
		_ = pipe.Release()
		return
	}
	s.pipeline = pipe
	s.epoch.Store(s.rec.Epoch)
	s.pipeline.Start()
}

func (s *Session) allocate() (ports.CapturePipeline, error) {
	if s.deps.Device == nil {
		return nil, errors.New("no capture device configured")
	}
	ctx, span := s.tracer.Start(s.ctx, "scan.allocate",
		trace.WithAttributes(telemetry.ScanAttributes(s.id, "", s.deps.Device.Name())...))
	defer span.End()

	pipe, err := s.deps.Device.Allocate(ctx, ports.Callbacks{
		OnDetect:  s.onDetect,
		OnFailure: s.onFailure,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Warn().Err(err).
			Str(xglog.FieldEvent, "scan.allocate_failed").
			Str(xglog.FieldDevice, s.deps.Device.Name()).
			Msg("capture pipeline allocation failed")
		return nil, err
	}
	return pipe, nil
}

// onDetect runs on the pipeline's worker goroutine.
func (s *Session) onDetect(payload string) {
	s.post(message{kind: msgDetection, payload: model.DecodedPayload(payload), epoch: s.epoch.Load()})
}

// onFailure runs on the pipeline's worker goroutine.
func (s *Session) onFailure(err error) {
	s.post(message{kind: msgFailure, err: err})
}

func (s *Session) handleDetection(payload model.DecodedPayload, epoch uint64) {
	if s.rec.State != model.SessionRunning || epoch != s.rec.Epoch {
		metrics.RecordDetection(false)
		s.logger.Debug().
			Str(xglog.FieldEvent, "scan.detection_dropped").
			Str("state", string(s.rec.State)).
			Uint64(xglog.FieldEpoch, epoch).
			Msg("detection outside its running interval, dropped")
		return
	}
	if err := s.dispatch(lifecycle.Event{Kind: lifecycle.EvCodeDetected, Payload: payload}); err != nil {
		return
	}
	metrics.RecordDetection(true)
	s.pipeline.Stop()

	s.deps.Sink.OnDecoded(payload)
	if err := s.dispatch(lifecycle.Event{Kind: lifecycle.EvPayloadExtracted}); err != nil {
		return
	}
	s.deps.Cue.Acknowledge()
}

func (s *Session) handleResume() error {
	if lifecycle.IsNoop(s.rec.State, lifecycle.EvResumeRequested) {
		return nil
	}
	if err := s.dispatch(lifecycle.Event{Kind: lifecycle.EvResumeRequested}); err != nil {
		return err
	}
	s.epoch.Store(s.rec.Epoch)
	s.pipeline.Start()
	return nil
}

func (s *Session) handleClose(reply chan error) {
	if err := s.dispatch(lifecycle.Event{Kind: lifecycle.EvCloseRequested}); err != nil {
		if reply != nil {
			reply <- err
		}
		return
	}
	s.finalize(nil)
	if reply != nil {
		reply <- nil
	}
}

func (s *Session) handleFailure(cause error) {
	if !s.rec.State.HoldsPipeline() {
		return
	}
	if err := s.dispatch(lifecycle.Event{Kind: lifecycle.EvDeviceFailed}); err != nil {
		return
	}
	wrapped := fmt.Errorf("%w: %v", lifecycle.ErrDeviceFailure, cause)
	s.finalize(wrapped)
	s.deps.Observer.OnDeviceUnsupported(wrapped)
}

// finalize runs once, on the CLOSED transition: it stops accepting
// callbacks, cancels any pending permission request and releases the
// pipeline.
func (s *Session) finalize(cause error) {
	close(s.closing)
	s.cancel()

	if s.pipeline != nil {
		if err := s.pipeline.Release(); err != nil {
			s.logger.Warn().Err(err).Str(xglog.FieldEvent, "scan.release_failed").Msg("capture pipeline release failed")
		}
		s.pipeline = nil
	}

	s.mu.Lock()
	s.err = cause
	s.mu.Unlock()

	metrics.RecordSessionClosed(string(s.rec.Reason))
	ev := s.logger.Info()
	if cause != nil {
		ev = s.logger.Warn().Err(cause)
	}
	ev.Str(xglog.FieldEvent, "scan.closed").
		Str(xglog.FieldReason, string(s.rec.Reason)).
		Int("decoded", s.rec.Decoded).
		Msg("scan session closed")
}

func (s *Session) dispatch(ev lifecycle.Event) error {
	from := s.rec.State
	tr, err := lifecycle.Dispatch(s.rec, ev, s.now())
	if err != nil {
		var ite *lifecycle.IllegalTransitionError
		reason := lifecycle.ForbiddenOutOfOrder
		if errors.As(err, &ite) {
			reason = ite.Reason
		}
		metrics.RecordRejectedEvent(ev.Kind.String(), reason)
		s.logger.Debug().Err(err).Str(xglog.FieldEvent, "scan.event_rejected").Msg("event rejected")
		return err
	}

	metrics.RecordTransition(string(from), string(tr.To), ev.Kind.String())
	s.logger.Debug().
		Str(xglog.FieldEvent, "scan.transition").
		Str(xglog.FieldOldState, string(from)).
		Str(xglog.FieldNewState, string(tr.To)).
		Str("trigger", ev.Kind.String()).
		Msg("state transition")

	s.publish()
	for _, h := range s.hooks {
		h(tr)
	}
	return nil
}

func (s *Session) publish() {
	s.mu.Lock()
	s.snapshot = *s.rec
	s.mu.Unlock()
}
