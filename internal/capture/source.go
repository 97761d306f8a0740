// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package capture

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register frame decoders
	_ "image/jpeg" // register frame decoders
	_ "image/png"  // register frame decoders
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	xglog "github.com/masadchattha/QRCodeHelper/internal/log"
)

// ErrSourceClosed is reported when a frame source ends on its own.
var ErrSourceClosed = errors.New("frame source closed")

// ErrEmptyFrame is returned by Frame.Decode for a frame carrying nothing.
var ErrEmptyFrame = errors.New("empty frame")

// Frame is one captured image. Err is set when the frame could not be read.
// A frame backed by a file is decoded lazily by Decode.
type Frame struct {
	Name  string
	Image image.Image
	Err   error

	load func() (image.Image, error)
}

// Decode returns the frame's image, reading it from its source when needed.
func (f Frame) Decode() (image.Image, error) {
	switch {
	case f.Err != nil:
		return nil, f.Err
	case f.Image != nil:
		return f.Image, nil
	case f.load != nil:
		return f.load()
	}
	return nil, ErrEmptyFrame
}

// FrameSource produces frames until closed. When Frames is closed without a
// call to Close, Err explains why.
type FrameSource interface {
	Frames() <-chan Frame
	Err() error
	Close() error
}

var frameExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true}

// dirSource turns images dropped into a spool directory into frames. A
// camera process (or a test) writes one file per frame.
type dirSource struct {
	dir     string
	watcher *fsnotify.Watcher
	logger  zerolog.Logger

	frames chan Frame
	quit   chan struct{}
	done   chan struct{}
	once   sync.Once

	mu  sync.Mutex
	err error
}

// OpenDir starts watching dir for new frame files.
func OpenDir(dir string) (FrameSource, error) {
	fi, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoInput, err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNoInput, dir)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoInput, err)
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("%w: watch %s: %v", ErrNoInput, dir, err)
	}

	s := &dirSource{
		dir:     filepath.Clean(dir),
		watcher: w,
		logger:  xglog.WithComponent("capture").With().Str(xglog.FieldDevice, dir).Logger(),
		frames:  make(chan Frame),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go s.run()
	return s, nil
}

func (s *dirSource) Frames() <-chan Frame { return s.frames }

func (s *dirSource) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *dirSource) fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *dirSource) run() {
	defer close(s.done)
	defer close(s.frames)

	for {
		select {
		case <-s.quit:
			return
		case ev, ok := <-s.watcher.Events:
			if !ok {
				s.fail(ErrSourceClosed)
				return
			}
			if filepath.Clean(ev.Name) == s.dir && (ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)) {
				s.fail(fmt.Errorf("spool directory %s went away", s.dir))
				return
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if !frameExts[strings.ToLower(filepath.Ext(ev.Name))] {
				continue
			}
			name := ev.Name
			frame := Frame{Name: name, load: func() (image.Image, error) { return decodeFile(name) }}
			select {
			case s.frames <- frame:
			case <-s.quit:
				return
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				s.fail(ErrSourceClosed)
				return
			}
			// Overflow drops events, not the device.
			s.logger.Warn().Err(err).Str(xglog.FieldEvent, "capture.watch_error").Msg("spool watcher reported an error")
		}
	}
}

func (s *dirSource) Close() error {
	var err error
	s.once.Do(func() {
		close(s.quit)
		err = s.watcher.Close()
		<-s.done
	})
	return err
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode frame %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

// ChanSource feeds frames pushed by the caller. Closing the input channel
// ends the source with ErrSourceClosed.
type ChanSource struct {
	in     <-chan image.Image
	frames chan Frame
	quit   chan struct{}
	done   chan struct{}
	once   sync.Once
	seq    int
}

// NewChanSource returns a source reading images from in.
func NewChanSource(in <-chan image.Image) *ChanSource {
	s := &ChanSource{
		in:     in,
		frames: make(chan Frame),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *ChanSource) run() {
	defer close(s.done)
	defer close(s.frames)
	for {
		select {
		case <-s.quit:
			return
		case img, ok := <-s.in:
			if !ok {
				return
			}
			s.seq++
			select {
			case s.frames <- Frame{Name: fmt.Sprintf("frame-%d", s.seq), Image: img}:
			case <-s.quit:
				return
			}
		}
	}
}

func (s *ChanSource) Frames() <-chan Frame { return s.frames }

func (s *ChanSource) Err() error { return ErrSourceClosed }

func (s *ChanSource) Close() error {
	s.once.Do(func() {
		close(s.quit)
		<-s.done
	})
	return nil
}
