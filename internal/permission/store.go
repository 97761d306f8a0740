// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package permission

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"

	"github.com/masadchattha/QRCodeHelper/internal/domain/scan/model"
)

// Store persists the camera-access decision.
type Store interface {
	Load(ctx context.Context) (model.AuthorizationState, error)
	Save(ctx context.Context, state model.AuthorizationState) error
}

// decisionFile is the on-disk layout of a FileStore.
type decisionFile struct {
	Camera    string    `yaml:"camera"`
	UpdatedAt time.Time `yaml:"updated_at,omitempty"`
}

// FileStore keeps the decision in a small YAML file. A missing file means
// the user was never asked.
type FileStore struct {
	path string
	now  func() time.Time
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

// Path returns the decision file location.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load(_ context.Context) (model.AuthorizationState, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return model.AuthUndetermined, nil
	}
	if err != nil {
		return model.AuthUndetermined, fmt.Errorf("read decision file: %w", err)
	}

	var df decisionFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&df); err != nil {
		if errors.Is(err, io.EOF) {
			return model.AuthUndetermined, nil
		}
		return model.AuthUndetermined, fmt.Errorf("parse decision file %s: %w", s.path, err)
	}
	state, ok := model.ParseAuthorizationState(df.Camera)
	if !ok {
		return model.AuthUndetermined, fmt.Errorf("decision file %s: unknown camera decision %q", s.path, df.Camera)
	}
	return state, nil
}

func (s *FileStore) Save(_ context.Context, state model.AuthorizationState) error {
	if state == model.AuthUndetermined {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("reset decision file: %w", err)
		}
		return nil
	}
	data, err := yaml.Marshal(decisionFile{Camera: string(state), UpdatedAt: s.now().UTC()})
	if err != nil {
		return fmt.Errorf("encode decision: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("create decision dir: %w", err)
	}
	if err := renameio.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write decision file: %w", err)
	}
	return nil
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu    sync.Mutex
	state model.AuthorizationState
}

// NewMemoryStore returns a store holding initial.
func NewMemoryStore(initial model.AuthorizationState) *MemoryStore {
	if initial == "" {
		initial = model.AuthUndetermined
	}
	return &MemoryStore{state: initial}
}

func (s *MemoryStore) Load(context.Context) (model.AuthorizationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, nil
}

func (s *MemoryStore) Save(_ context.Context, state model.AuthorizationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	return nil
}
