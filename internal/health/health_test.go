// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masadchattha/QRCodeHelper/internal/config"
	"github.com/masadchattha/QRCodeHelper/internal/domain/scan/model"
	"github.com/masadchattha/QRCodeHelper/internal/generator"
	"github.com/masadchattha/QRCodeHelper/internal/permission"
)

type mockChecker struct {
	name   string
	status Status
}

func (m *mockChecker) Name() string { return m.name }
func (m *mockChecker) Check(context.Context) CheckResult {
	return CheckResult{Status: m.status}
}

func TestManager_Health_VerboseOnlyRunsChecks(t *testing.T) {
	m := NewManager("v1.0.0")
	m.RegisterChecker(&mockChecker{name: "healthy", status: StatusHealthy})
	m.RegisterChecker(&mockChecker{name: "degraded", status: StatusDegraded})

	resp := m.Health(context.Background(), false)
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Equal(t, "v1.0.0", resp.Version)
	assert.Nil(t, resp.Checks)

	resp = m.Health(context.Background(), true)
	assert.Equal(t, StatusDegraded, resp.Status)
	assert.Len(t, resp.Checks, 2)
}

func TestManager_Ready(t *testing.T) {
	m := NewManager("v1")
	assert.True(t, m.Ready(context.Background()).Ready)

	m.RegisterChecker(&mockChecker{name: "degraded", status: StatusDegraded})
	resp := m.Ready(context.Background())
	assert.True(t, resp.Ready)
	assert.Equal(t, StatusDegraded, resp.Status)

	m.RegisterChecker(&mockChecker{name: "down", status: StatusUnhealthy})
	resp = m.Ready(context.Background())
	assert.False(t, resp.Ready)
	assert.Equal(t, StatusUnhealthy, resp.Status)
}

func TestServeReady_StatusCodes(t *testing.T) {
	m := NewManager("v1")
	m.RegisterChecker(&mockChecker{name: "down", status: StatusUnhealthy})

	rec := httptest.NewRecorder()
	m.ServeReady(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	m.ServeHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, StatusHealthy, body.Status)
}

func TestGeneratorCheck(t *testing.T) {
	gen, err := generator.New(generator.DefaultOptions())
	require.NoError(t, err)

	res := GeneratorCheck{Current: func() *generator.Service { return gen }}.Check(context.Background())
	assert.Equal(t, StatusHealthy, res.Status, res.Error)

	res = GeneratorCheck{Current: func() *generator.Service { return nil }}.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, res.Status)
}

type brokenStore struct{}

func (brokenStore) Load(context.Context) (model.AuthorizationState, error) {
	return model.AuthUndetermined, errors.New("disk gone")
}
func (brokenStore) Save(context.Context, model.AuthorizationState) error { return nil }

func TestPermissionStoreCheck(t *testing.T) {
	ok := PermissionStoreCheck{Store: permission.NewMemoryStore(model.AuthGranted)}.Check(context.Background())
	assert.Equal(t, StatusHealthy, ok.Status)
	assert.Contains(t, ok.Message, string(model.AuthGranted))

	bad := PermissionStoreCheck{Store: brokenStore{}}.Check(context.Background())
	assert.Equal(t, StatusDegraded, bad.Status)
}

func TestPerformStartupChecks_CreatesDataDir(t *testing.T) {
	base := t.TempDir()
	cfg := config.Defaults()
	cfg.DataDir = filepath.Join(base, "data")
	cfg.Permission.File = filepath.Join(base, "state", "camera.yaml")
	cfg.Capture.Device = filepath.Join(base, "missing")

	require.NoError(t, PerformStartupChecks(context.Background(), cfg))

	info, err := os.Stat(cfg.DataDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	_, err = os.Stat(filepath.Join(base, "state"))
	assert.NoError(t, err)
}

func TestPerformStartupChecks_DataDirIsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.WriteFile(file, nil, 0o600))
	cfg := config.Defaults()
	cfg.DataDir = file
	cfg.Permission.File = filepath.Join(file, "camera.yaml")

	assert.Error(t, PerformStartupChecks(context.Background(), cfg))
}
