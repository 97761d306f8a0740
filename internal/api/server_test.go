// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masadchattha/QRCodeHelper/internal/api/middleware"
	"github.com/masadchattha/QRCodeHelper/internal/capture"
	"github.com/masadchattha/QRCodeHelper/internal/generator"
	"github.com/masadchattha/QRCodeHelper/internal/health"
)

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	gen, err := generator.New(generator.DefaultOptions())
	require.NoError(t, err)
	if cfg.Version == "" {
		cfg.Version = "test"
	}
	return New(cfg, gen)
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) APIError {
	t.Helper()
	var body APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGetQR_RendersDecodablePNG(t *testing.T) {
	s := newTestServer(t, Config{})

	rec := do(t, s.Handler(), httptest.NewRequest(http.MethodGet, "/api/v1/qr?text=hello", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "21", rec.Header().Get("X-QR-Modules"))
	assert.NotEmpty(t, rec.Header().Get(middleware.HeaderRequestID))

	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, (21+2*generator.DefaultMargin)*generator.DefaultScale, img.Bounds().Dx())

	text, err := capture.NewDetector(false).Detect(img)
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func TestGetQR_ScaleOverride(t *testing.T) {
	s := newTestServer(t, Config{})

	rec := do(t, s.Handler(), httptest.NewRequest(http.MethodGet, "/api/v1/qr?text=hello&scale=2&margin=0", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 21*2, img.Bounds().Dx())
}

func TestPostQR_RendersPNG(t *testing.T) {
	s := newTestServer(t, Config{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/qr", strings.NewReader(`{"text":"world","scale":4}`))
	req.Header.Set("Content-Type", "application/json")
	rec := do(t, s.Handler(), req)

	require.Equal(t, http.StatusOK, rec.Code)
	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, (21+2*generator.DefaultMargin)*4, img.Bounds().Dx())
}

func TestQR_BadRequests(t *testing.T) {
	s := newTestServer(t, Config{})

	tests := []struct {
		name string
		req  *http.Request
		code string
	}{
		{
			name: "get without text",
			req:  httptest.NewRequest(http.MethodGet, "/api/v1/qr", nil),
			code: CodeEmptyText,
		},
		{
			name: "post with empty text",
			req:  httptest.NewRequest(http.MethodPost, "/api/v1/qr", strings.NewReader(`{"text":""}`)),
			code: CodeEmptyText,
		},
		{
			name: "non ascii text",
			req:  httptest.NewRequest(http.MethodGet, "/api/v1/qr?text="+url.QueryEscape("café"), nil),
			code: CodeUnencodable,
		},
		{
			name: "text too long",
			req:  httptest.NewRequest(http.MethodGet, "/api/v1/qr?text="+strings.Repeat("a", 4000), nil),
			code: CodeTooLong,
		},
		{
			name: "scale not a number",
			req:  httptest.NewRequest(http.MethodGet, "/api/v1/qr?text=hello&scale=big", nil),
			code: CodeInvalidOptions,
		},
		{
			name: "scale out of range",
			req:  httptest.NewRequest(http.MethodGet, "/api/v1/qr?text=hello&scale=1000", nil),
			code: CodeInvalidOptions,
		},
		{
			name: "rendered image too large",
			req:  httptest.NewRequest(http.MethodGet, "/api/v1/qr?text="+strings.Repeat("a", 1500)+"&scale=64", nil),
			code: CodeInvalidOptions,
		},
		{
			name: "unknown body field",
			req:  httptest.NewRequest(http.MethodPost, "/api/v1/qr", strings.NewReader(`{"text":"hello","color":"red"}`)),
			code: CodeInvalidBody,
		},
		{
			name: "empty body",
			req:  httptest.NewRequest(http.MethodPost, "/api/v1/qr", http.NoBody),
			code: CodeInvalidBody,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s.Handler(), tt.req)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tt.code, body.Error)
			assert.NotEmpty(t, body.RequestID)
		})
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, Config{Version: "1.2.3"})

	rec := do(t, s.Handler(), httptest.NewRequest(http.MethodGet, "/healthz?verbose=true", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body health.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, health.StatusHealthy, body.Status)
	assert.Equal(t, "1.2.3", body.Version)
	assert.Equal(t, health.StatusHealthy, body.Checks["generator"].Status)
}

func TestReadyz_ReflectsCheckers(t *testing.T) {
	s := newTestServer(t, Config{})

	rec := do(t, s.Handler(), httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	s.RegisterChecker(health.CheckFunc{CheckName: "down", Fn: func(context.Context) health.CheckResult {
		return health.CheckResult{Status: health.StatusUnhealthy}
	}})
	rec = do(t, s.Handler(), httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, Config{})
	do(t, s.Handler(), httptest.NewRequest(http.MethodGet, "/api/v1/qr?text=hello", nil))

	rec := do(t, s.Handler(), httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "qrhelper_generator_requests_total")
	assert.Contains(t, rec.Body.String(), `qrhelper_http_requests_total{method="GET",path="/api/v1/qr",status="200"}`)
}

func TestRateLimitPerIP(t *testing.T) {
	s := newTestServer(t, Config{RateLimit: 2})

	get := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.RemoteAddr = ip + ":5000"
		return do(t, s.Handler(), req).Code
	}

	assert.Equal(t, http.StatusOK, get("10.0.0.1"))
	assert.Equal(t, http.StatusOK, get("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, get("10.0.0.1"))
	assert.Equal(t, http.StatusOK, get("10.0.0.2"))
}

func TestSetGenerator_SwapsDefaults(t *testing.T) {
	s := newTestServer(t, Config{})
	opts := generator.DefaultOptions()
	opts.Scale = 1
	opts.Margin = 0
	gen, err := generator.New(opts)
	require.NoError(t, err)

	s.SetGenerator(gen)
	s.SetGenerator(nil)

	rec := do(t, s.Handler(), httptest.NewRequest(http.MethodGet, "/api/v1/qr?text=hello", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 21, img.Bounds().Dx())
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	s := newTestServer(t, Config{MaxConns: 4})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool { return s.Addr() != nil }, time.Second, 10*time.Millisecond)
	resp, err := http.Get("http://" + s.Addr().String() + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
