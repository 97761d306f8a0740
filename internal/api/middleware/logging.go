// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/masadchattha/QRCodeHelper/internal/log"
)

// AccessLog writes one structured line per request once the handler returns.
// Health and metrics probes are logged at debug level.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		logger := log.WithComponentFromContext(r.Context(), "http")
		evt := logger.Info()
		switch {
		case status >= 500:
			evt = logger.Error()
		case status >= 400:
			evt = logger.Warn()
		case !shouldTrace(r):
			evt = logger.Debug()
		}
		if traceID, _ := ExtractTraceContext(r); traceID != "" {
			evt = evt.Str("trace_id", traceID)
		}
		evt.
			Str(log.FieldMethod, r.Method).
			Str(log.FieldPath, r.URL.Path).
			Int(log.FieldStatus, status).
			Int("bytes", ww.BytesWritten()).
			Int64(log.FieldDuration, time.Since(start).Milliseconds()).
			Str("remote_addr", r.RemoteAddr).
			Msg("http request")
	})
}
