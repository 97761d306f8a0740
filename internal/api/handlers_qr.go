// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/masadchattha/QRCodeHelper/internal/generator"
	"github.com/masadchattha/QRCodeHelper/internal/log"
)

// maxBodyBytes bounds POST bodies. The largest code holds under 3 KiB.
const maxBodyBytes = 64 << 10

// GenerateRequest is the POST /api/v1/qr body. Zero option fields fall back
// to the server defaults.
type GenerateRequest struct {
	Text    string `json:"text"`
	Scale   int    `json:"scale,omitempty"`
	Margin  *int   `json:"margin,omitempty"`
	ECLevel string `json:"ecLevel,omitempty"`
}

func (s *Server) handleGetQR(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := GenerateRequest{Text: q.Get("text"), ECLevel: q.Get("ec")}
	if v := q.Get("scale"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, CodeInvalidOptions, "scale must be an integer")
			return
		}
		req.Scale = n
	}
	if v := q.Get("margin"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, CodeInvalidOptions, "margin must be an integer")
			return
		}
		req.Margin = &n
	}
	s.serveQR(w, r, req)
}

func (s *Server) handlePostQR(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		detail := "request body must be a JSON object"
		if errors.Is(err, io.EOF) {
			detail = "request body is empty"
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			detail = "request body too large"
		}
		writeError(w, r, http.StatusBadRequest, CodeInvalidBody, detail)
		return
	}
	s.serveQR(w, r, req)
}

func (s *Server) serveQR(w http.ResponseWriter, r *http.Request, req GenerateRequest) {
	if req.Text == "" {
		writeError(w, r, http.StatusBadRequest, CodeEmptyText, "text is required")
		return
	}

	gen := s.generator()
	opts := gen.Options()
	if req.Scale != 0 {
		opts.Scale = req.Scale
	}
	if req.Margin != nil {
		opts.Margin = *req.Margin
	}
	if req.ECLevel != "" {
		opts.ECLevel = req.ECLevel
	}

	art, err := gen.GenerateWith(r.Context(), req.Text, opts)
	switch {
	case errors.Is(err, generator.ErrUnencodable):
		writeError(w, r, http.StatusBadRequest, CodeUnencodable, err.Error())
		return
	case errors.Is(err, generator.ErrTooLong):
		writeError(w, r, http.StatusBadRequest, CodeTooLong, err.Error())
		return
	case errors.Is(err, generator.ErrInvalidOptions):
		writeError(w, r, http.StatusBadRequest, CodeInvalidOptions, err.Error())
		return
	case err != nil:
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().Err(err).Msg("qr generation failed")
		writeError(w, r, http.StatusInternalServerError, CodeInternal, "")
		return
	}

	data, err := art.PNG()
	if err != nil {
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().Err(err).Msg("png encoding failed")
		writeError(w, r, http.StatusInternalServerError, CodeInternal, "")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-QR-Modules", strconv.Itoa(art.Modules))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
