// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package generator renders text as QR code images.
package generator

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"unicode/utf8"

	zxinggo "github.com/ericlevine/zxinggo"
	"github.com/ericlevine/zxinggo/qrcode"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/encoding/charmap"

	xglog "github.com/masadchattha/QRCodeHelper/internal/log"
	"github.com/masadchattha/QRCodeHelper/internal/metrics"
	"github.com/masadchattha/QRCodeHelper/internal/telemetry"
)

var (
	// ErrUnencodable means the text has characters outside the charset.
	ErrUnencodable = errors.New("text cannot be encoded in the configured charset")
	// ErrTooLong means the text does not fit in the largest QR version.
	ErrTooLong = errors.New("text too long for a qr code")
)

// Service generates QR codes with fixed options.
type Service struct {
	opts   Options
	writer *qrcode.Writer
	logger zerolog.Logger
	tracer trace.Tracer
}

// New validates opts and returns a Service.
func New(opts Options) (*Service, error) {
	opts = opts.Normalize()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Service{
		opts:   opts,
		writer: qrcode.NewWriter(),
		logger: xglog.WithComponent("generator"),
		tracer: telemetry.Tracer("qrhelper/generator"),
	}, nil
}

// Options returns the normalized options.
func (s *Service) Options() Options { return s.opts }

// Generate renders text with the service options. Empty text yields a nil
// artifact and no error.
func (s *Service) Generate(ctx context.Context, text string) (*Artifact, error) {
	return s.GenerateWith(ctx, text, s.opts)
}

// GenerateWith renders text with per-call options.
func (s *Service) GenerateWith(ctx context.Context, text string, opts Options) (*Artifact, error) {
	if text == "" {
		metrics.RecordGenerate("empty")
		return nil, nil
	}
	opts = opts.Normalize()
	if err := opts.Validate(); err != nil {
		metrics.RecordGenerate("invalid")
		return nil, err
	}

	_, span := s.tracer.Start(ctx, "generator.generate")
	defer span.End()

	art, result, err := s.render(text, opts)
	metrics.RecordGenerate(result)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(telemetry.ErrorAttributes(err, result)...)
		return nil, err
	}
	span.SetAttributes(telemetry.GenerateAttributes(len(text), art.Scale, art.Modules)...)

	s.logger.Debug().
		Str(xglog.FieldCharset, opts.Charset).
		Int(xglog.FieldModules, art.Modules).
		Int(xglog.FieldScale, art.Scale).
		Msg("qr code generated")
	return art, nil
}

func (s *Service) render(text string, opts Options) (*Artifact, string, error) {
	data, err := encodeCharset(text, opts.Charset)
	if err != nil {
		return nil, "unencodable", err
	}

	margin := opts.Margin
	matrix, err := s.writer.Encode(data, zxinggo.FormatQRCode, 0, 0, &zxinggo.EncodeOptions{
		ErrorCorrection: opts.ECLevel,
		Margin:          &margin,
		QRMaskPattern:   -1,
	})
	if err != nil {
		if errors.Is(err, zxinggo.ErrWriter) && strings.Contains(err.Error(), "too large") {
			return nil, "too_long", fmt.Errorf("%w: %d bytes at level %s", ErrTooLong, len(data), opts.ECLevel)
		}
		return nil, "error", fmt.Errorf("encode qr: %w", err)
	}
	if side := matrix.Width() * opts.Scale; side > MaxImageSide {
		return nil, "invalid", fmt.Errorf("%w: image would be %dpx wide, limit is %dpx; lower scale or margin",
			ErrInvalidOptions, side, MaxImageSide)
	}

	return &Artifact{
		Text:    text,
		Image:   scaleMatrix(matrix, opts.Scale),
		Modules: matrix.Width() - 2*margin,
		Scale:   opts.Scale,
		Margin:  margin,
	}, "ok", nil
}

// encodeCharset returns the byte string placed in the code.
func encodeCharset(text, charset string) (string, error) {
	switch charset {
	case CharsetASCII:
		for i, r := range text {
			if r >= utf8.RuneSelf {
				return "", fmt.Errorf("%w: %q at offset %d is not ascii", ErrUnencodable, r, i)
			}
		}
		return text, nil
	case CharsetLatin1:
		out, err := charmap.ISO8859_1.NewEncoder().String(text)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrUnencodable, err)
		}
		return out, nil
	case CharsetUTF8:
		if !utf8.ValidString(text) {
			return "", fmt.Errorf("%w: invalid utf-8", ErrUnencodable)
		}
		return text, nil
	}
	return "", fmt.Errorf("%w: charset %q", ErrInvalidOptions, charset)
}

type bitMatrix interface {
	Width() int
	Height() int
	Get(x, y int) bool
}

// scaleMatrix paints every module as a scale×scale block.
func scaleMatrix(m bitMatrix, scale int) *image.Gray {
	if scale == 1 {
		return zxinggo.BitMatrixToImage(m)
	}
	w, h := m.Width(), m.Height()
	img := image.NewGray(image.Rect(0, 0, w*scale, h*scale))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(255)
			if m.Get(x, y) {
				v = 0
			}
			for dy := 0; dy < scale; dy++ {
				row := img.Pix[(y*scale+dy)*img.Stride+x*scale:]
				for dx := 0; dx < scale; dx++ {
					row[dx] = v
				}
			}
		}
	}
	return img
}
