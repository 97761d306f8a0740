// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package generator

import (
	"errors"
	"fmt"
	"strings"
)

// Supported character sets.
const (
	CharsetASCII  = "ascii"
	CharsetLatin1 = "iso-8859-1"
	CharsetUTF8   = "utf-8"
)

const (
	DefaultScale   = 8
	DefaultMargin  = 4
	DefaultECLevel = "M"
	MaxScale       = 64
	MaxMargin      = 16
	// MaxImageSide caps the rendered width in pixels, quiet zone included.
	MaxImageSide = 4096
)

// ErrInvalidOptions wraps every Options validation failure.
var ErrInvalidOptions = errors.New("invalid generator options")

// Options control how codes are rendered.
type Options struct {
	// Scale is the number of pixels per module.
	Scale int
	// Margin is the quiet zone in modules.
	Margin int
	// ECLevel is one of L, M, Q, H.
	ECLevel string
	// Charset restricts the text that may be encoded.
	Charset string
}

// DefaultOptions mirror the classic 8x upscaled, medium-correction code.
func DefaultOptions() Options {
	return Options{
		Scale:   DefaultScale,
		Margin:  DefaultMargin,
		ECLevel: DefaultECLevel,
		Charset: CharsetASCII,
	}
}

// Normalize fills zero values with defaults and canonicalizes names.
func (o Options) Normalize() Options {
	d := DefaultOptions()
	if o.Scale == 0 {
		o.Scale = d.Scale
	}
	if o.ECLevel == "" {
		o.ECLevel = d.ECLevel
	}
	if o.Charset == "" {
		o.Charset = d.Charset
	}
	o.ECLevel = strings.ToUpper(o.ECLevel)
	o.Charset = canonicalCharset(o.Charset)
	return o
}

// Validate reports the first invalid field.
func (o Options) Validate() error {
	if o.Scale < 1 || o.Scale > MaxScale {
		return fmt.Errorf("%w: scale %d out of range 1..%d", ErrInvalidOptions, o.Scale, MaxScale)
	}
	if o.Margin < 0 || o.Margin > MaxMargin {
		return fmt.Errorf("%w: margin %d out of range 0..%d", ErrInvalidOptions, o.Margin, MaxMargin)
	}
	switch o.ECLevel {
	case "L", "M", "Q", "H":
	default:
		return fmt.Errorf("%w: error correction level %q (want L, M, Q or H)", ErrInvalidOptions, o.ECLevel)
	}
	switch o.Charset {
	case CharsetASCII, CharsetLatin1, CharsetUTF8:
	default:
		return fmt.Errorf("%w: charset %q", ErrInvalidOptions, o.Charset)
	}
	return nil
}

func canonicalCharset(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ascii", "us-ascii":
		return CharsetASCII
	case "iso-8859-1", "iso8859-1", "latin1", "latin-1":
		return CharsetLatin1
	case "utf-8", "utf8":
		return CharsetUTF8
	}
	return s
}
