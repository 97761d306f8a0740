// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"github.com/masadchattha/QRCodeHelper/internal/generator"
	"github.com/masadchattha/QRCodeHelper/internal/permission"
	"github.com/masadchattha/QRCodeHelper/internal/validate"
)

// Validate checks every field and returns a validate.ValidationError listing
// all problems at once.
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.LogLevel("logLevel", cfg.LogLevel)
	v.OneOf("logFormat", cfg.LogFormat, []string{"console", "json"})
	v.NotEmpty("dataDir", cfg.DataDir)

	gen := GeneratorOptions(cfg).Normalize()
	v.Range("generator.scale", gen.Scale, 1, generator.MaxScale)
	v.Range("generator.margin", gen.Margin, 0, generator.MaxMargin)
	v.OneOf("generator.ecLevel", gen.ECLevel, []string{"L", "M", "Q", "H"})
	v.OneOf("generator.charset", gen.Charset, []string{generator.CharsetASCII, generator.CharsetLatin1, generator.CharsetUTF8})

	v.FloatRange("capture.fps", cfg.Capture.FPS, 0, 120)

	v.NotEmpty("permission.file", cfg.Permission.File)
	v.OneOf("permission.prompt", cfg.Permission.Prompt, []string{permission.PolicyAsk, permission.PolicyAllow, permission.PolicyDeny})

	v.ListenAddr("api.listenAddr", cfg.API.ListenAddr)
	v.NonNegative("api.maxConns", cfg.API.MaxConns)
	v.NonNegative("api.rateLimit", cfg.API.RateLimit)

	if cfg.Tracing.Enabled {
		v.OneOf("tracing.exporter", cfg.Tracing.Exporter, []string{"grpc", "http"})
		v.NotEmpty("tracing.endpoint", cfg.Tracing.Endpoint)
	}
	v.FloatRange("tracing.sampleRate", cfg.Tracing.SampleRate, 0, 1)

	return v.Err()
}

// GeneratorOptions converts the generator section.
func GeneratorOptions(cfg AppConfig) generator.Options {
	return generator.Options{
		Scale:   cfg.Generator.Scale,
		Margin:  cfg.Generator.Margin,
		ECLevel: cfg.Generator.ECLevel,
		Charset: cfg.Generator.Charset,
	}
}
