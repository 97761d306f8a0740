// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

// ToFileConfig renders a resolved configuration in the YAML file layout, with
// every field set. Loading the result reproduces cfg except for Version.
func ToFileConfig(cfg AppConfig) FileConfig {
	return FileConfig{
		LogLevel:  cfg.LogLevel,
		LogFormat: cfg.LogFormat,
		DataDir:   cfg.DataDir,
		Generator: GeneratorFileConfig{
			Scale:   ptr(cfg.Generator.Scale),
			Margin:  ptr(cfg.Generator.Margin),
			ECLevel: cfg.Generator.ECLevel,
			Charset: cfg.Generator.Charset,
		},
		Capture: CaptureFileConfig{
			Device:    cfg.Capture.Device,
			FPS:       ptr(cfg.Capture.FPS),
			TryHarder: ptr(cfg.Capture.TryHarder),
		},
		Permission: PermissionFileConfig{
			File:   cfg.Permission.File,
			Prompt: cfg.Permission.Prompt,
		},
		API: APIFileConfig{
			ListenAddr: cfg.API.ListenAddr,
			MaxConns:   ptr(cfg.API.MaxConns),
			RateLimit:  ptr(cfg.API.RateLimit),
		},
		Tracing: TracingFileConfig{
			Enabled:    ptr(cfg.Tracing.Enabled),
			Exporter:   cfg.Tracing.Exporter,
			Endpoint:   cfg.Tracing.Endpoint,
			SampleRate: ptr(cfg.Tracing.SampleRate),
		},
	}
}

func ptr[T any](v T) *T { return &v }
