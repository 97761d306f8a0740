// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

// AppConfig is the resolved runtime configuration.
type AppConfig struct {
	Version   string
	LogLevel  string
	LogFormat string
	DataDir   string

	Generator  GeneratorConfig
	Capture    CaptureConfig
	Permission PermissionConfig
	API        APIConfig
	Tracing    TracingConfig
}

// GeneratorConfig controls QR rendering.
type GeneratorConfig struct {
	Scale   int
	Margin  int
	ECLevel string
	Charset string
}

// CaptureConfig selects the frame source used for scanning.
type CaptureConfig struct {
	// Device is the spool directory frames are dropped into.
	Device    string
	FPS       float64
	TryHarder bool
}

// PermissionConfig controls the camera consent decision.
type PermissionConfig struct {
	// File stores the decision. Relative paths resolve against DataDir.
	File string
	// Prompt is ask, allow or deny.
	Prompt string
}

// APIConfig controls the HTTP server started by serve.
type APIConfig struct {
	ListenAddr string
	MaxConns   int
	// RateLimit is requests per minute per client IP. Zero disables it.
	RateLimit int
}

// TracingConfig mirrors telemetry.Config.
type TracingConfig struct {
	Enabled    bool
	Exporter   string
	Endpoint   string
	SampleRate float64
}

// FileConfig is the YAML layout. Pointer fields distinguish "unset" from a
// zero value.
type FileConfig struct {
	LogLevel  string `yaml:"logLevel,omitempty"`
	LogFormat string `yaml:"logFormat,omitempty"`
	DataDir   string `yaml:"dataDir,omitempty"`

	Generator  GeneratorFileConfig  `yaml:"generator,omitempty"`
	Capture    CaptureFileConfig    `yaml:"capture,omitempty"`
	Permission PermissionFileConfig `yaml:"permission,omitempty"`
	API        APIFileConfig        `yaml:"api,omitempty"`
	Tracing    TracingFileConfig    `yaml:"tracing,omitempty"`
}

type GeneratorFileConfig struct {
	Scale   *int   `yaml:"scale,omitempty"`
	Margin  *int   `yaml:"margin,omitempty"`
	ECLevel string `yaml:"ecLevel,omitempty"`
	Charset string `yaml:"charset,omitempty"`
}

type CaptureFileConfig struct {
	Device    string   `yaml:"device,omitempty"`
	FPS       *float64 `yaml:"fps,omitempty"`
	TryHarder *bool    `yaml:"tryHarder,omitempty"`
}

type PermissionFileConfig struct {
	File   string `yaml:"file,omitempty"`
	Prompt string `yaml:"prompt,omitempty"`
}

type APIFileConfig struct {
	ListenAddr string `yaml:"listenAddr,omitempty"`
	MaxConns   *int   `yaml:"maxConns,omitempty"`
	RateLimit  *int   `yaml:"rateLimit,omitempty"`
}

type TracingFileConfig struct {
	Enabled    *bool    `yaml:"enabled,omitempty"`
	Exporter   string   `yaml:"exporter,omitempty"`
	Endpoint   string   `yaml:"endpoint,omitempty"`
	SampleRate *float64 `yaml:"sampleRate,omitempty"`
}
