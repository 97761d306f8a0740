// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/masadchattha/QRCodeHelper/internal/generator"
	"github.com/masadchattha/QRCodeHelper/internal/permission"
)

// Defaults.
const (
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "console"
	DefaultDataDir         = ".qrhelper"
	DefaultPermissionFile  = "camera.yaml"
	DefaultListenAddr      = ":8088"
	DefaultMaxConns        = 256
	DefaultRateLimit       = 120
	DefaultCaptureFPS      = 10
	DefaultTracingExporter = "grpc"
	DefaultTracingEndpoint = "localhost:4317"
	DefaultTracingSampling = 1.0
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{} // keys read during the last Load
}

// NewLoader creates a new configuration loader. configPath may be empty.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

// Path returns the YAML file the loader reads, if any.
func (l *Loader) Path() string { return l.configPath }

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, defaultVal)
}

// Load loads configuration with precedence: ENV > File > Defaults, then
// validates the result.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()

	if l.configPath != "" {
		fileCfg, err := LoadFile(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		mergeFileConfig(&cfg, fileCfg)
	}

	l.mergeEnvConfig(&cfg)

	if abs, err := filepath.Abs(cfg.DataDir); err == nil {
		cfg.DataDir = abs
	}
	if cfg.Permission.File != "" && !filepath.IsAbs(cfg.Permission.File) {
		cfg.Permission.File = filepath.Join(cfg.DataDir, cfg.Permission.File)
	}
	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	gen := generator.DefaultOptions()
	return AppConfig{
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
		DataDir:   DefaultDataDir,
		Generator: GeneratorConfig{
			Scale:   gen.Scale,
			Margin:  gen.Margin,
			ECLevel: gen.ECLevel,
			Charset: gen.Charset,
		},
		Capture: CaptureConfig{
			FPS: DefaultCaptureFPS,
		},
		Permission: PermissionConfig{
			File:   DefaultPermissionFile,
			Prompt: permission.PolicyAsk,
		},
		API: APIConfig{
			ListenAddr: DefaultListenAddr,
			MaxConns:   DefaultMaxConns,
			RateLimit:  DefaultRateLimit,
		},
		Tracing: TracingConfig{
			Exporter:   DefaultTracingExporter,
			Endpoint:   DefaultTracingEndpoint,
			SampleRate: DefaultTracingSampling,
		},
	}
}

// LoadFile parses a YAML file with STRICT parsing.
// Unknown fields will cause a fatal error to prevent misconfiguration.
func LoadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return ParseFile(data)
}

// ParseFile decodes YAML bytes with the same rules as LoadFile.
func ParseFile(data []byte) (*FileConfig, error) {
	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&fileCfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &FileConfig{}, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("strict config parse error: %w: %v", ErrUnknownConfigField, err)
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, ErrMultipleDocuments
	}
	return &fileCfg, nil
}

func mergeFileConfig(dst *AppConfig, src *FileConfig) {
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.LogFormat != "" {
		dst.LogFormat = src.LogFormat
	}
	if src.DataDir != "" {
		dst.DataDir = os.ExpandEnv(src.DataDir)
	}

	g := src.Generator
	if g.Scale != nil {
		dst.Generator.Scale = *g.Scale
	}
	if g.Margin != nil {
		dst.Generator.Margin = *g.Margin
	}
	if g.ECLevel != "" {
		dst.Generator.ECLevel = g.ECLevel
	}
	if g.Charset != "" {
		dst.Generator.Charset = g.Charset
	}

	c := src.Capture
	if c.Device != "" {
		dst.Capture.Device = os.ExpandEnv(c.Device)
	}
	if c.FPS != nil {
		dst.Capture.FPS = *c.FPS
	}
	if c.TryHarder != nil {
		dst.Capture.TryHarder = *c.TryHarder
	}

	if src.Permission.File != "" {
		dst.Permission.File = os.ExpandEnv(src.Permission.File)
	}
	if src.Permission.Prompt != "" {
		dst.Permission.Prompt = src.Permission.Prompt
	}

	a := src.API
	if a.ListenAddr != "" {
		dst.API.ListenAddr = a.ListenAddr
	}
	if a.MaxConns != nil {
		dst.API.MaxConns = *a.MaxConns
	}
	if a.RateLimit != nil {
		dst.API.RateLimit = *a.RateLimit
	}

	t := src.Tracing
	if t.Enabled != nil {
		dst.Tracing.Enabled = *t.Enabled
	}
	if t.Exporter != "" {
		dst.Tracing.Exporter = t.Exporter
	}
	if t.Endpoint != "" {
		dst.Tracing.Endpoint = t.Endpoint
	}
	if t.SampleRate != nil {
		dst.Tracing.SampleRate = *t.SampleRate
	}
}

// mergeEnvConfig applies environment overrides. ENV has the highest
// precedence.
func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	cfg.LogLevel = l.envString(EnvLogLevel, cfg.LogLevel)
	cfg.LogFormat = l.envString(EnvLogFormat, cfg.LogFormat)
	cfg.DataDir = l.envString(EnvDataDir, cfg.DataDir)

	cfg.Generator.Scale = l.envInt(EnvGeneratorScale, cfg.Generator.Scale)
	cfg.Generator.Margin = l.envInt(EnvGeneratorMargin, cfg.Generator.Margin)
	cfg.Generator.ECLevel = l.envString(EnvGeneratorECLevel, cfg.Generator.ECLevel)
	cfg.Generator.Charset = l.envString(EnvGeneratorCharset, cfg.Generator.Charset)

	cfg.Capture.Device = l.envString(EnvCaptureDevice, cfg.Capture.Device)
	cfg.Capture.FPS = l.envFloat(EnvCaptureFPS, cfg.Capture.FPS)
	cfg.Capture.TryHarder = l.envBool(EnvCaptureTryHarder, cfg.Capture.TryHarder)

	cfg.Permission.File = l.envString(EnvPermissionFile, cfg.Permission.File)
	cfg.Permission.Prompt = l.envString(EnvPermissionPrompt, cfg.Permission.Prompt)

	cfg.API.ListenAddr = l.envString(EnvListenAddr, cfg.API.ListenAddr)
	cfg.API.MaxConns = l.envInt(EnvMaxConns, cfg.API.MaxConns)
	cfg.API.RateLimit = l.envInt(EnvRateLimit, cfg.API.RateLimit)

	cfg.Tracing.Enabled = l.envBool(EnvTracingEnabled, cfg.Tracing.Enabled)
	cfg.Tracing.Exporter = l.envString(EnvTracingExporter, cfg.Tracing.Exporter)
	cfg.Tracing.Endpoint = l.envString(EnvTracingEndpoint, cfg.Tracing.Endpoint)
	cfg.Tracing.SampleRate = l.envFloat(EnvTracingSampleRate, cfg.Tracing.SampleRate)
}
