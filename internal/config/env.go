// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/masadchattha/QRCodeHelper/internal/log"
)

// EnvPrefix namespaces every environment key.
const EnvPrefix = "QRHELPER_"

// Environment keys.
const (
	EnvLogLevel          = EnvPrefix + "LOG_LEVEL"
	EnvLogFormat         = EnvPrefix + "LOG_FORMAT"
	EnvDataDir           = EnvPrefix + "DATA_DIR"
	EnvGeneratorScale    = EnvPrefix + "GENERATOR_SCALE"
	EnvGeneratorMargin   = EnvPrefix + "GENERATOR_MARGIN"
	EnvGeneratorECLevel  = EnvPrefix + "GENERATOR_EC_LEVEL"
	EnvGeneratorCharset  = EnvPrefix + "GENERATOR_CHARSET"
	EnvCaptureDevice     = EnvPrefix + "CAPTURE_DEVICE"
	EnvCaptureFPS        = EnvPrefix + "CAPTURE_FPS"
	EnvCaptureTryHarder  = EnvPrefix + "CAPTURE_TRY_HARDER"
	EnvPermissionFile    = EnvPrefix + "PERMISSION_FILE"
	EnvPermissionPrompt  = EnvPrefix + "PERMISSION_PROMPT"
	EnvListenAddr        = EnvPrefix + "LISTEN_ADDR"
	EnvMaxConns          = EnvPrefix + "MAX_CONNS"
	EnvRateLimit         = EnvPrefix + "RATE_LIMIT"
	EnvTracingEnabled    = EnvPrefix + "TRACING_ENABLED"
	EnvTracingExporter   = EnvPrefix + "TRACING_EXPORTER"
	EnvTracingEndpoint   = EnvPrefix + "TRACING_ENDPOINT"
	EnvTracingSampleRate = EnvPrefix + "TRACING_SAMPLE_RATE"
)

// ParseString reads a string from environment variable or returns default value.
// It logs the source (environment or default) for observability.
func ParseString(key, defaultValue string) string {
	return parseStringWithLogger(log.WithComponent("config"), key, defaultValue)
}

func parseStringWithLogger(logger zerolog.Logger, key, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		logDefault(logger, key, exists).Str("default", defaultValue).Msg("using default value")
		return defaultValue
	}
	logger.Debug().
		Str("key", key).
		Str("value", value).
		Str("source", "environment").
		Msg("using environment variable")
	return value
}

// ParseInt reads an integer from environment variable or returns default value.
// It validates the input and falls back to default on parse errors.
func ParseInt(key string, defaultValue int) int {
	logger := log.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		logDefault(logger, key, ok).Int("default", defaultValue).Msg("using default value")
		return defaultValue
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Int("default", defaultValue).
			Msg("invalid integer in environment variable, using default")
		return defaultValue
	}
	logger.Debug().Str("key", key).Int("value", i).Str("source", "environment").Msg("using environment variable")
	return i
}

// ParseFloat reads a float from environment variable or returns default value.
func ParseFloat(key string, defaultValue float64) float64 {
	logger := log.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		logDefault(logger, key, ok).Float64("default", defaultValue).Msg("using default value")
		return defaultValue
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Float64("default", defaultValue).
			Msg("invalid float in environment variable, using default")
		return defaultValue
	}
	logger.Debug().Str("key", key).Float64("value", f).Str("source", "environment").Msg("using environment variable")
	return f
}

// ParseBool reads a boolean from environment variable or returns default value.
// It accepts "true", "false", "1", "0", "yes", "no" (case-insensitive).
func ParseBool(key string, defaultValue bool) bool {
	logger := log.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		logDefault(logger, key, ok).Bool("default", defaultValue).Msg("using default value")
		return defaultValue
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes":
		logger.Debug().Str("key", key).Bool("value", true).Str("source", "environment").Msg("using environment variable")
		return true
	case "false", "0", "no":
		logger.Debug().Str("key", key).Bool("value", false).Str("source", "environment").Msg("using environment variable")
		return false
	}
	logger.Warn().
		Str("key", key).
		Str("value", v).
		Bool("default", defaultValue).
		Msg("invalid boolean in environment variable, using default")
	return defaultValue
}

func logDefault(logger zerolog.Logger, key string, setButEmpty bool) *zerolog.Event {
	ev := logger.Debug().Str("key", key).Str("source", "default")
	if setButEmpty {
		ev = ev.Bool("empty", true)
	}
	return ev
}
