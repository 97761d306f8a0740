// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package health

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/masadchattha/QRCodeHelper/internal/config"
	"github.com/masadchattha/QRCodeHelper/internal/log"
)

// PerformStartupChecks prepares the data directory and reports problems the
// commands would otherwise hit later. A missing capture directory is only a
// warning: scanning reports it as an unsupported device.
func PerformStartupChecks(_ context.Context, cfg config.AppConfig) error {
	logger := log.WithComponent("startup-check")

	if err := checkDataDir(logger, cfg.DataDir); err != nil {
		return fmt.Errorf("data directory check failed: %w", err)
	}
	if dir := filepath.Dir(cfg.Permission.File); dir != cfg.DataDir {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("permission file directory: %w", err)
		}
	}

	switch info, err := os.Stat(cfg.Capture.Device); {
	case cfg.Capture.Device == "":
		logger.Debug().Msg("no capture directory configured")
	case err != nil:
		logger.Warn().Err(err).Str(log.FieldDevice, cfg.Capture.Device).Msg("capture directory unavailable")
	case !info.IsDir():
		logger.Warn().Str(log.FieldDevice, cfg.Capture.Device).Msg("capture device is not a directory")
	}
	return nil
}

func checkDataDir(logger zerolog.Logger, path string) error {
	if err := os.MkdirAll(path, 0o750); err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	probe := filepath.Join(path, ".write_test")
	if err := os.WriteFile(probe, []byte("ok"), 0o600); err != nil {
		return fmt.Errorf("directory is not writable: %s (error: %v)", path, err)
	}
	_ = os.Remove(probe)

	logger.Debug().Str("path", path).Msg("data directory is writable")
	return nil
}
