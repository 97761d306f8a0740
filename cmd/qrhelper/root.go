// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/masadchattha/QRCodeHelper/internal/config"
	xglog "github.com/masadchattha/QRCodeHelper/internal/log"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "qrhelper",
		Short:         "Generate and scan QR codes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "f", "", "path to YAML configuration file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override the configured log level")

	cmd.AddCommand(
		newGenerateCmd(opts),
		newScanCmd(opts),
		newServeCmd(opts),
		newSettingsCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// resolveConfigPath falls back to config.yaml in $QRHELPER_DATA_DIR when no
// --config was given.
func (o *rootOptions) resolveConfigPath() string {
	if p := strings.TrimSpace(o.configPath); p != "" {
		return p
	}
	dataDir := strings.TrimSpace(os.Getenv(config.EnvDataDir))
	if dataDir == "" {
		return ""
	}
	auto := filepath.Join(dataDir, "config.yaml")
	if _, err := os.Stat(auto); err == nil {
		return auto
	}
	return ""
}

// load resolves configuration and configures the global logger from it.
func (o *rootOptions) load(cmd *cobra.Command) (config.AppConfig, *config.Loader, error) {
	loader := config.NewLoader(o.resolveConfigPath(), version)
	cfg, err := loader.Load()
	if err != nil {
		return cfg, nil, err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	xglog.Reconfigure(xglog.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Output:  cmd.ErrOrStderr(),
		Service: "qrhelper",
		Version: version,
	})
	return cfg, loader, nil
}
