// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/masadchattha/QRCodeHelper/internal/config"
)

func newConfigCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "validate",
			Short: "Validate the configuration file and environment",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				path := root.resolveConfigPath()
				if _, err := config.NewLoader(path, version).Load(); err != nil {
					return &exitError{code: 1, err: fmt.Errorf("configuration error: %w", err)}
				}
				name := path
				if name == "" {
					name = "configuration (defaults and environment)"
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", name)
				return err
			},
		},
		&cobra.Command{
			Use:   "dump",
			Short: "Print the effective configuration as YAML",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := config.NewLoader(root.resolveConfigPath(), version).Load()
				if err != nil {
					return err
				}
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(config.ToFileConfig(cfg)); err != nil {
					return err
				}
				return enc.Close()
			},
		},
	)
	return cmd
}
