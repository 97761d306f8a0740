// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/masadchattha/QRCodeHelper/internal/domain/scan/model"
	"github.com/masadchattha/QRCodeHelper/internal/permission"
)

func newSettingsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage application settings",
	}
	cmd.AddCommand(newCameraSettingsCmd(root))
	return cmd
}

func newCameraSettingsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "camera [show|allow|deny|reset]",
		Short:     "Show or change the camera access decision",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"show", "allow", "deny", "reset"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := root.load(cmd)
			if err != nil {
				return err
			}
			gate := permission.NewGate(permission.NewFileStore(cfg.Permission.File), nil)

			action := "show"
			if len(args) == 1 {
				action = args[0]
			}
			var next model.AuthorizationState
			switch action {
			case "allow":
				next = model.AuthGranted
			case "deny":
				next = model.AuthDenied
			case "reset":
				next = model.AuthUndetermined
			default:
				state, err := gate.Status(cmd.Context())
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "camera: %s\n", describe(state))
				return err
			}
			if err := gate.SetDecision(cmd.Context(), next); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "camera: %s\n", describe(next))
			return err
		},
	}
	return cmd
}

func describe(state model.AuthorizationState) string {
	switch state {
	case model.AuthGranted:
		return "allowed"
	case model.AuthDenied:
		return "denied"
	default:
		return "not determined (you will be asked on the next scan)"
	}
}
