// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/masadchattha/QRCodeHelper/internal/config"
	"github.com/masadchattha/QRCodeHelper/internal/generator"
)

func newGenerateCmd(root *rootOptions) *cobra.Command {
	var (
		output  string
		scale   int
		margin  int
		ecLevel string
		charset string
	)
	cmd := &cobra.Command{
		Use:   "generate TEXT",
		Short: "Render TEXT as a QR code PNG",
		Long: "Render TEXT as a QR code PNG. The image is written to --output, or to stdout " +
			"when --output is \"-\".",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := root.load(cmd)
			if err != nil {
				return err
			}
			opts := config.GeneratorOptions(cfg)
			flags := cmd.Flags()
			if flags.Changed("scale") {
				opts.Scale = scale
			}
			if flags.Changed("margin") {
				opts.Margin = margin
			}
			if flags.Changed("ec") {
				opts.ECLevel = ecLevel
			}
			if flags.Changed("charset") {
				opts.Charset = charset
			}

			gen, err := generator.New(opts)
			if err != nil {
				return &exitError{code: exitUsage, err: err}
			}
			art, err := gen.Generate(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, generator.ErrUnencodable) || errors.Is(err, generator.ErrTooLong) {
					return &exitError{code: exitUsage, err: err}
				}
				return err
			}
			if art == nil {
				return &exitError{code: exitUsage, err: errors.New("nothing to encode: text is empty")}
			}

			if output == "-" {
				data, err := art.PNG()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := art.WriteFile(output); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%dx%d px, %d modules)\n", output, art.Size(), art.Size(), art.Modules)
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "qrcode.png", "output PNG path, or - for stdout")
	cmd.Flags().IntVar(&scale, "scale", generator.DefaultScale, "pixels per module")
	cmd.Flags().IntVar(&margin, "margin", generator.DefaultMargin, "quiet zone in modules")
	cmd.Flags().StringVar(&ecLevel, "ec", generator.DefaultECLevel, "error correction level (L, M, Q, H)")
	cmd.Flags().StringVar(&charset, "charset", generator.CharsetASCII, "accepted charset (ascii, iso-8859-1, utf-8)")
	return cmd
}
