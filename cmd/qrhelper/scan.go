// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/masadchattha/QRCodeHelper/internal/capture"
	"github.com/masadchattha/QRCodeHelper/internal/config"
	"github.com/masadchattha/QRCodeHelper/internal/domain/scan/lifecycle"
	"github.com/masadchattha/QRCodeHelper/internal/domain/scan/model"
	"github.com/masadchattha/QRCodeHelper/internal/domain/scan/session"
	"github.com/masadchattha/QRCodeHelper/internal/health"
	xglog "github.com/masadchattha/QRCodeHelper/internal/log"
	"github.com/masadchattha/QRCodeHelper/internal/permission"
	"github.com/masadchattha/QRCodeHelper/internal/present"
)

func newScanCmd(root *rootOptions) *cobra.Command {
	var (
		device string
		prompt string
		noBell bool
	)
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan QR codes from the capture device",
		Long: "Scan QR codes from frames dropped into the capture directory. Each decoded code " +
			"is shown until acknowledged with Enter; q closes the scanner.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := root.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("device") {
				cfg.Capture.Device = device
			}
			if cmd.Flags().Changed("prompt") {
				cfg.Permission.Prompt = prompt
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runScan(ctx, cfg, scanIO{
				in:   bufio.NewReader(cmd.InOrStdin()),
				out:  cmd.OutOrStdout(),
				bell: !noBell,
			})
		},
	}
	cmd.Flags().StringVar(&device, "device", "", "capture directory to watch for frames")
	cmd.Flags().StringVar(&prompt, "prompt", "", "camera permission prompt policy (ask, allow, deny)")
	cmd.Flags().BoolVar(&noBell, "no-bell", false, "do not ring the terminal bell on a scan")
	return cmd
}

type scanIO struct {
	in   *bufio.Reader
	out  io.Writer
	bell bool
}

// runScan drives one scan session until the user closes it, the session
// ends on its own or ctx is cancelled.
func runScan(ctx context.Context, cfg config.AppConfig, sio scanIO) error {
	logger := xglog.WithComponent("cli")
	if err := health.PerformStartupChecks(ctx, cfg); err != nil {
		return err
	}

	prompter, err := permission.NewPrompter(cfg.Permission.Prompt, sio.in, sio.out)
	if err != nil {
		return &exitError{code: exitUsage, err: err}
	}
	gate := permission.NewGate(permission.NewFileStore(cfg.Permission.File), prompter)
	device := capture.NewDirDevice(cfg.Capture.Device, capture.Options{
		FPS:       cfg.Capture.FPS,
		TryHarder: cfg.Capture.TryHarder,
	})
	term := present.NewTerminal(sio.out, sio.bell)

	// Stdin is shared with the permission prompt, so keyboard handling
	// starts only once the session has left REQUESTING.
	settled := make(chan struct{})
	var settleOnce sync.Once
	hook := func(tr lifecycle.Transition) {
		if tr.From != model.SessionRequesting {
			return
		}
		if tr.To == model.SessionRunning {
			_, _ = fmt.Fprintln(sio.out, "Scanning. Point the camera at a code, or press q to close.")
		}
		settleOnce.Do(func() { close(settled) })
	}

	screen := session.NewScreen(ctx, session.Deps{
		Gate:     gate,
		Device:   device,
		Sink:     term,
		Observer: term,
		Cue:      term,
	}, session.WithTransitionHook(hook))
	defer func() { _ = screen.Close() }()

	s := screen.Open()
	logger.Info().
		Str(xglog.FieldSessionID, s.ID()).
		Str(xglog.FieldDevice, device.Name()).
		Msg("scanner opened")
	if err := s.Start(); err != nil {
		return err
	}

	inputCtx, cancelInput := context.WithCancel(ctx)
	defer cancelInput()

	g := new(errgroup.Group)
	g.Go(func() error {
		<-s.Done()
		cancelInput()
		return nil
	})
	g.Go(func() error {
		select {
		case <-settled:
		case <-inputCtx.Done():
			return nil
		}
		err := term.RunInput(inputCtx, sio.in, s)
		if errors.Is(err, context.Canceled) || errors.Is(err, lifecycle.ErrSessionClosed) {
			return nil
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	results := term.Results()
	logger.Info().
		Str(xglog.FieldSessionID, s.ID()).
		Int("results", len(results)).
		Msg("scanner closed")
	return scanExit(s.Err())
}

// scanExit maps the terminal session error onto a process exit status.
func scanExit(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, lifecycle.ErrPermissionDenied):
		return &exitError{code: exitPermissionDenied}
	case errors.Is(err, lifecycle.ErrDeviceUnsupported), errors.Is(err, lifecycle.ErrDeviceFailure):
		return &exitError{code: exitUnsupported}
	default:
		return err
	}
}
