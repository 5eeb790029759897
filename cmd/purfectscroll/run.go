package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/phroun/purfectscroll/cli"
	"github.com/phroun/purfectscroll/inhibit"
	"github.com/phroun/purfectscroll/internal/appconfig"
	"pkt.systems/pslog"
)

func newRunCmd(cfgPath *string) *cobra.Command {
	var logFile string
	var border string
	var speed float64
	var autoStart bool
	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Scroll a script file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appconfig.Load(*cfgPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("speed") {
				cfg.Scroll.Speed = speed
			}
			text, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read script: %w", err)
			}

			// The terminal belongs to the prompter while it runs
			logger, closeLog, err := openLog(logFile)
			if err != nil {
				return err
			}
			defer closeLog()

			locker, err := inhibit.ByName(logger, cfg.WakeLock.Inhibitor)
			if err != nil {
				return err
			}
			scroller := cfg.ScrollerConfig()
			if err := scroller.Validate(); err != nil {
				return fmt.Errorf("scroll: %w", err)
			}

			p, err := cli.New(cli.Options{
				Text:          string(text),
				Title:         filepath.Base(args[0]),
				Config:        scroller,
				FrameInterval: cfg.FrameInterval(),
				LineHeight:    cfg.Display.LineHeight,
				LineSpacing:   cfg.Display.LineSpacing,
				Margin:        cfg.Display.Margin,
				SpeedStep:     cfg.Scroll.SpeedStep,
				AutoStart:     autoStart,
				BorderStyle:   cli.ParseBorderStyle(border),
				ShowStatusBar: cfg.Display.ShowStatusBar,
				Theme:         cfg.Theme(),
				WakeLock:      locker,
				Logger:        logger,
			})
			if err != nil {
				return err
			}
			logger.Info("prompter started", "script", args[0], "speed", scroller.Speed, "inhibitor", cfg.WakeLock.Inhibitor)
			err = p.Run(cmd.Context())
			logger.Info("prompter stopped", "err", err)
			return ignoreCancel(cmd, err)
		},
	}
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file while the prompter runs")
	cmd.Flags().StringVar(&border, "border", "rounded", "border style: none, single, double, heavy, rounded")
	cmd.Flags().Float64Var(&speed, "speed", 0, "initial speed in pixels per second")
	cmd.Flags().BoolVar(&autoStart, "start", false, "start scrolling immediately")
	return cmd
}

func openLog(path string) (pslog.Logger, func(), error) {
	if path == "" {
		return pslog.NewWithOptions(io.Discard, pslog.Options{Mode: pslog.ModeStructured, NoColor: true}), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := pslog.NewWithOptions(f, pslog.Options{Mode: pslog.ModeStructured, NoColor: true})
	return logger, func() { _ = f.Close() }, nil
}

// ignoreCancel treats an interrupt as a normal exit
func ignoreCancel(cmd *cobra.Command, err error) error {
	if err != nil && cmd.Context().Err() != nil {
		return nil
	}
	return err
}
