package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/relicbackup/relic/internal/app"
	"github.com/relicbackup/relic/internal/logger"
)

var strict bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one backup cycle: archive, upload, rotate, notify",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when the upload fails")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logger.Must(debug, cfg.LogPath)
	defer log.Sync()

	tr, err := buildTransport(cfg, log)
	if err != nil {
		return err
	}
	notif, err := buildNotifier(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rep, err := app.New(cfg, log, tr, notif, nil).Run(ctx)
	if err != nil {
		return err
	}
	if strict && rep.UploadErr != nil {
		return rep.UploadErr
	}
	return nil
}
