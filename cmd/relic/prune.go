package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/relicbackup/relic/internal/app"
	"github.com/relicbackup/relic/internal/catalog"
	"github.com/relicbackup/relic/internal/logger"
)

var dryRun bool

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Apply the retention policy without taking a new backup",
	RunE:  runPrune,
}

func init() {
	pruneCmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the decision without deleting anything")
	rootCmd.AddCommand(pruneCmd)
}

func runPrune(cmd *cobra.Command, args []string) error {
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rep, err := app.New(cfg, log, tr, nil, nil).Prune(ctx, dryRun)
	if err != nil {
		return err
	}

	if dryRun {
		fmt.Printf("would keep %d, delete %d (%d unmanaged left alone)\n",
			len(rep.Decision.Keep), len(rep.Decision.Delete), len(rep.Decision.Unmanaged))
		for _, a := range rep.Decision.Delete {
			fmt.Printf("  delete %-8s %s (%s)\n", a.Location, a.Name, sizeOf(a))
		}
		return nil
	}

	fmt.Printf("deleted %d local, %d remote, %d errors\n",
		rep.Result.DeletedLocal, rep.Result.DeletedRemote, len(rep.Result.Errors))
	for _, ae := range rep.Result.Errors {
		fmt.Printf("  failed %s: %v\n", ae.Artifact.Name, ae.Err)
	}
	return nil
}

func sizeOf(a catalog.Artifact) string {
	if a.SizeBytes <= 0 {
		return "size unknown"
	}
	return humanize.Bytes(uint64(a.SizeBytes))
}
