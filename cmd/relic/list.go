package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/relicbackup/relic/internal/app"
	"github.com/relicbackup/relic/internal/logger"
	"github.com/relicbackup/relic/internal/retention"
)

var includeRemote bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List backup artifacts and their retention buckets",
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&includeRemote, "remote", false, "include artifacts in the remote store")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
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

	a := app.New(cfg, log, tr, nil, nil)
	artifacts, err := a.ListArtifacts(ctx, includeRemote)
	if err != nil {
		return err
	}

	now := a.Now()
	policy := a.Policy()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tLOCATION\tSIZE\tBUCKET")
	for _, art := range artifacts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			art.Name, art.Location, sizeOf(art), retention.Bucketize(art, now, policy))
	}
	return w.Flush()
}
