package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/psidex/arat/internal/snapshot"
)

var snapshotFlags = snapshot.DefaultConfig()

var snapshotOut string

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Screenshot a running dashboard with headless Chrome",
	Args:  cobra.NoArgs,
	RunE:  runSnapshot,
}

func init() {
	f := snapshotCmd.Flags()
	f.StringVar(&snapshotFlags.URL, "url", snapshotFlags.URL, "Dashboard URL, may include ?limit=n")
	f.StringVarP(&snapshotOut, "out", "o", "arat.png", "PNG file to write")
	f.DurationVar(&snapshotFlags.Timeout, "timeout", snapshotFlags.Timeout, "Give up after this long")
	f.DurationVar(&snapshotFlags.Settle, "settle", snapshotFlags.Settle, "Time to let the layout settle before capturing")
	f.Int64Var(&snapshotFlags.Width, "width", snapshotFlags.Width, "Viewport width")
	f.Int64Var(&snapshotFlags.Height, "height", snapshotFlags.Height, "Viewport height")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	_, logger, err := setup()
	if err != nil {
		return err
	}

	res, err := snapshot.Take(cmd.Context(), snapshotFlags)
	if err != nil {
		return err
	}

	if err := os.WriteFile(snapshotOut, res.PNG, 0o644); err != nil {
		return err
	}
	logger.Info("Snapshot written",
		"file", snapshotOut, "nodes", res.NodeCount, "downloadedBytes", res.DownloadedBytes, "took", res.Took)
	return nil
}
