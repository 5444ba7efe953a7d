package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/psidex/arat/internal/config"
	"github.com/psidex/arat/internal/lib"
	"github.com/psidex/arat/internal/store"
)

var (
	configFile string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "arat",
	Short: "ARAT - student enrollment graph dashboard",
	Long: `ARAT reads (:Alumno)-[:INSCRITO_EN]->(:Grupo) relationships from Neo4j
and draws them as an interactive graph.

The database is reached through NEO4J_URI, NEO4J_USER and NEO4J_PASSWORD.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command, cancelling its context on SIGINT or SIGTERM.
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug|info|warn|error), overrides the config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(snapshotCmd)
}

// setup loads the config, applies the environment and flag overrides and builds the
// logger every command shares.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, err
	}
	cfg.ApplyEnv(os.LookupEnv)
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	logger, err := lib.NewLogger(os.Stderr, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// openStore connects to Neo4j and checks the server is reachable. The returned
// func closes the driver.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*store.Client, func(), error) {
	client, err := store.Connect(cfg.StoreConfig(), logger)
	if err != nil {
		return nil, nil, err
	}

	closeFn := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Close(ctx); err != nil {
			logger.Warn("Failed to close neo4j driver", "error", err)
		}
	}

	if err := client.Verify(ctx); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("could not reach %s: %w", cfg.Neo4j.URI, err)
	}

	logger.Info("Connected to neo4j", "uri", cfg.Neo4j.URI, "database", cfg.Neo4j.Database)
	return client, closeFn, nil
}
