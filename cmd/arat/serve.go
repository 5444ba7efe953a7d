package main

import (
	"net"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/psidex/arat/internal/enrollment"
	"github.com/psidex/arat/internal/graphs/vis"
	"github.com/psidex/arat/internal/health"
	"github.com/psidex/arat/internal/webserver"
)

var serveFlags struct {
	addr     string
	grpcAddr string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard",
	Long: `Serve the dashboard over HTTP, with the gRPC health service alongside it
when --grpc-addr (or grpcListen) is set. Runs until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", "", "HTTP listen address (default from config, 127.0.0.1:8501)")
	serveCmd.Flags().StringVar(&serveFlags.grpcAddr, "grpc-addr", "", "gRPC health listen address, empty disables")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	if serveFlags.addr != "" {
		cfg.Listen = serveFlags.addr
	}
	if serveFlags.grpcAddr != "" {
		cfg.GRPCListen = serveFlags.grpcAddr
	}

	client, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	monitor := health.NewMonitor(client, cfg.HealthInterval.Duration, logger)
	if err := monitor.Check(ctx); err != nil {
		return err
	}

	server := webserver.New(webserver.Options{
		Loader: enrollment.NewLoader(client, logger),
		Bounds: cfg.Limits,
		Health: monitor,
		Vis:    vis.DefaultOptions(),
		Logger: logger,
	})

	lis, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return err
	}

	var grpcLis net.Listener
	if cfg.GRPCListen != "" {
		if grpcLis, err = net.Listen("tcp", cfg.GRPCListen); err != nil {
			lis.Close()
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Serve(gctx, lis)
	})
	g.Go(func() error {
		return monitor.Run(gctx)
	})
	if grpcLis != nil {
		g.Go(func() error {
			return health.Serve(gctx, grpcLis, monitor, logger)
		})
	}

	return g.Wait()
}
