package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/psidex/arat/internal/enrollment"
	"github.com/psidex/arat/internal/graphs"
	"github.com/psidex/arat/internal/graphs/graphology"
	"github.com/psidex/arat/internal/graphs/vis"
)

var exportFlags struct {
	format string
	limit  int
	out    string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Load the graph once and write it to a file",
	Long: `Load the enrollment graph once and write it with one of the renderers:
  vis         standalone vis-network HTML page
  echarts     go-echarts force graph HTML page
  graphology  graphology serialized JSON
  json        plain {nodes, edges} JSON

The extension is appended to --out, use "-" to write to stdout.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFlags.format, "format", "f", "vis", "Output format (vis|echarts|graphology|json)")
	exportCmd.Flags().IntVarP(&exportFlags.limit, "limit", "l", enrollment.DefaultLimit, "Number of relationships to load")
	exportCmd.Flags().StringVarP(&exportFlags.out, "out", "o", "arat", "Output file name without extension")
}

func rendererFor(format string) (graphs.Renderer, error) {
	switch format {
	case "vis":
		return vis.NewVis(), nil
	case "echarts":
		return graphs.NewECharts(), nil
	case "graphology":
		return graphology.NewGraphology(), nil
	case "json":
		return graphs.JSON{}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	renderer, err := rendererFor(exportFlags.format)
	if err != nil {
		return err
	}

	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	client, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	limit := cfg.Limits.Clamp(exportFlags.limit)
	g, err := enrollment.NewLoader(client, logger).Load(ctx, limit)
	if err != nil {
		return err
	}
	if g.Empty() {
		logger.Warn("No enrollments found, is the database populated?")
	}

	if exportFlags.out == "-" {
		return renderer.Render(os.Stdout, g)
	}

	filename, err := graphs.RenderToFile(renderer, g, exportFlags.out)
	if err != nil {
		return err
	}
	logger.Info("Graph exported", "file", filename, "limit", limit, "nodes", len(g.Nodes), "edges", len(g.Edges))
	return nil
}
