package cli

import (
	"context"
	"slices"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/internal/server"
	"github.com/matzehuels/kintree/pkg/observability/metrics"
	"github.com/matzehuels/kintree/pkg/person"
	"github.com/matzehuels/kintree/pkg/storage"
)

type serveOpts struct {
	addr      string
	format    string
	dataset   string
	noStore   bool
	noMetrics bool
}

func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{}

	cmd := &cobra.Command{
		Use:   "serve [input]",
		Short: "Run the HTTP API",
		Long: `Serve exposes the person store, forest, fold state and relationship
queries as a JSON API under /api/v1. The store starts empty, from the input
file, or from a stored dataset given with --dataset. Prometheus metrics are
served at /metrics.`,
		Example: `  kintree serve
  kintree serve --addr :9000 family.csv
  kintree serve --dataset smith`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return c.runServe(cmd.Context(), input, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&opts.format, "format", "", "input format, "+formatList())
	cmd.Flags().StringVar(&opts.dataset, "dataset", "", "stored dataset to load at startup")
	cmd.Flags().BoolVar(&opts.noStore, "no-store", false, "disable the dataset endpoints")
	cmd.Flags().BoolVar(&opts.noMetrics, "no-metrics", false, "do not serve /metrics")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, input string, opts serveOpts) error {
	logger := loggerFromContext(ctx)
	cfg := c.Config.Server

	addr := opts.addr
	if addr == "" {
		addr = cfg.Addr
	}
	dataset := opts.dataset
	if dataset == "" {
		dataset = cfg.Dataset
	}

	srvOpts := server.Options{
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
		SessionTTL:     cfg.SessionTTL,
		Tree:           c.tree,
	}
	if !opts.noMetrics {
		metrics.New(prometheus.DefaultRegisterer).Install()
		srvOpts.Metrics = promhttp.Handler()
	}

	var repo storage.Repository
	if !opts.noStore || dataset != "" {
		r, err := c.openRepository(ctx)
		if err != nil {
			return err
		}
		defer r.Close()
		repo = r
		if !opts.noStore {
			srvOpts.Repository = r
		}
	}

	store := person.NewStore()
	switch {
	case dataset != "":
		ds, err := repo.Load(ctx, dataset)
		if err != nil {
			return err
		}
		if err := store.Replace(ds.People); err != nil {
			return err
		}
		logger.Info("loaded dataset", "name", dataset, "people", store.Len())
	case input != "":
		people, err := c.readSource(ctx, input, opts.format)
		if err != nil {
			return err
		}
		if err := store.Replace(people); err != nil {
			return err
		}
		logger.Info("loaded input", "path", input, "people", store.Len())
	}

	if slices.Contains(cfg.AllowedOrigins, "*") {
		printWarning("CORS allows requests from any origin")
	}
	printInfo("Serving %d people on %s", store.Len(), StyleHighlight.Render(addr))
	return server.New(store, srvOpts).ListenAndServe(ctx, addr)
}
