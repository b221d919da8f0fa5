package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/netalign/pkg/observability"
	"github.com/matzehuels/netalign/pkg/observability/prom"
	"github.com/matzehuels/netalign/pkg/server"
)

// apiCacheScope keeps API cache entries apart from CLI entries.
const apiCacheScope = "api:"

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve runs the alignment pipeline behind an HTTP API. Cache, report store
and server settings come from the config file and NETALIGN_* variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.settings()
			if addr == "" {
				addr = cfg.Server.Addr
			}
			table, err := cfg.GroupTable()
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			prom.New(reg).Register()
			defer observability.Reset()

			runner, err := c.newRunner(ctx, runnerOpts{noCache: noCache, scope: apiCacheScope})
			if err != nil {
				return err
			}
			defer c.closeRunner(runner)

			srv := server.New(runner, server.Options{
				Timeout:   cfg.Server.Timeout,
				MaxBody:   cfg.Server.MaxBody,
				Table:     table,
				Threshold: cfg.Groups.Threshold,
				Metrics:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
				Logger:    c.Logger,
			})
			printInfo("Serving on %s", StyleLink.Render(addr))
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the cache")

	return cmd
}
