package cli

import (
	"net"

	"github.com/spf13/cobra"

	"github.com/agenthands/papersift/internal/metrics"
	"github.com/agenthands/papersift/internal/server"
)

type serveOptions struct {
	run  runFlags
	port string
}

func newServeCommand(a *app) *cobra.Command {
	o := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve <papers.json>",
		Short: "Serve clusters, hubs, search and validation over HTTP",
		Long: `Load a corpus once and answer read-only queries over it:
  GET /healthz /clusters /communities /hubs /papers?entity= /expand /stream /validate /metrics
Clustering parameters can be overridden per request with the resolution,
random_seed and use_topics query parameters.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd, args[0], o)
		},
	}
	o.run.register(cmd)
	cmd.Flags().StringVar(&o.port, "port", "", "listen port (default from config or $PORT)")
	return cmd
}

func (a *app) runServe(cmd *cobra.Command, input string, o *serveOptions) error {
	papers, err := a.loadPapers(cmd, input)
	if err != nil {
		return err
	}
	opts, err := a.options(cmd, &o.run)
	if err != nil {
		return err
	}

	m := metrics.NewCollector("papersift")
	p, err := a.pipeline(&o.run, m)
	if err != nil {
		return err
	}
	srv, err := server.NewServer(papers, p, opts, a.cfg.Server.CacheSize, a.logger, m)
	if err != nil {
		return err
	}

	port := a.cfg.Server.Port
	if o.port != "" {
		port = o.port
	}
	return srv.Run(cmd.Context(), net.JoinHostPort("", port))
}
