package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/gitscope/pkg/server"
)

// serveCommand creates the serve command for the HTTP exploration API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the object graph over HTTP",
		Long: `Serve the object graph over HTTP for visualization front-ends.

Routes:
  GET /roots         every root identifier
  GET /nodes/{id}    one node with its edges
  GET /index         the staging index entries
  GET /graph         a walked subgraph (start, depth, max_nodes, format)
  GET /healthz       liveness probe

The listen address defaults to [serve] addr in the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.config.Serve.Addr
			}

			engine, closeFn, err := c.openEngine()
			if err != nil {
				return err
			}
			defer closeFn()

			printInfo("Serving %s on %s", StyleValue.Render(c.repoPath), StyleHighlight.Render("http://"+addr))
			return server.New(engine, c.Logger).Run(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:7420)")

	return cmd
}
