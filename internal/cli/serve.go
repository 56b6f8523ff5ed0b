package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stratagraph/internal/server"
	"github.com/matzehuels/stratagraph/pkg/registry"
	"github.com/matzehuels/stratagraph/pkg/render/nodelink"
)

const shutdownTimeout = 5 * time.Second

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve [file|pattern]...",
		Short: "Serve graphs over a read-only HTTP API",
		Long: `Load documents and serve them as JSON. Documents listed under [server]
load in the config file are loaded before the arguments.

Endpoints: /health, /rules, /graphs, /graphs/{id}, /graphs/{id}/nodes,
/graphs/{id}/nodes/{node}, /graphs/{id}/chronology, /graphs/{id}/diagram.svg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Server.Addr
			}
			files, err := expandInputs(append(append([]string{}, cfg.Server.Load...), args...))
			if err != nil {
				return err
			}
			reg, err := c.newRegistry(noCache)
			if err != nil {
				return err
			}
			srv := server.New(reg, server.Options{
				Logger: c.Logger,
				Render: nodelink.Options{
					RankDir:  cfg.Render.RankDir,
					Epochs:   cfg.Render.Epochs,
					Paradata: cfg.Render.Paradata,
				},
			})
			for _, f := range files {
				id, err := srv.LoadFile(cmd.Context(), f, registry.LoadOptions{})
				if err != nil {
					return err
				}
				c.Logger.Info("loaded", "file", f, "graph", id)
			}
			return c.listen(cmd.Context(), addr, srv)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the import cache")

	return cmd
}

// listen serves h on addr until ctx ends, then shuts down gracefully.
func (c *CLI) listen(ctx context.Context, addr string, h http.Handler) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	hs := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- hs.Serve(ln) }()
	printSuccess("Serving on http://%s", ln.Addr())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
