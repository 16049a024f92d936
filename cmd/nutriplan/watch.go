package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func newWatchCmd(c *cli) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Import recipe files dropped into the inbox until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			w, err := c.app.Watcher()
			if err != nil {
				return err
			}
			if err := w.Start(ctx); err != nil {
				w.Stop()
				return err
			}
			defer w.Stop()

			if addr != "" {
				srv, bound, err := c.serveMetrics(addr)
				if err != nil {
					return err
				}
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = srv.Shutdown(shutdownCtx)
				}()
				fmt.Fprintf(cmd.OutOrStdout(), "metrics on http://%s/metrics\n", bound)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "watching %s\n", c.app.Config().Watch.Dir)

			<-ctx.Done()
			stats := w.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d files, %d items, %d errors\n", stats.Imported, stats.Items, stats.Errors)
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "metrics-addr", "", "serve /metrics and /debug/vars on this address")
	return cmd
}

// serveMetrics exposes the Prometheus registry and expvar on addr.
func (c *cli) serveMetrics(addr string) (*http.Server, string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, "", fmt.Errorf("listen %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{}))
	mux.Handle("/debug/vars", expvar.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.logger.Error("metrics server stopped", "error", err)
		}
	}()
	return srv, ln.Addr().String(), nil
}
