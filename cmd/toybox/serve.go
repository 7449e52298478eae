package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/KDL-umass/Toybox"
	"github.com/KDL-umass/Toybox/internal/presentation/tui"
	httpAdapter "github.com/KDL-umass/Toybox/pkg/adapters/http"
	"github.com/KDL-umass/Toybox/pkg/middleware"
	"github.com/KDL-umass/Toybox/pkg/observability"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the configured engine over HTTP",
	Long: `Exposes the configured engine (usually a snapshot file) on the HTTP engine
protocol so remote toybox clients can open sessions against it. Prometheus
metrics are served on /metrics, on a separate listener when metrics.addr is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := buildStack(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		addr := s.cfg.HTTP.Addr
		if a, _ := cmd.Flags().GetString("addr"); a != "" {
			addr = a
		}

		tui.PrintBanner(cmd.ErrOrStderr(), strings.TrimSpace(toybox.Version))

		reg := prometheus.NewRegistry()
		metrics := observability.NewMetrics(reg)
		engine := middleware.Chain(s.engine, middleware.Logging(s.logger), middleware.Instrument(metrics))

		metricsHandler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})

		r := chi.NewRouter()
		if s.cfg.Metrics.Addr == "" {
			r.Handle("/metrics", metricsHandler)
		}
		r.Mount("/", httpAdapter.NewHandler(engine, httpAdapter.WithLogger(s.logger)))

		servers := []*http.Server{{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}}
		if s.cfg.Metrics.Addr != "" {
			mr := chi.NewRouter()
			mr.Handle("/metrics", metricsHandler)
			servers = append(servers, &http.Server{
				Addr:              s.cfg.Metrics.Addr,
				Handler:           mr,
				ReadHeaderTimeout: 10 * time.Second,
			})
		}

		// Channel to listen for errors coming from the listeners.
		serverErrors := make(chan error, len(servers))

		for _, srv := range servers {
			go func() {
				s.logger.Info("Starting Toybox server", "addr", srv.Addr, "game", s.cfg.Game, "engine", s.cfg.Engine.Kind)
				serverErrors <- srv.ListenAndServe()
			}()
		}

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			s.logger.Info("Start shutdown", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			var errs []error
			for _, srv := range servers {
				if err := srv.Shutdown(ctx); err != nil {
					s.logger.Warn("Graceful shutdown did not complete", "addr", srv.Addr, "err", err)
					errs = append(errs, srv.Close())
				}
			}
			s.logger.Info("Toybox servers stopped")
			return errors.Join(errs...)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (overrides http.addr)")
}
