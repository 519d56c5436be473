package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ewilliams-labs/tracklens/internal/adapters/rest"
	"github.com/ewilliams-labs/tracklens/internal/metrics"
)

func newServeCommand(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides server.addr")
	return cmd
}

// serve runs the API until ctx is cancelled, then drains in-flight requests
// for at most server.shutdown_timeout.
func (a *app) serve(ctx context.Context) error {
	rec := metrics.New()
	svc, err := a.catalog(rec)
	if err != nil {
		return err
	}

	handler := rest.NewHandler(svc, a.logger, rec, rest.Config{
		IndexName:      a.cfg.Elasticsearch.Index,
		AllowedOrigins: a.cfg.Server.AllowedOrigins,
		Version:        Version,
	})

	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: a.cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      a.cfg.Server.WriteTimeout,
		ErrorLog:          zap.NewStdLog(a.logger.Named("http")),
	}

	serverErr := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	a.logger.Info("api listening",
		zap.String("addr", a.cfg.Server.Addr),
		zap.Strings("elasticsearch", a.cfg.Elasticsearch.Addresses),
		zap.String("index", a.cfg.Elasticsearch.Index))

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		a.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("shutdown error", zap.Error(err))
			return err
		}
		return <-serverErr
	}
}
