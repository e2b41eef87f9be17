package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/legalnest/backend/internal/app"
	httpSrv "github.com/legalnest/backend/internal/http"
	"github.com/legalnest/backend/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := app.Bootstrap(cfgPath)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		metrics.MustRegister(prometheus.DefaultRegisterer)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := app.New(ctx, cfg, log)
		if err != nil {
			return fmt.Errorf("init: %w", err)
		}

		server := httpSrv.NewServer(cfg, httpSrv.Deps{
			Submissions: a.Service,
			Catalog:     a.Catalog,
			Limiter:     a.Limiter,
			Log:         log,
		})

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start(cfg.HTTP.Addr())
		}()
		log.Info("server started",
			zap.String("env", cfg.Env),
			zap.String("addr", cfg.HTTP.Addr()),
			zap.String("storage", a.Submissions.Mode().String()),
			zap.String("notify", cfg.Notify.Mode),
			zap.Bool("mail", a.Notifier.Configured()))

		select {
		case <-ctx.Done():
			log.Info("signal received, shutting down")
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("http server exited", zap.Error(err))
			}
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn("http shutdown", zap.Error(err))
		}
		// drains queued notifications
		if err := a.Close(shutdownCtx); err != nil {
			log.Warn("close dependencies", zap.Error(err))
		}
		return nil
	},
}
