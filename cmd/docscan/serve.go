package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ironsheep/docscan/internal/httpapi"
)

func (a *app) serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve POST /process-image for the web front end",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.HTTP.Addr = addr
			}
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	sc, err := a.newScanner()
	if err != nil {
		return err
	}

	hc := a.cfg.HTTP
	router := httpapi.NewRouter(sc, a.log, httpapi.Config{
		RequestTimeout: hc.RequestTimeout,
		MaxUploadBytes: hc.MaxUploadBytes,
		CORSOrigins:    hc.CORSOrigins,
		Version:        Version,
	})

	srv := &http.Server{
		Addr:         hc.Addr,
		Handler:      router,
		ReadTimeout:  hc.ReadTimeout,
		WriteTimeout: hc.WriteTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		a.log.Info().
			Str("addr", hc.Addr).
			Str("backend", sc.Backend().Name()).
			Str("version", Version).
			Msg("HTTP server listening")
		serverErrors <- srv.ListenAndServe()
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		a.log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), hc.GracefulShutdown)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error().Err(err).Msg("graceful shutdown failed")
		if err := srv.Close(); err != nil {
			a.log.Error().Err(err).Msg("forced shutdown failed")
		}
	}

	a.log.Info().Msg("server stopped")
	return nil
}
