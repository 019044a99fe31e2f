package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpserver "github.com/tendant/grantfunnel/internal/http"
	"github.com/tendant/grantfunnel/internal/httputil"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := a.newServer()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, server)
		},
	}
}

// newServer builds the HTTP server for the web UI.
func (a *app) newServer() (*http.Server, error) {
	cookie := httputil.DefaultCookieConfig()
	cookie.Secure = a.cfg.CookieSecure

	router, err := httpserver.NewRouter(httpserver.RouterConfig{
		Logger:          a.logger,
		Client:          a.client,
		PageSize:        a.cfg.PageSize,
		Cookie:          cookie,
		RateLimit:       a.cfg.RateLimit,
		SecurityHeaders: a.cfg.SecurityHeaders,
		Validation:      a.cfg.Validation,
	})
	if err != nil {
		return nil, err
	}

	return &http.Server{
		Addr:         a.cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, nil
}

// serve runs server until ctx is done, then shuts it down gracefully.
func (a *app) serve(ctx context.Context, server *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting server", "addr", server.Addr, "api_base_url", a.cfg.APIBaseURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			a.logger.Error("server error", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server shutdown error", "error", err)
		return err
	}

	a.logger.Info("server stopped")
	return nil
}
