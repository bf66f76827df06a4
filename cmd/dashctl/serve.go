package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-analytics-dashboard/components/dashboard/gorouter"
	"github.com/goliatone/go-analytics-dashboard/components/dashboard/httpapi"
)

type serveCmd struct {
	Addr      string `help:"Listen address (overrides DASHBOARD_ADDR)."`
	Transport string `help:"HTTP stack: chi or fiber (overrides DASHBOARD_TRANSPORT)."`
}

func (cmd *serveCmd) Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	if cmd.Addr != "" {
		cfg.Addr = cmd.Addr
	}
	if cmd.Transport != "" {
		cfg.Transport = strings.ToLower(cmd.Transport)
		if cfg.Transport != transportChi && cfg.Transport != transportFiber {
			return fmt.Errorf("dashctl: unsupported transport %q", cmd.Transport)
		}
	}
	logger := NewLogger(cfg)

	app, err := newApplication(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	logger.Info("dashboard starting", slog.String("addr", cfg.Addr), slog.String("transport", cfg.Transport))
	if cfg.Transport == transportFiber {
		return serveFiber(ctx, app)
	}
	return serveChi(ctx, app)
}

func serveChi(ctx context.Context, app *application) error {
	handler := httpapi.NewRouter(httpapi.RouterOptions{
		Handlers: &httpapi.Handlers{
			API:        app.executor,
			Controller: app.controller,
			Broadcast:  app.broadcast,
			Logger:     app.logger,
		},
		Logger:         app.logger,
		RateLimit:      app.cfg.RateLimit,
		RateWindow:     app.cfg.RateWindow,
		Production:     app.cfg.IsProduction(),
		MetricsHandler: app.metrics.Handler(),
		Middleware:     []func(http.Handler) http.Handler{app.metrics.Middleware},
	})
	server := newHTTPServer(app.cfg.Addr, handler, app.cfg.ReadTimeout)

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("dashctl: http server: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			app.logger.Error("graceful shutdown", slog.Any("error", err))
		}
		return nil
	})
	return group.Wait()
}

// newHTTPServer builds a server whose request contexts are cancelled once
// Shutdown starts, so event streams end instead of holding the drain open.
func newHTTPServer(addr string, handler http.Handler, readHeaderTimeout time.Duration) *http.Server {
	base, cancel := context.WithCancel(context.Background())
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return base },
	}
	server.RegisterOnShutdown(cancel)
	return server
}

// serveFiber returns when the context is cancelled; the adapter exposes no
// graceful shutdown, so in-flight requests end with the process.
func serveFiber(ctx context.Context, app *application) error {
	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:     server.Router(),
		Controller: app.controller,
		API:        app.executor,
		Broadcast:  app.broadcast,
		Pages:      app.service.Pages(),
	}); err != nil {
		return fmt.Errorf("dashctl: register routes: %w", err)
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(app.cfg.Addr)
	}()
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("dashctl: fiber server: %w", err)
		}
		return nil
	case <-ctx.Done():
		app.logger.Info("dashboard stopping")
		return nil
	}
}
