package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/florianilch/llm-openai-proxy/internal/server"
	"github.com/florianilch/llm-openai-proxy/internal/translate"
)

// App orchestrates the lifecycle of the proxy server.
type App struct {
	cfg        *Config
	httpServer *http.Server
}

// New creates a new App instance, wiring internal/server's router against
// the configured upstream (or echo mode, when cfg.Upstream.BaseURL is
// empty, spec §4.1).
func New(cfg *Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	handler := server.New(
		server.Config{
			ServiceName:     cfg.ServiceName,
			ServiceVersion:  cfg.ServiceVersion,
			Models:          cfg.Models,
			ProxyKey:        cfg.ProxyKey,
			UpstreamBaseURL: cfg.Upstream.BaseURL,
			UpstreamKey:     cfg.Upstream.Key,
		},
		translate.NewHTTPClient(nil),
		translate.SystemClock(),
		translate.UUIDGenerator(),
		slog.Default(),
	)

	return &App{
		cfg: cfg,
		httpServer: &http.Server{
			Handler:      handler,
			ReadTimeout:  30 * time.Second,  // inbound: read the entire client request
			WriteTimeout: 15 * time.Minute,  // inbound: bound on writing the entire response, still generous for SSE
			IdleTimeout:  DefaultConfigIdleTimeout, // spec §5: must accommodate slow "thinking" models
		},
	}, nil
}

// Start starts the HTTP server and blocks until shutdown is triggered.
// Uses errgroup for runtime error monitoring, then shuts the HTTP server
// down gracefully within cfg.Shutdown.Timeout, the same shape as the
// teacher's Proxy.Start/Shutdown pair.
func (a *App) Start(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	address := a.cfg.Server.Host + ":" + strconv.FormatUint(uint64(a.cfg.Server.Port), 10)

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	a.httpServer.BaseContext = func(net.Listener) context.Context { return gCtx }

	slog.InfoContext(gCtx, "starting proxy server", "address", address)

	errCh := make(chan error, 1)
	go func() {
		err := a.httpServer.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	g.Go(func() error {
		select {
		case err := <-errCh:
			if err != nil {
				slog.ErrorContext(gCtx, "server runtime error", "error", err)
				return fmt.Errorf("server: %w", err)
			}
			return nil
		case <-gCtx.Done():
			return nil
		}
	})

	slog.InfoContext(gCtx, "application ready", "address", address)

	runtimeErr := g.Wait()

	slog.InfoContext(gCtx, "shutting down services")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Shutdown.Timeout)
	defer cancel()

	var errs []error
	if runtimeErr != nil {
		errs = append(errs, fmt.Errorf("runtime: %w", runtimeErr))
	}
	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "server shutdown failed", "error", err)
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	slog.Info("application stopped")
	return nil
}
