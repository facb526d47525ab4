package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"ecotech-dashboard/internal/config"
)

const (
	hookTimeout   = 10 * time.Second
	reloadTimeout = 30 * time.Second
)

// Hook is a named lifecycle callback. The name only shows up in logs.
type Hook struct {
	Name string
	Fn   func(ctx context.Context) error
}

// GracefulServer runs the dashboard until SIGINT or SIGTERM. SIGHUP
// runs the reload hooks, which swap in a freshly loaded dataset while
// the server keeps serving the old one.
type GracefulServer struct {
	server   *http.Server
	logger   *slog.Logger
	config   *config.Config
	mu       sync.RWMutex
	shutdown []Hook
	reloads  []Hook
}

func NewGracefulServer(server *http.Server, logger *slog.Logger, config *config.Config) *GracefulServer {
	return &GracefulServer{
		server: server,
		logger: logger,
		config: config,
	}
}

// RegisterShutdownHook adds fn to the hooks run concurrently with the
// HTTP server shutdown.
func (gs *GracefulServer) RegisterShutdownHook(name string, fn func(ctx context.Context) error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.shutdown = append(gs.shutdown, Hook{Name: name, Fn: fn})
}

// RegisterReloadHook adds fn to the hooks run in order on SIGHUP.
func (gs *GracefulServer) RegisterReloadHook(name string, fn func(ctx context.Context) error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.reloads = append(gs.reloads, Hook{Name: name, Fn: fn})
}

func (gs *GracefulServer) hooks(reload bool) []Hook {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	if reload {
		return append([]Hook(nil), gs.reloads...)
	}
	return append([]Hook(nil), gs.shutdown...)
}

func (gs *GracefulServer) ListenAndServe() error {
	serverErrors := make(chan error, 1)

	go func() {
		gs.logger.Info("starting dashboard server",
			"addr", gs.server.Addr,
			"read_timeout", gs.config.Server.ReadTimeout,
			"write_timeout", gs.config.Server.WriteTimeout,
		)
		serverErrors <- gs.server.ListenAndServe()
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(signals)

	for {
		select {
		case err := <-serverErrors:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil

		case sig := <-signals:
			if sig == syscall.SIGHUP {
				ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
				if err := gs.reload(ctx); err != nil {
					gs.logger.Error("reload failed, keeping current dataset", "error", err)
				}
				cancel()
				continue
			}

			gs.logger.Info("shutdown signal received", "signal", sig)
			ctx, cancel := context.WithTimeout(context.Background(), gs.config.Server.ShutdownTimeout)
			defer cancel()
			return gs.stop(ctx)
		}
	}
}

// reload runs every reload hook in registration order. A failing hook
// does not stop the ones after it.
func (gs *GracefulServer) reload(ctx context.Context) error {
	hooks := gs.hooks(true)
	gs.logger.Info("reloading", "hooks", len(hooks))

	var errs []error
	for _, h := range hooks {
		start := time.Now()
		if err := h.Fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("reload hook %s: %w", h.Name, err))
			continue
		}
		gs.logger.Info("reload hook completed", "hook", h.Name, "duration", time.Since(start))
	}
	return errors.Join(errs...)
}

// stop drains the HTTP server and runs the shutdown hooks side by side.
// Each hook gets at most hookTimeout of the overall deadline.
func (gs *GracefulServer) stop(ctx context.Context) error {
	gs.logger.Info("starting graceful shutdown", "timeout", gs.config.Server.ShutdownTimeout)

	var g errgroup.Group
	for _, h := range gs.hooks(false) {
		g.Go(func() error {
			hookCtx, cancel := context.WithTimeout(ctx, hookTimeout)
			defer cancel()

			if err := h.Fn(hookCtx); err != nil {
				gs.logger.Error("shutdown hook failed", "hook", h.Name, "error", err)
				return fmt.Errorf("shutdown hook %s: %w", h.Name, err)
			}
			gs.logger.Debug("shutdown hook completed", "hook", h.Name)
			return nil
		})
	}
	g.Go(func() error {
		if err := gs.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("HTTP server shutdown failed: %w", err)
		}
		gs.logger.Info("HTTP server stopped gracefully")
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err := <-done:
		gs.logger.Info("graceful shutdown completed")
		return err
	case <-ctx.Done():
		gs.logger.Warn("shutdown timeout exceeded, forcing exit")
		return ctx.Err()
	}
}
