package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/raysh454/employeesapp/internal/employees"
	"github.com/raysh454/employeesapp/internal/logging"
	"github.com/raysh454/employeesapp/internal/server"
)

// ShutdownTimeout bounds how long in-flight requests get to finish.
const ShutdownTimeout = 15 * time.Second

// Application is the runtime state of the serve command: config, logger,
// the store and the web app on top of it.
type Application struct {
	Config *Config
	Logger logging.Logger

	server *server.Server
}

// NewApplication opens the store and builds the web app over it.
func NewApplication(ctx context.Context, cfg *Config, logger logging.Logger) (*Application, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		return nil, errors.New("app: nil logger provided")
	}

	repo, err := employees.NewSQLiteRepository(ctx, cfg.Store, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	srv, err := server.NewServer(cfg.Server, repo, logger)
	if err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("new server: %w", err)
	}

	return &Application{
		Config: cfg,
		Logger: logger,
		server: srv,
	}, nil
}

// Handler exposes the web app, mostly for tests.
func (a *Application) Handler() http.Handler {
	return a.server
}

// Serve accepts connections on l until ctx is cancelled, then shuts down
// gracefully and closes the store.
func (a *Application) Serve(ctx context.Context, l net.Listener) error {
	if a == nil {
		return errors.New("application is nil")
	}

	hs := a.server.HTTPServer()
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("application starting", logging.Field{Key: "addr", Value: l.Addr().String()})
		errCh <- hs.Serve(l)
	}()

	var serveErr error
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	case <-ctx.Done():
		a.Logger.Info("application shutdown initiated")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			a.Logger.Warn("http shutdown returned error", logging.Err(err))
		}
	}

	if err := a.server.Close(); err != nil {
		a.Logger.Warn("closing store", logging.Err(err))
	}
	return serveErr
}

// ListenAndServe listens on the configured address and calls Serve.
func (a *Application) ListenAndServe(ctx context.Context) error {
	l, err := net.Listen("tcp", a.Config.Server.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.Config.Server.ListenAddr, err)
	}
	return a.Serve(ctx, l)
}
