package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"taskmanager/app/auth"
	"taskmanager/app/config"
	"taskmanager/app/controllers"
	"taskmanager/app/llm"
	"taskmanager/app/routes"
	"taskmanager/app/services"
	"taskmanager/app/store"
)

// App is the wired service.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   store.Store
	auth    *auth.Authenticator
	handler http.Handler
}

// OpenStore connects to the backend selected by cfg.Store.Driver.
func OpenStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverNeo4j:
		driver, err := config.InitNeo4j(ctx, cfg.Neo4j)
		if err != nil {
			return nil, err
		}
		return store.NewNeo4jStore(driver, cfg.Neo4j.Database), nil
	case config.DriverSQLite:
		db, err := config.InitSQLite(cfg.SQLite)
		if err != nil {
			return nil, err
		}
		return store.NewSQLiteStore(db), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

// NewSuggestionService builds the suggestion service and its LLM client.
func NewSuggestionService(cfg config.LLMConfig, logger *slog.Logger) (*services.SuggestionService, error) {
	client, err := llm.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create llm client: %w", err)
	}
	return services.NewSuggestionService(cfg, client, logger), nil
}

// New opens the store, migrates it and wires every layer.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	authn, err := auth.New(cfg.Auth)
	if err != nil {
		return nil, err
	}
	suggestions, err := NewSuggestionService(cfg.LLM, logger)
	if err != nil {
		return nil, err
	}
	if cfg.LLM.APIKey == "" {
		logger.Warn("no language model API key configured, subtask suggestions will fail")
	}

	s, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close(ctx)
		return nil, fmt.Errorf("migrate %s store: %w", cfg.Store.Driver, err)
	}

	taskController := controllers.NewTaskController(
		services.NewTaskService(s),
		services.NewSubtaskService(s),
		logger,
	)
	handler := routes.NewRouter(routes.Controllers{
		Tasks:       taskController,
		Suggestions: controllers.NewSuggestionController(suggestions, logger),
		Auth:        controllers.NewAuthController(authn),
	}, authn, logger)

	return &App{
		cfg:     cfg,
		logger:  logger,
		store:   s,
		auth:    authn,
		handler: handler,
	}, nil
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler { return a.handler }

// Run serves on cfg.Server.Addr until ctx is cancelled, then shuts down
// gracefully.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.cfg.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      a.handler,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		ErrorLog:     slog.NewLogLogger(a.logger.Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server is running", "addr", ln.Addr().String(), "store", a.cfg.Store.Driver)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close releases the store.
func (a *App) Close(ctx context.Context) error {
	return a.store.Close(ctx)
}
