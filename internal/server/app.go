// Package server initializes and runs the application: it opens the database,
// applies migrations, wires the services and serves the HTTP API until an OS
// signal triggers graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/hfiles/backend/internal/logging"
	"github.com/hfiles/backend/internal/server/blobstore"
	"github.com/hfiles/backend/internal/server/config"
	"github.com/hfiles/backend/internal/server/httpapi"
	"github.com/hfiles/backend/internal/server/repositories/repomanager"
	"github.com/hfiles/backend/internal/server/services"
	"github.com/hfiles/backend/internal/server/sessions"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	sessions   *sessions.MemoryStore
	httpServer *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	slog := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slog)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	blobs := blobstore.NewS3Store(cfg)
	store := sessions.NewMemoryStore(cfg.SessionIdleTimeout)

	us := services.NewUserService(db, m, blobs, logger)
	fs := services.NewFileService(db, m, blobs, logger)

	httpServer := httpapi.NewServer(cfg, logger, us, fs, store)

	return &App{
		config:     cfg,
		logger:     logger,
		db:         db,
		sessions:   store,
		httpServer: httpServer,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	// Expired sessions are reaped in the background for as long as the app
	// runs; Resolve also expires lazily, so the janitor only bounds memory.
	app.sessions.StartJanitor(ctx)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}
}
