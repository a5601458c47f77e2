// Package server wires configuration, storage, services and the REST API
// together and runs them until the process is signalled to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/issuetracker/internal/logging"
	"github.com/dmitrijs2005/issuetracker/internal/server/config"
	"github.com/dmitrijs2005/issuetracker/internal/server/httpapi"
	"github.com/dmitrijs2005/issuetracker/internal/server/ratelimit"
	"github.com/dmitrijs2005/issuetracker/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/issuetracker/internal/server/services"
)

// purgeInterval is how often expired revoked tokens are removed.
const purgeInterval = time.Hour

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	limiter     *ratelimit.RateLimiter
	userService *services.UserService
	httpServer  *httpapi.Server
}

// OpenDB opens the PostgreSQL pool and verifies connectivity.
func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return db, nil
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := OpenDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db}

	var limiter httpapi.Limiter
	if c.RedisURL != "" {
		rl, err := ratelimit.New(ctx, c.RedisURL)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		app.limiter = rl
		limiter = rl
	} else {
		logger.Warn(ctx, "redis URL not set, auth rate limiting disabled")
	}

	app.userService = services.NewUserService(db, rm, c)
	svc := httpapi.Services{
		Users:       app.userService,
		Projects:    services.NewProjectService(db, rm, c),
		Sprints:     services.NewSprintService(db, rm, c),
		Issues:      services.NewIssueService(db, rm, c),
		Analytics:   services.NewAnalyticsService(db, rm, c),
		Attachments: services.NewAttachmentService(db, rm, c),
	}

	app.httpServer = httpapi.NewServer(c, logger, svc, limiter, db)
	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
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

// purgeRevokedTokens drops denylist rows whose tokens have expired anyway.
func (app *App) purgeRevokedTokens(ctx context.Context) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.userService.PurgeRevokedTokens(ctx)
			if err != nil {
				app.logger.Error(ctx, "purge revoked tokens failed", "error", err)
				continue
			}
			if n > 0 {
				app.logger.Info(ctx, "purged revoked tokens", "count", n)
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.purgeRevokedTokens(ctx)
	}()

	wg.Wait()

	if app.limiter != nil {
		if err := app.limiter.Close(); err != nil {
			app.logger.Error(context.Background(), "redis close failed", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "db close failed", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}
