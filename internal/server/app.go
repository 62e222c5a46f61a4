// Package server initializes and runs the userauth server: it selects the
// user store, runs migrations, wires the services into the HTTP router and
// handles graceful shutdown.
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

	"github.com/dmitrijs2005/userauth/internal/logging"
	"github.com/dmitrijs2005/userauth/internal/server/auth"
	"github.com/dmitrijs2005/userauth/internal/server/config"
	"github.com/dmitrijs2005/userauth/internal/server/httpapi"
	"github.com/dmitrijs2005/userauth/internal/server/password"
	"github.com/dmitrijs2005/userauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/userauth/internal/server/services"
)

const startupTimeout = 30 * time.Second

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	codec       *auth.TokenCodec
	userService *services.UserService
}

// NewApp validates c and builds every collaborator. With a DSN the
// PostgreSQL store is opened and migrated; without one the in-memory store
// is used.
func NewApp(c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(os.Stdout, c.LogFormat, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	codec, err := auth.NewTokenCodec([]byte(c.SecretKey), c.TokenTTL)
	if err != nil {
		return nil, err
	}

	hasher, err := password.NewVerifier(c.BcryptCost)
	if err != nil {
		return nil, err
	}

	db, rm, err := openStore(c, logger)
	if err != nil {
		return nil, err
	}

	us := services.NewUserService(db, rm, codec, hasher, services.WithAdminUsers(c.AdminUsers...))

	return &App{config: c, logger: logger, db: db, codec: codec, userService: us}, nil
}

func openStore(c *config.Config, logger logging.Logger) (*sql.DB, repomanager.RepositoryManager, error) {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	if c.DatabaseDSN == "" {
		logger.Warn(ctx, "no database DSN configured, users are kept in memory")
		return nil, repomanager.NewInMemoryRepositoryManager(), nil
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db migration error: %w", err)
	}

	return db, rm, nil
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

func (app *App) health(ctx context.Context) error {
	if app.db == nil {
		return nil
	}
	return app.db.PingContext(ctx)
}

func (app *App) routerOptions() httpapi.RouterOptions {
	return httpapi.RouterOptions{
		Users:              app.userService,
		Codec:              app.codec,
		Logger:             app.logger,
		Health:             app.health,
		CORSAllowedOrigins: app.config.CORSAllowedOrigins,
	}
}

// Run serves HTTP until ctx is canceled or a termination signal arrives.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	srv := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, httpapi.NewRouter(app.routerOptions()))

	var (
		wg     sync.WaitGroup
		runErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := srv.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			runErr = err
			cancelFunc()
		}
	}()

	wg.Wait()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close error", "error", err)
		}
	}

	app.logger.Info(ctx, "App stopped")
	return runErr
}
