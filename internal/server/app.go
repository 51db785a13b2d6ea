// Package server wires configuration, storage, attachment backends and
// services together and runs the HTTP API until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/prontuario/internal/logging"
	"github.com/dmitrijs2005/prontuario/internal/server/attachments"
	"github.com/dmitrijs2005/prontuario/internal/server/auth"
	"github.com/dmitrijs2005/prontuario/internal/server/config"
	"github.com/dmitrijs2005/prontuario/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/prontuario/internal/server/rest"
	"github.com/dmitrijs2005/prontuario/internal/server/services"
	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const dbPingTimeout = 5 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	http   *rest.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger := logging.New(os.Stdout, c.LogLevel, c.LogFormat)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	store, err := attachments.New(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("attachments: %w", err)
	}

	hasher, err := auth.NewPasswordHasher(c.BcryptCost)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	tokens, err := auth.NewTokenManager(c.SecretKey, c.AccessTokenValidityDuration)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	srv := rest.NewServer(c, logger, rest.Deps{
		Users:         services.NewUserService(db, rm, hasher, tokens),
		Prescriptions: services.NewPrescriptionService(db, rm, store, logger),
		History:       services.NewHistoryService(db, rm),
		Tokens:        tokens,
		DB:            db,
	})

	logger.Info(ctx, "App initialized",
		"attachment_backend", c.AttachmentBackend,
		"token_ttl", c.AccessTokenValidityDuration.String(),
	)

	return &App{config: c, logger: logger, db: db, http: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until a signal arrives or the server fails, then closes the pool.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	err := app.http.Run(ctx)
	if err != nil {
		app.logger.Error(ctx, "HTTP server failed", "error", err)
	}

	if cerr := app.db.Close(); cerr != nil {
		app.logger.Error(ctx, "db close", "error", cerr)
	}
	app.logger.Info(ctx, "App stopped")

	return err
}
