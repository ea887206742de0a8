package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "github.com/projuktisheba/bottling-erp-api/api/handlers"
	"github.com/projuktisheba/bottling-erp-api/internal/config"
	"github.com/projuktisheba/bottling-erp-api/internal/dbrepo"
	"github.com/projuktisheba/bottling-erp-api/internal/driver"
	"github.com/projuktisheba/bottling-erp-api/internal/logger"
	"github.com/projuktisheba/bottling-erp-api/internal/models"
	"go.uber.org/zap"
)

// application is the receiver for the various parts of the application
type application struct {
	config   models.Config
	logger   *zap.Logger
	version  string
	Handlers *api.HandlerRepo
	DB       *dbrepo.DBRepository
	Server   *http.Server
}

var app *application

// newServer builds the HTTP server for the configured port.
func (app *application) newServer() *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Port),
		Handler:           app.routes(),
		IdleTimeout:       30 * time.Second,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      2 * time.Minute,
	}
}

// serve listens on app.Server, which must be built before serve runs.
func (app *application) serve() error {
	app.logger.Info("starting HTTP back end server",
		zap.String("env", app.config.Env),
		zap.Int("port", app.config.Port),
		zap.String("version", app.version))
	return app.Server.ListenAndServe()
}

// ShutdownServer gracefully shuts down the server
func (app *application) ShutdownServer() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	app.logger.Info("shutting down the server gracefully")
	if err := app.Server.Shutdown(ctx); err != nil {
		app.logger.Error("server forced to shutdown", zap.Error(err))
		return err
	}

	app.logger.Info("server exited gracefully")
	return nil
}

// RunServer is the application entry point
func RunServer(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: "stdout"})
	defer log.Sync()

	// Connection to database
	dbConn, err := driver.NewPgxPool(cfg.DSN())
	if err != nil {
		log.Error("database connection failed", zap.Error(err))
		return err
	}
	defer dbConn.Close()
	log.Info("connected to database")

	if err := dbrepo.Migrate(ctx, dbConn); err != nil {
		log.Error("schema migration failed", zap.Error(err))
		return err
	}

	dbRepo := dbrepo.NewDBRepository(dbConn)

	//Initiate handlers
	app = &application{
		config:   cfg,
		logger:   log,
		version:  models.APPVersion,
		Handlers: api.NewHandlerRepo(dbRepo, cfg, log),
		DB:       dbRepo,
	}
	app.Server = app.newServer()

	serveErr := make(chan error, 1)
	go func() {
		if err := app.serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for a shutdown signal or a failed listener
	stop, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	select {
	case err := <-serveErr:
		if err != nil {
			log.Error("error starting server", zap.Error(err))
			return err
		}
		return nil
	case <-stop.Done():
	}
	return app.ShutdownServer()
}

// Stop server from outer module
func StopServer() error {
	if app == nil || app.Server == nil {
		return nil
	}
	return app.ShutdownServer()
}
