package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vietanh2810/election-admin/internal/api"
	"github.com/vietanh2810/election-admin/internal/config"
	"github.com/vietanh2810/election-admin/internal/db"
	"github.com/vietanh2810/election-admin/internal/logger"
	"github.com/vietanh2810/election-admin/internal/metrics"
	"github.com/vietanh2810/election-admin/internal/repository/dao"
)

const (
	configPath      = "./cmd/app/config.yml"
	shutdownTimeout = 10 * time.Second
)

func Start() error {
	conf, err := config.LoadAndWatch(configPath, onConfigChange, onConfigError)
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}
	if err = logger.SetLevel(conf.API.LogLevel); err != nil {
		return fmt.Errorf("failed to set log level -> %w", err)
	}

	var postgresDB *gorm.DB
	if conf.DatabaseURL != "" {
		postgresDB, err = db.OpenPostgresWithURL(conf.DatabaseURL)
	} else {
		postgresDB, err = db.OpenPostgres(conf.Postgres)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}

	if err = dao.InitTables(postgresDB); err != nil {
		return fmt.Errorf("failed to migrate tables -> %w", err)
	}

	metrics.Register()

	s, err := api.NewServer(conf, postgresDB)
	if err != nil {
		return fmt.Errorf("failed to initialize server -> %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go s.Hub.Run(ctx)

	srv := &http.Server{
		Addr:              ":" + s.Config.API.Port,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info(fmt.Sprintf("starting server at %v", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err = <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start the server -> %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zap.L().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down the server -> %w", err)
	}

	return nil
}

// Only the log level is applied live. Other settings need a restart.
func onConfigChange(conf *config.AppConfig) {
	if err := logger.SetLevel(conf.API.LogLevel); err != nil {
		zap.L().Warn("ignoring log level from config", zap.Error(err))
		return
	}

	zap.L().Info("config reloaded", zap.String("log_level", logger.Level().String()))
}

func onConfigError(err error) {
	zap.L().Warn("config reload failed", zap.Error(err))
}
