// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/pollopollo-backend/internal/config"
	"github.com/javajoker/pollopollo-backend/internal/database"
	"github.com/javajoker/pollopollo-backend/internal/i18n"
	"github.com/javajoker/pollopollo-backend/internal/repository"
	"github.com/javajoker/pollopollo-backend/internal/router"
)

// defaultGBYTEUSD seeds an empty store so producer summaries have a rate.
const defaultGBYTEUSD = 20.0

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	setupLogging(cfg.Log)

	store, db, err := openStore(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize store")
	}
	defer database.Close(db)

	// Initialize i18n
	if err := i18n.Initialize(cfg.I18n.DefaultLocale); err != nil {
		logrus.WithError(err).Fatal("Failed to initialize i18n")
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := router.Initialize(store, cfg, nil)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		logrus.WithFields(logrus.Fields{
			"port":   cfg.Server.Port,
			"driver": cfg.Database.Driver,
		}).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Fatal("Server forced to shutdown")
	}

	logrus.Info("Server exited")
}

func setupLogging(cfg config.LogConfig) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if cfg.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// openStore opens the configured database, migrates it and wraps it in the
// gorm gateway.
func openStore(cfg *config.Config) (repository.Store, *gorm.DB, error) {
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.Driver == "sqlite" && cfg.Database.SQLitePath == ":memory:" {
		logrus.Warn("Using an in-memory SQLite database, data is lost on restart")
	}

	if err := database.RunMigrations(db); err != nil {
		database.Close(db)
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if cfg.Database.Seed {
		if err := database.SeedInitialData(db, defaultGBYTEUSD); err != nil {
			database.Close(db)
			return nil, nil, fmt.Errorf("failed to seed database: %w", err)
		}
	}
	return repository.NewGormStore(db), db, nil
}
