// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hearthline/commerce-api/internal/config"
	"github.com/hearthline/commerce-api/internal/database"
	"github.com/hearthline/commerce-api/internal/handlers"
	"github.com/hearthline/commerce-api/internal/logger"
	"github.com/hearthline/commerce-api/internal/repositories/mongodb"
	"github.com/hearthline/commerce-api/internal/repositories/postgres"
	"github.com/hearthline/commerce-api/internal/router"
	"github.com/hearthline/commerce-api/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	log, err := logger.Init(cfg.Log)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize logger")
	}

	// Initialize relational store
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}
	defer database.Close(db)

	if err := database.RunMigrations(db); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}

	// Initialize document store
	client, err := database.ConnectMongo(cfg.Mongo)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer database.CloseMongo(client)

	catalogDB := client.Database(cfg.Mongo.Database)
	indexCtx, cancel := context.WithTimeout(context.Background(), cfg.Mongo.Timeout())
	if err := database.EnsureCatalogIndexes(indexCtx, catalogDB); err != nil {
		log.WithError(err).Warn("Failed to ensure catalog indexes")
	}
	cancel()

	storage, err := services.NewStorageService(cfg.AWS, logger.Component(log, "storage"))
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize storage")
	}

	deps := router.Dependencies{
		Checks: map[string]handlers.HealthCheck{
			"postgres": database.Ping(db),
			"mongo":    database.PingMongo(client),
		},
		Audit: postgres.NewAuditStore(db),
		Log:   logger.Component(log, "http"),
	}
	if cfg.Images.Domain == "" {
		cfg.Images.Domain = imageDomain(cfg, storage)
	}
	if storage.Local() {
		deps.Assets = storage
	}

	catalog := mongodb.NewCatalog(client, cfg.Mongo.Database)
	ledger := postgres.NewLedger(db)
	images := services.NewImageService(storage, cfg.Images, logger.Component(log, "images"))

	deps.Products = services.NewProductService(catalog, ledger, images, logger.Component(log, "products"))
	deps.Orders = services.NewOrderService(ledger, logger.Component(log, "orders"))

	r := router.Initialize(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.WithField("port", cfg.Server.Port).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	log.Info("Server exited")
}

// imageDomain picks the public prefix for image URLs when none is configured.
func imageDomain(cfg *config.Config, storage *services.StorageService) string {
	if !storage.Local() {
		return strings.TrimSuffix(storage.PublicBaseURL(), "/")
	}
	return fmt.Sprintf("http://%s:%s/uploads", cfg.Server.Host, cfg.Server.Port)
}
