package main

import (
	"database/sql"
	"flag"
	"log"
	"net/http"

	_ "github.com/lib/pq"

	httpapi "habitat-pro/internal/api/http"
	"habitat-pro/internal/config"
	"habitat-pro/internal/logger"
	"habitat-pro/internal/repository/postgres"
	"habitat-pro/internal/service"
	"habitat-pro/internal/storage"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Habitat Pro backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "base_url", cfg.Server.BaseURL)
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize document archive
	archive, err := storage.NewLocalArchive(cfg.Documents.OutputDir)
	if err != nil {
		logger.Error("Failed to initialize document archive", "error", err)
		log.Fatalf("Failed to initialize document archive: %v", err)
	}

	// Initialize Services
	billingSvc := service.NewBillingService(
		store.ChargeRepository,
		store.LeaseRepository,
		store.PropertyRepository,
		cfg.Billing.Policy(),
		cfg.Billing.TokenValidityDays,
	)
	paymentSvc := service.NewPaymentService(
		store.PaymentRepository,
		store.ChargeRepository,
		cfg.Billing.TokenValidityDays,
	)
	generationSvc := service.NewGenerationService(
		billingSvc,
		store.LeaseRepository,
		store.ChargeRepository,
		store.RunLogRepository,
	)
	renewalSvc := service.NewRenewalService(
		store.RenewalRepository,
		store.LeaseRepository,
		cfg.Billing.TokenValidityDays,
	)
	renderer, err := service.NewDocumentRenderer(store.PaymentRepository, archive)
	if err != nil {
		logger.Error("Failed to initialize document renderer", "error", err)
		log.Fatalf("Failed to initialize document renderer: %v", err)
	}
	// Initialize HTTP handlers
	publicHandler := httpapi.NewPublicHandler(billingSvc, paymentSvc, renewalSvc, renderer)
	adminHandler := httpapi.NewAdminHandler(billingSvc, paymentSvc, generationSvc, renewalSvc)
	router := httpapi.NewRouter(publicHandler, adminHandler)

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := http.ListenAndServe(cfg.GetServerAddress(), router); err != nil {
		logger.Error("HTTP server error", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}
