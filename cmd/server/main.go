package main

import (
	"database/sql"
	"flag"
	"log"
	"net/http"

	_ "github.com/lib/pq"

	httpapi "github.com/tobiasgatti02/Tolio-sub002/internal/api/http"
	"github.com/tobiasgatti02/Tolio-sub002/internal/config"
	"github.com/tobiasgatti02/Tolio-sub002/internal/events"
	"github.com/tobiasgatti02/Tolio-sub002/internal/jobs"
	"github.com/tobiasgatti02/Tolio-sub002/internal/ledger"
	"github.com/tobiasgatti02/Tolio-sub002/internal/logger"
	"github.com/tobiasgatti02/Tolio-sub002/internal/repository/postgres"
	"github.com/tobiasgatti02/Tolio-sub002/internal/scheduler"
	"github.com/tobiasgatti02/Tolio-sub002/internal/security"
	"github.com/tobiasgatti02/Tolio-sub002/internal/service"
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
	logger.Info("Starting Tolio escrow service...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
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

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	adminChecker := security.NewAdminKeyChecker(cfg.Escrow.AdminKeyHash)

	// Initialize Email Service
	emailSvc := service.NewEmailService(
		cfg.Email.SendGridAPIKey,
		cfg.Email.FromEmail,
		cfg.Email.FromName,
		cfg.Email.OpsEmail,
	)

	// Event sinks: structured log + audit trail + ops email on disputes
	sink := events.NewFanoutSink(
		events.NewLogSink(),
		events.NewAuditSink(store.EventRepository),
		service.NewEmailNotifier(emailSvc),
	)

	// Initialize Services
	custody := ledger.NewPostgresAdapter(db)
	escrowSvc := service.NewEscrowService(
		store.DealRepository,
		store.AssetRepository,
		store.EventRepository,
		custody,
		sink,
		cfg.Escrow.Arbitrator,
		cfg.Escrow.MarketplaceAccount,
	)
	gate := service.NewArbitrationGate(escrowSvc, cfg.Escrow.Arbitrator)
	assetSvc := service.NewAssetService(store.AssetRepository, sink)

	// Initialize HTTP handlers
	dealHandler := httpapi.NewDealHandler(escrowSvc, gate, cfg.Escrow.DefaultFeeBps)
	assetHandler := httpapi.NewAssetHandler(assetSvc)
	router := httpapi.NewRouter(dealHandler, assetHandler, tokenManager, adminChecker)

	// Start the overdue reminder scheduler alongside the server
	jobRunner := jobs.NewJobRunner(store.DealRepository, emailSvc, cfg)
	cronScheduler := scheduler.NewScheduler(jobRunner)
	cronScheduler.Start()
	defer cronScheduler.Stop()

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := http.ListenAndServe(cfg.GetServerAddress(), router); err != nil {
		logger.Error("HTTP server error", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}
