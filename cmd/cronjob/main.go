package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"habitat-pro/internal/config"
	"habitat-pro/internal/jobs"
	"habitat-pro/internal/logger"
	"habitat-pro/internal/repository/postgres"
	"habitat-pro/internal/scheduler"
	"habitat-pro/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'generate-charges', 'all-daily')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Habitat Pro cronjob runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
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

	// Initialize transports
	emailTransport := buildEmailTransport(cfg)
	messageTransport := service.NewWhatsAppLinkTransport(cfg.WhatsApp.CountryCode)

	// Initialize Services
	billingService := service.NewBillingService(
		store.ChargeRepository,
		store.LeaseRepository,
		store.PropertyRepository,
		cfg.Billing.Policy(),
		cfg.Billing.TokenValidityDays,
	)
	generationService := service.NewGenerationService(
		billingService,
		store.LeaseRepository,
		store.ChargeRepository,
		store.RunLogRepository,
	)
	notificationService := service.NewNotificationService(
		store.ChargeRepository,
		store.NotificationLogRepository,
		emailTransport,
		messageTransport,
		cfg.Server.BaseURL,
		cfg.Notifications.Enabled,
	)
	renewalService := service.NewRenewalService(
		store.RenewalRepository,
		store.LeaseRepository,
		cfg.Billing.TokenValidityDays,
	)

	jobServices := &jobs.Services{
		Billing:      billingService,
		Generation:   generationService,
		Notification: notificationService,
		Renewal:      renewalService,
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(db, store, jobServices, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// buildEmailTransport picks the configured email provider.
func buildEmailTransport(cfg *config.Config) service.EmailTransport {
	timeout := cfg.Notifications.TransportTimeout()
	if cfg.Email.Provider == "sendgrid" {
		logger.Info("Using SendGrid email transport")
		return service.NewSendGridTransport(cfg.Email.SendGridAPIKey, cfg.Email.From, cfg.Email.FromName, timeout)
	}
	logger.Info("Using SMTP email transport", "host", cfg.Email.SMTPHost, "port", cfg.Email.SMTPPort)
	return service.NewSMTPTransport(
		cfg.Email.SMTPHost, cfg.Email.SMTPPort,
		cfg.Email.SMTPUser, cfg.Email.SMTPPassword,
		cfg.Email.From, cfg.Email.FromName, timeout,
	)
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "refresh-overdue":
		jobRunner.RefreshOverdueCharges()
	case "send-reminders":
		jobRunner.SendDueReminders()
	case "urgent-sweep":
		jobRunner.SendUrgentReminders()
	case "detect-renewals":
		jobRunner.DetectExpiringLeases()
	case "generate-charges":
		jobRunner.GenerateMonthlyCharges()
	case "cleanup":
		jobRunner.CleanupRunLogs()
	case "all-daily":
		jobRunner.RunAllDailyJobs()
	case "all-monthly":
		jobRunner.RunMonthlyJobs()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - refresh-overdue\n")
		fmt.Printf("  - send-reminders\n")
		fmt.Printf("  - urgent-sweep\n")
		fmt.Printf("  - detect-renewals\n")
		fmt.Printf("  - generate-charges\n")
		fmt.Printf("  - cleanup\n")
		fmt.Printf("  - all-daily\n")
		fmt.Printf("  - all-monthly\n")
		os.Exit(1)
	}
}
