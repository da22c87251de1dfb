package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"shopbooking-backend/internal/cache"
	"shopbooking-backend/internal/config"
	"shopbooking-backend/internal/earnings"
	"shopbooking-backend/internal/jobs"
	"shopbooking-backend/internal/logger"
	"shopbooking-backend/internal/notification"
	"shopbooking-backend/internal/repository/postgres"
	"shopbooking-backend/internal/scheduler"
	"shopbooking-backend/internal/service"
)

func main() {
	_ = godotenv.Load(".env")

	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'roll-forward-payments', 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Shop Booking Cronjob Runner...", "log_level", cfg.Log.Level, "timezone", cfg.Shop.Timezone)

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

	// Notification chain
	channels, closeChannels := notification.BuildChannels(context.Background(), cfg.Notification)
	defer closeChannels()
	dispatcher := notification.NewDispatcher(
		channels,
		cfg.ChannelTimeout(),
		store.NotificationFailureRepository,
		cfg.Shop.Email,
		cfg.Notification.InternalAddresses,
	)
	templates := notification.NewTemplates(cfg.Shop.Name, cfg.Shop.Email, cfg.Location())

	// Initialize Services. Roll-forward never sees webhook deliveries, so
	// it needs no delivery cache.
	reconcileSvc := service.NewReconciliationService(
		store.BookingRepository,
		store.TransactionRepository,
		store.StaffRepository,
		store.PaymentDiagnosticRepository,
		cache.NewNoopDeliveryCache(),
		dispatcher,
		templates,
	)
	noticeSvc := service.NewNoticeService(
		store.BookingRepository,
		store.PaymentDiagnosticRepository,
		dispatcher,
		templates,
		earnings.NewCalendar(cfg.Location(), cfg.WeekStart()),
	)

	jobServices := &jobs.Services{
		Reconciliation: reconcileSvc,
		Reminders:      noticeSvc,
		Digest:         noticeSvc,
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(jobServices, cfg)

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

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "roll-forward-payments":
		jobRunner.RollForwardPayments()
	case "appointment-reminders":
		jobRunner.SendAppointmentReminders()
	case "unmatched-payment-digest":
		jobRunner.SendUnmatchedPaymentDigest()
	case "all":
		jobRunner.RunAll()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - roll-forward-payments\n")
		fmt.Printf("  - appointment-reminders\n")
		fmt.Printf("  - unmatched-payment-digest\n")
		fmt.Printf("  - all\n")
		os.Exit(1)
	}
}
