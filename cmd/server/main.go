package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	grpcapi "shopbooking-backend/internal/api/grpc"
	"shopbooking-backend/internal/api/grpc/interceptor"
	httpapi "shopbooking-backend/internal/api/http"
	"shopbooking-backend/internal/cache"
	"shopbooking-backend/internal/config"
	"shopbooking-backend/internal/earnings"
	"shopbooking-backend/internal/logger"
	"shopbooking-backend/internal/notification"
	"shopbooking-backend/internal/payment"
	"shopbooking-backend/internal/repository/postgres"
	"shopbooking-backend/internal/security"
	"shopbooking-backend/internal/service"
)

func main() {
	// Local secrets; a missing .env is fine
	_ = godotenv.Load(".env")

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
	logger.Info("Starting Shop Booking Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "http_address", cfg.GetServerAddress(), "grpc_address", cfg.GetGRPCAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	logger.Info("Shop configuration", "name", cfg.Shop.Name, "timezone", cfg.Shop.Timezone, "week_start", cfg.Shop.WeekStart)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Database
	logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
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

	// Webhook delivery cache
	deliveries := cache.NewNoopDeliveryCache()
	if cfg.Redis.Enabled {
		if client := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); client != nil {
			defer client.Close()
			deliveries = cache.NewRedisDeliveryCache(client, cfg.DeliveryTTL())
		} else {
			logger.Warn("Redis unavailable, webhook deliveries are deduplicated by the database only", "addr", cfg.Redis.Addr)
		}
	}

	// Notification chain
	channels, closeChannels := notification.BuildChannels(ctx, cfg.Notification)
	defer closeChannels()
	dispatcher := notification.NewDispatcher(
		channels,
		cfg.ChannelTimeout(),
		store.NotificationFailureRepository,
		cfg.Shop.Email,
		cfg.Notification.InternalAddresses,
	)
	templates := notification.NewTemplates(cfg.Shop.Name, cfg.Shop.Email, cfg.Location())
	calendar := earnings.NewCalendar(cfg.Location(), cfg.WeekStart())

	// Payment processor
	gateway := payment.NewUnconfiguredGateway()
	if cfg.Payment.OmiseSecretKey != "" {
		omiseGateway, err := payment.NewOmiseGateway(cfg.Payment.OmisePublicKey, cfg.Payment.OmiseSecretKey, cfg.Payment.SourceType, cfg.Payment.ReturnURI)
		if err != nil {
			logger.Error("Failed to initialize payment gateway", "error", err)
			log.Fatalf("Failed to initialize payment gateway: %v", err)
		}
		gateway = omiseGateway
	} else {
		logger.Warn("Payment processor keys not set, payment links are disabled")
	}
	verifier := payment.NewVerifier(cfg.Payment.WebhookSecret, cfg.WebhookTolerance())

	// Initialize Services
	bookingSvc := service.NewBookingService(
		store.BookingRepository,
		store.TransactionRepository,
		store.StaffRepository,
		dispatcher,
		templates,
		cfg.Payment.DefaultCurrency,
	)
	reconcileSvc := service.NewReconciliationService(
		store.BookingRepository,
		store.TransactionRepository,
		store.StaffRepository,
		store.PaymentDiagnosticRepository,
		deliveries,
		dispatcher,
		templates,
	)
	earningsSvc := service.NewEarningsService(
		store.TransactionRepository,
		store.StaffRepository,
		calendar,
		service.ShopTargets{
			Daily:   decimal.NewFromFloat(cfg.Shop.DailyTarget),
			Weekly:  decimal.NewFromFloat(cfg.Shop.WeeklyTarget),
			Monthly: decimal.NewFromFloat(cfg.Shop.MonthlyTarget),
		},
	)
	linkSvc := service.NewPaymentLinkService(
		store.BookingRepository,
		gateway,
		cfg.Payment.InvoicePrefix,
		cfg.Payment.DefaultCurrency,
		cfg.Shop.Name,
	)
	noteSvc := service.NewNotificationService(store.NotificationFailureRepository, dispatcher)

	// Initialize HTTP handlers
	router := httpapi.NewRouter(httpapi.Handlers{
		Webhook:       httpapi.NewWebhookHandler(verifier, reconcileSvc),
		Bookings:      httpapi.NewBookingHandler(bookingSvc, linkSvc, cfg.Location()),
		Earnings:      httpapi.NewEarningsHandler(earningsSvc, cfg.Location()),
		Payments:      httpapi.NewPaymentHandler(linkSvc),
		Notifications: httpapi.NewNotificationHandler(noteSvc),
		DB:            store,
	}, security.NewTokenValidator(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience))

	httpServer := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErr := make(chan error, 2)
	go func() {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("http server: %w", err)
		}
	}()

	// Set up gRPC health server
	var grpcServer *grpc.Server
	if addr := cfg.GetGRPCAddress(); addr != "" {
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			logger.Error("Failed to listen", "error", err, "address", addr)
			log.Fatalf("Failed to listen: %v", err)
		}
		grpcServer = grpc.NewServer(grpc.UnaryInterceptor(interceptor.Unary()))
		health := grpcapi.NewHealthChecker(store)
		health.Register(grpcServer)

		// Register reflection service for grpcurl
		reflection.Register(grpcServer)

		go health.Run(ctx, 15*time.Second)
		go func() {
			logger.Info("gRPC health server listening", "address", addr)
			if err := grpcServer.Serve(lis); err != nil {
				serverErr <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-serverErr:
		logger.Error("Server failed", "error", err)
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	logger.Info("Server stopped. Goodbye!")
}
