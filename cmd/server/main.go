package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mentorlink/booking-service/internal/application/services"
	"github.com/mentorlink/booking-service/internal/config"
	"github.com/mentorlink/booking-service/internal/infrastructure/persistence"
	"github.com/mentorlink/booking-service/internal/infrastructure/persistence/postgres"
	"github.com/mentorlink/booking-service/internal/infrastructure/stripe"
	"github.com/mentorlink/booking-service/internal/interfaces/rest/handlers"
	"github.com/mentorlink/booking-service/internal/interfaces/rest/middleware"
	"github.com/mentorlink/booking-service/internal/notify"
	"github.com/mentorlink/booking-service/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting booking service",
		"port", cfg.Server.Port,
		"log_level", cfg.Logger.Level,
	)

	ctx := context.Background()
	db, err := persistence.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	bookingRepo := postgres.NewBookingRepository(db)
	slotRepo := postgres.NewSlotRepository(db)
	tc := postgres.NewTransactionCoordinator(db)

	stripeClient := stripe.NewClient(cfg.Stripe)
	gateway := stripe.NewRetryClient(stripeClient, cfg.Retry)

	notifier := notify.NewLogNotifier(logger)

	checkoutPolicy := services.CheckoutPolicy{
		PlatformFeeRate: cfg.Payments.PlatformFeeRate,
		Currency:        cfg.Payments.Currency,
		SuccessURL:      cfg.Payments.SuccessURL,
		CancelURL:       cfg.Payments.CancelURL,
	}

	bookingService := services.NewBookingService(tc, gateway, notifier, checkoutPolicy, logger)
	cancelService := services.NewCancelService(tc, bookingRepo, gateway, notifier, logger)
	completeService := services.NewCompleteService(tc, notifier, logger)
	queryService := services.NewQueryService(bookingRepo)
	slotService := services.NewSlotService(tc, slotRepo, logger)
	webhookService := services.NewWebhookService(tc, notifier, logger)

	h := handlers.NewHandlers(
		bookingService,
		cancelService,
		completeService,
		queryService,
		slotService,
		webhookService,
		cfg.Stripe,
		logger,
	)

	mux := http.NewServeMux()
	h.Register(mux, middleware.Auth(cfg.Auth.JWTSecret, logger))

	handler := middleware.Recovery(logger)(mux)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Timeout(cfg.Server.ReadTimeout)(handler)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	expirationWorker := worker.NewExpirationWorker(
		bookingRepo,
		tc,
		cfg.Payments.PendingTimeout,
		cfg.Worker.Interval,
		cfg.Worker.BatchSize,
		logger,
	)

	completionWorker := worker.NewCompletionWorker(
		bookingRepo,
		tc,
		cfg.Worker.Interval,
		cfg.Worker.BatchSize,
		logger,
	)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	go expirationWorker.Start(workerCtx)
	go completionWorker.Start(workerCtx)

	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	cancelWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
