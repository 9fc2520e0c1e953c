package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/crebit/ramp-service/internal/config"
	"github.com/crebit/ramp-service/internal/dedup"
	"github.com/crebit/ramp-service/internal/handler"
	"github.com/crebit/ramp-service/internal/logging"
	"github.com/crebit/ramp-service/internal/metrics"
	"github.com/crebit/ramp-service/internal/middleware"
	"github.com/crebit/ramp-service/internal/notify"
	"github.com/crebit/ramp-service/internal/provider"
	"github.com/crebit/ramp-service/internal/quote"
	"github.com/crebit/ramp-service/internal/repository"
	"github.com/crebit/ramp-service/internal/service"
	"github.com/crebit/ramp-service/internal/settlement"
)

func main() {
	// Missing .env is fine in deployed environments.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("ramp-api", cfg.LogLevel, cfg.AppEnv)

	db, err := repository.Connect(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	repository.ConfigurePool(db, repository.PoolSettings{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.DBConnMaxLifetimeS) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.DBConnMaxIdleTimeS) * time.Second,
	})

	m := metrics.New()

	client := provider.NewClient(provider.Config{
		BaseURL: cfg.ProviderBaseURL,
		APIKey:  cfg.ProviderAPIKey,
		Timeout: time.Duration(cfg.ProviderTimeoutS) * time.Second,
	}, m)

	users := repository.NewUserRepository(db)
	events := repository.NewWebhookEventRepository(db)
	transactions := repository.NewTransactionRepository(db)

	tracker := settlement.NewTracker()
	slack := notify.NewSlack(cfg.SlackWebhookURL)

	processor := service.NewWebhookProcessor(tracker, client, users, events, transactions, slack, m, service.ChainConfig{
		FallbackExternalAccountID: cfg.FallbackExternalAccountID,
		OperatorWalletID:          cfg.OperatorWalletID,
		ServiceFeeUSDC:            decimal.NewFromInt(cfg.ServiceFeeUSDC),
	})
	ramp := service.NewRamp(client, dedup.NewLookup(client))
	composer := quote.NewComposer(client)

	webhookHandler := handler.NewWebhookHandler(processor)
	quoteHandler := handler.NewQuoteHandler(composer, cfg.LocalCurrency)
	customerHandler := handler.NewCustomerHandler(ramp)
	accountHandler := handler.NewExternalAccountHandler(ramp)
	walletHandler := handler.NewWalletHandler(ramp)
	payinHandler := handler.NewPayinHandler(ramp)
	authHandler := handler.NewAuthHandler(users, cfg.JWTSecret, time.Duration(cfg.JWTExpiryH)*time.Hour)
	healthHandler := handler.NewHealthHandler(db)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", healthHandler.Liveness)
	mux.HandleFunc("GET /health/ready", healthHandler.Readiness)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// The provider pushes lifecycle events here; inbound calls carry no
	// signature, so the route stays outside the auth chain.
	mux.HandleFunc("POST /api/webhook/payout-events", webhookHandler.ReceivePayoutEvents)
	mux.HandleFunc("GET /api/webhook-status/{id}", webhookHandler.WebhookStatus)

	authed := middleware.Auth(cfg.JWTSecret)
	mux.Handle("POST /api/create-quote", authed(http.HandlerFunc(quoteHandler.CreateQuote)))
	mux.Handle("POST /api/create-customer", authed(http.HandlerFunc(customerHandler.CreateCustomer)))
	mux.Handle("POST /api/create-wallet", authed(http.HandlerFunc(walletHandler.CreateWallet)))
	mux.Handle("POST /api/create-external-account", authed(http.HandlerFunc(accountHandler.CreateExternalAccount)))
	mux.Handle("POST /api/create-pix-payment", authed(http.HandlerFunc(payinHandler.CreatePixPayment)))
	mux.Handle("GET /api/transaction-status/{id}", authed(http.HandlerFunc(payinHandler.TransactionStatus)))

	root := middleware.Tracing(middleware.Logging(middleware.Recovery(mux)))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           root,
		ReadTimeout: 15 * time.Second,
		// Webhook handling chains provider calls synchronously, so the write
		// window has to cover several upstream round trips.
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
