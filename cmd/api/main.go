package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/pfm/internal/account"
	accountStore "github.com/MrJamesThe3rd/pfm/internal/account/store"
	"github.com/MrJamesThe3rd/pfm/internal/config"
	"github.com/MrJamesThe3rd/pfm/internal/credential"
	"github.com/MrJamesThe3rd/pfm/internal/database"
	"github.com/MrJamesThe3rd/pfm/internal/export"
	pfmHttp "github.com/MrJamesThe3rd/pfm/internal/http"
	analyticsHandler "github.com/MrJamesThe3rd/pfm/internal/http/analytics"
	authHandler "github.com/MrJamesThe3rd/pfm/internal/http/auth"
	exportHandler "github.com/MrJamesThe3rd/pfm/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/pfm/internal/http/importcsv"
	matchingHandler "github.com/MrJamesThe3rd/pfm/internal/http/matching"
	paymentHandler "github.com/MrJamesThe3rd/pfm/internal/http/payment"
	"github.com/MrJamesThe3rd/pfm/internal/http/ratelimit"
	txHandler "github.com/MrJamesThe3rd/pfm/internal/http/transaction"
	"github.com/MrJamesThe3rd/pfm/internal/importer"
	"github.com/MrJamesThe3rd/pfm/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/pfm/internal/matching/store"
	"github.com/MrJamesThe3rd/pfm/internal/payment"
	"github.com/MrJamesThe3rd/pfm/internal/payment/razorpay"
	"github.com/MrJamesThe3rd/pfm/internal/transaction"
	txStore "github.com/MrJamesThe3rd/pfm/internal/transaction/store"
)

const shutdownTimeout = 15 * time.Second

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.App.LogLevel})))

	if err := run(cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.ConnectionString(), cfg.Pool())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	tokens := credential.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.ResetTokenTTL)

	var (
		accountService = account.NewService(
			accountStore.New(db), credential.NewHasher(cfg.Auth.BcryptCost), tokens, cfg.Quota.MonthlyLimit)
		transactionService = transaction.NewService(txStore.New(db), transaction.QuotaPolicy{
			Limit:        cfg.Quota.MonthlyLimit,
			CountPremium: cfg.Quota.CountPremium,
		})
		matchingService = matching.NewService(matchingStore.New(db))
		paymentService  = payment.NewService(
			razorpay.New(cfg.Payment.BaseURL, cfg.Payment.KeyID, cfg.Payment.KeySecret, cfg.Payment.Timeout),
			accountService,
			payment.Config{
				KeySecret: cfg.Payment.KeySecret,
				Price:     cfg.Payment.PremiumPrice,
				Currency:  cfg.Payment.Currency,
			})
		exportService = export.NewService(transactionService)
		importService = importer.NewService(transactionService, matchingService)
	)

	apiLimiter := ratelimit.New(ratelimit.Config{Requests: cfg.RateLimit.APIPerMinute, Window: time.Minute})
	defer apiLimiter.Stop()

	authLimiter := ratelimit.New(ratelimit.Config{Requests: cfg.RateLimit.AuthPerMinute, Window: time.Minute})
	defer authLimiter.Stop()

	router := pfmHttp.New(pfmHttp.Handlers{
		Auth:         authHandler.NewHandler(accountService),
		Transactions: txHandler.NewHandler(transactionService),
		Analytics:    analyticsHandler.NewHandler(transactionService, accountService),
		Payment:      paymentHandler.NewHandler(paymentService, accountService, cfg.Payment.KeyID),
		Matching:     matchingHandler.NewHandler(matchingService),
		Export:       exportHandler.NewHandler(exportService),
		Import:       importHandler.NewHandler(importService),
	}, pfmHttp.Options{
		Tokens:         tokens,
		APILimiter:     apiLimiter,
		AuthLimiter:    authLimiter,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		DB:             db,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting server", "name", cfg.App.Name, "addr", srv.Addr)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listening: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
