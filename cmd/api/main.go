package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"ecom-checkout/internal/config"
	"ecom-checkout/internal/database"
	"ecom-checkout/internal/infrastructure/payment"
	"ecom-checkout/internal/repo"
	"ecom-checkout/internal/server"
	"ecom-checkout/internal/service"
	"ecom-checkout/internal/worker"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

func main() {
	cfg := config.Load()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("opening database")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(ctx, db); err != nil {
		logger.Fatal().Err(err).Msg("running migrations")
	}

	store := repo.NewPostgresStore(db)

	var gateway payment.Gateway
	if cfg.Provider == payment.ProviderRazorpay && cfg.Razorpay.Configured() {
		gateway = payment.NewRazorpayGateway(cfg.Razorpay, cfg.Currency)
	} else {
		gateway = payment.NewMockGateway(cfg.Currency)
	}
	logger.Info().Str("provider", gateway.Name()).Msg("payment gateway selected")

	verifier := payment.NewSignatureVerifier(cfg.Razorpay.KeySecret)

	fulfillSvc := service.NewFulfillmentService(store)
	checkoutSvc := service.NewCheckoutService(store, gateway)
	paymentSvc := service.NewPaymentService(store, verifier, fulfillSvc)

	reconciler := worker.NewReconciliationWorker(
		store,
		fulfillSvc,
		cfg.Reconcile.Interval,
		cfg.Reconcile.OlderThan,
		cfg.Reconcile.BatchSize,
	)
	go reconciler.Run(ctx)

	r := server.New(server.Config{
		Checkout: checkoutSvc,
		Payments: paymentSvc,
		Health:   database.New(db),
	})

	logger.Info().Str("addr", cfg.HTTPAddr).Msg("listening")
	if err := r.Run(cfg.HTTPAddr); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
