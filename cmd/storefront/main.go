package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/nmaisuradze/storefront/internal/cart"
	"github.com/nmaisuradze/storefront/internal/checkout"
	"github.com/nmaisuradze/storefront/internal/gateway"
	"github.com/nmaisuradze/storefront/internal/session"
	"github.com/nmaisuradze/storefront/pkg/config"
	"github.com/nmaisuradze/storefront/pkg/env"
	"github.com/nmaisuradze/storefront/pkg/logger"
	"github.com/nmaisuradze/storefront/pkg/metrics"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	registry := prometheus.NewRegistry()
	client, err := gateway.NewClient(cfg.API.BaseURL,
		gateway.WithBearerToken(cfg.API.BearerToken),
		gateway.WithLogger(logg),
		gateway.WithMetrics(metrics.NewGatewayMetrics(registry)),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to build cart api client", err)
		os.Exit(1)
	}

	store, err := cart.NewStore(client, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build cart store", err)
		os.Exit(1)
	}

	engine, err := checkout.NewEngine(store, client, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build checkout engine", err)
		os.Exit(1)
	}

	gate := session.NewGate(nil)
	if email := env.Get("STOREFRONT_USER_EMAIL", ""); email != "" {
		gate.SetUser(&session.User{Email: email})
		engine.PrefillEmail(email)
	}

	ctx := logg.WithField(context.Background(), "env", cfg.App.Env)
	if !gate.SignedIn() {
		logg.Info(ctx, "no user configured, cart not fetched")
		return
	}
	ctx = logg.WithUserEmail(ctx, gate.User().Email)

	unsubscribe := store.Subscribe(func(snap cart.Snapshot) {
		logg.Info(logg.WithField(ctx, "badge_count", snap.Cart.TotalQuantity()), "cart badge updated")
	})
	defer unsubscribe()

	if _, err := store.Refresh(ctx); err != nil {
		logg.Error(ctx, "cart state unknown", err)
		os.Exit(1)
	}

	fee := decimal.NewFromInt(int64(cfg.Cart.DeliveryFee))
	summary := cart.Summarize(store.Snapshot(), cart.SurfaceDrawer, fee)
	logg.Info(logg.WithFields(ctx, map[string]any{
		"subtotal": summary.Subtotal.String(),
		"delivery": summary.DeliveryFee.String(),
		"total":    summary.Total.String(),
		"items":    summary.ItemCount,
	}), "cart summary")
}
