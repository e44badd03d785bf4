package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/tobiaswld/werkstatt/internal/billing"
	billingStore "github.com/tobiaswld/werkstatt/internal/billing/store"
	"github.com/tobiaswld/werkstatt/internal/config"
	"github.com/tobiaswld/werkstatt/internal/customer"
	customerStore "github.com/tobiaswld/werkstatt/internal/customer/store"
	"github.com/tobiaswld/werkstatt/internal/database"
	werkstattHttp "github.com/tobiaswld/werkstatt/internal/http"
	billingHandler "github.com/tobiaswld/werkstatt/internal/http/billing"
	customerHandler "github.com/tobiaswld/werkstatt/internal/http/customer"
	importHandler "github.com/tobiaswld/werkstatt/internal/http/importcsv"
	loyaltyHandler "github.com/tobiaswld/werkstatt/internal/http/loyalty"
	orderHandler "github.com/tobiaswld/werkstatt/internal/http/order"
	shopHandler "github.com/tobiaswld/werkstatt/internal/http/shop"
	"github.com/tobiaswld/werkstatt/internal/importer"
	"github.com/tobiaswld/werkstatt/internal/loyalty"
	loyaltyStore "github.com/tobiaswld/werkstatt/internal/loyalty/store"
	"github.com/tobiaswld/werkstatt/internal/notify"
	"github.com/tobiaswld/werkstatt/internal/order"
	orderStore "github.com/tobiaswld/werkstatt/internal/order/store"
	"github.com/tobiaswld/werkstatt/internal/shop"
	shopStore "github.com/tobiaswld/werkstatt/internal/shop/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var dispatcher notify.Dispatcher = notify.Log{}
	if cfg.Notify.WebhookURL != "" {
		dispatcher = notify.NewWebhook(cfg.Notify.WebhookURL, cfg.Notify.Timeout)
	}

	shops := shopStore.New(db)

	var (
		billingService  = billing.NewService(billingStore.New(db), shops)
		orderService    = order.NewService(orderStore.New(db), shops, shops, dispatcher)
		loyaltyService  = loyalty.NewService(loyaltyStore.New(db))
		customerService = customer.NewService(customerStore.New(db))
		shopService     = shop.NewService(shops)
		importService   = importer.NewService()
	)

	if cfg.Seed.File != "" {
		seed, err := shop.LoadSeed(cfg.Seed.File)
		if err != nil {
			slog.Error("failed to load seed file", "error", err, "path", cfg.Seed.File)
			os.Exit(1)
		}

		if err := shopService.ApplySeed(context.Background(), seed); err != nil {
			slog.Error("failed to apply seed", "error", err)
			os.Exit(1)
		}

		slog.Info("seed applied", "path", cfg.Seed.File)
	}

	var (
		orderH    = orderHandler.NewHandler(orderService)
		billingH  = billingHandler.NewHandler(billingService)
		customerH = customerHandler.NewHandler(customerService)
		loyaltyH  = loyaltyHandler.NewHandler(loyaltyService)
		shopH     = shopHandler.NewHandler(shopService)
		importH   = importHandler.NewHandler(importService, billingService)
	)

	router := werkstattHttp.New(orderH, billingH, customerH, loyaltyH, shopH, importH)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
