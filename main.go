package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cobra"

	"freightdesk/collections"
	"freightdesk/handlers"
	"freightdesk/services"
	"freightdesk/tms"
)

func main() {
	// Optional .env with sheet URLs and TMS credentials.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	app := pocketbase.New()
	store := services.NewRateStore()
	fetcher := services.NewSheetFetcher(store)
	tmsClient := tms.NewFromEnv()
	if tmsClient == nil {
		log.Println("TMS_BASE_URL not set, quote submission disabled")
	}

	// Manual refresh from the command line: ./freightdesk ratesync
	app.RootCmd.AddCommand(&cobra.Command{
		Use:   "ratesync",
		Short: "Download and load all enabled rate sheets, then exit",
		Run: func(cmd *cobra.Command, args []string) {
			if err := app.Bootstrap(); err != nil {
				log.Fatalf("ratesync: bootstrap failed: %v", err)
			}
			collections.Setup(app)
			if err := collections.SeedRateSources(app); err != nil {
				log.Fatalf("ratesync: seed failed: %v", err)
			}
			fetcher.RefreshAll(context.Background(), app)
		},
	})

	// Create collections and seed rate sources on startup.
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.SeedRateSources(app); err != nil {
			log.Printf("Warning: rate source seed failed: %v", err)
		}

		// Initial load in the background so startup is not blocked by
		// slow sheet downloads.
		go fetcher.RefreshAll(context.Background(), app)

		return se.Next()
	})

	// Hourly sheet refresh.
	app.Cron().MustAdd("ratesync", "0 * * * *", func() {
		fetcher.RefreshAll(context.Background(), app)
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		// ── Rate browsing ────────────────────────────────────────
		se.Router.GET("/api/rates/{mode}/origins", handlers.HandleOrigins(app, store))
		se.Router.GET("/api/rates/{mode}/destinations", handlers.HandleDestinations(app, store))
		se.Router.GET("/api/rates/{mode}/filters", handlers.HandleLaneFilters(app, store))
		se.Router.GET("/api/rates/{mode}/routes", handlers.HandleRoutes(app, store))
		se.Router.GET("/api/rates/{mode}/status", handlers.HandleRateStatus(app, store))

		// ── Quotes ───────────────────────────────────────────────
		se.Router.POST("/api/quotes/preview", handlers.HandleQuotePreview(app, store))
		se.Router.POST("/api/quotes", handlers.HandleQuoteCreate(app, store))
		se.Router.GET("/api/quotes", handlers.HandleQuoteList(app))
		se.Router.GET("/api/quotes/{id}", handlers.HandleQuoteGet(app))
		se.Router.GET("/api/quotes/{id}/export/excel", handlers.HandleQuoteExportExcel(app))
		se.Router.POST("/api/quotes/{id}/submit", handlers.HandleQuoteSubmit(app, tmsClient))

		// ── Rate administration ──────────────────────────────────
		se.Router.POST("/api/admin/rates/{mode}/refresh", handlers.HandleRateRefresh(app, fetcher))
		se.Router.POST("/api/admin/rates/{mode}/upload", handlers.HandleRateUpload(app, fetcher))

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
