package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nshemesh/cartcomb/app/api"
	"github.com/nshemesh/cartcomb/app/catalog"
	"github.com/nshemesh/cartcomb/app/cfg"
	"github.com/nshemesh/cartcomb/app/config"
	"github.com/nshemesh/cartcomb/app/database"
	"github.com/nshemesh/cartcomb/app/scrape"
	"github.com/nshemesh/cartcomb/app/tasks"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Load configuration from environment variables and command-line flags
	appCfg, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	log.Printf("Starting Cart Comb server (version %s)...", appCfg.Version)

	// Database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(
		appCfg.DBHost, appCfg.DBPort, appCfg.DBUser,
		appCfg.DBPassword, appCfg.DBName)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()
	log.Printf("Connected to database successfully")

	// Apply schema migrations
	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	log.Printf("Database schema at version %d (dirty: %v)", version, dirty)

	// Load retailer descriptors
	log.Printf("Loading retailer descriptors from %s...", appCfg.RetailersDir)
	loader := config.NewLoader(appCfg.RetailersDir)
	configs, err := loader.LoadAll()
	if err != nil {
		log.Fatal("Failed to load retailer descriptors:", err)
	}
	log.Printf("Loaded %d retailer descriptors", len(configs))

	// Initialize repositories
	retailerRepo := database.NewRetailerRepository(db)
	productRepo := database.NewProductRepository(db)
	pinRepo := database.NewPinRepository(db)

	// Register retailers in database
	log.Println("Registering retailers in database...")
	registeredCount := 0
	urlChangedCount := 0
	for configFile, rc := range configs {
		dbID, urlChanged, err := retailerRepo.UpsertRetailer(
			rc.Retailer.Name, rc.Retailer.PortalURL, rc.Retailer.Portal,
			rc.Retailer.Branch, rc.Retailer.Username, rc.Settings.IsEnabled())
		if err != nil {
			log.Printf("Warning: Failed to register retailer %s: %v", configFile, err)
			continue
		}

		if urlChanged {
			log.Printf("Retailer portal URL updated: %s (DB ID: %s, New URL: %s)", rc.Retailer.Name, dbID, rc.Retailer.PortalURL)
			urlChangedCount++
		} else {
			log.Printf("Registered retailer: %s (DB ID: %s, portal: %s)", rc.Retailer.Name, dbID, rc.Retailer.Portal)
		}
		registeredCount++
	}
	log.Printf("Successfully registered %d/%d retailers", registeredCount, len(configs))
	if urlChangedCount > 0 {
		log.Printf("Updated portal URLs for %d retailers", urlChangedCount)
	}

	// Initialize core components
	log.Printf("Connecting to search index at %s...", appCfg.MeiliURL)
	indexer, err := catalog.NewIndexer(appCfg.MeiliURL, appCfg.MeiliAPIKey)
	if err != nil {
		log.Fatal("Failed to initialize search index:", err)
	}
	matcher := catalog.NewMatcher(indexer, productRepo)
	comparisons := catalog.NewComparisonCache()
	statusHub := scrape.NewStatusHub()

	// Initialize and start the ingestion worker pool
	log.Printf("Starting ingestion scheduler with %d workers...", appCfg.WorkerCount)
	scheduler := tasks.NewScheduler()
	scheduler.Start()
	defer scheduler.Stop()

	// Initialize HTTP server
	log.Println("Initializing HTTP server...")
	apiHandler := api.NewHandler(retailerRepo, productRepo, pinRepo,
		matcher, indexer, comparisons, statusHub, scheduler)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	// Create HTTP server with timeouts
	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start HTTP server in a goroutine
	serverErrChan := make(chan error, 1)
	go func() {
		log.Printf("Starting HTTP server on port %s", appCfg.Port)
		log.Printf("API endpoints available:")
		log.Printf("  Match:         http://localhost:%s/match?q=<item>", appCfg.Port)
		log.Printf("  Comparisons:   http://localhost:%s/comparisons", appCfg.Port)
		log.Printf("  Status:        http://localhost:%s/status", appCfg.Port)
		log.Printf("  Health check:  http://localhost:%s/health", appCfg.Port)

		if appCfg.APIAccessKey != "" {
			log.Printf("  Ingest all:    http://localhost:%s/api/ingest (POST, requires API key)", appCfg.Port)
			log.Printf("  Ingest one:    http://localhost:%s/api/retailers/<name>/ingest (POST, requires API key)", appCfg.Port)
			log.Printf("  Pins:          http://localhost:%s/api/pins (requires API key)", appCfg.Port)
		} else {
			log.Printf("  API endpoints: DISABLED (API_ACCESS_KEY not set)")
		}

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	log.Println("Cart Comb server started successfully!")
	log.Println("Press Ctrl+C to shutdown gracefully...")

	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
	case err := <-serverErrChan:
		log.Printf("Server error: %v", err)
	}

	// Graceful shutdown
	log.Println("Shutting down server gracefully...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	} else {
		log.Println("HTTP server stopped")
	}

	// Scheduler is stopped via defer
	log.Println("Ingestion scheduler stopped")

	log.Println("Cart Comb server shutdown complete")
}
