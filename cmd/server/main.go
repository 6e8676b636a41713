package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/mfgpilot/traceability/internal/config"
	"github.com/mfgpilot/traceability/internal/db"
	"github.com/mfgpilot/traceability/internal/export"
	"github.com/mfgpilot/traceability/internal/middleware"
	"github.com/mfgpilot/traceability/internal/recall"
	"github.com/mfgpilot/traceability/internal/repository"
	"github.com/mfgpilot/traceability/internal/trace"
)

func main() {
	// Create context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup database connection
	dbConfig, err := config.LoadDBConfig(".")
	if err != nil {
		log.Fatalf("Failed to load database config: %v", err)
	}
	conn, err := db.NewConnection(ctx, dbConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, conn.Pool, "./migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	recallConfig, err := config.LoadRecallConfig(".")
	if err != nil {
		log.Fatalf("Failed to load recall config: %v", err)
	}

	// Create repository and services
	lineageRepo := repository.NewLineageRepository(conn.Pool)
	traceService := trace.NewService(lineageRepo)
	simulator := recall.NewSimulator(lineageRepo, traceService, recallConfig)
	exportService := export.NewService(simulator)

	// Setup CORS
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	wrap := func(h http.Handler) http.Handler {
		return corsHandler.Handler(
			middleware.LoggingMiddleware(
				middleware.DataLoaderMiddleware(lineageRepo)(h),
			),
		)
	}

	http.Handle("/api/trace", wrap(trace.NewHTTPHandler(traceService)))
	http.Handle("/api/trace/", wrap(trace.NewHTTPHandler(traceService)))
	http.Handle("/api/recall/simulate", wrap(recall.NewHTTPHandler(simulator)))
	http.Handle("/api/recall/report", wrap(export.NewHTTPHandler(exportService)))

	// Create HTTP server
	server := &http.Server{
		Addr:         ":8080",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Println("Starting traceability server on :8080")
		log.Println("Trace endpoint available at http://localhost:8080/api/trace")
		log.Println("Recall simulation available at http://localhost:8080/api/recall/simulate")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
