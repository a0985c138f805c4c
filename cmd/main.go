package main

//
//  @title           stockchat API
//  @version         1.0
//  @description     Natural-language chat service for HKEX stock trade data.
//  @termsOfService  https://github.com/guttosm/stockchat
//  @contact.name    API Support
//  @contact.url     https://github.com/guttosm/stockchat
//  @contact.email   support@example.com
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:8080
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        chat
//  @tag.description Natural-language queries about trades
//
//  @tag.name        data
//  @tag.description Available trading dates and stocks
//
//  @tag.name        models
//  @tag.description Generative model status
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guttosm/stockchat/config"
	_ "github.com/guttosm/stockchat/docs" // swagger docs
	"github.com/guttosm/stockchat/internal/app"
	"github.com/guttosm/stockchat/internal/ingestion"
	"github.com/guttosm/stockchat/internal/logger"
)

// startServer initializes and starts the HTTP server in a separate goroutine.
//
// Parameters:
//   - router (http.Handler): The HTTP router (Gin Engine) configured with all routes.
//   - port (string): The port where the server will listen for incoming requests.
//
// Returns:
//   - *http.Server: The initialized HTTP server instance.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown gracefully terminates the HTTP server and cleans up resources
// when an OS interrupt signal (SIGINT, SIGTERM) is received.
//
// Parameters:
//   - ctx (context.Context): A context with timeout for graceful shutdown.
//   - server (*http.Server): The HTTP server instance to shut down.
//   - cleanup (func()): Cleanup callback to release resources (e.g., DB connections).
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// main is the entry point of the stockchat application.
//
// Modes (selected via --mode flag):
//   - ingest: Loads YYYY-MM-DD_trades.csv files from the data directory into Postgres.
//   - api:    Starts the REST API serving the chat pipeline.
//
// Flags:
//   - --mode:     Execution mode ("api" or "ingest"). Default: "api".
//   - --dir:      Directory containing trade CSV files. Defaults to value from config (DATA_DIR).
//   - --parallel: How many files to process concurrently (0=auto up to CPU).
//   - --force:    Reprocess dates even if already ingested (deletes existing trades for that day).
//   - --port:     Port for the API server. Defaults to value from config (SERVER_PORT).
func main() {
	ctx := context.Background()

	// Load configuration from environment or .env file
	config.LoadConfig()

	// Initialize JSON logger
	logger.Init()

	// Parse CLI flags (override config defaults if provided)
	mode := flag.String("mode", "api", "Mode: api or ingest")
	dir := flag.String("dir", config.AppConfig.Data.Dir, "Directory with daily trade CSV files")
	parallel := flag.Int("parallel", 0, "How many files to process concurrently (0=auto up to CPU)")
	force := flag.Bool("force", false, "Reprocess dates even if already ingested (deletes existing trades for that day)")
	port := flag.String("port", config.AppConfig.Server.Port, "Port for API mode")
	flag.Parse()

	switch *mode {
	case "ingest":
		// Ingestion mode: parse CSV files and persist trades
		logger.L().Info().Str("dir", *dir).Msg("running ingestion")

		// Direct DB connection for ingestion
		db, err := app.InitPostgres(config.AppConfig)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("db connect error")
		}
		defer func() { _ = db.Close() }()

		if err := ingestion.ProcessDirectory(ctx, *dir, db, *parallel, *force); err != nil {
			logger.L().Fatal().Err(err).Msg("ingestion failed")
		}
		logger.L().Info().Msg("ingestion completed successfully")

	case "api":
		// API mode: start the HTTP server
		logger.L().Info().Msg("starting API server")

		router, cleanup, err := app.InitializeApp()
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		server := startServer(router, *port)
		gracefulShutdown(ctx, server, cleanup)

	default:
		logger.L().Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}
