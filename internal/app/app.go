package app

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/stockchat/config"
	"github.com/guttosm/stockchat/internal/api"
	"github.com/guttosm/stockchat/internal/llm"
	"github.com/guttosm/stockchat/internal/service"
	"github.com/guttosm/stockchat/internal/storage"
)

// InitializeApp sets up all application dependencies and returns
// a fully configured Gin router, a cleanup function for graceful shutdown,
// and any error encountered during initialization.
//
// Responsibilities:
//   - Connects to PostgreSQL using InitPostgres().
//   - Initializes the repository layer (TradesRepository).
//   - Builds the generative fallback (no network I/O at construction).
//   - Creates the chat service and HTTP handler layer.
//   - Configures the Gin router with all API routes.
//   - Registers health and readiness probes.
//   - Provides a cleanup function to close resources (e.g., DB connection).
//
// Returns:
//   - *gin.Engine: the configured Gin HTTP router.
//   - func(): cleanup function to be executed on shutdown.
//   - error: any initialization error that occurred.
func InitializeApp() (*gin.Engine, func(), error) {
	// Load global configuration
	cfg := config.AppConfig

	// Connect to PostgreSQL
	// indirection for unit testing
	db, err := postgresOpener(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	// Initialize repository layer (responsible for DB access)
	repo := storage.NewTradesRepository(db)

	// Generative fallback. An empty API key yields a generator that always
	// answers with the static default.
	gen := llm.NewGenerator(llm.Config{
		APIKey:      cfg.Gemini.APIKey,
		Model:       cfg.Gemini.Model,
		Temperature: cfg.Gemini.Temperature,
		MaxTokens:   cfg.Gemini.MaxTokens,
	})

	// Initialize service layer (query pipeline)
	svc := service.NewChatService(repo, gen)

	// Initialize HTTP handler layer (business logic to HTTP mapping)
	handler := api.NewHandler(svc, gen)

	// Setup Gin router with routes
	router := api.NewRouter(handler)

	// Register health and readiness probes
	healthHandler := api.NewHealthHandler(db.Ping, gen)
	healthHandler.Register(router)

	// Cleanup resources on shutdown
	cleanup := func() {
		_ = db.Close()
	}

	return router, cleanup, nil
}
