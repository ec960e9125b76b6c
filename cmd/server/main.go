package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"slate/internal/auth"
	"slate/internal/config"
	"slate/internal/handler"
	"slate/internal/hashing"
	"slate/internal/middleware"
	"slate/internal/notify"
	"slate/internal/repository/postgres"
	"slate/internal/service"
	"slate/internal/service/sharing"
	"slate/internal/token"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Create JWT verifier
	jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Create table names and ensure the schema exists
	tables := postgres.NewTableNames(cfg.TablePrefix)
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	presentationRepo := postgres.NewPresentationRepository(repoConfig)
	grantRepo := postgres.NewGrantRepository(repoConfig)
	linkRepo := postgres.NewLinkRepository(repoConfig)
	userRepo := postgres.NewUserRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Token generator and password hasher for share links
	tokens, err := token.NewGenerator(cfg.TokenBytes)
	if err != nil {
		log.Fatalf("Failed to create token generator: %v", err)
	}
	hasher := hashing.NewHasher(cfg.BcryptCost)

	// Notification dispatcher. The log sender stands in for the email
	// transport; swap the Sender to deliver for real.
	dispatcher := notify.NewQueueDispatcher(&notify.LogSender{Logger: logger}, cfg.NotifyQueueSize, logger)
	defer dispatcher.Close()

	// Create services
	presentationService := service.NewPresentationService(presentationRepo, grantRepo, linkRepo, txManager, logger)
	grantStore := sharing.NewShareGrantStore(presentationRepo, grantRepo, userRepo, dispatcher, logger)
	linkManager := sharing.NewShareLinkManager(presentationRepo, linkRepo, userRepo, tokens, hasher, dispatcher, cfg.ClientURL, logger)

	// Create handlers
	presentationHandler := handler.NewPresentationHandler(presentationService, logger)
	sharingHandler := handler.NewSharingHandler(grantStore, logger)
	linkHandler := handler.NewShareLinkHandler(linkManager, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", presentationHandler.HealthCheck)

	// Presentation routes
	mux.HandleFunc("GET /api/presentations", presentationHandler.ListPresentations)
	mux.HandleFunc("POST /api/presentations", presentationHandler.CreatePresentation)
	mux.HandleFunc("GET /api/presentations/shared-with-me", presentationHandler.SharedWithMe) // Must come before {id} route
	mux.HandleFunc("GET /api/presentations/{id}", presentationHandler.GetPresentation)
	mux.HandleFunc("PATCH /api/presentations/{id}", presentationHandler.UpdatePresentation)
	mux.HandleFunc("PATCH /api/presentations/{id}/visibility", presentationHandler.UpdateVisibility)
	mux.HandleFunc("DELETE /api/presentations/{id}", presentationHandler.DeletePresentation)

	// Grant routes
	mux.HandleFunc("POST /api/presentations/{id}/share", sharingHandler.SharePresentation)
	mux.HandleFunc("GET /api/presentations/{id}/share", sharingHandler.ListShares)
	mux.HandleFunc("DELETE /api/presentations/{id}/share", sharingHandler.RevokeShare)

	// Share-link routes
	mux.HandleFunc("POST /api/presentations/{id}/links", linkHandler.IssueLink)
	mux.HandleFunc("GET /api/presentations/{id}/links", linkHandler.ListLinks)
	mux.HandleFunc("PATCH /api/links/{linkId}", linkHandler.UpdateLink)
	mux.HandleFunc("DELETE /api/links/{linkId}", linkHandler.DeleteLink)
	mux.HandleFunc("POST /api/links/{linkId}/revoke", linkHandler.RevokeLink)
	mux.HandleFunc("GET /api/links/{linkId}/analytics", linkHandler.LinkAnalytics)

	// Public link access (no auth; the token is the credential)
	mux.HandleFunc("POST /api/shared/{token}", linkHandler.AccessSharedPresentation)

	// Build middleware chain
	var httpHandler http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	httpHandler = middleware.AuthMiddleware(jwtVerifier)(httpHandler)
	httpHandler = middleware.Recovery(logger)(httpHandler)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	httpHandler = corsHandler.Handler(httpHandler)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
