package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"lifecoach/coach-api/internal/api"
	"lifecoach/coach-api/internal/config"
	"lifecoach/coach-api/internal/llm"
	"lifecoach/coach-api/internal/logging"
	"lifecoach/coach-api/internal/planner"
	"lifecoach/coach-api/internal/repository/mongo"
	"lifecoach/coach-api/internal/service"
	"lifecoach/coach-api/internal/storage"
)

// @title AI Life Coach API
// @version 1.0
// @description Coaching profiles, goals, conversations and fitness plans.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// A .env file is optional; real environment variables win.
	_ = godotenv.Load()

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		bootLogger := logging.New("info", false, nil)
		bootLogger.Fatal().Err(err).Msg("could not load config")
	}
	logger := logging.New(cfg.Server.LogLevel, cfg.Server.LogPretty, nil)
	logger.Info().Str("address", cfg.Server.Address).Msg("starting coach API")

	// --- Database Connection ---
	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 15*time.Second)
	dbClient, err := mongo.ConnectDB(connectCtx, cfg.Database.URI)
	cancelConnect()
	if err != nil {
		logger.Fatal().Err(err).Msg("could not connect to MongoDB")
	}
	defer func() {
		if err := mongo.DisconnectDB(dbClient); err != nil {
			logger.Error().Err(err).Msg("failed to disconnect MongoDB")
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error { return mongo.EnsureUserIndexes(ctx, appDB.Collection("users")) })
		g.Go(func() error { return mongo.EnsureProfileIndexes(ctx, appDB.Collection("profiles")) })
		g.Go(func() error { return mongo.EnsureGoalIndexes(ctx, appDB.Collection("goals")) })
		g.Go(func() error { return mongo.EnsureConversationIndexes(ctx, appDB.Collection("conversations")) })
		g.Go(func() error { return mongo.EnsurePlanExportIndexes(ctx, appDB.Collection("plan_exports")) })
		if err := g.Wait(); err != nil {
			logger.Error().Err(err).Msg("index creation failed")
			return
		}
		logger.Info().Msg("database indexes ensured")
	}()

	// --- Initialize Storage ---
	storageCtx, cancelStorage := context.WithTimeout(context.Background(), 10*time.Second)
	planStore, err := storage.NewS3Storage(storageCtx, cfg.S3, logger)
	cancelStorage()
	switch {
	case errors.Is(err, storage.ErrNotConfigured):
		logger.Warn().Msg("object storage not configured; plan exports disabled")
	case err != nil:
		logger.Fatal().Err(err).Msg("failed to initialize S3 storage")
	}

	// --- LLM ---
	llmClient := llm.NewClient(llm.Config{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		SiteURL:     cfg.LLM.SiteURL,
		AppName:     cfg.LLM.AppName,
	}, nil, logger)
	var replier service.CoachReplier
	if llmClient.Configured() {
		replier = llmClient
	} else {
		logger.Warn().Msg("llm.api_key not set; plans use the local generator and the coach cannot reply")
	}
	orchestrator := planner.NewDefaultOrchestrator(logger, llmClient, cfg.LLM.Timeout, cfg.LLM.DirectTemperature)

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	profileRepo := mongo.NewMongoProfileRepository(appDB)
	goalRepo := mongo.NewMongoGoalRepository(appDB)
	conversationRepo := mongo.NewMongoConversationRepository(appDB)
	planExportRepo := mongo.NewMongoPlanExportRepository(appDB)

	// --- Initialize Services ---
	authService, err := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid auth configuration")
	}
	profileService := service.NewProfileService(profileRepo, logger)
	goalService := service.NewGoalService(goalRepo)
	conversationService := service.NewConversationService(conversationRepo, profileRepo, goalRepo, replier, cfg.LLM.Timeout, logger)
	planService := service.NewPlanService(orchestrator, profileService, planExportRepo, planStore, logger)

	// --- Initialize Gin Engine ---
	if cfg.Server.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	api.SetupRoutes(router, logger, api.Services{
		Auth:          authService,
		Profiles:      profileService,
		Goals:         goalService,
		Conversations: conversationService,
		Plans:         planService,
		HealthChecks: map[string]api.HealthChecker{
			"mongo": func(ctx context.Context) error { return mongo.Ping(ctx, dbClient) },
		},
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
	}).Handler(router)

	// --- Start HTTP Server ---
	// Plan generation may walk through two LLM tiers before falling back, so
	// the write timeout has to cover both.
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      corsHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2*orchestrator.Timeout() + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("ListenAndServe error")
		}
	}()
	logger.Info().Str("address", cfg.Server.Address).Msg("server listening")

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}
	logger.Info().Msg("server exiting")
}
