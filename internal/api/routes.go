package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"lifecoach/coach-api/internal/service"
)

// Services bundles everything the HTTP layer calls into.
type Services struct {
	Auth          service.AuthService
	Profiles      service.ProfileService
	Goals         service.GoalService
	Conversations service.ConversationService
	Plans         service.PlanService
	HealthChecks  map[string]HealthChecker
}

func SetupRoutes(router *gin.Engine, logger zerolog.Logger, svc Services) {
	router.Use(RequestLogger(logger), Metrics())

	authHandler := NewAuthHandler(svc.Auth)
	profileHandler := NewProfileHandler(svc.Profiles)
	goalHandler := NewGoalHandler(svc.Goals)
	conversationHandler := NewConversationHandler(svc.Conversations)
	planHandler := NewPlanHandler(svc.Plans)
	healthHandler := NewHealthHandler(svc.HealthChecks)

	authMiddleware := AuthMiddleware(svc.Auth)

	router.GET("/ping", healthHandler.Ping)
	router.GET("/healthz", healthHandler.Healthz)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		// Plan generation from a raw intake form needs no account.
		apiV1.POST("/plans/fitness", planHandler.GenerateFitnessPlan)
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", authHandler.Me)

		profileGroup := protected.Group("/profiles")
		{
			profileGroup.GET("", profileHandler.ListProfiles)
			// Registered before /:mode so the literal segment wins.
			profileGroup.POST("/fitness/plan", planHandler.GenerateFromStoredProfile)
			profileGroup.GET("/:mode", profileHandler.GetProfile)
			profileGroup.PUT("/:mode", profileHandler.SaveProfile)
			profileGroup.DELETE("/:mode", profileHandler.DeleteProfile)
		}

		goalGroup := protected.Group("/goals")
		{
			goalGroup.POST("", goalHandler.CreateGoal)
			goalGroup.GET("", goalHandler.ListGoals)
			goalGroup.GET("/:id", goalHandler.GetGoal)
			goalGroup.PUT("/:id", goalHandler.UpdateGoal)
			goalGroup.DELETE("/:id", goalHandler.DeleteGoal)
		}

		conversationGroup := protected.Group("/conversations")
		{
			conversationGroup.POST("", conversationHandler.CreateConversation)
			conversationGroup.GET("", conversationHandler.ListConversations)
			conversationGroup.GET("/:id", conversationHandler.GetConversation)
			conversationGroup.DELETE("/:id", conversationHandler.DeleteConversation)
			conversationGroup.POST("/:id/messages", conversationHandler.SendMessage)
		}

		exportGroup := protected.Group("/plans/exports")
		{
			exportGroup.POST("", planHandler.ExportPlan)
			exportGroup.GET("", planHandler.ListExports)
			exportGroup.GET("/:id/url", planHandler.GetExportURL)
			exportGroup.DELETE("/:id", planHandler.DeleteExport)
		}
	}
}
