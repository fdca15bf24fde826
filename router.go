package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/AnTengye/contractreview/backend/config"
	"github.com/AnTengye/contractreview/backend/handler"
	"github.com/AnTengye/contractreview/backend/middleware"
	"github.com/AnTengye/contractreview/backend/service"
	"github.com/gin-gonic/gin"
)

func newRouter(cfg *config.Config, registry *service.WorkspaceRegistry) *gin.Engine {
	authHandler := handler.NewAuthHandler(cfg)
	contractHandler := handler.NewContractHandler(registry, cfg.Upload.MaxBytes())

	router := gin.New() // Use New() instead of Default() to avoid default middleware

	router.Use(middleware.RequestID())                 // Request ID for tracing
	router.Use(middleware.Recovery())                  // Panic recovery
	router.Use(middleware.RequestLogger())             // Access logging
	router.Use(corsMiddleware())                       // CORS
	router.Use(cacheMiddleware())                      // Cache control
	router.Use(middleware.RateLimit(100, time.Minute)) // 100 requests per minute per IP

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"workspaces": registry.Count(),
			"timestamp":  time.Now().Format(time.RFC3339),
		})
	})

	// Public routes
	api := router.Group("/api")
	{
		api.POST("/auth/login", authHandler.Login)
	}

	// Protected routes
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(&cfg.Auth))
	{
		protected.GET("/auth/me", authHandler.GetCurrentUser)
		protected.DELETE("/workspace", contractHandler.CloseWorkspace)
	}

	// Routes bound to the tenant workspace
	session := protected.Group("/")
	session.Use(middleware.Workspace(registry))
	{
		session.POST("/contracts/upload", middleware.RateLimit(10, time.Minute), contractHandler.Upload)
		session.GET("/contracts/load", contractHandler.LoadStatus)

		session.GET("/contract", contractHandler.Contract)
		session.GET("/contract/report", contractHandler.Report)

		session.GET("/clauses/:id/suggestions", contractHandler.ClauseSuggestions)
		session.GET("/clauses/:id/arguments", contractHandler.ClauseArguments)
		session.GET("/clauses/:id/references", contractHandler.ClauseReferences)

		session.POST("/selection", contractHandler.Select)
		session.GET("/selection", contractHandler.Selection)
		session.GET("/selection/suggestions", contractHandler.SelectionSuggestions)
		session.GET("/selection/arguments", contractHandler.SelectionArguments)

		session.POST("/suggestions/:id/accept", contractHandler.Accept)
		session.POST("/suggestions/:id/reject", contractHandler.Reject)
	}

	return router
}

// corsMiddleware handles CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID, Retry-After")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// cacheMiddleware marks API responses as uncacheable
func cacheMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
		}
		c.Next()
	}
}
