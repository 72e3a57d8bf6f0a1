package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	handlers "ui_forge_server/internal/api"
)

// RegisterRoutes sets up the API endpoints and groups them logically.
// A nil limiter leaves the generation endpoints unthrottled.
func RegisterRoutes(router *gin.Engine, h *handlers.APIHandler, limiter *handlers.RateLimiter) {
	withSession := router.Group("/", h.SessionMiddleware())

	// --- Generation ---
	generateGroup := withSession.Group("/generate")
	if limiter != nil {
		generateGroup.Use(limiter.Middleware())
	}
	{
		generateGroup.POST("/html", h.GenerateHTML)                // Text or Figma input, JSON body
		generateGroup.POST("/html/image", h.GenerateHTMLFromImage) // Screenshot upload, multipart
		generateGroup.POST("/image", h.GenerateImage)              // Image generation with optional reference
	}

	// --- Current result of the session (preview, editor, export) ---
	sessionGroup := withSession.Group("/session")
	{
		sessionGroup.GET("/result", h.GetResult)
		sessionGroup.PUT("/result", h.UpdateResult)
		sessionGroup.DELETE("/result", h.ResetResult)
		sessionGroup.GET("/result/preview", h.PreviewResult)
		sessionGroup.GET("/result/analysis", h.ResultAnalysis)
		sessionGroup.POST("/result/publish", h.PublishResult)
		sessionGroup.GET("/progress", h.GetProgress)
	}

	// --- Authentication ---
	authGroup := withSession.Group("/auth")
	{
		authGroup.POST("/signin", h.Signin)
		authGroup.POST("/signup", h.Signup)
		authGroup.POST("/signout", h.Signout)
		authGroup.GET("/me", h.Me)
	}

	// --- Selectable AI providers ---
	router.GET("/providers", h.ListProviders)

	// --- Simple Health Check ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "model": h.ModelName(), "configured": h.Configured()})
	})
}
