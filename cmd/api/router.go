package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"pubops-backend/internal/shared/middleware"
	"pubops-backend/internal/shared/response"
	"pubops-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.PrometheusMiddleware(),
		middleware.CORS(c.Config.App.AllowedOrigins),
		middleware.ErrorHandler(),
	)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	v1.GET("/health", healthCheckHandler(c))

	authed := v1.Group("")
	authed.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		setupUserRoutes(authed, c)
		setupImprintRoutes(authed, c)
		setupBookRoutes(authed, c)
		setupContributorRoutes(authed, c)
		setupReleaseRoutes(authed, c)
		setupChecklistRoutes(authed, c)
		setupAttachmentRoutes(authed, c)
		setupHistoryRoutes(authed, c)
		setupAdminRoutes(authed, c)
	}

	return router
}

func setupUserRoutes(r *gin.RouterGroup, c *container.Container) {
	r.GET("/users/me", c.UserHandler.Me)
}

func setupImprintRoutes(r *gin.RouterGroup, c *container.Container) {
	imprints := r.Group("/imprints")
	{
		imprints.GET("", c.ImprintHandler.Find)
		imprints.GET("/:id", c.ImprintHandler.Get)
		imprints.POST("", middleware.AdminMiddleware(), c.ImprintHandler.Create)
		imprints.PATCH("/:id", c.ImprintHandler.Patch)
		imprints.DELETE("/:id", middleware.AdminMiddleware(), c.ImprintHandler.Remove)
	}
}

// Book sub-resources share the /books/:id prefix, so every child route
// names the book parameter "id".
func setupBookRoutes(r *gin.RouterGroup, c *container.Container) {
	books := r.Group("/books")
	{
		books.GET("", c.BookHandler.Find)
		books.POST("", c.BookHandler.Create)
		books.GET("/:id", c.BookHandler.Get)
		books.PATCH("/:id", c.BookHandler.Patch)
		books.DELETE("/:id", c.BookHandler.Remove)

		books.GET("/:id/contributors", c.ContributorHandler.ListRoles)
		books.POST("/:id/contributors", c.ContributorHandler.AssignRole)
		books.GET("/:id/releases", c.ReleaseHandler.ListByBook)
		books.POST("/:id/releases", c.ReleaseHandler.Create)
		books.GET("/:id/checklist", c.MarketingHandler.ListByBook)
		books.POST("/:id/checklist", c.MarketingHandler.Create)
		books.GET("/:id/attachments", c.AttachmentHandler.ListByBook)
		books.POST("/:id/attachments", c.AttachmentHandler.Upload)
	}
}

func setupContributorRoutes(r *gin.RouterGroup, c *container.Container) {
	contributors := r.Group("/contributors")
	{
		contributors.GET("", c.ContributorHandler.Find)
		contributors.POST("", c.ContributorHandler.Create)
		contributors.GET("/:id", c.ContributorHandler.Get)
		contributors.PATCH("/:id", c.ContributorHandler.Patch)
		contributors.DELETE("/:id", middleware.AdminMiddleware(), c.ContributorHandler.Remove)
	}

	r.PATCH("/contributor-roles/:id", c.ContributorHandler.PatchRole)
	r.DELETE("/contributor-roles/:id", c.ContributorHandler.RemoveRole)
}

func setupReleaseRoutes(r *gin.RouterGroup, c *container.Container) {
	releases := r.Group("/releases")
	{
		releases.GET("/:id", c.ReleaseHandler.Get)
		releases.PATCH("/:id", c.ReleaseHandler.Patch)
		releases.DELETE("/:id", c.ReleaseHandler.Remove)
		releases.POST("/:id/prices", c.ReleaseHandler.AddPrice)
		releases.PATCH("/:id/prices/:price_id", c.ReleaseHandler.PatchPrice)
		releases.DELETE("/:id/prices/:price_id", c.ReleaseHandler.RemovePrice)
	}
}

func setupChecklistRoutes(r *gin.RouterGroup, c *container.Container) {
	r.PATCH("/checklist-items/:id", c.MarketingHandler.Patch)
	r.DELETE("/checklist-items/:id", c.MarketingHandler.Remove)
}

func setupAttachmentRoutes(r *gin.RouterGroup, c *container.Container) {
	r.GET("/attachments/:id/content", c.AttachmentHandler.Download)
	r.DELETE("/attachments/:id", c.AttachmentHandler.Remove)
}

func setupHistoryRoutes(r *gin.RouterGroup, c *container.Container) {
	r.GET("/history", c.HistoryHandler.ListHistory)
	r.GET("/history/export", c.HistoryHandler.ExportHistory)
}

func setupAdminRoutes(r *gin.RouterGroup, c *container.Container) {
	admin := r.Group("")
	admin.Use(middleware.AdminMiddleware())
	{
		admin.GET("/users/:id/access", c.AccessHandler.GetGrants)
		admin.PUT("/users/:id/access/:kind", c.AccessHandler.ReplaceGrants)
		admin.POST("/admin/contributors/consolidate", c.ContributorHandler.Consolidate)
	}
}

// healthCheckHandler reports 503 when Postgres or Redis is unreachable
func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
		defer cancel()

		healthy := true
		checks := gin.H{"database": "ok", "redis": "ok"}

		if err := c.DB.HealthCheck(checkCtx); err != nil {
			healthy = false
			checks["database"] = "unreachable"
			log.Warn().Err(err).Msg("health check: database")
		}
		if err := c.Redis.HealthCheck(checkCtx); err != nil {
			healthy = false
			checks["redis"] = "unreachable"
			log.Warn().Err(err).Msg("health check: redis")
		}

		if !healthy {
			response.ErrorWithDetails(ctx, http.StatusServiceUnavailable, "UNHEALTHY", "a backing service is unreachable", checks)
			return
		}
		response.Success(ctx, http.StatusOK, gin.H{
			"service": c.Config.App.Name,
			"version": c.Config.App.Version,
			"checks":  checks,
		})
	}
}
