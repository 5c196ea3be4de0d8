package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"foodgram-backend/internal/domains/relation"
	"foodgram-backend/internal/shared/middleware"
	"foodgram-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.ClientIPMiddleware(),
		middleware.Logger(),
		middleware.Metrics(),
		middleware.CORS(c.Config.App.CORSOrigins),
	)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Short links live outside the API prefix: /s/<code>/
	router.GET("/s/:code/", c.RecipeHandler.RedirectShortLink)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupAuthRoutes(v1, c)
		setupUserRoutes(v1, c)
		setupCatalogueRoutes(v1, c)
		setupRecipeRoutes(v1, c)
	}

	return router
}

func requireAuth(c *container.Container) gin.HandlerFunc {
	return middleware.AuthMiddleware(c.JWTManager, c.Blacklist)
}

func optionalAuth(c *container.Container) gin.HandlerFunc {
	return middleware.OptionalAuth(c.JWTManager, c.Blacklist)
}

// ========================================
// AUTH ROUTES
// ========================================
func setupAuthRoutes(v1 *gin.RouterGroup, c *container.Container) {
	auth := v1.Group("/auth/token")
	{
		auth.POST("/login", middleware.RateLimit(c.LoginLimiter), c.UserHandler.Login)
		auth.POST("/logout", requireAuth(c), c.UserHandler.Logout)
	}
}

// ========================================
// USER ROUTES
// ========================================
func setupUserRoutes(v1 *gin.RouterGroup, c *container.Container) {
	users := v1.Group("/users")
	{
		users.POST("", c.UserHandler.Register)
		users.GET("", optionalAuth(c), c.UserHandler.ListUsers)
		users.GET("/:id", optionalAuth(c), c.UserHandler.GetUser)

		users.GET("/me", requireAuth(c), c.UserHandler.Me)
		users.POST("/set_password", requireAuth(c), c.UserHandler.SetPassword)

		avatar := users.Group("/me/avatar", requireAuth(c))
		{
			avatar.GET("", c.UserHandler.GetAvatar)
			avatar.PUT("", c.UserHandler.PutAvatar)
			avatar.DELETE("", c.UserHandler.DeleteAvatar)
		}

		users.GET("/subscriptions", requireAuth(c), c.RelationHandler.ListSubscriptions)
		users.POST("/:id/subscribe", requireAuth(c), c.RelationHandler.Subscribe)
		users.DELETE("/:id/subscribe", requireAuth(c), c.RelationHandler.Unsubscribe)
	}
}

// ========================================
// TAG & INGREDIENT ROUTES
// ========================================
func setupCatalogueRoutes(v1 *gin.RouterGroup, c *container.Container) {
	tags := v1.Group("/tags")
	{
		tags.GET("", c.RecipeHandler.ListTags)
		tags.GET("/:id", c.RecipeHandler.GetTag)
	}

	ingredients := v1.Group("/ingredients")
	{
		ingredients.GET("", c.RecipeHandler.SearchIngredients)
		ingredients.GET("/:id", c.RecipeHandler.GetIngredient)
	}
}

// ========================================
// RECIPE ROUTES
// ========================================
func setupRecipeRoutes(v1 *gin.RouterGroup, c *container.Container) {
	recipes := v1.Group("/recipes")
	{
		recipes.GET("", optionalAuth(c), c.RecipeHandler.ListRecipes)
		recipes.POST("", requireAuth(c), c.RecipeHandler.CreateRecipe)
		recipes.GET("/download_shopping_cart", requireAuth(c), c.RecipeHandler.DownloadShoppingCart)

		recipes.GET("/:id", optionalAuth(c), c.RecipeHandler.GetRecipe)
		recipes.PATCH("/:id", requireAuth(c), c.RecipeHandler.UpdateRecipe)
		recipes.DELETE("/:id", requireAuth(c), c.RecipeHandler.DeleteRecipe)
		recipes.GET("/:id/get-link", c.RecipeHandler.GetLink)

		recipes.POST("/:id/favorite", requireAuth(c), c.RelationHandler.AddRecipe(relation.Favorites))
		recipes.DELETE("/:id/favorite", requireAuth(c), c.RelationHandler.RemoveRecipe(relation.Favorites))
		recipes.POST("/:id/shopping_cart", requireAuth(c), c.RelationHandler.AddRecipe(relation.ShoppingCart))
		recipes.DELETE("/:id/shopping_cart", requireAuth(c), c.RelationHandler.RemoveRecipe(relation.ShoppingCart))
	}
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
		}

		dbStatus := "ok"
		if appCtx.DB == nil || appCtx.DB.Pool == nil {
			dbStatus = "disconnected"
			health["status"] = "degraded"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.DB.HealthCheck(ctx); err != nil {
				dbStatus = fmt.Sprintf("error: %v", err)
				health["status"] = "degraded"
			}
			if stats, err := appCtx.DB.Stats(); err == nil {
				health["pool"] = stats
			}
		}

		// redis only holds revocations; its loss degrades logout, not reads
		redisStatus := "ok"
		if appCtx.Cache == nil {
			redisStatus = "disconnected"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.Cache.Ping(ctx); err != nil {
				redisStatus = fmt.Sprintf("error: %v", err)
			}
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
		}

		statusCode := http.StatusOK
		if dbStatus != "ok" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, health)
	}
}
