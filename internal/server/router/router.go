package router

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/config"
	"github.com/mamadbah2/pantry/internal/server/handlers"
	"github.com/mamadbah2/pantry/internal/server/middleware"
)

// Handlers groups the route handlers. Webhook may be nil when WhatsApp is disabled.
type Handlers struct {
	Pantry  *handlers.PantryHandler
	Expiry  *handlers.ExpiryHandler
	Voice   *handlers.VoiceHandler
	Webhook *handlers.WebhookHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(cfg config.Config, h Handlers, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestid.New())
	r.Use(middleware.Logger(logger))
	r.Use(cors.New(corsConfig(cfg.Server.AllowedOrigins)))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if h.Webhook != nil {
		r.GET("/webhook", h.Webhook.Verify)
		r.POST("/webhook", h.Webhook.Receive)
	}

	api := r.Group("/api", middleware.Auth(cfg.Auth.JWTSecret, logger))
	{
		api.GET("/recipes", h.Pantry.ListRecipes)
		api.GET("/recipes/recommendations", h.Pantry.Recommendations)
		api.GET("/recipes/:id", h.Pantry.GetRecipe)
		api.GET("/tags", h.Pantry.ListTags)
		api.GET("/ingredients", h.Pantry.ListIngredients)

		api.GET("/stocks", h.Pantry.ListStocks)
		api.POST("/stocks", h.Pantry.AddStock)
		api.PATCH("/stocks/:id", h.Pantry.UpdateStock)
		api.DELETE("/stocks/:id", h.Pantry.DeleteStock)

		api.GET("/view", h.Pantry.GetView)
		api.PUT("/view/recipe", h.Pantry.OpenRecipe)
		api.POST("/view/reload", h.Pantry.ReloadStocks)
		api.POST("/view/selection/:stockID", h.Pantry.Select)
		api.DELETE("/view/selection/:stockID", h.Pantry.Deselect)
		api.DELETE("/view/selection", h.Pantry.ClearSelection)
		api.POST("/view/delete-selected", h.Pantry.DeleteSelection)

		api.GET("/notifications", h.Expiry.ListNotifications)
		api.POST("/notifications/:id/read", h.Expiry.MarkRead)
		api.POST("/expiry/sweep", h.Expiry.RunSweep)
		api.GET("/expiry/summary", h.Expiry.Summary)

		api.POST("/voice", h.Voice.Command)
		api.POST("/voice/choice", h.Voice.Choice)

		if h.Webhook != nil {
			api.POST("/notify", h.Webhook.Notify)
		}
	}

	logger.Info("router initialized", zap.Bool("whatsapp", h.Webhook != nil))

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}
