package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"busline/internal/auth"
	"busline/internal/config"
	"busline/internal/handlers"
	"busline/internal/middleware"
	"busline/internal/ws"
)

// Deps: всё, что нужно для сборки маршрутов.
type Deps struct {
	Config   *config.Config
	Schedule *handlers.ScheduleHandler
	Hub      *ws.Hub
	Metrics  http.Handler // если nil, /metrics не публикуется
	Logger   *zap.Logger
}

// Setup собирает gin-движок со всеми маршрутами сервиса.
func Setup(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Logger))

	r.Use(cors.New(cors.Config{
		AllowOrigins:  d.Config.Server.CORS.AllowOrigins,
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", handlers.IdempotencyHeader, "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics))
	}
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	h := d.Schedule
	limiter := middleware.NewRateLimiter(d.Config.Server.RateLimit.RPS, d.Config.Server.RateLimit.Burst)

	api := r.Group("/api")
	{
		lines := api.Group("/lines")
		{
			lines.GET("", h.ListLines)
			lines.GET("/:id/schedules", h.ListLineSchedules)
			lines.GET("/:id/schedules/by-time", h.ByLineAndTime)
			lines.GET("/:id/schedules/can-register", h.CanRegister)
			lines.POST("/:id/schedules/interest", middleware.RateLimit(limiter), h.RegisterInterest)
			lines.GET("/:id/timer", h.Timer)
			if d.Hub != nil {
				lines.GET("/:id/ws", d.Hub.LineWebSocketHandler)
			}
		}

		schedules := api.Group("/schedules")
		{
			schedules.GET("", h.ListSchedules)
			schedules.GET("/current", h.Current)
			schedules.GET("/next", h.Next)
			schedules.GET("/:id", h.GetSlot)
		}

		admin := api.Group("/admin", auth.AdminMiddleware([]byte(d.Config.Auth.AccessSecret)))
		{
			admin.POST("/schedules", h.CreateSlot)
			admin.PUT("/schedules/:id", h.UpdateSlot)
			admin.DELETE("/schedules/:id", h.DeleteSlot)
			admin.POST("/schedules/reset-elapsed", h.ResetElapsed)
		}
	}

	return r
}
