package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/devtrail/bootcamper/internal/container"
	handlers "github.com/devtrail/bootcamper/internal/interface/http"
	"github.com/devtrail/bootcamper/internal/interface/middleware"
	"github.com/devtrail/bootcamper/pkg/helpers"
)

// ReviewModule registers the top-level review routes. Nested review routes
// live on the bootcamp module.
type ReviewModule struct {
	Handler *handlers.ReviewHandler
	JWT     *helpers.JWTManager
}

func NewReviewModule(h *handlers.ReviewHandler, jwt *helpers.JWTManager) *ReviewModule {
	return &ReviewModule{Handler: h, JWT: jwt}
}

func (m *ReviewModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	readLimiter := middleware.RateLimit(rdb, 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())

	public := rg.Group("/")
	public.Use(middleware.OptionalAuth(rdb, m.JWT), readLimiter)
	{
		public.GET("/reviews", m.Handler.List)
		public.GET("/reviews/:id", m.Handler.Get)
	}

	auth := rg.Group("/")
	auth.Use(middleware.RequireAuth(rdb, m.JWT))
	auth.Use(middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.PUT("/reviews/:id", m.Handler.Update)
		auth.DELETE("/reviews/:id", m.Handler.Delete)
	}
}
