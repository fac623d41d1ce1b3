package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/devtrail/bootcamper/internal/container"
	handlers "github.com/devtrail/bootcamper/internal/interface/http"
	"github.com/devtrail/bootcamper/internal/interface/middleware"
	"github.com/devtrail/bootcamper/pkg/helpers"
)

// CourseModule registers the top-level course routes. Nested course routes
// live on the bootcamp module.
type CourseModule struct {
	Handler *handlers.CourseHandler
	JWT     *helpers.JWTManager
}

func NewCourseModule(h *handlers.CourseHandler, jwt *helpers.JWTManager) *CourseModule {
	return &CourseModule{Handler: h, JWT: jwt}
}

func (m *CourseModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	readLimiter := middleware.RateLimit(rdb, 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())

	public := rg.Group("/")
	public.Use(middleware.OptionalAuth(rdb, m.JWT), readLimiter)
	{
		public.GET("/courses", m.Handler.List)
		public.GET("/courses/:id", m.Handler.Get)
	}

	auth := rg.Group("/")
	auth.Use(middleware.RequireAuth(rdb, m.JWT))
	auth.Use(middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.PUT("/courses/:id", m.Handler.Update)
		auth.DELETE("/courses/:id", m.Handler.Delete)
	}
}
