package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/devtrail/bootcamper/internal/container"
	handlers "github.com/devtrail/bootcamper/internal/interface/http"
	"github.com/devtrail/bootcamper/internal/interface/middleware"
	"github.com/devtrail/bootcamper/pkg/helpers"
)

// BootcampModule registers the bootcamp routes, including the nested course
// and review collections.
type BootcampModule struct {
	Bootcamps *handlers.BootcampHandler
	Courses   *handlers.CourseHandler
	Reviews   *handlers.ReviewHandler
	JWT       *helpers.JWTManager
}

func NewBootcampModule(b *handlers.BootcampHandler, c *handlers.CourseHandler, r *handlers.ReviewHandler, jwt *helpers.JWTManager) *BootcampModule {
	return &BootcampModule{Bootcamps: b, Courses: c, Reviews: r, JWT: jwt}
}

func (m *BootcampModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	readLimiter := middleware.RateLimit(rdb, 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())

	// Public reads resolve the identity when a token is present so admin and
	// owner callers keep their privileges downstream.
	public := rg.Group("/")
	public.Use(middleware.OptionalAuth(rdb, m.JWT), readLimiter)
	{
		public.GET("/bootcamps", m.Bootcamps.List)
		public.GET("/bootcamps/search", m.Bootcamps.Search)
		public.GET("/bootcamps/radius/:zipcode/:distance", m.Bootcamps.WithinRadius)
		public.GET("/bootcamps/:id", m.Bootcamps.Get)
		public.GET("/bootcamps/:id/courses", m.Courses.List)
		public.GET("/bootcamps/:id/reviews", m.Reviews.List)
	}

	// Mutations require authentication; role and ownership checks live in the
	// services.
	auth := rg.Group("/")
	auth.Use(middleware.RequireAuth(rdb, m.JWT))
	auth.Use(middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/bootcamps", m.Bootcamps.Create)
		auth.PUT("/bootcamps/:id", m.Bootcamps.Update)
		auth.DELETE("/bootcamps/:id", m.Bootcamps.Delete)
		auth.PUT("/bootcamps/:id/photo", m.Bootcamps.UploadPhoto)
		auth.POST("/bootcamps/:id/courses", m.Courses.Create)
		auth.POST("/bootcamps/:id/reviews", m.Reviews.Create)
	}
}
