package router

import (
	"github.com/devtrail/bootcamper/internal/application"
	"github.com/devtrail/bootcamper/internal/container"
	"github.com/devtrail/bootcamper/internal/infrastructure/mongodb"
	handlers "github.com/devtrail/bootcamper/internal/interface/http"
	"github.com/devtrail/bootcamper/internal/router/modules"
)

// InitModules builds every feature module from the container singletons and
// registers it on the registry. Called once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	mongo := container.GetMongo()

	users := mongodb.NewUserRepository(mongo)
	bootcamps := mongodb.NewBootcampRepository(mongo)
	courses := mongodb.NewCourseRepository(mongo)
	reviews := mongodb.NewReviewRepository(mongo)

	maintainer := application.NewAggregateMaintainer(bootcamps, courses, reviews, logger)

	authSvc := application.NewAuthService(users, container.GetJWT(), container.GetRedis(), container.GetRabbitPub(), logger, cfg)
	bootcampSvc := application.NewBootcampService(bootcamps, maintainer, container.GetGeocoder(), container.GetES(), cfg.ESBootcampIndex, container.GetGCS(), cfg.GCSBucket, logger)
	courseSvc := application.NewCourseService(courses, bootcamps, maintainer, logger)
	reviewSvc := application.NewReviewService(reviews, bootcamps, maintainer, logger)
	userSvc := application.NewUserService(users, logger)

	authHandler := handlers.NewAuthHandler(authSvc, logger, cfg.CookieDomain, cfg.CookieSecure)
	bootcampHandler := handlers.NewBootcampHandler(bootcampSvc, logger)
	courseHandler := handlers.NewCourseHandler(courseSvc, logger)
	reviewHandler := handlers.NewReviewHandler(reviewSvc, logger)
	userHandler := handlers.NewUserHandler(userSvc, logger)

	jwt := container.GetJWT()
	r.Add(modules.NewAuthModule(authHandler, jwt))
	r.Add(modules.NewBootcampModule(bootcampHandler, courseHandler, reviewHandler, jwt))
	r.Add(modules.NewCourseModule(courseHandler, jwt))
	r.Add(modules.NewReviewModule(reviewHandler, jwt))
	r.Add(modules.NewUserModule(userHandler, jwt))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
