package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"go.uber.org/zap"

	"timetable_backend/internals/configs"
	"timetable_backend/internals/middlewares/logger"
)

// SetupMiddlewares mounts the global chain, outermost first.
func SetupMiddlewares(app *fiber.App, cfg configs.Config, lg *zap.Logger) {
	app.Use(RecoveryMiddleware(lg))
	app.Use(RequestContext(lg, 5*time.Second))
	if !cfg.IsProduction() {
		app.Use(logger.LoggerMiddleware())
	}
	app.Use(CorsMiddleware(cfg.CORSAllowOrigins))
	app.Use(GlobalRateLimiter(cfg.RateLimitPerMinute))
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())
}
