package routes

import (
	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"timetable_backend/internals/configs"
	helper "timetable_backend/internals/helpers"
	"timetable_backend/internals/middlewares"
)

// NewApp builds the fiber app with the global middleware chain and every route.
func NewApp(cfg configs.Config, db *gorm.DB, lg *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		DisableStartupMessage:   true,
		ErrorHandler:            helper.ErrorHandler,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
	})

	middlewares.SetupMiddlewares(app, cfg, lg)
	SetupRoutes(app, db, lg, cfg)
	return app
}
