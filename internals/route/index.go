// file: internals/route/index.go
package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"timetable_backend/internals/configs"
	timetableRoutes "timetable_backend/internals/features/timetable/route"
	schoolMiddleware "timetable_backend/internals/middlewares/auth_school"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, db *gorm.DB, lg *zap.Logger, cfg configs.Config) {
	startTime = time.Now()

	// ===================== PUBLIC =====================
	BaseRoutes(app, db, cfg)

	// ===================== ADMIN (per school) =====================
	lg.Info("setting up ADMIN group (Auth + Scope + RoleCheck)")
	admin := app.Group("/api/a",
		schoolMiddleware.AuthJWT(schoolMiddleware.AuthJWTOpts{
			Secret:              cfg.JWTSecret,
			AllowCookieFallback: true,
		}),
	)

	// ===================== MOUNT ROUTES =====================
	lg.Info("mounting timetable routes")
	timetableRoutes.TimetableRoutes(admin, db, lg, cfg.LunchBreakLabel)
}
