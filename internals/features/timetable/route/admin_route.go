// file: internals/features/timetable/route/admin_route.go
package routes

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	ttCtl "timetable_backend/internals/features/timetable/controller"
	featuresMiddleware "timetable_backend/internals/middlewares/features"
)

// TimetableRoutes mounts the timetable engine under a JWT-guarded group:
//
//	admin := app.Group("/api/a", AuthJWT(...))
//	routes.TimetableRoutes(admin, db, lg, cfg.LunchBreakLabel)
//
// Teachers may read; writes need admin or owner.
func TimetableRoutes(admin fiber.Router, db *gorm.DB, lg *zap.Logger, lunchBreakLabel string) {
	ctl := ttCtl.NewTimetableController(db, lg, nil, lunchBreakLabel)

	g := admin.Group("/:school_id", featuresMiddleware.RequireSchoolScope())
	read := featuresMiddleware.IsSchoolStaff()
	write := featuresMiddleware.IsSchoolAdmin()

	// Schedule
	g.Get("/schedule", read, ctl.ListSchedule)
	g.Post("/schedule", write, ctl.CreateEntry)
	g.Post("/schedule/resolve-conflict", write, ctl.ResolveConflict)
	g.Post("/schedule/bulk-activity", write, ctl.BulkActivity)
	g.Put("/schedule/:id", write, ctl.UpdateEntry)
	g.Delete("/schedule/:id", write, ctl.DeleteEntry)

	// Substitutions
	g.Get("/substitutions", read, ctl.ListSubstitutions)
	g.Post("/substitutions", write, ctl.CreateSubstitution)
	g.Delete("/substitutions/:id", write, ctl.DeleteSubstitution)

	// Attendance
	g.Get("/attendance", read, ctl.GetAttendance)
	g.Post("/attendance", write, ctl.SaveAttendance)
	g.Delete("/attendance", write, ctl.ResetAttendance)

	// Statistics
	g.Get("/statistics/attendance-summary", read, ctl.AttendanceSummary)
	g.Get("/statistics/substitution-summary", read, ctl.SubstitutionSummary)
}
