// file: internals/features/timetable/controller/timetable_controller.go
package controller

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"timetable_backend/internals/features/timetable/dto"
	"timetable_backend/internals/features/timetable/service"
	helper "timetable_backend/internals/helpers"
	helperAuth "timetable_backend/internals/helpers/auth"
)

/* =======================================================
   CONTROLLER
   ======================================================= */

type TimetableController struct {
	Log      *zap.Logger
	Validate *validator.Validate

	Schedule      *service.ScheduleService
	Bulk          *service.BulkService
	Substitutions *service.SubstitutionService
	Attendance    *service.AttendanceService
	Statistics    *service.StatisticsService
}

func NewTimetableController(db *gorm.DB, lg *zap.Logger, v *validator.Validate, lunchBreakLabel string) *TimetableController {
	if v == nil {
		v = validator.New(validator.WithRequiredStructEnabled())
	}
	if lg == nil {
		lg = zap.NewNop()
	}
	return &TimetableController{
		Log:           lg,
		Validate:      v,
		Schedule:      service.NewScheduleService(db, lg),
		Bulk:          service.NewBulkService(db, lg),
		Substitutions: service.NewSubstitutionService(db, lg),
		Attendance:    service.NewAttendanceService(db, lg, lunchBreakLabel),
		Statistics:    service.NewStatisticsService(db, lg, lunchBreakLabel),
	}
}

// ambil context standar (diisi middleware RequestContext)
func reqCtx(c *fiber.Ctx) context.Context {
	if uc := c.UserContext(); uc != nil {
		return uc
	}
	return context.Background()
}

func schoolID(c *fiber.Ctx) (uuid.UUID, error) {
	return helperAuth.ResolveSchoolID(c)
}

func pathID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "id is not a valid id")
	}
	return id, nil
}

// bind parses a JSON body and runs validator tags. The returned error is
// meant for writeServiceError.
func (ctl *TimetableController) bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return validationErr(ctl.Validate.Struct(out))
}

// validationErr turns validator output into the service's ValidationError.
func validationErr(err error) error {
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		return &service.ValidationError{
			Field:   lowerFirst(fe.Field()),
			Message: "failed " + fe.Tag() + " validation",
		}
	}
	return &service.ValidationError{Message: err.Error()}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// writeServiceError maps the service error taxonomy onto HTTP.
//
//	ValidationError → 400, NotFoundError → 404,
//	ConflictError → 409 + conflict, IntegrityError → 409,
//	TransientError / anything else → 500 (generic message)
func writeServiceError(c *fiber.Ctx, err error) error {
	var (
		ve *service.ValidationError
		ne *service.NotFoundError
		ce *service.ConflictError
		ie *service.IntegrityError
		fe *fiber.Error
	)
	switch {
	case errors.As(err, &ve):
		return helper.JsonValidationError(c, ve.Field, ve.Error())
	case errors.As(err, &ne):
		return helper.JsonError(c, fiber.StatusNotFound, ne.Error())
	case errors.As(err, &ce):
		return helper.JsonConflict(c, ce.Error(), dto.FromConflict(ce.Conflict))
	case errors.As(err, &ie):
		return helper.JsonError(c, fiber.StatusConflict, ie.Message)
	case errors.As(err, &fe):
		return helper.JsonError(c, fe.Code, fe.Message)
	default:
		return helper.JsonError(c, fiber.StatusInternalServerError, "Something went wrong, please try again")
	}
}
