// file: internals/features/timetable/controller/statistics_controller.go
package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"timetable_backend/internals/features/timetable/dto"
	"timetable_backend/internals/features/timetable/service"
	helper "timetable_backend/internals/helpers"
	"timetable_backend/internals/helpers/dbtime"
)

func dateRange(c *fiber.Ctx) (start, end time.Time, err error) {
	for _, p := range []struct {
		key string
		dst *time.Time
	}{{"startDate", &start}, {"endDate", &end}} {
		d, ok, perr := dbtime.QueryDate(c, p.key)
		if !ok {
			return start, end, &service.ValidationError{Field: p.key, Message: "is required"}
		}
		if perr != nil {
			return start, end, &service.ValidationError{Field: p.key, Message: "must be YYYY-MM-DD"}
		}
		*p.dst = d
	}
	return start, end, nil
}

// GET /statistics/attendance-summary?startDate=&endDate=
func (ctl *TimetableController) AttendanceSummary(c *fiber.Ctx) error {
	sid, err := schoolID(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	start, end, err := dateRange(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	rows, err := ctl.Statistics.AttendanceSummary(reqCtx(c), sid, start, end)
	if err != nil {
		return writeServiceError(c, err)
	}
	return helper.JsonList(c, dto.FromAttendanceSummaries(rows))
}

// GET /statistics/substitution-summary?startDate=&endDate=
func (ctl *TimetableController) SubstitutionSummary(c *fiber.Ctx) error {
	sid, err := schoolID(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	start, end, err := dateRange(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	rows, err := ctl.Statistics.SubstitutionSummary(reqCtx(c), sid, start, end)
	if err != nil {
		return writeServiceError(c, err)
	}
	return helper.JsonList(c, dto.FromSubstitutionSummaries(rows))
}
