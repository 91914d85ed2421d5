// file: internals/features/timetable/controller/attendance_controller.go
package controller

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"timetable_backend/internals/features/timetable/dto"
	"timetable_backend/internals/features/timetable/service"
	helper "timetable_backend/internals/helpers"
	"timetable_backend/internals/helpers/dbtime"
)

// GET /attendance?date=YYYY-MM-DD
func (ctl *TimetableController) GetAttendance(c *fiber.Ctx) error {
	sid, err := schoolID(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	date, ok, err := dbtime.QueryDate(c, "date")
	if !ok {
		return helper.JsonValidationError(c, "date", "date is required")
	}
	if err != nil {
		return helper.JsonValidationError(c, "date", "date must be YYYY-MM-DD")
	}

	days, err := ctl.Attendance.Reconcile(reqCtx(c), sid, date)
	if err != nil {
		return writeServiceError(c, err)
	}
	return helper.JsonList(c, dto.FromAttendanceRecords(service.Flatten(days)))
}

// POST /attendance (array of records)
func (ctl *TimetableController) SaveAttendance(c *fiber.Ctx) error {
	sid, err := schoolID(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	var req []dto.AttendanceRecordDTO
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Body must be an array of attendance records")
	}
	if len(req) == 0 {
		return helper.JsonValidationError(c, "records", "at least one record is required")
	}
	for i := range req {
		if err := validationErr(ctl.Validate.Struct(req[i])); err != nil {
			return writeServiceError(c, err)
		}
	}

	records := make([]service.SaveRecord, 0, len(req))
	for i, r := range req {
		rec, err := r.ToSaveRecord()
		if err != nil {
			return helper.JsonValidationError(c, "date", fmt.Sprintf("record %d: date must be YYYY-MM-DD", i))
		}
		records = append(records, rec)
	}

	res, err := ctl.Attendance.Save(reqCtx(c), sid, records)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(dto.SaveAttendanceResponse{
		Success: true,
		Saved:   res.Saved,
		Skipped: res.Skipped,
	})
}

// DELETE /attendance {date, classGroupIds[]}
func (ctl *TimetableController) ResetAttendance(c *fiber.Ctx) error {
	sid, err := schoolID(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	var req dto.ResetAttendanceRequest
	if err := ctl.bind(c, &req); err != nil {
		return writeServiceError(c, err)
	}
	date, err := dbtime.ParseDate(req.Date)
	if err != nil {
		return helper.JsonValidationError(c, "date", "date must be YYYY-MM-DD")
	}

	n, err := ctl.Attendance.Reset(reqCtx(c), sid, date, req.ClassGroupIDs)
	if err != nil {
		return writeServiceError(c, err)
	}
	return helper.JsonOK(c, fmt.Sprintf("%d attendance records reset for %s.", n, dbtime.FormatDate(date)))
}
