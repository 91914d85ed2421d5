// file: internals/features/timetable/controller/schedule_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"

	"timetable_backend/internals/features/timetable/dto"
	helper "timetable_backend/internals/helpers"
)

// GET /schedule
func (ctl *TimetableController) ListSchedule(c *fiber.Ctx) error {
	sid, err := schoolID(c)
	if err != nil {
		return writeServiceError(c, err)
	}

	var q dto.ListScheduleQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid query")
	}
	f, field, err := q.ToFilter()
	if err != nil {
		return helper.JsonValidationError(c, field, err.Error())
	}

	entries, err := ctl.Schedule.List(reqCtx(c), sid, f)
	if err != nil {
		return writeServiceError(c, err)
	}
	return helper.JsonList(c, dto.FromEntries(entries))
}

// POST /schedule
func (ctl *TimetableController) CreateEntry(c *fiber.Ctx) error {
	sid, err := schoolID(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	var req dto.ScheduleEntryRequest
	if err := ctl.bind(c, &req); err != nil {
		return writeServiceError(c, err)
	}

	e, err := ctl.Schedule.Create(reqCtx(c), sid, req.ToInput())
	if err != nil {
		return writeServiceError(c, err)
	}
	return helper.JsonItem(c, fiber.StatusCreated, dto.FromEntry(e))
}

// PUT /schedule/:id
func (ctl *TimetableController) UpdateEntry(c *fiber.Ctx) error {
	sid, err := schoolID(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	var req dto.ScheduleEntryRequest
	if err := ctl.bind(c, &req); err != nil {
		return writeServiceError(c, err)
	}

	in := req.ToInput()
	in.ID = nil
	e, err := ctl.Schedule.Update(reqCtx(c), sid, id, in)
	if err != nil {
		return writeServiceError(c, err)
	}
	return helper.JsonItem(c, fiber.StatusOK, dto.FromEntry(e))
}

// DELETE /schedule/:id
func (ctl *TimetableController) DeleteEntry(c *fiber.Ctx) error {
	sid, err := schoolID(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	if err := ctl.Schedule.Delete(reqCtx(c), sid, id); err != nil {
		return writeServiceError(c, err)
	}
	return helper.JsonNoContent(c)
}

// POST /schedule/resolve-conflict
func (ctl *TimetableController) ResolveConflict(c *fiber.Ctx) error {
	sid, err := schoolID(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	var req dto.ResolveConflictRequest
	if err := ctl.bind(c, &req); err != nil {
		return writeServiceError(c, err)
	}

	e, created, err := ctl.Schedule.ResolveConflict(reqCtx(c), sid, req.EntryToSave.ToInput(), req.ConflictingEntryID)
	if err != nil {
		return writeServiceError(c, err)
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return helper.JsonItem(c, status, dto.FromEntry(e))
}

// POST /schedule/bulk-activity
func (ctl *TimetableController) BulkActivity(c *fiber.Ctx) error {
	sid, err := schoolID(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	var req dto.BulkActivityRequest
	if err := ctl.bind(c, &req); err != nil {
		return writeServiceError(c, err)
	}

	res, err := ctl.Bulk.PlaceBulkActivity(reqCtx(c), sid, req.ToInput())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(dto.FromBulkResult(res))
}
