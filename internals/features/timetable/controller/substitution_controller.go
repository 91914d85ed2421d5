// file: internals/features/timetable/controller/substitution_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"

	"timetable_backend/internals/features/timetable/dto"
	helper "timetable_backend/internals/helpers"
	"timetable_backend/internals/helpers/dbtime"
)

// GET /substitutions?date=YYYY-MM-DD
func (ctl *TimetableController) ListSubstitutions(c *fiber.Ctx) error {
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

	rows, err := ctl.Substitutions.ListByDate(reqCtx(c), sid, date)
	if err != nil {
		return writeServiceError(c, err)
	}
	return helper.JsonList(c, dto.FromSubstitutionViews(rows))
}

// POST /substitutions
func (ctl *TimetableController) CreateSubstitution(c *fiber.Ctx) error {
	sid, err := schoolID(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	var req dto.CreateSubstitutionRequest
	if err := ctl.bind(c, &req); err != nil {
		return writeServiceError(c, err)
	}
	in, err := req.ToInput()
	if err != nil {
		return helper.JsonValidationError(c, "substitutionDate", "substitutionDate must be YYYY-MM-DD")
	}

	m, err := ctl.Substitutions.Assign(reqCtx(c), sid, in)
	if err != nil {
		return writeServiceError(c, err)
	}
	return helper.JsonItem(c, fiber.StatusCreated, dto.FromSubstitution(m))
}

// DELETE /substitutions/:id
func (ctl *TimetableController) DeleteSubstitution(c *fiber.Ctx) error {
	sid, err := schoolID(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	if err := ctl.Substitutions.Unassign(reqCtx(c), sid, id); err != nil {
		return writeServiceError(c, err)
	}
	return helper.JsonNoContent(c)
}
