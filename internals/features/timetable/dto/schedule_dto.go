// file: internals/features/timetable/dto/schedule_dto.go
package dto

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"timetable_backend/internals/features/timetable/model"
	"timetable_backend/internals/features/timetable/service"
)

/* =========================
   Request
   ========================= */

type ScheduleEntryRequest struct {
	// only read by resolve-conflict: set = update that entry
	ID *uuid.UUID `json:"id" validate:"omitempty"`

	Day            string      `json:"day" validate:"required"`
	TimeSlotID     uuid.UUID   `json:"timeSlotId" validate:"required"`
	ClassGroupID   *uuid.UUID  `json:"classGroupId" validate:"omitempty"`
	SubjectCode    *string     `json:"subjectCode" validate:"omitempty,max=40"`
	CustomActivity *string     `json:"customActivity" validate:"omitempty,max=200"`
	TeacherIDs     []uuid.UUID `json:"teacherIds" validate:"omitempty,max=20"`
	LocationID     *uuid.UUID  `json:"locationId" validate:"omitempty"`
}

// ToInput maps the request onto the service input. An unknown day is left
// for the service to reject.
func (r ScheduleEntryRequest) ToInput() service.EntryInput {
	day, _ := model.ParseDayOfWeek(r.Day)
	return service.EntryInput{
		ID:             r.ID,
		Day:            day,
		TimeSlotID:     r.TimeSlotID,
		ClassGroupID:   r.ClassGroupID,
		SubjectCode:    r.SubjectCode,
		CustomActivity: r.CustomActivity,
		TeacherIDs:     r.TeacherIDs,
		RoomID:         r.LocationID,
	}
}

type ResolveConflictRequest struct {
	EntryToSave        ScheduleEntryRequest `json:"entryToSave" validate:"required"`
	ConflictingEntryID uuid.UUID            `json:"conflictingEntryId" validate:"required"`
}

// ListScheduleQuery: all filters optional; year and semester go together.
type ListScheduleQuery struct {
	AcademicYear string `query:"academicYear"`
	Semester     string `query:"semester"`
	Day          string `query:"day"`
	ClassGroupID string `query:"classGroupId"`
	TeacherID    string `query:"teacherId"`
}

// ToFilter returns the offending query parameter name on failure.
func (q ListScheduleQuery) ToFilter() (service.ListFilter, string, error) {
	var f service.ListFilter

	year, sem := strings.TrimSpace(q.AcademicYear), strings.TrimSpace(q.Semester)
	if (year == "") != (sem == "") {
		return f, "semester", errors.New("academicYear and semester must be given together")
	}
	if year != "" {
		y, err := strconv.Atoi(year)
		if err != nil {
			return f, "academicYear", err
		}
		s, err := strconv.Atoi(sem)
		if err != nil {
			return f, "semester", err
		}
		f.Term = &service.Term{AcademicYear: y, Semester: s}
	}
	if d := strings.TrimSpace(q.Day); d != "" {
		day, ok := model.ParseDayOfWeek(d)
		if !ok {
			return f, "day", fmt.Errorf("unknown day %q", d)
		}
		f.Day = &day
	}
	if v := strings.TrimSpace(q.ClassGroupID); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, "classGroupId", err
		}
		f.ClassGroupID = &id
	}
	if v := strings.TrimSpace(q.TeacherID); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, "teacherId", err
		}
		f.TeacherID = &id
	}
	return f, "", nil
}

/* =========================
   Response
   ========================= */

type ScheduleEntryResponse struct {
	ID             uuid.UUID   `json:"id"`
	Day            string      `json:"day"`
	TimeSlotID     uuid.UUID   `json:"timeSlotId"`
	AcademicYear   int         `json:"academicYear"`
	Semester       int         `json:"semester"`
	ClassGroupID   *uuid.UUID  `json:"classGroupId"`
	SubjectCode    *string     `json:"subjectCode"`
	CustomActivity *string     `json:"customActivity"`
	TeacherIDs     []uuid.UUID `json:"teacherIds"`
	LocationID     *uuid.UUID  `json:"locationId"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

func FromEntry(e service.Entry) ScheduleEntryResponse {
	ids := e.TeacherIDs
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return ScheduleEntryResponse{
		ID:             e.ID,
		Day:            string(e.Day),
		TimeSlotID:     e.TimeSlotID,
		AcademicYear:   e.Term.AcademicYear,
		Semester:       e.Term.Semester,
		ClassGroupID:   e.ClassGroupID,
		SubjectCode:    e.SubjectCode,
		CustomActivity: e.CustomActivity,
		TeacherIDs:     ids,
		LocationID:     e.RoomID,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func FromEntries(es []service.Entry) []ScheduleEntryResponse {
	out := make([]ScheduleEntryResponse, 0, len(es))
	for _, e := range es {
		out = append(out, FromEntry(e))
	}
	return out
}

/* =========================
   Conflict
   ========================= */

type ConflictResponse struct {
	Kind             string                 `json:"kind"`
	ConflictingEntry *ScheduleEntryResponse `json:"conflictingEntry,omitempty"`
	Substitution     *SubstitutionResponse  `json:"substitution,omitempty"`
	Message          string                 `json:"message"`
}

func FromConflict(c *service.Conflict) *ConflictResponse {
	if c == nil {
		return nil
	}
	out := &ConflictResponse{Kind: string(c.Kind), Message: c.Message}
	if c.Entry != nil {
		e := FromEntry(*c.Entry)
		out.ConflictingEntry = &e
	}
	if c.Substitution != nil {
		s := FromSubstitution(*c.Substitution)
		out.Substitution = &s
	}
	return out
}
