// file: internals/features/timetable/dto/bulk_dto.go
package dto

import (
	"github.com/google/uuid"

	"timetable_backend/internals/features/timetable/model"
	"timetable_backend/internals/features/timetable/service"
)

type BulkActivityRequest struct {
	CustomActivity string      `json:"customActivity" validate:"required,max=200"`
	Days           []string    `json:"days" validate:"required,min=1,max=7"`
	TimeSlotIDs    []uuid.UUID `json:"timeSlotIds" validate:"required,min=1"`
	ClassGroupIDs  []uuid.UUID `json:"classGroupIds" validate:"omitempty"`
	TeacherIDs     []uuid.UUID `json:"teacherIds" validate:"omitempty,max=20"`
	LocationID     *uuid.UUID  `json:"locationId" validate:"omitempty"`
}

// ToInput maps the request; unknown day names pass through and are rejected
// by the service with the offending value.
func (r BulkActivityRequest) ToInput() service.BulkActivityInput {
	days := make([]model.DayOfWeek, 0, len(r.Days))
	for _, d := range r.Days {
		if v, ok := model.ParseDayOfWeek(d); ok {
			days = append(days, v)
		} else {
			days = append(days, model.DayOfWeek(d))
		}
	}
	return service.BulkActivityInput{
		Activity:      r.CustomActivity,
		Days:          days,
		TimeSlotIDs:   r.TimeSlotIDs,
		ClassGroupIDs: r.ClassGroupIDs,
		TeacherIDs:    r.TeacherIDs,
		RoomID:        r.LocationID,
	}
}

type BulkConflictResponse struct {
	Day          string     `json:"day"`
	TimeSlotID   uuid.UUID  `json:"timeSlotId"`
	ClassGroupID *uuid.UUID `json:"classGroupId"`
	Kind         string     `json:"kind,omitempty"`
	Reason       string     `json:"reason"`
}

type BulkActivityResponse struct {
	Success      bool                   `json:"success"`
	Message      string                 `json:"message"`
	SuccessCount int                    `json:"successCount"`
	SkippedCount int                    `json:"skippedCount"`
	Conflicts    []BulkConflictResponse `json:"conflicts"`
}

func FromBulkResult(r service.BulkResult) BulkActivityResponse {
	out := BulkActivityResponse{
		Success:      true,
		Message:      r.Summary(),
		SuccessCount: r.SuccessCount,
		SkippedCount: r.SkippedCount,
		Conflicts:    make([]BulkConflictResponse, 0, len(r.Skipped)),
	}
	for _, s := range r.Skipped {
		row := BulkConflictResponse{
			Day:          string(s.Day),
			TimeSlotID:   s.TimeSlotID,
			ClassGroupID: s.ClassGroupID,
			Reason:       s.Reason,
		}
		if s.Conflict != nil {
			row.Kind = string(s.Conflict.Kind)
		}
		out.Conflicts = append(out.Conflicts, row)
	}
	return out
}
