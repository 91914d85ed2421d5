// file: internals/features/timetable/dto/attendance_dto.go
package dto

import (
	"github.com/google/uuid"

	"timetable_backend/internals/features/timetable/service"
	"timetable_backend/internals/helpers/dbtime"
)

// AttendanceRecordDTO is both the GET shape and the POST item. On save only
// date, originalScheduleEntryId and the outcome fields are read; the
// snapshot fields are ignored.
type AttendanceRecordDTO struct {
	ID                      *uuid.UUID `json:"id,omitempty"`
	Date                    string     `json:"date" validate:"required"`
	OriginalScheduleEntryID uuid.UUID  `json:"originalScheduleEntryId" validate:"required"`

	DayOfWeek          string      `json:"dayOfWeek,omitempty"`
	TimeSlotID         *uuid.UUID  `json:"timeSlotId,omitempty"`
	SubjectCode        *string     `json:"subjectCode,omitempty"`
	CustomActivity     *string     `json:"customActivity,omitempty"`
	ClassGroupID       *uuid.UUID  `json:"classGroupId,omitempty"`
	LocationID         *uuid.UUID  `json:"locationId,omitempty"`
	OriginalTeacherIDs []uuid.UUID `json:"originalTeacherIds,omitempty"`

	IsPresent           bool        `json:"isPresent"`
	SubstituteTeacherID *uuid.UUID  `json:"substituteTeacherId"`
	ActualTeacherIDs    []uuid.UUID `json:"actualTeacherIds" validate:"omitempty,max=20"`
	Notes               *string     `json:"notes" validate:"omitempty,max=2000"`

	Source string `json:"source,omitempty"`
}

func (r AttendanceRecordDTO) ToSaveRecord() (service.SaveRecord, error) {
	d, err := dbtime.ParseDate(r.Date)
	if err != nil {
		return service.SaveRecord{}, err
	}
	return service.SaveRecord{
		Date:                    d,
		OriginalScheduleEntryID: r.OriginalScheduleEntryID,
		IsPresent:               r.IsPresent,
		SubstituteTeacherID:     r.SubstituteTeacherID,
		ActualTeacherIDs:        r.ActualTeacherIDs,
		Notes:                   r.Notes,
	}, nil
}

func FromAttendanceRecord(r service.AttendanceRecord) AttendanceRecordDTO {
	slot := r.TimeSlotID
	orig := r.OriginalTeacherIDs
	if orig == nil {
		orig = []uuid.UUID{}
	}
	actual := r.ActualTeacherIDs
	if actual == nil {
		actual = []uuid.UUID{}
	}
	return AttendanceRecordDTO{
		ID:                      r.LogID,
		Date:                    dbtime.FormatDate(r.Date),
		OriginalScheduleEntryID: r.OriginalScheduleEntryID,
		DayOfWeek:               string(r.Day),
		TimeSlotID:              &slot,
		SubjectCode:             r.SubjectCode,
		CustomActivity:          r.CustomActivity,
		ClassGroupID:            r.ClassGroupID,
		LocationID:              r.RoomID,
		OriginalTeacherIDs:      orig,
		IsPresent:               r.IsPresent,
		SubstituteTeacherID:     r.SubstituteTeacherID,
		ActualTeacherIDs:        actual,
		Notes:                   r.Notes,
		Source:                  string(r.Source),
	}
}

func FromAttendanceRecords(rs []service.AttendanceRecord) []AttendanceRecordDTO {
	out := make([]AttendanceRecordDTO, 0, len(rs))
	for _, r := range rs {
		out = append(out, FromAttendanceRecord(r))
	}
	return out
}

type SaveAttendanceResponse struct {
	Success bool `json:"success"`
	Saved   int  `json:"saved"`
	Skipped int  `json:"skipped"`
}

// ResetAttendanceRequest: the nil uuid in classGroupIds selects logs
// without a class group.
type ResetAttendanceRequest struct {
	Date          string      `json:"date" validate:"required"`
	ClassGroupIDs []uuid.UUID `json:"classGroupIds" validate:"required,min=1"`
}
