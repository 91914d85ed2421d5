// file: internals/features/timetable/dto/substitution_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	"timetable_backend/internals/features/timetable/model"
	"timetable_backend/internals/features/timetable/service"
	"timetable_backend/internals/helpers/dbtime"
)

type CreateSubstitutionRequest struct {
	SubstitutionDate        string     `json:"substitutionDate" validate:"required"`
	AbsentTeacherID         uuid.UUID  `json:"absentTeacherId" validate:"required"`
	SubstituteTeacherID     uuid.UUID  `json:"substituteTeacherId" validate:"required"`
	OriginalScheduleEntryID uuid.UUID  `json:"originalScheduleEntryId" validate:"required"`
	Reason                  string     `json:"reason" validate:"required,max=500"`
	Notes                   *string    `json:"notes" validate:"omitempty,max=2000"`
	ReplaceID               *uuid.UUID `json:"replaceId" validate:"omitempty"`
}

// ToInput fails only on a malformed date.
func (r CreateSubstitutionRequest) ToInput() (service.AssignInput, error) {
	d, err := dbtime.ParseDate(r.SubstitutionDate)
	if err != nil {
		return service.AssignInput{}, err
	}
	return service.AssignInput{
		Date:                d,
		AbsentTeacherID:     r.AbsentTeacherID,
		SubstituteTeacherID: r.SubstituteTeacherID,
		OriginalEntryID:     r.OriginalScheduleEntryID,
		Reason:              r.Reason,
		Notes:               r.Notes,
		ReplaceID:           r.ReplaceID,
	}, nil
}

type SubstitutionResponse struct {
	ID                      uuid.UUID `json:"id"`
	SubstitutionDate        string    `json:"substitutionDate"`
	AbsentTeacherID         uuid.UUID `json:"absentTeacherId"`
	SubstituteTeacherID     uuid.UUID `json:"substituteTeacherId"`
	OriginalScheduleEntryID uuid.UUID `json:"originalScheduleEntryId"`
	Reason                  string    `json:"reason"`
	Notes                   *string   `json:"notes"`
	CreatedAt               time.Time `json:"createdAt"`

	// covered slot, present on listings
	TimeSlotID     *uuid.UUID `json:"timeSlotId,omitempty"`
	ClassGroupID   *uuid.UUID `json:"classGroupId,omitempty"`
	SubjectCode    *string    `json:"subjectCode,omitempty"`
	CustomActivity *string    `json:"customActivity,omitempty"`
}

func FromSubstitution(m model.SubstitutionModel) SubstitutionResponse {
	return SubstitutionResponse{
		ID:                      m.SubstitutionID,
		SubstitutionDate:        dbtime.FormatDate(m.SubstitutionDate),
		AbsentTeacherID:         m.SubstitutionAbsentTeacherID,
		SubstituteTeacherID:     m.SubstitutionSubstituteTeacherID,
		OriginalScheduleEntryID: m.SubstitutionOriginalScheduleEntryID,
		Reason:                  m.SubstitutionReason,
		Notes:                   m.SubstitutionNotes,
		CreatedAt:               m.SubstitutionCreatedAt,
	}
}

func FromSubstitutionViews(rows []service.SubstitutionView) []SubstitutionResponse {
	out := make([]SubstitutionResponse, 0, len(rows))
	for _, r := range rows {
		s := FromSubstitution(r.SubstitutionModel)
		s.TimeSlotID = r.TimeSlotID
		s.ClassGroupID = r.ClassGroupID
		s.SubjectCode = r.SubjectCode
		s.CustomActivity = r.CustomActivity
		out = append(out, s)
	}
	return out
}
