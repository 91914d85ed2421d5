// file: internals/features/timetable/dto/statistics_dto.go
package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"timetable_backend/internals/features/timetable/service"
)

type SubjectSummaryResponse struct {
	Key                string          `json:"key"`
	IsCustomActivity   bool            `json:"isCustomActivity"`
	TotalScheduled     int             `json:"totalScheduled"`
	TaughtBySelf       int             `json:"taughtBySelf"`
	TaughtBySubstitute int             `json:"taughtBySubstitute"`
	SelfTaughtRate     decimal.Decimal `json:"selfTaughtRate"`
}

type AttendanceSummaryResponse struct {
	TeacherID          uuid.UUID                `json:"teacherId"`
	TeacherName        string                   `json:"teacherName"`
	TotalScheduled     int                      `json:"totalScheduled"`
	TaughtBySelf       int                      `json:"taughtBySelf"`
	TaughtBySubstitute int                      `json:"taughtBySubstitute"`
	SelfTaughtRate     decimal.Decimal          `json:"selfTaughtRate"`
	Subjects           []SubjectSummaryResponse `json:"subjects"`
}

func FromAttendanceSummaries(rows []service.TeacherAttendanceSummary) []AttendanceSummaryResponse {
	out := make([]AttendanceSummaryResponse, 0, len(rows))
	for _, r := range rows {
		item := AttendanceSummaryResponse{
			TeacherID:          r.TeacherID,
			TeacherName:        r.TeacherName,
			TotalScheduled:     r.TotalScheduled,
			TaughtBySelf:       r.TaughtBySelf,
			TaughtBySubstitute: r.TaughtBySubstitute,
			SelfTaughtRate:     r.SelfTaughtRate(),
			Subjects:           make([]SubjectSummaryResponse, 0, len(r.Subjects)),
		}
		for _, s := range r.Subjects {
			item.Subjects = append(item.Subjects, SubjectSummaryResponse{
				Key:                s.Key,
				IsCustomActivity:   s.IsCustomActivity,
				TotalScheduled:     s.TotalScheduled,
				TaughtBySelf:       s.TaughtBySelf,
				TaughtBySubstitute: s.TaughtBySubstitute,
				SelfTaughtRate:     s.SelfTaughtRate(),
			})
		}
		out = append(out, item)
	}
	return out
}

type SubstitutionSummaryResponse struct {
	TeacherID          uuid.UUID `json:"teacherId"`
	TeacherName        string    `json:"teacherName"`
	TaughtAsSubstitute int64     `json:"taughtAsSubstitute"`
	WasSubstitutedFor  int64     `json:"wasSubstitutedFor"`
}

func FromSubstitutionSummaries(rows []service.TeacherSubstitutionSummary) []SubstitutionSummaryResponse {
	out := make([]SubstitutionSummaryResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, SubstitutionSummaryResponse(r))
	}
	return out
}
