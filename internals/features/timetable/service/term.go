package service

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"timetable_backend/internals/features/timetable/model"
)

// Term is the (academic year, semester) key that scopes the current schedule.
type Term struct {
	AcademicYear int `json:"academicYear"`
	Semester     int `json:"semester"`
}

// CurrentTerm returns the school's active term with the highest (year, semester).
func CurrentTerm(tx *gorm.DB, schoolID uuid.UUID) (Term, error) {
	var row model.AcademicTermModel
	err := tx.
		Where("academic_term_school_id = ? AND academic_term_is_active = ?", schoolID, true).
		Order("academic_term_academic_year DESC").
		Order("academic_term_semester DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Term{}, invalid("term", "school has no active academic term")
		}
		return Term{}, storeErr("resolve current term", err)
	}
	return Term{AcademicYear: row.AcademicTermAcademicYear, Semester: row.AcademicTermSemester}, nil
}

func ensureTimeSlot(tx *gorm.DB, schoolID, slotID uuid.UUID) error {
	var n int64
	if err := tx.Model(&model.TimeSlotModel{}).
		Where("time_slot_school_id = ? AND time_slot_id = ?", schoolID, slotID).
		Count(&n).Error; err != nil {
		return storeErr("check time slot", err)
	}
	if n == 0 {
		return notFound("time slot", slotID)
	}
	return nil
}
