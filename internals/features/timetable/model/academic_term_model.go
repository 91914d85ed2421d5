package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AcademicTermModel: (academic year, semester) pairs per school. The active
// term with the highest (year, semester) is the school's current term.
type AcademicTermModel struct {
	AcademicTermID           uuid.UUID `gorm:"type:uuid;primaryKey;column:academic_term_id" json:"academic_term_id"`
	AcademicTermSchoolID     uuid.UUID `gorm:"type:uuid;not null;index;column:academic_term_school_id" json:"academic_term_school_id"`
	AcademicTermAcademicYear int       `gorm:"not null;column:academic_term_academic_year" json:"academic_term_academic_year"`
	AcademicTermSemester     int       `gorm:"not null;column:academic_term_semester" json:"academic_term_semester"`

	AcademicTermStartDate *time.Time `gorm:"type:date;column:academic_term_start_date" json:"academic_term_start_date,omitempty"`
	AcademicTermEndDate   *time.Time `gorm:"type:date;column:academic_term_end_date" json:"academic_term_end_date,omitempty"`
	AcademicTermIsActive  bool       `gorm:"not null;column:academic_term_is_active" json:"academic_term_is_active"`

	AcademicTermCreatedAt time.Time `gorm:"not null;autoCreateTime;column:academic_term_created_at" json:"academic_term_created_at"`
	AcademicTermUpdatedAt time.Time `gorm:"not null;autoUpdateTime;column:academic_term_updated_at" json:"academic_term_updated_at"`
}

func (AcademicTermModel) TableName() string { return "academic_terms" }

func (m *AcademicTermModel) BeforeCreate(tx *gorm.DB) error {
	if m.AcademicTermID == uuid.Nil {
		m.AcademicTermID = uuid.New()
	}
	return nil
}

// Mirror CHECK: end >= start
func (m *AcademicTermModel) BeforeSave(tx *gorm.DB) error {
	if m.AcademicTermSemester < 1 {
		return errors.New("academic_term_semester must be >= 1")
	}
	if m.AcademicTermStartDate != nil && m.AcademicTermEndDate != nil &&
		m.AcademicTermEndDate.Before(*m.AcademicTermStartDate) {
		return errors.New("academic_term_end_date must be >= academic_term_start_date")
	}
	return nil
}
