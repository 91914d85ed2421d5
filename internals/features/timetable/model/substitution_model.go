package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SubstitutionModel: a stand-in teacher covering one occupied slot of an
// absent teacher on one date. Replaced by delete + insert, never updated.
type SubstitutionModel struct {
	SubstitutionID       uuid.UUID `gorm:"type:uuid;primaryKey;column:substitution_id" json:"substitution_id"`
	SubstitutionSchoolID uuid.UUID `gorm:"type:uuid;not null;index:idx_substitution_date,priority:1;column:substitution_school_id" json:"substitution_school_id"`
	SubstitutionDate     time.Time `gorm:"type:date;not null;index:idx_substitution_date,priority:2;column:substitution_date" json:"substitution_date"`

	SubstitutionAbsentTeacherID         uuid.UUID `gorm:"type:uuid;not null;column:substitution_absent_teacher_id" json:"substitution_absent_teacher_id"`
	SubstitutionSubstituteTeacherID     uuid.UUID `gorm:"type:uuid;not null;column:substitution_substitute_teacher_id" json:"substitution_substitute_teacher_id"`
	SubstitutionOriginalScheduleEntryID uuid.UUID `gorm:"type:uuid;not null;index;column:substitution_original_schedule_entry_id" json:"substitution_original_schedule_entry_id"`

	SubstitutionReason string  `gorm:"type:text;not null;column:substitution_reason" json:"substitution_reason"`
	SubstitutionNotes  *string `gorm:"type:text;column:substitution_notes" json:"substitution_notes,omitempty"`

	SubstitutionCreatedAt time.Time `gorm:"not null;autoCreateTime;column:substitution_created_at" json:"substitution_created_at"`
}

func (SubstitutionModel) TableName() string { return "substitutions" }

func (m *SubstitutionModel) BeforeCreate(tx *gorm.DB) error {
	if m.SubstitutionID == uuid.Nil {
		m.SubstitutionID = uuid.New()
	}
	return nil
}
