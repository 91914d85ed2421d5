package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AttendanceLogModel is a frozen copy of one schedule entry on one date.
// The snapshot columns are never refreshed from the live schedule.
type AttendanceLogModel struct {
	AttendanceLogID       uuid.UUID `gorm:"type:uuid;primaryKey;column:attendance_log_id" json:"attendance_log_id"`
	AttendanceLogSchoolID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_attendance_log_entry_date,priority:1;column:attendance_log_school_id" json:"attendance_log_school_id"`
	AttendanceLogDate     time.Time `gorm:"type:date;not null;uniqueIndex:uq_attendance_log_entry_date,priority:2;column:attendance_log_date" json:"attendance_log_date"`

	AttendanceLogOriginalScheduleEntryID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_attendance_log_entry_date,priority:3;column:attendance_log_original_schedule_entry_id" json:"attendance_log_original_schedule_entry_id"`

	// Snapshot
	AttendanceLogDayOfWeek          DayOfWeek      `gorm:"type:varchar(16);not null;column:attendance_log_day_of_week" json:"attendance_log_day_of_week"`
	AttendanceLogTimeSlotID         uuid.UUID      `gorm:"type:uuid;not null;column:attendance_log_time_slot_id" json:"attendance_log_time_slot_id"`
	AttendanceLogSubjectCode        *string        `gorm:"type:varchar(40);column:attendance_log_subject_code" json:"attendance_log_subject_code,omitempty"`
	AttendanceLogCustomActivity     *string        `gorm:"type:text;column:attendance_log_custom_activity" json:"attendance_log_custom_activity,omitempty"`
	AttendanceLogClassGroupID       *uuid.UUID     `gorm:"type:uuid;index;column:attendance_log_class_group_id" json:"attendance_log_class_group_id,omitempty"`
	AttendanceLogRoomID             *uuid.UUID     `gorm:"type:uuid;column:attendance_log_room_id" json:"attendance_log_room_id,omitempty"`
	AttendanceLogOriginalTeacherIDs datatypes.JSON `gorm:"column:attendance_log_original_teacher_ids;not null" json:"attendance_log_original_teacher_ids"`

	// Outcome
	AttendanceLogIsPresent           bool           `gorm:"not null;column:attendance_log_is_present" json:"attendance_log_is_present"`
	AttendanceLogSubstituteTeacherID *uuid.UUID     `gorm:"type:uuid;column:attendance_log_substitute_teacher_id" json:"attendance_log_substitute_teacher_id,omitempty"`
	AttendanceLogActualTeacherIDs    datatypes.JSON `gorm:"column:attendance_log_actual_teacher_ids;not null" json:"attendance_log_actual_teacher_ids"`
	AttendanceLogNotes               *string        `gorm:"type:text;column:attendance_log_notes" json:"attendance_log_notes,omitempty"`

	AttendanceLogCreatedAt time.Time `gorm:"not null;autoCreateTime;column:attendance_log_created_at" json:"attendance_log_created_at"`
}

func (AttendanceLogModel) TableName() string { return "attendance_logs" }

func (m *AttendanceLogModel) BeforeCreate(tx *gorm.DB) error {
	if m.AttendanceLogID == uuid.Nil {
		m.AttendanceLogID = uuid.New()
	}
	if len(m.AttendanceLogOriginalTeacherIDs) == 0 {
		m.AttendanceLogOriginalTeacherIDs = EncodeIDs(nil)
	}
	if len(m.AttendanceLogActualTeacherIDs) == 0 {
		m.AttendanceLogActualTeacherIDs = EncodeIDs(nil)
	}
	return nil
}

func (m *AttendanceLogModel) IsCustomActivity() bool {
	return IsCustomActivity(m.AttendanceLogSubjectCode, m.AttendanceLogCustomActivity)
}

func (m *AttendanceLogModel) ActivityKey() string {
	return ActivityKey(m.AttendanceLogSubjectCode, m.AttendanceLogCustomActivity)
}
