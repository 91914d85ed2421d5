package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/* =======================================================
   Day of week
   ======================================================= */

type DayOfWeek string

const (
	Monday    DayOfWeek = "Monday"
	Tuesday   DayOfWeek = "Tuesday"
	Wednesday DayOfWeek = "Wednesday"
	Thursday  DayOfWeek = "Thursday"
	Friday    DayOfWeek = "Friday"
	Saturday  DayOfWeek = "Saturday"
	Sunday    DayOfWeek = "Sunday"
)

var AllDays = []DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ParseDayOfWeek accepts any casing of the English day name.
func ParseDayOfWeek(s string) (DayOfWeek, bool) {
	s = strings.TrimSpace(s)
	for _, d := range AllDays {
		if strings.EqualFold(string(d), s) {
			return d, true
		}
	}
	return "", false
}

func DayOfWeekOf(t time.Time) DayOfWeek {
	return DayOfWeek(t.Weekday().String())
}

// Index is 1 for Monday through 7 for Sunday, 0 when unknown.
func (d DayOfWeek) Index() int {
	for i, v := range AllDays {
		if v == d {
			return i + 1
		}
	}
	return 0
}

/* =======================================================
   ScheduleEntryModel: map ke tabel schedule_entries
   ======================================================= */

type ScheduleEntryModel struct {
	ScheduleEntryID       uuid.UUID `gorm:"type:uuid;primaryKey;column:schedule_entry_id" json:"schedule_entry_id"`
	ScheduleEntrySchoolID uuid.UUID `gorm:"type:uuid;not null;column:schedule_entry_school_id;index:idx_schedule_entry_slot,priority:1" json:"schedule_entry_school_id"`

	// Occupancy key: (school, day, slot, year, semester)
	ScheduleEntryDayOfWeek    DayOfWeek `gorm:"type:varchar(16);not null;column:schedule_entry_day_of_week;index:idx_schedule_entry_slot,priority:2" json:"schedule_entry_day_of_week"`
	ScheduleEntryTimeSlotID   uuid.UUID `gorm:"type:uuid;not null;column:schedule_entry_time_slot_id;index:idx_schedule_entry_slot,priority:3" json:"schedule_entry_time_slot_id"`
	ScheduleEntryAcademicYear int       `gorm:"not null;column:schedule_entry_academic_year;index:idx_schedule_entry_slot,priority:4" json:"schedule_entry_academic_year"`
	ScheduleEntrySemester     int       `gorm:"not null;column:schedule_entry_semester;index:idx_schedule_entry_slot,priority:5" json:"schedule_entry_semester"`

	// Claims (all optional)
	ScheduleEntryClassGroupID *uuid.UUID     `gorm:"type:uuid;column:schedule_entry_class_group_id" json:"schedule_entry_class_group_id,omitempty"`
	ScheduleEntryRoomID       *uuid.UUID     `gorm:"type:uuid;column:schedule_entry_room_id" json:"schedule_entry_room_id,omitempty"`
	ScheduleEntryTeacherIDs   datatypes.JSON `gorm:"column:schedule_entry_teacher_ids;not null" json:"schedule_entry_teacher_ids"`

	// What is taught: subject code, or a free-text activity when no subject
	ScheduleEntrySubjectCode    *string `gorm:"type:varchar(40);column:schedule_entry_subject_code" json:"schedule_entry_subject_code,omitempty"`
	ScheduleEntryCustomActivity *string `gorm:"type:text;column:schedule_entry_custom_activity" json:"schedule_entry_custom_activity,omitempty"`

	ScheduleEntryCreatedAt time.Time `gorm:"not null;autoCreateTime;column:schedule_entry_created_at" json:"schedule_entry_created_at"`
	ScheduleEntryUpdatedAt time.Time `gorm:"not null;autoUpdateTime;column:schedule_entry_updated_at" json:"schedule_entry_updated_at"`
}

func (ScheduleEntryModel) TableName() string { return "schedule_entries" }

func (m *ScheduleEntryModel) BeforeCreate(tx *gorm.DB) error {
	if m.ScheduleEntryID == uuid.Nil {
		m.ScheduleEntryID = uuid.New()
	}
	if len(m.ScheduleEntryTeacherIDs) == 0 {
		m.ScheduleEntryTeacherIDs = EncodeIDs(nil)
	}
	return nil
}

// IsCustomActivity reports whether the entry is driven by its activity label
// rather than a subject code.
func (m *ScheduleEntryModel) IsCustomActivity() bool {
	return IsCustomActivity(m.ScheduleEntrySubjectCode, m.ScheduleEntryCustomActivity)
}

// ActivityKey is the subject code, or the activity label for custom activities.
func (m *ScheduleEntryModel) ActivityKey() string {
	return ActivityKey(m.ScheduleEntrySubjectCode, m.ScheduleEntryCustomActivity)
}

func IsCustomActivity(subjectCode, activity *string) bool {
	return strPtrEmpty(subjectCode) && !strPtrEmpty(activity)
}

func ActivityKey(subjectCode, activity *string) string {
	if !strPtrEmpty(subjectCode) {
		return strings.TrimSpace(*subjectCode)
	}
	if !strPtrEmpty(activity) {
		return strings.TrimSpace(*activity)
	}
	return ""
}

func strPtrEmpty(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
