package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"timetable_backend/internals/helpers/dbtime"
)

// TimeSlotModel is one ordered teaching period, shared by the whole school.
type TimeSlotModel struct {
	TimeSlotID       uuid.UUID  `gorm:"type:uuid;primaryKey;column:time_slot_id" json:"time_slot_id"`
	TimeSlotSchoolID uuid.UUID  `gorm:"type:uuid;not null;index;column:time_slot_school_id" json:"time_slot_school_id"`
	TimeSlotLabel    string     `gorm:"type:varchar(60);not null;column:time_slot_label" json:"time_slot_label"`
	TimeSlotOrder    int        `gorm:"not null;default:0;column:time_slot_order" json:"time_slot_order"`
	TimeSlotStart    dbtime.Tod `gorm:"type:time;not null;column:time_slot_start" json:"time_slot_start"`
	TimeSlotEnd      dbtime.Tod `gorm:"type:time;not null;column:time_slot_end" json:"time_slot_end"`

	TimeSlotCreatedAt time.Time `gorm:"not null;autoCreateTime;column:time_slot_created_at" json:"time_slot_created_at"`
}

func (TimeSlotModel) TableName() string { return "time_slots" }

func (m *TimeSlotModel) BeforeCreate(tx *gorm.DB) error {
	if m.TimeSlotID == uuid.Nil {
		m.TimeSlotID = uuid.New()
	}
	return nil
}
