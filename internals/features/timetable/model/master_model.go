package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* =======================================================
   Master data read by the engine (managed elsewhere)
   ======================================================= */

type TeacherModel struct {
	SchoolTeacherID       uuid.UUID `gorm:"type:uuid;primaryKey;column:school_teacher_id" json:"school_teacher_id"`
	SchoolTeacherSchoolID uuid.UUID `gorm:"type:uuid;not null;index;column:school_teacher_school_id" json:"school_teacher_school_id"`
	SchoolTeacherName     string    `gorm:"type:varchar(120);not null;column:school_teacher_name" json:"school_teacher_name"`
	SchoolTeacherIsActive bool      `gorm:"not null;column:school_teacher_is_active" json:"school_teacher_is_active"`
}

func (TeacherModel) TableName() string { return "school_teachers" }

func (m *TeacherModel) BeforeCreate(tx *gorm.DB) error {
	if m.SchoolTeacherID == uuid.Nil {
		m.SchoolTeacherID = uuid.New()
	}
	return nil
}

type ClassGroupModel struct {
	ClassGroupID       uuid.UUID `gorm:"type:uuid;primaryKey;column:class_group_id" json:"class_group_id"`
	ClassGroupSchoolID uuid.UUID `gorm:"type:uuid;not null;index;column:class_group_school_id" json:"class_group_school_id"`
	ClassGroupName     string    `gorm:"type:varchar(120);not null;column:class_group_name" json:"class_group_name"`
	ClassGroupIsActive bool      `gorm:"not null;column:class_group_is_active" json:"class_group_is_active"`
}

func (ClassGroupModel) TableName() string { return "class_groups" }

func (m *ClassGroupModel) BeforeCreate(tx *gorm.DB) error {
	if m.ClassGroupID == uuid.Nil {
		m.ClassGroupID = uuid.New()
	}
	return nil
}

type RoomModel struct {
	ClassRoomID       uuid.UUID `gorm:"type:uuid;primaryKey;column:class_room_id" json:"class_room_id"`
	ClassRoomSchoolID uuid.UUID `gorm:"type:uuid;not null;index;column:class_room_school_id" json:"class_room_school_id"`
	ClassRoomName     string    `gorm:"type:varchar(120);not null;column:class_room_name" json:"class_room_name"`
	ClassRoomIsActive bool      `gorm:"not null;column:class_room_is_active" json:"class_room_is_active"`
}

func (RoomModel) TableName() string { return "class_rooms" }

func (m *RoomModel) BeforeCreate(tx *gorm.DB) error {
	if m.ClassRoomID == uuid.Nil {
		m.ClassRoomID = uuid.New()
	}
	return nil
}
