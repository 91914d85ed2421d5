package model

// All lists every table the timetable engine owns or reads, in migration order.
func All() []any {
	return []any{
		&AcademicTermModel{},
		&TimeSlotModel{},
		&TeacherModel{},
		&ClassGroupModel{},
		&RoomModel{},
		&ScheduleEntryModel{},
		&SubstitutionModel{},
		&AttendanceLogModel{},
	}
}
