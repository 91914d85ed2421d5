package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"timetable_backend/internals/features/timetable/model"
)

// Entry is a schedule entry with its teacher set decoded.
type Entry struct {
	ID             uuid.UUID
	SchoolID       uuid.UUID
	Day            model.DayOfWeek
	TimeSlotID     uuid.UUID
	Term           Term
	ClassGroupID   *uuid.UUID
	SubjectCode    *string
	CustomActivity *string
	TeacherIDs     []uuid.UUID
	RoomID         *uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (e Entry) ActivityKey() string {
	return model.ActivityKey(e.SubjectCode, e.CustomActivity)
}

func (e Entry) IsCustomActivity() bool {
	return model.IsCustomActivity(e.SubjectCode, e.CustomActivity)
}

// EntryInput carries the mutable fields of a schedule entry. ID is only
// read by ResolveConflict, where it selects update over insert.
type EntryInput struct {
	ID             *uuid.UUID
	Day            model.DayOfWeek
	TimeSlotID     uuid.UUID
	ClassGroupID   *uuid.UUID
	SubjectCode    *string
	CustomActivity *string
	TeacherIDs     []uuid.UUID
	RoomID         *uuid.UUID
}

func (in *EntryInput) normalize() {
	in.SubjectCode = trimmedOrNil(in.SubjectCode)
	in.CustomActivity = trimmedOrNil(in.CustomActivity)
	if in.TeacherIDs == nil {
		in.TeacherIDs = []uuid.UUID{}
	}
}

func (in *EntryInput) validate() error {
	in.normalize()
	if in.Day.Index() == 0 {
		return invalid("day", "must be a day of the week")
	}
	if in.TimeSlotID == uuid.Nil {
		return invalid("timeSlotId", "is required")
	}
	if in.SubjectCode == nil && in.CustomActivity == nil {
		return invalid("subjectCode", "subject code or custom activity is required")
	}
	return validateIDSet("teacherIds", in.TeacherIDs)
}

func (in *EntryInput) occupancy(schoolID uuid.UUID, term Term, exclude *uuid.UUID) Occupancy {
	return Occupancy{
		SchoolID:       schoolID,
		Day:            in.Day,
		TimeSlotID:     in.TimeSlotID,
		Term:           term,
		TeacherIDs:     in.TeacherIDs,
		RoomID:         in.RoomID,
		ClassGroupID:   in.ClassGroupID,
		ExcludeEntryID: exclude,
	}
}

// applyTo overwrites every mutable column of m.
func (in *EntryInput) applyTo(m *model.ScheduleEntryModel, schoolID uuid.UUID, term Term) {
	m.ScheduleEntrySchoolID = schoolID
	m.ScheduleEntryDayOfWeek = in.Day
	m.ScheduleEntryTimeSlotID = in.TimeSlotID
	m.ScheduleEntryAcademicYear = term.AcademicYear
	m.ScheduleEntrySemester = term.Semester
	m.ScheduleEntryClassGroupID = in.ClassGroupID
	m.ScheduleEntryRoomID = in.RoomID
	m.ScheduleEntrySubjectCode = in.SubjectCode
	m.ScheduleEntryCustomActivity = in.CustomActivity
	m.ScheduleEntryTeacherIDs = model.EncodeIDs(in.TeacherIDs)
}

func validateIDSet(field string, ids []uuid.UUID) error {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			return invalid(field, "contains an empty id")
		}
		if _, dup := seen[id]; dup {
			return invalid(field, "contains %s more than once", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

/* =========================
   Decoding
   ========================= */

// idDecoder turns JSON id columns back into slices. A column that fails to
// decode degrades to an empty set and a warning, never an error.
type idDecoder struct {
	Log *zap.Logger
}

func (d idDecoder) ids(js datatypes.JSON, field string, owner uuid.UUID) []uuid.UUID {
	ids, err := model.DecodeIDs(js)
	if err != nil && d.Log != nil {
		d.Log.Warn("undecodable id set, using empty set",
			zap.String("field", field),
			zap.Stringer("owner_id", owner),
			zap.Error(err))
	}
	return ids
}

func (d idDecoder) entry(m *model.ScheduleEntryModel) Entry {
	return Entry{
		ID:             m.ScheduleEntryID,
		SchoolID:       m.ScheduleEntrySchoolID,
		Day:            m.ScheduleEntryDayOfWeek,
		TimeSlotID:     m.ScheduleEntryTimeSlotID,
		Term:           Term{AcademicYear: m.ScheduleEntryAcademicYear, Semester: m.ScheduleEntrySemester},
		ClassGroupID:   m.ScheduleEntryClassGroupID,
		SubjectCode:    m.ScheduleEntrySubjectCode,
		CustomActivity: m.ScheduleEntryCustomActivity,
		TeacherIDs:     d.ids(m.ScheduleEntryTeacherIDs, "schedule_entry_teacher_ids", m.ScheduleEntryID),
		RoomID:         m.ScheduleEntryRoomID,
		CreatedAt:      m.ScheduleEntryCreatedAt,
		UpdatedAt:      m.ScheduleEntryUpdatedAt,
	}
}

func (d idDecoder) entries(rows []model.ScheduleEntryModel) []Entry {
	out := make([]Entry, 0, len(rows))
	for i := range rows {
		out = append(out, d.entry(&rows[i]))
	}
	return out
}

func sameID(a, b *uuid.UUID) bool {
	return a != nil && b != nil && *a == *b
}

func orNop(lg *zap.Logger) *zap.Logger {
	if lg == nil {
		return zap.NewNop()
	}
	return lg
}
