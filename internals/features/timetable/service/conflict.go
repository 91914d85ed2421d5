package service

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"timetable_backend/internals/features/timetable/model"
	"timetable_backend/internals/metrics"
)

type ConflictKind string

const (
	ConflictTeacher    ConflictKind = "teacher"
	ConflictLocation   ConflictKind = "location"
	ConflictClassGroup ConflictKind = "classGroup"
	ConflictSubstitute ConflictKind = "substitute"
)

// Conflict describes one double-booking. Entry is the colliding schedule
// entry; Substitution is set only for substitute conflicts.
type Conflict struct {
	Kind         ConflictKind
	Entry        *Entry
	Substitution *model.SubstitutionModel
	Message      string
}

// Occupancy is the claim a candidate entry makes on one day, slot and term.
type Occupancy struct {
	SchoolID       uuid.UUID
	Day            model.DayOfWeek
	TimeSlotID     uuid.UUID
	Term           Term
	TeacherIDs     []uuid.UUID
	RoomID         *uuid.UUID
	ClassGroupID   *uuid.UUID
	ExcludeEntryID *uuid.UUID
}

func (o Occupancy) claimsNothing() bool {
	return len(o.TeacherIDs) == 0 && o.RoomID == nil && o.ClassGroupID == nil
}

// Detector finds the first existing entry that collides with an occupancy.
// It only reads, through whatever handle it is given, so inside a
// transaction it sees that transaction's own writes.
type Detector struct {
	Log *zap.Logger
}

// Detect returns nil when nothing collides. Predicates are tried in a fixed
// order across all entries in the slot: teacher, then room, then class group.
func (d Detector) Detect(tx *gorm.DB, occ Occupancy) (*Conflict, error) {
	if occ.claimsNothing() {
		return nil, nil
	}

	q := tx.Model(&model.ScheduleEntryModel{}).
		Where("schedule_entry_school_id = ?", occ.SchoolID).
		Where("schedule_entry_day_of_week = ?", occ.Day).
		Where("schedule_entry_time_slot_id = ?", occ.TimeSlotID).
		Where("schedule_entry_academic_year = ? AND schedule_entry_semester = ?", occ.Term.AcademicYear, occ.Term.Semester)
	if occ.ExcludeEntryID != nil {
		q = q.Where("schedule_entry_id <> ?", *occ.ExcludeEntryID)
	}

	var rows []model.ScheduleEntryModel
	if err := q.Order("schedule_entry_created_at ASC").Order("schedule_entry_id ASC").Find(&rows).Error; err != nil {
		return nil, storeErr("load slot occupancy", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	existing := idDecoder{Log: d.Log}.entries(rows)

	var (
		hit    *Entry
		kind   ConflictKind
		shared []uuid.UUID
	)
	if len(occ.TeacherIDs) > 0 {
		for i := range existing {
			if ids := model.IntersectIDs(occ.TeacherIDs, existing[i].TeacherIDs); len(ids) > 0 {
				hit, kind, shared = &existing[i], ConflictTeacher, ids
				break
			}
		}
	}
	if hit == nil && occ.RoomID != nil {
		for i := range existing {
			if sameID(occ.RoomID, existing[i].RoomID) {
				hit, kind = &existing[i], ConflictLocation
				break
			}
		}
	}
	if hit == nil && occ.ClassGroupID != nil {
		for i := range existing {
			if sameID(occ.ClassGroupID, existing[i].ClassGroupID) {
				hit, kind = &existing[i], ConflictClassGroup
				break
			}
		}
	}
	if hit == nil {
		return nil, nil
	}

	msg, err := conflictMessage(tx, occ.SchoolID, kind, hit, shared)
	if err != nil {
		return nil, err
	}
	metrics.ConflictsDetected.WithLabelValues(string(kind)).Inc()
	return &Conflict{Kind: kind, Entry: hit, Message: msg}, nil
}

func conflictMessage(tx *gorm.DB, schoolID uuid.UUID, kind ConflictKind, e *Entry, teachers []uuid.UUID) (string, error) {
	group, err := classGroupLabel(tx, schoolID, e.ClassGroupID)
	if err != nil {
		return "", err
	}
	activity := e.ActivityKey()

	switch kind {
	case ConflictTeacher:
		names, err := teacherNames(tx, schoolID, teachers)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Teacher %s is already scheduled for %s (%s) on %s in this time slot.",
			strings.Join(names, ", "), activity, group, e.Day), nil
	case ConflictLocation:
		room, err := roomLabel(tx, schoolID, e.RoomID)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Room %s is already used by %s (%s) on %s in this time slot.",
			room, group, activity, e.Day), nil
	default:
		return fmt.Sprintf("Class %s already has %s on %s in this time slot.", group, activity, e.Day), nil
	}
}

/* =========================
   Name lookups for messages
   ========================= */

func teacherNames(tx *gorm.DB, schoolID uuid.UUID, ids []uuid.UUID) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []model.TeacherModel
	if err := tx.
		Where("school_teacher_school_id = ? AND school_teacher_id IN ?", schoolID, ids).
		Find(&rows).Error; err != nil {
		return nil, storeErr("load teacher names", err)
	}
	byID := make(map[uuid.UUID]string, len(rows))
	for _, r := range rows {
		byID[r.SchoolTeacherID] = r.SchoolTeacherName
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if n, ok := byID[id]; ok {
			out = append(out, n)
		} else {
			out = append(out, id.String())
		}
	}
	return out, nil
}

func classGroupLabel(tx *gorm.DB, schoolID uuid.UUID, id *uuid.UUID) (string, error) {
	if id == nil {
		return "no class", nil
	}
	var names []string
	if err := tx.Model(&model.ClassGroupModel{}).
		Where("class_group_school_id = ? AND class_group_id = ?", schoolID, *id).
		Limit(1).
		Pluck("class_group_name", &names).Error; err != nil {
		return "", storeErr("load class group name", err)
	}
	if len(names) == 0 {
		return id.String(), nil
	}
	return names[0], nil
}

func roomLabel(tx *gorm.DB, schoolID uuid.UUID, id *uuid.UUID) (string, error) {
	if id == nil {
		return "", nil
	}
	var names []string
	if err := tx.Model(&model.RoomModel{}).
		Where("class_room_school_id = ? AND class_room_id = ?", schoolID, *id).
		Limit(1).
		Pluck("class_room_name", &names).Error; err != nil {
		return "", storeErr("load room name", err)
	}
	if len(names) == 0 {
		return id.String(), nil
	}
	return names[0], nil
}
