package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"timetable_backend/internals/features/timetable/model"
	"timetable_backend/internals/metrics"
)

type AttendanceService struct {
	DB  *gorm.DB
	Log *zap.Logger

	// LunchBreakLabel is the reserved custom activity that is never stamped
	// or counted.
	LunchBreakLabel string
}

func NewAttendanceService(db *gorm.DB, lg *zap.Logger, lunchBreakLabel string) *AttendanceService {
	return &AttendanceService{DB: db, Log: orNop(lg), LunchBreakLabel: lunchBreakLabel}
}

func isLunchBreak(label string, subjectCode, activity *string) bool {
	return label != "" && model.IsCustomActivity(subjectCode, activity) &&
		strings.EqualFold(model.ActivityKey(subjectCode, activity), label)
}

/* =========================
   Records
   ========================= */

type RecordSource string

const (
	SourceLive  RecordSource = "live"
	SourceSaved RecordSource = "saved"
)

// AttendanceRecord is one occupancy on one date, either a saved log or a
// default built from the live schedule.
type AttendanceRecord struct {
	LogID                   *uuid.UUID
	Date                    time.Time
	OriginalScheduleEntryID uuid.UUID

	Day                model.DayOfWeek
	TimeSlotID         uuid.UUID
	SubjectCode        *string
	CustomActivity     *string
	ClassGroupID       *uuid.UUID
	RoomID             *uuid.UUID
	OriginalTeacherIDs []uuid.UUID

	IsPresent           bool
	SubstituteTeacherID *uuid.UUID
	ActualTeacherIDs    []uuid.UUID
	Notes               *string

	Source RecordSource
}

func (r AttendanceRecord) IsCustomActivity() bool {
	return model.IsCustomActivity(r.SubjectCode, r.CustomActivity)
}

/* =========================
   DaySchedule: Live | Overridden
   ========================= */

// DaySchedule is one class group's occupancy for a date. It is exactly one
// of LiveDay or OverriddenDay; the two sources are never mixed.
type DaySchedule interface {
	Group() *uuid.UUID
	Records() []AttendanceRecord
	daySchedule()
}

// LiveDay: no log exists yet, so the live schedule drives the day.
type LiveDay struct {
	ClassGroupID *uuid.UUID
	Date         time.Time
	Entries      []Entry
	// substitute teacher per covered entry id
	Substitutes map[uuid.UUID]uuid.UUID
}

// OverriddenDay: at least one log exists, and the logs alone drive the day.
type OverriddenDay struct {
	ClassGroupID *uuid.UUID
	Logs         []AttendanceRecord
}

func (LiveDay) daySchedule()       {}
func (OverriddenDay) daySchedule() {}

func (d LiveDay) Group() *uuid.UUID       { return d.ClassGroupID }
func (d OverriddenDay) Group() *uuid.UUID { return d.ClassGroupID }

func (d LiveDay) Records() []AttendanceRecord {
	out := make([]AttendanceRecord, 0, len(d.Entries))
	for _, e := range d.Entries {
		rec := AttendanceRecord{
			Date:                    d.Date,
			OriginalScheduleEntryID: e.ID,
			Day:                     e.Day,
			TimeSlotID:              e.TimeSlotID,
			SubjectCode:             e.SubjectCode,
			CustomActivity:          e.CustomActivity,
			ClassGroupID:            e.ClassGroupID,
			RoomID:                  e.RoomID,
			OriginalTeacherIDs:      e.TeacherIDs,
			ActualTeacherIDs:        []uuid.UUID{},
			Source:                  SourceLive,
		}
		if sub, ok := d.Substitutes[e.ID]; ok {
			sub := sub
			rec.SubstituteTeacherID = &sub
		}
		out = append(out, rec)
	}
	return out
}

func (d OverriddenDay) Records() []AttendanceRecord {
	out := make([]AttendanceRecord, len(d.Logs))
	copy(out, d.Logs)
	return out
}

// Flatten concatenates the records of every day schedule in order.
func Flatten(days []DaySchedule) []AttendanceRecord {
	out := []AttendanceRecord{}
	for _, d := range days {
		out = append(out, d.Records()...)
	}
	return out
}

func (s *AttendanceService) recordFromLog(m *model.AttendanceLogModel) AttendanceRecord {
	dec := idDecoder{Log: s.Log}
	id := m.AttendanceLogID
	return AttendanceRecord{
		LogID:                   &id,
		Date:                    DateOnly(m.AttendanceLogDate),
		OriginalScheduleEntryID: m.AttendanceLogOriginalScheduleEntryID,
		Day:                     m.AttendanceLogDayOfWeek,
		TimeSlotID:              m.AttendanceLogTimeSlotID,
		SubjectCode:             m.AttendanceLogSubjectCode,
		CustomActivity:          m.AttendanceLogCustomActivity,
		ClassGroupID:            m.AttendanceLogClassGroupID,
		RoomID:                  m.AttendanceLogRoomID,
		OriginalTeacherIDs:      dec.ids(m.AttendanceLogOriginalTeacherIDs, "attendance_log_original_teacher_ids", id),
		IsPresent:               m.AttendanceLogIsPresent,
		SubstituteTeacherID:     m.AttendanceLogSubstituteTeacherID,
		ActualTeacherIDs:        dec.ids(m.AttendanceLogActualTeacherIDs, "attendance_log_actual_teacher_ids", id),
		Notes:                   m.AttendanceLogNotes,
		Source:                  SourceSaved,
	}
}

/* =========================
   Reconcile
   ========================= */

// Reconcile builds the effective occupancy of every class group that has a
// live entry or a saved log on date. Class groups are ordered by id, with
// entries lacking a class group last; records follow slot order.
func (s *AttendanceService) Reconcile(ctx context.Context, schoolID uuid.UUID, date time.Time) ([]DaySchedule, error) {
	date = DateOnly(date)
	db := s.DB.WithContext(ctx)

	entries, err := s.liveEntries(db, schoolID, date)
	if err != nil {
		return nil, logFailure(s.Log, "attendance.reconcile", schoolID, err)
	}

	var logs []model.AttendanceLogModel
	if err := db.Where("attendance_log_school_id = ? AND attendance_log_date = ?", schoolID, date).
		Order("attendance_log_created_at ASC").
		Find(&logs).Error; err != nil {
		return nil, logFailure(s.Log, "attendance.reconcile", schoolID, storeErr("load attendance logs", err))
	}

	var subs []model.SubstitutionModel
	if err := db.Where("substitution_school_id = ? AND substitution_date = ?", schoolID, date).
		Order("substitution_created_at ASC").
		Find(&subs).Error; err != nil {
		return nil, logFailure(s.Log, "attendance.reconcile", schoolID, storeErr("load substitutions", err))
	}
	substitutes := make(map[uuid.UUID]uuid.UUID, len(subs))
	for _, sb := range subs {
		if _, seen := substitutes[sb.SubstitutionOriginalScheduleEntryID]; !seen {
			substitutes[sb.SubstitutionOriginalScheduleEntryID] = sb.SubstitutionSubstituteTeacherID
		}
	}

	order, err := slotOrder(db, schoolID)
	if err != nil {
		return nil, logFailure(s.Log, "attendance.reconcile", schoolID, err)
	}

	// uuid.Nil keys the bucket of entries without a class group
	groupKey := func(id *uuid.UUID) uuid.UUID {
		if id == nil {
			return uuid.Nil
		}
		return *id
	}
	live := map[uuid.UUID][]Entry{}
	saved := map[uuid.UUID][]AttendanceRecord{}
	for _, e := range entries {
		k := groupKey(e.ClassGroupID)
		live[k] = append(live[k], e)
	}
	for i := range logs {
		rec := s.recordFromLog(&logs[i])
		k := groupKey(rec.ClassGroupID)
		saved[k] = append(saved[k], rec)
	}

	keys := make([]uuid.UUID, 0, len(live)+len(saved))
	for k := range live {
		keys = append(keys, k)
	}
	for k := range saved {
		if _, dup := live[k]; !dup {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if (keys[i] == uuid.Nil) != (keys[j] == uuid.Nil) {
			return keys[j] == uuid.Nil
		}
		return keys[i].String() < keys[j].String()
	})

	out := make([]DaySchedule, 0, len(keys))
	for _, k := range keys {
		var group *uuid.UUID
		if k != uuid.Nil {
			g := k
			group = &g
		}
		if recs, ok := saved[k]; ok {
			sort.SliceStable(recs, func(i, j int) bool { return order[recs[i].TimeSlotID] < order[recs[j].TimeSlotID] })
			out = append(out, OverriddenDay{ClassGroupID: group, Logs: recs})
			continue
		}
		es := live[k]
		sort.SliceStable(es, func(i, j int) bool { return order[es[i].TimeSlotID] < order[es[j].TimeSlotID] })
		out = append(out, LiveDay{ClassGroupID: group, Date: date, Entries: es, Substitutes: substitutes})
	}
	return out, nil
}

// liveEntries is the current term's schedule for the weekday of date. A
// school without an active term has no live schedule.
func (s *AttendanceService) liveEntries(db *gorm.DB, schoolID uuid.UUID, date time.Time) ([]Entry, error) {
	term, err := CurrentTerm(db, schoolID)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			return nil, nil
		}
		return nil, err
	}
	var rows []model.ScheduleEntryModel
	if err := db.
		Where("schedule_entry_school_id = ? AND schedule_entry_day_of_week = ?", schoolID, model.DayOfWeekOf(date)).
		Where("schedule_entry_academic_year = ? AND schedule_entry_semester = ?", term.AcademicYear, term.Semester).
		Order("schedule_entry_created_at ASC").Order("schedule_entry_id ASC").
		Find(&rows).Error; err != nil {
		return nil, storeErr("load live schedule", err)
	}
	return idDecoder{Log: s.Log}.entries(rows), nil
}

/* =========================
   Save / Reset
   ========================= */

// SaveRecord is the operator's outcome for one occupancy on one date. The
// snapshot is never taken from the caller.
type SaveRecord struct {
	Date                    time.Time
	OriginalScheduleEntryID uuid.UUID
	IsPresent               bool
	SubstituteTeacherID     *uuid.UUID
	ActualTeacherIDs        []uuid.UUID
	Notes                   *string
}

type SaveResult struct {
	Saved   int
	Skipped int
}

type logKey struct {
	date  time.Time
	entry uuid.UUID
}

// Save stamps records. Lunch breaks and custom activities with no actual
// teacher are skipped. Each remaining (date, entry) log is replaced; logs of
// other entries and dates are untouched. A re-save keeps the snapshot frozen
// at the first stamp.
func (s *AttendanceService) Save(ctx context.Context, schoolID uuid.UUID, records []SaveRecord) (SaveResult, error) {
	if len(records) == 0 {
		return SaveResult{}, invalid("records", "at least one record is required")
	}

	// last write wins for repeated (date, entry) pairs
	keys := make([]logKey, 0, len(records))
	byKey := make(map[logKey]SaveRecord, len(records))
	for i := range records {
		r := records[i]
		if r.Date.IsZero() {
			return SaveResult{}, invalid("date", "is required")
		}
		if r.OriginalScheduleEntryID == uuid.Nil {
			return SaveResult{}, invalid("originalScheduleEntryId", "is required")
		}
		if r.ActualTeacherIDs == nil {
			r.ActualTeacherIDs = []uuid.UUID{}
		}
		if err := validateIDSet("actualTeacherIds", r.ActualTeacherIDs); err != nil {
			return SaveResult{}, err
		}
		r.Date = DateOnly(r.Date)
		r.Notes = trimmedOrNil(r.Notes)
		k := logKey{date: r.Date, entry: r.OriginalScheduleEntryID}
		if _, seen := byKey[k]; !seen {
			keys = append(keys, k)
		}
		byKey[k] = r
	}

	var res SaveResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		batch := make([]model.AttendanceLogModel, 0, len(keys))
		for _, k := range keys {
			r := byKey[k]
			snap, err := s.snapshot(tx, schoolID, r)
			if err != nil {
				return err
			}
			if isLunchBreak(s.LunchBreakLabel, snap.AttendanceLogSubjectCode, snap.AttendanceLogCustomActivity) ||
				(snap.IsCustomActivity() && len(r.ActualTeacherIDs) == 0) {
				res.Skipped++
				continue
			}

			snap.AttendanceLogID = uuid.Nil
			snap.AttendanceLogDate = k.date
			snap.AttendanceLogIsPresent = r.IsPresent
			snap.AttendanceLogSubstituteTeacherID = r.SubstituteTeacherID
			snap.AttendanceLogActualTeacherIDs = model.EncodeIDs(r.ActualTeacherIDs)
			snap.AttendanceLogNotes = r.Notes
			snap.AttendanceLogCreatedAt = time.Time{}

			if err := tx.
				Where("attendance_log_school_id = ? AND attendance_log_date = ? AND attendance_log_original_schedule_entry_id = ?",
					schoolID, k.date, k.entry).
				Delete(&model.AttendanceLogModel{}).Error; err != nil {
				return storeErr("replace attendance log", err)
			}
			batch = append(batch, *snap)
		}
		if len(batch) == 0 {
			return nil
		}
		if err := tx.Create(&batch).Error; err != nil {
			return storeErr("insert attendance logs", err)
		}
		res.Saved = len(batch)
		return nil
	})
	if err != nil {
		return SaveResult{}, logFailure(s.Log, "attendance.save", schoolID, err)
	}
	metrics.AttendanceLogsSaved.Add(float64(res.Saved))
	return res, nil
}

// snapshot returns the frozen fields for r: the existing log's when there is
// one, else the live entry's.
func (s *AttendanceService) snapshot(tx *gorm.DB, schoolID uuid.UUID, r SaveRecord) (*model.AttendanceLogModel, error) {
	var existing model.AttendanceLogModel
	err := tx.Where("attendance_log_school_id = ? AND attendance_log_date = ? AND attendance_log_original_schedule_entry_id = ?",
		schoolID, r.Date, r.OriginalScheduleEntryID).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storeErr("load attendance log", err)
	}

	e, err := loadEntry(tx, schoolID, r.OriginalScheduleEntryID)
	if err != nil {
		return nil, err
	}
	if want := model.DayOfWeekOf(r.Date); e.ScheduleEntryDayOfWeek != want {
		return nil, invalid("date", "%s is a %s but the entry is scheduled on %s",
			r.Date.Format("2006-01-02"), want, e.ScheduleEntryDayOfWeek)
	}
	return &model.AttendanceLogModel{
		AttendanceLogSchoolID:                schoolID,
		AttendanceLogDate:                    r.Date,
		AttendanceLogOriginalScheduleEntryID: e.ScheduleEntryID,
		AttendanceLogDayOfWeek:               e.ScheduleEntryDayOfWeek,
		AttendanceLogTimeSlotID:              e.ScheduleEntryTimeSlotID,
		AttendanceLogSubjectCode:             e.ScheduleEntrySubjectCode,
		AttendanceLogCustomActivity:          e.ScheduleEntryCustomActivity,
		AttendanceLogClassGroupID:            e.ScheduleEntryClassGroupID,
		AttendanceLogRoomID:                  e.ScheduleEntryRoomID,
		AttendanceLogOriginalTeacherIDs:      model.EncodeIDs(idDecoder{Log: s.Log}.ids(e.ScheduleEntryTeacherIDs, "schedule_entry_teacher_ids", e.ScheduleEntryID)),
	}, nil
}

// Reset deletes the logs of the given class groups on date, handing those
// groups back to the live schedule. uuid.Nil selects logs without a class
// group.
func (s *AttendanceService) Reset(ctx context.Context, schoolID uuid.UUID, date time.Time, classGroupIDs []uuid.UUID) (int64, error) {
	if date.IsZero() {
		return 0, invalid("date", "is required")
	}
	if len(classGroupIDs) == 0 {
		return 0, invalid("classGroupIds", "at least one class group is required")
	}

	ids := make([]uuid.UUID, 0, len(classGroupIDs))
	withNull := false
	for _, id := range classGroupIDs {
		if id == uuid.Nil {
			withNull = true
			continue
		}
		ids = append(ids, id)
	}

	q := s.DB.WithContext(ctx).
		Where("attendance_log_school_id = ? AND attendance_log_date = ?", schoolID, DateOnly(date))
	switch {
	case len(ids) > 0 && withNull:
		q = q.Where("(attendance_log_class_group_id IN ? OR attendance_log_class_group_id IS NULL)", ids)
	case len(ids) > 0:
		q = q.Where("attendance_log_class_group_id IN ?", ids)
	default:
		q = q.Where("attendance_log_class_group_id IS NULL")
	}

	res := q.Delete(&model.AttendanceLogModel{})
	if res.Error != nil {
		return 0, logFailure(s.Log, "attendance.reset", schoolID, storeErr("reset attendance logs", res.Error))
	}
	return res.RowsAffected, nil
}
