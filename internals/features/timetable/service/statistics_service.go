package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"timetable_backend/internals/features/timetable/model"
)

type StatisticsService struct {
	DB              *gorm.DB
	Log             *zap.Logger
	LunchBreakLabel string
}

func NewStatisticsService(db *gorm.DB, lg *zap.Logger, lunchBreakLabel string) *StatisticsService {
	return &StatisticsService{DB: db, Log: orNop(lg), LunchBreakLabel: lunchBreakLabel}
}

// SubjectTally counts one teacher's periods for one subject or activity.
type SubjectTally struct {
	Key                string
	IsCustomActivity   bool
	TotalScheduled     int
	TaughtBySelf       int
	TaughtBySubstitute int
}

func (t SubjectTally) SelfTaughtRate() decimal.Decimal {
	return rate(t.TaughtBySelf, t.TotalScheduled)
}

type TeacherAttendanceSummary struct {
	TeacherID   uuid.UUID
	TeacherName string
	Subjects    []SubjectTally

	TotalScheduled     int
	TaughtBySelf       int
	TaughtBySubstitute int
}

func (t TeacherAttendanceSummary) SelfTaughtRate() decimal.Decimal {
	return rate(t.TaughtBySelf, t.TotalScheduled)
}

type TeacherSubstitutionSummary struct {
	TeacherID          uuid.UUID
	TeacherName        string
	TaughtAsSubstitute int64
	WasSubstitutedFor  int64
}

// rate is part/whole as a percentage with two decimals, 0 for an empty whole.
func rate(part, whole int) decimal.Decimal {
	if whole == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(part)).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(int64(whole)), 2)
}

func validateRange(start, end time.Time) (time.Time, time.Time, error) {
	if start.IsZero() {
		return start, end, invalid("startDate", "is required")
	}
	if end.IsZero() {
		return start, end, invalid("endDate", "is required")
	}
	start, end = DateOnly(start), DateOnly(end)
	if end.Before(start) {
		return start, end, invalid("endDate", "must not be before startDate")
	}
	return start, end, nil
}

func (s *StatisticsService) activeTeachers(db *gorm.DB, schoolID uuid.UUID) ([]model.TeacherModel, error) {
	var rows []model.TeacherModel
	if err := db.
		Where("school_teacher_school_id = ? AND school_teacher_is_active = ?", schoolID, true).
		Order("school_teacher_name ASC").Order("school_teacher_id ASC").
		Find(&rows).Error; err != nil {
		return nil, storeErr("load active teachers", err)
	}
	return rows, nil
}

// AttendanceSummary walks the logs in [start, end]. Every original teacher
// of a log is credited one scheduled period; a recorded substitute credits
// them taught-by-substitute, otherwise a held class credits the teachers who
// actually taught it. An actual teacher outside the original set is also
// credited the scheduled period, so taught-by-self never exceeds scheduled.
func (s *StatisticsService) AttendanceSummary(ctx context.Context, schoolID uuid.UUID, start, end time.Time) ([]TeacherAttendanceSummary, error) {
	start, end, err := validateRange(start, end)
	if err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)

	teachers, err := s.activeTeachers(db, schoolID)
	if err != nil {
		return nil, logFailure(s.Log, "statistics.attendance_summary", schoolID, err)
	}

	var logs []model.AttendanceLogModel
	if err := db.
		Where("attendance_log_school_id = ?", schoolID).
		Where("attendance_log_date >= ? AND attendance_log_date <= ?", start, end).
		Order("attendance_log_date ASC").Order("attendance_log_created_at ASC").
		Find(&logs).Error; err != nil {
		return nil, logFailure(s.Log, "statistics.attendance_summary", schoolID,
			storeErr("load attendance logs", err))
	}

	tallies := make(map[uuid.UUID]map[string]*SubjectTally, len(teachers))
	for _, t := range teachers {
		tallies[t.SchoolTeacherID] = map[string]*SubjectTally{}
	}
	tally := func(teacher uuid.UUID, key string, custom bool) *SubjectTally {
		subjects, ok := tallies[teacher]
		if !ok {
			return nil
		}
		st, ok := subjects[key]
		if !ok {
			st = &SubjectTally{Key: key, IsCustomActivity: custom}
			subjects[key] = st
		}
		return st
	}

	dec := idDecoder{Log: s.Log}
	for i := range logs {
		l := &logs[i]
		if isLunchBreak(s.LunchBreakLabel, l.AttendanceLogSubjectCode, l.AttendanceLogCustomActivity) {
			continue
		}
		key, custom := l.ActivityKey(), l.IsCustomActivity()
		originals := dec.ids(l.AttendanceLogOriginalTeacherIDs, "attendance_log_original_teacher_ids", l.AttendanceLogID)

		for _, t := range originals {
			if st := tally(t, key, custom); st != nil {
				st.TotalScheduled++
			}
		}

		switch {
		case l.AttendanceLogSubstituteTeacherID != nil:
			for _, t := range originals {
				if st := tally(t, key, custom); st != nil {
					st.TaughtBySubstitute++
				}
			}
		case l.AttendanceLogIsPresent:
			actual := originals
			if custom {
				if ids := dec.ids(l.AttendanceLogActualTeacherIDs, "attendance_log_actual_teacher_ids", l.AttendanceLogID); len(ids) > 0 {
					actual = ids
				}
			}
			for _, t := range actual {
				st := tally(t, key, custom)
				if st == nil {
					continue
				}
				st.TaughtBySelf++
				if !model.ContainsID(originals, t) {
					st.TotalScheduled++
				}
			}
		}
	}

	out := make([]TeacherAttendanceSummary, 0, len(teachers))
	for _, t := range teachers {
		subjects := tallies[t.SchoolTeacherID]
		if len(subjects) == 0 {
			continue
		}
		sum := TeacherAttendanceSummary{
			TeacherID:   t.SchoolTeacherID,
			TeacherName: t.SchoolTeacherName,
			Subjects:    make([]SubjectTally, 0, len(subjects)),
		}
		for _, st := range subjects {
			sum.Subjects = append(sum.Subjects, *st)
			sum.TotalScheduled += st.TotalScheduled
			sum.TaughtBySelf += st.TaughtBySelf
			sum.TaughtBySubstitute += st.TaughtBySubstitute
		}
		sort.Slice(sum.Subjects, func(i, j int) bool { return sum.Subjects[i].Key < sum.Subjects[j].Key })
		out = append(out, sum)
	}
	return out, nil
}

type teacherCount struct {
	TeacherID uuid.UUID
	N         int64
}

// SubstitutionSummary counts, per active teacher, the substitutions in
// [start, end] they covered and the ones covering them. Both counts are
// zero-filled.
func (s *StatisticsService) SubstitutionSummary(ctx context.Context, schoolID uuid.UUID, start, end time.Time) ([]TeacherSubstitutionSummary, error) {
	start, end, err := validateRange(start, end)
	if err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)

	teachers, err := s.activeTeachers(db, schoolID)
	if err != nil {
		return nil, logFailure(s.Log, "statistics.substitution_summary", schoolID, err)
	}

	count := func(column string) (map[uuid.UUID]int64, error) {
		var rows []teacherCount
		if err := db.Model(&model.SubstitutionModel{}).
			Select(column+" AS teacher_id, COUNT(*) AS n").
			Where("substitution_school_id = ?", schoolID).
			Where("substitution_date >= ? AND substitution_date <= ?", start, end).
			Group(column).
			Scan(&rows).Error; err != nil {
			return nil, storeErr("count substitutions", err)
		}
		out := make(map[uuid.UUID]int64, len(rows))
		for _, r := range rows {
			out[r.TeacherID] = r.N
		}
		return out, nil
	}

	covered, err := count("substitution_substitute_teacher_id")
	if err != nil {
		return nil, logFailure(s.Log, "statistics.substitution_summary", schoolID, err)
	}
	absent, err := count("substitution_absent_teacher_id")
	if err != nil {
		return nil, logFailure(s.Log, "statistics.substitution_summary", schoolID, err)
	}

	out := make([]TeacherSubstitutionSummary, 0, len(teachers))
	for _, t := range teachers {
		out = append(out, TeacherSubstitutionSummary{
			TeacherID:          t.SchoolTeacherID,
			TeacherName:        t.SchoolTeacherName,
			TaughtAsSubstitute: covered[t.SchoolTeacherID],
			WasSubstitutedFor:  absent[t.SchoolTeacherID],
		})
	}
	return out, nil
}
