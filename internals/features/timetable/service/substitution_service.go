package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"timetable_backend/internals/features/timetable/model"
	"timetable_backend/internals/metrics"
)

type SubstitutionService struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewSubstitutionService(db *gorm.DB, lg *zap.Logger) *SubstitutionService {
	return &SubstitutionService{DB: db, Log: orNop(lg)}
}

// SubstitutionView is a substitution joined with the slot it covers. The
// covered entry may have been deleted since, leaving the slot fields nil.
type SubstitutionView struct {
	model.SubstitutionModel

	TimeSlotID     *uuid.UUID `gorm:"column:schedule_entry_time_slot_id"`
	ClassGroupID   *uuid.UUID `gorm:"column:schedule_entry_class_group_id"`
	SubjectCode    *string    `gorm:"column:schedule_entry_subject_code"`
	CustomActivity *string    `gorm:"column:schedule_entry_custom_activity"`
	TimeSlotOrder  *int       `gorm:"column:time_slot_order"`
}

func (s *SubstitutionService) ListByDate(ctx context.Context, schoolID uuid.UUID, date time.Time) ([]SubstitutionView, error) {
	rows := []SubstitutionView{}
	err := s.DB.WithContext(ctx).
		Table("substitutions").
		Select(`substitutions.*,
			schedule_entries.schedule_entry_time_slot_id,
			schedule_entries.schedule_entry_class_group_id,
			schedule_entries.schedule_entry_subject_code,
			schedule_entries.schedule_entry_custom_activity,
			time_slots.time_slot_order`).
		Joins("LEFT JOIN schedule_entries ON schedule_entries.schedule_entry_id = substitutions.substitution_original_schedule_entry_id").
		Joins("LEFT JOIN time_slots ON time_slots.time_slot_id = schedule_entries.schedule_entry_time_slot_id").
		Where("substitutions.substitution_school_id = ? AND substitutions.substitution_date = ?", schoolID, DateOnly(date)).
		Order("time_slots.time_slot_order ASC").
		Order("substitutions.substitution_created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, logFailure(s.Log, "substitution.list", schoolID, storeErr("list substitutions", err))
	}
	return rows, nil
}

type AssignInput struct {
	Date                time.Time
	AbsentTeacherID     uuid.UUID
	SubstituteTeacherID uuid.UUID
	OriginalEntryID     uuid.UUID
	Reason              string
	Notes               *string
	ReplaceID           *uuid.UUID
}

func (in *AssignInput) validate() error {
	in.Reason = strings.TrimSpace(in.Reason)
	in.Notes = trimmedOrNil(in.Notes)
	switch {
	case in.Date.IsZero():
		return invalid("substitutionDate", "is required")
	case in.AbsentTeacherID == uuid.Nil:
		return invalid("absentTeacherId", "is required")
	case in.SubstituteTeacherID == uuid.Nil:
		return invalid("substituteTeacherId", "is required")
	case in.OriginalEntryID == uuid.Nil:
		return invalid("originalScheduleEntryId", "is required")
	case in.Reason == "":
		return invalid("reason", "is required")
	case in.SubstituteTeacherID == in.AbsentTeacherID:
		return invalid("substituteTeacherId", "a teacher cannot substitute for themselves")
	}
	in.Date = DateOnly(in.Date)
	return nil
}

// Assign records a cover for one occupied slot. A substitute already covering
// the same slot on the same date is a conflict; the check runs before the
// optional replaced substitution is deleted, all in one transaction.
func (s *SubstitutionService) Assign(ctx context.Context, schoolID uuid.UUID, in AssignInput) (model.SubstitutionModel, error) {
	if err := in.validate(); err != nil {
		return model.SubstitutionModel{}, err
	}

	var out model.SubstitutionModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orig, err := loadEntry(tx, schoolID, in.OriginalEntryID)
		if err != nil {
			return err
		}

		q := tx.Model(&model.SubstitutionModel{}).
			Select("substitutions.*").
			Joins("JOIN schedule_entries ON schedule_entries.schedule_entry_id = substitutions.substitution_original_schedule_entry_id").
			Where("substitutions.substitution_school_id = ?", schoolID).
			Where("substitutions.substitution_date = ?", in.Date).
			Where("substitutions.substitution_substitute_teacher_id = ?", in.SubstituteTeacherID).
			Where("schedule_entries.schedule_entry_time_slot_id = ?", orig.ScheduleEntryTimeSlotID)
		if in.ReplaceID != nil {
			q = q.Where("substitutions.substitution_id <> ?", *in.ReplaceID)
		}
		var clashes []model.SubstitutionModel
		if err := q.Limit(1).Find(&clashes).Error; err != nil {
			return storeErr("check substitute availability", err)
		}
		if len(clashes) > 0 {
			c, err := s.substituteConflict(tx, schoolID, &clashes[0])
			if err != nil {
				return err
			}
			return &ConflictError{Conflict: c}
		}

		if in.ReplaceID != nil {
			res := tx.Where("substitution_school_id = ? AND substitution_id = ?", schoolID, *in.ReplaceID).
				Delete(&model.SubstitutionModel{})
			if res.Error != nil {
				return storeErr("delete replaced substitution", res.Error)
			}
			if res.RowsAffected == 0 {
				return notFound("substitution", *in.ReplaceID)
			}
		}

		out = model.SubstitutionModel{
			SubstitutionSchoolID:                schoolID,
			SubstitutionDate:                    in.Date,
			SubstitutionAbsentTeacherID:         in.AbsentTeacherID,
			SubstitutionSubstituteTeacherID:     in.SubstituteTeacherID,
			SubstitutionOriginalScheduleEntryID: in.OriginalEntryID,
			SubstitutionReason:                  in.Reason,
			SubstitutionNotes:                   in.Notes,
		}
		if err := tx.Create(&out).Error; err != nil {
			return storeErr("insert substitution", err)
		}
		return nil
	})
	if err != nil {
		return model.SubstitutionModel{}, logFailure(s.Log, "substitution.assign", schoolID, err)
	}
	metrics.SubstitutionsAssigned.Inc()
	return out, nil
}

func (s *SubstitutionService) substituteConflict(tx *gorm.DB, schoolID uuid.UUID, clash *model.SubstitutionModel) (*Conflict, error) {
	em, err := loadEntry(tx, schoolID, clash.SubstitutionOriginalScheduleEntryID)
	if err != nil {
		return nil, err
	}
	e := idDecoder{Log: s.Log}.entry(em)

	names, err := teacherNames(tx, schoolID, []uuid.UUID{clash.SubstitutionSubstituteTeacherID})
	if err != nil {
		return nil, err
	}
	group, err := classGroupLabel(tx, schoolID, e.ClassGroupID)
	if err != nil {
		return nil, err
	}
	metrics.ConflictsDetected.WithLabelValues(string(ConflictSubstitute)).Inc()
	return &Conflict{
		Kind:         ConflictSubstitute,
		Entry:        &e,
		Substitution: clash,
		Message: fmt.Sprintf("%s is already substituting for %s (%s) in this time slot on %s.",
			strings.Join(names, ", "), group, e.ActivityKey(), clash.SubstitutionDate.Format("2006-01-02")),
	}, nil
}

func (s *SubstitutionService) Unassign(ctx context.Context, schoolID, id uuid.UUID) error {
	res := s.DB.WithContext(ctx).
		Where("substitution_school_id = ? AND substitution_id = ?", schoolID, id).
		Delete(&model.SubstitutionModel{})
	if res.Error != nil {
		return logFailure(s.Log, "substitution.unassign", schoolID, storeErr("delete substitution", res.Error))
	}
	if res.RowsAffected == 0 {
		return notFound("substitution", id)
	}
	return nil
}

// DateOnly truncates t to its calendar date at UTC midnight, the form every
// date column is written and queried in.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
