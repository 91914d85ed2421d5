package service

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"timetable_backend/internals/features/timetable/model"
)

type ScheduleService struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewScheduleService(db *gorm.DB, lg *zap.Logger) *ScheduleService {
	return &ScheduleService{DB: db, Log: orNop(lg)}
}

func (s *ScheduleService) detector() Detector { return Detector{Log: s.Log} }
func (s *ScheduleService) decoder() idDecoder { return idDecoder{Log: s.Log} }

// ListFilter narrows List; zero fields do not filter.
type ListFilter struct {
	Term         *Term
	Day          *model.DayOfWeek
	ClassGroupID *uuid.UUID
	TeacherID    *uuid.UUID
}

// List returns the school's entries sorted by day, slot order, then creation.
func (s *ScheduleService) List(ctx context.Context, schoolID uuid.UUID, f ListFilter) ([]Entry, error) {
	db := s.DB.WithContext(ctx)

	q := db.Where("schedule_entry_school_id = ?", schoolID)
	if f.Term != nil {
		q = q.Where("schedule_entry_academic_year = ? AND schedule_entry_semester = ?", f.Term.AcademicYear, f.Term.Semester)
	}
	if f.Day != nil {
		q = q.Where("schedule_entry_day_of_week = ?", *f.Day)
	}
	if f.ClassGroupID != nil {
		q = q.Where("schedule_entry_class_group_id = ?", *f.ClassGroupID)
	}

	var rows []model.ScheduleEntryModel
	if err := q.Order("schedule_entry_created_at ASC").Order("schedule_entry_id ASC").Find(&rows).Error; err != nil {
		return nil, logFailure(s.Log, "schedule.list", schoolID, storeErr("list schedule entries", err))
	}

	// teacher sets live in a JSON column, so that filter runs after decoding
	entries := s.decoder().entries(rows)
	if f.TeacherID != nil {
		kept := entries[:0]
		for _, e := range entries {
			if model.ContainsID(e.TeacherIDs, *f.TeacherID) {
				kept = append(kept, e)
			}
		}
		entries = kept
	}

	order, err := slotOrder(db, schoolID)
	if err != nil {
		return nil, logFailure(s.Log, "schedule.list", schoolID, err)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Day.Index() != b.Day.Index() {
			return a.Day.Index() < b.Day.Index()
		}
		return order[a.TimeSlotID] < order[b.TimeSlotID]
	})
	return entries, nil
}

// Create checks the candidate against the current term and inserts it when
// nothing collides.
func (s *ScheduleService) Create(ctx context.Context, schoolID uuid.UUID, in EntryInput) (Entry, error) {
	if err := in.validate(); err != nil {
		return Entry{}, err
	}

	var out Entry
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		term, err := CurrentTerm(tx, schoolID)
		if err != nil {
			return err
		}
		if err := ensureTimeSlot(tx, schoolID, in.TimeSlotID); err != nil {
			return err
		}
		c, err := s.detector().Detect(tx, in.occupancy(schoolID, term, nil))
		if err != nil {
			return err
		}
		if c != nil {
			return &ConflictError{Conflict: c}
		}

		var m model.ScheduleEntryModel
		in.applyTo(&m, schoolID, term)
		if err := tx.Create(&m).Error; err != nil {
			return storeErr("insert schedule entry", err)
		}
		out = s.decoder().entry(&m)
		return nil
	})
	return out, logFailure(s.Log, "schedule.create", schoolID, err)
}

// Update overwrites every mutable field of an entry, checking the new
// occupancy against everything but the entry itself.
func (s *ScheduleService) Update(ctx context.Context, schoolID, id uuid.UUID, in EntryInput) (Entry, error) {
	if err := in.validate(); err != nil {
		return Entry{}, err
	}

	var out Entry
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := loadEntry(tx, schoolID, id)
		if err != nil {
			return err
		}
		term, err := CurrentTerm(tx, schoolID)
		if err != nil {
			return err
		}
		if err := ensureTimeSlot(tx, schoolID, in.TimeSlotID); err != nil {
			return err
		}
		c, err := s.detector().Detect(tx, in.occupancy(schoolID, term, &id))
		if err != nil {
			return err
		}
		if c != nil {
			return &ConflictError{Conflict: c}
		}

		in.applyTo(m, schoolID, term)
		if err := tx.Save(m).Error; err != nil {
			return storeErr("update schedule entry", err)
		}
		out = s.decoder().entry(m)
		return nil
	})
	return out, logFailure(s.Log, "schedule.update", schoolID, err)
}

// Delete removes an entry without any conflict logic.
func (s *ScheduleService) Delete(ctx context.Context, schoolID, id uuid.UUID) error {
	res := s.DB.WithContext(ctx).
		Where("schedule_entry_school_id = ? AND schedule_entry_id = ?", schoolID, id).
		Delete(&model.ScheduleEntryModel{})
	if res.Error != nil {
		return logFailure(s.Log, "schedule.delete", schoolID, storeErr("delete schedule entry", res.Error))
	}
	if res.RowsAffected == 0 {
		return notFound("schedule entry", id)
	}
	return nil
}

// ResolveConflict replaces conflictingID with in, atomically. The candidate
// is checked again after the delete, so a collision with any third entry
// rolls the delete back. created is false when in.ID named an existing entry
// that was updated.
func (s *ScheduleService) ResolveConflict(ctx context.Context, schoolID uuid.UUID, in EntryInput, conflictingID uuid.UUID) (out Entry, created bool, err error) {
	if conflictingID == uuid.Nil {
		return Entry{}, false, invalid("conflictingEntryId", "is required")
	}
	if err := in.validate(); err != nil {
		return Entry{}, false, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("schedule_entry_school_id = ? AND schedule_entry_id = ?", schoolID, conflictingID).
			Delete(&model.ScheduleEntryModel{})
		if res.Error != nil {
			return storeErr("delete conflicting entry", res.Error)
		}
		if res.RowsAffected == 0 {
			return notFound("schedule entry", conflictingID)
		}

		term, err := CurrentTerm(tx, schoolID)
		if err != nil {
			return err
		}
		if err := ensureTimeSlot(tx, schoolID, in.TimeSlotID); err != nil {
			return err
		}
		c, err := s.detector().Detect(tx, in.occupancy(schoolID, term, in.ID))
		if err != nil {
			return err
		}
		if c != nil {
			return &ConflictError{Conflict: c}
		}

		var m *model.ScheduleEntryModel
		if in.ID != nil && *in.ID != conflictingID {
			if m, err = loadEntry(tx, schoolID, *in.ID); err != nil {
				return err
			}
		}
		if m != nil {
			in.applyTo(m, schoolID, term)
			if err := tx.Save(m).Error; err != nil {
				return storeErr("update replacement entry", err)
			}
		} else {
			// replacing an entry with itself keeps its id
			m = &model.ScheduleEntryModel{}
			if in.ID != nil {
				m.ScheduleEntryID = *in.ID
			}
			in.applyTo(m, schoolID, term)
			if err := tx.Create(m).Error; err != nil {
				return storeErr("insert replacement entry", err)
			}
			created = true
		}
		out = s.decoder().entry(m)
		return nil
	})
	if err != nil {
		return Entry{}, false, logFailure(s.Log, "schedule.resolve_conflict", schoolID, err)
	}
	return out, created, nil
}

func loadEntry(tx *gorm.DB, schoolID, id uuid.UUID) (*model.ScheduleEntryModel, error) {
	var m model.ScheduleEntryModel
	err := tx.Where("schedule_entry_school_id = ? AND schedule_entry_id = ?", schoolID, id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("schedule entry", id)
		}
		return nil, storeErr("load schedule entry", err)
	}
	return &m, nil
}

func slotOrder(tx *gorm.DB, schoolID uuid.UUID) (map[uuid.UUID]int, error) {
	var slots []model.TimeSlotModel
	if err := tx.Where("time_slot_school_id = ?", schoolID).Find(&slots).Error; err != nil {
		return nil, storeErr("load time slots", err)
	}
	out := make(map[uuid.UUID]int, len(slots))
	for _, sl := range slots {
		out[sl.TimeSlotID] = sl.TimeSlotOrder
	}
	return out, nil
}
