package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"timetable_backend/internals/features/timetable/model"
	"timetable_backend/internals/metrics"
)

type BulkService struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewBulkService(db *gorm.DB, lg *zap.Logger) *BulkService {
	return &BulkService{DB: db, Log: orNop(lg)}
}

// BulkActivityInput places one custom activity on every
// day × slot × class group combination.
type BulkActivityInput struct {
	Activity      string
	Days          []model.DayOfWeek
	TimeSlotIDs   []uuid.UUID
	ClassGroupIDs []uuid.UUID
	TeacherIDs    []uuid.UUID
	RoomID        *uuid.UUID
}

func (in *BulkActivityInput) validate() error {
	in.Activity = strings.TrimSpace(in.Activity)
	if in.Activity == "" {
		return invalid("customActivity", "is required")
	}
	if len(in.Days) == 0 {
		return invalid("days", "at least one day is required")
	}
	for _, d := range in.Days {
		if d.Index() == 0 {
			return invalid("days", "unknown day %q", string(d))
		}
	}
	if len(in.TimeSlotIDs) == 0 {
		return invalid("timeSlotIds", "at least one time slot is required")
	}
	if len(in.ClassGroupIDs) == 0 && len(in.TeacherIDs) == 0 {
		return invalid("classGroupIds", "class groups or teachers are required")
	}
	if err := validateIDSet("teacherIds", in.TeacherIDs); err != nil {
		return err
	}
	return validateIDSet("classGroupIds", in.ClassGroupIDs)
}

// candidates expands the input in placement order: days outer, then slots,
// then class groups, each in request order.
func (in *BulkActivityInput) candidates() []EntryInput {
	groups := make([]*uuid.UUID, 0, len(in.ClassGroupIDs))
	for i := range in.ClassGroupIDs {
		groups = append(groups, &in.ClassGroupIDs[i])
	}
	if len(groups) == 0 {
		groups = append(groups, nil)
	}

	activity := in.Activity
	out := make([]EntryInput, 0, len(in.Days)*len(in.TimeSlotIDs)*len(groups))
	for _, day := range in.Days {
		for _, slot := range in.TimeSlotIDs {
			for _, cg := range groups {
				out = append(out, EntryInput{
					Day:            day,
					TimeSlotID:     slot,
					ClassGroupID:   cg,
					CustomActivity: &activity,
					TeacherIDs:     in.TeacherIDs,
					RoomID:         in.RoomID,
				})
			}
		}
	}
	return out
}

// BulkSkip reports one candidate that was not placed.
type BulkSkip struct {
	Day          model.DayOfWeek
	TimeSlotID   uuid.UUID
	ClassGroupID *uuid.UUID
	Reason       string
	Conflict     *Conflict
}

type BulkResult struct {
	SuccessCount int
	SkippedCount int
	Skipped      []BulkSkip
	Placed       []Entry
}

// PlaceBulkActivity places every candidate that can be placed. Candidates
// are folded one at a time inside a single transaction, so each check sees
// the inserts before it. Conflicts and store integrity rejections become skip
// reports; any other store failure aborts the whole batch.
func (s *BulkService) PlaceBulkActivity(ctx context.Context, schoolID uuid.UUID, in BulkActivityInput) (BulkResult, error) {
	if err := in.validate(); err != nil {
		return BulkResult{}, err
	}

	res := BulkResult{Skipped: []BulkSkip{}, Placed: []Entry{}}
	det := Detector{Log: s.Log}
	dec := idDecoder{Log: s.Log}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		term, err := CurrentTerm(tx, schoolID)
		if err != nil {
			return err
		}
		for _, slot := range in.TimeSlotIDs {
			if err := ensureTimeSlot(tx, schoolID, slot); err != nil {
				return err
			}
		}

		for _, cand := range in.candidates() {
			c, err := det.Detect(tx, cand.occupancy(schoolID, term, nil))
			if err != nil {
				return err
			}
			if c != nil {
				res.skip(cand, c.Message, c)
				continue
			}

			var m model.ScheduleEntryModel
			cand.applyTo(&m, schoolID, term)
			// savepoint: a rejected insert must not poison the outer transaction
			err = tx.Transaction(func(sp *gorm.DB) error {
				return sp.Create(&m).Error
			})
			if err != nil {
				serr := storeErr("insert bulk entry", err)
				var ie *IntegrityError
				if errors.As(serr, &ie) {
					s.Log.Warn("bulk candidate rejected by store",
						zap.Stringer("school_id", schoolID),
						zap.String("day", string(cand.Day)),
						zap.Stringer("time_slot_id", cand.TimeSlotID),
						zap.Error(ie.Err))
					res.skip(cand, ie.Message, nil)
					continue
				}
				return serr
			}
			res.SuccessCount++
			res.Placed = append(res.Placed, dec.entry(&m))
		}
		return nil
	})
	if err != nil {
		return BulkResult{}, logFailure(s.Log, "schedule.bulk_activity", schoolID, err)
	}

	metrics.BulkCandidates.WithLabelValues("placed").Add(float64(res.SuccessCount))
	metrics.BulkCandidates.WithLabelValues("skipped").Add(float64(res.SkippedCount))
	return res, nil
}

func (r *BulkResult) skip(cand EntryInput, reason string, c *Conflict) {
	r.SkippedCount++
	r.Skipped = append(r.Skipped, BulkSkip{
		Day:          cand.Day,
		TimeSlotID:   cand.TimeSlotID,
		ClassGroupID: cand.ClassGroupID,
		Reason:       reason,
		Conflict:     c,
	})
}

// Summary is the human message returned with a bulk placement.
func (r BulkResult) Summary() string {
	if r.SkippedCount == 0 {
		return fmt.Sprintf("%d entries placed.", r.SuccessCount)
	}
	return fmt.Sprintf("%d entries placed, %d skipped because of conflicts.", r.SuccessCount, r.SkippedCount)
}
