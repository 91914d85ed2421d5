package school

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"timetable_backend/internals/features/timetable/model"
	"timetable_backend/internals/helpers/dbtime"
)

// SchoolSeed is the master data of one school: terms, periods and the
// teachers, class groups and rooms the timetable refers to.
type SchoolSeed struct {
	SchoolID    uuid.UUID      `json:"school_id"`
	Terms       []TermSeed     `json:"terms"`
	TimeSlots   []TimeSlotSeed `json:"time_slots"`
	Teachers    []NamedSeed    `json:"teachers"`
	ClassGroups []NamedSeed    `json:"class_groups"`
	Rooms       []NamedSeed    `json:"rooms"`
}

type TermSeed struct {
	AcademicYear int    `json:"academic_year"`
	Semester     int    `json:"semester"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	IsActive     bool   `json:"is_active"`
}

type TimeSlotSeed struct {
	Label string `json:"label"`
	Order int    `json:"order"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type NamedSeed struct {
	ID   *uuid.UUID `json:"id"`
	Name string     `json:"name"`
}

// Counts reports how many rows of each kind were inserted.
type Counts struct {
	Terms, TimeSlots, Teachers, ClassGroups, Rooms int
}

// SeedSchoolsFromJSON reads a JSON array of SchoolSeed and inserts every row
// that is not there yet. Re-running it is a no-op.
func SeedSchoolsFromJSON(db *gorm.DB, lg *zap.Logger, filePath string) (Counts, error) {
	lg.Info("reading seed file", zap.String("path", filePath))

	file, err := os.ReadFile(filePath)
	if err != nil {
		return Counts{}, fmt.Errorf("read seed file: %w", err)
	}
	var schools []SchoolSeed
	if err := sonic.Unmarshal(file, &schools); err != nil {
		return Counts{}, fmt.Errorf("decode seed file: %w", err)
	}

	var total Counts
	for _, s := range schools {
		if s.SchoolID == uuid.Nil {
			return total, errors.New("seed: school_id is required")
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			n, err := seedSchool(tx, s)
			if err != nil {
				return err
			}
			total.add(n)
			lg.Info("school seeded",
				zap.Stringer("school_id", s.SchoolID),
				zap.Int("terms", n.Terms),
				zap.Int("time_slots", n.TimeSlots),
				zap.Int("teachers", n.Teachers),
				zap.Int("class_groups", n.ClassGroups),
				zap.Int("rooms", n.Rooms))
			return nil
		})
		if err != nil {
			return total, fmt.Errorf("seed school %s: %w", s.SchoolID, err)
		}
	}
	return total, nil
}

func (c *Counts) add(o Counts) {
	c.Terms += o.Terms
	c.TimeSlots += o.TimeSlots
	c.Teachers += o.Teachers
	c.ClassGroups += o.ClassGroups
	c.Rooms += o.Rooms
}

func seedSchool(tx *gorm.DB, s SchoolSeed) (Counts, error) {
	var n Counts

	for _, t := range s.Terms {
		var exists int64
		if err := tx.Model(&model.AcademicTermModel{}).
			Where("academic_term_school_id = ? AND academic_term_academic_year = ? AND academic_term_semester = ?",
				s.SchoolID, t.AcademicYear, t.Semester).
			Count(&exists).Error; err != nil {
			return n, err
		}
		if exists > 0 {
			continue
		}
		row := model.AcademicTermModel{
			AcademicTermSchoolID:     s.SchoolID,
			AcademicTermAcademicYear: t.AcademicYear,
			AcademicTermSemester:     t.Semester,
			AcademicTermIsActive:     t.IsActive,
		}
		var err error
		if row.AcademicTermStartDate, err = optionalDate(t.StartDate); err != nil {
			return n, err
		}
		if row.AcademicTermEndDate, err = optionalDate(t.EndDate); err != nil {
			return n, err
		}
		if err := tx.Create(&row).Error; err != nil {
			return n, err
		}
		n.Terms++
	}

	for _, sl := range s.TimeSlots {
		var exists int64
		if err := tx.Model(&model.TimeSlotModel{}).
			Where("time_slot_school_id = ? AND time_slot_label = ?", s.SchoolID, sl.Label).
			Count(&exists).Error; err != nil {
			return n, err
		}
		if exists > 0 {
			continue
		}
		start, err := dbtime.Parse(sl.Start)
		if err != nil {
			return n, err
		}
		end, err := dbtime.Parse(sl.End)
		if err != nil {
			return n, err
		}
		if !start.Before(end) {
			return n, fmt.Errorf("time slot %q: start must be before end", sl.Label)
		}
		if err := tx.Create(&model.TimeSlotModel{
			TimeSlotSchoolID: s.SchoolID,
			TimeSlotLabel:    sl.Label,
			TimeSlotOrder:    sl.Order,
			TimeSlotStart:    start,
			TimeSlotEnd:      end,
		}).Error; err != nil {
			return n, err
		}
		n.TimeSlots++
	}

	var err error
	if n.Teachers, err = seedNamed(tx, s.Teachers, "school_teacher_school_id", "school_teacher_name",
		func(ns NamedSeed) any {
			return &model.TeacherModel{SchoolTeacherID: idOrNil(ns.ID), SchoolTeacherSchoolID: s.SchoolID, SchoolTeacherName: ns.Name, SchoolTeacherIsActive: true}
		}, &model.TeacherModel{}, s.SchoolID); err != nil {
		return n, err
	}
	if n.ClassGroups, err = seedNamed(tx, s.ClassGroups, "class_group_school_id", "class_group_name",
		func(ns NamedSeed) any {
			return &model.ClassGroupModel{ClassGroupID: idOrNil(ns.ID), ClassGroupSchoolID: s.SchoolID, ClassGroupName: ns.Name, ClassGroupIsActive: true}
		}, &model.ClassGroupModel{}, s.SchoolID); err != nil {
		return n, err
	}
	if n.Rooms, err = seedNamed(tx, s.Rooms, "class_room_school_id", "class_room_name",
		func(ns NamedSeed) any {
			return &model.RoomModel{ClassRoomID: idOrNil(ns.ID), ClassRoomSchoolID: s.SchoolID, ClassRoomName: ns.Name, ClassRoomIsActive: true}
		}, &model.RoomModel{}, s.SchoolID); err != nil {
		return n, err
	}
	return n, nil
}

// seedNamed inserts the rows whose name is not taken in the school yet.
func seedNamed(tx *gorm.DB, rows []NamedSeed, schoolCol, nameCol string, build func(NamedSeed) any, table any, schoolID uuid.UUID) (int, error) {
	inserted := 0
	for _, r := range rows {
		r.Name = strings.TrimSpace(r.Name)
		if r.Name == "" {
			continue
		}
		var exists int64
		if err := tx.Model(table).
			Where(schoolCol+" = ? AND "+nameCol+" = ?", schoolID, r.Name).
			Count(&exists).Error; err != nil {
			return inserted, err
		}
		if exists > 0 {
			continue
		}
		if err := tx.Create(build(r)).Error; err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}

func optionalDate(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := dbtime.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func idOrNil(id *uuid.UUID) uuid.UUID {
	if id == nil {
		return uuid.Nil
	}
	return *id
}
