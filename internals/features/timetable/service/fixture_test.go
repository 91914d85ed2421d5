package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	database "timetable_backend/internals/databases"
	"timetable_backend/internals/features/timetable/model"
	"timetable_backend/internals/helpers/dbtime"
)

const lunchBreak = "Lunch Break"

// monday is 2025-03-03; the rest of that week follows.
var (
	monday  = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	tuesday = monday.AddDate(0, 0, 1)
)

type fixture struct {
	t      *testing.T
	ctx    context.Context
	db     *gorm.DB
	school uuid.UUID
	slots  []uuid.UUID
}

// newFixture opens a private in-memory database with one school, an active
// term and three ordered time slots.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), database.Config(zap.NewNop(), gormLogger.Silent))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))

	f := &fixture{t: t, ctx: context.Background(), db: db, school: uuid.New()}
	f.term(2024, 2, true)
	f.term(2025, 1, true)
	f.term(2025, 2, false)

	for i, span := range [][2]string{{"07:30", "08:15"}, {"08:15", "09:00"}, {"09:00", "09:45"}} {
		slot := model.TimeSlotModel{
			TimeSlotSchoolID: f.school,
			TimeSlotLabel:    span[0],
			TimeSlotOrder:    i + 1,
			TimeSlotStart:    dbtime.MustParse(span[0]),
			TimeSlotEnd:      dbtime.MustParse(span[1]),
		}
		require.NoError(t, db.Create(&slot).Error)
		f.slots = append(f.slots, slot.TimeSlotID)
	}
	return f
}

func (f *fixture) term(year, semester int, active bool) {
	f.t.Helper()
	require.NoError(f.t, f.db.Create(&model.AcademicTermModel{
		AcademicTermSchoolID:     f.school,
		AcademicTermAcademicYear: year,
		AcademicTermSemester:     semester,
		AcademicTermIsActive:     active,
	}).Error)
}

func (f *fixture) teacher(name string) uuid.UUID {
	f.t.Helper()
	m := model.TeacherModel{SchoolTeacherSchoolID: f.school, SchoolTeacherName: name, SchoolTeacherIsActive: true}
	require.NoError(f.t, f.db.Create(&m).Error)
	return m.SchoolTeacherID
}

func (f *fixture) group(name string) uuid.UUID {
	f.t.Helper()
	m := model.ClassGroupModel{ClassGroupSchoolID: f.school, ClassGroupName: name, ClassGroupIsActive: true}
	require.NoError(f.t, f.db.Create(&m).Error)
	return m.ClassGroupID
}

func (f *fixture) room(name string) uuid.UUID {
	f.t.Helper()
	m := model.RoomModel{ClassRoomSchoolID: f.school, ClassRoomName: name, ClassRoomIsActive: true}
	require.NoError(f.t, f.db.Create(&m).Error)
	return m.ClassRoomID
}

func (f *fixture) schedule() *ScheduleService {
	return NewScheduleService(f.db, zap.NewNop())
}

// place creates an entry and fails the test on any error.
func (f *fixture) place(in EntryInput) Entry {
	f.t.Helper()
	e, err := f.schedule().Create(f.ctx, f.school, in)
	require.NoError(f.t, err)
	return e
}

func subject(code string) *string { return &code }

func idPtr(id uuid.UUID) *uuid.UUID { return &id }
