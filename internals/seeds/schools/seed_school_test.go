package school

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	database "timetable_backend/internals/databases"
	"timetable_backend/internals/features/timetable/model"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"),
		database.Config(zap.NewNop(), gormLogger.Silent))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func TestSeedSchoolsFromJSON_Idempotent(t *testing.T) {
	db := openDB(t)

	first, err := SeedSchoolsFromJSON(db, zap.NewNop(), "data_schools.json")
	require.NoError(t, err)
	assert.Equal(t, Counts{Terms: 2, TimeSlots: 8, Teachers: 5, ClassGroups: 3, Rooms: 3}, first)

	again, err := SeedSchoolsFromJSON(db, zap.NewNop(), "data_schools.json")
	require.NoError(t, err)
	assert.Equal(t, Counts{}, again)

	var active model.AcademicTermModel
	require.NoError(t, db.Where("academic_term_is_active = ?", true).First(&active).Error)
	assert.Equal(t, 2025, active.AcademicTermAcademicYear)
	require.NotNil(t, active.AcademicTermStartDate)
	assert.Equal(t, "2025-07-14", active.AcademicTermStartDate.Format("2006-01-02"))
}

func TestSeedSchoolsFromJSON_RejectsBadSlot(t *testing.T) {
	db := openDB(t)
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{
		"school_id": "6f1c2a4e-3b7d-4c1e-9a2f-1d5e8b7c9a01",
		"terms": [{"academic_year": 2025, "semester": 1, "is_active": true}],
		"time_slots": [{"label": "P1", "order": 1, "start": "09:00", "end": "08:00"}]
	}]`), 0o600))

	_, err := SeedSchoolsFromJSON(db, zap.NewNop(), path)
	require.Error(t, err)

	// the school's transaction was rolled back
	var n int64
	require.NoError(t, db.Model(&model.AcademicTermModel{}).Count(&n).Error)
	assert.Zero(t, n)
}
