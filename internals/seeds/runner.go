package seeds

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	school "timetable_backend/internals/seeds/schools"
)

// DefaultSchoolsFile is the demo master data shipped with the repo.
const DefaultSchoolsFile = "internals/seeds/schools/data_schools.json"

func RunAllSeeds(db *gorm.DB, lg *zap.Logger, schoolsFile string) error {
	if schoolsFile == "" {
		schoolsFile = DefaultSchoolsFile
	}

	//* Schools: terms, periods, teachers, class groups, rooms
	n, err := school.SeedSchoolsFromJSON(db, lg, schoolsFile)
	if err != nil {
		return err
	}
	lg.Info("seeding finished",
		zap.Int("terms", n.Terms),
		zap.Int("time_slots", n.TimeSlots),
		zap.Int("teachers", n.Teachers),
		zap.Int("class_groups", n.ClassGroups),
		zap.Int("rooms", n.Rooms))
	return nil
}
