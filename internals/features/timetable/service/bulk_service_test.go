package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"timetable_backend/internals/features/timetable/model"
)

func TestPlaceBulkActivity_SkipsConflicts(t *testing.T) {
	f := newFixture(t)
	g1, g2 := f.group("7A"), f.group("7B")
	blocker := f.place(EntryInput{Day: model.Tuesday, TimeSlotID: f.slots[1], ClassGroupID: &g2, SubjectCode: subject("MATH")})

	res, err := NewBulkService(f.db, zap.NewNop()).PlaceBulkActivity(f.ctx, f.school, BulkActivityInput{
		Activity:      "Scouts",
		Days:          []model.DayOfWeek{model.Monday, model.Tuesday},
		TimeSlotIDs:   []uuid.UUID{f.slots[0], f.slots[1]},
		ClassGroupIDs: []uuid.UUID{g1, g2},
	})
	require.NoError(t, err)

	// 2 days x 2 slots x 2 groups, one already taken
	assert.Equal(t, 7, res.SuccessCount)
	assert.Equal(t, 1, res.SkippedCount)
	require.Len(t, res.Skipped, 1)
	skip := res.Skipped[0]
	assert.Equal(t, model.Tuesday, skip.Day)
	assert.Equal(t, f.slots[1], skip.TimeSlotID)
	assert.Equal(t, g2, *skip.ClassGroupID)
	require.NotNil(t, skip.Conflict)
	assert.Equal(t, ConflictClassGroup, skip.Conflict.Kind)
	assert.Equal(t, blocker.ID, skip.Conflict.Entry.ID)
	assert.Equal(t, "7 entries placed, 1 skipped because of conflicts.", res.Summary())

	list, err := f.schedule().List(f.ctx, f.school, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 8)
	for _, e := range res.Placed {
		assert.True(t, e.IsCustomActivity())
		assert.Equal(t, "Scouts", e.ActivityKey())
	}
}

func TestPlaceBulkActivity_SeesItsOwnInserts(t *testing.T) {
	f := newFixture(t)
	ani := f.teacher("Ani")
	g1, g2 := f.group("7A"), f.group("7B")

	res, err := NewBulkService(f.db, nil).PlaceBulkActivity(f.ctx, f.school, BulkActivityInput{
		Activity:      "Ceremony",
		Days:          []model.DayOfWeek{model.Monday},
		TimeSlotIDs:   []uuid.UUID{f.slots[0]},
		ClassGroupIDs: []uuid.UUID{g1, g2},
		TeacherIDs:    []uuid.UUID{ani},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.SuccessCount)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, g2, *res.Skipped[0].ClassGroupID)
	assert.Equal(t, ConflictTeacher, res.Skipped[0].Conflict.Kind)
	assert.Equal(t, res.Placed[0].ID, res.Skipped[0].Conflict.Entry.ID)
}

func TestPlaceBulkActivity_TeachersWithoutGroups(t *testing.T) {
	f := newFixture(t)
	ani, budi := f.teacher("Ani"), f.teacher("Budi")

	res, err := NewBulkService(f.db, nil).PlaceBulkActivity(f.ctx, f.school, BulkActivityInput{
		Activity:    "Staff Meeting",
		Days:        []model.DayOfWeek{model.Friday},
		TimeSlotIDs: []uuid.UUID{f.slots[0], f.slots[1], f.slots[2]},
		TeacherIDs:  []uuid.UUID{ani, budi},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.SuccessCount)
	assert.Zero(t, res.SkippedCount)
	assert.Equal(t, "3 entries placed.", res.Summary())
	for _, e := range res.Placed {
		assert.Nil(t, e.ClassGroupID)
		assert.Equal(t, []uuid.UUID{ani, budi}, e.TeacherIDs)
	}
}

func TestPlaceBulkActivity_Validation(t *testing.T) {
	f := newFixture(t)
	g1 := f.group("7A")
	svc := NewBulkService(f.db, nil)

	tests := []struct {
		name  string
		in    BulkActivityInput
		field string
	}{
		{"no activity", BulkActivityInput{Activity: " ", Days: []model.DayOfWeek{model.Monday}, TimeSlotIDs: f.slots, ClassGroupIDs: []uuid.UUID{g1}}, "customActivity"},
		{"no days", BulkActivityInput{Activity: "Scouts", TimeSlotIDs: f.slots, ClassGroupIDs: []uuid.UUID{g1}}, "days"},
		{"bad day", BulkActivityInput{Activity: "Scouts", Days: []model.DayOfWeek{"Someday"}, TimeSlotIDs: f.slots, ClassGroupIDs: []uuid.UUID{g1}}, "days"},
		{"no slots", BulkActivityInput{Activity: "Scouts", Days: []model.DayOfWeek{model.Monday}, ClassGroupIDs: []uuid.UUID{g1}}, "timeSlotIds"},
		{"no targets", BulkActivityInput{Activity: "Scouts", Days: []model.DayOfWeek{model.Monday}, TimeSlotIDs: f.slots}, "classGroupIds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.PlaceBulkActivity(f.ctx, f.school, tt.in)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestPlaceBulkActivity_UnknownSlotAbortsBatch(t *testing.T) {
	f := newFixture(t)
	g1 := f.group("7A")

	_, err := NewBulkService(f.db, nil).PlaceBulkActivity(f.ctx, f.school, BulkActivityInput{
		Activity:      "Scouts",
		Days:          []model.DayOfWeek{model.Monday},
		TimeSlotIDs:   []uuid.UUID{f.slots[0], uuid.New()},
		ClassGroupIDs: []uuid.UUID{g1},
	})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)

	list, err := f.schedule().List(f.ctx, f.school, ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}
