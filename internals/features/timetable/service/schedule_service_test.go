package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"timetable_backend/internals/features/timetable/model"
)

func TestCreate_StampsCurrentTerm(t *testing.T) {
	f := newFixture(t)

	e := f.place(EntryInput{Day: model.Monday, TimeSlotID: f.slots[0], SubjectCode: subject(" MATH ")})

	assert.NotEqual(t, uuid.Nil, e.ID)
	assert.Equal(t, Term{AcademicYear: 2025, Semester: 1}, e.Term)
	require.NotNil(t, e.SubjectCode)
	assert.Equal(t, "MATH", *e.SubjectCode)
	assert.Empty(t, e.TeacherIDs)
}

func TestCreate_TeacherSetRoundTrip(t *testing.T) {
	f := newFixture(t)
	a, b, c := f.teacher("Ani"), f.teacher("Budi"), f.teacher("Citra")

	cases := map[string][]uuid.UUID{
		"none":  {},
		"one":   {a},
		"three": {c, a, b},
	}
	slot := 0
	for name, ids := range cases {
		t.Run(name, func(t *testing.T) {
			e := f.place(EntryInput{Day: model.Wednesday, TimeSlotID: f.slots[slot], SubjectCode: subject("ART"), TeacherIDs: ids})
			slot++

			list, err := f.schedule().List(f.ctx, f.school, ListFilter{})
			require.NoError(t, err)
			for _, got := range list {
				if got.ID == e.ID {
					assert.Equal(t, ids, got.TeacherIDs)
					return
				}
			}
			t.Fatalf("entry %s missing from list", e.ID)
		})
	}
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	svc := f.schedule()
	tch := f.teacher("Ani")

	tests := []struct {
		name  string
		in    EntryInput
		field string
	}{
		{"unknown day", EntryInput{Day: "Funday", TimeSlotID: f.slots[0], SubjectCode: subject("MATH")}, "day"},
		{"missing slot", EntryInput{Day: model.Monday, SubjectCode: subject("MATH")}, "timeSlotId"},
		{"nothing taught", EntryInput{Day: model.Monday, TimeSlotID: f.slots[0], CustomActivity: subject("  ")}, "subjectCode"},
		{"duplicate teacher", EntryInput{Day: model.Monday, TimeSlotID: f.slots[0], SubjectCode: subject("MATH"), TeacherIDs: []uuid.UUID{tch, tch}}, "teacherIds"},
		{"empty teacher id", EntryInput{Day: model.Monday, TimeSlotID: f.slots[0], SubjectCode: subject("MATH"), TeacherIDs: []uuid.UUID{uuid.Nil}}, "teacherIds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(f.ctx, f.school, tt.in)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestCreate_UnknownSlotIsNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.schedule().Create(f.ctx, f.school, EntryInput{Day: model.Monday, TimeSlotID: uuid.New(), SubjectCode: subject("MATH")})

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "time slot", nf.Resource)
}

func TestCreate_NoActiveTerm(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Model(&model.AcademicTermModel{}).
		Where("academic_term_school_id = ?", f.school).
		UpdateColumn("academic_term_is_active", false).Error)

	_, err := f.schedule().Create(f.ctx, f.school, EntryInput{Day: model.Monday, TimeSlotID: f.slots[0], SubjectCode: subject("MATH")})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "term", ve.Field)
}

func TestCreate_TeacherConflict(t *testing.T) {
	f := newFixture(t)
	ani := f.teacher("Ani")
	g1, g2 := f.group("7A"), f.group("7B")

	first := f.place(EntryInput{Day: model.Monday, TimeSlotID: f.slots[0], ClassGroupID: &g1, SubjectCode: subject("MATH"), TeacherIDs: []uuid.UUID{ani}})

	_, err := f.schedule().Create(f.ctx, f.school, EntryInput{
		Day: model.Monday, TimeSlotID: f.slots[0], ClassGroupID: &g2, SubjectCode: subject("BIO"), TeacherIDs: []uuid.UUID{ani},
	})

	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ConflictTeacher, ce.Conflict.Kind)
	assert.Equal(t, first.ID, ce.Conflict.Entry.ID)
	assert.Contains(t, ce.Conflict.Message, "Ani")
	assert.Contains(t, ce.Conflict.Message, "7A")
	assert.Contains(t, ce.Conflict.Message, "MATH")
}

func TestCreate_RoomAndClassGroupConflicts(t *testing.T) {
	f := newFixture(t)
	lab := f.room("Lab 1")
	g1 := f.group("7A")

	withRoom := f.place(EntryInput{Day: model.Monday, TimeSlotID: f.slots[1], SubjectCode: subject("CHEM"), RoomID: &lab})
	withGroup := f.place(EntryInput{Day: model.Monday, TimeSlotID: f.slots[2], SubjectCode: subject("MATH"), ClassGroupID: &g1})

	_, err := f.schedule().Create(f.ctx, f.school, EntryInput{Day: model.Monday, TimeSlotID: f.slots[1], SubjectCode: subject("PHYS"), RoomID: &lab})
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ConflictLocation, ce.Conflict.Kind)
	assert.Equal(t, withRoom.ID, ce.Conflict.Entry.ID)
	assert.Contains(t, ce.Conflict.Message, "Lab 1")

	_, err = f.schedule().Create(f.ctx, f.school, EntryInput{Day: model.Monday, TimeSlotID: f.slots[2], SubjectCode: subject("ENG"), ClassGroupID: &g1})
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ConflictClassGroup, ce.Conflict.Kind)
	assert.Equal(t, withGroup.ID, ce.Conflict.Entry.ID)
}

func TestDetect_TeacherCheckedBeforeRoom(t *testing.T) {
	f := newFixture(t)
	ani := f.teacher("Ani")
	lab := f.room("Lab 1")

	// the room holder is older, but teacher overlap is reported first
	f.place(EntryInput{Day: model.Monday, TimeSlotID: f.slots[0], SubjectCode: subject("CHEM"), RoomID: &lab})
	teacherHolder := f.place(EntryInput{Day: model.Monday, TimeSlotID: f.slots[0], SubjectCode: subject("MATH"), TeacherIDs: []uuid.UUID{ani}})

	c, err := Detector{}.Detect(f.db, Occupancy{
		SchoolID:   f.school,
		Day:        model.Monday,
		TimeSlotID: f.slots[0],
		Term:       Term{AcademicYear: 2025, Semester: 1},
		TeacherIDs: []uuid.UUID{ani},
		RoomID:     &lab,
	})
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, ConflictTeacher, c.Kind)
	assert.Equal(t, teacherHolder.ID, c.Entry.ID)
}

func TestDetect_ScopedToDaySlotAndTerm(t *testing.T) {
	f := newFixture(t)
	ani := f.teacher("Ani")
	f.place(EntryInput{Day: model.Monday, TimeSlotID: f.slots[0], SubjectCode: subject("MATH"), TeacherIDs: []uuid.UUID{ani}})

	base := Occupancy{
		SchoolID:   f.school,
		Day:        model.Monday,
		TimeSlotID: f.slots[0],
		Term:       Term{AcademicYear: 2025, Semester: 1},
		TeacherIDs: []uuid.UUID{ani},
	}
	other := map[string]func(o *Occupancy){
		"day":    func(o *Occupancy) { o.Day = model.Tuesday },
		"slot":   func(o *Occupancy) { o.TimeSlotID = f.slots[1] },
		"term":   func(o *Occupancy) { o.Term = Term{AcademicYear: 2024, Semester: 2} },
		"school": func(o *Occupancy) { o.SchoolID = uuid.New() },
	}
	for name, mutate := range other {
		t.Run(name, func(t *testing.T) {
			occ := base
			mutate(&occ)
			c, err := Detector{}.Detect(f.db, occ)
			require.NoError(t, err)
			assert.Nil(t, c)
		})
	}
}

func TestCreate_EntriesWithoutClaimsNeverConflict(t *testing.T) {
	f := newFixture(t)

	f.place(EntryInput{Day: model.Friday, TimeSlotID: f.slots[0], CustomActivity: subject("Assembly")})
	f.place(EntryInput{Day: model.Friday, TimeSlotID: f.slots[0], CustomActivity: subject("Assembly")})

	list, err := f.schedule().List(f.ctx, f.school, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestUpdate_ExcludesItself(t *testing.T) {
	f := newFixture(t)
	ani := f.teacher("Ani")
	lab := f.room("Lab 1")
	in := EntryInput{Day: model.Monday, TimeSlotID: f.slots[0], SubjectCode: subject("MATH"), TeacherIDs: []uuid.UUID{ani}, RoomID: &lab}
	e := f.place(in)

	in.SubjectCode = subject("PHYS")
	got, err := f.schedule().Update(f.ctx, f.school, e.ID, in)
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)
	assert.Equal(t, "PHYS", *got.SubjectCode)
	assert.Equal(t, []uuid.UUID{ani}, got.TeacherIDs)
}

func TestUpdate_ConflictLeavesEntryUntouched(t *testing.T) {
	f := newFixture(t)
	ani := f.teacher("Ani")
	f.place(EntryInput{Day: model.Monday, TimeSlotID: f.slots[0], SubjectCode: subject("MATH"), TeacherIDs: []uuid.UUID{ani}})
	moved := f.place(EntryInput{Day: model.Monday, TimeSlotID: f.slots[1], SubjectCode: subject("BIO"), TeacherIDs: []uuid.UUID{ani}})

	_, err := f.schedule().Update(f.ctx, f.school, moved.ID, EntryInput{Day: model.Monday, TimeSlotID: f.slots[0], SubjectCode: subject("BIO"), TeacherIDs: []uuid.UUID{ani}})
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)

	m, err := loadEntry(f.db, f.school, moved.ID)
	require.NoError(t, err)
	assert.Equal(t, f.slots[1], m.ScheduleEntryTimeSlotID)
}

func TestUpdateAndDelete_NotFound(t *testing.T) {
	f := newFixture(t)
	svc := f.schedule()
	missing := uuid.New()

	_, err := svc.Update(f.ctx, f.school, missing, EntryInput{Day: model.Monday, TimeSlotID: f.slots[0], SubjectCode: subject("MATH")})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)

	e := f.place(EntryInput{Day: model.Monday, TimeSlotID: f.slots[0], SubjectCode: subject("MATH")})
	require.NoError(t, svc.Delete(f.ctx, f.school, e.ID))
	require.ErrorAs(t, svc.Delete(f.ctx, f.school, e.ID), &nf)

	// another school's id is invisible
	other := f.place(EntryInput{Day: model.Monday, TimeSlotID: f.slots[1], SubjectCode: subject("MATH")})
	require.ErrorAs(t, svc.Delete(f.ctx, uuid.New(), other.ID), &nf)
}

func TestList_UndecodableTeacherSetDegradesToEmpty(t *testing.T) {
	f := newFixture(t)
	e := f.place(EntryInput{Day: model.Monday, TimeSlotID: f.slots[0], SubjectCode: subject("MATH"), TeacherIDs: []uuid.UUID{f.teacher("Ani")}})
	require.NoError(t, f.db.Exec(
		"UPDATE schedule_entries SET schedule_entry_teacher_ids = ? WHERE schedule_entry_id = ?", "not json", e.ID).Error)

	core, logs := observer.New(zapcore.WarnLevel)
	list, err := NewScheduleService(f.db, zap.New(core)).List(f.ctx, f.school, ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, e.ID, list[0].ID)
	assert.Empty(t, list[0].TeacherIDs)

	warns := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warns, 1)
	assert.Equal(t, "schedule_entry_teacher_ids", warns[0].ContextMap()["field"])
	assert.Equal(t, e.ID.String(), warns[0].ContextMap()["owner_id"])
}

func TestList_OrderAndFilters(t *testing.T) {
	f := newFixture(t)
	ani, budi := f.teacher("Ani"), f.teacher("Budi")
	g1, g2 := f.group("7A"), f.group("7B")

	tueLate := f.place(EntryInput{Day: model.Tuesday, TimeSlotID: f.slots[1], SubjectCode: subject("MATH"), ClassGroupID: &g1, TeacherIDs: []uuid.UUID{ani}})
	monLate := f.place(EntryInput{Day: model.Monday, TimeSlotID: f.slots[2], SubjectCode: subject("BIO"), ClassGroupID: &g2, TeacherIDs: []uuid.UUID{budi}})
	monEarly := f.place(EntryInput{Day: model.Monday, TimeSlotID: f.slots[0], SubjectCode: subject("ENG"), ClassGroupID: &g1, TeacherIDs: []uuid.UUID{budi, ani}})

	svc := f.schedule()
	ids := func(es []Entry) []uuid.UUID {
		out := make([]uuid.UUID, 0, len(es))
		for _, e := range es {
			out = append(out, e.ID)
		}
		return out
	}

	all, err := svc.List(f.ctx, f.school, ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{monEarly.ID, monLate.ID, tueLate.ID}, ids(all))

	day := model.Monday
	byDay, err := svc.List(f.ctx, f.school, ListFilter{Day: &day})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{monEarly.ID, monLate.ID}, ids(byDay))

	byGroup, err := svc.List(f.ctx, f.school, ListFilter{ClassGroupID: &g1})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{monEarly.ID, tueLate.ID}, ids(byGroup))

	byTeacher, err := svc.List(f.ctx, f.school, ListFilter{TeacherID: &ani})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{monEarly.ID, tueLate.ID}, ids(byTeacher))

	past := Term{AcademicYear: 2024, Semester: 2}
	byTerm, err := svc.List(f.ctx, f.school, ListFilter{Term: &past})
	require.NoError(t, err)
	assert.Empty(t, byTerm)
}

func TestResolveConflict_ReplacesConflictingEntry(t *testing.T) {
	f := newFixture(t)
	ani := f.teacher("Ani")
	g1, g2 := f.group("7A"), f.group("7B")

	old := f.place(EntryInput{Day: model.Monday, TimeSlotID: f.slots[0], ClassGroupID: &g1, SubjectCode: subject("MATH"), TeacherIDs: []uuid.UUID{ani}})
	candidate := EntryInput{Day: model.Monday, TimeSlotID: f.slots[0], ClassGroupID: &g2, SubjectCode: subject("BIO"), TeacherIDs: []uuid.UUID{ani}}

	_, err := f.schedule().Create(f.ctx, f.school, candidate)
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, old.ID, ce.Conflict.Entry.ID)

	got, created, err := f.schedule().ResolveConflict(f.ctx, f.school, candidate, ce.Conflict.Entry.ID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, old.ID, got.ID)

	list, err := f.schedule().List(f.ctx, f.school, ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, got.ID, list[0].ID)
	assert.Equal(t, "BIO", list[0].ActivityKey())
}

func TestResolveConflict_ThirdConflictRollsBack(t *testing.T) {
	f := newFixture(t)
	ani := f.teacher("Ani")
	lab := f.room("Lab 1")

	old := f.place(EntryInput{Day: model.Monday, TimeSlotID: f.slots[0], SubjectCode: subject("MATH"), TeacherIDs: []uuid.UUID{ani}})
	roomHolder := f.place(EntryInput{Day: model.Monday, TimeSlotID: f.slots[0], SubjectCode: subject("CHEM"), RoomID: &lab})

	_, _, err := f.schedule().ResolveConflict(f.ctx, f.school,
		EntryInput{Day: model.Monday, TimeSlotID: f.slots[0], SubjectCode: subject("PHYS"), TeacherIDs: []uuid.UUID{ani}, RoomID: &lab},
		old.ID)

	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ConflictLocation, ce.Conflict.Kind)
	assert.Equal(t, roomHolder.ID, ce.Conflict.Entry.ID)

	// the delete was rolled back
	_, err = loadEntry(f.db, f.school, old.ID)
	assert.NoError(t, err)
}

func TestResolveConflict_UpdatesNamedEntry(t *testing.T) {
	f := newFixture(t)
	ani := f.teacher("Ani")

	old := f.place(EntryInput{Day: model.Monday, TimeSlotID: f.slots[0], SubjectCode: subject("MATH"), TeacherIDs: []uuid.UUID{ani}})
	moving := f.place(EntryInput{Day: model.Monday, TimeSlotID: f.slots[2], SubjectCode: subject("BIO"), TeacherIDs: []uuid.UUID{ani}})

	got, created, err := f.schedule().ResolveConflict(f.ctx, f.school,
		EntryInput{ID: idPtr(moving.ID), Day: model.Monday, TimeSlotID: f.slots[0], SubjectCode: subject("BIO"), TeacherIDs: []uuid.UUID{ani}},
		old.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, moving.ID, got.ID)
	assert.Equal(t, f.slots[0], got.TimeSlotID)

	var nf *NotFoundError
	_, err = loadEntry(f.db, f.school, old.ID)
	assert.ErrorAs(t, err, &nf)
}

func TestResolveConflict_SameIDKeepsID(t *testing.T) {
	f := newFixture(t)
	e := f.place(EntryInput{Day: model.Monday, TimeSlotID: f.slots[0], SubjectCode: subject("MATH")})

	got, created, err := f.schedule().ResolveConflict(f.ctx, f.school,
		EntryInput{ID: idPtr(e.ID), Day: model.Tuesday, TimeSlotID: f.slots[1], SubjectCode: subject("MATH")},
		e.ID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, e.ID, got.ID)
	assert.Equal(t, model.Tuesday, got.Day)
}

func TestResolveConflict_MissingConflictingEntry(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.schedule().ResolveConflict(f.ctx, f.school,
		EntryInput{Day: model.Monday, TimeSlotID: f.slots[0], SubjectCode: subject("MATH")}, uuid.New())

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)

	_, _, err = f.schedule().ResolveConflict(f.ctx, f.school,
		EntryInput{Day: model.Monday, TimeSlotID: f.slots[0], SubjectCode: subject("MATH")}, uuid.Nil)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}
