package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"timetable_backend/internals/features/timetable/model"
)

type subFixture struct {
	*fixture
	svc              *SubstitutionService
	ani, budi, citra uuid.UUID
	math, bio        Entry
}

// two Monday first-period classes, taught by Ani and Budi
func newSubFixture(t *testing.T) *subFixture {
	f := newFixture(t)
	sf := &subFixture{fixture: f, svc: NewSubstitutionService(f.db, zap.NewNop())}
	sf.ani, sf.budi, sf.citra = f.teacher("Ani"), f.teacher("Budi"), f.teacher("Citra")
	g1, g2 := f.group("7A"), f.group("7B")
	sf.math = f.place(EntryInput{Day: model.Monday, TimeSlotID: f.slots[0], ClassGroupID: &g1, SubjectCode: subject("MATH"), TeacherIDs: []uuid.UUID{sf.ani}})
	sf.bio = f.place(EntryInput{Day: model.Monday, TimeSlotID: f.slots[0], ClassGroupID: &g2, SubjectCode: subject("BIO"), TeacherIDs: []uuid.UUID{sf.budi}})
	return sf
}

func (sf *subFixture) cover(entry Entry, absent, substitute uuid.UUID, date time.Time) (model.SubstitutionModel, error) {
	return sf.svc.Assign(sf.ctx, sf.school, AssignInput{
		Date:                date,
		AbsentTeacherID:     absent,
		SubstituteTeacherID: substitute,
		OriginalEntryID:     entry.ID,
		Reason:              "sick",
	})
}

func TestAssign_AndListByDate(t *testing.T) {
	sf := newSubFixture(t)

	got, err := sf.cover(sf.math, sf.ani, sf.citra, monday.Add(9*time.Hour))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, got.SubstitutionID)
	assert.Equal(t, monday, got.SubstitutionDate)

	list, err := sf.svc.ListByDate(sf.ctx, sf.school, monday)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, got.SubstitutionID, list[0].SubstitutionID)
	require.NotNil(t, list[0].TimeSlotID)
	assert.Equal(t, sf.slots[0], *list[0].TimeSlotID)
	assert.Equal(t, "MATH", *list[0].SubjectCode)
	require.NotNil(t, list[0].TimeSlotOrder)
	assert.Equal(t, 1, *list[0].TimeSlotOrder)

	other, err := sf.svc.ListByDate(sf.ctx, sf.school, tuesday)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestAssign_SubstituteAlreadyCoveringSlot(t *testing.T) {
	sf := newSubFixture(t)

	first, err := sf.cover(sf.math, sf.ani, sf.citra, monday)
	require.NoError(t, err)

	_, err = sf.cover(sf.bio, sf.budi, sf.citra, monday)
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ConflictSubstitute, ce.Conflict.Kind)
	require.NotNil(t, ce.Conflict.Substitution)
	assert.Equal(t, first.SubstitutionID, ce.Conflict.Substitution.SubstitutionID)
	assert.Equal(t, sf.math.ID, ce.Conflict.Entry.ID)
	assert.Contains(t, ce.Conflict.Message, "Citra")

	// a week later the same cover is fine
	_, err = sf.cover(sf.bio, sf.budi, sf.citra, monday.AddDate(0, 0, 7))
	assert.NoError(t, err)
}

func TestAssign_SameSubstituteOtherSlotSameDate(t *testing.T) {
	sf := newSubFixture(t)
	g3 := sf.group("7C")
	chem := sf.place(EntryInput{Day: model.Monday, TimeSlotID: sf.slots[1], ClassGroupID: &g3, SubjectCode: subject("CHEM"), TeacherIDs: []uuid.UUID{sf.budi}})

	_, err := sf.cover(sf.math, sf.ani, sf.citra, monday)
	require.NoError(t, err)
	_, err = sf.cover(chem, sf.budi, sf.citra, monday)
	require.NoError(t, err)

	list, err := sf.svc.ListByDate(sf.ctx, sf.school, monday)
	require.NoError(t, err)
	require.Len(t, list, 2)
	// slot order
	assert.Equal(t, sf.slots[0], *list[0].TimeSlotID)
	assert.Equal(t, sf.slots[1], *list[1].TimeSlotID)
}

func TestAssign_ReplaceExcludesItself(t *testing.T) {
	sf := newSubFixture(t)

	first, err := sf.cover(sf.math, sf.ani, sf.citra, monday)
	require.NoError(t, err)

	notes := "  bring worksheets "
	replaced, err := sf.svc.Assign(sf.ctx, sf.school, AssignInput{
		Date:                monday,
		AbsentTeacherID:     sf.ani,
		SubstituteTeacherID: sf.citra,
		OriginalEntryID:     sf.math.ID,
		Reason:              "training",
		Notes:               &notes,
		ReplaceID:           &first.SubstitutionID,
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.SubstitutionID, replaced.SubstitutionID)
	assert.Equal(t, "bring worksheets", *replaced.SubstitutionNotes)

	list, err := sf.svc.ListByDate(sf.ctx, sf.school, monday)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "training", list[0].SubstitutionReason)
}

func TestAssign_RejectsBadInput(t *testing.T) {
	sf := newSubFixture(t)

	_, err := sf.cover(sf.math, sf.ani, sf.ani, monday)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "substituteTeacherId", ve.Field)

	_, err = sf.svc.Assign(sf.ctx, sf.school, AssignInput{Date: monday, AbsentTeacherID: sf.ani, SubstituteTeacherID: sf.citra, OriginalEntryID: sf.math.ID})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "reason", ve.Field)

	var nf *NotFoundError
	_, err = sf.cover(Entry{ID: uuid.New()}, sf.ani, sf.citra, monday)
	require.ErrorAs(t, err, &nf)

	missing := uuid.New()
	_, err = sf.svc.Assign(sf.ctx, sf.school, AssignInput{
		Date: monday, AbsentTeacherID: sf.ani, SubstituteTeacherID: sf.citra,
		OriginalEntryID: sf.math.ID, Reason: "sick", ReplaceID: &missing,
	})
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "substitution", nf.Resource)
}

func TestUnassign(t *testing.T) {
	sf := newSubFixture(t)
	s, err := sf.cover(sf.math, sf.ani, sf.citra, monday)
	require.NoError(t, err)

	require.NoError(t, sf.svc.Unassign(sf.ctx, sf.school, s.SubstitutionID))

	var nf *NotFoundError
	require.ErrorAs(t, sf.svc.Unassign(sf.ctx, sf.school, s.SubstitutionID), &nf)
}

func TestListByDate_SurvivesDeletedEntry(t *testing.T) {
	sf := newSubFixture(t)
	_, err := sf.cover(sf.math, sf.ani, sf.citra, monday)
	require.NoError(t, err)
	require.NoError(t, sf.schedule().Delete(sf.ctx, sf.school, sf.math.ID))

	list, err := sf.svc.ListByDate(sf.ctx, sf.school, monday)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].TimeSlotID)
}
