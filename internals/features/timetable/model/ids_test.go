package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestDecodeIDs_EmptyForms(t *testing.T) {
	for _, raw := range []string{"", "  ", "null", "[]"} {
		ids, err := DecodeIDs(datatypes.JSON(raw))
		require.NoError(t, err, raw)
		assert.NotNil(t, ids, raw)
		assert.Empty(t, ids, raw)
	}
}

func TestEncodeIDs_KeepsOrder(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	assert.JSONEq(t, `[]`, string(EncodeIDs(nil)))

	ids, err := DecodeIDs(EncodeIDs([]uuid.UUID{b, a}))
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{b, a}, ids)
}

func TestDecodeIDs_Malformed(t *testing.T) {
	ids, err := DecodeIDs(datatypes.JSON(`["not-a-uuid"]`))
	assert.Error(t, err)
	assert.Empty(t, ids)
}

func TestIntersectIDs(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	assert.Equal(t, []uuid.UUID{c, a}, IntersectIDs([]uuid.UUID{c, b, a}, []uuid.UUID{a, c}))
	assert.Empty(t, IntersectIDs(nil, []uuid.UUID{a}))
	assert.Empty(t, IntersectIDs([]uuid.UUID{a}, []uuid.UUID{b}))
	assert.True(t, ContainsID([]uuid.UUID{a, b}, b))
	assert.False(t, ContainsID(nil, b))
}

func TestDayOfWeek(t *testing.T) {
	d, ok := ParseDayOfWeek(" monday ")
	require.True(t, ok)
	assert.Equal(t, Monday, d)
	assert.Equal(t, 1, d.Index())
	assert.Equal(t, 7, Sunday.Index())

	_, ok = ParseDayOfWeek("Mon")
	assert.False(t, ok)
	assert.Zero(t, DayOfWeek("Mon").Index())

	assert.Equal(t, Wednesday, DayOfWeekOf(time.Date(2025, 1, 1, 23, 0, 0, 0, time.UTC)))
}

func TestActivityKey(t *testing.T) {
	code, activity, blank := "MATH", "Scouts", "  "

	assert.Equal(t, "MATH", ActivityKey(&code, &activity))
	assert.False(t, IsCustomActivity(&code, &activity))

	assert.Equal(t, "Scouts", ActivityKey(&blank, &activity))
	assert.True(t, IsCustomActivity(nil, &activity))

	assert.Equal(t, "", ActivityKey(nil, nil))
	assert.False(t, IsCustomActivity(nil, &blank))
}
