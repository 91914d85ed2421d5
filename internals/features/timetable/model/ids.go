package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// EncodeIDs serializes an id set as a JSON array, keeping the caller's order.
// A nil set is stored as [] so readers never have to special-case null.
func EncodeIDs(ids []uuid.UUID) datatypes.JSON {
	if ids == nil {
		ids = []uuid.UUID{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		// uuid.UUID always marshals; keep the column valid regardless
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(b)
}

// DecodeIDs parses a JSON id array. Empty or null input yields an empty,
// non-nil slice.
func DecodeIDs(js datatypes.JSON) ([]uuid.UUID, error) {
	raw := bytes.TrimSpace(js)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []uuid.UUID{}, nil
	}
	var out []uuid.UUID
	if err := json.Unmarshal(raw, &out); err != nil {
		return []uuid.UUID{}, fmt.Errorf("decode id set: %w", err)
	}
	if out == nil {
		out = []uuid.UUID{}
	}
	return out, nil
}

// ContainsID reports whether id is in ids.
func ContainsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// IntersectIDs returns the members of a that are also in b, in a's order.
func IntersectIDs(a, b []uuid.UUID) []uuid.UUID {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[uuid.UUID]struct{}, len(b))
	for _, v := range b {
		set[v] = struct{}{}
	}
	var out []uuid.UUID
	for _, v := range a {
		if _, ok := set[v]; ok {
			out = append(out, v)
		}
	}
	return out
}
