// file: internals/helpers/auth/school_context_resolver.go
package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"timetable_backend/internals/constants"
)

// Locals keys hydrated by the JWT middleware.
const (
	LocSchoolID = "school_id" // string, school of the token
	LocUserID   = "user_id"   // string, sub claim
	LocRole     = "role"      // string, lower-cased
	LocClaims   = "jwt_claims"
)

var (
	ErrSchoolContextMissing   = fiber.NewError(fiber.StatusBadRequest, "school_id is missing or not a valid id")
	ErrSchoolContextForbidden = fiber.NewError(fiber.StatusForbidden, "you do not have access to this school")
)

// ResolveSchoolID reads :school_id from the path.
func ResolveSchoolID(c *fiber.Ctx) (uuid.UUID, error) {
	raw := strings.TrimSpace(c.Params("school_id"))
	if raw == "" {
		return uuid.Nil, ErrSchoolContextMissing
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, ErrSchoolContextMissing
	}
	return id, nil
}

// TokenSchoolID is the school the bearer token was issued for.
func TokenSchoolID(c *fiber.Ctx) (uuid.UUID, bool) {
	s, _ := c.Locals(LocSchoolID).(string)
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

func GetRole(c *fiber.Ctx) string {
	s, _ := c.Locals(LocRole).(string)
	return strings.ToLower(strings.TrimSpace(s))
}

func IsOwner(c *fiber.Ctx) bool { return GetRole(c) == constants.RoleOwner }

// EnsureSchoolAccess allows the token's own school, or any school for an owner.
func EnsureSchoolAccess(c *fiber.Ctx, schoolID uuid.UUID) error {
	if IsOwner(c) {
		return nil
	}
	if tok, ok := TokenSchoolID(c); ok && tok == schoolID {
		return nil
	}
	return ErrSchoolContextForbidden
}
