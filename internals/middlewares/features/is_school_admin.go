package middleware

import (
	"github.com/gofiber/fiber/v2"

	"timetable_backend/internals/constants"
	helperAuth "timetable_backend/internals/helpers/auth"
)

// RequireSchoolScope rejects tokens issued for another school than the
// :school_id in the path. Owners pass for every school.
func RequireSchoolScope() fiber.Handler {
	return func(c *fiber.Ctx) error {
		schoolID, err := helperAuth.ResolveSchoolID(c)
		if err != nil {
			return err
		}
		if err := helperAuth.EnsureSchoolAccess(c, schoolID); err != nil {
			return err
		}
		return c.Next()
	}
}

// OnlyRoles lets the request through when the token role is one of roles.
func OnlyRoles(message string, roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	if message == "" {
		message = "Forbidden: you are not authorized to access this resource"
	}
	return func(c *fiber.Ctx) error {
		role := helperAuth.GetRole(c)
		if role == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized: missing role information")
		}
		if _, ok := allowed[role]; !ok {
			return fiber.NewError(fiber.StatusForbidden, message)
		}
		return c.Next()
	}
}

// IsSchoolAdmin: writes to the timetable.
func IsSchoolAdmin() fiber.Handler {
	return OnlyRoles(constants.RoleErrorAdmin("the timetable"), constants.AdminRoles...)
}

// IsSchoolStaff: reads of the timetable.
func IsSchoolStaff() fiber.Handler {
	return OnlyRoles(constants.RoleErrorStaff("the timetable"), constants.StaffRoles...)
}
