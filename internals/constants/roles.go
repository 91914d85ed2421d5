package constants

import "fmt"

// Token roles
const (
	RoleOwner   = "owner"
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
)

// Template pesan error role
const (
	ErrOnlyStaffCanAccess  = "only teachers, admins or owners may access %s"
	ErrOnlyAdminsCanAccess = "only school admins may change %s"
)

func RoleErrorStaff(feature string) string {
	return fmt.Sprintf(ErrOnlyStaffCanAccess, feature)
}

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

// ==========================
// Grouped Role Slices
// ==========================
var (
	// StaffRoles may read the timetable.
	StaffRoles = []string{
		RoleTeacher,
		RoleAdmin,
		RoleOwner,
	}

	// AdminRoles may change it.
	AdminRoles = []string{
		RoleAdmin,
		RoleOwner,
	}
)
