package constants

import "fmt"

const (
	RoleSuperAdmin  = "super_admin"
	RoleAdmin       = "admin"
	RoleScrumMaster = "scrum_master"
	RoleTrainer     = "trainer"
	RoleEmployee    = "employee"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Template pesan error role
const (
	ErrOnlyEmployeesCanAccess = "Only employees can access %s."
	ErrOnlyAdminsCanAccess    = "Only admins can access %s."
	ErrAccessDenied           = "Access Denied"
)

func RoleErrorEmployee(feature string) string {
	return fmt.Sprintf(ErrOnlyEmployeesCanAccess, feature)
}

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

// ==========================
// ✅ Grouped Role Slices
// ==========================
var (
	AllRoles = []string{
		RoleSuperAdmin,
		RoleAdmin,
		RoleScrumMaster,
		RoleTrainer,
		RoleEmployee,
	}

	// receive admin notifications and may manage any session
	AdminAndAbove = []string{
		RoleAdmin,
		RoleSuperAdmin,
	}

	// may be scheduled as the trainer of a session
	SessionTrainerRoles = []string{
		RoleTrainer,
		RoleAdmin,
		RoleSuperAdmin,
	}

	EmployeeOnly = []string{
		RoleEmployee,
	}
)

var roleLabels = map[string]string{
	RoleSuperAdmin:  "Super Admin",
	RoleAdmin:       "Admin (HR)",
	RoleScrumMaster: "Scrum Master",
	RoleTrainer:     "Trainer",
	RoleEmployee:    "Employee",
}

func IsValidRole(role string) bool {
	_, ok := roleLabels[role]
	return ok
}

func RoleLabel(role string) string {
	if l, ok := roleLabels[role]; ok {
		return l
	}
	return role
}

func IsAdminRole(role string) bool {
	return role == RoleAdmin || role == RoleSuperAdmin
}

func StatusLabel(status string) string {
	switch status {
	case StatusActive:
		return "Active"
	case StatusInactive:
		return "Inactive"
	}
	return status
}
