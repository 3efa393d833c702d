package auth

import "strings"

// Role is the role string reported by the backend, kept verbatim for persistence.
// Use Kind for any authorization decision.
type Role string

// RoleKind is the closed set of roles the client understands.
type RoleKind int

const (
	RoleUnknown RoleKind = iota
	RoleAdmin
	RoleHR
	RoleFinance
	RoleStaff
	RoleAttendanceManager
	RoleAuditor
)

var roleKinds = map[string]RoleKind{
	"admin":              RoleAdmin,
	"hr":                 RoleHR,
	"finance":            RoleFinance,
	"staff":              RoleStaff,
	"attendance_manager": RoleAttendanceManager,
	"auditor":            RoleAuditor,
}

// NormalizeRole trims, lowercases and replaces spaces with underscores.
func NormalizeRole(raw string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), " ", "_")
}

// Kind maps the role string onto a RoleKind after normalization.
func (r Role) Kind() RoleKind {
	return roleKinds[NormalizeRole(string(r))]
}

func (k RoleKind) String() string {
	switch k {
	case RoleAdmin:
		return "admin"
	case RoleHR:
		return "hr"
	case RoleFinance:
		return "finance"
	case RoleStaff:
		return "staff"
	case RoleAttendanceManager:
		return "attendance_manager"
	case RoleAuditor:
		return "auditor"
	default:
		return "unknown"
	}
}

func (k RoleKind) in(kinds ...RoleKind) bool {
	if k == RoleUnknown {
		return false
	}
	for _, candidate := range kinds {
		if k == candidate {
			return true
		}
	}
	return false
}

// IsAdmin reports membership in the admin capability group.
func IsAdmin(r Role) bool { return r.Kind().in(RoleAdmin) }

// IsHROrAdmin reports membership in the HR-or-admin capability group.
func IsHROrAdmin(r Role) bool { return r.Kind().in(RoleHR, RoleAdmin) }

// IsFinanceOrAdmin reports membership in the finance-or-admin capability group.
func IsFinanceOrAdmin(r Role) bool { return r.Kind().in(RoleFinance, RoleAdmin) }

// IsStaff reports whether the role is plain staff.
func IsStaff(r Role) bool { return r.Kind().in(RoleStaff) }

// IsAttendanceManager reports whether the role may manage attendance.
func IsAttendanceManager(r Role) bool {
	return r.Kind().in(RoleAttendanceManager, RoleHR, RoleAdmin)
}

func CanViewEmployeeReports(r Role) bool { return r.Kind().in(RoleAdmin, RoleHR) }

func CanViewLeaveReports(r Role) bool {
	return r.Kind().in(RoleAdmin, RoleHR, RoleAttendanceManager)
}

func CanViewAttendanceReports(r Role) bool {
	return r.Kind().in(RoleAdmin, RoleHR, RoleAttendanceManager)
}

func CanViewPayrollReports(r Role) bool { return r.Kind().in(RoleAdmin, RoleFinance) }

func CanViewAuditReports(r Role) bool { return r.Kind().in(RoleAdmin, RoleAuditor) }

// HasReportAccess is the union of all report capabilities.
func HasReportAccess(r Role) bool {
	return CanViewEmployeeReports(r) ||
		CanViewLeaveReports(r) ||
		CanViewAttendanceReports(r) ||
		CanViewPayrollReports(r) ||
		CanViewAuditReports(r)
}
