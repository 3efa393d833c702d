package authroles

import (
	domainauth "github.com/target/hrdesk/internal/domain/auth"
)

// GroupRoleMapper maps directory group membership to a role name.
// Groups are checked in privilege order: admin, hr, finance, attendance_manager,
// auditor, staff. Empty group settings never match.
type GroupRoleMapper struct {
	AdminGroup             string
	HRGroup                string
	FinanceGroup           string
	AttendanceManagerGroup string
	AuditorGroup           string
	StaffGroup             string
}

// Map returns the role for the first matching group, or "" when none match.
func (m GroupRoleMapper) Map(groups []string) domainauth.Role {
	member := make(map[string]struct{}, len(groups))
	for _, g := range groups {
		member[g] = struct{}{}
	}

	order := []struct {
		group string
		role  domainauth.RoleKind
	}{
		{m.AdminGroup, domainauth.RoleAdmin},
		{m.HRGroup, domainauth.RoleHR},
		{m.FinanceGroup, domainauth.RoleFinance},
		{m.AttendanceManagerGroup, domainauth.RoleAttendanceManager},
		{m.AuditorGroup, domainauth.RoleAuditor},
		{m.StaffGroup, domainauth.RoleStaff},
	}
	for _, o := range order {
		if o.group == "" {
			continue
		}
		if _, ok := member[o.group]; ok {
			return domainauth.Role(o.role.String())
		}
	}
	return ""
}

// Configured reports whether any group is set.
func (m GroupRoleMapper) Configured() bool {
	return m != GroupRoleMapper{}
}
