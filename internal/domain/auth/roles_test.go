package auth

import "testing"

func TestRole_KindNormalizes(t *testing.T) {
	tests := []struct {
		raw  Role
		want RoleKind
	}{
		{"admin", RoleAdmin},
		{"  ADMIN ", RoleAdmin},
		{"HR", RoleHR},
		{"Finance", RoleFinance},
		{"staff", RoleStaff},
		{"Attendance Manager", RoleAttendanceManager},
		{"attendance_manager", RoleAttendanceManager},
		{"Auditor", RoleAuditor},
		{"superuser", RoleUnknown},
		{"", RoleUnknown},
	}
	for _, tt := range tests {
		if got := tt.raw.Kind(); got != tt.want {
			t.Fatalf("Kind(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestCapabilities(t *testing.T) {
	type caps struct {
		admin, hrOrAdmin, financeOrAdmin, staff, attendance bool
		employee, leave, attendanceRpt, payroll, audit, any bool
	}
	tests := []struct {
		role Role
		want caps
	}{
		{"admin", caps{true, true, true, false, true, true, true, true, true, true, true}},
		{"hr", caps{false, true, false, false, true, true, true, true, false, false, true}},
		{"finance", caps{false, false, true, false, false, false, false, false, true, false, true}},
		{"staff", caps{false, false, false, true, false, false, false, false, false, false, false}},
		{"attendance manager", caps{false, false, false, false, true, false, true, true, false, false, true}},
		{"auditor", caps{false, false, false, false, false, false, false, false, false, true, true}},
		{"janitor", caps{}},
	}
	for _, tt := range tests {
		got := caps{
			admin:          IsAdmin(tt.role),
			hrOrAdmin:      IsHROrAdmin(tt.role),
			financeOrAdmin: IsFinanceOrAdmin(tt.role),
			staff:          IsStaff(tt.role),
			attendance:     IsAttendanceManager(tt.role),
			employee:       CanViewEmployeeReports(tt.role),
			leave:          CanViewLeaveReports(tt.role),
			attendanceRpt:  CanViewAttendanceReports(tt.role),
			payroll:        CanViewPayrollReports(tt.role),
			audit:          CanViewAuditReports(tt.role),
			any:            HasReportAccess(tt.role),
		}
		if got != tt.want {
			t.Fatalf("role %q: got %+v, want %+v", tt.role, got, tt.want)
		}
	}
}

func TestRoleKind_String(t *testing.T) {
	if RoleAttendanceManager.String() != "attendance_manager" {
		t.Fatalf("unexpected string %q", RoleAttendanceManager.String())
	}
	if RoleUnknown.String() != "unknown" {
		t.Fatalf("unexpected string %q", RoleUnknown.String())
	}
}
