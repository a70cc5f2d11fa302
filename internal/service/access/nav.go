package access

import "github.com/jwalitptl/facility-api/internal/model"

// NavItem is one entry of a role's dashboard navigation.
type NavItem struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// FallbackRoute is where a guarded route sends a role it rejects.
const FallbackRoute = "/dashboard"

// Nav is what a client needs to lay out a role's dashboard.
type Nav struct {
	Items         []NavItem    `json:"items"`
	Capabilities  []Capability `json:"capabilities"`
	FallbackRoute string       `json:"fallback_route"`
}

// NavFor bundles the navigation and capability set of role.
func NavFor(role model.Role) Nav {
	return Nav{
		Items:         NavItems(role),
		Capabilities:  Capabilities(role),
		FallbackRoute: FallbackRoute,
	}
}

var navItems = map[model.Role][]NavItem{
	model.RoleAdmin: {
		{"Dashboard", "/dashboard"},
		{"Doctors", "/doctors"},
		{"Supervisors", "/supervisors"},
		{"Physiotherapists", "/physiotherapists"},
		{"Users", "/users"},
		{"Settings", "/settings"},
	},
	model.RoleSupervisor: {
		{"Dashboard", "/dashboard"},
		{"Patients", "/patients"},
		{"Physiotherapists", "/physiotherapists"},
		{"Schedule", "/schedule"},
		{"Settings", "/settings"},
	},
	model.RoleDoctor: {
		{"Dashboard", "/dashboard"},
		{"Patients", "/patients"},
		{"Appointments", "/appointments"},
		{"My Schedule", "/my-schedule"},
		{"New Patient", "/patients/new"},
		{"Profile", "/profile"},
	},
	model.RolePhysiotherapist: {
		{"Dashboard", "/dashboard"},
		{"Patients", "/patients"},
		{"Scan Patient", "/scan-patient"},
		{"Appointments", "/appointments"},
		{"Profile", "/profile"},
	},
	model.RolePatient: {
		{"Dashboard", "/dashboard"},
		{"Appointments", "/appointments"},
		{"Profile", "/profile"},
		{"Settings", "/settings"},
	},
}

// NavItems returns a copy of role's navigation, or nil for unknown roles.
func NavItems(role model.Role) []NavItem {
	items := navItems[role]
	if items == nil {
		return nil
	}
	out := make([]NavItem, len(items))
	copy(out, items)
	return out
}
