// Package access holds the role capability table and the role-scoped views
// of patients and appointments.
package access

import (
	"errors"
	"fmt"

	"github.com/jwalitptl/facility-api/internal/model"
)

var ErrForbidden = errors.New("operation not permitted")

type Capability string

const (
	CreatePatient       Capability = "create_patient"
	EditPatient         Capability = "edit_patient"
	ScheduleAppointment Capability = "schedule_appointment"
	StartSession        Capability = "start_session"
	CompleteAppointment Capability = "complete_appointment"
	Discharge           Capability = "discharge"
	PrintQR             Capability = "print_qr"
	ManageUsers         Capability = "manage_users"
	ViewUsers           Capability = "view_users"
	RecordHealthCheck   Capability = "record_health_check"
	ScanPatient         Capability = "scan_patient"
	AssignRoom          Capability = "assign_room"
)

var capabilities = map[model.Role]map[Capability]bool{
	model.RoleAdmin: {
		PrintQR:     true,
		ManageUsers: true,
		ViewUsers:   true,
	},
	model.RoleSupervisor: {
		CreatePatient:       true,
		EditPatient:         true,
		ScheduleAppointment: true,
		Discharge:           true,
		PrintQR:             true,
		ViewUsers:           true,
		AssignRoom:          true,
	},
	model.RoleDoctor: {
		CreatePatient:       true,
		EditPatient:         true,
		ScheduleAppointment: true,
		StartSession:        true,
		Discharge:           true,
		PrintQR:             true,
		RecordHealthCheck:   true,
		AssignRoom:          true,
	},
	model.RolePhysiotherapist: {
		CompleteAppointment: true,
		Discharge:           true,
		RecordHealthCheck:   true,
		ScanPatient:         true,
	},
	model.RolePatient: {},
}

// allCapabilities fixes the order Capabilities reports in.
var allCapabilities = []Capability{
	CreatePatient, EditPatient, ScheduleAppointment, StartSession, CompleteAppointment, Discharge,
	PrintQR, ManageUsers, ViewUsers, RecordHealthCheck, ScanPatient, AssignRoom,
}

// Capabilities lists what role holds, in declaration order. Clients use it
// to show or hide actions such as QR printing and patient scanning.
func Capabilities(role model.Role) []Capability {
	out := []Capability{}
	for _, c := range allCapabilities {
		if Can(role, c) {
			out = append(out, c)
		}
	}
	return out
}

// Can reports whether role holds cap. Unknown roles hold nothing.
func Can(role model.Role, c Capability) bool {
	return capabilities[role][c]
}

// Require returns ErrForbidden unless u holds one of caps.
func Require(u *model.User, caps ...Capability) error {
	if u != nil {
		for _, c := range caps {
			if Can(u.Role, c) {
				return nil
			}
		}
	}
	return fmt.Errorf("%v: %w", caps, ErrForbidden)
}

// CanDischarge applies the per-patient discharge rule: only admitted
// patients, and a physiotherapist only for patients assigned to them.
func CanDischarge(u *model.User, p *model.Patient) bool {
	if u == nil || p == nil || !Can(u.Role, Discharge) {
		return false
	}
	if p.Status != model.PatientStatusAdmitted {
		return false
	}
	if u.Role == model.RolePhysiotherapist {
		return p.AssignedPhysiotherapistID == u.ID
	}
	return true
}

// CanViewPatient reports whether u may open p.
func CanViewPatient(u *model.User, p *model.Patient) bool {
	switch u.Role {
	case model.RoleDoctor:
		return p.AssignedDoctorID == u.ID
	case model.RolePatient:
		return p.ID == u.ID
	}
	return true
}

// VisiblePatients filters patients down to what u may see.
func VisiblePatients(u *model.User, patients []*model.Patient) []*model.Patient {
	out := make([]*model.Patient, 0, len(patients))
	for _, p := range patients {
		if CanViewPatient(u, p) {
			out = append(out, p)
		}
	}
	return out
}

// CanViewAppointment reports whether u may see a.
func CanViewAppointment(u *model.User, a *model.Appointment) bool {
	switch u.Role {
	case model.RoleDoctor:
		return a.DoctorID == u.ID
	case model.RolePhysiotherapist:
		return a.PhysiotherapistID == u.ID
	case model.RolePatient:
		return a.PatientID == u.ID
	}
	return true
}

// VisibleAppointments filters appointments down to what u may see.
func VisibleAppointments(u *model.User, appointments []*model.Appointment) []*model.Appointment {
	out := make([]*model.Appointment, 0, len(appointments))
	for _, a := range appointments {
		if CanViewAppointment(u, a) {
			out = append(out, a)
		}
	}
	return out
}
