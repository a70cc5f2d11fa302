package model

import "time"

// HealthRecord is an immutable clinical note. Exactly one of the doctor or
// physiotherapist pairs names the recording clinician.
type HealthRecord struct {
	ID                  string    `json:"id"`
	PatientID           string    `json:"patient_id"`
	DoctorID            string    `json:"doctor_id,omitempty"`
	DoctorName          string    `json:"doctor_name,omitempty"`
	PhysiotherapistID   string    `json:"physiotherapist_id,omitempty"`
	PhysiotherapistName string    `json:"physiotherapist_name,omitempty"`
	AppointmentID       string    `json:"appointment_id,omitempty"`
	Date                string    `json:"date"`
	Vitals              *Vitals   `json:"vitals,omitempty"`
	Diagnosis           string    `json:"diagnosis,omitempty"`
	Prescription        string    `json:"prescription,omitempty"`
	Notes               string    `json:"notes,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

// StampClinician fills the clinician pair matching the recorder's role.
func (r *HealthRecord) StampClinician(u *User) {
	switch u.Role {
	case RolePhysiotherapist:
		r.PhysiotherapistID = u.ID
		r.PhysiotherapistName = u.Name
	default:
		r.DoctorID = u.ID
		r.DoctorName = u.Name
	}
}

// HealthCheckRequest records vitals and notes for a patient.
type HealthCheckRequest struct {
	Vitals       Vitals `json:"vitals"`
	Diagnosis    string `json:"diagnosis"`
	Prescription string `json:"prescription"`
	Notes        string `json:"notes"`
}
