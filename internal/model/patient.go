package model

import "time"

type PatientStatus string

const (
	PatientStatusAdmitted   PatientStatus = "admitted"
	PatientStatusDischarged PatientStatus = "discharged"
	PatientStatusOutpatient PatientStatus = "outpatient"
)

// Vitals is the snapshot captured at the most recent health check.
type Vitals struct {
	BloodPressure string  `json:"blood_pressure,omitempty"`
	HeartRate     int     `json:"heart_rate,omitempty"`
	Temperature   float64 `json:"temperature,omitempty"`
	Weight        float64 `json:"weight,omitempty"`
	Height        float64 `json:"height,omitempty"`
	OxygenLevel   int     `json:"oxygen_level,omitempty"`
}

type Patient struct {
	ID               string        `json:"id"`
	FullName         string        `json:"full_name"`
	Email            string        `json:"email,omitempty"`
	Phone            string        `json:"phone"`
	Age              int           `json:"age"`
	Gender           string        `json:"gender"`
	DateOfBirth      string        `json:"date_of_birth,omitempty"`
	Address          string        `json:"address,omitempty"`
	BloodType        string        `json:"blood_type,omitempty"`
	EmergencyContact string        `json:"emergency_contact,omitempty"`
	Diagnosis        string        `json:"diagnosis,omitempty"`
	MedicalHistory   string        `json:"medical_history,omitempty"`
	Allergies        string        `json:"allergies,omitempty"`
	Vitals           *Vitals       `json:"vitals,omitempty"`
	Status           PatientStatus `json:"status"`

	RoomID     string `json:"room_id,omitempty"`
	RoomNumber string `json:"room_number,omitempty"`
	BlockName  string `json:"block_name,omitempty"`
	BedNumber  string `json:"bed_number,omitempty"`

	AssignedDoctorID            string `json:"assigned_doctor_id,omitempty"`
	AssignedDoctorName          string `json:"assigned_doctor_name,omitempty"`
	AssignedPhysiotherapistID   string `json:"assigned_physiotherapist_id,omitempty"`
	AssignedPhysiotherapistName string `json:"assigned_physiotherapist_name,omitempty"`

	AdmissionDate string    `json:"admission_date,omitempty"`
	DischargeDate string    `json:"discharge_date,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// HasPlacement reports whether the patient currently holds a room and bed.
func (p *Patient) HasPlacement() bool {
	return p.RoomID != "" && p.BedNumber != ""
}

// ClearPlacement drops every room and bed field.
func (p *Patient) ClearPlacement() {
	p.RoomID = ""
	p.RoomNumber = ""
	p.BlockName = ""
	p.BedNumber = ""
}

// CreatePatientRequest is the staff intake form.
type CreatePatientRequest struct {
	FullName                  string `json:"full_name" binding:"required"`
	Email                     string `json:"email" binding:"omitempty,email"`
	Phone                     string `json:"phone" binding:"required"`
	Age                       int    `json:"age" binding:"required,gt=0,lt=150"`
	Gender                    string `json:"gender" binding:"omitempty,oneof=male female other"`
	DateOfBirth               string `json:"date_of_birth"`
	Address                   string `json:"address"`
	BloodType                 string `json:"blood_type"`
	EmergencyContact          string `json:"emergency_contact"`
	Diagnosis                 string `json:"diagnosis"`
	MedicalHistory            string `json:"medical_history"`
	Allergies                 string `json:"allergies"`
	AssignedPhysiotherapistID string `json:"assigned_physiotherapist_id"`
}

// UpdatePatientRequest carries a partial patient update. Placement and status
// are owned by room assignment and discharge and cannot be set here.
type UpdatePatientRequest struct {
	FullName                    *string `json:"full_name"`
	Email                       *string `json:"email" binding:"omitempty,email"`
	Phone                       *string `json:"phone"`
	Age                         *int    `json:"age" binding:"omitempty,gt=0,lt=150"`
	Gender                      *string `json:"gender" binding:"omitempty,oneof=male female other"`
	DateOfBirth                 *string `json:"date_of_birth"`
	Address                     *string `json:"address"`
	BloodType                   *string `json:"blood_type"`
	EmergencyContact            *string `json:"emergency_contact"`
	Diagnosis                   *string `json:"diagnosis"`
	MedicalHistory              *string `json:"medical_history"`
	Allergies                   *string `json:"allergies"`
	Vitals                      *Vitals `json:"vitals"`
	AssignedDoctorID            *string `json:"assigned_doctor_id"`
	AssignedDoctorName          *string `json:"assigned_doctor_name"`
	AssignedPhysiotherapistID   *string `json:"assigned_physiotherapist_id"`
	AssignedPhysiotherapistName *string `json:"assigned_physiotherapist_name"`
}

// Apply merges the non-nil fields of req into p.
func (req *UpdatePatientRequest) Apply(p *Patient) {
	setString(&p.FullName, req.FullName)
	setString(&p.Email, req.Email)
	setString(&p.Phone, req.Phone)
	if req.Age != nil {
		p.Age = *req.Age
	}
	setString(&p.Gender, req.Gender)
	setString(&p.DateOfBirth, req.DateOfBirth)
	setString(&p.Address, req.Address)
	setString(&p.BloodType, req.BloodType)
	setString(&p.EmergencyContact, req.EmergencyContact)
	setString(&p.Diagnosis, req.Diagnosis)
	setString(&p.MedicalHistory, req.MedicalHistory)
	setString(&p.Allergies, req.Allergies)
	if req.Vitals != nil {
		v := *req.Vitals
		p.Vitals = &v
	}
	setString(&p.AssignedDoctorID, req.AssignedDoctorID)
	setString(&p.AssignedDoctorName, req.AssignedDoctorName)
	setString(&p.AssignedPhysiotherapistID, req.AssignedPhysiotherapistID)
	setString(&p.AssignedPhysiotherapistName, req.AssignedPhysiotherapistName)
}

type AssignRoomRequest struct {
	RoomID string `json:"room_id" binding:"required"`
	BedID  string `json:"bed_id" binding:"required"`
}

// PatientFilter narrows a patient listing.
type PatientFilter struct {
	Status PatientStatus `form:"status"`
	Search string        `form:"search"`
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
