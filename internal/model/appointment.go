package model

type AppointmentStatus string

const (
	AppointmentStatusUpcoming   AppointmentStatus = "upcoming"
	AppointmentStatusInProgress AppointmentStatus = "in-progress"
	AppointmentStatusCompleted  AppointmentStatus = "completed"
	AppointmentStatusCancelled  AppointmentStatus = "cancelled"
)

// IsTerminal reports whether no further transition is allowed.
func (s AppointmentStatus) IsTerminal() bool {
	return s == AppointmentStatusCompleted || s == AppointmentStatusCancelled
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	if s.IsTerminal() {
		return false
	}
	switch next {
	case AppointmentStatusInProgress:
		return s == AppointmentStatusUpcoming
	case AppointmentStatusCompleted, AppointmentStatusCancelled:
		return true
	}
	return false
}

type AppointmentType string

const (
	AppointmentTypeConsultation AppointmentType = "consultation"
	AppointmentTypeTherapy      AppointmentType = "therapy"
	AppointmentTypeFollowUp     AppointmentType = "follow-up"
	AppointmentTypeCheckup      AppointmentType = "checkup"
	AppointmentTypeDischarge    AppointmentType = "discharge"
)

type Appointment struct {
	ID                  string            `json:"id"`
	PatientID           string            `json:"patient_id"`
	PatientName         string            `json:"patient_name"`
	PatientAge          int               `json:"patient_age,omitempty"`
	PatientGender       string            `json:"patient_gender,omitempty"`
	DoctorID            string            `json:"doctor_id,omitempty"`
	DoctorName          string            `json:"doctor_name,omitempty"`
	PhysiotherapistID   string            `json:"physiotherapist_id,omitempty"`
	PhysiotherapistName string            `json:"physiotherapist_name,omitempty"`
	Date                string            `json:"date"`
	Time                string            `json:"time"`
	Duration            int               `json:"duration"`
	Type                AppointmentType   `json:"type"`
	Status              AppointmentStatus `json:"status"`
	Notes               string            `json:"notes,omitempty"`
}

// Less orders appointments by date then time, both compared as strings.
func (a *Appointment) Less(b *Appointment) bool {
	if a.Date != b.Date {
		return a.Date < b.Date
	}
	return a.Time < b.Time
}

type CreateAppointmentRequest struct {
	PatientID         string          `json:"patient_id" binding:"required"`
	DoctorID          string          `json:"doctor_id"`
	PhysiotherapistID string          `json:"physiotherapist_id"`
	Date              string          `json:"date" binding:"required,datetime=2006-01-02"`
	Time              string          `json:"time" binding:"required"`
	Duration          int             `json:"duration" binding:"omitempty,gt=0"`
	Type              AppointmentType `json:"type" binding:"required,oneof=consultation therapy follow-up checkup discharge"`
	Notes             string          `json:"notes"`
}

// UpdateAppointmentRequest carries a partial appointment update. Status moves
// only through the start, complete and cancel operations.
type UpdateAppointmentRequest struct {
	Date     *string `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Time     *string `json:"time"`
	Duration *int    `json:"duration" binding:"omitempty,gt=0"`
	Notes    *string `json:"notes"`
}

// Apply merges the non-nil fields of req into a.
func (req *UpdateAppointmentRequest) Apply(a *Appointment) {
	setString(&a.Date, req.Date)
	setString(&a.Time, req.Time)
	if req.Duration != nil {
		a.Duration = *req.Duration
	}
	setString(&a.Notes, req.Notes)
}

type QuickAssignRequest struct {
	PatientID string `json:"patient_id" binding:"required"`
	Date      string `json:"date" binding:"omitempty,datetime=2006-01-02"`
}

type CompleteAppointmentRequest struct {
	Notes string `json:"notes"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason"`
}

// AppointmentFilter narrows an appointment listing.
type AppointmentFilter struct {
	Date      string            `form:"date"`
	Status    AppointmentStatus `form:"status"`
	PatientID string            `form:"patient_id"`
}

// Matches reports whether a passes every set field of f.
func (f AppointmentFilter) Matches(a *Appointment) bool {
	if f.Date != "" && a.Date != f.Date {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	return f.PatientID == "" || a.PatientID == f.PatientID
}
