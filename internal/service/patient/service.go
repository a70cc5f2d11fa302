package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jwalitptl/facility-api/internal/model"
	"github.com/jwalitptl/facility-api/internal/repository"
	"github.com/jwalitptl/facility-api/internal/service/access"
	"github.com/jwalitptl/facility-api/internal/service/notification"
	apperrors "github.com/jwalitptl/facility-api/pkg/errors"
	"github.com/jwalitptl/facility-api/pkg/idgen"
	"github.com/jwalitptl/facility-api/pkg/logger"
	"github.com/jwalitptl/facility-api/pkg/metrics"
)

// SignupGender is recorded for patients created from self-signup, which
// does not ask for it.
const SignupGender = "other"

// HandoffSource yields the data a signup left behind for userID.
type HandoffSource interface {
	ConsumeSignupHandoff(ctx context.Context, userID string) (*model.SignupHandoff, error)
}

type PatientService interface {
	Create(ctx context.Context, actor *model.User, req model.CreatePatientRequest) (*model.Patient, error)
	RegisterFromSignup(ctx context.Context, actor *model.User) (*model.Patient, error)
	Get(ctx context.Context, actor *model.User, id string) (*model.Patient, error)
	List(ctx context.Context, actor *model.User, filter model.PatientFilter) ([]*model.Patient, error)
	Update(ctx context.Context, actor *model.User, id string, req model.UpdatePatientRequest) (*model.Patient, error)
	AssignRoom(ctx context.Context, actor *model.User, id string, req model.AssignRoomRequest) (*model.Patient, error)
	Discharge(ctx context.Context, actor *model.User, id string) (*model.Patient, error)
}

type Service struct {
	patients repository.PatientRepository
	users    repository.UserRepository
	facility repository.FacilityRepository
	handoffs HandoffSource
	notifier notification.Notifier
	metrics  *metrics.Metrics
	log      *logger.Logger
	now      func() time.Time
}

var _ PatientService = (*Service)(nil)

func NewService(
	store repository.Store,
	handoffs HandoffSource,
	notifier notification.Notifier,
	m *metrics.Metrics,
	log *logger.Logger,
) *Service {
	if m == nil {
		m = metrics.NewNop()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		patients: store,
		users:    store,
		facility: store,
		handoffs: handoffs,
		notifier: notifier,
		metrics:  m,
		log:      log,
		now:      time.Now,
	}
}

// Create registers a patient from the staff intake form. A doctor creating
// the patient becomes the assigned doctor.
func (s *Service) Create(ctx context.Context, actor *model.User, req model.CreatePatientRequest) (*model.Patient, error) {
	if err := access.Require(actor, access.CreatePatient); err != nil {
		return nil, err
	}
	if err := validateIntake(req); err != nil {
		return nil, err
	}

	p := &model.Patient{
		ID:               idgen.Base36("pat-", s.now(), 3),
		FullName:         strings.TrimSpace(req.FullName),
		Email:            req.Email,
		Phone:            strings.TrimSpace(req.Phone),
		Age:              req.Age,
		Gender:           req.Gender,
		DateOfBirth:      req.DateOfBirth,
		Address:          req.Address,
		BloodType:        req.BloodType,
		EmergencyContact: req.EmergencyContact,
		Diagnosis:        req.Diagnosis,
		MedicalHistory:   req.MedicalHistory,
		Allergies:        req.Allergies,
		Status:           model.PatientStatusOutpatient,
		CreatedAt:        s.now(),
	}
	if actor.Role == model.RoleDoctor {
		p.AssignedDoctorID = actor.ID
		p.AssignedDoctorName = actor.Name
	}
	if req.AssignedPhysiotherapistID != "" {
		physio, err := s.clinician(ctx, req.AssignedPhysiotherapistID, model.RolePhysiotherapist)
		if err != nil {
			return nil, err
		}
		p.AssignedPhysiotherapistID = physio.ID
		p.AssignedPhysiotherapistName = physio.Name
	}

	if err := s.patients.AddPatient(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}
	s.log.Info("patient created", "patient_id", p.ID, "created_by", actor.ID)

	s.notify(ctx, model.NewNotification{
		Title:   "New Patient Added",
		Message: fmt.Sprintf("%s added by %s (ID: %s)", p.FullName, actor.DisplayName(), p.ID),
		Type:    model.NotificationInfo,
		Role:    model.RoleAll,
		Link:    "/patients/" + p.ID,
	})
	return p, nil
}

// RegisterFromSignup creates the patient record for actor's own signup. The
// signup handoff is consumed, so this can succeed once per signup.
func (s *Service) RegisterFromSignup(ctx context.Context, actor *model.User) (*model.Patient, error) {
	if actor == nil || actor.Role != model.RolePatient {
		return nil, fmt.Errorf("signup registration: %w", access.ErrForbidden)
	}
	handoff, err := s.handoffs.ConsumeSignupHandoff(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	age, err := AgeOn(handoff.DateOfBirth, s.now())
	if err != nil {
		return nil, apperrors.BadRequest("invalid date of birth", err)
	}

	p := &model.Patient{
		ID:          handoff.ID,
		FullName:    handoff.FullName,
		Email:       handoff.Email,
		Phone:       handoff.Phone,
		Age:         age,
		Gender:      SignupGender,
		DateOfBirth: handoff.DateOfBirth,
		Status:      model.PatientStatusOutpatient,
		CreatedAt:   s.now(),
	}
	if err := s.patients.AddPatient(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create patient from signup: %w", err)
	}
	s.log.Info("patient registered from signup", "patient_id", p.ID)

	s.notify(ctx, model.NewNotification{
		Title:   "New Patient Registered",
		Message: fmt.Sprintf("%s has registered as a new patient (ID: %s)", p.FullName, p.ID),
		Type:    model.NotificationInfo,
		Role:    string(model.RoleAdmin),
		Link:    "/patients/" + p.ID,
	})
	return p, nil
}

func (s *Service) Get(ctx context.Context, actor *model.User, id string) (*model.Patient, error) {
	p, err := s.patients.GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanViewPatient(actor, p) {
		return nil, fmt.Errorf("patient %s: %w", id, access.ErrForbidden)
	}
	return p, nil
}

// List returns the patients actor may see.
func (s *Service) List(ctx context.Context, actor *model.User, filter model.PatientFilter) ([]*model.Patient, error) {
	patients, err := s.patients.ListPatients(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return access.VisiblePatients(actor, patients), nil
}

func (s *Service) Update(ctx context.Context, actor *model.User, id string, req model.UpdatePatientRequest) (*model.Patient, error) {
	if err := access.Require(actor, access.EditPatient); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}
	if req.FullName != nil && strings.TrimSpace(*req.FullName) == "" {
		return nil, apperrors.BadRequest("full name cannot be empty", nil)
	}
	if err := s.resolveClinicians(ctx, &req); err != nil {
		return nil, err
	}

	p, err := s.patients.UpdatePatient(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}
	return p, nil
}

// AssignRoom admits the patient into bedID of roomID.
func (s *Service) AssignRoom(ctx context.Context, actor *model.User, id string, req model.AssignRoomRequest) (*model.Patient, error) {
	if err := access.Require(actor, access.AssignRoom); err != nil {
		return nil, err
	}

	p, err := s.facility.AssignRoom(ctx, id, req.RoomID, req.BedID)
	if err != nil {
		s.metrics.BedAssignments.WithLabelValues(assignmentResult(err)).Inc()
		return nil, err
	}
	s.metrics.BedAssignments.WithLabelValues("success").Inc()
	s.refreshOccupancy(ctx)
	s.log.Info("patient admitted", "patient_id", p.ID, "room_id", p.RoomID, "bed_number", p.BedNumber)

	s.notify(ctx, model.NewNotification{
		Title:   "Room Assigned",
		Message: fmt.Sprintf("%s has been assigned to %s, Room %s, Bed %s", p.FullName, p.BlockName, p.RoomNumber, p.BedNumber),
		Type:    model.NotificationSuccess,
		Role:    model.RoleAll,
		Link:    "/patients/" + p.ID,
	})
	return p, nil
}

// Discharge frees the patient's bed. Only admitted patients can be
// discharged, and a physiotherapist only for their own patients.
func (s *Service) Discharge(ctx context.Context, actor *model.User, id string) (*model.Patient, error) {
	if err := access.Require(actor, access.Discharge); err != nil {
		return nil, err
	}
	current, err := s.patients.GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != model.PatientStatusAdmitted {
		return nil, apperrors.Conflict("patient is not admitted", nil)
	}
	if !access.CanDischarge(actor, current) {
		return nil, fmt.Errorf("discharge %s: %w", id, access.ErrForbidden)
	}

	p, err := s.facility.DischargePatient(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to discharge patient: %w", err)
	}
	s.metrics.Discharges.Inc()
	s.refreshOccupancy(ctx)
	s.log.Info("patient discharged", "patient_id", p.ID, "discharged_by", actor.ID)

	s.notify(ctx, model.NewNotification{
		Title:   "Patient Discharged",
		Message: fmt.Sprintf("%s has been discharged by %s.", p.FullName, actor.DisplayName()),
		Type:    model.NotificationInfo,
		Role:    model.RoleAll,
		Link:    "/patients/" + p.ID,
	})
	return p, nil
}

// AgeOn returns the age in whole years on now of someone born on dob.
func AgeOn(dob string, now time.Time) (int, error) {
	born, err := time.Parse(model.DateLayout, dob)
	if err != nil {
		return 0, err
	}
	if born.After(now) {
		return 0, errors.New("date of birth is in the future")
	}
	age := now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		age--
	}
	return age, nil
}

func validateIntake(req model.CreatePatientRequest) error {
	if strings.TrimSpace(req.FullName) == "" {
		return apperrors.BadRequest("full name is required", nil)
	}
	if strings.TrimSpace(req.Phone) == "" {
		return apperrors.BadRequest("phone is required", nil)
	}
	if req.Age <= 0 {
		return apperrors.BadRequest("age must be greater than zero", nil)
	}
	return nil
}

// resolveClinicians fills assigned clinician names from their ids.
func (s *Service) resolveClinicians(ctx context.Context, req *model.UpdatePatientRequest) error {
	if id := req.AssignedDoctorID; id != nil && *id != "" && req.AssignedDoctorName == nil {
		doctor, err := s.clinician(ctx, *id, model.RoleDoctor)
		if err != nil {
			return err
		}
		req.AssignedDoctorName = &doctor.Name
	}
	if id := req.AssignedPhysiotherapistID; id != nil && *id != "" && req.AssignedPhysiotherapistName == nil {
		physio, err := s.clinician(ctx, *id, model.RolePhysiotherapist)
		if err != nil {
			return err
		}
		req.AssignedPhysiotherapistName = &physio.Name
	}
	return nil
}

func (s *Service) clinician(ctx context.Context, id string, role model.Role) (*model.User, error) {
	u, err := s.users.GetUser(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.BadRequest(fmt.Sprintf("unknown %s %s", role, id), err)
	}
	if err != nil {
		return nil, err
	}
	if u.Role != role {
		return nil, apperrors.BadRequest(fmt.Sprintf("user %s is not a %s", id, role), nil)
	}
	return u, nil
}

func (s *Service) refreshOccupancy(ctx context.Context) {
	beds, err := s.facility.ListBeds(ctx, "")
	if err != nil {
		s.log.Warn(err, "failed to refresh bed occupancy")
		return
	}
	var occupied int
	for _, b := range beds {
		if b.IsOccupied {
			occupied++
		}
	}
	s.metrics.OccupiedBeds.Set(float64(occupied))
}

func (s *Service) notify(ctx context.Context, n model.NewNotification) {
	if s.notifier == nil {
		return
	}
	if _, err := s.notifier.Add(ctx, n); err != nil {
		s.log.Warn(err, "failed to add notification", "title", n.Title)
	}
}

func assignmentResult(err error) string {
	switch {
	case errors.Is(err, repository.ErrBedOccupied):
		return "occupied"
	case errors.Is(err, repository.ErrAlreadyPlaced):
		return "already_placed"
	case errors.Is(err, repository.ErrNotFound):
		return "not_found"
	default:
		return "rejected"
	}
}
