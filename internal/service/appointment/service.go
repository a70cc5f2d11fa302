package appointment

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jwalitptl/facility-api/internal/model"
	"github.com/jwalitptl/facility-api/internal/repository"
	"github.com/jwalitptl/facility-api/internal/service/access"
	"github.com/jwalitptl/facility-api/internal/service/notification"
	apperrors "github.com/jwalitptl/facility-api/pkg/errors"
	"github.com/jwalitptl/facility-api/pkg/idgen"
	"github.com/jwalitptl/facility-api/pkg/logger"
	"github.com/jwalitptl/facility-api/pkg/metrics"
)

var ErrNoAvailability = errors.New("no physiotherapist has a free slot")

const (
	defaultDuration      = 30
	therapyDuration      = 45
	maxDailyPerTherapist = 5
	completionNotes      = "Therapy session completed successfully"
)

// TherapySlots are the bookable quick-assign times, in order.
var TherapySlots = []string{"09:00 AM", "10:00 AM", "11:00 AM", "02:00 PM", "03:00 PM", "04:00 PM"}

type Service struct {
	appointments repository.AppointmentRepository
	patients     repository.PatientRepository
	users        repository.UserRepository
	notifier     notification.Notifier
	metrics      *metrics.Metrics
	log          *logger.Logger
	ids          *idgen.Generator

	// assignMu serializes quick-assign so two callers never take the same slot.
	assignMu sync.Mutex
}

func NewService(
	store repository.Store,
	notifier notification.Notifier,
	m *metrics.Metrics,
	log *logger.Logger,
	ids *idgen.Generator,
) *Service {
	if m == nil {
		m = metrics.NewNop()
	}
	if log == nil {
		log = logger.Nop()
	}
	if ids == nil {
		ids = idgen.NewGenerator(nil)
	}
	return &Service{
		appointments: store,
		patients:     store,
		users:        store,
		notifier:     notifier,
		metrics:      m,
		log:          log,
		ids:          ids,
	}
}

// Schedule books an appointment with a doctor, a physiotherapist, or both.
func (s *Service) Schedule(ctx context.Context, actor *model.User, req model.CreateAppointmentRequest) (*model.Appointment, error) {
	if err := access.Require(actor, access.ScheduleAppointment); err != nil {
		return nil, err
	}
	if req.DoctorID == "" && req.PhysiotherapistID == "" {
		return nil, apperrors.BadRequest("a doctor or physiotherapist is required", nil)
	}

	p, err := s.patient(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}
	a := &model.Appointment{
		ID:            s.ids.Next("apt-"),
		PatientID:     p.ID,
		PatientName:   p.FullName,
		PatientAge:    p.Age,
		PatientGender: p.Gender,
		Date:          req.Date,
		Time:          req.Time,
		Duration:      req.Duration,
		Type:          req.Type,
		Status:        model.AppointmentStatusUpcoming,
		Notes:         req.Notes,
	}
	if a.Duration <= 0 {
		a.Duration = defaultDuration
	}
	if req.DoctorID != "" {
		doctor, err := s.clinician(ctx, req.DoctorID, model.RoleDoctor)
		if err != nil {
			return nil, err
		}
		a.DoctorID, a.DoctorName = doctor.ID, doctor.Name
	}
	if req.PhysiotherapistID != "" {
		physio, err := s.clinician(ctx, req.PhysiotherapistID, model.RolePhysiotherapist)
		if err != nil {
			return nil, err
		}
		a.PhysiotherapistID, a.PhysiotherapistName = physio.ID, physio.Name
	}

	if err := s.appointments.AddAppointment(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to schedule appointment: %w", err)
	}
	s.metrics.AppointmentChanges.WithLabelValues(string(a.Status)).Inc()
	s.log.Info("appointment scheduled", "appointment_id", a.ID, "patient_id", a.PatientID)

	s.notify(ctx, model.NewNotification{
		Title:   "Appointment Scheduled",
		Message: fmt.Sprintf("%s appointment for %s on %s at %s", a.Type, a.PatientName, a.Date, a.Time),
		Type:    model.NotificationInfo,
		Role:    model.RoleAll,
		Link:    "/appointments",
	})
	return a, nil
}

func (s *Service) Get(ctx context.Context, actor *model.User, id string) (*model.Appointment, error) {
	a, err := s.appointments.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanViewAppointment(actor, a) {
		return nil, fmt.Errorf("appointment %s: %w", id, access.ErrForbidden)
	}
	return a, nil
}

// List returns the appointments actor may see, ordered by date and time.
func (s *Service) List(ctx context.Context, actor *model.User, filter model.AppointmentFilter) ([]*model.Appointment, error) {
	all, err := s.appointments.ListAppointments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	matched := make([]*model.Appointment, 0, len(all))
	for _, a := range all {
		if filter.Matches(a) {
			matched = append(matched, a)
		}
	}
	return access.VisibleAppointments(actor, matched), nil
}

func (s *Service) Update(ctx context.Context, actor *model.User, id string, req model.UpdateAppointmentRequest) (*model.Appointment, error) {
	if err := access.Require(actor, access.ScheduleAppointment); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}
	a, err := s.appointments.UpdateAppointment(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}
	return a, nil
}

// Start moves an upcoming appointment to in-progress.
func (s *Service) Start(ctx context.Context, actor *model.User, id string) (*model.Appointment, error) {
	if err := access.Require(actor, access.StartSession); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}
	a, err := s.appointments.TransitionAppointment(ctx, id, model.AppointmentStatusInProgress)
	if err != nil {
		return nil, err
	}
	s.metrics.AppointmentChanges.WithLabelValues(string(a.Status)).Inc()
	s.log.Info("appointment started", "appointment_id", a.ID)
	return a, nil
}

// Complete finishes a therapy session and files its health record in the
// same store mutation.
func (s *Service) Complete(ctx context.Context, actor *model.User, id string, req model.CompleteAppointmentRequest) (*model.Appointment, error) {
	if err := access.Require(actor, access.CompleteAppointment); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}

	notes := req.Notes
	if notes == "" {
		notes = completionNotes
	}
	record := &model.HealthRecord{
		ID:        s.ids.Next("hr-"),
		Notes:     notes,
		CreatedAt: s.ids.Now(),
	}
	record.StampClinician(actor)

	a, err := s.appointments.CompleteAppointment(ctx, id, record)
	if err != nil {
		return nil, err
	}
	s.metrics.AppointmentChanges.WithLabelValues(string(a.Status)).Inc()
	s.log.Info("appointment completed", "appointment_id", a.ID, "health_record_id", record.ID)

	s.notify(ctx, model.NewNotification{
		Title:   "Treatment Completed",
		Message: fmt.Sprintf("%s completed therapy for %s.", actor.Name, a.PatientName),
		Type:    model.NotificationSuccess,
		Role:    model.RoleAll,
		Link:    "/patients/" + a.PatientID,
	})
	return a, nil
}

// Cancel cancels a non-terminal appointment.
func (s *Service) Cancel(ctx context.Context, actor *model.User, id string, req model.CancelAppointmentRequest) (*model.Appointment, error) {
	if err := access.Require(actor, access.ScheduleAppointment); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}
	a, err := s.appointments.TransitionAppointment(ctx, id, model.AppointmentStatusCancelled)
	if err != nil {
		return nil, err
	}
	s.metrics.AppointmentChanges.WithLabelValues(string(a.Status)).Inc()
	s.log.Info("appointment cancelled", "appointment_id", a.ID, "cancelled_by", actor.ID)

	msg := fmt.Sprintf("Appointment for %s on %s at %s was cancelled by %s", a.PatientName, a.Date, a.Time, actor.Name)
	if req.Reason != "" {
		msg += ": " + req.Reason
	}
	s.notify(ctx, model.NewNotification{
		Title:   "Appointment Cancelled",
		Message: msg,
		Type:    model.NotificationWarning,
		Role:    model.RoleAll,
		Link:    "/appointments",
	})
	return a, nil
}

// QuickAssign books a therapy session with the first approved
// physiotherapist holding fewer than five live appointments on the date, at
// their first free slot. The date defaults to today.
func (s *Service) QuickAssign(ctx context.Context, actor *model.User, req model.QuickAssignRequest) (*model.Appointment, error) {
	if err := access.Require(actor, access.ScheduleAppointment); err != nil {
		return nil, err
	}
	p, err := s.patient(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}
	date := req.Date
	if date == "" {
		date = model.FormatDate(s.ids.Now())
	}

	s.assignMu.Lock()
	defer s.assignMu.Unlock()

	therapists, err := s.users.ListUsers(ctx, model.RolePhysiotherapist)
	if err != nil {
		return nil, fmt.Errorf("failed to list physiotherapists: %w", err)
	}
	all, err := s.appointments.ListAppointments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	therapist, slot := pickSlot(therapists, all, date)
	if therapist == nil {
		return nil, ErrNoAvailability
	}

	a := &model.Appointment{
		ID:                  s.ids.Next("apt-"),
		PatientID:           p.ID,
		PatientName:         p.FullName,
		PatientAge:          p.Age,
		PatientGender:       p.Gender,
		PhysiotherapistID:   therapist.ID,
		PhysiotherapistName: therapist.Name,
		Date:                date,
		Time:                slot,
		Duration:            therapyDuration,
		Type:                model.AppointmentTypeTherapy,
		Status:              model.AppointmentStatusUpcoming,
		Notes:               "Assigned by " + assignerName(actor),
	}
	if err := s.appointments.AddAppointment(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to schedule therapy session: %w", err)
	}
	s.metrics.AppointmentChanges.WithLabelValues(string(a.Status)).Inc()
	s.log.Info("therapy session assigned", "appointment_id", a.ID, "physiotherapist_id", therapist.ID, "time", slot)

	s.notify(ctx, model.NewNotification{
		Title:   "Therapy Session Scheduled",
		Message: fmt.Sprintf("%s assigned to %s at %s", p.FullName, therapist.Name, slot),
		Type:    model.NotificationSuccess,
		Role:    model.RoleAll,
		Link:    "/appointments",
	})
	return a, nil
}

// pickSlot returns the first therapist with capacity on date and their
// first free slot. Cancelled appointments hold neither capacity nor a slot.
func pickSlot(therapists []*model.User, appointments []*model.Appointment, date string) (*model.User, string) {
	for _, t := range therapists {
		if !t.CanSignIn() {
			continue
		}
		booked := make(map[string]bool)
		var count int
		for _, a := range appointments {
			if a.PhysiotherapistID != t.ID || a.Date != date || a.Status == model.AppointmentStatusCancelled {
				continue
			}
			count++
			booked[a.Time] = true
		}
		if count >= maxDailyPerTherapist {
			continue
		}
		for _, slot := range TherapySlots {
			if !booked[slot] {
				return t, slot
			}
		}
	}
	return nil, ""
}

func assignerName(u *model.User) string {
	if u.Role == model.RoleSupervisor {
		return "Supervisor " + u.Name
	}
	return u.DisplayName()
}

func (s *Service) patient(ctx context.Context, id string) (*model.Patient, error) {
	p, err := s.patients.GetPatient(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.BadRequest(fmt.Sprintf("unknown patient %s", id), err)
	}
	return p, err
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

func (s *Service) notify(ctx context.Context, n model.NewNotification) {
	if s.notifier == nil {
		return
	}
	if _, err := s.notifier.Add(ctx, n); err != nil {
		s.log.Warn(err, "failed to add notification", "title", n.Title)
	}
}
