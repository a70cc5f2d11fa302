package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jwalitptl/facility-api/internal/model"
	"github.com/jwalitptl/facility-api/internal/repository"
)

func (s *Store) AddAppointment(ctx context.Context, appointment *model.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing := find(s.appointments, appointment.ID, appointmentKey); existing != nil {
		return fmt.Errorf("appointment %s: %w", appointment.ID, repository.ErrDuplicateID)
	}
	if appointment.Status == "" {
		appointment.Status = model.AppointmentStatusUpcoming
	}
	s.appointments = append(s.appointments, copyAppointment(appointment))
	return nil
}

func (s *Store) GetAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a := find(s.appointments, id, appointmentKey)
	if a == nil {
		return nil, fmt.Errorf("appointment %s: %w", id, repository.ErrNotFound)
	}
	return copyAppointment(a), nil
}

func (s *Store) UpdateAppointment(ctx context.Context, id string, req model.UpdateAppointmentRequest) (*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := find(s.appointments, id, appointmentKey)
	if a == nil {
		return nil, fmt.Errorf("appointment %s: %w", id, repository.ErrNotFound)
	}
	if a.Status.IsTerminal() {
		return nil, fmt.Errorf("appointment %s is %s: %w", id, a.Status, repository.ErrInvalidTransition)
	}
	req.Apply(a)
	return copyAppointment(a), nil
}

func (s *Store) TransitionAppointment(ctx context.Context, id string, to model.AppointmentStatus) (*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.transitionLocked(id, to)
	if err != nil {
		return nil, err
	}
	return copyAppointment(a), nil
}

func (s *Store) CompleteAppointment(ctx context.Context, id string, record *model.HealthRecord) (*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := find(s.appointments, id, appointmentKey)
	if a == nil {
		return nil, fmt.Errorf("appointment %s: %w", id, repository.ErrNotFound)
	}
	if !a.Status.CanTransitionTo(model.AppointmentStatusCompleted) {
		return nil, fmt.Errorf("appointment %s is %s: %w", id, a.Status, repository.ErrInvalidTransition)
	}
	if record != nil {
		if existing := find(s.healthRecords, record.ID, recordKey); existing != nil {
			return nil, fmt.Errorf("health record %s: %w", record.ID, repository.ErrDuplicateID)
		}
		record.PatientID = a.PatientID
		record.AppointmentID = a.ID
		record.Date = s.today()
		if record.CreatedAt.IsZero() {
			record.CreatedAt = s.now()
		}
		s.healthRecords = append(s.healthRecords, copyHealthRecord(record))
	}
	a.Status = model.AppointmentStatusCompleted
	return copyAppointment(a), nil
}

// ListAppointments returns all appointments ordered by date then time.
func (s *Store) ListAppointments(ctx context.Context) ([]*model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	appointments := make([]*model.Appointment, 0, len(s.appointments))
	for _, a := range s.appointments {
		appointments = append(appointments, copyAppointment(a))
	}
	sort.SliceStable(appointments, func(i, j int) bool {
		return appointments[i].Less(appointments[j])
	})
	return appointments, nil
}

func (s *Store) transitionLocked(id string, to model.AppointmentStatus) (*model.Appointment, error) {
	a := find(s.appointments, id, appointmentKey)
	if a == nil {
		return nil, fmt.Errorf("appointment %s: %w", id, repository.ErrNotFound)
	}
	if !a.Status.CanTransitionTo(to) {
		return nil, fmt.Errorf("appointment %s from %s to %s: %w", id, a.Status, to, repository.ErrInvalidTransition)
	}
	a.Status = to
	return a, nil
}
