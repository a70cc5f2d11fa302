package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/jwalitptl/facility-api/internal/model"
	"github.com/jwalitptl/facility-api/internal/repository"
)

// AddPatient stores a new patient. Placement fields are dropped since a bed
// can only be taken through AssignRoom.
func (s *Store) AddPatient(ctx context.Context, patient *model.Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing := find(s.patients, patient.ID, patientKey); existing != nil {
		return fmt.Errorf("patient %s: %w", patient.ID, repository.ErrDuplicateID)
	}
	p := copyPatient(patient)
	p.ClearPlacement()
	if p.Status == "" || p.Status == model.PatientStatusAdmitted {
		p.Status = model.PatientStatusOutpatient
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	s.patients = append(s.patients, p)
	*patient = *copyPatient(p)
	return nil
}

func (s *Store) GetPatient(ctx context.Context, id string) (*model.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := find(s.patients, id, patientKey)
	if p == nil {
		return nil, fmt.Errorf("patient %s: %w", id, repository.ErrNotFound)
	}
	return copyPatient(p), nil
}

func (s *Store) UpdatePatient(ctx context.Context, id string, req model.UpdatePatientRequest) (*model.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := find(s.patients, id, patientKey)
	if p == nil {
		return nil, fmt.Errorf("patient %s: %w", id, repository.ErrNotFound)
	}
	req.Apply(p)

	// keep the bed's denormalized name in step with the patient
	if req.FullName != nil && p.HasPlacement() {
		for _, b := range s.beds {
			if b.IsOccupied && b.PatientID == p.ID {
				b.PatientName = p.FullName
			}
		}
	}
	return copyPatient(p), nil
}

func (s *Store) ListPatients(ctx context.Context, filter model.PatientFilter) ([]*model.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	patients := make([]*model.Patient, 0, len(s.patients))
	for _, p := range s.patients {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if search != "" && !matchesPatient(p, search) {
			continue
		}
		patients = append(patients, copyPatient(p))
	}
	return patients, nil
}

func matchesPatient(p *model.Patient, search string) bool {
	return strings.Contains(strings.ToLower(p.FullName), search) ||
		strings.Contains(strings.ToLower(p.ID), search) ||
		strings.Contains(strings.ToLower(p.Phone), search) ||
		strings.Contains(strings.ToLower(p.Email), search)
}
