package memory

import (
	"context"
	"fmt"

	"github.com/jwalitptl/facility-api/internal/model"
	"github.com/jwalitptl/facility-api/internal/repository"
)

// AddHealthRecord appends a record. Records are never changed afterwards.
func (s *Store) AddHealthRecord(ctx context.Context, record *model.HealthRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing := find(s.healthRecords, record.ID, recordKey); existing != nil {
		return fmt.Errorf("health record %s: %w", record.ID, repository.ErrDuplicateID)
	}
	if p := find(s.patients, record.PatientID, patientKey); p == nil {
		return fmt.Errorf("patient %s: %w", record.PatientID, repository.ErrNotFound)
	}
	if record.Date == "" {
		record.Date = s.today()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.now()
	}
	s.healthRecords = append(s.healthRecords, copyHealthRecord(record))
	return nil
}

// ListHealthRecords returns a patient's records, newest first.
func (s *Store) ListHealthRecords(ctx context.Context, patientID string) ([]*model.HealthRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []*model.HealthRecord
	for i := len(s.healthRecords) - 1; i >= 0; i-- {
		r := s.healthRecords[i]
		if r.PatientID == patientID {
			records = append(records, copyHealthRecord(r))
		}
	}
	return records, nil
}
