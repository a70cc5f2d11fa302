// Package record records health checks and lists a patient's clinical notes.
package record

import (
	"context"
	"fmt"

	"github.com/jwalitptl/facility-api/internal/model"
	"github.com/jwalitptl/facility-api/internal/repository"
	"github.com/jwalitptl/facility-api/internal/service/access"
	"github.com/jwalitptl/facility-api/internal/service/notification"
	"github.com/jwalitptl/facility-api/pkg/idgen"
	"github.com/jwalitptl/facility-api/pkg/logger"
)

type RecordService interface {
	RecordHealthCheck(ctx context.Context, actor *model.User, patientID string, req model.HealthCheckRequest) (*model.HealthRecord, error)
	ListForPatient(ctx context.Context, actor *model.User, patientID string) ([]*model.HealthRecord, error)
}

type Service struct {
	records  repository.HealthRecordRepository
	patients repository.PatientRepository
	notifier notification.Notifier
	log      *logger.Logger
	ids      *idgen.Generator
}

var _ RecordService = (*Service)(nil)

func NewService(store repository.Store, notifier notification.Notifier, log *logger.Logger, ids *idgen.Generator) *Service {
	if log == nil {
		log = logger.Nop()
	}
	if ids == nil {
		ids = idgen.NewGenerator(nil)
	}
	return &Service{
		records:  store,
		patients: store,
		notifier: notifier,
		log:      log,
		ids:      ids,
	}
}

// RecordHealthCheck appends a health record and makes its vitals the
// patient's current snapshot.
func (s *Service) RecordHealthCheck(ctx context.Context, actor *model.User, patientID string, req model.HealthCheckRequest) (*model.HealthRecord, error) {
	if err := access.Require(actor, access.RecordHealthCheck); err != nil {
		return nil, err
	}
	p, err := s.visiblePatient(ctx, actor, patientID)
	if err != nil {
		return nil, err
	}

	now := s.ids.Now()
	vitals := req.Vitals
	record := &model.HealthRecord{
		ID:           s.ids.Next("hr-"),
		PatientID:    p.ID,
		Date:         now.Format(model.DateLayout),
		Vitals:       &vitals,
		Diagnosis:    req.Diagnosis,
		Prescription: req.Prescription,
		Notes:        req.Notes,
		CreatedAt:    now,
	}
	record.StampClinician(actor)

	if err := s.records.AddHealthRecord(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to add health record: %w", err)
	}
	if _, err := s.patients.UpdatePatient(ctx, p.ID, model.UpdatePatientRequest{Vitals: &vitals}); err != nil {
		return nil, fmt.Errorf("failed to update patient vitals: %w", err)
	}
	s.log.Info("health check recorded", "record_id", record.ID, "patient_id", p.ID, "recorded_by", actor.ID)

	if s.notifier != nil {
		if _, err := s.notifier.Add(ctx, model.NewNotification{
			Title:   "Health Check Recorded",
			Message: fmt.Sprintf("Health record added for %s by %s", p.FullName, actor.DisplayName()),
			Type:    model.NotificationSuccess,
			Role:    model.RoleAll,
			Link:    "/patients/" + p.ID,
		}); err != nil {
			s.log.Warn(err, "failed to add notification", "record_id", record.ID)
		}
	}
	return record, nil
}

// ListForPatient returns the patient's records, newest first.
func (s *Service) ListForPatient(ctx context.Context, actor *model.User, patientID string) ([]*model.HealthRecord, error) {
	p, err := s.visiblePatient(ctx, actor, patientID)
	if err != nil {
		return nil, err
	}
	return s.records.ListHealthRecords(ctx, p.ID)
}

func (s *Service) visiblePatient(ctx context.Context, actor *model.User, id string) (*model.Patient, error) {
	p, err := s.patients.GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor == nil || !access.CanViewPatient(actor, p) {
		return nil, fmt.Errorf("patient %s: %w", id, access.ErrForbidden)
	}
	return p, nil
}
