package repository

import (
	"context"
	"errors"

	"github.com/jwalitptl/facility-api/internal/model"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateID       = errors.New("duplicate id")
	ErrBedOccupied       = errors.New("bed is already occupied")
	ErrBedNotInRoom      = errors.New("bed does not belong to room")
	ErrAlreadyPlaced     = errors.New("patient already holds a bed")
	ErrRoomInactive      = errors.New("room is not active")
	ErrInvalidTransition = errors.New("invalid appointment status transition")
)

// All repository interfaces in one file
type (
	UserRepository interface {
		AddUser(ctx context.Context, user *model.User) error
		GetUser(ctx context.Context, id string) (*model.User, error)
		FindUserByEmail(ctx context.Context, email string) (*model.User, error)
		UpdateUser(ctx context.Context, id string, req model.UpdateUserRequest) (*model.User, error)
		ApproveUser(ctx context.Context, id string) (*model.User, error)
		ListUsers(ctx context.Context, role model.Role) ([]*model.User, error)
	}

	PatientRepository interface {
		AddPatient(ctx context.Context, patient *model.Patient) error
		GetPatient(ctx context.Context, id string) (*model.Patient, error)
		UpdatePatient(ctx context.Context, id string, req model.UpdatePatientRequest) (*model.Patient, error)
		ListPatients(ctx context.Context, filter model.PatientFilter) ([]*model.Patient, error)
	}

	AppointmentRepository interface {
		AddAppointment(ctx context.Context, appointment *model.Appointment) error
		GetAppointment(ctx context.Context, id string) (*model.Appointment, error)
		UpdateAppointment(ctx context.Context, id string, req model.UpdateAppointmentRequest) (*model.Appointment, error)
		TransitionAppointment(ctx context.Context, id string, to model.AppointmentStatus) (*model.Appointment, error)
		// CompleteAppointment marks the appointment completed and appends
		// record in the same mutation.
		CompleteAppointment(ctx context.Context, id string, record *model.HealthRecord) (*model.Appointment, error)
		ListAppointments(ctx context.Context) ([]*model.Appointment, error)
	}

	FacilityRepository interface {
		ListBlocks(ctx context.Context) ([]*model.Block, error)
		ListRooms(ctx context.Context, blockID string) ([]*model.Room, error)
		GetRoom(ctx context.Context, id string) (*model.Room, error)
		ListBeds(ctx context.Context, roomID string) ([]*model.Bed, error)
		GetBed(ctx context.Context, id string) (*model.Bed, error)
		UpdateBed(ctx context.Context, id string, req model.UpdateBedRequest) (*model.Bed, error)
		AvailableBeds(ctx context.Context) ([]*model.BedAvailability, error)
		AssignRoom(ctx context.Context, patientID, roomID, bedID string) (*model.Patient, error)
		DischargePatient(ctx context.Context, patientID string) (*model.Patient, error)
	}

	HealthRecordRepository interface {
		AddHealthRecord(ctx context.Context, record *model.HealthRecord) error
		ListHealthRecords(ctx context.Context, patientID string) ([]*model.HealthRecord, error)
	}

	// Store is the full domain state store.
	Store interface {
		UserRepository
		PatientRepository
		AppointmentRepository
		FacilityRepository
		HealthRecordRepository
	}
)
