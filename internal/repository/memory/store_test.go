package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/facility-api/internal/model"
	"github.com/jwalitptl/facility-api/internal/repository"
)

var fixedNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewSeeded(context.Background(), WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	require.NoError(t, s.CheckInvariants())
	return s
}

func addJane(t *testing.T, s *Store) *model.Patient {
	t.Helper()
	p := &model.Patient{ID: "pat-jane", FullName: "Jane Doe", Age: 30, Gender: "female", Phone: "555-0100"}
	require.NoError(t, s.AddPatient(context.Background(), p))
	return p
}

func TestAdmitAndDischarge(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	addJane(t, s)

	p, err := s.AssignRoom(ctx, "pat-jane", "room-102", "bed-102-1")
	require.NoError(t, err)
	assert.Equal(t, model.PatientStatusAdmitted, p.Status)
	assert.Equal(t, "room-102", p.RoomID)
	assert.Equal(t, "102", p.RoomNumber)
	assert.Equal(t, "Block A", p.BlockName)
	assert.Equal(t, "B1", p.BedNumber)
	assert.Equal(t, "2024-03-15", p.AdmissionDate)

	bed, err := s.GetBed(ctx, "bed-102-1")
	require.NoError(t, err)
	assert.True(t, bed.IsOccupied)
	assert.Equal(t, "pat-jane", bed.PatientID)
	assert.Equal(t, "Jane Doe", bed.PatientName)
	require.NoError(t, s.CheckInvariants())

	p, err = s.DischargePatient(ctx, "pat-jane")
	require.NoError(t, err)
	assert.Equal(t, model.PatientStatusDischarged, p.Status)
	assert.Equal(t, "2024-03-15", p.DischargeDate)
	assert.Empty(t, p.RoomID)
	assert.Empty(t, p.BedNumber)

	bed, err = s.GetBed(ctx, "bed-102-1")
	require.NoError(t, err)
	assert.False(t, bed.IsOccupied)
	assert.Empty(t, bed.PatientID)
	assert.Empty(t, bed.PatientName)
	require.NoError(t, s.CheckInvariants())
}

func TestAssignRoomRejectsOccupiedBed(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	addJane(t, s)

	// bed-101-1 is seeded with p1
	_, err := s.AssignRoom(ctx, "pat-jane", "room-101", "bed-101-1")
	assert.ErrorIs(t, err, repository.ErrBedOccupied)

	bed, err := s.GetBed(ctx, "bed-101-1")
	require.NoError(t, err)
	assert.Equal(t, "p1", bed.PatientID)

	p, err := s.GetPatient(ctx, "pat-jane")
	require.NoError(t, err)
	assert.False(t, p.HasPlacement())
	assert.Equal(t, model.PatientStatusOutpatient, p.Status)
	require.NoError(t, s.CheckInvariants())
}

func TestAssignRoomErrors(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	addJane(t, s)

	tests := []struct {
		name    string
		patient string
		room    string
		bed     string
		want    error
	}{
		{"missing patient", "nobody", "room-102", "bed-102-1", repository.ErrNotFound},
		{"missing room", "pat-jane", "room-999", "bed-102-1", repository.ErrNotFound},
		{"missing bed", "pat-jane", "room-102", "bed-999", repository.ErrNotFound},
		{"bed in other room", "pat-jane", "room-102", "bed-301-1", repository.ErrBedNotInRoom},
		{"patient already placed", "p1", "room-102", "bed-102-2", repository.ErrAlreadyPlaced},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.AssignRoom(ctx, tt.patient, tt.room, tt.bed)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	require.NoError(t, s.CheckInvariants())
}

func TestConcurrentAssignmentSingleWinner(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	const contenders = 20
	for i := 0; i < contenders; i++ {
		p := &model.Patient{ID: "race-" + string(rune('a'+i)), FullName: "Racer", Age: 40, Phone: "1"}
		require.NoError(t, s.AddPatient(ctx, p))
	}

	var wg sync.WaitGroup
	results := make(chan error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := s.AssignRoom(ctx, id, "room-202", "bed-202-1")
			results <- err
		}("race-" + string(rune('a'+i)))
	}
	wg.Wait()
	close(results)

	var won int
	for err := range results {
		if err == nil {
			won++
			continue
		}
		assert.ErrorIs(t, err, repository.ErrBedOccupied)
	}
	assert.Equal(t, 1, won)
	require.NoError(t, s.CheckInvariants())
}

func TestDischargeWithoutBed(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	p, err := s.DischargePatient(ctx, "p3")
	require.NoError(t, err)
	assert.Equal(t, model.PatientStatusDischarged, p.Status)

	_, err = s.DischargePatient(ctx, "nobody")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdateUserMerges(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	pending := &model.User{ID: "staff-1", Email: "new.doc@naturecure.com", Name: "New Doctor", Role: model.RoleDoctor, Specialization: "Neurology", IsActive: true}
	require.NoError(t, s.AddUser(ctx, pending))

	before, err := s.GetUser(ctx, "staff-1")
	require.NoError(t, err)

	_, err = s.UpdateUser(ctx, "staff-1", model.UpdateUserRequest{IsApproved: model.BoolPtr(true)})
	require.NoError(t, err)

	after, err := s.GetUser(ctx, "staff-1")
	require.NoError(t, err)
	assert.True(t, after.IsApproved)

	before.IsApproved = true
	assert.Equal(t, before, after)

	_, err = s.UpdateUser(ctx, "nobody", model.UpdateUserRequest{})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestReadsReturnCopies(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	p, err := s.GetPatient(ctx, "p1")
	require.NoError(t, err)
	p.FullName = "Changed"
	p.RoomID = ""

	again, err := s.GetPatient(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Alexander Bennett", again.FullName)
	assert.Equal(t, "room-101", again.RoomID)
}

func TestAddRejectsDuplicateID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	err := s.AddUser(ctx, &model.User{ID: DemoAdminID, Email: "x@y.z", Role: model.RoleAdmin})
	assert.ErrorIs(t, err, repository.ErrDuplicateID)

	err = s.AddPatient(ctx, &model.Patient{ID: "p1", FullName: "Dup"})
	assert.ErrorIs(t, err, repository.ErrDuplicateID)
}

func TestAddPatientIgnoresPlacement(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	p := &model.Patient{ID: "sneaky", FullName: "Sneaky", RoomID: "room-102", BedNumber: "B1", Status: model.PatientStatusAdmitted}
	require.NoError(t, s.AddPatient(ctx, p))
	assert.False(t, p.HasPlacement())
	assert.Equal(t, model.PatientStatusOutpatient, p.Status)
	require.NoError(t, s.CheckInvariants())
}

func TestAppointmentTransitions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, err := s.TransitionAppointment(ctx, "apt-seed-3", model.AppointmentStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusInProgress, a.Status)

	_, err = s.TransitionAppointment(ctx, "apt-seed-3", model.AppointmentStatusInProgress)
	assert.ErrorIs(t, err, repository.ErrInvalidTransition)

	_, err = s.TransitionAppointment(ctx, "apt-seed-3", model.AppointmentStatusCancelled)
	require.NoError(t, err)

	for _, to := range []model.AppointmentStatus{model.AppointmentStatusUpcoming, model.AppointmentStatusInProgress, model.AppointmentStatusCompleted} {
		_, err = s.TransitionAppointment(ctx, "apt-seed-3", to)
		assert.ErrorIs(t, err, repository.ErrInvalidTransition)
	}

	_, err = s.UpdateAppointment(ctx, "apt-seed-3", model.UpdateAppointmentRequest{Notes: model.StringPtr("late")})
	assert.ErrorIs(t, err, repository.ErrInvalidTransition)
}

func TestCompleteAppointmentAddsOneRecord(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	before, err := s.ListHealthRecords(ctx, "p1")
	require.NoError(t, err)

	record := &model.HealthRecord{ID: "hr-1", PhysiotherapistID: DemoPhysiotherapistID, PhysiotherapistName: "Emily Davidson", Notes: "Therapy session completed successfully"}
	a, err := s.CompleteAppointment(ctx, "apt-seed-1", record)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, a.Status)

	after, err := s.ListHealthRecords(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, after, len(before)+1)
	assert.Equal(t, "p1", after[0].PatientID)
	assert.Equal(t, "2024-03-15", after[0].Date)
	assert.Equal(t, "apt-seed-1", after[0].AppointmentID)

	_, err = s.CompleteAppointment(ctx, "apt-seed-1", &model.HealthRecord{ID: "hr-2"})
	assert.ErrorIs(t, err, repository.ErrInvalidTransition)

	again, err := s.ListHealthRecords(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, again, len(after))
}

func TestListAppointmentsSorted(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.AddAppointment(ctx, &model.Appointment{ID: "early", PatientID: "p4", Date: "2024-03-14", Time: "04:00 PM"}))

	list, err := s.ListAppointments(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, list)
	assert.Equal(t, "early", list[0].ID)
	for i := 1; i < len(list); i++ {
		assert.False(t, list[i].Less(list[i-1]), "appointments out of order at %d", i)
	}
}

func TestAvailableBeds(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, _, beds := Facility()
	free, err := s.AvailableBeds(ctx)
	require.NoError(t, err)
	assert.Len(t, free, len(beds)-2)
	for _, f := range free {
		assert.False(t, f.Bed.IsOccupied)
		assert.Equal(t, f.Room.ID, f.Bed.RoomID)
	}
}

func TestUpdatePatientKeepsBedNameInStep(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.UpdatePatient(ctx, "p1", model.UpdatePatientRequest{FullName: model.StringPtr("Alex Bennett")})
	require.NoError(t, err)

	bed, err := s.GetBed(ctx, "bed-101-1")
	require.NoError(t, err)
	assert.Equal(t, "Alex Bennett", bed.PatientName)
}

func TestHealthRecordRequiresPatient(t *testing.T) {
	err := newTestStore(t).AddHealthRecord(context.Background(), &model.HealthRecord{ID: "hr-x", PatientID: "nobody"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdateBedRejectsNumberTakenInRoom(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.UpdateBed(ctx, "bed-101-2", model.UpdateBedRequest{BedNumber: model.StringPtr("B1")})
	assert.ErrorIs(t, err, repository.ErrDuplicateID)

	bed, err := s.GetBed(ctx, "bed-101-2")
	require.NoError(t, err)
	assert.Equal(t, "B2", bed.BedNumber)

	_, err = s.UpdateBed(ctx, "bed-102-1", model.UpdateBedRequest{BedNumber: model.StringPtr("B2")})
	assert.ErrorIs(t, err, repository.ErrDuplicateID)

	renamed, err := s.UpdateBed(ctx, "bed-101-2", model.UpdateBedRequest{BedNumber: model.StringPtr("B9")})
	require.NoError(t, err)
	assert.Equal(t, "B9", renamed.BedNumber)

	_, err = s.UpdateBed(ctx, "bed-101-2", model.UpdateBedRequest{BedNumber: model.StringPtr("B9")})
	require.NoError(t, err)
	require.NoError(t, s.CheckInvariants())
}
