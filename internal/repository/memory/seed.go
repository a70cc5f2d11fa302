package memory

import (
	"context"
	"fmt"

	"github.com/jwalitptl/facility-api/internal/model"
)

// Demo account ids shared with the local credential tables.
const (
	DemoAdminID           = "1"
	DemoDoctorID          = "2"
	DemoSupervisorID      = "3"
	DemoPhysiotherapistID = "4"
)

// Facility returns the fixed blocks, rooms and beds of the demo facility.
func Facility() ([]model.Block, []model.Room, []model.Bed) {
	blocks := []model.Block{
		{ID: "block-a", Name: "Block A", Floors: 3, Description: "General wards and private rooms"},
		{ID: "block-b", Name: "Block B", Floors: 2, Description: "Intensive care and emergency"},
	}

	type layout struct {
		id, number string
		block      model.Block
		floor      int
		kind       model.RoomType
		beds       int
	}
	layouts := []layout{
		{"room-101", "101", blocks[0], 1, model.RoomTypeGeneral, 4},
		{"room-102", "102", blocks[0], 1, model.RoomTypeGeneral, 4},
		{"room-201", "201", blocks[0], 2, model.RoomTypePrivate, 1},
		{"room-202", "202", blocks[0], 2, model.RoomTypePrivate, 1},
		{"room-301", "301", blocks[1], 1, model.RoomTypeICU, 2},
		{"room-302", "302", blocks[1], 1, model.RoomTypeEmergency, 3},
	}

	var rooms []model.Room
	var beds []model.Bed
	for _, l := range layouts {
		rooms = append(rooms, model.Room{
			ID:         l.id,
			RoomNumber: l.number,
			BlockID:    l.block.ID,
			BlockName:  l.block.Name,
			Floor:      l.floor,
			RoomType:   l.kind,
			IsActive:   true,
		})
		for i := 1; i <= l.beds; i++ {
			beds = append(beds, model.Bed{
				ID:        fmt.Sprintf("bed-%s-%d", l.number, i),
				RoomID:    l.id,
				BedNumber: fmt.Sprintf("B%d", i),
			})
		}
	}
	return blocks, rooms, beds
}

// DemoStaff are the built-in staff users.
func DemoStaff() []model.User {
	return []model.User{
		{ID: DemoAdminID, Email: "admin@naturecure.com", Name: "Admin User", Role: model.RoleAdmin, IsActive: true, IsApproved: true},
		{ID: DemoDoctorID, Email: "doctor@naturecure.com", Name: "Dr. Olivia Turner", Role: model.RoleDoctor, Specialization: "Cardiologist", IsActive: true, IsApproved: true},
		{ID: DemoSupervisorID, Email: "supervisor@naturecure.com", Name: "Sarah Mitchell", Role: model.RoleSupervisor, IsActive: true, IsApproved: true},
		{ID: DemoPhysiotherapistID, Email: "physio@naturecure.com", Name: "Emily Davidson", Role: model.RolePhysiotherapist, Specialization: "Sports Therapy", IsActive: true, IsApproved: true},
	}
}

// DemoPatients are the patients behind the seeded patient accounts.
func DemoPatients() []model.Patient {
	return []model.Patient{
		{ID: "p1", FullName: "Alexander Bennett", Email: "alex.bennett@email.com", Phone: "+1 555 0101", Age: 45, Gender: "male", BloodType: "A+", Diagnosis: "Lower back pain", AssignedDoctorID: DemoDoctorID, AssignedDoctorName: "Dr. Olivia Turner", AssignedPhysiotherapistID: DemoPhysiotherapistID, AssignedPhysiotherapistName: "Emily Davidson"},
		{ID: "p2", FullName: "Michael Davidson", Email: "michael.d@email.com", Phone: "+1 555 0102", Age: 62, Gender: "male", BloodType: "O+", Diagnosis: "Post-operative knee rehabilitation", AssignedDoctorID: DemoDoctorID, AssignedDoctorName: "Dr. Olivia Turner", AssignedPhysiotherapistID: DemoPhysiotherapistID, AssignedPhysiotherapistName: "Emily Davidson"},
		{ID: "p3", FullName: "Olivia Martinez", Email: "olivia.m@email.com", Phone: "+1 555 0103", Age: 34, Gender: "female", BloodType: "B+", Diagnosis: "Hypertension"},
		{ID: "p4", FullName: "James Wilson", Email: "james.w@email.com", Phone: "+1 555 0104", Age: 51, Gender: "male", BloodType: "AB-", Diagnosis: "Shoulder impingement", AssignedPhysiotherapistID: DemoPhysiotherapistID, AssignedPhysiotherapistName: "Emily Davidson"},
		{ID: "p5", FullName: "Sarah Johnson", Email: "sarah.j@email.com", Phone: "+1 555 0105", Age: 28, Gender: "female", BloodType: "O-", Diagnosis: "Migraine", AssignedDoctorID: DemoDoctorID, AssignedDoctorName: "Dr. Olivia Turner"},
	}
}

// DemoPatientUsers are the sign-in users behind DemoPatients. They share
// the patient ids.
func DemoPatientUsers() []model.User {
	patients := DemoPatients()
	users := make([]model.User, 0, len(patients))
	for _, p := range patients {
		users = append(users, model.User{ID: p.ID, Email: p.Email, Name: p.FullName, Role: model.RolePatient, Phone: p.Phone, IsActive: true, IsApproved: true})
	}
	return users
}

// Seed loads the demo users, patients, placements and appointments into s.
// The facility must already be loaded with WithFacility.
func Seed(ctx context.Context, s *Store) error {
	for _, u := range DemoStaff() {
		u := u
		if err := s.AddUser(ctx, &u); err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
	}

	for _, p := range DemoPatients() {
		p := p
		if err := s.AddPatient(ctx, &p); err != nil {
			return fmt.Errorf("failed to seed patient: %w", err)
		}
	}
	for _, u := range DemoPatientUsers() {
		u := u
		if err := s.AddUser(ctx, &u); err != nil {
			return fmt.Errorf("failed to seed patient user: %w", err)
		}
	}

	placements := []struct{ patient, room, bed string }{
		{"p1", "room-101", "bed-101-1"},
		{"p2", "room-201", "bed-201-1"},
	}
	for _, pl := range placements {
		if _, err := s.AssignRoom(ctx, pl.patient, pl.room, pl.bed); err != nil {
			return fmt.Errorf("failed to seed placement: %w", err)
		}
	}

	today := s.today()
	appointments := []model.Appointment{
		{ID: "apt-seed-1", PatientID: "p1", PatientName: "Alexander Bennett", PatientAge: 45, PatientGender: "male", PhysiotherapistID: DemoPhysiotherapistID, PhysiotherapistName: "Emily Davidson", Date: today, Time: "09:00 AM", Duration: 45, Type: model.AppointmentTypeTherapy},
		{ID: "apt-seed-2", PatientID: "p2", PatientName: "Michael Davidson", PatientAge: 62, PatientGender: "male", PhysiotherapistID: DemoPhysiotherapistID, PhysiotherapistName: "Emily Davidson", Date: today, Time: "11:00 AM", Duration: 45, Type: model.AppointmentTypeTherapy},
		{ID: "apt-seed-3", PatientID: "p3", PatientName: "Olivia Martinez", PatientAge: 34, PatientGender: "female", DoctorID: DemoDoctorID, DoctorName: "Dr. Olivia Turner", Date: today, Time: "10:00 AM", Duration: 30, Type: model.AppointmentTypeConsultation},
		{ID: "apt-seed-4", PatientID: "p5", PatientName: "Sarah Johnson", PatientAge: 28, PatientGender: "female", DoctorID: DemoDoctorID, DoctorName: "Dr. Olivia Turner", Date: today, Time: "02:00 PM", Duration: 30, Type: model.AppointmentTypeFollowUp},
	}
	for _, a := range appointments {
		a := a
		if err := s.AddAppointment(ctx, &a); err != nil {
			return fmt.Errorf("failed to seed appointment: %w", err)
		}
	}
	return nil
}

// NewSeeded returns a store holding the demo facility and data.
func NewSeeded(ctx context.Context, opts ...Option) (*Store, error) {
	blocks, rooms, beds := Facility()
	s := New(append([]Option{WithFacility(blocks, rooms, beds)}, opts...)...)
	if err := Seed(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}
