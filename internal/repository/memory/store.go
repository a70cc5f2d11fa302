package memory

import (
	"sync"
	"time"

	"github.com/jwalitptl/facility-api/internal/model"
	"github.com/jwalitptl/facility-api/internal/repository"
)

// Store holds every domain collection in memory. A single lock covers all of
// them so mutations that touch several entities (room assignment, discharge,
// appointment completion) apply as one unit.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	users         []*model.User
	patients      []*model.Patient
	appointments  []*model.Appointment
	blocks        []*model.Block
	rooms         []*model.Room
	beds          []*model.Bed
	healthRecords []*model.HealthRecord
}

var _ repository.Store = (*Store)(nil)

type Option func(*Store)

// WithClock overrides the time source used to stamp dates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithFacility loads the fixed blocks, rooms and beds.
func WithFacility(blocks []model.Block, rooms []model.Room, beds []model.Bed) Option {
	return func(s *Store) {
		for i := range blocks {
			b := blocks[i]
			s.blocks = append(s.blocks, &b)
		}
		for i := range rooms {
			r := rooms[i]
			s.rooms = append(s.rooms, &r)
		}
		for i := range beds {
			b := beds[i]
			s.beds = append(s.beds, &b)
		}
	}
}

func New(opts ...Option) *Store {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) today() string {
	return model.FormatDate(s.now())
}

func find[T any](items []*T, id string, key func(*T) string) *T {
	for _, item := range items {
		if key(item) == id {
			return item
		}
	}
	return nil
}

func userKey(u *model.User) string { return u.ID }
func patientKey(p *model.Patient) string { return p.ID }
func appointmentKey(a *model.Appointment) string { return a.ID }
func roomKey(r *model.Room) string { return r.ID }
func bedKey(b *model.Bed) string { return b.ID }
func recordKey(r *model.HealthRecord) string { return r.ID }

func copyUser(u *model.User) *model.User {
	c := *u
	return &c
}

func copyPatient(p *model.Patient) *model.Patient {
	c := *p
	if p.Vitals != nil {
		v := *p.Vitals
		c.Vitals = &v
	}
	return &c
}

func copyAppointment(a *model.Appointment) *model.Appointment {
	c := *a
	return &c
}

func copyRoom(r *model.Room) *model.Room {
	c := *r
	return &c
}

func copyBed(b *model.Bed) *model.Bed {
	c := *b
	return &c
}

func copyHealthRecord(r *model.HealthRecord) *model.HealthRecord {
	c := *r
	if r.Vitals != nil {
		v := *r.Vitals
		c.Vitals = &v
	}
	return &c
}
