package memory

import (
	"context"
	"fmt"

	"github.com/jwalitptl/facility-api/internal/model"
	"github.com/jwalitptl/facility-api/internal/repository"
)

func (s *Store) ListBlocks(ctx context.Context) ([]*model.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blocks := make([]*model.Block, 0, len(s.blocks))
	for _, b := range s.blocks {
		c := *b
		blocks = append(blocks, &c)
	}
	return blocks, nil
}

// ListRooms returns the rooms of blockID, or every room when it is empty.
func (s *Store) ListRooms(ctx context.Context, blockID string) ([]*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms := make([]*model.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		if blockID != "" && r.BlockID != blockID {
			continue
		}
		rooms = append(rooms, copyRoom(r))
	}
	return rooms, nil
}

func (s *Store) GetRoom(ctx context.Context, id string) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r := find(s.rooms, id, roomKey)
	if r == nil {
		return nil, fmt.Errorf("room %s: %w", id, repository.ErrNotFound)
	}
	return copyRoom(r), nil
}

// ListBeds returns the beds of roomID, or every bed when it is empty.
func (s *Store) ListBeds(ctx context.Context, roomID string) ([]*model.Bed, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	beds := make([]*model.Bed, 0, len(s.beds))
	for _, b := range s.beds {
		if roomID != "" && b.RoomID != roomID {
			continue
		}
		beds = append(beds, copyBed(b))
	}
	return beds, nil
}

func (s *Store) GetBed(ctx context.Context, id string) (*model.Bed, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b := find(s.beds, id, bedKey)
	if b == nil {
		return nil, fmt.Errorf("bed %s: %w", id, repository.ErrNotFound)
	}
	return copyBed(b), nil
}

func (s *Store) UpdateBed(ctx context.Context, id string, req model.UpdateBedRequest) (*model.Bed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := find(s.beds, id, bedKey)
	if b == nil {
		return nil, fmt.Errorf("bed %s: %w", id, repository.ErrNotFound)
	}
	if req.BedNumber != nil {
		for _, other := range s.beds {
			if other.ID != b.ID && other.RoomID == b.RoomID && other.BedNumber == *req.BedNumber {
				return nil, fmt.Errorf("bed number %s in room %s: %w", *req.BedNumber, b.RoomID, repository.ErrDuplicateID)
			}
		}
	}
	req.Apply(b)

	if b.IsOccupied {
		if p := find(s.patients, b.PatientID, patientKey); p != nil {
			p.BedNumber = b.BedNumber
		}
	}
	return copyBed(b), nil
}

// AvailableBeds lists unoccupied beds in active rooms.
func (s *Store) AvailableBeds(ctx context.Context) ([]*model.BedAvailability, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var free []*model.BedAvailability
	for _, b := range s.beds {
		if b.IsOccupied {
			continue
		}
		r := find(s.rooms, b.RoomID, roomKey)
		if r == nil || !r.IsActive {
			continue
		}
		free = append(free, &model.BedAvailability{Bed: *b, Room: *r})
	}
	return free, nil
}

// AssignRoom places a patient in a free bed. The occupancy check and both
// writes happen under the same lock, so a bed is never handed out twice.
func (s *Store) AssignRoom(ctx context.Context, patientID, roomID, bedID string) (*model.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := find(s.patients, patientID, patientKey)
	if p == nil {
		return nil, fmt.Errorf("patient %s: %w", patientID, repository.ErrNotFound)
	}
	r := find(s.rooms, roomID, roomKey)
	if r == nil {
		return nil, fmt.Errorf("room %s: %w", roomID, repository.ErrNotFound)
	}
	b := find(s.beds, bedID, bedKey)
	if b == nil {
		return nil, fmt.Errorf("bed %s: %w", bedID, repository.ErrNotFound)
	}
	if b.RoomID != r.ID {
		return nil, fmt.Errorf("bed %s in room %s: %w", bedID, roomID, repository.ErrBedNotInRoom)
	}
	if !r.IsActive {
		return nil, fmt.Errorf("room %s: %w", roomID, repository.ErrRoomInactive)
	}
	if b.IsOccupied {
		return nil, fmt.Errorf("bed %s held by %s: %w", bedID, b.PatientID, repository.ErrBedOccupied)
	}
	if p.HasPlacement() {
		return nil, fmt.Errorf("patient %s in room %s: %w", patientID, p.RoomNumber, repository.ErrAlreadyPlaced)
	}

	b.IsOccupied = true
	b.PatientID = p.ID
	b.PatientName = p.FullName

	p.RoomID = r.ID
	p.RoomNumber = r.RoomNumber
	p.BlockName = r.BlockName
	p.BedNumber = b.BedNumber
	p.Status = model.PatientStatusAdmitted
	p.AdmissionDate = s.today()
	p.DischargeDate = ""

	return copyPatient(p), nil
}

// DischargePatient frees the patient's bed, if any, and marks them discharged.
func (s *Store) DischargePatient(ctx context.Context, patientID string) (*model.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := find(s.patients, patientID, patientKey)
	if p == nil {
		return nil, fmt.Errorf("patient %s: %w", patientID, repository.ErrNotFound)
	}

	for _, b := range s.beds {
		if b.IsOccupied && b.PatientID == p.ID {
			b.Release()
		}
	}

	p.Status = model.PatientStatusDischarged
	p.DischargeDate = s.today()
	p.ClearPlacement()

	return copyPatient(p), nil
}
