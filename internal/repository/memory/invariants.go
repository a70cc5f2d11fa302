package memory

import (
	"errors"
	"fmt"
)

var ErrInvariant = errors.New("store invariant violated")

// CheckInvariants verifies bed occupancy against patient placement. It
// returns nil when every placed patient holds exactly one occupied bed and
// every occupied bed points back at a placed patient in the same room.
func (s *Store) CheckInvariants() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var violations []error
	held := make(map[string]int)
	for _, b := range s.beds {
		if b.IsOccupied != (b.PatientID != "") {
			violations = append(violations, fmt.Errorf("bed %s: occupied=%t patient=%q", b.ID, b.IsOccupied, b.PatientID))
			continue
		}
		if !b.IsOccupied {
			continue
		}
		held[b.PatientID]++
		p := find(s.patients, b.PatientID, patientKey)
		if p == nil {
			violations = append(violations, fmt.Errorf("bed %s: unknown patient %s", b.ID, b.PatientID))
			continue
		}
		if p.RoomID != b.RoomID || p.BedNumber != b.BedNumber {
			violations = append(violations, fmt.Errorf("bed %s: patient %s placed in room %q bed %q", b.ID, p.ID, p.RoomID, p.BedNumber))
		}
	}

	for _, p := range s.patients {
		n := held[p.ID]
		switch {
		case p.RoomID != "" && n != 1:
			violations = append(violations, fmt.Errorf("patient %s: placed in room %s but holds %d beds", p.ID, p.RoomID, n))
		case p.RoomID == "" && n != 0:
			violations = append(violations, fmt.Errorf("patient %s: not placed but holds %d beds", p.ID, n))
		}
	}

	if len(violations) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvariant, errors.Join(violations...))
}
