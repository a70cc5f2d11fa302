package model

// Block is a top-level facility zone. Blocks are fixed once seeded.
type Block struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Floors      int    `json:"floors"`
	Description string `json:"description,omitempty"`
}

type RoomType string

const (
	RoomTypeGeneral   RoomType = "general"
	RoomTypePrivate   RoomType = "private"
	RoomTypeICU       RoomType = "icu"
	RoomTypeEmergency RoomType = "emergency"
)

type Room struct {
	ID         string   `json:"id"`
	RoomNumber string   `json:"room_number"`
	BlockID    string   `json:"block_id"`
	BlockName  string   `json:"block_name"`
	Floor      int      `json:"floor"`
	RoomType   RoomType `json:"room_type"`
	IsActive   bool     `json:"is_active"`
}

// Bed is the smallest allocatable unit. IsOccupied holds iff PatientID is set.
type Bed struct {
	ID          string `json:"id"`
	RoomID      string `json:"room_id"`
	BedNumber   string `json:"bed_number"`
	IsOccupied  bool   `json:"is_occupied"`
	PatientID   string `json:"patient_id,omitempty"`
	PatientName string `json:"patient_name,omitempty"`
}

// Release clears occupancy and the denormalized patient copy.
func (b *Bed) Release() {
	b.IsOccupied = false
	b.PatientID = ""
	b.PatientName = ""
}

// UpdateBedRequest edits bed metadata. Occupancy changes only through
// room assignment and discharge.
type UpdateBedRequest struct {
	BedNumber *string `json:"bed_number"`
}

// Apply merges the non-nil fields of req into b.
func (req *UpdateBedRequest) Apply(b *Bed) {
	setString(&b.BedNumber, req.BedNumber)
}

// BedAvailability groups a free bed with its room for listing.
type BedAvailability struct {
	Bed  Bed  `json:"bed"`
	Room Room `json:"room"`
}
