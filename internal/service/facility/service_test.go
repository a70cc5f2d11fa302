package facility

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/facility-api/internal/model"
	"github.com/jwalitptl/facility-api/internal/repository"
	"github.com/jwalitptl/facility-api/internal/repository/memory"
	"github.com/jwalitptl/facility-api/internal/service/access"
)

func setup(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store, err := memory.NewSeeded(context.Background())
	require.NoError(t, err)
	return NewService(store, nil), store
}

func TestListings(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	blocks, err := svc.Blocks(ctx)
	require.NoError(t, err)
	assert.Len(t, blocks, 2)

	rooms, err := svc.Rooms(ctx, "block-b")
	require.NoError(t, err)
	assert.Len(t, rooms, 2)

	beds, err := svc.Beds(ctx, "room-302")
	require.NoError(t, err)
	assert.Len(t, beds, 3)

	_, err = svc.Beds(ctx, "room-999")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	free, err := svc.AvailableBeds(ctx)
	require.NoError(t, err)
	assert.Len(t, free, 13)
	for _, f := range free {
		assert.False(t, f.Bed.IsOccupied)
		assert.Equal(t, f.Room.ID, f.Bed.RoomID)
	}
}

func TestUpdateBed(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()
	supervisor, err := store.GetUser(ctx, memory.DemoSupervisorID)
	require.NoError(t, err)

	bed, err := svc.UpdateBed(ctx, supervisor, "bed-101-1", model.UpdateBedRequest{BedNumber: model.StringPtr("W1")})
	require.NoError(t, err)
	assert.Equal(t, "W1", bed.BedNumber)
	assert.True(t, bed.IsOccupied)

	p, err := store.GetPatient(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "W1", p.BedNumber)

	_, err = svc.UpdateBed(ctx, supervisor, "bed-101-1", model.UpdateBedRequest{BedNumber: model.StringPtr(" ")})
	assert.Error(t, err)

	_, err = svc.UpdateBed(ctx, supervisor, "bed-none", model.UpdateBedRequest{BedNumber: model.StringPtr("X")})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	physio, err := store.GetUser(ctx, memory.DemoPhysiotherapistID)
	require.NoError(t, err)
	_, err = svc.UpdateBed(ctx, physio, "bed-101-2", model.UpdateBedRequest{BedNumber: model.StringPtr("X")})
	assert.ErrorIs(t, err, access.ErrForbidden)
}
