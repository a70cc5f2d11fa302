package facility

import (
	"context"
	"fmt"
	"strings"

	"github.com/jwalitptl/facility-api/internal/model"
	"github.com/jwalitptl/facility-api/internal/repository"
	"github.com/jwalitptl/facility-api/internal/service/access"
	apperrors "github.com/jwalitptl/facility-api/pkg/errors"
	"github.com/jwalitptl/facility-api/pkg/logger"
)

type FacilityService interface {
	Blocks(ctx context.Context) ([]*model.Block, error)
	Rooms(ctx context.Context, blockID string) ([]*model.Room, error)
	Room(ctx context.Context, id string) (*model.Room, error)
	Beds(ctx context.Context, roomID string) ([]*model.Bed, error)
	AvailableBeds(ctx context.Context) ([]*model.BedAvailability, error)
	UpdateBed(ctx context.Context, actor *model.User, id string, req model.UpdateBedRequest) (*model.Bed, error)
}

type Service struct {
	repo repository.FacilityRepository
	log  *logger.Logger
}

var _ FacilityService = (*Service)(nil)

func NewService(repo repository.FacilityRepository, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{repo: repo, log: log}
}

func (s *Service) Blocks(ctx context.Context) ([]*model.Block, error) {
	return s.repo.ListBlocks(ctx)
}

// Rooms lists rooms, optionally narrowed to one block.
func (s *Service) Rooms(ctx context.Context, blockID string) ([]*model.Room, error) {
	return s.repo.ListRooms(ctx, blockID)
}

func (s *Service) Room(ctx context.Context, id string) (*model.Room, error) {
	return s.repo.GetRoom(ctx, id)
}

// Beds lists beds, optionally narrowed to one room. An unknown room is
// reported as not found rather than an empty list.
func (s *Service) Beds(ctx context.Context, roomID string) ([]*model.Bed, error) {
	if roomID != "" {
		if _, err := s.repo.GetRoom(ctx, roomID); err != nil {
			return nil, err
		}
	}
	return s.repo.ListBeds(ctx, roomID)
}

func (s *Service) AvailableBeds(ctx context.Context) ([]*model.BedAvailability, error) {
	return s.repo.AvailableBeds(ctx)
}

// UpdateBed edits bed metadata. Occupancy is never touched here.
func (s *Service) UpdateBed(ctx context.Context, actor *model.User, id string, req model.UpdateBedRequest) (*model.Bed, error) {
	if err := access.Require(actor, access.AssignRoom); err != nil {
		return nil, err
	}
	if req.BedNumber != nil && strings.TrimSpace(*req.BedNumber) == "" {
		return nil, apperrors.BadRequest("bed number cannot be empty", nil)
	}
	bed, err := s.repo.UpdateBed(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update bed: %w", err)
	}
	s.log.Info("bed updated", "bed_id", id, "updated_by", actor.ID)
	return bed, nil
}
