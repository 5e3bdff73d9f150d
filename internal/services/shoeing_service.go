package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"farrier-backend/internal/cache"
	"farrier-backend/internal/models"
	"farrier-backend/internal/repositories"
	"farrier-backend/pkg/money"
)

type ShoeingService struct {
	shoeings *repositories.ShoeingRepository
	horses   *repositories.HorseRepository
}

func NewShoeingService(shoeings *repositories.ShoeingRepository, horses *repositories.HorseRepository) *ShoeingService {
	return &ShoeingService{shoeings: shoeings, horses: horses}
}

// Create submits a new pending record. A known horse is referenced by id;
// a brand-new horse is created alongside the record with pending status and
// the record flagged for review.
func (s *ShoeingService) Create(ctx context.Context, userID int, req *models.CreateShoeingRequest) (*models.Shoeing, error) {
	if req.DateOfService == "" {
		return nil, fmt.Errorf("date of service is required")
	}
	date, err := time.Parse("2006-01-02", req.DateOfService)
	if err != nil {
		return nil, fmt.Errorf("invalid date of service: %s", req.DateOfService)
	}

	sh := &models.Shoeing{
		UserID:          &userID,
		DateOfService:   &date,
		Location:        req.Location,
		BaseService:     req.BaseService,
		FrontAddOns:     req.FrontAddOns,
		HindAddOns:      req.HindAddOns,
		BaseServiceCost: normalizeCost(req.BaseServiceCost),
		FrontAddOnsCost: normalizeCost(req.FrontAddOnsCost),
		HindAddOnsCost:  normalizeCost(req.HindAddOnsCost),
		TotalCost:       normalizeCost(req.TotalCost),
		Description:     req.Description,
		ShoeNotes:       req.ShoeNotes,
		Status:          models.ShoeingStatusPending,
		IsNewHorse:      req.IsNewHorse,
	}

	switch {
	case req.HorseID != nil:
		horse, err := s.horses.Get(ctx, *req.HorseID)
		if err != nil {
			return nil, fmt.Errorf("horse not found")
		}
		sh.HorseID = req.HorseID
		sh.HorseIdentifier = horse.Identifier()
	case req.IsNewHorse && req.HorseIdentifier != "":
		horse := horseFromIdentifier(req.HorseIdentifier)
		if err := s.horses.Create(ctx, horse); err != nil {
			return nil, fmt.Errorf("failed to create horse: %w", err)
		}
		sh.HorseID = &horse.ID
		sh.HorseIdentifier = horse.Identifier()
	case req.HorseIdentifier != "":
		sh.HorseIdentifier = req.HorseIdentifier
	default:
		return nil, fmt.Errorf("a horse is required")
	}

	if err := s.shoeings.Create(ctx, sh); err != nil {
		return nil, fmt.Errorf("failed to save record: %w", err)
	}

	cache.InvalidateShoeingCaches(ctx)
	return sh, nil
}

// normalizeCost strips currency formatting; free-form values that do not
// parse are kept verbatim so no submitted data is silently lost.
func normalizeCost(cost string) string {
	if cost == "" {
		return ""
	}
	if normalized, err := money.Normalize(cost); err == nil {
		return normalized
	}
	return cost
}

// horseFromIdentifier splits the legacy "Name - [Barn]" composite into a new
// pending horse. Anything that does not match the composite becomes the name.
func horseFromIdentifier(identifier string) *models.Horse {
	horse := &models.Horse{
		Name:   strings.TrimSpace(identifier),
		Status: models.HorseStatusPending,
	}
	if idx := strings.Index(identifier, " - ["); idx > 0 && strings.HasSuffix(identifier, "]") {
		horse.Name = strings.TrimSpace(identifier[:idx])
		horse.BarnTrainer = identifier[idx+4 : len(identifier)-1]
	}
	return horse
}

func (s *ShoeingService) Get(ctx context.Context, id int) (*models.Shoeing, error) {
	return s.shoeings.Get(ctx, id)
}

func (s *ShoeingService) List(ctx context.Context, limit, offset int) (*models.ShoeingListResult, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	shoeings, total, err := s.shoeings.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}
	return &models.ShoeingListResult{Shoeings: shoeings, Total: total}, nil
}

func (s *ShoeingService) Search(ctx context.Context, term string, limit, offset int) ([]*models.Shoeing, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	return s.shoeings.Search(ctx, term, limit, offset)
}

// History returns every record for a horse: rows referencing the stable id
// plus legacy rows that only carry the composite identifier.
func (s *ShoeingService) History(ctx context.Context, horseID int) ([]*models.Shoeing, error) {
	horse, err := s.horses.Get(ctx, horseID)
	if err != nil {
		return nil, fmt.Errorf("horse not found")
	}

	byID, err := s.shoeings.ListForHorse(ctx, horseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}
	legacy, err := s.shoeings.ListForIdentifier(ctx, horse.Identifier())
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}
	return append(byID, legacy...), nil
}
