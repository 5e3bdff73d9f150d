package services

import (
	"context"
	"fmt"
	"strings"

	"farrier-backend/internal/models"
	"farrier-backend/internal/repositories"
)

// PriceService manages the reference tables behind the submission form:
// locations and per-location product prices.
type PriceService struct {
	repo *repositories.PriceRepository
}

func NewPriceService(repo *repositories.PriceRepository) *PriceService {
	return &PriceService{repo: repo}
}

func (s *PriceService) ListLocations(ctx context.Context) ([]*models.Location, error) {
	return s.repo.ListLocations(ctx)
}

func (s *PriceService) CreateLocation(ctx context.Context, l *models.Location) error {
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("location name is required")
	}
	return s.repo.CreateLocation(ctx, l)
}

func (s *PriceService) ListPrices(ctx context.Context) ([]*models.Price, error) {
	return s.repo.ListPrices(ctx)
}

func (s *PriceService) SetPrice(ctx context.Context, p *models.Price) error {
	if strings.TrimSpace(p.Product) == "" {
		return fmt.Errorf("product is required")
	}
	if p.Amount < 0 {
		return fmt.Errorf("amount cannot be negative")
	}
	return s.repo.UpsertPrice(ctx, p)
}

// Quote returns the price of a product at a named location
func (s *PriceService) Quote(ctx context.Context, product, location string) (float64, error) {
	amount, err := s.repo.PriceFor(ctx, product, location)
	if err != nil {
		return 0, fmt.Errorf("no price for %q at %q", product, location)
	}
	return amount, nil
}
