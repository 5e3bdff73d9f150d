package services

import (
	"context"
	"fmt"
	"strings"

	"farrier-backend/internal/models"
	"farrier-backend/internal/repositories"
)

type HorseService struct {
	horses *repositories.HorseRepository
	links  *repositories.CustomerHorseRepository
}

func NewHorseService(horses *repositories.HorseRepository, links *repositories.CustomerHorseRepository) *HorseService {
	return &HorseService{horses: horses, links: links}
}

// Create adds a horse directly from the horses screen. Horses created this
// way are already reviewed, unlike ones introduced by a shoeing submission.
func (s *HorseService) Create(ctx context.Context, req *models.CreateHorseRequest) (*models.Horse, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("horse name is required")
	}

	horse := &models.Horse{
		Name:        strings.TrimSpace(req.Name),
		BarnTrainer: req.BarnTrainer,
		OwnerEmail:  req.OwnerEmail,
		OwnerPhone:  req.OwnerPhone,
		Status:      models.HorseStatusAccepted,
		Alert:       req.Alert,
		AlertText:   req.AlertText,
		History:     req.History,
	}
	if err := s.horses.Create(ctx, horse); err != nil {
		return nil, fmt.Errorf("failed to create horse: %w", err)
	}
	return horse, nil
}

func (s *HorseService) Get(ctx context.Context, id int) (*models.Horse, error) {
	return s.horses.Get(ctx, id)
}

func (s *HorseService) List(ctx context.Context, limit, offset int) ([]*models.Horse, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	return s.horses.List(ctx, limit, offset)
}

func (s *HorseService) Search(ctx context.Context, term string, limit, offset int) ([]*models.Horse, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	return s.horses.Search(ctx, term, limit, offset)
}

func (s *HorseService) Update(ctx context.Context, id int, req *models.UpdateHorseRequest) (*models.Horse, error) {
	horse, err := s.horses.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("horse not found")
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("horse name is required")
	}

	horse.Name = strings.TrimSpace(req.Name)
	horse.BarnTrainer = req.BarnTrainer
	horse.OwnerEmail = req.OwnerEmail
	horse.OwnerPhone = req.OwnerPhone
	horse.Alert = req.Alert
	horse.AlertText = req.AlertText
	horse.History = req.History

	if err := s.horses.Update(ctx, horse); err != nil {
		return nil, fmt.Errorf("failed to update horse: %w", err)
	}
	return horse, nil
}

func (s *HorseService) Delete(ctx context.Context, id int) error {
	if _, err := s.horses.Get(ctx, id); err != nil {
		return fmt.Errorf("horse not found")
	}
	return s.horses.Delete(ctx, id)
}

// Owners returns the customers linked to a horse
func (s *HorseService) Owners(ctx context.Context, horseID int) ([]*models.Customer, error) {
	if _, err := s.horses.Get(ctx, horseID); err != nil {
		return nil, fmt.Errorf("horse not found")
	}
	return s.links.CustomersForHorse(ctx, horseID)
}
