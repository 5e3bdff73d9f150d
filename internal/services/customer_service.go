package services

import (
	"context"
	"fmt"
	"strings"

	"farrier-backend/internal/cache"
	"farrier-backend/internal/models"
	"farrier-backend/internal/repositories"
)

type CustomerService struct {
	customers *repositories.CustomerRepository
	links     *repositories.CustomerHorseRepository
}

func NewCustomerService(customers *repositories.CustomerRepository, links *repositories.CustomerHorseRepository) *CustomerService {
	return &CustomerService{customers: customers, links: links}
}

func (s *CustomerService) Create(ctx context.Context, req *models.CreateCustomerRequest) (*models.Customer, error) {
	if strings.TrimSpace(req.DisplayName) == "" {
		return nil, fmt.Errorf("display name is required")
	}

	// Display names join records to customers, so duplicates are refused
	if _, err := s.customers.GetByDisplayName(ctx, req.DisplayName); err == nil {
		return nil, fmt.Errorf("a customer named %q already exists", req.DisplayName)
	}

	customer := &models.Customer{
		DisplayName: strings.TrimSpace(req.DisplayName),
		CompanyName: req.CompanyName,
		BarnTrainer: req.BarnTrainer,
		Email:       req.Email,
		Phone:       req.Phone,
		Notes:       req.Notes,
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	cache.InvalidateCustomerCaches(ctx)
	return customer, nil
}

func (s *CustomerService) Get(ctx context.Context, id int) (*models.Customer, error) {
	return s.customers.Get(ctx, id)
}

func (s *CustomerService) List(ctx context.Context, limit, offset int) ([]*models.Customer, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	return s.customers.List(ctx, limit, offset)
}

func (s *CustomerService) Search(ctx context.Context, term string, limit, offset int) ([]*models.Customer, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	return s.customers.Search(ctx, term, limit, offset)
}

func (s *CustomerService) Update(ctx context.Context, id int, req *models.UpdateCustomerRequest) (*models.Customer, error) {
	customer, err := s.customers.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("customer not found")
	}
	if strings.TrimSpace(req.DisplayName) == "" {
		return nil, fmt.Errorf("display name is required")
	}

	customer.DisplayName = strings.TrimSpace(req.DisplayName)
	customer.CompanyName = req.CompanyName
	customer.BarnTrainer = req.BarnTrainer
	customer.Email = req.Email
	customer.Phone = req.Phone
	customer.Notes = req.Notes

	if err := s.customers.Update(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}

	cache.InvalidateCustomerCaches(ctx)
	return customer, nil
}

func (s *CustomerService) Delete(ctx context.Context, id int) error {
	if _, err := s.customers.Get(ctx, id); err != nil {
		return fmt.Errorf("customer not found")
	}
	if err := s.customers.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	cache.InvalidateCustomerCaches(ctx)
	return nil
}

// Horses returns the horses linked to a customer through the join table
func (s *CustomerService) Horses(ctx context.Context, customerID int) ([]*models.Horse, error) {
	if _, err := s.customers.Get(ctx, customerID); err != nil {
		return nil, fmt.Errorf("customer not found")
	}
	return s.links.HorsesForCustomer(ctx, customerID)
}

// LinkHorse records that a customer owns a horse; re-linking is a no-op
func (s *CustomerService) LinkHorse(ctx context.Context, customerID, horseID int) error {
	if _, err := s.customers.Get(ctx, customerID); err != nil {
		return fmt.Errorf("customer not found")
	}
	return s.links.CreateIfAbsent(ctx, customerID, horseID)
}
