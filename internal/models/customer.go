package models

import "time"

type Customer struct {
	ID          int       `json:"id"`
	DisplayName string    `json:"display_name"`
	CompanyName string    `json:"company_name"`
	BarnTrainer string    `json:"barn_trainer"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateCustomerRequest represents the request body for creating a customer
type CreateCustomerRequest struct {
	DisplayName string `json:"display_name"`
	CompanyName string `json:"company_name"`
	BarnTrainer string `json:"barn_trainer"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Notes       string `json:"notes"`
}

// UpdateCustomerRequest represents the request body for updating a customer
type UpdateCustomerRequest struct {
	DisplayName string `json:"display_name"`
	CompanyName string `json:"company_name"`
	BarnTrainer string `json:"barn_trainer"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Notes       string `json:"notes"`
}
