package models

import "time"

const (
	ShoeingStatusPending   = "pending"
	ShoeingStatusCompleted = "completed"
	ShoeingStatusCancelled = "cancelled"
	ShoeingStatusRejected  = "rejected"
)

// Shoeing is a single service record. Cost fields are stored as text because
// legacy rows carry free-form values like "$250.00"; aggregation parses them
// and skips what it cannot read.
type Shoeing struct {
	ID              int        `json:"id"`
	HorseID         *int       `json:"horse_id"`
	HorseIdentifier string     `json:"horse_identifier"`
	UserID          *int       `json:"user_id"`
	DateOfService   *time.Time `json:"date_of_service"`
	Location        string     `json:"location"`
	BaseService     string     `json:"base_service"`
	FrontAddOns     string     `json:"front_add_ons"`
	HindAddOns      string     `json:"hind_add_ons"`
	BaseServiceCost string     `json:"base_service_cost"`
	FrontAddOnsCost string     `json:"front_add_ons_cost"`
	HindAddOnsCost  string     `json:"hind_add_ons_cost"`
	TotalCost       string     `json:"total_cost"`
	Description     string     `json:"description"`
	ShoeNotes       string     `json:"shoe_notes"`
	Status          string     `json:"status"`
	InvoiceNumber   *string    `json:"invoice_number"`
	DateSent        *time.Time `json:"date_sent"`
	IsNewHorse      bool       `json:"is_new_horse"`
	CustomerName    *string    `json:"customer_name"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type CreateShoeingRequest struct {
	HorseID         *int   `json:"horse_id"`
	HorseIdentifier string `json:"horse_identifier"`
	DateOfService   string `json:"date_of_service"` // YYYY-MM-DD
	Location        string `json:"location"`
	BaseService     string `json:"base_service"`
	FrontAddOns     string `json:"front_add_ons"`
	HindAddOns      string `json:"hind_add_ons"`
	BaseServiceCost string `json:"base_service_cost"`
	FrontAddOnsCost string `json:"front_add_ons_cost"`
	HindAddOnsCost  string `json:"hind_add_ons_cost"`
	TotalCost       string `json:"total_cost"`
	Description     string `json:"description"`
	ShoeNotes       string `json:"shoe_notes"`
	IsNewHorse      bool   `json:"is_new_horse"`
}

// EditShoeingRequest enumerates exactly the fields an admin edit may touch.
// Editing never changes status.
type EditShoeingRequest struct {
	DateOfService string `json:"date_of_service"`
	Description   string `json:"description"`
	Location      string `json:"location"`
	TotalCost     string `json:"total_cost"`
	ShoeNotes     string `json:"shoe_notes"`
	FrontAddOns   string `json:"front_add_ons"`
	HindAddOns    string `json:"hind_add_ons"`
}

type ShoeingListResult struct {
	Shoeings []*Shoeing `json:"shoeings"`
	Total    int        `json:"total"`
}
