package models

import (
	"fmt"
	"time"
)

const (
	HorseStatusPending  = "pending"
	HorseStatusAccepted = "accepted"
)

type Horse struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	BarnTrainer string    `json:"barn_trainer"`
	OwnerEmail  string    `json:"owner_email"`
	OwnerPhone  string    `json:"owner_phone"`
	Status      string    `json:"status"`
	Alert       bool      `json:"alert"`
	AlertText   string    `json:"alert_text"`
	History     string    `json:"history"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Identifier renders the legacy "Name - [Barn]" composite. It exists only for
// display and for matching rows imported before stable horse ids; new data
// always references horses by id.
func (h *Horse) Identifier() string {
	return fmt.Sprintf("%s - [%s]", h.Name, h.BarnTrainer)
}

type CreateHorseRequest struct {
	Name        string `json:"name"`
	BarnTrainer string `json:"barn_trainer"`
	OwnerEmail  string `json:"owner_email"`
	OwnerPhone  string `json:"owner_phone"`
	Alert       bool   `json:"alert"`
	AlertText   string `json:"alert_text"`
	History     string `json:"history"`
}

type UpdateHorseRequest struct {
	Name        string `json:"name"`
	BarnTrainer string `json:"barn_trainer"`
	OwnerEmail  string `json:"owner_email"`
	OwnerPhone  string `json:"owner_phone"`
	Alert       bool   `json:"alert"`
	AlertText   string `json:"alert_text"`
	History     string `json:"history"`
}

// CustomerHorse is the join row linking a customer to a horse
type CustomerHorse struct {
	ID         int       `json:"id"`
	CustomerID int       `json:"customer_id"`
	HorseID    int       `json:"horse_id"`
	CreatedAt  time.Time `json:"created_at"`
}
