package models

import "time"

// AccountingToken is the per-user OAuth token pair for the accounting provider
type AccountingToken struct {
	UserID       int       `json:"user_id"`
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	ExpiresAt    time.Time `json:"expires_at"`
	RealmID      string    `json:"realm_id"`
	Connected    bool      `json:"connected"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (t *AccountingToken) Expired() bool {
	return time.Now().After(t.ExpiresAt)
}

// AccountingCustomer is a customer record in the external accounting system
type AccountingCustomer struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	CompanyName string `json:"company_name"`
}

// AccountingInvoice is an invoice created in (or fetched from) the provider
type AccountingInvoice struct {
	ID           string    `json:"id"`
	DocNumber    string    `json:"doc_number"`
	CustomerID   string    `json:"customer_id"`
	CustomerName string    `json:"customer_name"`
	Total        float64   `json:"total"`
	TxnDate      time.Time `json:"txn_date"`
}

type InvoiceListResult struct {
	Invoices   []*AccountingInvoice `json:"invoices"`
	TotalCount int                  `json:"total_count"`
}

// ExchangeTokenRequest is the OAuth callback payload
type ExchangeTokenRequest struct {
	Code    string `json:"code"`
	RealmID string `json:"realm_id"`
}

type ConnectionStatus struct {
	Connected bool      `json:"connected"`
	RealmID   string    `json:"realm_id,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}
