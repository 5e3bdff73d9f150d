package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"farrier-backend/internal/config"
	"farrier-backend/internal/metrics"
	"farrier-backend/internal/models"
	"farrier-backend/pkg/money"
)

// tokenStore is the persistence surface the bridge needs; the accounting
// token repository satisfies it.
type tokenStore interface {
	Get(ctx context.Context, userID int) (*models.AccountingToken, error)
	Upsert(ctx context.Context, t *models.AccountingToken) error
	SetConnected(ctx context.Context, userID int, connected bool) error
	ListExpiring(ctx context.Context, cutoff time.Time) ([]*models.AccountingToken, error)
	Delete(ctx context.Context, userID int) error
}

// AccountingService is the bridge to the external accounting provider. Tokens
// are cached per user; an expired token is refreshed transparently at most
// once per operation, and a failed refresh marks the connection disconnected.
type AccountingService struct {
	cfg        *config.Config
	tokenRepo  tokenStore
	httpClient *http.Client
}

func NewAccountingService(cfg *config.Config, tokenRepo tokenStore) *AccountingService {
	return &AccountingService{
		cfg:        cfg,
		tokenRepo:  tokenRepo,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// NewState returns an opaque state value for the OAuth redirect
func (s *AccountingService) NewState() string {
	return uuid.NewString()
}

// AuthorizeURL builds the provider's consent-screen redirect
func (s *AccountingService) AuthorizeURL(state string) string {
	q := url.Values{}
	q.Set("client_id", s.cfg.Accounting.ClientID)
	q.Set("redirect_uri", s.cfg.Accounting.RedirectURI)
	q.Set("response_type", "code")
	q.Set("scope", s.cfg.Accounting.Scopes)
	q.Set("state", state)
	return s.cfg.Accounting.AuthBaseURL + "?" + q.Encode()
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// ExchangeCode trades the OAuth callback code for a token pair and stores it
func (s *AccountingService) ExchangeCode(ctx context.Context, userID int, code, realmID string) error {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", s.cfg.Accounting.RedirectURI)

	tok, err := s.tokenCall(ctx, form)
	if err != nil {
		return err
	}

	return s.tokenRepo.Upsert(ctx, &models.AccountingToken{
		UserID:       userID,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second),
		RealmID:      realmID,
		Connected:    true,
	})
}

// refresh exchanges the refresh token for a new pair. Failure marks the
// integration disconnected; the user must re-authorize.
func (s *AccountingService) refresh(ctx context.Context, t *models.AccountingToken) (*models.AccountingToken, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", t.RefreshToken)

	tok, err := s.tokenCall(ctx, form)
	if err != nil {
		metrics.TokenRefreshes.WithLabelValues("failure").Inc()
		if derr := s.tokenRepo.SetConnected(ctx, t.UserID, false); derr != nil {
			log.Printf("[Accounting] Failed to mark user %d disconnected: %v", t.UserID, derr)
		}
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}
	metrics.TokenRefreshes.WithLabelValues("success").Inc()

	updated := &models.AccountingToken{
		UserID:       t.UserID,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second),
		RealmID:      t.RealmID,
		Connected:    true,
	}
	if err := s.tokenRepo.Upsert(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to store refreshed token: %w", err)
	}
	return updated, nil
}

func (s *AccountingService) tokenCall(ctx context.Context, form url.Values) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Accounting.TokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(s.cfg.Accounting.ClientID, s.cfg.Accounting.ClientSecret)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%s", strings.TrimSpace(string(body)))
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return nil, fmt.Errorf("malformed token response: %w", err)
	}
	return &tok, nil
}

// accessToken returns a usable token, refreshing once if the cached one has
// expired.
func (s *AccountingService) accessToken(ctx context.Context, userID int) (*models.AccountingToken, bool, error) {
	t, err := s.tokenRepo.Get(ctx, userID)
	if err != nil {
		return nil, false, fmt.Errorf("accounting connection not set up")
	}
	if !t.Connected {
		return nil, false, fmt.Errorf("accounting connection is disconnected, please reconnect")
	}
	if t.Expired() {
		refreshed, err := s.refresh(ctx, t)
		if err != nil {
			return nil, true, err
		}
		return refreshed, true, nil
	}
	return t, false, nil
}

// apiRequest performs an authenticated provider call. A 401 triggers one
// refresh-and-retry unless a refresh already happened for this operation.
func (s *AccountingService) apiRequest(ctx context.Context, userID int, method, path string, payload interface{}) ([]byte, error) {
	t, refreshed, err := s.accessToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	body, status, err := s.do(ctx, t, method, path, payload)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized && !refreshed {
		t, err = s.refresh(ctx, t)
		if err != nil {
			return nil, err
		}
		body, status, err = s.do(ctx, t, method, path, payload)
		if err != nil {
			return nil, err
		}
	}

	if status >= 400 {
		// The provider's message is surfaced verbatim to the caller
		return nil, fmt.Errorf("%s", strings.TrimSpace(string(body)))
	}
	return body, nil
}

func (s *AccountingService) do(ctx context.Context, t *models.AccountingToken, method, path string, payload interface{}) ([]byte, int, error) {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, err
		}
		reader = bytes.NewReader(data)
	}

	endpoint := fmt.Sprintf("%s/v3/company/%s%s", s.cfg.Accounting.APIBaseURL, t.RealmID, path)
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+t.AccessToken)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}

type providerCustomer struct {
	ID          string `json:"Id"`
	DisplayName string `json:"DisplayName"`
	CompanyName string `json:"CompanyName"`
}

type providerInvoice struct {
	ID          string  `json:"Id"`
	DocNumber   string  `json:"DocNumber"`
	TotalAmt    float64 `json:"TotalAmt"`
	TxnDate     string  `json:"TxnDate"`
	CustomerRef struct {
		Value string `json:"value"`
		Name  string `json:"name"`
	} `json:"CustomerRef"`
}

// GetCustomers returns the provider's live customer list
func (s *AccountingService) GetCustomers(ctx context.Context, userID int) ([]*models.AccountingCustomer, error) {
	query := url.QueryEscape("SELECT * FROM Customer MAXRESULTS 1000")
	body, err := s.apiRequest(ctx, userID, http.MethodGet, "/query?query="+query, nil)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		QueryResponse struct {
			Customer []providerCustomer `json:"Customer"`
		} `json:"QueryResponse"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("malformed customer response: %w", err)
	}

	customers := make([]*models.AccountingCustomer, 0, len(parsed.QueryResponse.Customer))
	for _, c := range parsed.QueryResponse.Customer {
		customers = append(customers, &models.AccountingCustomer{
			ID:          c.ID,
			DisplayName: c.DisplayName,
			CompanyName: c.CompanyName,
		})
	}
	return customers, nil
}

// CreateInvoice creates one invoice with one line item per shoeing. The
// provider call is all-or-nothing: any failure creates nothing remotely and
// the caller commits nothing locally.
func (s *AccountingService) CreateInvoice(ctx context.Context, userID int, shoeings []*models.Shoeing, customerID string) (*models.AccountingInvoice, error) {
	if len(shoeings) == 0 {
		return nil, fmt.Errorf("no records to invoice")
	}

	lines := make([]map[string]interface{}, 0, len(shoeings))
	for _, sh := range shoeings {
		amount, err := money.Parse(sh.TotalCost)
		if err != nil {
			return nil, fmt.Errorf("record %d has no parseable total cost: %w", sh.ID, err)
		}
		lines = append(lines, map[string]interface{}{
			"DetailType":  "SalesItemLineDetail",
			"Amount":      amount,
			"Description": StripMentionMarkup(sh.Description),
			"SalesItemLineDetail": map[string]interface{}{
				"Qty": 1,
			},
		})
	}

	payload := map[string]interface{}{
		"CustomerRef": map[string]interface{}{"value": customerID},
		"Line":        lines,
	}

	body, err := s.apiRequest(ctx, userID, http.MethodPost, "/invoice", payload)
	if err != nil {
		metrics.InvoiceFailures.Inc()
		return nil, err
	}

	var parsed struct {
		Invoice providerInvoice `json:"Invoice"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		metrics.InvoiceFailures.Inc()
		return nil, fmt.Errorf("malformed invoice response: %w", err)
	}

	metrics.InvoicesCreated.Inc()
	return toAccountingInvoice(&parsed.Invoice), nil
}

// GetInvoices pages through the provider's invoice list
func (s *AccountingService) GetInvoices(ctx context.Context, userID, page, perPage int) (*models.InvoiceListResult, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	start := (page-1)*perPage + 1

	countBody, err := s.apiRequest(ctx, userID, http.MethodGet,
		"/query?query="+url.QueryEscape("SELECT COUNT(*) FROM Invoice"), nil)
	if err != nil {
		return nil, err
	}
	var countParsed struct {
		QueryResponse struct {
			TotalCount int `json:"totalCount"`
		} `json:"QueryResponse"`
	}
	if err := json.Unmarshal(countBody, &countParsed); err != nil {
		return nil, fmt.Errorf("malformed invoice count response: %w", err)
	}

	query := fmt.Sprintf("SELECT * FROM Invoice ORDERBY TxnDate DESC STARTPOSITION %d MAXRESULTS %d", start, perPage)
	body, err := s.apiRequest(ctx, userID, http.MethodGet, "/query?query="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		QueryResponse struct {
			Invoice []providerInvoice `json:"Invoice"`
		} `json:"QueryResponse"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("malformed invoice response: %w", err)
	}

	result := &models.InvoiceListResult{TotalCount: countParsed.QueryResponse.TotalCount}
	for i := range parsed.QueryResponse.Invoice {
		result.Invoices = append(result.Invoices, toAccountingInvoice(&parsed.QueryResponse.Invoice[i]))
	}
	return result, nil
}

func toAccountingInvoice(inv *providerInvoice) *models.AccountingInvoice {
	txnDate, _ := time.Parse("2006-01-02", inv.TxnDate)
	return &models.AccountingInvoice{
		ID:           inv.ID,
		DocNumber:    inv.DocNumber,
		CustomerID:   inv.CustomerRef.Value,
		CustomerName: inv.CustomerRef.Name,
		Total:        inv.TotalAmt,
		TxnDate:      txnDate,
	}
}

// Status reports the connection state for the settings screen
func (s *AccountingService) Status(ctx context.Context, userID int) *models.ConnectionStatus {
	t, err := s.tokenRepo.Get(ctx, userID)
	if err != nil || !t.Connected {
		return &models.ConnectionStatus{Connected: false}
	}
	return &models.ConnectionStatus{Connected: true, RealmID: t.RealmID, ExpiresAt: t.ExpiresAt}
}

// Disconnect drops the stored token pair
func (s *AccountingService) Disconnect(ctx context.Context, userID int) error {
	return s.tokenRepo.Delete(ctx, userID)
}

// RefreshExpiring proactively refreshes tokens close to expiry so interactive
// operations rarely pay the refresh round-trip. Run from the cron scheduler.
func (s *AccountingService) RefreshExpiring(ctx context.Context) {
	tokens, err := s.tokenRepo.ListExpiring(ctx, time.Now().Add(1*time.Hour))
	if err != nil {
		log.Printf("[Accounting] Failed to list expiring tokens: %v", err)
		return
	}

	for _, t := range tokens {
		if _, err := s.refresh(ctx, t); err != nil {
			log.Printf("[Accounting] Background refresh failed for user %d: %v", t.UserID, err)
			continue
		}
		log.Printf("[Accounting] Refreshed token for user %d", t.UserID)
	}
}
