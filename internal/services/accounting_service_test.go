package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farrier-backend/internal/config"
	"farrier-backend/internal/models"
)

type fakeTokenStore struct {
	tokens map[int]*models.AccountingToken
}

func newFakeTokenStore(tokens ...*models.AccountingToken) *fakeTokenStore {
	m := make(map[int]*models.AccountingToken)
	for _, t := range tokens {
		m[t.UserID] = t
	}
	return &fakeTokenStore{tokens: m}
}

func (f *fakeTokenStore) Get(_ context.Context, userID int) (*models.AccountingToken, error) {
	t, ok := f.tokens[userID]
	if !ok {
		return nil, assert.AnError
	}
	return t, nil
}

func (f *fakeTokenStore) Upsert(_ context.Context, t *models.AccountingToken) error {
	f.tokens[t.UserID] = t
	return nil
}

func (f *fakeTokenStore) SetConnected(_ context.Context, userID int, connected bool) error {
	if t, ok := f.tokens[userID]; ok {
		t.Connected = connected
	}
	return nil
}

func (f *fakeTokenStore) ListExpiring(_ context.Context, cutoff time.Time) ([]*models.AccountingToken, error) {
	var out []*models.AccountingToken
	for _, t := range f.tokens {
		if t.Connected && t.ExpiresAt.Before(cutoff) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTokenStore) Delete(_ context.Context, userID int) error {
	delete(f.tokens, userID)
	return nil
}

func validToken(userID int) *models.AccountingToken {
	return &models.AccountingToken{
		UserID:       userID,
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresAt:    time.Now().Add(time.Hour),
		RealmID:      "realm-9",
		Connected:    true,
	}
}

func testConfig(serverURL string) *config.Config {
	cfg := &config.Config{}
	cfg.Accounting.ClientID = "client-id"
	cfg.Accounting.ClientSecret = "client-secret"
	cfg.Accounting.RedirectURI = "http://localhost/callback"
	cfg.Accounting.AuthBaseURL = serverURL + "/authorize"
	cfg.Accounting.TokenURL = serverURL + "/token"
	cfg.Accounting.APIBaseURL = serverURL
	cfg.Accounting.Scopes = "accounting"
	return cfg
}

func TestExchangeCodeStoresConnectedToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.Form.Get("grant_type"))
		assert.Equal(t, "code-abc", r.Form.Get("code"))

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "client-id", user)
		assert.Equal(t, "client-secret", pass)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token":  "access-new",
			"refresh_token": "refresh-new",
			"expires_in":    3600,
		})
	}))
	defer srv.Close()

	store := newFakeTokenStore()
	svc := NewAccountingService(testConfig(srv.URL), store)

	require.NoError(t, svc.ExchangeCode(context.Background(), 1, "code-abc", "realm-9"))

	tok := store.tokens[1]
	require.NotNil(t, tok)
	assert.True(t, tok.Connected)
	assert.Equal(t, "access-new", tok.AccessToken)
	assert.Equal(t, "realm-9", tok.RealmID)
}

func TestGetCustomersRefreshesExpiredTokenOnce(t *testing.T) {
	refreshes := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			refreshes++
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
			json.NewEncoder(w).Encode(map[string]interface{}{
				"access_token":  "access-2",
				"refresh_token": "refresh-2",
				"expires_in":    3600,
			})
		case "/v3/company/realm-9/query":
			assert.Equal(t, "Bearer access-2", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(map[string]interface{}{
				"QueryResponse": map[string]interface{}{
					"Customer": []map[string]interface{}{
						{"Id": "q-1", "DisplayName": "Acme Stables"},
					},
				},
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	expired := validToken(1)
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	store := newFakeTokenStore(expired)
	svc := NewAccountingService(testConfig(srv.URL), store)

	customers, err := svc.GetCustomers(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "Acme Stables", customers[0].DisplayName)
	assert.Equal(t, 1, refreshes)
}

func TestApiRequestRetriesOnceAfter401(t *testing.T) {
	apiCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"access_token":  "access-2",
				"refresh_token": "refresh-2",
				"expires_in":    3600,
			})
		case "/v3/company/realm-9/query":
			apiCalls++
			if apiCalls == 1 {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"QueryResponse": map[string]interface{}{},
			})
		}
	}))
	defer srv.Close()

	store := newFakeTokenStore(validToken(1))
	svc := NewAccountingService(testConfig(srv.URL), store)

	_, err := svc.GetCustomers(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, apiCalls)
}

func TestFailedRefreshMarksDisconnected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant"}`))
		}
	}))
	defer srv.Close()

	expired := validToken(1)
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	store := newFakeTokenStore(expired)
	svc := NewAccountingService(testConfig(srv.URL), store)

	_, err := svc.GetCustomers(context.Background(), 1)
	require.Error(t, err)
	assert.False(t, store.tokens[1].Connected)

	// Subsequent calls refuse immediately until the user reconnects
	_, err = svc.GetCustomers(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disconnected")
}

func TestCreateInvoiceSurfacesProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"Fault":{"Error":[{"Message":"Invoice line is invalid"}]}}`))
	}))
	defer srv.Close()

	store := newFakeTokenStore(validToken(1))
	svc := NewAccountingService(testConfig(srv.URL), store)

	shoeings := []*models.Shoeing{{ID: 1, TotalCost: "100.00", Description: "Full set"}}
	_, err := svc.CreateInvoice(context.Background(), 1, shoeings, "q-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invoice line is invalid")
}

func TestCreateInvoiceBuildsOneLinePerRecord(t *testing.T) {
	var payload struct {
		CustomerRef struct {
			Value string `json:"value"`
		} `json:"CustomerRef"`
		Line []struct {
			DetailType  string  `json:"DetailType"`
			Amount      float64 `json:"Amount"`
			Description string  `json:"Description"`
		} `json:"Line"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v3/company/realm-9/invoice", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"Invoice": map[string]interface{}{
				"Id":          "77",
				"DocNumber":   "1042",
				"TotalAmt":    350.0,
				"TxnDate":     "2026-08-20",
				"CustomerRef": map[string]string{"value": "q-1", "name": "Acme Stables"},
			},
		})
	}))
	defer srv.Close()

	store := newFakeTokenStore(validToken(1))
	svc := NewAccountingService(testConfig(srv.URL), store)

	shoeings := []*models.Shoeing{
		{ID: 1, TotalCost: "$250.00", Description: "Full set for @[Star](h-7)"},
		{ID: 2, TotalCost: "100", Description: "Trim"},
	}

	invoice, err := svc.CreateInvoice(context.Background(), 1, shoeings, "q-1")
	require.NoError(t, err)
	assert.Equal(t, "1042", invoice.DocNumber)
	assert.Equal(t, "Acme Stables", invoice.CustomerName)

	require.Len(t, payload.Line, 2)
	assert.Equal(t, "q-1", payload.CustomerRef.Value)
	assert.Equal(t, 250.0, payload.Line[0].Amount)
	// Mention markup never reaches the provider
	assert.Equal(t, "Full set for @Star", payload.Line[0].Description)
}

func TestCreateInvoiceRejectsUnparseableCost(t *testing.T) {
	store := newFakeTokenStore(validToken(1))
	svc := NewAccountingService(testConfig("http://unused"), store)

	shoeings := []*models.Shoeing{{ID: 1, TotalCost: "call for pricing"}}
	_, err := svc.CreateInvoice(context.Background(), 1, shoeings, "q-1")
	require.Error(t, err)
}

func TestAuthorizeURL(t *testing.T) {
	svc := NewAccountingService(testConfig("http://provider"), newFakeTokenStore())

	u := svc.AuthorizeURL("state-123")
	assert.Contains(t, u, "http://provider/authorize?")
	assert.Contains(t, u, "client_id=client-id")
	assert.Contains(t, u, "state=state-123")
	assert.Contains(t, u, "response_type=code")
}
