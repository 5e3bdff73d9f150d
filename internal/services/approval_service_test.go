package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farrier-backend/internal/models"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func pendingShoeing(id int, horseID *int, identifier string, customer *string) *models.Shoeing {
	return &models.Shoeing{
		ID:              id,
		HorseID:         horseID,
		HorseIdentifier: identifier,
		Status:          models.ShoeingStatusPending,
		TotalCost:       "100.00",
		CustomerName:    customer,
	}
}

func TestGroupShoeingsExplicitNameWins(t *testing.T) {
	// Sibling history points at Beta Farms, but the record's own customer
	// name must win.
	pending := []*models.Shoeing{
		pendingShoeing(1, intPtr(7), "Star - [North Barn]", strPtr("Acme Stables")),
	}
	siblings := map[int][]*models.Shoeing{
		7: {
			{ID: 2, CustomerName: strPtr("Beta Farms")},
			{ID: 3, CustomerName: strPtr("Beta Farms")},
		},
	}

	groups := GroupShoeings(pending, siblings, nil, nil)
	require.Len(t, groups, 1)
	assert.Equal(t, "Acme Stables", groups[0].CustomerName)
}

func TestGroupShoeingsSiblingMode(t *testing.T) {
	pending := []*models.Shoeing{
		pendingShoeing(1, intPtr(7), "Star - [North Barn]", nil),
	}
	siblings := map[int][]*models.Shoeing{
		7: {
			{ID: 2, CustomerName: strPtr("Acme Stables")},
			{ID: 3, CustomerName: strPtr("Beta Farms")},
			{ID: 4, CustomerName: strPtr("Acme Stables")},
		},
	}

	groups := GroupShoeings(pending, siblings, nil, nil)
	require.Len(t, groups, 1)
	assert.Equal(t, "Acme Stables", groups[0].CustomerName)
	assert.Len(t, groups[0].Shoeings, 1)
}

func TestGroupShoeingsModeTieFirstSeenWins(t *testing.T) {
	// Acme reaches two first; Beta tying at two later must not displace it
	pending := []*models.Shoeing{
		pendingShoeing(1, intPtr(7), "", nil),
	}
	siblings := map[int][]*models.Shoeing{
		7: {
			{ID: 2, CustomerName: strPtr("Acme Stables")},
			{ID: 3, CustomerName: strPtr("Acme Stables")},
			{ID: 4, CustomerName: strPtr("Beta Farms")},
			{ID: 5, CustomerName: strPtr("Beta Farms")},
		},
	}

	groups := GroupShoeings(pending, siblings, nil, nil)
	require.Len(t, groups, 1)
	assert.Equal(t, "Acme Stables", groups[0].CustomerName)
}

func TestGroupShoeingsNoCustomerGroup(t *testing.T) {
	pending := []*models.Shoeing{
		pendingShoeing(1, nil, "Mystery - [Unknown]", nil),
	}

	groups := GroupShoeings(pending, nil, nil, nil)
	require.Len(t, groups, 1)
	assert.Equal(t, NoCustomerGroup, groups[0].Key)
	assert.Empty(t, groups[0].CustomerName)
}

func TestGroupShoeingsLegacyIdentifierSiblings(t *testing.T) {
	pending := []*models.Shoeing{
		pendingShoeing(1, nil, "Star - [North Barn]", nil),
	}
	siblings := map[string][]*models.Shoeing{
		"Star - [North Barn]": {
			{ID: 2, CustomerName: strPtr("Acme Stables")},
		},
	}

	groups := GroupShoeings(pending, nil, siblings, nil)
	require.Len(t, groups, 1)
	assert.Equal(t, "Acme Stables", groups[0].CustomerName)
}

func TestGroupShoeingsSingleLinkInference(t *testing.T) {
	pending := []*models.Shoeing{
		pendingShoeing(1, intPtr(7), "Star - [North Barn]", nil),
		pendingShoeing(2, intPtr(8), "Moon - [South Barn]", nil),
	}
	linked := map[int][]*models.Customer{
		7: {{ID: 10, DisplayName: "Acme Stables"}},
		// Horse 8 has two linked customers, so no inference
		8: {{ID: 10, DisplayName: "Acme Stables"}, {ID: 11, DisplayName: "Beta Farms"}},
	}

	groups := GroupShoeings(pending, nil, nil, linked)
	require.Len(t, groups, 2)

	byKey := map[string]*ShoeingGroup{}
	for _, g := range groups {
		byKey[g.Key] = g
	}
	require.Contains(t, byKey, "Acme Stables")
	require.Contains(t, byKey, NoCustomerGroup)
	assert.Equal(t, 1, byKey["Acme Stables"].Shoeings[0].ID)
	assert.Equal(t, 2, byKey[NoCustomerGroup].Shoeings[0].ID)

	// Inference stamps the name on the in-memory record only
	require.NotNil(t, byKey["Acme Stables"].Shoeings[0].CustomerName)
	assert.Equal(t, "Acme Stables", *byKey["Acme Stables"].Shoeings[0].CustomerName)
}

func TestMatchAccountingCustomer(t *testing.T) {
	customers := []*models.AccountingCustomer{
		{ID: "1", DisplayName: "Acme Stables LLC"},
		{ID: "2", DisplayName: "Beta Farms"},
		{ID: "3", DisplayName: "acme stables"},
	}

	t.Run("exact match beats substring", func(t *testing.T) {
		m := MatchAccountingCustomer("Acme Stables", customers)
		require.NotNil(t, m)
		assert.Equal(t, "3", m.ID)
	})

	t.Run("substring either direction", func(t *testing.T) {
		m := MatchAccountingCustomer("Beta", customers)
		require.NotNil(t, m)
		assert.Equal(t, "2", m.ID)

		m = MatchAccountingCustomer("Beta Farms Incorporated", customers)
		require.NotNil(t, m)
		assert.Equal(t, "2", m.ID)
	})

	t.Run("no match", func(t *testing.T) {
		assert.Nil(t, MatchAccountingCustomer("Gamma Ranch", customers))
	})

	t.Run("empty name never matches", func(t *testing.T) {
		assert.Nil(t, MatchAccountingCustomer("", customers))
	})
}

// fakes

type fakeShoeingStore struct {
	records       map[int]*models.Shoeing
	completed     []int
	completedName string
	statusUpdates map[int]string
	markErr       error
	deleted       []int
}

func newFakeShoeingStore(records ...*models.Shoeing) *fakeShoeingStore {
	m := make(map[int]*models.Shoeing)
	for _, sh := range records {
		m[sh.ID] = sh
	}
	return &fakeShoeingStore{records: m, statusUpdates: make(map[int]string)}
}

func (f *fakeShoeingStore) Get(_ context.Context, id int) (*models.Shoeing, error) {
	sh, ok := f.records[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return sh, nil
}

func (f *fakeShoeingStore) ListByStatus(_ context.Context, status string) ([]*models.Shoeing, error) {
	var out []*models.Shoeing
	for _, sh := range f.records {
		if sh.Status == status {
			out = append(out, sh)
		}
	}
	return out, nil
}

func (f *fakeShoeingStore) ListForHorse(_ context.Context, horseID int) ([]*models.Shoeing, error) {
	var out []*models.Shoeing
	for _, sh := range f.records {
		if sh.HorseID != nil && *sh.HorseID == horseID {
			out = append(out, sh)
		}
	}
	return out, nil
}

func (f *fakeShoeingStore) ListForIdentifier(_ context.Context, identifier string) ([]*models.Shoeing, error) {
	var out []*models.Shoeing
	for _, sh := range f.records {
		if sh.HorseID == nil && sh.HorseIdentifier == identifier {
			out = append(out, sh)
		}
	}
	return out, nil
}

func (f *fakeShoeingStore) MarkCompleted(_ context.Context, ids []int, invoiceNumber, customerName string, sentAt time.Time) error {
	if f.markErr != nil {
		return f.markErr
	}
	for _, id := range ids {
		sh := f.records[id]
		sh.Status = models.ShoeingStatusCompleted
		sh.InvoiceNumber = &invoiceNumber
		sh.CustomerName = &customerName
		sh.DateSent = &sentAt
	}
	f.completed = append(f.completed, ids...)
	f.completedName = customerName
	return nil
}

func (f *fakeShoeingStore) UpdateStatus(_ context.Context, id int, status string) error {
	f.records[id].Status = status
	f.statusUpdates[id] = status
	return nil
}

func (f *fakeShoeingStore) SetNewHorseFlag(_ context.Context, id int, isNew bool) error {
	f.records[id].IsNewHorse = isNew
	return nil
}

func (f *fakeShoeingStore) Edit(_ context.Context, id int, date *time.Time, description, location, totalCost, shoeNotes, frontAddOns, hindAddOns string) error {
	sh := f.records[id]
	sh.DateOfService = date
	sh.Description = description
	sh.Location = location
	sh.TotalCost = totalCost
	sh.ShoeNotes = shoeNotes
	sh.FrontAddOns = frontAddOns
	sh.HindAddOns = hindAddOns
	return nil
}

func (f *fakeShoeingStore) Delete(_ context.Context, id int) error {
	delete(f.records, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeLinkStore struct {
	linked  map[int][]*models.Customer
	created [][2]int
}

func (f *fakeLinkStore) CustomersForHorse(_ context.Context, horseID int) ([]*models.Customer, error) {
	return f.linked[horseID], nil
}

// CreateIfAbsent mirrors the idempotent ON CONFLICT DO NOTHING insert of the
// real repository: repeat pairs leave the store unchanged.
func (f *fakeLinkStore) CreateIfAbsent(_ context.Context, customerID, horseID int) error {
	pair := [2]int{customerID, horseID}
	for _, existing := range f.created {
		if existing == pair {
			return nil
		}
	}
	f.created = append(f.created, pair)
	return nil
}

type fakeNotifier struct {
	sent []*models.Notification
	err  error
}

func (f *fakeNotifier) Notify(_ context.Context, n *models.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, n)
	return nil
}

type fakeCustomerStore struct {
	byName map[string]*models.Customer
}

func (f *fakeCustomerStore) GetByDisplayName(_ context.Context, name string) (*models.Customer, error) {
	c, ok := f.byName[name]
	if !ok {
		return nil, errors.New("not found")
	}
	return c, nil
}

type fakeHorseStore struct {
	statuses map[int]string
}

func (f *fakeHorseStore) UpdateStatus(_ context.Context, id int, status string) error {
	if f.statuses == nil {
		f.statuses = make(map[int]string)
	}
	f.statuses[id] = status
	return nil
}

type fakeInvoiceClient struct {
	invoice   *models.AccountingInvoice
	customers []*models.AccountingCustomer
	err       error
	calls     int
	lastCount int
}

func (f *fakeInvoiceClient) CreateInvoice(_ context.Context, _ int, shoeings []*models.Shoeing, _ string) (*models.AccountingInvoice, error) {
	f.calls++
	f.lastCount = len(shoeings)
	if f.err != nil {
		return nil, f.err
	}
	return f.invoice, nil
}

func (f *fakeInvoiceClient) GetCustomers(_ context.Context, _ int) ([]*models.AccountingCustomer, error) {
	return f.customers, nil
}

func TestAcceptAllMarksEveryRecord(t *testing.T) {
	store := newFakeShoeingStore(
		pendingShoeing(1, intPtr(7), "Star - [North Barn]", nil),
		pendingShoeing(2, intPtr(7), "Star - [North Barn]", nil),
		pendingShoeing(3, intPtr(8), "Moon - [South Barn]", nil),
	)
	links := &fakeLinkStore{}
	invoicer := &fakeInvoiceClient{
		invoice: &models.AccountingInvoice{DocNumber: "1042", CustomerName: "Acme Stables"},
	}
	customers := &fakeCustomerStore{byName: map[string]*models.Customer{
		"Acme Stables": {ID: 10, DisplayName: "Acme Stables"},
	}}

	svc := NewApprovalService(store, links, customers, &fakeHorseStore{}, invoicer, nil)

	invoice, err := svc.AcceptAll(context.Background(), 1, []int{1, 2, 3}, "q-55")
	require.NoError(t, err)
	assert.Equal(t, "1042", invoice.DocNumber)

	// One provider call with one line per record
	assert.Equal(t, 1, invoicer.calls)
	assert.Equal(t, 3, invoicer.lastCount)

	assert.ElementsMatch(t, []int{1, 2, 3}, store.completed)
	assert.Equal(t, "Acme Stables", store.completedName)
	for _, id := range []int{1, 2, 3} {
		assert.Equal(t, models.ShoeingStatusCompleted, store.records[id].Status)
	}

	// Links established for both horses against the matched local customer
	assert.ElementsMatch(t, [][2]int{{10, 7}, {10, 8}}, links.created)
}

func TestAcceptAllProviderFailureLeavesRecordsPending(t *testing.T) {
	store := newFakeShoeingStore(
		pendingShoeing(1, intPtr(7), "Star - [North Barn]", nil),
		pendingShoeing(2, intPtr(7), "Star - [North Barn]", nil),
	)
	invoicer := &fakeInvoiceClient{err: errors.New("Invoice line is invalid")}

	svc := NewApprovalService(store, &fakeLinkStore{}, &fakeCustomerStore{}, &fakeHorseStore{}, invoicer, nil)

	_, err := svc.AcceptAll(context.Background(), 1, []int{1, 2}, "q-55")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invoice line is invalid")

	assert.Empty(t, store.completed)
	assert.Equal(t, models.ShoeingStatusPending, store.records[1].Status)
	assert.Equal(t, models.ShoeingStatusPending, store.records[2].Status)
}

func TestAcceptAllRefusesNonPending(t *testing.T) {
	done := pendingShoeing(2, intPtr(7), "", nil)
	done.Status = models.ShoeingStatusCompleted
	store := newFakeShoeingStore(pendingShoeing(1, intPtr(7), "", nil), done)
	invoicer := &fakeInvoiceClient{invoice: &models.AccountingInvoice{DocNumber: "1"}}

	svc := NewApprovalService(store, &fakeLinkStore{}, &fakeCustomerStore{}, &fakeHorseStore{}, invoicer, nil)

	_, err := svc.AcceptAll(context.Background(), 1, []int{1, 2}, "q-55")
	require.Error(t, err)
	assert.Zero(t, invoicer.calls)
}

func TestAcceptRequiresCustomerSelection(t *testing.T) {
	store := newFakeShoeingStore(pendingShoeing(1, nil, "", nil))
	svc := NewApprovalService(store, &fakeLinkStore{}, &fakeCustomerStore{}, &fakeHorseStore{}, &fakeInvoiceClient{}, nil)

	_, err := svc.Accept(context.Background(), 1, 1, "")
	require.Error(t, err)
}

func TestRejectCancelsWithoutProviderCall(t *testing.T) {
	store := newFakeShoeingStore(pendingShoeing(1, intPtr(7), "Star - [North Barn]", nil))
	invoicer := &fakeInvoiceClient{}
	svc := NewApprovalService(store, &fakeLinkStore{}, &fakeCustomerStore{}, &fakeHorseStore{}, invoicer, nil)

	require.NoError(t, svc.Reject(context.Background(), 9, 1))
	assert.Equal(t, models.ShoeingStatusCancelled, store.records[1].Status)
	assert.Zero(t, invoicer.calls)

	// Terminal states stay terminal
	require.Error(t, svc.Reject(context.Background(), 9, 1))
}

func TestRejectNotifiesSubmitter(t *testing.T) {
	sh := pendingShoeing(1, intPtr(7), "Star - [North Barn]", nil)
	sh.UserID = intPtr(4)
	store := newFakeShoeingStore(sh)
	sink := &fakeNotifier{}
	svc := NewApprovalService(store, &fakeLinkStore{}, &fakeCustomerStore{}, &fakeHorseStore{}, &fakeInvoiceClient{}, sink)

	require.NoError(t, svc.Reject(context.Background(), 9, 1))

	// Exactly one notification, addressed to the original submitter and
	// referencing the rejected record
	require.Len(t, sink.sent, 1)
	n := sink.sent[0]
	assert.Equal(t, 4, n.UserID)
	require.NotNil(t, n.CreatorID)
	assert.Equal(t, 9, *n.CreatorID)
	require.NotNil(t, n.RelatedID)
	assert.Equal(t, 1, *n.RelatedID)
	assert.Equal(t, models.NotificationTypeRejected, n.Type)
	assert.Contains(t, n.Message, "Star - [North Barn]")
}

func TestEditNormalizesCostAndKeepsStatus(t *testing.T) {
	sh := pendingShoeing(1, intPtr(7), "Star - [North Barn]", nil)
	store := newFakeShoeingStore(sh)
	svc := NewApprovalService(store, &fakeLinkStore{}, &fakeCustomerStore{}, &fakeHorseStore{}, &fakeInvoiceClient{}, nil)

	err := svc.Edit(context.Background(), 1, &models.EditShoeingRequest{
		DateOfService: "2026-08-15",
		Description:   "Full set",
		TotalCost:     "$1,250.50",
	})
	require.NoError(t, err)

	assert.Equal(t, "1250.50", sh.TotalCost)
	assert.Equal(t, models.ShoeingStatusPending, sh.Status)
	require.NotNil(t, sh.DateOfService)
	assert.Equal(t, "2026-08-15", sh.DateOfService.Format("2006-01-02"))
}

func TestEditRejectsBadInput(t *testing.T) {
	store := newFakeShoeingStore(pendingShoeing(1, nil, "", nil))
	svc := NewApprovalService(store, &fakeLinkStore{}, &fakeCustomerStore{}, &fakeHorseStore{}, &fakeInvoiceClient{}, nil)

	err := svc.Edit(context.Background(), 1, &models.EditShoeingRequest{DateOfService: "15/08/2026"})
	require.Error(t, err)

	err = svc.Edit(context.Background(), 1, &models.EditShoeingRequest{TotalCost: "a lot"})
	require.Error(t, err)
}

func TestAcceptHorseClearsFlagAndAcceptsHorse(t *testing.T) {
	sh := pendingShoeing(1, intPtr(7), "Star - [North Barn]", nil)
	sh.IsNewHorse = true
	store := newFakeShoeingStore(sh)
	horses := &fakeHorseStore{}
	svc := NewApprovalService(store, &fakeLinkStore{}, &fakeCustomerStore{}, horses, &fakeInvoiceClient{}, nil)

	require.NoError(t, svc.AcceptHorse(context.Background(), 1))
	assert.False(t, sh.IsNewHorse)
	assert.Equal(t, models.HorseStatusAccepted, horses.statuses[7])

	// The record itself stays pending for the normal approval flow
	assert.Equal(t, models.ShoeingStatusPending, sh.Status)
}

func TestRejectHorseRejectsRecord(t *testing.T) {
	sh := pendingShoeing(1, intPtr(7), "Star - [North Barn]", nil)
	sh.IsNewHorse = true
	store := newFakeShoeingStore(sh)
	svc := NewApprovalService(store, &fakeLinkStore{}, &fakeCustomerStore{}, &fakeHorseStore{}, &fakeInvoiceClient{}, nil)

	require.NoError(t, svc.RejectHorse(context.Background(), 1))
	assert.Equal(t, models.ShoeingStatusRejected, sh.Status)
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	store := newFakeShoeingStore(pendingShoeing(1, nil, "", nil))
	svc := NewApprovalService(store, &fakeLinkStore{}, &fakeCustomerStore{}, &fakeHorseStore{}, &fakeInvoiceClient{}, nil)

	require.Error(t, svc.Delete(context.Background(), 1, false))
	assert.Empty(t, store.deleted)

	require.NoError(t, svc.Delete(context.Background(), 1, true))
	assert.Equal(t, []int{1}, store.deleted)
}

func TestPendingGroupsResolvesAccountingCustomers(t *testing.T) {
	store := newFakeShoeingStore(
		pendingShoeing(1, intPtr(7), "Star - [North Barn]", strPtr("Acme Stables")),
	)
	invoicer := &fakeInvoiceClient{
		customers: []*models.AccountingCustomer{{ID: "q-55", DisplayName: "Acme Stables LLC"}},
	}
	svc := NewApprovalService(store, &fakeLinkStore{}, &fakeCustomerStore{}, &fakeHorseStore{}, invoicer, nil)

	groups, err := svc.PendingGroups(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "q-55", groups[0].AccountingCustomerID)
}
