package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"farrier-backend/internal/cache"
	"farrier-backend/internal/metrics"
	"farrier-backend/internal/models"
	"farrier-backend/pkg/money"
)

// NoCustomerGroup is the reserved key for pending records whose customer
// could not be determined.
const NoCustomerGroup = "no-customer"

// ShoeingGroup is one customer-keyed batch of pending records. The accounting
// customer id is a pre-populated suggestion; nothing submits without an
// explicit accept.
type ShoeingGroup struct {
	Key                  string            `json:"key"`
	CustomerName         string            `json:"customer_name"`
	AccountingCustomerID string            `json:"accounting_customer_id,omitempty"`
	Shoeings             []*models.Shoeing `json:"shoeings"`
}

// Narrow store interfaces keep the workflow testable; the concrete
// repositories satisfy them.

type shoeingStore interface {
	Get(ctx context.Context, id int) (*models.Shoeing, error)
	ListByStatus(ctx context.Context, status string) ([]*models.Shoeing, error)
	ListForHorse(ctx context.Context, horseID int) ([]*models.Shoeing, error)
	ListForIdentifier(ctx context.Context, identifier string) ([]*models.Shoeing, error)
	MarkCompleted(ctx context.Context, ids []int, invoiceNumber, customerName string, sentAt time.Time) error
	UpdateStatus(ctx context.Context, id int, status string) error
	SetNewHorseFlag(ctx context.Context, id int, isNew bool) error
	Edit(ctx context.Context, id int, date *time.Time, description, location, totalCost, shoeNotes, frontAddOns, hindAddOns string) error
	Delete(ctx context.Context, id int) error
}

type linkStore interface {
	CustomersForHorse(ctx context.Context, horseID int) ([]*models.Customer, error)
	CreateIfAbsent(ctx context.Context, customerID, horseID int) error
}

type customerStore interface {
	GetByDisplayName(ctx context.Context, name string) (*models.Customer, error)
}

type horseStore interface {
	UpdateStatus(ctx context.Context, id int, status string) error
}

type invoiceClient interface {
	CreateInvoice(ctx context.Context, userID int, shoeings []*models.Shoeing, customerID string) (*models.AccountingInvoice, error)
	GetCustomers(ctx context.Context, userID int) ([]*models.AccountingCustomer, error)
}

// ApprovalService drives pending shoeings to a terminal state while keeping
// the store and the accounting provider consistent.
type ApprovalService struct {
	shoeings   shoeingStore
	links      linkStore
	customers  customerStore
	horses     horseStore
	accounting invoiceClient
	notifier   notifier
}

func NewApprovalService(
	shoeings shoeingStore,
	links linkStore,
	customers customerStore,
	horses horseStore,
	accounting invoiceClient,
	notifier notifier,
) *ApprovalService {
	return &ApprovalService{
		shoeings:   shoeings,
		links:      links,
		customers:  customers,
		horses:     horses,
		accounting: accounting,
		notifier:   notifier,
	}
}

// PendingGroups groups every pending record by inferred customer and, when the
// accounting customer list is reachable, pre-populates each group's suggested
// accounting customer.
func (s *ApprovalService) PendingGroups(ctx context.Context, userID int) ([]*ShoeingGroup, error) {
	pending, err := s.shoeings.ListByStatus(ctx, models.ShoeingStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending records: %w", err)
	}

	siblingsByHorse := make(map[int][]*models.Shoeing)
	siblingsByIdentifier := make(map[string][]*models.Shoeing)
	linked := make(map[int][]*models.Customer)

	for _, sh := range pending {
		if sh.HorseID != nil {
			if _, ok := siblingsByHorse[*sh.HorseID]; !ok {
				sibs, err := s.shoeings.ListForHorse(ctx, *sh.HorseID)
				if err != nil {
					return nil, fmt.Errorf("failed to load sibling records: %w", err)
				}
				siblingsByHorse[*sh.HorseID] = sibs
			}
			if _, ok := linked[*sh.HorseID]; !ok {
				customers, err := s.links.CustomersForHorse(ctx, *sh.HorseID)
				if err != nil {
					return nil, fmt.Errorf("failed to load customer links: %w", err)
				}
				linked[*sh.HorseID] = customers
			}
		} else if sh.HorseIdentifier != "" {
			if _, ok := siblingsByIdentifier[sh.HorseIdentifier]; !ok {
				sibs, err := s.shoeings.ListForIdentifier(ctx, sh.HorseIdentifier)
				if err != nil {
					return nil, fmt.Errorf("failed to load sibling records: %w", err)
				}
				siblingsByIdentifier[sh.HorseIdentifier] = sibs
			}
		}
	}

	groups := GroupShoeings(pending, siblingsByHorse, siblingsByIdentifier, linked)

	// Resolution is best-effort: an unreachable provider leaves the groups
	// unresolved rather than failing the whole screen.
	customers, err := s.accounting.GetCustomers(ctx, userID)
	if err != nil {
		log.Printf("[Approval] Customer resolution skipped: %v", err)
		return groups, nil
	}
	for _, g := range groups {
		if g.Key == NoCustomerGroup {
			continue
		}
		if match := MatchAccountingCustomer(g.CustomerName, customers); match != nil {
			g.AccountingCustomerID = match.ID
		}
	}
	return groups, nil
}

// GroupShoeings partitions pending records into customer groups:
//  1. an explicit customer name on the record always wins;
//  2. otherwise the most frequent customer name among the horse's sibling
//     records (first name to reach the max count wins ties);
//  3. otherwise the record lands in the reserved no-customer group;
//  4. a second pass moves no-customer records whose horse has exactly one
//     linked customer, stamping the inferred name in memory only.
func GroupShoeings(
	pending []*models.Shoeing,
	siblingsByHorse map[int][]*models.Shoeing,
	siblingsByIdentifier map[string][]*models.Shoeing,
	linked map[int][]*models.Customer,
) []*ShoeingGroup {
	groups := make(map[string]*ShoeingGroup)
	var order []string

	add := func(key, name string, sh *models.Shoeing) {
		g, ok := groups[key]
		if !ok {
			g = &ShoeingGroup{Key: key, CustomerName: name}
			groups[key] = g
			order = append(order, key)
		}
		g.Shoeings = append(g.Shoeings, sh)
	}

	for _, sh := range pending {
		if sh.CustomerName != nil && *sh.CustomerName != "" {
			add(*sh.CustomerName, *sh.CustomerName, sh)
			continue
		}

		var siblings []*models.Shoeing
		if sh.HorseID != nil {
			siblings = siblingsByHorse[*sh.HorseID]
		} else if sh.HorseIdentifier != "" {
			siblings = siblingsByIdentifier[sh.HorseIdentifier]
		}

		if name, ok := modeCustomerName(siblings); ok {
			add(name, name, sh)
		} else {
			add(NoCustomerGroup, "", sh)
		}
	}

	// Second pass: single-link inference for records still without a customer
	if g, ok := groups[NoCustomerGroup]; ok {
		var remaining []*models.Shoeing
		for _, sh := range g.Shoeings {
			if sh.HorseID != nil {
				if customers := linked[*sh.HorseID]; len(customers) == 1 {
					name := customers[0].DisplayName
					sh.CustomerName = &name
					add(name, name, sh)
					continue
				}
			}
			remaining = append(remaining, sh)
		}
		if len(remaining) == 0 {
			delete(groups, NoCustomerGroup)
			for i, key := range order {
				if key == NoCustomerGroup {
					order = append(order[:i], order[i+1:]...)
					break
				}
			}
		} else {
			g.Shoeings = remaining
		}
	}

	result := make([]*ShoeingGroup, 0, len(order))
	for _, key := range order {
		result = append(result, groups[key])
	}
	return result
}

// modeCustomerName returns the most frequent customer name among siblings.
// Only a strictly greater count replaces the current best, so the first name
// to reach the max count wins ties.
func modeCustomerName(siblings []*models.Shoeing) (string, bool) {
	counts := make(map[string]int)
	best := ""
	bestCount := 0
	for _, sib := range siblings {
		if sib.CustomerName == nil || *sib.CustomerName == "" {
			continue
		}
		counts[*sib.CustomerName]++
		if counts[*sib.CustomerName] > bestCount {
			best = *sib.CustomerName
			bestCount = counts[*sib.CustomerName]
		}
	}
	return best, bestCount > 0
}

// MatchAccountingCustomer resolves a display name against the provider's
// customer list: case-insensitive exact match first, then case-insensitive
// substring in either direction. First match wins.
func MatchAccountingCustomer(name string, customers []*models.AccountingCustomer) *models.AccountingCustomer {
	if name == "" {
		return nil
	}
	lower := strings.ToLower(name)

	for _, c := range customers {
		if strings.ToLower(c.DisplayName) == lower {
			return c
		}
	}
	for _, c := range customers {
		if c.DisplayName == "" {
			continue
		}
		cl := strings.ToLower(c.DisplayName)
		if strings.Contains(cl, lower) || strings.Contains(lower, cl) {
			return c
		}
	}
	return nil
}

// Accept invoices a single pending record and marks it completed. A provider
// failure leaves the record untouched and surfaces the provider's message.
func (s *ApprovalService) Accept(ctx context.Context, userID, shoeingID int, accountingCustomerID string) (*models.AccountingInvoice, error) {
	if accountingCustomerID == "" {
		return nil, fmt.Errorf("an accounting customer must be selected")
	}

	sh, err := s.shoeings.Get(ctx, shoeingID)
	if err != nil {
		return nil, fmt.Errorf("record not found")
	}
	if sh.Status != models.ShoeingStatusPending {
		return nil, fmt.Errorf("record is not pending")
	}

	invoice, err := s.accounting.CreateInvoice(ctx, userID, []*models.Shoeing{sh}, accountingCustomerID)
	if err != nil {
		return nil, err
	}

	if err := s.finalizeAccepted(ctx, []*models.Shoeing{sh}, invoice); err != nil {
		return nil, err
	}
	metrics.ApprovalActions.WithLabelValues("accept").Inc()
	return invoice, nil
}

// AcceptAll invoices every record in a group in one provider call with one
// line item per record. The local commit is a single transaction: either all
// records move to completed with the same invoice number, or none do.
func (s *ApprovalService) AcceptAll(ctx context.Context, userID int, shoeingIDs []int, accountingCustomerID string) (*models.AccountingInvoice, error) {
	if accountingCustomerID == "" {
		return nil, fmt.Errorf("an accounting customer must be selected")
	}
	if len(shoeingIDs) == 0 {
		return nil, fmt.Errorf("no records selected")
	}

	shoeings := make([]*models.Shoeing, 0, len(shoeingIDs))
	for _, id := range shoeingIDs {
		sh, err := s.shoeings.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("record %d not found", id)
		}
		if sh.Status != models.ShoeingStatusPending {
			return nil, fmt.Errorf("record %d is not pending", id)
		}
		shoeings = append(shoeings, sh)
	}

	invoice, err := s.accounting.CreateInvoice(ctx, userID, shoeings, accountingCustomerID)
	if err != nil {
		return nil, err
	}

	if err := s.finalizeAccepted(ctx, shoeings, invoice); err != nil {
		return nil, err
	}
	metrics.ApprovalActions.WithLabelValues("accept_all").Inc()
	return invoice, nil
}

func (s *ApprovalService) finalizeAccepted(ctx context.Context, shoeings []*models.Shoeing, invoice *models.AccountingInvoice) error {
	customerName := invoice.CustomerName
	if customerName == "" && shoeings[0].CustomerName != nil {
		customerName = *shoeings[0].CustomerName
	}

	ids := make([]int, 0, len(shoeings))
	for _, sh := range shoeings {
		ids = append(ids, sh.ID)
	}

	if err := s.shoeings.MarkCompleted(ctx, ids, invoice.DocNumber, customerName, time.Now()); err != nil {
		return fmt.Errorf("invoice %s created but records could not be updated: %w", invoice.DocNumber, err)
	}

	// Establish the customer-horse link when a matching local customer exists.
	// The insert is idempotent.
	if customerName != "" {
		if customer, err := s.customers.GetByDisplayName(ctx, customerName); err == nil {
			for _, sh := range shoeings {
				if sh.HorseID == nil {
					continue
				}
				if err := s.links.CreateIfAbsent(ctx, customer.ID, *sh.HorseID); err != nil {
					log.Printf("[Approval] Failed to link customer %d to horse %d: %v", customer.ID, *sh.HorseID, err)
				}
			}
		}
	}

	cache.InvalidateShoeingCaches(ctx)
	return nil
}

// Reject cancels a pending record and notifies the original submitter. No
// external call is made.
func (s *ApprovalService) Reject(ctx context.Context, adminID, shoeingID int) error {
	sh, err := s.shoeings.Get(ctx, shoeingID)
	if err != nil {
		return fmt.Errorf("record not found")
	}
	if sh.Status != models.ShoeingStatusPending {
		return fmt.Errorf("record is not pending")
	}

	if err := s.shoeings.UpdateStatus(ctx, shoeingID, models.ShoeingStatusCancelled); err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}

	if sh.UserID != nil && s.notifier != nil {
		horse := sh.HorseIdentifier
		if horse == "" {
			horse = "your horse"
		}
		if err := s.notifier.Notify(ctx, &models.Notification{
			UserID:    *sh.UserID,
			CreatorID: &adminID,
			Message:   fmt.Sprintf("Your shoeing record for %s was rejected", horse),
			Type:      models.NotificationTypeRejected,
			RelatedID: &sh.ID,
		}); err != nil {
			log.Printf("[Approval] Failed to notify submitter of rejection: %v", err)
		}
	}

	metrics.ApprovalActions.WithLabelValues("reject").Inc()
	cache.InvalidateShoeingCaches(ctx)
	return nil
}

// Edit mutates the editable fields of a pending record without changing its
// status. The total cost is normalized so a "$" prefix never persists.
func (s *ApprovalService) Edit(ctx context.Context, shoeingID int, req *models.EditShoeingRequest) error {
	sh, err := s.shoeings.Get(ctx, shoeingID)
	if err != nil {
		return fmt.Errorf("record not found")
	}
	if sh.Status != models.ShoeingStatusPending {
		return fmt.Errorf("record is not pending")
	}

	date, totalCost, err := normalizeEdit(sh, req)
	if err != nil {
		return err
	}

	if err := s.shoeings.Edit(ctx, shoeingID, date, req.Description, req.Location,
		totalCost, req.ShoeNotes, req.FrontAddOns, req.HindAddOns); err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}

	metrics.ApprovalActions.WithLabelValues("edit").Inc()
	cache.InvalidateShoeingCaches(ctx)
	return nil
}

// normalizeEdit validates the request against the current record: an empty
// date keeps the stored one, and the total cost is stripped of currency
// formatting before it persists.
func normalizeEdit(sh *models.Shoeing, req *models.EditShoeingRequest) (*time.Time, string, error) {
	date := sh.DateOfService
	if req.DateOfService != "" {
		parsed, err := time.Parse("2006-01-02", req.DateOfService)
		if err != nil {
			return nil, "", fmt.Errorf("invalid date of service: %s", req.DateOfService)
		}
		date = &parsed
	}

	totalCost := sh.TotalCost
	if req.TotalCost != "" {
		normalized, err := money.Normalize(req.TotalCost)
		if err != nil {
			return nil, "", fmt.Errorf("invalid total cost: %s", req.TotalCost)
		}
		totalCost = normalized
	}
	return date, totalCost, nil
}

// AcceptHorse marks a newly created horse as reviewed: the originating
// record's flag clears and the horse becomes accepted. Independent of the
// record's own status.
func (s *ApprovalService) AcceptHorse(ctx context.Context, shoeingID int) error {
	sh, err := s.shoeings.Get(ctx, shoeingID)
	if err != nil {
		return fmt.Errorf("record not found")
	}
	if !sh.IsNewHorse {
		return fmt.Errorf("record does not reference a new horse")
	}

	if err := s.shoeings.SetNewHorseFlag(ctx, shoeingID, false); err != nil {
		return fmt.Errorf("failed to clear new-horse flag: %w", err)
	}
	if sh.HorseID != nil {
		if err := s.horses.UpdateStatus(ctx, *sh.HorseID, models.HorseStatusAccepted); err != nil {
			return fmt.Errorf("failed to accept horse: %w", err)
		}
	}
	metrics.ApprovalActions.WithLabelValues("accept_horse").Inc()
	return nil
}

// RejectHorse rejects the record that introduced an unreviewed horse
func (s *ApprovalService) RejectHorse(ctx context.Context, shoeingID int) error {
	sh, err := s.shoeings.Get(ctx, shoeingID)
	if err != nil {
		return fmt.Errorf("record not found")
	}
	if !sh.IsNewHorse {
		return fmt.Errorf("record does not reference a new horse")
	}

	if err := s.shoeings.UpdateStatus(ctx, shoeingID, models.ShoeingStatusRejected); err != nil {
		return fmt.Errorf("failed to reject record: %w", err)
	}
	metrics.ApprovalActions.WithLabelValues("reject_horse").Inc()
	cache.InvalidateShoeingCaches(ctx)
	return nil
}

// Delete hard-deletes a record. Irreversible, so the caller must pass the
// explicit confirmation flag.
func (s *ApprovalService) Delete(ctx context.Context, shoeingID int, confirmed bool) error {
	if !confirmed {
		return fmt.Errorf("deletion requires explicit confirmation")
	}
	if _, err := s.shoeings.Get(ctx, shoeingID); err != nil {
		return fmt.Errorf("record not found")
	}
	if err := s.shoeings.Delete(ctx, shoeingID); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	metrics.ApprovalActions.WithLabelValues("delete").Inc()
	cache.InvalidateShoeingCaches(ctx)
	return nil
}
