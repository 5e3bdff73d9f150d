package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"farrier-backend/internal/models"
)

type ShoeingRepository struct {
	DB *pgxpool.Pool
}

func NewShoeingRepository(db *pgxpool.Pool) *ShoeingRepository {
	return &ShoeingRepository{DB: db}
}

const shoeingColumns = `id, horse_id, COALESCE(horse_identifier, '') as horse_identifier, user_id,
	date_of_service, COALESCE(location, '') as location,
	COALESCE(base_service, '') as base_service, COALESCE(front_add_ons, '') as front_add_ons,
	COALESCE(hind_add_ons, '') as hind_add_ons, COALESCE(base_service_cost, '') as base_service_cost,
	COALESCE(front_add_ons_cost, '') as front_add_ons_cost, COALESCE(hind_add_ons_cost, '') as hind_add_ons_cost,
	COALESCE(total_cost, '') as total_cost, COALESCE(description, '') as description,
	COALESCE(shoe_notes, '') as shoe_notes, status, invoice_number, date_sent,
	is_new_horse, customer_name, created_at, updated_at`

func scanShoeing(row interface{ Scan(...any) error }) (*models.Shoeing, error) {
	var s models.Shoeing
	err := row.Scan(&s.ID, &s.HorseID, &s.HorseIdentifier, &s.UserID,
		&s.DateOfService, &s.Location, &s.BaseService, &s.FrontAddOns,
		&s.HindAddOns, &s.BaseServiceCost, &s.FrontAddOnsCost, &s.HindAddOnsCost,
		&s.TotalCost, &s.Description, &s.ShoeNotes, &s.Status, &s.InvoiceNumber,
		&s.DateSent, &s.IsNewHorse, &s.CustomerName, &s.CreatedAt, &s.UpdatedAt)
	return &s, err
}

func collectShoeings(rows pgx.Rows) ([]*models.Shoeing, error) {
	defer rows.Close()
	var shoeings []*models.Shoeing
	for rows.Next() {
		s, err := scanShoeing(rows)
		if err != nil {
			return nil, err
		}
		shoeings = append(shoeings, s)
	}
	return shoeings, rows.Err()
}

func (r *ShoeingRepository) Create(ctx context.Context, s *models.Shoeing) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO shoeings(horse_id, horse_identifier, user_id, date_of_service, location,
            base_service, front_add_ons, hind_add_ons, base_service_cost, front_add_ons_cost,
            hind_add_ons_cost, total_cost, description, shoe_notes, status, is_new_horse, customer_name)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
         RETURNING id, created_at, updated_at`,
		s.HorseID, s.HorseIdentifier, s.UserID, s.DateOfService, s.Location,
		s.BaseService, s.FrontAddOns, s.HindAddOns, s.BaseServiceCost, s.FrontAddOnsCost,
		s.HindAddOnsCost, s.TotalCost, s.Description, s.ShoeNotes, s.Status, s.IsNewHorse, s.CustomerName,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func (r *ShoeingRepository) Get(ctx context.Context, id int) (*models.Shoeing, error) {
	return scanShoeing(r.DB.QueryRow(ctx,
		`SELECT `+shoeingColumns+` FROM shoeings WHERE id=$1`, id))
}

func (r *ShoeingRepository) List(ctx context.Context, limit, offset int) ([]*models.Shoeing, int, error) {
	var total int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM shoeings`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.DB.Query(ctx,
		`SELECT `+shoeingColumns+` FROM shoeings
         ORDER BY date_of_service DESC NULLS LAST, id DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	shoeings, err := collectShoeings(rows)
	return shoeings, total, err
}

// Search runs the OR-combined ILIKE substring filter backing the search box
func (r *ShoeingRepository) Search(ctx context.Context, term string, limit, offset int) ([]*models.Shoeing, error) {
	pattern := "%" + term + "%"
	rows, err := r.DB.Query(ctx,
		`SELECT `+shoeingColumns+` FROM shoeings
         WHERE horse_identifier ILIKE $1 OR location ILIKE $1 OR description ILIKE $1
            OR customer_name ILIKE $1
         ORDER BY date_of_service DESC NULLS LAST LIMIT $2 OFFSET $3`,
		pattern, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectShoeings(rows)
}

func (r *ShoeingRepository) ListByStatus(ctx context.Context, status string) ([]*models.Shoeing, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+shoeingColumns+` FROM shoeings WHERE status=$1 ORDER BY id`,
		status)
	if err != nil {
		return nil, err
	}
	return collectShoeings(rows)
}

// ListForHorse returns every shoeing sharing a stable horse id, regardless
// of status. This is the sibling set used for customer inference.
func (r *ShoeingRepository) ListForHorse(ctx context.Context, horseID int) ([]*models.Shoeing, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+shoeingColumns+` FROM shoeings WHERE horse_id=$1 ORDER BY id`,
		horseID)
	if err != nil {
		return nil, err
	}
	return collectShoeings(rows)
}

// ListForIdentifier is the legacy sibling lookup for rows that predate stable
// horse ids and only carry the "Name - [Barn]" composite.
func (r *ShoeingRepository) ListForIdentifier(ctx context.Context, identifier string) ([]*models.Shoeing, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+shoeingColumns+` FROM shoeings WHERE horse_id IS NULL AND horse_identifier=$1 ORDER BY id`,
		identifier)
	if err != nil {
		return nil, err
	}
	return collectShoeings(rows)
}

// Edit mutates the admin-editable fields and nothing else; status is untouched
func (r *ShoeingRepository) Edit(ctx context.Context, id int, date *time.Time, description, location, totalCost, shoeNotes, frontAddOns, hindAddOns string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE shoeings SET date_of_service=$1, description=$2, location=$3, total_cost=$4,
            shoe_notes=$5, front_add_ons=$6, hind_add_ons=$7, updated_at=CURRENT_TIMESTAMP
         WHERE id=$8`,
		date, description, location, totalCost, shoeNotes, frontAddOns, hindAddOns, id)
	return err
}

func (r *ShoeingRepository) UpdateStatus(ctx context.Context, id int, status string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE shoeings SET status=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2`,
		status, id)
	return err
}

// MarkCompleted stamps the invoice reference onto every listed record inside
// one transaction. Either all records move to completed or none do.
func (r *ShoeingRepository) MarkCompleted(ctx context.Context, ids []int, invoiceNumber, customerName string, sentAt time.Time) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, id := range ids {
		if _, err := tx.Exec(ctx,
			`UPDATE shoeings SET status=$1, invoice_number=$2, customer_name=$3,
                date_sent=$4, updated_at=CURRENT_TIMESTAMP
             WHERE id=$5 AND status=$6`,
			models.ShoeingStatusCompleted, invoiceNumber, customerName,
			sentAt, id, models.ShoeingStatusPending); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *ShoeingRepository) SetNewHorseFlag(ctx context.Context, id int, isNew bool) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE shoeings SET is_new_horse=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2`,
		isNew, id)
	return err
}

func (r *ShoeingRepository) Delete(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM shoeings WHERE id=$1`, id)
	return err
}
