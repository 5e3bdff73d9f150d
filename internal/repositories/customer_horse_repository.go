package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"farrier-backend/internal/models"
)

type CustomerHorseRepository struct {
	DB *pgxpool.Pool
}

func NewCustomerHorseRepository(db *pgxpool.Pool) *CustomerHorseRepository {
	return &CustomerHorseRepository{DB: db}
}

func (r *CustomerHorseRepository) Exists(ctx context.Context, customerID, horseID int) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM customer_horses WHERE customer_id=$1 AND horse_id=$2)`,
		customerID, horseID).Scan(&exists)
	return exists, err
}

// CreateIfAbsent inserts the link only when it does not already exist, keeping
// the relationship idempotent across repeated accepts.
func (r *CustomerHorseRepository) CreateIfAbsent(ctx context.Context, customerID, horseID int) error {
	_, err := r.DB.Exec(ctx,
		`INSERT INTO customer_horses(customer_id, horse_id) VALUES($1, $2)
         ON CONFLICT (customer_id, horse_id) DO NOTHING`,
		customerID, horseID)
	return err
}

// CustomersForHorse returns the customers linked to a horse, used by the
// approval workflow to infer a customer when sibling records carry none.
func (r *CustomerHorseRepository) CustomersForHorse(ctx context.Context, horseID int) ([]*models.Customer, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT c.id, c.display_name, COALESCE(c.company_name, ''), COALESCE(c.barn_trainer, ''),
            COALESCE(c.email, ''), COALESCE(c.phone, ''), COALESCE(c.notes, ''), c.created_at, c.updated_at
         FROM customer_horses ch
         JOIN customers c ON c.id = ch.customer_id
         WHERE ch.horse_id = $1
         ORDER BY ch.created_at`,
		horseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *CustomerHorseRepository) HorsesForCustomer(ctx context.Context, customerID int) ([]*models.Horse, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT h.id, h.name, COALESCE(h.barn_trainer, ''), COALESCE(h.owner_email, ''),
            COALESCE(h.owner_phone, ''), h.status, h.alert, COALESCE(h.alert_text, ''),
            COALESCE(h.history, ''), h.created_at, h.updated_at
         FROM customer_horses ch
         JOIN horses h ON h.id = ch.horse_id
         WHERE ch.customer_id = $1
         ORDER BY h.name`,
		customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectHorses(rows)
}

func (r *CustomerHorseRepository) Delete(ctx context.Context, customerID, horseID int) error {
	_, err := r.DB.Exec(ctx,
		`DELETE FROM customer_horses WHERE customer_id=$1 AND horse_id=$2`,
		customerID, horseID)
	return err
}
