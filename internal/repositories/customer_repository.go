package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"farrier-backend/internal/models"
)

type CustomerRepository struct {
	DB *pgxpool.Pool
}

func NewCustomerRepository(db *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{DB: db}
}

const customerColumns = `id, display_name, COALESCE(company_name, '') as company_name,
	COALESCE(barn_trainer, '') as barn_trainer, COALESCE(email, '') as email,
	COALESCE(phone, '') as phone, COALESCE(notes, '') as notes, created_at, updated_at`

func scanCustomer(row interface{ Scan(...any) error }) (*models.Customer, error) {
	var c models.Customer
	err := row.Scan(&c.ID, &c.DisplayName, &c.CompanyName, &c.BarnTrainer,
		&c.Email, &c.Phone, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	return &c, err
}

func (r *CustomerRepository) Create(ctx context.Context, c *models.Customer) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO customers(display_name, company_name, barn_trainer, email, phone, notes)
         VALUES($1, $2, $3, $4, $5, $6)
         RETURNING id, created_at, updated_at`,
		c.DisplayName, c.CompanyName, c.BarnTrainer, c.Email, c.Phone, c.Notes,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *CustomerRepository) Get(ctx context.Context, id int) (*models.Customer, error) {
	return scanCustomer(r.DB.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id=$1`, id))
}

// GetByDisplayName matches case-insensitively. Display names are the legacy
// human-facing join key, so lookups never assume exact casing.
func (r *CustomerRepository) GetByDisplayName(ctx context.Context, name string) (*models.Customer, error) {
	return scanCustomer(r.DB.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE LOWER(display_name)=LOWER($1)`, name))
}

func (r *CustomerRepository) List(ctx context.Context, limit, offset int) ([]*models.Customer, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+customerColumns+` FROM customers ORDER BY display_name LIMIT $1 OFFSET $2`,
		limit, offset)
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

// Search runs the OR-combined ILIKE substring filter backing the search box
func (r *CustomerRepository) Search(ctx context.Context, term string, limit, offset int) ([]*models.Customer, error) {
	pattern := "%" + term + "%"
	rows, err := r.DB.Query(ctx,
		`SELECT `+customerColumns+` FROM customers
         WHERE display_name ILIKE $1 OR company_name ILIKE $1 OR barn_trainer ILIKE $1
            OR email ILIKE $1 OR phone ILIKE $1
         ORDER BY display_name LIMIT $2 OFFSET $3`,
		pattern, limit, offset)
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

func (r *CustomerRepository) Update(ctx context.Context, c *models.Customer) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE customers SET display_name=$1, company_name=$2, barn_trainer=$3,
            email=$4, phone=$5, notes=$6, updated_at=CURRENT_TIMESTAMP
         WHERE id=$7`,
		c.DisplayName, c.CompanyName, c.BarnTrainer, c.Email, c.Phone, c.Notes, c.ID)
	return err
}

func (r *CustomerRepository) Delete(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM customers WHERE id=$1`, id)
	return err
}
