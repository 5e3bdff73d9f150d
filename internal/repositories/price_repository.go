package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"farrier-backend/internal/models"
)

// PriceRepository covers both reference tables: locations and per-location prices
type PriceRepository struct {
	DB *pgxpool.Pool
}

func NewPriceRepository(db *pgxpool.Pool) *PriceRepository {
	return &PriceRepository{DB: db}
}

func (r *PriceRepository) ListLocations(ctx context.Context) ([]*models.Location, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, name, color FROM locations ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []*models.Location
	for rows.Next() {
		var l models.Location
		if err := rows.Scan(&l.ID, &l.Name, &l.Color); err != nil {
			return nil, err
		}
		locations = append(locations, &l)
	}
	return locations, rows.Err()
}

func (r *PriceRepository) CreateLocation(ctx context.Context, l *models.Location) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO locations(name, color) VALUES($1, $2) RETURNING id`,
		l.Name, l.Color).Scan(&l.ID)
}

func (r *PriceRepository) ListPrices(ctx context.Context) ([]*models.Price, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, product, location_id, amount FROM prices ORDER BY product`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prices []*models.Price
	for rows.Next() {
		var p models.Price
		if err := rows.Scan(&p.ID, &p.Product, &p.LocationID, &p.Amount); err != nil {
			return nil, err
		}
		prices = append(prices, &p)
	}
	return prices, rows.Err()
}

// UpsertPrice sets the amount for a product at a location
func (r *PriceRepository) UpsertPrice(ctx context.Context, p *models.Price) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO prices(product, location_id, amount) VALUES($1, $2, $3)
         ON CONFLICT (product, location_id) DO UPDATE SET amount=EXCLUDED.amount
         RETURNING id`,
		p.Product, p.LocationID, p.Amount).Scan(&p.ID)
}

// PriceFor looks up the price of a product at a named location
func (r *PriceRepository) PriceFor(ctx context.Context, product, locationName string) (float64, error) {
	var amount float64
	err := r.DB.QueryRow(ctx,
		`SELECT p.amount FROM prices p
         JOIN locations l ON l.id = p.location_id
         WHERE p.product=$1 AND LOWER(l.name)=LOWER($2)`,
		product, locationName).Scan(&amount)
	return amount, err
}
