package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"farrier-backend/internal/models"
)

type HorseRepository struct {
	DB *pgxpool.Pool
}

func NewHorseRepository(db *pgxpool.Pool) *HorseRepository {
	return &HorseRepository{DB: db}
}

const horseColumns = `id, name, COALESCE(barn_trainer, '') as barn_trainer,
	COALESCE(owner_email, '') as owner_email, COALESCE(owner_phone, '') as owner_phone,
	status, alert, COALESCE(alert_text, '') as alert_text,
	COALESCE(history, '') as history, created_at, updated_at`

func scanHorse(row interface{ Scan(...any) error }) (*models.Horse, error) {
	var h models.Horse
	err := row.Scan(&h.ID, &h.Name, &h.BarnTrainer, &h.OwnerEmail, &h.OwnerPhone,
		&h.Status, &h.Alert, &h.AlertText, &h.History, &h.CreatedAt, &h.UpdatedAt)
	return &h, err
}

func (r *HorseRepository) Create(ctx context.Context, h *models.Horse) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO horses(name, barn_trainer, owner_email, owner_phone, status, alert, alert_text, history)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8)
         RETURNING id, created_at, updated_at`,
		h.Name, h.BarnTrainer, h.OwnerEmail, h.OwnerPhone, h.Status, h.Alert, h.AlertText, h.History,
	).Scan(&h.ID, &h.CreatedAt, &h.UpdatedAt)
}

func (r *HorseRepository) Get(ctx context.Context, id int) (*models.Horse, error) {
	return scanHorse(r.DB.QueryRow(ctx,
		`SELECT `+horseColumns+` FROM horses WHERE id=$1`, id))
}

func (r *HorseRepository) List(ctx context.Context, limit, offset int) ([]*models.Horse, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+horseColumns+` FROM horses ORDER BY name LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectHorses(rows)
}

func (r *HorseRepository) Search(ctx context.Context, term string, limit, offset int) ([]*models.Horse, error) {
	pattern := "%" + term + "%"
	rows, err := r.DB.Query(ctx,
		`SELECT `+horseColumns+` FROM horses
         WHERE name ILIKE $1 OR barn_trainer ILIKE $1 OR owner_email ILIKE $1
         ORDER BY name LIMIT $2 OFFSET $3`,
		pattern, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectHorses(rows)
}

func collectHorses(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
}) ([]*models.Horse, error) {
	var horses []*models.Horse
	for rows.Next() {
		h, err := scanHorse(rows)
		if err != nil {
			return nil, err
		}
		horses = append(horses, h)
	}
	return horses, rows.Err()
}

func (r *HorseRepository) Update(ctx context.Context, h *models.Horse) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE horses SET name=$1, barn_trainer=$2, owner_email=$3, owner_phone=$4,
            alert=$5, alert_text=$6, history=$7, updated_at=CURRENT_TIMESTAMP
         WHERE id=$8`,
		h.Name, h.BarnTrainer, h.OwnerEmail, h.OwnerPhone, h.Alert, h.AlertText, h.History, h.ID)
	return err
}

func (r *HorseRepository) UpdateStatus(ctx context.Context, id int, status string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE horses SET status=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2`,
		status, id)
	return err
}

func (r *HorseRepository) Delete(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM horses WHERE id=$1`, id)
	return err
}
