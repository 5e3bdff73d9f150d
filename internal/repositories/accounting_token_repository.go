package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"farrier-backend/internal/models"
)

type AccountingTokenRepository struct {
	DB *pgxpool.Pool
}

func NewAccountingTokenRepository(db *pgxpool.Pool) *AccountingTokenRepository {
	return &AccountingTokenRepository{DB: db}
}

func (r *AccountingTokenRepository) Get(ctx context.Context, userID int) (*models.AccountingToken, error) {
	var t models.AccountingToken
	err := r.DB.QueryRow(ctx,
		`SELECT user_id, access_token, refresh_token, expires_at, realm_id, connected, updated_at
         FROM accounting_tokens WHERE user_id=$1`, userID,
	).Scan(&t.UserID, &t.AccessToken, &t.RefreshToken, &t.ExpiresAt, &t.RealmID, &t.Connected, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *AccountingTokenRepository) Upsert(ctx context.Context, t *models.AccountingToken) error {
	_, err := r.DB.Exec(ctx,
		`INSERT INTO accounting_tokens(user_id, access_token, refresh_token, expires_at, realm_id, connected, updated_at)
         VALUES($1, $2, $3, $4, $5, true, CURRENT_TIMESTAMP)
         ON CONFLICT (user_id) DO UPDATE SET
            access_token=EXCLUDED.access_token,
            refresh_token=EXCLUDED.refresh_token,
            expires_at=EXCLUDED.expires_at,
            realm_id=EXCLUDED.realm_id,
            connected=true,
            updated_at=CURRENT_TIMESTAMP`,
		t.UserID, t.AccessToken, t.RefreshToken, t.ExpiresAt, t.RealmID)
	return err
}

// SetConnected flips the connection flag; a failed refresh marks the
// integration disconnected until the user re-authorizes.
func (r *AccountingTokenRepository) SetConnected(ctx context.Context, userID int, connected bool) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE accounting_tokens SET connected=$1, updated_at=CURRENT_TIMESTAMP WHERE user_id=$2`,
		connected, userID)
	return err
}

// ListExpiring returns connected tokens expiring before the cutoff, for the
// background refresh job.
func (r *AccountingTokenRepository) ListExpiring(ctx context.Context, cutoff time.Time) ([]*models.AccountingToken, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT user_id, access_token, refresh_token, expires_at, realm_id, connected, updated_at
         FROM accounting_tokens WHERE connected AND expires_at < $1`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []*models.AccountingToken
	for rows.Next() {
		var t models.AccountingToken
		if err := rows.Scan(&t.UserID, &t.AccessToken, &t.RefreshToken, &t.ExpiresAt,
			&t.RealmID, &t.Connected, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tokens = append(tokens, &t)
	}
	return tokens, rows.Err()
}

func (r *AccountingTokenRepository) Delete(ctx context.Context, userID int) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM accounting_tokens WHERE user_id=$1`, userID)
	return err
}
