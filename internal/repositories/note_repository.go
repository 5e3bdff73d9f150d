package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"farrier-backend/internal/models"
)

type NoteRepository struct {
	DB *pgxpool.Pool
}

func NewNoteRepository(db *pgxpool.Pool) *NoteRepository {
	return &NoteRepository{DB: db}
}

func (r *NoteRepository) Create(ctx context.Context, n *models.Note) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO notes(user_id, content) VALUES($1, $2) RETURNING id, created_at`,
		n.UserID, n.Content,
	).Scan(&n.ID, &n.CreatedAt)
}

func (r *NoteRepository) Get(ctx context.Context, id int) (*models.Note, error) {
	var n models.Note
	err := r.DB.QueryRow(ctx,
		`SELECT id, user_id, content, created_at FROM notes WHERE id=$1`, id,
	).Scan(&n.ID, &n.UserID, &n.Content, &n.CreatedAt)
	return &n, err
}

func (r *NoteRepository) List(ctx context.Context, limit, offset int) ([]*models.Note, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, user_id, content, created_at FROM notes
         ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []*models.Note
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.UserID, &n.Content, &n.CreatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, &n)
	}
	return notes, rows.Err()
}
