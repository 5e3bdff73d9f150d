package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"farrier-backend/internal/models"
)

type NotificationRepository struct {
	DB *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO notifications(user_id, creator_id, message, type, related_id)
         VALUES($1, $2, $3, $4, $5)
         RETURNING id, created_at`,
		n.UserID, n.CreatorID, n.Message, n.Type, n.RelatedID,
	).Scan(&n.ID, &n.CreatedAt)
}

// ListByUser returns non-deleted notifications newest first. Soft-deleted rows
// stay in the table but never surface.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID, limit, offset int) ([]*models.Notification, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, user_id, creator_id, message, type, related_id, read, deleted, created_at
         FROM notifications
         WHERE user_id=$1 AND NOT deleted
         ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.CreatorID, &n.Message, &n.Type,
			&n.RelatedID, &n.Read, &n.Deleted, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID int) (int, error) {
	var count int
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id=$1 AND NOT read AND NOT deleted`,
		userID).Scan(&count)
	return count, err
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID int) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE notifications SET read=true WHERE id=$1 AND user_id=$2`, id, userID)
	return err
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE notifications SET read=true WHERE user_id=$1 AND NOT read`, userID)
	return err
}

// SoftDelete flags the row; notifications are never hard-deleted
func (r *NotificationRepository) SoftDelete(ctx context.Context, id, userID int) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE notifications SET deleted=true WHERE id=$1 AND user_id=$2`, id, userID)
	return err
}
