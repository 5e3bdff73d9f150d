package models

import "time"

type Note struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateNoteRequest struct {
	Content string `json:"content"`
}

const (
	NotificationTypeMention  = "mention"
	NotificationTypeRejected = "shoeing_rejected"
)

type Notification struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	CreatorID *int      `json:"creator_id"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	RelatedID *int      `json:"related_id"`
	Read      bool      `json:"read"`
	Deleted   bool      `json:"deleted"`
	CreatedAt time.Time `json:"created_at"`
}
