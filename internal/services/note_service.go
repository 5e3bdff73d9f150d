package services

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"farrier-backend/internal/models"
)

// mentionRe matches inline mention tokens of the form @[displayName](entityId)
var mentionRe = regexp.MustCompile(`@\[([^\]]+)\]\(([^)]+)\)`)

// emphasisRe matches the emphasis wrapping used in notification messages
var emphasisRe = regexp.MustCompile(`<strong>([^<]+)</strong>`)

// StripMentionMarkup rewrites raw mention tokens to plain "@displayName".
// Raw markup must never reach a persisted notification message or an invoice
// description.
func StripMentionMarkup(content string) string {
	return mentionRe.ReplaceAllString(content, "@$1")
}

// Mention is one extracted token
type Mention struct {
	DisplayName string
	EntityID    string
}

// ExtractMentions returns every mention token in order of appearance
func ExtractMentions(content string) []Mention {
	matches := mentionRe.FindAllStringSubmatch(content, -1)
	mentions := make([]Mention, 0, len(matches))
	for _, m := range matches {
		mentions = append(mentions, Mention{DisplayName: m[1], EntityID: m[2]})
	}
	return mentions
}

// EmphasizeMentions rewrites mention tokens to emphasis-wrapped display names,
// the form stored in notification messages.
func EmphasizeMentions(content string) string {
	return mentionRe.ReplaceAllString(content, "<strong>$1</strong>")
}

// BoldOnlyHorse re-renders an emphasized message for a horse-specific context:
// only the name matching the current horse stays bold, every other emphasis is
// unwrapped.
func BoldOnlyHorse(message, horseName string) string {
	return emphasisRe.ReplaceAllStringFunc(message, func(m string) string {
		name := emphasisRe.FindStringSubmatch(m)[1]
		if name == horseName {
			return m
		}
		return name
	})
}

// RenderForHorse bolds the plain @mention of one horse inside stored note
// content. Used on the horse detail page, where only that horse's own name is
// highlighted.
func RenderForHorse(content, horseName string) string {
	if horseName == "" {
		return content
	}
	return strings.ReplaceAll(content, "@"+horseName, "<strong>@"+horseName+"</strong>")
}

type noteStore interface {
	Create(ctx context.Context, n *models.Note) error
	List(ctx context.Context, limit, offset int) ([]*models.Note, error)
}

type userLookup interface {
	Get(ctx context.Context, id int) (*models.User, error)
}

type NoteService struct {
	noteRepo noteStore
	userRepo userLookup
	notifier notifier
}

func NewNoteService(noteRepo noteStore, userRepo userLookup, notifier notifier) *NoteService {
	return &NoteService{
		noteRepo: noteRepo,
		userRepo: userRepo,
		notifier: notifier,
	}
}

// CreateNote persists the note with mention markup stripped, then creates one
// notification per distinct mentioned user. Mentions that reference horses
// (ids that resolve to no user) produce no notification.
func (s *NoteService) CreateNote(ctx context.Context, authorID int, req *models.CreateNoteRequest) (*models.Note, error) {
	if req.Content == "" {
		return nil, fmt.Errorf("note content is required")
	}

	mentions := ExtractMentions(req.Content)

	note := &models.Note{
		UserID:  authorID,
		Content: StripMentionMarkup(req.Content),
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to save note: %w", err)
	}

	message := EmphasizeMentions(req.Content)

	seen := make(map[int]bool)
	for _, m := range mentions {
		userID, err := strconv.Atoi(m.EntityID)
		if err != nil || seen[userID] {
			continue
		}
		if _, err := s.userRepo.Get(ctx, userID); err != nil {
			// Not a user id; horse mentions are display-only
			continue
		}
		seen[userID] = true

		if err := s.notifier.Notify(ctx, &models.Notification{
			UserID:    userID,
			CreatorID: &authorID,
			Message:   message,
			Type:      models.NotificationTypeMention,
			RelatedID: &note.ID,
		}); err != nil {
			return nil, fmt.Errorf("failed to create mention notification: %w", err)
		}
	}

	return note, nil
}

func (s *NoteService) ListNotes(ctx context.Context, limit, offset int) ([]*models.Note, error) {
	return s.noteRepo.List(ctx, limit, offset)
}
