package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farrier-backend/internal/models"
)

func TestExtractMentions(t *testing.T) {
	content := "Talked to @[Jane Doe](42) about @[Star](h-7) today"

	mentions := ExtractMentions(content)
	require.Len(t, mentions, 2)
	assert.Equal(t, "Jane Doe", mentions[0].DisplayName)
	assert.Equal(t, "42", mentions[0].EntityID)
	assert.Equal(t, "Star", mentions[1].DisplayName)
	assert.Equal(t, "h-7", mentions[1].EntityID)
}

func TestStripMentionMarkup(t *testing.T) {
	content := "Talked to @[Jane Doe](42) about @[Star](h-7) today"
	assert.Equal(t, "Talked to @Jane Doe about @Star today", StripMentionMarkup(content))

	// Plain text passes through untouched
	assert.Equal(t, "no mentions here", StripMentionMarkup("no mentions here"))
}

func TestEmphasizeMentions(t *testing.T) {
	content := "Ping @[Jane Doe](42) re @[Star](h-7)"
	assert.Equal(t, "Ping <strong>Jane Doe</strong> re <strong>Star</strong>",
		EmphasizeMentions(content))
}

func TestBoldOnlyHorse(t *testing.T) {
	message := "Ping <strong>Jane Doe</strong> re <strong>Star</strong>"

	assert.Equal(t, "Ping Jane Doe re <strong>Star</strong>",
		BoldOnlyHorse(message, "Star"))

	// No matching horse unwraps everything
	assert.Equal(t, "Ping Jane Doe re Star",
		BoldOnlyHorse(message, "Moon"))
}

func TestRenderForHorse(t *testing.T) {
	content := "Checked @Star and @Moon this morning"

	assert.Equal(t, "Checked <strong>@Star</strong> and @Moon this morning",
		RenderForHorse(content, "Star"))
	assert.Equal(t, content, RenderForHorse(content, ""))
}

type fakeNoteStore struct {
	notes []*models.Note
}

func (f *fakeNoteStore) Create(_ context.Context, n *models.Note) error {
	n.ID = len(f.notes) + 1
	f.notes = append(f.notes, n)
	return nil
}

func (f *fakeNoteStore) List(_ context.Context, _, _ int) ([]*models.Note, error) {
	return f.notes, nil
}

type fakeUserLookup struct {
	users map[int]*models.User
}

func (f *fakeUserLookup) Get(_ context.Context, id int) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return u, nil
}

func TestCreateNoteNotifiesMentionedUsers(t *testing.T) {
	notes := &fakeNoteStore{}
	users := &fakeUserLookup{users: map[int]*models.User{4: {ID: 4, FullName: "Jane Doe"}}}
	sink := &fakeNotifier{}
	svc := NewNoteService(notes, users, sink)

	note, err := svc.CreateNote(context.Background(), 2, &models.CreateNoteRequest{
		Content: "Great job @[Jane Doe](4) shoeing @[Star](17), ping @[Jane Doe](4)",
	})
	require.NoError(t, err)

	// Stored content carries plain @names, never raw markup
	assert.Equal(t, "Great job @Jane Doe shoeing @Star, ping @Jane Doe", note.Content)

	// One notification per distinct mentioned user; id 17 resolves to no
	// user (a horse mention) and produces none
	require.Len(t, sink.sent, 1)
	n := sink.sent[0]
	assert.Equal(t, 4, n.UserID)
	require.NotNil(t, n.CreatorID)
	assert.Equal(t, 2, *n.CreatorID)
	assert.Contains(t, n.Message, "<strong>Jane Doe</strong>")
	assert.NotContains(t, n.Message, "@[")
	require.NotNil(t, n.RelatedID)
	assert.Equal(t, note.ID, *n.RelatedID)
	assert.Equal(t, models.NotificationTypeMention, n.Type)
}

func TestCreateNoteRequiresContent(t *testing.T) {
	svc := NewNoteService(&fakeNoteStore{}, &fakeUserLookup{}, &fakeNotifier{})

	_, err := svc.CreateNote(context.Background(), 2, &models.CreateNoteRequest{})
	require.Error(t, err)
}
