package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farrier-backend/internal/auth"
	"farrier-backend/internal/config"
	"farrier-backend/internal/models"
)

type fakeUserStore struct {
	byID    map[int]*models.User
	byEmail map[string]*models.User
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	f := &fakeUserStore{
		byID:    make(map[int]*models.User),
		byEmail: make(map[string]*models.User),
	}
	for _, u := range users {
		f.byID[u.ID] = u
		f.byEmail[u.Email] = u
	}
	return f
}

func (f *fakeUserStore) Create(_ context.Context, u *models.User) error {
	u.ID = len(f.byID) + 1
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUserStore) Get(_ context.Context, id int) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return u, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, errors.New("not found")
	}
	return u, nil
}

func (f *fakeUserStore) List(_ context.Context) ([]*models.User, error) {
	var out []*models.User
	for _, u := range f.byID {
		out = append(out, u)
	}
	return out, nil
}

func testJWTManager() *auth.JWTManager {
	cfg := &config.Config{}
	cfg.JWT.Secret = "unit-test-secret"
	cfg.JWT.ExpirationHours = 1
	cfg.JWT.Issuer = "farrier-test"
	return auth.NewJWTManager(cfg)
}

func activeUser(t *testing.T, id int, email, password string) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	return &models.User{
		ID:           id,
		Email:        email,
		PasswordHash: hash,
		FullName:     "Jane Doe",
		Role:         "user",
		IsActive:     true,
	}
}

func TestLoginVerifiesPassword(t *testing.T) {
	store := newFakeUserStore(activeUser(t, 1, "jane@example.com", "correct horse"))
	svc := NewUserService(store, testJWTManager(), nil)

	resp, err := svc.Login(context.Background(), &models.LoginRequest{
		Email:    "Jane@Example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	require.NotNil(t, resp.User)
	assert.Equal(t, 1, resp.User.ID)

	_, err = svc.Login(context.Background(), &models.LoginRequest{
		Email:    "jane@example.com",
		Password: "wrong password",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid email or password")
}

func TestLoginRejectsDeactivatedAccount(t *testing.T) {
	user := activeUser(t, 1, "jane@example.com", "correct horse")
	user.IsActive = false
	svc := NewUserService(newFakeUserStore(user), testJWTManager(), nil)

	_, err := svc.Login(context.Background(), &models.LoginRequest{
		Email:    "jane@example.com",
		Password: "correct horse",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deactivated")
}

func TestLoginWith2FAReturnsTempToken(t *testing.T) {
	user := activeUser(t, 1, "jane@example.com", "correct horse")
	user.TOTPEnabled = true
	user.TOTPSecret = "SECRET"
	svc := NewUserService(newFakeUserStore(user), testJWTManager(), nil)

	resp, err := svc.Login(context.Background(), &models.LoginRequest{
		Email:    "jane@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.True(t, resp.Requires2FA)
	assert.NotEmpty(t, resp.TempToken)
	assert.Empty(t, resp.Token)
}

func TestSignupValidation(t *testing.T) {
	svc := NewUserService(newFakeUserStore(), testJWTManager(), nil)

	_, err := svc.Signup(context.Background(), &models.SignupRequest{
		Email: "not-an-email", Password: "long enough", FullName: "Jane",
	})
	require.Error(t, err)

	_, err = svc.Signup(context.Background(), &models.SignupRequest{
		Email: "jane@example.com", Password: "short", FullName: "Jane",
	})
	require.Error(t, err)

	resp, err := svc.Signup(context.Background(), &models.SignupRequest{
		Email: "jane@example.com", Password: "long enough", FullName: "Jane",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "user", resp.User.Role)
}
