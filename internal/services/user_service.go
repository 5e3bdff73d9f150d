package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"farrier-backend/internal/auth"
	"farrier-backend/internal/cache"
	"farrier-backend/internal/models"
)

type userStore interface {
	Create(ctx context.Context, u *models.User) error
	Get(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
}

type UserService struct {
	repo userStore
	jwt  *auth.JWTManager
	totp *TOTPService
}

func NewUserService(repo userStore, jwt *auth.JWTManager, totp *TOTPService) *UserService {
	return &UserService{repo: repo, jwt: jwt, totp: totp}
}

func (s *UserService) Signup(ctx context.Context, req *models.SignupRequest) (*models.LoginResponse, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("a valid email is required")
	}
	if len(req.Password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}
	if strings.TrimSpace(req.FullName) == "" {
		return nil, fmt.Errorf("full name is required")
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("an account with this email already exists")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(req.FullName),
		Role:         "user",
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.jwt.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	log.Printf("[Auth] New signup: %s", user.Email)
	return &models.LoginResponse{Token: token, User: user}, nil
}

// Login verifies credentials, consulting the Redis auth cache first to skip
// the bcrypt comparison on repeat logins. Accounts with 2FA enabled get a
// short-lived temp token instead of a session token.
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))

	var user *models.User
	if userID, ok := cache.GetCachedAuth(ctx, email, req.Password); ok {
		if u, err := s.repo.Get(ctx, int(userID)); err == nil {
			user = u
		}
	}

	if user == nil {
		u, err := s.repo.GetByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("invalid email or password")
		}
		if !auth.VerifyPassword(u.PasswordHash, req.Password) {
			return nil, fmt.Errorf("invalid email or password")
		}
		user = u
		cache.CacheAuth(ctx, email, req.Password, int64(user.ID))
	}

	if !user.IsActive {
		return nil, fmt.Errorf("account is deactivated")
	}

	if user.TOTPEnabled {
		tempToken, err := s.jwt.GenerateTempToken(user)
		if err != nil {
			return nil, fmt.Errorf("failed to generate token: %w", err)
		}
		return &models.LoginResponse{Requires2FA: true, TempToken: tempToken}, nil
	}

	token, err := s.jwt.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &models.LoginResponse{Token: token, User: user}, nil
}

// Verify2FA completes the second login step: a valid temp token plus a valid
// TOTP code yields the real session token.
func (s *UserService) Verify2FA(ctx context.Context, req *models.Verify2FARequest) (*models.LoginResponse, error) {
	claims, err := s.jwt.ValidateTempToken(req.TempToken)
	if err != nil {
		return nil, fmt.Errorf("invalid or expired verification token")
	}

	user, err := s.repo.Get(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("user not found")
	}
	if !user.TOTPEnabled || user.TOTPSecret == "" {
		return nil, fmt.Errorf("two-factor authentication is not enabled")
	}
	if !s.totp.Validate(req.Code, user.TOTPSecret) {
		return nil, fmt.Errorf("invalid verification code")
	}

	token, err := s.jwt.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &models.LoginResponse{Token: token, User: user}, nil
}

func (s *UserService) Get(ctx context.Context, id int) (*models.User, error) {
	return s.repo.Get(ctx, id)
}

// List backs the mention picker, so every active user is returned
func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.repo.List(ctx)
}
