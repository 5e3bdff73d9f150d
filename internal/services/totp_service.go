package services

import (
	"context"
	"fmt"

	"github.com/pquerna/otp/totp"

	"farrier-backend/internal/repositories"
)

// TOTPService manages time-based one-time-password enrollment for admin
// accounts.
type TOTPService struct {
	users  *repositories.UserRepository
	issuer string
}

func NewTOTPService(users *repositories.UserRepository, issuer string) *TOTPService {
	return &TOTPService{users: users, issuer: issuer}
}

// Setup generates a fresh secret for a user and returns the otpauth URL for
// the authenticator app. The secret is stored immediately but 2FA stays off
// until Enable confirms a valid code.
func (s *TOTPService) Setup(ctx context.Context, userID int) (string, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("user not found")
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: user.Email,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}

	if err := s.users.SetTOTPSecret(ctx, userID, key.Secret()); err != nil {
		return "", fmt.Errorf("failed to store secret: %w", err)
	}
	return key.URL(), nil
}

// Enable turns 2FA on after the user proves possession of the secret
func (s *TOTPService) Enable(ctx context.Context, userID int, code string) error {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("user not found")
	}
	if user.TOTPSecret == "" {
		return fmt.Errorf("two-factor setup has not been started")
	}
	if !s.Validate(code, user.TOTPSecret) {
		return fmt.Errorf("invalid verification code")
	}
	return s.users.SetTOTPEnabled(ctx, userID, true)
}

// Disable turns 2FA off; a valid current code is required
func (s *TOTPService) Disable(ctx context.Context, userID int, code string) error {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("user not found")
	}
	if !user.TOTPEnabled {
		return fmt.Errorf("two-factor authentication is not enabled")
	}
	if !s.Validate(code, user.TOTPSecret) {
		return fmt.Errorf("invalid verification code")
	}
	if err := s.users.SetTOTPEnabled(ctx, userID, false); err != nil {
		return err
	}
	return s.users.SetTOTPSecret(ctx, userID, "")
}

func (s *TOTPService) Validate(code, secret string) bool {
	return totp.Validate(code, secret)
}
