package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/freebook/backend/internal/domain"
	"github.com/freebook/backend/internal/observability"
	"github.com/freebook/backend/internal/repository"
	"github.com/freebook/backend/internal/security"
	"github.com/freebook/backend/internal/tx"
)

// TokenGenerator issues access tokens for a subject.
type TokenGenerator interface {
	Generate(subject string) (string, error)
}

type RegisterInput struct {
	Name     string
	Username string
	Email    string
	Password string
}

// AuthService handles registration and login.
type AuthService struct {
	accounts repository.AccountRepository
	profiles repository.ProfileRepository
	tx       tx.Transactor
	events   EventRecorder
	tokens   TokenGenerator
}

func NewAuthService(
	accounts repository.AccountRepository,
	profiles repository.ProfileRepository,
	t tx.Transactor,
	events EventRecorder,
	tokens TokenGenerator,
) *AuthService {
	return &AuthService{accounts: accounts, profiles: profiles, tx: t, events: events, tokens: tokens}
}

// Register creates the account and its profile in one transaction and returns
// a token for the new account.
func (a *AuthService) Register(ctx context.Context, in RegisterInput) (string, error) {
	email := normalizeEmail(in.Email)
	if in.Name == "" || in.Username == "" || email == "" || in.Password == "" {
		return "", domain.ErrInvalidInput
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return "", err
	}

	account := &domain.Account{
		ID:       uuid.NewString(),
		Name:     in.Name,
		Username: in.Username,
		Email:    email,
		Password: hash,
		Role:     domain.RoleUser,
	}
	profile := &domain.Profile{
		ID:         uuid.NewString(),
		AccountID:  account.ID,
		Username:   in.Username,
		Name:       in.Name,
		Email:      email,
		LikedPosts: []string{},
		SavedPosts: []string{},
	}

	err = a.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := a.accounts.Create(ctx, account); err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}
		if err := a.profiles.Create(ctx, profile); err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}
		return a.events.Record(ctx, domain.TopicUserRegistered, profile.ID, map[string]string{
			"account_id": account.ID,
			"profile_id": profile.ID,
			"username":   profile.Username,
		})
	})
	if err != nil {
		return "", fmt.Errorf("registration failed: %w", err)
	}

	observability.GetLogger(ctx).Info("user_registered",
		zap.String("account_id", account.ID),
		zap.String("profile_id", profile.ID),
	)

	return a.tokens.Generate(email)
}

// Authenticate checks the credentials and returns a fresh token.
func (a *AuthService) Authenticate(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)

	acc, err := a.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}

	if err := security.ComparePassword(acc.Password, password); err != nil {
		return "", domain.ErrInvalidCredentials
	}

	observability.GetLogger(ctx).Info("user_login_success", zap.String("account_id", acc.ID))

	return a.tokens.Generate(acc.Email)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
