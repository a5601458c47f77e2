// Package services contains server-side business logic. Every project-scoped
// operation receives the resolved caller and goes through the membership gate.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/issuetracker/internal/common"
	"github.com/dmitrijs2005/issuetracker/internal/server/auth"
	"github.com/dmitrijs2005/issuetracker/internal/server/config"
	"github.com/dmitrijs2005/issuetracker/internal/server/models"
	"github.com/dmitrijs2005/issuetracker/internal/server/repositories/repomanager"
)

const (
	msgInvalidCredentials = "Invalid email or password"
	msgNoToken            = "Not authorized, no token"
	msgTokenFailed        = "Not authorized, token failed"
)

// UserService handles registration, login, logout and session resolution.
type UserService struct {
	db                    *sql.DB
	repomanager           repomanager.RepositoryManager
	jwtSecret             []byte
	tokenValidityDuration time.Duration
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                    db,
		repomanager:           m,
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.SessionTokenValidityDuration,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account and starts a session for it.
func (s *UserService) Register(ctx context.Context, in models.RegisterInput) (*auth.Session, *models.User, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)

	if name == "" || email == "" || in.Password == "" {
		return nil, nil, common.NewError(common.ErrorValidation, "Name, email and password are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, nil, common.NewError(common.ErrorValidation, "Invalid email address")
	}
	if len(in.Password) < auth.MinPasswordLength {
		return nil, nil, common.NewError(common.ErrorValidation,
			fmt.Sprintf("Password must be at least %d characters", auth.MinPasswordLength))
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("error hashing password: %w", err)
	}

	user, err := s.repomanager.Users(s.db).Create(ctx, &models.User{Name: name, Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, nil, common.NewError(common.ErrorConflict, "User already exists")
		}
		return nil, nil, fmt.Errorf("error creating user: %w", err)
	}

	session, err := auth.GenerateToken(user.ID, s.jwtSecret, s.tokenValidityDuration)
	if err != nil {
		return nil, nil, fmt.Errorf("error generating token: %w", err)
	}
	return session, user, nil
}

// Login verifies credentials. Unknown email and wrong password produce the
// same error.
func (s *UserService) Login(ctx context.Context, in models.LoginInput) (*auth.Session, *models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			return nil, nil, fmt.Errorf("error loading user: %w", err)
		}
		auth.CheckPassword(nil, in.Password)
		return nil, nil, common.NewError(common.ErrorUnauthorized, msgInvalidCredentials)
	}
	if !auth.CheckPassword(user.PasswordHash, in.Password) {
		return nil, nil, common.NewError(common.ErrorUnauthorized, msgInvalidCredentials)
	}

	session, err := auth.GenerateToken(user.ID, s.jwtSecret, s.tokenValidityDuration)
	if err != nil {
		return nil, nil, fmt.Errorf("error generating token: %w", err)
	}
	return session, user, nil
}

// Logout revokes token until its expiry. Tokens that are already unusable
// need no revocation.
func (s *UserService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil
	}
	if err := s.repomanager.RevokedTokens(s.db).Create(ctx, claims.ID, claims.UserID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("error revoking token: %w", err)
	}
	return nil
}

// Authenticate resolves a session token to its user.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, common.NewError(common.ErrorUnauthorized, msgNoToken)
	}
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, common.NewError(common.ErrorUnauthorized, msgTokenFailed)
	}

	revoked, err := s.repomanager.RevokedTokens(s.db).Exists(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("error checking token: %w", err)
	}
	if revoked {
		return nil, common.NewError(common.ErrorUnauthorized, msgTokenFailed)
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrorUnauthorized, msgTokenFailed)
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return user, nil
}

// ListUsers returns the caller and everyone sharing a project with it.
func (s *UserService) ListUsers(ctx context.Context, caller models.User) ([]models.User, error) {
	users, err := s.repomanager.Users(s.db).ListVisibleTo(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	return users, nil
}

// PurgeRevokedTokens drops revocation records of tokens that have expired.
func (s *UserService) PurgeRevokedTokens(ctx context.Context) (int64, error) {
	return s.repomanager.RevokedTokens(s.db).DeleteExpired(ctx, time.Now())
}
