// Package service holds the business rules, between the HTTP handlers and
// the repository:
//
//	handler (HTTP) → service (rules) → repository (store)
//
// Services never touch HTTP and handlers never touch the store, so each
// layer is testable on its own.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahh-git/DIU-CPC/internal/apperror"
	"github.com/ahh-git/DIU-CPC/internal/auth"
	"github.com/ahh-git/DIU-CPC/internal/model"
	"github.com/ahh-git/DIU-CPC/internal/repository"
)

// AccountService handles registration, login and profile lookup. Only
// institutional addresses (ending in the configured domain suffix) may
// register.
type AccountService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	domain    string
	logger    *slog.Logger
}

// NewAccountService creates an AccountService. domain is the required email
// suffix, e.g. "@diu.edu.bd".
func NewAccountService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	domain string,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		users:     users,
		passwords: passwords,
		domain:    domain,
		logger:    logger,
	}
}

// NormalizeEmail trims and lower-cases an address. Every path that touches
// the store key goes through this, so case or whitespace variants of one
// address cannot produce two records.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new member account in the Incomplete state and
// persists it. Fails with a validation error for non-institutional
// addresses and a conflict for already-registered ones.
func (s *AccountService) Register(ctx context.Context, email, password, name string) (*model.User, error) {
	email = NormalizeEmail(email)

	if !strings.HasSuffix(email, s.domain) {
		return nil, apperror.ValidationFailed("email",
			fmt.Sprintf("email must end with %s", s.domain))
	}
	if strings.TrimSpace(password) == "" {
		return nil, apperror.ValidationFailed("password", "password must not be empty")
	}

	hash, err := s.passwords.Hash(strings.TrimSpace(password))
	if err != nil {
		return nil, fmt.Errorf("service/account: hashing password: %w", err)
	}

	user := &model.User{
		Email:         email,
		PasswordHash:  hash,
		Name:          strings.TrimSpace(name),
		PaymentStatus: model.StatusIncomplete,
		JoinedAt:      time.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("service/account: registering %s: %w", email, err)
	}

	s.logger.Info("member registered", slog.String("email", email))
	return user, nil
}

// Login verifies credentials against the current store contents — the
// record is read fresh so registrations and admin actions from other
// sessions are visible immediately.
//
// Accounts carried over from the legacy data file hold a raw password
// instead of a hash; those are compared in constant time and rehashed in
// place on the first successful login, so the plaintext disappears from the
// store.
func (s *AccountService) Login(ctx context.Context, email, password string) (*model.User, error) {
	email = NormalizeEmail(email)
	password = strings.TrimSpace(password)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		// A missing account and a wrong password look identical to the
		// caller.
		return nil, apperror.Unauthorized("invalid credentials")
	}

	if auth.IsBcryptHash(user.PasswordHash) {
		if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
			return nil, apperror.Unauthorized("invalid credentials")
		}
		return user, nil
	}

	// Legacy plaintext credential.
	if !auth.VerifyLegacy(user.PasswordHash, password) {
		return nil, apperror.Unauthorized("invalid credentials")
	}

	hash, err := s.passwords.Hash(password)
	if err == nil {
		err = s.users.Update(ctx, email, func(u *model.User) error {
			u.PasswordHash = hash
			return nil
		})
	}
	if err != nil {
		// Login still succeeds; the credential just stays in its legacy
		// shape until the next attempt.
		s.logger.Error("migrating legacy credential failed",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
	} else {
		user.PasswordHash = hash
		s.logger.Info("legacy credential rehashed", slog.String("email", email))
	}
	return user, nil
}

// Get returns the current record for an email, read fresh from the store so
// a concurrent admin approval shows up on the next render.
func (s *AccountService) Get(ctx context.Context, email string) (*model.User, error) {
	user, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("service/account: fetching %s: %w", email, err)
	}
	return user, nil
}
