package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"

	"github.com/ahh-git/DIU-CPC/internal/apperror"
	"github.com/ahh-git/DIU-CPC/internal/model"
	"github.com/ahh-git/DIU-CPC/internal/repository"
)

// AdminService is the control panel behind the shared admin secret: review
// pending registrations, approve them, remove accounts, and aggregate
// stats. It reads and writes the store directly — admin actions are not
// member-initiated transitions.
//
// The secret is a single passphrase with no per-admin identity; that is the
// product's contract. There is deliberately no lockout or rate limiting on
// it (see DESIGN.md).
type AdminService struct {
	users  repository.UserRepository
	secret string
	logger *slog.Logger
}

// NewAdminService creates an AdminService guarded by the given shared secret.
func NewAdminService(users repository.UserRepository, secret string, logger *slog.Logger) *AdminService {
	return &AdminService{
		users:  users,
		secret: secret,
		logger: logger,
	}
}

// Authenticate compares a candidate key against the shared secret in
// constant time.
func (s *AdminService) Authenticate(candidateKey string) bool {
	if s.secret == "" {
		// An empty secret disables the admin console rather than opening it.
		return false
	}
	ok := subtle.ConstantTimeCompare([]byte(candidateKey), []byte(s.secret)) == 1
	if !ok {
		s.logger.Warn("admin authentication failed")
	}
	return ok
}

// ListPending returns every record awaiting approval, sorted by email.
func (s *AdminService) ListPending(ctx context.Context) ([]model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/admin: listing pending: %w", err)
	}

	pending := make([]model.User, 0)
	for _, u := range users {
		if u.PaymentStatus == model.StatusPaymentPending {
			pending = append(pending, u)
		}
	}
	return pending, nil
}

// ListAll returns the full roster for the admin console.
func (s *AdminService) ListAll(ctx context.Context) ([]model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/admin: listing users: %w", err)
	}
	return users, nil
}

// Approve advances a record PaymentPending → Approved. Approving an
// already-approved record is a no-op, not an error, so a double-click in
// the console is harmless. Records that have not reached PaymentPending are
// a conflict, and missing keys are NotFound.
func (s *AdminService) Approve(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	err := s.users.Update(ctx, email, func(u *model.User) error {
		switch u.PaymentStatus {
		case model.StatusApproved:
			return nil // idempotent
		case model.StatusPaymentPending:
			u.PaymentStatus = model.StatusApproved
			return nil
		default:
			return apperror.StateConflict(
				fmt.Sprintf("cannot approve %s: no payment awaiting review", email))
		}
	})
	if err != nil {
		return fmt.Errorf("service/admin: approving %s: %w", email, err)
	}

	s.logger.Info("registration approved", slog.String("email", email))
	return nil
}

// Remove deletes the record entirely. Irreversible. Returns NotFound for
// absent keys rather than silently succeeding.
func (s *AdminService) Remove(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	if err := s.users.Delete(ctx, email); err != nil {
		return fmt.Errorf("service/admin: removing %s: %w", email, err)
	}

	s.logger.Warn("account removed", slog.String("email", email))
	return nil
}

// SummaryStats aggregates the current store snapshot. Pure read, no
// mutation.
func (s *AdminService) SummaryStats(ctx context.Context) (*model.Stats, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/admin: aggregating stats: %w", err)
	}

	stats := &model.Stats{Total: len(users)}
	for _, u := range users {
		switch u.PaymentStatus {
		case model.StatusApproved:
			stats.Approved++
		case model.StatusPaymentPending:
			stats.Pending++
		case model.StatusIDSubmitted:
			stats.IDSubmitted++
		default:
			stats.Incomplete++
		}
	}
	return stats, nil
}
