package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/ahh-git/DIU-CPC/internal/apperror"
	"github.com/ahh-git/DIU-CPC/internal/model"
	"github.com/ahh-git/DIU-CPC/internal/repository"
)

// MatchService suggests a teammate from other members' bios.
//
// Selection policy (deterministic, unlike the random pick the legacy app
// shipped): candidates are every other member with a non-empty bio, scored
// by the number of distinct bio keywords they share with the caller. Highest
// score wins; ties break by ascending email. A zero-score candidate can
// still be suggested — someone with no overlap beats no one at all.
type MatchService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

// NewMatchService creates a MatchService.
func NewMatchService(users repository.UserRepository, logger *slog.Logger) *MatchService {
	return &MatchService{
		users:  users,
		logger: logger,
	}
}

// UpdateBio overwrites the member's own bio. Always succeeds for an
// existing record.
func (s *MatchService) UpdateBio(ctx context.Context, email, bio string) error {
	err := s.users.Update(ctx, NormalizeEmail(email), func(u *model.User) error {
		u.Bio = strings.TrimSpace(bio)
		return nil
	})
	if err != nil {
		return fmt.Errorf("service/match: updating bio for %s: %w", email, err)
	}
	return nil
}

// SuggestTeammate returns the best-matching other member. The caller needs
// a non-empty bio first (there is nothing to score against otherwise), and
// NotFound is returned when no other member has written one yet.
func (s *MatchService) SuggestTeammate(ctx context.Context, email string) (*model.User, error) {
	email = NormalizeEmail(email)

	me, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("service/match: fetching %s: %w", email, err)
	}
	if me.Bio == "" {
		return nil, apperror.ValidationFailed("bio", "add a bio to your profile to get matched")
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/match: listing candidates: %w", err)
	}

	mine := keywords(me.Bio)
	var (
		best      *model.User
		bestScore = -1
	)
	// List is sorted by email, so on equal scores the earlier email sticks.
	for i := range users {
		c := &users[i]
		if c.Email == email || c.Bio == "" {
			continue
		}
		if score := overlap(mine, keywords(c.Bio)); score > bestScore {
			best = c
			bestScore = score
		}
	}
	if best == nil {
		return nil, &apperror.AppError{
			Err:     apperror.ErrNotFound,
			Message: "no other members have written a bio yet",
		}
	}

	s.logger.Debug("teammate suggested",
		slog.String("for", email),
		slog.String("match", best.Email),
		slog.Int("score", bestScore),
	)
	return best, nil
}

// keywords lower-cases a bio, splits it on anything that is not a letter or
// digit, and drops words shorter than three runes. The result is a set of
// distinct tokens.
func keywords(bio string) map[string]struct{} {
	words := strings.FieldsFunc(strings.ToLower(bio), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		if len([]rune(w)) < 3 {
			continue
		}
		set[w] = struct{}{}
	}
	return set
}

func overlap(a, b map[string]struct{}) int {
	n := 0
	for w := range a {
		if _, ok := b[w]; ok {
			n++
		}
	}
	return n
}
