package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/ahh-git/DIU-CPC/internal/apperror"
	"github.com/ahh-git/DIU-CPC/internal/model"
	"github.com/ahh-git/DIU-CPC/internal/repository"
)

// studentIDPattern is the university roll format: three digits, two digits,
// then three or four digits.
var studentIDPattern = regexp.MustCompile(`^\d{3}-\d{2}-\d{3,4}$`)

// minTrxIDLength: a bKash transaction reference is always longer than five
// characters; anything shorter is a typo or a guess.
const minTrxIDLength = 6

// RegistrationService drives a member's record through the payment state
// machine: Incomplete → IdSubmitted → PaymentPending → Approved. Each step
// checks the current state inside the repository's Update cycle, so a
// concurrent mutation cannot slip a record past a check.
type RegistrationService struct {
	users  repository.UserRepository
	bkash  string
	logger *slog.Logger
}

// NewRegistrationService creates a RegistrationService. bkash is the
// personal bKash number members send the fee to.
func NewRegistrationService(users repository.UserRepository, bkash string, logger *slog.Logger) *RegistrationService {
	return &RegistrationService{
		users:  users,
		bkash:  bkash,
		logger: logger,
	}
}

// PaymentInstructions is what the UI shows on the payment step.
type PaymentInstructions struct {
	Recipient string `json:"recipient"`
	Channel   string `json:"channel"`
	Amount    string `json:"amount"`
}

// Instructions returns the payment details for the UI's payment panel.
func (s *RegistrationService) Instructions() PaymentInstructions {
	return PaymentInstructions{
		Recipient: s.bkash,
		Channel:   "bKash Personal",
		Amount:    "BDT 500",
	}
}

// SubmitID stores the member's student ID and advances Incomplete →
// IdSubmitted. Rejected with a validation error when the ID does not match
// the roll format, and a conflict when an ID is already on file.
func (s *RegistrationService) SubmitID(ctx context.Context, email, studentID string) error {
	studentID = strings.TrimSpace(studentID)
	if !studentIDPattern.MatchString(studentID) {
		return apperror.ValidationFailed("studentId",
			"student ID must match the pattern xxx-xx-xxx (e.g. 221-15-1234)")
	}

	err := s.users.Update(ctx, NormalizeEmail(email), func(u *model.User) error {
		if u.PaymentStatus != model.StatusIncomplete {
			return apperror.StateConflict("student ID already submitted")
		}
		u.StudentID = studentID
		u.PaymentStatus = model.StatusIDSubmitted
		return nil
	})
	if err != nil {
		return fmt.Errorf("service/registration: submitting ID for %s: %w", email, err)
	}

	s.logger.Info("student ID submitted",
		slog.String("email", NormalizeEmail(email)),
		slog.String("studentId", studentID),
	)
	return nil
}

// EditID clears the submitted student ID and reverts IdSubmitted →
// Incomplete. Only possible before payment is claimed; afterwards the ID is
// part of what the admin verifies.
func (s *RegistrationService) EditID(ctx context.Context, email string) error {
	err := s.users.Update(ctx, NormalizeEmail(email), func(u *model.User) error {
		if u.PaymentStatus != model.StatusIDSubmitted {
			return apperror.StateConflict("student ID can only be edited before payment is submitted")
		}
		u.StudentID = ""
		u.PaymentStatus = model.StatusIncomplete
		return nil
	})
	if err != nil {
		return fmt.Errorf("service/registration: editing ID for %s: %w", email, err)
	}
	return nil
}

// SubmitPayment stores the claimed transaction reference and advances
// IdSubmitted → PaymentPending. The reference is never verified against the
// payment provider; an admin eyeballs it before approving.
func (s *RegistrationService) SubmitPayment(ctx context.Context, email, trxID string) error {
	trxID = strings.TrimSpace(trxID)
	if len(trxID) < minTrxIDLength {
		return apperror.ValidationFailed("trxId",
			"transaction ID must be longer than 5 characters")
	}

	err := s.users.Update(ctx, NormalizeEmail(email), func(u *model.User) error {
		switch u.PaymentStatus {
		case model.StatusIncomplete:
			return apperror.StateConflict("submit your student ID before payment")
		case model.StatusIDSubmitted:
			u.TransactionID = trxID
			u.PaymentStatus = model.StatusPaymentPending
			return nil
		default:
			return apperror.StateConflict("payment already submitted")
		}
	})
	if err != nil {
		return fmt.Errorf("service/registration: submitting payment for %s: %w", email, err)
	}

	s.logger.Info("payment submitted",
		slog.String("email", NormalizeEmail(email)),
		slog.String("trxId", trxID),
	)
	return nil
}
