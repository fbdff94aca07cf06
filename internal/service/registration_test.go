package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahh-git/DIU-CPC/internal/apperror"
	"github.com/ahh-git/DIU-CPC/internal/model"
)

func newTestRegistrationService(repo *fakeUserRepo) *RegistrationService {
	return NewRegistrationService(repo, "01346561010", testLogger())
}

func seedMember(repo *fakeUserRepo, email string, status model.PaymentStatus) {
	u := model.User{
		Email:         email,
		PasswordHash:  "$2a$04$fakehashfakehashfakehashfakehashfakehashfakehashfake",
		Name:          "Member",
		PaymentStatus: status,
		JoinedAt:      time.Now(),
	}
	switch status {
	case model.StatusIDSubmitted:
		u.StudentID = "221-15-1234"
	case model.StatusPaymentPending:
		u.StudentID = "221-15-1234"
		u.TransactionID = "TRX000001"
	case model.StatusApproved:
		u.StudentID = "221-15-1234"
		u.TransactionID = "TRX000001"
	}
	repo.seed(u)
}

// =========================================================================
// SUBMIT ID
// =========================================================================

func TestSubmitID_FormatValidation(t *testing.T) {
	tests := []struct {
		name      string
		studentID string
		wantOK    bool
	}{
		{"three digit tail", "221-15-123", true},
		{"four digit tail", "221-15-1234", true},
		{"surrounding whitespace trimmed", " 221-15-1234 ", true},
		{"short middle group", "221-5-123", false},
		{"two digit tail", "221-15-12", false},
		{"five digit tail", "221-15-12345", false},
		{"letters", "abc-de-fgh", false},
		{"missing dashes", "221151234", false},
		{"empty", "", false},
		{"trailing junk", "221-15-1234x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeUserRepo()
			svc := newTestRegistrationService(repo)
			seedMember(repo, "a@diu.edu.bd", model.StatusIncomplete)

			err := svc.SubmitID(context.Background(), "a@diu.edu.bd", tt.studentID)
			if tt.wantOK {
				assert.NoError(t, err)
				assert.Equal(t, model.StatusIDSubmitted, repo.users["a@diu.edu.bd"].PaymentStatus)
			} else {
				assert.ErrorIs(t, err, apperror.ErrValidation)
				assert.Equal(t, model.StatusIncomplete, repo.users["a@diu.edu.bd"].PaymentStatus)
			}
		})
	}
}

func TestSubmitID_OnlyFromIncomplete(t *testing.T) {
	for _, status := range []model.PaymentStatus{
		model.StatusIDSubmitted, model.StatusPaymentPending, model.StatusApproved,
	} {
		t.Run(string(status), func(t *testing.T) {
			repo := newFakeUserRepo()
			svc := newTestRegistrationService(repo)
			seedMember(repo, "a@diu.edu.bd", status)

			err := svc.SubmitID(context.Background(), "a@diu.edu.bd", "300-16-555")
			assert.ErrorIs(t, err, apperror.ErrConflict)
			// The stored ID must not have been overwritten.
			assert.Equal(t, "221-15-1234", repo.users["a@diu.edu.bd"].StudentID)
		})
	}
}

// =========================================================================
// EDIT ID
// =========================================================================

func TestEditID_RevertsToIncomplete(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestRegistrationService(repo)
	seedMember(repo, "a@diu.edu.bd", model.StatusIDSubmitted)

	err := svc.EditID(context.Background(), "a@diu.edu.bd")
	require.NoError(t, err)

	u := repo.users["a@diu.edu.bd"]
	assert.Equal(t, model.StatusIncomplete, u.PaymentStatus)
	assert.Empty(t, u.StudentID)
}

func TestEditID_BlockedAfterPayment(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestRegistrationService(repo)
	seedMember(repo, "a@diu.edu.bd", model.StatusPaymentPending)

	err := svc.EditID(context.Background(), "a@diu.edu.bd")
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

// =========================================================================
// SUBMIT PAYMENT
// =========================================================================

func TestSubmitPayment(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestRegistrationService(repo)
	seedMember(repo, "a@diu.edu.bd", model.StatusIDSubmitted)

	err := svc.SubmitPayment(context.Background(), "a@diu.edu.bd", "TRX12345")
	require.NoError(t, err)

	u := repo.users["a@diu.edu.bd"]
	assert.Equal(t, model.StatusPaymentPending, u.PaymentStatus)
	assert.Equal(t, "TRX12345", u.TransactionID)
}

func TestSubmitPayment_ShortTransactionID(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestRegistrationService(repo)
	seedMember(repo, "a@diu.edu.bd", model.StatusIDSubmitted)

	for _, trx := range []string{"", "ab12", "12345", "  12345  "} {
		err := svc.SubmitPayment(context.Background(), "a@diu.edu.bd", trx)
		assert.ErrorIs(t, err, apperror.ErrValidation, "trx %q should be rejected", trx)
	}
	assert.Equal(t, model.StatusIDSubmitted, repo.users["a@diu.edu.bd"].PaymentStatus)
}

func TestSubmitPayment_BeforeIDFails(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestRegistrationService(repo)
	seedMember(repo, "a@diu.edu.bd", model.StatusIncomplete)

	err := svc.SubmitPayment(context.Background(), "a@diu.edu.bd", "TRX12345")
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestSubmitPayment_TwiceFails(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestRegistrationService(repo)
	seedMember(repo, "a@diu.edu.bd", model.StatusPaymentPending)

	err := svc.SubmitPayment(context.Background(), "a@diu.edu.bd", "TRX99999")
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Equal(t, "TRX000001", repo.users["a@diu.edu.bd"].TransactionID)
}

func TestInstructions(t *testing.T) {
	svc := newTestRegistrationService(newFakeUserRepo())

	instr := svc.Instructions()
	assert.Equal(t, "01346561010", instr.Recipient)
	assert.Equal(t, "bKash Personal", instr.Channel)
	assert.NotEmpty(t, instr.Amount)
}

// =========================================================================
// FULL FLOW
// =========================================================================

func TestRegistrationFlow_EndToEnd(t *testing.T) {
	repo := newFakeUserRepo()
	accounts := newTestAccountService(repo)
	registration := newTestRegistrationService(repo)
	admins := NewAdminService(repo, "891011", testLogger())
	ctx := context.Background()

	_, err := accounts.Register(ctx, "a@diu.edu.bd", "pw", "Alice")
	require.NoError(t, err)

	_, err = accounts.Login(ctx, "a@diu.edu.bd", "pw")
	require.NoError(t, err)

	require.NoError(t, registration.SubmitID(ctx, "a@diu.edu.bd", "123-45-6789"))
	u, err := accounts.Get(ctx, "a@diu.edu.bd")
	require.NoError(t, err)
	assert.Equal(t, model.StatusIDSubmitted, u.PaymentStatus)

	require.NoError(t, registration.SubmitPayment(ctx, "a@diu.edu.bd", "TRX000001"))
	u, err = accounts.Get(ctx, "a@diu.edu.bd")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaymentPending, u.PaymentStatus)

	require.NoError(t, admins.Approve(ctx, "a@diu.edu.bd"))
	u, err = accounts.Get(ctx, "a@diu.edu.bd")
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, u.PaymentStatus)

	// Approved is terminal for the member.
	assert.ErrorIs(t, registration.SubmitID(ctx, "a@diu.edu.bd", "123-45-6789"), apperror.ErrConflict)
	assert.ErrorIs(t, registration.EditID(ctx, "a@diu.edu.bd"), apperror.ErrConflict)
	assert.ErrorIs(t, registration.SubmitPayment(ctx, "a@diu.edu.bd", "TRX000002"), apperror.ErrConflict)
}
