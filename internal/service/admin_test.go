package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahh-git/DIU-CPC/internal/apperror"
	"github.com/ahh-git/DIU-CPC/internal/model"
)

func newTestAdminService(repo *fakeUserRepo) *AdminService {
	return NewAdminService(repo, "891011", testLogger())
}

func TestAuthenticate(t *testing.T) {
	svc := newTestAdminService(newFakeUserRepo())

	assert.True(t, svc.Authenticate("891011"))
	assert.False(t, svc.Authenticate("891012"))
	assert.False(t, svc.Authenticate(""))
}

func TestAuthenticate_EmptySecretDisablesConsole(t *testing.T) {
	svc := NewAdminService(newFakeUserRepo(), "", testLogger())
	assert.False(t, svc.Authenticate(""))
	assert.False(t, svc.Authenticate("anything"))
}

func TestListPending(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAdminService(repo)

	seedMember(repo, "approved@diu.edu.bd", model.StatusApproved)
	seedMember(repo, "pending-b@diu.edu.bd", model.StatusPaymentPending)
	seedMember(repo, "fresh@diu.edu.bd", model.StatusIncomplete)
	seedMember(repo, "pending-a@diu.edu.bd", model.StatusPaymentPending)

	pending, err := svc.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "pending-a@diu.edu.bd", pending[0].Email)
	assert.Equal(t, "pending-b@diu.edu.bd", pending[1].Email)
}

func TestApprove(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAdminService(repo)
	seedMember(repo, "a@diu.edu.bd", model.StatusPaymentPending)

	require.NoError(t, svc.Approve(context.Background(), "a@diu.edu.bd"))
	assert.Equal(t, model.StatusApproved, repo.users["a@diu.edu.bd"].PaymentStatus)
}

func TestApprove_Idempotent(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAdminService(repo)
	seedMember(repo, "a@diu.edu.bd", model.StatusPaymentPending)
	ctx := context.Background()

	require.NoError(t, svc.Approve(ctx, "a@diu.edu.bd"))
	// Second approve is a no-op, not an error.
	require.NoError(t, svc.Approve(ctx, "a@diu.edu.bd"))
	assert.Equal(t, model.StatusApproved, repo.users["a@diu.edu.bd"].PaymentStatus)
}

func TestApprove_BeforePaymentConflicts(t *testing.T) {
	for _, status := range []model.PaymentStatus{model.StatusIncomplete, model.StatusIDSubmitted} {
		t.Run(string(status), func(t *testing.T) {
			repo := newFakeUserRepo()
			svc := newTestAdminService(repo)
			seedMember(repo, "a@diu.edu.bd", status)

			err := svc.Approve(context.Background(), "a@diu.edu.bd")
			assert.ErrorIs(t, err, apperror.ErrConflict)
		})
	}
}

func TestApprove_MissingUser(t *testing.T) {
	svc := newTestAdminService(newFakeUserRepo())
	err := svc.Approve(context.Background(), "ghost@diu.edu.bd")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestRemove(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAdminService(repo)
	seedMember(repo, "a@diu.edu.bd", model.StatusApproved)

	require.NoError(t, svc.Remove(context.Background(), "a@diu.edu.bd"))
	assert.NotContains(t, repo.users, "a@diu.edu.bd")
}

func TestRemove_MissingUserReturnsNotFound(t *testing.T) {
	svc := newTestAdminService(newFakeUserRepo())
	err := svc.Remove(context.Background(), "ghost@diu.edu.bd")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestSummaryStats(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAdminService(repo)

	seedMember(repo, "a@diu.edu.bd", model.StatusApproved)
	seedMember(repo, "b@diu.edu.bd", model.StatusApproved)
	seedMember(repo, "c@diu.edu.bd", model.StatusPaymentPending)
	seedMember(repo, "d@diu.edu.bd", model.StatusIDSubmitted)
	seedMember(repo, "e@diu.edu.bd", model.StatusIncomplete)

	stats, err := svc.SummaryStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 2, stats.Approved)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 1, stats.IDSubmitted)
	assert.Equal(t, 1, stats.Incomplete)
}

func TestSummaryStats_EmptyStore(t *testing.T) {
	svc := newTestAdminService(newFakeUserRepo())

	stats, err := svc.SummaryStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &model.Stats{}, stats)
}
