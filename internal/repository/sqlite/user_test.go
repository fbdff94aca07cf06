package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ahh-git/DIU-CPC/internal/apperror"
	"github.com/ahh-git/DIU-CPC/internal/model"
)

// newTestDB returns a DB backed by an in-memory database, closed when the
// test finishes.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("New(:memory:): %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser creates a user and fails the test if it errors.
func createTestUser(t *testing.T, db *DB, email string) *model.User {
	t.Helper()
	u := &model.User{
		Email:         email,
		PasswordHash:  "$2a$04$fakehashfakehashfakehashfakehashfakehashfakehashfake",
		Name:          "Test User",
		PaymentStatus: model.StatusIncomplete,
		JoinedAt:      time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC),
	}
	if err := db.Create(context.Background(), u); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

func TestCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "a@diu.edu.bd")

	got, err := db.GetByEmail(context.Background(), "a@diu.edu.bd")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got.Email != created.Email {
		t.Errorf("Email = %q, want %q", got.Email, created.Email)
	}
	if got.PaymentStatus != model.StatusIncomplete {
		t.Errorf("PaymentStatus = %s, want %s", got.PaymentStatus, model.StatusIncomplete)
	}
}

func TestCreateDuplicateConflicts(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "a@diu.edu.bd")

	dup := &model.User{
		Email:         "a@diu.edu.bd",
		PasswordHash:  "other",
		PaymentStatus: model.StatusIncomplete,
		JoinedAt:      time.Now(),
	}
	err := db.Create(context.Background(), dup)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("Create() duplicate error = %v, want ErrConflict", err)
	}
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	db := newTestDB(t)
	_, err := db.GetByEmail(context.Background(), "ghost@diu.edu.bd")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("GetByEmail() error = %v, want ErrNotFound", err)
	}
}

func TestUpdateInsideTransaction(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "a@diu.edu.bd")

	err := db.Update(context.Background(), "a@diu.edu.bd", func(u *model.User) error {
		u.StudentID = "221-15-1234"
		u.PaymentStatus = model.StatusIDSubmitted
		return nil
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := db.GetByEmail(context.Background(), "a@diu.edu.bd")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got.StudentID != "221-15-1234" || got.PaymentStatus != model.StatusIDSubmitted {
		t.Errorf("record after update = %+v", got)
	}
}

func TestUpdateMutateErrorRollsBack(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "a@diu.edu.bd")

	boom := errors.New("refused")
	err := db.Update(context.Background(), "a@diu.edu.bd", func(u *model.User) error {
		u.Bio = "should not persist"
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Update() error = %v, want the mutate error", err)
	}

	got, err := db.GetByEmail(context.Background(), "a@diu.edu.bd")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got.Bio != "" {
		t.Errorf("Bio = %q, want empty after rollback", got.Bio)
	}
}

func TestDeleteMissingReturnsNotFound(t *testing.T) {
	db := newTestDB(t)
	err := db.Delete(context.Background(), "ghost@diu.edu.bd")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("Delete() error = %v, want ErrNotFound", err)
	}
}

func TestListOrderedByEmail(t *testing.T) {
	db := newTestDB(t)
	for _, email := range []string{"c@diu.edu.bd", "a@diu.edu.bd", "b@diu.edu.bd"} {
		createTestUser(t, db, email)
	}

	users, err := db.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("List() returned %d users, want 3", len(users))
	}
	want := []string{"a@diu.edu.bd", "b@diu.edu.bd", "c@diu.edu.bd"}
	for i, u := range users {
		if u.Email != want[i] {
			t.Errorf("List()[%d] = %s, want %s", i, u.Email, want[i])
		}
	}
}
