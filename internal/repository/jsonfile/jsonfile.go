// Package jsonfile implements repository.UserRepository on top of a single
// JSON document: a map from email to record, pretty-printed so it stays
// inspectable by hand, rewritten whole on every save.
//
// The on-disk schema matches the data file the legacy app produced
// (password, name, id, payment_status, trx_id, bio, joined_at per record),
// so an existing users.json loads unchanged. Writes go to a temp file in the
// same directory and are renamed into place, so readers never observe a
// half-written document.
//
// Every read-modify-write cycle runs under a process mutex plus an advisory
// file lock (gofrs/flock), which makes the store a single-writer
// serialization point even when two server processes share the file.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/rs/xid"

	"github.com/ahh-git/DIU-CPC/internal/apperror"
	"github.com/ahh-git/DIU-CPC/internal/model"
	"github.com/ahh-git/DIU-CPC/internal/repository"
)

// compile-time check that *Store implements repository.UserRepository
var _ repository.UserRepository = (*Store)(nil)

// Store is a file-backed user repository. Safe for concurrent use.
type Store struct {
	path   string
	logger *slog.Logger

	mu  sync.Mutex // serializes writers within this process
	flk *flock.Flock
}

// New creates a Store at path, creating the parent directory if needed.
// The data file itself is created lazily on the first write; a missing file
// reads as an empty store.
func New(path string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("jsonfile: creating store directory: %w", err)
	}
	return &Store{
		path:   path,
		logger: logger,
		flk:    flock.New(path + ".lock"),
	}, nil
}

// record is the persisted shape of one user. StudentID and TransactionID are
// pointers because the legacy writer emitted null for unset values; we keep
// emitting null so old and new files stay interchangeable.
type record struct {
	Password      string  `json:"password"`
	Name          string  `json:"name"`
	StudentID     *string `json:"id"`
	PaymentStatus string  `json:"payment_status"`
	TransactionID *string `json:"trx_id"`
	Bio           string  `json:"bio"`
	JoinedAt      string  `json:"joined_at"`
}

// joinedAtLayout is the legacy timestamp shape (str(datetime.now()) in the
// old app). New writes use RFC 3339; loads accept either.
const joinedAtLayout = "2006-01-02 15:04:05.999999"

func toRecord(u *model.User) record {
	r := record{
		Password:      u.PasswordHash,
		Name:          u.Name,
		PaymentStatus: string(u.PaymentStatus),
		Bio:           u.Bio,
		JoinedAt:      u.JoinedAt.Format(time.RFC3339),
	}
	if u.StudentID != "" {
		sid := u.StudentID
		r.StudentID = &sid
	}
	if u.TransactionID != "" {
		trx := u.TransactionID
		r.TransactionID = &trx
	}
	return r
}

func (s *Store) fromRecord(email string, r record) model.User {
	u := model.User{
		Email:        email,
		PasswordHash: r.Password,
		Name:         r.Name,
		Bio:          r.Bio,
	}
	if r.StudentID != nil {
		u.StudentID = *r.StudentID
	}
	if r.TransactionID != nil {
		u.TransactionID = *r.TransactionID
	}

	status, err := model.ParsePaymentStatus(r.PaymentStatus)
	if err != nil {
		// A single bad label should not take the whole roster down.
		s.logger.Warn("unknown payment status in store, treating as Incomplete",
			slog.String("email", email),
			slog.String("status", r.PaymentStatus),
		)
		status = model.StatusIncomplete
	}
	u.PaymentStatus = status

	if r.JoinedAt != "" {
		ts, err := time.Parse(time.RFC3339, r.JoinedAt)
		if err != nil {
			ts, err = time.Parse(joinedAtLayout, r.JoinedAt)
		}
		if err == nil {
			u.JoinedAt = ts
		} else {
			s.logger.Warn("unparseable joined_at in store",
				slog.String("email", email),
				slog.String("joined_at", r.JoinedAt),
			)
		}
	}
	return u
}

// load reads and decodes the whole document. A missing file is an empty
// store; so is a corrupt one — the legacy app behaved that way and admins
// rely on the server staying up with whatever the file holds. Only genuine
// I/O failures surface as errors.
func (s *Store) load() (map[string]record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]record{}, nil
		}
		return nil, apperror.Storage("read", err)
	}

	users := map[string]record{}
	if err := json.Unmarshal(data, &users); err != nil {
		s.logger.Warn("store file is not valid JSON, loading as empty store",
			slog.String("path", s.path),
			slog.String("error", err.Error()),
		)
		return map[string]record{}, nil
	}
	return users, nil
}

// save writes the whole document atomically: marshal, write a uniquely named
// temp file next to the target, rename over it.
func (s *Store) save(users map[string]record) error {
	data, err := json.MarshalIndent(users, "", "    ")
	if err != nil {
		return apperror.Storage("write", err)
	}
	data = append(data, '\n')

	tmp := fmt.Sprintf("%s.tmp.%s", s.path, xid.New().String())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return apperror.Storage("write", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return apperror.Storage("write", err)
	}
	return nil
}

// lock takes both the in-process mutex and the advisory file lock.
func (s *Store) lock() (unlock func(), err error) {
	s.mu.Lock()
	if err := s.flk.Lock(); err != nil {
		s.mu.Unlock()
		return nil, apperror.Storage("lock", err)
	}
	return func() {
		if err := s.flk.Unlock(); err != nil {
			s.logger.Error("releasing store file lock", slog.String("error", err.Error()))
		}
		s.mu.Unlock()
	}, nil
}

// Create inserts a new record. Returns a conflict error if the email is
// already present.
func (s *Store) Create(ctx context.Context, user *model.User) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	users, err := s.load()
	if err != nil {
		return err
	}
	if _, exists := users[user.Email]; exists {
		return apperror.Conflict("user", user.Email)
	}
	users[user.Email] = toRecord(user)
	return s.save(users)
}

// GetByEmail reads the current record straight from the file, so callers
// always see mutations made by other sessions or processes.
func (s *Store) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	unlock, err := s.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	users, err := s.load()
	if err != nil {
		return nil, err
	}
	r, ok := users[email]
	if !ok {
		return nil, apperror.NotFound("user", email)
	}
	u := s.fromRecord(email, r)
	return &u, nil
}

// Update runs mutate against the freshly loaded record and persists the
// result, all under the store lock. If mutate errors, nothing is written.
func (s *Store) Update(ctx context.Context, email string, mutate func(*model.User) error) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	users, err := s.load()
	if err != nil {
		return err
	}
	r, ok := users[email]
	if !ok {
		return apperror.NotFound("user", email)
	}

	u := s.fromRecord(email, r)
	if err := mutate(&u); err != nil {
		return err
	}
	users[email] = toRecord(&u)
	return s.save(users)
}

// Delete removes the record entirely. Returns NotFound for absent keys
// rather than silently succeeding.
func (s *Store) Delete(ctx context.Context, email string) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	users, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := users[email]; !ok {
		return apperror.NotFound("user", email)
	}
	delete(users, email)
	return s.save(users)
}

// List returns every record, sorted by email for stable output.
func (s *Store) List(ctx context.Context) ([]model.User, error) {
	unlock, err := s.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	users, err := s.load()
	if err != nil {
		return nil, err
	}

	emails := make([]string, 0, len(users))
	for email := range users {
		emails = append(emails, email)
	}
	sort.Strings(emails)

	result := make([]model.User, 0, len(users))
	for _, email := range emails {
		result = append(result, s.fromRecord(email, users[email]))
	}
	return result, nil
}
