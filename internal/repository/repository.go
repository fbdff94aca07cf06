// Package repository declares the storage contract the services depend on.
//
// Two drivers implement it: jsonfile (the default, a single pretty-printed
// JSON document rewritten whole on every save, compatible with the data file
// the legacy app produced) and sqlite (transactional, for deployments that
// outgrow whole-file rewrites).
package repository

import (
	"context"

	"github.com/ahh-git/DIU-CPC/internal/model"
)

// UserRepository is keyed by normalized email.
//
// Update carries the full read-modify-write cycle: the driver loads the
// current record, applies mutate, and persists the result in one atomic step
// under its own serialization (lock or transaction). If mutate returns an
// error, nothing is written and that error is returned unchanged. This is
// what keeps "check the current state, then advance it" free of lost updates.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, email string, mutate func(*model.User) error) error
	Delete(ctx context.Context, email string) error
	List(ctx context.Context) ([]model.User, error)
}
