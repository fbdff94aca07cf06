package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ahh-git/DIU-CPC/internal/apperror"
	"github.com/ahh-git/DIU-CPC/internal/model"
	"github.com/ahh-git/DIU-CPC/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// Create inserts a new record. The email primary key makes duplicates a
// constraint violation, which surfaces as a conflict error.
func (db *DB) Create(ctx context.Context, user *model.User) error {
	var exists int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE email = ?`, user.Email,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("sqlite: checking for existing user %s: %w", user.Email, err)
	}
	if exists > 0 {
		return apperror.Conflict("user", user.Email)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO users (email, password, name, student_id, payment_status, trx_id, bio, joined_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.StudentID,
		string(user.PaymentStatus),
		user.TransactionID,
		user.Bio,
		user.JoinedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user %s: %w", user.Email, err)
	}
	return nil
}

// GetByEmail retrieves one record. Returns apperror.ErrNotFound for absent keys.
func (db *DB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(db.conn.QueryRowContext(ctx,
		`SELECT email, password, name, student_id, payment_status, trx_id, bio, joined_at
		 FROM users WHERE email = ?`,
		email,
	), email)
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner, email string) (*model.User, error) {
	var (
		u      model.User
		status string
	)
	err := row.Scan(
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.StudentID,
		&status,
		&u.TransactionID,
		&u.Bio,
		&u.JoinedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: scanning user %s: %w", email, err)
	}

	parsed, err := model.ParsePaymentStatus(status)
	if err != nil {
		return nil, fmt.Errorf("sqlite: user %s: %w", u.Email, err)
	}
	u.PaymentStatus = parsed
	return &u, nil
}

// Update loads the record, applies mutate, and writes it back — all inside
// one transaction, so a concurrent writer cannot interleave.
func (db *DB) Update(ctx context.Context, email string, mutate func(*model.User) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	u, err := scanUser(tx.QueryRowContext(ctx,
		`SELECT email, password, name, student_id, payment_status, trx_id, bio, joined_at
		 FROM users WHERE email = ?`,
		email,
	), email)
	if err != nil {
		return err
	}

	if err := mutate(u); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE users SET password = ?, name = ?, student_id = ?, payment_status = ?,
		 trx_id = ?, bio = ? WHERE email = ?`,
		u.PasswordHash,
		u.Name,
		u.StudentID,
		string(u.PaymentStatus),
		u.TransactionID,
		u.Bio,
		email,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating user %s: %w", email, err)
	}
	return tx.Commit()
}

// Delete removes the record. Returns NotFound if no row was affected.
func (db *DB) Delete(ctx context.Context, email string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM users WHERE email = ?`, email)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %s: %w", email, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking delete result for %s: %w", email, err)
	}
	if affected == 0 {
		return apperror.NotFound("user", email)
	}
	return nil
}

// List returns all records ordered by email.
func (db *DB) List(ctx context.Context) ([]model.User, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT email, password, name, student_id, payment_status, trx_id, bio, joined_at
		 FROM users ORDER BY email`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows, "")
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}
	return users, nil
}
