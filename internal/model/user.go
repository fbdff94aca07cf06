// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents one registered member, keyed by institutional email.
//
// The email is normalized (trimmed, lower-cased) before it is ever used as a
// key, so two spellings of the same address cannot produce two records.
//
// PasswordHash holds a bcrypt hash for accounts created by this server. Stores
// written by the legacy app contain the raw password instead; the account
// service detects that shape on login and rehashes in place. The field is
// excluded from API responses — only the repository layer serializes it.
type User struct {
	Email         string        `json:"email"`
	PasswordHash  string        `json:"-"`
	Name          string        `json:"name"`
	StudentID     string        `json:"studentId,omitempty"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	TransactionID string        `json:"transactionId,omitempty"`
	Bio           string        `json:"bio,omitempty"`
	JoinedAt      time.Time     `json:"joinedAt"`
}

// Stats is the aggregate view the admin console renders.
type Stats struct {
	Total       int `json:"total"`
	Approved    int `json:"approvedCount"`
	Pending     int `json:"pendingCount"`
	IDSubmitted int `json:"idSubmittedCount"`
	Incomplete  int `json:"incompleteCount"`
}
