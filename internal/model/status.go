package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PaymentStatus is the registration state of a member. It only ever moves
// forward through the order below; the two sanctioned exceptions are the
// member editing their student ID before paying (IdSubmitted → Incomplete)
// and an admin deleting the record outright.
type PaymentStatus string

const (
	// StatusIncomplete — account exists, no student ID submitted yet.
	StatusIncomplete PaymentStatus = "Incomplete"
	// StatusIDSubmitted — student ID on file, payment not yet claimed.
	StatusIDSubmitted PaymentStatus = "IdSubmitted"
	// StatusPaymentPending — transaction ID submitted, awaiting admin review.
	StatusPaymentPending PaymentStatus = "PaymentPending"
	// StatusApproved — admin verified the payment. Terminal.
	StatusApproved PaymentStatus = "Approved"
)

// next is the forward transition table. Approved has no successor.
var next = map[PaymentStatus]PaymentStatus{
	StatusIncomplete:     StatusIDSubmitted,
	StatusIDSubmitted:    StatusPaymentPending,
	StatusPaymentPending: StatusApproved,
}

// Valid reports whether s is one of the four canonical states.
func (s PaymentStatus) Valid() bool {
	switch s {
	case StatusIncomplete, StatusIDSubmitted, StatusPaymentPending, StatusApproved:
		return true
	}
	return false
}

// Next returns the state that follows s in the forward order. ok is false
// for Approved (terminal) and for unknown states.
func (s PaymentStatus) Next() (PaymentStatus, bool) {
	n, ok := next[s]
	return n, ok
}

// CanAdvanceTo reports whether moving from s to target is a single forward
// step. Skipping stages or moving backwards is never allowed here.
func (s PaymentStatus) CanAdvanceTo(target PaymentStatus) bool {
	n, ok := next[s]
	return ok && n == target
}

// ParsePaymentStatus maps a stored label to a canonical state. Stores written
// by earlier versions of the app used shorter labels ("Pending",
// "Registered", "Not Registered"); those are collapsed onto the canonical
// four so old data files keep loading.
func ParsePaymentStatus(label string) (PaymentStatus, error) {
	switch strings.TrimSpace(label) {
	case "Incomplete", "Not Registered", "":
		return StatusIncomplete, nil
	case "IdSubmitted", "Registered":
		return StatusIDSubmitted, nil
	case "PaymentPending", "Pending":
		return StatusPaymentPending, nil
	case "Approved":
		return StatusApproved, nil
	}
	return "", fmt.Errorf("model: unknown payment status %q", label)
}

// MarshalJSON always writes the canonical label.
func (s PaymentStatus) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("model: cannot marshal payment status %q", string(s))
	}
	return json.Marshal(string(s))
}

// UnmarshalJSON accepts canonical and legacy labels.
func (s *PaymentStatus) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return err
	}
	parsed, err := ParsePaymentStatus(label)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
