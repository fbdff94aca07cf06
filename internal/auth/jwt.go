package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

// Role identifies what a session token is allowed to do.
type Role string

const (
	// RoleMember — a logged-in member acting on their own record.
	RoleMember Role = "member"
	// RoleAdmin — holder of the shared admin secret.
	RoleAdmin Role = "admin"
)

// Session is the validated identity carried by a token. For members, Email
// is the record key; for admins it is empty — the admin secret is a shared
// passphrase, not a per-user credential.
type Session struct {
	Email string
	Role  Role
}

// sessionTTL bounds how long a login lasts before the user signs in again.
const sessionTTL = 12 * time.Hour

// TokenService signs and validates session tokens. The same HMAC secret is
// used for both; tokens are stateless, so logout is simply the handler
// clearing the cookie.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims extends the registered claims with the session role. Subject holds
// the member email (empty for admin tokens).
type claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

// Generate creates and signs a member session token bound to an email.
func (s *TokenService) Generate(email string) (string, error) {
	return s.generate(email, RoleMember)
}

// GenerateAdmin creates and signs an admin session token. Issued only after
// the shared admin secret has been verified.
func (s *TokenService) GenerateAdmin() (string, error) {
	return s.generate("", RoleAdmin)
}

func (s *TokenService) generate(email string, role Role) (string, error) {
	now := time.Now()
	c := claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ID:        xid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
			Issuer:    "diu-cpc",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a token string and returns the session it
// encodes. Returns an error for expired, tampered, or otherwise invalid
// tokens.
func (s *TokenService) Validate(tokenStr string) (*Session, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenStr, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("auth: parsing token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("auth: invalid token")
	}

	switch c.Role {
	case RoleMember:
		if c.Subject == "" {
			return nil, errors.New("auth: member token without subject")
		}
	case RoleAdmin:
		// admin tokens carry no subject
	default:
		return nil, fmt.Errorf("auth: unknown role %q", c.Role)
	}

	return &Session{Email: c.Subject, Role: c.Role}, nil
}
