package handler

import (
	"log/slog"
	"net/http"

	"github.com/ahh-git/DIU-CPC/internal/apperror"
	"github.com/ahh-git/DIU-CPC/internal/auth"
	"github.com/ahh-git/DIU-CPC/internal/service"
)

// AuthHandler manages member signup, login and logout. The session is a
// JWT in an HttpOnly cookie; logout just clears it.
type AuthHandler struct {
	accounts *service.AccountService
	tokens   *auth.TokenService
	logger   *slog.Logger
}

// NewAuthHandler creates an AuthHandler with injected dependencies.
func NewAuthHandler(accounts *service.AccountService, tokens *auth.TokenService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		tokens:   tokens,
		logger:   logger,
	}
}

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   12 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// memberEmail returns the member email behind the request. Admin tokens
// pass RequireAuth but carry no email, and member-only endpoints must not
// act on them.
func memberEmail(r *http.Request) (string, error) {
	sess, ok := auth.SessionFromContext(r.Context())
	if !ok || sess.Role != auth.RoleMember {
		return "", apperror.Unauthorized("member session required")
	}
	return sess.Email, nil
}

// HandleRegister creates a new account.
//
// HTTP: POST /api/auth/register
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.accounts.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// HandleLogin verifies credentials and establishes the session cookie.
//
// HTTP: POST /api/auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := h.tokens.Generate(user.Email)
	if err != nil {
		h.logger.Error("issuing session token",
			slog.String("email", user.Email),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, user)
}

// HandleLogout clears the session cookie. No persistence effect.
//
// HTTP: POST /api/auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe returns the logged-in member's own record, read fresh so an
// admin approval between requests is visible immediately.
//
// HTTP: GET /api/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	email, err := memberEmail(r)
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.accounts.Get(r.Context(), email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
