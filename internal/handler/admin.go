package handler

import (
	"log/slog"
	"net/http"

	"github.com/ahh-git/DIU-CPC/internal/apperror"
	"github.com/ahh-git/DIU-CPC/internal/auth"
	"github.com/ahh-git/DIU-CPC/internal/service"
)

// AdminHandler is the control panel surface. Every route except login sits
// behind auth.RequireAdmin.
type AdminHandler struct {
	admins *service.AdminService
	tokens *auth.TokenService
	logger *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(admins *service.AdminService, tokens *auth.TokenService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		admins: admins,
		tokens: tokens,
		logger: logger,
	}
}

// HandleLogin exchanges the shared admin secret for an admin session
// cookie, so the secret itself is sent exactly once per session.
//
// HTTP: POST /api/admin/login
func (h *AdminHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key string `json:"key"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if !h.admins.Authenticate(req.Key) {
		writeError(w, apperror.Unauthorized("invalid admin key"))
		return
	}

	token, err := h.tokens.GenerateAdmin()
	if err != nil {
		h.logger.Error("issuing admin token", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]string{"role": string(auth.RoleAdmin)})
}

// HandleListAll returns the full roster.
//
// HTTP: GET /api/admin/users
func (h *AdminHandler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	users, err := h.admins.ListAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// HandleListPending returns registrations awaiting approval.
//
// HTTP: GET /api/admin/pending
func (h *AdminHandler) HandleListPending(w http.ResponseWriter, r *http.Request) {
	pending, err := h.admins.ListPending(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pending)
}

// HandleApprove marks a pending registration as approved.
//
// HTTP: POST /api/admin/approve
func (h *AdminHandler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.admins.Approve(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRemove deletes an account outright. Irreversible.
//
// HTTP: POST /api/admin/remove
func (h *AdminHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.admins.Remove(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleStats returns the aggregate counts for the dashboard.
//
// HTTP: GET /api/admin/stats
func (h *AdminHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admins.SummaryStats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
