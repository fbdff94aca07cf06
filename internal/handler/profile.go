package handler

import (
	"log/slog"
	"net/http"

	"github.com/ahh-git/DIU-CPC/internal/service"
)

// ProfileHandler covers the bio field and the teammate suggestion built on
// top of it.
type ProfileHandler struct {
	match  *service.MatchService
	logger *slog.Logger
}

// NewProfileHandler creates a ProfileHandler.
func NewProfileHandler(match *service.MatchService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		match:  match,
		logger: logger,
	}
}

// teammateResponse is the public face of a suggested member. Registration
// details (student ID, transaction reference) stay private to their owner
// and the admins.
type teammateResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Bio   string `json:"bio"`
}

// HandleUpdateBio overwrites the member's own bio.
//
// HTTP: PUT /api/profile/bio
func (h *ProfileHandler) HandleUpdateBio(w http.ResponseWriter, r *http.Request) {
	email, err := memberEmail(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Bio string `json:"bio"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.match.UpdateBio(r.Context(), email, req.Bio); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSuggestTeammate returns the best-matching other member by bio
// keyword overlap.
//
// HTTP: GET /api/match
func (h *ProfileHandler) HandleSuggestTeammate(w http.ResponseWriter, r *http.Request) {
	email, err := memberEmail(r)
	if err != nil {
		writeError(w, err)
		return
	}

	match, err := h.match.SuggestTeammate(r.Context(), email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, teammateResponse{
		Name:  match.Name,
		Email: match.Email,
		Bio:   match.Bio,
	})
}
