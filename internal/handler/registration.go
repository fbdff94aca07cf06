package handler

import (
	"log/slog"
	"net/http"

	"github.com/ahh-git/DIU-CPC/internal/model"
	"github.com/ahh-git/DIU-CPC/internal/service"
)

// RegistrationHandler exposes the payment state machine to the UI.
type RegistrationHandler struct {
	registration *service.RegistrationService
	accounts     *service.AccountService
	logger       *slog.Logger
}

// NewRegistrationHandler creates a RegistrationHandler.
func NewRegistrationHandler(
	registration *service.RegistrationService,
	accounts *service.AccountService,
	logger *slog.Logger,
) *RegistrationHandler {
	return &RegistrationHandler{
		registration: registration,
		accounts:     accounts,
		logger:       logger,
	}
}

// statusResponse is what the registration wizard renders: the member's
// record plus where to send the fee.
type statusResponse struct {
	Status       model.PaymentStatus         `json:"status"`
	StudentID    string                      `json:"studentId,omitempty"`
	TrxID        string                      `json:"trxId,omitempty"`
	Instructions service.PaymentInstructions `json:"instructions"`
}

// HandleStatus returns the member's registration progress.
//
// HTTP: GET /api/registration
func (h *RegistrationHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
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

	writeJSON(w, http.StatusOK, statusResponse{
		Status:       user.PaymentStatus,
		StudentID:    user.StudentID,
		TrxID:        user.TransactionID,
		Instructions: h.registration.Instructions(),
	})
}

// HandleSubmitID records the member's student ID.
//
// HTTP: POST /api/registration/id
func (h *RegistrationHandler) HandleSubmitID(w http.ResponseWriter, r *http.Request) {
	email, err := memberEmail(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		StudentID string `json:"studentId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.registration.SubmitID(r.Context(), email, req.StudentID); err != nil {
		writeError(w, err)
		return
	}
	h.HandleStatus(w, r)
}

// HandleEditID withdraws a submitted student ID before payment.
//
// HTTP: DELETE /api/registration/id
func (h *RegistrationHandler) HandleEditID(w http.ResponseWriter, r *http.Request) {
	email, err := memberEmail(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.registration.EditID(r.Context(), email); err != nil {
		writeError(w, err)
		return
	}
	h.HandleStatus(w, r)
}

// HandleSubmitPayment records the claimed transaction reference.
//
// HTTP: POST /api/registration/payment
func (h *RegistrationHandler) HandleSubmitPayment(w http.ResponseWriter, r *http.Request) {
	email, err := memberEmail(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		TrxID string `json:"trxId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.registration.SubmitPayment(r.Context(), email, req.TrxID); err != nil {
		writeError(w, err)
		return
	}
	h.HandleStatus(w, r)
}
