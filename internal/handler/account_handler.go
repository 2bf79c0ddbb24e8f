package handler

import (
	"net/http"

	"product-manager/internal/model"
	"product-manager/internal/service"

	"github.com/rs/zerolog"
)

// AccountHandler handles manufacturer account requests.
type AccountHandler struct {
	accounts service.AccountService
	logger   zerolog.Logger
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(accounts service.AccountService, logger zerolog.Logger) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		logger:   logger.With().Str("handler", "account").Logger(),
	}
}

// Register handles POST /api/account/register.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	resp, err := h.accounts.Register(r.Context(), &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Login handles POST /api/account/login.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	resp, err := h.accounts.Login(r.Context(), &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Logout handles GET /api/account/logout. Tokens are stateless, so the
// client simply discards its token.
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /api/account.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, err := callerEmail(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.DeleteAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	if err := h.accounts.DeleteAccount(r.Context(), caller, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RegisterEmailCheck handles GET /api/account/register-email-check and
// reports whether the email is still free.
func (h *AccountHandler) RegisterEmailCheck(w http.ResponseWriter, r *http.Request) {
	inUse, err := h.accounts.IsEmailInUse(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, !inUse)
}

// LoginEmailCheck handles GET /api/account/login-email-check and reports
// whether an account exists for the email.
func (h *AccountHandler) LoginEmailCheck(w http.ResponseWriter, r *http.Request) {
	inUse, err := h.accounts.IsEmailInUse(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, inUse)
}
