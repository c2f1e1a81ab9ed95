package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/model"
)

// GetBalance handles GET /users/{id}/wallet
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.wallet.GetBalance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

// Deposit handles POST /users/{id}/wallet/deposit
func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req model.DepositRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.badBody(w, err)
		return
	}

	resp, err := h.wallet.Deposit(r.Context(), chi.URLParam(r, "id"), req.Amount)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListTransactions handles GET /users/{id}/wallet/transactions
// Returns the wallet history, newest first.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.wallet.ListTransactions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if txs == nil {
		txs = []model.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}
