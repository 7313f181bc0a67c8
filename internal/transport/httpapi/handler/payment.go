package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/glowdesk/walletd/internal/gateway/salonapi"
)

// PaymentService reads payment state, either once or by waiting until the
// payment settles.
type PaymentService interface {
	GetPaymentStatus(ctx context.Context, paymentID string) (*salonapi.PaymentStatus, error)
}

// SettlementWaiter blocks until a payment reaches a terminal status or the
// polling budget runs out.
type SettlementWaiter interface {
	Wait(ctx context.Context, paymentID string) (*salonapi.PaymentStatus, error)
}

// PaymentHandler handles payment status HTTP requests
type PaymentHandler struct {
	payments PaymentService
	waiter   SettlementWaiter
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(payments PaymentService, waiter SettlementWaiter) *PaymentHandler {
	return &PaymentHandler{payments: payments, waiter: waiter}
}

// GetStatus handles GET /api/v1/payments/{id}/status. With ?wait=true the
// request blocks on the bounded poller instead of returning the current
// state immediately.
func (h *PaymentHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "id")
	if paymentID == "" {
		respondError(w, "payment id is required", http.StatusBadRequest)
		return
	}

	var (
		status *salonapi.PaymentStatus
		err    error
	)
	if r.URL.Query().Get("wait") == "true" && h.waiter != nil {
		status, err = h.waiter.Wait(r.Context(), paymentID)
	} else {
		status, err = h.payments.GetPaymentStatus(r.Context(), paymentID)
	}
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, status, http.StatusOK)
}
