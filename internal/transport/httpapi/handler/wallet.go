package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/glowdesk/walletd/internal/statement"
)

// StatementService builds the wallet statement view model.
type StatementService interface {
	Statement(ctx context.Context, q statement.Query) (*statement.Statement, error)
	Refresh(ctx context.Context, q statement.Query) (*statement.Statement, error)
}

// WalletHandler handles wallet statement HTTP requests
type WalletHandler struct {
	statements StatementService
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(statements StatementService) *WalletHandler {
	return &WalletHandler{statements: statements}
}

// GetStatement handles GET /api/v1/wallet/statement.
// Query params: direction=all|in|out, category=<bucket>, q=<search term>.
func (h *WalletHandler) GetStatement(w http.ResponseWriter, r *http.Request) {
	q, err := parseStatementQuery(r)
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	st, svcErr := h.statements.Statement(r.Context(), q)
	if svcErr != nil {
		respondAppError(w, svcErr)
		return
	}
	respondJSON(w, st, http.StatusOK)
}

// Refresh handles POST /api/v1/wallet/refresh: drop cached reads and
// rebuild the statement from live data.
func (h *WalletHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	q, err := parseStatementQuery(r)
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	st, svcErr := h.statements.Refresh(r.Context(), q)
	if svcErr != nil {
		respondAppError(w, svcErr)
		return
	}
	respondJSON(w, st, http.StatusOK)
}

type queryError string

func (e queryError) Error() string { return string(e) }

func parseStatementQuery(r *http.Request) (statement.Query, error) {
	q := statement.Query{
		Direction: statement.DirectionAll,
		Category:  statement.Category(r.URL.Query().Get("category")),
		Search:    strings.TrimSpace(r.URL.Query().Get("q")),
	}

	switch dir := r.URL.Query().Get("direction"); dir {
	case "", "all":
	case "in":
		q.Direction = statement.DirectionIn
	case "out":
		q.Direction = statement.DirectionOut
	default:
		return statement.Query{}, queryError("direction must be one of all, in, out")
	}

	return q, nil
}
