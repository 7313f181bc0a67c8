package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/glowdesk/walletd/internal/apperrors"
	"github.com/glowdesk/walletd/internal/credstore"
	"github.com/glowdesk/walletd/internal/gateway/salonapi"
	"github.com/glowdesk/walletd/internal/statement"
	"github.com/glowdesk/walletd/internal/transport/httpapi/handler"
)

// =============================================================================
// Mocks
// =============================================================================

type MockStatementService struct {
	mock.Mock
}

func (m *MockStatementService) Statement(ctx context.Context, q statement.Query) (*statement.Statement, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*statement.Statement), args.Error(1)
}

func (m *MockStatementService) Refresh(ctx context.Context, q statement.Query) (*statement.Statement, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*statement.Statement), args.Error(1)
}

type MockLoginService struct {
	mock.Mock
	creds *credstore.Store
	token string
}

func (m *MockLoginService) Login(ctx context.Context, email, password string) error {
	args := m.Called(ctx, email, password)
	if args.Error(0) == nil && m.creds != nil {
		m.creds.Set(m.token)
	}
	return args.Error(0)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) GetPaymentStatus(ctx context.Context, paymentID string) (*salonapi.PaymentStatus, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*salonapi.PaymentStatus), args.Error(1)
}

func emptyStatement() *statement.Statement {
	return &statement.Statement{
		Wallet: &salonapi.WalletSnapshot{ID: "w1", Balance: decimal.NewFromInt(1000), Currency: "NGN"},
		Totals: statement.Totals{Credits: decimal.Zero, Debits: decimal.Zero, Net: decimal.Zero},
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// =============================================================================
// Wallet Handler Tests
// =============================================================================

func TestGetStatement_ParsesQueryParams(t *testing.T) {
	svc := new(MockStatementService)
	svc.On("Statement", mock.Anything, statement.Query{
		Direction: statement.DirectionOut,
		Category:  statement.CategoryCommissionPayment,
		Search:    "ada",
	}).Return(emptyStatement(), nil)

	h := handler.NewWalletHandler(svc)
	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/wallet/statement?direction=out&category=commission_payment&q=ada", nil)
	rec := httptest.NewRecorder()

	h.GetStatement(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestGetStatement_DefaultsToAllDirections(t *testing.T) {
	svc := new(MockStatementService)
	svc.On("Statement", mock.Anything, statement.Query{Direction: statement.DirectionAll}).
		Return(emptyStatement(), nil)

	h := handler.NewWalletHandler(svc)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/wallet/statement", nil)
	rec := httptest.NewRecorder()

	h.GetStatement(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestGetStatement_RejectsUnknownDirection(t *testing.T) {
	h := handler.NewWalletHandler(new(MockStatementService))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/wallet/statement?direction=sideways", nil)
	rec := httptest.NewRecorder()

	h.GetStatement(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetStatement_SessionExpiredMapsTo401(t *testing.T) {
	svc := new(MockStatementService)
	svc.On("Statement", mock.Anything, mock.Anything).
		Return(nil, apperrors.SessionExpired("token rejected"))

	h := handler.NewWalletHandler(svc)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/wallet/statement", nil)
	rec := httptest.NewRecorder()

	h.GetStatement(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, apperrors.KindSessionExpired, resp.Code)
}

func TestGetStatement_UpstreamFailureMapsTo502(t *testing.T) {
	svc := new(MockStatementService)
	svc.On("Statement", mock.Anything, mock.Anything).
		Return(nil, apperrors.Upstream("service unavailable", nil))

	h := handler.NewWalletHandler(svc)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/wallet/statement", nil)
	rec := httptest.NewRecorder()

	h.GetStatement(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestRefresh_DelegatesToRefresh(t *testing.T) {
	svc := new(MockStatementService)
	svc.On("Refresh", mock.Anything, statement.Query{Direction: statement.DirectionAll}).
		Return(emptyStatement(), nil)

	h := handler.NewWalletHandler(svc)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/wallet/refresh", nil)
	rec := httptest.NewRecorder()

	h.Refresh(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
	svc.AssertNotCalled(t, "Statement", mock.Anything, mock.Anything)
}

// =============================================================================
// Auth Handler Tests
// =============================================================================

func TestLogin_ProxiesAndReturnsToken(t *testing.T) {
	creds := credstore.New()
	svc := &MockLoginService{creds: creds, token: "tok-123"}
	svc.On("Login", mock.Anything, "ada@example.com", "secret").Return(nil)

	h := handler.NewAuthHandler(svc, creds)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"email":"ada@example.com","password":"secret"}`))
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp handler.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "tok-123", resp.Token)
}

func TestLogin_WrongPasswordIs401InvalidCredentials(t *testing.T) {
	creds := credstore.New()
	svc := &MockLoginService{}
	svc.On("Login", mock.Anything, "ada@example.com", "nope").
		Return(apperrors.InvalidCredentials("wrong email or password"))

	h := handler.NewAuthHandler(svc, creds)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"email":"ada@example.com","password":"nope"}`))
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, apperrors.KindInvalidCredentials, resp.Code)
}

func TestLogin_RejectsMalformedAndIncompleteBodies(t *testing.T) {
	h := handler.NewAuthHandler(&MockLoginService{}, credstore.New())

	for _, body := range []string{"{not json", `{"email":"ada@example.com"}`, `{}`} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
		rec := httptest.NewRecorder()

		h.Login(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
	}
}

// =============================================================================
// Payment Handler Tests
// =============================================================================

type MockSettlementWaiter struct {
	mock.Mock
}

func (m *MockSettlementWaiter) Wait(ctx context.Context, paymentID string) (*salonapi.PaymentStatus, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*salonapi.PaymentStatus), args.Error(1)
}

func paymentRouter(h *handler.PaymentHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/api/v1/payments/{id}/status", h.GetStatus)
	return r
}

func TestGetPaymentStatus_ReturnsCurrentState(t *testing.T) {
	svc := new(MockPaymentService)
	svc.On("GetPaymentStatus", mock.Anything, "p1").
		Return(&salonapi.PaymentStatus{ID: "p1", Status: "pending"}, nil)

	r := paymentRouter(handler.NewPaymentHandler(svc, new(MockSettlementWaiter)))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/payments/p1/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"pending"`)
}

func TestGetPaymentStatus_WaitUsesThePoller(t *testing.T) {
	svc := new(MockPaymentService)
	waiter := new(MockSettlementWaiter)
	waiter.On("Wait", mock.Anything, "p1").
		Return(&salonapi.PaymentStatus{ID: "p1", Status: "completed"}, nil)

	r := paymentRouter(handler.NewPaymentHandler(svc, waiter))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/payments/p1/status?wait=true", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"completed"`)
	svc.AssertNotCalled(t, "GetPaymentStatus", mock.Anything, mock.Anything)
}

func TestGetPaymentStatus_ExhaustedPollerMapsTo504(t *testing.T) {
	waiter := new(MockSettlementWaiter)
	waiter.On("Wait", mock.Anything, "p1").
		Return(nil, apperrors.Timeout("payment did not settle within the polling window"))

	r := paymentRouter(handler.NewPaymentHandler(new(MockPaymentService), waiter))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/payments/p1/status?wait=true", nil))

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestGetPaymentStatus_UnknownPaymentIs404(t *testing.T) {
	svc := new(MockPaymentService)
	svc.On("GetPaymentStatus", mock.Anything, "ghost").
		Return(nil, apperrors.NotFound("payment"))

	r := paymentRouter(handler.NewPaymentHandler(svc, nil))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/payments/ghost/status", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// Health Handler Tests
// =============================================================================

func TestGetHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	handler.GetHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestGetReadiness_NoCacheConfigured(t *testing.T) {
	h := handler.NewHealthHandler(nil)
	rec := httptest.NewRecorder()

	h.GetReadiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
