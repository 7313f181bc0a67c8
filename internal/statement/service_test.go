package statement_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/glowdesk/walletd/internal/apperrors"
	"github.com/glowdesk/walletd/internal/gateway/salonapi"
	"github.com/glowdesk/walletd/internal/statement"
)

// =============================================================================
// Mock API
// =============================================================================

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) GetWallet(ctx context.Context) (*salonapi.WalletSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*salonapi.WalletSnapshot), args.Error(1)
}

func (m *MockAPI) ListTransactions(ctx context.Context, walletID string) ([]map[string]interface{}, error) {
	args := m.Called(ctx, walletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]map[string]interface{}), args.Error(1)
}

func (m *MockAPI) LookupUserNames(ctx context.Context, userIDs []string) ([]salonapi.UserName, error) {
	args := m.Called(ctx, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]salonapi.UserName), args.Error(1)
}

func (m *MockAPI) InvalidateWallet(ctx context.Context, walletID string) {
	m.Called(ctx, walletID)
}

func snapshot(balance string) *salonapi.WalletSnapshot {
	return &salonapi.WalletSnapshot{
		ID:       "w1",
		Balance:  decimal.RequireFromString(balance),
		Currency: "NGN",
	}
}

// =============================================================================
// Service Tests
// =============================================================================

func TestService_BuildsStatementEndToEnd(t *testing.T) {
	api := new(MockAPI)
	api.On("GetWallet", mock.Anything).Return(snapshot("50000"), nil)
	api.On("ListTransactions", mock.Anything, "w1").Return([]map[string]interface{}{
		{
			"id":        "tx-1",
			"type":      "deposit",
			"amount":    "10000",
			"status":    "completed",
			"createdAt": "2026-08-30T10:00:00Z",
		},
		{
			"id":        "tx-2",
			"type":      "fee",
			"amount":    "2000",
			"status":    "completed",
			"createdAt": "2026-08-29T09:00:00Z",
		},
	}, nil)

	svc := statement.NewService(api, testLogger())

	st, err := svc.Statement(context.Background(), statement.Query{Direction: statement.DirectionAll})
	require.NoError(t, err)
	require.NotNil(t, st.Wallet)
	assert.Equal(t, "50000", st.Wallet.Balance.String())

	// Two dated rows, two run headers
	require.Len(t, st.Entries, 4)
	assert.Equal(t, statement.EntryHeader, st.Entries[0].Kind)
	assert.Equal(t, "tx-1", st.Entries[1].Transaction.ID)
	assert.Equal(t, statement.EntryHeader, st.Entries[2].Kind)
	assert.Equal(t, "tx-2", st.Entries[3].Transaction.ID)

	// Balance trail reconstructed from the live balance backward
	assert.Equal(t, "50000", st.Entries[1].Transaction.BalanceAfter.String())
	assert.Equal(t, "40000", st.Entries[1].Transaction.BalanceBefore.String())
	assert.Equal(t, "40000", st.Entries[3].Transaction.BalanceAfter.String())
	assert.Equal(t, "42000", st.Entries[3].Transaction.BalanceBefore.String())

	assert.Equal(t, "10000", st.Totals.Credits.String())
	assert.Equal(t, "2000", st.Totals.Debits.String())
	assert.Equal(t, 2, st.Totals.Count)

	// No commission-linked rows, so no name lookups
	api.AssertNotCalled(t, "LookupUserNames", mock.Anything, mock.Anything)
}

func TestService_FilterAppliesBeforeGroupingAndTotals(t *testing.T) {
	api := new(MockAPI)
	api.On("GetWallet", mock.Anything).Return(snapshot("1000"), nil)
	api.On("ListTransactions", mock.Anything, "w1").Return([]map[string]interface{}{
		{"id": "tx-1", "type": "deposit", "amount": "300", "createdAt": "2026-08-30T10:00:00Z"},
		{"id": "tx-2", "type": "withdrawal", "amount": "100", "createdAt": "2026-08-30T09:00:00Z"},
	}, nil)

	svc := statement.NewService(api, testLogger())

	st, err := svc.Statement(context.Background(), statement.Query{Direction: statement.DirectionOut})
	require.NoError(t, err)

	require.Len(t, st.Entries, 2) // one header, one row
	assert.Equal(t, "tx-2", st.Entries[1].Transaction.ID)
	assert.Equal(t, "100", st.Totals.Debits.String())
	assert.Equal(t, "0", st.Totals.Credits.String())
	assert.Equal(t, 1, st.Totals.Count)
}

func TestService_EnrichesCommissionCounterparties(t *testing.T) {
	api := new(MockAPI)
	api.On("GetWallet", mock.Anything).Return(snapshot("1000"), nil)
	api.On("ListTransactions", mock.Anything, "w1").Return([]map[string]interface{}{
		{
			"id":        "tx-1",
			"type":      "transfer",
			"amount":    "250",
			"createdAt": "2026-08-30T10:00:00Z",
			"metadata":  `{"commissionId":"c1","counterpartyId":"u1"}`,
		},
	}, nil)
	api.On("LookupUserNames", mock.Anything, []string{"u1"}).Return([]salonapi.UserName{
		{ID: "u1", FullName: "Ada Obi"},
	}, nil)

	svc := statement.NewService(api, testLogger())

	// The string metadata is parsed during reconciliation, classifying the
	// row as a commission payment and exposing it to enrichment and search.
	st, err := svc.Statement(context.Background(), statement.Query{Category: statement.CategoryCommissionPayment})
	require.NoError(t, err)
	require.Len(t, st.Entries, 2)

	tx := st.Entries[1].Transaction
	assert.Equal(t, "c1", tx.Metadata["commissionId"])
	assert.Equal(t, "Ada Obi", tx.Metadata["counterpartyName"])

	// Name search now matches the enriched row
	st, err = svc.Statement(context.Background(), statement.Query{Search: "ada"})
	require.NoError(t, err)
	require.Len(t, st.Entries, 2)
	assert.Equal(t, "tx-1", st.Entries[1].Transaction.ID)
}

func TestService_WalletErrorPropagates(t *testing.T) {
	api := new(MockAPI)
	api.On("GetWallet", mock.Anything).Return(nil, apperrors.SessionExpired("token expired"))

	svc := statement.NewService(api, testLogger())

	_, err := svc.Statement(context.Background(), statement.Query{})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindSessionExpired))
	api.AssertNotCalled(t, "ListTransactions", mock.Anything, mock.Anything)
}

func TestService_FeedErrorPropagates(t *testing.T) {
	api := new(MockAPI)
	api.On("GetWallet", mock.Anything).Return(snapshot("1000"), nil)
	api.On("ListTransactions", mock.Anything, "w1").
		Return(nil, apperrors.Upstream("bad gateway", nil))

	svc := statement.NewService(api, testLogger())

	_, err := svc.Statement(context.Background(), statement.Query{})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUpstream))
}

func TestService_RefreshInvalidatesThenRebuilds(t *testing.T) {
	api := new(MockAPI)
	api.On("GetWallet", mock.Anything).Return(snapshot("500"), nil)
	api.On("ListTransactions", mock.Anything, "w1").Return([]map[string]interface{}{}, nil)
	api.On("InvalidateWallet", mock.Anything, "w1").Return()

	svc := statement.NewService(api, testLogger())

	// Prime lastWalletID with a normal build first
	_, err := svc.Statement(context.Background(), statement.Query{})
	require.NoError(t, err)

	st, err := svc.Refresh(context.Background(), statement.Query{})
	require.NoError(t, err)
	assert.Empty(t, st.Entries)

	api.AssertCalled(t, "InvalidateWallet", mock.Anything, "w1")
	api.AssertNumberOfCalls(t, "GetWallet", 2)
}

func TestService_EmptyFeedYieldsEmptyStatement(t *testing.T) {
	api := new(MockAPI)
	api.On("GetWallet", mock.Anything).Return(snapshot("750"), nil)
	api.On("ListTransactions", mock.Anything, "w1").Return([]map[string]interface{}{}, nil)

	svc := statement.NewService(api, testLogger())

	st, err := svc.Statement(context.Background(), statement.Query{})
	require.NoError(t, err)
	assert.Empty(t, st.Entries)
	assert.Equal(t, 0, st.Totals.Count)
	assert.Equal(t, "0", st.Totals.Net.String())
}
