package statement

import (
	"context"
	"sync"
	"time"

	"github.com/glowdesk/walletd/internal/gateway/salonapi"
	"github.com/glowdesk/walletd/internal/ledger"
	"github.com/glowdesk/walletd/pkg/logger"
)

// API is the slice of the upstream gateway the statement pipeline consumes.
type API interface {
	GetWallet(ctx context.Context) (*salonapi.WalletSnapshot, error)
	ListTransactions(ctx context.Context, walletID string) ([]map[string]interface{}, error)
	LookupUserNames(ctx context.Context, userIDs []string) ([]salonapi.UserName, error)
	InvalidateWallet(ctx context.Context, walletID string)
}

// Service runs the full statement pipeline: fetch wallet and feed (through
// the read cache), reconcile the balance trail, enrich counterparty names,
// then filter, group and total per the query.
type Service struct {
	api        API
	reconciler *ledger.Reconciler
	enricher   *Enricher
	logger     *logger.Logger
	now        func() time.Time

	mu           sync.Mutex
	lastWalletID string
}

// NewService creates a statement service
func NewService(api API, log *logger.Logger) *Service {
	return &Service{
		api:        api,
		reconciler: ledger.NewReconciler(log),
		enricher:   NewEnricher(api, NewNameCache(), log),
		logger:     log.WithField("component", "statement"),
		now:        time.Now,
	}
}

// Statement produces the view model for one query. Only the wallet and
// feed fetches can fail; everything downstream degrades row by row inside
// the reconciler.
func (s *Service) Statement(ctx context.Context, q Query) (*Statement, error) {
	wallet, err := s.api.GetWallet(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.lastWalletID = wallet.ID
	s.mu.Unlock()

	feed, err := s.api.ListTransactions(ctx, wallet.ID)
	if err != nil {
		return nil, err
	}

	txs, stats := s.reconciler.Reconcile(wallet.ID, wallet.Balance, feed)
	if stats.BalanceMismatches > 0 {
		s.logger.Warn("statement built over inconsistent server balances",
			"wallet_id", wallet.ID, "mismatches", stats.BalanceMismatches)
	}

	s.enricher.Enrich(ctx, txs)

	filtered := Apply(txs, q)

	return &Statement{
		Wallet:  wallet,
		Entries: GroupByDate(filtered, s.now()),
		Totals:  ComputeTotals(filtered),
	}, nil
}

// Refresh drops the cached wallet reads and reruns the whole pipeline from
// scratch. There is no incremental patching: pull-to-refresh means a clean
// rebuild.
func (s *Service) Refresh(ctx context.Context, q Query) (*Statement, error) {
	s.mu.Lock()
	walletID := s.lastWalletID
	s.mu.Unlock()

	s.api.InvalidateWallet(ctx, walletID)
	return s.Statement(ctx, q)
}
