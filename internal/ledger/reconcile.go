package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/glowdesk/walletd/pkg/logger"
	"github.com/glowdesk/walletd/pkg/money"
)

// balanceEpsilon is how far a server-supplied balanceAfter may drift from
// the computed running balance before it is overridden. 0.01 currency units.
var balanceEpsilon = decimal.NewFromFloat(0.01)

// Stats summarizes the policy decisions one reconciliation run had to make.
type Stats struct {
	// BalanceMismatches counts rows whose explicit balanceAfter was
	// overridden by the computed value.
	BalanceMismatches int
	// Degradations counts rows with unparsable amounts or metadata that
	// fell back to safe defaults.
	Degradations int
	// UnknownTypes counts rows whose transaction type was outside the
	// known enumeration.
	UnknownTypes int
}

// Reconciler turns a raw newest-first feed plus the live wallet balance
// into a gap-free balance trail.
type Reconciler struct {
	logger *logger.Logger
}

// NewReconciler creates a reconciler
func NewReconciler(log *logger.Logger) *Reconciler {
	return &Reconciler{
		logger: log.WithField("component", "ledger"),
	}
}

// Reconcile processes the feed in order (newest → oldest), walking the
// running balance backward from currentBalance. Every emitted transaction
// has both balance fields populated and, for adjacent rows, the newer row's
// BalanceBefore equals the older row's BalanceAfter. The input order is
// preserved; no re-sorting happens here or downstream.
//
// Malformed rows never abort the run: unparsable amounts become zero,
// broken metadata becomes an empty map, unknown types are kept and flagged.
func (r *Reconciler) Reconcile(walletID string, currentBalance decimal.Decimal, feed []map[string]interface{}) ([]*Transaction, Stats) {
	var stats Stats
	txs := make([]*Transaction, 0, len(feed))

	runningBalance := currentBalance
	syntheticSeq := 0

	for _, raw := range feed {
		tx := &Transaction{
			WalletID: walletID,
		}

		if id := lookupString(raw, "walletId", "wallet_id"); id != "" {
			tx.WalletID = id
		}

		rawType := lookupString(raw, "transactionType", "transaction_type", "type")
		tx.Type = ParseTransactionType(rawType)
		if tx.Type == TxUnknown {
			stats.UnknownTypes++
			tx.Flagged = true
			r.logger.Warn("unknown transaction type", "raw_type", rawType, "wallet_id", tx.WalletID)
		}
		tx.Direction = DirectionOf(tx.Type)

		amount, ok := lookupAmount(raw, "amount")
		if !ok {
			if _, present := lookup(raw, "amount"); present {
				stats.Degradations++
				r.logger.Warn("unparsable amount treated as zero", "wallet_id", tx.WalletID)
			}
			amount = decimal.Zero
		}
		tx.Amount = amount.Abs()

		tx.BalanceAfter, tx.BalanceBefore = r.resolveBalances(raw, tx, runningBalance, &stats)
		runningBalance = tx.BalanceBefore

		tx.Status = ParseStatus(lookupString(raw, "status"))
		tx.Description = lookupString(raw, "description", "narration")
		tx.ReferenceType = lookupString(raw, "referenceType", "reference_type")
		tx.ReferenceID = lookupString(raw, "referenceId", "reference_id")
		tx.TransactionReference = lookupString(raw, "transactionReference", "transaction_reference", "reference")

		metadata, err := parseMetadata(raw)
		if err != nil {
			stats.Degradations++
			r.logger.Warn("metadata parse failed, using empty map", "wallet_id", tx.WalletID, "error", err)
		}
		tx.Metadata = metadata

		if created, ok := lookupTime(raw, "createdAt", "created_at"); ok {
			tx.CreatedAt = created
		}
		if updated, ok := lookupTime(raw, "updatedAt", "updated_at"); ok {
			tx.UpdatedAt = updated
		} else {
			tx.UpdatedAt = tx.CreatedAt
		}

		tx.ID = lookupString(raw, "id", "transactionId", "transaction_id")
		if tx.ID == "" {
			// Synthesized from a per-run monotonic counter plus the row's
			// timestamp: deterministic across retries of the same feed,
			// never random.
			syntheticSeq++
			tx.ID = fmt.Sprintf("synthetic-%d-%04d", tx.CreatedAt.Unix(), syntheticSeq)
		}

		txs = append(txs, tx)
	}

	if stats.BalanceMismatches > 0 || stats.Degradations > 0 {
		r.logger.Warn("reconciliation completed with degradations",
			"wallet_id", walletID,
			"balance_mismatches", stats.BalanceMismatches,
			"degradations", stats.Degradations,
			"unknown_types", stats.UnknownTypes,
		)
	}

	return txs, stats
}

// resolveBalances fills both balance fields for one row. Precedence per
// field: explicit value on the raw record → derived from the other resolved
// field via the direction identity (credit: after = before + amount, debit:
// after = before − amount) → anchored to the running balance.
//
// An explicit balanceAfter that disagrees with the running balance beyond
// the epsilon loses to the computed value: the displayed trail must stay
// contiguous even when the server row is stale.
func (r *Reconciler) resolveBalances(raw map[string]interface{}, tx *Transaction, runningBalance decimal.Decimal, stats *Stats) (after, before decimal.Decimal) {
	explicitAfter, okAfter := lookupAmount(raw, "balanceAfter", "balance_after")
	explicitBefore, okBefore := lookupAmount(raw, "balanceBefore", "balance_before")

	deriveBefore := func(after decimal.Decimal) decimal.Decimal {
		if tx.Direction == DirectionCredit {
			return after.Sub(tx.Amount)
		}
		return after.Add(tx.Amount)
	}
	deriveAfter := func(before decimal.Decimal) decimal.Decimal {
		if tx.Direction == DirectionCredit {
			return before.Add(tx.Amount)
		}
		return before.Sub(tx.Amount)
	}

	switch {
	case okAfter:
		after = explicitAfter
		if !money.WithinEpsilon(explicitAfter, runningBalance, balanceEpsilon) {
			stats.BalanceMismatches++
			tx.Flagged = true
			r.logger.Warn("server balance disagrees with computed trail, using computed",
				"wallet_id", tx.WalletID,
				"server_balance_after", explicitAfter.String(),
				"computed_balance_after", runningBalance.String(),
			)
			after = runningBalance
		}
		if okBefore {
			before = explicitBefore
		} else {
			before = deriveBefore(after)
		}
	case okBefore:
		before = explicitBefore
		after = deriveAfter(before)
	default:
		after = runningBalance
		before = deriveBefore(after)
	}

	return after, before
}
