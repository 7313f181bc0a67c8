// Package statement builds the view-ready projection over reconciled
// transactions: direction and category filters, free-text search, date
// grouping and totals, plus counterparty name enrichment. It never mutates
// reconciliation results except to backfill resolved names into metadata.
package statement

import (
	"github.com/shopspring/decimal"

	"github.com/glowdesk/walletd/internal/gateway/salonapi"
	"github.com/glowdesk/walletd/internal/ledger"
)

// DirectionFilter narrows the statement to one money direction
type DirectionFilter string

// Direction filters
const (
	DirectionAll DirectionFilter = "all"
	DirectionIn  DirectionFilter = "in"  // credits only
	DirectionOut DirectionFilter = "out" // debits only
)

// Query is one statement request: filters plus search term.
type Query struct {
	Direction DirectionFilter
	Category  Category
	Search    string
}

// EntryKind distinguishes group headers from transaction rows
type EntryKind string

// Entry kinds
const (
	EntryHeader      EntryKind = "header"
	EntryTransaction EntryKind = "transaction"
)

// Entry is one list element: either a synthetic date header or a
// transaction. Headers appear once per contiguous run of same-day rows,
// interleaved in feed order.
type Entry struct {
	Kind        EntryKind           `json:"kind"`
	Header      string              `json:"header,omitempty"`
	Transaction *ledger.Transaction `json:"transaction,omitempty"`
}

// Totals are the aggregates over the currently filtered set, recomputed on
// every filter or search change.
type Totals struct {
	Credits decimal.Decimal `json:"credits"`
	Debits  decimal.Decimal `json:"debits"`
	Net     decimal.Decimal `json:"net"`
	Count   int             `json:"count"`
}

// Statement is the reconciled, filtered, grouped view model handed to the
// UI.
type Statement struct {
	Wallet  *salonapi.WalletSnapshot `json:"wallet"`
	Entries []Entry                  `json:"entries"`
	Totals  Totals                   `json:"totals"`
}

// ComputeTotals sums credits and debits over the given (already filtered)
// transactions.
func ComputeTotals(txs []*ledger.Transaction) Totals {
	totals := Totals{
		Credits: decimal.Zero,
		Debits:  decimal.Zero,
		Count:   len(txs),
	}
	for _, tx := range txs {
		if tx.Direction == ledger.DirectionCredit {
			totals.Credits = totals.Credits.Add(tx.Amount)
		} else {
			totals.Debits = totals.Debits.Add(tx.Amount)
		}
	}
	totals.Net = totals.Credits.Sub(totals.Debits)
	return totals
}
