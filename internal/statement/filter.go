package statement

import (
	"strings"

	"github.com/glowdesk/walletd/internal/ledger"
)

// Apply filters the reconciled list down to the rows matching the query.
// Feed order is preserved; the input slice is never modified.
func Apply(txs []*ledger.Transaction, q Query) []*ledger.Transaction {
	result := make([]*ledger.Transaction, 0, len(txs))
	search := strings.ToLower(strings.TrimSpace(q.Search))

	for _, tx := range txs {
		if !matchesDirection(tx, q.Direction) {
			continue
		}
		if !matchesCategory(tx, q.Category) {
			continue
		}
		if !matchesSearch(tx, search) {
			continue
		}
		result = append(result, tx)
	}
	return result
}

func matchesDirection(tx *ledger.Transaction, f DirectionFilter) bool {
	switch f {
	case DirectionIn:
		return tx.Direction == ledger.DirectionCredit
	case DirectionOut:
		return tx.Direction == ledger.DirectionDebit
	default:
		return true
	}
}

func matchesCategory(tx *ledger.Transaction, want Category) bool {
	if want == "" {
		return true
	}
	got, ok := Categorize(tx)
	return ok && got == want
}

// matchesSearch is a case-insensitive substring match over the row's
// descriptive fields, including any resolved counterparty name. An empty
// query matches everything.
func matchesSearch(tx *ledger.Transaction, search string) bool {
	if search == "" {
		return true
	}

	haystacks := []string{
		tx.Description,
		tx.ReferenceType,
		tx.ReferenceID,
		tx.TransactionReference,
		string(tx.Type),
		counterpartyName(tx),
	}
	for _, h := range haystacks {
		if h != "" && strings.Contains(strings.ToLower(h), search) {
			return true
		}
	}
	return false
}
