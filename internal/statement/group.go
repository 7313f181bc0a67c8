package statement

import (
	"time"

	"github.com/glowdesk/walletd/internal/ledger"
)

// undatedLabel groups rows whose raw record carried no usable timestamp.
const undatedLabel = "Earlier"

// GroupByDate interleaves date headers with transaction rows. Rows keep
// their feed order; a header is emitted once per contiguous run of
// same-bucket rows, so an out-of-order feed can legitimately repeat a
// label.
func GroupByDate(txs []*ledger.Transaction, now time.Time) []Entry {
	entries := make([]Entry, 0, len(txs)+4)

	var currentLabel string
	for i, tx := range txs {
		label := dateLabel(tx.CreatedAt, now)
		if i == 0 || label != currentLabel {
			currentLabel = label
			entries = append(entries, Entry{Kind: EntryHeader, Header: label})
		}
		entries = append(entries, Entry{Kind: EntryTransaction, Transaction: tx})
	}
	return entries
}

// dateLabel buckets a timestamp into Today, Yesterday or a calendar date.
func dateLabel(t, now time.Time) string {
	if t.IsZero() {
		return undatedLabel
	}

	t = t.In(now.Location())
	ty, tm, td := t.Date()
	ny, nm, nd := now.Date()
	if ty == ny && tm == nm && td == nd {
		return "Today"
	}

	yy, ym, yd := now.AddDate(0, 0, -1).Date()
	if ty == yy && tm == ym && td == yd {
		return "Yesterday"
	}

	return t.Format("2 Jan 2006")
}
