// Package ledger reconstructs a consistent balance trail from the upstream
// transaction feed. The server does not reliably persist per-transaction
// balance snapshots (legacy rows predate the snapshot columns), so the one
// value guaranteed fresh — the live wallet balance — anchors a backward walk
// over the newest-first feed.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the semantic type of a wallet transaction
type TransactionType string

// Known transaction types
const (
	TxDeposit          TransactionType = "deposit"
	TxWithdrawal       TransactionType = "withdrawal"
	TxTransfer         TransactionType = "transfer"
	TxCommission       TransactionType = "commission"
	TxRefund           TransactionType = "refund"
	TxFee              TransactionType = "fee"
	TxLoanRepayment    TransactionType = "loan_repayment"
	TxLoanDisbursement TransactionType = "loan_disbursement"
	TxUnknown          TransactionType = "unknown"
)

// Direction is whether a transaction increases or decreases the balance
type Direction string

// Directions
const (
	DirectionCredit Direction = "credit"
	DirectionDebit  Direction = "debit"
)

// Status is the settlement state of a transaction
type Status string

// Statuses
const (
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
	StatusUnknown   Status = "unknown"
)

// Transaction is the canonical, fully-populated transaction the reconciler
// produces. BalanceBefore/BalanceAfter are always set, Amount is always a
// non-negative magnitude, and Metadata is always a parsed map.
type Transaction struct {
	ID                   string
	WalletID             string
	Type                 TransactionType
	Amount               decimal.Decimal
	Direction            Direction
	BalanceBefore        decimal.Decimal
	BalanceAfter         decimal.Decimal
	Status               Status
	Description          string
	ReferenceType        string
	ReferenceID          string
	TransactionReference string
	Metadata             map[string]interface{}
	CreatedAt            time.Time
	UpdatedAt            time.Time

	// Flagged marks rows that needed a policy decision during
	// reconciliation (unknown type, balance mismatch) for review.
	Flagged bool
}

// ParseTransactionType maps a raw type string onto the known enumeration,
// falling back to TxUnknown.
func ParseTransactionType(s string) TransactionType {
	switch TransactionType(s) {
	case TxDeposit, TxWithdrawal, TxTransfer, TxCommission, TxRefund,
		TxFee, TxLoanRepayment, TxLoanDisbursement:
		return TransactionType(s)
	default:
		return TxUnknown
	}
}

// DirectionOf classifies a transaction type as debit or credit. The
// classification is purely type-driven: withdrawals, transfers, fees and
// loan repayments move money out; everything else — including unknown types,
// conservatively, so inbound totals never silently shrink — is a credit.
func DirectionOf(t TransactionType) Direction {
	switch t {
	case TxWithdrawal, TxTransfer, TxFee, TxLoanRepayment:
		return DirectionDebit
	default:
		return DirectionCredit
	}
}

// ParseStatus maps a raw status string onto the known enumeration, falling
// back to StatusUnknown.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusCompleted, StatusPending, StatusFailed, StatusCancelled:
		return Status(s)
	default:
		return StatusUnknown
	}
}
