package statement

import "github.com/glowdesk/walletd/internal/ledger"

// Category is a semantic bucket for statement filtering. Computed from the
// transaction type plus metadata flags, never stored on the raw record.
type Category string

// Categories
const (
	CategoryTopup             Category = "topup"
	CategoryCommissionPayment Category = "commission_payment"
	CategoryCommissionEarned  Category = "commission_earned"
	CategoryWithdrawal        Category = "withdrawal"
	CategoryFee               Category = "fee"
	CategoryLoan              Category = "loan"
	CategoryRefund            Category = "refund"
	CategoryTransfer          Category = "transfer"
)

// commissionLinkKeys are the metadata keys whose presence marks a transfer
// as a commission payment rather than a generic transfer.
var commissionLinkKeys = []string{"commissionId", "commission_id"}

// Categorize maps a normalized transaction onto its statement bucket.
// Returns false for transactions outside every bucket (unknown types),
// which match only when no category filter is active.
func Categorize(tx *ledger.Transaction) (Category, bool) {
	switch tx.Type {
	case ledger.TxDeposit:
		return CategoryTopup, true
	case ledger.TxCommission:
		return CategoryCommissionEarned, true
	case ledger.TxWithdrawal:
		return CategoryWithdrawal, true
	case ledger.TxFee:
		return CategoryFee, true
	case ledger.TxLoanRepayment, ledger.TxLoanDisbursement:
		return CategoryLoan, true
	case ledger.TxRefund:
		return CategoryRefund, true
	case ledger.TxTransfer:
		if isCommissionLinked(tx) {
			return CategoryCommissionPayment, true
		}
		return CategoryTransfer, true
	default:
		return "", false
	}
}

// isCommissionLinked reports whether the transaction's metadata carries a
// commission-linking key.
func isCommissionLinked(tx *ledger.Transaction) bool {
	for _, key := range commissionLinkKeys {
		if v, ok := tx.Metadata[key]; ok && v != nil && v != "" {
			return true
		}
	}
	return false
}
