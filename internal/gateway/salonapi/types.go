package salonapi

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/glowdesk/walletd/pkg/money"
)

// WalletSnapshot is the wallet state fetched at the start of a
// reconciliation run. Immutable for the duration of one pass.
type WalletSnapshot struct {
	ID       string
	Balance  decimal.Decimal
	Currency string
}

// UserName is one resolved counterparty display name.
type UserName struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
}

// PaymentStatus is the state of one payment as reported by the upstream
// service.
type PaymentStatus struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// IsTerminal reports whether the payment has reached a final state.
func (p *PaymentStatus) IsTerminal() bool {
	switch p.Status {
	case "completed", "failed", "cancelled":
		return true
	}
	return false
}

// decodeWallet parses the GET /wallets/me payload. The balance may arrive
// as a number or a numeric string, and the object may be wrapped in a
// {"data": ...} envelope.
func decodeWallet(body []byte) (*WalletSnapshot, error) {
	var raw struct {
		Data *struct {
			ID       string      `json:"id"`
			Balance  interface{} `json:"balance"`
			Currency string      `json:"currency"`
		} `json:"data"`
		ID       string      `json:"id"`
		Balance  interface{} `json:"balance"`
		Currency string      `json:"currency"`
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode wallet payload: %w", err)
	}

	id, balance, currency := raw.ID, raw.Balance, raw.Currency
	if raw.Data != nil {
		id, balance, currency = raw.Data.ID, raw.Data.Balance, raw.Data.Currency
	}

	if id == "" {
		return nil, fmt.Errorf("wallet payload missing id")
	}

	bal, ok := money.ParseAny(balance)
	if !ok {
		return nil, fmt.Errorf("wallet payload has unparsable balance %v", balance)
	}

	return &WalletSnapshot{
		ID:       id,
		Balance:  bal,
		Currency: currency,
	}, nil
}

// decodeTransactionFeed parses the transaction list payload. The server
// returns either a bare array or an array wrapped under "data" or
// "transactions"; rows keep their raw shape because field naming varies per
// row and normalization belongs to the ledger package.
func decodeTransactionFeed(body []byte) ([]map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var direct []map[string]interface{}
	if err := dec.Decode(&direct); err == nil {
		return direct, nil
	}

	var wrapped struct {
		Data         []map[string]interface{} `json:"data"`
		Transactions []map[string]interface{} `json:"transactions"`
	}
	dec = json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&wrapped); err != nil {
		return nil, fmt.Errorf("failed to decode transaction feed: %w", err)
	}

	if wrapped.Data != nil {
		return wrapped.Data, nil
	}
	if wrapped.Transactions != nil {
		return wrapped.Transactions, nil
	}
	return []map[string]interface{}{}, nil
}

// decodeUserNames parses the POST /users/names payload, accepting a bare
// array or a {"data": [...]} envelope.
func decodeUserNames(body []byte) ([]UserName, error) {
	var direct []UserName
	if err := json.Unmarshal(body, &direct); err == nil {
		return direct, nil
	}

	var wrapped struct {
		Data []UserName `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to decode user names: %w", err)
	}
	return wrapped.Data, nil
}
