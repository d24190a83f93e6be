package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType indicates whether a ledger entry credits or debits its
// owner's account.
type TransactionType string

const (
	Credit TransactionType = "CREDIT"
	Debit  TransactionType = "DEBIT"
)

// Valid reports whether t is one of the closed set of transaction types.
func (t TransactionType) Valid() bool {
	return t == Credit || t == Debit
}

// Transaction is one immutable ledger entry capturing a balance-affecting
// event on a user's account. Entries that originated from a transfer carry
// the counterparty's account number and may never be updated or deleted;
// manually recorded entries have no counterparty and allow description
// edits and deletion by their owner.
type Transaction struct {
	TransactionID             int64           `json:"transactionID"` // Store-assigned, monotonic
	UserID                    string          `json:"userID"`        // Owner of this ledger entry
	TransactionType           TransactionType `json:"transactionType"`
	Amount                    decimal.Decimal `json:"amount"` // Strictly positive
	Description               string          `json:"description"`
	CounterpartyAccountNumber *string         `json:"counterpartyAccountNumber,omitempty"`
	Timestamp                 time.Time       `json:"timestamp"`
	BalanceAfter              decimal.Decimal `json:"balanceAfter"` // Owner's balance once this entry applied
}

// FromTransfer reports whether the entry was produced by the transfer engine.
func (t Transaction) FromTransfer() bool {
	return t.CounterpartyAccountNumber != nil
}

// SignedAmount returns the amount with the sign it contributes to the owning
// account's balance: positive for CREDIT, negative for DEBIT.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.TransactionType == Debit {
		return t.Amount.Neg()
	}
	return t.Amount
}

// ReplayBalance folds transfer-originated entries, in the order provided,
// over an opening balance and verifies that each entry's BalanceAfter matches
// the running result. Manual entries are skipped: they never move the
// balance. It returns the final balance, or an error naming the first entry
// whose stored BalanceAfter diverges. Entries are expected in timestamp
// order.
func ReplayBalance(opening decimal.Decimal, entries []Transaction) (decimal.Decimal, error) {
	running := opening
	for _, e := range entries {
		if !e.FromTransfer() {
			continue
		}
		running = running.Add(e.SignedAmount())
		if !running.Equal(e.BalanceAfter) {
			return decimal.Zero, fmt.Errorf("transaction %d: replayed balance %s does not match stored balance_after %s",
				e.TransactionID, running.String(), e.BalanceAfter.String())
		}
	}
	return running, nil
}
