package domain

import (
	"github.com/shopspring/decimal"
)

// TransactionFilter narrows ledger listing queries.
type TransactionFilter struct {
	// Search matches against the description or the counterparty account
	// number (case-insensitive substring).
	Search string
	// Type restricts results to a single transaction type when non-nil.
	Type *TransactionType
}

// TransactionSummary aggregates the entries matched by a listing query:
// per-type entry counts and amount sums plus the overall count.
type TransactionSummary struct {
	TotalCredit decimal.Decimal
	TotalDebit  decimal.Decimal
	CreditCount int64
	DebitCount  int64
	Count       int64
}

// TransactionStatistics is the dashboard view of a user's ledger.
type TransactionStatistics struct {
	CurrentBalance     decimal.Decimal
	MonthlySpending    decimal.Decimal
	TotalCredit        decimal.Decimal
	TotalDebit         decimal.Decimal
	TotalTransactions  int64
	RecentTransactions []Transaction
}
