package dto

import (
	"time"

	"github.com/SimpleBankSys/sbs_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest defines the data needed to record a manual ledger entry.
type CreateTransactionRequest struct {
	TransactionType domain.TransactionType `json:"transactionType" binding:"required,oneof=CREDIT DEBIT"`
	Amount          decimal.Decimal        `json:"amount" binding:"required"`
	Description     string                 `json:"description" binding:"max=255"`
}

// UpdateTransactionRequest defines the data allowed for updating a ledger entry.
type UpdateTransactionRequest struct {
	Description string `json:"description" binding:"required,max=255"`
}

// TransactionResponse defines the data returned for a single ledger entry.
type TransactionResponse struct {
	TransactionID             int64                  `json:"transactionID"`
	TransactionType           domain.TransactionType `json:"transactionType"`
	Amount                    decimal.Decimal        `json:"amount"`
	Description               string                 `json:"description"`
	CounterpartyAccountNumber *string                `json:"counterpartyAccountNumber"`
	Timestamp                 time.Time              `json:"timestamp"`
	BalanceAfter              decimal.Decimal        `json:"balanceAfter"`
}

// ListTransactionsParams defines query parameters for listing ledger entries.
type ListTransactionsParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
	Search    string  `form:"search"`
	Type      string  `form:"type" binding:"omitempty,oneof=CREDIT DEBIT"`
}

// TransactionSummaryResponse aggregates the entries matched by a listing query.
type TransactionSummaryResponse struct {
	TotalCredit decimal.Decimal `json:"totalCredit"`
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	CreditCount int64           `json:"creditCount"`
	DebitCount  int64           `json:"debitCount"`
	Count       int64           `json:"count"`
}

// ListTransactionsResponse wraps a page of ledger entries.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse      `json:"transactions"`
	NextToken    *string                    `json:"nextToken,omitempty"`
	Summary      TransactionSummaryResponse `json:"summary"`
}

// StatisticsResponse defines the dashboard view of a user's ledger.
type StatisticsResponse struct {
	CurrentBalance     decimal.Decimal       `json:"currentBalance"`
	MonthlySpending    decimal.Decimal       `json:"monthlySpending"`
	TotalCredit        decimal.Decimal       `json:"totalCredit"`
	TotalDebit         decimal.Decimal       `json:"totalDebit"`
	TotalTransactions  int64                 `json:"totalTransactions"`
	RecentTransactions []TransactionResponse `json:"recentTransactions"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:             txn.TransactionID,
		TransactionType:           txn.TransactionType,
		Amount:                    txn.Amount,
		Description:               txn.Description,
		CounterpartyAccountNumber: txn.CounterpartyAccountNumber,
		Timestamp:                 txn.Timestamp,
		BalanceAfter:              txn.BalanceAfter,
	}
}

// ToListTransactionResponse converts a slice of domain.Transaction to a slice of TransactionResponse DTOs
func ToListTransactionResponse(txns []domain.Transaction) []TransactionResponse {
	res := make([]TransactionResponse, len(txns))
	for i, txn := range txns {
		res[i] = ToTransactionResponse(&txn)
	}
	return res
}

// ToTransactionSummaryResponse converts a domain.TransactionSummary to its DTO
func ToTransactionSummaryResponse(s domain.TransactionSummary) TransactionSummaryResponse {
	return TransactionSummaryResponse{
		TotalCredit: s.TotalCredit,
		TotalDebit:  s.TotalDebit,
		CreditCount: s.CreditCount,
		DebitCount:  s.DebitCount,
		Count:       s.Count,
	}
}

// ToStatisticsResponse converts a domain.TransactionStatistics to its DTO
func ToStatisticsResponse(s *domain.TransactionStatistics) StatisticsResponse {
	return StatisticsResponse{
		CurrentBalance:     s.CurrentBalance,
		MonthlySpending:    s.MonthlySpending,
		TotalCredit:        s.TotalCredit,
		TotalDebit:         s.TotalDebit,
		TotalTransactions:  s.TotalTransactions,
		RecentTransactions: ToListTransactionResponse(s.RecentTransactions),
	}
}
