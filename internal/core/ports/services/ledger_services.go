package services

import (
	"context"

	"github.com/SimpleBankSys/sbs_backend/internal/core/domain"
	"github.com/SimpleBankSys/sbs_backend/internal/dto"
	"github.com/shopspring/decimal"
)

// LedgerReaderSvc defines read operations for ledger data
type LedgerReaderSvc interface {
	// GetTransactionByID retrieves a single ledger entry owned by the user.
	GetTransactionByID(ctx context.Context, userID string, transactionID int64) (*domain.Transaction, error)

	// ListTransactions retrieves a filtered, paginated list of the user's
	// ledger entries together with aggregate totals for the filter.
	ListTransactions(ctx context.Context, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)

	// GetStatistics computes the dashboard statistics for a user.
	GetStatistics(ctx context.Context, userID string) (*domain.TransactionStatistics, error)
}

// LedgerWriterSvc defines write operations for ledger data
type LedgerWriterSvc interface {
	// RecordManualEntry appends a user-created entry to the ledger. Manual
	// entries record off-book activity: they are stamped with the account
	// balance at recording time but do not move it. Only the transfer engine
	// moves balances.
	RecordManualEntry(ctx context.Context, userID string, req dto.CreateTransactionRequest) (*domain.Transaction, error)

	// UpdateTransactionDescription updates the description of a manual entry.
	// Entries that originated from a transfer are immutable.
	UpdateTransactionDescription(ctx context.Context, userID string, transactionID int64, req dto.UpdateTransactionRequest) (*domain.Transaction, error)

	// DeleteTransaction removes a manual entry from the ledger.
	// Entries that originated from a transfer cannot be deleted.
	DeleteTransaction(ctx context.Context, userID string, transactionID int64) error
}

// LedgerVerifierSvc defines consistency checks over the ledger
type LedgerVerifierSvc interface {
	// VerifyBalance replays a user's full ledger from the opening balance and
	// returns the derived balance, checking every stored running balance.
	VerifyBalance(ctx context.Context, userID string) (decimal.Decimal, error)
}

// LedgerSvcFacade combines all ledger-related service interfaces
// This is a facade for clients that need access to all operations
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
	LedgerVerifierSvc
}
