package repositories

import (
	"context"
	"time"

	"github.com/SimpleBankSys/sbs_backend/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// TransactionReader defines read operations for ledger data
type TransactionReader interface {
	// FindTransactionByID retrieves a specific ledger entry by its identifier,
	// scoped to the owning user.
	FindTransactionByID(ctx context.Context, userID string, transactionID int64) (*domain.Transaction, error)

	// ListTransactionsByUserID retrieves a paginated list of ledger entries for a
	// user using token-based pagination, newest first.
	// It returns the entries, a token for the next page, and an error.
	ListTransactionsByUserID(ctx context.Context, userID string, filter domain.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error)

	// ListAllTransactionsByUserID retrieves the full ledger for a user in
	// chronological order. Used for balance replay verification.
	ListAllTransactionsByUserID(ctx context.Context, userID string) ([]domain.Transaction, error)

	// GetTransactionSummary aggregates totals for the entries matching the filter.
	GetTransactionSummary(ctx context.Context, userID string, filter domain.TransactionFilter) (domain.TransactionSummary, error)

	// SumDebitsSince sums DEBIT amounts for a user from the given instant onward.
	SumDebitsSince(ctx context.Context, userID string, since time.Time) (decimal.Decimal, error)
}

// TransactionWriter defines write operations for ledger data
type TransactionWriter interface {
	// SaveTransaction persists a standalone ledger entry, stamping it with the
	// owning account's balance read inside the same database transaction. The
	// account balance itself is not modified.
	SaveTransaction(ctx context.Context, txn *domain.Transaction) error

	// SaveTransactionsInTx persists ledger entries within an existing database
	// transaction, stamping each entry's running balance from its account row.
	// The entries are written in the order given and their IDs and timestamps
	// are filled in on return.
	SaveTransactionsInTx(ctx context.Context, tx pgx.Tx, txns []domain.Transaction) ([]domain.Transaction, error)

	// UpdateTransactionDescription updates the description of a user-created entry.
	UpdateTransactionDescription(ctx context.Context, userID string, transactionID int64, description string, now time.Time) (*domain.Transaction, error)

	// DeleteTransaction removes a user-created entry from the ledger.
	DeleteTransaction(ctx context.Context, userID string, transactionID int64) error
}

// TransactionRepositoryFacade combines all ledger-related repository interfaces
// This is a facade for clients that need access to all operations
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}

// TransactionRepositoryWithTx extends TransactionRepositoryFacade with transaction capabilities
type TransactionRepositoryWithTx interface {
	TransactionRepositoryFacade
	TransactionManager
}
