package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SimpleBankSys/sbs_backend/internal/apperrors"
	"github.com/SimpleBankSys/sbs_backend/internal/core/domain"
	portsrepo "github.com/SimpleBankSys/sbs_backend/internal/core/ports/repositories"
	"github.com/SimpleBankSys/sbs_backend/internal/models"
	"github.com/SimpleBankSys/sbs_backend/internal/utils/mapping"
	"github.com/SimpleBankSys/sbs_backend/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const transactionColumns = `transaction_id, user_id, transaction_type, amount, description, counterparty_account_number, timestamp, balance_after`

type PgxTransactionRepository struct {
	BaseRepository
}

// newPgxTransactionRepository creates a new repository for ledger data.
func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryFacade {
	return &PgxTransactionRepository{BaseRepository{Pool: pool}}
}

// Ensure PgxTransactionRepository implements the facade plus transaction management
var _ portsrepo.TransactionRepositoryWithTx = (*PgxTransactionRepository)(nil)

func scanTransactionRows(rows pgx.Rows) ([]domain.Transaction, error) {
	txns := []domain.Transaction{}
	for rows.Next() {
		var m models.Transaction
		err := rows.Scan(
			&m.TransactionID,
			&m.UserID,
			&m.TransactionType,
			&m.Amount,
			&m.Description,
			&m.CounterpartyAccountNumber,
			&m.Timestamp,
			&m.BalanceAfter,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, mapping.ToDomainTransaction(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return txns, nil
}

// insertStampingBalance writes one ledger entry, reading the owning account's
// current balance in the same statement so the stamp and the insert cannot be
// torn apart.
const insertStampingBalance = `
	INSERT INTO transactions (user_id, transaction_type, amount, description, counterparty_account_number, balance_after)
	SELECT $1, $2, $3, $4, $5, a.balance
	FROM accounts a
	WHERE a.user_id = $1
	RETURNING transaction_id, timestamp, balance_after;
`

// SaveTransactionsInTx persists ledger entries within an existing database
// transaction. The owning account rows must already hold their post-transfer
// balances; each entry is stamped with its account's balance as of this
// transaction. IDs and timestamps are assigned by the database and filled in
// on the returned copies, preserving the order given.
func (r *PgxTransactionRepository) SaveTransactionsInTx(ctx context.Context, tx pgx.Tx, txns []domain.Transaction) ([]domain.Transaction, error) {
	saved := make([]domain.Transaction, 0, len(txns))
	for _, txn := range txns {
		m := mapping.ToModelTransaction(txn)
		err := tx.QueryRow(ctx, insertStampingBalance,
			m.UserID,
			m.TransactionType,
			m.Amount,
			m.Description,
			m.CounterpartyAccountNumber,
		).Scan(&m.TransactionID, &m.Timestamp, &m.BalanceAfter)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("%w: no account for user %s", apperrors.ErrNotFound, m.UserID)
			}
			return nil, fmt.Errorf("failed to insert transaction for user %s: %w", m.UserID, err)
		}
		saved = append(saved, mapping.ToDomainTransaction(m))
	}
	return saved, nil
}

// SaveTransaction persists a standalone ledger entry. The single INSERT ..
// SELECT stamps the entry with the account balance atomically, so no explicit
// transaction is needed.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn *domain.Transaction) error {
	m := mapping.ToModelTransaction(*txn)
	err := r.Pool.QueryRow(ctx, insertStampingBalance,
		m.UserID,
		m.TransactionType,
		m.Amount,
		m.Description,
		m.CounterpartyAccountNumber,
	).Scan(&txn.TransactionID, &txn.Timestamp, &txn.BalanceAfter)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: no account for user %s", apperrors.ErrNotFound, m.UserID)
		}
		return fmt.Errorf("failed to insert transaction for user %s: %w", m.UserID, err)
	}
	return nil
}

// FindTransactionByID retrieves a single ledger entry scoped to its owner.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, userID string, transactionID int64) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1 AND transaction_id = $2;`

	var m models.Transaction
	err := r.Pool.QueryRow(ctx, query, userID, transactionID).Scan(
		&m.TransactionID,
		&m.UserID,
		&m.TransactionType,
		&m.Amount,
		&m.Description,
		&m.CounterpartyAccountNumber,
		&m.Timestamp,
		&m.BalanceAfter,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction %d: %w", transactionID, err)
	}
	txn := mapping.ToDomainTransaction(m)
	return &txn, nil
}

// buildFilterClauses appends WHERE fragments and args for the optional
// search and type filters, returning the updated arg slice.
func buildFilterClauses(filter domain.TransactionFilter, clauses []string, args []interface{}) ([]string, []interface{}) {
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		// Grouped so the OR stays local when further filters are ANDed on.
		clauses = append(clauses, fmt.Sprintf("(description ILIKE $%d OR counterparty_account_number ILIKE $%d)", len(args), len(args)))
	}
	if filter.Type != nil {
		args = append(args, string(*filter.Type))
		clauses = append(clauses, fmt.Sprintf("transaction_type = $%d", len(args)))
	}
	return clauses, args
}

// ListTransactionsByUserID retrieves a page of ledger entries for a user,
// newest first, using token-based pagination over (timestamp, transaction_id).
func (r *PgxTransactionRepository) ListTransactionsByUserID(ctx context.Context, userID string, filter domain.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}

	args := []interface{}{userID}
	clauses := []string{"user_id = $1"}
	clauses, args = buildFilterClauses(filter, clauses, args)

	if nextToken != nil && *nextToken != "" {
		afterTimestamp, afterID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		args = append(args, afterTimestamp, afterID)
		clauses = append(clauses, fmt.Sprintf("(timestamp, transaction_id) < ($%d, $%d)", len(args)-1, len(args)))
	}

	// Fetch one extra row to know whether another page exists.
	args = append(args, limit+1)
	query := fmt.Sprintf(`
		SELECT %s
		FROM transactions
		WHERE %s
		ORDER BY timestamp DESC, transaction_id DESC
		LIMIT $%d;
	`, transactionColumns, strings.Join(clauses, " AND "), len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query transactions for user %s: %w", userID, err)
	}
	defer rows.Close()

	txns, err := scanTransactionRows(rows)
	if err != nil {
		return nil, nil, err
	}

	var newNextToken *string
	if len(txns) > limit {
		txns = txns[:limit]
		last := txns[len(txns)-1]
		token := pagination.EncodeToken(last.Timestamp, last.TransactionID)
		newNextToken = &token
	}
	return txns, newNextToken, nil
}

// ListAllTransactionsByUserID retrieves a user's full ledger in chronological order.
func (r *PgxTransactionRepository) ListAllTransactionsByUserID(ctx context.Context, userID string) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1
		ORDER BY timestamp ASC, transaction_id ASC;
	`
	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query full ledger for user %s: %w", userID, err)
	}
	defer rows.Close()
	return scanTransactionRows(rows)
}

// GetTransactionSummary aggregates totals for the entries matching the filter.
func (r *PgxTransactionRepository) GetTransactionSummary(ctx context.Context, userID string, filter domain.TransactionFilter) (domain.TransactionSummary, error) {
	args := []interface{}{userID}
	clauses := []string{"user_id = $1"}
	clauses, args = buildFilterClauses(filter, clauses, args)

	query := fmt.Sprintf(`
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'CREDIT'), 0),
			COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'DEBIT'), 0),
			COUNT(*) FILTER (WHERE transaction_type = 'CREDIT'),
			COUNT(*) FILTER (WHERE transaction_type = 'DEBIT'),
			COUNT(*)
		FROM transactions
		WHERE %s;
	`, strings.Join(clauses, " AND "))

	var summary domain.TransactionSummary
	err := r.Pool.QueryRow(ctx, query, args...).Scan(&summary.TotalCredit, &summary.TotalDebit, &summary.CreditCount, &summary.DebitCount, &summary.Count)
	if err != nil {
		return domain.TransactionSummary{}, fmt.Errorf("failed to compute transaction summary for user %s: %w", userID, err)
	}
	return summary, nil
}

// SumDebitsSince sums DEBIT amounts for a user from the given instant onward.
func (r *PgxTransactionRepository) SumDebitsSince(ctx context.Context, userID string, since time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1 AND transaction_type = 'DEBIT' AND timestamp >= $2;
	`
	var total decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, userID, since).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum debits for user %s: %w", userID, err)
	}
	return total, nil
}

// UpdateTransactionDescription updates the description of a user-created
// entry. The counterparty guard keeps transfer-originated entries immutable
// even if the service-level check is bypassed.
func (r *PgxTransactionRepository) UpdateTransactionDescription(ctx context.Context, userID string, transactionID int64, description string, now time.Time) (*domain.Transaction, error) {
	query := `
		UPDATE transactions
		SET description = $3
		WHERE user_id = $1 AND transaction_id = $2 AND counterparty_account_number IS NULL
		RETURNING ` + transactionColumns + `;
	`
	var m models.Transaction
	err := r.Pool.QueryRow(ctx, query, userID, transactionID, description).Scan(
		&m.TransactionID,
		&m.UserID,
		&m.TransactionType,
		&m.Amount,
		&m.Description,
		&m.CounterpartyAccountNumber,
		&m.Timestamp,
		&m.BalanceAfter,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.classifyMissingMutable(ctx, userID, transactionID)
		}
		return nil, fmt.Errorf("failed to update transaction %d: %w", transactionID, err)
	}
	txn := mapping.ToDomainTransaction(m)
	return &txn, nil
}

// DeleteTransaction removes a user-created entry from the ledger. Entries
// that originated from a transfer are never deleted.
func (r *PgxTransactionRepository) DeleteTransaction(ctx context.Context, userID string, transactionID int64) error {
	query := `
		DELETE FROM transactions
		WHERE user_id = $1 AND transaction_id = $2 AND counterparty_account_number IS NULL;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, userID, transactionID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction %d: %w", transactionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return r.classifyMissingMutable(ctx, userID, transactionID)
	}
	return nil
}

// classifyMissingMutable distinguishes a missing entry from one that exists
// but is transfer-originated and therefore immutable.
func (r *PgxTransactionRepository) classifyMissingMutable(ctx context.Context, userID string, transactionID int64) error {
	existing, findErr := r.FindTransactionByID(ctx, userID, transactionID)
	if errors.Is(findErr, apperrors.ErrNotFound) {
		return apperrors.ErrNotFound
	} else if findErr != nil {
		return fmt.Errorf("failed to check transaction %d after failed mutation: %w", transactionID, findErr)
	}
	if existing.FromTransfer() {
		return fmt.Errorf("%w: transfer entries cannot be modified", apperrors.ErrConflict)
	}
	return apperrors.ErrConflict
}
