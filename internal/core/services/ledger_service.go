package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SimpleBankSys/sbs_backend/internal/apperrors"
	"github.com/SimpleBankSys/sbs_backend/internal/core/domain"
	portsrepo "github.com/SimpleBankSys/sbs_backend/internal/core/ports/repositories"
	portssvc "github.com/SimpleBankSys/sbs_backend/internal/core/ports/services"
	"github.com/SimpleBankSys/sbs_backend/internal/dto"
	"github.com/SimpleBankSys/sbs_backend/internal/middleware"
	"github.com/shopspring/decimal"
)

// recentTransactionCount is how many entries the statistics endpoint returns.
const recentTransactionCount = 5

// ledgerService provides read and bookkeeping operations over the
// transaction ledger. It never moves balances; that is the transfer
// service's job.
type ledgerService struct {
	transactionRepo portsrepo.TransactionRepositoryFacade
	accountRepo     portsrepo.AccountRepositoryFacade
	openingBalance  decimal.Decimal
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(transactionRepo portsrepo.TransactionRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade, openingBalance decimal.Decimal) portssvc.LedgerSvcFacade {
	return &ledgerService{
		transactionRepo: transactionRepo,
		accountRepo:     accountRepo,
		openingBalance:  openingBalance,
	}
}

// Ensure ledgerService implements the portssvc.LedgerSvcFacade interface
var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// GetTransactionByID retrieves a single ledger entry owned by the user.
func (s *ledgerService) GetTransactionByID(ctx context.Context, userID string, transactionID int64) (*domain.Transaction, error) {
	return s.transactionRepo.FindTransactionByID(ctx, userID, transactionID)
}

// ListTransactions retrieves a filtered, paginated list of the user's ledger
// entries together with aggregate totals over the same filter.
func (s *ledgerService) ListTransactions(ctx context.Context, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	filter := domain.TransactionFilter{Search: params.Search}
	if params.Type != "" {
		txnType := domain.TransactionType(params.Type)
		if !txnType.Valid() {
			return nil, fmt.Errorf("%w: unknown transaction type %q", apperrors.ErrValidation, params.Type)
		}
		filter.Type = &txnType
	}

	txns, nextToken, err := s.transactionRepo.ListTransactionsByUserID(ctx, userID, filter, params.Limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list transactions", slog.String("error", err.Error()), slog.String("user_id", userID))
		return nil, err
	}

	summary, err := s.transactionRepo.GetTransactionSummary(ctx, userID, filter)
	if err != nil {
		logger.Error("Failed to compute transaction summary", slog.String("error", err.Error()), slog.String("user_id", userID))
		return nil, err
	}

	return &dto.ListTransactionsResponse{
		Transactions: dto.ToListTransactionResponse(txns),
		NextToken:    nextToken,
		Summary:      dto.ToTransactionSummaryResponse(summary),
	}, nil
}

// GetStatistics computes the dashboard statistics for a user: current
// balance, spending since the start of the current month, lifetime totals,
// and the most recent entries.
func (s *ledgerService) GetStatistics(ctx context.Context, userID string) (*domain.TransactionStatistics, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthlySpending, err := s.transactionRepo.SumDebitsSince(ctx, userID, monthStart)
	if err != nil {
		logger.Error("Failed to compute monthly spending", slog.String("error", err.Error()), slog.String("user_id", userID))
		return nil, err
	}

	summary, err := s.transactionRepo.GetTransactionSummary(ctx, userID, domain.TransactionFilter{})
	if err != nil {
		return nil, err
	}

	recent, _, err := s.transactionRepo.ListTransactionsByUserID(ctx, userID, domain.TransactionFilter{}, recentTransactionCount, nil)
	if err != nil {
		return nil, err
	}

	return &domain.TransactionStatistics{
		CurrentBalance:     account.Balance,
		MonthlySpending:    monthlySpending,
		TotalCredit:        summary.TotalCredit,
		TotalDebit:         summary.TotalDebit,
		TotalTransactions:  summary.Count,
		RecentTransactions: recent,
	}, nil
}

// RecordManualEntry appends a user-created bookkeeping entry to the ledger.
// The entry is stamped with the account balance at the time of recording but
// does not move it.
func (s *ledgerService) RecordManualEntry(ctx context.Context, userID string, req dto.CreateTransactionRequest) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.TransactionType.Valid() {
		return nil, fmt.Errorf("%w: unknown transaction type %q", apperrors.ErrValidation, req.TransactionType)
	}
	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}

	txn := domain.Transaction{
		UserID:          userID,
		TransactionType: req.TransactionType,
		Amount:          req.Amount,
		Description:     req.Description,
	}
	if err := s.transactionRepo.SaveTransaction(ctx, &txn); err != nil {
		logger.Error("Failed to record manual entry", slog.String("error", err.Error()), slog.String("user_id", userID))
		return nil, err
	}

	logger.Info("Manual entry recorded", slog.Int64("transaction_id", txn.TransactionID), slog.String("user_id", userID))
	return &txn, nil
}

// UpdateTransactionDescription updates the description of a manual entry.
// Transfer-originated entries are immutable.
func (s *ledgerService) UpdateTransactionDescription(ctx context.Context, userID string, transactionID int64, req dto.UpdateTransactionRequest) (*domain.Transaction, error) {
	existing, err := s.transactionRepo.FindTransactionByID(ctx, userID, transactionID)
	if err != nil {
		return nil, err
	}
	if existing.FromTransfer() {
		return nil, fmt.Errorf("%w: transfer entries cannot be modified", apperrors.ErrConflict)
	}
	return s.transactionRepo.UpdateTransactionDescription(ctx, userID, transactionID, req.Description, time.Now().UTC())
}

// DeleteTransaction removes a manual entry from the ledger.
func (s *ledgerService) DeleteTransaction(ctx context.Context, userID string, transactionID int64) error {
	existing, err := s.transactionRepo.FindTransactionByID(ctx, userID, transactionID)
	if err != nil {
		return err
	}
	if existing.FromTransfer() {
		return fmt.Errorf("%w: transfer entries cannot be deleted", apperrors.ErrConflict)
	}
	return s.transactionRepo.DeleteTransaction(ctx, userID, transactionID)
}

// VerifyBalance replays the user's full ledger from the opening balance and
// checks it against the stored account balance. A mismatch means the ledger
// and the account row have diverged, which should never happen.
func (s *ledgerService) VerifyBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByUserID(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}

	entries, err := s.transactionRepo.ListAllTransactionsByUserID(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}

	replayed, err := domain.ReplayBalance(s.openingBalance, entries)
	if err != nil {
		logger.Error("Ledger replay failed", slog.String("error", err.Error()), slog.String("user_id", userID))
		return decimal.Zero, fmt.Errorf("%w: %s", apperrors.ErrInternal, err.Error())
	}
	if !replayed.Equal(account.Balance) {
		logger.Error("Ledger replay does not match stored balance",
			slog.String("user_id", userID),
			slog.String("replayed", replayed.String()),
			slog.String("stored", account.Balance.String()),
		)
		return decimal.Zero, fmt.Errorf("%w: replayed balance %s does not match stored balance %s", apperrors.ErrInternal, replayed.String(), account.Balance.String())
	}

	return replayed, nil
}
