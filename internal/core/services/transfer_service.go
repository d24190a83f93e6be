package services

import (
	"context"
	"errors"
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

// transferService moves money between accounts. All balance mutations in the
// system funnel through Transfer, which holds row locks on both accounts for
// the duration of the write.
type transferService struct {
	accountRepo     portsrepo.AccountRepositoryWithTx
	transactionRepo portsrepo.TransactionRepositoryFacade
	userRepo        portsrepo.UserReader
}

// NewTransferService creates a new TransferService.
func NewTransferService(accountRepo portsrepo.AccountRepositoryWithTx, transactionRepo portsrepo.TransactionRepositoryFacade, userRepo portsrepo.UserReader) portssvc.TransferSvcFacade {
	return &transferService{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		userRepo:        userRepo,
	}
}

// Ensure transferService implements the portssvc.TransferSvcFacade interface
var _ portssvc.TransferSvcFacade = (*transferService)(nil)

// validateAmount rejects non-positive amounts and amounts with more than two
// decimal places.
func validateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: amount must be positive, got %s", apperrors.ErrInvalidAmount, amount.String())
	}
	if amount.Exponent() < -2 {
		return fmt.Errorf("%w: amount %s has more than two decimal places", apperrors.ErrInvalidAmount, amount.String())
	}
	return nil
}

// Transfer atomically moves req.Amount from the sender's account to the
// recipient's. Validation happens twice: once against unlocked reads so
// obviously bad requests fail fast, and again under row locks before any
// mutation, since balances and active flags may have changed in between.
func (s *transferService) Transfer(ctx context.Context, senderUserID string, req dto.CreateTransferRequest) (*portssvc.TransferResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}

	sender, err := s.accountRepo.FindAccountByUserID(ctx, senderUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: sender has no account", apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load sender account: %w", err)
	}

	if sender.AccountNumber == req.RecipientAccountNumber {
		return nil, apperrors.ErrSelfTransfer
	}

	recipient, err := s.accountRepo.FindAccountByNumber(ctx, req.RecipientAccountNumber)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: recipient account %s", apperrors.ErrNotFound, req.RecipientAccountNumber)
		}
		return nil, fmt.Errorf("failed to load recipient account: %w", err)
	}

	// Fast-path checks before taking locks. Re-checked under lock below.
	if !sender.IsActive {
		return nil, fmt.Errorf("%w: sender account is inactive", apperrors.ErrValidation)
	}
	if !recipient.IsActive {
		return nil, fmt.Errorf("%w: recipient account is inactive", apperrors.ErrValidation)
	}
	if sender.Balance.LessThan(req.Amount) {
		return nil, apperrors.ErrInsufficientBalance
	}

	recipientUser, err := s.userRepo.FindUserByID(ctx, recipient.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipient user: %w", err)
	}

	result, err := s.executeTransfer(ctx, sender.AccountNumber, recipient.AccountNumber, recipient.UserID, req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInsufficientBalance),
			errors.Is(err, apperrors.ErrContentionTimeout),
			errors.Is(err, apperrors.ErrValidation),
			errors.Is(err, apperrors.ErrNotFound):
			return nil, err
		}
		logger.Error("Transfer failed", slog.String("error", err.Error()), slog.String("sender", sender.AccountNumber), slog.String("recipient", recipient.AccountNumber))
		return nil, fmt.Errorf("%w: %s", apperrors.ErrTransferFailed, err.Error())
	}

	result.RecipientName = recipientUser.FullName()

	logger.Info("Transfer completed",
		slog.String("sender", sender.AccountNumber),
		slog.String("recipient", recipient.AccountNumber),
		slog.String("amount", req.Amount.String()),
		slog.Int64("debit_transaction_id", result.DebitEntry.TransactionID),
	)
	return result, nil
}

// executeTransfer performs the locked portion of a transfer. Both account
// rows are locked in account number order, the invariants re-checked, both
// balances updated, and both ledger entries written, all in one database
// transaction.
func (s *transferService) executeTransfer(ctx context.Context, senderNumber, recipientNumber, recipientUserID string, req dto.CreateTransferRequest) (result *portssvc.TransferResult, err error) {
	tx, err := s.accountRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = s.accountRepo.Rollback(ctx, tx)
		}
	}()

	locked, err := s.accountRepo.FindAccountsByNumbersForUpdate(ctx, tx, []string{senderNumber, recipientNumber})
	if err != nil {
		return nil, err
	}

	sender := locked[senderNumber]
	recipient := locked[recipientNumber]

	// Re-validate under lock: the fast-path reads are stale by now.
	if !sender.IsActive {
		return nil, fmt.Errorf("%w: sender account is inactive", apperrors.ErrValidation)
	}
	if !recipient.IsActive {
		return nil, fmt.Errorf("%w: recipient account is inactive", apperrors.ErrValidation)
	}
	if sender.Balance.LessThan(req.Amount) {
		return nil, apperrors.ErrInsufficientBalance
	}

	now := time.Now().UTC()
	balanceChanges := map[string]decimal.Decimal{
		senderNumber:    req.Amount.Neg(),
		recipientNumber: req.Amount,
	}
	if err = s.accountRepo.UpdateAccountBalancesInTx(ctx, tx, balanceChanges, now); err != nil {
		return nil, err
	}

	debitDescription := fmt.Sprintf("Transfer to %s", recipientNumber)
	creditDescription := fmt.Sprintf("Transfer from %s", senderNumber)
	if req.Description != "" {
		debitDescription = fmt.Sprintf("%s - %s", debitDescription, req.Description)
		creditDescription = fmt.Sprintf("%s - %s", creditDescription, req.Description)
	}

	// Debit entry first so the pair carries deterministic, ordered IDs.
	entries := []domain.Transaction{
		{
			UserID:                    sender.UserID,
			TransactionType:           domain.Debit,
			Amount:                    req.Amount,
			Description:               debitDescription,
			CounterpartyAccountNumber: &recipientNumber,
		},
		{
			UserID:                    recipientUserID,
			TransactionType:           domain.Credit,
			Amount:                    req.Amount,
			Description:               creditDescription,
			CounterpartyAccountNumber: &senderNumber,
		},
	}
	saved, err := s.transactionRepo.SaveTransactionsInTx(ctx, tx, entries)
	if err != nil {
		return nil, err
	}

	if err = s.accountRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	senderAfter := sender
	senderAfter.Balance = sender.Balance.Sub(req.Amount)
	senderAfter.LastUpdatedAt = now

	return &portssvc.TransferResult{
		DebitEntry:    saved[0],
		CreditEntry:   saved[1],
		SenderBalance: senderAfter,
	}, nil
}
