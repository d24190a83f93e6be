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
	"github.com/SimpleBankSys/sbs_backend/internal/middleware"
	"github.com/SimpleBankSys/sbs_backend/internal/utils"
	"github.com/shopspring/decimal"
)

// accountNumberMaxAttempts bounds the sample-and-retry loop used when
// generating a fresh account number. Collisions on a 12 digit space are
// vanishingly rare, so running out of attempts signals something broken.
const accountNumberMaxAttempts = 10

// accountService provides account provisioning and lookup operations.
type accountService struct {
	accountRepo    portsrepo.AccountRepositoryFacade
	openingBalance decimal.Decimal
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, openingBalance decimal.Decimal) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo:    accountRepo,
		openingBalance: openingBalance,
	}
}

// Ensure accountService implements the portssvc.AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// generateAccountNumber samples random numeric candidates until one is free.
func (s *accountService) generateAccountNumber(ctx context.Context) (string, error) {
	for attempt := 0; attempt < accountNumberMaxAttempts; attempt++ {
		candidate, err := utils.GenerateNumericString(domain.AccountNumberLength)
		if err != nil {
			return "", fmt.Errorf("failed to generate account number: %w", err)
		}
		exists, err := s.accountRepo.AccountNumberExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check account number availability: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: exhausted account number generation attempts", apperrors.ErrInternal)
}

// ProvisionAccount creates the account for a newly registered user, credited
// with the configured opening balance.
func (s *accountService) ProvisionAccount(ctx context.Context, userID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if existing, err := s.accountRepo.FindAccountByUserID(ctx, userID); err == nil {
		logger.Warn("Account provisioning requested for user that already has one", slog.String("user_id", userID), slog.String("account_number", existing.AccountNumber))
		return nil, fmt.Errorf("%w: user already has an account", apperrors.ErrDuplicate)
	}

	accountNumber, err := s.generateAccountNumber(ctx)
	if err != nil {
		logger.Error("Failed to generate account number", slog.String("error", err.Error()), slog.String("user_id", userID))
		return nil, err
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountNumber: accountNumber,
		UserID:        userID,
		Balance:       s.openingBalance,
		IsActive:      true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		logger.Error("Failed to save new account", slog.String("error", err.Error()), slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	logger.Info("Account provisioned", slog.String("account_number", accountNumber), slog.String("user_id", userID))
	return &account, nil
}

// GetAccountByNumber retrieves a specific account by its account number.
func (s *accountService) GetAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	return account, nil
}

// GetAccountForUser retrieves the account owned by the given user.
func (s *accountService) GetAccountForUser(ctx context.Context, userID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return account, nil
}

// DeactivateAccount marks an account as inactive. Funds stay on the ledger;
// an inactive account simply cannot send or receive transfers.
func (s *accountService) DeactivateAccount(ctx context.Context, accountNumber string) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	if err := s.accountRepo.DeactivateAccount(ctx, accountNumber, time.Now().UTC()); err != nil {
		logger.Warn("Failed to deactivate account", slog.String("account_number", accountNumber), slog.String("error", err.Error()))
		return err
	}
	logger.Info("Account deactivated", slog.String("account_number", accountNumber))
	return nil
}
