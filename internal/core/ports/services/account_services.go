package services

import (
	"context"

	"github.com/SimpleBankSys/sbs_backend/internal/core/domain"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByNumber retrieves a specific account by its account number.
	GetAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)

	// GetAccountForUser retrieves the account owned by the given user.
	GetAccountForUser(ctx context.Context, userID string) (*domain.Account, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// ProvisionAccount creates the account for a newly registered user,
	// generating a unique account number and crediting the opening balance.
	ProvisionAccount(ctx context.Context, userID string) (*domain.Account, error)

	// DeactivateAccount marks an account as inactive.
	DeactivateAccount(ctx context.Context, accountNumber string) error
}

// AccountSvcFacade combines all account-related service interfaces
// This is a facade for clients that need access to all operations
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
