package services

import (
	portsrepo "github.com/SimpleBankSys/sbs_backend/internal/core/ports/repositories"
	portssvc "github.com/SimpleBankSys/sbs_backend/internal/core/ports/services"
	"github.com/SimpleBankSys/sbs_backend/pkg/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.User = NewUserService(repos.UserRepo)
	container.Account = NewAccountService(repos.AccountRepo, cfg.OpeningBalance)

	// The transfer engine needs transaction management on top of the account
	// facade; the pgsql repository provides both.
	accountRepoWithTx := repos.AccountRepo.(portsrepo.AccountRepositoryWithTx)
	container.Transfer = NewTransferService(accountRepoWithTx, repos.TransactionRepo, repos.UserRepo)

	container.Ledger = NewLedgerService(repos.TransactionRepo, repos.AccountRepo, cfg.OpeningBalance)

	container.Token = NewTokenService(cfg, container.User)
	container.Google = NewGoogleOAuthHandlerService(cfg)
	container.Auth = NewAuthService(container.User, container.Account, container.Token, container.Google)

	return container
}
