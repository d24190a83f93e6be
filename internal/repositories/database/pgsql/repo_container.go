package pgsql

import (
	"time"

	portsrepo "github.com/SimpleBankSys/sbs_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires up all pgsql-backed repositories.
// lockWaitTimeout bounds how long a row lock acquisition may block before the
// operation is abandoned and reported as contention.
func NewRepositoryProvider(dbPool *pgxpool.Pool, lockWaitTimeout time.Duration) portsrepo.RepositoryProvider {
	userRepo := newPgxUserRepository(dbPool)
	accountRepo := newPgxAccountRepository(dbPool, lockWaitTimeout)
	transactionRepo := newPgxTransactionRepository(dbPool)

	return portsrepo.RepositoryProvider{
		UserRepo:        userRepo,
		AccountRepo:     accountRepo,
		TransactionRepo: transactionRepo,
	}
}
