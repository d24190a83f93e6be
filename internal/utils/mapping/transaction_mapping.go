package mapping

import (
	"github.com/SimpleBankSys/sbs_backend/internal/core/domain"
	"github.com/SimpleBankSys/sbs_backend/internal/models"
)

// ToModelTransaction converts a domain.Transaction to its database representation.
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:             d.TransactionID,
		UserID:                    d.UserID,
		TransactionType:           models.TransactionType(d.TransactionType),
		Amount:                    d.Amount,
		Description:               d.Description,
		CounterpartyAccountNumber: d.CounterpartyAccountNumber,
		Timestamp:                 d.Timestamp,
		BalanceAfter:              d.BalanceAfter,
	}
}

// ToDomainTransaction converts a models.Transaction from the database to the domain type.
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:             m.TransactionID,
		UserID:                    m.UserID,
		TransactionType:           domain.TransactionType(m.TransactionType),
		Amount:                    m.Amount,
		Description:               m.Description,
		CounterpartyAccountNumber: m.CounterpartyAccountNumber,
		Timestamp:                 m.Timestamp,
		BalanceAfter:              m.BalanceAfter,
	}
}

// ToDomainTransactionSlice converts a slice of models.Transaction to domain types.
func ToDomainTransactionSlice(ms []models.Transaction) []domain.Transaction {
	ds := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m)
	}
	return ds
}
