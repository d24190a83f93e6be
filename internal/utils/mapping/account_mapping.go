package mapping

import (
	"github.com/SimpleBankSys/sbs_backend/internal/core/domain"
	"github.com/SimpleBankSys/sbs_backend/internal/models"
)

// ToModelAccount converts a domain.Account to its database representation.
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountNumber: d.AccountNumber,
		UserID:        d.UserID,
		Balance:       d.Balance,
		IsActive:      d.IsActive,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			LastUpdatedAt: d.LastUpdatedAt,
		},
	}
}

// ToDomainAccount converts a models.Account from the database to the domain type.
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountNumber: m.AccountNumber,
		UserID:        m.UserID,
		Balance:       m.Balance,
		IsActive:      m.IsActive,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			LastUpdatedAt: m.LastUpdatedAt,
		},
	}
}
