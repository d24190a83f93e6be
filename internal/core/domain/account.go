package domain

import (
	"github.com/shopspring/decimal"
)

// AccountNumberLength is the fixed length of the numeric account identifier.
const AccountNumberLength = 12

// Account is a user's single monetary balance holder. Exactly one exists per
// user, provisioned at registration; the balance is mutated only by the
// transfer engine.
type Account struct {
	AccountNumber string          `json:"accountNumber"` // Unique 12-digit numeric string
	UserID        string          `json:"userID"`        // FK -> users.user_id (unique, 1:1)
	Balance       decimal.Decimal `json:"balance"`       // NUMERIC(12,2), never negative
	IsActive      bool            `json:"isActive"`      // Inactive accounts reject transfers
	AuditFields
}
