// Package models holds the database-shaped representations of the domain
// entities. Repositories scan into and write from these; services only ever
// see the domain types.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditFields holds the standard audit columns shared by tables.
type AuditFields struct {
	CreatedAt     time.Time
	LastUpdatedAt time.Time
}

// User mirrors the users table.
type User struct {
	UserID       string
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	GoogleID     string
	IsActive     bool
	AuditFields

	RefreshTokenHash       string
	RefreshTokenExpiryTime *time.Time
}

// Account mirrors the accounts table.
type Account struct {
	AccountNumber string
	UserID        string
	Balance       decimal.Decimal
	IsActive      bool
	AuditFields
}

// TransactionType mirrors the transaction_type column enum.
type TransactionType string

const (
	Credit TransactionType = "CREDIT"
	Debit  TransactionType = "DEBIT"
)

// Transaction mirrors the transactions table.
type Transaction struct {
	TransactionID             int64
	UserID                    string
	TransactionType           TransactionType
	Amount                    decimal.Decimal
	Description               string
	CounterpartyAccountNumber *string
	Timestamp                 time.Time
	BalanceAfter              decimal.Decimal
}
