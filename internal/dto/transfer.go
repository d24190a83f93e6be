package dto

import (
	"github.com/shopspring/decimal"
)

// CreateTransferRequest defines the data needed to move money between accounts.
type CreateTransferRequest struct {
	RecipientAccountNumber string          `json:"recipientAccountNumber" binding:"required,len=12,numeric"`
	Amount                 decimal.Decimal `json:"amount" binding:"required"`
	Description            string          `json:"description" binding:"max=255"`
}

// TransferResponse defines the data returned for a completed transfer.
// It carries the sender's debit entry, their balance after the transfer,
// and the recipient's display name for receipts.
type TransferResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	Balance     decimal.Decimal     `json:"balance"`
	Recipient   string              `json:"recipient"`
}
