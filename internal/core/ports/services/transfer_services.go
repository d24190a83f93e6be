package services

import (
	"context"

	"github.com/SimpleBankSys/sbs_backend/internal/core/domain"
	"github.com/SimpleBankSys/sbs_backend/internal/dto"
)

// TransferResult carries the outcome of a completed transfer back to the caller.
type TransferResult struct {
	// DebitEntry is the ledger entry recorded against the sender.
	DebitEntry domain.Transaction
	// CreditEntry is the ledger entry recorded against the recipient.
	CreditEntry domain.Transaction
	// SenderBalance is the sender's balance after the transfer.
	SenderBalance domain.Account
	// RecipientName is the recipient's display name, echoed for receipts.
	RecipientName string
}

// TransferSvcFacade defines the money movement operation between accounts.
type TransferSvcFacade interface {
	// Transfer atomically moves the requested amount from the sender's account
	// to the recipient's account, recording a DEBIT entry for the sender and a
	// CREDIT entry for the recipient. Either both accounts and both entries are
	// updated, or none are.
	Transfer(ctx context.Context, senderUserID string, req dto.CreateTransferRequest) (*TransferResult, error)
}
