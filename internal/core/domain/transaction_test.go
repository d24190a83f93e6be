package domain_test

import (
	"testing"

	"github.com/SimpleBankSys/sbs_backend/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func stringPtr(s string) *string {
	return &s
}

func TestTransaction_FromTransfer(t *testing.T) {
	tests := []struct {
		name string
		txn  domain.Transaction
		want bool
	}{
		{
			name: "manual entry has no counterparty",
			txn:  domain.Transaction{TransactionType: domain.Debit},
			want: false,
		},
		{
			name: "transfer entry carries the counterparty account",
			txn:  domain.Transaction{TransactionType: domain.Debit, CounterpartyAccountNumber: stringPtr("100000000002")},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.txn.FromTransfer())
		})
	}
}

func TestTransaction_SignedAmount(t *testing.T) {
	credit := domain.Transaction{TransactionType: domain.Credit, Amount: decimal.RequireFromString("10.50")}
	debit := domain.Transaction{TransactionType: domain.Debit, Amount: decimal.RequireFromString("10.50")}

	assert.True(t, credit.SignedAmount().Equal(decimal.RequireFromString("10.50")))
	assert.True(t, debit.SignedAmount().Equal(decimal.RequireFromString("-10.50")))
}

func TestTransactionType_Valid(t *testing.T) {
	assert.True(t, domain.Credit.Valid())
	assert.True(t, domain.Debit.Valid())
	assert.False(t, domain.TransactionType("TRANSFER").Valid())
	assert.False(t, domain.TransactionType("").Valid())
}

func TestReplayBalance(t *testing.T) {
	opening := decimal.RequireFromString("5000.00")

	tests := []struct {
		name    string
		entries []domain.Transaction
		want    string
		wantErr bool
	}{
		{
			name:    "empty ledger replays to the opening balance",
			entries: nil,
			want:    "5000.00",
		},
		{
			name: "consistent transfer entries",
			entries: []domain.Transaction{
				{
					TransactionID:             1,
					TransactionType:           domain.Debit,
					Amount:                    decimal.RequireFromString("1500.50"),
					CounterpartyAccountNumber: stringPtr("100000000002"),
					BalanceAfter:              decimal.RequireFromString("3499.50"),
				},
				{
					TransactionID:             2,
					TransactionType:           domain.Credit,
					Amount:                    decimal.RequireFromString("200.00"),
					CounterpartyAccountNumber: stringPtr("100000000003"),
					BalanceAfter:              decimal.RequireFromString("3699.50"),
				},
			},
			want: "3699.50",
		},
		{
			name: "manual entries are skipped",
			entries: []domain.Transaction{
				{
					TransactionID:             1,
					TransactionType:           domain.Debit,
					Amount:                    decimal.RequireFromString("1500.50"),
					CounterpartyAccountNumber: stringPtr("100000000002"),
					BalanceAfter:              decimal.RequireFromString("3499.50"),
				},
				{
					TransactionID:   2,
					TransactionType: domain.Debit,
					Amount:          decimal.RequireFromString("4.50"),
					Description:     "coffee",
					BalanceAfter:    decimal.RequireFromString("3499.50"),
				},
				{
					TransactionID:   3,
					TransactionType: domain.Credit,
					Amount:          decimal.RequireFromString("99999.99"),
					Description:     "wishful thinking",
					BalanceAfter:    decimal.RequireFromString("3499.50"),
				},
			},
			want: "3499.50",
		},
		{
			name: "corrupted stored balance is detected",
			entries: []domain.Transaction{
				{
					TransactionID:             1,
					TransactionType:           domain.Debit,
					Amount:                    decimal.RequireFromString("1500.50"),
					CounterpartyAccountNumber: stringPtr("100000000002"),
					BalanceAfter:              decimal.RequireFromString("3000.00"),
				},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.ReplayBalance(opening, tt.entries)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "replayed %s, want %s", got, tt.want)
		})
	}
}
