package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SimpleBankSys/sbs_backend/internal/apperrors"
	"github.com/SimpleBankSys/sbs_backend/internal/core/domain"
	portssvc "github.com/SimpleBankSys/sbs_backend/internal/core/ports/services"
	"github.com/SimpleBankSys/sbs_backend/internal/core/services"
	"github.com/SimpleBankSys/sbs_backend/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Test Suite Setup ---

type LedgerServiceTestSuite struct {
	suite.Suite
	mockTxnRepo     *MockTransactionRepository
	mockAccountRepo *MockAccountRepository
	service         portssvc.LedgerSvcFacade
	openingBalance  decimal.Decimal
	userID          string
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.openingBalance = decimal.RequireFromString("5000.00")
	suite.service = services.NewLedgerService(suite.mockTxnRepo, suite.mockAccountRepo, suite.openingBalance)
	suite.userID = uuid.NewString()
}

func strPtr(s string) *string {
	return &s
}

// --- Test Cases ---

func (suite *LedgerServiceTestSuite) TestRecordManualEntry_Success() {
	ctx := context.Background()
	req := dto.CreateTransactionRequest{
		TransactionType: domain.Debit,
		Amount:          decimal.RequireFromString("25.00"),
		Description:     "coffee",
	}

	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.MatchedBy(func(txn *domain.Transaction) bool {
		return txn.UserID == suite.userID &&
			txn.TransactionType == domain.Debit &&
			txn.Amount.Equal(req.Amount) &&
			txn.Description == "coffee" &&
			txn.CounterpartyAccountNumber == nil
	})).Return(nil).Once()

	txn, err := suite.service.RecordManualEntry(ctx, suite.userID, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(txn)
	suite.False(txn.FromTransfer())

	suite.mockTxnRepo.AssertExpectations(suite.T())
	// Manual entries never move the account balance.
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateAccountBalancesInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestRecordManualEntry_InvalidType() {
	ctx := context.Background()
	req := dto.CreateTransactionRequest{
		TransactionType: "TRANSFER",
		Amount:          decimal.RequireFromString("25.00"),
	}

	txn, err := suite.service.RecordManualEntry(ctx, suite.userID, req)

	suite.Require().Error(err)
	suite.Nil(txn)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestRecordManualEntry_InvalidAmount() {
	ctx := context.Background()
	req := dto.CreateTransactionRequest{
		TransactionType: domain.Credit,
		Amount:          decimal.RequireFromString("-1.00"),
	}

	txn, err := suite.service.RecordManualEntry(ctx, suite.userID, req)

	suite.Require().Error(err)
	suite.Nil(txn)
	suite.ErrorIs(err, apperrors.ErrInvalidAmount)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestUpdateTransactionDescription_Success() {
	ctx := context.Background()
	manual := &domain.Transaction{
		TransactionID:   7,
		UserID:          suite.userID,
		TransactionType: domain.Debit,
		Amount:          decimal.RequireFromString("25.00"),
		Description:     "old",
	}
	updated := *manual
	updated.Description = "new"

	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.userID, int64(7)).Return(manual, nil).Once()
	suite.mockTxnRepo.On("UpdateTransactionDescription", ctx, suite.userID, int64(7), "new", mock.AnythingOfType("time.Time")).
		Return(&updated, nil).Once()

	txn, err := suite.service.UpdateTransactionDescription(ctx, suite.userID, 7, dto.UpdateTransactionRequest{Description: "new"})

	suite.Require().NoError(err)
	suite.Equal("new", txn.Description)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestUpdateTransactionDescription_TransferEntryImmutable() {
	ctx := context.Background()
	transferEntry := &domain.Transaction{
		TransactionID:             8,
		UserID:                    suite.userID,
		TransactionType:           domain.Debit,
		Amount:                    decimal.RequireFromString("100.00"),
		CounterpartyAccountNumber: strPtr("100000000002"),
	}

	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.userID, int64(8)).Return(transferEntry, nil).Once()

	txn, err := suite.service.UpdateTransactionDescription(ctx, suite.userID, 8, dto.UpdateTransactionRequest{Description: "nope"})

	suite.Require().Error(err)
	suite.Nil(txn)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "UpdateTransactionDescription", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestDeleteTransaction_TransferEntryImmutable() {
	ctx := context.Background()
	transferEntry := &domain.Transaction{
		TransactionID:             9,
		UserID:                    suite.userID,
		TransactionType:           domain.Credit,
		Amount:                    decimal.RequireFromString("100.00"),
		CounterpartyAccountNumber: strPtr("100000000001"),
	}

	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.userID, int64(9)).Return(transferEntry, nil).Once()

	err := suite.service.DeleteTransaction(ctx, suite.userID, 9)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "DeleteTransaction", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestDeleteTransaction_ManualEntry() {
	ctx := context.Background()
	manual := &domain.Transaction{
		TransactionID:   10,
		UserID:          suite.userID,
		TransactionType: domain.Debit,
		Amount:          decimal.RequireFromString("5.00"),
	}

	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.userID, int64(10)).Return(manual, nil).Once()
	suite.mockTxnRepo.On("DeleteTransaction", ctx, suite.userID, int64(10)).Return(nil).Once()

	err := suite.service.DeleteTransaction(ctx, suite.userID, 10)

	suite.Require().NoError(err)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestDeleteTransaction_NotFound() {
	ctx := context.Background()

	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.userID, int64(11)).Return(nil, apperrors.ErrNotFound).Once()

	err := suite.service.DeleteTransaction(ctx, suite.userID, 11)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "DeleteTransaction", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestListTransactions_InvalidType() {
	ctx := context.Background()
	params := dto.ListTransactionsParams{Limit: 20, Type: "BOGUS"}

	resp, err := suite.service.ListTransactions(ctx, suite.userID, params)

	suite.Require().Error(err)
	suite.Nil(resp)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "ListTransactionsByUserID", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestListTransactions_Success() {
	ctx := context.Background()
	params := dto.ListTransactionsParams{Limit: 2, Search: "coffee", Type: "DEBIT"}
	debit := domain.Debit

	entries := []domain.Transaction{
		{TransactionID: 3, UserID: suite.userID, TransactionType: domain.Debit, Amount: decimal.RequireFromString("4.50"), Description: "coffee"},
		{TransactionID: 1, UserID: suite.userID, TransactionType: domain.Debit, Amount: decimal.RequireFromString("5.00"), Description: "more coffee"},
	}
	token := "next-page"
	summary := domain.TransactionSummary{
		TotalCredit: decimal.Zero,
		TotalDebit:  decimal.RequireFromString("9.50"),
		CreditCount: 0,
		DebitCount:  2,
		Count:       2,
	}

	expectedFilter := domain.TransactionFilter{Search: "coffee", Type: &debit}
	suite.mockTxnRepo.On("ListTransactionsByUserID", ctx, suite.userID, mock.MatchedBy(func(f domain.TransactionFilter) bool {
		return f.Search == expectedFilter.Search && f.Type != nil && *f.Type == debit
	}), 2, (*string)(nil)).Return(entries, &token, nil).Once()
	suite.mockTxnRepo.On("GetTransactionSummary", ctx, suite.userID, mock.Anything).Return(summary, nil).Once()

	resp, err := suite.service.ListTransactions(ctx, suite.userID, params)

	suite.Require().NoError(err)
	suite.Require().NotNil(resp)
	suite.Len(resp.Transactions, 2)
	suite.Equal(int64(3), resp.Transactions[0].TransactionID)
	suite.Require().NotNil(resp.NextToken)
	suite.Equal(token, *resp.NextToken)
	suite.True(resp.Summary.TotalDebit.Equal(summary.TotalDebit))
	suite.Equal(int64(0), resp.Summary.CreditCount)
	suite.Equal(int64(2), resp.Summary.DebitCount)
	suite.Equal(int64(2), resp.Summary.Count)

	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestGetStatistics_Success() {
	ctx := context.Background()
	account := &domain.Account{
		AccountNumber: "100000000001",
		UserID:        suite.userID,
		Balance:       decimal.RequireFromString("3499.50"),
		IsActive:      true,
	}
	summary := domain.TransactionSummary{
		TotalCredit: decimal.RequireFromString("200.00"),
		TotalDebit:  decimal.RequireFromString("1700.50"),
		CreditCount: 2,
		DebitCount:  4,
		Count:       6,
	}
	recent := []domain.Transaction{
		{TransactionID: 6, UserID: suite.userID, TransactionType: domain.Debit, Amount: decimal.RequireFromString("10.00")},
	}
	monthly := decimal.RequireFromString("60.00")

	suite.mockAccountRepo.On("FindAccountByUserID", ctx, suite.userID).Return(account, nil).Once()
	suite.mockTxnRepo.On("SumDebitsSince", ctx, suite.userID, mock.MatchedBy(func(since time.Time) bool {
		now := time.Now().UTC()
		return since.Year() == now.Year() && since.Month() == now.Month() && since.Day() == 1
	})).Return(monthly, nil).Once()
	suite.mockTxnRepo.On("GetTransactionSummary", ctx, suite.userID, domain.TransactionFilter{}).Return(summary, nil).Once()
	suite.mockTxnRepo.On("ListTransactionsByUserID", ctx, suite.userID, domain.TransactionFilter{}, 5, (*string)(nil)).
		Return(recent, (*string)(nil), nil).Once()

	stats, err := suite.service.GetStatistics(ctx, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(stats)
	suite.True(stats.CurrentBalance.Equal(account.Balance))
	suite.True(stats.MonthlySpending.Equal(monthly))
	suite.True(stats.TotalCredit.Equal(summary.TotalCredit))
	suite.True(stats.TotalDebit.Equal(summary.TotalDebit))
	suite.Equal(int64(6), stats.TotalTransactions)
	suite.Len(stats.RecentTransactions, 1)

	suite.mockTxnRepo.AssertExpectations(suite.T())
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestVerifyBalance_Consistent() {
	ctx := context.Background()
	recipientNumber := "100000000002"
	account := &domain.Account{
		AccountNumber: "100000000001",
		UserID:        suite.userID,
		Balance:       decimal.RequireFromString("3499.50"),
		IsActive:      true,
	}
	// A transfer debit plus a manual entry: the manual entry must be skipped
	// by the replay.
	entries := []domain.Transaction{
		{
			TransactionID:             1,
			UserID:                    suite.userID,
			TransactionType:           domain.Debit,
			Amount:                    decimal.RequireFromString("1500.50"),
			CounterpartyAccountNumber: &recipientNumber,
			BalanceAfter:              decimal.RequireFromString("3499.50"),
		},
		{
			TransactionID:   2,
			UserID:          suite.userID,
			TransactionType: domain.Debit,
			Amount:          decimal.RequireFromString("4.50"),
			Description:     "coffee",
			BalanceAfter:    decimal.RequireFromString("3499.50"),
		},
	}

	suite.mockAccountRepo.On("FindAccountByUserID", ctx, suite.userID).Return(account, nil).Once()
	suite.mockTxnRepo.On("ListAllTransactionsByUserID", ctx, suite.userID).Return(entries, nil).Once()

	balance, err := suite.service.VerifyBalance(ctx, suite.userID)

	suite.Require().NoError(err)
	suite.True(balance.Equal(account.Balance))

	suite.mockTxnRepo.AssertExpectations(suite.T())
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestVerifyBalance_Mismatch() {
	ctx := context.Background()
	recipientNumber := "100000000002"
	account := &domain.Account{
		AccountNumber: "100000000001",
		UserID:        suite.userID,
		Balance:       decimal.RequireFromString("9999.99"),
		IsActive:      true,
	}
	entries := []domain.Transaction{
		{
			TransactionID:             1,
			UserID:                    suite.userID,
			TransactionType:           domain.Debit,
			Amount:                    decimal.RequireFromString("1500.50"),
			CounterpartyAccountNumber: &recipientNumber,
			BalanceAfter:              decimal.RequireFromString("3499.50"),
		},
	}

	suite.mockAccountRepo.On("FindAccountByUserID", ctx, suite.userID).Return(account, nil).Once()
	suite.mockTxnRepo.On("ListAllTransactionsByUserID", ctx, suite.userID).Return(entries, nil).Once()

	balance, err := suite.service.VerifyBalance(ctx, suite.userID)

	suite.Require().Error(err)
	suite.True(balance.IsZero())
	suite.ErrorIs(err, apperrors.ErrInternal)
}

// --- Run Test Suite ---

func TestLedgerService(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
