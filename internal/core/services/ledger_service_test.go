package services_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/SscSPs/terminal_banking/internal/apperrors"
	"github.com/SscSPs/terminal_banking/internal/core/domain"
	"github.com/SscSPs/terminal_banking/internal/core/services"
	"github.com/SscSPs/terminal_banking/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// --- Test Suite Setup ---

type LedgerServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	store     *faultyStore
	publisher *recordingPublisher
	ledger    *services.LedgerService
	session   *services.Session
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.store = &faultyStore{LedgerStore: memory.NewStore(), failCreditsTo: map[int64]bool{}}
	suite.publisher = &recordingPublisher{}
	suite.ledger = services.NewLedgerService(suite.store, services.WithPublisher(suite.publisher))
	users := services.NewUserService(suite.store, suite.ledger, services.WithBcryptCost(bcrypt.MinCost))

	_, err := users.Register(suite.ctx, "alice", "correct-horse", "alice@example.com")
	suite.Require().NoError(err)
	suite.session, err = users.Login(suite.ctx, "alice", "correct-horse")
	suite.Require().NoError(err)
}

func (suite *LedgerServiceTestSuite) newAccount(accountType domain.AccountType, rate string, balance string) *services.Account {
	acc, err := suite.session.CreateAccount(suite.ctx, accountType, dec(rate))
	suite.Require().NoError(err)
	if b := dec(balance); b.IsPositive() {
		_, err = acc.Deposit(suite.ctx, b, "")
		suite.Require().NoError(err)
	}
	return acc
}

func (suite *LedgerServiceTestSuite) ledgerOf(acc *services.Account) []domain.Transaction {
	txns, err := acc.Transactions(suite.ctx)
	suite.Require().NoError(err)
	return txns
}

func (suite *LedgerServiceTestSuite) storedBalance(acc *services.Account) decimal.Decimal {
	fresh, err := suite.ledger.LoadAccount(suite.ctx, acc.AccountID)
	suite.Require().NoError(err)
	return fresh.Balance
}

func (suite *LedgerServiceTestSuite) assertReconciled(acc *services.Account) {
	sum := domain.SumAmounts(suite.ledgerOf(acc))
	suite.True(sum.Equal(acc.Balance), "ledger sum %s != cached balance %s", sum, acc.Balance)
	suite.True(sum.Equal(suite.storedBalance(acc)), "ledger sum %s != stored balance", sum)
}

// --- Test Cases ---

func (suite *LedgerServiceTestSuite) TestLoadAccount_ByPrimaryKey() {
	acc := suite.newAccount(domain.Savings, "2.5", "10")

	loaded, err := suite.ledger.LoadAccount(suite.ctx, acc.AccountID)
	suite.Require().NoError(err)
	suite.Equal(acc.AccountID, loaded.AccountID)
	suite.Equal(acc.UserID, loaded.UserID)
	suite.Equal(domain.Savings, loaded.AccountType)
	suite.True(loaded.Balance.Equal(dec("10")))
	suite.True(loaded.InterestRate.Equal(dec("2.5")))
	suite.True(loaded.Loaded())

	_, err = suite.ledger.LoadAccount(suite.ctx, 404)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *LedgerServiceTestSuite) TestDeposit_RecordsTransaction() {
	acc := suite.newAccount(domain.Checking, "0", "0")

	txn, err := acc.Deposit(suite.ctx, dec("12.34"), "")
	suite.Require().NoError(err)
	suite.Equal(domain.Deposit, txn.TransactionType)
	suite.True(txn.Amount.Equal(dec("12.34")))
	suite.Equal("Deposit", txn.Description)
	suite.True(acc.Balance.Equal(dec("12.34")))

	_, err = acc.Deposit(suite.ctx, dec("1"), "Paycheck")
	suite.Require().NoError(err)
	suite.Equal("Paycheck", suite.ledgerOf(acc)[0].Description)
	suite.assertReconciled(acc)
}

func (suite *LedgerServiceTestSuite) TestDeposit_InvalidAmount() {
	acc := suite.newAccount(domain.Checking, "0", "0")

	for _, amount := range []string{"0", "-5", "0.001", "100000000"} {
		_, err := acc.Deposit(suite.ctx, dec(amount), "")
		suite.ErrorIs(err, apperrors.ErrInvalidAmount, amount)
	}
	suite.Empty(suite.ledgerOf(acc))
	suite.True(acc.Balance.IsZero())
	suite.Empty(suite.publisher.Events())
}

func (suite *LedgerServiceTestSuite) TestWithdraw() {
	acc := suite.newAccount(domain.Checking, "0", "100")

	txn, err := acc.Withdraw(suite.ctx, dec("30"), "")
	suite.Require().NoError(err)
	suite.Equal(domain.Withdrawal, txn.TransactionType)
	suite.True(txn.Amount.Equal(dec("-30")))
	suite.Equal("Withdrawal", txn.Description)
	suite.True(acc.Balance.Equal(dec("70")))
	suite.assertReconciled(acc)
}

func (suite *LedgerServiceTestSuite) TestWithdraw_InsufficientFunds() {
	acc := suite.newAccount(domain.Checking, "0", "50")

	_, err := acc.Withdraw(suite.ctx, dec("50.01"), "")
	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
	suite.True(acc.Balance.Equal(dec("50")))
	suite.Len(suite.ledgerOf(acc), 1)

	_, err = acc.Withdraw(suite.ctx, dec("0"), "")
	suite.ErrorIs(err, apperrors.ErrInvalidAmount)
}

func (suite *LedgerServiceTestSuite) TestWithdraw_StaleCacheGuardedByStore() {
	acc := suite.newAccount(domain.Checking, "0", "50")
	other, err := suite.ledger.LoadAccount(suite.ctx, acc.AccountID)
	suite.Require().NoError(err)

	_, err = other.Withdraw(suite.ctx, dec("40"), "")
	suite.Require().NoError(err)

	// acc still believes the balance is 50
	_, err = acc.Withdraw(suite.ctx, dec("40"), "")
	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
	suite.True(suite.storedBalance(acc).Equal(dec("10")))
}

func (suite *LedgerServiceTestSuite) TestReconciliation_AfterMixedOperations() {
	acc := suite.newAccount(domain.Savings, "2.5", "0")
	for _, step := range []struct {
		deposit bool
		amount  string
	}{
		{true, "100.10"}, {true, "0.20"}, {false, "33.33"}, {true, "0.03"}, {false, "0.01"}, {true, "999.99"},
	} {
		var err error
		if step.deposit {
			_, err = acc.Deposit(suite.ctx, dec(step.amount), "")
		} else {
			_, err = acc.Withdraw(suite.ctx, dec(step.amount), "")
		}
		suite.Require().NoError(err)
	}
	_, err := acc.ApplyInterest(suite.ctx)
	suite.Require().NoError(err)

	suite.Len(suite.ledgerOf(acc), 7)
	suite.assertReconciled(acc)
}

func (suite *LedgerServiceTestSuite) TestTransfer_RoundTrip() {
	source := suite.newAccount(domain.Checking, "0", "100")
	target := suite.newAccount(domain.Checking, "0", "0")

	result, err := source.Transfer(suite.ctx, target, dec("40"), "")
	suite.Require().NoError(err)
	suite.True(source.Balance.Equal(dec("60")))
	suite.True(target.Balance.Equal(dec("40")))

	suite.Equal(domain.Withdrawal, result.Debit.TransactionType)
	suite.True(result.Debit.Amount.Equal(dec("-40")))
	suite.Equal(domain.Deposit, result.Credit.TransactionType)
	suite.True(result.Credit.Amount.Equal(dec("40")))

	sourceLedger := suite.ledgerOf(source)
	targetLedger := suite.ledgerOf(target)
	suite.Len(sourceLedger, 2) // initial deposit + debit
	suite.Len(targetLedger, 1)
	suite.Equal(fmtTransfer("Transfer to", target), sourceLedger[0].Description)
	suite.Equal(fmtTransfer("Transfer from", source), targetLedger[0].Description)
	suite.assertReconciled(source)
	suite.assertReconciled(target)
}

func (suite *LedgerServiceTestSuite) TestTransfer_Memo() {
	source := suite.newAccount(domain.Checking, "0", "100")
	target := suite.newAccount(domain.Checking, "0", "0")

	_, err := source.Transfer(suite.ctx, target, dec("10"), "rent")
	suite.Require().NoError(err)
	suite.Equal(fmtTransfer("Transfer to", target)+": rent", suite.ledgerOf(source)[0].Description)
	suite.Equal(fmtTransfer("Transfer from", source)+": rent", suite.ledgerOf(target)[0].Description)
}

func (suite *LedgerServiceTestSuite) TestTransfer_Rejections() {
	source := suite.newAccount(domain.Checking, "0", "100")
	target := suite.newAccount(domain.Checking, "0", "0")

	_, err := source.Transfer(suite.ctx, target, dec("100.01"), "")
	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
	_, err = source.Transfer(suite.ctx, target, dec("-1"), "")
	suite.ErrorIs(err, apperrors.ErrInvalidAmount)
	_, err = source.Transfer(suite.ctx, source, dec("1"), "")
	suite.ErrorIs(err, apperrors.ErrSameAccount)
	_, err = source.Transfer(suite.ctx, &services.Account{}, dec("1"), "")
	suite.ErrorIs(err, apperrors.ErrNotFound)

	suite.True(source.Balance.Equal(dec("100")))
	suite.Len(suite.ledgerOf(source), 1)
	suite.Empty(suite.ledgerOf(target))
}

func (suite *LedgerServiceTestSuite) TestTransfer_CompensatesFailedCredit() {
	source := suite.newAccount(domain.Checking, "0", "100")
	target := suite.newAccount(domain.Checking, "0", "0")
	suite.store.failCreditsTo[target.AccountID] = true

	_, err := source.Transfer(suite.ctx, target, dec("40"), "")
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrStore)
	suite.ErrorIs(err, errConnectionReset)

	suite.True(source.Balance.Equal(dec("100")))
	suite.True(target.Balance.IsZero())
	suite.True(suite.storedBalance(target).IsZero(), "failed credit must roll back its balance update")

	ledger := suite.ledgerOf(source)
	suite.Require().Len(ledger, 3)
	suite.Equal(services.TransferReversalDescription, ledger[0].Description)
	suite.Equal(domain.Deposit, ledger[0].TransactionType)
	suite.True(ledger[0].Amount.Equal(dec("40")))
	suite.Equal(domain.Withdrawal, ledger[1].TransactionType)
	suite.True(ledger[1].Amount.Equal(dec("-40")))
	suite.Empty(suite.ledgerOf(target))
	suite.assertReconciled(source)
}

func (suite *LedgerServiceTestSuite) TestTransfer_ReversalFailureReportsBoth() {
	source := suite.newAccount(domain.Checking, "0", "100")
	target := suite.newAccount(domain.Checking, "0", "0")
	suite.store.failCreditsTo[target.AccountID] = true
	suite.store.failCreditsTo[source.AccountID] = true

	_, err := source.Transfer(suite.ctx, target, dec("40"), "")
	suite.Require().Error(err)
	suite.Contains(err.Error(), "transfer credit failed")
	suite.Contains(err.Error(), "transfer reversal failed")

	// funds stay in flight; the debit is still reconciled against the ledger
	suite.True(source.Balance.Equal(dec("60")))
	suite.assertReconciled(source)
}

func (suite *LedgerServiceTestSuite) TestCalculateInterest() {
	savings := suite.newAccount(domain.Savings, "2.5", "1000.00")
	checking := suite.newAccount(domain.Checking, "0", "1000.00")

	suite.True(savings.CalculateInterest().Equal(dec("25.00")))
	suite.True(checking.CalculateInterest().IsZero())
	suite.Len(suite.ledgerOf(savings), 1, "calculating interest has no side effects")
}

func (suite *LedgerServiceTestSuite) TestApplyInterest() {
	savings := suite.newAccount(domain.Savings, "2.5", "1000.00")

	txn, err := savings.ApplyInterest(suite.ctx)
	suite.Require().NoError(err)
	suite.Require().NotNil(txn)
	suite.Equal(services.InterestPaymentDescription, txn.Description)
	suite.True(savings.Balance.Equal(dec("1025.00")))
	suite.assertReconciled(savings)
}

func (suite *LedgerServiceTestSuite) TestApplyInterest_ZeroIsNoop() {
	checking := suite.newAccount(domain.Checking, "0", "500")
	empty := suite.newAccount(domain.Savings, "2.5", "0")

	for _, acc := range []*services.Account{checking, empty} {
		before := acc.Balance
		txn, err := acc.ApplyInterest(suite.ctx)
		suite.NoError(err)
		suite.Nil(txn)
		suite.True(acc.Balance.Equal(before))
	}
	suite.Len(suite.ledgerOf(checking), 1)
	suite.Empty(suite.ledgerOf(empty))
}

func (suite *LedgerServiceTestSuite) TestTransactions_UnloadedAccount() {
	txns, err := (&services.Account{}).Transactions(suite.ctx)
	suite.NoError(err)
	suite.Empty(txns)

	_, err = (&services.Account{}).Deposit(suite.ctx, dec("1"), "")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *LedgerServiceTestSuite) TestPublishesEventPerLedgerRow() {
	source := suite.newAccount(domain.Checking, "0", "100")
	target := suite.newAccount(domain.Checking, "0", "0")
	_, err := source.Transfer(suite.ctx, target, dec("25"), "")
	suite.Require().NoError(err)

	published := suite.publisher.Events()
	suite.Require().Len(published, 3)
	suite.Equal(source.AccountID, published[1].AccountID)
	suite.Equal(string(domain.Withdrawal), published[1].Kind)
	suite.True(published[1].Amount.Equal(dec("-25")))
	suite.Equal(target.AccountID, published[2].AccountID)
}

func (suite *LedgerServiceTestSuite) TestPublishFailureDoesNotFailOperation() {
	suite.publisher.err = errors.New("broker down")
	acc := suite.newAccount(domain.Checking, "0", "0")

	_, err := acc.Deposit(suite.ctx, dec("5"), "")
	suite.NoError(err)
	suite.True(suite.storedBalance(acc).Equal(dec("5")))
}

func (suite *LedgerServiceTestSuite) TestConcurrentMutationsSerialized() {
	acc := suite.newAccount(domain.Checking, "0", "1000")
	peer := suite.newAccount(domain.Checking, "0", "1000")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			_, _ = acc.Deposit(suite.ctx, dec("1"), "")
		}()
		go func() {
			defer wg.Done()
			_, _ = acc.Withdraw(suite.ctx, dec("2"), "")
		}()
		go func() {
			defer wg.Done()
			_, _ = peer.Transfer(suite.ctx, acc, dec("3"), "")
		}()
	}
	wg.Wait()

	suite.True(acc.Balance.Equal(dec("1040")))
	suite.True(peer.Balance.Equal(dec("940")))
	suite.assertReconciled(acc)
	suite.assertReconciled(peer)
}

func fmtTransfer(prefix string, acc *services.Account) string {
	return prefix + " " + strconv.FormatInt(acc.AccountID, 10)
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}

// --- Store fault propagation with a mocked store ---

type LedgerStoreFaultTestSuite struct {
	suite.Suite
	store  *MockLedgerStore
	ledger *services.LedgerService
}

func (suite *LedgerStoreFaultTestSuite) SetupTest() {
	suite.store = new(MockLedgerStore)
	suite.ledger = services.NewLedgerService(suite.store)
}

func (suite *LedgerStoreFaultTestSuite) loaded() *services.Account {
	ctx := context.Background()
	suite.store.On("GetAccountByID", ctx, int64(1)).Return(&domain.Account{
		AccountID: 1, UserID: 1, AccountType: domain.Checking, Balance: dec("10"),
	}, nil).Once()
	acc, err := suite.ledger.LoadAccount(ctx, 1)
	suite.Require().NoError(err)
	return acc
}

func (suite *LedgerStoreFaultTestSuite) TestDeposit_StoreFailure() {
	ctx := context.Background()
	acc := suite.loaded()
	suite.store.On("UpdateBalance", ctx, int64(1), dec("5")).Return(decimal.Zero, errConnectionReset).Once()

	_, err := acc.Deposit(ctx, dec("5"), "")
	suite.ErrorIs(err, apperrors.ErrStore)
	suite.ErrorIs(err, errConnectionReset)
	suite.True(acc.Balance.Equal(dec("10")))
	suite.store.AssertNotCalled(suite.T(), "AddTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.store.AssertExpectations(suite.T())
}

func (suite *LedgerStoreFaultTestSuite) TestDeposit_UsesStoreBalance() {
	ctx := context.Background()
	acc := suite.loaded()
	suite.store.On("UpdateBalance", ctx, int64(1), dec("5")).Return(dec("115"), nil).Once()
	suite.store.On("AddTransaction", ctx, int64(1), domain.Deposit, dec("5"), "Deposit").
		Return(&domain.Transaction{TransactionID: 9, AccountID: 1, TransactionType: domain.Deposit, Amount: dec("5")}, nil).Once()

	_, err := acc.Deposit(ctx, dec("5"), "")
	suite.Require().NoError(err)
	suite.True(acc.Balance.Equal(dec("115")))
	suite.store.AssertExpectations(suite.T())
}

func (suite *LedgerStoreFaultTestSuite) TestLoadAccount_StoreFailure() {
	ctx := context.Background()
	suite.store.On("GetAccountByID", ctx, int64(3)).Return(nil, errConnectionReset).Once()

	_, err := suite.ledger.LoadAccount(ctx, 3)
	suite.ErrorIs(err, apperrors.ErrStore)
	suite.NotErrorIs(err, apperrors.ErrNotFound)
}

func (suite *LedgerStoreFaultTestSuite) TestTransactions_StoreFailure() {
	ctx := context.Background()
	acc := suite.loaded()
	suite.store.On("GetTransactionsByAccount", ctx, int64(1)).Return(nil, errConnectionReset).Once()

	_, err := acc.Transactions(ctx)
	suite.ErrorIs(err, apperrors.ErrStore)
}

func TestLedgerStoreFaultTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerStoreFaultTestSuite))
}
