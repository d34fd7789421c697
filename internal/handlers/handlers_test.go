package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/SscSPs/terminal_banking/internal/core/domain"
	"github.com/SscSPs/terminal_banking/internal/core/ports/events"
	"github.com/SscSPs/terminal_banking/internal/core/services"
	"github.com/SscSPs/terminal_banking/internal/dto"
	"github.com/SscSPs/terminal_banking/internal/handlers"
	"github.com/SscSPs/terminal_banking/internal/platform/config"
	"github.com/SscSPs/terminal_banking/internal/repositories/memory"
	"github.com/SscSPs/terminal_banking/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

const jwtSecret = "test-secret-key-that-is-long-enough"

type HandlersTestSuite struct {
	suite.Suite
	router *gin.Engine
	cfg    *config.Config
	svc    *services.Container

	alice *domain.User
	bob   *domain.User
}

func (suite *HandlersTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.cfg = &config.Config{
		JWTSecret:           jwtSecret,
		JWTExpiryDuration:   time.Hour,
		JWTIssuer:           "terminal-banking",
		SavingsInterestRate: decimal.RequireFromString("2.5"),
		BcryptCost:          bcrypt.MinCost,
	}
	suite.svc = services.NewContainer(memory.NewStore(), events.NoopPublisher{}, bcrypt.MinCost)
	suite.router = gin.New()
	suite.Require().NoError(handlers.RegisterRoutes(suite.router, suite.cfg, suite.svc))

	var err error
	suite.alice, err = suite.svc.Users.Register(context.Background(), "alice", "correct-horse", "alice@example.com")
	suite.Require().NoError(err)
	suite.bob, err = suite.svc.Users.Register(context.Background(), "bob", "battery-staple", "bob@example.com")
	suite.Require().NoError(err)
}

// generateTestToken signs a token for userID with the test secret.
func (suite *HandlersTestSuite) generateTestToken(userID int64) string {
	token, err := utils.GenerateJWT(userID, jwtSecret, time.Hour, suite.cfg.JWTIssuer)
	suite.Require().NoError(err)
	return token
}

func (suite *HandlersTestSuite) do(method, path string, user *domain.User, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(user.UserID))
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlersTestSuite) decode(w *httptest.ResponseRecorder, v any) {
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (suite *HandlersTestSuite) openAccount(user *domain.User, accountType string) dto.AccountResponse {
	w := suite.do(http.MethodPost, "/api/v1/accounts", user, dto.CreateAccountRequest{AccountType: accountType})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp dto.AccountResponse
	suite.decode(w, &resp)
	return resp
}

func accountPath(id int64, suffix string) string {
	return "/api/v1/accounts/" + strconv.FormatInt(id, 10) + suffix
}

func (suite *HandlersTestSuite) deposit(user *domain.User, id int64, amount string) *httptest.ResponseRecorder {
	return suite.do(http.MethodPost, accountPath(id, "/deposit"), user, dto.AmountRequest{Amount: amount})
}

func (suite *HandlersTestSuite) TestHealth() {
	w := suite.do(http.MethodGet, "/health", nil, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("OK", w.Body.String())
}

func (suite *HandlersTestSuite) TestRegister() {
	w := suite.do(http.MethodPost, "/auth/register", nil, dto.RegisterRequest{
		Username: "carol", Password: "long-enough", Email: "carol@example.com",
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var user dto.UserResponse
	suite.decode(w, &user)
	suite.Equal("carol", user.Username)
	suite.NotContains(w.Body.String(), "long-enough")

	w = suite.do(http.MethodPost, "/auth/register", nil, dto.RegisterRequest{
		Username: "carol", Password: "long-enough", Email: "other@example.com",
	})
	suite.Equal(http.StatusConflict, w.Code)

	w = suite.do(http.MethodPost, "/auth/register", nil, map[string]string{"username": "dave"})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestLogin() {
	w := suite.do(http.MethodPost, "/auth/login", nil, dto.LoginRequest{Username: "alice", Password: "correct-horse"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var resp dto.LoginResponse
	suite.decode(w, &resp)
	suite.NotEmpty(resp.Token)
	suite.Equal(suite.alice.UserID, resp.User.UserID)

	claims, err := utils.ParseAndValidateJWT(resp.Token, jwtSecret)
	suite.Require().NoError(err)
	userID, err := utils.UserIDFromClaims(claims)
	suite.Require().NoError(err)
	suite.Equal(suite.alice.UserID, userID)

	for _, req := range []dto.LoginRequest{
		{Username: "alice", Password: "wrong-password"},
		{Username: "ghost", Password: "correct-horse"},
	} {
		w = suite.do(http.MethodPost, "/auth/login", nil, req)
		suite.Equal(http.StatusUnauthorized, w.Code)
		suite.JSONEq(`{"error":"Invalid username or password"}`, w.Body.String())
	}
}

func (suite *HandlersTestSuite) TestAPIRequiresToken() {
	w := suite.do(http.MethodGet, "/api/v1/accounts", nil, nil)
	suite.Equal(http.StatusUnauthorized, w.Code)

	ghost := &domain.User{UserID: 999}
	w = suite.do(http.MethodGet, "/api/v1/accounts", ghost, nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *HandlersTestSuite) TestCreateAndListAccounts() {
	savings := suite.openAccount(suite.alice, "savings")
	suite.Equal(domain.Savings, savings.AccountType)
	suite.Equal("2.50", savings.InterestRate)
	suite.Equal("0.00", savings.Balance)

	checking := suite.openAccount(suite.alice, "Checking")
	suite.Equal("0.00", checking.InterestRate)

	w := suite.do(http.MethodPost, "/api/v1/accounts", suite.alice, dto.CreateAccountRequest{AccountType: "Savings", InterestRate: "4.25"})
	suite.Require().Equal(http.StatusCreated, w.Code)
	var custom dto.AccountResponse
	suite.decode(w, &custom)
	suite.Equal("4.25", custom.InterestRate)

	w = suite.do(http.MethodPost, "/api/v1/accounts", suite.alice, dto.CreateAccountRequest{AccountType: "Brokerage"})
	suite.Equal(http.StatusBadRequest, w.Code)
	w = suite.do(http.MethodPost, "/api/v1/accounts", suite.alice, dto.CreateAccountRequest{AccountType: "Savings", InterestRate: "-1"})
	suite.Equal(http.StatusBadRequest, w.Code)

	suite.openAccount(suite.bob, "Checking")

	w = suite.do(http.MethodGet, "/api/v1/accounts", suite.alice, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var list dto.ListAccountsResponse
	suite.decode(w, &list)
	suite.Require().Len(list.Accounts, 3)
	suite.Equal(savings.AccountID, list.Accounts[0].AccountID)
	for _, acc := range list.Accounts {
		suite.Equal(suite.alice.UserID, acc.UserID)
	}
}

func (suite *HandlersTestSuite) TestGetAccount_Ownership() {
	bobs := suite.openAccount(suite.bob, "Checking")

	w := suite.do(http.MethodGet, accountPath(bobs.AccountID, ""), suite.bob, nil)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.do(http.MethodGet, accountPath(bobs.AccountID, ""), suite.alice, nil)
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.do(http.MethodGet, "/api/v1/accounts/abc", suite.alice, nil)
	suite.Equal(http.StatusBadRequest, w.Code)
	w = suite.do(http.MethodGet, accountPath(12345, ""), suite.alice, nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestDepositAndWithdraw() {
	acc := suite.openAccount(suite.alice, "Checking")

	w := suite.deposit(suite.alice, acc.AccountID, "100.50")
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var op dto.LedgerOperationResponse
	suite.decode(w, &op)
	suite.Equal("100.50", op.Account.Balance)
	suite.Require().NotNil(op.Transaction)
	suite.Equal(domain.Deposit, op.Transaction.TransactionType)
	suite.Equal(services.DefaultDepositDescription, op.Transaction.Description)

	w = suite.do(http.MethodPost, accountPath(acc.AccountID, "/withdraw"), suite.alice, dto.AmountRequest{Amount: "40", Description: "groceries"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.decode(w, &op)
	suite.Equal("60.50", op.Account.Balance)
	suite.Equal("-40.00", op.Transaction.Amount)
	suite.Equal("groceries", op.Transaction.Description)

	w = suite.do(http.MethodPost, accountPath(acc.AccountID, "/withdraw"), suite.alice, dto.AmountRequest{Amount: "1000"})
	suite.Equal(http.StatusConflict, w.Code)

	for _, amount := range []string{"0", "-5", "1.001", "ten"} {
		w = suite.deposit(suite.alice, acc.AccountID, amount)
		suite.Equal(http.StatusBadRequest, w.Code, amount)
	}

	w = suite.deposit(suite.bob, acc.AccountID, "10")
	suite.Equal(http.StatusNotFound, w.Code, "deposits need ownership")
}

func (suite *HandlersTestSuite) TestTransfer() {
	source := suite.openAccount(suite.alice, "Checking")
	target := suite.openAccount(suite.bob, "Savings")
	suite.Require().Equal(http.StatusOK, suite.deposit(suite.alice, source.AccountID, "100").Code)

	w := suite.do(http.MethodPost, accountPath(source.AccountID, "/transfer"), suite.alice, dto.TransferRequest{
		TargetAccountID: target.AccountID, Amount: "30", Description: "rent",
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var resp dto.TransferResponse
	suite.decode(w, &resp)
	suite.Equal("70.00", resp.Account.Balance)
	suite.Equal("-30.00", resp.Debit.Amount)
	suite.Equal("30.00", resp.Credit.Amount)
	suite.Equal("Transfer to "+strconv.FormatInt(target.AccountID, 10)+": rent", resp.Debit.Description)
	suite.Equal(target.AccountID, resp.Credit.AccountID)

	w = suite.do(http.MethodGet, accountPath(target.AccountID, ""), suite.bob, nil)
	var credited dto.AccountResponse
	suite.decode(w, &credited)
	suite.Equal("30.00", credited.Balance)

	w = suite.do(http.MethodPost, accountPath(source.AccountID, "/transfer"), suite.alice, dto.TransferRequest{
		TargetAccountID: source.AccountID, Amount: "1",
	})
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.do(http.MethodPost, accountPath(source.AccountID, "/transfer"), suite.alice, dto.TransferRequest{
		TargetAccountID: 98765, Amount: "1",
	})
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.do(http.MethodPost, accountPath(source.AccountID, "/transfer"), suite.alice, dto.TransferRequest{
		TargetAccountID: target.AccountID, Amount: "500",
	})
	suite.Equal(http.StatusConflict, w.Code)

	w = suite.do(http.MethodPost, accountPath(target.AccountID, "/transfer"), suite.alice, dto.TransferRequest{
		TargetAccountID: source.AccountID, Amount: "1",
	})
	suite.Equal(http.StatusNotFound, w.Code, "the source must be owned by the caller")
}

func (suite *HandlersTestSuite) TestApplyInterestAndTransactions() {
	acc := suite.openAccount(suite.alice, "Savings")
	suite.Require().Equal(http.StatusOK, suite.deposit(suite.alice, acc.AccountID, "1000").Code)

	w := suite.do(http.MethodPost, accountPath(acc.AccountID, "/interest"), suite.alice, nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var op dto.LedgerOperationResponse
	suite.decode(w, &op)
	suite.Equal("1025.00", op.Account.Balance)
	suite.Require().NotNil(op.Transaction)
	suite.Equal(services.InterestPaymentDescription, op.Transaction.Description)

	empty := suite.openAccount(suite.alice, "Savings")
	w = suite.do(http.MethodPost, accountPath(empty.AccountID, "/interest"), suite.alice, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.decode(w, &op)
	suite.Nil(op.Transaction)

	w = suite.do(http.MethodGet, accountPath(acc.AccountID, "/transactions"), suite.alice, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var list dto.ListTransactionsResponse
	suite.decode(w, &list)
	suite.Require().Len(list.Transactions, 2)
	suite.Equal(services.InterestPaymentDescription, list.Transactions[0].Description)
	suite.Equal("1000.00", list.Transactions[1].Amount)

	w = suite.do(http.MethodGet, accountPath(acc.AccountID, "/transactions"), suite.bob, nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}
