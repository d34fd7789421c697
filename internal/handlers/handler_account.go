package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/SscSPs/terminal_banking/internal/apperrors"
	"github.com/SscSPs/terminal_banking/internal/core/domain"
	"github.com/SscSPs/terminal_banking/internal/core/services"
	"github.com/SscSPs/terminal_banking/internal/dto"
	"github.com/SscSPs/terminal_banking/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// accountHandler handles HTTP requests related to accounts.
type accountHandler struct {
	userService *services.UserService
	savingsRate decimal.Decimal
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(us *services.UserService, savingsRate decimal.Decimal) *accountHandler {
	return &accountHandler{
		userService: us,
		savingsRate: savingsRate,
	}
}

// registerAccountRoutes registers routes related to accounts.
func registerAccountRoutes(rg *gin.RouterGroup, us *services.UserService, savingsRate decimal.Decimal) {
	h := newAccountHandler(us, savingsRate)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:id", h.getAccount)
		accounts.POST("/:id/deposit", h.deposit)
		accounts.POST("/:id/withdraw", h.withdraw)
		accounts.POST("/:id/transfer", h.transfer)
		accounts.POST("/:id/interest", h.applyInterest)
		accounts.GET("/:id/transactions", h.listTransactions)
	}
}

// session opens a session for the caller. It writes the error response and
// returns false when no session can be opened.
func (h *accountHandler) session(c *gin.Context, logger *slog.Logger) (*services.Session, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Logged-in user ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return nil, false
	}
	session, err := h.userService.SessionForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to open session")
		return nil, false
	}
	return session, true
}

// ownedAccount resolves the :id path parameter to an account of the caller.
func (h *accountHandler) ownedAccount(c *gin.Context, logger *slog.Logger) (*services.Session, *services.Account, bool) {
	accountID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || accountID <= 0 {
		logger.Warn("Invalid account ID in path", slog.String("id", c.Param("id")))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid account ID"})
		return nil, nil, false
	}
	session, ok := h.session(c, logger)
	if !ok {
		return nil, nil, false
	}
	acc, err := session.LoadOwnedAccount(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, logger, err, "Failed to load account")
		return nil, nil, false
	}
	return session, acc, true
}

func parseAmountField(c *gin.Context, logger *slog.Logger, raw string) (decimal.Decimal, bool) {
	amount, err := domain.ParseAmount(raw)
	if err != nil {
		logger.Warn("Invalid amount", slog.String("amount", raw))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return decimal.Zero, false
	}
	return amount, true
}

func ledgerResponse(acc *services.Account, txn *domain.Transaction) dto.LedgerOperationResponse {
	snapshot := acc.Snapshot()
	resp := dto.LedgerOperationResponse{Account: dto.ToAccountResponse(&snapshot)}
	if txn != nil {
		t := dto.ToTransactionResponse(txn)
		resp.Transaction = &t
	}
	return resp
}

// createAccount godoc
// @Summary Open a new account
// @Description Opens a zero-balance Savings or Checking account for the logged-in user
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} ErrorResponse "Invalid input format or validation error"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Failed to create account"
// @Security BearerAuth
// @Router /accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	accountType, err := domain.ParseAccountType(req.AccountType)
	if err != nil {
		respondError(c, logger, err, "Failed to create account")
		return
	}
	rate := h.savingsRate
	if req.InterestRate != "" {
		rate, err = decimal.NewFromString(req.InterestRate)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid interest rate %q", req.InterestRate)})
			return
		}
	}

	session, ok := h.session(c, logger)
	if !ok {
		return
	}
	acc, err := session.CreateAccount(c.Request.Context(), accountType, rate)
	if err != nil {
		respondError(c, logger, err, "Failed to create account")
		return
	}

	snapshot := acc.Snapshot()
	c.JSON(http.StatusCreated, dto.ToAccountResponse(&snapshot))
}

// listAccounts godoc
// @Summary List accounts for the logged-in user
// @Tags accounts
// @Produce  json
// @Success 200 {object} dto.ListAccountsResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Failed to list accounts"
// @Security BearerAuth
// @Router /accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	session, ok := h.session(c, logger)
	if !ok {
		return
	}
	accounts, err := session.Accounts(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to list accounts")
		return
	}
	c.JSON(http.StatusOK, dto.ToListAccountsResponse(accounts))
}

// getAccount godoc
// @Summary Get an account by ID
// @Tags accounts
// @Produce  json
// @Param   id path int true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} ErrorResponse "Invalid account ID"
// @Failure 404 {object} ErrorResponse "Account not found"
// @Security BearerAuth
// @Router /accounts/{id} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	_, acc, ok := h.ownedAccount(c, logger)
	if !ok {
		return
	}
	snapshot := acc.Snapshot()
	c.JSON(http.StatusOK, dto.ToAccountResponse(&snapshot))
}

// deposit godoc
// @Summary Deposit into an account
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   id path int true "Account ID"
// @Param   deposit body dto.AmountRequest true "Amount"
// @Success 200 {object} dto.LedgerOperationResponse
// @Failure 400 {object} ErrorResponse "Invalid amount"
// @Failure 404 {object} ErrorResponse "Account not found"
// @Security BearerAuth
// @Router /accounts/{id}/deposit [post]
func (h *accountHandler) deposit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Deposit", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}
	amount, ok := parseAmountField(c, logger, req.Amount)
	if !ok {
		return
	}
	_, acc, ok := h.ownedAccount(c, logger)
	if !ok {
		return
	}

	txn, err := acc.Deposit(c.Request.Context(), amount, req.Description)
	if err != nil {
		respondError(c, logger, err, "Failed to deposit")
		return
	}
	c.JSON(http.StatusOK, ledgerResponse(acc, txn))
}

// withdraw godoc
// @Summary Withdraw from an account
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   id path int true "Account ID"
// @Param   withdrawal body dto.AmountRequest true "Amount"
// @Success 200 {object} dto.LedgerOperationResponse
// @Failure 400 {object} ErrorResponse "Invalid amount"
// @Failure 404 {object} ErrorResponse "Account not found"
// @Failure 409 {object} ErrorResponse "Insufficient funds"
// @Security BearerAuth
// @Router /accounts/{id}/withdraw [post]
func (h *accountHandler) withdraw(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Withdraw", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}
	amount, ok := parseAmountField(c, logger, req.Amount)
	if !ok {
		return
	}
	_, acc, ok := h.ownedAccount(c, logger)
	if !ok {
		return
	}

	txn, err := acc.Withdraw(c.Request.Context(), amount, req.Description)
	if err != nil {
		respondError(c, logger, err, "Failed to withdraw")
		return
	}
	c.JSON(http.StatusOK, ledgerResponse(acc, txn))
}

// transfer godoc
// @Summary Transfer to another account
// @Description Debits the path account and credits the target account, which may belong to any user
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   id path int true "Source account ID"
// @Param   transfer body dto.TransferRequest true "Transfer details"
// @Success 200 {object} dto.TransferResponse
// @Failure 400 {object} ErrorResponse "Invalid amount or same account"
// @Failure 404 {object} ErrorResponse "Account not found"
// @Failure 409 {object} ErrorResponse "Insufficient funds"
// @Security BearerAuth
// @Router /accounts/{id}/transfer [post]
func (h *accountHandler) transfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Transfer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}
	amount, ok := parseAmountField(c, logger, req.Amount)
	if !ok {
		return
	}
	session, source, ok := h.ownedAccount(c, logger)
	if !ok {
		return
	}
	if source.AccountID == req.TargetAccountID {
		respondError(c, logger, apperrors.ErrSameAccount, "Failed to transfer")
		return
	}

	// the target may belong to any user
	target, err := session.LoadAccount(c.Request.Context(), req.TargetAccountID)
	if err != nil {
		respondError(c, logger, err, "Failed to load target account")
		return
	}

	logger = logger.With(slog.Int64("source_account_id", source.AccountID), slog.Int64("target_account_id", target.AccountID))
	result, err := source.Transfer(c.Request.Context(), target, amount, req.Description)
	if err != nil {
		respondError(c, logger, err, "Failed to transfer")
		return
	}

	snapshot := source.Snapshot()
	c.JSON(http.StatusOK, dto.TransferResponse{
		Account: dto.ToAccountResponse(&snapshot),
		Debit:   dto.ToTransactionResponse(result.Debit),
		Credit:  dto.ToTransactionResponse(result.Credit),
	})
}

// applyInterest godoc
// @Summary Apply interest to an account
// @Description Deposits balance * rate / 100; no row is written when that is zero
// @Tags accounts
// @Produce  json
// @Param   id path int true "Account ID"
// @Success 200 {object} dto.LedgerOperationResponse
// @Failure 404 {object} ErrorResponse "Account not found"
// @Security BearerAuth
// @Router /accounts/{id}/interest [post]
func (h *accountHandler) applyInterest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	_, acc, ok := h.ownedAccount(c, logger)
	if !ok {
		return
	}
	txn, err := acc.ApplyInterest(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to apply interest")
		return
	}
	c.JSON(http.StatusOK, ledgerResponse(acc, txn))
}

// listTransactions godoc
// @Summary List the ledger of an account
// @Description Returns every transaction of the account, newest first
// @Tags accounts
// @Produce  json
// @Param   id path int true "Account ID"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 404 {object} ErrorResponse "Account not found"
// @Security BearerAuth
// @Router /accounts/{id}/transactions [get]
func (h *accountHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	_, acc, ok := h.ownedAccount(c, logger)
	if !ok {
		return
	}
	txns, err := acc.Transactions(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to list transactions")
		return
	}
	c.JSON(http.StatusOK, dto.ToListTransactionsResponse(txns))
}
