// Package cli implements the interactive terminal client of the bank.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/SscSPs/terminal_banking/internal/apperrors"
	"github.com/SscSPs/terminal_banking/internal/core/domain"
	"github.com/SscSPs/terminal_banking/internal/core/services"
	"github.com/SscSPs/terminal_banking/internal/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	msgInvalidChoice    = "Invalid choice."
	msgInvalidAmount    = "Invalid amount."
	msgInvalidAccountID = "Invalid account ID."
	msgNoAccount        = "No account selected."
	msgUnexpected       = "Something went wrong. Please try again."
)

// App drives the main and account menus over a Terminal.
type App struct {
	users       *services.UserService
	savingsRate decimal.Decimal
	term        *Terminal
	logger      *slog.Logger
}

// NewApp creates the client. Savings accounts are opened at savingsRate percent.
func NewApp(users *services.UserService, savingsRate decimal.Decimal, term *Terminal, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{users: users, savingsRate: savingsRate, term: term, logger: logger}
}

// Run shows the main menu until the operator exits or the input ends.
func (a *App) Run(ctx context.Context) error {
	logger := a.logger.With(slog.String("session_id", uuid.NewString()))
	ctx = middleware.WithLogger(ctx, logger)
	logger.Info("Terminal session started")

	err := a.mainMenu(ctx)
	if errors.Is(err, io.EOF) {
		err = nil
	}
	logger.Info("Terminal session ended")
	return err
}

func (a *App) mainMenu(ctx context.Context) error {
	for {
		a.term.Header("Banking System")
		a.term.Println("1. Register")
		a.term.Println("2. Login")
		a.term.Println("3. Exit")

		choice, err := a.term.ReadLine("\nSelect option (1-3): ")
		if err != nil {
			return err
		}
		switch strings.TrimSpace(choice) {
		case "1":
			err = a.register(ctx)
		case "2":
			err = a.login(ctx)
		case "3":
			a.term.Notice("Thank you for using the Banking System!")
			return nil
		default:
			a.term.Error(msgInvalidChoice)
		}
		if err != nil {
			return err
		}
		if err := a.term.Pause(); err != nil {
			return err
		}
	}
}

func (a *App) register(ctx context.Context) error {
	a.term.Header("User Registration")
	username, err := a.term.ReadLine("Enter username: ")
	if err != nil {
		return err
	}
	password, err := a.term.ReadPassword("Enter password: ")
	if err != nil {
		return err
	}
	email, err := a.term.ReadLine("Enter email: ")
	if err != nil {
		return err
	}

	_, err = a.users.Register(ctx, username, password, email)
	switch {
	case err == nil:
		a.term.Success("Registration successful!")
	case errors.Is(err, apperrors.ErrAlreadyExists):
		a.term.Error("Registration failed. Username or email may already exist.")
	case errors.Is(err, apperrors.ErrValidation):
		a.term.Error("Registration failed: " + err.Error())
	default:
		a.unexpected(ctx, err, "Registration failed")
	}
	return nil
}

func (a *App) login(ctx context.Context) error {
	a.term.Header("User Login")
	username, err := a.term.ReadLine("Enter username: ")
	if err != nil {
		return err
	}
	password, err := a.term.ReadPassword("Enter password: ")
	if err != nil {
		return err
	}

	session, err := a.users.Login(ctx, username, password)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			a.term.Error("Login failed. Invalid username or password.")
		} else {
			a.unexpected(ctx, err, "Login failed")
		}
		return nil
	}
	a.term.Success("Login successful!")

	user, _ := session.User()
	ctx = middleware.WithLogger(ctx, middleware.GetLoggerFromCtx(ctx).With(slog.Int64("user_id", user.UserID)))
	defer session.Logout()
	return a.accountMenu(ctx, session)
}

func (a *App) accountMenu(ctx context.Context, session *services.Session) error {
	for {
		a.term.Header("Account Operations")
		current := "None"
		if acc, ok := session.CurrentAccount(); ok {
			current = strconv.FormatInt(acc.AccountID, 10)
		}
		a.term.Println("Current Account: " + current)
		a.term.Println()
		a.term.Println("1. Create New Account")
		a.term.Println("2. Select Account")
		a.term.Println("3. Deposit")
		a.term.Println("4. Withdraw")
		a.term.Println("5. Transfer")
		a.term.Println("6. View Transactions")
		a.term.Println("7. Show All Accounts")
		a.term.Println("8. Apply Interest")
		a.term.Println("9. Logout")

		choice, err := a.term.ReadLine("\nSelect operation (1-9): ")
		if err != nil {
			return err
		}
		switch strings.TrimSpace(choice) {
		case "1":
			err = a.createAccount(ctx, session)
		case "2":
			err = a.selectAccount(ctx, session)
		case "3":
			err = a.deposit(ctx, session)
		case "4":
			err = a.withdraw(ctx, session)
		case "5":
			err = a.transfer(ctx, session)
		case "6":
			err = a.showTransactions(ctx, session)
		case "7":
			err = a.showAccounts(ctx, session)
		case "8":
			err = a.applyInterest(ctx, session)
		case "9":
			session.Logout()
			a.term.Notice("Logged out.")
			return nil
		default:
			a.term.Error(msgInvalidChoice)
		}
		if err != nil {
			return err
		}
		if err := a.term.Pause(); err != nil {
			return err
		}
	}
}

func (a *App) createAccount(ctx context.Context, session *services.Session) error {
	a.term.Header("Create New Account")
	a.term.Println("Account Types:")
	a.term.Println(fmt.Sprintf("1. Savings (%s%% interest)", a.savingsRate.StringFixed(domain.MoneyScale)))
	a.term.Println("2. Checking (No interest)")

	choice, err := a.term.ReadLine("Select account type (1-2): ")
	if err != nil {
		return err
	}
	var accountType domain.AccountType
	rate := decimal.Zero
	switch strings.TrimSpace(choice) {
	case "1":
		accountType = domain.Savings
		rate = a.savingsRate
	case "2":
		accountType = domain.Checking
	default:
		a.term.Error(msgInvalidChoice)
		return nil
	}

	acc, err := session.CreateAccount(ctx, accountType, rate)
	if err != nil {
		a.unexpected(ctx, err, "Failed to create account.")
		return nil
	}
	a.term.Success(fmt.Sprintf("Account created successfully! Account ID: %d", acc.AccountID))
	return nil
}

func (a *App) showAccounts(ctx context.Context, session *services.Session) error {
	accounts, err := session.Accounts(ctx)
	if err != nil {
		a.unexpected(ctx, err, "Failed to list accounts.")
		return nil
	}
	if len(accounts) == 0 {
		a.term.Notice("No accounts found.")
		return nil
	}
	return renderAccounts(a.term.Writer(), accounts)
}

func (a *App) selectAccount(ctx context.Context, session *services.Session) error {
	if err := a.showAccounts(ctx, session); err != nil {
		return err
	}
	accountID, ok, err := a.readAccountID("\nEnter account ID: ")
	if err != nil || !ok {
		return err
	}
	if _, err := session.SelectAccount(ctx, accountID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			a.term.Error(msgInvalidAccountID)
		} else {
			a.unexpected(ctx, err, "Failed to select account.")
		}
	}
	return nil
}

func (a *App) deposit(ctx context.Context, session *services.Session) error {
	acc, ok := a.current(session)
	if !ok {
		return nil
	}
	amount, ok, err := a.readAmount("Enter amount to deposit: $")
	if err != nil || !ok {
		return err
	}
	if _, err := acc.Deposit(ctx, amount, ""); err != nil {
		a.ledgerFailure(ctx, err, "Deposit failed.")
		return nil
	}
	a.term.Success("Deposit successful! New balance: $" + acc.Balance.StringFixed(domain.MoneyScale))
	return nil
}

func (a *App) withdraw(ctx context.Context, session *services.Session) error {
	acc, ok := a.current(session)
	if !ok {
		return nil
	}
	amount, ok, err := a.readAmount("Enter amount to withdraw: $")
	if err != nil || !ok {
		return err
	}
	if _, err := acc.Withdraw(ctx, amount, ""); err != nil {
		a.ledgerFailure(ctx, err, "Withdrawal failed.")
		return nil
	}
	a.term.Success("Withdrawal successful! New balance: $" + acc.Balance.StringFixed(domain.MoneyScale))
	return nil
}

func (a *App) transfer(ctx context.Context, session *services.Session) error {
	acc, ok := a.current(session)
	if !ok {
		return nil
	}
	targetID, ok, err := a.readAccountID("Enter target account ID: ")
	if err != nil || !ok {
		return err
	}
	amount, ok, err := a.readAmount("Enter amount to transfer: $")
	if err != nil || !ok {
		return err
	}
	memo, err := a.term.ReadLine("Enter description (optional): ")
	if err != nil {
		return err
	}

	target, err := session.LoadAccount(ctx, targetID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			a.term.Error("Invalid target account.")
		} else {
			a.unexpected(ctx, err, "Transfer failed.")
		}
		return nil
	}
	if _, err := acc.Transfer(ctx, target, amount, strings.TrimSpace(memo)); err != nil {
		a.ledgerFailure(ctx, err, "Transfer failed.")
		return nil
	}
	a.term.Success("Transfer successful! New balance: $" + acc.Balance.StringFixed(domain.MoneyScale))
	return nil
}

func (a *App) showTransactions(ctx context.Context, session *services.Session) error {
	acc, ok := a.current(session)
	if !ok {
		return nil
	}
	txns, err := acc.Transactions(ctx)
	if err != nil {
		a.unexpected(ctx, err, "Failed to load transactions.")
		return nil
	}
	if len(txns) == 0 {
		a.term.Notice("No transactions found.")
		return nil
	}
	return renderTransactions(a.term.Writer(), txns)
}

func (a *App) applyInterest(ctx context.Context, session *services.Session) error {
	acc, ok := a.current(session)
	if !ok {
		return nil
	}
	txn, err := acc.ApplyInterest(ctx)
	if err != nil {
		a.ledgerFailure(ctx, err, "Applying interest failed.")
		return nil
	}
	if txn == nil {
		a.term.Notice("No interest to apply.")
		return nil
	}
	a.term.Success(fmt.Sprintf("Interest of $%s applied! New balance: $%s",
		txn.Amount.StringFixed(domain.MoneyScale), acc.Balance.StringFixed(domain.MoneyScale)))
	return nil
}

func (a *App) current(session *services.Session) (*services.Account, bool) {
	acc, ok := session.CurrentAccount()
	if !ok {
		a.term.Error(msgNoAccount)
	}
	return acc, ok
}

// readAmount returns ok=false after reporting malformed input.
func (a *App) readAmount(prompt string) (decimal.Decimal, bool, error) {
	raw, err := a.term.ReadLine(prompt)
	if err != nil {
		return decimal.Zero, false, err
	}
	amount, err := domain.ParseAmount(raw)
	if err != nil {
		a.term.Error(msgInvalidAmount)
		return decimal.Zero, false, nil
	}
	return amount, true, nil
}

// readAccountID returns ok=false after reporting malformed input.
func (a *App) readAccountID(prompt string) (int64, bool, error) {
	raw, err := a.term.ReadLine(prompt)
	if err != nil {
		return 0, false, err
	}
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		a.term.Error(msgInvalidAccountID)
		return 0, false, nil
	}
	return id, true, nil
}

// ledgerFailure reports the outcome of a rejected money movement.
func (a *App) ledgerFailure(ctx context.Context, err error, prefix string) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidAmount):
		a.term.Error(prefix + " " + msgInvalidAmount)
	case errors.Is(err, apperrors.ErrInsufficientFunds):
		a.term.Error(prefix + " Insufficient funds.")
	case errors.Is(err, apperrors.ErrSameAccount):
		a.term.Error(prefix + " Cannot transfer to the same account.")
	default:
		a.unexpected(ctx, err, prefix)
	}
}

func (a *App) unexpected(ctx context.Context, err error, msg string) {
	middleware.GetLoggerFromCtx(ctx).Error(msg, slog.String("error", err.Error()))
	a.term.Error(msg + " " + msgUnexpected)
}
