package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/bdist/aviacao-service/internal/model"
	"github.com/bdist/aviacao-service/internal/repository"
)

// AccountStore is the part of the account repository the handlers use.
type AccountStore interface {
	List(ctx context.Context) ([]model.Account, error)
	GetByNumber(ctx context.Context, number string) (*model.Account, error)
	UpdateBalance(ctx context.Context, number string, balance decimal.Decimal) error
	DeleteWithDepositors(ctx context.Context, number string) error
}

// AccountHandler serves the bank ledger endpoints.  Every method runs a
// single statement, except Delete which removes the account and its
// depositors atomically.
type AccountHandler struct {
	Accounts AccountStore
}

// NewAccountHandler constructs an AccountHandler.
func NewAccountHandler(accounts AccountStore) *AccountHandler {
	if accounts == nil {
		panic("nil store passed to NewAccountHandler")
	}
	return &AccountHandler{Accounts: accounts}
}

var accountInternal = echo.Map{"message": "Internal server error.", "status": "error"}

// List handles GET /accounts (and GET /).  Accounts come back ordered by
// account number, highest first.
func (h *AccountHandler) List(c echo.Context) error {
	accounts, err := h.Accounts.List(c.Request().Context())
	if err != nil {
		return internalError(c, err, "list accounts", accountInternal)
	}
	return c.JSON(http.StatusOK, accounts)
}

// Get handles GET /accounts/:account_number/update.
func (h *AccountHandler) Get(c echo.Context) error {
	number, ok := parseAccountNumber(c)
	if !ok {
		return accountError(c, http.StatusBadRequest, "Invalid account number.")
	}
	acc, err := h.Accounts.GetByNumber(c.Request().Context(), number)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return accountError(c, http.StatusNotFound, "Account not found.")
		}
		return internalError(c, err, "get account", accountInternal)
	}
	return c.JSON(http.StatusOK, acc)
}

// UpdateBalance handles PUT and POST /accounts/:account_number/update.  The
// new balance comes in the "balance" query parameter and must be a
// decimal number; it is validated before the database is touched.
func (h *AccountHandler) UpdateBalance(c echo.Context) error {
	number, ok := parseAccountNumber(c)
	if !ok {
		return accountError(c, http.StatusBadRequest, "Invalid account number.")
	}
	raw := c.QueryParam("balance")
	if raw == "" {
		return accountError(c, http.StatusBadRequest, "Balance is required.")
	}
	balance, err := decimal.NewFromString(raw)
	if err != nil {
		return accountError(c, http.StatusBadRequest, "Balance is required to be decimal.")
	}
	if err := h.Accounts.UpdateBalance(c.Request().Context(), number, balance); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return accountError(c, http.StatusNotFound, "Account not found.")
		}
		return internalError(c, err, "update balance", accountInternal)
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete handles DELETE and POST /accounts/:account_number/delete.  Any
// storage failure, including an account still referenced by rows other
// than its depositors, answers 500 with a generic body.
func (h *AccountHandler) Delete(c echo.Context) error {
	number, ok := parseAccountNumber(c)
	if !ok {
		return accountError(c, http.StatusBadRequest, "Invalid account number.")
	}
	if err := h.Accounts.DeleteWithDepositors(c.Request().Context(), number); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return accountError(c, http.StatusNotFound, "Account not found.")
		}
		if repository.IsForeignKeyViolation(err) {
			return internalError(c, err, "delete account: still referenced", accountInternal)
		}
		return internalError(c, err, "delete account", accountInternal)
	}
	return c.NoContent(http.StatusNoContent)
}
