package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/bdist/aviacao-service/internal/database"
	"github.com/bdist/aviacao-service/internal/model"
)

// AccountRepo provides the ledger operations on the account table.  Each
// method except DeleteWithDepositors is a single statement executed in
// autocommit mode; the connection goes back to the pool as soon as the
// statement finishes.
type AccountRepo struct {
	db *sqlx.DB
}

// NewAccountRepo returns a new AccountRepo bound to the given database.
func NewAccountRepo(db *sqlx.DB) *AccountRepo { return &AccountRepo{db: db} }

// List returns every account, highest account number first.  An empty
// ledger yields an empty, non-nil slice.
func (r *AccountRepo) List(ctx context.Context) ([]model.Account, error) {
	const q = `SELECT account_number, branch_name, balance
               FROM account
               ORDER BY account_number DESC`
	accounts := make([]model.Account, 0)
	if err := r.db.SelectContext(ctx, &accounts, q); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

// GetByNumber returns a single account or ErrNotFound.
func (r *AccountRepo) GetByNumber(ctx context.Context, number string) (*model.Account, error) {
	const q = `SELECT account_number, branch_name, balance
               FROM account
               WHERE account_number = $1`
	var acc model.Account
	if err := r.db.GetContext(ctx, &acc, q, number); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &acc, nil
}

// UpdateBalance overwrites the balance of an account.  It returns
// ErrNotFound when no row carries the account number.
func (r *AccountRepo) UpdateBalance(ctx context.Context, number string, balance decimal.Decimal) error {
	const q = `UPDATE account SET balance = $1 WHERE account_number = $2`
	res, err := r.db.ExecContext(ctx, q, balance, number)
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteWithDepositors removes the depositor links of an account and then
// the account itself, atomically.  When the account does not exist the
// transaction is rolled back and ErrNotFound is returned.
func (r *AccountRepo) DeleteWithDepositors(ctx context.Context, number string) error {
	return database.WithTx(ctx, r.db, nil, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM depositor WHERE account_number = $1`, number); err != nil {
			return fmt.Errorf("delete depositors: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM account WHERE account_number = $1`, number)
		if err != nil {
			return fmt.Errorf("delete account: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete account: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}
