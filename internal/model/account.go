package model

import "github.com/shopspring/decimal"

// Account is a row of the bank ledger's account table.  Balances are kept
// as decimals end to end so no precision is lost between the NUMERIC
// column and the JSON response.
//
// Fields:
//  Number  – account.account_number, the primary key (e.g. "A-101").
//  Branch  – account.branch_name.
//  Balance – account.balance.
type Account struct {
	Number  string          `db:"account_number" json:"account_number"`
	Branch  string          `db:"branch_name" json:"branch_name"`
	Balance decimal.Decimal `db:"balance" json:"balance"`
}
