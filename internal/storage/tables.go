package storage

import (
	"ledger/internal/core"
)

// Table descriptions for the closed set of ledger entities.
var (
	Categories        Table[core.Category]         = categoryTable{}
	Accounts          Table[core.Account]          = accountTable{}
	Transactions      Table[core.Transaction]      = transactionTable{}
	CategoryTransfers Table[core.CategoryTransfer] = categoryTransferTable{}
)

// KnownTables is the bootstrap order.
var KnownTables = []Schema{Categories, Accounts, Transactions, CategoryTransfers}

var idColumn = Column{Name: "id", Type: "INTEGER", Constraints: "PRIMARY KEY"}

type categoryTable struct{}

func (categoryTable) Name() string { return "categories" }

func (categoryTable) Columns() []Column {
	return []Column{
		idColumn,
		{Name: "display_name", Type: "TEXT", Constraints: "NOT NULL"},
	}
}

func (categoryTable) InsertColumns() []string { return []string{"display_name"} }
func (categoryTable) FetchColumns() []string  { return []string{"id", "display_name"} }

func (categoryTable) Values(c core.Category) []any { return []any{c.DisplayName} }

func (categoryTable) Scan(s Scanner) (core.Category, error) {
	var c core.Category
	err := s.Scan(&c.ID, &c.DisplayName)
	return c, err
}

type accountTable struct{}

func (accountTable) Name() string { return "accounts" }

func (accountTable) Columns() []Column {
	return []Column{
		idColumn,
		{Name: "display_name", Type: "TEXT", Constraints: "NOT NULL"},
	}
}

func (accountTable) InsertColumns() []string { return []string{"display_name"} }
func (accountTable) FetchColumns() []string  { return []string{"id", "display_name"} }

func (accountTable) Values(a core.Account) []any { return []any{a.DisplayName} }

func (accountTable) Scan(s Scanner) (core.Account, error) {
	var a core.Account
	err := s.Scan(&a.ID, &a.DisplayName)
	return a, err
}

type transactionTable struct{}

func (transactionTable) Name() string { return "transactions" }

func (transactionTable) Columns() []Column {
	return []Column{
		idColumn,
		{Name: "payee", Type: "TEXT", Constraints: "NOT NULL"},
		{Name: "amount", Type: "INTEGER", Constraints: "NOT NULL"},
		{Name: "date", Type: "INTEGER", Constraints: "NOT NULL"},
		{Name: "notes", Type: "TEXT", Constraints: "NOT NULL"},
		{Name: "account_id", Type: "INTEGER", Constraints: "NOT NULL"},
		{Name: "category_id", Type: "INTEGER", Constraints: "NOT NULL"},
	}
}

func (transactionTable) InsertColumns() []string {
	return []string{"payee", "amount", "date", "notes", "account_id", "category_id"}
}

func (transactionTable) FetchColumns() []string {
	return []string{"id", "payee", "notes", "account_id", "category_id", "date", "amount"}
}

func (transactionTable) Values(t core.Transaction) []any {
	return []any{t.Payee, t.Amount, t.Date, t.Notes, t.AccountID, t.CategoryID}
}

func (transactionTable) Scan(s Scanner) (core.Transaction, error) {
	var t core.Transaction
	err := s.Scan(&t.ID, &t.Payee, &t.Notes, &t.AccountID, &t.CategoryID, &t.Date, &t.Amount)
	return t, err
}

type categoryTransferTable struct{}

func (categoryTransferTable) Name() string { return "category_transfers" }

func (categoryTransferTable) Columns() []Column {
	return []Column{
		idColumn,
		{Name: "source", Type: "INTEGER", Constraints: "NOT NULL"},
		{Name: "dest", Type: "INTEGER", Constraints: "NOT NULL"},
		{Name: "amount", Type: "INTEGER", Constraints: "NOT NULL"},
	}
}

func (categoryTransferTable) InsertColumns() []string { return []string{"source", "dest", "amount"} }
func (categoryTransferTable) FetchColumns() []string {
	return []string{"id", "source", "dest", "amount"}
}

func (categoryTransferTable) Values(ct core.CategoryTransfer) []any {
	return []any{ct.Source, ct.Dest, ct.Amount}
}

func (categoryTransferTable) Scan(s Scanner) (core.CategoryTransfer, error) {
	var ct core.CategoryTransfer
	err := s.Scan(&ct.ID, &ct.Source, &ct.Dest, &ct.Amount)
	return ct, err
}
