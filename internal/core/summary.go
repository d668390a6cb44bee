package core

// AccountBalance is an account with its derived balance in cents.
type AccountBalance struct {
	AccountID   int64
	DisplayName string
	Balance     int64
}

// HistoryEntry is one transaction of an account with the inclusive running balance after it.
type HistoryEntry struct {
	TransactionID  int64
	Date           int64
	Amount         int64
	RunningBalance int64
}

// CategorySpend aggregates the transactions of one category over a period.
type CategorySpend struct {
	CategoryID  int64
	DisplayName string
	Total       int64
	Average     float64
}

// TransactionDisplay is a transaction with its weak references resolved to display names.
// Unresolved references are empty strings.
type TransactionDisplay struct {
	ID           int64
	Payee        string
	Notes        string
	Amount       int64
	Date         int64
	AccountName  string
	CategoryName string
}
