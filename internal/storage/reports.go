package storage

import (
	"context"
	"fmt"

	"ledger/internal/core"
)

// AccountBalanceList derives every account's balance from its transactions.
// Accounts without transactions are reported with a zero balance.
func (e *Engine) AccountBalanceList(ctx context.Context) ([]core.AccountBalance, error) {
	rows, err := e.q.QueryContext(ctx, `
		SELECT accounts.id, accounts.display_name, COALESCE(SUM(transactions.amount), 0)
		FROM accounts
		LEFT JOIN transactions ON transactions.account_id = accounts.id
		GROUP BY accounts.id, accounts.display_name
		ORDER BY accounts.id`)
	if err != nil {
		return nil, core.NewStorageError("query account balances", err)
	}
	defer rows.Close()

	var out []core.AccountBalance
	for rows.Next() {
		var b core.AccountBalance
		if err := rows.Scan(&b.AccountID, &b.DisplayName, &b.Balance); err != nil {
			return nil, core.NewStorageError("scan account balance", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStorageError("query account balances", err)
	}
	return out, nil
}

// AccountHistory returns the account's transactions in date order, each with the
// running balance including itself. Same-day transactions are ordered by id.
func (e *Engine) AccountHistory(ctx context.Context, accountID int64) ([]core.HistoryEntry, error) {
	if _, err := Get(ctx, e, Accounts, accountID); err != nil {
		return nil, err
	}

	rows, err := e.q.QueryContext(ctx, `
		SELECT id, date, amount,
			SUM(amount) OVER (ORDER BY date, id ROWS BETWEEN UNBOUNDED PRECEDING AND CURRENT ROW)
		FROM transactions
		WHERE account_id = ?
		ORDER BY date, id`, accountID)
	if err != nil {
		return nil, core.NewStorageError("query account history", err)
	}
	defer rows.Close()

	var out []core.HistoryEntry
	for rows.Next() {
		var h core.HistoryEntry
		if err := rows.Scan(&h.TransactionID, &h.Date, &h.Amount, &h.RunningBalance); err != nil {
			return nil, core.NewStorageError("scan account history", err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStorageError("query account history", err)
	}
	return out, nil
}

// CategorySpendList aggregates transactions dated within [start, end] by category.
// Every category appears exactly once, in id order; categories without
// transactions in the period report zero total and average.
func (e *Engine) CategorySpendList(ctx context.Context, start, end int64) ([]core.CategorySpend, error) {
	if start > end {
		return nil, fmt.Errorf("%w: period start %d is after end %d", core.ErrValidation, start, end)
	}

	rows, err := e.q.QueryContext(ctx, `
		SELECT categories.id, categories.display_name, SUM(transactions.amount), AVG(transactions.amount)
		FROM categories
		JOIN transactions ON transactions.category_id = categories.id
		WHERE transactions.date BETWEEN ? AND ?
		GROUP BY categories.id, categories.display_name
		ORDER BY categories.id`, start, end)
	if err != nil {
		return nil, core.NewStorageError("query category spend", err)
	}
	defer rows.Close()

	spent := make(map[int64]core.CategorySpend)
	for rows.Next() {
		var s core.CategorySpend
		if err := rows.Scan(&s.CategoryID, &s.DisplayName, &s.Total, &s.Average); err != nil {
			return nil, core.NewStorageError("scan category spend", err)
		}
		spent[s.CategoryID] = s
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStorageError("query category spend", err)
	}
	rows.Close()

	categories, err := GetAll(ctx, e, Categories, OrderNone)
	if err != nil {
		return nil, err
	}

	out := make([]core.CategorySpend, 0, len(categories))
	for _, c := range categories {
		s, ok := spent[c.ID]
		if !ok {
			s = core.CategorySpend{CategoryID: c.ID, DisplayName: c.DisplayName}
		}
		out = append(out, s)
	}
	return out, nil
}

// TransactionDisplayList resolves account and category references to display names.
// Dangling or zero references resolve to the empty string.
func (e *Engine) TransactionDisplayList(ctx context.Context) ([]core.TransactionDisplay, error) {
	rows, err := e.q.QueryContext(ctx, `
		SELECT transactions.id, transactions.payee, transactions.notes, transactions.amount, transactions.date,
			IFNULL(accounts.display_name, ''), IFNULL(categories.display_name, '')
		FROM transactions
		LEFT JOIN accounts ON transactions.account_id = accounts.id
		LEFT JOIN categories ON transactions.category_id = categories.id
		ORDER BY transactions.date, transactions.id`)
	if err != nil {
		return nil, core.NewStorageError("query transaction display list", err)
	}
	defer rows.Close()

	var out []core.TransactionDisplay
	for rows.Next() {
		var d core.TransactionDisplay
		if err := rows.Scan(&d.ID, &d.Payee, &d.Notes, &d.Amount, &d.Date, &d.AccountName, &d.CategoryName); err != nil {
			return nil, core.NewStorageError("scan transaction display", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStorageError("query transaction display list", err)
	}
	return out, nil
}

// CategoryTransferList returns every category transfer in id order.
func (e *Engine) CategoryTransferList(ctx context.Context) ([]core.CategoryTransfer, error) {
	return GetAll(ctx, e, CategoryTransfers, OrderNone)
}
