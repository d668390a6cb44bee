package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"ledger/internal/core"
	"ledger/internal/impexp"
	applog "ledger/internal/log"
	"ledger/internal/storage"
)

var (
	// ErrNoDatabase is returned by every operation until Open succeeds.
	ErrNoDatabase = fmt.Errorf("%w: no database open", core.ErrStorage)

	// ErrPoisoned is returned after an operation panicked, until Open replaces the engine.
	ErrPoisoned = fmt.Errorf("%w: ledger poisoned by an earlier panic", core.ErrLocking)
)

// Ledger owns the active storage engine and serializes every operation on it.
type Ledger struct {
	mu       sync.Mutex
	engine   *storage.Engine
	poisoned bool

	importer *impexp.Importer
	logger   *applog.Logger
	ops      *applog.StructuredLogger
	now      func() time.Time
}

func NewLedger(importer *impexp.Importer, logger *applog.Logger) *Ledger {
	if importer == nil {
		importer = impexp.NewImporter(impexp.DefaultCacheSize)
	}
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentLedger)
	return &Ledger{
		importer: importer,
		logger:   logger,
		ops:      applog.NewStructuredLogger(logger),
		now:      time.Now,
	}
}

// Open makes the ledger file at path the active database, closing the previous one.
// A successful Open also clears a poisoned ledger.
func (l *Ledger) Open(ctx context.Context, path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, err := storage.Open(applog.NewContext(ctx, l.logger), path)
	if err != nil {
		l.ops.LogError(ctx, "Failed to open ledger", err, applog.OpOpen, applog.LogFields{applog.FieldPath: path})
		return fmt.Errorf("open ledger %s: %w", path, err)
	}

	if l.engine != nil {
		if err := l.engine.Close(); err != nil {
			l.logger.WarnContext(ctx, "Failed to close previous ledger", applog.FieldPath, l.engine.Path(), applog.FieldError, err)
		}
	}
	l.engine = e
	l.poisoned = false
	l.logger.InfoContext(ctx, "Ledger opened", applog.FieldPath, path)
	return nil
}

func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.engine == nil {
		return nil
	}
	err := l.engine.Close()
	l.engine = nil
	return err
}

// Path returns the file of the active database, or "" when none is open.
func (l *Ledger) Path() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.engine == nil {
		return ""
	}
	return l.engine.Path()
}

// update runs a mutating operation and logs its outcome.
func (l *Ledger) update(ctx context.Context, op string, fields applog.LogFields, fn func(context.Context, *storage.Engine) error) error {
	return l.run(ctx, op, true, fields, fn)
}

// view runs a read-only operation. Only failures are logged.
func (l *Ledger) view(ctx context.Context, op string, fn func(context.Context, *storage.Engine) error) error {
	return l.run(ctx, op, false, nil, fn)
}

func (l *Ledger) run(ctx context.Context, op string, logSuccess bool, fields applog.LogFields, fn func(context.Context, *storage.Engine) error) (err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.poisoned {
		return ErrPoisoned
	}
	if l.engine == nil {
		return ErrNoDatabase
	}

	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			l.poisoned = true
			err = fmt.Errorf("%w: panic during %s: %v", core.ErrLocking, op, r)
		}
		if err != nil || logSuccess {
			l.ops.LogOperation(ctx, op, started, err, fields)
		}
	}()

	return fn(applog.NewContext(ctx, l.logger), l.engine)
}

func (l *Ledger) CreateCategory(ctx context.Context, name string) (int64, error) {
	var id int64
	err := l.update(ctx, "create_category", applog.LogFields{applog.FieldCategory: name}, func(ctx context.Context, e *storage.Engine) error {
		var err error
		id, err = e.CreateCategory(ctx, name)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("create category: %w", err)
	}
	return id, nil
}

func (l *Ledger) RenameCategory(ctx context.Context, id int64, name string) error {
	err := l.update(ctx, "rename_category", applog.LogFields{applog.FieldCategoryID: id}, func(ctx context.Context, e *storage.Engine) error {
		return e.RenameCategory(ctx, id, name)
	})
	if err != nil {
		return fmt.Errorf("rename category: %w", err)
	}
	return nil
}

// DeleteCategory removes the category and moves its transactions to uncategorized.
func (l *Ledger) DeleteCategory(ctx context.Context, id int64) error {
	err := l.update(ctx, "delete_category", applog.LogFields{applog.FieldCategoryID: id}, func(ctx context.Context, e *storage.Engine) error {
		return e.WithTx(ctx, func(tx *storage.Engine) error {
			moved, err := tx.UncategorizeTransactions(ctx, id)
			if err != nil {
				return err
			}
			if err := storage.Delete(ctx, tx, storage.Categories, id); err != nil {
				return err
			}
			applog.FromContext(ctx).DebugContext(ctx, "Uncategorized transactions",
				applog.FieldCategoryID, id, applog.FieldRows, moved)
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// CreateAccount creates the account and, for a non-zero starting balance, its
// opening transaction dated today. A negative balance is recorded as an outflow.
func (l *Ledger) CreateAccount(ctx context.Context, name string, startingBalance int64) (int64, error) {
	if _, err := core.ValidateName(name); err != nil {
		return 0, fmt.Errorf("create account: %w", err)
	}

	var id int64
	fields := applog.LogFields{applog.FieldAmountCents: startingBalance}
	err := l.update(ctx, "create_account", fields, func(ctx context.Context, e *storage.Engine) error {
		return e.WithTx(ctx, func(tx *storage.Engine) error {
			var err error
			id, err = tx.CreateAccount(ctx, name)
			if err != nil {
				return err
			}
			fields[applog.FieldAccountID] = id
			if startingBalance == 0 {
				return nil
			}

			inflow, outflow := startingBalance, int64(0)
			if startingBalance < 0 {
				inflow, outflow = 0, -startingBalance
			}
			opening, err := core.NewTransaction(core.StartingBalancePayee, inflow, outflow, l.today(), id)
			if err != nil {
				return err
			}
			_, err = tx.InsertTransaction(ctx, opening)
			return err
		})
	})
	if err != nil {
		return 0, fmt.Errorf("create account: %w", err)
	}
	return id, nil
}

// CreateTransaction validates tx before storing it.
func (l *Ledger) CreateTransaction(ctx context.Context, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, fmt.Errorf("create transaction: %w", err)
	}

	fields := applog.NewFields().WithTransaction(0, tx.AccountID, tx.CategoryID, tx.Amount)
	var id int64
	err := l.update(ctx, "create_transaction", fields, func(ctx context.Context, e *storage.Engine) error {
		var err error
		id, err = e.InsertTransaction(ctx, tx)
		fields[applog.FieldTransaction] = id
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("create transaction: %w", err)
	}
	return id, nil
}

// TransferBetweenCategories records a budget move between two existing categories.
func (l *Ledger) TransferBetweenCategories(ctx context.Context, source, dest, amount int64) (int64, error) {
	transfer, err := core.NewCategoryTransfer(source, dest, amount)
	if err != nil {
		return 0, fmt.Errorf("transfer between categories: %w", err)
	}

	var id int64
	fields := applog.LogFields{"source": source, "dest": dest, applog.FieldAmountCents: amount}
	err = l.update(ctx, applog.OpTransfer, fields, func(ctx context.Context, e *storage.Engine) error {
		return e.WithTx(ctx, func(tx *storage.Engine) error {
			for _, categoryID := range []int64{source, dest} {
				if _, err := storage.Get(ctx, tx, storage.Categories, categoryID); err != nil {
					return err
				}
			}
			var err error
			id, err = storage.Insert(ctx, tx, storage.CategoryTransfers, transfer)
			return err
		})
	})
	if err != nil {
		return 0, fmt.Errorf("transfer between categories: %w", err)
	}
	return id, nil
}

func (l *Ledger) ListCategoryTransfers(ctx context.Context) ([]core.CategoryTransfer, error) {
	var out []core.CategoryTransfer
	err := l.view(ctx, "list_category_transfers", func(ctx context.Context, e *storage.Engine) error {
		var err error
		out, err = e.CategoryTransferList(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list category transfers: %w", err)
	}
	return out, nil
}

func (l *Ledger) ListCategories(ctx context.Context) ([]core.Category, error) {
	var out []core.Category
	err := l.view(ctx, "list_categories", func(ctx context.Context, e *storage.Engine) error {
		var err error
		out, err = storage.GetAll(ctx, e, storage.Categories, storage.OrderNone)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

func (l *Ledger) ListAccounts(ctx context.Context) ([]core.Account, error) {
	var out []core.Account
	err := l.view(ctx, "list_accounts", func(ctx context.Context, e *storage.Engine) error {
		var err error
		out, err = storage.GetAll(ctx, e, storage.Accounts, storage.OrderNone)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return out, nil
}

func (l *Ledger) CategoryID(ctx context.Context, name string) (int64, error) {
	var id int64
	err := l.view(ctx, "category_id", func(ctx context.Context, e *storage.Engine) error {
		var err error
		id, err = e.CategoryID(ctx, name)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("get category id: %w", err)
	}
	return id, nil
}

func (l *Ledger) AccountBalanceList(ctx context.Context) ([]core.AccountBalance, error) {
	var out []core.AccountBalance
	err := l.view(ctx, "account_balance_list", func(ctx context.Context, e *storage.Engine) error {
		var err error
		out, err = e.AccountBalanceList(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list account balances: %w", err)
	}
	return out, nil
}

func (l *Ledger) AccountHistory(ctx context.Context, accountID int64) ([]core.HistoryEntry, error) {
	var out []core.HistoryEntry
	err := l.view(ctx, "account_history", func(ctx context.Context, e *storage.Engine) error {
		var err error
		out, err = e.AccountHistory(ctx, accountID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("account history: %w", err)
	}
	return out, nil
}

func (l *Ledger) CategorySpendList(ctx context.Context, start, end int64) ([]core.CategorySpend, error) {
	var out []core.CategorySpend
	err := l.view(ctx, "category_spend_list", func(ctx context.Context, e *storage.Engine) error {
		var err error
		out, err = e.CategorySpendList(ctx, start, end)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list category spend: %w", err)
	}
	return out, nil
}

func (l *Ledger) TransactionDisplayList(ctx context.Context) ([]core.TransactionDisplay, error) {
	var out []core.TransactionDisplay
	err := l.view(ctx, "transaction_display_list", func(ctx context.Context, e *storage.Engine) error {
		var err error
		out, err = e.TransactionDisplayList(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

// ImportFile imports the CSV file at path into accountID. Either every row is
// stored or, on the first failure, none is.
func (l *Ledger) ImportFile(ctx context.Context, accountID int64, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("import file: %w", core.NewStorageError("open "+path, err))
	}
	defer f.Close()

	return l.Import(ctx, accountID, f)
}

// Import is ImportFile for an already opened source.
func (l *Ledger) Import(ctx context.Context, accountID int64, r io.Reader) (int, error) {
	var count int
	fields := applog.LogFields{applog.FieldAccountID: accountID}
	err := l.update(ctx, applog.OpImport, fields, func(ctx context.Context, e *storage.Engine) error {
		return e.WithTx(ctx, func(tx *storage.Engine) error {
			if _, err := storage.Get(ctx, tx, storage.Accounts, accountID); err != nil {
				return err
			}
			n, err := l.importer.Import(ctx, tx, accountID, r)
			if err != nil {
				return err
			}
			count = n
			fields[applog.FieldRows] = n
			return nil
		})
	})
	if err != nil {
		return 0, fmt.Errorf("import transactions: %w", err)
	}
	return count, nil
}

// ExportFile writes every transaction to path as CSV, replacing any existing file.
func (l *Ledger) ExportFile(ctx context.Context, path string) error {
	return l.exportFile(ctx, path, "csv", impexp.Export)
}

// ExportXLSXFile writes every transaction to path as a spreadsheet.
func (l *Ledger) ExportXLSXFile(ctx context.Context, path string) error {
	return l.exportFile(ctx, path, "xlsx", impexp.ExportXLSX)
}

type exportFunc func(context.Context, impexp.Source, io.Writer) error

func (l *Ledger) exportFile(ctx context.Context, path, format string, export exportFunc) error {
	fields := applog.LogFields{applog.FieldPath: path, applog.FieldFormat: format}
	err := l.update(ctx, applog.OpExport, fields, func(ctx context.Context, e *storage.Engine) error {
		f, err := os.Create(path)
		if err != nil {
			return core.NewStorageError("create "+path, err)
		}
		if err := export(ctx, e, f); err != nil {
			f.Close()
			os.Remove(path)
			return err
		}
		if err := f.Close(); err != nil {
			return core.NewStorageError("close "+path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("export %s: %w", format, err)
	}
	return nil
}

// today is the UTC midnight of the current day as unix seconds.
func (l *Ledger) today() int64 {
	return l.now().UTC().Truncate(24 * time.Hour).Unix()
}

// IsPoisoned reports whether an earlier panic disabled the ledger.
func (l *Ledger) IsPoisoned() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.poisoned
}
