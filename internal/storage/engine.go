package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"ledger/internal/core"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory ledger. Index migrations are skipped for it.
const MemoryPath = ":memory:"

// Order selects the row order of GetAll.
type Order int

const (
	OrderNone Order = iota // identity order
	OrderByDate
)

// Engine owns the single SQLite connection of an open ledger file.
// An Engine returned by WithTx runs every statement inside that transaction.
type Engine struct {
	db   *sql.DB
	q    querier
	path string
}

// Open opens or creates the ledger file at dbPath and bootstraps its schema.
func Open(ctx context.Context, dbPath string) (*Engine, error) {
	if dbPath != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, core.NewStorageError("create db directory", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, core.NewStorageError("open sqlite database", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, core.NewStorageError("ping database", err)
	}

	e := NewEngine(db)
	e.path = dbPath

	if err := e.Bootstrap(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if dbPath != MemoryPath {
		if err := RunMigrations(dbPath); err != nil {
			db.Close()
			return nil, core.NewStorageError("run migrations", err)
		}
	}

	slog.InfoContext(ctx, "Ledger database opened", "path", dbPath)
	return e, nil
}

// NewEngine wraps an already opened database without bootstrapping it.
func NewEngine(db *sql.DB) *Engine {
	return &Engine{db: db, q: db}
}

func (e *Engine) Path() string {
	return e.path
}

func (e *Engine) Close() error {
	if e.db != nil {
		return e.db.Close()
	}
	return nil
}

// Bootstrap creates every known table that does not exist yet.
func (e *Engine) Bootstrap(ctx context.Context) error {
	for _, s := range KnownTables {
		exists, err := e.TableExists(ctx, s.Name())
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if _, err := e.q.ExecContext(ctx, createTableSQL(s)); err != nil {
			return core.NewStorageError("create table "+s.Name(), err)
		}
		slog.InfoContext(ctx, "Created table", "table", s.Name())
	}
	return nil
}

func (e *Engine) TableExists(ctx context.Context, name string) (bool, error) {
	var count int64
	err := e.q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&count)
	if err != nil {
		return false, core.NewStorageError("check table "+name, err)
	}
	return count > 0, nil
}

// WithTx runs fn against an engine bound to a single transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
// Nested calls reuse the outer transaction.
func (e *Engine) WithTx(ctx context.Context, fn func(tx *Engine) error) error {
	if _, ok := e.q.(*sql.Tx); ok {
		return fn(e)
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return core.NewStorageError("begin transaction", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.ErrorContext(ctx, "Failed to roll back transaction", "error", rbErr)
		}
	}()

	if err := fn(&Engine{db: e.db, q: tx, path: e.path}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return core.NewStorageError("commit transaction", err)
	}
	committed = true
	return nil
}

// Insert stores v and returns the identity assigned by SQLite.
func Insert[T any](ctx context.Context, e *Engine, t Table[T], v T) (int64, error) {
	res, err := e.q.ExecContext(ctx, insertSQL(t), t.Values(v)...)
	if err != nil {
		return 0, core.NewStorageError("insert into "+t.Name(), err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, core.NewStorageError("read id inserted into "+t.Name(), err)
	}
	return id, nil
}

func Get[T any](ctx context.Context, e *Engine, t Table[T], id int64) (T, error) {
	v, err := t.Scan(e.q.QueryRowContext(ctx, selectSQL(t)+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		var zero T
		return zero, fmt.Errorf("%s %d: %w", t.Name(), id, core.ErrNotFound)
	}
	if err != nil {
		var zero T
		return zero, core.NewStorageError("get from "+t.Name(), err)
	}
	return v, nil
}

// GetAll returns every row of t. OrderByDate is only valid for tables with a date column.
func GetAll[T any](ctx context.Context, e *Engine, t Table[T], order Order) ([]T, error) {
	query := selectSQL(t)
	switch order {
	case OrderByDate:
		if !hasColumn(t, "date") {
			return nil, fmt.Errorf("%w: %s has no date column", core.ErrValidation, t.Name())
		}
		query += " ORDER BY date, id"
	default:
		query += " ORDER BY id"
	}

	rows, err := e.q.QueryContext(ctx, query)
	if err != nil {
		return nil, core.NewStorageError("list "+t.Name(), err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := t.Scan(rows)
		if err != nil {
			return nil, core.NewStorageError("scan "+t.Name(), err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStorageError("list "+t.Name(), err)
	}
	return out, nil
}

func Delete[T any](ctx context.Context, e *Engine, t Table[T], id int64) error {
	res, err := e.q.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", t.Name()), id)
	if err != nil {
		return core.NewStorageError("delete from "+t.Name(), err)
	}
	return expectAffected(res, fmt.Sprintf("%s %d", t.Name(), id))
}

func expectAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return core.NewStorageError("read affected rows of "+what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, core.ErrNotFound)
	}
	return nil
}

func (e *Engine) CreateCategory(ctx context.Context, name string) (int64, error) {
	c, err := core.NewCategory(name)
	if err != nil {
		return 0, err
	}
	return Insert(ctx, e, Categories, c)
}

func (e *Engine) CreateAccount(ctx context.Context, name string) (int64, error) {
	a, err := core.NewAccount(name)
	if err != nil {
		return 0, err
	}
	return Insert(ctx, e, Accounts, a)
}

// InsertTransaction validates t before it reaches the database.
func (e *Engine) InsertTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	return Insert(ctx, e, Transactions, t)
}

func (e *Engine) RenameCategory(ctx context.Context, id int64, name string) error {
	name, err := core.ValidateName(name)
	if err != nil {
		return err
	}
	res, err := e.q.ExecContext(ctx, "UPDATE categories SET display_name = ? WHERE id = ?", name, id)
	if err != nil {
		return core.NewStorageError("rename category", err)
	}
	return expectAffected(res, fmt.Sprintf("category %d", id))
}

func (e *Engine) CategoryExists(ctx context.Context, name string) (bool, error) {
	var count int64
	err := e.q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM categories WHERE display_name = ?", name).Scan(&count)
	if err != nil {
		return false, core.NewStorageError("count categories", err)
	}
	return count > 0, nil
}

// CategoryID resolves a display name. Duplicate names resolve to the oldest category.
func (e *Engine) CategoryID(ctx context.Context, name string) (int64, error) {
	var id int64
	err := e.q.QueryRowContext(ctx,
		"SELECT id FROM categories WHERE display_name = ? ORDER BY id LIMIT 1", name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("category %q: %w", name, core.ErrNotFound)
	}
	if err != nil {
		return 0, core.NewStorageError("get category id", err)
	}
	return id, nil
}

// UncategorizeTransactions moves every transaction of a category to the uncategorized sentinel.
func (e *Engine) UncategorizeTransactions(ctx context.Context, categoryID int64) (int64, error) {
	res, err := e.q.ExecContext(ctx,
		"UPDATE transactions SET category_id = ? WHERE category_id = ?", core.UncategorizedID, categoryID)
	if err != nil {
		return 0, core.NewStorageError("uncategorize transactions", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, core.NewStorageError("read affected rows of uncategorize", err)
	}
	return n, nil
}
