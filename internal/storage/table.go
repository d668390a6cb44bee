package storage

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"
)

// Column describes one column of a table for CREATE TABLE.
type Column struct {
	Name        string
	Type        string
	Constraints string
}

func (c Column) definition() string {
	return strings.TrimSpace(c.Name + " " + c.Type + " " + c.Constraints)
}

// Schema is the part of a table description that does not depend on the entity type.
// Bootstrap works over []Schema.
type Schema interface {
	Name() string
	Columns() []Column
}

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// Table maps an entity type to its storage table.
//
// InsertColumns and FetchColumns are independent: Values must line up with
// InsertColumns, and Scan must read exactly FetchColumns in order.
type Table[T any] interface {
	Schema
	InsertColumns() []string
	FetchColumns() []string
	Values(v T) []any
	Scan(s Scanner) (T, error)
}

// querier is the subset of *sql.DB and *sql.Tx the engine needs.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func createTableSQL(s Schema) string {
	defs := make([]string, 0, len(s.Columns()))
	for _, c := range s.Columns() {
		defs = append(defs, c.definition())
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", s.Name(), strings.Join(defs, ", "))
}

// insertSQL binds every value as a parameter; only identifiers from the table description are interpolated.
func insertSQL[T any](t Table[T]) string {
	cols := t.InsertColumns()
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", t.Name(), strings.Join(cols, ", "), marks)
}

func selectSQL[T any](t Table[T]) string {
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(t.FetchColumns(), ", "), t.Name())
}

func hasColumn(s Schema, name string) bool {
	return slices.ContainsFunc(s.Columns(), func(c Column) bool { return c.Name == name })
}
