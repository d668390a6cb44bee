// Package impexp converts between the ledger and external file formats.
//
// The import format is comma-separated text whose first line is a header:
//
//	account, date, payee, outflow, inflow, category
//
// The account column is ignored; rows are imported into the account the
// caller chooses. Export writes every transaction in date order.
package impexp

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"ledger/internal/cache"
	"ledger/internal/core"
	applog "ledger/internal/log"
)

const DefaultCacheSize = 256

const (
	colDate = iota + 1
	colPayee
	colOutflow
	colInflow
	colCategory
)

// minFields is the number of columns every data row must carry. The category column is optional.
const minFields = colInflow + 1

// Store is the write side the importer needs. *storage.Engine satisfies it.
type Store interface {
	CategoryID(ctx context.Context, name string) (int64, error)
	CreateCategory(ctx context.Context, name string) (int64, error)
	InsertTransaction(ctx context.Context, t core.Transaction) (int64, error)
}

type Importer struct {
	cacheSize int
}

func NewImporter(cacheSize int) *Importer {
	if cacheSize < 1 {
		cacheSize = DefaultCacheSize
	}
	return &Importer{cacheSize: cacheSize}
}

// Import reads r and inserts one transaction per data row into accountID.
// It stops at the first malformed row and returns an error matching core.ErrImport
// that names the line. Rows inserted before the failure are kept unless store is
// transaction-scoped; callers wanting all-or-nothing imports run Import inside one.
func (im *Importer) Import(ctx context.Context, store Store, accountID int64, r io.Reader) (int, error) {
	runID := uuid.NewString()
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentImport).
		With(applog.FieldRunID, runID, applog.FieldAccountID, accountID)
	logger.InfoContext(ctx, "Import started")

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	categories := cache.NewLRUCache[string, int64](im.cacheSize)

	count := 0
	header := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			line := 0
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				line = pe.Line
			}
			return count, &core.ImportError{Line: line, Reason: "read row", Err: err}
		}

		line, _ := reader.FieldPos(0)
		if header {
			header = false
			continue
		}

		tx, categoryName, err := parseRow(record, accountID, line)
		if err != nil {
			logger.WarnContext(ctx, "Import aborted", applog.FieldLine, line, applog.FieldError, err)
			return count, err
		}

		if tx.IsOutflow() && categoryName != "" {
			id, err := im.resolveCategory(ctx, store, categories, categoryName)
			if err != nil {
				return count, fmt.Errorf("resolve category on line %d: %w", line, err)
			}
			tx.CategoryID = id
		}

		if _, err := store.InsertTransaction(ctx, tx); err != nil {
			if errors.Is(err, core.ErrValidation) {
				return count, &core.ImportError{Line: line, Reason: "invalid transaction", Err: err}
			}
			return count, fmt.Errorf("insert transaction from line %d: %w", line, err)
		}
		count++
	}

	hits, misses := categories.Stats()
	logger.InfoContext(ctx, "Import finished", applog.FieldRows, count,
		"category_cache_hits", hits, "category_cache_misses", misses)
	return count, nil
}

func parseRow(record []string, accountID int64, line int) (core.Transaction, string, error) {
	if len(record) < minFields {
		return core.Transaction{}, "", &core.ImportError{
			Line:   line,
			Reason: fmt.Sprintf("expected at least %d fields, got %d", minFields, len(record)),
		}
	}

	date, err := core.ParseDay(record[colDate])
	if err != nil {
		return core.Transaction{}, "", &core.ImportError{Line: line, Reason: "parse date", Err: err}
	}
	outflow, err := core.ParseCents(record[colOutflow])
	if err != nil {
		return core.Transaction{}, "", &core.ImportError{Line: line, Reason: "parse outflow", Err: err}
	}
	inflow, err := core.ParseCents(record[colInflow])
	if err != nil {
		return core.Transaction{}, "", &core.ImportError{Line: line, Reason: "parse inflow", Err: err}
	}

	tx, err := core.NewTransaction(record[colPayee], inflow, outflow, date, accountID)
	if err != nil {
		return core.Transaction{}, "", &core.ImportError{Line: line, Reason: "build transaction", Err: err}
	}

	var category string
	if len(record) > colCategory {
		category = strings.TrimSpace(record[colCategory])
	}
	return tx, category, nil
}

// resolveCategory looks the name up, creating the category when it does not exist yet.
func (im *Importer) resolveCategory(ctx context.Context, store Store, categories cache.Cache[string, int64], name string) (int64, error) {
	if id, ok := categories.Get(name); ok {
		return id, nil
	}

	id, err := store.CategoryID(ctx, name)
	if errors.Is(err, core.ErrNotFound) {
		id, err = store.CreateCategory(ctx, name)
		if err == nil {
			applog.FromContext(ctx).InfoContext(ctx, "Created category during import",
				applog.FieldCategoryID, id, applog.FieldCategory, name)
		}
	}
	if err != nil {
		return 0, err
	}

	categories.Set(name, id)
	return id, nil
}
