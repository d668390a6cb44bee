package impexp

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"ledger/internal/core"
	applog "ledger/internal/log"
)

// ExportHeader is the first line of every CSV export.
const ExportHeader = "payee, amount, date, account, category"

// Source lists transactions with resolved names, ordered by date. *storage.Engine satisfies it.
type Source interface {
	TransactionDisplayList(ctx context.Context) ([]core.TransactionDisplay, error)
}

// Export writes one row per transaction: payee, dollar amount, day, account name, category name.
func Export(ctx context.Context, src Source, w io.Writer) error {
	rows, err := src.TransactionDisplayList(ctx)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(ExportHeader + "\n"); err != nil {
		return core.NewStorageError("write export header", err)
	}

	cw := csv.NewWriter(bw)
	for _, d := range rows {
		record := []string{
			d.Payee,
			core.FormatCents(d.Amount),
			core.FormatDay(d.Date),
			d.AccountName,
			d.CategoryName,
		}
		if err := cw.Write(record); err != nil {
			return core.NewStorageError("write export row", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return core.NewStorageError("flush export", err)
	}
	if err := bw.Flush(); err != nil {
		return core.NewStorageError("flush export", err)
	}

	applog.FromContext(ctx).WithComponent(applog.ComponentExport).
		InfoContext(ctx, "Exported transactions", applog.FieldRows, len(rows), applog.FieldFormat, "csv")
	return nil
}
