package impexp

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"ledger/internal/core"
	applog "ledger/internal/log"
)

const SheetName = "Transactions"

var xlsxHeaders = []string{"Payee", "Amount", "Date", "Account", "Category", "Notes"}

var thinBorder = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
}

// ExportXLSX writes the same rows as Export into a single-sheet workbook
// followed by a totals row.
func ExportXLSX(ctx context.Context, src Source, w io.Writer) error {
	rows, err := src.TransactionDisplayList(ctx)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return core.NewStorageError("name sheet", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder,
	})
	if err != nil {
		return core.NewStorageError("create header style", err)
	}
	amountStyle, err := f.NewStyle(&excelize.Style{
		NumFmt: 4, // #,##0.00
		Border: thinBorder,
	})
	if err != nil {
		return core.NewStorageError("create amount style", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 11},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		NumFmt: 4,
		Border: thinBorder,
	})
	if err != nil {
		return core.NewStorageError("create totals style", err)
	}

	widths := map[string]float64{"A": 30, "B": 14, "C": 12, "D": 20, "E": 20, "F": 30}
	for col, width := range widths {
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return core.NewStorageError("set column width", err)
		}
	}

	for i, header := range xlsxHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(SheetName, cell, header)
		f.SetCellStyle(SheetName, cell, cell, headerStyle)
	}

	var total int64
	for i, d := range rows {
		row := i + 2
		f.SetCellValue(SheetName, fmt.Sprintf("A%d", row), d.Payee)
		f.SetCellValue(SheetName, fmt.Sprintf("B%d", row), core.Dollars(d.Amount))
		f.SetCellValue(SheetName, fmt.Sprintf("C%d", row), core.FormatDay(d.Date))
		f.SetCellValue(SheetName, fmt.Sprintf("D%d", row), d.AccountName)
		f.SetCellValue(SheetName, fmt.Sprintf("E%d", row), d.CategoryName)
		f.SetCellValue(SheetName, fmt.Sprintf("F%d", row), d.Notes)
		f.SetCellStyle(SheetName, fmt.Sprintf("B%d", row), fmt.Sprintf("B%d", row), amountStyle)
		total += d.Amount
	}

	totalRow := len(rows) + 2
	f.SetCellValue(SheetName, fmt.Sprintf("A%d", totalRow), "Total")
	f.SetCellValue(SheetName, fmt.Sprintf("B%d", totalRow), core.Dollars(total))
	f.SetCellValue(SheetName, fmt.Sprintf("C%d", totalRow), fmt.Sprintf("%d transactions", len(rows)))
	f.SetCellStyle(SheetName, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("F%d", totalRow), totalStyle)

	if err := f.Write(w); err != nil {
		return core.NewStorageError("write workbook", err)
	}

	applog.FromContext(ctx).WithComponent(applog.ComponentExport).
		InfoContext(ctx, "Exported transactions", applog.FieldRows, len(rows), applog.FieldFormat, "xlsx")
	return nil
}
