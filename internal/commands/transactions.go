package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/subcommands"

	"ledger/internal/core"
	"ledger/internal/services"
)

// --- Add Transaction Command ---

type addTransactionCmd struct {
	account  int64
	category string
	payee    string
	notes    string
	date     string
	inflow   string
	outflow  string
}

func (*addTransactionCmd) Name() string     { return "add" }
func (*addTransactionCmd) Synopsis() string { return "record a transaction" }
func (*addTransactionCmd) Usage() string {
	return `add -account <id> -payee <payee> (-inflow <dollars> | -outflow <dollars>) [-d <date>] [-category <name>] [-notes <text>]

  Records a transaction. Exactly one of -inflow and -outflow must be positive.
`
}

func (c *addTransactionCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.account, "account", 0, "Account id")
	f.StringVar(&c.category, "category", "", "Existing category name")
	f.StringVar(&c.payee, "payee", "", "Payee")
	f.StringVar(&c.notes, "notes", "", "Free-form notes")
	f.StringVar(&c.date, "d", time.Now().UTC().Format(core.DayLayout), "Transaction date (YYYY-MM-DD)")
	f.StringVar(&c.inflow, "inflow", "", "Money received, in dollars")
	f.StringVar(&c.outflow, "outflow", "", "Money spent, in dollars")
}

func (c *addTransactionCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if c.account <= 0 {
		return usageError(args, f, "-account is required")
	}
	day, err := core.ParseDay(c.date)
	if err != nil {
		return usageError(args, f, "invalid -d %q", c.date)
	}
	inflow, err := core.ParseCents(c.inflow)
	if err != nil {
		return usageError(args, f, "invalid -inflow %q", c.inflow)
	}
	outflow, err := core.ParseCents(c.outflow)
	if err != nil {
		return usageError(args, f, "invalid -outflow %q", c.outflow)
	}

	return run(ctx, args, func(l *services.Ledger, w io.Writer) error {
		tx, err := core.NewTransaction(c.payee, inflow, outflow, day, c.account)
		if err != nil {
			return err
		}
		tx.Notes = c.notes
		if c.category != "" {
			if tx.CategoryID, err = l.CategoryID(ctx, c.category); err != nil {
				return err
			}
		}
		id, err := l.CreateTransaction(ctx, tx)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, id)
		return nil
	})
}

// --- List Transactions Command ---

type listTransactionsCmd struct{}

func (*listTransactionsCmd) Name() string             { return "transactions" }
func (*listTransactionsCmd) Synopsis() string         { return "list transactions in date order" }
func (*listTransactionsCmd) Usage() string            { return "transactions\n" }
func (*listTransactionsCmd) SetFlags(f *flag.FlagSet) {}

func (c *listTransactionsCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return run(ctx, args, func(l *services.Ledger, w io.Writer) error {
		list, err := l.TransactionDisplayList(ctx)
		if err != nil {
			return err
		}
		tw := table(w)
		fmt.Fprintln(tw, "ID\tDATE\tPAYEE\tAMOUNT\tACCOUNT\tCATEGORY\tNOTES")
		for _, d := range list {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
				d.ID, core.FormatDay(d.Date), d.Payee, core.FormatCents(d.Amount), d.AccountName, d.CategoryName, d.Notes)
		}
		return tw.Flush()
	})
}

// --- Import Command ---

type importCmd struct {
	account int64
	file    string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import transactions from a CSV file" }
func (*importCmd) Usage() string {
	return `import -account <id> -file <path>

  Imports rows "account,date,payee,outflow,inflow,category" after a header line.
  The account column is ignored. Either every row is imported or none is.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.account, "account", 0, "Account id receiving the transactions")
	f.StringVar(&c.file, "file", "", "CSV file to import")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if c.account <= 0 || c.file == "" {
		return usageError(args, f, "-account and -file are required")
	}
	return run(ctx, args, func(l *services.Ledger, w io.Writer) error {
		n, err := l.ImportFile(ctx, c.account, c.file)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Imported %d transactions from %s\n", n, c.file)
		return nil
	})
}

// --- Export Command ---

type exportCmd struct {
	file   string
	format string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export all transactions to CSV or XLSX" }
func (*exportCmd) Usage() string {
	return `export -file <path> [-format csv|xlsx]

  The format defaults to the file extension, then csv.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "file", "", "Destination file, replaced if it exists")
	f.StringVar(&c.format, "format", "", "csv or xlsx")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if c.file == "" {
		return usageError(args, f, "-file is required")
	}
	format := strings.ToLower(c.format)
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(c.file)), ".")
		if format != "xlsx" {
			format = "csv"
		}
	}
	if format != "csv" && format != "xlsx" {
		return usageError(args, f, "unknown -format %q", c.format)
	}

	return run(ctx, args, func(l *services.Ledger, w io.Writer) error {
		var err error
		if format == "xlsx" {
			err = l.ExportXLSXFile(ctx, c.file)
		} else {
			err = l.ExportFile(ctx, c.file)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Exported transactions to %s\n", c.file)
		return nil
	})
}
