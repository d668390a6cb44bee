package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/google/subcommands"

	"ledger/internal/core"
	"ledger/internal/services"
)

// --- Balances Command ---

type balancesCmd struct{}

func (*balancesCmd) Name() string             { return "balances" }
func (*balancesCmd) Synopsis() string         { return "show every account's balance" }
func (*balancesCmd) Usage() string            { return "balances\n" }
func (*balancesCmd) SetFlags(f *flag.FlagSet) {}

func (c *balancesCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return run(ctx, args, func(l *services.Ledger, w io.Writer) error {
		balances, err := l.AccountBalanceList(ctx)
		if err != nil {
			return err
		}
		tw := table(w)
		fmt.Fprintln(tw, "ID\tACCOUNT\tBALANCE")
		var total int64
		for _, b := range balances {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", b.AccountID, b.DisplayName, core.FormatCents(b.Balance))
			total += b.Balance
		}
		fmt.Fprintf(tw, "\tTotal\t%s\n", core.FormatCents(total))
		return tw.Flush()
	})
}

// --- History Command ---

type historyCmd struct {
	account int64
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "show an account's transactions with running balance" }
func (*historyCmd) Usage() string {
	return `history -account <id>
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.account, "account", 0, "Account id")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if c.account <= 0 {
		return usageError(args, f, "-account is required")
	}
	return run(ctx, args, func(l *services.Ledger, w io.Writer) error {
		history, err := l.AccountHistory(ctx, c.account)
		if err != nil {
			return err
		}
		tw := table(w)
		fmt.Fprintln(tw, "ID\tDATE\tAMOUNT\tBALANCE")
		for _, h := range history {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n",
				h.TransactionID, core.FormatDay(h.Date), core.FormatCents(h.Amount), core.FormatCents(h.RunningBalance))
		}
		return tw.Flush()
	})
}

// --- Spend Command ---

type spendCmd struct {
	start, end string
}

func (*spendCmd) Name() string     { return "spend" }
func (*spendCmd) Synopsis() string { return "total and average amount per category over a period" }
func (*spendCmd) Usage() string {
	return `spend -start <date> -end <date>

  Both days are inclusive. Categories without transactions show zero.
`
}

func (c *spendCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "start", "", "First day (YYYY-MM-DD)")
	f.StringVar(&c.end, "end", "", "Last day (YYYY-MM-DD)")
}

func (c *spendCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	start, err := core.ParseDay(c.start)
	if err != nil {
		return usageError(args, f, "invalid -start %q", c.start)
	}
	end, err := core.ParseDay(c.end)
	if err != nil {
		return usageError(args, f, "invalid -end %q", c.end)
	}
	return run(ctx, args, func(l *services.Ledger, w io.Writer) error {
		spend, err := l.CategorySpendList(ctx, start, end)
		if err != nil {
			return err
		}
		tw := table(w)
		fmt.Fprintln(tw, "ID\tCATEGORY\tTOTAL\tAVERAGE")
		for _, s := range spend {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\n", s.CategoryID, s.DisplayName, core.FormatCents(s.Total), s.Average/100)
		}
		return tw.Flush()
	})
}
