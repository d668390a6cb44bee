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

// --- Create Account Command ---

type createAccountCmd struct {
	name    string
	balance string
}

func (*createAccountCmd) Name() string     { return "create-account" }
func (*createAccountCmd) Synopsis() string { return "open an account with an optional starting balance" }
func (*createAccountCmd) Usage() string {
	return `create-account -name <name> [-balance <dollars>]

  Creates an account and prints its id. A non-zero balance is recorded as a
  "Starting Balance" transaction dated today; negative balances are outflows.
`
}

func (c *createAccountCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Account display name")
	f.StringVar(&c.balance, "balance", "0", "Starting balance in dollars")
}

func (c *createAccountCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	cents, err := core.ParseCents(c.balance)
	if err != nil {
		return usageError(args, f, "invalid -balance %q", c.balance)
	}
	return run(ctx, args, func(l *services.Ledger, w io.Writer) error {
		id, err := l.CreateAccount(ctx, c.name, cents)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, id)
		return nil
	})
}

// --- List Accounts Command ---

type listAccountsCmd struct{}

func (*listAccountsCmd) Name() string             { return "accounts" }
func (*listAccountsCmd) Synopsis() string         { return "list accounts" }
func (*listAccountsCmd) Usage() string            { return "accounts\n" }
func (*listAccountsCmd) SetFlags(f *flag.FlagSet) {}

func (c *listAccountsCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return run(ctx, args, func(l *services.Ledger, w io.Writer) error {
		accounts, err := l.ListAccounts(ctx)
		if err != nil {
			return err
		}
		tw := table(w)
		fmt.Fprintln(tw, "ID\tNAME")
		for _, a := range accounts {
			fmt.Fprintf(tw, "%d\t%s\n", a.ID, a.DisplayName)
		}
		return tw.Flush()
	})
}
