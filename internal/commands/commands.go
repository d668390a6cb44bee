// Package commands exposes the ledger operations as subcommands.
package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"

	"ledger/internal/core"
	"ledger/internal/services"
)

// Register the subcommands.
func Register(c *subcommands.Commander) {
	c.Register(&createCategoryCmd{}, "categories")
	c.Register(&renameCategoryCmd{}, "categories")
	c.Register(&deleteCategoryCmd{}, "categories")
	c.Register(&listCategoriesCmd{}, "categories")
	c.Register(&categoryIDCmd{}, "categories")
	c.Register(&transferCmd{}, "categories")
	c.Register(&listTransfersCmd{}, "categories")

	c.Register(&createAccountCmd{}, "accounts")
	c.Register(&listAccountsCmd{}, "accounts")

	c.Register(&addTransactionCmd{}, "transactions")
	c.Register(&listTransactionsCmd{}, "transactions")
	c.Register(&importCmd{}, "transactions")
	c.Register(&exportCmd{}, "transactions")

	c.Register(&balancesCmd{}, "reports")
	c.Register(&historyCmd{}, "reports")
	c.Register(&spendCmd{}, "reports")
}

// Env is passed as the first argument of Commander.Execute. The ledger is opened
// on first use so that help and flag listings never touch the database.
type Env struct {
	Out io.Writer
	Err io.Writer

	open   func(context.Context) (*services.Ledger, error)
	ledger *services.Ledger
}

func NewEnv(open func(context.Context) (*services.Ledger, error)) *Env {
	return &Env{Out: os.Stdout, Err: os.Stderr, open: open}
}

// Ledger opens the ledger once and returns it on every later call.
func (e *Env) Ledger(ctx context.Context) (*services.Ledger, error) {
	if e.ledger != nil {
		return e.ledger, nil
	}
	l, err := e.open(ctx)
	if err != nil {
		return nil, err
	}
	e.ledger = l
	return l, nil
}

func (e *Env) Close() error {
	if e.ledger == nil {
		return nil
	}
	return e.ledger.Close()
}

// run resolves the Env and ledger, then reports fn's error on Err.
func run(ctx context.Context, args []interface{}, fn func(*services.Ledger, io.Writer) error) subcommands.ExitStatus {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no command environment")
		return subcommands.ExitFailure
	}
	env, ok := args[0].(*Env)
	if !ok {
		fmt.Fprintln(os.Stderr, "Error: no command environment")
		return subcommands.ExitFailure
	}

	l, err := env.Ledger(ctx)
	if err != nil {
		fmt.Fprintf(env.Err, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := fn(l, env.Out); err != nil {
		fmt.Fprintf(env.Err, "Error: %v\n", err)
		if errors.Is(err, core.ErrValidation) && !errors.Is(err, core.ErrImport) {
			return subcommands.ExitUsageError
		}
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// usageError reports a missing or malformed flag.
func usageError(args []interface{}, f *flag.FlagSet, format string, a ...any) subcommands.ExitStatus {
	w := io.Writer(os.Stderr)
	if len(args) > 0 {
		if env, ok := args[0].(*Env); ok {
			w = env.Err
		}
	}
	fmt.Fprintf(w, "Error: "+format+"\n", a...)
	if f.Usage != nil {
		f.Usage()
	}
	return subcommands.ExitUsageError
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}
