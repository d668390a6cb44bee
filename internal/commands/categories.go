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

// --- Create Category Command ---

type createCategoryCmd struct {
	name string
}

func (*createCategoryCmd) Name() string     { return "create-category" }
func (*createCategoryCmd) Synopsis() string { return "create a spending category" }
func (*createCategoryCmd) Usage() string {
	return `create-category -name <name>

  Creates a category and prints its id. Names need not be unique.
`
}

func (c *createCategoryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Category display name")
}

func (c *createCategoryCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return run(ctx, args, func(l *services.Ledger, w io.Writer) error {
		id, err := l.CreateCategory(ctx, c.name)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, id)
		return nil
	})
}

// --- Rename Category Command ---

type renameCategoryCmd struct {
	id   int64
	name string
}

func (*renameCategoryCmd) Name() string     { return "rename-category" }
func (*renameCategoryCmd) Synopsis() string { return "change a category's display name" }
func (*renameCategoryCmd) Usage() string {
	return `rename-category -id <id> -name <name>
`
}

func (c *renameCategoryCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.id, "id", 0, "Category id")
	f.StringVar(&c.name, "name", "", "New display name")
}

func (c *renameCategoryCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if c.id <= 0 {
		return usageError(args, f, "-id is required")
	}
	return run(ctx, args, func(l *services.Ledger, w io.Writer) error {
		return l.RenameCategory(ctx, c.id, c.name)
	})
}

// --- Delete Category Command ---

type deleteCategoryCmd struct {
	id int64
}

func (*deleteCategoryCmd) Name() string     { return "delete-category" }
func (*deleteCategoryCmd) Synopsis() string { return "delete a category" }
func (*deleteCategoryCmd) Usage() string {
	return `delete-category -id <id>

  Deletes the category. Its transactions become uncategorized.
`
}

func (c *deleteCategoryCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.id, "id", 0, "Category id")
}

func (c *deleteCategoryCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if c.id <= 0 {
		return usageError(args, f, "-id is required")
	}
	return run(ctx, args, func(l *services.Ledger, w io.Writer) error {
		return l.DeleteCategory(ctx, c.id)
	})
}

// --- List Categories Command ---

type listCategoriesCmd struct{}

func (*listCategoriesCmd) Name() string             { return "categories" }
func (*listCategoriesCmd) Synopsis() string         { return "list categories" }
func (*listCategoriesCmd) Usage() string            { return "categories\n" }
func (*listCategoriesCmd) SetFlags(f *flag.FlagSet) {}

func (c *listCategoriesCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return run(ctx, args, func(l *services.Ledger, w io.Writer) error {
		categories, err := l.ListCategories(ctx)
		if err != nil {
			return err
		}
		tw := table(w)
		fmt.Fprintln(tw, "ID\tNAME")
		for _, cat := range categories {
			fmt.Fprintf(tw, "%d\t%s\n", cat.ID, cat.DisplayName)
		}
		return tw.Flush()
	})
}

// --- Category ID Command ---

type categoryIDCmd struct {
	name string
}

func (*categoryIDCmd) Name() string     { return "category-id" }
func (*categoryIDCmd) Synopsis() string { return "look up a category id by name" }
func (*categoryIDCmd) Usage() string {
	return `category-id -name <name>
`
}

func (c *categoryIDCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Category display name")
}

func (c *categoryIDCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return run(ctx, args, func(l *services.Ledger, w io.Writer) error {
		id, err := l.CategoryID(ctx, c.name)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, id)
		return nil
	})
}

// --- Transfer Command ---

type transferCmd struct {
	from, to int64
	amount   string
}

func (*transferCmd) Name() string     { return "transfer" }
func (*transferCmd) Synopsis() string { return "move budgeted money between categories" }
func (*transferCmd) Usage() string {
	return `transfer -from <id> -to <id> -amount <dollars>
`
}

func (c *transferCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.from, "from", 0, "Source category id")
	f.Int64Var(&c.to, "to", 0, "Destination category id")
	f.StringVar(&c.amount, "amount", "", "Amount in dollars, e.g. 25.00")
}

func (c *transferCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	cents, err := core.ParseCents(c.amount)
	if err != nil {
		return usageError(args, f, "invalid -amount %q", c.amount)
	}
	return run(ctx, args, func(l *services.Ledger, w io.Writer) error {
		id, err := l.TransferBetweenCategories(ctx, c.from, c.to, cents)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, id)
		return nil
	})
}

// --- List Transfers Command ---

type listTransfersCmd struct{}

func (*listTransfersCmd) Name() string             { return "transfers" }
func (*listTransfersCmd) Synopsis() string         { return "list category transfers" }
func (*listTransfersCmd) Usage() string            { return "transfers\n" }
func (*listTransfersCmd) SetFlags(f *flag.FlagSet) {}

func (c *listTransfersCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return run(ctx, args, func(l *services.Ledger, w io.Writer) error {
		transfers, err := l.ListCategoryTransfers(ctx)
		if err != nil {
			return err
		}
		tw := table(w)
		fmt.Fprintln(tw, "ID\tFROM\tTO\tAMOUNT")
		for _, t := range transfers {
			fmt.Fprintf(tw, "%d\t%d\t%d\t%s\n", t.ID, t.Source, t.Dest, core.FormatCents(t.Amount))
		}
		return tw.Flush()
	})
}
