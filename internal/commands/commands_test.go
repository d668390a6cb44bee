package commands

import (
	"bytes"
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applog "ledger/internal/log"
	"ledger/internal/services"
)

type harness struct {
	env    *Env
	out    *bytes.Buffer
	errOut *bytes.Buffer
	opened int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{out: &bytes.Buffer{}, errOut: &bytes.Buffer{}}
	dbPath := filepath.Join(t.TempDir(), "ledger.db")
	h.env = NewEnv(func(ctx context.Context) (*services.Ledger, error) {
		h.opened++
		l := services.NewLedger(nil, applog.New(applog.Config{Level: slog.LevelError, Output: io.Discard}))
		if err := l.Open(ctx, dbPath); err != nil {
			return nil, err
		}
		return l, nil
	})
	h.env.Out = h.out
	h.env.Err = h.errOut
	t.Cleanup(func() { h.env.Close() })
	return h
}

// exec runs one command line and returns its exit status and trimmed stdout.
func (h *harness) exec(t *testing.T, args ...string) (subcommands.ExitStatus, string) {
	t.Helper()
	h.out.Reset()
	h.errOut.Reset()

	fs := flag.NewFlagSet("ledger", flag.ContinueOnError)
	commander := subcommands.NewCommander(fs, "ledger")
	commander.Output = io.Discard
	commander.Error = io.Discard
	Register(commander)
	require.NoError(t, fs.Parse(args))

	status := commander.Execute(context.Background(), h.env)
	return status, strings.TrimSpace(h.out.String())
}

func TestAccountAndTransactionCommands(t *testing.T) {
	h := newHarness(t)

	status, id := h.exec(t, "create-account", "-name", "Checking", "-balance", "100.00")
	require.Equal(t, subcommands.ExitSuccess, status, h.errOut.String())
	assert.Equal(t, "1", id)

	status, _ = h.exec(t, "create-category", "-name", "Coffee")
	require.Equal(t, subcommands.ExitSuccess, status)

	status, _ = h.exec(t, "add", "-account", "1", "-payee", "Cafe", "-outflow", "5", "-d", "2024-01-02", "-category", "Coffee")
	require.Equal(t, subcommands.ExitSuccess, status, h.errOut.String())

	status, out := h.exec(t, "balances")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "Checking")
	assert.Contains(t, out, "95.00")

	status, out = h.exec(t, "transactions")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "Cafe")
	assert.Contains(t, out, "Coffee")

	status, out = h.exec(t, "history", "-account", "1")
	require.Equal(t, subcommands.ExitSuccess, status)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[2], "95.00")

	assert.Equal(t, 1, h.opened)
}

func TestAddTransactionRejectsBothFlows(t *testing.T) {
	h := newHarness(t)

	status, _ := h.exec(t, "create-account", "-name", "Checking")
	require.Equal(t, subcommands.ExitSuccess, status)

	status, _ = h.exec(t, "add", "-account", "1", "-payee", "x", "-inflow", "1", "-outflow", "1")
	assert.Equal(t, subcommands.ExitUsageError, status)
	assert.Contains(t, h.errOut.String(), "exactly one of inflow and outflow")

	status, _ = h.exec(t, "add", "-account", "1", "-payee", "x", "-outflow", "1", "-category", "missing")
	assert.Equal(t, subcommands.ExitFailure, status)
	assert.Contains(t, h.errOut.String(), "not found")

	status, _ = h.exec(t, "add", "-payee", "x", "-outflow", "1")
	assert.Equal(t, subcommands.ExitUsageError, status)
}

func TestCategoryCommands(t *testing.T) {
	h := newHarness(t)

	_, first := h.exec(t, "create-category", "-name", "Groceries")
	_, second := h.exec(t, "create-category", "-name", "Fun")

	status, _ := h.exec(t, "rename-category", "-id", first, "-name", "Food")
	require.Equal(t, subcommands.ExitSuccess, status)

	status, id := h.exec(t, "category-id", "-name", "Food")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Equal(t, first, id)

	status, _ = h.exec(t, "category-id", "-name", "nonexistent")
	assert.Equal(t, subcommands.ExitFailure, status)

	status, _ = h.exec(t, "transfer", "-from", first, "-to", second, "-amount", "12.50")
	require.Equal(t, subcommands.ExitSuccess, status, h.errOut.String())

	status, out := h.exec(t, "transfers")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "12.50")

	status, _ = h.exec(t, "delete-category", "-id", second)
	require.Equal(t, subcommands.ExitSuccess, status)

	status, out = h.exec(t, "categories")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "Food")
	assert.NotContains(t, out, "Fun")

	status, out = h.exec(t, "spend", "-start", "2024-01-01", "-end", "2024-01-31")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "Food")

	status, _ = h.exec(t, "spend", "-start", "2024-02-01", "-end", "2024-01-01")
	assert.Equal(t, subcommands.ExitUsageError, status)
}

func TestImportExportCommands(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()

	src := filepath.Join(dir, "in.csv")
	require.NoError(t, os.WriteFile(src, []byte(
		"Account,Date,Payee,Outflow,Inflow,Category\n"+
			"Checking,2024-01-01,Arbys,117.34,,Dining\n"+
			"Checking,2024-01-02,The City,,648.60,\n"), 0644))

	h.exec(t, "create-account", "-name", "Checking")
	status, out := h.exec(t, "import", "-account", "1", "-file", src)
	require.Equal(t, subcommands.ExitSuccess, status, h.errOut.String())
	assert.Contains(t, out, "Imported 2 transactions")

	dst := filepath.Join(dir, "out.csv")
	status, _ = h.exec(t, "export", "-file", dst)
	require.Equal(t, subcommands.ExitSuccess, status)
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "payee, amount, date, account, category\n"))

	status, _ = h.exec(t, "export", "-file", filepath.Join(dir, "out.xlsx"))
	require.Equal(t, subcommands.ExitSuccess, status)
	_, err = os.Stat(filepath.Join(dir, "out.xlsx"))
	assert.NoError(t, err)

	status, _ = h.exec(t, "export", "-file", dst, "-format", "pdf")
	assert.Equal(t, subcommands.ExitUsageError, status)

	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("h\nx,2024-13-40,p,1,,\n"), 0644))
	status, _ = h.exec(t, "import", "-account", "1", "-file", bad)
	assert.Equal(t, subcommands.ExitFailure, status)
	assert.Contains(t, h.errOut.String(), "line 2")
}

func TestMissingFlags(t *testing.T) {
	// the empty name is rejected by the ledger itself
	h := newHarness(t)
	status, _ := h.exec(t, "create-account")
	assert.Equal(t, subcommands.ExitUsageError, status)
	assert.Equal(t, 1, h.opened)

	// flag checks run before the ledger is opened
	h2 := newHarness(t)
	status, _ = h2.exec(t, "history")
	assert.Equal(t, subcommands.ExitUsageError, status)
	assert.Zero(t, h2.opened)
}
