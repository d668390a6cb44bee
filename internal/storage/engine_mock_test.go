package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"ledger/internal/core"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockEngine(t *testing.T) (*Engine, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewEngine(db), mock
}

func TestInsertWrapsDriverFailure(t *testing.T) {
	e, mock := setupMockEngine(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO categories (display_name) VALUES (?)")).
		WithArgs("Dining").
		WillReturnError(errors.New("disk I/O error"))

	_, err := e.CreateCategory(context.Background(), "Dining")
	require.ErrorIs(t, err, core.ErrStorage)

	var serr *core.StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "insert into categories", serr.Op)
	assert.Contains(t, err.Error(), "disk I/O error")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertTransactionUsesParameters(t *testing.T) {
	e, mock := setupMockEngine(t)

	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO transactions (payee, amount, date, notes, account_id, category_id) VALUES (?, ?, ?, ?, ?, ?)")).
		WithArgs("O'Reilly", int64(-500), int64(1704067200), "", int64(1), int64(0)).
		WillReturnResult(sqlmock.NewResult(7, 1))

	id, err := e.InsertTransaction(context.Background(), core.Transaction{
		Payee: "O'Reilly", AccountID: 1, Date: 1704067200, Amount: -500,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestValidationNeverReachesStorage(t *testing.T) {
	e, mock := setupMockEngine(t)
	ctx := context.Background()

	_, err := e.CreateCategory(ctx, "   ")
	assert.ErrorIs(t, err, core.ErrValidation)
	_, err = e.InsertTransaction(ctx, core.Transaction{Payee: "p", Amount: 0})
	assert.ErrorIs(t, err, core.ErrValidation)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBootstrapCreatesOnlyMissingTables(t *testing.T) {
	e, mock := setupMockEngine(t)
	existsQuery := regexp.QuoteMeta("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?")

	mock.ExpectQuery(existsQuery).WithArgs("categories").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(existsQuery).WithArgs("accounts").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE accounts (id INTEGER PRIMARY KEY, display_name TEXT NOT NULL)")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(existsQuery).WithArgs("transactions").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(existsQuery).WithArgs("category_transfers").
		WillReturnError(errors.New("database is locked"))

	err := e.Bootstrap(context.Background())
	assert.ErrorIs(t, err, core.ErrStorage)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxCommitFailure(t *testing.T) {
	e, mock := setupMockEngine(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO accounts (display_name) VALUES (?)")).
		WithArgs("Checking").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit().WillReturnError(errors.New("disk full"))

	err := e.WithTx(context.Background(), func(tx *Engine) error {
		_, err := tx.CreateAccount(context.Background(), "Checking")
		return err
	})
	assert.ErrorIs(t, err, core.ErrStorage)
	assert.Contains(t, err.Error(), "commit transaction")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteNotFoundFromRowsAffected(t *testing.T) {
	e, mock := setupMockEngine(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM categories WHERE id = ?")).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := Delete(context.Background(), e, Categories, 9)
	assert.ErrorIs(t, err, core.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
