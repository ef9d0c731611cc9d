package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vermillionhq/vermillion/internal/apierror"
	"github.com/vermillionhq/vermillion/model"
)

func newMockDatasource(t *testing.T) (Datasource, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return Datasource{Conn: db}, mock
}

func walletRow(walletID, ownerID, currency string, balance int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"wallet_id", "owner_id", "currency", "balance", "wallet_type", "active"}).
		AddRow(walletID, ownerID, currency, balance, "STANDARD", true)
}

func TestRecordMovement_Success(t *testing.T) {
	ds, mock := newMockDatasource(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT wallet_id, owner_id, currency, balance, wallet_type, active").
		WithArgs("wlt_a").
		WillReturnRows(walletRow("wlt_a", "own_1", "NGN", 10000))
	mock.ExpectQuery("SELECT wallet_id, owner_id, currency, balance, wallet_type, active").
		WithArgs("wlt_b").
		WillReturnRows(walletRow("wlt_b", "own_2", "NGN", 500))
	mock.ExpectExec("UPDATE vermillion.wallets SET balance").
		WithArgs(int64(7000), "wlt_a").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE vermillion.wallets SET balance").
		WithArgs(int64(3500), "wlt_b").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO vermillion.ledger_entries").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO vermillion.ledger_entries").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	result, err := ds.RecordMovement(context.Background(), &model.Movement{
		FromWalletID:  "wlt_a",
		ToWalletID:    "wlt_b",
		Amount:        3000,
		Currency:      "NGN",
		CorrelationID: "txn_1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7000), result.FromBalanceAfter)
	assert.Equal(t, int64(3500), result.ToBalanceAfter)

	debit, credit := result.Entries[0], result.Entries[1]
	assert.Equal(t, model.EntryDebit, debit.Kind)
	assert.Equal(t, model.EntryCredit, credit.Kind)
	assert.Equal(t, debit.Amount, credit.Amount)
	assert.Equal(t, "txn_1", debit.TransactionID)
	assert.Equal(t, int64(10000), debit.BalanceBefore)
	assert.Equal(t, int64(7000), debit.BalanceAfter)
	assert.Equal(t, int64(500), credit.BalanceBefore)
	assert.Equal(t, int64(3500), credit.BalanceAfter)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordMovement_LocksInCanonicalOrder(t *testing.T) {
	ds, mock := newMockDatasource(t)

	// Moving from wlt_b to wlt_a must still lock wlt_a first, so a
	// concurrent opposite-direction movement cannot deadlock.
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT wallet_id, owner_id, currency, balance, wallet_type, active").
		WithArgs("wlt_a").
		WillReturnRows(walletRow("wlt_a", "own_1", "NGN", 100))
	mock.ExpectQuery("SELECT wallet_id, owner_id, currency, balance, wallet_type, active").
		WithArgs("wlt_b").
		WillReturnRows(walletRow("wlt_b", "own_2", "NGN", 10000))
	mock.ExpectExec("UPDATE vermillion.wallets SET balance").
		WithArgs(int64(7000), "wlt_b").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE vermillion.wallets SET balance").
		WithArgs(int64(3100), "wlt_a").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO vermillion.ledger_entries").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO vermillion.ledger_entries").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	_, err := ds.RecordMovement(context.Background(), &model.Movement{
		FromWalletID:  "wlt_b",
		ToWalletID:    "wlt_a",
		Amount:        3000,
		Currency:      "NGN",
		CorrelationID: "txn_2",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordMovement_InsufficientFundsRollsBack(t *testing.T) {
	ds, mock := newMockDatasource(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT wallet_id, owner_id, currency, balance, wallet_type, active").
		WithArgs("wlt_a").
		WillReturnRows(walletRow("wlt_a", "own_1", "NGN", 100))
	mock.ExpectQuery("SELECT wallet_id, owner_id, currency, balance, wallet_type, active").
		WithArgs("wlt_b").
		WillReturnRows(walletRow("wlt_b", "own_2", "NGN", 0))
	mock.ExpectRollback()

	_, err := ds.RecordMovement(context.Background(), &model.Movement{
		FromWalletID:  "wlt_a",
		ToWalletID:    "wlt_b",
		Amount:        3000,
		Currency:      "NGN",
		CorrelationID: "txn_3",
	})
	assert.Equal(t, apierror.ErrInsufficientFunds, apierror.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordMovement_UnknownWallet(t *testing.T) {
	ds, mock := newMockDatasource(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT wallet_id, owner_id, currency, balance, wallet_type, active").
		WithArgs("wlt_a").
		WillReturnRows(sqlmock.NewRows([]string{"wallet_id", "owner_id", "currency", "balance", "wallet_type", "active"}))
	mock.ExpectRollback()

	_, err := ds.RecordMovement(context.Background(), &model.Movement{
		FromWalletID:  "wlt_a",
		ToWalletID:    "wlt_b",
		Amount:        3000,
		Currency:      "NGN",
		CorrelationID: "txn_4",
	})
	assert.Equal(t, apierror.ErrAccountNotFound, apierror.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordMovement_CurrencyMismatch(t *testing.T) {
	ds, mock := newMockDatasource(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT wallet_id, owner_id, currency, balance, wallet_type, active").
		WithArgs("wlt_a").
		WillReturnRows(walletRow("wlt_a", "own_1", "NGN", 10000))
	mock.ExpectQuery("SELECT wallet_id, owner_id, currency, balance, wallet_type, active").
		WithArgs("wlt_b").
		WillReturnRows(walletRow("wlt_b", "own_2", "USD", 0))
	mock.ExpectRollback()

	_, err := ds.RecordMovement(context.Background(), &model.Movement{
		FromWalletID:  "wlt_a",
		ToWalletID:    "wlt_b",
		Amount:        3000,
		Currency:      "NGN",
		CorrelationID: "txn_5",
	})
	assert.Equal(t, apierror.ErrValidation, apierror.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordMovement_RejectsNonPositiveAmount(t *testing.T) {
	ds, mock := newMockDatasource(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := ds.RecordMovement(context.Background(), &model.Movement{
		FromWalletID: "wlt_a",
		ToWalletID:   "wlt_b",
		Amount:       0,
		Currency:     "NGN",
	})
	assert.Equal(t, apierror.ErrValidation, apierror.CodeOf(err))
}

func TestRecordMovement_RejectsSameWallet(t *testing.T) {
	ds, mock := newMockDatasource(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := ds.RecordMovement(context.Background(), &model.Movement{
		FromWalletID: "wlt_a",
		ToWalletID:   "wlt_a",
		Amount:       100,
		Currency:     "NGN",
	})
	assert.Equal(t, apierror.ErrValidation, apierror.CodeOf(err))
}

func TestGetEntriesByTransaction(t *testing.T) {
	ds, mock := newMockDatasource(t)

	now := time.Now()
	createdRows := sqlmock.NewRows([]string{"entry_id", "wallet_id", "transaction_id", "kind", "amount", "balance_before", "balance_after", "description", "created_at"}).
		AddRow("ent_1", "wlt_a", "txn_1", "DEBIT", 3000, 10000, 7000, "payout", now).
		AddRow("ent_2", "wlt_b", "txn_1", "CREDIT", 3000, 500, 3500, "payout", now)

	mock.ExpectQuery("SELECT entry_id, wallet_id, transaction_id, kind, amount, balance_before, balance_after").
		WithArgs("txn_1").
		WillReturnRows(createdRows)

	entries, err := ds.GetEntriesByTransaction(context.Background(), "txn_1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, model.EntryDebit, entries[0].Kind)
	assert.Equal(t, model.EntryCredit, entries[1].Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}
