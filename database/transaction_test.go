package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vermillionhq/vermillion/internal/apierror"
	"github.com/vermillionhq/vermillion/model"
)

func TestRecordTransaction_Success(t *testing.T) {
	ds, mock := newMockDatasource(t)

	mock.ExpectExec("INSERT INTO vermillion.transactions").
		WillReturnResult(sqlmock.NewResult(1, 1))

	txn, err := ds.RecordTransaction(context.Background(), &model.Transaction{
		TransactionID: "txn_1",
		ServiceType:   "payment",
		Source:        "wlt_a",
		Destination:   "wlt_b",
		Amount:        3000,
		Currency:      "NGN",
		Status:        model.StatusCompleted,
	})
	require.NoError(t, err)
	assert.False(t, txn.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordTransaction_Duplicate(t *testing.T) {
	ds, mock := newMockDatasource(t)

	mock.ExpectExec("INSERT INTO vermillion.transactions").
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := ds.RecordTransaction(context.Background(), &model.Transaction{TransactionID: "txn_1"})
	assert.Equal(t, apierror.ErrConflict, apierror.CodeOf(err))
}

func TestUpdateTransactionStatus_NotFound(t *testing.T) {
	ds, mock := newMockDatasource(t)

	mock.ExpectExec("UPDATE vermillion.transactions SET status").
		WithArgs(model.StatusCompleted, "txn_missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := ds.UpdateTransactionStatus(context.Background(), "txn_missing", model.StatusCompleted)
	assert.Equal(t, apierror.ErrNotFound, apierror.CodeOf(err))
}

func TestGetUnreconciledTransactions(t *testing.T) {
	ds, mock := newMockDatasource(t)

	now := time.Now()
	mock.ExpectQuery("SELECT transaction_id, idempotency_key, service_type, provider_id").
		WithArgs(model.StatusUnreconciled, 10).
		WillReturnRows(sqlmock.NewRows([]string{"transaction_id", "idempotency_key", "service_type", "provider_id", "provider_tx_id", "source", "destination", "amount", "currency", "country", "status", "description", "created_at"}).
			AddRow("txn_1", "key-1", "payment", "korapay", "korapay_txn_1", "wlt_a", "wlt_b", int64(3000), "NGN", "NG", model.StatusUnreconciled, "payout", now))

	txns, err := ds.GetUnreconciledTransactions(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, model.StatusUnreconciled, txns[0].Status)
	assert.Equal(t, "korapay", txns[0].ProviderID)
}

func TestGetComplianceProfile_NotFound(t *testing.T) {
	ds, mock := newMockDatasource(t)

	mock.ExpectQuery("SELECT owner_id, tier, active, risk_score, country, updated_at").
		WithArgs("own_missing").
		WillReturnRows(sqlmock.NewRows([]string{"owner_id", "tier", "active", "risk_score", "country", "updated_at"}))

	_, err := ds.GetComplianceProfile(context.Background(), "own_missing")
	assert.Equal(t, apierror.ErrNotFound, apierror.CodeOf(err))
}

func TestUpsertComplianceProfile(t *testing.T) {
	ds, mock := newMockDatasource(t)

	mock.ExpectExec("INSERT INTO vermillion.compliance_profiles").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := ds.UpsertComplianceProfile(context.Background(), model.ComplianceProfile{
		OwnerID: "own_1",
		Tier:    "tier_1",
		Active:  true,
		Country: "NG",
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
