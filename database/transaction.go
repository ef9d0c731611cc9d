package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/vermillionhq/vermillion/internal/apierror"
	"github.com/vermillionhq/vermillion/model"
)

func (d Datasource) RecordTransaction(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	metaDataJSON, err := json.Marshal(txn.MetaData)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal metadata", err)
	}

	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now()
	}

	_, err = d.Conn.ExecContext(ctx,
		`INSERT INTO vermillion.transactions(transaction_id,idempotency_key,service_type,provider_id,provider_tx_id,source,destination,amount,currency,country,status,description,meta_data,created_at) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		txn.TransactionID, txn.IdempotencyKey, txn.ServiceType, txn.ProviderID, txn.ProviderTxID, txn.Source, txn.Destination, txn.Amount, txn.Currency, txn.Country, txn.Status, txn.Description, metaDataJSON, txn.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, apierror.NewAPIError(apierror.ErrConflict, "Transaction already recorded", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to record transaction", err)
	}
	return txn, nil
}

func (d Datasource) GetTransaction(ctx context.Context, transactionID string) (*model.Transaction, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT transaction_id, idempotency_key, service_type, provider_id, provider_tx_id, source, destination, amount, currency, country, status, description, meta_data, created_at
		FROM vermillion.transactions
		WHERE transaction_id = $1
	`, transactionID)

	txn := &model.Transaction{}
	var metaDataJSON []byte
	err := row.Scan(&txn.TransactionID, &txn.IdempotencyKey, &txn.ServiceType, &txn.ProviderID, &txn.ProviderTxID, &txn.Source, &txn.Destination, &txn.Amount, &txn.Currency, &txn.Country, &txn.Status, &txn.Description, &metaDataJSON, &txn.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Transaction with ID '%s' not found", transactionID), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve transaction", err)
	}

	if len(metaDataJSON) > 0 {
		if err := json.Unmarshal(metaDataJSON, &txn.MetaData); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to unmarshal metadata", err)
		}
	}
	return txn, nil
}

func (d Datasource) UpdateTransactionStatus(ctx context.Context, transactionID string, status string) error {
	result, err := d.Conn.ExecContext(ctx,
		`UPDATE vermillion.transactions SET status = $1 WHERE transaction_id = $2`,
		status, transactionID,
	)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update transaction status", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to read affected rows", err)
	}
	if rows == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Transaction with ID '%s' not found", transactionID), nil)
	}
	return nil
}

// GetUnreconciledTransactions lists settled-but-unreconciled transactions
// for the reconciliation worker.
func (d Datasource) GetUnreconciledTransactions(ctx context.Context, limit int) ([]model.Transaction, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT transaction_id, idempotency_key, service_type, provider_id, provider_tx_id, source, destination, amount, currency, country, status, description, created_at
		FROM vermillion.transactions
		WHERE status = $1
		ORDER BY created_at
		LIMIT $2
	`, model.StatusUnreconciled, limit)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve unreconciled transactions", err)
	}
	defer rows.Close()

	var txns []model.Transaction
	for rows.Next() {
		var txn model.Transaction
		err := rows.Scan(&txn.TransactionID, &txn.IdempotencyKey, &txn.ServiceType, &txn.ProviderID, &txn.ProviderTxID, &txn.Source, &txn.Destination, &txn.Amount, &txn.Currency, &txn.Country, &txn.Status, &txn.Description, &txn.CreatedAt)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan transaction", err)
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to iterate transactions", err)
	}
	return txns, nil
}
