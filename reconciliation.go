package vermillion

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	"github.com/vermillionhq/vermillion/model"
)

var reconciliationTracer = otel.Tracer("vermillion.reconciliation")

// ReconcileSettlement retries the ledger movement for a transaction whose
// provider leg already settled. On success the transaction flips to
// COMPLETED. The worker retries on error with asynq's backoff until the
// configured attempt cap.
func (v *Vermillion) ReconcileSettlement(ctx context.Context, txn *model.Transaction) error {
	ctx, span := reconciliationTracer.Start(ctx, "Reconciling settlement")
	defer span.End()

	current, err := v.datasource.GetTransaction(ctx, txn.TransactionID)
	if err != nil {
		return err
	}
	if current.Status != model.StatusUnreconciled {
		logrus.Infof("transaction %s already %s, skipping reconciliation", txn.TransactionID, current.Status)
		return nil
	}

	if _, err := v.RecordMovement(ctx, &model.Movement{
		FromWalletID:  txn.Source,
		ToWalletID:    txn.Destination,
		Amount:        txn.Amount,
		Currency:      txn.Currency,
		CorrelationID: txn.TransactionID,
		Description:   txn.Description,
		MetaData:      txn.MetaData,
	}); err != nil {
		span.RecordError(err)
		return err
	}

	if err := v.datasource.UpdateTransactionStatus(ctx, txn.TransactionID, model.StatusCompleted); err != nil {
		return err
	}
	logrus.Infof("transaction %s reconciled", txn.TransactionID)
	return nil
}

// GetUnreconciledTransactions lists transactions still waiting on their
// ledger movement, for the operator surface.
func (v *Vermillion) GetUnreconciledTransactions(ctx context.Context, limit int) ([]model.Transaction, error) {
	return v.datasource.GetUnreconciledTransactions(ctx, limit)
}
