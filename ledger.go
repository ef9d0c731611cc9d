package vermillion

import (
	"context"
	"database/sql"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	"github.com/vermillionhq/vermillion/model"
)

var ledgerTracer = otel.Tracer("vermillion.ledger")

// RecordMovement moves funds between two wallets atomically and durably.
// Both wallet rows are locked in canonical order before any balance is
// read, new balances are written and a balanced debit/credit entry pair is
// appended, all in one transactional scope. On any rejection nothing is
// written. Once a movement begins it runs to commit or rollback; there is
// no mid-flight cancellation.
func (v *Vermillion) RecordMovement(ctx context.Context, movement *model.Movement) (*model.MovementResult, error) {
	ctx, span := ledgerTracer.Start(ctx, "Recording movement")
	defer span.End()

	if movement.CorrelationID == "" {
		movement.CorrelationID = model.GenerateUUIDWithSuffix("txn")
	}

	result, err := v.datasource.RecordMovement(ctx, movement)
	if err != nil {
		span.RecordError(err)
		logrus.WithFields(logrus.Fields{
			"from":           movement.FromWalletID,
			"to":             movement.ToWalletID,
			"amount":         movement.Amount,
			"correlation_id": movement.CorrelationID,
		}).Errorf("ledger movement failed: %v", err)
		return nil, err
	}
	return result, nil
}

// RecordMovementInScope participates in the caller's transaction; the
// caller owns commit and rollback.
func (v *Vermillion) RecordMovementInScope(ctx context.Context, tx *sql.Tx, movement *model.Movement) (*model.MovementResult, error) {
	if movement.CorrelationID == "" {
		movement.CorrelationID = model.GenerateUUIDWithSuffix("txn")
	}
	return v.datasource.RecordMovementInTx(ctx, tx, movement)
}

// GetMovementEntries returns the entry pair recorded under a correlation
// id.
func (v *Vermillion) GetMovementEntries(ctx context.Context, correlationID string) ([]model.LedgerEntry, error) {
	return v.datasource.GetEntriesByTransaction(ctx, correlationID)
}
