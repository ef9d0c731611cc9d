package vermillion

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	"github.com/vermillionhq/vermillion/internal/apierror"
	"github.com/vermillionhq/vermillion/model"
)

var transferTracer = otel.Tracer("vermillion.transfer")

// TransferParams describes an internal movement between two wallets on the
// platform. No provider is involved, but the compliance gate and
// idempotency handling are the same as for payments.
type TransferParams struct {
	IdempotencyKey      string                 `json:"idempotency_key"`
	OwnerID             string                 `json:"owner_id"`
	SourceWalletID      string                 `json:"source_wallet_id"`
	DestinationWalletID string                 `json:"destination_wallet_id"`
	Amount              int64                  `json:"amount"`
	Currency            string                 `json:"currency"`
	Description         string                 `json:"description"`
	MetaData            map[string]interface{} `json:"meta_data,omitempty"`
}

// TransferResponse mirrors PaymentResponse for internal movements.
type TransferResponse struct {
	TransactionID    string `json:"transaction_id"`
	Status           string `json:"status"`
	FromBalanceAfter int64  `json:"from_balance_after"`
	ToBalanceAfter   int64  `json:"to_balance_after"`
}

func (t *TransferParams) validate() error {
	if t.Amount <= 0 {
		return apierror.NewAPIError(apierror.ErrValidation, "Amount must be positive", t.Amount)
	}
	if t.OwnerID == "" || t.SourceWalletID == "" || t.DestinationWalletID == "" {
		return apierror.NewAPIError(apierror.ErrValidation, "Owner, source wallet and destination wallet are required", nil)
	}
	if t.SourceWalletID == t.DestinationWalletID {
		return apierror.NewAPIError(apierror.ErrValidation, "Source and destination wallets must differ", nil)
	}
	if t.Currency == "" {
		return apierror.NewAPIError(apierror.ErrValidation, "Currency is required", nil)
	}
	return nil
}

// ExecuteTransfer moves funds between two internal wallets. The movement
// either fully commits or leaves both balances untouched, so there is no
// unreconciled path here.
func (v *Vermillion) ExecuteTransfer(ctx context.Context, params *TransferParams) (*TransferResponse, error) {
	ctx, span := transferTracer.Start(ctx, "Executing transfer")
	defer span.End()

	if err := params.validate(); err != nil {
		return nil, err
	}

	var reservation = noReservation
	if params.IdempotencyKey != "" {
		if stored, err := v.idempotency.GetProcessedResponse(ctx, params.IdempotencyKey); err != nil {
			return nil, err
		} else if stored != nil {
			span.AddEvent("idempotent replay")
			var replay TransferResponse
			if err := json.Unmarshal(stored, &replay); err != nil {
				return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to decode stored response", err)
			}
			return &replay, nil
		}

		locker, err := v.idempotency.Reserve(ctx, params.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		reservation = reservationHandle{locker: locker, idempotency: v.idempotency}
	}

	if err := v.ValidateTransaction(ctx, params.OwnerID, params.Amount, model.OpInternalTransfer); err != nil {
		reservation.release(ctx)
		return nil, err
	}

	transactionID := model.GenerateUUIDWithSuffix("txn")
	movement, err := v.RecordMovement(ctx, &model.Movement{
		FromWalletID:  params.SourceWalletID,
		ToWalletID:    params.DestinationWalletID,
		Amount:        params.Amount,
		Currency:      params.Currency,
		CorrelationID: transactionID,
		Description:   params.Description,
		MetaData:      params.MetaData,
	})
	if err != nil {
		reservation.release(ctx)
		return nil, err
	}

	txn := &model.Transaction{
		TransactionID:  transactionID,
		IdempotencyKey: params.IdempotencyKey,
		ServiceType:    "internal-transfer",
		Source:         params.SourceWalletID,
		Destination:    params.DestinationWalletID,
		Amount:         params.Amount,
		Currency:       params.Currency,
		Status:         model.StatusCompleted,
		Description:    params.Description,
		MetaData:       params.MetaData,
	}
	if _, err := v.datasource.RecordTransaction(ctx, txn); err != nil {
		logrus.Errorf("transfer %s applied but transaction record failed: %v", transactionID, err)
	}

	response := &TransferResponse{
		TransactionID:    transactionID,
		Status:           model.StatusCompleted,
		FromBalanceAfter: movement.FromBalanceAfter,
		ToBalanceAfter:   movement.ToBalanceAfter,
	}

	if params.IdempotencyKey != "" {
		payload, err := json.Marshal(response)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to encode response", err)
		}
		if err := v.idempotency.SaveResponse(ctx, params.IdempotencyKey, payload, reservation.locker); err != nil {
			logrus.Errorf("failed to cache idempotent response for key %s: %v", params.IdempotencyKey, err)
		}
	}

	return response, nil
}
