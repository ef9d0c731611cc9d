package vermillion

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	"github.com/vermillionhq/vermillion/config"
	"github.com/vermillionhq/vermillion/internal/apierror"
	redlock "github.com/vermillionhq/vermillion/internal/lock"
	"github.com/vermillionhq/vermillion/internal/notification"
	"github.com/vermillionhq/vermillion/model"
	"github.com/vermillionhq/vermillion/providers"
)

var paymentTracer = otel.Tracer("vermillion.payment")

// PaymentParams describes one orchestrated payment: an external settlement
// leg executed by a provider, mirrored by an internal movement from the
// payer's wallet to the platform settlement wallet.
type PaymentParams struct {
	IdempotencyKey      string                 `json:"idempotency_key"`
	OwnerID             string                 `json:"owner_id"`
	SourceWalletID      string                 `json:"source_wallet_id"`
	SettlementWalletID  string                 `json:"settlement_wallet_id"`
	ExternalDestination string                 `json:"external_destination"`
	Amount              int64                  `json:"amount"`
	Currency            string                 `json:"currency"`
	Country             string                 `json:"country"`
	Priority            string                 `json:"priority"`
	OperationType       model.OperationType    `json:"operation_type"`
	Description         string                 `json:"description"`
	MetaData            map[string]interface{} `json:"meta_data,omitempty"`
}

// PaymentResponse is the caller-visible outcome. It is stored verbatim
// under the idempotency key, so replays are byte-identical.
type PaymentResponse struct {
	TransactionID    string `json:"transaction_id"`
	ProviderID       string `json:"provider_id"`
	ProviderTxID     string `json:"provider_tx_id"`
	Status           string `json:"status"`
	FromBalanceAfter int64  `json:"from_balance_after"`
	ToBalanceAfter   int64  `json:"to_balance_after"`
}

func (p *PaymentParams) validate() error {
	if p.Amount <= 0 {
		return apierror.NewAPIError(apierror.ErrValidation, "Amount must be positive", p.Amount)
	}
	if p.OwnerID == "" || p.SourceWalletID == "" || p.SettlementWalletID == "" {
		return apierror.NewAPIError(apierror.ErrValidation, "Owner, source wallet and settlement wallet are required", nil)
	}
	if p.Currency == "" || p.Country == "" {
		return apierror.NewAPIError(apierror.ErrValidation, "Currency and country are required", nil)
	}
	return nil
}

// ExecutePayment runs the full orchestration: idempotency check,
// compliance gate, routing, failover execution against the payment rails,
// then the internal ledger movement, and finally response caching. A
// repeated idempotency key within the TTL returns the stored response and
// performs none of those steps again.
func (v *Vermillion) ExecutePayment(ctx context.Context, params *PaymentParams) (*PaymentResponse, error) {
	ctx, span := paymentTracer.Start(ctx, "Executing payment")
	defer span.End()

	if err := params.validate(); err != nil {
		return nil, err
	}
	if params.OperationType == "" {
		params.OperationType = model.OpCrossBorderPayment
	}

	cnf, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	var reservation = noReservation
	if params.IdempotencyKey != "" {
		if stored, err := v.idempotency.GetProcessedResponse(ctx, params.IdempotencyKey); err != nil {
			return nil, err
		} else if stored != nil {
			span.AddEvent("idempotent replay")
			var replay PaymentResponse
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

	if err := v.ValidateTransaction(ctx, params.OwnerID, params.Amount, params.OperationType); err != nil {
		reservation.release(ctx)
		return nil, err
	}

	candidates, err := v.routing.SelectProviders(SelectionRequest{
		ServiceType: model.ServicePayment,
		Country:     params.Country,
		Amount:      params.Amount,
		Currency:    params.Currency,
		Priority:    params.Priority,
	})
	if err != nil {
		reservation.release(ctx)
		return nil, err
	}

	transactionID := model.GenerateUUIDWithSuffix("txn")
	request := &providers.Request{
		Reference:   transactionID,
		Amount:      params.Amount,
		Currency:    params.Currency,
		Country:     params.Country,
		Destination: params.ExternalDestination,
		Narration:   params.Description,
		MetaData:    params.MetaData,
	}

	result, providerID, err := v.failover.ExecuteWithFailover(ctx, model.ServicePayment, candidates,
		func(ctx context.Context, adapter providers.Adapter) (*providers.Result, error) {
			return providers.ExecuteWithTimeout(ctx, adapter, request, cnf.ProviderTimeout())
		})
	if err != nil {
		reservation.release(ctx)
		return nil, err
	}

	txn := &model.Transaction{
		TransactionID:  transactionID,
		IdempotencyKey: params.IdempotencyKey,
		ServiceType:    string(model.ServicePayment),
		ProviderID:     providerID,
		ProviderTxID:   result.ProviderTxID,
		Source:         params.SourceWalletID,
		Destination:    params.SettlementWalletID,
		Amount:         params.Amount,
		Currency:       params.Currency,
		Country:        params.Country,
		Description:    params.Description,
		MetaData:       params.MetaData,
	}

	movement, err := v.RecordMovement(ctx, &model.Movement{
		FromWalletID:  params.SourceWalletID,
		ToWalletID:    params.SettlementWalletID,
		Amount:        params.Amount,
		Currency:      params.Currency,
		CorrelationID: transactionID,
		Description:   params.Description,
		MetaData:      params.MetaData,
	})
	if err != nil {
		// The provider already settled the external leg. Never auto-reverse;
		// surface the inconsistency and hand it to reconciliation. The
		// idempotency reservation is left to expire: releasing it would let
		// a client retry settle the same payment twice.
		span.RecordError(err)
		return nil, v.flagUnreconciled(ctx, txn, err)
	}

	txn.Status = model.StatusCompleted
	if _, err := v.datasource.RecordTransaction(ctx, txn); err != nil {
		logrus.Errorf("payment %s applied but transaction record failed: %v", transactionID, err)
	}

	response := &PaymentResponse{
		TransactionID:    transactionID,
		ProviderID:       providerID,
		ProviderTxID:     result.ProviderTxID,
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

// flagUnreconciled records the settled-but-unreconciled transaction,
// enqueues it for the reconciliation worker and surfaces the distinct
// error.
func (v *Vermillion) flagUnreconciled(ctx context.Context, txn *model.Transaction, cause error) error {
	txn.Status = model.StatusUnreconciled
	if _, recErr := v.datasource.RecordTransaction(ctx, txn); recErr != nil {
		logrus.Errorf("failed to record unreconciled transaction %s: %v", txn.TransactionID, recErr)
	}
	if qErr := v.queue.EnqueueReconciliation(ctx, txn); qErr != nil {
		logrus.Errorf("failed to enqueue reconciliation for %s: %v", txn.TransactionID, qErr)
	}
	notification.NotifyError(fmt.Errorf("transaction %s settled by provider %s but ledger movement failed: %v",
		txn.TransactionID, txn.ProviderID, cause))

	return apierror.NewAPIError(apierror.ErrSettledUnreconciled,
		fmt.Sprintf("Provider settled transaction %s but the ledger movement failed; queued for reconciliation", txn.TransactionID),
		cause.Error())
}

// reservationHandle pairs a reservation with its manager so failure paths
// can release it in one call.
type reservationHandle struct {
	locker      *redlock.Locker
	idempotency *Idempotency
}

func (r reservationHandle) release(ctx context.Context) {
	if r.idempotency != nil {
		r.idempotency.Release(ctx, r.locker)
	}
}

var noReservation = reservationHandle{}
