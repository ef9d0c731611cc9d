package providers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vermillionhq/vermillion/model"
)

// MockAdapter simulates a settlement provider. Real integrations live
// behind the same interface; the simulation keeps the orchestration layer
// honest about classification without calling external rails.
type MockAdapter struct {
	name        string
	serviceType model.ServiceType

	// FailWith forces every Execute to fail with the given classified
	// error until cleared.
	FailWith *Error
	// Delay is injected before responding, to exercise call timeouts.
	Delay time.Duration

	// mu guards statuses; Execute and Status run on concurrent requests.
	mu       sync.Mutex
	statuses map[string]TxStatus
}

func NewMockAdapter(name string, serviceType model.ServiceType) *MockAdapter {
	return &MockAdapter{
		name:        name,
		serviceType: serviceType,
		statuses:    make(map[string]TxStatus),
	}
}

func (m *MockAdapter) Name() string { return m.name }

func (m *MockAdapter) ServiceType() model.ServiceType { return m.serviceType }

func (m *MockAdapter) Execute(ctx context.Context, req *Request) (*Result, error) {
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if m.FailWith != nil {
		return nil, m.FailWith
	}

	if req.Amount <= 0 {
		return nil, NewFatalError(m.name, errors.New("amount must be positive"))
	}

	providerTxID := m.name + "_" + req.Reference
	m.mu.Lock()
	m.statuses[req.Reference] = StatusCompleted
	m.mu.Unlock()

	return &Result{
		Success:      true,
		ProviderTxID: providerTxID,
		Status:       StatusCompleted,
		Raw: map[string]interface{}{
			"provider":  m.name,
			"reference": req.Reference,
			"narration": req.Narration,
		},
	}, nil
}

func (m *MockAdapter) Status(_ context.Context, reference string) (TxStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	status, ok := m.statuses[reference]
	if !ok {
		return StatusPending, nil
	}
	return status, nil
}

func (m *MockAdapter) Refund(_ context.Context, params *RefundParams) (*Result, error) {
	if params.Amount <= 0 {
		return nil, NewFatalError(m.name, errors.New("refund amount must be positive"))
	}
	return &Result{
		Success:      true,
		ProviderTxID: params.ProviderTxID + "_refund",
		Status:       StatusCompleted,
	}, nil
}

// DefaultAdapters returns the provider set registered at process start:
// two payment rails, a card issuer and a utility biller.
func DefaultAdapters() []*MockAdapter {
	return []*MockAdapter{
		NewMockAdapter("korapay", model.ServicePayment),
		NewMockAdapter("safehaven", model.ServicePayment),
		NewMockAdapter("sudo", model.ServiceCardIssuance),
		NewMockAdapter("reloadly", model.ServiceBillPayment),
	}
}
