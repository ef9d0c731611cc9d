package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vermillionhq/vermillion/model"
)

type TxStatus string

const (
	StatusPending   TxStatus = "PENDING"
	StatusCompleted TxStatus = "COMPLETED"
	StatusFailed    TxStatus = "FAILED"
)

// Request is the normalized payload handed to an adapter. Amount is in
// minor units of Currency.
type Request struct {
	Reference   string                 `json:"reference"`
	Amount      int64                  `json:"amount"`
	Currency    string                 `json:"currency"`
	Country     string                 `json:"country"`
	Destination string                 `json:"destination"`
	Narration   string                 `json:"narration"`
	MetaData    map[string]interface{} `json:"meta_data,omitempty"`
}

// Result is the normalized outcome of a provider call. Raw carries the
// untranslated provider response for audit trails.
type Result struct {
	Success      bool                   `json:"success"`
	ProviderTxID string                 `json:"provider_tx_id"`
	Status       TxStatus               `json:"status"`
	Raw          map[string]interface{} `json:"raw,omitempty"`
}

// RefundParams identifies a settled provider transaction to reverse.
type RefundParams struct {
	ProviderTxID string `json:"provider_tx_id"`
	Amount       int64  `json:"amount"`
	Reason       string `json:"reason"`
}

// Adapter is the capability every settlement provider integration must
// implement. Errors crossing this boundary must already be classified
// retryable or fatal; callers never inspect provider-specific shapes.
type Adapter interface {
	Name() string
	ServiceType() model.ServiceType
	Execute(ctx context.Context, req *Request) (*Result, error)
	Status(ctx context.Context, reference string) (TxStatus, error)
}

// Refunder is implemented by adapters whose provider supports reversals.
type Refunder interface {
	Refund(ctx context.Context, params *RefundParams) (*Result, error)
}

// Error is a classified provider failure. Retryable failures (timeouts,
// 5xx-equivalents) let the failover manager move to the next candidate;
// fatal failures (bad request, auth, business rejection) abort the request.
type Error struct {
	Provider  string
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	kind := "fatal"
	if e.Retryable {
		kind = "retryable"
	}
	return fmt.Sprintf("provider %s: %s: %v", e.Provider, kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewRetryableError(provider string, err error) *Error {
	return &Error{Provider: provider, Retryable: true, Err: err}
}

func NewFatalError(provider string, err error) *Error {
	return &Error{Provider: provider, Retryable: false, Err: err}
}

// IsRetryable reports whether err is a classified retryable provider error.
// Deadline expiry counts as retryable: a timed-out call tells us nothing
// about the request itself, only about the provider.
func IsRetryable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}

// ExecuteWithTimeout runs one Execute call bounded by timeout. Expiry is
// returned as a retryable classified error.
func ExecuteWithTimeout(ctx context.Context, adapter Adapter, req *Request, timeout time.Duration) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := adapter.Execute(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, NewRetryableError(adapter.Name(), fmt.Errorf("call timed out after %s", timeout))
		}
		return nil, err
	}
	return result, nil
}
