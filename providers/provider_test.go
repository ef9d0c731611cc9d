package providers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vermillionhq/vermillion/model"
)

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewRetryableError("korapay", errors.New("gateway unavailable"))))
	assert.False(t, IsRetryable(NewFatalError("korapay", errors.New("invalid destination"))))
	assert.True(t, IsRetryable(context.DeadlineExceeded))
	assert.False(t, IsRetryable(errors.New("unclassified")))

	// classification survives wrapping
	wrapped := &Error{Provider: "safehaven", Retryable: true, Err: errors.New("503")}
	assert.True(t, IsRetryable(wrapped))
}

func TestMockAdapter_Execute(t *testing.T) {
	adapter := NewMockAdapter("korapay", model.ServicePayment)

	result, err := adapter.Execute(context.Background(), &Request{
		Reference: "txn_1",
		Amount:    5000,
		Currency:  "NGN",
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "korapay_txn_1", result.ProviderTxID)
	assert.Equal(t, StatusCompleted, result.Status)

	status, err := adapter.Status(context.Background(), "txn_1")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, status)
}

func TestMockAdapter_UnknownReferencePending(t *testing.T) {
	adapter := NewMockAdapter("korapay", model.ServicePayment)

	status, err := adapter.Status(context.Background(), "txn_never_sent")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, status)
}

func TestMockAdapter_RejectsNonPositiveAmount(t *testing.T) {
	adapter := NewMockAdapter("korapay", model.ServicePayment)

	_, err := adapter.Execute(context.Background(), &Request{Reference: "txn_1", Amount: 0})
	assert.False(t, IsRetryable(err))
}

func TestExecuteWithTimeout_Expiry(t *testing.T) {
	adapter := NewMockAdapter("korapay", model.ServicePayment)
	adapter.Delay = 200 * time.Millisecond

	_, err := ExecuteWithTimeout(context.Background(), adapter, &Request{
		Reference: "txn_1",
		Amount:    5000,
	}, 20*time.Millisecond)
	require.Error(t, err)
	assert.True(t, IsRetryable(err))

	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "korapay", pe.Provider)
}

func TestExecuteWithTimeout_Success(t *testing.T) {
	adapter := NewMockAdapter("korapay", model.ServicePayment)

	result, err := ExecuteWithTimeout(context.Background(), adapter, &Request{
		Reference: "txn_1",
		Amount:    5000,
	}, time.Second)
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestMockAdapter_ConcurrentExecutes(t *testing.T) {
	adapter := NewMockAdapter("korapay", model.ServicePayment)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reference := fmt.Sprintf("txn_%d", i)
			_, err := adapter.Execute(context.Background(), &Request{
				Reference: reference,
				Amount:    5000,
			})
			assert.NoError(t, err)

			status, err := adapter.Status(context.Background(), reference)
			assert.NoError(t, err)
			assert.Equal(t, StatusCompleted, status)
		}(i)
	}
	wg.Wait()
}

func TestMockAdapter_Refund(t *testing.T) {
	adapter := NewMockAdapter("korapay", model.ServicePayment)

	result, err := adapter.Refund(context.Background(), &RefundParams{
		ProviderTxID: "korapay_txn_1",
		Amount:       5000,
		Reason:       "customer request",
	})
	require.NoError(t, err)
	assert.Equal(t, "korapay_txn_1_refund", result.ProviderTxID)
}
