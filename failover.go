package vermillion

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vermillionhq/vermillion/config"
	"github.com/vermillionhq/vermillion/internal/apierror"
	"github.com/vermillionhq/vermillion/model"
	"github.com/vermillionhq/vermillion/providers"
)

var failoverTracer = otel.Tracer("vermillion.failover")

// Operation is the caller-supplied call executed against each candidate
// adapter.
type Operation func(ctx context.Context, adapter providers.Adapter) (*providers.Result, error)

// FailoverManager runs an operation against ranked candidates in order,
// moving to the next candidate only on retryable failures. Candidates are
// tried strictly sequentially and each at most once per invocation, because
// a provider call may not be idempotent on the provider's side.
type FailoverManager struct {
	registry *Registry
}

func NewFailoverManager(registry *Registry) *FailoverManager {
	return &FailoverManager{registry: registry}
}

// ExecuteWithFailover walks candidates in order. Success decays the
// candidate's error rate and returns immediately. A retryable failure
// raises the rate (degrading past the configured threshold) and moves on.
// A fatal failure propagates at once: it indicts the request, not the
// provider. Exhaustion surfaces ALL_PROVIDERS_FAILED wrapping the last
// observed error.
func (f *FailoverManager) ExecuteWithFailover(ctx context.Context, serviceType model.ServiceType, candidates []string, op Operation) (*providers.Result, string, error) {
	ctx, span := failoverTracer.Start(ctx, "Executing with failover", trace.WithAttributes())
	defer span.End()

	cnf, err := config.Fetch()
	if err != nil {
		return nil, "", err
	}
	threshold := cnf.Failover.DegradeThreshold

	var lastErr error
	tried := make(map[string]bool)

	for _, providerID := range candidates {
		if tried[providerID] {
			continue
		}
		tried[providerID] = true

		if f.registry.isSuspended(providerID) {
			continue
		}

		adapter, err := f.registry.GetAdapter(serviceType, providerID)
		if err != nil {
			logrus.Warnf("failover: candidate %s not registered for %s, skipping", providerID, serviceType)
			continue
		}

		span.AddEvent(fmt.Sprintf("trying provider %s", providerID))
		result, err := op(ctx, adapter)
		if err == nil {
			f.registry.recordSuccess(providerID, threshold)
			return result, providerID, nil
		}

		if providers.IsRetryable(err) {
			f.registry.recordFailure(providerID, err, threshold)
			logrus.WithFields(logrus.Fields{
				"provider":     providerID,
				"service_type": serviceType,
			}).Warnf("failover: retryable failure, trying next candidate: %v", err)
			lastErr = err
			continue
		}

		// Fatal: the request itself is invalid, so the provider's health
		// is left alone. No further candidates.
		span.RecordError(err)
		return nil, providerID, err
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no candidate was attempted")
	}
	span.RecordError(lastErr)
	return nil, "", apierror.NewAPIError(apierror.ErrAllProvidersFailed,
		fmt.Sprintf("all providers exhausted for %s", serviceType), lastErr.Error())
}
