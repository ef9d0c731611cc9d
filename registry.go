package vermillion

import (
	"fmt"
	"sync"
	"time"

	"github.com/vermillionhq/vermillion/internal/apierror"
	"github.com/vermillionhq/vermillion/model"
	"github.com/vermillionhq/vermillion/providers"
)

// ewmaAlpha weights the most recent call outcome in the rolling error rate.
const ewmaAlpha = 0.2

type registryKey struct {
	serviceType model.ServiceType
	providerID  string
}

// Registry holds the adapters registered for each service type and the
// rolling health of every provider. It is an explicitly constructed,
// injected instance; health state is shared mutable data touched by every
// concurrent request, so all access goes through the mutex.
type Registry struct {
	mu       sync.RWMutex
	adapters map[registryKey]providers.Adapter
	order    map[model.ServiceType][]string
	health   map[string]*model.ProviderHealth
}

func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[registryKey]providers.Adapter),
		order:    make(map[model.ServiceType][]string),
		health:   make(map[string]*model.ProviderHealth),
	}
}

// Register binds an adapter under (serviceType, providerID) and initializes
// its health to healthy with a zero error rate.
func (r *Registry) Register(serviceType model.ServiceType, providerID string, adapter providers.Adapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := registryKey{serviceType: serviceType, providerID: providerID}
	if _, exists := r.adapters[key]; exists {
		return apierror.NewAPIError(apierror.ErrConflict, fmt.Sprintf("provider %s already registered for %s", providerID, serviceType), nil)
	}

	r.adapters[key] = adapter
	r.order[serviceType] = append(r.order[serviceType], providerID)
	r.health[providerID] = &model.ProviderHealth{
		ProviderID:  providerID,
		ServiceType: serviceType,
		State:       model.HealthHealthy,
		ErrorRate:   0,
		UpdatedAt:   time.Now(),
	}
	return nil
}

func (r *Registry) GetAdapter(serviceType model.ServiceType, providerID string) (providers.Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	adapter, ok := r.adapters[registryKey{serviceType: serviceType, providerID: providerID}]
	if !ok {
		return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("no adapter for provider %s under %s", providerID, serviceType), nil)
	}
	return adapter, nil
}

// ListProviders returns provider ids for a service type in registration
// order.
func (r *Registry) ListProviders(serviceType model.ServiceType) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, len(r.order[serviceType]))
	copy(ids, r.order[serviceType])
	return ids
}

// HealthDelta carries a partial health update; nil fields are left as-is.
type HealthDelta struct {
	State     *model.HealthState
	ErrorRate *float64
	LastError string
}

// UpdateHealth merges delta into the provider's health record.
func (r *Registry) UpdateHealth(providerID string, delta HealthDelta) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	health, ok := r.health[providerID]
	if !ok {
		return apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("no health record for provider %s", providerID), nil)
	}
	if delta.State != nil {
		health.State = *delta.State
	}
	if delta.ErrorRate != nil {
		health.ErrorRate = *delta.ErrorRate
	}
	if delta.LastError != "" {
		health.LastError = delta.LastError
	}
	health.UpdatedAt = time.Now()
	return nil
}

// GetHealth returns a copy of the provider's health record.
func (r *Registry) GetHealth(providerID string) (model.ProviderHealth, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	health, ok := r.health[providerID]
	if !ok {
		return model.ProviderHealth{}, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("no health record for provider %s", providerID), nil)
	}
	return *health, nil
}

// AllHealth returns a snapshot of every provider's health, for the health
// endpoint.
func (r *Registry) AllHealth() []model.ProviderHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.ProviderHealth, 0, len(r.health))
	for _, serviceOrder := range r.order {
		for _, id := range serviceOrder {
			if h, ok := r.health[id]; ok {
				out = append(out, *h)
			}
		}
	}
	return out
}

// recordSuccess decays the provider's error rate toward zero. A degraded
// provider recovers to healthy once its rate falls back under the
// threshold.
func (r *Registry) recordSuccess(providerID string, degradeThreshold float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	health, ok := r.health[providerID]
	if !ok {
		return
	}
	health.ErrorRate = health.ErrorRate * (1 - ewmaAlpha)
	if health.State == model.HealthDegraded && health.ErrorRate <= degradeThreshold {
		health.State = model.HealthHealthy
	}
	health.UpdatedAt = time.Now()
}

// recordFailure raises the provider's error rate and demotes it to degraded
// once the rate crosses the threshold. Suspension is an operator action,
// never automatic.
func (r *Registry) recordFailure(providerID string, callErr error, degradeThreshold float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	health, ok := r.health[providerID]
	if !ok {
		return
	}
	health.ErrorRate = health.ErrorRate*(1-ewmaAlpha) + ewmaAlpha
	if callErr != nil {
		health.LastError = callErr.Error()
	}
	if health.State == model.HealthHealthy && health.ErrorRate > degradeThreshold {
		health.State = model.HealthDegraded
	}
	health.UpdatedAt = time.Now()
}

// isSuspended reports whether the provider is currently suspended.
func (r *Registry) isSuspended(providerID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	health, ok := r.health[providerID]
	return ok && health.State == model.HealthSuspended
}
