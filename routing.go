package vermillion

import (
	"fmt"

	"github.com/vermillionhq/vermillion/config"
	"github.com/vermillionhq/vermillion/internal/apierror"
	"github.com/vermillionhq/vermillion/model"
)

// Priority hints accepted on a selection request. The baseline behavior is
// "first healthy provider in configured order"; hints are recorded for
// future ranking strategies but do not reorder candidates yet.
const (
	PriorityBalanced = "balanced"
	PriorityFastest  = "fastest"
	PriorityCheapest = "cheapest"
)

// SelectionRequest describes the payment a route is needed for.
type SelectionRequest struct {
	ServiceType model.ServiceType
	Country     string
	Amount      int64
	Currency    string
	Priority    string
}

// RoutingEngine resolves ranked candidate-provider lists from the typed
// routing table and the registry's health view. It performs no I/O and is
// safe to call synchronously on the request path.
type RoutingEngine struct {
	registry *Registry
}

func NewRoutingEngine(registry *Registry) *RoutingEngine {
	return &RoutingEngine{registry: registry}
}

// SelectProviders returns the ordered candidates for the request, with
// unregistered and suspended providers filtered out.
func (e *RoutingEngine) SelectProviders(req SelectionRequest) ([]string, error) {
	cnf, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	configured, ok := cnf.Routing.ProvidersForRoute(string(req.ServiceType), req.Country)
	if !ok {
		return nil, apierror.NewAPIError(apierror.ErrNoRouteConfigured,
			fmt.Sprintf("no routing rule for service type %s in %s", req.ServiceType, req.Country), nil)
	}

	registered := make(map[string]bool)
	for _, id := range e.registry.ListProviders(req.ServiceType) {
		registered[id] = true
	}

	candidates := make([]string, 0, len(configured))
	for _, id := range configured {
		if !registered[id] {
			continue
		}
		if e.registry.isSuspended(id) {
			continue
		}
		candidates = append(candidates, id)
	}

	if len(candidates) == 0 {
		return nil, apierror.NewAPIError(apierror.ErrNoProviderAvailable,
			fmt.Sprintf("no healthy provider for service type %s in %s", req.ServiceType, req.Country), nil)
	}
	return candidates, nil
}
