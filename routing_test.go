package vermillion

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vermillionhq/vermillion/config"
	"github.com/vermillionhq/vermillion/internal/apierror"
	"github.com/vermillionhq/vermillion/model"
	"github.com/vermillionhq/vermillion/providers"
)

func routingTestConfig() *config.Configuration {
	return &config.Configuration{
		DataSource: config.DataSourceConfig{Dns: "postgres://test"},
		Redis:      config.RedisConfig{Dns: "localhost:6379"},
		Routing: config.RoutingConfig{
			"payment": {
				"NG":      []string{"korapay", "safehaven"},
				"DEFAULT": []string{"safehaven"},
			},
			"bill-payment": {
				"DEFAULT": []string{"reloadly"},
			},
		},
	}
}

func newRoutingFixture(t *testing.T) (*RoutingEngine, *Registry) {
	t.Helper()
	config.MockConfig(routingTestConfig())

	registry := NewRegistry()
	for _, adapter := range providers.DefaultAdapters() {
		assert.NoError(t, registry.Register(adapter.ServiceType(), adapter.Name(), adapter))
	}
	return NewRoutingEngine(registry), registry
}

func TestSelectProviders_CountryRule(t *testing.T) {
	engine, _ := newRoutingFixture(t)

	candidates, err := engine.SelectProviders(SelectionRequest{
		ServiceType: model.ServicePayment,
		Country:     "NG",
		Amount:      5000,
		Currency:    "NGN",
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{"korapay", "safehaven"}, candidates)
}

func TestSelectProviders_DefaultFallback(t *testing.T) {
	engine, _ := newRoutingFixture(t)

	candidates, err := engine.SelectProviders(SelectionRequest{
		ServiceType: model.ServicePayment,
		Country:     "GH",
		Amount:      5000,
		Currency:    "GHS",
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{"safehaven"}, candidates)
}

func TestSelectProviders_NoRoute(t *testing.T) {
	engine, _ := newRoutingFixture(t)

	_, err := engine.SelectProviders(SelectionRequest{
		ServiceType: model.ServiceCardIssuance,
		Country:     "NG",
		Amount:      5000,
		Currency:    "NGN",
	})
	assert.Equal(t, apierror.ErrNoRouteConfigured, apierror.CodeOf(err))
}

func TestSelectProviders_FiltersSuspended(t *testing.T) {
	engine, registry := newRoutingFixture(t)

	suspended := model.HealthSuspended
	assert.NoError(t, registry.UpdateHealth("korapay", HealthDelta{State: &suspended}))

	candidates, err := engine.SelectProviders(SelectionRequest{
		ServiceType: model.ServicePayment,
		Country:     "NG",
		Amount:      5000,
		Currency:    "NGN",
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{"safehaven"}, candidates)
}

func TestSelectProviders_DegradedStaysEligible(t *testing.T) {
	engine, registry := newRoutingFixture(t)

	degraded := model.HealthDegraded
	assert.NoError(t, registry.UpdateHealth("korapay", HealthDelta{State: &degraded}))

	candidates, err := engine.SelectProviders(SelectionRequest{
		ServiceType: model.ServicePayment,
		Country:     "NG",
		Amount:      5000,
		Currency:    "NGN",
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{"korapay", "safehaven"}, candidates)
}

func TestSelectProviders_AllSuspended(t *testing.T) {
	engine, registry := newRoutingFixture(t)

	suspended := model.HealthSuspended
	assert.NoError(t, registry.UpdateHealth("korapay", HealthDelta{State: &suspended}))
	assert.NoError(t, registry.UpdateHealth("safehaven", HealthDelta{State: &suspended}))

	_, err := engine.SelectProviders(SelectionRequest{
		ServiceType: model.ServicePayment,
		Country:     "NG",
		Amount:      5000,
		Currency:    "NGN",
	})
	assert.Equal(t, apierror.ErrNoProviderAvailable, apierror.CodeOf(err))
}

func TestSelectProviders_SkipsUnregistered(t *testing.T) {
	config.MockConfig(&config.Configuration{
		DataSource: config.DataSourceConfig{Dns: "postgres://test"},
		Redis:      config.RedisConfig{Dns: "localhost:6379"},
		Routing: config.RoutingConfig{
			"payment": {
				"DEFAULT": []string{"ghost-psp", "korapay"},
			},
		},
	})

	registry := NewRegistry()
	assert.NoError(t, registry.Register(model.ServicePayment, "korapay", providers.NewMockAdapter("korapay", model.ServicePayment)))
	engine := NewRoutingEngine(registry)

	candidates, err := engine.SelectProviders(SelectionRequest{
		ServiceType: model.ServicePayment,
		Country:     "NG",
		Amount:      5000,
		Currency:    "NGN",
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{"korapay"}, candidates)
}
