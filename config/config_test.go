package config

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, cnf map[string]interface{}) string {
	t.Helper()
	data, err := json.Marshal(cnf)
	require.NoError(t, err)

	f, err := os.CreateTemp(t.TempDir(), "vermillion-*.json")
	require.NoError(t, err)
	_, err = f.Write(data)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}

func minimalConfig() map[string]interface{} {
	return map[string]interface{}{
		"data_source": map[string]string{"dns": "postgres://localhost:5432/vermillion"},
		"redis":       map[string]string{"dns": "redis://localhost:6379"},
	}
}

func TestInitConfig_AppliesDefaults(t *testing.T) {
	file := writeConfigFile(t, minimalConfig())
	require.NoError(t, InitConfig(file))

	cnf, err := Fetch()
	require.NoError(t, err)

	assert.Equal(t, DEFAULT_PORT, cnf.Server.Port)
	assert.Equal(t, 80, cnf.Compliance.RiskScoreThreshold)
	assert.Equal(t, int64(100000), cnf.Compliance.TierLimits["tier_1"])
	assert.Equal(t, 0.5, cnf.Failover.DegradeThreshold)
	assert.Equal(t, 30*time.Second, cnf.ProviderTimeout())
	assert.Equal(t, 24*time.Hour, cnf.IdempotencyTTL())
	assert.Equal(t, "reconciliation", cnf.Queue.ReconciliationQueue)
	assert.Equal(t, 5, cnf.Queue.MaxRetryAttempts)
}

func TestInitConfig_RequiresDataSource(t *testing.T) {
	file := writeConfigFile(t, map[string]interface{}{
		"redis": map[string]string{"dns": "redis://localhost:6379"},
	})
	assert.Error(t, InitConfig(file))
}

func TestInitConfig_RequiresRedis(t *testing.T) {
	file := writeConfigFile(t, map[string]interface{}{
		"data_source": map[string]string{"dns": "postgres://localhost:5432/vermillion"},
	})
	assert.Error(t, InitConfig(file))
}

func TestInitConfig_RejectsEmptyProviderList(t *testing.T) {
	cnf := minimalConfig()
	cnf["routing"] = map[string]map[string][]string{
		"payment": {"NG": {}},
	}
	file := writeConfigFile(t, cnf)
	assert.Error(t, InitConfig(file))
}

func TestInitConfig_RejectsBlankProviderID(t *testing.T) {
	cnf := minimalConfig()
	cnf["routing"] = map[string]map[string][]string{
		"payment": {"DEFAULT": {"korapay", "  "}},
	}
	file := writeConfigFile(t, cnf)
	assert.Error(t, InitConfig(file))
}

func TestProvidersForRoute(t *testing.T) {
	routing := RoutingConfig{
		"payment": {
			"NG":            {"korapay", "safehaven"},
			DefaultRouteKey: {"safehaven"},
		},
	}

	providers, ok := routing.ProvidersForRoute("payment", "NG")
	require.True(t, ok)
	assert.Equal(t, []string{"korapay", "safehaven"}, providers)

	// lowercase country codes resolve too
	providers, ok = routing.ProvidersForRoute("payment", "ng")
	require.True(t, ok)
	assert.Equal(t, []string{"korapay", "safehaven"}, providers)

	// unknown country falls back to DEFAULT
	providers, ok = routing.ProvidersForRoute("payment", "GH")
	require.True(t, ok)
	assert.Equal(t, []string{"safehaven"}, providers)

	// unknown service type has no route
	_, ok = routing.ProvidersForRoute("bill-payment", "NG")
	assert.False(t, ok)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("VERMILLION_SERVER_PORT", "6100")
	file := writeConfigFile(t, minimalConfig())
	require.NoError(t, InitConfig(file))

	cnf, err := Fetch()
	require.NoError(t, err)
	assert.Equal(t, "6100", cnf.Server.Port)
}
