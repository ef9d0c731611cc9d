package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT = "5002"

	// DefaultRouteKey is the country key used when no country-specific
	// routing rule exists for a service type.
	DefaultRouteKey = "DEFAULT"
)

var ConfigStore atomic.Value

type ServerConfig struct {
	Port      string `json:"port" envconfig:"VERMILLION_SERVER_PORT"`
	SecretKey string `json:"secret_key" envconfig:"VERMILLION_SERVER_SECRET_KEY"`
}

type DataSourceConfig struct {
	Dns string `json:"dns" envconfig:"VERMILLION_DATA_SOURCE_DNS"`
}

type RedisConfig struct {
	Dns string `json:"dns" envconfig:"VERMILLION_REDIS_DNS"`
}

// RoutingConfig maps service type -> country code -> ordered provider ids.
// Each service type must carry a DEFAULT list used when a country has no
// rule of its own. The table is validated at load time so malformed rules
// fail at startup rather than at request time.
type RoutingConfig map[string]map[string][]string

// ProvidersForRoute resolves the ordered candidate list for a service type
// and country. The bool reports whether any rule (country or DEFAULT)
// matched.
func (r RoutingConfig) ProvidersForRoute(serviceType, country string) ([]string, bool) {
	rules, ok := r[serviceType]
	if !ok {
		return nil, false
	}
	if providers, ok := rules[strings.ToUpper(country)]; ok && len(providers) > 0 {
		return providers, true
	}
	if providers, ok := rules[DefaultRouteKey]; ok && len(providers) > 0 {
		return providers, true
	}
	return nil, false
}

type ComplianceConfig struct {
	// TierLimits keys are tier names ("tier_1"), values are max-per-transaction
	// amounts in minor units.
	TierLimits map[string]int64 `json:"tier_limits"`
	// RiskScoreThreshold is the score above which enhanced due diligence is
	// required before any movement.
	RiskScoreThreshold int `json:"risk_score_threshold" envconfig:"VERMILLION_RISK_SCORE_THRESHOLD"`
	// RestrictedOperations maps an operation type to the country codes it is
	// blocked in.
	RestrictedOperations map[string][]string `json:"restricted_operations"`
}

type FailoverConfig struct {
	// DegradeThreshold is the rolling error rate past which a provider is
	// demoted to DEGRADED.
	DegradeThreshold float64 `json:"degrade_threshold" envconfig:"VERMILLION_FAILOVER_DEGRADE_THRESHOLD"`
	// ProviderTimeoutSec bounds one external provider call. Expiry is
	// classified retryable and handed back to the failover loop.
	ProviderTimeoutSec int `json:"provider_timeout_sec" envconfig:"VERMILLION_PROVIDER_TIMEOUT_SEC"`
}

type IdempotencyConfig struct {
	TTLHours int `json:"ttl_hours" envconfig:"VERMILLION_IDEMPOTENCY_TTL_HOURS"`
}

type QueueConfig struct {
	ReconciliationQueue string `json:"reconciliation_queue"`
	MaxRetryAttempts    int    `json:"max_retry_attempts" envconfig:"VERMILLION_QUEUE_MAX_RETRY_ATTEMPTS"`
}

// RateLimitConfig gates the tollbooth limiter. Nil values disable rate
// limiting entirely.
type RateLimitConfig struct {
	RequestsPerSecond  *float64 `json:"requests_per_second"`
	Burst              *int     `json:"burst"`
	CleanupIntervalSec *int     `json:"cleanup_interval_sec"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url"`
}

type Notification struct {
	Slack   SlackWebhook `json:"slack"`
	Webhook struct {
		Url     string            `json:"url"`
		Headers map[string]string `json:"headers"`
	} `json:"webhook"`
}

type Configuration struct {
	ProjectName  string            `json:"project_name" envconfig:"VERMILLION_PROJECT_NAME"`
	Server       ServerConfig      `json:"server"`
	DataSource   DataSourceConfig  `json:"data_source"`
	Redis        RedisConfig       `json:"redis"`
	Routing      RoutingConfig     `json:"routing"`
	Compliance   ComplianceConfig  `json:"compliance"`
	Failover     FailoverConfig    `json:"failover"`
	Idempotency  IdempotencyConfig `json:"idempotency"`
	Queue        QueueConfig       `json:"queue"`
	RateLimit    RateLimitConfig   `json:"rate_limit"`
	Notification Notification      `json:"notification"`
	OtlpEndpoint string            `json:"otlp_endpoint" envconfig:"VERMILLION_OTLP_ENDPOINT"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}
	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("vermillion", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called vermillion.json with your config")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		cnf.ProjectName = "Vermillion Server"
	}

	if cnf.DataSource.Dns == "" {
		log.Println("Error: Data source DNS is empty. It's a required field.")
		return errors.New("data source DNS is required")
	}

	if cnf.Redis.Dns == "" {
		log.Println("Error: Redis DNS is empty. It's a required field.")
		return errors.New("redis DNS is required")
	}

	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)

	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	if err := cnf.Routing.validate(); err != nil {
		return err
	}

	if cnf.Compliance.RiskScoreThreshold == 0 {
		cnf.Compliance.RiskScoreThreshold = 80
	}
	if len(cnf.Compliance.TierLimits) == 0 {
		cnf.Compliance.TierLimits = map[string]int64{
			"tier_1": 100000,  // 1,000.00 in minor units
			"tier_2": 500000,  // 5,000.00
			"tier_3": 5000000, // 50,000.00
		}
	}

	if cnf.Failover.DegradeThreshold == 0 {
		cnf.Failover.DegradeThreshold = 0.5
	}
	if cnf.Failover.ProviderTimeoutSec == 0 {
		cnf.Failover.ProviderTimeoutSec = 30
	}

	if cnf.Idempotency.TTLHours == 0 {
		cnf.Idempotency.TTLHours = 24
	}

	if cnf.Queue.ReconciliationQueue == "" {
		cnf.Queue.ReconciliationQueue = "reconciliation"
	}
	if cnf.Queue.MaxRetryAttempts == 0 {
		cnf.Queue.MaxRetryAttempts = 5
	}

	return nil
}

// validate rejects malformed routing rules: empty provider lists, blank
// provider ids, or a service type with no DEFAULT fallback.
func (r RoutingConfig) validate() error {
	for serviceType, rules := range r {
		if len(rules) == 0 {
			return fmt.Errorf("routing: service type %q has no rules", serviceType)
		}
		if _, ok := rules[DefaultRouteKey]; !ok {
			log.Printf("Warning: routing for %q has no DEFAULT list; requests outside configured countries will fail", serviceType)
		}
		for country, providers := range rules {
			if len(providers) == 0 {
				return fmt.Errorf("routing: empty provider list for (%s, %s)", serviceType, country)
			}
			for _, p := range providers {
				if strings.TrimSpace(p) == "" {
					return fmt.Errorf("routing: blank provider id in (%s, %s)", serviceType, country)
				}
			}
		}
	}
	return nil
}

// IdempotencyTTL returns the configured response retention window.
func (cnf *Configuration) IdempotencyTTL() time.Duration {
	return time.Duration(cnf.Idempotency.TTLHours) * time.Hour
}

// ProviderTimeout returns the per-call provider timeout.
func (cnf *Configuration) ProviderTimeout() time.Duration {
	return time.Duration(cnf.Failover.ProviderTimeoutSec) * time.Second
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	if err := mockConfig.Routing.validate(); err != nil {
		panic(err)
	}
	if mockConfig.Compliance.RiskScoreThreshold == 0 {
		mockConfig.Compliance.RiskScoreThreshold = 80
	}
	if mockConfig.Failover.DegradeThreshold == 0 {
		mockConfig.Failover.DegradeThreshold = 0.5
	}
	if mockConfig.Failover.ProviderTimeoutSec == 0 {
		mockConfig.Failover.ProviderTimeoutSec = 30
	}
	if mockConfig.Idempotency.TTLHours == 0 {
		mockConfig.Idempotency.TTLHours = 24
	}
	if mockConfig.Queue.ReconciliationQueue == "" {
		mockConfig.Queue.ReconciliationQueue = "reconciliation"
	}
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
