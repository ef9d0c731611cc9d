package model

import (
	"time"
)

// ServiceType groups providers by the settlement capability they offer.
type ServiceType string

const (
	ServicePayment      ServiceType = "payment"
	ServiceCardIssuance ServiceType = "card-issuance"
	ServiceBillPayment  ServiceType = "bill-payment"
)

type HealthState string

const (
	HealthHealthy   HealthState = "HEALTHY"
	HealthDegraded  HealthState = "DEGRADED"
	HealthSuspended HealthState = "SUSPENDED"
)

// ProviderHealth tracks the rolling outcome of calls against one provider.
// It lives only in process memory; every provider starts healthy on boot
// and the failover loop re-learns error rates from live traffic.
type ProviderHealth struct {
	ProviderID  string      `json:"provider_id"`
	ServiceType ServiceType `json:"service_type"`
	State       HealthState `json:"state"`
	ErrorRate   float64     `json:"error_rate"`
	LastError   string      `json:"last_error,omitempty"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
