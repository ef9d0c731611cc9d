package model

import (
	"encoding/json"
	"time"
)

const (
	StatusPending      = "PENDING"
	StatusCompleted    = "COMPLETED"
	StatusFailed       = "FAILED"
	StatusUnreconciled = "UNRECONCILED"
)

// Transaction is the persisted record of one orchestrated payment: the
// external provider leg plus the internal ledger movement it produced.
type Transaction struct {
	ID             int64                  `json:"-"`
	TransactionID  string                 `json:"transaction_id"`
	IdempotencyKey string                 `json:"idempotency_key"`
	ServiceType    string                 `json:"service_type"`
	ProviderID     string                 `json:"provider_id"`
	ProviderTxID   string                 `json:"provider_tx_id"`
	Source         string                 `json:"source"`
	Destination    string                 `json:"destination"`
	Amount         int64                  `json:"amount"`
	Currency       string                 `json:"currency"`
	Country        string                 `json:"country"`
	Status         string                 `json:"status"`
	Description    string                 `json:"description"`
	MetaData       map[string]interface{} `json:"meta_data,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
}

func (transaction *Transaction) ToJSON() ([]byte, error) {
	return json.Marshal(transaction)
}
