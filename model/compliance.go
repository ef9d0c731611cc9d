package model

import (
	"time"
)

// OperationType tags the kind of money movement being gated.
type OperationType string

const (
	OpCrossBorderPayment OperationType = "CROSS_BORDER_PAYMENT"
	OpInternalTransfer   OperationType = "INTERNAL_TRANSFER"
	OpBillPayment        OperationType = "BILL_PAYMENT"
	OpCardFunding        OperationType = "CARD_FUNDING"
)

// ComplianceProfile is the owner state the compliance gate evaluates. It is
// read fresh on every request and never cached, because tier, risk and
// restriction state can change between calls.
type ComplianceProfile struct {
	OwnerID   string    `json:"owner_id"`
	Tier      string    `json:"tier"`
	Active    bool      `json:"active"`
	RiskScore int       `json:"risk_score"`
	Country   string    `json:"country"`
	UpdatedAt time.Time `json:"updated_at"`
}
