/*
Copyright 2026 Vermillion Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	vermillion "github.com/vermillionhq/vermillion"
	"github.com/vermillionhq/vermillion/model"
)

// InitiatePayment is the request body for POST /payments. The idempotency
// key travels in the Idempotency-Key header, not the body.
type InitiatePayment struct {
	OwnerID             string                 `json:"owner_id"`
	SourceWalletID      string                 `json:"source_wallet_id"`
	SettlementWalletID  string                 `json:"settlement_wallet_id"`
	ExternalDestination string                 `json:"external_destination"`
	Amount              int64                  `json:"amount"`
	Currency            string                 `json:"currency"`
	Country             string                 `json:"country"`
	Priority            string                 `json:"priority"`
	OperationType       string                 `json:"operation_type"`
	Description         string                 `json:"description"`
	MetaData            map[string]interface{} `json:"meta_data"`
}

func (p *InitiatePayment) ValidateInitiatePayment() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.OwnerID, validation.Required),
		validation.Field(&p.SourceWalletID, validation.Required),
		validation.Field(&p.SettlementWalletID, validation.Required),
		validation.Field(&p.Amount, validation.Required, validation.Min(1)),
		validation.Field(&p.Currency, validation.Required, validation.Length(3, 3)),
		validation.Field(&p.Country, validation.Required, validation.Length(2, 2)),
		validation.Field(&p.Priority, validation.In("", "balanced", "fastest", "cheapest")),
	)
}

func (p *InitiatePayment) ToPaymentParams(idempotencyKey string) *vermillion.PaymentParams {
	return &vermillion.PaymentParams{
		IdempotencyKey:      idempotencyKey,
		OwnerID:             p.OwnerID,
		SourceWalletID:      p.SourceWalletID,
		SettlementWalletID:  p.SettlementWalletID,
		ExternalDestination: p.ExternalDestination,
		Amount:              p.Amount,
		Currency:            p.Currency,
		Country:             p.Country,
		Priority:            p.Priority,
		OperationType:       model.OperationType(p.OperationType),
		Description:         p.Description,
		MetaData:            p.MetaData,
	}
}

// InitiateTransfer is the request body for POST /transfers.
type InitiateTransfer struct {
	OwnerID             string                 `json:"owner_id"`
	SourceWalletID      string                 `json:"source_wallet_id"`
	DestinationWalletID string                 `json:"destination_wallet_id"`
	Amount              int64                  `json:"amount"`
	Currency            string                 `json:"currency"`
	Description         string                 `json:"description"`
	MetaData            map[string]interface{} `json:"meta_data"`
}

func (t *InitiateTransfer) ValidateInitiateTransfer() error {
	return validation.ValidateStruct(t,
		validation.Field(&t.OwnerID, validation.Required),
		validation.Field(&t.SourceWalletID, validation.Required),
		validation.Field(&t.DestinationWalletID, validation.Required),
		validation.Field(&t.Amount, validation.Required, validation.Min(1)),
		validation.Field(&t.Currency, validation.Required, validation.Length(3, 3)),
	)
}

func (t *InitiateTransfer) ToTransferParams(idempotencyKey string) *vermillion.TransferParams {
	return &vermillion.TransferParams{
		IdempotencyKey:      idempotencyKey,
		OwnerID:             t.OwnerID,
		SourceWalletID:      t.SourceWalletID,
		DestinationWalletID: t.DestinationWalletID,
		Amount:              t.Amount,
		Currency:            t.Currency,
		Description:         t.Description,
		MetaData:            t.MetaData,
	}
}

// CreateWallet is the request body for POST /wallets.
type CreateWallet struct {
	OwnerID  string                 `json:"owner_id"`
	Currency string                 `json:"currency"`
	Type     string                 `json:"wallet_type"`
	MetaData map[string]interface{} `json:"meta_data"`
}

func (w *CreateWallet) ValidateCreateWallet() error {
	return validation.ValidateStruct(w,
		validation.Field(&w.OwnerID, validation.Required),
		validation.Field(&w.Currency, validation.Required, validation.Length(3, 3)),
		validation.Field(&w.Type, validation.In("", string(model.WalletTypeStandard), string(model.WalletTypeLiquidity), string(model.WalletTypeEscrow))),
	)
}

func (w *CreateWallet) ToWallet() model.Wallet {
	walletType := model.WalletType(w.Type)
	if walletType == "" {
		walletType = model.WalletTypeStandard
	}
	return model.Wallet{
		OwnerID:  w.OwnerID,
		Currency: w.Currency,
		Type:     walletType,
		Active:   true,
		MetaData: w.MetaData,
	}
}

// UpsertComplianceProfile is the request body for PUT /compliance/:owner_id.
type UpsertComplianceProfile struct {
	Tier      string `json:"tier"`
	Active    bool   `json:"active"`
	RiskScore int    `json:"risk_score"`
	Country   string `json:"country"`
}

func (c *UpsertComplianceProfile) ValidateUpsertComplianceProfile() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Tier, validation.Required),
		validation.Field(&c.RiskScore, validation.Min(0), validation.Max(100)),
		validation.Field(&c.Country, validation.Required, validation.Length(2, 2)),
	)
}

// UpdateProviderState is the request body for PUT /providers/:id/state.
// Only SUSPENDED and HEALTHY may be set by hand; DEGRADED is earned from
// traffic.
type UpdateProviderState struct {
	ServiceType string `json:"service_type"`
	State       string `json:"state"`
}

func (u *UpdateProviderState) ValidateUpdateProviderState() error {
	return validation.ValidateStruct(u,
		validation.Field(&u.ServiceType, validation.Required),
		validation.Field(&u.State, validation.Required, validation.In(string(model.HealthSuspended), string(model.HealthHealthy))),
	)
}
