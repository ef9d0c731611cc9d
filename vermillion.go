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

package vermillion

import (
	"context"
	"embed"

	"github.com/redis/go-redis/v9"

	"github.com/vermillionhq/vermillion/config"
	"github.com/vermillionhq/vermillion/database"
	redis_db "github.com/vermillionhq/vermillion/internal/redis-db"
	"github.com/vermillionhq/vermillion/model"
	"github.com/vermillionhq/vermillion/providers"
)

// Vermillion composes the payment orchestration core: provider registry,
// routing, failover, ledger, compliance gate, idempotency manager and the
// reconciliation queue. Every collaborator is an explicitly constructed,
// injected instance so tests can run against isolated copies.
type Vermillion struct {
	datasource  database.IDataSource
	redis       redis.UniversalClient
	registry    *Registry
	routing     *RoutingEngine
	failover    *FailoverManager
	idempotency *Idempotency
	queue       *Queue
}

//go:embed sql/*.sql
var SQLFiles embed.FS

// NewVermillion wires the core from the loaded configuration and registers
// the default provider adapters. Provider health starts from a clean slate
// on every boot; the failover loop re-learns error rates from live traffic.
func NewVermillion(db database.IDataSource) (*Vermillion, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	redisClient, err := redis_db.NewRedisClient([]string{configuration.Redis.Dns})
	if err != nil {
		return nil, err
	}

	registry := NewRegistry()
	for _, adapter := range providers.DefaultAdapters() {
		if err := registry.Register(adapter.ServiceType(), adapter.Name(), adapter); err != nil {
			return nil, err
		}
	}

	idempotency, err := NewIdempotency(redisClient.Client())
	if err != nil {
		return nil, err
	}

	v := &Vermillion{
		datasource:  db,
		redis:       redisClient.Client(),
		registry:    registry,
		routing:     NewRoutingEngine(registry),
		failover:    NewFailoverManager(registry),
		idempotency: idempotency,
		queue:       NewQueue(configuration),
	}
	return v, nil
}

// Registry exposes the provider registry, for registration of additional
// adapters and for the health endpoint.
func (v *Vermillion) Registry() *Registry {
	return v.registry
}

// GetWallet fetches a wallet by id.
func (v *Vermillion) GetWallet(ctx context.Context, walletID string) (*model.Wallet, error) {
	return v.datasource.GetWallet(ctx, walletID)
}

// CreateWallet provisions a new wallet. Wallets are created once and only
// mutated by the ledger service afterwards.
func (v *Vermillion) CreateWallet(ctx context.Context, wallet model.Wallet) (model.Wallet, error) {
	return v.datasource.CreateWallet(ctx, wallet)
}

// GetTransaction fetches a recorded payment transaction.
func (v *Vermillion) GetTransaction(ctx context.Context, transactionID string) (*model.Transaction, error) {
	return v.datasource.GetTransaction(ctx, transactionID)
}

// GetWalletsByOwner lists all wallets belonging to an owner.
func (v *Vermillion) GetWalletsByOwner(ctx context.Context, ownerID string) ([]model.Wallet, error) {
	return v.datasource.GetWalletsByOwner(ctx, ownerID)
}

// GetComplianceProfile fetches the owner's compliance profile.
func (v *Vermillion) GetComplianceProfile(ctx context.Context, ownerID string) (*model.ComplianceProfile, error) {
	return v.datasource.GetComplianceProfile(ctx, ownerID)
}

// UpsertComplianceProfile creates or replaces the owner's compliance
// profile.
func (v *Vermillion) UpsertComplianceProfile(ctx context.Context, profile model.ComplianceProfile) error {
	return v.datasource.UpsertComplianceProfile(ctx, profile)
}
