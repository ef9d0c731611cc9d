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
package mocks

import (
	"context"
	"database/sql"

	"github.com/stretchr/testify/mock"

	"github.com/vermillionhq/vermillion/model"
)

// MockDataSource is a mock implementation of the IDataSource interface
type MockDataSource struct {
	mock.Mock
}

// Wallet methods

func (m *MockDataSource) CreateWallet(ctx context.Context, wallet model.Wallet) (model.Wallet, error) {
	args := m.Called(ctx, wallet)
	return args.Get(0).(model.Wallet), args.Error(1)
}

func (m *MockDataSource) GetWallet(ctx context.Context, walletID string) (*model.Wallet, error) {
	args := m.Called(ctx, walletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Wallet), args.Error(1)
}

func (m *MockDataSource) GetWalletsByOwner(ctx context.Context, ownerID string) ([]model.Wallet, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Wallet), args.Error(1)
}

// Ledger methods

func (m *MockDataSource) RecordMovement(ctx context.Context, movement *model.Movement) (*model.MovementResult, error) {
	args := m.Called(ctx, movement)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MovementResult), args.Error(1)
}

func (m *MockDataSource) RecordMovementInTx(ctx context.Context, tx *sql.Tx, movement *model.Movement) (*model.MovementResult, error) {
	args := m.Called(ctx, tx, movement)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MovementResult), args.Error(1)
}

func (m *MockDataSource) GetEntriesByTransaction(ctx context.Context, transactionID string) ([]model.LedgerEntry, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.LedgerEntry), args.Error(1)
}

// Transaction methods

func (m *MockDataSource) RecordTransaction(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	args := m.Called(ctx, txn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockDataSource) GetTransaction(ctx context.Context, transactionID string) (*model.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockDataSource) UpdateTransactionStatus(ctx context.Context, transactionID string, status string) error {
	args := m.Called(ctx, transactionID, status)
	return args.Error(0)
}

func (m *MockDataSource) GetUnreconciledTransactions(ctx context.Context, limit int) ([]model.Transaction, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Transaction), args.Error(1)
}

// Compliance methods

func (m *MockDataSource) GetComplianceProfile(ctx context.Context, ownerID string) (*model.ComplianceProfile, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ComplianceProfile), args.Error(1)
}

func (m *MockDataSource) UpsertComplianceProfile(ctx context.Context, profile model.ComplianceProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}
