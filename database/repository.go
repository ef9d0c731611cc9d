package database

import (
	"context"
	"database/sql"

	"github.com/vermillionhq/vermillion/model"
)

type wallet interface {
	CreateWallet(ctx context.Context, wallet model.Wallet) (model.Wallet, error)
	GetWallet(ctx context.Context, walletID string) (*model.Wallet, error)
	GetWalletsByOwner(ctx context.Context, ownerID string) ([]model.Wallet, error)
}

type ledger interface {
	RecordMovement(ctx context.Context, movement *model.Movement) (*model.MovementResult, error)
	RecordMovementInTx(ctx context.Context, tx *sql.Tx, movement *model.Movement) (*model.MovementResult, error)
	GetEntriesByTransaction(ctx context.Context, transactionID string) ([]model.LedgerEntry, error)
}

type transaction interface {
	RecordTransaction(ctx context.Context, txn *model.Transaction) (*model.Transaction, error)
	GetTransaction(ctx context.Context, transactionID string) (*model.Transaction, error)
	UpdateTransactionStatus(ctx context.Context, transactionID string, status string) error
	GetUnreconciledTransactions(ctx context.Context, limit int) ([]model.Transaction, error)
}

type compliance interface {
	GetComplianceProfile(ctx context.Context, ownerID string) (*model.ComplianceProfile, error)
	UpsertComplianceProfile(ctx context.Context, profile model.ComplianceProfile) error
}

type IDataSource interface {
	wallet
	ledger
	transaction
	compliance
}
