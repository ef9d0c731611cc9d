package model

import (
	"time"
)

type EntryKind string

const (
	EntryDebit  EntryKind = "DEBIT"
	EntryCredit EntryKind = "CREDIT"
)

// LedgerEntry is an immutable record of one side of a fund movement. Every
// movement produces exactly two entries, a debit and a credit of equal
// amount on different wallets. Entries are never updated or deleted.
type LedgerEntry struct {
	ID            int64                  `json:"-"`
	EntryID       string                 `json:"entry_id"`
	WalletID      string                 `json:"wallet_id"`
	TransactionID string                 `json:"transaction_id"`
	Kind          EntryKind              `json:"kind"`
	Amount        int64                  `json:"amount"`
	BalanceBefore int64                  `json:"balance_before"`
	BalanceAfter  int64                  `json:"balance_after"`
	Description   string                 `json:"description"`
	MetaData      map[string]interface{} `json:"meta_data,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

// Movement describes one atomic transfer of funds between two wallets.
type Movement struct {
	FromWalletID  string                 `json:"from_wallet_id"`
	ToWalletID    string                 `json:"to_wallet_id"`
	Amount        int64                  `json:"amount"`
	Currency      string                 `json:"currency"`
	CorrelationID string                 `json:"correlation_id"`
	Description   string                 `json:"description"`
	MetaData      map[string]interface{} `json:"meta_data,omitempty"`
}

// MovementResult carries the post-movement balances and the pair of entries
// produced by a successful movement.
type MovementResult struct {
	FromBalanceAfter int64          `json:"from_balance_after"`
	ToBalanceAfter   int64          `json:"to_balance_after"`
	Entries          [2]LedgerEntry `json:"entries"`
}
