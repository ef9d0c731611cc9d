package model

import (
	"time"
)

type WalletType string

const (
	// WalletTypeStandard is an ordinary customer wallet. Its balance can
	// never go negative.
	WalletTypeStandard WalletType = "STANDARD"
	// WalletTypeLiquidity is a platform-backed liquidity pool. It may carry
	// very large balances but is debited through the same invariant check
	// as every other wallet.
	WalletTypeLiquidity WalletType = "LIQUIDITY"
	// WalletTypeEscrow holds funds in suspense between external settlement
	// and internal release.
	WalletTypeEscrow WalletType = "ESCROW"
)

// Wallet is an internal balance-holding account denominated in a single
// currency. Balances are stored in minor units (cents, kobo).
type Wallet struct {
	ID        int64                  `json:"-"`
	WalletID  string                 `json:"wallet_id"`
	OwnerID   string                 `json:"owner_id"`
	Currency  string                 `json:"currency"`
	Balance   int64                  `json:"balance"`
	Type      WalletType             `json:"wallet_type"`
	Active    bool                   `json:"active"`
	CreatedAt time.Time              `json:"created_at"`
	MetaData  map[string]interface{} `json:"meta_data,omitempty"`
}
