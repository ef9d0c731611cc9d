package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/vermillionhq/vermillion/internal/apierror"
	"github.com/vermillionhq/vermillion/model"
)

func (d Datasource) CreateWallet(ctx context.Context, wallet model.Wallet) (model.Wallet, error) {
	metaDataJSON, err := json.Marshal(wallet.MetaData)
	if err != nil {
		return model.Wallet{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal metadata", err)
	}

	wallet.WalletID = model.GenerateUUIDWithSuffix("wlt")
	wallet.CreatedAt = time.Now()
	if wallet.Type == "" {
		wallet.Type = model.WalletTypeStandard
	}

	_, err = d.Conn.ExecContext(ctx,
		`INSERT INTO vermillion.wallets(wallet_id,owner_id,currency,balance,wallet_type,active,created_at,meta_data) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		wallet.WalletID, wallet.OwnerID, wallet.Currency, wallet.Balance, wallet.Type, wallet.Active, wallet.CreatedAt, metaDataJSON,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return model.Wallet{}, apierror.NewAPIError(apierror.ErrConflict, "Wallet already exists", err)
		}
		return model.Wallet{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create wallet", err)
	}

	return wallet, nil
}

func (d Datasource) GetWallet(ctx context.Context, walletID string) (*model.Wallet, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT wallet_id, owner_id, currency, balance, wallet_type, active, created_at, meta_data
		FROM vermillion.wallets
		WHERE wallet_id = $1
	`, walletID)

	wallet := &model.Wallet{}
	var metaDataJSON []byte
	err := row.Scan(&wallet.WalletID, &wallet.OwnerID, &wallet.Currency, &wallet.Balance, &wallet.Type, &wallet.Active, &wallet.CreatedAt, &metaDataJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrAccountNotFound, fmt.Sprintf("Wallet with ID '%s' not found", walletID), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve wallet", err)
	}

	if len(metaDataJSON) > 0 {
		if err := json.Unmarshal(metaDataJSON, &wallet.MetaData); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to unmarshal metadata", err)
		}
	}
	return wallet, nil
}

func (d Datasource) GetWalletsByOwner(ctx context.Context, ownerID string) ([]model.Wallet, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT wallet_id, owner_id, currency, balance, wallet_type, active, created_at
		FROM vermillion.wallets
		WHERE owner_id = $1
		ORDER BY created_at
	`, ownerID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve wallets", err)
	}
	defer rows.Close()

	var wallets []model.Wallet
	for rows.Next() {
		var wallet model.Wallet
		err := rows.Scan(&wallet.WalletID, &wallet.OwnerID, &wallet.Currency, &wallet.Balance, &wallet.Type, &wallet.Active, &wallet.CreatedAt)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan wallet", err)
		}
		wallets = append(wallets, wallet)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to iterate wallets", err)
	}
	return wallets, nil
}
