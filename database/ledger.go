package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/vermillionhq/vermillion/internal/apierror"
	"github.com/vermillionhq/vermillion/model"
)

var ledgerTracer = otel.Tracer("vermillion.database.ledger")

// RecordMovement executes one atomic fund movement in its own transaction:
// both balance updates and both entries commit together or not at all.
func (d Datasource) RecordMovement(ctx context.Context, movement *model.Movement) (*model.MovementResult, error) {
	ctx, span := ledgerTracer.Start(ctx, "Recording ledger movement")
	defer span.End()

	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin transaction", err)
	}

	result, err := d.RecordMovementInTx(ctx, tx, movement)
	if err != nil {
		_ = tx.Rollback()
		span.RecordError(err)
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to commit movement", err)
	}
	return result, nil
}

// RecordMovementInTx performs the movement inside the caller's transaction.
// The caller owns commit and rollback; nothing is committed here. Locks on
// both wallet rows are held until the enclosing transaction resolves.
//
// Lock acquisition is canonicalized by ascending wallet id regardless of
// transfer direction, so two concurrent opposite-direction movements
// between the same pair cannot deadlock.
func (d Datasource) RecordMovementInTx(ctx context.Context, tx *sql.Tx, movement *model.Movement) (*model.MovementResult, error) {
	if movement.Amount <= 0 {
		return nil, apierror.NewAPIError(apierror.ErrValidation, "Movement amount must be positive", movement.Amount)
	}
	if movement.FromWalletID == movement.ToWalletID {
		return nil, apierror.NewAPIError(apierror.ErrValidation, "Source and destination wallets must differ", movement.FromWalletID)
	}

	first, second := movement.FromWalletID, movement.ToWalletID
	if second < first {
		first, second = second, first
	}

	locked := make(map[string]*model.Wallet, 2)
	for _, walletID := range []string{first, second} {
		wallet, err := lockWallet(ctx, tx, walletID)
		if err != nil {
			return nil, err
		}
		locked[walletID] = wallet
	}

	from := locked[movement.FromWalletID]
	to := locked[movement.ToWalletID]

	if movement.Currency != "" && (from.Currency != movement.Currency || to.Currency != movement.Currency) {
		return nil, apierror.NewAPIError(apierror.ErrValidation,
			fmt.Sprintf("Currency mismatch: movement %s, wallets %s/%s", movement.Currency, from.Currency, to.Currency), nil)
	}

	if from.Balance < movement.Amount {
		return nil, apierror.NewAPIError(apierror.ErrInsufficientFunds,
			fmt.Sprintf("Wallet %s balance %d is below amount %d", from.WalletID, from.Balance, movement.Amount), nil)
	}

	fromBefore := from.Balance
	toBefore := to.Balance
	fromAfter := fromBefore - movement.Amount
	toAfter := toBefore + movement.Amount

	now := time.Now()
	if _, err := tx.ExecContext(ctx,
		`UPDATE vermillion.wallets SET balance = $1 WHERE wallet_id = $2`,
		fromAfter, from.WalletID); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to debit wallet", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE vermillion.wallets SET balance = $1 WHERE wallet_id = $2`,
		toAfter, to.WalletID); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to credit wallet", err)
	}

	debit := model.LedgerEntry{
		EntryID:       model.GenerateUUIDWithSuffix("ent"),
		WalletID:      from.WalletID,
		TransactionID: movement.CorrelationID,
		Kind:          model.EntryDebit,
		Amount:        movement.Amount,
		BalanceBefore: fromBefore,
		BalanceAfter:  fromAfter,
		Description:   movement.Description,
		MetaData:      movement.MetaData,
		CreatedAt:     now,
	}
	credit := model.LedgerEntry{
		EntryID:       model.GenerateUUIDWithSuffix("ent"),
		WalletID:      to.WalletID,
		TransactionID: movement.CorrelationID,
		Kind:          model.EntryCredit,
		Amount:        movement.Amount,
		BalanceBefore: toBefore,
		BalanceAfter:  toAfter,
		Description:   movement.Description,
		MetaData:      movement.MetaData,
		CreatedAt:     now,
	}

	for _, entry := range []model.LedgerEntry{debit, credit} {
		if err := insertEntry(ctx, tx, entry); err != nil {
			return nil, err
		}
	}

	return &model.MovementResult{
		FromBalanceAfter: fromAfter,
		ToBalanceAfter:   toAfter,
		Entries:          [2]model.LedgerEntry{debit, credit},
	}, nil
}

func lockWallet(ctx context.Context, tx *sql.Tx, walletID string) (*model.Wallet, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT wallet_id, owner_id, currency, balance, wallet_type, active
		FROM vermillion.wallets
		WHERE wallet_id = $1
		FOR UPDATE
	`, walletID)

	wallet := &model.Wallet{}
	err := row.Scan(&wallet.WalletID, &wallet.OwnerID, &wallet.Currency, &wallet.Balance, &wallet.Type, &wallet.Active)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrAccountNotFound, fmt.Sprintf("Wallet with ID '%s' not found", walletID), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to lock wallet", err)
	}
	return wallet, nil
}

func insertEntry(ctx context.Context, tx *sql.Tx, entry model.LedgerEntry) error {
	metaDataJSON, err := json.Marshal(entry.MetaData)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal entry metadata", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO vermillion.ledger_entries(entry_id,wallet_id,transaction_id,kind,amount,balance_before,balance_after,description,meta_data,created_at) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		entry.EntryID, entry.WalletID, entry.TransactionID, entry.Kind, entry.Amount, entry.BalanceBefore, entry.BalanceAfter, entry.Description, metaDataJSON, entry.CreatedAt,
	)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to append ledger entry", err)
	}
	return nil
}

func (d Datasource) GetEntriesByTransaction(ctx context.Context, transactionID string) ([]model.LedgerEntry, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT entry_id, wallet_id, transaction_id, kind, amount, balance_before, balance_after, description, created_at
		FROM vermillion.ledger_entries
		WHERE transaction_id = $1
		ORDER BY id
	`, transactionID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve ledger entries", err)
	}
	defer rows.Close()

	var entries []model.LedgerEntry
	for rows.Next() {
		var entry model.LedgerEntry
		err := rows.Scan(&entry.EntryID, &entry.WalletID, &entry.TransactionID, &entry.Kind, &entry.Amount, &entry.BalanceBefore, &entry.BalanceAfter, &entry.Description, &entry.CreatedAt)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan ledger entry", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to iterate ledger entries", err)
	}
	return entries, nil
}
