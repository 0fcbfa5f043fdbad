package postgres

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/jackc/pgx/v5"

	"assetScope/internal/model"
)

// ProjectorStateName keys the projector's resume position in indexer_state.
const ProjectorStateName = "projector"

// txLedger is the transactional view handed to event handlers. Numeric
// columns travel as base-10 strings so arbitrary-precision amounts survive
// the round trip.
type txLedger struct {
	tx pgx.Tx
}

func (l *txLedger) GetAsset(ctx context.Context, id string) (*model.Asset, error) {
	row := l.tx.QueryRow(ctx, `
		SELECT id, name, symbol, decimal, owner, admin, issuer, freezer, creator,
		       min_balance::text, status, total_supply::text
		FROM asset WHERE id=$1
	`, id)

	var (
		asset       model.Asset
		minBalance  *string
		totalSupply *string
	)
	err := row.Scan(&asset.ID, &asset.Name, &asset.Symbol, &asset.Decimal,
		&asset.Owner, &asset.Admin, &asset.Issuer, &asset.Freezer, &asset.Creator,
		&minBalance, &asset.Status, &totalSupply)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if asset.MinBalance, err = parseNumeric(minBalance); err != nil {
		return nil, fmt.Errorf("asset %s min_balance: %w", id, err)
	}
	if asset.TotalSupply, err = parseNumeric(totalSupply); err != nil {
		return nil, fmt.Errorf("asset %s total_supply: %w", id, err)
	}
	return &asset, nil
}

func (l *txLedger) SaveAsset(ctx context.Context, asset *model.Asset) error {
	_, err := l.tx.Exec(ctx, `
		INSERT INTO asset (
			id, name, symbol, decimal, owner, admin, issuer, freezer, creator,
			min_balance, status, total_supply, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,now())
		ON CONFLICT (id)
		DO UPDATE SET
			name = EXCLUDED.name,
			symbol = EXCLUDED.symbol,
			decimal = EXCLUDED.decimal,
			owner = EXCLUDED.owner,
			admin = EXCLUDED.admin,
			issuer = EXCLUDED.issuer,
			freezer = EXCLUDED.freezer,
			creator = EXCLUDED.creator,
			min_balance = EXCLUDED.min_balance,
			status = EXCLUDED.status,
			total_supply = EXCLUDED.total_supply,
			updated_at = now()
	`,
		asset.ID, asset.Name, asset.Symbol, asset.Decimal,
		asset.Owner, asset.Admin, asset.Issuer, asset.Freezer, asset.Creator,
		formatNumeric(asset.MinBalance), string(asset.Status), formatNumeric(asset.TotalSupply),
	)
	return err
}

func (l *txLedger) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	row := l.tx.QueryRow(ctx, `SELECT id FROM account WHERE id=$1`, id)

	var account model.Account
	if err := row.Scan(&account.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (l *txLedger) SaveAccount(ctx context.Context, account *model.Account) error {
	_, err := l.tx.Exec(ctx, `
		INSERT INTO account (id) VALUES ($1)
		ON CONFLICT (id) DO NOTHING
	`, account.ID)
	return err
}

func (l *txLedger) GetAssetBalance(ctx context.Context, id string) (*model.AssetBalance, error) {
	row := l.tx.QueryRow(ctx, `
		SELECT id, asset_id, account_id, balance::text, status
		FROM asset_balance WHERE id=$1
	`, id)

	var (
		balance model.AssetBalance
		amount  *string
	)
	err := row.Scan(&balance.ID, &balance.AssetID, &balance.AccountID, &amount, &balance.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if balance.Balance, err = parseNumeric(amount); err != nil {
		return nil, fmt.Errorf("balance %s: %w", id, err)
	}
	return &balance, nil
}

func (l *txLedger) SaveAssetBalance(ctx context.Context, balance *model.AssetBalance) error {
	_, err := l.tx.Exec(ctx, `
		INSERT INTO asset_balance (id, balance, status, asset_id, account_id, updated_at)
		VALUES ($1,$2,$3,$4,$5,now())
		ON CONFLICT (id)
		DO UPDATE SET
			balance = EXCLUDED.balance,
			status = EXCLUDED.status,
			updated_at = now()
	`,
		balance.ID, formatNumeric(balance.Balance), string(balance.Status),
		balance.AssetID, balance.AccountID,
	)
	return err
}

func (l *txLedger) SaveTransfer(ctx context.Context, transfer *model.Transfer) error {
	_, err := l.tx.Exec(ctx, `
		INSERT INTO transfer (
			id, asset_id, amount, to_id, from_id, delegator, fee, type,
			extrinsic_id, success, created_at, block_hash, block_num
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (id)
		DO UPDATE SET
			asset_id = EXCLUDED.asset_id,
			amount = EXCLUDED.amount,
			to_id = EXCLUDED.to_id,
			from_id = EXCLUDED.from_id,
			delegator = EXCLUDED.delegator,
			fee = EXCLUDED.fee,
			type = EXCLUDED.type,
			extrinsic_id = EXCLUDED.extrinsic_id,
			success = EXCLUDED.success,
			created_at = EXCLUDED.created_at,
			block_hash = EXCLUDED.block_hash,
			block_num = EXCLUDED.block_num
	`,
		transfer.ID, transfer.AssetID, formatNumeric(transfer.Amount),
		transfer.To, transfer.From, transfer.Delegator, formatNumeric(transfer.Fee),
		string(transfer.Type), transfer.ExtrinsicID, transfer.Success,
		transfer.CreatedAt, transfer.BlockHash, int64(transfer.BlockNum),
	)
	return err
}

func (l *txLedger) GetPosition(ctx context.Context) (string, error) {
	var eventID string
	row := l.tx.QueryRow(ctx, `SELECT last_event_id FROM indexer_state WHERE name=$1`, ProjectorStateName)
	if err := row.Scan(&eventID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return eventID, nil
}

func (l *txLedger) SavePosition(ctx context.Context, eventID string) error {
	_, err := l.tx.Exec(ctx, `
		INSERT INTO indexer_state (name, last_event_id, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_event_id = EXCLUDED.last_event_id, updated_at = now()
	`, ProjectorStateName, eventID)
	return err
}

func formatNumeric(value *big.Int) *string {
	if value == nil {
		return nil
	}
	text := value.String()
	return &text
}

func parseNumeric(value *string) (*big.Int, error) {
	if value == nil {
		return nil, nil
	}
	parsed, ok := new(big.Int).SetString(*value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid numeric %q", *value)
	}
	return parsed, nil
}
