// Package projector folds normalized assets pallet events, in block order,
// into the asset/account/balance ledger and its transfer audit log.
package projector

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	"assetScope/internal/model"
	"assetScope/internal/ss58"
)

type handlerFunc func(ctx context.Context, ledger Ledger, record model.NormalizedEventRecord) error

// Projector applies one event at a time through its dispatch table. Events
// must arrive in block-then-intra-block order. The applied position commits
// with each event's writes, so re-delivering an event is a no-op.
type Projector struct {
	gateway  Gateway
	logger   *zap.Logger
	prefix   uint16
	handlers map[model.EventName]handlerFunc
}

// New builds a projector writing through the given gateway. prefix is the
// SS58 network prefix used to encode account identifiers.
func New(gateway Gateway, prefix uint16, logger *zap.Logger) *Projector {
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Projector{
		gateway: gateway,
		logger:  logger,
		prefix:  prefix,
	}
	p.handlers = map[model.EventName]handlerFunc{
		model.EventCreated:             p.applyCreated,
		model.EventOwnerChanged:        p.applyOwnerChanged,
		model.EventTeamChanged:         p.applyTeamChanged,
		model.EventAssetFrozen:         p.applyAssetFrozen,
		model.EventAssetThawed:         p.applyAssetThawed,
		model.EventDestroyed:           p.applyDestroyed,
		model.EventMetadataSet:         p.applyMetadataSet,
		model.EventMetadataCleared:     p.applyMetadataCleared,
		model.EventIssued:              p.applyIssued,
		model.EventTransferred:         p.applyTransferred,
		model.EventTransferredApproved: p.applyTransferredApproved,
		model.EventFrozen:              p.applyFrozen,
		model.EventThawed:              p.applyThawed,
		model.EventBurned:              p.applyBurned,
	}
	return p
}

// Supports reports whether the projector has a handler for the event type.
func (p *Projector) Supports(name model.EventName) bool {
	_, ok := p.handlers[name]
	return ok
}

// Apply processes a single event inside one gateway transaction. A returned
// error means nothing from this event was persisted. Events at or before the
// stored position are skipped, so re-delivery after a restart cannot apply a
// balance delta twice.
func (p *Projector) Apply(ctx context.Context, record model.NormalizedEventRecord) error {
	handler, ok := p.handlers[record.Name]
	if !ok {
		return fmt.Errorf("no handler for event %s", record.Name)
	}

	p.logger.Debug("apply event",
		zap.String("event_id", record.ID),
		zap.String("name", string(record.Name)),
		zap.Uint64("block", record.BlockNumber),
	)

	if err := p.gateway.InTx(ctx, func(ledger Ledger) error {
		position, err := ledger.GetPosition(ctx)
		if err != nil {
			return err
		}
		// Event ids are fixed-width height-index strings, so lexicographic
		// order matches stream order.
		if position != "" && record.ID <= position {
			p.logger.Debug("event already applied", zap.String("event_id", record.ID))
			return nil
		}
		if err := handler(ctx, ledger, record); err != nil {
			return err
		}
		return ledger.SavePosition(ctx, record.ID)
	}); err != nil {
		return fmt.Errorf("apply %s %s: %w", record.Name, record.ID, err)
	}
	return nil
}

func (p *Projector) applyCreated(ctx context.Context, ledger Ledger, record model.NormalizedEventRecord) error {
	var payload model.CreatedPayload
	if err := json.Unmarshal(record.Payload, &payload); err != nil {
		return fmt.Errorf("payload: %w", err)
	}

	creator, err := p.encodeAccount(payload.Creator)
	if err != nil {
		return err
	}
	owner, err := p.encodeAccount(payload.Owner)
	if err != nil {
		return err
	}

	asset, err := getOrCreateAsset(ctx, ledger, payload.AssetID)
	if err != nil {
		return err
	}
	asset.Creator = &creator
	asset.Owner = &owner
	asset.Status = model.StatusActive
	asset.TotalSupply = big.NewInt(0)

	return ledger.SaveAsset(ctx, asset)
}

func (p *Projector) applyOwnerChanged(ctx context.Context, ledger Ledger, record model.NormalizedEventRecord) error {
	var payload model.OwnerChangedPayload
	if err := json.Unmarshal(record.Payload, &payload); err != nil {
		return fmt.Errorf("payload: %w", err)
	}

	owner, err := p.encodeAccount(payload.Owner)
	if err != nil {
		return err
	}

	asset, err := getOrCreateAsset(ctx, ledger, payload.AssetID)
	if err != nil {
		return err
	}
	asset.Owner = &owner

	return ledger.SaveAsset(ctx, asset)
}

func (p *Projector) applyTeamChanged(ctx context.Context, ledger Ledger, record model.NormalizedEventRecord) error {
	var payload model.TeamChangedPayload
	if err := json.Unmarshal(record.Payload, &payload); err != nil {
		return fmt.Errorf("payload: %w", err)
	}

	issuer, err := p.encodeAccount(payload.Issuer)
	if err != nil {
		return err
	}
	admin, err := p.encodeAccount(payload.Admin)
	if err != nil {
		return err
	}
	freezer, err := p.encodeAccount(payload.Freezer)
	if err != nil {
		return err
	}

	asset, err := getOrCreateAsset(ctx, ledger, payload.AssetID)
	if err != nil {
		return err
	}
	asset.Issuer = &issuer
	asset.Admin = &admin
	asset.Freezer = &freezer

	return ledger.SaveAsset(ctx, asset)
}

func (p *Projector) applyAssetFrozen(ctx context.Context, ledger Ledger, record model.NormalizedEventRecord) error {
	return p.setAssetStatus(ctx, ledger, record, model.StatusFrozen)
}

func (p *Projector) applyAssetThawed(ctx context.Context, ledger Ledger, record model.NormalizedEventRecord) error {
	return p.setAssetStatus(ctx, ledger, record, model.StatusActive)
}

func (p *Projector) applyDestroyed(ctx context.Context, ledger Ledger, record model.NormalizedEventRecord) error {
	return p.setAssetStatus(ctx, ledger, record, model.StatusDestroyed)
}

func (p *Projector) setAssetStatus(ctx context.Context, ledger Ledger, record model.NormalizedEventRecord, status model.AssetStatus) error {
	var payload model.AssetPayload
	if err := json.Unmarshal(record.Payload, &payload); err != nil {
		return fmt.Errorf("payload: %w", err)
	}

	asset, err := getOrCreateAsset(ctx, ledger, payload.AssetID)
	if err != nil {
		return err
	}
	asset.Status = status

	return ledger.SaveAsset(ctx, asset)
}

func (p *Projector) applyMetadataSet(ctx context.Context, ledger Ledger, record model.NormalizedEventRecord) error {
	var payload model.MetadataSetPayload
	if err := json.Unmarshal(record.Payload, &payload); err != nil {
		return fmt.Errorf("payload: %w", err)
	}

	name, err := decodeText(payload.Name)
	if err != nil {
		return fmt.Errorf("name: %w", err)
	}
	symbol, err := decodeText(payload.Symbol)
	if err != nil {
		return fmt.Errorf("symbol: %w", err)
	}

	asset, err := getOrCreateAsset(ctx, ledger, payload.AssetID)
	if err != nil {
		return err
	}
	decimal := int32(payload.Decimals)
	asset.Name = &name
	asset.Symbol = &symbol
	asset.Decimal = &decimal
	if payload.IsFrozen {
		asset.Status = model.StatusFrozen
	} else {
		asset.Status = model.StatusActive
	}

	return ledger.SaveAsset(ctx, asset)
}

func (p *Projector) applyMetadataCleared(ctx context.Context, ledger Ledger, record model.NormalizedEventRecord) error {
	var payload model.AssetPayload
	if err := json.Unmarshal(record.Payload, &payload); err != nil {
		return fmt.Errorf("payload: %w", err)
	}

	asset, err := getOrCreateAsset(ctx, ledger, payload.AssetID)
	if err != nil {
		return err
	}
	asset.Name = nil
	asset.Symbol = nil
	asset.Decimal = nil
	// Status is only defaulted, never regressed: a FROZEN asset stays FROZEN.
	if asset.Status == "" {
		asset.Status = model.StatusActive
	}

	return ledger.SaveAsset(ctx, asset)
}

func (p *Projector) applyIssued(ctx context.Context, ledger Ledger, record model.NormalizedEventRecord) error {
	var payload model.IssuedPayload
	if err := json.Unmarshal(record.Payload, &payload); err != nil {
		return fmt.Errorf("payload: %w", err)
	}
	amount, err := parseAmount(payload.TotalSupply)
	if err != nil {
		return err
	}

	asset, owner, err := p.changeBalance(ctx, ledger, payload.AssetID, payload.Owner, amount)
	if err != nil {
		return err
	}
	asset.Owner = &owner
	asset.TotalSupply = new(big.Int).Add(bigOrZero(asset.TotalSupply), amount)
	if err := ledger.SaveAsset(ctx, asset); err != nil {
		return err
	}

	transfer := buildTransfer(record, asset.ID, model.TransferMint, amount)
	transfer.To = &owner
	return ledger.SaveTransfer(ctx, transfer)
}

func (p *Projector) applyTransferred(ctx context.Context, ledger Ledger, record model.NormalizedEventRecord) error {
	var payload model.TransferredPayload
	if err := json.Unmarshal(record.Payload, &payload); err != nil {
		return fmt.Errorf("payload: %w", err)
	}
	amount, err := parseAmount(payload.Amount)
	if err != nil {
		return err
	}

	asset, from, err := p.changeBalance(ctx, ledger, payload.AssetID, payload.From, new(big.Int).Neg(amount))
	if err != nil {
		return err
	}
	_, to, err := p.changeBalance(ctx, ledger, payload.AssetID, payload.To, amount)
	if err != nil {
		return err
	}

	transfer := buildTransfer(record, asset.ID, model.TransferRegular, amount)
	transfer.From = &from
	transfer.To = &to
	return ledger.SaveTransfer(ctx, transfer)
}

func (p *Projector) applyTransferredApproved(ctx context.Context, ledger Ledger, record model.NormalizedEventRecord) error {
	var payload model.TransferredApprovedPayload
	if err := json.Unmarshal(record.Payload, &payload); err != nil {
		return fmt.Errorf("payload: %w", err)
	}
	amount, err := parseAmount(payload.Amount)
	if err != nil {
		return err
	}

	delegator, err := p.encodeAccount(payload.Delegate)
	if err != nil {
		return err
	}
	asset, from, err := p.changeBalance(ctx, ledger, payload.AssetID, payload.Owner, new(big.Int).Neg(amount))
	if err != nil {
		return err
	}
	_, to, err := p.changeBalance(ctx, ledger, payload.AssetID, payload.Destination, amount)
	if err != nil {
		return err
	}

	transfer := buildTransfer(record, asset.ID, model.TransferDelegate, amount)
	transfer.From = &from
	transfer.To = &to
	transfer.Delegator = &delegator
	return ledger.SaveTransfer(ctx, transfer)
}

func (p *Projector) applyBurned(ctx context.Context, ledger Ledger, record model.NormalizedEventRecord) error {
	var payload model.BurnedPayload
	if err := json.Unmarshal(record.Payload, &payload); err != nil {
		return fmt.Errorf("payload: %w", err)
	}
	amount, err := parseAmount(payload.Balance)
	if err != nil {
		return err
	}

	asset, from, err := p.changeBalance(ctx, ledger, payload.AssetID, payload.Owner, new(big.Int).Neg(amount))
	if err != nil {
		return err
	}

	transfer := buildTransfer(record, asset.ID, model.TransferBurn, amount)
	transfer.From = &from
	return ledger.SaveTransfer(ctx, transfer)
}

func (p *Projector) applyFrozen(ctx context.Context, ledger Ledger, record model.NormalizedEventRecord) error {
	return p.setBalanceStatus(ctx, ledger, record, model.StatusFrozen, model.TransferFreeze)
}

func (p *Projector) applyThawed(ctx context.Context, ledger Ledger, record model.NormalizedEventRecord) error {
	return p.setBalanceStatus(ctx, ledger, record, model.StatusActive, model.TransferThaw)
}

func (p *Projector) setBalanceStatus(ctx context.Context, ledger Ledger, record model.NormalizedEventRecord, status model.AssetStatus, transferType model.TransferType) error {
	var payload model.AccountPayload
	if err := json.Unmarshal(record.Payload, &payload); err != nil {
		return fmt.Errorf("payload: %w", err)
	}

	asset, balance, who, err := p.balanceParts(ctx, ledger, payload.AssetID, payload.Who)
	if err != nil {
		return err
	}
	balance.Status = status
	if err := ledger.SaveAssetBalance(ctx, balance); err != nil {
		return err
	}

	transfer := buildTransfer(record, asset.ID, transferType, new(big.Int).Set(bigOrZero(balance.Balance)))
	transfer.From = &who
	return ledger.SaveTransfer(ctx, transfer)
}

// balanceParts get-or-creates the asset, the account, and the balance row for
// one (asset, account) pair. Asset and account are saved so the balance row's
// references always resolve; the balance row itself is left for the caller.
func (p *Projector) balanceParts(ctx context.Context, ledger Ledger, assetID uint32, key string) (*model.Asset, *model.AssetBalance, string, error) {
	encoded, err := p.encodeAccount(key)
	if err != nil {
		return nil, nil, "", err
	}

	asset, err := getOrCreateAsset(ctx, ledger, assetID)
	if err != nil {
		return nil, nil, "", err
	}
	if err := ledger.SaveAsset(ctx, asset); err != nil {
		return nil, nil, "", err
	}

	account, err := ledger.GetAccount(ctx, encoded)
	if err != nil {
		return nil, nil, "", err
	}
	if account == nil {
		account = &model.Account{ID: encoded}
	}
	if err := ledger.SaveAccount(ctx, account); err != nil {
		return nil, nil, "", err
	}

	balance, err := ledger.GetAssetBalance(ctx, model.BalanceID(asset.ID, encoded))
	if err != nil {
		return nil, nil, "", err
	}
	if balance == nil {
		balance = model.NewAssetBalance(asset.ID, encoded)
	}

	return asset, balance, encoded, nil
}

func (p *Projector) changeBalance(ctx context.Context, ledger Ledger, assetID uint32, key string, delta *big.Int) (*model.Asset, string, error) {
	asset, balance, encoded, err := p.balanceParts(ctx, ledger, assetID, key)
	if err != nil {
		return nil, "", err
	}

	balance.Balance = new(big.Int).Add(bigOrZero(balance.Balance), delta)
	if err := ledger.SaveAssetBalance(ctx, balance); err != nil {
		return nil, "", err
	}
	return asset, encoded, nil
}

// encodeAccount turns a raw 0x-hex public key into an SS58 address. Failure
// is escalated: a null reference here would corrupt the ledger.
func (p *Projector) encodeAccount(key string) (string, error) {
	raw, err := hexutil.Decode(key)
	if err != nil {
		return "", fmt.Errorf("account key %s: %w", key, err)
	}
	encoded, err := ss58.Encode(raw, p.prefix)
	if err != nil {
		return "", fmt.Errorf("account key %s: %w", key, err)
	}
	return encoded, nil
}

func getOrCreateAsset(ctx context.Context, ledger Ledger, assetID uint32) (*model.Asset, error) {
	id := strconv.FormatUint(uint64(assetID), 10)
	asset, err := ledger.GetAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		asset = model.NewAsset(id)
	}
	return asset, nil
}

func buildTransfer(record model.NormalizedEventRecord, assetID string, transferType model.TransferType, amount *big.Int) *model.Transfer {
	return &model.Transfer{
		ID:          record.ID,
		AssetID:     assetID,
		Amount:      amount,
		Type:        transferType,
		Success:     true,
		CreatedAt:   time.UnixMilli(int64(record.Timestamp)).UTC(),
		BlockHash:   record.BlockHash,
		BlockNum:    record.BlockNumber,
		ExtrinsicID: record.ExtrinsicID,
	}
}

func parseAmount(value string) (*big.Int, error) {
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %q", value)
	}
	return parsed, nil
}

func bigOrZero(value *big.Int) *big.Int {
	if value == nil {
		return big.NewInt(0)
	}
	return value
}

func decodeText(value string) (string, error) {
	raw, err := hexutil.Decode(value)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
