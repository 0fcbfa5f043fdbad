package projector

import (
	"context"

	"assetScope/internal/model"
)

// Gateway opens a per-event transaction over the durable ledger. Everything
// a handler reads and writes for one event happens inside a single InTx call.
type Gateway interface {
	InTx(ctx context.Context, fn func(ledger Ledger) error) error
}

// Ledger is the persistence surface available to event handlers. Get methods
// return (nil, nil) when the entity is absent so handlers can lazily create.
//
// GetPosition and SavePosition track the id of the last applied event. The
// position is written in the same transaction as the event's entity writes,
// so a re-delivered event is recognized even after a crash between events.
type Ledger interface {
	GetAsset(ctx context.Context, id string) (*model.Asset, error)
	SaveAsset(ctx context.Context, asset *model.Asset) error
	GetAccount(ctx context.Context, id string) (*model.Account, error)
	SaveAccount(ctx context.Context, account *model.Account) error
	GetAssetBalance(ctx context.Context, id string) (*model.AssetBalance, error)
	SaveAssetBalance(ctx context.Context, balance *model.AssetBalance) error
	SaveTransfer(ctx context.Context, transfer *model.Transfer) error
	GetPosition(ctx context.Context) (string, error)
	SavePosition(ctx context.Context, eventID string) error
}
