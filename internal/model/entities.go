package model

import (
	"math/big"
	"time"
)

// AssetStatus is the lifecycle status of an asset or balance row.
type AssetStatus string

const (
	StatusActive    AssetStatus = "ACTIVE"
	StatusFrozen    AssetStatus = "FROZEN"
	StatusDestroyed AssetStatus = "DESTROYED"
)

// TransferType classifies a transfer audit row by the event that produced it.
type TransferType string

const (
	TransferMint     TransferType = "MINT"
	TransferRegular  TransferType = "REGULAR"
	TransferBurn     TransferType = "BURN"
	TransferDelegate TransferType = "DELEGATE"
	TransferFreeze   TransferType = "FREEZE"
	TransferThaw     TransferType = "THAW"
)

// Asset is a chain-native fungible token class. Rows are created lazily on
// first reference and never deleted; Destroyed is a status transition.
type Asset struct {
	ID          string
	Name        *string
	Symbol      *string
	Decimal     *int32
	Owner       *string
	Admin       *string
	Issuer      *string
	Freezer     *string
	Creator     *string
	MinBalance  *big.Int
	Status      AssetStatus
	TotalSupply *big.Int
}

// NewAsset returns an asset row with default fields for lazy creation.
func NewAsset(id string) *Asset {
	return &Asset{
		ID:          id,
		Status:      StatusActive,
		TotalSupply: big.NewInt(0),
	}
}

// Account is an address-identified holder of balances, a pure identity anchor.
type Account struct {
	ID string
}

// AssetBalance tracks one account's balance of one asset.
// The id is "{assetId}-{accountId}".
type AssetBalance struct {
	ID        string
	AssetID   string
	AccountID string
	Balance   *big.Int
	Status    AssetStatus
}

// BalanceID builds the composite asset balance key.
func BalanceID(assetID, accountID string) string {
	return assetID + "-" + accountID
}

// NewAssetBalance returns a balance row with default fields for lazy creation.
func NewAssetBalance(assetID, accountID string) *AssetBalance {
	return &AssetBalance{
		ID:        BalanceID(assetID, accountID),
		AssetID:   assetID,
		AccountID: accountID,
		Balance:   big.NewInt(0),
		Status:    StatusActive,
	}
}

// Transfer is one append-only audit row, keyed by the source event id so
// replaying the same event overwrites rather than duplicates.
type Transfer struct {
	ID          string
	AssetID     string
	Amount      *big.Int
	To          *string
	From        *string
	Delegator   *string
	Fee         *big.Int
	Type        TransferType
	ExtrinsicID *string
	Success     bool
	CreatedAt   time.Time
	BlockHash   string
	BlockNum    uint64
}
