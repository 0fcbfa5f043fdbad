package model

// Account identifiers in payloads are 0x-prefixed hex of the raw 32-byte
// public key; amounts are base-10 strings so arbitrary precision survives JSON.

// CreatedPayload is the decoded assets.Created payload.
type CreatedPayload struct {
	AssetID uint32 `json:"asset_id"`
	Creator string `json:"creator"`
	Owner   string `json:"owner"`
}

// OwnerChangedPayload is the decoded assets.OwnerChanged payload.
type OwnerChangedPayload struct {
	AssetID uint32 `json:"asset_id"`
	Owner   string `json:"owner"`
}

// TeamChangedPayload is the decoded assets.TeamChanged payload.
type TeamChangedPayload struct {
	AssetID uint32 `json:"asset_id"`
	Issuer  string `json:"issuer"`
	Admin   string `json:"admin"`
	Freezer string `json:"freezer"`
}

// AssetPayload is the decoded payload of events that carry only an asset id
// (AssetFrozen, AssetThawed, Destroyed, MetadataCleared).
type AssetPayload struct {
	AssetID uint32 `json:"asset_id"`
}

// MetadataSetPayload is the decoded assets.MetadataSet payload. Name and
// Symbol are 0x-hex of the raw byte sequences set on chain.
type MetadataSetPayload struct {
	AssetID  uint32 `json:"asset_id"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
	IsFrozen bool   `json:"is_frozen"`
}

// IssuedPayload is the decoded assets.Issued payload.
type IssuedPayload struct {
	AssetID     uint32 `json:"asset_id"`
	Owner       string `json:"owner"`
	TotalSupply string `json:"total_supply"`
}

// TransferredPayload is the decoded assets.Transferred payload.
type TransferredPayload struct {
	AssetID uint32 `json:"asset_id"`
	From    string `json:"from"`
	To      string `json:"to"`
	Amount  string `json:"amount"`
}

// TransferredApprovedPayload is the decoded assets.TransferredApproved payload.
type TransferredApprovedPayload struct {
	AssetID     uint32 `json:"asset_id"`
	Owner       string `json:"owner"`
	Delegate    string `json:"delegate"`
	Destination string `json:"destination"`
	Amount      string `json:"amount"`
}

// BurnedPayload is the decoded assets.Burned payload.
type BurnedPayload struct {
	AssetID uint32 `json:"asset_id"`
	Owner   string `json:"owner"`
	Balance string `json:"balance"`
}

// AccountPayload is the decoded payload of account-level events
// (Frozen, Thawed).
type AccountPayload struct {
	AssetID uint32 `json:"asset_id"`
	Who     string `json:"who"`
}
