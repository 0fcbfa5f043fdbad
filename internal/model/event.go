package model

import "encoding/json"

// EventName identifies an assets pallet event type.
type EventName string

const (
	EventCreated             EventName = "assets.Created"
	EventOwnerChanged        EventName = "assets.OwnerChanged"
	EventTeamChanged         EventName = "assets.TeamChanged"
	EventAssetFrozen         EventName = "assets.AssetFrozen"
	EventAssetThawed         EventName = "assets.AssetThawed"
	EventDestroyed           EventName = "assets.Destroyed"
	EventMetadataSet         EventName = "assets.MetadataSet"
	EventMetadataCleared     EventName = "assets.MetadataCleared"
	EventIssued              EventName = "assets.Issued"
	EventTransferred         EventName = "assets.Transferred"
	EventTransferredApproved EventName = "assets.TransferredApproved"
	EventFrozen              EventName = "assets.Frozen"
	EventBurned              EventName = "assets.Burned"
	EventThawed              EventName = "assets.Thawed"
)

// NormalizedEvent is a schema-version-independent decoded event.
type NormalizedEvent struct {
	ID          string      `json:"id"`
	Name        EventName   `json:"name"`
	BlockNumber uint64      `json:"block_number"`
	BlockHash   string      `json:"block_hash"`
	Timestamp   uint64      `json:"timestamp"`
	ExtrinsicID *string     `json:"extrinsic_id,omitempty"`
	Payload     interface{} `json:"payload"`
}

// NormalizedEventRecord is the JSON representation used for projection,
// with the payload left raw until dispatched by event name.
type NormalizedEventRecord struct {
	ID          string          `json:"id"`
	Name        EventName       `json:"name"`
	BlockNumber uint64          `json:"block_number"`
	BlockHash   string          `json:"block_hash"`
	Timestamp   uint64          `json:"timestamp"`
	ExtrinsicID *string         `json:"extrinsic_id,omitempty"`
	Payload     json.RawMessage `json:"payload"`
}
