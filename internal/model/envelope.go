package model

import "encoding/json"

// EventEnvelope is the raw representation of a chain event for storage.
// Args is kept opaque until the versioned decoder resolves a schema variant.
type EventEnvelope struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	SpecHash    string          `json:"spec_hash"`
	Args        json.RawMessage `json:"args"`
	BlockNumber uint64          `json:"block_number"`
	BlockHash   string          `json:"block_hash"`
	Timestamp   uint64          `json:"timestamp"`
	ExtrinsicID *string         `json:"extrinsic_id,omitempty"`
	IngestedAt  string          `json:"ingested_at"`
}
