package model

import "encoding/json"

// Block is one block as returned by the chain gateway, carrying the
// decoded-JSON event envelopes emitted in it.
type Block struct {
	Height    uint64       `json:"height"`
	Hash      string       `json:"hash"`
	Timestamp uint64       `json:"timestamp"`
	Events    []BlockEvent `json:"events"`
}

// BlockEvent is one event inside a gateway block.
type BlockEvent struct {
	Index       uint32          `json:"index"`
	Name        string          `json:"name"`
	SpecHash    string          `json:"spec_hash"`
	Args        json.RawMessage `json:"args"`
	ExtrinsicID *string         `json:"extrinsic_id,omitempty"`
}
