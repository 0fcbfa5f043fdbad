package model

// DecodeError records a decode failure for an event envelope.
type DecodeError struct {
	EventID     string `json:"event_id"`
	Name        string `json:"name"`
	SpecHash    string `json:"spec_hash"`
	BlockNumber uint64 `json:"block_number"`
	BlockHash   string `json:"block_hash"`
	Error       string `json:"error"`
}
