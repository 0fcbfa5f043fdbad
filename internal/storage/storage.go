package storage

import "assetScope/internal/model"

// Storage defines a sink for event envelopes.
type Storage interface {
	PutEnvelopeBatch(envelopes []model.EventEnvelope) error
}
