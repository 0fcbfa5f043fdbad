package indexer

import (
	"fmt"
	"strings"
	"time"

	"assetScope/internal/model"
)

// EventID builds the canonical event identifier: zero-padded height, then the
// intra-block event index, then a short piece of the block hash.
func EventID(height uint64, index uint32, blockHash string) string {
	short := strings.TrimPrefix(strings.ToLower(blockHash), "0x")
	if len(short) > 5 {
		short = short[:5]
	}
	return fmt.Sprintf("%010d-%06d-%s", height, index, short)
}

func buildEnvelope(block model.Block, event model.BlockEvent, ingestedAt time.Time) model.EventEnvelope {
	return model.EventEnvelope{
		ID:          EventID(block.Height, event.Index, block.Hash),
		Name:        event.Name,
		SpecHash:    event.SpecHash,
		Args:        event.Args,
		BlockNumber: block.Height,
		BlockHash:   block.Hash,
		Timestamp:   block.Timestamp,
		ExtrinsicID: event.ExtrinsicID,
		IngestedAt:  ingestedAt.UTC().Format(time.RFC3339Nano),
	}
}
