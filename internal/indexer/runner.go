// Package indexer streams event envelopes from the chain gateway into the
// raw envelope store, with batching, retry and checkpointed resume.
package indexer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"assetScope/internal/chain"
	"assetScope/internal/model"
	"assetScope/internal/storage"
)

// RunConfig holds runtime settings for the sync loop.
type RunConfig struct {
	FromHeight        uint64
	ToHeight          uint64
	BatchSize         uint64
	CheckpointPath    string
	CheckpointEnabled bool
	MaxRetries        int
	RetryBackoff      time.Duration
}

// Runner streams blocks from the gateway and writes envelopes to storage.
type Runner struct {
	cfg        RunConfig
	chain      *chain.Client
	storage    storage.Storage
	logger     *zap.Logger
	seen       map[string]struct{}
	checkpoint *CheckpointStore
}

// NewRunner builds a Runner with its dependencies.
func NewRunner(cfg RunConfig, chainClient *chain.Client, storageSink storage.Storage, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:        cfg,
		chain:      chainClient,
		storage:    storageSink,
		logger:     logger,
		seen:       make(map[string]struct{}),
		checkpoint: NewCheckpointStore(cfg.CheckpointPath, cfg.CheckpointEnabled),
	}
}

// Run executes the sync loop.
func (r *Runner) Run(ctx context.Context) error {
	if r.chain == nil {
		return fmt.Errorf("chain client is nil")
	}
	if r.storage == nil {
		return fmt.Errorf("storage is nil")
	}
	if r.cfg.BatchSize == 0 {
		return fmt.Errorf("batch size must be greater than zero")
	}

	from := r.cfg.FromHeight
	to := r.cfg.ToHeight
	if to == 0 {
		latest, err := r.chain.LatestHeight(ctx)
		if err != nil {
			return fmt.Errorf("get latest height: %w", err)
		}
		to = latest
	}

	if r.checkpoint != nil {
		cp, ok, err := r.checkpoint.Load()
		if err != nil {
			return err
		}
		if ok && cp.LastSyncedHeight >= from {
			from = cp.LastSyncedHeight + 1
			r.logger.Info("resume from checkpoint", zap.Uint64("last_synced", cp.LastSyncedHeight), zap.Uint64("from", from))
		}
	}

	if from > to {
		r.logger.Info("nothing to sync", zap.Uint64("from", from), zap.Uint64("to", to))
		return nil
	}

	ranges, err := SplitRange(from, to, r.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, heightRange := range ranges {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		r.logger.Info("fetch blocks", zap.Uint64("from", heightRange.From), zap.Uint64("to", heightRange.To))

		blocks, err := r.getBlocksWithRetry(ctx, heightRange.From, heightRange.To)
		if err != nil {
			return fmt.Errorf("get blocks: %w", err)
		}

		ingestedAt := time.Now().UTC()
		envelopes := make([]model.EventEnvelope, 0)
		for _, block := range blocks {
			for _, event := range block.Events {
				envelope := buildEnvelope(block, event, ingestedAt)
				if r.isDuplicate(envelope.ID) {
					continue
				}
				envelopes = append(envelopes, envelope)
			}
		}

		if err := r.storage.PutEnvelopeBatch(envelopes); err != nil {
			return fmt.Errorf("store envelopes: %w", err)
		}

		if r.checkpoint != nil {
			if err := r.checkpoint.Save(heightRange.To); err != nil {
				return err
			}
		}

		r.logger.Info("batch complete", zap.Int("events", len(envelopes)), zap.Uint64("from", heightRange.From), zap.Uint64("to", heightRange.To))
	}

	return nil
}

func (r *Runner) getBlocksWithRetry(ctx context.Context, fromHeight, toHeight uint64) ([]model.Block, error) {
	var blocks []model.Block
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		blocks, err = r.chain.GetBlocks(ctx, fromHeight, toHeight)
		if err != nil {
			r.logger.Warn("get blocks failed", zap.Error(err), zap.Uint64("from", fromHeight), zap.Uint64("to", toHeight))
		}
		return err
	})
	return blocks, err
}

func (r *Runner) isDuplicate(eventID string) bool {
	if _, ok := r.seen[eventID]; ok {
		return true
	}
	r.seen[eventID] = struct{}{}
	return false
}
