package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"assetScope/internal/chain"
	"assetScope/internal/config"
	"assetScope/internal/indexer"
	"assetScope/internal/storage"
)

func main() {
	root := &cobra.Command{
		Use:          "indexer",
		Short:        "Assets pallet event indexer",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync raw event envelopes from the chain gateway",
		RunE:  runSync,
	}

	syncCmd.Flags().String("gateway-url", "", "gateway JSON-RPC URL")
	syncCmd.Flags().Uint64("from", 0, "start height (inclusive)")
	syncCmd.Flags().Uint64("to", 0, "end height (inclusive), 0 means latest")
	syncCmd.Flags().Uint64("batch-size", 500, "blocks per batch")
	syncCmd.Flags().String("out", "./data/envelopes.jsonl", "output JSONL path")
	syncCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	syncCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	syncCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	syncCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	syncCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(syncCmd)

	decodeCmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode raw envelopes into normalized events",
		RunE:  runDecode,
	}

	decodeCmd.Flags().String("in", "", "input envelopes JSONL")
	decodeCmd.Flags().String("out", "./data/events.jsonl", "output normalized events JSONL")
	decodeCmd.Flags().String("errors", "./data/decode_errors.jsonl", "decode errors JSONL")
	decodeCmd.Flags().String("variant-map", "", "extra hash->variant mappings (comma-separated hash=assets.Name@version)")
	decodeCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(decodeCmd)

	projectCmd := &cobra.Command{
		Use:   "project",
		Short: "Project normalized events into the Postgres ledger",
		RunE:  runProject,
	}

	projectCmd.Flags().String("in", "", "input normalized events JSONL")
	projectCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	projectCmd.Flags().Uint32("ss58-prefix", 2, "SS58 network prefix for address encoding")
	projectCmd.Flags().Bool("migrate", true, "create schema before projecting")
	projectCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(projectCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runSync(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.GatewayURL == "" {
		return fmt.Errorf("gateway url is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.GatewayURL)
	if err != nil {
		return fmt.Errorf("connect gateway: %w", err)
	}
	defer chainClient.Close()

	storageSink := storage.NewJsonlStorage(cfg.Out)

	runner := indexer.NewRunner(indexer.RunConfig{
		FromHeight:        cfg.FromHeight,
		ToHeight:          cfg.ToHeight,
		BatchSize:         cfg.BatchSize,
		CheckpointPath:    cfg.Checkpoint,
		CheckpointEnabled: cfg.CheckpointEnabled,
		MaxRetries:        cfg.MaxRetries,
		RetryBackoff:      cfg.RetryBackoff,
	}, chainClient, storageSink, logger)

	logger.Info("sync start",
		zap.String("gateway", cfg.GatewayURL),
		zap.Uint64("from", cfg.FromHeight),
		zap.Uint64("to", cfg.ToHeight),
		zap.Uint64("batch_size", cfg.BatchSize),
		zap.String("out", cfg.Out),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
		zap.String("checkpoint", cfg.Checkpoint),
	)

	return runner.Run(ctx)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
