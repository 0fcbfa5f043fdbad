package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"assetScope/internal/config"
	"assetScope/internal/model"
	"assetScope/internal/projector"
	"assetScope/internal/storage/postgres"
)

func runProject(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadProject(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.In == "" {
		return fmt.Errorf("input path is required")
	}
	if cfg.PGDSN == "" {
		return fmt.Errorf("pg dsn is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := postgres.NewStore(ctx, cfg.PGDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer store.Close()

	if cfg.Migrate {
		if err := store.Migrate(ctx); err != nil {
			return err
		}
	}

	proj := projector.New(store, cfg.SS58Prefix, logger)

	lastEventID, resuming, err := store.LoadPosition(ctx, postgres.ProjectorStateName)
	if err != nil {
		return fmt.Errorf("load position: %w", err)
	}

	inputFile, err := os.Open(cfg.In)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer inputFile.Close()

	logger.Info("project start",
		zap.String("in", cfg.In),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.Uint32("ss58_prefix", uint32(cfg.SS58Prefix)),
		zap.Bool("resuming", resuming),
		zap.String("last_event_id", lastEventID),
	)

	scanner := bufio.NewScanner(inputFile)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	// The position commits inside each event's transaction, so the skip here
	// is only an optimization; Apply recognizes re-delivered events itself.
	var total, applied, skipped int
	var lastApplied string
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		total++

		var record model.NormalizedEventRecord
		if err := json.Unmarshal(line, &record); err != nil {
			return fmt.Errorf("parse event line %d: %w", total, err)
		}

		if resuming && record.ID <= lastEventID {
			skipped++
			continue
		}
		if !proj.Supports(record.Name) {
			skipped++
			continue
		}

		if err := proj.Apply(ctx, record); err != nil {
			return err
		}
		applied++
		lastApplied = record.ID
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan input: %w", err)
	}

	logger.Info("project complete",
		zap.Int("total", total),
		zap.Int("applied", applied),
		zap.Int("skipped", skipped),
		zap.String("last_event_id", lastApplied),
	)

	return nil
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
