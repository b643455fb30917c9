package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	shapes "github.com/ruflab/simple-shapes-dataset"
	"github.com/ruflab/simple-shapes-dataset/internal/config"
	"github.com/ruflab/simple-shapes-dataset/pkg/adapters/redis"
	"github.com/ruflab/simple-shapes-dataset/pkg/alignment"
	"github.com/ruflab/simple-shapes-dataset/pkg/observability"
)

// openDataset loads the configured domains.
func openDataset(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*shapes.Dataset, error) {
	ids := cfg.DomainIDs()
	if len(ids) == 0 {
		return nil, errors.New("no domains configured: set domains or groups")
	}
	return shapes.Open(cfg.DatasetPath, cfg.Split, ids,
		shapes.WithDomainArgs(cfg.DomainArgs),
		shapes.WithLogger(logger),
		shapes.WithMetrics(metrics),
	)
}

// alignDataset partitions ds with the configured groups. With a redis
// address (from the flag or the config) the assignment is shared through
// Redis; the returned closer releases the client.
func alignDataset(ctx context.Context, ds *shapes.Dataset, cfg *config.Config, redisAddr string) (*alignment.Result, func() error, error) {
	if len(cfg.Groups) == 0 {
		return nil, nil, errors.New("no groups configured")
	}
	opts := []alignment.Option{
		alignment.WithSeed(cfg.Seed),
		alignment.WithMaxSize(cfg.MaxSize),
	}

	closer := func() error { return nil }
	rc := cfg.Redis
	if redisAddr != "" {
		if rc == nil {
			rc = &config.Redis{}
		}
		copied := *rc
		copied.Addr = redisAddr
		rc = &copied
	}
	if rc != nil {
		ttl, err := rc.TTLDuration()
		if err != nil {
			return nil, nil, err
		}
		storeOpts := []redis.Option{redis.WithTTL(ttl)}
		if rc.Prefix != "" {
			storeOpts = append(storeOpts, redis.WithPrefix(rc.Prefix))
		}
		store := redis.New(rc.Addr, rc.Password, rc.DB, storeOpts...)
		locker := redis.NewLocker(store.Client(), store.Prefix())
		opts = append(opts, alignment.WithStore(store), alignment.WithLocker(locker, 0))
		closer = store.Close
	}

	res, err := ds.Align(ctx, cfg.Proportions(), opts...)
	if err != nil {
		_ = closer()
		return nil, nil, fmt.Errorf("alignment failed: %w", err)
	}
	return res, closer, nil
}
