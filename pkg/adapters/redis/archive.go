package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/KDL-umass/Toybox/pkg/archive"
	"github.com/KDL-umass/Toybox/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Archive implements ports.Archive using Redis.
// Each commit payload lives under its own key; a sorted set per game
// orders commits by commit time.
type Archive struct {
	client *backend.Client
	prefix string
	max    int64
}

// Option configures the Archive.
type Option func(*Archive)

// WithPrefix sets the key prefix for commits.
func WithPrefix(prefix string) Option {
	return func(a *Archive) {
		a.prefix = prefix
	}
}

// WithMax keeps only the newest n commits per game. Zero keeps everything.
func WithMax(n int) Option {
	return func(a *Archive) {
		if n > 0 {
			a.max = int64(n)
		}
	}
}

// New creates a Redis archive with its own client.
func New(address, password string, db int, opts ...Option) *Archive {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a Redis archive from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Archive {
	a := &Archive{
		client: client,
		prefix: "toybox:archive:",
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Archive) key(id string) string {
	return a.prefix + "commit:" + id
}

func (a *Archive) indexKey(game string) string {
	return a.prefix + "game:" + game
}

// Record stores the commit and indexes it under its game.
func (a *Archive) Record(ctx context.Context, c domain.Commit) error {
	if c.ID == "" {
		return errors.New("commit ID is required")
	}
	data, err := archive.Encode(c)
	if err != nil {
		return err
	}

	pipe := a.client.TxPipeline()
	pipe.Set(ctx, a.key(c.ID), data, 0)
	pipe.ZAdd(ctx, a.indexKey(c.Game), backend.Z{
		Score:  float64(c.CommittedAt.UnixMicro()),
		Member: c.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save commit to redis: %w", err)
	}

	if a.max > 0 {
		return a.trim(ctx, c.Game)
	}
	return nil
}

func (a *Archive) trim(ctx context.Context, game string) error {
	stale, err := a.client.ZRange(ctx, a.indexKey(game), 0, -a.max-1).Result()
	if err != nil {
		return fmt.Errorf("failed to read archive index: %w", err)
	}
	if len(stale) == 0 {
		return nil
	}

	pipe := a.client.TxPipeline()
	keys := make([]string, 0, len(stale))
	members := make([]any, 0, len(stale))
	for _, id := range stale {
		keys = append(keys, a.key(id))
		members = append(members, id)
	}
	pipe.Del(ctx, keys...)
	pipe.ZRem(ctx, a.indexKey(game), members...)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to trim archive: %w", err)
	}
	return nil
}

// List returns commits for game, newest first.
func (a *Archive) List(ctx context.Context, game string, limit int) ([]domain.Commit, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	ids, err := a.client.ZRevRange(ctx, a.indexKey(game), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list commits: %w", err)
	}
	if len(ids) == 0 {
		return []domain.Commit{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = a.key(id)
	}
	vals, err := a.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load commits: %w", err)
	}

	out := make([]domain.Commit, 0, len(vals))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue // Payload expired or trimmed between calls
		}
		c, err := archive.Decode([]byte(s))
		if err != nil {
			return nil, fmt.Errorf("commit %s: %w", ids[i], err)
		}
		out = append(out, c)
	}
	return out, nil
}

// Get returns one commit.
func (a *Archive) Get(ctx context.Context, id string) (domain.Commit, error) {
	data, err := a.client.Get(ctx, a.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return domain.Commit{}, fmt.Errorf("%w: %s", domain.ErrCommitNotFound, id)
		}
		return domain.Commit{}, fmt.Errorf("failed to get commit from redis: %w", err)
	}
	return archive.Decode(data)
}

// Close closes the redis client.
func (a *Archive) Close() error {
	return a.client.Close()
}
