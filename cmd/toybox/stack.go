package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/KDL-umass/Toybox"
	"github.com/KDL-umass/Toybox/internal/logging"
	"github.com/KDL-umass/Toybox/pkg/adapters/file"
	"github.com/KDL-umass/Toybox/pkg/adapters/geometry"
	httpAdapter "github.com/KDL-umass/Toybox/pkg/adapters/http"
	"github.com/KDL-umass/Toybox/pkg/adapters/memory"
	redisAdapter "github.com/KDL-umass/Toybox/pkg/adapters/redis"
	"github.com/KDL-umass/Toybox/pkg/adapters/sqlite"
	"github.com/KDL-umass/Toybox/pkg/amidar"
	"github.com/KDL-umass/Toybox/pkg/config"
	"github.com/KDL-umass/Toybox/pkg/middleware"
	"github.com/KDL-umass/Toybox/pkg/ports"
	"github.com/KDL-umass/Toybox/pkg/session"
	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// stack is everything a command needs, built from the config file and flags.
type stack struct {
	cfg     config.Config
	logger  *slog.Logger
	engine  ports.Engine
	archive ports.Archive
	locker  ports.DistributedLocker
	closers []func() error
}

func loadConfig(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if state, _ := cmd.Flags().GetString("state"); state != "" {
		cfg.Engine.Path = state
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}

	level, _ := logging.ParseLevel(cfg.Log.Level)
	return cfg, logging.New(level), nil
}

func buildStack(cmd *cobra.Command) (*stack, error) {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	s := &stack{cfg: cfg, logger: logger}

	if s.engine, err = buildEngine(cfg); err != nil {
		return nil, err
	}

	var client *backend.Client
	if cfg.Redis.Addr != "" {
		client = backend.NewClient(&backend.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		s.closers = append(s.closers, client.Close)
		s.locker = redisAdapter.NewLocker(client, cfg.Redis.Prefix+"lock:")
	}

	switch cfg.Archive.Kind {
	case config.ArchiveMemory:
		s.archive = memory.NewArchive(cfg.Archive.Max)
	case config.ArchiveSQLite:
		a, err := sqlite.Open(cfg.Archive.Path, sqlite.WithMax(cfg.Archive.Max))
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, a.Close)
		s.archive = a
	case config.ArchiveRedis:
		s.archive = redisAdapter.NewFromClient(client,
			redisAdapter.WithPrefix(cfg.Redis.Prefix+"archive:"),
			redisAdapter.WithMax(cfg.Archive.Max),
		)
	}
	return s, nil
}

func buildEngine(cfg config.Config) (ports.Engine, error) {
	grid := geometry.Grid{
		CellW: cfg.Engine.Grid.CellW, CellH: cfg.Engine.Grid.CellH,
		OffsetX: cfg.Engine.Grid.OffsetX, OffsetY: cfg.Engine.Grid.OffsetY,
	}

	switch cfg.Engine.Kind {
	case config.EngineMemory:
		data, err := os.ReadFile(cfg.Engine.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read seed: %w", err)
		}
		var opts []memory.Option
		if grid.Valid() {
			opts = append(opts, memory.WithGridGeometry(grid.CellW, grid.CellH, grid.OffsetX, grid.OffsetY))
		}
		return memory.NewEngineJSON(cfg.Game, data, opts...)
	case config.EngineFile:
		var opts []file.Option
		if grid.Valid() {
			opts = append(opts, file.WithGridGeometry(grid))
		}
		if cfg.Engine.ConfigPath != "" {
			opts = append(opts, file.WithConfigFile(cfg.Engine.ConfigPath))
		}
		return file.New(cfg.Engine.Path, cfg.Game, opts...), nil
	case config.EngineHTTP:
		return httpAdapter.NewClient(cfg.Engine.URL), nil
	}
	return nil, fmt.Errorf("unknown engine kind %q", cfg.Engine.Kind)
}

// newToybox builds the facade. Extra middlewares wrap inside the logging one.
func (s *stack) newToybox(extra ...toybox.Option) (*toybox.Toybox, error) {
	ttl, err := s.cfg.Redis.TTL()
	if err != nil {
		return nil, err
	}
	wait, err := s.cfg.Redis.Wait()
	if err != nil {
		return nil, err
	}

	opts := []toybox.Option{
		toybox.WithLogger(s.logger),
		toybox.WithMiddleware(middleware.Logging(s.logger)),
		toybox.WithAmidarOptions(amidar.WithModeDurations(s.cfg.Modes.JumpTime, s.cfg.Modes.ChaseTime)),
		toybox.WithSessionOptions(session.WithLockTTL(ttl), session.WithLockWait(wait)),
	}
	if s.archive != nil {
		opts = append(opts, toybox.WithArchive(s.archive))
	}
	if s.locker != nil {
		opts = append(opts, toybox.WithLocker(s.locker, s.cfg.Redis.Prefix+"engine:"+s.cfg.Game))
	}
	return toybox.New(s.engine, append(opts, extra...)...), nil
}

func (s *stack) requireArchive() (ports.Archive, error) {
	if s.archive == nil {
		return nil, errors.New("no archive configured (set archive.kind)")
	}
	return s.archive, nil
}

// Close releases archive and redis connections.
func (s *stack) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.logger.Warn("close failed", "err", err)
		}
	}
	s.closers = nil
}
