package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileIsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, Default().Validate())
}

func TestLoad_YAML(t *testing.T) {
	path := write(t, "toybox.yaml", `
engine:
  kind: http
  url: http://localhost:9000
  grid: {cell_w: 4, cell_h: 5}
log:
  level: debug
archive:
  kind: sqlite
  path: /tmp/toybox.db
redis:
  addr: localhost:6379
  lock_ttl: 1m
  lock_wait: 2s
modes:
  jump_time: 10
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "amidar", cfg.Game, "unset keys keep defaults")
	assert.Equal(t, EngineHTTP, cfg.Engine.Kind)
	assert.Equal(t, 5, cfg.Engine.Grid.CellH)
	assert.Equal(t, ArchiveSQLite, cfg.Archive.Kind)
	assert.Equal(t, 100, cfg.Archive.Max)
	assert.Equal(t, 10, cfg.Modes.JumpTime)

	ttl, err := cfg.Redis.TTL()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, ttl)
	wait, err := cfg.Redis.Wait()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, wait)
}

func TestLoad_JSON(t *testing.T) {
	path := write(t, "toybox.json", `{"engine": {"kind": "memory", "path": "seed.json"}, "archive": {"kind": "memory"}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, EngineMemory, cfg.Engine.Kind)
	assert.Equal(t, "seed.json", cfg.Engine.Path)
}

func TestLoad_Invalid(t *testing.T) {
	path := write(t, "toybox.yaml", `
engine:
  kind: carrier-pigeon
  grid: {cell_w: 4}
log:
  level: loud
archive:
  kind: redis
redis:
  lock_ttl: soon
  lock_wait: -1s
`)
	_, err := Load(path)
	require.Error(t, err)
	for _, want := range []string{"engine.kind", "engine.grid", "log.level", "redis.addr", "redis.lock_ttl", "redis.lock_wait"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestLoad_Malformed(t *testing.T) {
	_, err := Load(write(t, "toybox.yaml", "engine: [unclosed"))
	assert.Error(t, err)
}
