package memory_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/KDL-umass/Toybox/pkg/adapters/memory"
	"github.com/KDL-umass/Toybox/pkg/domain"
	"github.com/KDL-umass/Toybox/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_Contract(t *testing.T) {
	seed := domain.Snapshot{"score": 1, "board": map[string]any{"tiles": []any{"Empty"}}}
	engine, err := memory.NewEngine("amidar", seed)
	require.NoError(t, err)

	ports.RunEngineContract(t, engine, "amidar", seed)
}

func TestEngine_Counters(t *testing.T) {
	ctx := context.Background()
	engine, err := memory.NewEngine("amidar", domain.Snapshot{"score": 1})
	require.NoError(t, err)

	_, err = engine.ReadState(ctx)
	require.NoError(t, err)
	require.NoError(t, engine.WriteState(ctx, domain.Snapshot{"score": 2}))

	assert.Equal(t, 1, engine.Reads())
	assert.Equal(t, 1, engine.Writes())
	assert.JSONEq(t, `{"score":2}`, string(engine.JSON()))
}

func TestEngine_Geometry(t *testing.T) {
	ctx := context.Background()
	engine, err := memory.NewEngine("amidar", domain.Snapshot{}, memory.WithGridGeometry(4, 4, 0, 0))
	require.NoError(t, err)

	res, err := engine.Query(ctx, ports.QueryTileToWorld, map[string]any{"tx": 2, "ty": 1})
	require.NoError(t, err)
	assert.Equal(t, []any{8, 4}, res)
}

func TestEngine_Config(t *testing.T) {
	ctx := context.Background()
	bare, err := memory.NewEngine("amidar", domain.Snapshot{})
	require.NoError(t, err)
	_, err = bare.Config(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	configured, err := memory.NewEngine("amidar", domain.Snapshot{}, memory.WithConfig(domain.Snapshot{"jump_time": 10}))
	require.NoError(t, err)
	cfg, err := configured.Config(ctx)
	require.NoError(t, err)
	assert.Equal(t, json.Number("10"), cfg["jump_time"])
}

func TestEngine_RejectsNonObject(t *testing.T) {
	_, err := memory.NewEngineJSON("amidar", []byte(`[1,2]`))
	assert.Error(t, err)
}

func TestArchive_Contract(t *testing.T) {
	ports.RunArchiveContract(t, memory.NewArchive(0))
}

func TestArchive_Max(t *testing.T) {
	ctx := context.Background()
	a := memory.NewArchive(2)
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, a.Record(ctx, domain.Commit{ID: id, Game: "amidar"}))
	}

	_, err := a.Get(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrCommitNotFound)

	list, err := a.List(ctx, "amidar", 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c", list[0].ID)
}
