package mcp

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"os"
	"testing"

	"github.com/KDL-umass/Toybox/pkg/adapters/memory"
	"github.com/KDL-umass/Toybox/pkg/amidar"
	"github.com/KDL-umass/Toybox/pkg/domain"
	"github.com/KDL-umass/Toybox/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *memory.Engine) {
	t.Helper()
	data, err := os.ReadFile("../../amidar/testdata/start.json")
	require.NoError(t, err)
	eng, err := memory.NewEngineJSON(amidar.GameName, data, memory.WithGridGeometry(4, 4, 0, 0))
	require.NoError(t, err)

	s := NewServer(session.NewManager(eng),
		WithInterventionOptions(amidar.WithRand(rand.New(rand.NewPCG(1, 2)))),
	)
	return s, eng
}

func TestServer_ToolsRegistered(t *testing.T) {
	s, _ := newTestServer(t)

	tools := s.MCPServer().ListTools()
	for _, name := range []string{
		"get_game", "set_lives", "set_jumps", "set_mode",
		"remove_enemy", "set_tile_tag", "set_player_random_start",
	} {
		assert.Contains(t, tools, name)
	}
}

func TestGetGame_WritesNothing(t *testing.T) {
	s, eng := newTestServer(t)

	sum, err := s.handleGetGame(context.Background(), mcp.CallToolRequest{}, struct{}{})
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Lives)
	assert.Len(t, sum.Enemies, 5)
	assert.Equal(t, 0, eng.Writes())
}

func TestSetLives(t *testing.T) {
	s, eng := newTestServer(t)

	sum, err := s.handleSetLives(context.Background(), mcp.CallToolRequest{}, LivesArgs{Lives: 7})
	require.NoError(t, err)
	assert.Equal(t, 7, sum.Lives)
	assert.Equal(t, 1, eng.Writes())

	snap, err := eng.ReadState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, json.Number("7"), snap["lives"])
}

func TestSetMode(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	sum, err := s.handleSetMode(ctx, mcp.CallToolRequest{}, ModeArgs{Mode: "chase", Duration: 12})
	require.NoError(t, err)
	assert.Equal(t, amidar.ModeChase, sum.Mode)
	assert.Equal(t, 12, sum.ChaseTimer)

	_, err = s.handleSetMode(ctx, mcp.CallToolRequest{}, ModeArgs{Mode: "turbo"})
	assert.ErrorIs(t, err, domain.ErrInvalidValue)
}

func TestFailedToolWritesNothing(t *testing.T) {
	s, eng := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleRemoveEnemy(ctx, mcp.CallToolRequest{}, EnemyArgs{Index: 9})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.handleSetTileTag(ctx, mcp.CallToolRequest{}, TileTagArgs{TX: 0, TY: 0, Tag: "Glowing"})
	assert.ErrorIs(t, err, domain.ErrInvalidValue)

	assert.Equal(t, 0, eng.Writes())
	assert.False(t, s.manager.Busy())
}

func TestEditTools(t *testing.T) {
	s, eng := newTestServer(t)
	ctx := context.Background()

	sum, err := s.handleRemoveEnemy(ctx, mcp.CallToolRequest{}, EnemyArgs{Index: 0})
	require.NoError(t, err)
	assert.Len(t, sum.Enemies, 4)

	sum, err = s.handleSetTileTag(ctx, mcp.CallToolRequest{}, TileTagArgs{TX: 0, TY: 4, Tag: "Painted"})
	require.NoError(t, err)
	assert.Equal(t, 6, sum.Painted)

	sum, err = s.handleSetJumps(ctx, mcp.CallToolRequest{}, JumpsArgs{Jumps: 0})
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Jumps)

	_, err = s.handleRandomStart(ctx, mcp.CallToolRequest{}, RandomStartArgs{MinDistance: 1})
	require.NoError(t, err)

	assert.Equal(t, 4, eng.Writes())
}
