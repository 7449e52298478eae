package amidar_test

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"os"
	"testing"

	"github.com/KDL-umass/Toybox/pkg/adapters/memory"
	"github.com/KDL-umass/Toybox/pkg/amidar"
	"github.com/KDL-umass/Toybox/pkg/domain"
	"github.com/KDL-umass/Toybox/pkg/entity"
	"github.com/KDL-umass/Toybox/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, opts ...memory.Option) *memory.Engine {
	t.Helper()
	data, err := os.ReadFile("testdata/start.json")
	require.NoError(t, err)
	opts = append([]memory.Option{memory.WithGridGeometry(4, 4, 0, 0)}, opts...)
	engine, err := memory.NewEngineJSON(amidar.GameName, data, opts...)
	require.NoError(t, err)
	return engine
}

func seeded() amidar.Option {
	return amidar.WithRand(rand.New(rand.NewPCG(1, 2)))
}

func TestRemoveEnemy_PersistsAcrossSessions(t *testing.T) {
	ctx := context.Background()
	engine := newEngine(t)
	mgr := session.NewManager(engine)

	iv, err := amidar.Open(ctx, mgr)
	require.NoError(t, err)
	require.Equal(t, 5, iv.NumEnemies())
	require.NoError(t, iv.RemoveEnemy(4))
	assert.True(t, iv.Dirty())
	require.NoError(t, iv.Close(ctx))

	iv, err = amidar.Open(ctx, mgr)
	require.NoError(t, err)
	defer iv.Discard(ctx)
	assert.Equal(t, 4, iv.NumEnemies())
	assert.False(t, iv.Dirty())
	assert.Equal(t, 1, engine.Writes())
}

func TestSetEnemyProtocol_PerimeterEncoding(t *testing.T) {
	ctx := context.Background()
	engine := newEngine(t)

	err := amidar.Run(ctx, session.NewManager(engine), func(iv *amidar.Intervention) error {
		if err := iv.SetEnemyProtocol(0, amidar.PerimeterAI, entity.Args{"start": amidar.TilePoint{}}); err != nil {
			return err
		}
		e, err := iv.Game().Enemies().At(0)
		require.NoError(t, err)
		assert.Equal(t, amidar.PerimeterAI, e.AI().Protocol())
		return nil
	})
	require.NoError(t, err)

	snap, err := engine.ReadState(ctx)
	require.NoError(t, err)
	first := snap["enemies"].([]any)[0].(map[string]any)
	assert.JSONEq(t, `{"EnemyPerimeterAI":{"start":{"tx":0,"ty":0}}}`, mustJSON(t, first["ai"]))
}

func TestSetEnemyProtocol_MissingArgsKeepState(t *testing.T) {
	ctx := context.Background()
	engine := newEngine(t)
	before := engine.JSON()

	err := amidar.Run(ctx, session.NewManager(engine), func(iv *amidar.Intervention) error {
		err := iv.SetEnemyProtocol(0, amidar.AmidarMvmt, entity.Args{"vert": amidar.Up})
		require.ErrorIs(t, err, domain.ErrProtocolValidation)

		e, _ := iv.Game().Enemies().At(0)
		assert.Equal(t, amidar.LookupAI, e.AI().Protocol())
		next, ok := e.AI().Arg("next")
		assert.True(t, ok)
		assert.Equal(t, 1, next)
		assert.False(t, iv.Dirty())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, engine.Writes())
	assert.Equal(t, before, engine.JSON())
}

func TestEnemy_SessionReferenceIsSealed(t *testing.T) {
	ctx := context.Background()
	err := amidar.Run(ctx, session.NewManager(newEngine(t)), func(iv *amidar.Intervention) error {
		board := iv.Game().Board()
		width := board.Width()
		assert.ErrorIs(t, board.SetTracker(entity.NewTracker()), domain.ErrConstructionViolation)
		assert.Equal(t, width, board.Width())
		assert.Same(t, iv.Session().Tracker(), board.Tracker())
		return nil
	})
	require.NoError(t, err)
}

func TestDirtyFlag_WriteCount(t *testing.T) {
	ctx := context.Background()
	engine := newEngine(t)
	mgr := session.NewManager(engine)

	require.NoError(t, amidar.Run(ctx, mgr, func(iv *amidar.Intervention) error {
		_ = iv.Score()
		_ = iv.PaintedTiles()
		_, _ = iv.RandomTrackPosition(ctx)
		return nil
	}))
	assert.Equal(t, 0, engine.Writes())

	require.NoError(t, amidar.Run(ctx, mgr, func(iv *amidar.Intervention) error {
		return iv.SetLives(9)
	}))
	assert.Equal(t, 1, engine.Writes())

	snap, err := engine.ReadState(ctx)
	require.NoError(t, err)
	assert.Equal(t, json.Number("9"), snap["lives"])
}

func TestRun_ErrorDiscardsChanges(t *testing.T) {
	ctx := context.Background()
	engine := newEngine(t)
	boom := errors.New("boom")

	err := amidar.Run(ctx, session.NewManager(engine), func(iv *amidar.Intervention) error {
		require.NoError(t, iv.SetLives(0))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, engine.Writes())
}

func TestTileHelpers(t *testing.T) {
	ctx := context.Background()
	err := amidar.Run(ctx, session.NewManager(newEngine(t)), func(iv *amidar.Intervention) error {
		assert.Equal(t, 5, iv.PaintedTiles())
		assert.Equal(t, 10, iv.UnpaintedTiles())
		assert.Equal(t, 9, iv.CountTiles(amidar.Empty))
		assert.Equal(t, 1, iv.CountTiles(amidar.ChaseMarker))
		assert.Len(t, iv.FilterTiles(nil), 25)

		tile, err := iv.TileAt(4, 2)
		require.NoError(t, err)
		tp, err := iv.TilePointOf(tile)
		require.NoError(t, err)
		assert.Equal(t, amidar.TilePoint{TX: 4, TY: 2}, tp)
		assert.True(t, iv.IsTileWalkable(tile))

		_, err = iv.TileAt(5, 0)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		stray, err := amidar.DecodeTile(iv.Session().Tracker(), "Painted")
		require.NoError(t, err)
		_, err = iv.TilePointOf(stray)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		_, err = iv.RandomTile(func(*amidar.Tile) bool { return false })
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.False(t, iv.Dirty())

		require.NoError(t, iv.SetTileTag(amidar.TilePoint{TX: 1, TY: 4}, amidar.Painted))
		assert.Equal(t, 6, iv.PaintedTiles())
		assert.ErrorIs(t, iv.SetTileTag(amidar.TilePoint{TX: 1, TY: 4}, "Lava"), domain.ErrInvalidValue)
		return nil
	})
	require.NoError(t, err)
}

func TestCoordinateQueries(t *testing.T) {
	ctx := context.Background()
	err := amidar.Run(ctx, session.NewManager(newEngine(t)), func(iv *amidar.Intervention) error {
		wp, err := iv.TilePointToWorld(ctx, amidar.TilePoint{TX: 2, TY: 3})
		require.NoError(t, err)
		assert.Equal(t, amidar.WorldPoint{X: 8, Y: 12}, wp)

		tp, err := iv.WorldToTilePoint(ctx, amidar.WorldPoint{X: 17, Y: 3})
		require.NoError(t, err)
		assert.Equal(t, amidar.TilePoint{TX: 4, TY: 0}, tp)

		pos, err := iv.RandomTrackPosition(ctx)
		require.NoError(t, err)
		back, err := iv.WorldToTilePoint(ctx, pos)
		require.NoError(t, err)
		tile, err := iv.TileAt(back.TX, back.TY)
		require.NoError(t, err)
		assert.True(t, tile.Walkable())
		return nil
	}, seeded())
	require.NoError(t, err)
}

func TestCoordinateQueries_MapResult(t *testing.T) {
	ctx := context.Background()
	engine := newEngine(t, memory.WithQuery("tile_to_world", func(_ context.Context, arg any) (any, error) {
		return map[string]any{"x": 100, "y": 200}, nil
	}))
	err := amidar.Run(ctx, session.NewManager(engine), func(iv *amidar.Intervention) error {
		wp, err := iv.TilePointToWorld(ctx, amidar.TilePoint{})
		require.NoError(t, err)
		assert.Equal(t, amidar.WorldPoint{X: 100, Y: 200}, wp)
		return nil
	})
	require.NoError(t, err)
}

func TestCoordinateQueries_Unsupported(t *testing.T) {
	ctx := context.Background()
	data, err := os.ReadFile("testdata/start.json")
	require.NoError(t, err)
	engine, err := memory.NewEngineJSON(amidar.GameName, data)
	require.NoError(t, err)

	err = amidar.Run(ctx, session.NewManager(engine), func(iv *amidar.Intervention) error {
		_, err := iv.TilePointToWorld(ctx, amidar.TilePoint{})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestSetPlayerRandomStart(t *testing.T) {
	ctx := context.Background()
	engine := newEngine(t)
	mgr := session.NewManager(engine)

	allowed := []amidar.WorldPoint{{X: 8, Y: 0}, {X: 0, Y: 8}, {X: 16, Y: 8}}
	for seed := uint64(0); seed < 8; seed++ {
		err := amidar.Run(ctx, mgr, func(iv *amidar.Intervention) error {
			if err := iv.SetPlayerRandomStart(ctx, 2); err != nil {
				return err
			}
			assert.Contains(t, allowed, iv.Game().Player().Position())
			return nil
		}, amidar.WithRand(rand.New(rand.NewPCG(seed, seed))))
		require.NoError(t, err)
	}

	writes := engine.Writes()
	err := amidar.Run(ctx, mgr, func(iv *amidar.Intervention) error {
		return iv.SetPlayerRandomStart(ctx, 3)
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, writes, engine.Writes())
}

func TestRandomDirection(t *testing.T) {
	ctx := context.Background()
	err := amidar.Run(ctx, session.NewManager(newEngine(t)), func(iv *amidar.Intervention) error {
		for i := 0; i < 16; i++ {
			d, err := iv.RandomDirection(amidar.TilePoint{TX: 0, TY: 0})
			require.NoError(t, err)
			assert.Contains(t, []amidar.Direction{amidar.Right, amidar.Down}, d)
		}

		d, err := iv.RandomDirection(amidar.TilePoint{TX: 0, TY: 2})
		require.NoError(t, err)
		assert.Contains(t, []amidar.Direction{amidar.Up, amidar.Down}, d)

		_, err = iv.RandomDirection(amidar.TilePoint{TX: 2, TY: 2})
		assert.ErrorIs(t, err, domain.ErrInvalidValue)

		_, err = iv.RandomDirection(amidar.TilePoint{TX: 9, TY: 9})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		return nil
	}, seeded())
	require.NoError(t, err)
}

func TestModes(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults", func(t *testing.T) {
		err := amidar.Run(ctx, session.NewManager(newEngine(t)), func(iv *amidar.Intervention) error {
			assert.True(t, iv.RegularMode())
			require.NoError(t, iv.SetMode(ctx, amidar.ModeJump, 0))
			assert.True(t, iv.JumpMode())
			assert.Equal(t, amidar.DefaultJumpTime, iv.Game().JumpTimer())

			require.NoError(t, iv.SetMode(ctx, amidar.ModeChase, 12))
			assert.True(t, iv.ChaseMode())
			assert.Equal(t, 12, iv.Game().ChaseTimer())

			require.NoError(t, iv.SetMode(ctx, amidar.ModeRegular, 0))
			assert.True(t, iv.RegularMode())

			assert.ErrorIs(t, iv.SetMode(ctx, amidar.Mode("frozen"), 0), domain.ErrInvalidValue)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("engine config", func(t *testing.T) {
		engine := newEngine(t, memory.WithConfig(domain.Snapshot{"jump_time": 30, "chase_time": 40}))
		err := amidar.Run(ctx, session.NewManager(engine), func(iv *amidar.Intervention) error {
			require.NoError(t, iv.SetMode(ctx, amidar.ModeJump, 0))
			require.NoError(t, iv.SetMode(ctx, amidar.ModeChase, 0))
			assert.Equal(t, 30, iv.Game().JumpTimer())
			assert.Equal(t, 40, iv.Game().ChaseTimer())
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("option fallback", func(t *testing.T) {
		err := amidar.Run(ctx, session.NewManager(newEngine(t)), func(iv *amidar.Intervention) error {
			require.NoError(t, iv.SetMode(ctx, amidar.ModeChase, 0))
			assert.Equal(t, 99, iv.Game().ChaseTimer())
			return nil
		}, amidar.WithModeDurations(0, 99))
		require.NoError(t, err)
	})

	t.Run("parse", func(t *testing.T) {
		m, err := amidar.ParseMode("chase")
		require.NoError(t, err)
		assert.Equal(t, amidar.ModeChase, m)
		_, err = amidar.ParseMode("sprint")
		assert.ErrorIs(t, err, domain.ErrInvalidValue)
	})
}

func TestCounters(t *testing.T) {
	ctx := context.Background()
	err := amidar.Run(ctx, session.NewManager(newEngine(t)), func(iv *amidar.Intervention) error {
		assert.Equal(t, 0, iv.Score())
		assert.Equal(t, 4, iv.JumpsRemaining())
		assert.False(t, iv.AnyEnemyCaught())

		e, err := iv.Game().Enemies().At(3)
		require.NoError(t, err)
		require.NoError(t, e.SetCaught(true))
		assert.True(t, iv.AnyEnemyCaught())

		assert.ErrorIs(t, iv.RemoveEnemy(7), domain.ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestClosedSessionRejectsMutation(t *testing.T) {
	ctx := context.Background()
	engine := newEngine(t)
	iv, err := amidar.Open(ctx, session.NewManager(engine))
	require.NoError(t, err)
	game := iv.Game()
	require.NoError(t, iv.Close(ctx))

	assert.ErrorIs(t, game.SetLives(1), domain.ErrSessionClosed)
	assert.Equal(t, 0, engine.Writes())
}

func TestOpen_WrongGame(t *testing.T) {
	ctx := context.Background()
	data, err := os.ReadFile("testdata/start.json")
	require.NoError(t, err)
	engine, err := memory.NewEngineJSON("breakout", data)
	require.NoError(t, err)

	_, err = amidar.Open(ctx, session.NewManager(engine))
	assert.ErrorIs(t, err, domain.ErrSchemaMismatch)
	assert.Equal(t, 0, engine.Reads())
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}
