package ports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/KDL-umass/Toybox/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunEngineContract runs a suite of tests to verify that an Engine implementation
// adheres to the defined interface contract. The engine must currently hold
// seed, and report game as its name.
func RunEngineContract(t *testing.T, engine Engine, game string, seed domain.Snapshot) {
	ctx := context.Background()
	want, err := seed.Normalize()
	require.NoError(t, err)

	t.Run("GameName", func(t *testing.T) {
		name, err := engine.GameName(ctx)
		require.NoError(t, err)
		assert.Equal(t, game, name)
	})

	t.Run("ReadState returns the seed", func(t *testing.T) {
		got, err := engine.ReadState(ctx)
		require.NoError(t, err)
		assert.True(t, domain.Diff(want, got).IsEmpty(), "snapshot differs: %v", domain.Diff(want, got).Keys())
	})

	t.Run("ReadState returns a copy", func(t *testing.T) {
		got, err := engine.ReadState(ctx)
		require.NoError(t, err)
		got["contract-scribble"] = true

		again, err := engine.ReadState(ctx)
		require.NoError(t, err)
		assert.NotContains(t, again, "contract-scribble")
	})

	t.Run("WriteState then ReadState", func(t *testing.T) {
		next, err := want.Clone()
		require.NoError(t, err)
		next["contract-marker"] = "written"

		require.NoError(t, engine.WriteState(ctx, next))

		got, err := engine.ReadState(ctx)
		require.NoError(t, err)
		assert.Equal(t, "written", got["contract-marker"])

		// Restore the seed for the caller.
		require.NoError(t, engine.WriteState(ctx, want))
	})

	t.Run("Query unknown name", func(t *testing.T) {
		_, err := engine.Query(ctx, "contract-no-such-query", nil)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

// RunArchiveContract runs a suite of tests to verify that an Archive
// implementation adheres to the defined interface contract.
func RunArchiveContract(t *testing.T, archive Archive) {
	ctx := context.Background()
	suffix := time.Now().Format("20060102150405.000000000")
	base := time.Unix(1700000000, 0).UTC()

	commit := func(i int, game string) domain.Commit {
		return domain.Commit{
			ID:          fmt.Sprintf("contract-%s-%s-%d", suffix, game, i),
			SessionID:   fmt.Sprintf("session-%d", i),
			Game:        game,
			CommittedAt: base.Add(time.Duration(i) * time.Second),
			Changed:     []string{"lives"},
			Snapshot:    domain.Snapshot{"lives": i, "board": map[string]any{"width": 2}},
		}
	}

	t.Run("Record and Get", func(t *testing.T) {
		c := commit(0, "amidar")
		require.NoError(t, archive.Record(ctx, c))

		got, err := archive.Get(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, c.ID, got.ID)
		assert.Equal(t, c.SessionID, got.SessionID)
		assert.Equal(t, c.Game, got.Game)
		assert.True(t, c.CommittedAt.Equal(got.CommittedAt), "committed_at %v != %v", got.CommittedAt, c.CommittedAt)
		assert.Equal(t, c.Changed, got.Changed)

		want, err := c.Snapshot.Normalize()
		require.NoError(t, err)
		gotSnap, err := got.Snapshot.Normalize()
		require.NoError(t, err)
		assert.True(t, domain.Diff(want, gotSnap).IsEmpty())
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := archive.Get(ctx, "contract-missing-"+suffix)
		assert.ErrorIs(t, err, domain.ErrCommitNotFound)
	})

	t.Run("Record without ID", func(t *testing.T) {
		c := commit(99, "amidar")
		c.ID = ""
		assert.Error(t, archive.Record(ctx, c))
	})

	t.Run("List newest first", func(t *testing.T) {
		game := "contract-list-" + suffix
		for i := 1; i <= 3; i++ {
			require.NoError(t, archive.Record(ctx, commit(i, game)))
		}
		require.NoError(t, archive.Record(ctx, commit(4, game+"-other")))

		all, err := archive.List(ctx, game, 0)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, commit(3, game).ID, all[0].ID)
		assert.Equal(t, commit(1, game).ID, all[2].ID)

		limited, err := archive.List(ctx, game, 2)
		require.NoError(t, err)
		require.Len(t, limited, 2)
		assert.Equal(t, commit(3, game).ID, limited[0].ID)
		assert.Equal(t, commit(2, game).ID, limited[1].ID)

		none, err := archive.List(ctx, "contract-empty-"+suffix, 0)
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}
