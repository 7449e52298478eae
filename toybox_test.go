package toybox_test

import (
	"context"
	"os"
	"testing"

	"github.com/KDL-umass/Toybox"
	"github.com/KDL-umass/Toybox/pkg/adapters/memory"
	"github.com/KDL-umass/Toybox/pkg/amidar"
	"github.com/KDL-umass/Toybox/pkg/domain"
	"github.com/KDL-umass/Toybox/pkg/middleware"
	"github.com/KDL-umass/Toybox/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) *memory.Engine {
	t.Helper()
	data, err := os.ReadFile("pkg/amidar/testdata/start.json")
	require.NoError(t, err)
	eng, err := memory.NewEngineJSON(amidar.GameName, data)
	require.NoError(t, err)
	return eng
}

func TestToybox_ArchivesCommits(t *testing.T) {
	eng := newEngine(t)
	arch := memory.NewArchive(0)
	tb := toybox.New(eng, toybox.WithArchive(arch))
	ctx := context.Background()

	require.NoError(t, tb.Amidar(ctx, func(iv *amidar.Intervention) error { return iv.SetLives(1) }))
	require.NoError(t, tb.Amidar(ctx, func(iv *amidar.Intervention) error { return nil }))

	commits, err := arch.List(ctx, amidar.GameName, 0)
	require.NoError(t, err)
	require.Len(t, commits, 1, "clean sessions are not archived")
	assert.Equal(t, []string{"lives"}, commits[0].Changed)
}

func TestToybox_Metrics(t *testing.T) {
	m := observability.NewMetrics(prometheus.NewRegistry())
	tb := toybox.New(newEngine(t), toybox.WithMetrics(m))
	ctx := context.Background()

	require.NoError(t, tb.Amidar(ctx, func(iv *amidar.Intervention) error { return iv.SetLives(2) }))
	assert.Error(t, tb.Amidar(ctx, func(iv *amidar.Intervention) error { return iv.RemoveEnemy(42) }))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SessionsOpened))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsCommitted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsDiscarded))
	assert.Equal(t, 3, testutil.CollectAndCount(m.EngineCalls), "GameName, ReadState and WriteState series")
}

func TestToybox_ReadOnlyDiscards(t *testing.T) {
	eng := newEngine(t)
	var discarded string
	tb := toybox.New(eng,
		toybox.WithMiddleware(middleware.ReadOnly()),
		toybox.WithHooks(domain.LifecycleHooks{
			OnDiscard: func(_ context.Context, e *domain.SessionEvent) { discarded = e.Reason },
		}),
	)

	err := tb.Amidar(context.Background(), func(iv *amidar.Intervention) error { return iv.SetLives(0) })
	assert.ErrorIs(t, err, domain.ErrReadOnly)
	assert.Contains(t, discarded, "read-only")
	assert.Equal(t, 0, eng.Writes())
	assert.False(t, tb.Manager().Busy())
}

func TestToybox_OpenAmidar(t *testing.T) {
	tb := toybox.New(newEngine(t))
	ctx := context.Background()

	iv, err := tb.OpenAmidar(ctx)
	require.NoError(t, err)

	_, err = tb.OpenAmidar(ctx)
	assert.ErrorIs(t, err, domain.ErrSessionBusy)

	iv.Discard(ctx)
	iv, err = tb.OpenAmidar(ctx)
	require.NoError(t, err)
	require.NoError(t, iv.Close(ctx))
}
