package middleware_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/KDL-umass/Toybox/internal/logging"
	"github.com/KDL-umass/Toybox/pkg/adapters/memory"
	"github.com/KDL-umass/Toybox/pkg/domain"
	"github.com/KDL-umass/Toybox/pkg/middleware"
	"github.com/KDL-umass/Toybox/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seed = domain.Snapshot{"score": 1, "lives": 3}

func newEngine(t *testing.T, opts ...memory.Option) *memory.Engine {
	t.Helper()
	eng, err := memory.NewEngine("amidar", seed, opts...)
	require.NoError(t, err)
	return eng
}

type recorder struct {
	ops  []string
	errs int
}

func (r *recorder) ObserveEngineCall(op string, _ time.Duration, err error) {
	r.ops = append(r.ops, op)
	if err != nil {
		r.errs++
	}
}

func TestPassthrough_Contract(t *testing.T) {
	var buf bytes.Buffer
	rec := &recorder{}
	eng := middleware.Chain(newEngine(t),
		middleware.Logging(logging.NewWriter(&buf, slog.LevelDebug)),
		middleware.Instrument(rec),
	)

	ports.RunEngineContract(t, eng, "amidar", seed)
	assert.Contains(t, buf.String(), "op=ReadState")
	assert.Contains(t, rec.ops, "WriteState")
	assert.Equal(t, 1, rec.errs, "only the unknown query fails")
}

func TestChain_Order(t *testing.T) {
	var order []string
	tag := func(name string) middleware.Middleware {
		return func(next ports.Engine) ports.Engine {
			order = append(order, name)
			return next
		}
	}
	middleware.Chain(newEngine(t), tag("outer"), tag("inner"))
	assert.Equal(t, []string{"inner", "outer"}, order)
}

func TestReadOnly(t *testing.T) {
	base := newEngine(t)
	eng := middleware.ReadOnly()(base)
	ctx := context.Background()

	err := eng.WriteState(ctx, domain.Snapshot{"score": 9})
	assert.ErrorIs(t, err, domain.ErrReadOnly)
	assert.Equal(t, 0, base.Writes())

	snap, err := eng.ReadState(ctx)
	require.NoError(t, err)
	assert.Contains(t, snap, "score")
}

func TestConfigForwarding(t *testing.T) {
	ctx := context.Background()

	with := middleware.ReadOnly()(newEngine(t, memory.WithConfig(domain.Snapshot{"jump_time": 5})))
	cfg, err := with.(ports.ConfigSource).Config(ctx)
	require.NoError(t, err)
	assert.Contains(t, cfg, "jump_time")

	without := middleware.ReadOnly()(newEngine(t))
	_, err = without.(ports.ConfigSource).Config(ctx)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestLogging_Failure(t *testing.T) {
	var buf bytes.Buffer
	eng := middleware.Chain(newEngine(t), middleware.Logging(logging.NewWriter(&buf, slog.LevelInfo)), middleware.ReadOnly())

	err := eng.WriteState(context.Background(), seed)
	require.ErrorIs(t, err, domain.ErrReadOnly)
	assert.Contains(t, buf.String(), "engine call failed")
	assert.Contains(t, buf.String(), "err=")
}
