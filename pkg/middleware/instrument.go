package middleware

import (
	"context"
	"time"

	"github.com/KDL-umass/Toybox/pkg/domain"
	"github.com/KDL-umass/Toybox/pkg/ports"
)

// CallObserver receives the latency and outcome of each engine call.
// observability.Metrics implements it.
type CallObserver interface {
	ObserveEngineCall(op string, d time.Duration, err error)
}

type instrumentMiddleware struct {
	passthrough
	obs CallObserver
}

// Instrument reports every engine call to obs.
func Instrument(obs CallObserver) Middleware {
	return func(next ports.Engine) ports.Engine {
		return &instrumentMiddleware{passthrough: passthrough{next: next}, obs: obs}
	}
}

func (m *instrumentMiddleware) GameName(ctx context.Context) (string, error) {
	start := time.Now()
	name, err := m.next.GameName(ctx)
	m.obs.ObserveEngineCall("GameName", time.Since(start), err)
	return name, err
}

func (m *instrumentMiddleware) ReadState(ctx context.Context) (domain.Snapshot, error) {
	start := time.Now()
	snap, err := m.next.ReadState(ctx)
	m.obs.ObserveEngineCall("ReadState", time.Since(start), err)
	return snap, err
}

func (m *instrumentMiddleware) WriteState(ctx context.Context, snap domain.Snapshot) error {
	start := time.Now()
	err := m.next.WriteState(ctx, snap)
	m.obs.ObserveEngineCall("WriteState", time.Since(start), err)
	return err
}

func (m *instrumentMiddleware) Query(ctx context.Context, name string, arg any) (any, error) {
	start := time.Now()
	res, err := m.next.Query(ctx, name, arg)
	m.obs.ObserveEngineCall("Query", time.Since(start), err)
	return res, err
}
