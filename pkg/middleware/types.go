// Package middleware decorates a ports.Engine with cross-cutting behavior.
package middleware

import (
	"context"
	"fmt"

	"github.com/KDL-umass/Toybox/pkg/domain"
	"github.com/KDL-umass/Toybox/pkg/ports"
)

// Middleware allows wrapping an Engine to add behavior.
type Middleware func(ports.Engine) ports.Engine

// Chain applies mws so that the first one is outermost.
func Chain(engine ports.Engine, mws ...Middleware) ports.Engine {
	for i := len(mws) - 1; i >= 0; i-- {
		engine = mws[i](engine)
	}
	return engine
}

// passthrough forwards every call to next, including Config.
type passthrough struct {
	next ports.Engine
}

func (p passthrough) GameName(ctx context.Context) (string, error) {
	return p.next.GameName(ctx)
}

func (p passthrough) ReadState(ctx context.Context) (domain.Snapshot, error) {
	return p.next.ReadState(ctx)
}

func (p passthrough) WriteState(ctx context.Context, snap domain.Snapshot) error {
	return p.next.WriteState(ctx, snap)
}

func (p passthrough) Query(ctx context.Context, name string, arg any) (any, error) {
	return p.next.Query(ctx, name, arg)
}

func (p passthrough) Config(ctx context.Context) (domain.Snapshot, error) {
	src, ok := p.next.(ports.ConfigSource)
	if !ok {
		return nil, fmt.Errorf("%w: engine exposes no config", domain.ErrNotFound)
	}
	return src.Config(ctx)
}
