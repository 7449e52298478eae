package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/KDL-umass/Toybox/pkg/domain"
	"github.com/KDL-umass/Toybox/pkg/ports"
)

type loggingMiddleware struct {
	passthrough
	logger *slog.Logger
}

// Logging logs every engine call at debug level, and failures at warn.
func Logging(logger *slog.Logger) Middleware {
	return func(next ports.Engine) ports.Engine {
		return &loggingMiddleware{passthrough: passthrough{next: next}, logger: logger}
	}
}

func (m *loggingMiddleware) log(ctx context.Context, op string, start time.Time, err error, attrs ...any) {
	attrs = append(attrs, "op", op, "duration", time.Since(start))
	if err != nil {
		m.logger.WarnContext(ctx, "engine call failed", append(attrs, "err", err)...)
		return
	}
	m.logger.DebugContext(ctx, "engine call", attrs...)
}

func (m *loggingMiddleware) GameName(ctx context.Context) (string, error) {
	start := time.Now()
	name, err := m.next.GameName(ctx)
	m.log(ctx, "GameName", start, err)
	return name, err
}

func (m *loggingMiddleware) ReadState(ctx context.Context) (domain.Snapshot, error) {
	start := time.Now()
	snap, err := m.next.ReadState(ctx)
	m.log(ctx, "ReadState", start, err, "keys", len(snap))
	return snap, err
}

func (m *loggingMiddleware) WriteState(ctx context.Context, snap domain.Snapshot) error {
	start := time.Now()
	err := m.next.WriteState(ctx, snap)
	m.log(ctx, "WriteState", start, err, "keys", len(snap))
	return err
}

func (m *loggingMiddleware) Query(ctx context.Context, name string, arg any) (any, error) {
	start := time.Now()
	res, err := m.next.Query(ctx, name, arg)
	m.log(ctx, "Query", start, err, "query", name)
	return res, err
}
