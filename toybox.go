package toybox

import (
	"context"
	"log/slog"

	"github.com/KDL-umass/Toybox/internal/logging"
	"github.com/KDL-umass/Toybox/pkg/amidar"
	"github.com/KDL-umass/Toybox/pkg/archive"
	"github.com/KDL-umass/Toybox/pkg/domain"
	"github.com/KDL-umass/Toybox/pkg/middleware"
	"github.com/KDL-umass/Toybox/pkg/observability"
	"github.com/KDL-umass/Toybox/pkg/ports"
	"github.com/KDL-umass/Toybox/pkg/session"
)

// Toybox is the high-level entry point of the library.
// It owns one engine handle and lends it to one session at a time.
type Toybox struct {
	engine     ports.Engine
	manager    *session.Manager
	logger     *slog.Logger
	amidarOpts []amidar.Option
}

type options struct {
	logger      *slog.Logger
	hooks       []domain.LifecycleHooks
	middlewares []middleware.Middleware
	sessionOpts []session.Option
	amidarOpts  []amidar.Option
	archive     ports.Archive
}

// Option defines a functional option for configuring Toybox.
type Option func(*options)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLocker makes sessions take a distributed lock on key for their lifetime.
func WithLocker(locker ports.DistributedLocker, key string) Option {
	return func(o *options) {
		o.sessionOpts = append(o.sessionOpts, session.WithLocker(locker))
		if key != "" {
			o.sessionOpts = append(o.sessionOpts, session.WithLockKey(key))
		}
	}
}

// WithSessionOptions passes raw options to the session Manager.
func WithSessionOptions(opts ...session.Option) Option {
	return func(o *options) {
		o.sessionOpts = append(o.sessionOpts, opts...)
	}
}

// WithHooks registers observability hooks. Repeated use adds hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(o *options) {
		o.hooks = append(o.hooks, hooks)
	}
}

// WithMiddleware wraps the engine. The first middleware is outermost.
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(o *options) {
		o.middlewares = append(o.middlewares, mws...)
	}
}

// WithArchive records every commit in a.
func WithArchive(a ports.Archive) Option {
	return func(o *options) {
		o.archive = a
	}
}

// WithMetrics feeds m from session hooks and engine calls.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) {
		o.hooks = append(o.hooks, m.Hooks())
		o.middlewares = append(o.middlewares, middleware.Instrument(m))
	}
}

// WithAmidarOptions applies opts to every Amidar intervention.
func WithAmidarOptions(opts ...amidar.Option) Option {
	return func(o *options) {
		o.amidarOpts = append(o.amidarOpts, opts...)
	}
}

// New creates a Toybox over engine.
func New(engine ports.Engine, opts ...Option) *Toybox {
	o := &options{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(o)
	}

	hooks := o.hooks
	if o.archive != nil {
		hooks = append(hooks, archive.Hooks(o.archive, o.logger))
	}

	wrapped := middleware.Chain(engine, o.middlewares...)
	sessionOpts := append([]session.Option{
		session.WithLogger(o.logger),
		session.WithHooks(domain.MergeHooks(hooks...)),
	}, o.sessionOpts...)

	return &Toybox{
		engine:     wrapped,
		manager:    session.NewManager(wrapped, sessionOpts...),
		logger:     o.logger,
		amidarOpts: o.amidarOpts,
	}
}

// Engine returns the wrapped engine handle.
func (t *Toybox) Engine() ports.Engine { return t.engine }

// Manager returns the session manager, for custom models.
func (t *Toybox) Manager() *session.Manager { return t.manager }

// Amidar runs fn inside one Amidar intervention. If fn fails or panics
// nothing is written back; otherwise the state is written only if fn
// changed something.
func (t *Toybox) Amidar(ctx context.Context, fn func(*amidar.Intervention) error, opts ...amidar.Option) error {
	return amidar.Run(ctx, t.manager, fn, t.withAmidar(opts)...)
}

// OpenAmidar opens an Amidar intervention that the caller must Close or Discard.
func (t *Toybox) OpenAmidar(ctx context.Context, opts ...amidar.Option) (*amidar.Intervention, error) {
	return amidar.Open(ctx, t.manager, t.withAmidar(opts)...)
}

func (t *Toybox) withAmidar(opts []amidar.Option) []amidar.Option {
	return append(append([]amidar.Option(nil), t.amidarOpts...), opts...)
}
