package middleware

import (
	"context"

	"github.com/KDL-umass/Toybox/pkg/domain"
	"github.com/KDL-umass/Toybox/pkg/ports"
)

type readOnlyMiddleware struct {
	passthrough
}

// ReadOnly rejects every WriteState with domain.ErrReadOnly.
// A session over it can still be mutated; its Close then fails and discards.
func ReadOnly() Middleware {
	return func(next ports.Engine) ports.Engine {
		return &readOnlyMiddleware{passthrough{next: next}}
	}
}

func (m *readOnlyMiddleware) WriteState(context.Context, domain.Snapshot) error {
	return domain.ErrReadOnly
}
