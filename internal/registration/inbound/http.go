package inbound

import (
	"context"
	"time"

	"github.com/shandysiswandi/registra/internal/pkg/idempotency"
	"github.com/shandysiswandi/registra/internal/pkg/router"
	"github.com/shandysiswandi/registra/internal/registration/entity"
	"github.com/shandysiswandi/registra/internal/registration/usecase"
)

type uc interface {
	Validate(ctx context.Context, raw entity.RawPayload) (*entity.Result, error)
	Register(ctx context.Context, in entity.Registration) (*usecase.RegisterOutput, error)
}

type Option func(*HTTPEndpoint)

// WithIdempotency makes POST /api/v1/register honor the Idempotency-Key
// header, keeping completed responses for ttl.
func WithIdempotency(idem idempotency.Idempotency, ttl time.Duration) Option {
	return func(h *HTTPEndpoint) {
		h.idem = idem
		h.idemTTL = ttl
	}
}

func RegisterHTTPEndpoint(r *router.Router, uc uc, opts ...Option) {
	end := &HTTPEndpoint{uc: uc}
	for _, opt := range opts {
		opt(end)
	}

	r.POST("/api/v1/register", end.Register)
	r.POST("/api/v1/register/validate", end.Validate)
}
