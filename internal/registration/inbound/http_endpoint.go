package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/shandysiswandi/registra/internal/pkg/goerror"
	"github.com/shandysiswandi/registra/internal/pkg/idempotency"
	"github.com/shandysiswandi/registra/internal/pkg/router"
	"github.com/shandysiswandi/registra/internal/registration/entity"
)

const (
	HeaderIdempotencyKey     = "Idempotency-Key"
	HeaderIdempotentReplayed = "Idempotent-Replayed"

	idempotencyScope  = "registration:"
	maxIdempotencyKey = 255
)

// HTTPEndpoint exposes the registration HTTP handlers.
type HTTPEndpoint struct {
	uc      uc
	idem    idempotency.Idempotency
	idemTTL time.Duration
}

// Register validates the payload and stores the user.
// @Summary Register user
// @Tags Registration
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replays the first completed response for the same key"
// @Success 201 {object} router.successResponse{data=RegisterResponse}
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 409 {object} router.errorResponse "Same Idempotency-Key still in progress"
// @Failure 422 {object} router.errorResponse "Validation failed"
// @Failure 503 {object} router.errorResponse "User directory unavailable"
// @Failure 504 {object} router.errorResponse "User directory timed out"
// @Router /api/v1/register [post]
func (h *HTTPEndpoint) Register(r *router.Request) (any, error) {
	var raw entity.RawPayload
	if err := r.DecodeBody(&raw); err != nil {
		return nil, err
	}

	key := r.GetHeader(HeaderIdempotencyKey)
	if h.idem == nil || key == "" {
		return h.register(r.Context(), raw)
	}
	if len(key) > maxIdempotencyKey {
		return nil, goerror.NewInvalidFormat("Idempotency-Key is too long")
	}

	res, err := h.idem.Exec(r.Context(), idempotencyScope+key, func(ctx context.Context) ([]byte, error) {
		resp, err := h.register(ctx, raw)
		if err != nil {
			return nil, err
		}
		return json.Marshal(router.Envelope(resp.Message(), resp))
	}, idempotency.WithStateTTL(h.idemTTL))
	if err != nil {
		var gerr *goerror.Error
		switch {
		case errors.Is(err, idempotency.ErrAlreadyInProgress):
			return nil, goerror.NewBusiness("A request with this Idempotency-Key is still in progress", goerror.CodeConflict)
		case errors.As(err, &gerr):
			return nil, gerr
		default:
			slog.ErrorContext(r.Context(), "failed to run idempotent registration", "error", err)
			return nil, goerror.NewUnavailable(err)
		}
	}

	header := http.Header{}
	if res.Replayed {
		header.Set(HeaderIdempotentReplayed, "true")
	}

	return &router.Raw{Body: res.Payload, Code: http.StatusCreated, Header: header}, nil
}

func (h *HTTPEndpoint) register(ctx context.Context, raw entity.RawPayload) (*RegisterResponse, error) {
	result, err := h.uc.Validate(ctx, raw)
	if err != nil {
		return nil, err
	}
	if !result.Valid() {
		return nil, goerror.NewInvalidInput(result.Report)
	}

	out, err := h.uc.Register(ctx, *result.Payload)
	if err != nil {
		return nil, err
	}

	return &RegisterResponse{
		ID:          formatID(out.ID),
		Name:        out.Name,
		Email:       out.Email,
		PhoneNumber: out.PhoneNumber,
		CreatedAt:   out.CreatedAt,
	}, nil
}

// Validate runs every registration rule without storing anything.
// @Summary Dry-run registration validation
// @Tags Registration
// @Accept json
// @Produce json
// @Success 200 {object} router.successResponse{data=ValidateResponse}
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 422 {object} router.errorResponse "Validation failed"
// @Router /api/v1/register/validate [post]
func (h *HTTPEndpoint) Validate(r *router.Request) (any, error) {
	var raw entity.RawPayload
	if err := r.DecodeBody(&raw); err != nil {
		return nil, err
	}

	result, err := h.uc.Validate(r.Context(), raw)
	if err != nil {
		return nil, err
	}
	if !result.Valid() {
		return nil, goerror.NewInvalidInput(result.Report)
	}

	return ValidateResponse{Valid: true}, nil
}
