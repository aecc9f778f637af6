package app

import (
	"context"
	"errors"
	"time"

	"github.com/shandysiswandi/registra/internal/pkg/goerror"
	"github.com/shandysiswandi/registra/internal/pkg/router"
)

const healthTimeout = 2 * time.Second

type healthResponse struct {
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

func (healthResponse) Message() string { return "Service healthy" }

// pinger checks one backing resource.
type pinger func(ctx context.Context) error

func checkHealth(ctx context.Context, db, cache pinger) (healthResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	resp := healthResponse{Database: "ok", Redis: "ok"}
	var errs []error
	if err := db(ctx); err != nil {
		resp.Database = "down"
		errs = append(errs, err)
	}
	if err := cache(ctx); err != nil {
		resp.Redis = "down"
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return resp, goerror.NewUnavailable(errors.Join(errs...))
	}

	return resp, nil
}

func (a *App) health(r *router.Request) (any, error) {
	resp, err := checkHealth(r.Context(), a.dbConn.Ping, func(ctx context.Context) error {
		return a.cacheConn.Ping(ctx).Err()
	})
	if err != nil {
		return nil, err
	}

	return resp, nil
}
