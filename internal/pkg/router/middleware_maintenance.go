package router

import (
	"net/http"

	"github.com/samber/lo"
	"github.com/shandysiswandi/registra/internal/pkg/config"
)

// middlewareMaintenance answers 503 for routes listed in
// app.maintenance.endpoints (matched against the route pattern).
func middlewareMaintenance(cfg config.Config) Middleware {
	var endpoints []string
	if cfg != nil {
		endpoints = cfg.GetArray("app.maintenance.endpoints")
	}
	blocked := lo.SliceToMap(endpoints, func(e string) (string, struct{}) {
		return e, struct{}{}
	})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := blocked[matchedRoutePath(r)]; ok {
				writeJSON(w, errorResponse{Message: "service is under maintenance"}, http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
