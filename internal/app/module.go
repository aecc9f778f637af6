package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/registra/internal/registration"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.registration.enabled") {
		if err := registration.New(registration.Dependency{
			DBConn:       a.dbConn,
			CacheConn:    a.cacheConn,
			Goroutine:    a.goroutine,
			Router:       a.router,
			Idempotency:  a.idemp,
			Messaging:    a.messaging,
			Config:       a.config,
			Instrument:   a.ins,
			UID:          a.uid,
			NIKHash:      a.nikHash,
			PasswordHash: a.password,
			Clock:        a.clock,
			Validator:    a.validator,
		}); err != nil {
			slog.Error("failed to init module registration", "error", err)
			os.Exit(1)
		}
	}
}
