package registration

import (
	"net"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/registra/internal/pkg/clock"
	"github.com/shandysiswandi/registra/internal/pkg/config"
	"github.com/shandysiswandi/registra/internal/pkg/goroutine"
	"github.com/shandysiswandi/registra/internal/pkg/hash"
	"github.com/shandysiswandi/registra/internal/pkg/idempotency"
	"github.com/shandysiswandi/registra/internal/pkg/instrument"
	"github.com/shandysiswandi/registra/internal/pkg/messaging"
	"github.com/shandysiswandi/registra/internal/pkg/router"
	"github.com/shandysiswandi/registra/internal/pkg/uid"
	"github.com/shandysiswandi/registra/internal/pkg/validator"
	"github.com/shandysiswandi/registra/internal/registration/inbound"
	"github.com/shandysiswandi/registra/internal/registration/outbound/db"
	"github.com/shandysiswandi/registra/internal/registration/outbound/dns"
	"github.com/shandysiswandi/registra/internal/registration/outbound/mq"
	"github.com/shandysiswandi/registra/internal/registration/usecase"
)

// Migrations is the schema owned by this module.
var Migrations = db.Migrations

type Dependency struct {
	DBConn       *pgxpool.Pool              `validate:"required"`
	CacheConn    redis.UniversalClient      `validate:"required"`
	Goroutine    *goroutine.Manager         `validate:"required"`
	Router       *router.Router             `validate:"required"`
	Idempotency  idempotency.Idempotency    `validate:"required"`
	Messaging    messaging.Messaging        `validate:"required"`
	Config       config.Config              `validate:"required"`
	Instrument   instrument.Instrumentation `validate:"required"`
	UID          uid.NumberID               `validate:"required"`
	NIKHash      hash.Hash                  `validate:"required"`
	PasswordHash hash.Hash                  `validate:"required"`
	Clock        clock.Clocker              `validate:"required"`
	Validator    validator.Validator        `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	translator, err := usecase.NewTranslator(
		dep.Config.GetString("modules.registration.locale"),
		dep.Config.GetStringMap("modules.registration.messages"),
	)
	if err != nil {
		return err
	}

	repoDB := db.NewDB(dep.DBConn, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)
	domains := dns.NewChecker(dns.Config{
		Resolver: net.DefaultResolver,
		Cache:    dep.CacheConn,
		CacheTTL: dep.Config.GetSecond("modules.registration.email.dns_cache_ttl_seconds"),
		Timeout:  dep.Config.GetMillisecond("modules.registration.email.dns_timeout_ms"),
		Ins:      dep.Instrument,
	})

	uc := usecase.New(usecase.Dependency{
		Config:        dep.Config,
		Validator:     dep.Validator,
		Translator:    translator,
		NIKHash:       dep.NIKHash,
		PasswordHash:  dep.PasswordHash,
		UID:           dep.UID,
		Clock:         dep.Clock,
		Goroutine:     dep.Goroutine,
		Instrument:    dep.Instrument,
		Directory:     repoDB,
		DomainChecker: domains,
		Users:         repoDB,
		Events:        repoMsg,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc,
		inbound.WithIdempotency(dep.Idempotency, dep.Config.GetSecond("modules.registration.idempotency_ttl_seconds")),
	)

	return nil
}
