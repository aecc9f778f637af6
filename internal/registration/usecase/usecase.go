package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/registra/internal/pkg/clock"
	"github.com/shandysiswandi/registra/internal/pkg/config"
	"github.com/shandysiswandi/registra/internal/pkg/goroutine"
	"github.com/shandysiswandi/registra/internal/pkg/hash"
	"github.com/shandysiswandi/registra/internal/pkg/instrument"
	"github.com/shandysiswandi/registra/internal/pkg/uid"
	"github.com/shandysiswandi/registra/internal/pkg/validator"
	"github.com/shandysiswandi/registra/internal/registration/entity"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const defaultLookupTimeout = 3 * time.Second

type UserRegisteredEvent struct {
	UserID       int64
	Name         string
	Email        string
	PhoneNumber  string
	RegisteredAt time.Time
}

// Directory answers the uniqueness questions asked during validation.
type Directory interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByNIKHash(ctx context.Context, nikHash string) (bool, error)
}

// DomainChecker reports whether an email domain can receive mail. A domain
// that does not exist yields false with a nil error.
type DomainChecker interface {
	Resolvable(ctx context.Context, domain string) (bool, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user entity.NewUser) error
}

type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, msg UserRegisteredEvent) error
}

type Dependency struct {
	Config        config.Config
	Validator     validator.Validator
	Translator    validator.Translator
	NIKHash       hash.Hash
	PasswordHash  hash.Hash
	UID           uid.NumberID
	Clock         clock.Clocker
	Goroutine     *goroutine.Manager
	Instrument    instrument.Instrumentation
	Directory     Directory
	DomainChecker DomainChecker
	Users         UserRepository
	Events        EventPublisher
}

type Usecase struct {
	cfg        config.Config
	validator  validator.Validator
	translator validator.Translator
	nikHash    hash.Hash
	password   hash.Hash
	uid        uid.NumberID
	clock      clock.Clocker
	goroutine  *goroutine.Manager
	ins        instrument.Instrumentation

	directory Directory
	domains   DomainChecker
	users     UserRepository
	events    EventPublisher

	failures metric.Int64Counter
}

func New(dep Dependency) *Usecase {
	ins := dep.Instrument
	if ins == nil {
		ins = instrument.NewNoop()
	}

	failures, err := ins.Meter("registration.usecase").Int64Counter("registration.validation.failures",
		metric.WithDescription("Number of registration field validation failures"))
	if err != nil {
		slog.Error("failed to create validation failures counter", "error", err)
	}

	return &Usecase{
		cfg:        dep.Config,
		validator:  dep.Validator,
		translator: dep.Translator,
		nikHash:    dep.NIKHash,
		password:   dep.PasswordHash,
		uid:        dep.UID,
		clock:      dep.Clock,
		goroutine:  dep.Goroutine,
		ins:        ins,
		directory:  dep.Directory,
		domains:    dep.DomainChecker,
		users:      dep.Users,
		events:     dep.Events,
		failures:   failures,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("registration.usecase").Start(ctx, name)
}

func (s *Usecase) lookupTimeout() time.Duration {
	if d := s.cfg.GetMillisecond("modules.registration.lookup_timeout_ms"); d > 0 {
		return d
	}
	return defaultLookupTimeout
}

// HashNIK returns the keyed hash under which a NIK is stored and looked up.
func (s *Usecase) HashNIK(nik string) (string, error) {
	sum, err := s.nikHash.Hash(nik)
	if err != nil {
		return "", err
	}
	return string(sum), nil
}
