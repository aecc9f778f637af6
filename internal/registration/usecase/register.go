package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/registra/internal/pkg/goerror"
	"github.com/shandysiswandi/registra/internal/pkg/validator"
	"github.com/shandysiswandi/registra/internal/registration/entity"
)

type RegisterOutput struct {
	ID          int64
	Name        string
	Email       string
	PhoneNumber string
	CreatedAt   time.Time
}

// Register stores a validated registration. Only hashes of the NIK and the
// password are persisted.
func (s *Usecase) Register(ctx context.Context, in entity.Registration) (*RegisterOutput, error) {
	ctx, span := s.startSpan(ctx, "Register")
	defer span.End()

	nikHash, err := s.HashNIK(in.NIK)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash nik", "error", err)
		return nil, goerror.NewServer(err)
	}

	passwordHash, err := s.password.Hash(in.Password)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "error", err)
		return nil, goerror.NewServer(err)
	}

	user := entity.NewUser{
		ID:           s.uid.Generate(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(passwordHash),
		NIKHash:      nikHash,
		PhoneNumber:  in.PhoneNumber,
		CreatedAt:    s.clock.Now(),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if field, ok := entity.ViolatedField(err); ok {
			slog.WarnContext(ctx, "registration lost uniqueness race", "field", field)
			return nil, goerror.NewInvalidInput(map[string][]string{
				field: {s.translator.Translate(field, validator.RuleUnique)},
			})
		}

		slog.ErrorContext(ctx, "failed to repo create user", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if s.cfg.GetBool("modules.registration.publish_event") {
		s.publishUserRegistered(ctx, UserRegisteredEvent{
			UserID:       user.ID,
			Name:         user.Name,
			Email:        user.Email,
			PhoneNumber:  user.PhoneNumber,
			RegisteredAt: user.CreatedAt,
		})
	}

	return &RegisterOutput{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
		CreatedAt:   user.CreatedAt,
	}, nil
}

func (s *Usecase) publishUserRegistered(ctx context.Context, msg UserRegisteredEvent) {
	ok := s.goroutine.Go(context.WithoutCancel(ctx), "registration.publish_user_registered", func(ctx context.Context) error {
		if err := s.events.PublishUserRegistered(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "failed to publish user registered", "user_id", msg.UserID, "error", err)
			return err
		}
		return nil
	})
	if !ok {
		slog.WarnContext(ctx, "user registered event dropped", "user_id", msg.UserID)
	}
}
