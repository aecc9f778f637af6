// Package idempotency guards an operation with a client-supplied key stored in
// Redis so that retries of the same request run it at most once.
package idempotency

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrAlreadyInProgress = errors.New("operation already in progress")
	ErrInvalidState      = errors.New("invalid state")
)

type State string

const (
	StateNone       State = "none"        // operation can proceed
	StateInProgress State = "in_progress" // another caller holds the key
	StateCompleted  State = "completed"   // result stored, replay it
	StateError      State = "error"
)

func (s State) String() string {
	return string(s)
}

// Result is what Exec returns: the payload produced by the operation and
// whether it was replayed from a previous run.
type Result struct {
	Payload  []byte
	Replayed bool
}

type Idempotency interface {
	Acquire(ctx context.Context, key string, lockDuration time.Duration) (State, []byte, error)
	MarkCompleted(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	Release(ctx context.Context, key string) error
	Exec(ctx context.Context, key string, fn func(context.Context) ([]byte, error), opts ...Option) (Result, error)
}

type StateTracker struct {
	client redis.UniversalClient
	prefix string
}

func New(client redis.UniversalClient, prefix string) *StateTracker {
	if prefix == "" {
		prefix = "idempotency:"
	}

	return &StateTracker{client: client, prefix: prefix}
}

const (
	defaultLockDuration = time.Minute
	defaultStateTTL     = 24 * time.Hour
)

type Option func(*execOptions)

type execOptions struct {
	lockDuration time.Duration
	stateTTL     time.Duration
}

// WithLockDuration bounds how long an in-progress key blocks other callers if
// the holder dies without finishing.
func WithLockDuration(lockDuration time.Duration) Option {
	return func(o *execOptions) {
		o.lockDuration = lockDuration
	}
}

// WithStateTTL sets how long a completed result is kept for replay.
func WithStateTTL(stateTTL time.Duration) Option {
	return func(o *execOptions) {
		o.stateTTL = stateTTL
	}
}

func (s *StateTracker) stateKey(key string) string   { return s.prefix + key }
func (s *StateTracker) payloadKey(key string) string { return s.prefix + key + ":payload" }

// Acquire tries to start an operation. On StateCompleted the stored payload is
// returned as well.
func (s *StateTracker) Acquire(ctx context.Context, key string, lockDuration time.Duration) (State, []byte, error) {
	fk := s.stateKey(key)

	acquired, err := s.client.SetNX(ctx, fk, StateInProgress.String(), lockDuration).Result()
	if err != nil {
		return StateError, nil, err
	}
	if acquired {
		return StateNone, nil, nil
	}

	result, err := s.client.Get(ctx, fk).Result()
	if errors.Is(err, redis.Nil) {
		// expired between SetNX and Get
		acquired, err = s.client.SetNX(ctx, fk, StateInProgress.String(), lockDuration).Result()
		if err != nil {
			return StateError, nil, err
		}
		if acquired {
			return StateNone, nil, nil
		}
		return StateError, nil, ErrInvalidState
	}
	if err != nil {
		return StateError, nil, err
	}

	switch result {
	case StateInProgress.String():
		return StateInProgress, nil, nil
	case StateCompleted.String():
		payload, err := s.client.Get(ctx, s.payloadKey(key)).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return StateError, nil, err
		}
		return StateCompleted, payload, nil
	default:
		return StateError, nil, ErrInvalidState
	}
}

// MarkCompleted stores payload and flips the key to completed atomically.
func (s *StateTracker) MarkCompleted(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.payloadKey(key), payload, ttl)
		pipe.Set(ctx, s.stateKey(key), StateCompleted.String(), ttl)
		return nil
	})

	return err
}

// Release forgets key so the operation may be attempted again.
func (s *StateTracker) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.stateKey(key), s.payloadKey(key)).Err()
}

// Exec runs fn once per key. A failing fn releases the key, so a corrected
// retry with the same key is accepted; a completed key replays its payload.
func (s *StateTracker) Exec(ctx context.Context, key string, fn func(context.Context) ([]byte, error), opts ...Option) (Result, error) {
	execOpt := &execOptions{
		lockDuration: defaultLockDuration,
		stateTTL:     defaultStateTTL,
	}
	for _, opt := range opts {
		opt(execOpt)
	}
	if execOpt.lockDuration <= 0 {
		execOpt.lockDuration = defaultLockDuration
	}
	if execOpt.stateTTL <= 0 {
		execOpt.stateTTL = defaultStateTTL
	}

	state, payload, err := s.Acquire(ctx, key, execOpt.lockDuration)
	if err != nil {
		return Result{}, err
	}

	switch state {
	case StateInProgress:
		return Result{}, ErrAlreadyInProgress
	case StateCompleted:
		return Result{Payload: payload, Replayed: true}, nil
	}

	payload, err = fn(ctx)
	if err != nil {
		if relErr := s.Release(context.WithoutCancel(ctx), key); relErr != nil {
			return Result{}, errors.Join(err, relErr)
		}
		return Result{}, err
	}

	// fn has taken effect, so its result is returned even if it cannot be
	// stored. The key is released rather than left in progress.
	ctx = context.WithoutCancel(ctx)
	if err := s.MarkCompleted(ctx, key, payload, execOpt.stateTTL); err != nil {
		slog.WarnContext(ctx, "idempotency: failed to store completed result", "key", key, "error", err)
		if relErr := s.Release(ctx, key); relErr != nil {
			slog.WarnContext(ctx, "idempotency: failed to release key", "key", key, "error", relErr)
		}
	}

	return Result{Payload: payload}, nil
}
