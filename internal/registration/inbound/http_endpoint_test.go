package inbound

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/registra/internal/pkg/config"
	"github.com/shandysiswandi/registra/internal/pkg/goerror"
	"github.com/shandysiswandi/registra/internal/pkg/idempotency"
	"github.com/shandysiswandi/registra/internal/pkg/router"
	"github.com/shandysiswandi/registra/internal/registration/entity"
	"github.com/shandysiswandi/registra/internal/registration/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedID string

func (f fixedID) Generate() string { return string(f) }

type fakeUsecase struct {
	mu          sync.Mutex
	report      entity.Report
	validateErr error
	registerErr error
	registered  []entity.Registration
	validated   []entity.RawPayload
}

func (f *fakeUsecase) Validate(_ context.Context, raw entity.RawPayload) (*entity.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.validated = append(f.validated, raw)
	if f.validateErr != nil {
		return nil, f.validateErr
	}
	if len(f.report) > 0 {
		return &entity.Result{Report: f.report}, nil
	}

	return &entity.Result{
		Payload: &entity.Registration{
			Name:        raw["name"].(string),
			Email:       raw["email"].(string),
			PhoneNumber: raw["phone_number"].(string),
		},
		Report: entity.Report{},
	}, nil
}

func (f *fakeUsecase) Register(_ context.Context, in entity.Registration) (*usecase.RegisterOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.registerErr != nil {
		return nil, f.registerErr
	}
	f.registered = append(f.registered, in)

	return &usecase.RegisterOutput{
		ID:          int64(len(f.registered)),
		Name:        in.Name,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		CreatedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}, nil
}

// memoryIdempotency mirrors the Redis tracker semantics in memory.
type memoryIdempotency struct {
	mu       sync.Mutex
	payloads map[string][]byte
	running  map[string]bool
	failWith error
}

func newMemoryIdempotency() *memoryIdempotency {
	return &memoryIdempotency{payloads: map[string][]byte{}, running: map[string]bool{}}
}

func (m *memoryIdempotency) Acquire(context.Context, string, time.Duration) (idempotency.State, []byte, error) {
	return idempotency.StateNone, nil, nil
}

func (m *memoryIdempotency) MarkCompleted(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (m *memoryIdempotency) Release(context.Context, string) error {
	return nil
}

func (m *memoryIdempotency) Exec(ctx context.Context, key string, fn func(context.Context) ([]byte, error), _ ...idempotency.Option) (idempotency.Result, error) {
	m.mu.Lock()
	if m.failWith != nil {
		m.mu.Unlock()
		return idempotency.Result{}, m.failWith
	}
	if m.running[key] {
		m.mu.Unlock()
		return idempotency.Result{}, idempotency.ErrAlreadyInProgress
	}
	if p, ok := m.payloads[key]; ok {
		m.mu.Unlock()
		return idempotency.Result{Payload: p, Replayed: true}, nil
	}
	m.running[key] = true
	m.mu.Unlock()

	payload, err := fn(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.running, key)
	if err != nil {
		return idempotency.Result{}, err
	}
	m.payloads[key] = payload

	return idempotency.Result{Payload: payload}, nil
}

const validBody = `{"name":"Andi","email":"andi@example.com","password":"longenough1",` +
	`"password_confirmation":"longenough1","nik":"3201234567890123","phone_number":"+62 812-3456"}`

const createdBody = `{"success":true,"message":"Registration successful","data":{"id":"1","name":"Andi",` +
	`"email":"andi@example.com","phone_number":"+62 812-3456","created_at":"2026-01-02T03:04:05Z"}}`

func newTestRouter(t *testing.T, u uc, opts ...Option) *router.Router {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte("app: {}"))
	require.NoError(t, err)

	r := router.NewRouter(router.Config{Config: cfg, UUID: fixedID("cid-test")})
	RegisterHTTPEndpoint(r, u, opts...)
	return r
}

func post(r http.Handler, path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHTTPEndpoint_Register(t *testing.T) {
	tests := []struct {
		name     string
		uc       *fakeUsecase
		body     string
		wantCode int
		wantBody string
	}{
		{
			name:     "created",
			uc:       &fakeUsecase{},
			body:     validBody,
			wantCode: http.StatusCreated,
			wantBody: createdBody,
		},
		{
			name: "validation failed",
			uc: &fakeUsecase{report: entity.Report{
				"password": {"Password minimal 8 karakter.", "Konfirmasi password tidak cocok."},
				"nik":      {"NIK harus 16 digit angka."},
			}},
			body:     `{"password":"short"}`,
			wantCode: http.StatusUnprocessableEntity,
			wantBody: `{"success":false,"message":"Validation failed","errors":{` +
				`"password":["Password minimal 8 karakter.","Konfirmasi password tidak cocok."],` +
				`"nik":["NIK harus 16 digit angka."]}}`,
		},
		{
			name:     "directory timeout",
			uc:       &fakeUsecase{validateErr: goerror.NewTimeout(context.DeadlineExceeded)},
			body:     validBody,
			wantCode: http.StatusGatewayTimeout,
			wantBody: `{"success":false,"message":"Service timed out"}`,
		},
		{
			name:     "malformed body",
			uc:       &fakeUsecase{},
			body:     `{"name":`,
			wantCode: http.StatusBadRequest,
			wantBody: `{"success":false,"message":"Invalid request body"}`,
		},
		{
			name: "race lost on insert",
			uc: &fakeUsecase{registerErr: goerror.NewInvalidInput(map[string][]string{
				"email": {"Email sudah terdaftar."},
			})},
			body:     validBody,
			wantCode: http.StatusUnprocessableEntity,
			wantBody: `{"success":false,"message":"Validation failed","errors":{"email":["Email sudah terdaftar."]}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(newTestRouter(t, tt.uc), "/api/v1/register", tt.body, nil)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestHTTPEndpoint_RegisterKeepsNumbersAsNonStrings(t *testing.T) {
	u := &fakeUsecase{report: entity.Report{"nik": {"NIK harus berupa teks."}}}
	post(newTestRouter(t, u), "/api/v1/register", `{"nik":3201234567890123}`, nil)

	require.Len(t, u.validated, 1)
	_, isString := u.validated[0]["nik"].(string)
	assert.False(t, isString)
}

func TestHTTPEndpoint_RegisterIdempotent(t *testing.T) {
	u := &fakeUsecase{}
	idem := newMemoryIdempotency()
	r := newTestRouter(t, u, WithIdempotency(idem, time.Hour))
	header := map[string]string{HeaderIdempotencyKey: "req-1"}

	first := post(r, "/api/v1/register", validBody, header)
	second := post(r, "/api/v1/register", validBody, header)

	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Empty(t, first.Header().Get(HeaderIdempotentReplayed))
	assert.JSONEq(t, createdBody, first.Body.String())

	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get(HeaderIdempotentReplayed))
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	assert.Len(t, u.registered, 1)
}

func TestHTTPEndpoint_RegisterIdempotentFailureNotStored(t *testing.T) {
	u := &fakeUsecase{report: entity.Report{"name": {"Nama wajib diisi."}}}
	idem := newMemoryIdempotency()
	r := newTestRouter(t, u, WithIdempotency(idem, time.Hour))
	header := map[string]string{HeaderIdempotencyKey: "req-2"}

	rec := post(r, "/api/v1/register", `{}`, header)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	u.report = nil
	rec = post(r, "/api/v1/register", validBody, header)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, rec.Header().Get(HeaderIdempotentReplayed))
}

func TestHTTPEndpoint_RegisterIdempotencyErrors(t *testing.T) {
	t.Run("in progress", func(t *testing.T) {
		idem := newMemoryIdempotency()
		idem.running[idempotencyScope+"req-3"] = true
		r := newTestRouter(t, &fakeUsecase{}, WithIdempotency(idem, time.Hour))

		rec := post(r, "/api/v1/register", validBody, map[string]string{HeaderIdempotencyKey: "req-3"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("store unreachable", func(t *testing.T) {
		idem := newMemoryIdempotency()
		idem.failWith = errors.New("redis: connection refused")
		r := newTestRouter(t, &fakeUsecase{}, WithIdempotency(idem, time.Hour))

		rec := post(r, "/api/v1/register", validBody, map[string]string{HeaderIdempotencyKey: "req-4"})
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("key too long", func(t *testing.T) {
		r := newTestRouter(t, &fakeUsecase{}, WithIdempotency(newMemoryIdempotency(), time.Hour))

		rec := post(r, "/api/v1/register", validBody, map[string]string{HeaderIdempotencyKey: strings.Repeat("k", 256)})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHTTPEndpoint_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		u := &fakeUsecase{}
		rec := post(newTestRouter(t, u), "/api/v1/register/validate", validBody, nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true,"message":"Validation passed","data":{"valid":true}}`, rec.Body.String())
		assert.Empty(t, u.registered)
	})

	t.Run("invalid", func(t *testing.T) {
		u := &fakeUsecase{report: entity.Report{"phone_number": {"Nomor telepon wajib diisi."}}}
		rec := post(newTestRouter(t, u), "/api/v1/register/validate", `{}`, nil)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.JSONEq(t, `{"success":false,"message":"Validation failed","errors":{"phone_number":["Nomor telepon wajib diisi."]}}`, rec.Body.String())
	})
}
