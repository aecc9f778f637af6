package usecase_test

//go:generate mockgen -source=usecase.go -destination=mocks/mocks.go -package=mocks Directory,DomainChecker,UserRepository,EventPublisher

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/registra/internal/pkg/clock"
	"github.com/shandysiswandi/registra/internal/pkg/config"
	"github.com/shandysiswandi/registra/internal/pkg/goerror"
	"github.com/shandysiswandi/registra/internal/pkg/goroutine"
	"github.com/shandysiswandi/registra/internal/pkg/hash"
	"github.com/shandysiswandi/registra/internal/pkg/validator"
	"github.com/shandysiswandi/registra/internal/registration/entity"
	"github.com/shandysiswandi/registra/internal/registration/usecase"
	"github.com/shandysiswandi/registra/internal/registration/usecase/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	testNIKSecret = "test-secret"
	validNIK      = "3201234567890123"

	defaultTestConfig = `
modules:
  registration:
    lookup_timeout_ms: 500
    publish_event: true
    email:
      dns_check: true
`
)

var registeredAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

type fixedID int64

func (f fixedID) Generate() int64 { return int64(f) }

type fixture struct {
	dir    *mocks.MockDirectory
	dns    *mocks.MockDomainChecker
	users  *mocks.MockUserRepository
	events *mocks.MockEventPublisher
	gm     *goroutine.Manager
	uc     *usecase.Usecase
}

func newFixture(t *testing.T, yaml string) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml))
	require.NoError(t, err)

	v, err := validator.NewV10Validator(validator.LocaleID)
	require.NoError(t, err)

	tr, err := usecase.NewTranslator(validator.LocaleID, nil)
	require.NoError(t, err)

	f := &fixture{
		dir:    mocks.NewMockDirectory(ctrl),
		dns:    mocks.NewMockDomainChecker(ctrl),
		users:  mocks.NewMockUserRepository(ctrl),
		events: mocks.NewMockEventPublisher(ctrl),
		gm:     goroutine.NewManager(4),
	}

	f.uc = usecase.New(usecase.Dependency{
		Config:        cfg,
		Validator:     v,
		Translator:    tr,
		NIKHash:       hash.NewHMACSHA256(testNIKSecret),
		PasswordHash:  hash.NewBcrypt(4, ""),
		UID:           fixedID(42),
		Clock:         clock.Fixed(registeredAt),
		Goroutine:     f.gm,
		Directory:     f.dir,
		DomainChecker: f.dns,
		Users:         f.users,
		Events:        f.events,
	})

	return f
}

func validPayload() entity.RawPayload {
	return entity.RawPayload{
		"name":                  "Andi O'Brien-Smith",
		"email":                 "andi@example.com",
		"password":              "longenough1",
		"password_confirmation": "longenough1",
		"nik":                   validNIK,
		"phone_number":          "+62 812-3456",
	}
}

func nikHash(t *testing.T, nik string) string {
	t.Helper()
	sum, err := hash.NewHMACSHA256(testNIKSecret).Hash(nik)
	require.NoError(t, err)
	return string(sum)
}

func (f *fixture) expectClean(t *testing.T, email, nik string) {
	f.dns.EXPECT().Resolvable(gomock.Any(), domainOf(email)).Return(true, nil)
	f.dir.EXPECT().ExistsByEmail(gomock.Any(), email).Return(false, nil)
	f.dir.EXPECT().ExistsByNIKHash(gomock.Any(), nikHash(t, nik)).Return(false, nil)
}

func domainOf(email string) string {
	return email[strings.LastIndexByte(email, '@')+1:]
}

func TestValidate_ValidPayloadReturnedUnchanged(t *testing.T) {
	f := newFixture(t, defaultTestConfig)

	raw := validPayload()
	raw["name"] = "  Andi  "
	f.expectClean(t, "andi@example.com", validNIK)

	res, err := f.uc.Validate(context.Background(), raw)
	require.NoError(t, err)
	require.True(t, res.Valid())

	assert.Empty(t, res.Report)
	assert.Equal(t, &entity.Registration{
		Name:                 "  Andi  ",
		Email:                "andi@example.com",
		Password:             "longenough1",
		PasswordConfirmation: "longenough1",
		NIK:                  validNIK,
		PhoneNumber:          "+62 812-3456",
	}, res.Payload)
}

func TestValidate_FieldRules(t *testing.T) {
	tests := []struct {
		name   string
		modify func(entity.RawPayload)
		field  string
		want   []string
	}{
		{
			name:   "name with digits",
			modify: func(p entity.RawPayload) { p["name"] = "John123" },
			field:  "name",
			want:   []string{"Nama hanya boleh berisi huruf, spasi, dan tanda baca umum."},
		},
		{
			name:   "name too long",
			modify: func(p entity.RawPayload) { p["name"] = strings.Repeat("a", 256) },
			field:  "name",
			want:   []string{"Nama maksimal 255 karakter."},
		},
		{
			name:   "name not a string",
			modify: func(p entity.RawPayload) { p["name"] = 12 },
			field:  "name",
			want:   []string{"Nama harus berupa teks."},
		},
		{
			name:   "name blank",
			modify: func(p entity.RawPayload) { p["name"] = "   " },
			field:  "name",
			want:   []string{"Nama wajib diisi."},
		},
		{
			name:   "name null",
			modify: func(p entity.RawPayload) { p["name"] = nil },
			field:  "name",
			want:   []string{"Nama wajib diisi."},
		},
		{
			name:   "name empty array",
			modify: func(p entity.RawPayload) { p["name"] = []any{} },
			field:  "name",
			want:   []string{"Nama wajib diisi."},
		},
		{
			name:   "phone with letters",
			modify: func(p entity.RawPayload) { p["phone_number"] = "call me" },
			field:  "phone_number",
			want:   []string{"Nomor telepon hanya boleh berisi angka, spasi, +, dan -."},
		},
		{
			name:   "phone too long and invalid",
			modify: func(p entity.RawPayload) { p["phone_number"] = strings.Repeat("x", 21) },
			field:  "phone_number",
			want: []string{
				"Nomor telepon maksimal 20 karakter.",
				"Nomor telepon hanya boleh berisi angka, spasi, +, dan -.",
			},
		},
		{
			name:   "short password with matching confirmation",
			modify: func(p entity.RawPayload) { p["password"], p["password_confirmation"] = "short", "short" },
			field:  "password",
			want:   []string{"Password minimal 8 karakter."},
		},
		{
			name:   "short password with mismatching confirmation",
			modify: func(p entity.RawPayload) { p["password"] = "short" },
			field:  "password",
			want:   []string{"Password minimal 8 karakter.", "Konfirmasi password tidak cocok."},
		},
		{
			name:   "password too long",
			modify: func(p entity.RawPayload) { p["password"], p["password_confirmation"] = strings.Repeat("p", 129), strings.Repeat("p", 129) },
			field:  "password",
			want:   []string{"Password maksimal 128 karakter."},
		},
		{
			name:   "confirmation mismatch",
			modify: func(p entity.RawPayload) { p["password_confirmation"] = "longenough2" },
			field:  "password",
			want:   []string{"Konfirmasi password tidak cocok."},
		},
		{
			name:   "confirmation missing",
			modify: func(p entity.RawPayload) { delete(p, "password_confirmation") },
			field:  "password",
			want:   []string{"Konfirmasi password tidak cocok."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, defaultTestConfig)
			f.expectClean(t, "andi@example.com", validNIK)

			raw := validPayload()
			tt.modify(raw)

			res, err := f.uc.Validate(context.Background(), raw)
			require.NoError(t, err)

			assert.False(t, res.Valid())
			assert.Nil(t, res.Payload)
			assert.Equal(t, entity.Report{tt.field: tt.want}, res.Report)
		})
	}
}

func TestValidate_MissingFieldsAreAllReported(t *testing.T) {
	f := newFixture(t, defaultTestConfig)

	res, err := f.uc.Validate(context.Background(), entity.RawPayload{})
	require.NoError(t, err)

	assert.Equal(t, entity.Report{
		"name":         {"Nama wajib diisi."},
		"email":        {"Email wajib diisi."},
		"password":     {"Password wajib diisi."},
		"nik":          {"NIK wajib diisi."},
		"phone_number": {"Nomor telepon wajib diisi."},
	}, res.Report)
}

func TestValidate_CollectsEveryField(t *testing.T) {
	f := newFixture(t, defaultTestConfig)
	f.dir.EXPECT().ExistsByEmail(gomock.Any(), "not-an-email").Return(false, nil)

	res, err := f.uc.Validate(context.Background(), entity.RawPayload{
		"name":                  "John123",
		"email":                 "not-an-email",
		"password":              "short",
		"password_confirmation": "other",
		"nik":                   "12345",
		"phone_number":          "call me",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.Report{
		"name":         {"Nama hanya boleh berisi huruf, spasi, dan tanda baca umum."},
		"email":        {"Format email tidak valid."},
		"password":     {"Password minimal 8 karakter.", "Konfirmasi password tidak cocok."},
		"nik":          {"NIK harus 16 digit angka."},
		"phone_number": {"Nomor telepon hanya boleh berisi angka, spasi, +, dan -."},
	}, res.Report)
}

func TestValidate_NIKFormatFailureSkipsLookup(t *testing.T) {
	f := newFixture(t, defaultTestConfig)
	f.dns.EXPECT().Resolvable(gomock.Any(), "example.com").Return(true, nil)
	f.dir.EXPECT().ExistsByEmail(gomock.Any(), "andi@example.com").Return(false, nil)
	// no ExistsByNIKHash expectation: the controller fails the test on any call

	raw := validPayload()
	raw["nik"] = "12345"

	res, err := f.uc.Validate(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, entity.Report{"nik": {"NIK harus 16 digit angka."}}, res.Report)
}

func TestValidate_NIKAlreadyRegistered(t *testing.T) {
	for _, nik := range []string{validNIK, "1234567890123456"} {
		t.Run(nik, func(t *testing.T) {
			f := newFixture(t, defaultTestConfig)
			f.dns.EXPECT().Resolvable(gomock.Any(), "example.com").Return(true, nil)
			f.dir.EXPECT().ExistsByEmail(gomock.Any(), "andi@example.com").Return(false, nil)
			f.dir.EXPECT().ExistsByNIKHash(gomock.Any(), nikHash(t, nik)).Return(true, nil)

			raw := validPayload()
			raw["nik"] = nik

			res, err := f.uc.Validate(context.Background(), raw)
			require.NoError(t, err)
			assert.Equal(t, entity.Report{"nik": {"NIK sudah terdaftar."}}, res.Report)
		})
	}
}

func TestValidate_EmailChecks(t *testing.T) {
	t.Run("already registered", func(t *testing.T) {
		f := newFixture(t, defaultTestConfig)
		f.dns.EXPECT().Resolvable(gomock.Any(), "example.com").Return(true, nil)
		f.dir.EXPECT().ExistsByEmail(gomock.Any(), "andi@example.com").Return(true, nil)
		f.dir.EXPECT().ExistsByNIKHash(gomock.Any(), gomock.Any()).Return(false, nil)

		res, err := f.uc.Validate(context.Background(), validPayload())
		require.NoError(t, err)
		assert.Equal(t, entity.Report{"email": {"Email sudah terdaftar."}}, res.Report)
	})

	t.Run("unresolvable domain", func(t *testing.T) {
		f := newFixture(t, defaultTestConfig)
		f.dns.EXPECT().Resolvable(gomock.Any(), "nowhere.invalid").Return(false, nil)
		f.dir.EXPECT().ExistsByEmail(gomock.Any(), "andi@nowhere.invalid").Return(false, nil)
		f.dir.EXPECT().ExistsByNIKHash(gomock.Any(), gomock.Any()).Return(false, nil)

		raw := validPayload()
		raw["email"] = "andi@nowhere.invalid"

		res, err := f.uc.Validate(context.Background(), raw)
		require.NoError(t, err)
		assert.Equal(t, entity.Report{"email": {"Format email tidak valid."}}, res.Report)
	})

	t.Run("dns check disabled", func(t *testing.T) {
		f := newFixture(t, "modules:\n  registration:\n    email:\n      dns_check: false\n")
		f.dir.EXPECT().ExistsByEmail(gomock.Any(), "andi@example.com").Return(false, nil)
		f.dir.EXPECT().ExistsByNIKHash(gomock.Any(), gomock.Any()).Return(false, nil)

		res, err := f.uc.Validate(context.Background(), validPayload())
		require.NoError(t, err)
		assert.True(t, res.Valid())
	})

	t.Run("too long and taken", func(t *testing.T) {
		f := newFixture(t, defaultTestConfig)
		email := strings.Repeat("a", 250) + "@example.com"
		f.dns.EXPECT().Resolvable(gomock.Any(), "example.com").Return(true, nil).AnyTimes()
		f.dir.EXPECT().ExistsByEmail(gomock.Any(), email).Return(true, nil)
		f.dir.EXPECT().ExistsByNIKHash(gomock.Any(), gomock.Any()).Return(false, nil)

		raw := validPayload()
		raw["email"] = email

		res, err := f.uc.Validate(context.Background(), raw)
		require.NoError(t, err)
		require.True(t, res.Report.Has("email"))
		assert.Equal(t, "Email sudah terdaftar.", res.Report["email"][len(res.Report["email"])-1])
		assert.Contains(t, res.Report["email"], "Email maksimal 255 karakter.")
	})
}

func TestValidate_InfrastructureErrors(t *testing.T) {
	t.Run("directory timeout", func(t *testing.T) {
		f := newFixture(t, "modules:\n  registration:\n    lookup_timeout_ms: 50\n")
		f.dir.EXPECT().ExistsByEmail(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, _ string) (bool, error) {
			<-ctx.Done()
			return false, ctx.Err()
		})
		f.dir.EXPECT().ExistsByNIKHash(gomock.Any(), gomock.Any()).Return(false, nil)

		res, err := f.uc.Validate(context.Background(), validPayload())
		assert.Nil(t, res)

		var gerr *goerror.Error
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, http.StatusGatewayTimeout, gerr.StatusCode())
	})

	t.Run("directory unreachable", func(t *testing.T) {
		f := newFixture(t, defaultTestConfig)
		f.dns.EXPECT().Resolvable(gomock.Any(), gomock.Any()).Return(true, nil).AnyTimes()
		f.dir.EXPECT().ExistsByEmail(gomock.Any(), gomock.Any()).Return(false, nil).AnyTimes()
		f.dir.EXPECT().ExistsByNIKHash(gomock.Any(), gomock.Any()).Return(false, errors.New("connection refused"))

		res, err := f.uc.Validate(context.Background(), validPayload())
		assert.Nil(t, res)

		var gerr *goerror.Error
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, http.StatusServiceUnavailable, gerr.StatusCode())
		assert.Empty(t, gerr.Fields())
	})

	t.Run("resolver failure", func(t *testing.T) {
		f := newFixture(t, defaultTestConfig)
		f.dns.EXPECT().Resolvable(gomock.Any(), "example.com").Return(false, errors.New("server misbehaving"))
		f.dir.EXPECT().ExistsByEmail(gomock.Any(), gomock.Any()).Return(false, nil).AnyTimes()
		f.dir.EXPECT().ExistsByNIKHash(gomock.Any(), gomock.Any()).Return(false, nil).AnyTimes()

		_, err := f.uc.Validate(context.Background(), validPayload())

		var gerr *goerror.Error
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, http.StatusServiceUnavailable, gerr.StatusCode())
	})
}

func TestValidate_Deterministic(t *testing.T) {
	f := newFixture(t, defaultTestConfig)
	f.dns.EXPECT().Resolvable(gomock.Any(), "example.com").Return(true, nil).Times(2)
	f.dir.EXPECT().ExistsByEmail(gomock.Any(), "andi@example.com").Return(true, nil).Times(2)

	raw := validPayload()
	raw["nik"] = "12345"
	raw["password_confirmation"] = "nope"

	first, err := f.uc.Validate(context.Background(), raw)
	require.NoError(t, err)
	second, err := f.uc.Validate(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

// The uniqueness check is advisory: two in-flight registrations of the same
// new email both pass validation, the storage constraint settles the race.
func TestValidate_ConcurrentSameEmailBothPass(t *testing.T) {
	f := newFixture(t, defaultTestConfig)
	f.dns.EXPECT().Resolvable(gomock.Any(), "example.com").Return(true, nil).Times(2)
	f.dir.EXPECT().ExistsByEmail(gomock.Any(), "andi@example.com").Return(false, nil).Times(2)
	f.dir.EXPECT().ExistsByNIKHash(gomock.Any(), gomock.Any()).Return(false, nil).Times(2)

	var wg sync.WaitGroup
	results := make([]*entity.Result, 2)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.uc.Validate(context.Background(), validPayload())
			assert.NoError(t, err)
			results[i] = res
		}()
	}
	wg.Wait()

	for _, res := range results {
		require.NotNil(t, res)
		assert.True(t, res.Valid())
	}
}
