package app

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/shandysiswandi/registra/internal/pkg/config"
	"github.com/shandysiswandi/registra/internal/pkg/goerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckHealth(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name    string
		db      pinger
		cache   pinger
		want    healthResponse
		wantErr bool
	}{
		{name: "all up", db: ok, cache: ok, want: healthResponse{Database: "ok", Redis: "ok"}},
		{name: "database down", db: down, cache: ok, want: healthResponse{Database: "down", Redis: "ok"}, wantErr: true},
		{name: "both down", db: down, cache: down, want: healthResponse{Database: "down", Redis: "down"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := checkHealth(context.Background(), tt.db, tt.cache)
			assert.Equal(t, tt.want, got)

			if !tt.wantErr {
				require.NoError(t, err)
				return
			}

			var gerr *goerror.Error
			require.ErrorAs(t, err, &gerr)
			assert.Equal(t, http.StatusServiceUnavailable, gerr.StatusCode())
		})
	}
}

func TestConfigPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("LOCAL", "")
	assert.Equal(t, "/config/config.yaml", ConfigPath())

	t.Setenv("LOCAL", "true")
	assert.Equal(t, "./config/config.yaml", ConfigPath())

	t.Setenv("CONFIG_PATH", "/etc/registra.yaml")
	assert.Equal(t, "/etc/registra.yaml", ConfigPath())
}

func TestNewNIKHash(t *testing.T) {
	cfg, err := config.NewViperFromBytes("yaml", []byte("hash:\n  nik:\n    secret: \"  \"\n"))
	require.NoError(t, err)

	_, ok := NewNIKHash(cfg)
	assert.False(t, ok)

	cfg, err = config.NewViperFromBytes("yaml", []byte("hash:\n  nik:\n    secret: s3cret\n"))
	require.NoError(t, err)

	h, ok := NewNIKHash(cfg)
	require.True(t, ok)
	sum, err := h.Hash("3201234567890123")
	require.NoError(t, err)
	assert.Len(t, sum, 64)
}
