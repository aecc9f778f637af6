package db

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shandysiswandi/registra/internal/pkg/goerror"
	"github.com/shandysiswandi/registra/internal/registration/entity"
	"github.com/stretchr/testify/assert"
)

func TestDB_mapError(t *testing.T) {
	s := &DB{}
	other := errors.New("boom")

	tests := []struct {
		name      string
		in        error
		wantIs    error
		wantField string
	}{
		{name: "nil", in: nil},
		{name: "no rows", in: pgx.ErrNoRows, wantIs: goerror.ErrNotFound},
		{name: "email taken", in: &pgconn.PgError{Code: "23505", ConstraintName: constraintEmail}, wantIs: goerror.ErrConflict, wantField: entity.FieldEmail},
		{name: "nik taken", in: &pgconn.PgError{Code: "23505", ConstraintName: constraintNIKHash}, wantIs: goerror.ErrConflict, wantField: entity.FieldNIK},
		{name: "pk taken", in: &pgconn.PgError{Code: "23505", ConstraintName: "users_pkey"}, wantIs: goerror.ErrConflict},
		{name: "other", in: other, wantIs: other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.mapError(tt.in)
			if tt.wantIs == nil {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, tt.wantIs)
			field, ok := entity.ViolatedField(err)
			assert.Equal(t, tt.wantField != "", ok)
			assert.Equal(t, tt.wantField, field)
		})
	}
}
