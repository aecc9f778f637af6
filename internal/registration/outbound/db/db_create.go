package db

import (
	"context"

	"github.com/shandysiswandi/registra/internal/registration/entity"
)

func (s *DB) CreateUser(ctx context.Context, in entity.NewUser) (err error) {
	ctx, span := s.startSpan(ctx, "CreateUser")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx,
		`INSERT INTO users (id, name, email, password, nik_hash, phone_number, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		in.ID, in.Name, in.Email, in.PasswordHash, in.NIKHash, in.PhoneNumber, in.CreatedAt,
	)
	err = s.mapError(err)
	return err
}
