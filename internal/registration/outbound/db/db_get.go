package db

import (
	"context"
)

// ExistsByEmail matches case-insensitively, the same way the unique index does.
func (s *DB) ExistsByEmail(ctx context.Context, email string) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "ExistsByEmail")
	defer func() { s.endSpan(span, err) }()

	var exists bool
	err = s.conn.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`, email,
	).Scan(&exists)
	if err != nil {
		return false, s.mapError(err)
	}

	return exists, nil
}

func (s *DB) ExistsByNIKHash(ctx context.Context, nikHash string) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "ExistsByNIKHash")
	defer func() { s.endSpan(span, err) }()

	var exists bool
	err = s.conn.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE nik_hash = $1)`, nikHash,
	).Scan(&exists)
	if err != nil {
		return false, s.mapError(err)
	}

	return exists, nil
}
