package hash

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2idParams are the cost parameters written into every encoded hash.
type Argon2idParams struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2idParams are used by NewArgon2id.
var DefaultArgon2idParams = Argon2idParams{
	Memory:      32 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

// Argon2id implements Hash using Argon2id in the PHC string format
// ($argon2id$v=19$m=...,t=...,p=...$salt$hash).
type Argon2id struct {
	params Argon2idParams
	pepper string
}

// NewArgon2id returns an Argon2id hasher with DefaultArgon2idParams.
func NewArgon2id(pepper string) *Argon2id {
	return NewArgon2idWithParams(DefaultArgon2idParams, pepper)
}

// NewArgon2idWithParams returns an Argon2id hasher with explicit parameters.
func NewArgon2idWithParams(params Argon2idParams, pepper string) *Argon2id {
	return &Argon2id{params: params, pepper: pepper}
}

// Hash derives a salted key from str and returns it PHC-encoded.
func (a *Argon2id) Hash(str string) ([]byte, error) {
	salt := make([]byte, a.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	p := a.params
	key := argon2.IDKey([]byte(str+a.pepper), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.Memory,
		p.Iterations,
		p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)

	return []byte(encoded), nil
}

// Verify recomputes the key with the parameters stored in hashed.
func (a *Argon2id) Verify(hashed, str string) bool {
	if hashed == "" || str == "" {
		return false
	}

	p, salt, expected, ok := decodeArgon2id(hashed)
	if !ok {
		return false
	}

	computed := argon2.IDKey([]byte(str+a.pepper), salt, p.Iterations, p.Memory, p.Parallelism, uint32(len(expected))) //nolint:gosec // key length is small

	return subtle.ConstantTimeCompare(expected, computed) == 1
}

func decodeArgon2id(encoded string) (Argon2idParams, []byte, []byte, bool) {
	var p Argon2idParams

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return p, nil, nil, false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, false
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return p, nil, nil, false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, false
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, false
	}

	return p, salt, key, true
}
