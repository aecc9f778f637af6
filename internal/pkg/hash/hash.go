package hash

import (
	"errors"
	"fmt"
	"strings"
)

// Password hashing drivers accepted by NewPassword.
const (
	DriverBcrypt   = "bcrypt"
	DriverArgon2id = "argon2id"
)

// ErrUnknownDriver is returned by NewPassword for an unrecognized driver name.
var ErrUnknownDriver = errors.New("hash: unknown driver")

// Hash turns a plaintext into a stored representation and checks plaintexts
// against it.
type Hash interface {
	Hash(str string) ([]byte, error)
	Verify(hashed, str string) bool
}

// PasswordOptions configures NewPassword.
type PasswordOptions struct {
	Driver      string
	BcryptCost  int
	Pepper      string
	Argon2Param *Argon2idParams
}

// NewPassword returns the password hasher selected by opts.Driver. An empty
// driver selects bcrypt.
func NewPassword(opts PasswordOptions) (Hash, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", DriverBcrypt:
		return NewBcrypt(opts.BcryptCost, opts.Pepper), nil
	case DriverArgon2id:
		if opts.Argon2Param != nil {
			return NewArgon2idWithParams(*opts.Argon2Param, opts.Pepper), nil
		}
		return NewArgon2id(opts.Pepper), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}
