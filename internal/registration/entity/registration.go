// Package entity holds the registration domain types.
package entity

import (
	"errors"
	"fmt"
	"time"

	"github.com/shandysiswandi/registra/internal/pkg/goerror"
)

// Payload keys of a registration request.
const (
	FieldName                 = "name"
	FieldEmail                = "email"
	FieldPassword             = "password"
	FieldPasswordConfirmation = "password_confirmation"
	FieldNIK                  = "nik"
	FieldPhoneNumber          = "phone_number"
)

// Fields lists the validated fields in evaluation order.
// password_confirmation has no entry of its own; its mismatch is reported
// under password.
var Fields = []string{FieldName, FieldEmail, FieldPassword, FieldNIK, FieldPhoneNumber}

// RawPayload is a decoded, untrusted JSON request object.
type RawPayload map[string]any

// Registration is a payload that passed validation. Values are kept exactly
// as submitted.
type Registration struct {
	Name                 string
	Email                string
	Password             string
	PasswordConfirmation string
	NIK                  string
	PhoneNumber          string
}

// Report maps a field to its failure messages in rule order.
type Report map[string][]string

// Add appends msg to the messages of field.
func (r Report) Add(field, msg string) {
	r[field] = append(r[field], msg)
}

// Has reports whether field has at least one message.
func (r Report) Has(field string) bool {
	return len(r[field]) > 0
}

// Result is the outcome of a validation. Exactly one of Payload or a
// non-empty Report is set.
type Result struct {
	Payload *Registration
	Report  Report
}

// Valid reports whether the payload passed every rule.
func (r *Result) Valid() bool {
	return r != nil && r.Payload != nil && len(r.Report) == 0
}

// NewUser is a registration ready to be stored. Secrets are already hashed.
type NewUser struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	NIKHash      string
	PhoneNumber  string
	CreatedAt    time.Time
}

// User is the public view of a stored registration.
type User struct {
	ID          int64
	Name        string
	Email       string
	PhoneNumber string
	CreatedAt   time.Time
}

// UniqueViolationError reports that storing a user collided with an existing
// row on Field. It matches goerror.ErrConflict.
type UniqueViolationError struct {
	Field string
}

func (e *UniqueViolationError) Error() string {
	return fmt.Sprintf("unique violation on %s", e.Field)
}

func (e *UniqueViolationError) Is(target error) bool {
	return target == goerror.ErrConflict
}

// ViolatedField returns the field of a UniqueViolationError in err's chain.
func ViolatedField(err error) (string, bool) {
	var uv *UniqueViolationError
	if errors.As(err, &uv) {
		return uv.Field, true
	}
	return "", false
}
