package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	idTranslations "github.com/go-playground/validator/v10/translations/id"
	"github.com/shandysiswandi/registra/internal/pkg/strcase"
)

var (
	rePersonName = regexp.MustCompile(`^[A-Za-z\s.'-]+$`)
	rePhone      = regexp.MustCompile(`^[0-9\s+\-]+$`)
	reNIK        = regexp.MustCompile(`^[0-9]{16}$`)
)

// Validator checks values against go-playground rule tags.
type Validator interface {
	// Validate validates a struct by its `validate` tags and returns a
	// V10ValidationError on failure.
	Validate(data any) error

	// Var reports whether value satisfies every rule in tag (e.g. "max=255").
	Var(value any, tag string) bool

	// VarWithValue reports whether value satisfies a cross-value rule such as
	// "eqfield" when compared against other.
	VarWithValue(value, other any, tag string) bool
}

// V10Validator implements Validator using go-playground/validator v10.
type V10Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// V10ValidationError is a field-to-message map returned when struct validation fails.
//
// Keys are field names in snake_case to match typical JSON conventions.
type V10ValidationError map[string]string

// Error implements the error interface.
func (vs V10ValidationError) Error() string {
	if len(vs) == 0 {
		return "validation error"
	}

	b, err := json.Marshal(vs)
	if err != nil {
		return fmt.Sprintf("validation error (failed to marshal: %v)", err)
	}
	return string(b)
}

// Values returns the field error map.
func (vs V10ValidationError) Values() map[string]string {
	return vs
}

// NewV10Validator constructs a V10Validator whose struct errors are translated
// into locale ("en" or "id") and which knows the custom registration rules.
func NewV10Validator(locale string) (*V10Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	trans, err := universalTranslator(locale)
	if err != nil {
		return nil, err
	}

	switch trans.Locale() {
	case LocaleID:
		err = idTranslations.RegisterDefaultTranslations(validate, trans)
	default:
		err = enTranslations.RegisterDefaultTranslations(validate, trans)
	}
	if err != nil {
		return nil, err
	}

	if err := v10CustomValidation(validate); err != nil {
		return nil, err
	}

	return &V10Validator{
		validate:   validate,
		translator: trans,
	}, nil
}

// Validate validates a struct and returns a V10ValidationError on failure.
func (v *V10Validator) Validate(data any) error {
	if err := v.validate.Struct(data); err != nil {
		var validateErrs validator.ValidationErrors
		if !errors.As(err, &validateErrs) {
			return err
		}

		errV10 := make(V10ValidationError)
		for _, fe := range validateErrs {
			errV10[strcase.ToLowerSnake(fe.Field())] = fe.Translate(v.translator)
		}

		return errV10
	}

	return nil
}

// Var reports whether value passes tag.
func (v *V10Validator) Var(value any, tag string) bool {
	return v.passed(v.validate.Var(value, tag), tag)
}

// VarWithValue reports whether value passes tag when compared to other.
func (v *V10Validator) VarWithValue(value, other any, tag string) bool {
	return v.passed(v.validate.VarWithValue(value, other, tag), tag)
}

func (v *V10Validator) passed(err error, tag string) bool {
	if err == nil {
		return true
	}

	var validateErrs validator.ValidationErrors
	if !errors.As(err, &validateErrs) {
		slog.Warn("unexpected validator error", "tag", tag, "error", err)
	}

	return false
}

func v10CustomValidation(validate *validator.Validate) error {
	return errors.Join(
		validate.RegisterValidation("notblank", validators.NotBlank),
		validate.RegisterValidation("personname", regexRule(rePersonName)),
		validate.RegisterValidation("phone", regexRule(rePhone)),
		validate.RegisterValidation("nik", regexRule(reNIK)),
	)
}

func regexRule(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}

		return re.MatchString(s)
	}
}
