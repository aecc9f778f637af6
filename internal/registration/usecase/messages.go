package usecase

import (
	"github.com/shandysiswandi/registra/internal/pkg/validator"
	"github.com/shandysiswandi/registra/internal/registration/entity"
)

var fieldMessages = map[string]map[string]string{
	validator.LocaleID: {
		"name.regex":         "Nama hanya boleh berisi huruf, spasi, dan tanda baca umum.",
		"email.email":        "Format email tidak valid.",
		"email.unique":       "Email sudah terdaftar.",
		"password.min":       "{0} minimal {1} karakter.",
		"password.confirmed": "Konfirmasi password tidak cocok.",
		"nik.regex":          "NIK harus 16 digit angka.",
		"nik.unique":         "NIK sudah terdaftar.",
		"phone_number.regex": "Nomor telepon hanya boleh berisi angka, spasi, +, dan -.",
	},
	validator.LocaleEN: {
		"name.regex":         "The name may only contain letters, spaces and common punctuation.",
		"email.email":        "The email format is invalid.",
		"email.unique":       "The email is already registered.",
		"password.min":       "The {0} must be at least {1} characters.",
		"password.confirmed": "The password confirmation does not match.",
		"nik.regex":          "The NIK must be 16 digits.",
		"nik.unique":         "The NIK is already registered.",
		"phone_number.regex": "The phone number may only contain digits, spaces, + and -.",
	},
}

var fieldLabels = map[string]map[string]string{
	validator.LocaleID: {
		entity.FieldName:        "Nama",
		entity.FieldEmail:       "Email",
		entity.FieldPassword:    "Password",
		entity.FieldNIK:         "NIK",
		entity.FieldPhoneNumber: "Nomor telepon",
	},
	validator.LocaleEN: {
		entity.FieldName:        "name",
		entity.FieldEmail:       "email",
		entity.FieldPassword:    "password",
		entity.FieldNIK:         "NIK",
		entity.FieldPhoneNumber: "phone number",
	},
}

// NewTranslator builds the registration message catalog for locale.
// overrides are "field.rule" or "rule" keyed templates applied last.
func NewTranslator(locale string, overrides map[string]string) (*validator.UTTranslator, error) {
	locale = validator.NormalizeLocale(locale)

	return validator.NewUTTranslator(locale,
		validator.WithLabels(fieldLabels[locale]),
		validator.WithMessages(fieldMessages[locale]),
		validator.WithOverrides(overrides),
	)
}
