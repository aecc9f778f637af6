package validator

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/id"
	ut "github.com/go-playground/universal-translator"
	"github.com/shandysiswandi/registra/internal/pkg/strcase"
)

// Supported locales.
const (
	LocaleEN = "en"
	LocaleID = "id"
)

// DefaultLocale is used when no locale is configured.
const DefaultLocale = LocaleID

var (
	// ErrUnsupportedLocale is returned for locales other than LocaleEN and LocaleID.
	ErrUnsupportedLocale = errors.New("validator: unsupported locale")
	// ErrBadTemplate is returned for a message whose placeholders are not
	// {0}, {1}, ... each used once and in that order.
	ErrBadTemplate = errors.New("validator: bad message template")
)

// Rule names shared by every catalog. Message keys are either a bare rule
// ("max") or a field-qualified rule ("password.min").
const (
	RuleRequired  = "required"
	RuleString    = "string"
	RuleMax       = "max"
	RuleMin       = "min"
	RuleEmail     = "email"
	RuleRegex     = "regex"
	RuleUnique    = "unique"
	RuleConfirmed = "confirmed"
)

// {0} is the field label, {1} the rule parameter.
var ruleMessages = map[string]map[string]string{
	LocaleID: {
		RuleRequired:  "{0} wajib diisi.",
		RuleString:    "{0} harus berupa teks.",
		RuleMax:       "{0} maksimal {1} karakter.",
		RuleMin:       "{0} minimal {1} karakter.",
		RuleEmail:     "{0} harus berupa alamat email yang valid.",
		RuleRegex:     "Format {0} tidak valid.",
		RuleUnique:    "{0} sudah digunakan.",
		RuleConfirmed: "Konfirmasi {0} tidak cocok.",
	},
	LocaleEN: {
		RuleRequired:  "The {0} field is required.",
		RuleString:    "The {0} field must be a string.",
		RuleMax:       "The {0} field must not be greater than {1} characters.",
		RuleMin:       "The {0} field must be at least {1} characters.",
		RuleEmail:     "The {0} field must be a valid email address.",
		RuleRegex:     "The {0} field format is invalid.",
		RuleUnique:    "The {0} has already been taken.",
		RuleConfirmed: "The {0} field confirmation does not match.",
	},
}

var placeholderRe = regexp.MustCompile(`\{(\d+)\}`)

// placeholders returns how many parameters text takes. universal-translator
// substitutes only "{0}".."{n-1}", each once and in order, and counts every
// brace as a placeholder, so anything else is rejected here instead of
// failing in Add or panicking in T.
func placeholders(text string) (int, error) {
	matches := placeholderRe.FindAllStringSubmatch(text, -1)
	if strings.Count(text, "{") != len(matches) || strings.Count(text, "}") != len(matches) {
		return 0, fmt.Errorf("%w: stray brace in %q", ErrBadTemplate, text)
	}

	for i, m := range matches {
		if m[1] != strconv.Itoa(i) {
			return 0, fmt.Errorf("%w: placeholder %d of %q is {%s}, want {%d}", ErrBadTemplate, i, text, m[1], i)
		}
	}

	return len(matches), nil
}

// Translator renders the message for a failed rule on a field.
type Translator interface {
	// Translate returns the message for field failing rule. The field label is
	// always placeholder {0}; params fill {1} onwards.
	Translate(field, rule string, params ...string) string

	// Locale returns the active locale.
	Locale() string
}

// UTTranslator implements Translator on top of go-playground/universal-translator.
type UTTranslator struct {
	trans  ut.Translator
	labels map[string]string
	params map[string]int
}

type messageSet struct {
	messages map[string]string
	lenient  bool
}

type translatorOptions struct {
	messages []messageSet
	labels   map[string]string
}

// TranslatorOption configures a UTTranslator.
type TranslatorOption func(*translatorOptions)

// WithMessages adds or replaces message templates. Options are applied in
// order, so later maps win.
func WithMessages(messages map[string]string) TranslatorOption {
	return func(o *translatorOptions) {
		o.messages = append(o.messages, messageSet{messages: messages})
	}
}

// WithOverrides is WithMessages for operator supplied templates: a bad
// template is logged and skipped, keeping the message it would have replaced.
func WithOverrides(messages map[string]string) TranslatorOption {
	return func(o *translatorOptions) {
		o.messages = append(o.messages, messageSet{messages: messages, lenient: true})
	}
}

// WithLabels sets the display label used as {0} for each field.
func WithLabels(labels map[string]string) TranslatorOption {
	return func(o *translatorOptions) {
		for k, v := range labels {
			o.labels[k] = v
		}
	}
}

// NormalizeLocale lower-cases and trims locale, returning DefaultLocale for blanks.
func NormalizeLocale(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if locale == "" {
		return DefaultLocale
	}

	return locale
}

func universalTranslator(locale string) (ut.Translator, error) {
	locale = NormalizeLocale(locale)

	fallback := en.New()
	uni := ut.New(fallback, fallback, id.New())

	trans, found := uni.GetTranslator(locale)
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLocale, locale)
	}

	return trans, nil
}

// NewUTTranslator builds a Translator for locale seeded with the generic rule
// messages of that locale.
func NewUTTranslator(locale string, opts ...TranslatorOption) (*UTTranslator, error) {
	trans, err := universalTranslator(locale)
	if err != nil {
		return nil, err
	}

	o := &translatorOptions{labels: map[string]string{}}
	for _, opt := range opts {
		opt(o)
	}

	params := map[string]int{}
	all := append([]messageSet{{messages: ruleMessages[trans.Locale()]}}, o.messages...)
	for _, set := range all {
		for key, text := range set.messages {
			key = strings.ToLower(strings.TrimSpace(key))
			if key == "" || strings.TrimSpace(text) == "" {
				continue
			}

			n, err := placeholders(text)
			if err == nil {
				err = trans.Add(key, text, true)
			}
			if err != nil {
				if set.lenient {
					slog.Warn("message override ignored", "key", key, "error", err)
					continue
				}
				return nil, fmt.Errorf("validator: message %q: %w", key, err)
			}
			params[key] = n
		}
	}

	return &UTTranslator{trans: trans, labels: o.labels, params: params}, nil
}

// Locale returns the active locale.
func (t *UTTranslator) Locale() string {
	return t.trans.Locale()
}

// Translate looks up "<field>.<rule>" first and falls back to "<rule>".
func (t *UTTranslator) Translate(field, rule string, params ...string) string {
	label := t.Label(field)

	for _, key := range []string{field + "." + rule, rule} {
		n, ok := t.params[key]
		if !ok {
			continue
		}

		args := make([]string, 0, max(n, len(params)+1))
		args = append(args, label)
		args = append(args, params...)
		for len(args) < n {
			args = append(args, "")
		}

		if msg, err := t.trans.T(key, args...); err == nil {
			return msg
		}
	}

	return fmt.Sprintf("%s: %s", label, rule)
}

// Label returns the display label of field.
func (t *UTTranslator) Label(field string) string {
	if label, ok := t.labels[field]; ok {
		return label
	}

	return strcase.ToWords(field)
}
