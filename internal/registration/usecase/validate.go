package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/registra/internal/pkg/goerror"
	"github.com/shandysiswandi/registra/internal/pkg/validator"
	"github.com/shandysiswandi/registra/internal/registration/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"
)

// rule is a local check on a present string value.
type rule struct {
	name  string
	tag   string
	param string
}

// fieldRules run after required and string, in this order. Lookups are
// slotted in by assemble.
var fieldRules = map[string][]rule{
	entity.FieldName: {
		{name: validator.RuleMax, tag: "max=255", param: "255"},
		{name: validator.RuleRegex, tag: "personname"},
	},
	entity.FieldEmail: {
		{name: validator.RuleEmail, tag: "email"},
		{name: validator.RuleMax, tag: "max=255", param: "255"},
	},
	entity.FieldPassword: {
		{name: validator.RuleMin, tag: "min=8", param: "8"},
		{name: validator.RuleMax, tag: "max=128", param: "128"},
	},
	entity.FieldNIK: {
		{name: validator.RuleRegex, tag: "nik"},
	},
	entity.FieldPhoneNumber: {
		{name: validator.RuleMax, tag: "max=20", param: "20"},
		{name: validator.RuleRegex, tag: "phone"},
	},
}

// fieldState is the local outcome for one field.
type fieldState struct {
	value   string
	blocked string
	failed  map[string]bool
}

func (f fieldState) passed(rule string) bool {
	return f.blocked == "" && !f.failed[rule]
}

// lookups holds the answers of the remote checks.
type lookups struct {
	checkDomain    bool
	domainOK       bool
	checkEmail     bool
	emailTaken     bool
	checkNIK       bool
	nikTaken       bool
	confirmMatches bool
}

// Validate checks raw against every registration rule. A failing rule never
// produces an error: it lands in Result.Report. Errors are returned only when
// a lookup could not be answered.
func (s *Usecase) Validate(ctx context.Context, raw entity.RawPayload) (*entity.Result, error) {
	ctx, span := s.startSpan(ctx, "Validate")
	defer span.End()

	states := make(map[string]fieldState, len(entity.Fields))
	for _, field := range entity.Fields {
		states[field] = s.checkLocal(raw, field)
	}

	confirmation, _ := raw[entity.FieldPasswordConfirmation].(string)
	email, nik := states[entity.FieldEmail], states[entity.FieldNIK]

	lk := lookups{
		checkDomain: email.passed(validator.RuleEmail) && s.cfg.GetBool("modules.registration.email.dns_check"),
		checkEmail:  email.blocked == "",
		checkNIK:    nik.passed(validator.RuleRegex),
		confirmMatches: states[entity.FieldPassword].blocked == "" &&
			s.validator.VarWithValue(states[entity.FieldPassword].value, confirmation, "eqfield"),
	}

	if err := s.lookup(ctx, &lk, email.value, nik.value); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	report := s.assemble(states, lk)
	if len(report) > 0 {
		for field := range report {
			s.countFailure(ctx, field)
		}
		span.SetAttributes(attribute.Int("registration.invalid_fields", len(report)))
		return &entity.Result{Report: report}, nil
	}

	return &entity.Result{
		Payload: &entity.Registration{
			Name:                 states[entity.FieldName].value,
			Email:                email.value,
			Password:             states[entity.FieldPassword].value,
			PasswordConfirmation: confirmation,
			NIK:                  nik.value,
			PhoneNumber:          states[entity.FieldPhoneNumber].value,
		},
		Report: entity.Report{},
	}, nil
}

// checkLocal runs required, string and the table rules of field.
func (s *Usecase) checkLocal(raw entity.RawPayload, field string) fieldState {
	value, blocked := s.presentString(raw[field])
	if blocked != "" {
		return fieldState{blocked: blocked}
	}

	st := fieldState{value: value, failed: map[string]bool{}}
	for _, r := range fieldRules[field] {
		if !s.validator.Var(value, r.tag) {
			st.failed[r.name] = true
		}
	}

	return st
}

// presentString applies required and string. It returns the rule that
// stopped the field, if any.
func (s *Usecase) presentString(v any) (string, string) {
	switch t := v.(type) {
	case nil:
		return "", validator.RuleRequired
	case string:
		if !s.validator.Var(t, "notblank") {
			return "", validator.RuleRequired
		}
		return t, ""
	case []any:
		if len(t) == 0 {
			return "", validator.RuleRequired
		}
	case map[string]any:
		if len(t) == 0 {
			return "", validator.RuleRequired
		}
	}

	return "", validator.RuleString
}

// lookup runs the domain and directory checks concurrently under one timeout.
func (s *Usecase) lookup(ctx context.Context, lk *lookups, email, nik string) error {
	ctx, cancel := context.WithTimeout(ctx, s.lookupTimeout())
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	if lk.checkDomain {
		g.Go(func() error {
			ok, err := s.domains.Resolvable(gctx, domainOf(email))
			if err != nil {
				slog.ErrorContext(ctx, "failed to resolve email domain", "domain", domainOf(email), "error", err)
				return err
			}
			lk.domainOK = ok
			return nil
		})
	}

	if lk.checkEmail {
		g.Go(func() error {
			taken, err := s.directory.ExistsByEmail(gctx, email)
			if err != nil {
				slog.ErrorContext(ctx, "failed to repo exists by email", "error", err)
				return err
			}
			lk.emailTaken = taken
			return nil
		})
	}

	if lk.checkNIK {
		g.Go(func() error {
			nikHash, err := s.HashNIK(nik)
			if err != nil {
				slog.ErrorContext(ctx, "failed to hash nik", "error", err)
				return err
			}

			taken, err := s.directory.ExistsByNIKHash(gctx, nikHash)
			if err != nil {
				slog.ErrorContext(ctx, "failed to repo exists by nik hash", "error", err)
				return err
			}
			lk.nikTaken = taken
			return nil
		})
	}

	err := g.Wait()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return goerror.NewTimeout(err)
	default:
		return goerror.NewUnavailable(err)
	}
}

// assemble renders the report in field order, keeping rule order within a
// field.
func (s *Usecase) assemble(states map[string]fieldState, lk lookups) entity.Report {
	report := entity.Report{}
	for _, field := range entity.Fields {
		st := states[field]
		if st.blocked != "" {
			report.Add(field, s.translator.Translate(field, st.blocked))
			continue
		}

		for _, r := range fieldRules[field] {
			failed := st.failed[r.name]
			if field == entity.FieldEmail && r.name == validator.RuleEmail && !failed && lk.checkDomain && !lk.domainOK {
				failed = true
			}
			if failed {
				report.Add(field, s.translator.Translate(field, r.name, r.param))
			}
		}

		switch field {
		case entity.FieldEmail:
			if lk.emailTaken {
				report.Add(field, s.translator.Translate(field, validator.RuleUnique))
			}
		case entity.FieldPassword:
			if !lk.confirmMatches {
				report.Add(field, s.translator.Translate(field, validator.RuleConfirmed))
			}
		case entity.FieldNIK:
			if lk.nikTaken {
				report.Add(field, s.translator.Translate(field, validator.RuleUnique))
			}
		}
	}

	return report
}

func (s *Usecase) countFailure(ctx context.Context, field string) {
	if s.failures == nil {
		return
	}
	s.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("field", field)))
}

func domainOf(email string) string {
	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return ""
	}
	return strings.ToLower(email[at+1:])
}
