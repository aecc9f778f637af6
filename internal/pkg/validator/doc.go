// Package validator provides rule checks and localized messages for request
// and domain values.
//
// Business code depends on the Validator and Translator interfaces. The rules
// themselves come from go-playground/validator v10; messages are rendered by
// go-playground/universal-translator in English or Indonesian, with per-field
// overrides keyed as "<field>.<rule>".
package validator
