// Package uid generates unique identifiers.
//
// NumberID produces time-ordered int64 IDs used as primary keys; StringID
// produces opaque strings used for event and correlation IDs.
package uid

// NumberID generates unique, roughly time-ordered int64 identifiers.
type NumberID interface {
	Generate() int64
}

// StringID generates unique string identifiers.
type StringID interface {
	Generate() string
}
