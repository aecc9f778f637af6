package config

import (
	"io"
	"time"
)

// DurationConfig reads integer values and interprets them as durations.
type DurationConfig interface {
	// GetMillisecond returns the integer value of key as milliseconds.
	GetMillisecond(key string) time.Duration

	// GetSecond returns the integer value of key as seconds.
	GetSecond(key string) time.Duration

	// GetMinute returns the integer value of key as minutes.
	GetMinute(key string) time.Duration
}

// NumberConfig reads numeric values. Missing or malformed keys yield zero.
type NumberConfig interface {
	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
	GetUint(key string) uint
	GetUint16(key string) uint16
	GetFloat64(key string) float64
}

// Config is the read-only view of the application configuration.
//
// Implementations never fail on lookup: a missing key yields the zero value of
// the requested type, so callers validate what they need at wiring time.
type Config interface {
	io.Closer
	DurationConfig
	NumberConfig

	// GetBool returns the value of key as a bool.
	GetBool(key string) bool

	// GetString returns the value of key as a string.
	GetString(key string) string

	// GetBinary returns the base64-decoded value of key, or nil when it is not valid base64.
	GetBinary(key string) []byte

	// GetArray returns the value of key as a list.
	//
	// Both native YAML lists and comma separated strings ("a,b,c") are accepted.
	// Elements are trimmed and empty elements are dropped.
	GetArray(key string) []string

	// GetStringMap returns the value of key as a map of strings.
	//
	// The value must be a nested mapping in the config file, which allows
	// values containing commas or colons (for example localized messages).
	GetStringMap(key string) map[string]string
}
