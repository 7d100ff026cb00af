// Package envconfig reads fcnet settings from the environment.
//
// Only the command line tool consults the environment; library entry points
// take explicit options.
package envconfig

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/born-ml/fcnet/internal/serialization"
)

// Var returns an environment variable stripped of surrounding quotes and spaces.
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}

// BoolWithDefault returns a reader for a boolean variable. A set but
// unparsable value counts as true.
func BoolWithDefault(k string) func(defaultValue bool) bool {
	return func(defaultValue bool) bool {
		if s := Var(k); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return true
			}
			return b
		}
		return defaultValue
	}
}

// Bool returns a reader for a boolean variable that defaults to false.
func Bool(k string) func() bool {
	withDefault := BoolWithDefault(k)
	return func() bool {
		return withDefault(false)
	}
}

var (
	// SkipChecksum disables checksum verification when loading checkpoints.
	// Configured via FCNET_SKIP_CHECKSUM.
	SkipChecksum = Bool("FCNET_SKIP_CHECKSUM")
)

// LogLevel returns the log level. FCNET_DEBUG=1 enables debug logging; an
// integer n sets the level to -4n.
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("FCNET_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}

	return level
}

// ValidationLevel returns the header validation level for loads.
// Configured via FCNET_VALIDATION (strict, normal or none); default strict.
func ValidationLevel() serialization.ValidationLevel {
	s := Var("FCNET_VALIDATION")
	level, err := serialization.ParseValidationLevel(s)
	if err != nil {
		slog.Warn("invalid environment variable, using default", "key", "FCNET_VALIDATION", "value", s, "default", serialization.ValidationStrict)
		return serialization.ValidationStrict
	}
	return level
}

// EnvVar describes one supported variable.
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap returns every supported variable with its current value.
func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"FCNET_DEBUG":         {"FCNET_DEBUG", LogLevel(), "Show additional debug information (e.g. FCNET_DEBUG=1)"},
		"FCNET_VALIDATION":    {"FCNET_VALIDATION", ValidationLevel(), "Checkpoint header validation: strict, normal or none (default strict)"},
		"FCNET_SKIP_CHECKSUM": {"FCNET_SKIP_CHECKSUM", SkipChecksum(), "Skip checkpoint checksum verification"},
	}
}

// Values returns every supported variable's current value as a string.
func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}
