package domain

import (
	"fmt"
	"strings"
)

// MissingDataError reports a required per-pair signal that could not be found.
type MissingDataError struct {
	PairID int
	Path   string
	Reason string
}

func (e *MissingDataError) Error() string {
	msg := fmt.Sprintf("missing data for pair %d", e.PairID)
	if e.Path != "" {
		msg += ": " + e.Path
	}
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

// ServiceUnavailableError reports an unreachable external service or a
// response that could not be parsed.
type ServiceUnavailableError struct {
	Endpoint string
	Err      error
}

func (e *ServiceUnavailableError) Error() string {
	return fmt.Sprintf("service %s unavailable: %v", e.Endpoint, e.Err)
}

func (e *ServiceUnavailableError) Unwrap() error {
	return e.Err
}

// SchemaMismatchError reports a feature matrix whose columns differ from the
// schema a consumer expects.
type SchemaMismatchError struct {
	Expected []string
	Got      []string
}

func (e *SchemaMismatchError) Error() string {
	if len(e.Expected) != len(e.Got) {
		return fmt.Sprintf("feature schema mismatch: expected %d columns, got %d", len(e.Expected), len(e.Got))
	}
	for i := range e.Expected {
		if e.Expected[i] != e.Got[i] {
			return fmt.Sprintf("feature schema mismatch at column %d: expected %s, got %s", i, e.Expected[i], e.Got[i])
		}
	}
	return "feature schema mismatch: [" + strings.Join(e.Got, ",") + "]"
}

// ConfigurationError reports invalid hyperparameters or inconsistent inputs
// detected before any training work starts.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Field, e.Reason)
}

// CheckColumns returns a SchemaMismatchError unless got equals expected.
func CheckColumns(expected, got []string) error {
	if len(expected) != len(got) {
		return &SchemaMismatchError{Expected: expected, Got: got}
	}
	for i := range expected {
		if expected[i] != got[i] {
			return &SchemaMismatchError{Expected: expected, Got: got}
		}
	}
	return nil
}
