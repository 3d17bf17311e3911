package tle

import "fmt"

// Severity ranks an Issue. Errors and warnings share one representation;
// only severity distinguishes them.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Code identifies one diagnostic in the closed taxonomy.
type Code string

const (
	// Input errors.
	CodeEmptyInput Code = "EMPTY_INPUT"

	// Structural errors.
	CodeInvalidLineCount  Code = "INVALID_LINE_COUNT"
	CodeInvalidLineLength Code = "INVALID_LINE_LENGTH"
	CodeInvalidLineNumber Code = "INVALID_LINE_NUMBER"

	// Checksum errors.
	CodeChecksumMismatch         Code = "CHECKSUM_MISMATCH"
	CodeInvalidChecksumCharacter Code = "INVALID_CHECKSUM_CHARACTER"

	// Field errors.
	CodeInvalidClassification   Code = "INVALID_CLASSIFICATION"
	CodeSatelliteNumberMismatch Code = "SATELLITE_NUMBER_MISMATCH"
	CodeValueOutOfRange         Code = "VALUE_OUT_OF_RANGE"
	CodeInvalidNumericFormat    Code = "INVALID_NUMERIC_FORMAT"

	// Recovery-parser diagnostics.
	CodePartialField     Code = "PARTIAL_FIELD"
	CodeMissingField     Code = "MISSING_FIELD"
	CodeStateMachineLoop Code = "STATE_MACHINE_LOOP"

	// Advisory warnings.
	CodeClassifiedData       Code = "CLASSIFIED_DATA"
	CodeStaleTLE             Code = "STALE_TLE"
	CodeDeprecatedEpochYear  Code = "DEPRECATED_EPOCH_YEAR"
	CodeHighEccentricity     Code = "HIGH_ECCENTRICITY"
	CodeLowMeanMotion        Code = "LOW_MEAN_MOTION"
	CodeRevolutionRollover   Code = "REVOLUTION_NUMBER_ROLLOVER"
	CodeNearZeroDrag         Code = "NEAR_ZERO_DRAG"
	CodeNegativeDecay        Code = "NEGATIVE_DECAY"
	CodeNonStandardEphemeris Code = "NON_STANDARD_EPHEMERIS"
	CodeLongName             Code = "LONG_NAME"
)

// Issue is a single diagnostic: a required core plus open-ended context.
// Line is 1-based (0 means the issue applies to the whole input).
type Issue struct {
	Code     Code              `json:"code"`
	Message  string            `json:"message"`
	Severity Severity          `json:"severity"`
	Line     int               `json:"line,omitempty"`
	Field    string            `json:"field,omitempty"`
	Expected string            `json:"expected,omitempty"`
	Actual   string            `json:"actual,omitempty"`
	Context  map[string]string `json:"context,omitempty"`
}

func (i Issue) String() string {
	if i.Field != "" {
		return fmt.Sprintf("%s [%s] %s: %s", i.Severity, i.Code, i.Field, i.Message)
	}
	return fmt.Sprintf("%s [%s] %s", i.Severity, i.Code, i.Message)
}

// IsError reports whether the issue blocks a strict parse.
func (i Issue) IsError() bool {
	return i.Severity == SeverityError || i.Severity == SeverityCritical
}

// ValidationError carries the complete ordered issue lists collected before
// a fail-fast parse aborted, never just the first error.
type ValidationError struct {
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "tle: validation failed"
	}
	return fmt.Sprintf("tle: validation failed with %d error(s), first: %s", len(e.Errors), e.Errors[0])
}
