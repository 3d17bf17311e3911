package tle

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationResult is the diagnostics-only outcome of Validate.
type ValidationResult struct {
	IsValid  bool    `json:"is_valid"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

// rangeSpec bounds one numeric orbital field. WarnOnly fields never reject:
// an out-of-range mean motion is unusual but not invalid.
type rangeSpec struct {
	Line     int
	Field    string
	Min      float64
	Max      float64
	WarnOnly bool
}

var rangeTable = []rangeSpec{
	{1, "epoch_year", 0, 99, false},
	{1, "epoch_day", 1, 366.99999999, false},
	{2, "inclination", 0, 180, false},
	{2, "right_ascension", 0, 360, false},
	{2, "eccentricity", 0, 1, false},
	{2, "argument_of_perigee", 0, 360, false},
	{2, "mean_anomaly", 0, 360, false},
	{2, "mean_motion", 0, 20, true},
}

// issueLog accumulates ordered issues, routed by severity.
type issueLog struct {
	errors   []Issue
	warnings []Issue
}

func (l *issueLog) add(i Issue) {
	if i.IsError() {
		l.errors = append(l.errors, i)
	} else {
		l.warnings = append(l.warnings, i)
	}
}

// violationSeverity maps the mode-controlled violation classes (checksum,
// classification, satellite number, ranges) to their effective severity.
func violationSeverity(mode Mode) Severity {
	if mode == ModePermissive {
		return SeverityWarning
	}
	return SeverityError
}

// Validate runs the full structural, checksum, cross-field and range checks
// without assembling a record. Both data lines are always validated so the
// returned error list is complete.
func Validate(text string, opts Options) ValidationResult {
	log := &issueLog{}
	validateInto(text, opts, log)
	return ValidationResult{
		IsValid:  len(log.errors) == 0,
		Errors:   log.errors,
		Warnings: log.warnings,
	}
}

// validateInto performs validation, appending to log. It returns the
// normalized data lines when the input is structurally usable.
func validateInto(text string, opts Options, log *issueLog) []string {
	lines := NormalizeLines(text)
	if len(lines) == 0 {
		log.add(Issue{
			Code:     CodeEmptyInput,
			Message:  "input contains no data lines",
			Severity: SeverityError,
		})
		return nil
	}

	if len(lines) < 2 || len(lines) > 3 {
		log.add(Issue{
			Code:     CodeInvalidLineCount,
			Message:  fmt.Sprintf("expected 2 or 3 lines, got %d", len(lines)),
			Severity: SeverityError,
			Expected: "2 or 3",
			Actual:   strconv.Itoa(len(lines)),
		})
		return nil
	}

	_, line1, line2 := splitRecordLines(lines)
	validateDataLine(line1, "1", 1, opts, log)
	validateDataLine(line2, "2", 2, opts, log)
	validateCrossFields(line1, line2, opts, log)

	if opts.IncludeWarnings {
		f1 := ExtractLine1(line1)
		f2 := ExtractLine2(line2)
		for _, w := range DetectAnomalies(f1, f2, opts.refTime()) {
			log.add(w)
		}
	}
	return lines
}

// splitRecordLines separates an optional name line from the two data lines.
func splitRecordLines(lines []string) (name, line1, line2 string) {
	if len(lines) == 3 {
		return strings.TrimSpace(lines[0]), lines[1], lines[2]
	}
	return "", lines[0], lines[1]
}

func validateDataLine(line, wantMarker string, lineNo int, opts Options, log *issueLog) {
	if len(line) != lineLength {
		log.add(Issue{
			Code:     CodeInvalidLineLength,
			Message:  fmt.Sprintf("line %d must be exactly %d characters, got %d", lineNo, lineLength, len(line)),
			Severity: SeverityError,
			Line:     lineNo,
			Expected: strconv.Itoa(lineLength),
			Actual:   strconv.Itoa(len(line)),
		})
	}

	marker, _ := extractAt(line, 0, 1)
	if marker != wantMarker {
		log.add(Issue{
			Code:     CodeInvalidLineNumber,
			Message:  fmt.Sprintf("line %d marker must be %q, got %q", lineNo, wantMarker, marker),
			Severity: SeverityError,
			Line:     lineNo,
			Field:    "line_number",
			Expected: wantMarker,
			Actual:   marker,
		})
	}

	if len(line) == lineLength {
		if cr := ValidateChecksum(line); cr.Issue != nil {
			issue := *cr.Issue
			issue.Line = lineNo
			issue.Field = "checksum"
			issue.Severity = violationSeverity(opts.Mode)
			if !opts.StrictChecksums {
				issue.Severity = SeverityWarning
			}
			log.add(issue)
		}
	}
}

func validateCrossFields(line1, line2 string, opts Options, log *issueLog) {
	f1 := ExtractLine1(line1)
	f2 := ExtractLine2(line2)
	sev := violationSeverity(opts.Mode)

	if f1.SatelliteNumber != f2.SatelliteNumber {
		log.add(Issue{
			Code:     CodeSatelliteNumberMismatch,
			Message:  fmt.Sprintf("satellite number %q on line 1 does not match %q on line 2", f1.SatelliteNumber, f2.SatelliteNumber),
			Severity: sev,
			Field:    "satellite_number",
			Expected: f1.SatelliteNumber,
			Actual:   f2.SatelliteNumber,
		})
	}

	if f1.Classification != "U" && f1.Classification != "C" && f1.Classification != "S" {
		log.add(Issue{
			Code:     CodeInvalidClassification,
			Message:  fmt.Sprintf("classification must be U, C or S, got %q", f1.Classification),
			Severity: sev,
			Line:     1,
			Field:    "classification",
			Expected: "U, C or S",
			Actual:   f1.Classification,
		})
	}

	if opts.ValidateRanges {
		validateRanges(f1, f2, opts, log)
	}
}

func validateRanges(f1 Line1Fields, f2 Line2Fields, opts Options, log *issueLog) {
	sev := violationSeverity(opts.Mode)

	for _, spec := range rangeTable {
		raw := rangeFieldValue(spec, f1, f2)
		if raw == "" {
			continue // missing fields are reported elsewhere
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			log.add(Issue{
				Code:     CodeInvalidNumericFormat,
				Message:  fmt.Sprintf("%s value %q is not numeric", spec.Field, raw),
				Severity: sev,
				Line:     spec.Line,
				Field:    spec.Field,
				Actual:   raw,
			})
			continue
		}
		if v < spec.Min || v > spec.Max {
			issueSev := sev
			if spec.WarnOnly {
				issueSev = SeverityWarning
			}
			log.add(Issue{
				Code:     CodeValueOutOfRange,
				Message:  fmt.Sprintf("%s %v outside [%v, %v]", spec.Field, v, spec.Min, spec.Max),
				Severity: issueSev,
				Line:     spec.Line,
				Field:    spec.Field,
				Expected: fmt.Sprintf("[%v, %v]", spec.Min, spec.Max),
				Actual:   raw,
			})
		}
	}
}

// rangeFieldValue returns the string to range-check for one spec. The
// eccentricity field carries an implied leading "0." which is reconstructed
// here before parsing.
func rangeFieldValue(spec rangeSpec, f1 Line1Fields, f2 Line2Fields) string {
	switch {
	case spec.Line == 1 && spec.Field == "epoch_year":
		return f1.EpochYear
	case spec.Line == 1 && spec.Field == "epoch_day":
		return f1.EpochDay
	case spec.Line == 2 && spec.Field == "inclination":
		return f2.Inclination
	case spec.Line == 2 && spec.Field == "right_ascension":
		return f2.RightAscension
	case spec.Line == 2 && spec.Field == "eccentricity":
		if f2.Eccentricity == "" {
			return ""
		}
		return "0." + f2.Eccentricity
	case spec.Line == 2 && spec.Field == "argument_of_perigee":
		return f2.ArgumentOfPerigee
	case spec.Line == 2 && spec.Field == "mean_anomaly":
		return f2.MeanAnomaly
	case spec.Line == 2 && spec.Field == "mean_motion":
		return f2.MeanMotion
	}
	return ""
}
