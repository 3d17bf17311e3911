package tle

import (
	"strconv"
	"strings"
)

// Parse is the fail-fast entry point: it validates text according to opts
// and returns the assembled record, or a *ValidationError carrying the
// complete ordered error and warning lists when validation rejects the
// input. Each call is independent; the returned record is never mutated.
func Parse(text string, opts Options) (*Record, error) {
	lines, comments := NormalizeLinesWithComments(text)

	var warnings []Issue
	if opts.Validate {
		log := &issueLog{}
		validateInto(text, opts, log)
		if len(log.errors) > 0 {
			return nil, &ValidationError{Errors: log.errors, Warnings: log.warnings}
		}
		warnings = log.warnings
	}

	if len(lines) < 2 {
		return nil, &ValidationError{Errors: []Issue{{
			Code:     CodeInvalidLineCount,
			Message:  "need at least 2 data lines to assemble a record",
			Severity: SeverityError,
			Actual:   strconv.Itoa(len(lines)),
		}}}
	}

	name, line1, line2 := splitRecordLines(lines)
	rec := assembleRecord(name, line1, line2)
	if opts.IncludeComments {
		rec.Comments = comments
	}
	if opts.IncludeWarnings {
		rec.Warnings = warnings
	}
	return rec, nil
}

// assembleRecord merges extracted fields into the final output value and
// attaches the best-effort parsed numeric form.
func assembleRecord(name, line1, line2 string) *Record {
	f1 := ExtractLine1(line1)
	f2 := ExtractLine2(line2)
	return &Record{
		Name:     strings.TrimSpace(name),
		Line1:    f1,
		Line2:    f2,
		Elements: parseElements(f1, f2),
	}
}

// parseElements converts the verbatim substrings to numeric form. Fields
// that fail to parse stay zero; nil is returned only when nothing at all
// parsed.
func parseElements(f1 Line1Fields, f2 Line2Fields) *OrbitalElements {
	el := &OrbitalElements{}
	any := false

	if v, err := strconv.Atoi(f1.SatelliteNumber); err == nil {
		el.SatelliteNumber = v
		any = true
	}
	if v, err := strconv.Atoi(f1.EpochYear); err == nil {
		el.EpochYear = decodeEpochYear(v)
		any = true
	}
	if v, err := strconv.ParseFloat(f1.EpochDay, 64); err == nil {
		el.EpochDay = v
		any = true
	}
	if t, err := EpochTime(f1.EpochYear, f1.EpochDay); err == nil {
		el.Epoch = t
	}
	if v, err := strconv.ParseFloat(f1.FirstDerivative, 64); err == nil {
		el.FirstDerivative = v
		any = true
	}
	if v, err := parseAssumedDecimal(f1.SecondDerivative); err == nil {
		el.SecondDerivative = v
		any = true
	}
	if v, err := parseAssumedDecimal(f1.Bstar); err == nil {
		el.Bstar = v
		any = true
	}
	if v, err := strconv.Atoi(f1.ElementSetNumber); err == nil {
		el.ElementSetNumber = v
		any = true
	}
	if v, err := strconv.ParseFloat(f2.Inclination, 64); err == nil {
		el.Inclination = v
		any = true
	}
	if v, err := strconv.ParseFloat(f2.RightAscension, 64); err == nil {
		el.RightAscension = v
		any = true
	}
	if f2.Eccentricity != "" {
		if v, err := strconv.ParseFloat("0."+f2.Eccentricity, 64); err == nil {
			el.Eccentricity = v
			any = true
		}
	}
	if v, err := strconv.ParseFloat(f2.ArgumentOfPerigee, 64); err == nil {
		el.ArgumentOfPerigee = v
		any = true
	}
	if v, err := strconv.ParseFloat(f2.MeanAnomaly, 64); err == nil {
		el.MeanAnomaly = v
		any = true
	}
	if v, err := strconv.ParseFloat(f2.MeanMotion, 64); err == nil {
		el.MeanMotion = v
		any = true
	}
	if v, err := strconv.Atoi(f2.RevolutionNumber); err == nil {
		el.RevolutionNumber = v
		any = true
	}

	if !any {
		return nil
	}
	return el
}

// parseAssumedDecimal decodes the TLE exponent notation used by the second
// derivative and B* fields: a signed mantissa with an implied leading "0."
// followed by a signed exponent digit with an implied base 10. "-11606-4"
// is -0.11606e-4.
func parseAssumedDecimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, strconv.ErrSyntax
	}

	mantSign := 1.0
	switch s[0] {
	case '-':
		mantSign = -1
		s = s[1:]
	case '+':
		s = s[1:]
	}

	// The exponent sign separates mantissa digits from the exponent digit.
	expIdx := strings.LastIndexAny(s, "+-")
	mantStr, expStr := s, ""
	if expIdx > 0 {
		mantStr, expStr = s[:expIdx], s[expIdx:]
	}

	mant, err := strconv.ParseFloat("0."+mantStr, 64)
	if err != nil {
		return 0, err
	}

	exp := 0
	if expStr != "" {
		exp, err = strconv.Atoi(expStr)
		if err != nil {
			return 0, err
		}
	}

	v := mantSign * mant
	for i := 0; i < exp; i++ {
		v *= 10
	}
	for i := 0; i > exp; i-- {
		v /= 10
	}
	return v, nil
}
