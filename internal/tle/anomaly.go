package tle

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Anomaly thresholds. These flag unusual-but-valid values and never block
// a successful parse.
const (
	staleAfter            = 30 * 24 * time.Hour
	highEccentricity      = 0.25
	lowMeanMotion         = 1.0
	revolutionRolloverMax = 90000
)

// DetectAnomalies computes advisory warnings from already-extracted fields.
// Checks whose inputs fail to parse are skipped; the validator reports
// malformed numerics separately. now is the reference time for staleness.
func DetectAnomalies(f1 Line1Fields, f2 Line2Fields, now time.Time) []Issue {
	var warnings []Issue

	if f1.Classification == "C" || f1.Classification == "S" {
		warnings = append(warnings, Issue{
			Code:     CodeClassifiedData,
			Message:  fmt.Sprintf("classification %q indicates classified data", f1.Classification),
			Severity: SeverityWarning,
			Line:     1,
			Field:    "classification",
			Actual:   f1.Classification,
		})
	}

	if epoch, err := EpochTime(f1.EpochYear, f1.EpochDay); err == nil {
		if age := now.Sub(epoch); age > staleAfter {
			days := age.Hours() / 24
			warnings = append(warnings, Issue{
				Code:     CodeStaleTLE,
				Message:  fmt.Sprintf("epoch is %.1f days old", days),
				Severity: SeverityWarning,
				Line:     1,
				Field:    "epoch_day",
				Context:  map[string]string{"age_days": fmt.Sprintf("%.1f", days)},
			})
		}
	}

	if year, err := strconv.Atoi(f1.EpochYear); err == nil && decodeEpochYear(year) < 2000 {
		warnings = append(warnings, Issue{
			Code:     CodeDeprecatedEpochYear,
			Message:  fmt.Sprintf("two-digit epoch year %02d decodes to %d", year, decodeEpochYear(year)),
			Severity: SeverityWarning,
			Line:     1,
			Field:    "epoch_year",
			Actual:   f1.EpochYear,
		})
	}

	if ecc, err := strconv.ParseFloat("0."+f2.Eccentricity, 64); err == nil && ecc > highEccentricity {
		warnings = append(warnings, Issue{
			Code:     CodeHighEccentricity,
			Message:  fmt.Sprintf("eccentricity %.7f exceeds %.2f", ecc, highEccentricity),
			Severity: SeverityWarning,
			Line:     2,
			Field:    "eccentricity",
			Actual:   f2.Eccentricity,
		})
	}

	if mm, err := strconv.ParseFloat(f2.MeanMotion, 64); err == nil && mm < lowMeanMotion {
		warnings = append(warnings, Issue{
			Code:     CodeLowMeanMotion,
			Message:  fmt.Sprintf("mean motion %.8f rev/day is below %.1f", mm, lowMeanMotion),
			Severity: SeverityWarning,
			Line:     2,
			Field:    "mean_motion",
			Actual:   f2.MeanMotion,
		})
	}

	if rev, err := strconv.Atoi(f2.RevolutionNumber); err == nil && rev > revolutionRolloverMax {
		warnings = append(warnings, Issue{
			Code:     CodeRevolutionRollover,
			Message:  fmt.Sprintf("revolution number %d approaches the 5-digit rollover", rev),
			Severity: SeverityWarning,
			Line:     2,
			Field:    "revolution_number",
			Actual:   f2.RevolutionNumber,
		})
	}

	if isZeroDrag(f1.Bstar) {
		warnings = append(warnings, Issue{
			Code:     CodeNearZeroDrag,
			Message:  fmt.Sprintf("B* term %q encodes zero drag", f1.Bstar),
			Severity: SeverityWarning,
			Line:     1,
			Field:    "bstar",
			Actual:   f1.Bstar,
		})
	}

	if strings.HasPrefix(f1.FirstDerivative, "-") {
		warnings = append(warnings, Issue{
			Code:     CodeNegativeDecay,
			Message:  "first derivative of mean motion is negative (orbit raising or decaying data)",
			Severity: SeverityWarning,
			Line:     1,
			Field:    "first_derivative",
			Actual:   f1.FirstDerivative,
		})
	}

	if f1.EphemerisType != "" && f1.EphemerisType != "0" {
		warnings = append(warnings, Issue{
			Code:     CodeNonStandardEphemeris,
			Message:  fmt.Sprintf("ephemeris type %q is not the standard SGP4 type", f1.EphemerisType),
			Severity: SeverityWarning,
			Line:     1,
			Field:    "ephemeris_type",
			Actual:   f1.EphemerisType,
		})
	}

	return warnings
}

// isZeroDrag reports whether a B* field textually encodes zero drag,
// e.g. "00000-0", "00000+0" or "0".
func isZeroDrag(bstar string) bool {
	if bstar == "" {
		return false
	}
	for _, c := range bstar {
		switch c {
		case '0', '+', '-', ' ':
		default:
			return false
		}
	}
	return true
}
