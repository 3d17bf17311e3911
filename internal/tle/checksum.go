package tle

import "fmt"

// lineLength is the exact length of a TLE data line. The final character is
// the checksum digit; the 68 characters before it are the data window.
const (
	lineLength       = 69
	checksumPosition = 68
)

// CalculateChecksum computes the NORAD mod-10 checksum over the first 68
// characters of line: each decimal digit contributes its value, each '-'
// contributes 1, everything else contributes 0. Shorter lines are summed as
// far as they go so the recovery parser can still diagnose truncated input.
func CalculateChecksum(line string) int {
	end := checksumPosition
	if len(line) < end {
		end = len(line)
	}
	sum := 0
	for i := 0; i < end; i++ {
		c := line[i]
		switch {
		case c >= '0' && c <= '9':
			sum += int(c - '0')
		case c == '-':
			sum++
		}
	}
	return sum % 10
}

// ChecksumResult reports one checksum verification. Expected is the computed
// digit, Actual the declared one. Issue is nil when the line verifies.
type ChecksumResult struct {
	IsValid  bool   `json:"is_valid"`
	Expected int    `json:"expected"`
	Actual   int    `json:"actual"`
	Issue    *Issue `json:"issue,omitempty"`
}

// ValidateChecksum verifies the declared checksum digit of a 69-character
// TLE line against the computed one.
func ValidateChecksum(line string) ChecksumResult {
	if len(line) != lineLength {
		return ChecksumResult{
			Expected: -1,
			Actual:   -1,
			Issue: &Issue{
				Code:     CodeInvalidLineLength,
				Message:  fmt.Sprintf("line must be exactly %d characters, got %d", lineLength, len(line)),
				Severity: SeverityError,
				Expected: fmt.Sprintf("%d", lineLength),
				Actual:   fmt.Sprintf("%d", len(line)),
			},
		}
	}

	c := line[checksumPosition]
	if c < '0' || c > '9' {
		return ChecksumResult{
			Expected: CalculateChecksum(line),
			Actual:   -1,
			Issue: &Issue{
				Code:     CodeInvalidChecksumCharacter,
				Message:  fmt.Sprintf("checksum character %q is not a digit", string(c)),
				Severity: SeverityError,
				Actual:   string(c),
			},
		}
	}

	expected := CalculateChecksum(line)
	actual := int(c - '0')
	if expected != actual {
		return ChecksumResult{
			Expected: expected,
			Actual:   actual,
			Issue: &Issue{
				Code:     CodeChecksumMismatch,
				Message:  fmt.Sprintf("checksum mismatch: computed %d, declared %d", expected, actual),
				Severity: SeverityError,
				Expected: fmt.Sprintf("%d", expected),
				Actual:   fmt.Sprintf("%d", actual),
			},
		}
	}

	return ChecksumResult{IsValid: true, Expected: expected, Actual: actual}
}
