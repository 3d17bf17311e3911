package tle

import (
	"testing"
	"time"
)

// refNow is shortly after the golden epoch (2008 day 264), so the golden
// record is not stale against it.
var refNow = time.Date(2008, 10, 1, 0, 0, 0, 0, time.UTC)

func testOptions() Options {
	opts := DefaultOptions()
	opts.Now = refNow
	return opts
}

func hasCode(issues []Issue, code Code) bool {
	for _, i := range issues {
		if i.Code == code {
			return true
		}
	}
	return false
}

func golden() string {
	return issName + "\n" + issLine1 + "\n" + issLine2 + "\n"
}

func TestValidateGolden(t *testing.T) {
	res := Validate(golden(), testOptions())
	if !res.IsValid {
		t.Fatalf("golden TLE invalid: %+v", res.Errors)
	}
	if len(res.Errors) != 0 {
		t.Errorf("unexpected errors: %+v", res.Errors)
	}
	// The ISS line carries a negative first derivative, which is advisory.
	if !hasCode(res.Warnings, CodeNegativeDecay) {
		t.Errorf("expected %s warning, got %+v", CodeNegativeDecay, res.Warnings)
	}
	if hasCode(res.Warnings, CodeStaleTLE) {
		t.Errorf("record should not be stale against the reference time")
	}
}

func TestValidateTwoLineForm(t *testing.T) {
	res := Validate(issLine1+"\n"+issLine2, testOptions())
	if !res.IsValid {
		t.Fatalf("2-line TLE invalid: %+v", res.Errors)
	}
}

func TestValidateEmptyInput(t *testing.T) {
	for _, raw := range []string{"", "\n\n", "   \n\t\n"} {
		res := Validate(raw, testOptions())
		if res.IsValid || !hasCode(res.Errors, CodeEmptyInput) {
			t.Errorf("Validate(%q): expected %s, got %+v", raw, CodeEmptyInput, res.Errors)
		}
	}
}

func TestValidateLineCount(t *testing.T) {
	res := Validate(issLine1, testOptions())
	if res.IsValid || !hasCode(res.Errors, CodeInvalidLineCount) {
		t.Errorf("single line: expected %s, got %+v", CodeInvalidLineCount, res.Errors)
	}

	four := "A\n" + issLine1 + "\n" + issLine2 + "\nB"
	res = Validate(four, testOptions())
	if res.IsValid || !hasCode(res.Errors, CodeInvalidLineCount) {
		t.Errorf("four lines: expected %s, got %+v", CodeInvalidLineCount, res.Errors)
	}
}

func TestValidateLineLength(t *testing.T) {
	res := Validate(issName+"\n"+issLine1[:60]+"\n"+issLine2, testOptions())
	if res.IsValid || !hasCode(res.Errors, CodeInvalidLineLength) {
		t.Errorf("expected %s, got %+v", CodeInvalidLineLength, res.Errors)
	}
}

func TestValidateLineMarkers(t *testing.T) {
	swapped := issName + "\n" + issLine2 + "\n" + issLine1
	res := Validate(swapped, testOptions())
	if res.IsValid || !hasCode(res.Errors, CodeInvalidLineNumber) {
		t.Errorf("expected %s, got %+v", CodeInvalidLineNumber, res.Errors)
	}
}

// The same wrong checksum must be fatal in strict mode and advisory in
// permissive mode.
func TestValidateModeAsymmetry(t *testing.T) {
	corrupted := issName + "\n" + issLine1[:68] + "5\n" + issLine2

	strict := testOptions()
	res := Validate(corrupted, strict)
	if res.IsValid {
		t.Fatal("strict mode accepted a checksum mismatch")
	}
	if !hasCode(res.Errors, CodeChecksumMismatch) {
		t.Errorf("strict: expected %s error, got %+v", CodeChecksumMismatch, res.Errors)
	}

	permissive := testOptions()
	permissive.Mode = ModePermissive
	res = Validate(corrupted, permissive)
	if !res.IsValid {
		t.Fatalf("permissive mode rejected a checksum mismatch: %+v", res.Errors)
	}
	if !hasCode(res.Warnings, CodeChecksumMismatch) {
		t.Errorf("permissive: expected %s warning, got %+v", CodeChecksumMismatch, res.Warnings)
	}
}

func TestValidateLooseChecksumOption(t *testing.T) {
	corrupted := issLine1[:68] + "5\n" + issLine2
	opts := testOptions()
	opts.StrictChecksums = false
	res := Validate(corrupted, opts)
	if !res.IsValid {
		t.Fatalf("StrictChecksums=false still rejected: %+v", res.Errors)
	}
	if !hasCode(res.Warnings, CodeChecksumMismatch) {
		t.Errorf("expected demoted %s warning, got %+v", CodeChecksumMismatch, res.Warnings)
	}
}

func TestValidateSatelliteNumberMismatch(t *testing.T) {
	line2 := fixChecksum(issLine2[:2] + "25545" + issLine2[7:])
	res := Validate(issLine1+"\n"+line2, testOptions())
	if res.IsValid || !hasCode(res.Errors, CodeSatelliteNumberMismatch) {
		t.Errorf("expected %s, got %+v", CodeSatelliteNumberMismatch, res.Errors)
	}
}

func TestValidateClassification(t *testing.T) {
	line1 := fixChecksum(issLine1[:7] + "X" + issLine1[8:])
	res := Validate(line1+"\n"+issLine2, testOptions())
	if res.IsValid || !hasCode(res.Errors, CodeInvalidClassification) {
		t.Errorf("strict: expected %s, got %+v", CodeInvalidClassification, res.Errors)
	}

	opts := testOptions()
	opts.Mode = ModePermissive
	res = Validate(line1+"\n"+issLine2, opts)
	if !res.IsValid || !hasCode(res.Warnings, CodeInvalidClassification) {
		t.Errorf("permissive: expected %s warning, got valid=%v %+v", CodeInvalidClassification, res.IsValid, res.Warnings)
	}
}

// line2Field replaces the window [start,end) of the golden line 2 and
// repairs the checksum.
func line2Field(start, end int, value string) string {
	return fixChecksum(issLine2[:start] + value + issLine2[end:])
}

func line1Field(start, end int, value string) string {
	return fixChecksum(issLine1[:start] + value + issLine1[end:])
}

func TestValidateRangeBounds(t *testing.T) {
	tests := []struct {
		name    string
		line1   string
		line2   string
		valid   bool
		code    Code
		inWarns bool
	}{
		{
			name:  "inclination above 180 rejected",
			line1: issLine1,
			line2: line2Field(8, 16, "181.0000"),
			valid: false,
			code:  CodeValueOutOfRange,
		},
		{
			name:  "epoch day 367 rejected",
			line1: line1Field(20, 32, "367.00000000"),
			line2: issLine2,
			valid: false,
			code:  CodeValueOutOfRange,
		},
		{
			name:  "epoch day at upper bound accepted",
			line1: line1Field(20, 32, "366.99999999"),
			line2: issLine2,
			valid: true,
		},
		{
			name:    "maximum eccentricity digits accepted",
			line1:   issLine1,
			line2:   line2Field(26, 33, "9999999"),
			valid:   true,
			code:    CodeHighEccentricity,
			inWarns: true,
		},
		{
			name:    "mean motion above 20 is warning-only",
			line1:   issLine1,
			line2:   line2Field(52, 63, "25.00000000"),
			valid:   true,
			code:    CodeValueOutOfRange,
			inWarns: true,
		},
		{
			name:  "right ascension above 360 rejected",
			line1: issLine1,
			line2: line2Field(17, 25, "361.0000"),
			valid: false,
			code:  CodeValueOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.line1+"\n"+tt.line2, testOptions())
			if res.IsValid != tt.valid {
				t.Fatalf("IsValid = %v, want %v (errors: %+v)", res.IsValid, tt.valid, res.Errors)
			}
			if tt.code == "" {
				return
			}
			if tt.inWarns {
				if !hasCode(res.Warnings, tt.code) {
					t.Errorf("expected %s warning, got %+v", tt.code, res.Warnings)
				}
			} else if !hasCode(res.Errors, tt.code) {
				t.Errorf("expected %s error, got %+v", tt.code, res.Errors)
			}
		})
	}
}

func TestValidateNonNumericField(t *testing.T) {
	res := Validate(issLine1+"\n"+line2Field(8, 16, "AB.CDEFG"), testOptions())
	if res.IsValid || !hasCode(res.Errors, CodeInvalidNumericFormat) {
		t.Errorf("expected %s, got %+v", CodeInvalidNumericFormat, res.Errors)
	}
}

// Both lines are always validated: a TLE broken on both lines reports both
// lines' errors, not just line 1's.
func TestValidateReportsBothLines(t *testing.T) {
	broken := issLine1[:68] + "5\n" + issLine2[:68] + "5"
	res := Validate(broken, testOptions())
	if res.IsValid {
		t.Fatal("expected rejection")
	}
	count := 0
	for _, e := range res.Errors {
		if e.Code == CodeChecksumMismatch {
			count++
		}
	}
	if count != 2 {
		t.Errorf("expected checksum errors from both lines, got %d: %+v", count, res.Errors)
	}
}

func TestValidateRangesDisabled(t *testing.T) {
	opts := testOptions()
	opts.ValidateRanges = false
	res := Validate(issLine1+"\n"+line2Field(8, 16, "181.0000"), opts)
	if !res.IsValid {
		t.Errorf("range checks should be skipped, got %+v", res.Errors)
	}
}
