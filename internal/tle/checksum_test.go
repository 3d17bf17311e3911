package tle

import (
	"strconv"
	"strings"
	"testing"
)

// Golden ISS (ZARYA) element set used across the package tests. Both line
// checksums are 7.
const (
	issName  = "ISS (ZARYA)"
	issLine1 = "1 25544U 98067A   08264.51782528 -.00002182  00000-0 -11606-4 0  2927"
	issLine2 = "2 25544  51.6416 247.4627 0006703 130.5360 325.0288 15.72125391563537"
)

// fixChecksum replaces the checksum digit of a 69-character line with the
// computed one.
func fixChecksum(line string) string {
	return line[:checksumPosition] + strconv.Itoa(CalculateChecksum(line))
}

func TestCalculateChecksumGolden(t *testing.T) {
	if got := CalculateChecksum(issLine1); got != 7 {
		t.Errorf("line 1 checksum = %d, want 7", got)
	}
	if got := CalculateChecksum(issLine2); got != 7 {
		t.Errorf("line 2 checksum = %d, want 7", got)
	}
}

func TestCalculateChecksumMinusCountsAsOne(t *testing.T) {
	// 68 '-' characters sum to 68, mod 10 = 8.
	line := strings.Repeat("-", 68)
	if got := CalculateChecksum(line); got != 8 {
		t.Errorf("checksum of 68 dashes = %d, want 8", got)
	}
	// Letters and spaces contribute nothing.
	if got := CalculateChecksum(strings.Repeat("A ", 34)); got != 0 {
		t.Errorf("checksum of letters/spaces = %d, want 0", got)
	}
}

func TestCalculateChecksumExcludesChecksumColumn(t *testing.T) {
	// A '9' in column 68 must not contribute to the sum.
	base := strings.Repeat("0", 68)
	if got := CalculateChecksum(base + "9"); got != 0 {
		t.Errorf("checksum column leaked into sum: got %d, want 0", got)
	}
}

func TestValidateChecksumRoundTrip(t *testing.T) {
	for _, line := range []string{issLine1, issLine2} {
		rebuilt := fixChecksum(line)
		res := ValidateChecksum(rebuilt)
		if !res.IsValid {
			t.Errorf("round-trip line failed validation: %+v", res.Issue)
		}
		if res.Expected != res.Actual {
			t.Errorf("expected %d != actual %d on round-trip", res.Expected, res.Actual)
		}
	}
}

func TestValidateChecksumWrongLength(t *testing.T) {
	res := ValidateChecksum(issLine1[:50])
	if res.IsValid {
		t.Fatal("expected short line to fail")
	}
	if res.Issue == nil || res.Issue.Code != CodeInvalidLineLength {
		t.Errorf("got issue %+v, want %s", res.Issue, CodeInvalidLineLength)
	}
}

func TestValidateChecksumNonDigitCharacter(t *testing.T) {
	res := ValidateChecksum(issLine1[:68] + "X")
	if res.IsValid {
		t.Fatal("expected non-digit checksum character to fail")
	}
	if res.Issue == nil || res.Issue.Code != CodeInvalidChecksumCharacter {
		t.Errorf("got issue %+v, want %s", res.Issue, CodeInvalidChecksumCharacter)
	}
}

func TestValidateChecksumMismatch(t *testing.T) {
	res := ValidateChecksum(issLine1[:68] + "5")
	if res.IsValid {
		t.Fatal("expected corrupted checksum to fail")
	}
	if res.Issue == nil || res.Issue.Code != CodeChecksumMismatch {
		t.Fatalf("got issue %+v, want %s", res.Issue, CodeChecksumMismatch)
	}
	if res.Expected != 7 || res.Actual != 5 {
		t.Errorf("expected/actual = %d/%d, want 7/5", res.Expected, res.Actual)
	}
}
