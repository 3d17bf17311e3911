package tle

import (
	"strings"
	"testing"
)

func hasAction(steps []RecoveryStep, action RecoveryAction) bool {
	for _, s := range steps {
		if s.Action == action {
			return true
		}
	}
	return false
}

func TestRecoveryGolden(t *testing.T) {
	res := ParseWithRecovery(golden(), testOptions())
	if !res.Success || res.State != StateCompleted {
		t.Fatalf("success=%v state=%s errors=%+v", res.Success, res.State, res.Errors)
	}
	if len(res.Errors) != 0 {
		t.Errorf("unexpected errors: %+v", res.Errors)
	}
	if res.Data == nil {
		t.Fatal("completed parse returned no data")
	}
	if res.Data.Name != issName {
		t.Errorf("name = %q, want %q", res.Data.Name, issName)
	}
	if res.Data.Line1.SatelliteNumber != "25544" {
		t.Errorf("satellite_number = %q, want 25544", res.Data.Line1.SatelliteNumber)
	}
	if !res.Context.HasName || res.Context.LineCount != 3 {
		t.Errorf("context = %+v", res.Context)
	}
}

// Recovery never fails outright: arbitrary input yields a terminal state
// and non-nil slices.
func TestRecoveryNeverPanicsOnGarbage(t *testing.T) {
	inputs := []string{
		"",
		"hello",
		"hello\nworld",
		strings.Repeat("x", 500),
		"1\n2\n1\n2",
		"\x00\x01\x02\n\xff\xfe",
	}
	for _, raw := range inputs {
		res := ParseWithRecovery(raw, testOptions())
		if res.State != StateCompleted && res.State != StateError {
			t.Errorf("input %q: non-terminal state %s", raw, res.State)
		}
		if res.Errors == nil || res.Warnings == nil || res.RecoveryActions == nil {
			t.Errorf("input %q: nil slices in result", raw)
		}
	}
}

func TestRecoveryEmptyInput(t *testing.T) {
	res := ParseWithRecovery("", testOptions())
	if res.Success || res.State != StateError {
		t.Fatalf("success=%v state=%s", res.Success, res.State)
	}
	if !hasCode(res.Errors, CodeEmptyInput) {
		t.Errorf("expected %s, got %+v", CodeEmptyInput, res.Errors)
	}
	if res.Data != nil {
		t.Error("no data expected for empty input")
	}
}

// A record buried in extra lines is reassembled when exactly one line-1 and
// one line-2 candidate exist in order. The same input fails plain validation.
func TestRecoveryLineCountRepair(t *testing.T) {
	raw := "EXPORTED 2008-09-20\n" + issName + "\n" + issLine1 + "\n" + issLine2
	res := ParseWithRecovery(raw, testOptions())
	if !res.Success {
		t.Fatalf("repair failed: state=%s errors=%+v", res.State, res.Errors)
	}
	if res.Context.RecoveryAttempts != 1 {
		t.Errorf("recovery_attempts = %d, want 1", res.Context.RecoveryAttempts)
	}
	if !hasAction(res.RecoveryActions, ActionAttemptFix) {
		t.Errorf("expected %s action, got %+v", ActionAttemptFix, res.RecoveryActions)
	}
	if !hasAction(res.RecoveryActions, ActionContinue) {
		t.Errorf("expected %s action, got %+v", ActionContinue, res.RecoveryActions)
	}
	if res.Data == nil || res.Data.Name != issName {
		t.Errorf("name not recovered from preceding line: %+v", res.Data)
	}
	if res.Context.Line1Index != 2 || res.Context.Line2Index != 3 {
		t.Errorf("line indices = %d/%d, want 2/3", res.Context.Line1Index, res.Context.Line2Index)
	}

	if v := Validate(raw, testOptions()); v.IsValid || !hasCode(v.Errors, CodeInvalidLineCount) {
		t.Errorf("strict validation should reject the 4-line input, got %+v", v.Errors)
	}
}

func TestRecoveryAmbiguousLinePair(t *testing.T) {
	raw := issLine1 + "\n" + issLine1 + "\n" + issLine2 + "\nX"
	res := ParseWithRecovery(raw, testOptions())
	if res.Success || res.State != StateError {
		t.Fatalf("ambiguous pair should abort: success=%v state=%s", res.Success, res.State)
	}
	if !hasCode(res.Errors, CodeInvalidLineCount) {
		t.Errorf("expected %s, got %+v", CodeInvalidLineCount, res.Errors)
	}
	if !hasAction(res.RecoveryActions, ActionAbort) {
		t.Errorf("expected %s action, got %+v", ActionAbort, res.RecoveryActions)
	}
}

// A truncated line still completes: the length error is recorded, truncated
// and missing fields carry use_default actions, and partial data survives.
func TestRecoveryTruncatedLine(t *testing.T) {
	res := ParseWithRecovery(issLine1[:40]+"\n"+issLine2, testOptions())
	if !res.Success {
		t.Fatalf("truncated line should still complete: state=%s errors=%+v", res.State, res.Errors)
	}
	if !hasCode(res.Errors, CodeInvalidLineLength) {
		t.Errorf("expected %s, got %+v", CodeInvalidLineLength, res.Errors)
	}
	if !hasCode(res.Warnings, CodePartialField) || !hasCode(res.Warnings, CodeMissingField) {
		t.Errorf("expected partial and missing field warnings, got %+v", res.Warnings)
	}
	if !hasAction(res.RecoveryActions, ActionUseDefault) {
		t.Errorf("expected %s action, got %+v", ActionUseDefault, res.RecoveryActions)
	}
	if res.Data == nil {
		t.Fatal("partial data expected")
	}
	if res.Data.Line1.SatelliteNumber != "25544" || res.Data.Line1.Bstar != "" {
		t.Errorf("partial line 1 = %+v", res.Data.Line1)
	}
}

func TestRecoveryChecksumFailures(t *testing.T) {
	raw := issLine1[:68] + "5\n" + issLine2[:68] + "5"
	res := ParseWithRecovery(raw, testOptions())
	if !res.Success {
		t.Fatalf("checksum failures should not abort: state=%s", res.State)
	}
	count := 0
	for _, e := range res.Errors {
		if e.Code == CodeChecksumMismatch {
			count++
		}
	}
	if count != 2 {
		t.Errorf("checksum errors = %d, want 2: %+v", count, res.Errors)
	}

	loose := testOptions()
	loose.StrictChecksums = false
	res = ParseWithRecovery(raw, loose)
	if hasCode(res.Errors, CodeChecksumMismatch) || !hasCode(res.Warnings, CodeChecksumMismatch) {
		t.Errorf("loose checksums should demote to warnings: errors=%+v warnings=%+v", res.Errors, res.Warnings)
	}
}

func TestRecoveryLongName(t *testing.T) {
	name := strings.Repeat("N", maxNameLength+1)
	res := ParseWithRecovery(name+"\n"+issLine1+"\n"+issLine2, testOptions())
	if !res.Success {
		t.Fatalf("long name should not abort: %+v", res.Errors)
	}
	if !hasCode(res.Warnings, CodeLongName) {
		t.Errorf("expected %s, got %+v", CodeLongName, res.Warnings)
	}
	if res.Data.Name != name {
		t.Errorf("name truncated: %q", res.Data.Name)
	}
}

func TestRecoveryParserReuse(t *testing.T) {
	p := NewRecoveryParser(testOptions())

	first := p.Parse(golden())
	if !first.Success || first.Data.Name != issName {
		t.Fatalf("first parse: %+v", first)
	}

	second := p.Parse("garbage")
	if second.Success {
		t.Fatal("single garbage line should fail")
	}
	if second.Data != nil && second.Data.Name == issName {
		t.Error("state leaked across Parse calls")
	}
	if second.Context.HasName {
		t.Error("context leaked across Parse calls")
	}

	third := p.Parse(golden())
	if !third.Success || third.Data.Name != issName {
		t.Fatalf("third parse after failure: %+v", third)
	}
}

// An unknown state cannot make progress; the transition cap converts the
// loop into a critical error instead of hanging.
func TestRecoveryTransitionCap(t *testing.T) {
	p := NewRecoveryParser(testOptions())
	p.Reset()
	p.state = State("wedged")
	res := p.run("")
	if res.Success || res.State != StateError {
		t.Fatalf("success=%v state=%s", res.Success, res.State)
	}
	if !hasCode(res.Errors, CodeStateMachineLoop) {
		t.Errorf("expected %s, got %+v", CodeStateMachineLoop, res.Errors)
	}
	if !hasAction(res.RecoveryActions, ActionAbort) {
		t.Errorf("expected %s action, got %+v", ActionAbort, res.RecoveryActions)
	}
}

func TestRecoveryPartialResultsDisabled(t *testing.T) {
	opts := testOptions()
	opts.IncludePartialResults = false
	res := ParseWithRecovery(issLine1+"\n"+issLine1, opts)
	if res.Success {
		// Two line-1 markers parse as line1+line2 with a marker mismatch,
		// which still completes; only Error states withhold data here.
		if res.Data == nil {
			t.Error("completed parse should still return data")
		}
		return
	}
	if res.Data != nil {
		t.Errorf("partial results disabled but data returned: %+v", res.Data)
	}
}
