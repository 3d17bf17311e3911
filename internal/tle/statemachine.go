package tle

import (
	"fmt"
	"strconv"
	"strings"
)

// State is the explicit position of the recovery parser. Transitions are
// strictly forward; DetectingFormat may move straight to Error when fewer
// than two usable lines exist.
type State string

const (
	StateInitial         State = "initial"
	StateDetectingFormat State = "detecting_format"
	StateParsingName     State = "parsing_name"
	StateParsingLine1    State = "parsing_line1"
	StateParsingLine2    State = "parsing_line2"
	StateValidating      State = "validating"
	StateCompleted       State = "completed"
	StateError           State = "error"
)

// RecoveryAction tags each deviation from straight-line parsing. Actions
// are diagnostic data, not replayed control flow.
type RecoveryAction string

const (
	ActionContinue   RecoveryAction = "continue"
	ActionSkipField  RecoveryAction = "skip_field"
	ActionUseDefault RecoveryAction = "use_default"
	ActionAttemptFix RecoveryAction = "attempt_fix"
	ActionAbort      RecoveryAction = "abort"
)

// maxTransitions caps the state loop; exceeding it means an unreachable
// state cycle and yields a critical StateMachineLoop error.
const maxTransitions = 100

// maxNameLength is the recommended satellite name length.
const maxNameLength = 24

// RecoveryStep is one recorded recovery decision.
type RecoveryStep struct {
	State  State          `json:"state"`
	Action RecoveryAction `json:"action"`
	Reason string         `json:"reason"`
	Field  string         `json:"field,omitempty"`
}

// ParserContext summarizes one recovery run. It is owned by a single
// invocation and discarded at completion.
type ParserContext struct {
	LineCount        int  `json:"line_count"`
	HasName          bool `json:"has_name"`
	NameIndex        int  `json:"name_index"`
	Line1Index       int  `json:"line1_index"`
	Line2Index       int  `json:"line2_index"`
	RecoveryAttempts int  `json:"recovery_attempts"`
}

// RecoveryResult is the always-returned outcome of a recovery parse.
// Success follows the terminal state; errors and warnings may be non-empty
// even on success.
type RecoveryResult struct {
	Success         bool           `json:"success"`
	State           State          `json:"state"`
	Data            *Record        `json:"data,omitempty"`
	Errors          []Issue        `json:"errors"`
	Warnings        []Issue        `json:"warnings"`
	RecoveryActions []RecoveryStep `json:"recovery_actions"`
	Context         ParserContext  `json:"context"`
}

// RecoveryParser extracts best-effort structured output from degraded TLE
// input under an explicit state model. It is not safe for concurrent use;
// concurrent callers must each construct their own parser.
type RecoveryParser struct {
	opts Options

	state       State
	transitions int
	lines       []string
	comments    []string
	name        string
	line1       string
	line2       string
	fields1     Line1Fields
	fields2     Line2Fields
	errors      []Issue
	warnings    []Issue
	actions     []RecoveryStep
	ctx         ParserContext
}

// NewRecoveryParser creates a parser with the given options.
func NewRecoveryParser(opts Options) *RecoveryParser {
	return &RecoveryParser{opts: opts, state: StateInitial}
}

// ParseWithRecovery runs a fresh recovery parse of text. It never fails:
// any input, including non-TLE garbage, yields a result with a terminal
// state and non-nil issue slices.
func ParseWithRecovery(text string, opts Options) RecoveryResult {
	return NewRecoveryParser(opts).Parse(text)
}

// Reset clears all accumulated state so the parser can be reused. There is
// no cross-call leakage: everything except the options is discarded.
func (p *RecoveryParser) Reset() {
	*p = RecoveryParser{opts: p.opts, state: StateInitial}
}

// State returns the current (or terminal) state.
func (p *RecoveryParser) State() State {
	return p.state
}

// Parse runs the state machine over text and returns the assembled result.
func (p *RecoveryParser) Parse(text string) RecoveryResult {
	p.Reset()
	return p.run(text)
}

func (p *RecoveryParser) run(text string) RecoveryResult {
	for p.state != StateCompleted && p.state != StateError {
		p.transitions++
		if p.transitions > maxTransitions {
			p.addIssue(Issue{
				Code:     CodeStateMachineLoop,
				Message:  fmt.Sprintf("state machine exceeded %d transitions", maxTransitions),
				Severity: SeverityCritical,
			})
			p.act(ActionAbort, "transition cap exceeded", "")
			p.state = StateError
			break
		}
		p.state = p.step(text)
	}

	return p.result()
}

func (p *RecoveryParser) step(text string) State {
	switch p.state {
	case StateInitial:
		return p.stepInitial(text)
	case StateDetectingFormat:
		return p.stepDetectFormat()
	case StateParsingName:
		return p.stepParseName()
	case StateParsingLine1:
		p.parseDataLine(p.line1, "1", 1)
		return StateParsingLine2
	case StateParsingLine2:
		p.parseDataLine(p.line2, "2", 2)
		return StateValidating
	case StateValidating:
		return p.stepValidate()
	}
	// Unknown state: keep looping until the transition cap trips.
	return p.state
}

func (p *RecoveryParser) stepInitial(text string) State {
	p.lines, p.comments = NormalizeLinesWithComments(text)
	if len(p.lines) == 0 {
		p.addIssue(Issue{
			Code:     CodeEmptyInput,
			Message:  "input contains no data lines",
			Severity: SeverityError,
		})
		return StateError
	}
	return StateDetectingFormat
}

func (p *RecoveryParser) stepDetectFormat() State {
	p.ctx.LineCount = len(p.lines)

	switch {
	case len(p.lines) < 2:
		p.addIssue(Issue{
			Code:     CodeInvalidLineCount,
			Message:  fmt.Sprintf("need at least 2 lines, got %d", len(p.lines)),
			Severity: SeverityError,
			Actual:   strconv.Itoa(len(p.lines)),
		})
		return StateError

	case len(p.lines) == 2:
		p.line1, p.line2 = p.lines[0], p.lines[1]
		p.ctx.Line1Index, p.ctx.Line2Index = 0, 1
		return StateParsingLine1

	case len(p.lines) == 3 && !isDataMarker(p.lines[0]):
		p.name = p.lines[0]
		p.line1, p.line2 = p.lines[1], p.lines[2]
		p.ctx.HasName = true
		p.ctx.NameIndex = 0
		p.ctx.Line1Index, p.ctx.Line2Index = 1, 2
		return StateParsingName
	}

	// More than 3 lines (or 3 lines whose first is itself a data line):
	// attempt to reconstruct a canonical record.
	return p.repairLineCount()
}

// repairLineCount locates exactly one line starting with "1" and one
// starting with "2"; if line 1 precedes line 2 the canonical record is
// reassembled, treating any immediately preceding line as the name.
func (p *RecoveryParser) repairLineCount() State {
	idx1, idx2 := -1, -1
	ambiguous := false
	for i, line := range p.lines {
		switch line[0] {
		case '1':
			if idx1 >= 0 {
				ambiguous = true
			}
			idx1 = i
		case '2':
			if idx2 >= 0 {
				ambiguous = true
			}
			idx2 = i
		}
	}

	if ambiguous || idx1 < 0 || idx2 < 0 || idx1 >= idx2 {
		p.addIssue(Issue{
			Code:     CodeInvalidLineCount,
			Message:  fmt.Sprintf("expected 2 or 3 lines, got %d and no unambiguous line pair", len(p.lines)),
			Severity: SeverityCritical,
			Expected: "2 or 3",
			Actual:   strconv.Itoa(len(p.lines)),
		})
		p.act(ActionAbort, "no recoverable line pair", "")
		return StateError
	}

	p.ctx.RecoveryAttempts++
	p.line1, p.line2 = p.lines[idx1], p.lines[idx2]
	p.ctx.Line1Index, p.ctx.Line2Index = idx1, idx2
	p.act(ActionAttemptFix, fmt.Sprintf("reassembled 2-line record from %d lines", len(p.lines)), "")

	next := StateParsingLine1
	if idx1 > 0 && !isDataMarker(p.lines[idx1-1]) {
		p.name = p.lines[idx1-1]
		p.ctx.HasName = true
		p.ctx.NameIndex = idx1 - 1
		next = StateParsingName
	}
	p.act(ActionContinue, "resuming with reconstructed record", "")
	return next
}

func (p *RecoveryParser) stepParseName() State {
	p.name = strings.TrimSpace(p.name)
	if len(p.name) > maxNameLength {
		p.addIssue(Issue{
			Code:     CodeLongName,
			Message:  fmt.Sprintf("satellite name is %d characters, %d recommended", len(p.name), maxNameLength),
			Severity: SeverityInfo,
			Field:    "name",
			Actual:   p.name,
		})
	}
	return StateParsingLine1
}

// parseDataLine extracts every field of one data line, recording partial
// and missing fields, marker mismatches and checksum failures, and always
// proceeds to the next line.
func (p *RecoveryParser) parseDataLine(line, wantMarker string, lineNo int) {
	if len(line) != lineLength {
		p.addIssue(Issue{
			Code:     CodeInvalidLineLength,
			Message:  fmt.Sprintf("line %d must be exactly %d characters, got %d", lineNo, lineLength, len(line)),
			Severity: SeverityError,
			Line:     lineNo,
			Expected: strconv.Itoa(lineLength),
			Actual:   strconv.Itoa(len(line)),
		})
		p.act(ActionContinue, "parsing truncated line", "")
	}

	for _, spec := range fieldTable {
		if spec.Line != lineNo {
			continue
		}
		v, status := extractAt(line, spec.Start, spec.End)
		switch status {
		case fieldPartial:
			p.addIssue(Issue{
				Code:     CodePartialField,
				Message:  fmt.Sprintf("field %s truncated at column %d", spec.Name, len(line)),
				Severity: SeverityWarning,
				Line:     lineNo,
				Field:    spec.Name,
				Actual:   v,
			})
			p.act(ActionUseDefault, "keeping truncated value", spec.Name)
		case fieldMissing:
			p.addIssue(Issue{
				Code:     CodeMissingField,
				Message:  fmt.Sprintf("field %s is beyond the end of the line", spec.Name),
				Severity: SeverityWarning,
				Line:     lineNo,
				Field:    spec.Name,
			})
			p.act(ActionUseDefault, "field left empty", spec.Name)
		}
		if lineNo == 1 {
			setLine1Field(&p.fields1, spec.Name, v)
		} else {
			setLine2Field(&p.fields2, spec.Name, v)
		}
	}

	marker := p.markerFor(lineNo)
	if marker != wantMarker {
		p.addIssue(Issue{
			Code:     CodeInvalidLineNumber,
			Message:  fmt.Sprintf("line %d marker must be %q, got %q", lineNo, wantMarker, marker),
			Severity: SeverityError,
			Line:     lineNo,
			Field:    "line_number",
			Expected: wantMarker,
			Actual:   marker,
		})
		p.act(ActionContinue, "marker mismatch", "line_number")
	}

	if len(line) == lineLength {
		if cr := ValidateChecksum(line); cr.Issue != nil {
			issue := *cr.Issue
			issue.Line = lineNo
			issue.Field = "checksum"
			if !p.opts.StrictChecksums {
				issue.Severity = SeverityWarning
			}
			p.addIssue(issue)
			p.act(ActionContinue, "checksum failure, proceeding to next line", "checksum")
		}
	}
}

func (p *RecoveryParser) stepValidate() State {
	sev := violationSeverity(p.opts.Mode)

	if p.fields1.SatelliteNumber != p.fields2.SatelliteNumber {
		p.addIssue(Issue{
			Code:     CodeSatelliteNumberMismatch,
			Message:  fmt.Sprintf("satellite number %q on line 1 does not match %q on line 2", p.fields1.SatelliteNumber, p.fields2.SatelliteNumber),
			Severity: sev,
			Field:    "satellite_number",
			Expected: p.fields1.SatelliteNumber,
			Actual:   p.fields2.SatelliteNumber,
		})
		p.act(ActionContinue, "satellite numbers disagree", "satellite_number")
	}

	if c := p.fields1.Classification; c != "U" && c != "C" && c != "S" {
		p.addIssue(Issue{
			Code:     CodeInvalidClassification,
			Message:  fmt.Sprintf("classification must be U, C or S, got %q", c),
			Severity: sev,
			Line:     1,
			Field:    "classification",
			Expected: "U, C or S",
			Actual:   c,
		})
		p.act(ActionContinue, "unknown classification", "classification")
	}

	if p.opts.ValidateRanges {
		log := &issueLog{}
		validateRanges(p.fields1, p.fields2, p.opts, log)
		for _, i := range log.errors {
			p.addIssue(i)
			p.act(ActionContinue, "out-of-range value kept", i.Field)
		}
		for _, i := range log.warnings {
			p.addIssue(i)
		}
	}

	if p.opts.IncludeWarnings {
		for _, w := range DetectAnomalies(p.fields1, p.fields2, p.opts.refTime()) {
			p.addIssue(w)
		}
	}

	return StateCompleted
}

func (p *RecoveryParser) result() RecoveryResult {
	res := RecoveryResult{
		Success:         p.state == StateCompleted,
		State:           p.state,
		Errors:          p.errors,
		Warnings:        p.warnings,
		RecoveryActions: p.actions,
		Context:         p.ctx,
	}
	if res.Errors == nil {
		res.Errors = []Issue{}
	}
	if res.Warnings == nil {
		res.Warnings = []Issue{}
	}
	if res.RecoveryActions == nil {
		res.RecoveryActions = []RecoveryStep{}
	}

	assemble := p.state == StateCompleted ||
		(p.opts.IncludePartialResults && (p.line1 != "" || p.line2 != ""))
	if assemble {
		rec := &Record{
			Name:     strings.TrimSpace(p.name),
			Line1:    p.fields1,
			Line2:    p.fields2,
			Elements: parseElements(p.fields1, p.fields2),
		}
		if p.opts.IncludeComments {
			rec.Comments = p.comments
		}
		res.Data = rec
	}
	return res
}

func (p *RecoveryParser) addIssue(i Issue) {
	if i.IsError() {
		p.errors = append(p.errors, i)
	} else {
		p.warnings = append(p.warnings, i)
	}
}

func (p *RecoveryParser) act(action RecoveryAction, reason, field string) {
	p.actions = append(p.actions, RecoveryStep{
		State:  p.state,
		Action: action,
		Reason: reason,
		Field:  field,
	})
}

func (p *RecoveryParser) markerFor(lineNo int) string {
	if lineNo == 1 {
		return p.fields1.LineNumber
	}
	return p.fields2.LineNumber
}

// isDataMarker reports whether a line looks like a TLE data line rather
// than a name line.
func isDataMarker(line string) bool {
	return line != "" && (line[0] == '1' || line[0] == '2')
}
