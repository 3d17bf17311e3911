package tle

import "strings"

// fieldSpec maps one named field to its fixed character window [Start,End)
// on the given data line.
type fieldSpec struct {
	Line  int
	Name  string
	Start int
	End   int
}

// Canonical TLE field offsets, 0-indexed half-open ranges. Never mutated.
var fieldTable = []fieldSpec{
	{1, "line_number", 0, 1},
	{1, "satellite_number", 2, 7},
	{1, "classification", 7, 8},
	{1, "intl_designator_year", 9, 11},
	{1, "intl_designator_launch", 11, 14},
	{1, "intl_designator_piece", 14, 17},
	{1, "epoch_year", 18, 20},
	{1, "epoch_day", 20, 32},
	{1, "first_derivative", 33, 43},
	{1, "second_derivative", 44, 52},
	{1, "bstar", 53, 61},
	{1, "ephemeris_type", 62, 63},
	{1, "element_set_number", 64, 68},
	{1, "checksum", 68, 69},

	{2, "line_number", 0, 1},
	{2, "satellite_number", 2, 7},
	{2, "inclination", 8, 16},
	{2, "right_ascension", 17, 25},
	{2, "eccentricity", 26, 33},
	{2, "argument_of_perigee", 34, 42},
	{2, "mean_anomaly", 43, 51},
	{2, "mean_motion", 52, 63},
	{2, "revolution_number", 63, 68},
	{2, "checksum", 68, 69},
}

// fieldStatus classifies one extraction against the line's actual length.
type fieldStatus int

const (
	fieldComplete fieldStatus = iota
	fieldPartial              // line covers Start but not End
	fieldMissing              // line does not reach Start
)

// extractAt returns the trimmed substring for the window and its status.
// It never fails: short lines yield partial or empty values.
func extractAt(line string, start, end int) (string, fieldStatus) {
	if len(line) <= start {
		return "", fieldMissing
	}
	status := fieldComplete
	if len(line) < end {
		end = len(line)
		status = fieldPartial
	}
	return strings.TrimSpace(line[start:end]), status
}

// ExtractLine1 maps the fixed offsets of line 1 to named fields. Values are
// trimmed but not type-converted; extraction alone never fails.
func ExtractLine1(line string) Line1Fields {
	var f Line1Fields
	for _, spec := range fieldTable {
		if spec.Line != 1 {
			continue
		}
		v, _ := extractAt(line, spec.Start, spec.End)
		setLine1Field(&f, spec.Name, v)
	}
	return f
}

// ExtractLine2 maps the fixed offsets of line 2 to named fields.
func ExtractLine2(line string) Line2Fields {
	var f Line2Fields
	for _, spec := range fieldTable {
		if spec.Line != 2 {
			continue
		}
		v, _ := extractAt(line, spec.Start, spec.End)
		setLine2Field(&f, spec.Name, v)
	}
	return f
}

func setLine1Field(f *Line1Fields, name, v string) {
	switch name {
	case "line_number":
		f.LineNumber = v
	case "satellite_number":
		f.SatelliteNumber = v
	case "classification":
		f.Classification = v
	case "intl_designator_year":
		f.IntlDesignatorYear = v
	case "intl_designator_launch":
		f.IntlDesignatorLaunch = v
	case "intl_designator_piece":
		f.IntlDesignatorPiece = v
	case "epoch_year":
		f.EpochYear = v
	case "epoch_day":
		f.EpochDay = v
	case "first_derivative":
		f.FirstDerivative = v
	case "second_derivative":
		f.SecondDerivative = v
	case "bstar":
		f.Bstar = v
	case "ephemeris_type":
		f.EphemerisType = v
	case "element_set_number":
		f.ElementSetNumber = v
	case "checksum":
		f.Checksum = v
	}
}

func setLine2Field(f *Line2Fields, name, v string) {
	switch name {
	case "line_number":
		f.LineNumber = v
	case "satellite_number":
		f.SatelliteNumber = v
	case "inclination":
		f.Inclination = v
	case "right_ascension":
		f.RightAscension = v
	case "eccentricity":
		f.Eccentricity = v
	case "argument_of_perigee":
		f.ArgumentOfPerigee = v
	case "mean_anomaly":
		f.MeanAnomaly = v
	case "mean_motion":
		f.MeanMotion = v
	case "revolution_number":
		f.RevolutionNumber = v
	case "checksum":
		f.Checksum = v
	}
}
