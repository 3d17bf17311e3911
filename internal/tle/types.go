package tle

import "time"

// Mode selects the validation policy. In strict mode checksum,
// classification, satellite-number and range violations are errors that
// abort a fail-fast parse; in permissive mode the same violations are
// demoted to warnings and parsing continues with the best-effort value.
type Mode string

const (
	ModeStrict     Mode = "strict"
	ModePermissive Mode = "permissive"
)

// Options controls parsing and validation behavior. The zero value disables
// everything; callers normally start from DefaultOptions and override.
type Options struct {
	// Validate runs structural and field validation before assembly.
	Validate bool
	// StrictChecksums keeps checksum mismatches at mode severity. When
	// false a mismatch is always demoted to a warning.
	StrictChecksums bool
	// ValidateRanges enables numeric range checks on orbital fields.
	ValidateRanges bool
	// IncludeWarnings attaches advisory warnings to results.
	IncludeWarnings bool
	// IncludeComments preserves leading-# comment lines on the record.
	IncludeComments bool
	// IncludePartialResults attaches best-effort data to failed recovery
	// parses. Ignored by the fail-fast entry point.
	IncludePartialResults bool
	Mode                  Mode
	// Now is the reference time for epoch staleness checks. Zero means
	// time.Now().
	Now time.Time
}

// DefaultOptions returns the standard strict configuration.
func DefaultOptions() Options {
	return Options{
		Validate:              true,
		StrictChecksums:       true,
		ValidateRanges:        true,
		IncludeWarnings:       true,
		IncludePartialResults: true,
		Mode:                  ModeStrict,
	}
}

func (o Options) refTime() time.Time {
	if o.Now.IsZero() {
		return time.Now().UTC()
	}
	return o.Now
}

// Line1Fields holds the verbatim trimmed substrings extracted from line 1.
type Line1Fields struct {
	LineNumber           string `json:"line_number"`
	SatelliteNumber      string `json:"satellite_number"`
	Classification       string `json:"classification"`
	IntlDesignatorYear   string `json:"intl_designator_year"`
	IntlDesignatorLaunch string `json:"intl_designator_launch"`
	IntlDesignatorPiece  string `json:"intl_designator_piece"`
	EpochYear            string `json:"epoch_year"`
	EpochDay             string `json:"epoch_day"`
	FirstDerivative      string `json:"first_derivative"`
	SecondDerivative     string `json:"second_derivative"`
	Bstar                string `json:"bstar"`
	EphemerisType        string `json:"ephemeris_type"`
	ElementSetNumber     string `json:"element_set_number"`
	Checksum             string `json:"checksum"`
}

// Line2Fields holds the verbatim trimmed substrings extracted from line 2.
// Eccentricity is stored without the implied leading "0.".
type Line2Fields struct {
	LineNumber        string `json:"line_number"`
	SatelliteNumber   string `json:"satellite_number"`
	Inclination       string `json:"inclination"`
	RightAscension    string `json:"right_ascension"`
	Eccentricity      string `json:"eccentricity"`
	ArgumentOfPerigee string `json:"argument_of_perigee"`
	MeanAnomaly       string `json:"mean_anomaly"`
	MeanMotion        string `json:"mean_motion"`
	RevolutionNumber  string `json:"revolution_number"`
	Checksum          string `json:"checksum"`
}

// OrbitalElements is the parsed numeric form of a record, populated on a
// best-effort basis: fields whose substrings fail to parse are left zero.
type OrbitalElements struct {
	SatelliteNumber   int       `json:"satellite_number"`
	EpochYear         int       `json:"epoch_year"`
	EpochDay          float64   `json:"epoch_day"`
	Epoch             time.Time `json:"epoch"`
	FirstDerivative   float64   `json:"first_derivative"`
	SecondDerivative  float64   `json:"second_derivative"`
	Bstar             float64   `json:"bstar"`
	ElementSetNumber  int       `json:"element_set_number"`
	Inclination       float64   `json:"inclination"`
	RightAscension    float64   `json:"right_ascension"`
	Eccentricity      float64   `json:"eccentricity"`
	ArgumentOfPerigee float64   `json:"argument_of_perigee"`
	MeanAnomaly       float64   `json:"mean_anomaly"`
	MeanMotion        float64   `json:"mean_motion"`
	RevolutionNumber  int       `json:"revolution_number"`
}

// Record is the parsed output of one TLE. It is constructed once per parse
// call and never mutated afterward.
type Record struct {
	Name     string           `json:"name,omitempty"`
	Line1    Line1Fields      `json:"line1"`
	Line2    Line2Fields      `json:"line2"`
	Elements *OrbitalElements `json:"elements,omitempty"`
	Comments []string         `json:"comments,omitempty"`
	Warnings []Issue          `json:"warnings,omitempty"`
}
