package tle

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// Entry is one satellite from a multi-record feed: the raw lines plus the
// parsed record.
type Entry struct {
	NORADID int       `json:"norad_id"`
	Name    string    `json:"name"`
	Epoch   time.Time `json:"epoch"`
	Line1   string    `json:"line1"`
	Line2   string    `json:"line2"`
	Record  *Record   `json:"record,omitempty"`
}

// EpochRange is the minimum and maximum epoch times in a dataset.
type EpochRange struct {
	Min time.Time `json:"min"`
	Max time.Time `json:"max"`
}

// Dataset is a complete catalog snapshot from one source.
type Dataset struct {
	Source     string     `json:"source"`
	FetchedAt  time.Time  `json:"fetched_at"`
	EpochRange EpochRange `json:"epoch_range"`
	Satellites []Entry    `json:"satellites"`
}

// ParseCatalog reads a CelesTrak-style feed (name + two data lines per
// satellite, bare 2-line pairs also accepted) and returns the entries that
// parse. Each record goes through the recovery parser in permissive mode;
// entries the recovery parser cannot salvage are skipped with a warning log.
func ParseCatalog(r io.Reader, logger *slog.Logger) ([]Entry, error) {
	scanner := bufio.NewScanner(r)
	var raw strings.Builder
	for scanner.Scan() {
		raw.WriteString(scanner.Text())
		raw.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading TLE data: %w", err)
	}

	lines := NormalizeLines(raw.String())
	opts := DefaultOptions()
	opts.Mode = ModePermissive
	opts.IncludeWarnings = false

	var entries []Entry
	for i := 0; i < len(lines); {
		name := ""
		if !isDataMarker(lines[i]) {
			name = lines[i]
			i++
			if i >= len(lines) {
				logger.Warn("skipping trailing name line without data", "name", strings.TrimSpace(name))
				break
			}
		}
		if i+1 >= len(lines) {
			logger.Warn("skipping incomplete TLE entry", "line_index", i)
			break
		}

		record := lines[i] + "\n" + lines[i+1]
		if name != "" {
			record = name + "\n" + record
		}
		res := ParseWithRecovery(record, opts)
		if !res.Success || res.Data == nil || res.Data.Elements == nil || res.Data.Elements.SatelliteNumber == 0 {
			logger.Warn("skipping malformed TLE entry", "line_index", i, "name", strings.TrimSpace(name))
			// Resume after the consumed name line, or past the bad data line.
			if name == "" {
				i++
			}
			continue
		}

		entries = append(entries, Entry{
			NORADID: res.Data.Elements.SatelliteNumber,
			Name:    res.Data.Name,
			Epoch:   res.Data.Elements.Epoch,
			Line1:   lines[i],
			Line2:   lines[i+1],
			Record:  res.Data,
		})
		i += 2
	}

	return entries, nil
}

// NewDataset builds a snapshot with its epoch range computed from entries.
func NewDataset(source string, fetchedAt time.Time, entries []Entry) *Dataset {
	ds := &Dataset{
		Source:     source,
		FetchedAt:  fetchedAt,
		Satellites: entries,
	}
	if len(entries) > 0 {
		ds.EpochRange = EpochRange{Min: entries[0].Epoch, Max: entries[0].Epoch}
		for _, e := range entries[1:] {
			if e.Epoch.Before(ds.EpochRange.Min) {
				ds.EpochRange.Min = e.Epoch
			}
			if e.Epoch.After(ds.EpochRange.Max) {
				ds.EpochRange.Max = e.Epoch
			}
		}
	}
	return ds
}
