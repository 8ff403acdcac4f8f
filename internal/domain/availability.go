package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const clockLayout = "15:04"

var weekdays = map[string]string{
	"monday":    "Monday",
	"tuesday":   "Tuesday",
	"wednesday": "Wednesday",
	"thursday":  "Thursday",
	"friday":    "Friday",
	"saturday":  "Saturday",
	"sunday":    "Sunday",
}

// TimeRange is a daily opening window in HH:MM.
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Availability describes when a provider offers a service.
type Availability struct {
	Days  []string   `json:"days"`
	Hours *TimeRange `json:"hours,omitempty"`
	Notes string     `json:"notes,omitempty"`
}

// availabilityInput also accepts the flat start_time/end_time spelling.
type availabilityInput struct {
	Days      []string   `json:"days"`
	Hours     *TimeRange `json:"hours"`
	StartTime string     `json:"start_time"`
	EndTime   string     `json:"end_time"`
	Notes     string     `json:"notes"`
}

// NormalizeWeekday returns the canonical weekday name.
func NormalizeWeekday(day string) (string, bool) {
	name, ok := weekdays[strings.ToLower(strings.TrimSpace(day))]
	return name, ok
}

// ParseAvailability decodes availability sent either as a JSON object or as a JSON string
// holding an encoded object. Empty input, null and "" yield nil.
func ParseAvailability(raw []byte) (*Availability, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '"' {
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return nil, fmt.Errorf("decode availability string: %w", err)
		}
		if strings.TrimSpace(encoded) == "" {
			return nil, nil
		}
		raw = []byte(encoded)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var in availabilityInput
	if err := dec.Decode(&in); err != nil {
		return nil, fmt.Errorf("decode availability: %w", err)
	}

	availability := Availability{Days: in.Days, Hours: in.Hours, Notes: in.Notes}
	if in.StartTime != "" || in.EndTime != "" {
		if in.Hours != nil {
			return nil, errors.New("use either hours or start_time/end_time")
		}
		availability.Hours = &TimeRange{Start: in.StartTime, End: in.EndTime}
	}
	if err := availability.Normalize(); err != nil {
		return nil, err
	}
	return &availability, nil
}

// Normalize canonicalizes weekday names and checks the time range.
func (a *Availability) Normalize() error {
	seen := make(map[string]struct{}, len(a.Days))
	days := make([]string, 0, len(a.Days))
	for _, day := range a.Days {
		name, ok := NormalizeWeekday(day)
		if !ok {
			return fmt.Errorf("unknown weekday %q", day)
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		days = append(days, name)
	}
	a.Days = days
	a.Notes = strings.TrimSpace(a.Notes)

	if a.Hours == nil {
		return nil
	}
	a.Hours.Start = strings.TrimSpace(a.Hours.Start)
	a.Hours.End = strings.TrimSpace(a.Hours.End)
	if a.Hours.Start == "" && a.Hours.End == "" {
		a.Hours = nil
		return nil
	}
	if a.Hours.Start == "" || a.Hours.End == "" {
		return errors.New("hours start and end must be provided together")
	}
	start, err := time.Parse(clockLayout, a.Hours.Start)
	if err != nil {
		return fmt.Errorf("hours start must be HH:MM: %w", err)
	}
	end, err := time.Parse(clockLayout, a.Hours.End)
	if err != nil {
		return fmt.Errorf("hours end must be HH:MM: %w", err)
	}
	if !start.Before(end) {
		return errors.New("hours start must be before end")
	}
	return nil
}

// Encode serializes availability for storage. Nil encodes to nil.
func (a *Availability) Encode() ([]byte, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}
