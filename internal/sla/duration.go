// Package sla holds the deadline arithmetic: the legacy duration encoding,
// deadline anchoring and remaining-time computation. Everything here is a
// pure function of its arguments.
package sla

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultDurationMinutes is the silent fallback for unparseable encodings.
// The stored data predates validation, so failing loudly here would brick
// every list view that touches a bad row.
const DefaultDurationMinutes = 60

// ParseDurationToMinutes decodes the stored ISO-8601-like duration strings:
// PT<n>S, PT<n>M, PT<n>H and P<n>D. Unrecognized input falls back to
// DefaultDurationMinutes and never errors.
func ParseDurationToMinutes(encoded string) int {
	return ParseDurationToMinutesWithDefault(encoded, DefaultDurationMinutes)
}

// ParseDurationToMinutesWithDefault is ParseDurationToMinutes with a
// caller-supplied fallback, for deployments that tune the default.
func ParseDurationToMinutesWithDefault(encoded string, fallback int) int {
	if fallback <= 0 {
		fallback = DefaultDurationMinutes
	}
	s := strings.ToUpper(strings.TrimSpace(encoded))
	if len(s) < 3 || s[0] != 'P' {
		return fallback
	}

	if strings.HasPrefix(s, "PT") {
		unit := s[len(s)-1]
		n, err := strconv.Atoi(s[2 : len(s)-1])
		if err != nil || n < 0 {
			return fallback
		}
		switch unit {
		case 'S':
			return n / 60
		case 'M':
			return n
		case 'H':
			return n * 60
		}
		return fallback
	}

	if s[len(s)-1] == 'D' {
		n, err := strconv.Atoi(s[1 : len(s)-1])
		if err != nil || n < 0 {
			return fallback
		}
		return n * 24 * 60
	}
	return fallback
}

// EncodeMinutes renders minutes in the canonical stored form, PT<n>M.
func EncodeMinutes(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("PT%dM", minutes)
}

// ParseLegacyClock accepts the "HH:MM" time-of-day strings some legacy
// policies carry and converts them to minutes. The boolean is false when the
// input is not a clock string.
func ParseLegacyClock(raw string) (int, bool) {
	parts := strings.SplitN(strings.TrimSpace(raw), ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 {
		return 0, false
	}
	mins, err := strconv.Atoi(parts[1])
	if err != nil || mins < 0 || mins > 59 {
		return 0, false
	}
	return hours*60 + mins, true
}

// NormalizeDuration maps any accepted ingest encoding (ISO-like or legacy
// clock) onto the canonical PT<n>M form.
func NormalizeDuration(raw string) string {
	if minutes, ok := ParseLegacyClock(raw); ok {
		return EncodeMinutes(minutes)
	}
	return EncodeMinutes(ParseDurationToMinutes(raw))
}

// DeadlineFrom anchors an absolute deadline at now plus the given minutes.
func DeadlineFrom(now time.Time, minutes int) time.Time {
	return now.Add(time.Duration(minutes) * time.Minute)
}
