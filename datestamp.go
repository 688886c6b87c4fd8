package oaisim

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Granularity of a datestamp literal.
type Granularity string

const (
	Days    Granularity = "days"
	Seconds Granularity = "seconds"
)

const (
	dayLayout    = "2006-01-02"
	secondLayout = "2006-01-02T15:04:05Z"

	// Identify granularity literals (4.2 Identify).
	DayGranularityFormat    = "YYYY-MM-DD"
	SecondGranularityFormat = "YYYY-MM-DDThh:mm:ssZ"
)

var datestampPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}(T\d{2}:\d{2}:\d{2}Z)?$`)

// GranularityFromFormat maps an Identify granularity literal to a
// Granularity. Unknown literals yield the empty granularity.
func GranularityFromFormat(s string) Granularity {
	switch s {
	case DayGranularityFormat:
		return Days
	case SecondGranularityFormat:
		return Seconds
	}
	return ""
}

// Datestamp is an OAI-PMH date or datetime with its granularity. The zero
// value is unparsed, and must not be compared.
type Datestamp struct {
	literal     string
	granularity Granularity
	t           time.Time
	parsed      bool
}

// ParseDatestamp parses YYYY-MM-DD or YYYY-MM-DDThh:mm:ssZ. If expected is
// not empty, the granularity of s must match it.
func ParseDatestamp(s string, expected Granularity) (Datestamp, error) {
	m := datestampPattern.FindStringSubmatch(s)
	if m == nil {
		return Datestamp{}, BadArgumentf("Bad datetime %s, must have either YYYY-MM-DD or YYYY-MM-DDThh:mm:ssZ form.", sanitize(s))
	}
	g := Seconds
	normalized := s
	if m[1] == "" {
		g = Days
		normalized = s + "T00:00:00Z"
	}
	t, err := time.Parse(secondLayout, normalized)
	if err != nil {
		return Datestamp{}, BadArgumentf("Bad datetime %s: %s.", sanitize(s), parseErrorReason(err))
	}
	if expected != "" && expected != g {
		return Datestamp{}, BadArgumentf("Bad datetime, expected %s granularity and got %s granularity", expected, g)
	}
	return Datestamp{literal: s, granularity: g, t: t.UTC(), parsed: true}, nil
}

// MustParseDatestamp is like ParseDatestamp but panics on error.
func MustParseDatestamp(s string) Datestamp {
	d, err := ParseDatestamp(s, "")
	if err != nil {
		panic(err)
	}
	return d
}

func parseErrorReason(err error) string {
	if pe, ok := err.(*time.ParseError); ok && pe.Message != "" {
		return strings.TrimPrefix(pe.Message, ": ")
	}
	return "out of range"
}

// String returns the literal as given.
func (d Datestamp) String() string { return d.literal }

// Granularity returns days or seconds, empty when unparsed.
func (d Datestamp) Granularity() Granularity { return d.granularity }

// IsZero is true for an unparsed datestamp.
func (d Datestamp) IsZero() bool { return !d.parsed }

// Time returns the parsed instant in UTC.
func (d Datestamp) Time() time.Time {
	d.mustBeParsed()
	return d.t
}

func (d Datestamp) mustBeParsed() {
	if !d.parsed {
		panic(fmt.Sprintf("oaisim: comparison of unparsed datestamp %q", d.literal))
	}
}

// Compare returns -1, 0 or +1. Both datestamps must be parsed.
func (d Datestamp) Compare(o Datestamp) int {
	d.mustBeParsed()
	o.mustBeParsed()
	switch {
	case d.t.Before(o.t):
		return -1
	case d.t.After(o.t):
		return 1
	}
	return 0
}

// Before reports whether d is earlier than o.
func (d Datestamp) Before(o Datestamp) bool { return d.Compare(o) < 0 }

// After reports whether d is later than o.
func (d Datestamp) After(o Datestamp) bool { return d.Compare(o) > 0 }

// Equal reports whether d and o denote the same instant.
func (d Datestamp) Equal(o Datestamp) bool { return d.Compare(o) == 0 }

// Format renders t in the given granularity.
func Format(t time.Time, g Granularity) string {
	if g == Days {
		return t.UTC().Format(dayLayout)
	}
	return t.UTC().Format(secondLayout)
}
