package harvest

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oaisim "github.com/zimeon/oaipmh-simulator"
)

func at(s string) time.Time {
	return oaisim.MustParseDatestamp(s).Time()
}

func TestWindowSplitMonthly(t *testing.T) {
	var tests = []struct {
		about string
		w     Window
		g     oaisim.Granularity
		want  [][2]string
	}{
		{
			about: "single day",
			w:     Window{From: at("2000-01-01"), Until: at("2000-01-01")},
			g:     oaisim.Days,
			want:  [][2]string{{"2000-01-01", "2000-01-01"}},
		},
		{
			about: "leap february",
			w:     Window{From: at("2000-01-01"), Until: at("2000-03-01")},
			g:     oaisim.Days,
			want: [][2]string{
				{"2000-01-01", "2000-01-31"},
				{"2000-02-01", "2000-02-29"},
				{"2000-03-01", "2000-03-01"},
			},
		},
		{
			about: "days drop the time of day",
			w:     Window{From: at("2001-12-11T09:00:00Z"), Until: at("2002-01-16T12:00:00Z")},
			g:     oaisim.Days,
			want: [][2]string{
				{"2001-12-11", "2001-12-31"},
				{"2002-01-01", "2002-01-16"},
			},
		},
		{
			about: "seconds end on the last second of the month",
			w:     Window{From: at("2001-12-11T09:00:00Z"), Until: at("2002-01-16T12:00:00Z")},
			g:     oaisim.Seconds,
			want: [][2]string{
				{"2001-12-11T09:00:00Z", "2001-12-31T23:59:59Z"},
				{"2002-01-01T00:00:00Z", "2002-01-16T12:00:00Z"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.about, func(t *testing.T) {
			ws, err := tt.w.Split("monthly", tt.g)
			require.NoError(t, err)
			var got [][2]string
			for _, w := range ws {
				from, until := w.Datestamps(tt.g)
				got = append(got, [2]string{from, until})
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Split(monthly) mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWindowSplit(t *testing.T) {
	w := Window{From: at("2000-01-01"), Until: at("2000-02-15")}
	var tests = []struct {
		by    string
		count int
		err   bool
	}{
		{"none", 1, false},
		{"", 1, false},
		{"monthly", 2, false},
		{"weekly", 8, false}, // 2000-01-01 is a saturday
		{"daily", 0, true},
	}
	for _, tt := range tests {
		ws, err := w.Split(tt.by, oaisim.Days)
		assert.Equal(t, tt.err, err != nil, tt.by)
		assert.Len(t, ws, tt.count, tt.by)
	}
}

func TestWindowSplitInvalidRange(t *testing.T) {
	_, err := Window{From: at("2000-02-15"), Until: at("2000-01-01")}.Split("none", oaisim.Days)
	assert.Equal(t, ErrInvalidDateRange, err)

	// the same day with days, but reversed with seconds
	w := Window{From: at("2000-01-01T12:00:00Z"), Until: at("2000-01-01T08:00:00Z")}
	ws, err := w.Split("weekly", oaisim.Days)
	require.NoError(t, err)
	assert.Len(t, ws, 1)
	_, err = w.Split("weekly", oaisim.Seconds)
	assert.Equal(t, ErrInvalidDateRange, err)
}
