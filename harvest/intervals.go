//  Copyright 2015 by Leipzig University Library, http://ub.uni-leipzig.de
//                    The Finc Authors, http://finc.info
//                    Martin Czygan, <martin.czygan@uni-leipzig.de>
//
// This file is part of some open source application.
//
// Some open source application is free software: you can redistribute
// it and/or modify it under the terms of the GNU General Public
// License as published by the Free Software Foundation, either
// version 3 of the License, or (at your option) any later version.
//
// Some open source application is distributed in the hope that it will
// be useful, but WITHOUT ANY WARRANTY; without even the implied warranty
// of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Foobar.  If not, see <http://www.gnu.org/licenses/>.
//
// @license GPL-3.0+ <http://spdx.org/licenses/GPL-3.0+>
//
package harvest

import (
	"errors"
	"fmt"
	"time"

	"github.com/jinzhu/now"

	oaisim "github.com/zimeon/oaipmh-simulator"
)

var ErrInvalidDateRange = errors.New("invalid date range")

// Window is a selective harvesting range, from and until including. Both
// bounds are instants a datestamp of the harvest granularity can express.
type Window struct {
	From  time.Time
	Until time.Time
}

// periodEnd returns the last instant of the period containing t.
type periodEnd func(t time.Time) time.Time

var periods = map[string]periodEnd{
	"monthly": func(t time.Time) time.Time { return now.New(t).EndOfMonth() },
	"weekly":  func(t time.Time) time.Time { return now.New(t).EndOfWeek() },
}

// floor truncates t to the granularity, so that a window bound renders to a
// datestamp without losing the part it covers.
func floor(t time.Time, g oaisim.Granularity) time.Time {
	if g == oaisim.Seconds {
		return t.UTC().Truncate(time.Second)
	}
	return now.New(t.UTC()).BeginningOfDay()
}

// Split cuts the window by name, "monthly", "weekly" or "none". With day
// granularity the last window of a period ends on its last day, with second
// granularity on its last second, e.g. 2001-01-31T23:59:59Z.
func (w Window) Split(by string, g oaisim.Granularity) ([]Window, error) {
	from, until := floor(w.From, g), floor(w.Until, g)
	if from.After(until) {
		return nil, ErrInvalidDateRange
	}
	var end periodEnd
	switch by {
	case "", "none":
		return []Window{{From: from, Until: until}}, nil
	default:
		var ok bool
		if end, ok = periods[by]; !ok {
			return nil, fmt.Errorf("unknown window %q", by)
		}
	}
	var ws []Window
	for start := from; !start.After(until); {
		last := end(start)
		stop := floor(last, g)
		if stop.After(until) {
			stop = until
		}
		ws = append(ws, Window{From: start, Until: stop})
		start = last.Add(time.Nanosecond)
	}
	return ws, nil
}

// Datestamps renders the window bounds as from and until arguments.
func (w Window) Datestamps(g oaisim.Granularity) (from, until string) {
	return oaisim.Format(w.From, g), oaisim.Format(w.Until, g)
}
