// Package harvest is a small OAI-PMH harvester, used to probe a running
// simulator (or any other OAI-PMH endpoint).
package harvest

import (
	"errors"
	"time"

	"go.uber.org/zap"

	oaisim "github.com/zimeon/oaipmh-simulator"
)

// DefaultEarliestDate is used, if the repository does not supply one.
var DefaultEarliestDate = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// Summary of a windowed harvest.
type Summary struct {
	Windows     int            `json:"windows"`
	Headers     int            `json:"headers"`
	Deleted     int            `json:"deleted"`
	Identifiers []string       `json:"identifiers"`
	Codes       map[string]int `json:"codes,omitempty"`
}

// Harvester runs ListIdentifiers or ListRecords over a date range, split
// into windows. A noRecordsMatch answer counts as an empty window.
type Harvester struct {
	Client Client
	// Window is monthly, weekly or none.
	Window string
	Log    *zap.Logger
}

// UseDefaults fills in Granularity and From from the Identify response, Until
// with now and Prefix with oai_dc, when missing.
func (h Harvester) UseDefaults(req *Request) {
	if req.From.IsZero() || req.Granularity == "" {
		var id Identify
		if resp, err := h.Client.Do(Request{Verb: "Identify", Endpoint: req.Endpoint}); err == nil {
			id = resp.Identify
		}
		if req.Granularity == "" {
			req.Granularity = oaisim.GranularityFromFormat(id.Granularity)
			if req.Granularity == "" {
				req.Granularity = oaisim.Days
			}
		}
		if req.From.IsZero() {
			req.From = DefaultEarliestDate
			if d, err := oaisim.ParseDatestamp(id.EarliestDatestamp, ""); err == nil {
				req.From = d.Time()
			}
		}
	}
	if req.Until.IsZero() {
		req.Until = time.Now().UTC()
	}
	if req.Prefix == "" {
		req.Prefix = "oai_dc"
	}
}

// Harvest runs the request once per window and collects headers.
func (h Harvester) Harvest(req Request) (Summary, error) {
	log := h.Log
	if log == nil {
		log = zap.NewNop()
	}
	summary := Summary{Codes: make(map[string]int)}
	h.UseDefaults(&req)
	windows, err := Window{From: req.From, Until: req.Until}.Split(h.Window, req.Granularity)
	if err != nil {
		return summary, err
	}
	batching := NewBatchingClient(h.Client)
	for _, w := range windows {
		r := req
		r.From, r.Until = w.From, w.Until
		summary.Windows++
		resp, err := batching.Do(r)
		var oe OAIError
		switch {
		case errors.As(err, &oe):
			summary.Codes[oe.Code]++
			if oe.Code == "noRecordsMatch" {
				continue
			}
			return summary, err
		case err != nil:
			return summary, err
		}
		var headers []Header
		if r.Verb == "ListRecords" {
			for _, rec := range resp.ListRecords.Records {
				headers = append(headers, rec.Header)
			}
		} else {
			headers = resp.ListIdentifiers.Headers
		}
		from, until := w.Datestamps(req.Granularity)
		log.Debug("window harvested",
			zap.String("from", from), zap.String("until", until), zap.Int("headers", len(headers)))
		for _, hd := range headers {
			summary.Headers++
			if hd.Status == "deleted" {
				summary.Deleted++
			}
			summary.Identifiers = append(summary.Identifiers, hd.Identifier)
		}
	}
	return summary, nil
}
