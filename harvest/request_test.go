package harvest

import (
	"testing"
	"time"

	oaisim "github.com/zimeon/oaipmh-simulator"
)

func TestRequestURL(t *testing.T) {
	var tests = []struct {
		req Request
		url string
		err error
	}{
		{Request{}, "", ErrNoEndpoint},
		{Request{Endpoint: "Hello"}, "", ErrNoVerb},
		{Request{Endpoint: "Hello", Verb: "x"}, "", ErrBadVerb},
		{Request{Endpoint: "Hello", Verb: "Identify"}, "Hello?verb=Identify", nil},
		{Request{Endpoint: "http://example.com/oai", Verb: "Identify"}, "http://example.com/oai?verb=Identify", nil},
		{Request{Endpoint: "http://example.com/oai",
			Verb: "Identify",
			From: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		}, "http://example.com/oai?verb=Identify", nil},
		{Request{Endpoint: "http://example.com/oai", Verb: "ListRecords",
			From:  time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
			Until: time.Date(2000, 1, 2, 0, 0, 0, 0, time.UTC)},
			"http://example.com/oai?from=2000-01-01&until=2000-01-02&verb=ListRecords", nil},
		{Request{Endpoint: "http://example.com/oai", Verb: "ListIdentifiers",
			From:        time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
			Until:       time.Date(2000, 1, 31, 23, 59, 59, 0, time.UTC),
			Granularity: oaisim.Seconds},
			"http://example.com/oai?from=2000-01-01T00%3A00%3A00Z&until=2000-01-31T23%3A59%3A59Z&verb=ListIdentifiers", nil},
		{Request{Endpoint: "http://example.com/oai", Verb: "ListRecords",
			From:            time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
			Until:           time.Date(2000, 1, 2, 0, 0, 0, 0, time.UTC),
			ResumptionToken: "1"},
			"http://example.com/oai?resumptionToken=1&verb=ListRecords", nil},
		{Request{Endpoint: "http://example.com/oai",
			Verb: "ListIdentifiers", Set: "X", Prefix: "P"}, "http://example.com/oai?metadataPrefix=P&set=X&verb=ListIdentifiers", nil},
		{Request{Endpoint: "http://example.com/oai",
			Verb: "GetRecord", Identifier: "oai:x:1", Prefix: "oai_dc", Set: "ignored"},
			"http://example.com/oai?identifier=oai%3Ax%3A1&metadataPrefix=oai_dc&verb=GetRecord", nil},
		{Request{Endpoint: "http://example.com/oai",
			Verb: "ListMetadataFormats", Identifier: "id1"},
			"http://example.com/oai?identifier=id1&verb=ListMetadataFormats", nil},
		{Request{Endpoint: "http://example.com/oai",
			Verb: "ListSets", Prefix: "ignored"}, "http://example.com/oai?verb=ListSets", nil},
	}

	for _, test := range tests {
		got, err := test.req.URL()
		if err != test.err {
			t.Errorf("r.URL() got %v, want %v", err, test.err)
		}
		if got != test.url {
			t.Errorf("r.URL() got %v, want %v", got, test.url)
		}
	}
}
