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
	"encoding/xml"
	"errors"
	"fmt"
	"net/url"
	"time"

	oaisim "github.com/zimeon/oaipmh-simulator"
)

var (
	ErrNoEndpoint      = errors.New("request: an endpoint is required")
	ErrNoVerb          = errors.New("no verb")
	ErrBadVerb         = errors.New("bad verb")
	ErrTooManyRequests = errors.New("too many requests")
)

// OAIError wraps OAI error codes and messages, as received from a server.
type OAIError struct {
	Code    string
	Message string
}

// Error to satisfy interface.
func (e OAIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Request can hold any parameter, that you want to send to an OAI server.
type Request struct {
	Endpoint        string
	Verb            string
	From            time.Time
	Until           time.Time
	Set             string
	Prefix          string
	Identifier      string
	ResumptionToken string
	// Granularity of from and until, days if empty.
	Granularity oaisim.Granularity
}

// URL returns the absolute URL for a given request. Catches basic errors like
// missing endpoint or bad verb.
func (r Request) URL() (s string, err error) {
	if r.Endpoint == "" {
		return s, ErrNoEndpoint
	}
	if r.Verb == "" {
		return s, ErrNoVerb
	}
	if _, found := oaisim.VerbSchemas[r.Verb]; !found {
		return s, ErrBadVerb
	}

	values := url.Values{}
	values.Add("verb", r.Verb)

	// Collectively these requests are called list requests (3.5):
	// ListIdentifiers, ListRecords, ListSets
	if r.ResumptionToken != "" {
		// An exclusive argument with a value that is the flow control token.
		values.Add("resumptionToken", r.ResumptionToken)
		return fmt.Sprintf("%s?%s", r.Endpoint, values.Encode()), nil
	}

	g := r.Granularity
	if g == "" {
		g = oaisim.Days
	}
	maybeAdd := func(k string, v interface{}) {
		switch val := v.(type) {
		case time.Time:
			if !val.IsZero() {
				values.Add(k, oaisim.Format(val, g))
			}
		case string:
			if val != "" {
				values.Add(k, val)
			}
		default:
			panic(fmt.Sprintf("maybeAdd cannot handle %T", v))
		}
	}
	switch r.Verb {
	case oaisim.ListRecords, oaisim.ListIdentifiers:
		maybeAdd("from", r.From)
		maybeAdd("until", r.Until)
		maybeAdd("set", r.Set)
		maybeAdd("metadataPrefix", r.Prefix)
	case oaisim.GetRecord:
		maybeAdd("identifier", r.Identifier)
		maybeAdd("metadataPrefix", r.Prefix)
	case oaisim.ListMetadataFormats:
		maybeAdd("identifier", r.Identifier)
	}
	return fmt.Sprintf("%s?%s", r.Endpoint, values.Encode()), nil
}

// resumptionToken is part of OAI flow control (3.5)
type resumptionToken struct {
	Value string `xml:",chardata"`
	// A count of the number of elements of the complete list thus far
	// returned (i.e. cursor starts at 0).
	Cursor string `xml:"cursor,attr"`
	// An integer indicating the cardinality of the complete list.
	CompleteListSize string `xml:"completeListSize,attr"`
}

// Header is the main response of ListIdentifiers requests and also
// transmitted in ListRecords and GetRecord.
type Header struct {
	Identifier string   `xml:"identifier" json:"identifier"`
	Datestamp  string   `xml:"datestamp" json:"datestamp"`
	Sets       []string `xml:"setSpec" json:"sets,omitempty"`
	Status     string   `xml:"status" json:"status,omitempty"`
}

// Record is a header with verbatim metadata.
type Record struct {
	Header   Header `xml:"header"`
	Metadata struct {
		Verbatim string `xml:",innerxml"`
	} `xml:"metadata"`
	About []struct {
		Verbatim string `xml:",innerxml"`
	} `xml:"about"`
}

// Identify response.
type Identify struct {
	Name              string   `xml:"repositoryName" json:"name"`
	URL               string   `xml:"baseURL" json:"url"`
	Version           string   `xml:"protocolVersion" json:"version"`
	AdminEmail        []string `xml:"adminEmail" json:"email"`
	EarliestDatestamp string   `xml:"earliestDatestamp" json:"earliest"`
	DeletePolicy      string   `xml:"deletedRecord" json:"delete"`
	Granularity       string   `xml:"granularity" json:"granularity"`
}

// MetadataFormat of ListMetadataFormats.
type MetadataFormat struct {
	Prefix    string `xml:"metadataPrefix" json:"prefix"`
	Schema    string `xml:"schema" json:"schema,omitempty"`
	Namespace string `xml:"metadataNamespace" json:"namespace,omitempty"`
}

// Set of ListSets, the description is kept verbatim.
type Set struct {
	Spec        string `xml:"setSpec" json:"spec"`
	Name        string `xml:"setName" json:"name,omitempty"`
	Description struct {
		Verbatim string `xml:",innerxml"`
	} `xml:"setDescription" json:"-"`
}

// Response can hold most answers to an request to a OAI server.
type Response struct {
	xml.Name `xml:"OAI-PMH"`
	Date     string `xml:"responseDate"`
	Request  struct {
		Verb     string `xml:"verb,attr"`
		Endpoint string `xml:",chardata"`
	} `xml:"request"`
	Error struct {
		Code    string `xml:"code,attr"`
		Message string `xml:",chardata"`
	} `xml:"error"`
	Identify  Identify `xml:"Identify"`
	GetRecord struct {
		Record Record `xml:"record"`
	} `xml:"GetRecord"`
	ListIdentifiers struct {
		Headers []Header        `xml:"header"`
		Token   resumptionToken `xml:"resumptionToken"`
	} `xml:"ListIdentifiers"`
	ListRecords struct {
		Records []Record        `xml:"record"`
		Token   resumptionToken `xml:"resumptionToken"`
	} `xml:"ListRecords"`
	ListMetadataFormats struct {
		Formats []MetadataFormat `xml:"metadataFormat"`
	} `xml:"ListMetadataFormats"`
	ListSets struct {
		Sets  []Set           `xml:"set"`
		Token resumptionToken `xml:"resumptionToken"`
	} `xml:"ListSets"`
}

// getResumptionToken returns the value of the first found resumptionToken.
func getResumptionToken(resp Response) string {
	switch resp.Request.Verb {
	case oaisim.ListIdentifiers:
		return resp.ListIdentifiers.Token.Value
	case oaisim.ListRecords:
		return resp.ListRecords.Token.Value
	case oaisim.ListSets:
		return resp.ListSets.Token.Value
	}
	return ""
}
