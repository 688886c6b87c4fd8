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
	"fmt"
	"net/http"
	"time"

	"github.com/sethgrid/pester"
	"go.uber.org/zap"

	oaisim "github.com/zimeon/oaipmh-simulator"
)

// UserAgent to use for requests
var UserAgent = fmt.Sprintf("oaisim-probe/%s (https://github.com/zimeon/oaipmh-simulator)", oaisim.Version)

// HttpRequestDoer lets us use pester, DefaultClient or other HTTP client
// implementations interchangably.
type HttpRequestDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client is a simple client, that can turn a OAI request into a OAI response.
type Client struct {
	// doer is a delegate for HTTP requests.
	doer HttpRequestDoer
	log  *zap.Logger
}

// NewClientDoer creates a new OAI client with a user supplied http client,
// e.g. pester.Client, http.DefaultClient.
func NewClientDoer(doer HttpRequestDoer, logger *zap.Logger) Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Client{doer: doer, log: logger}
}

// NewClient create a default client with resilient HTTP client.
func NewClient(logger *zap.Logger) Client {
	c := pester.New()
	c.Timeout = 30 * time.Second
	c.MaxRetries = 4
	c.Backoff = pester.ExponentialBackoff
	return NewClientDoer(c, logger)
}

// Do takes an OAI request and turns it into at most one single OAI response.
// OAI errors are returned as OAIError, together with the response.
func (c Client) Do(req Request) (Response, error) {
	var response Response

	link, err := req.URL()
	if err != nil {
		return response, err
	}
	c.log.Debug("oai request", zap.String("url", link))

	hreq, err := http.NewRequest("GET", link, nil)
	if err != nil {
		return response, err
	}
	hreq.Header.Set("User-Agent", UserAgent)
	resp, err := c.doer.Do(hreq)
	if err != nil {
		return response, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return response, fmt.Errorf("%s: unexpected status %s", link, resp.Status)
	}
	decoder := xml.NewDecoder(resp.Body)
	if err := decoder.Decode(&response); err != nil {
		return response, err
	}
	if response.Error.Code != "" {
		e := response.Error
		return response, OAIError{Code: e.Code, Message: e.Message}
	}

	return response, nil
}

// BatchingClient takes a single OAI request but will do more the one HTTP
// request to fulfill it, if necessary.
type BatchingClient struct {
	// MaxRequests, zero means no limit. Prevents endless loops due to broken
	// resumptionToken implementations.
	MaxRequests int
	// client is a our OAI delegate
	client Client
}

// NewBatchingClient returns a client that follows resumption tokens.
func NewBatchingClient(client Client) BatchingClient {
	return BatchingClient{client: client, MaxRequests: 1024}
}

// Do will turn a single request into a single response by combining many
// responses into a single one.
func (c BatchingClient) Do(req Request) (resp Response, err error) {
	resp, err = c.client.Do(req)
	if err != nil {
		return resp, err
	}
	var aggregate = resp
	i := 1
	switch req.Verb {
	case "ListIdentifiers", "ListRecords", "ListSets":
		for {
			if c.MaxRequests > 0 && i == c.MaxRequests {
				return aggregate, ErrTooManyRequests
			}
			token := getResumptionToken(resp)
			if token == "" {
				return aggregate, nil
			}
			req.ResumptionToken = token
			resp, err = c.client.Do(req)
			if err != nil {
				return aggregate, err
			}
			switch req.Verb {
			case "ListIdentifiers":
				aggregate.ListIdentifiers.Headers = append(aggregate.ListIdentifiers.Headers,
					resp.ListIdentifiers.Headers...)
			case "ListRecords":
				aggregate.ListRecords.Records = append(aggregate.ListRecords.Records,
					resp.ListRecords.Records...)
			case "ListSets":
				aggregate.ListSets.Sets = append(aggregate.ListSets.Sets,
					resp.ListSets.Sets...)
			}
			i++
		}
	}
	return resp, nil
}
