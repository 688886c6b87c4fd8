package harvest

import (
	"errors"
	"time"
)

var ErrTimeout = errors.New("operation timed out")

// Info summarizes a repository.
type Info struct {
	Identify Identify         `json:"id"`
	Sets     []Set            `json:"sets"`
	Formats  []MetadataFormat `json:"formats"`
	Errors   []string         `json:"errors,omitempty"`
	Elapsed  float64          `json:"elapsed"`
}

// RepositoryInfo returns information about a repository, asking for
// Identify, ListSets and ListMetadataFormats in parallel. Returns after at
// most timeout, with whatever was received so far.
func RepositoryInfo(client Client, endpoint string, timeout time.Duration) (Info, error) {
	start := time.Now()
	var info Info
	batching := NewBatchingClient(client)

	type message struct {
		verb string
		resp Response
		err  error
	}

	// buffered, so late senders do not block after a timeout
	ch := make(chan message, 3)
	for _, verb := range []string{"Identify", "ListSets", "ListMetadataFormats"} {
		go func(verb string) {
			resp, err := batching.Do(Request{Endpoint: endpoint, Verb: verb})
			ch <- message{verb: verb, resp: resp, err: err}
		}(verb)
	}

	var received int
	deadline := time.After(timeout)

	for received < 3 {
		select {
		case msg := <-ch:
			received++
			if msg.err != nil {
				info.Errors = append(info.Errors, msg.verb+": "+msg.err.Error())
				continue
			}
			switch msg.verb {
			case "Identify":
				info.Identify = msg.resp.Identify
			case "ListSets":
				info.Sets = msg.resp.ListSets.Sets
			case "ListMetadataFormats":
				info.Formats = msg.resp.ListMetadataFormats.Formats
			}
		case <-deadline:
			info.Elapsed = time.Since(start).Seconds()
			return info, ErrTimeout
		}
	}
	info.Elapsed = time.Since(start).Seconds()
	return info, nil
}
