package oaisim

import (
	"errors"
	"net/url"
	"time"
)

// OAI-PMH verbs.
const (
	Identify            = "Identify"
	GetRecord           = "GetRecord"
	ListIdentifiers     = "ListIdentifiers"
	ListRecords         = "ListRecords"
	ListMetadataFormats = "ListMetadataFormats"
	ListSets            = "ListSets"
)

// VerbSchemas (4. Protocol Requests and Responses) lists the arguments
// each verb accepts.
var VerbSchemas = map[string]ArgSchema{
	Identify: {},
	GetRecord: {
		Required: []string{ArgIdentifier, ArgMetadataPrefix},
	},
	ListIdentifiers: {
		Optional:  []string{ArgFrom, ArgUntil, ArgSet},
		Required:  []string{ArgMetadataPrefix},
		Exclusive: ArgResumptionToken,
	},
	ListRecords: {
		Optional:  []string{ArgFrom, ArgUntil, ArgSet},
		Required:  []string{ArgMetadataPrefix},
		Exclusive: ArgResumptionToken,
	},
	ListMetadataFormats: {
		Optional: []string{ArgIdentifier},
	},
	ListSets: {
		Exclusive: ArgResumptionToken,
	},
}

// Engine answers OAI-PMH requests against a repository.
type Engine struct {
	// BaseURL is echoed in the request element and in Identify.
	BaseURL string
	// Now is used for responseDate, time.Now if nil.
	Now func() time.Time
}

// Result of a single request. Body is always a complete XML document, for
// protocol errors it carries an error element.
type Result struct {
	Verb string    // recognized verb, empty for badVerb
	Err  *OAIError // nil on success
	Body []byte
}

// Code returns the error code, empty on success.
func (r Result) Code() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Code
}

func (e *Engine) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// Handle runs a request given as parsed query or form values against repo.
// The repository is only read. The returned error is non-nil only if the
// response could not be serialized.
func (e *Engine) Handle(repo *Repository, params url.Values) (Result, error) {
	b := newBuilder(e.BaseURL, e.now())
	verb, args, err := parseParams(params)
	b.setVerb(verb)
	if err == nil {
		err = e.dispatch(repo, b, verb, args)
	}
	res := Result{Verb: verb}
	if err != nil {
		var oe *OAIError
		if !errors.As(err, &oe) {
			return res, err
		}
		res.Err = oe
		b.fail(oe)
	}
	body, serr := b.bytes()
	if serr != nil {
		return res, serr
	}
	res.Body = body
	return res, nil
}

// parseParams finds the verb and the arguments. A verb is only returned if
// it is a legal verb, also when the arguments are then rejected.
func parseParams(params url.Values) (verb string, args map[string]string, err error) {
	verbs := params[ArgVerb]
	switch {
	case len(verbs) == 0 || verbs[0] == "":
		return "", nil, BadVerb("")
	case len(verbs) > 1:
		return "", nil, RepeatedVerb()
	}
	if _, ok := VerbSchemas[verbs[0]]; !ok {
		return "", nil, BadVerb(verbs[0])
	}
	verb = verbs[0]
	args = make(map[string]string)
	var extra, repeated []string
	for name, values := range params {
		if name == ArgVerb {
			continue
		}
		if !knownArgs[name] {
			extra = append(extra, sanitize(name))
			continue
		}
		if len(values) > 1 {
			repeated = append(repeated, name)
		}
		args[name] = values[0]
	}
	if len(extra) > 0 {
		return verb, nil, BadArgumentf("Extra illegal arguments (%s) given.", sortedJoin(extra))
	}
	if len(repeated) > 0 {
		return verb, nil, BadArgumentf("Repeated arguments (%s) given.", sortedJoin(repeated))
	}
	return verb, args, nil
}

func (e *Engine) dispatch(repo *Repository, b *builder, verb string, args map[string]string) error {
	if err := CheckArgs(verb, args, VerbSchemas[verb]); err != nil {
		return err
	}
	switch verb {
	case Identify:
		b.identify(repo)
	case GetRecord:
		rec, err := repo.SelectRecord(args[ArgIdentifier], args[ArgMetadataPrefix])
		if err != nil {
			return err
		}
		b.getRecord(rec)
	case ListIdentifiers:
		return e.list(repo, b, args, false)
	case ListRecords:
		return e.list(repo, b, args, true)
	case ListMetadataFormats:
		prefixes, err := repo.MetadataFormats(optional(args, ArgIdentifier))
		if err != nil {
			return err
		}
		b.listMetadataFormats(repo, prefixes)
	case ListSets:
		if token, ok := args[ArgResumptionToken]; ok {
			return BadResumptionToken(token)
		}
		specs, err := repo.SetSpecs()
		if err != nil {
			return err
		}
		b.listSets(repo, specs)
	}
	return nil
}

// list implements both ListIdentifiers and ListRecords, which differ only
// in whether the records are included.
func (e *Engine) list(repo *Repository, b *builder, args map[string]string, includeRecords bool) error {
	if token, ok := args[ArgResumptionToken]; ok {
		return BadResumptionToken(token)
	}
	records, err := repo.SelectRecords(ListArgs{
		MetadataPrefix: args[ArgMetadataPrefix],
		From:           optional(args, ArgFrom),
		Until:          optional(args, ArgUntil),
		Set:            optional(args, ArgSet),
	})
	if err != nil {
		return err
	}
	b.list(records, includeRecords)
	return nil
}

// optional returns the value of an argument, nil if it was not given.
func optional(args map[string]string, name string) *string {
	if v, ok := args[name]; ok {
		return &v
	}
	return nil
}
