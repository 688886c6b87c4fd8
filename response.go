package oaisim

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	oaiNamespace      = "http://www.openarchives.org/OAI/2.0/"
	xsiNamespace      = "http://www.w3.org/2001/XMLSchema-instance"
	oaiSchemaLocation = "http://www.openarchives.org/OAI/2.0/ http://www.openarchives.org/OAI/2.0/OAI-PMH.xsd"
)

// envelope is the OAI-PMH root element. Exactly one body field is set.
type envelope struct {
	XMLName        xml.Name `xml:"OAI-PMH"`
	Xmlns          string   `xml:"xmlns,attr"`
	XmlnsXsi       string   `xml:"xmlns:xsi,attr"`
	SchemaLocation string   `xml:"xsi:schemaLocation,attr"`
	ResponseDate   string   `xml:"responseDate"`
	Request        struct {
		Verb    string `xml:"verb,attr,omitempty"`
		BaseURL string `xml:",chardata"`
	} `xml:"request"`

	Error               *errorBody               `xml:"error,omitempty"`
	Identify            *identifyBody            `xml:"Identify,omitempty"`
	GetRecord           *getRecordBody           `xml:"GetRecord,omitempty"`
	ListIdentifiers     *listIdentifiersBody     `xml:"ListIdentifiers,omitempty"`
	ListRecords         *listRecordsBody         `xml:"ListRecords,omitempty"`
	ListMetadataFormats *listMetadataFormatsBody `xml:"ListMetadataFormats,omitempty"`
	ListSets            *listSetsBody            `xml:"ListSets,omitempty"`
}

type errorBody struct {
	Code    string `xml:"code,attr"`
	Message string `xml:",chardata"`
}

type identifyBody struct {
	Name              string   `xml:"repositoryName"`
	BaseURL           string   `xml:"baseURL"`
	ProtocolVersion   string   `xml:"protocolVersion"`
	AdminEmails       []string `xml:"adminEmail"`
	EarliestDatestamp string   `xml:"earliestDatestamp"`
	DeletedRecord     string   `xml:"deletedRecord"`
	Granularity       string   `xml:"granularity"`
}

// header carries the status as a child element, only when set.
type header struct {
	Identifier string   `xml:"identifier"`
	Datestamp  string   `xml:"datestamp"`
	SetSpecs   []string `xml:"setSpec"`
	Status     string   `xml:"status,omitempty"`
}

// raw holds a placeholder, replaced by verbatim XML after marshalling.
type raw struct {
	Placeholder string `xml:",chardata"`
}

type record struct {
	Header   header `xml:"header"`
	Metadata *raw   `xml:"metadata,omitempty"`
	About    []raw  `xml:"about"`
}

type getRecordBody struct {
	Record record `xml:"record"`
}

type listIdentifiersBody struct {
	Headers []header `xml:"header"`
}

type listRecordsBody struct {
	Records []record `xml:"record"`
}

type metadataFormat struct {
	Prefix    string `xml:"metadataPrefix"`
	Schema    string `xml:"schema,omitempty"`
	Namespace string `xml:"metadataNamespace,omitempty"`
}

type listMetadataFormatsBody struct {
	Formats []metadataFormat `xml:"metadataFormat"`
}

type set struct {
	Spec        string `xml:"setSpec"`
	Name        string `xml:"setName,omitempty"`
	Description *raw   `xml:"setDescription,omitempty"`
}

type listSetsBody struct {
	Sets []set `xml:"set"`
}

// builder assembles one response. Raw XML fragments cannot be put into the
// tree as typed nodes, so they are represented by unique placeholder tokens
// and substituted into the serialized text at the end. A builder belongs to
// a single request.
type builder struct {
	doc   envelope
	nonce string
	subs  []string // token, fragment pairs for strings.NewReplacer
}

func newBuilder(baseURL string, now time.Time) *builder {
	b := &builder{nonce: uuid.NewString()}
	b.doc.Xmlns = oaiNamespace
	b.doc.XmlnsXsi = xsiNamespace
	b.doc.SchemaLocation = oaiSchemaLocation
	b.doc.ResponseDate = Format(now, Seconds)
	b.doc.Request.BaseURL = baseURL
	return b
}

// sub registers a raw fragment and returns the token to put in its place.
func (b *builder) sub(fragment string) string {
	token := fmt.Sprintf("#-#-#-#-#--SUB--%s--%d--#-#-#-#-#", b.nonce, len(b.subs)/2+1)
	b.subs = append(b.subs, token, fragment)
	return token
}

func (b *builder) setVerb(verb string) {
	b.doc.Request.Verb = verb
}

func (b *builder) header(rec *Record) header {
	return header{
		Identifier: rec.Identifier(),
		Datestamp:  rec.Datestamp().String(),
		SetSpecs:   rec.SetSpecs(),
		Status:     rec.Status(),
	}
}

func (b *builder) metadata(rec *Record) *raw {
	if rec.Metadata() == "" {
		return nil
	}
	return &raw{Placeholder: b.sub(rec.Metadata())}
}

func (b *builder) record(rec *Record) record {
	r := record{Header: b.header(rec), Metadata: b.metadata(rec)}
	for _, about := range rec.About() {
		r.About = append(r.About, raw{Placeholder: b.sub(about)})
	}
	return r
}

func (b *builder) identify(repo *Repository) {
	body := &identifyBody{
		Name:            repo.Name,
		BaseURL:         b.doc.Request.BaseURL,
		ProtocolVersion: repo.ProtocolVersion,
		AdminEmails:     repo.AdminEmails(),
		DeletedRecord:   repo.DeletedRecord,
		Granularity:     repo.Granularity,
	}
	if !repo.EarliestDatestamp.IsZero() {
		body.EarliestDatestamp = repo.EarliestDatestamp.String()
	}
	b.doc.Identify = body
}

func (b *builder) getRecord(rec *Record) {
	b.doc.GetRecord = &getRecordBody{Record: b.record(rec)}
}

// list adds headers only, or full records when includeRecords is set.
func (b *builder) list(records []*Record, includeRecords bool) {
	if !includeRecords {
		body := &listIdentifiersBody{}
		for _, rec := range records {
			body.Headers = append(body.Headers, b.header(rec))
		}
		b.doc.ListIdentifiers = body
		return
	}
	body := &listRecordsBody{}
	for _, rec := range records {
		body.Records = append(body.Records, b.record(rec))
	}
	b.doc.ListRecords = body
}

func (b *builder) listMetadataFormats(repo *Repository, prefixes []string) {
	body := &listMetadataFormatsBody{}
	for _, p := range prefixes {
		f := metadataFormat{Prefix: p}
		if info, ok := repo.FormatInfo(p); ok {
			f.Schema, f.Namespace = info.Schema, info.Namespace
		}
		body.Formats = append(body.Formats, f)
	}
	b.doc.ListMetadataFormats = body
}

func (b *builder) listSets(repo *Repository, specs []string) {
	body := &listSetsBody{}
	for _, spec := range specs {
		s := set{Spec: spec}
		if info, ok := repo.SetInfo(spec); ok {
			s.Name = info.Name
			if info.Description != "" {
				s.Description = &raw{Placeholder: b.sub(info.Description)}
			}
		}
		body.Sets = append(body.Sets, s)
	}
	b.doc.ListSets = body
}

// fail replaces whatever body was built with an error element.
func (b *builder) fail(e *OAIError) {
	b.doc = envelope{
		Xmlns:          b.doc.Xmlns,
		XmlnsXsi:       b.doc.XmlnsXsi,
		SchemaLocation: b.doc.SchemaLocation,
		ResponseDate:   b.doc.ResponseDate,
		Request:        b.doc.Request,
		Error:          &errorBody{Code: e.Code, Message: e.Message},
	}
	b.subs = nil
}

// bytes serializes the tree, then swaps every placeholder for its fragment.
func (b *builder) bytes() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(b.doc); err != nil {
		return nil, err
	}
	if len(b.subs) == 0 {
		return buf.Bytes(), nil
	}
	return []byte(strings.NewReplacer(b.subs...).Replace(buf.String())), nil
}
