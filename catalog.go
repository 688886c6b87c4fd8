package oaisim

import (
	"sort"
	"strings"
)

// StatusDeleted marks a record as deleted in its header.
const StatusDeleted = "deleted"

// Deleted record policies (4.2 Identify).
const (
	DeletedNo         = "no"
	DeletedTransient  = "transient"
	DeletedPersistent = "persistent"
)

// Item in OAI-PMH. An item has zero or more records, each in a different
// metadata format, and is a member of zero or more sets.
type Item struct {
	identifier string
	sets       []string
	records    map[string]*Record
}

// NewItem creates an item. Set membership is expanded along the set
// hierarchy, a:b:c makes the item a member of a, a:b and a:b:c.
func NewItem(identifier string, sets []string) *Item {
	return &Item{
		identifier: identifier,
		sets:       expandSets(sets),
		records:    make(map[string]*Record),
	}
}

func expandSets(sets []string) []string {
	seen := make(map[string]bool)
	for _, spec := range sets {
		parts := strings.Split(spec, ":")
		for i := range parts {
			seen[strings.Join(parts[:i+1], ":")] = true
		}
	}
	expanded := make([]string, 0, len(seen))
	for s := range seen {
		expanded = append(expanded, s)
	}
	sort.Strings(expanded)
	return expanded
}

func (i *Item) Identifier() string { return i.identifier }

// SetSpecs returns a copy of the expanded, sorted set memberships.
func (i *Item) SetSpecs() []string { return copyStrings(i.sets) }

// InSet is an exact match against the expanded memberships.
func (i *Item) InSet(spec string) bool {
	n := sort.SearchStrings(i.sets, spec)
	return n < len(i.sets) && i.sets[n] == spec
}

// addRecord links a record to this item, replacing any record in the same
// format. Only used while building a repository.
func (i *Item) addRecord(r *Record) {
	r.item = i
	i.records[r.prefix] = r
}

// Record returns the record in the given format, if any.
func (i *Item) Record(prefix string) (*Record, bool) {
	r, ok := i.records[prefix]
	return r, ok
}

// MetadataFormats lists the sorted metadata prefixes of this item.
func (i *Item) MetadataFormats() []string {
	prefixes := make([]string, 0, len(i.records))
	for p := range i.records {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)
	return prefixes
}

// Record in OAI-PMH, the metadata of one item in one format.
type Record struct {
	item      *Item
	prefix    string
	datestamp Datestamp
	status    string
	metadata  string
	about     []string
}

// NewRecord creates a record, which is not yet attached to an item.
func NewRecord(prefix string, datestamp Datestamp, status, metadata string, about []string) *Record {
	return &Record{
		prefix:    prefix,
		datestamp: datestamp,
		status:    status,
		metadata:  metadata,
		about:     copyStrings(about),
	}
}

// Identifier of the owning item.
func (r *Record) Identifier() string { return r.item.identifier }

// SetSpecs of the owning item.
func (r *Record) SetSpecs() []string { return copyStrings(r.item.sets) }

func (r *Record) MetadataPrefix() string { return r.prefix }
func (r *Record) Datestamp() Datestamp   { return r.datestamp }
func (r *Record) Status() string         { return r.status }
func (r *Record) IsDeleted() bool        { return r.status == StatusDeleted }

// Metadata is the raw XML payload, empty when absent.
func (r *Record) Metadata() string { return r.metadata }

// About returns raw XML about fragments.
func (r *Record) About() []string { return copyStrings(r.about) }

// SetInfo describes a set beyond its setSpec.
type SetInfo struct {
	Name        string
	Description string // raw XML
}

// FormatInfo describes a metadata format.
type FormatInfo struct {
	Schema    string
	Namespace string
}

var knownFormats = map[string]FormatInfo{
	"oai_dc": {
		Schema:    "http://www.openarchives.org/OAI/2.0/oai_dc.xsd",
		Namespace: "http://www.openarchives.org/OAI/2.0/oai_dc/",
	},
}

// Repository for the simulator. Items are indexed by identifier. A
// repository is built once and read-only afterwards, so it can be shared
// between concurrent requests.
type Repository struct {
	Name              string
	ProtocolVersion   string
	EarliestDatestamp Datestamp
	DeletedRecord     string
	Granularity       string

	adminEmails []string
	items       map[string]*Item
	ids         []string
	sets        map[string]SetInfo
	formats     map[string]FormatInfo
}

func newRepository() *Repository {
	return &Repository{
		ProtocolVersion: "2.0",
		DeletedRecord:   DeletedNo,
		Granularity:     DayGranularityFormat,
		items:           make(map[string]*Item),
		sets:            make(map[string]SetInfo),
		formats:         make(map[string]FormatInfo),
	}
}

func (r *Repository) addItem(item *Item) {
	if _, ok := r.items[item.identifier]; !ok {
		r.ids = append(r.ids, item.identifier)
	}
	r.items[item.identifier] = item
}

// seal finishes construction. No mutation happens afterwards.
func (r *Repository) seal() *Repository {
	sort.Strings(r.ids)
	return r
}

// AdminEmails returns the administrator addresses shown by Identify.
func (r *Repository) AdminEmails() []string { return copyStrings(r.adminEmails) }

// Len returns the number of items.
func (r *Repository) Len() int { return len(r.items) }

// NumRecords returns the number of records over all items.
func (r *Repository) NumRecords() int {
	var n int
	for _, item := range r.items {
		n += len(item.records)
	}
	return n
}

// Items returns all items in identifier order.
func (r *Repository) Items() []*Item {
	items := make([]*Item, 0, len(r.ids))
	for _, id := range r.ids {
		items = append(items, r.items[id])
	}
	return items
}

// copyStrings keeps callers from changing slices shared between requests.
func copyStrings(s []string) []string {
	c := make([]string, len(s))
	copy(c, s)
	return c
}
