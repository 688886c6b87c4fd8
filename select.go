package oaisim

import "sort"

// ListArgs are the selective harvesting arguments of ListIdentifiers and
// ListRecords. A nil pointer means the argument was not given, a pointer
// to the empty string that it was given without a value.
type ListArgs struct {
	MetadataPrefix string
	From           *string
	Until          *string
	Set            *string
}

// SelectItem returns the item with the given identifier.
func (r *Repository) SelectItem(identifier string) (*Item, error) {
	item, ok := r.items[identifier]
	if identifier == "" || !ok {
		return nil, IdDoesNotExist(identifier)
	}
	return item, nil
}

// SelectRecord returns the record for an identifier in a metadata format.
func (r *Repository) SelectRecord(identifier, prefix string) (*Record, error) {
	item, err := r.SelectItem(identifier)
	if err != nil {
		return nil, err
	}
	rec, ok := item.Record(prefix)
	if !ok {
		return nil, CannotDisseminateFormat(prefix)
	}
	return rec, nil
}

// SelectRecords returns the records matching the selective harvesting
// arguments, in identifier order. An empty selection is an error
// (noRecordsMatch), as required by the protocol.
func (r *Repository) SelectRecords(args ListArgs) ([]*Record, error) {
	var from, until Datestamp
	var err error
	if args.From != nil {
		if from, err = ParseDatestamp(*args.From, ""); err != nil {
			return nil, err
		}
	}
	if args.Until != nil {
		if until, err = ParseDatestamp(*args.Until, ""); err != nil {
			return nil, err
		}
	}
	if !from.IsZero() && !until.IsZero() && from.Granularity() != until.Granularity() {
		return nil, BadArgumentf("The from (%s) and until (%s) arguments have different granularities.",
			sanitize(from.String()), sanitize(until.String()))
	}
	if GranularityFromFormat(r.Granularity) == Days {
		for _, d := range []Datestamp{from, until} {
			if d.Granularity() == Seconds {
				return nil, BadArgumentf("Datestamp %s is finer than the repository granularity %s.",
					sanitize(d.String()), r.Granularity)
			}
		}
	}
	if !from.IsZero() && !until.IsZero() && from.After(until) {
		return nil, NoRecordsMatch()
	}
	if !until.IsZero() && !r.EarliestDatestamp.IsZero() && until.Before(r.EarliestDatestamp) {
		return nil, NoRecordsMatch()
	}
	if args.Set != nil && !r.hasSets() {
		return nil, NoSetHierarchy()
	}
	if !r.supportsFormat(args.MetadataPrefix) {
		return nil, CannotDisseminateFormat(args.MetadataPrefix)
	}
	var records []*Record
	for _, item := range r.Items() {
		if args.Set != nil && !item.InSet(*args.Set) {
			continue
		}
		rec, ok := item.Record(args.MetadataPrefix)
		if !ok {
			continue
		}
		if !from.IsZero() && rec.datestamp.Before(from) {
			continue
		}
		if !until.IsZero() && rec.datestamp.After(until) {
			continue
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, NoRecordsMatch()
	}
	return records, nil
}

// MetadataFormats lists metadata prefixes. With an identifier, only the
// formats of that item, otherwise (nil) all formats used in this
// repository. An empty identifier matches no item.
func (r *Repository) MetadataFormats(identifier *string) ([]string, error) {
	var prefixes []string
	if identifier != nil {
		item, err := r.SelectItem(*identifier)
		if err != nil {
			return nil, err
		}
		prefixes = item.MetadataFormats()
	} else {
		seen := make(map[string]bool)
		for _, item := range r.items {
			for p := range item.records {
				seen[p] = true
			}
		}
		prefixes = sortedKeys(seen)
	}
	if len(prefixes) == 0 {
		return nil, NoMetadataFormats()
	}
	return prefixes, nil
}

// SetSpecs lists all setSpec values used in this repository, including
// ancestors in the set hierarchy.
func (r *Repository) SetSpecs() ([]string, error) {
	seen := make(map[string]bool)
	for _, item := range r.items {
		for _, s := range item.sets {
			seen[s] = true
		}
	}
	if len(seen) == 0 {
		return nil, NoSetHierarchy()
	}
	return sortedKeys(seen), nil
}

// SetInfo returns the configured name and description of a set.
func (r *Repository) SetInfo(spec string) (SetInfo, bool) {
	info, ok := r.sets[spec]
	return info, ok
}

// FormatInfo returns schema and namespace for a metadata format, falling
// back to well known formats.
func (r *Repository) FormatInfo(prefix string) (FormatInfo, bool) {
	if info, ok := r.formats[prefix]; ok {
		return info, true
	}
	info, ok := knownFormats[prefix]
	return info, ok
}

func (r *Repository) hasSets() bool {
	for _, item := range r.items {
		if len(item.sets) > 0 {
			return true
		}
	}
	return false
}

func (r *Repository) supportsFormat(prefix string) bool {
	for _, item := range r.items {
		if _, ok := item.records[prefix]; ok {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedCopy(s []string) []string {
	c := append([]string(nil), s...)
	sort.Strings(c)
	return c
}
