package oaisim

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrUnknownConfigFormat is returned for repository files that are neither
// JSON nor YAML.
var ErrUnknownConfigFormat = errors.New("repository file must be .json, .yaml or .yml, optionally .gz")

// Config describes a repository, as read from a JSON or YAML file.
type Config struct {
	RepositoryName    string         `json:"repositoryName" yaml:"repositoryName"`
	ProtocolVersion   string         `json:"protocolVersion" yaml:"protocolVersion"`
	AdminEmail        StringList     `json:"adminEmail" yaml:"adminEmail"`
	EarliestDatestamp string         `json:"earliestDatestamp" yaml:"earliestDatestamp"`
	DeletedRecord     string         `json:"deletedRecord" yaml:"deletedRecord"`
	Granularity       string         `json:"granularity" yaml:"granularity"`
	Records           []RecordConfig `json:"records" yaml:"records"`
	Sets              []SetConfig    `json:"sets,omitempty" yaml:"sets,omitempty"`
	MetadataFormats   []FormatConfig `json:"metadataFormats,omitempty" yaml:"metadataFormats,omitempty"`
}

// RecordConfig is a single record. Records sharing an identifier belong to
// the same item.
type RecordConfig struct {
	Identifier     string   `json:"identifier" yaml:"identifier"`
	MetadataPrefix string   `json:"metadataPrefix" yaml:"metadataPrefix"`
	Datestamp      string   `json:"datestamp" yaml:"datestamp"`
	Status         string   `json:"status,omitempty" yaml:"status,omitempty"`
	Metadata       string   `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	About          []string `json:"about,omitempty" yaml:"about,omitempty"`
	Sets           []string `json:"sets,omitempty" yaml:"sets,omitempty"`
}

// SetConfig adds a name and description to a setSpec.
type SetConfig struct {
	Spec        string `json:"setSpec" yaml:"setSpec"`
	Name        string `json:"setName,omitempty" yaml:"setName,omitempty"`
	Description string `json:"setDescription,omitempty" yaml:"setDescription,omitempty"`
}

// FormatConfig describes a metadata format for ListMetadataFormats.
type FormatConfig struct {
	Prefix    string `json:"metadataPrefix" yaml:"metadataPrefix"`
	Schema    string `json:"schema" yaml:"schema"`
	Namespace string `json:"metadataNamespace" yaml:"metadataNamespace"`
}

// StringList accepts a single string or a list of strings.
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	if bytes.HasPrefix(bytes.TrimSpace(b), []byte("[")) {
		var ss []string
		if err := json.Unmarshal(b, &ss); err != nil {
			return err
		}
		*l = ss
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*l = StringList{s}
	return nil
}

func (l *StringList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		var ss []string
		if err := value.Decode(&ss); err != nil {
			return err
		}
		*l = ss
		return nil
	}
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	*l = StringList{s}
	return nil
}

// LoadConfig reads a repository file. A leading ~ is expanded. The format
// is chosen by extension, gzip compressed files are read transparently.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	expanded, err := homedir.Expand(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "expand %s", path)
	}
	b, err := readMaybeCompressed(expanded)
	if err != nil {
		return cfg, errors.Wrap(err, "read repository file")
	}
	switch formatExt(expanded) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		err = dec.Decode(&cfg)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		err = dec.Decode(&cfg)
	default:
		return cfg, ErrUnknownConfigFormat
	}
	if err != nil {
		return cfg, errors.Wrapf(err, "decode %s", expanded)
	}
	return cfg, nil
}

// LoadRepository reads and validates a repository file.
func LoadRepository(path string, logger *zap.Logger) (*Repository, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	repo, err := NewRepository(cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid repository %s", path)
	}
	if logger != nil {
		logger.Info("repository initialized",
			zap.String("path", path),
			zap.Int("items", repo.Len()),
			zap.Int("records", repo.NumRecords()))
	}
	return repo, nil
}

// NewRepository validates a configuration and builds the repository. All
// problems found are reported together.
func NewRepository(cfg Config) (*Repository, error) {
	var errs error
	repo := newRepository()
	repo.Name = cfg.RepositoryName
	repo.adminEmails = copyStrings(cfg.AdminEmail)
	if cfg.ProtocolVersion != "" {
		repo.ProtocolVersion = cfg.ProtocolVersion
	}
	switch cfg.DeletedRecord {
	case "":
	case DeletedNo, DeletedTransient, DeletedPersistent:
		repo.DeletedRecord = cfg.DeletedRecord
	default:
		errs = multierr.Append(errs, fmt.Errorf("deletedRecord must be one of no, transient, persistent, got %q", cfg.DeletedRecord))
	}
	if cfg.Granularity != "" {
		if GranularityFromFormat(cfg.Granularity) == "" {
			errs = multierr.Append(errs, fmt.Errorf("granularity must be %s or %s, got %q",
				DayGranularityFormat, SecondGranularityFormat, cfg.Granularity))
		} else {
			repo.Granularity = cfg.Granularity
		}
	}
	if cfg.EarliestDatestamp != "" {
		d, err := ParseDatestamp(cfg.EarliestDatestamp, "")
		if err != nil {
			errs = multierr.Append(errs, errors.Wrap(err, "earliestDatestamp"))
		} else {
			repo.EarliestDatestamp = d
		}
	}
	for i, rc := range cfg.Records {
		errs = multierr.Append(errs, repo.addRecordConfig(i, rc))
	}
	for _, sc := range cfg.Sets {
		if sc.Spec == "" {
			errs = multierr.Append(errs, errors.New("set without setSpec"))
			continue
		}
		repo.sets[sc.Spec] = SetInfo{Name: sc.Name, Description: sc.Description}
	}
	for _, fc := range cfg.MetadataFormats {
		if fc.Prefix == "" {
			errs = multierr.Append(errs, errors.New("metadata format without metadataPrefix"))
			continue
		}
		repo.formats[fc.Prefix] = FormatInfo{Schema: fc.Schema, Namespace: fc.Namespace}
	}
	if errs != nil {
		return nil, errs
	}
	return repo.seal(), nil
}

func (r *Repository) addRecordConfig(i int, rc RecordConfig) error {
	if rc.Identifier == "" {
		return fmt.Errorf("record %d: missing identifier", i)
	}
	where := fmt.Sprintf("record %d (%s)", i, rc.Identifier)
	prefix := rc.MetadataPrefix
	if prefix == "" {
		prefix = "oai_dc"
	}
	if rc.Status != "" && rc.Status != StatusDeleted {
		return fmt.Errorf("%s: status must be %q or absent, got %q", where, StatusDeleted, rc.Status)
	}
	if rc.Status == StatusDeleted && rc.Metadata != "" {
		return fmt.Errorf("%s: deleted record must not have metadata", where)
	}
	if rc.Datestamp == "" {
		return fmt.Errorf("%s: missing datestamp", where)
	}
	ds, err := ParseDatestamp(rc.Datestamp, "")
	if err != nil {
		return errors.Wrap(err, where)
	}
	if GranularityFromFormat(r.Granularity) == Days && ds.Granularity() == Seconds {
		return fmt.Errorf("%s: datestamp %s is finer than repository granularity %s", where, rc.Datestamp, r.Granularity)
	}
	if !r.EarliestDatestamp.IsZero() && ds.Before(r.EarliestDatestamp) {
		return fmt.Errorf("%s: datestamp %s is earlier than earliestDatestamp %s", where, rc.Datestamp, r.EarliestDatestamp)
	}
	item, ok := r.items[rc.Identifier]
	if !ok {
		item = NewItem(rc.Identifier, rc.Sets)
		r.addItem(item)
	} else if rc.Sets != nil && !equalStrings(item.sets, expandSets(rc.Sets)) {
		return fmt.Errorf("%s: sets differ from an earlier record of the same item", where)
	}
	if _, dup := item.Record(prefix); dup {
		return fmt.Errorf("%s: duplicate record for metadataPrefix %s", where, prefix)
	}
	item.addRecord(NewRecord(prefix, ds, rc.Status, rc.Metadata, rc.About))
	return nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
