// Package jsonfile persists the hierarchy cache as a single JSON document,
// the layout the host application keeps its plugin data in. Each file
// entry is validated on load; entries that do not match the record schema
// are dropped individually so they get re-derived.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"oot/internal/domain"
	"oot/internal/ports"
)

// DefaultPath is the location of the state file relative to the vault.
const DefaultPath = ".oot/data.json"

const recordSchemaURL = "oot://schema/record.json"

var _ ports.StateStore = (*Store)(nil)

// stateFile is the on-disk layout.
type stateFile struct {
	IgnoredFolders    []string                   `json:"ignoredFolders"`
	SuperPropertyName string                     `json:"superPropertyName"`
	Files             map[string]json.RawMessage `json:"files"`
}

type fileEntry struct {
	Extends         string   `json:"extends,omitempty"`
	ExtendedBy      []string `json:"extendedBy"`
	Hierarchy       []string `json:"hierarchy"`
	UpdatedAt       string   `json:"updatedAt,omitempty"`
	SoftExcludedAt  string   `json:"softExcludedAt,omitempty"`
	ErrorToBeSolved string   `json:"errorToBeSolved,omitempty"`
}

// Store implements ports.StateStore on a JSON file.
type Store struct {
	path   string
	schema *jsonschema.Schema
}

// New creates a store writing to path. The file is created on first save.
func New(path string) (*Store, error) {
	schema, err := compileRecordSchema()
	if err != nil {
		return nil, err
	}
	return &Store{path: path, schema: schema}, nil
}

// Path returns the state file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the state file. A missing file yields a nil state.
func (s *Store) Load(ctx context.Context) (*domain.State, []domain.LoadIssue, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read state: %w", err)
	}

	var file stateFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("decode state %s: %w", s.path, err)
	}

	state := &domain.State{
		PropertyName:   file.SuperPropertyName,
		IgnoredFolders: file.IgnoredFolders,
		Files:          make(map[string]*domain.Record, len(file.Files)),
	}
	var issues []domain.LoadIssue
	for _, path := range sortedKeys(file.Files) {
		rec, err := s.decodeEntry(path, file.Files[path])
		if err != nil {
			issues = append(issues, domain.LoadIssue{Path: path, Reason: err.Error()})
			continue
		}
		state.Files[path] = rec
	}
	return state, issues, nil
}

// Save writes the whole state through a temp file rename.
func (s *Store) Save(ctx context.Context, state *domain.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	file := stateFile{
		IgnoredFolders:    state.IgnoredFolders,
		SuperPropertyName: state.PropertyName,
		Files:             make(map[string]json.RawMessage, len(state.Files)),
	}
	if file.IgnoredFolders == nil {
		file.IgnoredFolders = []string{}
	}
	for path, rec := range state.Files {
		raw, err := json.Marshal(encodeEntry(rec))
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		file.Files[path] = raw
	}

	data, err := json.MarshalIndent(file, "", "\t")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

// Close is a no-op; every Save is complete on return.
func (s *Store) Close() error {
	return nil
}

func (s *Store) decodeEntry(path string, raw json.RawMessage) (*domain.Record, error) {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	if err := s.schema.Validate(inst); err != nil {
		return nil, err
	}

	var entry fileEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, err
	}
	rec := &domain.Record{
		Path:     path,
		Parent:   entry.Extends,
		Children: entry.ExtendedBy,
		Chain:    entry.Hierarchy,
	}
	if rec.Children == nil {
		rec.Children = []string{}
	}
	if rec.LastSyncedAt, err = parseTime(entry.UpdatedAt); err != nil {
		return nil, fmt.Errorf("updatedAt: %w", err)
	}
	if rec.SoftExcludedAt, err = parseTime(entry.SoftExcludedAt); err != nil {
		return nil, fmt.Errorf("softExcludedAt: %w", err)
	}
	if rec.Error, err = domain.ParseErrorKind(entry.ErrorToBeSolved); err != nil {
		return nil, err
	}
	return rec, nil
}

func encodeEntry(rec *domain.Record) fileEntry {
	entry := fileEntry{
		Extends:         rec.Parent,
		ExtendedBy:      rec.Children,
		Hierarchy:       rec.Chain,
		UpdatedAt:       formatTime(rec.LastSyncedAt),
		SoftExcludedAt:  formatTime(rec.SoftExcludedAt),
		ErrorToBeSolved: rec.Error.String(),
	}
	if entry.ExtendedBy == nil {
		entry.ExtendedBy = []string{}
	}
	if entry.Hierarchy == nil {
		entry.Hierarchy = []string{rec.Path}
	}
	return entry
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// recordSchema is the schema every persisted file entry must match. The
// error kind enum is filled in from the domain.
const recordSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["extendedBy", "hierarchy"],
	"properties": {
		"extends": {"type": "string"},
		"extendedBy": {"type": "array", "items": {"type": "string", "minLength": 1}},
		"hierarchy": {"type": "array", "items": {"type": "string", "minLength": 1}, "minItems": 1},
		"updatedAt": {"type": "string", "format": "date-time"},
		"softExcludedAt": {"type": "string", "format": "date-time"},
		"errorToBeSolved": {"enum": %s}
	}
}`

func compileRecordSchema() (*jsonschema.Schema, error) {
	names, err := json.Marshal(domain.ErrorKindNames())
	if err != nil {
		return nil, err
	}
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(fmt.Sprintf(recordSchema, names)))
	if err != nil {
		return nil, fmt.Errorf("parse record schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	c.AssertFormat()
	if err := c.AddResource(recordSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("add record schema: %w", err)
	}
	compiled, err := c.Compile(recordSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile record schema: %w", err)
	}
	return compiled, nil
}
