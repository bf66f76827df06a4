package dashboard

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/ettle/strcase"
	"gopkg.in/yaml.v3"
)

const (
	fixturesVersionV1 = "1"
	// FixturesVersion exposes the current fixtures format version for tooling.
	FixturesVersion = fixturesVersionV1
)

//go:embed fixtures/*.yaml
var embeddedFixtures embed.FS

// FixtureDocument models a YAML/JSON document holding the row sets and
// precomputed metrics the pages render.
type FixtureDocument struct {
	Version  string                   `json:"version" yaml:"version"`
	Name     string                   `json:"name,omitempty" yaml:"name,omitempty"`
	Datasets map[string][]Row         `json:"datasets" yaml:"datasets"`
	Metrics  map[string]MetricFixture `json:"metrics,omitempty" yaml:"metrics,omitempty"`
	Source   string                   `json:"-" yaml:"-"`
}

// MetricFixture is a precomputed scalar with optional comparison data.
type MetricFixture struct {
	Value float64  `json:"value" yaml:"value"`
	Prior *float64 `json:"prior,omitempty" yaml:"prior,omitempty"`
	Delta *float64 `json:"delta,omitempty" yaml:"delta,omitempty"`
}

// Dataset returns a copy of the named row set.
func (doc *FixtureDocument) Dataset(name string) ([]Row, bool) {
	if doc == nil {
		return nil, false
	}
	rows, ok := doc.Datasets[name]
	if !ok {
		return nil, false
	}
	return append([]Row(nil), rows...), true
}

// ReadFixtures loads a fixtures file from disk.
func ReadFixtures(path string) (*FixtureDocument, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("dashboard: open fixtures %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeFixtures(f)
	if err != nil {
		return nil, fmt.Errorf("dashboard: decode fixtures %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeFixtures reads a fixtures document from any reader.
func DecodeFixtures(r io.Reader) (*FixtureDocument, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc FixtureDocument
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("dashboard: fixtures document is empty")
		}
		return nil, fmt.Errorf("dashboard: parse fixtures: %w", err)
	}
	if err := NormalizeFixtures(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// NormalizeFixtures applies defaults, snake-cases field keys, and validates the document.
func NormalizeFixtures(doc *FixtureDocument) error {
	if doc == nil {
		return fmt.Errorf("dashboard: fixtures document is nil")
	}
	if doc.Version == "" {
		doc.Version = fixturesVersionV1
	}
	for name, rows := range doc.Datasets {
		for i := range rows {
			rows[i].Values = normalizeFieldKeys(rows[i].Values)
		}
		doc.Datasets[name] = rows
	}
	return doc.Validate()
}

// Validate ensures the document satisfies required fields.
func (doc *FixtureDocument) Validate() error {
	if doc.Version != fixturesVersionV1 {
		return fmt.Errorf("dashboard: unsupported fixtures version %q", doc.Version)
	}
	var errs []error
	for name, rows := range doc.Datasets {
		seen := make(map[string]struct{}, len(rows))
		for idx, row := range rows {
			if row.ID == "" {
				errs = append(errs, fmt.Errorf("dashboard: dataset %s row %d is missing id", name, idx))
				continue
			}
			if _, exists := seen[row.ID]; exists {
				errs = append(errs, fmt.Errorf("dashboard: dataset %s duplicates row id %s", name, row.ID))
			}
			seen[row.ID] = struct{}{}
		}
	}
	return errors.Join(errs...)
}

func normalizeFieldKeys(values map[string]any) map[string]any {
	if len(values) == 0 {
		return values
	}
	out := make(map[string]any, len(values))
	for key, value := range values {
		out[strcase.ToSnake(key)] = value
	}
	return out
}

// StaticFixtureSource serves an in-memory document.
type StaticFixtureSource struct {
	Document *FixtureDocument
}

// Fixtures implements FixtureSource.
func (s StaticFixtureSource) Fixtures(context.Context) (*FixtureDocument, error) {
	if s.Document == nil {
		return nil, fmt.Errorf("dashboard: static fixture source has no document")
	}
	return s.Document, nil
}

// FileFixtureSource reads the document from disk on every load.
type FileFixtureSource struct {
	Path string
}

// Fixtures implements FixtureSource.
func (s FileFixtureSource) Fixtures(ctx context.Context) (*FixtureDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ReadFixtures(s.Path)
}

var (
	defaultFixturesOnce sync.Once
	defaultFixtures     *FixtureDocument
	defaultFixturesErr  error
)

// DefaultFixtures returns the embedded demo document.
func DefaultFixtures() (*FixtureDocument, error) {
	defaultFixturesOnce.Do(func() {
		f, err := embeddedFixtures.Open("fixtures/default.yaml")
		if err != nil {
			defaultFixturesErr = fmt.Errorf("dashboard: open embedded fixtures: %w", err)
			return
		}
		defer f.Close()
		doc, err := DecodeFixtures(f)
		if err != nil {
			defaultFixturesErr = err
			return
		}
		doc.Source = "embedded:fixtures/default.yaml"
		defaultFixtures = doc
	})
	return defaultFixtures, defaultFixturesErr
}

// DefaultFixtureSource serves the embedded demo document.
func DefaultFixtureSource() FixtureSource {
	return defaultFixtureSource{}
}

type defaultFixtureSource struct{}

func (defaultFixtureSource) Fixtures(context.Context) (*FixtureDocument, error) {
	return DefaultFixtures()
}
