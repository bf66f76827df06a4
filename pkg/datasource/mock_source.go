package datasource

import (
	"context"
	"fmt"
	"sync"

	dashboard "github.com/goliatone/go-analytics-dashboard/components/dashboard"
)

// MockSource serves a mutable in-memory fixture document for tests or local demos.
type MockSource struct {
	mu  sync.RWMutex
	doc dashboard.FixtureDocument
	err error
}

// NewMockSource seeds the source with doc. A nil doc starts from the embedded defaults.
func NewMockSource(doc *dashboard.FixtureDocument) (*MockSource, error) {
	if doc == nil {
		defaults, err := dashboard.DefaultFixtures()
		if err != nil {
			return nil, err
		}
		doc = defaults
	}
	return &MockSource{doc: cloneDocument(doc)}, nil
}

// Fixtures implements dashboard.FixtureSource and returns a copy of the current document.
func (s *MockSource) Fixtures(ctx context.Context) (*dashboard.FixtureDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	doc := cloneDocument(&s.doc)
	return &doc, nil
}

// SetDataset replaces one row set.
func (s *MockSource) SetDataset(name string, rows []dashboard.Row) error {
	if name == "" {
		return fmt.Errorf("datasource: dataset name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc.Datasets == nil {
		s.doc.Datasets = map[string][]dashboard.Row{}
	}
	s.doc.Datasets[name] = cloneRows(rows)
	return nil
}

// SetMetric replaces one precomputed metric.
func (s *MockSource) SetMetric(name string, metric dashboard.MetricFixture) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc.Metrics == nil {
		s.doc.Metrics = map[string]dashboard.MetricFixture{}
	}
	s.doc.Metrics[name] = metric
}

// FailWith makes subsequent loads return err. Passing nil clears the failure.
func (s *MockSource) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func cloneDocument(doc *dashboard.FixtureDocument) dashboard.FixtureDocument {
	out := dashboard.FixtureDocument{
		Version:  doc.Version,
		Name:     doc.Name,
		Source:   doc.Source,
		Datasets: make(map[string][]dashboard.Row, len(doc.Datasets)),
	}
	for name, rows := range doc.Datasets {
		out.Datasets[name] = cloneRows(rows)
	}
	if doc.Metrics != nil {
		out.Metrics = make(map[string]dashboard.MetricFixture, len(doc.Metrics))
		for name, metric := range doc.Metrics {
			out.Metrics[name] = metric
		}
	}
	return out
}

func cloneRows(rows []dashboard.Row) []dashboard.Row {
	out := make([]dashboard.Row, len(rows))
	for i, row := range rows {
		values := make(map[string]any, len(row.Values))
		for k, v := range row.Values {
			values[k] = v
		}
		out[i] = dashboard.Row{ID: row.ID, Values: values}
	}
	return out
}
