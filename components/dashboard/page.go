package dashboard

import (
	"fmt"
	"strings"
)

// FilterAll is the page filter value that leaves rows unconstrained.
const FilterAll = "all"

// Aggregations understood by MetricSpec.
const (
	AggregateSum   = "sum"
	AggregateAvg   = "avg"
	AggregateCount = "count"
)

// PageDefinition declares what a dashboard page renders and where it is routed.
type PageDefinition struct {
	Code           string            `json:"code" yaml:"code"`
	Title          string            `json:"title" yaml:"title"`
	TitleLocalized map[string]string `json:"title_localized,omitempty" yaml:"title_localized,omitempty"`
	Description    string            `json:"description,omitempty" yaml:"description,omitempty"`
	Path           string            `json:"path" yaml:"path"`
	Icon           string            `json:"icon,omitempty" yaml:"icon,omitempty"`
	Metrics        []MetricSpec      `json:"metrics,omitempty" yaml:"metrics,omitempty"`
	Charts         []ChartSpec       `json:"charts,omitempty" yaml:"charts,omitempty"`
	Tables         []TableBinding    `json:"tables,omitempty" yaml:"tables,omitempty"`
	Filters        []PageFilter      `json:"filters,omitempty" yaml:"filters,omitempty"`
}

// TitleForLocale returns the display title for the requested locale.
func (def PageDefinition) TitleForLocale(locale string) string {
	return ResolveLocalizedValue(def.TitleLocalized, locale, def.Title)
}

// Table finds a table binding by schema id.
func (def PageDefinition) Table(id string) (TableBinding, bool) {
	for _, binding := range def.Tables {
		if binding.Schema.ID == id {
			return binding, true
		}
	}
	return TableBinding{}, false
}

// Filter finds a page filter by key.
func (def PageDefinition) Filter(key string) (PageFilter, bool) {
	for _, filter := range def.Filters {
		if filter.Key == key {
			return filter, true
		}
	}
	return PageFilter{}, false
}

// Validate checks the definition is routable and internally consistent.
func (def PageDefinition) Validate() error {
	if def.Code == "" {
		return fmt.Errorf("dashboard: page code is required")
	}
	if !strings.HasPrefix(def.Path, "/") {
		return fmt.Errorf("dashboard: page %s path must start with /", def.Code)
	}
	seen := map[string]struct{}{}
	for _, binding := range def.Tables {
		if binding.Schema.ID == "" || binding.Dataset == "" {
			return fmt.Errorf("dashboard: page %s has a table without id or dataset", def.Code)
		}
		if _, ok := seen[binding.Schema.ID]; ok {
			return fmt.Errorf("dashboard: page %s duplicates table %s", def.Code, binding.Schema.ID)
		}
		seen[binding.Schema.ID] = struct{}{}
	}
	for _, chart := range def.Charts {
		if !supportedChartType(strings.ToLower(chart.Type)) {
			return fmt.Errorf("dashboard: page %s chart %s has unsupported type %q", def.Code, chart.ID, chart.Type)
		}
	}
	return nil
}

// MetricSpec binds a metric card to fixture data. When Aggregate is set the
// value is computed from the page-filtered dataset; otherwise the precomputed
// fixture metric of the same key is used.
type MetricSpec struct {
	Key       string           `json:"key" yaml:"key"`
	Label     string           `json:"label" yaml:"label"`
	Unit      string           `json:"unit,omitempty" yaml:"unit,omitempty"`
	Policy    *ThresholdPolicy `json:"policy,omitempty" yaml:"policy,omitempty"`
	Dataset   string           `json:"dataset,omitempty" yaml:"dataset,omitempty"`
	Field     string           `json:"field,omitempty" yaml:"field,omitempty"`
	Aggregate string           `json:"aggregate,omitempty" yaml:"aggregate,omitempty"`
}

// TableBinding attaches a table schema to a dataset.
type TableBinding struct {
	Schema  TableSchema `json:"schema" yaml:"schema"`
	Dataset string      `json:"dataset" yaml:"dataset"`
}

// PageFilter is a page-level dropdown constraining every dataset row that
// carries Field. Rows without the field are left alone.
type PageFilter struct {
	Key     string   `json:"key" yaml:"key"`
	Label   string   `json:"label" yaml:"label"`
	Field   string   `json:"field" yaml:"field"`
	Options []string `json:"options" yaml:"options"`
	Default string   `json:"default,omitempty" yaml:"default,omitempty"`
}

// DefaultValue returns the value a freshly mounted page starts with.
func (f PageFilter) DefaultValue() string {
	if f.Default == "" {
		return FilterAll
	}
	return f.Default
}

// Allows reports whether value is a valid selection for the filter.
func (f PageFilter) Allows(value string) bool {
	if value == FilterAll {
		return true
	}
	for _, opt := range f.Options {
		if opt == value {
			return true
		}
	}
	return false
}

// ApplyPageFilters keeps rows matching every active filter. The result is a copy.
func ApplyPageFilters(rows []Row, filters []PageFilter, values map[string]string) []Row {
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if rowMatchesFilters(row, filters, values) {
			out = append(out, row)
		}
	}
	return out
}

func rowMatchesFilters(row Row, filters []PageFilter, values map[string]string) bool {
	for _, filter := range filters {
		value := values[filter.Key]
		if value == "" || value == FilterAll {
			continue
		}
		v, ok := row.Value(filter.Field)
		if !ok {
			continue
		}
		if !strings.EqualFold(displayValue(v), value) {
			return false
		}
	}
	return true
}

// metricInput resolves a metric spec against fixtures and the page-filtered dataset.
func metricInput(spec MetricSpec, doc *FixtureDocument, rows []Row) (MetricInput, bool) {
	in := MetricInput{Key: spec.Key, Label: spec.Label, Unit: spec.Unit}
	fixture, hasFixture := MetricFixture{}, false
	if doc != nil {
		fixture, hasFixture = doc.Metrics[spec.Key]
	}
	if hasFixture {
		in.Value = fixture.Value
		in.PriorValue = fixture.Prior
		in.Delta = fixture.Delta
	}
	if spec.Aggregate == "" {
		return in, hasFixture
	}
	value, ok := aggregateRows(rows, spec.Field, spec.Aggregate)
	if !ok {
		return in, false
	}
	in.Value = value
	return in, true
}

func aggregateRows(rows []Row, field, aggregate string) (float64, bool) {
	switch aggregate {
	case AggregateCount:
		return float64(len(rows)), true
	case AggregateSum, AggregateAvg:
		var (
			total float64
			count int
		)
		for _, row := range rows {
			v, ok := row.Value(field)
			if !ok {
				continue
			}
			if f, ok := numericValue(v); ok {
				total += f
				count++
			}
		}
		if aggregate == AggregateSum {
			return total, true
		}
		if count == 0 {
			return 0, true
		}
		return total / float64(count), true
	default:
		return 0, false
	}
}
