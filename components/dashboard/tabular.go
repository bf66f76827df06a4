package dashboard

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// ColumnKind describes how a column's values compare and validate.
type ColumnKind string

const (
	ColumnString ColumnKind = "string"
	ColumnNumber ColumnKind = "number"
	ColumnStatus ColumnKind = "status"
)

// SortDirection flips comparator polarity.
type SortDirection string

const (
	SortAscending  SortDirection = "asc"
	SortDescending SortDirection = "desc"
)

// SelectionScope controls which rows "select all" toggles.
type SelectionScope string

const (
	// SelectionPage selects the rows rendered on the current page.
	SelectionPage SelectionScope = "page"
	// SelectionFiltered selects every row matching the current filter.
	SelectionFiltered SelectionScope = "filtered"
)

const defaultPageSize = 10

// Row is a single record of a row set. Values are scalars keyed by snake_case field names.
type Row struct {
	ID     string         `json:"id" yaml:"id"`
	Values map[string]any `json:"values" yaml:"values"`
}

// Value returns the field value, treating nil as missing.
func (r Row) Value(key string) (any, bool) {
	if r.Values == nil {
		return nil, false
	}
	v, ok := r.Values[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Column describes a table column.
type Column struct {
	Key        string     `json:"key" yaml:"key"`
	Label      string     `json:"label" yaml:"label"`
	Kind       ColumnKind `json:"kind" yaml:"kind"`
	Searchable bool       `json:"searchable,omitempty" yaml:"searchable,omitempty"`
	Options    []string   `json:"options,omitempty" yaml:"options,omitempty"`
}

// TableSchema declares a table's columns, searchable allowlist, and defaults.
type TableSchema struct {
	ID               string         `json:"id" yaml:"id"`
	Title            string         `json:"title" yaml:"title"`
	Columns          []Column       `json:"columns" yaml:"columns"`
	DefaultSort      string         `json:"default_sort,omitempty" yaml:"default_sort,omitempty"`
	DefaultDirection SortDirection  `json:"default_direction,omitempty" yaml:"default_direction,omitempty"`
	DefaultPageSize  int            `json:"default_page_size,omitempty" yaml:"default_page_size,omitempty"`
	SelectionScope   SelectionScope `json:"selection_scope,omitempty" yaml:"selection_scope,omitempty"`
}

// Column looks up a column by key.
func (s TableSchema) Column(key string) (Column, bool) {
	for _, col := range s.Columns {
		if col.Key == key {
			return col, true
		}
	}
	return Column{}, false
}

// SearchableKeys returns the fields the free-text filter matches against.
func (s TableSchema) SearchableKeys() []string {
	keys := make([]string, 0, len(s.Columns))
	for _, col := range s.Columns {
		if col.Searchable {
			keys = append(keys, col.Key)
		}
	}
	return keys
}

func (s TableSchema) pageSize() int {
	if s.DefaultPageSize > 0 {
		return s.DefaultPageSize
	}
	return defaultPageSize
}

func (s TableSchema) selectionScope() SelectionScope {
	if s.SelectionScope == "" {
		return SelectionPage
	}
	return s.SelectionScope
}

// DefaultViewConfig returns the view config a freshly mounted table starts with.
func (s TableSchema) DefaultViewConfig() ViewConfig {
	direction := s.DefaultDirection
	if direction == "" {
		direction = SortAscending
	}
	return ViewConfig{
		SortKey:       s.DefaultSort,
		SortDirection: direction,
		Page:          1,
		PageSize:      s.pageSize(),
	}
}

// ViewConfig holds the user-controlled sort/filter/pagination parameters of a table.
type ViewConfig struct {
	SortKey       string        `json:"sort_key,omitempty"`
	SortDirection SortDirection `json:"sort_direction,omitempty" validate:"omitempty,oneof=asc desc"`
	FilterText    string        `json:"filter_text,omitempty" validate:"max=200"`
	Page          int           `json:"page" validate:"gte=1"`
	PageSize      int           `json:"page_size" validate:"gte=1,lte=500"`
}

// DerivedView is the filtered, sorted, and paginated projection of a row set.
type DerivedView struct {
	Rows          []Row      `json:"rows"`
	FilteredCount int        `json:"filtered_count"`
	TotalPages    int        `json:"total_pages"`
	Config        ViewConfig `json:"config"`
}

// NormalizeViewConfig fills zero values from the schema defaults.
func NormalizeViewConfig(schema TableSchema, cfg ViewConfig) ViewConfig {
	if cfg.Page < 1 {
		cfg.Page = 1
	}
	if cfg.PageSize < 1 {
		cfg.PageSize = schema.pageSize()
	}
	if cfg.SortDirection == "" {
		cfg.SortDirection = SortAscending
	}
	return cfg
}

// ApplyView computes the visible slice of rows for one render. The input slice
// is never reordered; the returned rows are a fresh slice.
func ApplyView(schema TableSchema, rows []Row, cfg ViewConfig) DerivedView {
	cfg = NormalizeViewConfig(schema, cfg)
	filtered := FilterRows(rows, schema.SearchableKeys(), cfg.FilterText)
	SortRows(filtered, cfg.SortKey, cfg.SortDirection)
	return DerivedView{
		Rows:          Paginate(filtered, cfg.Page, cfg.PageSize),
		FilteredCount: len(filtered),
		TotalPages:    TotalPages(len(filtered), cfg.PageSize),
		Config:        cfg,
	}
}

// FilterRows keeps rows where text is a case-insensitive substring of at least
// one searchable field. Whitespace is part of the needle. Empty text keeps
// every row. The result is always a copy.
func FilterRows(rows []Row, fields []string, text string) []Row {
	needle := strings.ToLower(text)
	out := make([]Row, 0, len(rows))
	if needle == "" {
		return append(out, rows...)
	}
	for _, row := range rows {
		for _, field := range fields {
			v, ok := row.Value(field)
			if !ok {
				continue
			}
			if strings.Contains(strings.ToLower(fmt.Sprint(v)), needle) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

// SortRows stable-sorts rows in place by key. Rows missing the key sort last in
// either direction. An empty key leaves the order untouched.
func SortRows(rows []Row, key string, direction SortDirection) {
	if key == "" || len(rows) < 2 {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, aok := rows[i].Value(key)
		b, bok := rows[j].Value(key)
		switch {
		case !aok:
			return false
		case !bok:
			return true
		}
		cmp := compareValues(a, b)
		if direction == SortDescending {
			return cmp > 0
		}
		return cmp < 0
	})
}

// Paginate slices rows to [(page-1)*size, page*size). Pages past the end yield an empty slice.
func Paginate(rows []Row, page, size int) []Row {
	if page < 1 || size < 1 {
		return []Row{}
	}
	start := (page - 1) * size
	if start >= len(rows) {
		return []Row{}
	}
	end := start + size
	if end > len(rows) {
		end = len(rows)
	}
	out := make([]Row, end-start)
	copy(out, rows[start:end])
	return out
}

// TotalPages returns ceil(count/size).
func TotalPages(count, size int) int {
	if size < 1 || count <= 0 {
		return 0
	}
	return int(math.Ceil(float64(count) / float64(size)))
}

func compareValues(a, b any) int {
	af, aNum := numericValue(a)
	bf, bNum := numericValue(b)
	if aNum && bNum {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(strings.ToLower(fmt.Sprint(a)), strings.ToLower(fmt.Sprint(b)))
}
