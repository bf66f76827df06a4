package dashboard

import (
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// TableState owns the view config and row selection of one mounted table.
// It is not safe for concurrent use; PageInstance serializes access.
type TableState struct {
	schema   TableSchema
	config   ViewConfig
	selected map[string]struct{}
}

// NewTableState builds a table state initialized to the schema defaults.
func NewTableState(schema TableSchema) *TableState {
	return &TableState{
		schema:   schema,
		config:   schema.DefaultViewConfig(),
		selected: map[string]struct{}{},
	}
}

// Schema returns the table schema.
func (t *TableState) Schema() TableSchema {
	return t.schema
}

// Config returns the current view config.
func (t *TableState) Config() ViewConfig {
	return t.config
}

// Sort sorts by key, flipping the direction when the key is already active.
func (t *TableState) Sort(key string) error {
	direction := SortAscending
	if key == t.config.SortKey && t.config.SortDirection == SortAscending {
		direction = SortDescending
	}
	return t.SortBy(key, direction)
}

// SortBy sets an explicit sort key and direction.
func (t *TableState) SortBy(key string, direction SortDirection) error {
	if _, ok := t.schema.Column(key); !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownColumn, t.schema.ID, key)
	}
	next := t.config
	next.SortKey = key
	next.SortDirection = direction
	return t.set(next)
}

// Filter sets the free-text filter and returns to the first page.
func (t *TableState) Filter(text string) error {
	next := t.config
	next.FilterText = text
	next.Page = 1
	return t.set(next)
}

// GoTo moves to the given page. Pages past the end are allowed and render empty.
func (t *TableState) GoTo(page int) error {
	next := t.config
	next.Page = page
	return t.set(next)
}

// SetPageSize changes the page size and returns to the first page.
func (t *TableState) SetPageSize(size int) error {
	next := t.config
	next.PageSize = size
	next.Page = 1
	return t.set(next)
}

// Apply replaces the whole view config after validation.
func (t *TableState) Apply(cfg ViewConfig) error {
	if cfg.SortKey != "" {
		if _, ok := t.schema.Column(cfg.SortKey); !ok {
			return fmt.Errorf("%w: %s.%s", ErrUnknownColumn, t.schema.ID, cfg.SortKey)
		}
	}
	return t.set(NormalizeViewConfig(t.schema, cfg))
}

func (t *TableState) set(cfg ViewConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidViewConfig, err)
	}
	t.config = cfg
	return nil
}

// View computes the derived view of rows under the current config.
func (t *TableState) View(rows []Row) DerivedView {
	return ApplyView(t.schema, rows, t.config)
}

// ToggleRow flips the selection of a single row and reports whether it is now selected.
func (t *TableState) ToggleRow(id string) bool {
	if _, ok := t.selected[id]; ok {
		delete(t.selected, id)
		return false
	}
	t.selected[id] = struct{}{}
	return true
}

// ToggleSelectAll toggles between the empty selection and every row in scope.
// The scope is the current page or the whole filtered set, per the schema.
func (t *TableState) ToggleSelectAll(rows []Row) {
	scope := t.scopeRows(rows)
	if len(scope) > 0 && t.allSelected(scope) {
		t.selected = map[string]struct{}{}
		return
	}
	selected := make(map[string]struct{}, len(scope))
	for _, row := range scope {
		selected[row.ID] = struct{}{}
	}
	t.selected = selected
}

func (t *TableState) scopeRows(rows []Row) []Row {
	if t.schema.selectionScope() == SelectionFiltered {
		return FilterRows(rows, t.schema.SearchableKeys(), t.config.FilterText)
	}
	return t.View(rows).Rows
}

func (t *TableState) allSelected(rows []Row) bool {
	if len(t.selected) != len(rows) {
		return false
	}
	for _, row := range rows {
		if _, ok := t.selected[row.ID]; !ok {
			return false
		}
	}
	return true
}

// IsSelected reports whether the row is selected.
func (t *TableState) IsSelected(id string) bool {
	_, ok := t.selected[id]
	return ok
}

// Selected returns the selected row identifiers in sorted order.
func (t *TableState) Selected() []string {
	out := make([]string, 0, len(t.selected))
	for id := range t.selected {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Reset restores the defaults a freshly mounted table starts with.
func (t *TableState) Reset() {
	t.config = t.schema.DefaultViewConfig()
	t.selected = map[string]struct{}{}
}
