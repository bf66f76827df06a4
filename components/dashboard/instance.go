package dashboard

import (
	"sync"
	"sync/atomic"
	"time"
)

// PageInstance is the per-mount state of a page: its tables, filter values and loader.
type PageInstance struct {
	ID         string
	Path       string
	Viewer     ViewerContext
	Definition PageDefinition
	MountedAt  time.Time

	lastAccess atomic.Int64

	mu      sync.Mutex
	doc     *FixtureDocument
	tables  map[string]*TableState
	filters map[string]string
	loader  *Loader
}

func newPageInstance(id, path string, viewer ViewerContext, def PageDefinition, doc *FixtureDocument) *PageInstance {
	inst := &PageInstance{
		ID:         id,
		Path:       path,
		Viewer:     viewer,
		Definition: def,
		MountedAt:  time.Now().UTC(),
		doc:        doc,
		tables:     make(map[string]*TableState, len(def.Tables)),
		filters:    make(map[string]string, len(def.Filters)),
	}
	inst.touch(inst.MountedAt)
	for _, binding := range def.Tables {
		inst.tables[binding.Schema.ID] = NewTableState(binding.Schema)
	}
	for _, filter := range def.Filters {
		inst.filters[filter.Key] = filter.DefaultValue()
	}
	return inst
}

func (p *PageInstance) touch(now time.Time) {
	p.lastAccess.Store(now.UnixNano())
}

// LastAccess is when the instance was last looked up.
func (p *PageInstance) LastAccess() time.Time {
	return time.Unix(0, p.lastAccess.Load()).UTC()
}

// Loading reports whether the simulated load is still pending.
func (p *PageInstance) Loading() bool {
	return p.loader.Loading()
}

// FilterValues returns a copy of the current page filter values.
func (p *PageInstance) FilterValues() map[string]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filterValuesLocked()
}

func (p *PageInstance) filterValuesLocked() map[string]string {
	out := make(map[string]string, len(p.filters))
	for k, v := range p.filters {
		out[k] = v
	}
	return out
}

// datasetLocked returns the page-filtered rows of a dataset. Callers hold p.mu.
func (p *PageInstance) datasetLocked(name string) []Row {
	rows, _ := p.doc.Dataset(name)
	return ApplyPageFilters(rows, p.Definition.Filters, p.filters)
}

func (p *PageInstance) tableViewLocked(binding TableBinding) TableView {
	state := p.tables[binding.Schema.ID]
	view := state.View(p.datasetLocked(binding.Dataset))
	return TableView{
		ID:             binding.Schema.ID,
		Title:          binding.Schema.Title,
		Columns:        binding.Schema.Columns,
		Rows:           view.Rows,
		FilteredCount:  view.FilteredCount,
		TotalPages:     view.TotalPages,
		Config:         view.Config,
		Selected:       state.Selected(),
		SelectionScope: binding.Schema.selectionScope(),
	}
}

// TableView is the render-ready state of one table on a page.
type TableView struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Columns        []Column       `json:"columns"`
	Rows           []Row          `json:"rows"`
	FilteredCount  int            `json:"filtered_count"`
	TotalPages     int            `json:"total_pages"`
	Config         ViewConfig     `json:"config"`
	Selected       []string       `json:"selected"`
	SelectionScope SelectionScope `json:"selection_scope"`
}

// IsSelected reports whether the row is part of the selection.
func (v TableView) IsSelected(id string) bool {
	for _, sel := range v.Selected {
		if sel == id {
			return true
		}
	}
	return false
}

// Cell returns the display string of a row value.
func (v TableView) Cell(row Row, key string) string {
	value, _ := row.Value(key)
	return displayValue(value)
}

// FilterView is the render-ready state of a page filter.
type FilterView struct {
	Key     string   `json:"key"`
	Label   string   `json:"label"`
	Options []string `json:"options"`
	Value   string   `json:"value"`
}

// PageSnapshot is everything a page render needs. While loading, metrics,
// charts and tables are left empty so templates can show skeletons.
type PageSnapshot struct {
	InstanceID  string       `json:"instance_id"`
	Code        string       `json:"code"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Path        string       `json:"path"`
	Loading     bool         `json:"loading"`
	Filters     []FilterView `json:"filters,omitempty"`
	Metrics     []MetricCard `json:"metrics,omitempty"`
	Charts      []ChartView  `json:"charts,omitempty"`
	Tables      []TableView  `json:"tables,omitempty"`
	Navigation  []NavItem    `json:"navigation"`
}

// InstanceSummary lists a mounted instance.
type InstanceSummary struct {
	ID        string    `json:"id"`
	PageCode  string    `json:"page_code"`
	Path      string    `json:"path"`
	UserID    string    `json:"user_id,omitempty"`
	Loading   bool      `json:"loading"`
	MountedAt time.Time `json:"mounted_at"`
}
