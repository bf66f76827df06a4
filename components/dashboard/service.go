package dashboard

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultLoadDelay is the simulated latency before a page's data shows up.
const DefaultLoadDelay = 800 * time.Millisecond

// DefaultIdleTTL is how long an unused page instance survives.
const DefaultIdleTTL = 30 * time.Minute

const chartRenderConcurrency = 4

// Table action operations accepted by UpdateTable.
const (
	TableOpSort      = "sort"
	TableOpFilter    = "filter"
	TableOpPage      = "page"
	TableOpPageSize  = "page_size"
	TableOpToggleRow = "toggle_row"
	TableOpToggleAll = "toggle_all"
	TableOpReset     = "reset"
)

// Options configures the dashboard Service. Every collaborator is provided via
// interface or pointer so applications can swap implementations.
type Options struct {
	Pages       *PageRegistry
	Fixtures    FixtureSource
	Charts      *ChartRenderer
	Validator   DatasetValidator
	RefreshHook RefreshHook
	Telemetry   Telemetry
	Translator  TranslationService
	Logger      *slog.Logger
	LoadDelay   time.Duration
	// IdleTTL evicts instances not looked up for this long. Zero uses
	// DefaultIdleTTL; a negative value disables eviction.
	IdleTTL time.Duration
}

// Service owns mounted page instances and composes their snapshots.
type Service struct {
	opts   Options
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.RWMutex
	instances map[string]*PageInstance

	fixturesMu sync.Mutex
	fixtures   *FixtureDocument
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Pages == nil {
		opts.Pages = NewPageRegistry()
	}
	if opts.Fixtures == nil {
		opts.Fixtures = DefaultFixtureSource()
	}
	if opts.Charts == nil {
		opts.Charts = NewChartRenderer(WithChartTranslator(opts.Translator))
	}
	if opts.Validator == nil {
		opts.Validator = noopDatasetValidator{}
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.LoadDelay <= 0 {
		opts.LoadDelay = DefaultLoadDelay
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	if opts.IdleTTL == 0 {
		opts.IdleTTL = DefaultIdleTTL
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		opts:      opts,
		ctx:       ctx,
		cancel:    cancel,
		instances: map[string]*PageInstance{},
	}
	if opts.IdleTTL > 0 {
		go s.sweepIdle(opts.IdleTTL)
	}
	return s
}

// Pages exposes the page registry.
func (s *Service) Pages() *PageRegistry {
	return s.opts.Pages
}

// Mount resolves path to a page, creates a fresh instance with default table
// and filter state, and starts its simulated load.
func (s *Service) Mount(ctx context.Context, viewer ViewerContext, path string) (*PageInstance, error) {
	def, err := s.opts.Pages.Resolve(path)
	if err != nil {
		return nil, err
	}
	doc, err := s.loadFixtures(ctx)
	if err != nil {
		return nil, err
	}
	inst := newPageInstance(uuid.NewString(), normalizePath(path), viewer, def, doc)
	inst.loader = NewLoader(s.opts.LoadDelay, func(uint64) {
		s.loadCompleted(inst)
	})

	s.mu.Lock()
	s.instances[inst.ID] = inst
	s.mu.Unlock()

	s.notify(ctx, inst, EventMount, "", false)
	s.startLoad(ctx, inst)
	s.recordTelemetry(ctx, "dashboard.page.mount", map[string]any{
		"page":     def.Code,
		"instance": inst.ID,
		"viewer":   viewer.UserID,
	})
	s.opts.Logger.Debug("page mounted", "page", def.Code, "instance", inst.ID, "path", inst.Path)
	return inst, nil
}

// Instance fetches a mounted instance.
func (s *Service) Instance(id string) (*PageInstance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inst, ok := s.instances[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInstanceNotFound, id)
	}
	inst.touch(time.Now())
	return inst, nil
}

// Instances lists mounted instances ordered by mount time.
func (s *Service) Instances() []InstanceSummary {
	s.mu.RLock()
	out := make([]InstanceSummary, 0, len(s.instances))
	for _, inst := range s.instances {
		out = append(out, InstanceSummary{
			ID:        inst.ID,
			PageCode:  inst.Definition.Code,
			Path:      inst.Path,
			UserID:    inst.Viewer.UserID,
			Loading:   inst.Loading(),
			MountedAt: inst.MountedAt,
		})
	}
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].MountedAt.Equal(out[j].MountedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].MountedAt.Before(out[j].MountedAt)
	})
	return out
}

// Snapshot composes the render-ready view of an instance. Charts render concurrently.
func (s *Service) Snapshot(ctx context.Context, id string) (PageSnapshot, error) {
	inst, err := s.Instance(id)
	if err != nil {
		return PageSnapshot{}, err
	}
	def := inst.Definition
	locale := inst.Viewer.Locale
	snap := PageSnapshot{
		InstanceID:  inst.ID,
		Code:        def.Code,
		Title:       def.TitleForLocale(locale),
		Description: def.Description,
		Path:        inst.Path,
		Loading:     inst.Loading(),
		Navigation:  s.opts.Pages.Navigation(inst.Path, locale),
	}

	inst.mu.Lock()
	for _, filter := range def.Filters {
		snap.Filters = append(snap.Filters, FilterView{
			Key:     filter.Key,
			Label:   filter.Label,
			Options: append([]string{FilterAll}, filter.Options...),
			Value:   inst.filters[filter.Key],
		})
	}
	if snap.Loading {
		inst.mu.Unlock()
		return snap, nil
	}
	for _, spec := range def.Metrics {
		var rows []Row
		if spec.Dataset != "" {
			rows = inst.datasetLocked(spec.Dataset)
		}
		in, ok := metricInput(spec, inst.doc, rows)
		if !ok {
			s.opts.Logger.Warn("metric has no data", "page", def.Code, "metric", spec.Key)
			continue
		}
		snap.Metrics = append(snap.Metrics, BuildMetricCard(in, spec.Policy, locale))
	}
	chartRows := make([][]Row, len(def.Charts))
	for i, spec := range def.Charts {
		chartRows[i] = inst.datasetLocked(spec.Dataset)
	}
	for _, binding := range def.Tables {
		snap.Tables = append(snap.Tables, inst.tableViewLocked(binding))
	}
	inst.mu.Unlock()

	charts, err := s.renderCharts(ctx, inst.Viewer, def.Charts, chartRows)
	if err != nil {
		return PageSnapshot{}, err
	}
	snap.Charts = charts
	return snap, nil
}

func (s *Service) renderCharts(ctx context.Context, viewer ViewerContext, specs []ChartSpec, rows [][]Row) ([]ChartView, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	views := make([]ChartView, len(specs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(chartRenderConcurrency)
	for i, spec := range specs {
		g.Go(func() error {
			view, err := s.opts.Charts.Render(gctx, viewer, spec, rows[i])
			if err != nil {
				return fmt.Errorf("dashboard: render chart %s: %w", spec.ID, err)
			}
			views[i] = view
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return views, nil
}

// Table returns the current view of one table, regardless of loading state.
func (s *Service) Table(ctx context.Context, id, tableID string) (TableView, error) {
	inst, err := s.Instance(id)
	if err != nil {
		return TableView{}, err
	}
	binding, ok := inst.Definition.Table(tableID)
	if !ok {
		return TableView{}, fmt.Errorf("%w: %s", ErrUnknownTable, tableID)
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return inst.tableViewLocked(binding), nil
}

// WaitLoaded blocks until the instance's current load settles.
func (s *Service) WaitLoaded(ctx context.Context, id string) error {
	inst, err := s.Instance(id)
	if err != nil {
		return err
	}
	return inst.loader.Wait(ctx)
}

// Refresh reloads fixtures and restarts the simulated load, superseding any
// load still in flight.
func (s *Service) Refresh(ctx context.Context, id string) error {
	inst, err := s.Instance(id)
	if err != nil {
		return err
	}
	s.invalidateFixtures()
	doc, err := s.loadFixtures(ctx)
	if err != nil {
		return err
	}
	inst.mu.Lock()
	inst.doc = doc
	inst.mu.Unlock()
	s.startLoad(ctx, inst)
	s.recordTelemetry(ctx, "dashboard.page.refresh", map[string]any{
		"page":     inst.Definition.Code,
		"instance": inst.ID,
	})
	return nil
}

// SetPageFilter changes a page-level filter, sends every table back to its
// first page, and restarts the load so the superseded one never lands.
func (s *Service) SetPageFilter(ctx context.Context, id, key, value string) error {
	inst, err := s.Instance(id)
	if err != nil {
		return err
	}
	filter, ok := inst.Definition.Filter(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownFilter, key)
	}
	if value == "" {
		value = FilterAll
	}
	if !filter.Allows(value) {
		return fmt.Errorf("%w: %s=%s", ErrInvalidFilterValue, key, value)
	}
	inst.mu.Lock()
	for tableID, state := range inst.tables {
		if err := state.GoTo(1); err != nil {
			inst.mu.Unlock()
			return fmt.Errorf("dashboard: reset table %s: %w", tableID, err)
		}
	}
	inst.filters[key] = value
	inst.mu.Unlock()

	s.notify(ctx, inst, EventFilter, "", inst.Loading())
	s.startLoad(ctx, inst)
	s.recordTelemetry(ctx, "dashboard.page.filter", map[string]any{
		"page":     inst.Definition.Code,
		"instance": inst.ID,
		"filter":   key,
		"value":    value,
	})
	return nil
}

// TableAction is a single user interaction with a table.
type TableAction struct {
	TableID   string        `json:"table_id" validate:"required"`
	Op        string        `json:"op" validate:"required,oneof=sort filter page page_size toggle_row toggle_all reset"`
	Key       string        `json:"key,omitempty"`
	Direction SortDirection `json:"direction,omitempty" validate:"omitempty,oneof=asc desc"`
	Text      string        `json:"text,omitempty" validate:"max=200"`
	Page      int           `json:"page,omitempty"`
	PageSize  int           `json:"page_size,omitempty"`
	RowID     string        `json:"row_id,omitempty"`
}

// UpdateTable applies a table action and returns the resulting view.
func (s *Service) UpdateTable(ctx context.Context, id string, action TableAction) (TableView, error) {
	if err := validate.Struct(action); err != nil {
		return TableView{}, fmt.Errorf("%w: %v", ErrInvalidAction, err)
	}
	inst, err := s.Instance(id)
	if err != nil {
		return TableView{}, err
	}
	binding, ok := inst.Definition.Table(action.TableID)
	if !ok {
		return TableView{}, fmt.Errorf("%w: %s", ErrUnknownTable, action.TableID)
	}

	inst.mu.Lock()
	state := inst.tables[binding.Schema.ID]
	err = applyTableAction(state, action, func() []Row {
		return inst.datasetLocked(binding.Dataset)
	})
	if err != nil {
		inst.mu.Unlock()
		return TableView{}, err
	}
	view := inst.tableViewLocked(binding)
	inst.mu.Unlock()

	s.notify(ctx, inst, EventTable, binding.Schema.ID, inst.Loading())
	s.recordTelemetry(ctx, "dashboard.table."+action.Op, map[string]any{
		"page":     inst.Definition.Code,
		"instance": inst.ID,
		"table":    binding.Schema.ID,
	})
	return view, nil
}

func applyTableAction(state *TableState, action TableAction, rows func() []Row) error {
	switch action.Op {
	case TableOpSort:
		if action.Direction != "" {
			return state.SortBy(action.Key, action.Direction)
		}
		return state.Sort(action.Key)
	case TableOpFilter:
		return state.Filter(action.Text)
	case TableOpPage:
		return state.GoTo(action.Page)
	case TableOpPageSize:
		return state.SetPageSize(action.PageSize)
	case TableOpToggleRow:
		if action.RowID == "" {
			return fmt.Errorf("%w: row_id is required", ErrInvalidAction)
		}
		if !containsRow(rows(), action.RowID) {
			return fmt.Errorf("%w: unknown row %s", ErrInvalidAction, action.RowID)
		}
		state.ToggleRow(action.RowID)
		return nil
	case TableOpToggleAll:
		state.ToggleSelectAll(rows())
		return nil
	case TableOpReset:
		state.Reset()
		return nil
	default:
		return fmt.Errorf("%w: unsupported op %q", ErrInvalidAction, action.Op)
	}
}

func containsRow(rows []Row, id string) bool {
	for _, row := range rows {
		if row.ID == id {
			return true
		}
	}
	return false
}

// Unmount cancels any pending load and drops the instance. No further events
// are emitted for it.
func (s *Service) Unmount(ctx context.Context, id string) error {
	s.mu.Lock()
	inst, ok := s.instances[id]
	if ok {
		delete(s.instances, id)
	}
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrInstanceNotFound, id)
	}
	inst.loader.Cancel()
	s.notify(ctx, inst, EventUnmount, "", false)
	s.recordTelemetry(ctx, "dashboard.page.unmount", map[string]any{
		"page":     inst.Definition.Code,
		"instance": inst.ID,
	})
	return nil
}

// EvictIdle unmounts every instance last looked up before cutoff and returns
// how many were dropped.
func (s *Service) EvictIdle(ctx context.Context, cutoff time.Time) int {
	s.mu.RLock()
	var stale []string
	for id, inst := range s.instances {
		if inst.LastAccess().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	s.mu.RUnlock()
	evicted := 0
	for _, id := range stale {
		if err := s.Unmount(ctx, id); err == nil {
			evicted++
		}
	}
	if evicted > 0 {
		s.opts.Logger.Debug("idle page instances evicted", "count", evicted)
	}
	return evicted
}

func (s *Service) sweepIdle(ttl time.Duration) {
	interval := ttl / 2
	if interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case now := <-ticker.C:
			s.EvictIdle(s.ctx, now.Add(-ttl))
		}
	}
}

// Close cancels every pending load and drops all instances.
func (s *Service) Close() {
	s.cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, inst := range s.instances {
		inst.loader.Cancel()
		delete(s.instances, id)
	}
}

func (s *Service) startLoad(ctx context.Context, inst *PageInstance) {
	inst.loader.Start(s.ctx)
	s.notify(ctx, inst, EventLoading, "", true)
}

func (s *Service) loadCompleted(inst *PageInstance) {
	s.mu.RLock()
	_, mounted := s.instances[inst.ID]
	s.mu.RUnlock()
	if !mounted {
		return
	}
	s.notify(s.ctx, inst, EventLoaded, "", false)
	s.recordTelemetry(s.ctx, "dashboard.page.loaded", map[string]any{
		"page":     inst.Definition.Code,
		"instance": inst.ID,
	})
}

func (s *Service) loadFixtures(ctx context.Context) (*FixtureDocument, error) {
	s.fixturesMu.Lock()
	defer s.fixturesMu.Unlock()
	if s.fixtures != nil {
		return s.fixtures, nil
	}
	doc, err := s.opts.Fixtures.Fixtures(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: load fixtures: %w", err)
	}
	if err := s.validateFixtures(doc); err != nil {
		return nil, err
	}
	s.fixtures = doc
	return doc, nil
}

func (s *Service) validateFixtures(doc *FixtureDocument) error {
	for _, def := range s.opts.Pages.Definitions() {
		for _, binding := range def.Tables {
			rows, ok := doc.Dataset(binding.Dataset)
			if !ok {
				s.opts.Logger.Warn("table dataset missing from fixtures", "page", def.Code, "dataset", binding.Dataset)
				continue
			}
			if err := s.opts.Validator.Validate(binding.Schema, rows); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Service) invalidateFixtures() {
	s.fixturesMu.Lock()
	s.fixtures = nil
	s.fixturesMu.Unlock()
}

func (s *Service) notify(ctx context.Context, inst *PageInstance, reason, tableID string, loading bool) {
	event := PageEvent{
		InstanceID: inst.ID,
		PageCode:   inst.Definition.Code,
		Path:       inst.Path,
		Reason:     reason,
		TableID:    tableID,
		Loading:    loading,
	}
	if err := s.opts.RefreshHook.PageUpdated(ctx, event); err != nil {
		s.opts.Logger.Warn("refresh hook failed", "instance", inst.ID, "reason", reason, "error", err)
	}
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}
