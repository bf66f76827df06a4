package dashboard

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// PageHook lets packages register pages during init().
type PageHook func(reg *PageRegistry) error

var (
	globalHookMu sync.Mutex
	globalHooks  []PageHook
)

// RegisterPageHook registers a hook executed against new registries.
func RegisterPageHook(h PageHook) {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	globalHooks = append(globalHooks, h)
}

// NavItem is a navigation entry for the header menu.
type NavItem struct {
	Code   string `json:"code"`
	Label  string `json:"label"`
	Path   string `json:"path"`
	Icon   string `json:"icon,omitempty"`
	Active bool   `json:"active"`
}

// PageRegistry maps route paths to page definitions.
type PageRegistry struct {
	mu    sync.RWMutex
	pages map[string]PageDefinition
	order []string
	paths map[string]string
}

// NewPageRegistry builds a registry holding the default pages, with / aliased
// to the executive overview, and applies global hooks.
func NewPageRegistry() *PageRegistry {
	reg := NewEmptyPageRegistry()
	for _, def := range DefaultPages() {
		_ = reg.Register(def)
	}
	_ = reg.Alias(PathRoot, PageExecutiveOverview)
	_ = reg.ApplyHooks()
	return reg
}

// NewEmptyPageRegistry builds a registry without pages.
func NewEmptyPageRegistry() *PageRegistry {
	return &PageRegistry{
		pages: map[string]PageDefinition{},
		paths: map[string]string{},
	}
}

// ApplyHooks executes registered page hooks.
func (r *PageRegistry) ApplyHooks() error {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	for _, hook := range globalHooks {
		if err := hook(r); err != nil {
			return err
		}
	}
	return nil
}

// Register stores a page definition under its path. Re-registering a code replaces it.
func (r *PageRegistry) Register(def PageDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	def.TitleLocalized = NormalizeLocaleMap(def.TitleLocalized)
	path := normalizePath(def.Path)
	r.mu.Lock()
	defer r.mu.Unlock()
	if code, ok := r.paths[path]; ok && code != def.Code {
		return fmt.Errorf("dashboard: path %s already routed to %s", path, code)
	}
	if prev, ok := r.pages[def.Code]; ok {
		delete(r.paths, normalizePath(prev.Path))
	} else {
		r.order = append(r.order, def.Code)
	}
	r.pages[def.Code] = def
	r.paths[path] = def.Code
	return nil
}

// Alias routes an extra path to an already registered page.
func (r *PageRegistry) Alias(path, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pages[code]; !ok {
		return fmt.Errorf("%w: %s", ErrPageNotFound, code)
	}
	r.paths[normalizePath(path)] = code
	return nil
}

// Resolve returns the page routed at path.
func (r *PageRegistry) Resolve(path string) (PageDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	code, ok := r.paths[normalizePath(path)]
	if !ok {
		return PageDefinition{}, fmt.Errorf("%w: %s", ErrPageNotFound, path)
	}
	return r.pages[code], nil
}

// Page fetches a page by code.
func (r *PageRegistry) Page(code string) (PageDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.pages[code]
	return def, ok
}

// Definitions returns pages in registration order.
func (r *PageRegistry) Definitions() []PageDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]PageDefinition, 0, len(r.order))
	for _, code := range r.order {
		defs = append(defs, r.pages[code])
	}
	return defs
}

// Routes returns every routed path, sorted.
func (r *PageRegistry) Routes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	routes := make([]string, 0, len(r.paths))
	for path := range r.paths {
		routes = append(routes, path)
	}
	sort.Strings(routes)
	return routes
}

// Navigation builds the header menu, marking the page routed at activePath.
func (r *PageRegistry) Navigation(activePath, locale string) []NavItem {
	active := ""
	if def, err := r.Resolve(activePath); err == nil {
		active = def.Code
	}
	defs := r.Definitions()
	items := make([]NavItem, 0, len(defs))
	for _, def := range defs {
		items = append(items, NavItem{
			Code:   def.Code,
			Label:  def.TitleForLocale(locale),
			Path:   def.Path,
			Icon:   def.Icon,
			Active: def.Code == active,
		})
	}
	return items
}

func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return PathRoot
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = PathRoot
		}
	}
	return path
}
