package dashboard

import (
	core "github.com/goliatone/go-analytics-dashboard/components/dashboard"
)

// Service exposes the underlying components/dashboard.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// PageRegistry re-exports the route table.
type PageRegistry = core.PageRegistry

// ViewerContext re-exports the viewer passed to every page operation.
type ViewerContext = core.ViewerContext

// NavItem re-exports a navigation entry.
type NavItem = core.NavItem

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}

// NewPageRegistry returns a registry holding the four analytics pages.
func NewPageRegistry() *PageRegistry {
	return core.NewPageRegistry()
}
