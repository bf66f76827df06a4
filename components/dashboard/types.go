package dashboard

import (
	"context"
	"errors"
)

var (
	// ErrPageNotFound is returned when a path does not map to a registered page.
	ErrPageNotFound = errors.New("dashboard: page not found")
	// ErrInstanceNotFound is returned when a page instance was never mounted or already unmounted.
	ErrInstanceNotFound = errors.New("dashboard: page instance not found")
	// ErrUnknownTable is returned when a page does not bind the requested table.
	ErrUnknownTable = errors.New("dashboard: unknown table")
	// ErrUnknownColumn is returned when a table schema lacks the requested column.
	ErrUnknownColumn = errors.New("dashboard: unknown column")
	// ErrUnknownFilter is returned when a page does not expose the requested filter.
	ErrUnknownFilter = errors.New("dashboard: unknown page filter")
	// ErrInvalidFilterValue is returned when a page filter value is not one of its options.
	ErrInvalidFilterValue = errors.New("dashboard: invalid page filter value")
	// ErrInvalidViewConfig is returned when a table operation would produce an invalid view config.
	ErrInvalidViewConfig = errors.New("dashboard: invalid view config")
	// ErrInvalidAction is returned when a table action payload is malformed.
	ErrInvalidAction = errors.New("dashboard: invalid table action")
	// ErrRenderPanic wraps panics recovered while rendering a page.
	ErrRenderPanic = errors.New("dashboard: render panic")
)

// ViewerContext captures the active user/locale information needed to render pages.
type ViewerContext struct {
	UserID string   `json:"user_id,omitempty"`
	Roles  []string `json:"roles,omitempty"`
	Locale string   `json:"locale,omitempty"`
}

// Page event reasons emitted through the RefreshHook.
const (
	EventMount   = "mount"
	EventLoading = "loading"
	EventLoaded  = "loaded"
	EventTable   = "table"
	EventFilter  = "filter"
	EventUnmount = "unmount"
)

// PageEvent describes page instance changes that transports might care about.
type PageEvent struct {
	InstanceID string `json:"instance_id"`
	PageCode   string `json:"page_code"`
	Path       string `json:"path"`
	Reason     string `json:"reason"`
	TableID    string `json:"table_id,omitempty"`
	Loading    bool   `json:"loading"`
}

// RefreshHook notifies transports (SSE/WebSocket) about page changes.
type RefreshHook interface {
	PageUpdated(ctx context.Context, event PageEvent) error
}

// FixtureSource loads the datasets and metric fixtures backing pages.
type FixtureSource interface {
	Fixtures(ctx context.Context) (*FixtureDocument, error)
}

type noopRefreshHook struct{}

func (noopRefreshHook) PageUpdated(context.Context, PageEvent) error {
	return nil
}
