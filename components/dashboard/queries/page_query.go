package queries

import (
	"context"

	dashboard "github.com/goliatone/go-analytics-dashboard/components/dashboard"
	gocommand "github.com/goliatone/go-command"
)

// MountPageInput identifies the page a viewer opens.
type MountPageInput struct {
	Viewer dashboard.ViewerContext `json:"viewer"`
	Path   string                  `json:"path"`
}

// PageSnapshotInput identifies a mounted instance.
type PageSnapshotInput struct {
	InstanceID string `json:"instance_id"`
}

type mountService interface {
	Mount(ctx context.Context, viewer dashboard.ViewerContext, path string) (*dashboard.PageInstance, error)
	Snapshot(ctx context.Context, id string) (dashboard.PageSnapshot, error)
}

type snapshotService interface {
	Snapshot(ctx context.Context, id string) (dashboard.PageSnapshot, error)
}

// MountPageQuery mounts a fresh page instance and returns its first snapshot,
// which is still loading.
type MountPageQuery struct {
	service mountService
}

// NewMountPageQuery builds the query.
func NewMountPageQuery(service mountService) *MountPageQuery {
	return &MountPageQuery{service: service}
}

var _ gocommand.Querier[MountPageInput, dashboard.PageSnapshot] = (*MountPageQuery)(nil)

// Query mounts the page routed at input.Path.
func (q *MountPageQuery) Query(ctx context.Context, input MountPageInput) (dashboard.PageSnapshot, error) {
	inst, err := q.service.Mount(ctx, input.Viewer, input.Path)
	if err != nil {
		return dashboard.PageSnapshot{}, err
	}
	return q.service.Snapshot(ctx, inst.ID)
}

// PageSnapshotQuery resolves the current view of an instance.
type PageSnapshotQuery struct {
	service snapshotService
}

// NewPageSnapshotQuery builds the query.
func NewPageSnapshotQuery(service snapshotService) *PageSnapshotQuery {
	return &PageSnapshotQuery{service: service}
}

var _ gocommand.Querier[PageSnapshotInput, dashboard.PageSnapshot] = (*PageSnapshotQuery)(nil)

// Query composes the snapshot.
func (q *PageSnapshotQuery) Query(ctx context.Context, input PageSnapshotInput) (dashboard.PageSnapshot, error) {
	return q.service.Snapshot(ctx, input.InstanceID)
}
