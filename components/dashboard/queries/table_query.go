package queries

import (
	"context"

	dashboard "github.com/goliatone/go-analytics-dashboard/components/dashboard"
	gocommand "github.com/goliatone/go-command"
)

// TableViewInput identifies one table of a mounted instance.
type TableViewInput struct {
	InstanceID string `json:"instance_id"`
	TableID    string `json:"table_id"`
}

type tableService interface {
	Table(ctx context.Context, id, tableID string) (dashboard.TableView, error)
}

// TableViewQuery returns the derived view of a table.
type TableViewQuery struct {
	service tableService
}

// NewTableViewQuery builds the query.
func NewTableViewQuery(service tableService) *TableViewQuery {
	return &TableViewQuery{service: service}
}

var _ gocommand.Querier[TableViewInput, dashboard.TableView] = (*TableViewQuery)(nil)

// Query resolves the table view.
func (q *TableViewQuery) Query(ctx context.Context, input TableViewInput) (dashboard.TableView, error) {
	return q.service.Table(ctx, input.InstanceID, input.TableID)
}

// InstancesInput is the empty input of InstancesQuery.
type InstancesInput struct{}

type instanceLister interface {
	Instances() []dashboard.InstanceSummary
}

// InstancesQuery lists mounted page instances.
type InstancesQuery struct {
	service instanceLister
}

// NewInstancesQuery builds the query.
func NewInstancesQuery(service instanceLister) *InstancesQuery {
	return &InstancesQuery{service: service}
}

var _ gocommand.Querier[InstancesInput, []dashboard.InstanceSummary] = (*InstancesQuery)(nil)

// Query lists instances ordered by mount time.
func (q *InstancesQuery) Query(_ context.Context, _ InstancesInput) ([]dashboard.InstanceSummary, error) {
	return q.service.Instances(), nil
}
