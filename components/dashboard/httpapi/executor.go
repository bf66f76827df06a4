package httpapi

import (
	"context"
	"errors"

	dashboard "github.com/goliatone/go-analytics-dashboard/components/dashboard"
	"github.com/goliatone/go-analytics-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-analytics-dashboard/components/dashboard/queries"
	gocommand "github.com/goliatone/go-command"
)

// ErrNotConfigured is returned when an executor lacks the command or query for an operation.
var ErrNotConfigured = errors.New("httpapi: operation not configured")

// Executor is the transport-facing surface of the dashboard. Both the chi
// handlers and the go-router registration talk to it.
type Executor interface {
	Mount(ctx context.Context, input queries.MountPageInput) (dashboard.PageSnapshot, error)
	Snapshot(ctx context.Context, input queries.PageSnapshotInput) (dashboard.PageSnapshot, error)
	Table(ctx context.Context, input queries.TableViewInput) (dashboard.TableView, error)
	Instances(ctx context.Context) ([]dashboard.InstanceSummary, error)
	UpdateTable(ctx context.Context, input commands.UpdateTableInput) error
	SetFilter(ctx context.Context, input commands.SetPageFilterInput) error
	Refresh(ctx context.Context, input commands.RefreshPageInput) error
	Unmount(ctx context.Context, input commands.UnmountPageInput) error
	SaveTheme(ctx context.Context, input commands.SaveThemeInput) error
}

// CommandExecutor dispatches to go-command commanders and queriers.
type CommandExecutor struct {
	MountQuerier         gocommand.Querier[queries.MountPageInput, dashboard.PageSnapshot]
	SnapshotQuerier      gocommand.Querier[queries.PageSnapshotInput, dashboard.PageSnapshot]
	TableQuerier         gocommand.Querier[queries.TableViewInput, dashboard.TableView]
	InstancesQuerier     gocommand.Querier[queries.InstancesInput, []dashboard.InstanceSummary]
	UpdateTableCommander gocommand.Commander[commands.UpdateTableInput]
	FilterCommander      gocommand.Commander[commands.SetPageFilterInput]
	RefreshCommander     gocommand.Commander[commands.RefreshPageInput]
	UnmountCommander     gocommand.Commander[commands.UnmountPageInput]
	ThemeCommander       gocommand.Commander[commands.SaveThemeInput]
}

var _ Executor = (*CommandExecutor)(nil)

// NewCommandExecutor wires every command and query against a service. prefs
// may be nil, in which case theme updates report ErrNotConfigured.
func NewCommandExecutor(service *dashboard.Service, prefs *dashboard.InMemoryThemePreferences, telemetry commands.Telemetry) *CommandExecutor {
	exec := &CommandExecutor{
		MountQuerier:         queries.NewMountPageQuery(service),
		SnapshotQuerier:      queries.NewPageSnapshotQuery(service),
		TableQuerier:         queries.NewTableViewQuery(service),
		InstancesQuerier:     queries.NewInstancesQuery(service),
		UpdateTableCommander: commands.NewUpdateTableCommand(service, telemetry),
		FilterCommander:      commands.NewSetPageFilterCommand(service, telemetry),
		RefreshCommander:     commands.NewRefreshPageCommand(service, telemetry),
		UnmountCommander:     commands.NewUnmountPageCommand(service, telemetry),
	}
	if prefs != nil {
		exec.ThemeCommander = commands.NewSaveThemeCommand(prefs, telemetry)
	}
	return exec
}

func (e *CommandExecutor) Mount(ctx context.Context, input queries.MountPageInput) (dashboard.PageSnapshot, error) {
	if e.MountQuerier == nil {
		return dashboard.PageSnapshot{}, ErrNotConfigured
	}
	return e.MountQuerier.Query(ctx, input)
}

func (e *CommandExecutor) Snapshot(ctx context.Context, input queries.PageSnapshotInput) (dashboard.PageSnapshot, error) {
	if e.SnapshotQuerier == nil {
		return dashboard.PageSnapshot{}, ErrNotConfigured
	}
	return e.SnapshotQuerier.Query(ctx, input)
}

func (e *CommandExecutor) Table(ctx context.Context, input queries.TableViewInput) (dashboard.TableView, error) {
	if e.TableQuerier == nil {
		return dashboard.TableView{}, ErrNotConfigured
	}
	return e.TableQuerier.Query(ctx, input)
}

func (e *CommandExecutor) Instances(ctx context.Context) ([]dashboard.InstanceSummary, error) {
	if e.InstancesQuerier == nil {
		return nil, ErrNotConfigured
	}
	return e.InstancesQuerier.Query(ctx, queries.InstancesInput{})
}

func (e *CommandExecutor) UpdateTable(ctx context.Context, input commands.UpdateTableInput) error {
	if e.UpdateTableCommander == nil {
		return ErrNotConfigured
	}
	return e.UpdateTableCommander.Execute(ctx, input)
}

func (e *CommandExecutor) SetFilter(ctx context.Context, input commands.SetPageFilterInput) error {
	if e.FilterCommander == nil {
		return ErrNotConfigured
	}
	return e.FilterCommander.Execute(ctx, input)
}

func (e *CommandExecutor) Refresh(ctx context.Context, input commands.RefreshPageInput) error {
	if e.RefreshCommander == nil {
		return ErrNotConfigured
	}
	return e.RefreshCommander.Execute(ctx, input)
}

func (e *CommandExecutor) Unmount(ctx context.Context, input commands.UnmountPageInput) error {
	if e.UnmountCommander == nil {
		return ErrNotConfigured
	}
	return e.UnmountCommander.Execute(ctx, input)
}

func (e *CommandExecutor) SaveTheme(ctx context.Context, input commands.SaveThemeInput) error {
	if e.ThemeCommander == nil {
		return ErrNotConfigured
	}
	return e.ThemeCommander.Execute(ctx, input)
}
