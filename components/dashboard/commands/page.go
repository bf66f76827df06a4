package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// RefreshPageInput reloads a page instance.
type RefreshPageInput struct {
	InstanceID string `json:"instance_id"`
}

// UnmountPageInput drops a page instance.
type UnmountPageInput struct {
	InstanceID string `json:"instance_id"`
}

type refreshService interface {
	Refresh(ctx context.Context, id string) error
}

type unmountService interface {
	Unmount(ctx context.Context, id string) error
}

// RefreshPageCommand restarts the simulated load of an instance.
type RefreshPageCommand struct {
	service   refreshService
	telemetry Telemetry
}

// NewRefreshPageCommand creates the command.
func NewRefreshPageCommand(service refreshService, telemetry Telemetry) *RefreshPageCommand {
	return &RefreshPageCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshPageInput] = (*RefreshPageCommand)(nil)

// Execute refreshes the page.
func (c *RefreshPageCommand) Execute(ctx context.Context, msg RefreshPageInput) error {
	if c.service == nil {
		return errors.New("refresh command requires service")
	}
	if msg.InstanceID == "" {
		return errors.New("refresh command requires instance id")
	}
	if err := c.service.Refresh(ctx, msg.InstanceID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.refresh", map[string]any{
		"instance_id": msg.InstanceID,
	})
	return nil
}

// UnmountPageCommand cancels pending work and forgets an instance.
type UnmountPageCommand struct {
	service   unmountService
	telemetry Telemetry
}

// NewUnmountPageCommand creates the command.
func NewUnmountPageCommand(service unmountService, telemetry Telemetry) *UnmountPageCommand {
	return &UnmountPageCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[UnmountPageInput] = (*UnmountPageCommand)(nil)

// Execute unmounts the page.
func (c *UnmountPageCommand) Execute(ctx context.Context, msg UnmountPageInput) error {
	if c.service == nil {
		return errors.New("unmount command requires service")
	}
	if msg.InstanceID == "" {
		return errors.New("unmount command requires instance id")
	}
	if err := c.service.Unmount(ctx, msg.InstanceID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.unmount", map[string]any{
		"instance_id": msg.InstanceID,
	})
	return nil
}
