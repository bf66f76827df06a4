package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// SetPageFilterInput changes a page-level filter value.
type SetPageFilterInput struct {
	InstanceID string `json:"instance_id"`
	Key        string `json:"key"`
	Value      string `json:"value"`
}

type filterService interface {
	SetPageFilter(ctx context.Context, id, key, value string) error
}

// SetPageFilterCommand wraps Service.SetPageFilter.
type SetPageFilterCommand struct {
	service   filterService
	telemetry Telemetry
}

// NewSetPageFilterCommand creates the command.
func NewSetPageFilterCommand(service filterService, telemetry Telemetry) *SetPageFilterCommand {
	return &SetPageFilterCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SetPageFilterInput] = (*SetPageFilterCommand)(nil)

// Execute sets the filter, which restarts the page load.
func (c *SetPageFilterCommand) Execute(ctx context.Context, msg SetPageFilterInput) error {
	if c.service == nil {
		return errors.New("filter command requires service")
	}
	if msg.InstanceID == "" || msg.Key == "" {
		return errors.New("filter command requires instance id and key")
	}
	if err := c.service.SetPageFilter(ctx, msg.InstanceID, msg.Key, msg.Value); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.set_filter", map[string]any{
		"instance_id": msg.InstanceID,
		"key":         msg.Key,
		"value":       msg.Value,
	})
	return nil
}
