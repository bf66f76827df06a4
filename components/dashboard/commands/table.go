package commands

import (
	"context"
	"errors"

	dashboard "github.com/goliatone/go-analytics-dashboard/components/dashboard"
	gocommand "github.com/goliatone/go-command"
)

// UpdateTableInput applies one table action on a mounted page instance.
type UpdateTableInput struct {
	InstanceID string                `json:"instance_id"`
	Action     dashboard.TableAction `json:"action"`
}

type tableService interface {
	UpdateTable(ctx context.Context, id string, action dashboard.TableAction) (dashboard.TableView, error)
}

// UpdateTableCommand wraps Service.UpdateTable so transports share one entry point.
type UpdateTableCommand struct {
	service   tableService
	telemetry Telemetry
}

// NewUpdateTableCommand creates the command.
func NewUpdateTableCommand(service tableService, telemetry Telemetry) *UpdateTableCommand {
	return &UpdateTableCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[UpdateTableInput] = (*UpdateTableCommand)(nil)

// Execute applies the action. The resulting view is available through the
// table query.
func (c *UpdateTableCommand) Execute(ctx context.Context, msg UpdateTableInput) error {
	if c.service == nil {
		return errors.New("update table command requires service")
	}
	if msg.InstanceID == "" {
		return errors.New("update table command requires instance id")
	}
	view, err := c.service.UpdateTable(ctx, msg.InstanceID, msg.Action)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.update_table", map[string]any{
		"instance_id": msg.InstanceID,
		"table_id":    view.ID,
		"op":          msg.Action.Op,
		"rows":        view.FilteredCount,
	})
	return nil
}
