package commands

import (
	"context"
	"errors"

	dashboard "github.com/goliatone/go-analytics-dashboard/components/dashboard"
	gocommand "github.com/goliatone/go-command"
)

// SaveThemeInput stores the chart theme a viewer prefers.
type SaveThemeInput struct {
	Viewer dashboard.ViewerContext `json:"viewer"`
	Theme  string                  `json:"theme"`
}

type themeStore interface {
	SaveTheme(ctx context.Context, viewer dashboard.ViewerContext, theme string) error
}

// SaveThemeCommand persists per-user chart theme overrides.
type SaveThemeCommand struct {
	store     themeStore
	telemetry Telemetry
}

// NewSaveThemeCommand creates the command.
func NewSaveThemeCommand(store themeStore, telemetry Telemetry) *SaveThemeCommand {
	return &SaveThemeCommand{store: store, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SaveThemeInput] = (*SaveThemeCommand)(nil)

// Execute stores the theme for the viewer.
func (c *SaveThemeCommand) Execute(ctx context.Context, msg SaveThemeInput) error {
	if c.store == nil {
		return errors.New("theme command requires store")
	}
	if msg.Viewer.UserID == "" {
		return errors.New("theme command requires viewer user id")
	}
	if err := c.store.SaveTheme(ctx, msg.Viewer, msg.Theme); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.save_theme", map[string]any{
		"user_id": msg.Viewer.UserID,
		"theme":   msg.Theme,
	})
	return nil
}
