package goadmin

import (
	"context"
	"errors"
	"fmt"

	dashboardpkg "github.com/goliatone/go-analytics-dashboard/pkg/dashboard"
)

// MenuBuilder ensures dashboard entries exist within the admin navigation.
type MenuBuilder interface {
	EnsureMenuItem(ctx context.Context, menuCode string, item MenuItem) error
}

// MenuItem captures dashboard link metadata.
type MenuItem struct {
	Code     string
	Label    string
	Route    string
	Icon     string
	Position int
}

// Config wires the dashboard service into an admin shell.
type Config struct {
	EnableDashboard bool
	MenuCode        string
	MenuBuilder     MenuBuilder
	Service         *dashboardpkg.Service
	Locale          string
	// PositionOffset is added to each page's position so the entries can be
	// placed after existing menu items.
	PositionOffset int
}

// Admin exposes helpers for go-admin style applications.
type Admin struct {
	cfg Config
}

// New creates an Admin helper that can seed dashboard menus.
func New(cfg Config) (*Admin, error) {
	if cfg.EnableDashboard && cfg.Service == nil {
		return nil, errors.New("goadmin: dashboard service is required when enabled")
	}
	if cfg.MenuCode == "" {
		cfg.MenuCode = "admin.main"
	}
	return &Admin{cfg: cfg}, nil
}

// Dashboard exposes the configured dashboard service when enabled.
func (a *Admin) Dashboard() *dashboardpkg.Service {
	if !a.cfg.EnableDashboard {
		return nil
	}
	return a.cfg.Service
}

// MenuItems converts the page navigation into admin menu entries.
func (a *Admin) MenuItems() []MenuItem {
	if a.Dashboard() == nil {
		return nil
	}
	nav := a.cfg.Service.Pages().Navigation("", a.cfg.Locale)
	items := make([]MenuItem, 0, len(nav))
	for i, entry := range nav {
		icon := entry.Icon
		if icon == "" {
			icon = "home"
		}
		items = append(items, MenuItem{
			Code:     entry.Code,
			Label:    entry.Label,
			Route:    entry.Path,
			Icon:     icon,
			Position: a.cfg.PositionOffset + i,
		})
	}
	return items
}

// Bootstrap seeds one menu entry per dashboard page when dashboard support is enabled.
func (a *Admin) Bootstrap(ctx context.Context) error {
	if a.Dashboard() == nil || a.cfg.MenuBuilder == nil {
		return nil
	}
	for _, item := range a.MenuItems() {
		if err := a.cfg.MenuBuilder.EnsureMenuItem(ctx, a.cfg.MenuCode, item); err != nil {
			return fmt.Errorf("goadmin: ensure menu item %s: %w", item.Code, err)
		}
	}
	return nil
}
