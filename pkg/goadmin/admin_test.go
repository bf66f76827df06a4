package goadmin_test

import (
	"context"
	"errors"
	"testing"

	dashboardpkg "github.com/goliatone/go-analytics-dashboard/pkg/dashboard"
	"github.com/goliatone/go-analytics-dashboard/pkg/goadmin"
)

type stubMenuBuilder struct {
	items []goadmin.MenuItem
	menus []string
	err   error
}

func (s *stubMenuBuilder) EnsureMenuItem(_ context.Context, menu string, item goadmin.MenuItem) error {
	if s.err != nil {
		return s.err
	}
	s.menus = append(s.menus, menu)
	s.items = append(s.items, item)
	return nil
}

func newService(t *testing.T) *dashboardpkg.Service {
	t.Helper()
	service := dashboardpkg.NewService(dashboardpkg.Options{})
	t.Cleanup(service.Close)
	return service
}

func TestAdminBootstrapSeedsMenu(t *testing.T) {
	builder := &stubMenuBuilder{}
	admin, err := goadmin.New(goadmin.Config{
		EnableDashboard: true,
		Service:         newService(t),
		MenuBuilder:     builder,
		PositionOffset:  10,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := admin.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	if len(builder.items) != 4 {
		t.Fatalf("expected 4 menu items, got %d", len(builder.items))
	}
	first := builder.items[0]
	if first.Route != "/executive-overview-dashboard" || first.Position != 10 || first.Icon == "" {
		t.Fatalf("unexpected first item %+v", first)
	}
	if builder.menus[0] != "admin.main" {
		t.Fatalf("expected default menu code, got %s", builder.menus[0])
	}
	if admin.Dashboard() == nil {
		t.Fatalf("expected dashboard service")
	}
}

func TestAdminLocalizedLabels(t *testing.T) {
	admin, err := goadmin.New(goadmin.Config{EnableDashboard: true, Service: newService(t), Locale: "es"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	var found bool
	for _, item := range admin.MenuItems() {
		if item.Route == "/sales-analytics-dashboard" {
			found = item.Label == "Análisis de ventas"
		}
	}
	if !found {
		t.Fatalf("expected spanish label for sales analytics, got %+v", admin.MenuItems())
	}
}

func TestAdminBootstrapPropagatesErrors(t *testing.T) {
	admin, err := goadmin.New(goadmin.Config{
		EnableDashboard: true,
		Service:         newService(t),
		MenuBuilder:     &stubMenuBuilder{err: errors.New("menu down")},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := admin.Bootstrap(context.Background()); err == nil {
		t.Fatalf("expected bootstrap error")
	}
}

func TestAdminDisabledSkipsBootstrap(t *testing.T) {
	builder := &stubMenuBuilder{}
	admin, err := goadmin.New(goadmin.Config{
		EnableDashboard: false,
		MenuBuilder:     builder,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := admin.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	if len(builder.items) != 0 {
		t.Fatalf("expected 0 calls, got %d", len(builder.items))
	}
	if admin.Dashboard() != nil {
		t.Fatalf("expected nil dashboard when disabled")
	}
	if _, err := goadmin.New(goadmin.Config{EnableDashboard: true}); err == nil {
		t.Fatalf("expected error without service")
	}
}
