package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-analytics-dashboard/components/dashboard"
)

const defaultFixtures = "../../components/dashboard/fixtures/default.yaml"

func TestRoutesCommandListsPages(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, (&routesCmd{Locale: "es"}).Run(&out))

	text := out.String()
	for _, path := range []string{"/", "/executive-overview-dashboard", "/operations-command-center", "/product-performance-dashboard", "/sales-analytics-dashboard"} {
		assert.Contains(t, text, path+" ")
	}
	assert.Contains(t, text, "Análisis de ventas")
}

func TestTableCommandPrintsDerivedView(t *testing.T) {
	var out bytes.Buffer
	cmd := &tableCmd{
		Page:     "/product-performance-dashboard",
		Table:    "products",
		Sort:     "stock_level",
		Filter:   "i",
		PageNum:  1,
		PageSize: 2,
	}
	require.NoError(t, cmd.Run(context.Background(), &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[len(lines)-1], "page 1 of")
}

func TestTableCommandCSVAndErrors(t *testing.T) {
	var out bytes.Buffer
	cmd := &tableCmd{Page: "/product-performance-dashboard", Table: "products", CSV: true, Set: []string{"category=tablets"}}
	require.NoError(t, cmd.Run(context.Background(), &out))
	assert.True(t, strings.HasPrefix(out.String(), "ID,Product,SKU"))
	assert.NotContains(t, out.String(), "iPhone")

	err := (&tableCmd{Page: "/nowhere", Table: "products"}).Run(context.Background(), &out)
	require.Error(t, err)

	err = (&tableCmd{Page: "/product-performance-dashboard", Table: "products", Set: []string{"broken"}}).Run(context.Background(), &out)
	require.Error(t, err)
}

func TestValidateCommand(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, (&validateCmd{Path: defaultFixtures}).Run(&out))
	assert.Contains(t, out.String(), "tables valid")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(`version: "1"
datasets:
  products:
    - id: p1
      values: {name: Widget, price: "expensive"}
`), 0o644))
	require.Error(t, (&validateCmd{Path: bad}).Run(&out))
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("DASHBOARD_TRANSPORT", "Fiber")
	t.Setenv("DASHBOARD_LOAD_DELAY", "250ms")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, transportFiber, cfg.Transport)
	assert.Equal(t, 250*time.Millisecond, cfg.LoadDelay)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 30*time.Minute, cfg.IdleTTL)
	assert.False(t, cfg.IsProduction())

	t.Setenv("DASHBOARD_TRANSPORT", "grpc")
	_, err = LoadConfig()
	require.Error(t, err)

	t.Setenv("DASHBOARD_TRANSPORT", "chi")
	t.Setenv("DASHBOARD_FIXTURES_PATH", "a.yaml")
	t.Setenv("DASHBOARD_FIXTURES_URL", "http://example.com")
	_, err = LoadConfig()
	require.Error(t, err)
}

func TestNewApplicationWiresCollaborators(t *testing.T) {
	t.Setenv("DASHBOARD_FIXTURES_PATH", defaultFixtures)
	cfg, err := LoadConfig()
	require.NoError(t, err)
	cfg.LoadDelay = time.Millisecond

	app, err := newApplication(context.Background(), cfg, NewLogger(cfg))
	require.NoError(t, err)
	t.Cleanup(app.Close)

	inst, err := app.service.Mount(context.Background(), viewerFor("u1"), "/sales-analytics-dashboard")
	require.NoError(t, err)
	require.NoError(t, app.service.WaitLoaded(context.Background(), inst.ID))

	var page bytes.Buffer
	result, err := app.controller.RenderPage(context.Background(), viewerFor("u1"), "/sales-analytics-dashboard", inst.ID, &page)
	require.NoError(t, err)
	assert.Equal(t, 200, result.Status)
	assert.Contains(t, page.String(), "echarts")
}

func viewerFor(userID string) dashboard.ViewerContext {
	return dashboard.ViewerContext{UserID: userID, Locale: "en"}
}
