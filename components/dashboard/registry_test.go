package dashboard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPageRegistryRoutesDefaults(t *testing.T) {
	reg := NewPageRegistry()

	cases := map[string]string{
		"/":                              PageExecutiveOverview,
		"/executive-overview-dashboard":  PageExecutiveOverview,
		"/executive-overview-dashboard/": PageExecutiveOverview,
		" /operations-command-center ":   PageOperationsCommand,
		"product-performance-dashboard":  PageProductPerformance,
		"/sales-analytics-dashboard":     PageSalesAnalytics,
	}
	for path, code := range cases {
		def, err := reg.Resolve(path)
		require.NoError(t, err, path)
		assert.Equal(t, code, def.Code, path)
	}

	_, err := reg.Resolve("/nope")
	require.True(t, errors.Is(err, ErrPageNotFound))

	assert.Equal(t, []string{
		"/",
		"/executive-overview-dashboard",
		"/operations-command-center",
		"/product-performance-dashboard",
		"/sales-analytics-dashboard",
	}, reg.Routes())
}

func TestPageRegistryRejectsPathConflicts(t *testing.T) {
	reg := NewEmptyPageRegistry()
	require.NoError(t, reg.Register(PageDefinition{Code: "a", Path: "/x"}))
	require.Error(t, reg.Register(PageDefinition{Code: "b", Path: "/x/"}))
}

func TestPageRegistryReplaceKeepsOrder(t *testing.T) {
	reg := NewEmptyPageRegistry()
	require.NoError(t, reg.Register(PageDefinition{Code: "a", Title: "A", Path: "/a"}))
	require.NoError(t, reg.Register(PageDefinition{Code: "b", Title: "B", Path: "/b"}))
	require.NoError(t, reg.Register(PageDefinition{Code: "a", Title: "A2", Path: "/a2"}))

	defs := reg.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "A2", defs[0].Title)

	_, err := reg.Resolve("/a")
	require.ErrorIs(t, err, ErrPageNotFound)
	def, err := reg.Resolve("/a2")
	require.NoError(t, err)
	assert.Equal(t, "a", def.Code)
}

func TestPageRegistryAliasRequiresPage(t *testing.T) {
	reg := NewEmptyPageRegistry()
	require.ErrorIs(t, reg.Alias("/", "missing"), ErrPageNotFound)
}

func TestPageRegistryNavigation(t *testing.T) {
	reg := NewEmptyPageRegistry()
	require.NoError(t, reg.Register(PageDefinition{
		Code: "a", Title: "Alpha", Path: "/a",
		TitleLocalized: map[string]string{"ES": "Alfa"},
	}))
	require.NoError(t, reg.Register(PageDefinition{Code: "b", Title: "Beta", Path: "/b"}))
	require.NoError(t, reg.Alias("/", "a"))

	nav := reg.Navigation("/", "es")
	require.Len(t, nav, 2)
	assert.Equal(t, "Alfa", nav[0].Label)
	assert.True(t, nav[0].Active)
	assert.False(t, nav[1].Active)

	none := reg.Navigation("/missing", "")
	for _, item := range none {
		assert.False(t, item.Active)
	}
}

func TestRegisterPageHook(t *testing.T) {
	globalHookMu.Lock()
	saved := globalHooks
	globalHooks = nil
	globalHookMu.Unlock()
	t.Cleanup(func() {
		globalHookMu.Lock()
		globalHooks = saved
		globalHookMu.Unlock()
	})

	RegisterPageHook(func(reg *PageRegistry) error {
		return reg.Register(PageDefinition{Code: "custom", Title: "Custom", Path: "/custom"})
	})
	reg := NewPageRegistry()
	def, err := reg.Resolve("/custom")
	require.NoError(t, err)
	assert.Equal(t, "custom", def.Code)
	assert.Len(t, reg.Definitions(), 5)
}
