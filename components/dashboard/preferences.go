package dashboard

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-echarts/go-echarts/v2/types"
)

// ChartThemes lists the go-echarts themes a viewer may pick.
var ChartThemes = []string{
	types.ThemeWesteros,
	types.ThemeChalk,
	types.ThemeEssos,
	types.ThemeInfographic,
	types.ThemeMacarons,
	types.ThemePurplePassion,
	types.ThemeRoma,
	types.ThemeRomantic,
	types.ThemeShine,
	types.ThemeVintage,
	types.ThemeWalden,
	types.ThemeWonderland,
}

// InMemoryThemePreferences remembers each viewer's chart theme for the life of the process.
type InMemoryThemePreferences struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewInMemoryThemePreferences creates an empty preference store.
func NewInMemoryThemePreferences() *InMemoryThemePreferences {
	return &InMemoryThemePreferences{
		data: make(map[string]string),
	}
}

// SaveTheme stores the viewer's chart theme. An empty theme clears the preference.
func (s *InMemoryThemePreferences) SaveTheme(_ context.Context, viewer ViewerContext, theme string) error {
	if viewer.UserID == "" {
		return fmt.Errorf("dashboard: viewer context missing user id")
	}
	theme = strings.TrimSpace(strings.ToLower(theme))
	s.mu.Lock()
	defer s.mu.Unlock()
	if theme == "" {
		delete(s.data, viewer.UserID)
		return nil
	}
	if !knownChartTheme(theme) {
		return fmt.Errorf("dashboard: unknown chart theme %q", theme)
	}
	s.data[viewer.UserID] = theme
	return nil
}

// Theme returns the stored theme, or "" when the viewer has none.
func (s *InMemoryThemePreferences) Theme(viewer ViewerContext) string {
	if viewer.UserID == "" {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[viewer.UserID]
}

// Resolver adapts the store to a ChartRenderer theme resolver.
func (s *InMemoryThemePreferences) Resolver() ThemeResolver {
	return s.Theme
}

func knownChartTheme(theme string) bool {
	for _, t := range ChartThemes {
		if t == theme {
			return true
		}
	}
	return false
}
