package dashboard

import (
	"context"
	"testing"

	"github.com/go-echarts/go-echarts/v2/types"
)

func TestInMemoryThemePreferences(t *testing.T) {
	store := NewInMemoryThemePreferences()
	viewer := ViewerContext{UserID: "user-1", Locale: "en"}
	if err := store.SaveTheme(context.Background(), viewer, " Vintage "); err != nil {
		t.Fatalf("SaveTheme returned error: %v", err)
	}
	if got := store.Resolver()(viewer); got != types.ThemeVintage {
		t.Fatalf("expected vintage theme, got %q", got)
	}
	if err := store.SaveTheme(context.Background(), viewer, "neon"); err == nil {
		t.Fatalf("expected unknown theme to be rejected")
	}
	if err := store.SaveTheme(context.Background(), ViewerContext{}, types.ThemeShine); err == nil {
		t.Fatalf("expected anonymous viewer to be rejected")
	}
	if err := store.SaveTheme(context.Background(), viewer, ""); err != nil {
		t.Fatalf("clearing theme returned error: %v", err)
	}
	if got := store.Theme(viewer); got != "" {
		t.Fatalf("expected cleared theme, got %q", got)
	}
}
