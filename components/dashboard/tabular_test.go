package dashboard

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stockSchema() TableSchema {
	return TableSchema{
		ID: "stock",
		Columns: []Column{
			{Key: "name", Label: "Name", Kind: ColumnString, Searchable: true},
			{Key: "sku", Label: "SKU", Kind: ColumnString, Searchable: true},
			{Key: "stock_level", Label: "Stock", Kind: ColumnNumber},
			{Key: "reorder_point", Label: "Reorder", Kind: ColumnNumber},
		},
		DefaultPageSize: 10,
	}
}

func stockRows() []Row {
	names := []string{"iPhone", "Galaxy", "Pixel", "iPad", "Watch"}
	levels := []int{3, 15, 7, 25, 4}
	rows := make([]Row, len(names))
	for i := range names {
		rows[i] = Row{
			ID: fmt.Sprintf("p%d", i+1),
			Values: map[string]any{
				"name":          names[i],
				"sku":           fmt.Sprintf("SKU-%d", i+1),
				"stock_level":   levels[i],
				"reorder_point": 10,
			},
		}
	}
	return rows
}

func columnValues(rows []Row, key string) []any {
	out := make([]any, len(rows))
	for i, row := range rows {
		out[i], _ = row.Value(key)
	}
	return out
}

func rowIDs(rows []Row) []string {
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = row.ID
	}
	return out
}

func TestFilterRowsEmptyTextIsIdentity(t *testing.T) {
	rows := stockRows()
	out := FilterRows(rows, []string{"name"}, "")
	require.Len(t, out, len(rows))
	assert.Equal(t, rowIDs(rows), rowIDs(out))

	out[0] = Row{ID: "mutated"}
	assert.Equal(t, "p1", rows[0].ID, "filter must return a copy")
}

func TestFilterRowsCaseInsensitiveSubstring(t *testing.T) {
	out := FilterRows(stockRows(), []string{"name"}, "i")
	assert.Equal(t, []any{"iPhone", "Pixel", "iPad"}, columnValues(out, "name"))

	out = FilterRows(stockRows(), []string{"name"}, "WATCH")
	assert.Equal(t, []any{"Watch"}, columnValues(out, "name"))
}

func TestFilterRowsKeepsWhitespaceInNeedle(t *testing.T) {
	rows := append(stockRows(), Row{ID: "p6", Values: map[string]any{"name": "Apple Watch", "sku": "SKU-6"}})

	out := FilterRows(rows, []string{"name"}, "   ")
	assert.Empty(t, out, "three spaces match no name")

	out = FilterRows(rows, []string{"name"}, " ")
	assert.Equal(t, []string{"p6"}, rowIDs(out))

	out = FilterRows(rows, []string{"name"}, "e w")
	assert.Equal(t, []string{"p6"}, rowIDs(out))

	out = FilterRows(rows, []string{"name"}, "  WATCH ")
	assert.Empty(t, out)
}

func TestFilterRowsOnlyMatchesSearchableFields(t *testing.T) {
	out := FilterRows(stockRows(), []string{"name"}, "SKU-")
	assert.Empty(t, out)
	out = FilterRows(stockRows(), []string{"name", "sku"}, "sku-2")
	assert.Equal(t, []string{"p2"}, rowIDs(out))
}

func TestFilterRowsIsIdempotent(t *testing.T) {
	once := FilterRows(stockRows(), []string{"name"}, "a")
	twice := FilterRows(once, []string{"name"}, "a")
	assert.Equal(t, rowIDs(once), rowIDs(twice))
}

func TestSortRowsNumericAscending(t *testing.T) {
	rows := stockRows()
	SortRows(rows, "stock_level", SortAscending)
	assert.Equal(t, []any{3, 4, 7, 15, 25}, columnValues(rows, "stock_level"))
}

func TestSortRowsDescendingReversesNonTiedRows(t *testing.T) {
	asc := stockRows()
	SortRows(asc, "name", SortAscending)
	desc := stockRows()
	SortRows(desc, "name", SortDescending)
	require.Len(t, desc, len(asc))
	for i := range asc {
		assert.Equal(t, asc[i].ID, desc[len(desc)-1-i].ID)
	}
	assert.Equal(t, []any{"Galaxy", "iPad", "iPhone", "Pixel", "Watch"}, columnValues(asc, "name"))
}

func TestSortRowsIsStableOnTies(t *testing.T) {
	rows := []Row{
		{ID: "a", Values: map[string]any{"group": "x", "n": 2}},
		{ID: "b", Values: map[string]any{"group": "y", "n": 1}},
		{ID: "c", Values: map[string]any{"group": "X", "n": 3}},
		{ID: "d", Values: map[string]any{"group": "y", "n": 0}},
		{ID: "e", Values: map[string]any{"group": "x", "n": 5}},
	}
	SortRows(rows, "group", SortAscending)
	assert.Equal(t, []string{"a", "c", "e", "b", "d"}, rowIDs(rows))

	SortRows(rows, "group", SortDescending)
	assert.Equal(t, []string{"b", "d", "a", "c", "e"}, rowIDs(rows))

	SortRows(rows, "group", SortDescending)
	assert.Equal(t, []string{"b", "d", "a", "c", "e"}, rowIDs(rows), "repeated sort must not reorder ties")
}

func TestSortRowsMissingValuesSortLast(t *testing.T) {
	build := func() []Row {
		return []Row{
			{ID: "none", Values: map[string]any{}},
			{ID: "two", Values: map[string]any{"roas": 2.0}},
			{ID: "nil", Values: map[string]any{"roas": nil}},
			{ID: "nine", Values: map[string]any{"roas": 9.5}},
		}
	}
	asc := build()
	SortRows(asc, "roas", SortAscending)
	assert.Equal(t, []string{"two", "nine", "none", "nil"}, rowIDs(asc))

	desc := build()
	SortRows(desc, "roas", SortDescending)
	assert.Equal(t, []string{"nine", "two", "none", "nil"}, rowIDs(desc))
}

func TestSortRowsEmptyKeyKeepsOrder(t *testing.T) {
	rows := stockRows()
	SortRows(rows, "", SortDescending)
	assert.Equal(t, []string{"p1", "p2", "p3", "p4", "p5"}, rowIDs(rows))
}

func TestPaginateCoversFilteredSetExactlyOnce(t *testing.T) {
	schema := stockSchema()
	rows := stockRows()
	cfg := ViewConfig{SortKey: "stock_level", SortDirection: SortAscending, Page: 1, PageSize: 2}
	first := ApplyView(schema, rows, cfg)
	require.Equal(t, 3, first.TotalPages)

	var collected []string
	for page := 1; page <= first.TotalPages; page++ {
		cfg.Page = page
		collected = append(collected, rowIDs(ApplyView(schema, rows, cfg).Rows)...)
	}
	full := FilterRows(rows, schema.SearchableKeys(), "")
	SortRows(full, "stock_level", SortAscending)
	assert.Equal(t, rowIDs(full), collected)
}

func TestApplyViewPaginationBoundaries(t *testing.T) {
	schema := stockSchema()
	view := ApplyView(schema, stockRows(), ViewConfig{Page: 3, PageSize: 2})
	assert.Equal(t, 5, view.FilteredCount)
	assert.Equal(t, 3, view.TotalPages)
	assert.Len(t, view.Rows, 1)

	beyond := ApplyView(schema, stockRows(), ViewConfig{Page: 9, PageSize: 2})
	assert.NotNil(t, beyond.Rows)
	assert.Empty(t, beyond.Rows)
	assert.Equal(t, 3, beyond.TotalPages)
}

func TestApplyViewFilterSortPaginate(t *testing.T) {
	view := ApplyView(stockSchema(), stockRows(), ViewConfig{
		SortKey:       "stock_level",
		SortDirection: SortDescending,
		FilterText:    "i",
		Page:          1,
		PageSize:      2,
	})
	assert.Equal(t, 3, view.FilteredCount)
	assert.Equal(t, 2, view.TotalPages)
	assert.Equal(t, []any{"iPad", "Pixel"}, columnValues(view.Rows, "name"))
}

func TestApplyViewDoesNotMutateInput(t *testing.T) {
	rows := stockRows()
	_ = ApplyView(stockSchema(), rows, ViewConfig{SortKey: "stock_level", SortDirection: SortDescending, Page: 1, PageSize: 5})
	assert.Equal(t, []string{"p1", "p2", "p3", "p4", "p5"}, rowIDs(rows))
}

func TestApplyViewNormalizesZeroConfig(t *testing.T) {
	view := ApplyView(stockSchema(), stockRows(), ViewConfig{})
	assert.Equal(t, 1, view.Config.Page)
	assert.Equal(t, 10, view.Config.PageSize)
	assert.Equal(t, SortAscending, view.Config.SortDirection)
	assert.Len(t, view.Rows, 5)
	assert.Equal(t, 1, view.TotalPages)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 5))
	assert.Equal(t, 1, TotalPages(5, 5))
	assert.Equal(t, 2, TotalPages(6, 5))
	assert.Equal(t, 0, TotalPages(6, 0))
}

func TestCompareValuesMixedTypes(t *testing.T) {
	assert.Equal(t, -1, compareValues(2, 10.5))
	assert.Equal(t, 0, compareValues("abc", "ABC"))
	assert.Equal(t, 1, compareValues("b", "A"))
	assert.Equal(t, -1, compareValues("10", "9"), "numeric strings compare lexically")
}
