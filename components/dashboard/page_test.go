package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func regionRows() []Row {
	return []Row{
		{ID: "1", Values: map[string]any{"region": "europe", "revenue": 10}},
		{ID: "2", Values: map[string]any{"region": "apac", "revenue": 20}},
		{ID: "3", Values: map[string]any{"revenue": 5}},
		{ID: "4", Values: map[string]any{"region": "Europe", "revenue": "n/a"}},
	}
}

func TestApplyPageFilters(t *testing.T) {
	filters := []PageFilter{{Key: "region", Field: "region", Options: []string{"europe", "apac"}}}

	rows := ApplyPageFilters(regionRows(), filters, map[string]string{"region": "europe"})
	assert.Equal(t, []string{"1", "3", "4"}, rowIDs(rows))

	all := ApplyPageFilters(regionRows(), filters, map[string]string{"region": FilterAll})
	assert.Len(t, all, 4)

	unset := ApplyPageFilters(regionRows(), filters, nil)
	assert.Len(t, unset, 4)
}

func TestPageFilterAllows(t *testing.T) {
	filter := PageFilter{Key: "region", Options: []string{"europe"}}
	assert.True(t, filter.Allows(FilterAll))
	assert.True(t, filter.Allows("europe"))
	assert.False(t, filter.Allows("mars"))
	assert.Equal(t, FilterAll, filter.DefaultValue())

	filter.Default = "europe"
	assert.Equal(t, "europe", filter.DefaultValue())
}

func TestPageDefinitionValidate(t *testing.T) {
	def := PageDefinition{Code: "p", Path: "/p"}
	require.NoError(t, def.Validate())

	require.Error(t, PageDefinition{Path: "/p"}.Validate())
	require.Error(t, PageDefinition{Code: "p", Path: "p"}.Validate())

	dup := PageDefinition{Code: "p", Path: "/p", Tables: []TableBinding{
		{Schema: TableSchema{ID: "t"}, Dataset: "d"},
		{Schema: TableSchema{ID: "t"}, Dataset: "d"},
	}}
	require.Error(t, dup.Validate())

	badChart := PageDefinition{Code: "p", Path: "/p", Charts: []ChartSpec{{ID: "c", Type: "radar"}}}
	require.Error(t, badChart.Validate())
}

func TestMetricInputUsesFixture(t *testing.T) {
	prior := 80.0
	doc := &FixtureDocument{Metrics: map[string]MetricFixture{"revenue": {Value: 100, Prior: &prior}}}

	in, ok := metricInput(MetricSpec{Key: "revenue", Label: "Revenue"}, doc, nil)
	require.True(t, ok)
	assert.Equal(t, 100.0, in.Value)
	require.NotNil(t, in.PriorValue)
	assert.Equal(t, 80.0, *in.PriorValue)

	_, ok = metricInput(MetricSpec{Key: "missing"}, doc, nil)
	assert.False(t, ok)
}

func TestMetricInputAggregates(t *testing.T) {
	rows := regionRows()
	sum, ok := metricInput(MetricSpec{Key: "x", Field: "revenue", Aggregate: AggregateSum}, nil, rows)
	require.True(t, ok)
	assert.Equal(t, 35.0, sum.Value)

	avg, _ := metricInput(MetricSpec{Key: "x", Field: "revenue", Aggregate: AggregateAvg}, nil, rows)
	assert.InDelta(t, 35.0/3, avg.Value, 0.0001)

	count, _ := metricInput(MetricSpec{Key: "x", Aggregate: AggregateCount}, nil, rows)
	assert.Equal(t, 4.0, count.Value)

	empty, _ := metricInput(MetricSpec{Key: "x", Field: "revenue", Aggregate: AggregateAvg}, nil, nil)
	assert.Equal(t, 0.0, empty.Value)

	_, ok = metricInput(MetricSpec{Key: "x", Aggregate: "median"}, nil, rows)
	assert.False(t, ok)
}

func TestDefaultPagesAreValid(t *testing.T) {
	pages := DefaultPages()
	require.Len(t, pages, 4)
	paths := map[string]bool{}
	for _, def := range pages {
		require.NoError(t, def.Validate(), def.Code)
		paths[def.Path] = true
	}
	for _, path := range []string{PathExecutiveOverview, PathOperationsCommand, PathProductPerformance, PathSalesAnalytics} {
		assert.True(t, paths[path], path)
	}
}
