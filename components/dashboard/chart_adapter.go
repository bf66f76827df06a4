package dashboard

// ChartAdapter maps row fields onto the x/y/series tuples a chart expects.
type ChartAdapter struct {
	X      string `json:"x" yaml:"x"`
	Y      string `json:"y" yaml:"y"`
	Series string `json:"series,omitempty" yaml:"series,omitempty"`
}

// ChartTuple is a single plotted value.
type ChartTuple struct {
	X      string  `json:"x"`
	Y      float64 `json:"y"`
	Series string  `json:"series,omitempty"`
}

// ChartSeries represents a set of values plotted for a given legend entry.
type ChartSeries struct {
	Name   string
	Points []ChartPoint
}

// ChartPoint represents an individual value (optionally labeled).
type ChartPoint struct {
	Label string
	Value float64
}

// Tuples reshapes rows in their given order. Rows without an x value or a
// numeric y value are skipped.
func (a ChartAdapter) Tuples(rows []Row) []ChartTuple {
	out := make([]ChartTuple, 0, len(rows))
	for _, row := range rows {
		x, ok := row.Value(a.X)
		if !ok {
			continue
		}
		rawY, ok := row.Value(a.Y)
		if !ok {
			continue
		}
		y, ok := numericValue(rawY)
		if !ok {
			continue
		}
		tuple := ChartTuple{X: displayValue(x), Y: y}
		if a.Series != "" {
			if s, ok := row.Value(a.Series); ok {
				tuple.Series = displayValue(s)
			}
		}
		out = append(out, tuple)
	}
	return out
}

// GroupTuples folds tuples into x-axis labels and aligned series, preserving
// first-seen order for both. Tuples without a series land in fallbackName.
// Missing (series, x) combinations plot as zero.
func GroupTuples(tuples []ChartTuple, fallbackName string) ([]string, []ChartSeries) {
	var (
		labels      []string
		labelIndex  = map[string]int{}
		seriesNames []string
		values      = map[string]map[int]float64{}
	)
	for _, tuple := range tuples {
		idx, ok := labelIndex[tuple.X]
		if !ok {
			idx = len(labels)
			labelIndex[tuple.X] = idx
			labels = append(labels, tuple.X)
		}
		name := tuple.Series
		if name == "" {
			name = fallbackName
		}
		if _, ok := values[name]; !ok {
			values[name] = map[int]float64{}
			seriesNames = append(seriesNames, name)
		}
		values[name][idx] += tuple.Y
	}
	series := make([]ChartSeries, 0, len(seriesNames))
	for _, name := range seriesNames {
		points := make([]ChartPoint, len(labels))
		for i, label := range labels {
			points[i] = ChartPoint{Label: label, Value: values[name][i]}
		}
		series = append(series, ChartSeries{Name: name, Points: points})
	}
	return labels, series
}
