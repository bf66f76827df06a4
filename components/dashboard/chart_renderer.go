package dashboard

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "360px"

// Supported chart types.
const (
	ChartBar     = "bar"
	ChartLine    = "line"
	ChartArea    = "area"
	ChartPie     = "pie"
	ChartScatter = "scatter"
	ChartGauge   = "gauge"
)

// ChartSpec binds a dataset to a chart through an adapter.
type ChartSpec struct {
	ID         string       `json:"id" yaml:"id"`
	Title      string       `json:"title" yaml:"title"`
	Subtitle   string       `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	Type       string       `json:"type" yaml:"type"`
	Dataset    string       `json:"dataset" yaml:"dataset"`
	Adapter    ChartAdapter `json:"adapter" yaml:"adapter"`
	SeriesName string       `json:"series_name,omitempty" yaml:"series_name,omitempty"`
}

// ChartView is a rendered chart ready to embed in a page.
type ChartView struct {
	ID     string       `json:"id"`
	Title  string       `json:"title"`
	Type   string       `json:"type"`
	Theme  string       `json:"theme"`
	HTML   string       `json:"html"`
	Tuples []ChartTuple `json:"tuples"`
}

// ThemeResolver selects a chart theme per viewer.
type ThemeResolver func(ViewerContext) string

// ChartRenderer renders adapted tuples into server-side go-echarts markup.
type ChartRenderer struct {
	cache         RenderCache
	theme         string
	themeResolver ThemeResolver
	assetsHost    string
	translator    TranslationService
}

// ChartRendererOption customizes renderer behavior.
type ChartRendererOption func(*ChartRenderer)

// WithChartCache injects a render cache. Passing nil disables caching.
func WithChartCache(cache RenderCache) ChartRendererOption {
	return func(r *ChartRenderer) {
		r.cache = cache
	}
}

// WithChartTheme sets a static theme (defaults to Westeros).
func WithChartTheme(theme string) ChartRendererOption {
	return func(r *ChartRenderer) {
		r.theme = theme
	}
}

// WithChartThemeResolver resolves themes dynamically per viewer.
func WithChartThemeResolver(resolver ThemeResolver) ChartRendererOption {
	return func(r *ChartRenderer) {
		r.themeResolver = resolver
	}
}

// WithChartAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithChartAssetsHost(host string) ChartRendererOption {
	return func(r *ChartRenderer) {
		r.assetsHost = host
	}
}

// WithChartTranslator localizes chart titles.
func WithChartTranslator(svc TranslationService) ChartRendererOption {
	return func(r *ChartRenderer) {
		r.translator = svc
	}
}

// NewChartRenderer builds a renderer backed by a five minute in-memory cache.
func NewChartRenderer(opts ...ChartRendererOption) *ChartRenderer {
	r := &ChartRenderer{
		cache:      NewChartCache(5 * time.Minute),
		theme:      types.ThemeWesteros,
		assetsHost: DefaultEChartsAssetsHost(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render adapts rows through the chart spec and renders the chart markup.
func (r *ChartRenderer) Render(ctx context.Context, viewer ViewerContext, spec ChartSpec, rows []Row) (ChartView, error) {
	chartType := strings.ToLower(spec.Type)
	if !supportedChartType(chartType) {
		return ChartView{}, fmt.Errorf("unsupported chart type: %s", spec.Type)
	}

	title := spec.Title
	if r.translator != nil {
		key := fmt.Sprintf("dashboard.chart.%s.title", spec.ID)
		title = translateOrFallback(ctx, r.translator, key, viewer.Locale, title, nil)
	}

	tuples := spec.Adapter.Tuples(rows)
	theme := r.resolveTheme(viewer)
	view := ChartView{
		ID:     spec.ID,
		Title:  title,
		Type:   chartType,
		Theme:  theme,
		Tuples: tuples,
	}

	renderFn := func() (string, error) {
		return r.render(chartType, title, spec.Subtitle, spec.seriesName(), tuples, theme)
	}

	var (
		html string
		err  error
	)
	if r.cache != nil {
		key := fmt.Sprintf("%s:%s:%s:%s", spec.ID, chartType, theme, contentHash(struct {
			Title  string
			Tuples []ChartTuple
		}{title, tuples}))
		html, err = r.cache.GetOrRender(ctx, key, renderFn)
	} else {
		html, err = renderFn()
	}
	if err != nil {
		return ChartView{}, err
	}
	view.HTML = html
	return view, nil
}

func (s ChartSpec) seriesName() string {
	if s.SeriesName != "" {
		return s.SeriesName
	}
	if s.Title != "" {
		return s.Title
	}
	return "Series"
}

func supportedChartType(chartType string) bool {
	switch chartType {
	case ChartBar, ChartLine, ChartArea, ChartPie, ChartScatter, ChartGauge:
		return true
	default:
		return false
	}
}

func (r *ChartRenderer) render(chartType, title, subtitle, seriesName string, tuples []ChartTuple, theme string) (string, error) {
	xAxis, series := GroupTuples(tuples, seriesName)
	global := r.globalChartOptions(title, subtitle, theme)
	switch chartType {
	case ChartBar:
		bar := charts.NewBar()
		bar.SetGlobalOptions(global...)
		bar.SetXAxis(xAxis)
		for _, s := range series {
			bar.AddSeries(s.Name, toBarData(s.Points))
		}
		return renderChart(bar)
	case ChartLine, ChartArea:
		line := charts.NewLine()
		line.SetGlobalOptions(global...)
		line.SetXAxis(xAxis)
		for _, s := range series {
			line.AddSeries(s.Name, toLineData(s.Points))
		}
		line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
		if chartType == ChartArea {
			line.SetSeriesOptions(charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: opts.Float(0.3)}))
		}
		return renderChart(line)
	case ChartPie:
		pie := charts.NewPie()
		pie.SetGlobalOptions(global...)
		for _, s := range series {
			pie.AddSeries(s.Name, toPieData(s.Points))
		}
		return renderChart(pie)
	case ChartScatter:
		scatter := charts.NewScatter()
		scatter.SetGlobalOptions(global...)
		scatter.SetXAxis(xAxis)
		for _, s := range series {
			scatter.AddSeries(s.Name, toScatterData(s.Points))
		}
		return renderChart(scatter)
	case ChartGauge:
		gauge := charts.NewGauge()
		gauge.SetGlobalOptions(global...)
		for _, s := range series {
			if len(s.Points) == 0 {
				continue
			}
			gauge.AddSeries(s.Name, []opts.GaugeData{{Name: s.Points[0].Label, Value: s.Points[0].Value}})
		}
		return renderChart(gauge)
	default:
		return "", fmt.Errorf("unsupported chart type: %s", chartType)
	}
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *ChartRenderer) globalChartOptions(title, subtitle, theme string) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  theme,
		Width:  "100%",
		Height: defaultChartHeight,
	}
	if r.assetsHost != "" {
		initOpts.AssetsHost = r.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

func (r *ChartRenderer) resolveTheme(viewer ViewerContext) string {
	if r.themeResolver != nil {
		if theme := r.themeResolver(viewer); theme != "" {
			return theme
		}
	}
	if r.theme != "" {
		return r.theme
	}
	return types.ThemeWesteros
}

func toBarData(points []ChartPoint) []opts.BarData {
	data := make([]opts.BarData, len(points))
	for i, point := range points {
		data[i] = opts.BarData{Name: point.Label, Value: point.Value}
	}
	return data
}

func toLineData(points []ChartPoint) []opts.LineData {
	data := make([]opts.LineData, len(points))
	for i, point := range points {
		data[i] = opts.LineData{Name: point.Label, Value: point.Value}
	}
	return data
}

func toPieData(points []ChartPoint) []opts.PieData {
	data := make([]opts.PieData, len(points))
	for i, point := range points {
		name := point.Label
		if name == "" {
			name = fmt.Sprintf("Slice %d", i+1)
		}
		data[i] = opts.PieData{Name: name, Value: point.Value}
	}
	return data
}

func toScatterData(points []ChartPoint) []opts.ScatterData {
	data := make([]opts.ScatterData, len(points))
	for i, point := range points {
		data[i] = opts.ScatterData{Name: point.Label, Value: point.Value}
	}
	return data
}
