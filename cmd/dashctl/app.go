package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-analytics-dashboard/components/dashboard"
	"github.com/goliatone/go-analytics-dashboard/components/dashboard/httpapi"
	"github.com/goliatone/go-analytics-dashboard/pkg/datasource"
	"github.com/goliatone/go-analytics-dashboard/pkg/observability"
)

const (
	transportChi   = "chi"
	transportFiber = "fiber"
)

// application bundles the collaborators shared by both transports.
type application struct {
	cfg        *Config
	logger     *slog.Logger
	service    *dashboard.Service
	prefs      *dashboard.InMemoryThemePreferences
	broadcast  *dashboard.BroadcastHook
	controller *dashboard.Controller
	executor   *httpapi.CommandExecutor
	metrics    *observability.Metrics
	redis      *redis.Client
}

func newApplication(ctx context.Context, cfg *Config, logger *slog.Logger) (*application, error) {
	app := &application{
		cfg:       cfg,
		logger:    logger,
		prefs:     dashboard.NewInMemoryThemePreferences(),
		broadcast: dashboard.NewBroadcastHook(),
		metrics:   observability.NewMetrics("dashboard"),
	}

	fixtures, err := fixtureSource(cfg)
	if err != nil {
		return nil, err
	}

	var cache dashboard.RenderCache = dashboard.NewChartCache(cfg.ChartCacheTTL)
	if cfg.RedisAddr != "" {
		app.redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := app.redis.Ping(ctx).Err(); err != nil {
			logger.Warn("redis ping failed, charts will render uncached on error", slog.Any("error", err))
		}
		cache = dashboard.NewRedisRenderCache(app.redis, cfg.ChartCacheTTL)
	}

	chartOpts := []dashboard.ChartRendererOption{
		dashboard.WithChartCache(cache),
		dashboard.WithChartThemeResolver(app.prefs.Resolver()),
	}
	if cfg.AssetsHost != "" {
		chartOpts = append(chartOpts, dashboard.WithChartAssetsHost(cfg.AssetsHost))
	}

	app.service = dashboard.NewService(dashboard.Options{
		Fixtures:    fixtures,
		Charts:      dashboard.NewChartRenderer(chartOpts...),
		Validator:   dashboard.NewJSONSchemaValidator(),
		RefreshHook: app.broadcast,
		Telemetry:   app.metrics,
		Logger:      logger,
		LoadDelay:   cfg.LoadDelay,
		IdleTTL:     cfg.IdleTTL,
	})

	renderer, err := dashboard.NewTemplateRenderer()
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("dashctl: template renderer: %w", err)
	}
	app.controller = dashboard.NewController(dashboard.ControllerOptions{
		Service:    app.service,
		Renderer:   renderer,
		Logger:     logger,
		AssetsHost: cfg.AssetsHost,
	})
	app.executor = httpapi.NewCommandExecutor(app.service, app.prefs, app.metrics)
	return app, nil
}

func fixtureSource(cfg *Config) (dashboard.FixtureSource, error) {
	switch {
	case cfg.FixturesURL != "":
		source, err := datasource.NewHTTPSource(datasource.HTTPConfig{BaseURL: cfg.FixturesURL, APIKey: cfg.FixturesKey})
		if err != nil {
			return nil, err
		}
		return source, nil
	case cfg.FixturesPath != "":
		return dashboard.FileFixtureSource{Path: cfg.FixturesPath}, nil
	default:
		return dashboard.DefaultFixtureSource(), nil
	}
}

// Close stops pending loads and releases the Redis client.
func (a *application) Close() {
	if a.service != nil {
		a.service.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("redis close", slog.Any("error", err))
		}
	}
}
