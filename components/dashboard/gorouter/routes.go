package gorouter

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-analytics-dashboard/components/dashboard"
	"github.com/goliatone/go-analytics-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-analytics-dashboard/components/dashboard/httpapi"
	"github.com/goliatone/go-analytics-dashboard/components/dashboard/queries"
)

// ViewerResolver converts a router.Context into a dashboard.ViewerContext.
type ViewerResolver func(router.Context) dashboard.ViewerContext

// Config wires go-router with the dashboard controller, API and broadcast hook.
type Config[T any] struct {
	Router         router.Router[T]
	Controller     *dashboard.Controller
	API            httpapi.Executor
	Broadcast      *dashboard.BroadcastHook
	Pages          *dashboard.PageRegistry
	ViewerResolver ViewerResolver
	BasePath       string
	Routes         RouteConfig
}

// RouteConfig customizes the relative paths used for API endpoints.
type RouteConfig struct {
	API       string
	Instance  string
	Refresh   string
	Filters   string
	Table     string
	Theme     string
	WebSocket string
}

// Register mounts page routes (HTML), the JSON API and the event WebSocket on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	pages := cfg.Pages
	if pages == nil {
		pages = dashboard.NewPageRegistry()
	}
	viewerResolver := cfg.ViewerResolver
	if viewerResolver == nil {
		viewerResolver = defaultViewerResolver
	}

	var html router.Router[T] = cfg.Router
	base := strings.TrimRight(cfg.BasePath, "/")
	if base != "" {
		html = cfg.Router.Group(base)
	}
	for _, path := range pages.Routes() {
		html.Get(path, pageHandler(cfg.Controller, viewerResolver, path))
	}

	if cfg.API != nil {
		registerAPI(cfg.Router.Group(routes.API), cfg.API, viewerResolver, routes)
	}
	if cfg.Broadcast != nil {
		registerWebSocket(cfg.Router.Group(routes.API), cfg.Broadcast, routes.WebSocket)
	}

	// Registered last so the concrete page routes win.
	html.Get("/*", router.WrapHandler(func(ctx router.Context) error {
		return renderPage(ctx, cfg.Controller, viewerResolver, "/"+ctx.Param("*"))
	}))
	return nil
}

func pageHandler(controller *dashboard.Controller, resolver ViewerResolver, path string) router.HandlerFunc {
	return router.WrapHandler(func(ctx router.Context) error {
		return renderPage(ctx, controller, resolver, path)
	})
}

func renderPage(ctx router.Context, controller *dashboard.Controller, resolver ViewerResolver, path string) error {
	var buf bytes.Buffer
	result, err := controller.RenderPage(ctx.Context(), resolver(ctx), path, ctx.Query("instance"), &buf)
	if err != nil {
		return respondError(ctx, http.StatusInternalServerError, err)
	}
	ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
	if result.InstanceID != "" {
		ctx.SetHeader(httpapi.InstanceHeader, result.InstanceID)
	}
	ctx.Status(result.Status)
	return ctx.Send(buf.Bytes())
}

func registerAPI[T any](r router.Router[T], api httpapi.Executor, resolver ViewerResolver, routes RouteConfig) {
	r.Get("", router.WrapHandler(func(ctx router.Context) error {
		list, err := api.Instances(ctx.Context())
		if err != nil {
			return respondErr(ctx, err)
		}
		return ctx.JSON(http.StatusOK, map[string]any{"instances": list})
	}))

	r.Post("", router.WrapHandler(func(ctx router.Context) error {
		var payload struct {
			Path string `json:"path"`
		}
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		snap, err := api.Mount(ctx.Context(), queries.MountPageInput{Viewer: resolver(ctx), Path: payload.Path})
		if err != nil {
			return respondErr(ctx, err)
		}
		ctx.SetHeader(httpapi.InstanceHeader, snap.InstanceID)
		return ctx.JSON(http.StatusCreated, snap)
	}))

	r.Get(routes.Instance, router.WrapHandler(func(ctx router.Context) error {
		snap, err := api.Snapshot(ctx.Context(), queries.PageSnapshotInput{InstanceID: ctx.Param("id")})
		if err != nil {
			return respondErr(ctx, err)
		}
		return ctx.JSON(http.StatusOK, snap)
	}))

	r.Delete(routes.Instance, router.WrapHandler(func(ctx router.Context) error {
		if err := api.Unmount(ctx.Context(), commands.UnmountPageInput{InstanceID: ctx.Param("id")}); err != nil {
			return respondErr(ctx, err)
		}
		return ctx.JSON(http.StatusNoContent, map[string]string{"status": "unmounted"})
	}))

	r.Post(routes.Refresh, router.WrapHandler(func(ctx router.Context) error {
		id := ctx.Param("id")
		if err := api.Refresh(ctx.Context(), commands.RefreshPageInput{InstanceID: id}); err != nil {
			return respondErr(ctx, err)
		}
		return ctx.JSON(http.StatusAccepted, map[string]string{"status": "loading", "instance_id": id})
	}))

	r.Post(routes.Filters, router.WrapHandler(func(ctx router.Context) error {
		var payload struct {
			Key   string `json:"key"`
			Value string `json:"value"`
		}
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		id := ctx.Param("id")
		if err := api.SetFilter(ctx.Context(), commands.SetPageFilterInput{InstanceID: id, Key: payload.Key, Value: payload.Value}); err != nil {
			return respondErr(ctx, err)
		}
		snap, err := api.Snapshot(ctx.Context(), queries.PageSnapshotInput{InstanceID: id})
		if err != nil {
			return respondErr(ctx, err)
		}
		return ctx.JSON(http.StatusAccepted, snap)
	}))

	r.Get(routes.Table, router.WrapHandler(func(ctx router.Context) error {
		view, err := api.Table(ctx.Context(), queries.TableViewInput{InstanceID: ctx.Param("id"), TableID: ctx.Param("table")})
		if err != nil {
			return respondErr(ctx, err)
		}
		return ctx.JSON(http.StatusOK, view)
	}))

	r.Post(routes.Table, router.WrapHandler(func(ctx router.Context) error {
		var action dashboard.TableAction
		if err := json.Unmarshal(ctx.Body(), &action); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		id := ctx.Param("id")
		action.TableID = ctx.Param("table")
		if err := api.UpdateTable(ctx.Context(), commands.UpdateTableInput{InstanceID: id, Action: action}); err != nil {
			return respondErr(ctx, err)
		}
		view, err := api.Table(ctx.Context(), queries.TableViewInput{InstanceID: id, TableID: action.TableID})
		if err != nil {
			return respondErr(ctx, err)
		}
		return ctx.JSON(http.StatusOK, view)
	}))

	r.Post(routes.Theme, router.WrapHandler(func(ctx router.Context) error {
		var payload struct {
			Theme string `json:"theme"`
		}
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		viewer := resolver(ctx)
		if viewer.UserID == "" {
			return respondError(ctx, http.StatusBadRequest, errors.New("viewer user id is required"))
		}
		if err := api.SaveTheme(ctx.Context(), commands.SaveThemeInput{Viewer: viewer, Theme: payload.Theme}); err != nil {
			if errors.Is(err, httpapi.ErrNotConfigured) {
				return respondErr(ctx, err)
			}
			return respondError(ctx, http.StatusBadRequest, err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "saved", "theme": payload.Theme})
	}))
}

// registerWebSocket streams every page event; clients filter on instance_id.
func registerWebSocket[T any](r router.Router[T], hook *dashboard.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe("")
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func defaultViewerResolver(ctx router.Context) dashboard.ViewerContext {
	var viewer dashboard.ViewerContext
	if v, ok := ctx.Locals("user_id").(string); ok {
		viewer.UserID = v
	} else {
		viewer.UserID = strings.TrimSpace(ctx.Header("X-User-ID"))
	}
	if roles, ok := ctx.Locals("roles").([]string); ok {
		viewer.Roles = roles
	}
	viewer.Locale = inferLocale(ctx)
	return viewer
}

func inferLocale(ctx router.Context) string {
	if locale, ok := ctx.Locals("locale").(string); ok && locale != "" {
		return locale
	}
	if locale := strings.TrimSpace(ctx.Query("locale")); locale != "" {
		return strings.ToLower(locale)
	}
	return dashboard.PreferredLocale(ctx.Header("Accept-Language"))
}

func respondErr(ctx router.Context, err error) error {
	status := httpapi.StatusFor(err)
	if status >= http.StatusInternalServerError {
		return respondError(ctx, status, errors.New(http.StatusText(status)))
	}
	return respondError(ctx, status, err)
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.API == "" {
		routes.API = "/api/pages"
	}
	if routes.Instance == "" {
		routes.Instance = "/:id"
	}
	if routes.Refresh == "" {
		routes.Refresh = "/:id/refresh"
	}
	if routes.Filters == "" {
		routes.Filters = "/:id/filters"
	}
	if routes.Table == "" {
		routes.Table = "/:id/tables/:table"
	}
	if routes.Theme == "" {
		routes.Theme = "/preferences/theme"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/ws"
	}
	return routes
}
