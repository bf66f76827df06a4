package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	dashboard "github.com/goliatone/go-analytics-dashboard/components/dashboard"
	"github.com/goliatone/go-analytics-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-analytics-dashboard/components/dashboard/queries"
)

// InstanceHeader carries the page instance id between the HTML page and the API.
const InstanceHeader = "X-Dashboard-Instance"

const maxBodyBytes = 1 << 20

// ViewerResolver builds the viewer for a request.
type ViewerResolver func(*http.Request) dashboard.ViewerContext

// Handlers exposes HTTP endpoints backed by shared commands and queries.
type Handlers struct {
	API        Executor
	Controller *dashboard.Controller
	Broadcast  *dashboard.BroadcastHook
	Viewer     ViewerResolver
	Logger     *slog.Logger
}

// HandlePage renders the page routed at the request path, or the not-found page.
func (h *Handlers) HandlePage(w http.ResponseWriter, r *http.Request) {
	if h.Controller == nil {
		http.Error(w, http.StatusText(http.StatusNotImplemented), http.StatusNotImplemented)
		return
	}
	var buf bytes.Buffer
	result, err := h.Controller.RenderPage(r.Context(), h.viewer(r), r.URL.Path, r.URL.Query().Get("instance"), &buf)
	if err != nil {
		h.logger().Error("write page", "path", r.URL.Path, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if result.InstanceID != "" {
		w.Header().Set(InstanceHeader, result.InstanceID)
	}
	w.WriteHeader(result.Status)
	_, _ = w.Write(buf.Bytes())
}

// HandleListInstances lists mounted page instances.
func (h *Handlers) HandleListInstances(w http.ResponseWriter, r *http.Request) {
	list, err := h.API.Instances(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"instances": list})
}

type mountRequest struct {
	Path string `json:"path"`
}

// HandleMount mounts the page at the posted path and returns its first snapshot.
func (h *Handlers) HandleMount(w http.ResponseWriter, r *http.Request) {
	var payload mountRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	snap, err := h.API.Mount(r.Context(), queries.MountPageInput{Viewer: h.viewer(r), Path: payload.Path})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set(InstanceHeader, snap.InstanceID)
	writeJSON(w, http.StatusCreated, snap)
}

// HandleSnapshot returns the current snapshot of an instance.
func (h *Handlers) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.API.Snapshot(r.Context(), queries.PageSnapshotInput{InstanceID: chi.URLParam(r, "id")})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleUnmount drops an instance.
func (h *Handlers) HandleUnmount(w http.ResponseWriter, r *http.Request) {
	if err := h.API.Unmount(r.Context(), commands.UnmountPageInput{InstanceID: chi.URLParam(r, "id")}); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRefresh restarts the simulated load of an instance.
func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.API.Refresh(r.Context(), commands.RefreshPageInput{InstanceID: id}); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "loading", "instance_id": id})
}

type filterRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// HandleSetFilter changes a page-level filter.
func (h *Handlers) HandleSetFilter(w http.ResponseWriter, r *http.Request) {
	var payload filterRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	id := chi.URLParam(r, "id")
	input := commands.SetPageFilterInput{InstanceID: id, Key: payload.Key, Value: payload.Value}
	if err := h.API.SetFilter(r.Context(), input); err != nil {
		h.fail(w, r, err)
		return
	}
	snap, err := h.API.Snapshot(r.Context(), queries.PageSnapshotInput{InstanceID: id})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, snap)
}

// HandleTable returns a table view as JSON, or CSV when format=csv.
func (h *Handlers) HandleTable(w http.ResponseWriter, r *http.Request) {
	view, err := h.API.Table(r.Context(), queries.TableViewInput{
		InstanceID: chi.URLParam(r, "id"),
		TableID:    chi.URLParam(r, "table"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if strings.EqualFold(r.URL.Query().Get("format"), "csv") {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", view.ID+".csv"))
		if err := dashboard.WriteTableCSV(w, view); err != nil {
			h.logger().Error("write table csv", "table", view.ID, "error", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleTableAction applies a table action and returns the resulting view.
func (h *Handlers) HandleTableAction(w http.ResponseWriter, r *http.Request) {
	var action dashboard.TableAction
	if err := decodeJSON(r, &action); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	id := chi.URLParam(r, "id")
	action.TableID = chi.URLParam(r, "table")
	if err := h.API.UpdateTable(r.Context(), commands.UpdateTableInput{InstanceID: id, Action: action}); err != nil {
		h.fail(w, r, err)
		return
	}
	view, err := h.API.Table(r.Context(), queries.TableViewInput{InstanceID: id, TableID: action.TableID})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type themeRequest struct {
	Theme string `json:"theme"`
}

// HandleSaveTheme stores the viewer's chart theme.
func (h *Handlers) HandleSaveTheme(w http.ResponseWriter, r *http.Request) {
	var payload themeRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	viewer := h.viewer(r)
	if viewer.UserID == "" {
		writeError(w, http.StatusBadRequest, errors.New("viewer user id is required"))
		return
	}
	if err := h.API.SaveTheme(r.Context(), commands.SaveThemeInput{Viewer: viewer, Theme: payload.Theme}); err != nil {
		if errors.Is(err, ErrNotConfigured) {
			h.fail(w, r, err)
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved", "theme": payload.Theme})
}

// HandleEvents streams page events for an instance over SSE.
func (h *Handlers) HandleEvents(w http.ResponseWriter, r *http.Request) {
	if h.Broadcast == nil {
		http.Error(w, http.StatusText(http.StatusNotImplemented), http.StatusNotImplemented)
		return
	}
	h.Broadcast.ServeSSE(w, r, chi.URLParam(r, "id"))
}

// HandleWebSocket streams page events for an instance over a WebSocket.
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.Broadcast == nil {
		http.Error(w, http.StatusText(http.StatusNotImplemented), http.StatusNotImplemented)
		return
	}
	h.Broadcast.ServeWebSocket(w, r, chi.URLParam(r, "id"))
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger().Error("dashboard request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, status, errors.New(http.StatusText(status)))
		return
	}
	writeError(w, status, err)
}

func (h *Handlers) viewer(r *http.Request) dashboard.ViewerContext {
	if h.Viewer != nil {
		return h.Viewer(r)
	}
	return DefaultViewerResolver(r)
}

func (h *Handlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// DefaultViewerResolver reads the viewer from X-User-ID / X-User-Roles headers
// and the locale from the query string or Accept-Language.
func DefaultViewerResolver(r *http.Request) dashboard.ViewerContext {
	viewer := dashboard.ViewerContext{
		UserID: strings.TrimSpace(r.Header.Get("X-User-ID")),
	}
	if roles := r.Header.Get("X-User-Roles"); roles != "" {
		for _, role := range strings.Split(roles, ",") {
			if role = strings.TrimSpace(role); role != "" {
				viewer.Roles = append(viewer.Roles, role)
			}
		}
	}
	if locale := strings.TrimSpace(r.URL.Query().Get("locale")); locale != "" {
		viewer.Locale = strings.ToLower(locale)
	} else {
		viewer.Locale = dashboard.PreferredLocale(r.Header.Get("Accept-Language"))
	}
	return viewer
}

func decodeJSON(r *http.Request, v any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
