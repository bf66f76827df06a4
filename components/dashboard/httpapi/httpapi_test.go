package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dashboard "github.com/goliatone/go-analytics-dashboard/components/dashboard"
)

type stubRenderer struct{}

func (stubRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	result := "<" + name + ">"
	for _, w := range out {
		_, _ = io.WriteString(w, result)
	}
	return result, nil
}

type testServer struct {
	handler http.Handler
	service *dashboard.Service
	prefs   *dashboard.InMemoryThemePreferences
}

func newTestServer(t *testing.T, opts RouterOptions) *testServer {
	t.Helper()
	service := dashboard.NewService(dashboard.Options{LoadDelay: 200 * time.Millisecond})
	t.Cleanup(service.Close)
	prefs := dashboard.NewInMemoryThemePreferences()
	opts.Handlers = &Handlers{
		API:        NewCommandExecutor(service, prefs, nil),
		Controller: dashboard.NewController(dashboard.ControllerOptions{Service: service, Renderer: stubRenderer{}}),
		Broadcast:  dashboard.NewBroadcastHook(),
	}
	return &testServer{handler: NewRouter(opts), service: service, prefs: prefs}
}

func (s *testServer) do(t *testing.T, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) mount(t *testing.T, path string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/pages", fmt.Sprintf(`{"path":%q}`, path))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var snap dashboard.PageSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	return snap.InstanceID
}

func TestRouterRendersPages(t *testing.T) {
	srv := newTestServer(t, RouterOptions{})

	rec := srv.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<page.html>", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(InstanceHeader))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))

	rec = srv.do(t, http.MethodGet, "/operations-command-center", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodGet, "/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "<not_found.html>", rec.Body.String())
}

func TestRouterReloadWithInstanceKeepsLoadedPage(t *testing.T) {
	srv := newTestServer(t, RouterOptions{})
	path := dashboard.PathSalesAnalytics

	rec := srv.do(t, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, rec.Code)
	id := rec.Header().Get(InstanceHeader)
	require.NotEmpty(t, id)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, srv.service.WaitLoaded(ctx, id))

	rec = srv.do(t, http.MethodGet, path+"?instance="+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, rec.Header().Get(InstanceHeader))
	assert.Len(t, srv.service.Instances(), 1)

	snap, err := srv.service.Snapshot(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, snap.Loading)

	rec = srv.do(t, http.MethodGet, path, "")
	assert.NotEqual(t, id, rec.Header().Get(InstanceHeader), "a reload without the instance mounts afresh")
}

func TestRouterHealthAndMetrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "metrics")
	})
	srv := newTestServer(t, RouterOptions{MetricsHandler: metrics})

	rec := srv.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = srv.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, "metrics", rec.Body.String())
}

func TestAPIPageLifecycle(t *testing.T) {
	srv := newTestServer(t, RouterOptions{})
	id := srv.mount(t, "/product-performance-dashboard")

	rec := srv.do(t, http.MethodGet, "/api/pages", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), id)

	rec = srv.do(t, http.MethodGet, "/api/pages/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/pages/"+id+"/refresh", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = srv.do(t, http.MethodDelete, "/api/pages/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/pages/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPIMountUnknownPath(t *testing.T) {
	srv := newTestServer(t, RouterOptions{})
	rec := srv.do(t, http.MethodPost, "/api/pages", `{"path":"/nope"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/pages", `{"route":"/"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPITableActions(t *testing.T) {
	srv := newTestServer(t, RouterOptions{})
	id := srv.mount(t, "/product-performance-dashboard")
	base := "/api/pages/" + id + "/tables/products"

	rec := srv.do(t, http.MethodPost, base, `{"op":"sort","key":"price","direction":"asc"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var view dashboard.TableView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "price", view.Config.SortKey)
	assert.Equal(t, dashboard.SortAscending, view.Config.SortDirection)

	rec = srv.do(t, http.MethodPost, base, `{"op":"filter","text":"galaxy"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, 2, view.FilteredCount)

	rec = srv.do(t, http.MethodPost, base, `{"op":"explode"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodPost, base, `{"op":"page","page":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/pages/"+id+"/tables/nope", `{"op":"reset"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(t, http.MethodGet, base+"?format=csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "ID,Product,SKU"))
}

func TestAPISetFilter(t *testing.T) {
	srv := newTestServer(t, RouterOptions{})
	id := srv.mount(t, "/sales-analytics-dashboard")

	rec := srv.do(t, http.MethodPost, "/api/pages/"+id+"/filters", `{"key":"region","value":"europe"}`)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	var snap dashboard.PageSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.True(t, snap.Loading)
	require.Len(t, snap.Filters, 1)
	assert.Equal(t, "europe", snap.Filters[0].Value)

	rec = srv.do(t, http.MethodPost, "/api/pages/"+id+"/filters", `{"key":"region","value":"mars"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPISaveTheme(t *testing.T) {
	srv := newTestServer(t, RouterOptions{})

	rec := srv.do(t, http.MethodPut, "/api/preferences/theme", `{"theme":"chalk"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodPut, "/api/preferences/theme", `{"theme":"chalk"}`, "X-User-ID", "u1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "chalk", srv.prefs.Theme(dashboard.ViewerContext{UserID: "u1"}))
}

func TestAPIRateLimit(t *testing.T) {
	srv := newTestServer(t, RouterOptions{RateLimit: 1, RateWindow: time.Minute})
	first := srv.do(t, http.MethodGet, "/api/pages", "")
	second := srv.do(t, http.MethodGet, "/api/pages", "")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestRecoverMiddleware(t *testing.T) {
	handler := Recover(nilSafeLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, dashboard.FallbackErrorHTML, rec.Body.String())

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal Server Error")
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{fmt.Errorf("wrap: %w", dashboard.ErrPageNotFound), http.StatusNotFound},
		{dashboard.ErrInstanceNotFound, http.StatusNotFound},
		{dashboard.ErrInvalidAction, http.StatusBadRequest},
		{dashboard.ErrInvalidViewConfig, http.StatusBadRequest},
		{ErrNotConfigured, http.StatusNotImplemented},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusFor(tc.err), fmt.Sprint(tc.err))
	}
}

func TestDefaultViewerResolver(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?locale=ES", nil)
	req.Header.Set("X-User-ID", "u1")
	req.Header.Set("X-User-Roles", "admin, analyst")
	viewer := DefaultViewerResolver(req)
	assert.Equal(t, "u1", viewer.UserID)
	assert.Equal(t, []string{"admin", "analyst"}, viewer.Roles)
	assert.Equal(t, "es", viewer.Locale)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "fr-CA,fr;q=0.8")
	assert.Equal(t, "fr-ca", DefaultViewerResolver(req).Locale)
}

func TestCommandExecutorNotConfigured(t *testing.T) {
	exec := &CommandExecutor{}
	_, err := exec.Instances(context.Background())
	require.ErrorIs(t, err, ErrNotConfigured)
}

func nilSafeLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
