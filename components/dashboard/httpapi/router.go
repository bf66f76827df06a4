package httpapi

import (
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	dashboard "github.com/goliatone/go-analytics-dashboard/components/dashboard"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	Handlers       *Handlers
	Logger         *slog.Logger
	APIBase        string
	RateLimit      int
	RateWindow     time.Duration
	Production     bool
	MetricsHandler http.Handler
	Middleware     []func(http.Handler) http.Handler
}

// NewRouter mounts HTML pages, the JSON API, page event streams, health and
// metrics endpoints on a chi router.
func NewRouter(opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	apiBase := opts.APIBase
	if apiBase == "" {
		apiBase = "/api/pages"
	}
	rateLimit := opts.RateLimit
	if rateLimit <= 0 {
		rateLimit = 120
	}
	rateWindow := opts.RateWindow
	if rateWindow <= 0 {
		rateWindow = time.Minute
	}
	h := opts.Handlers
	if h == nil {
		h = &Handlers{}
	}
	if h.Logger == nil {
		h.Logger = logger
	}

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		SSLRedirect:        opts.Production,
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:      !opts.Production,
	})

	r := chi.NewRouter()
	r.Use(middleware.RealIP, middleware.RequestID, Recover(logger))
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if err := secureMiddleware.Process(w, req); err != nil {
				logger.Warn("secure headers blocked request", slog.Any("error", err))
				http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
				return
			}
			next.ServeHTTP(w, req)
		})
	})
	for _, mw := range opts.Middleware {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if opts.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", opts.MetricsHandler)
	}

	if h.API != nil {
		limiter := httprate.Limit(rateLimit, rateWindow,
			httprate.WithKeyFuncs(rateLimitKey),
			httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": http.StatusText(http.StatusTooManyRequests)})
			}),
		)
		r.Route(apiBase, func(api chi.Router) {
			api.Use(limiter)
			api.Get("/", h.HandleListInstances)
			api.Post("/", h.HandleMount)
			api.Route("/{id}", func(inst chi.Router) {
				inst.Get("/", h.HandleSnapshot)
				inst.Delete("/", h.HandleUnmount)
				inst.Post("/refresh", h.HandleRefresh)
				inst.Post("/filters", h.HandleSetFilter)
				inst.Get("/tables/{table}", h.HandleTable)
				inst.Post("/tables/{table}", h.HandleTableAction)
				inst.Get("/events", h.HandleEvents)
				inst.Get("/ws", h.HandleWebSocket)
			})
		})
		r.With(limiter).Put("/api/preferences/theme", h.HandleSaveTheme)
	}

	r.Get("/*", h.HandlePage)
	return r
}

// Recover turns handler panics into a logged 500 response. HTML requests get
// the static fallback page.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Error("recovered handler panic",
					"panic", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"request_id", middleware.GetReqID(r.Context()),
					"stack", string(debug.Stack()),
				)
				if strings.Contains(r.Header.Get("Accept"), "text/html") {
					w.Header().Set("Content-Type", "text/html; charset=utf-8")
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = io.WriteString(w, dashboard.FallbackErrorHTML)
					return
				}
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": http.StatusText(http.StatusInternalServerError)})
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func rateLimitKey(r *http.Request) (string, error) {
	if user := strings.TrimSpace(r.Header.Get("X-User-ID")); user != "" {
		return "user:" + user, nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
